// Package engine owns the current corpus snapshot and its similarity model.
package engine

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/mfenderov/newsrec/internal/analysis"
	"github.com/mfenderov/newsrec/internal/corpus"
	"github.com/mfenderov/newsrec/internal/recommend"
	"github.com/mfenderov/newsrec/internal/similarity"
	"github.com/mfenderov/newsrec/pkg/models"
)

// ErrNotLoaded is returned before the first successful Load.
var ErrNotLoaded = errors.New("no corpus loaded")

// Snapshot pairs a corpus with the cache that holds its model.
type Snapshot struct {
	Corpus      *corpus.Corpus
	Cache       *similarity.Cache
	Recommender *recommend.Recommender
	LoadedAt    time.Time
}

// Engine serves recommendations from the latest loaded snapshot. Loads are
// serialized; readers keep using the previous snapshot until a new one is
// fully built.
type Engine struct {
	stop analysis.StopWords

	loadMu  sync.Mutex
	current atomic.Pointer[Snapshot]
}

// New creates an engine that vectorizes with the given stopwords.
func New(stop analysis.StopWords) *Engine {
	return &Engine{stop: stop}
}

// Load builds a corpus from raw articles, computes its similarity matrix and
// publishes it as the current snapshot. On error the previous snapshot stays.
func (e *Engine) Load(ctx context.Context, raw []models.Article) (*Snapshot, error) {
	e.loadMu.Lock()
	defer e.loadMu.Unlock()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	start := time.Now()
	c := corpus.New(raw)
	cache := similarity.NewCache(e.stop)
	if _, err := cache.Get(c); err != nil {
		return nil, err
	}

	snap := &Snapshot{
		Corpus:      c,
		Cache:       cache,
		Recommender: recommend.New(c, cache),
		LoadedAt:    time.Now(),
	}
	e.current.Store(snap)

	slog.Info("corpus loaded",
		"articles", c.Len(),
		"dropped", len(raw)-c.Len(),
		"duration", time.Since(start))
	return snap, nil
}

// Snapshot returns the current snapshot, or nil before the first Load.
func (e *Engine) Snapshot() *Snapshot {
	return e.current.Load()
}

// Invalidate drops the current snapshot's cached model. The next query
// rebuilds it from the same corpus.
func (e *Engine) Invalidate() {
	if snap := e.current.Load(); snap != nil {
		snap.Cache.Invalidate()
	}
}

// Recommend runs a single-seed recommendation on the current snapshot.
func (e *Engine) Recommend(seedID string, k int) ([]recommend.Scored, error) {
	snap := e.current.Load()
	if snap == nil {
		return nil, ErrNotLoaded
	}
	return snap.Recommender.RecommendScored(seedID, k)
}

// Article looks up an article in the current snapshot.
func (e *Engine) Article(id string) (models.Article, error) {
	snap := e.current.Load()
	if snap == nil {
		return models.Article{}, ErrNotLoaded
	}
	a, ok := snap.Corpus.Get(id)
	if !ok {
		return models.Article{}, &recommend.ArticleNotFoundError{ID: id}
	}
	return a, nil
}
