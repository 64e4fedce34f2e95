package similarity

import (
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/mfenderov/newsrec/internal/analysis"
	"github.com/mfenderov/newsrec/internal/corpus"
	"github.com/mfenderov/newsrec/internal/vectorize"
)

// Entry is the model built for one corpus snapshot.
type Entry struct {
	Weights    *vectorize.WeightMatrix
	Similarity *Matrix
}

// Cache memoizes the weight and similarity matrices of a corpus, keyed by
// the corpus fingerprint. Concurrent requests for the same fingerprint share
// a single build; until it completes the previous entry stays readable.
type Cache struct {
	stop  analysis.StopWords
	group singleflight.Group

	mu         sync.RWMutex
	key        string
	entry      *Entry
	generation uint64

	builds atomic.Int64
}

// NewCache creates an empty cache that vectorizes with the given stopwords.
func NewCache(stop analysis.StopWords) *Cache {
	return &Cache{stop: stop}
}

// Get returns the model for c, building it if the cache holds no entry for
// c's fingerprint.
func (c *Cache) Get(cp *corpus.Corpus) (*Entry, error) {
	if cp == nil {
		return nil, vectorize.ErrEmptyCorpus
	}

	key := cp.Fingerprint()
	if e := c.lookup(key); e != nil {
		return e, nil
	}

	v, err, shared := c.group.Do(key, func() (any, error) {
		if e := c.lookup(key); e != nil {
			return e, nil
		}
		return c.build(key, cp)
	})
	if err != nil {
		return nil, err
	}
	if shared {
		slog.Debug("similarity build shared", "fingerprint", key[:12])
	}
	return v.(*Entry), nil
}

// Matrix returns the similarity matrix for c.
func (c *Cache) Matrix(cp *corpus.Corpus) (*Matrix, error) {
	e, err := c.Get(cp)
	if err != nil {
		return nil, err
	}
	return e.Similarity, nil
}

// Invalidate drops the cached entry. The next Get rebuilds.
func (c *Cache) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.key = ""
	c.entry = nil
	c.generation++
}

// Builds returns how many times a model was built.
func (c *Cache) Builds() int {
	return int(c.builds.Load())
}

func (c *Cache) lookup(key string) *Entry {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.entry != nil && c.key == key {
		return c.entry
	}
	return nil
}

func (c *Cache) build(key string, cp *corpus.Corpus) (*Entry, error) {
	c.mu.RLock()
	gen := c.generation
	c.mu.RUnlock()

	start := time.Now()
	weights, err := vectorize.Build(cp, c.stop)
	if err != nil {
		return nil, err
	}
	e := &Entry{
		Weights:    weights,
		Similarity: Compute(weights),
	}
	c.builds.Add(1)

	c.mu.Lock()
	// An Invalidate during the build wins; the result is returned but not kept.
	if c.generation == gen {
		c.key = key
		c.entry = e
	}
	c.mu.Unlock()

	slog.Debug("similarity model built",
		"articles", cp.Len(),
		"terms", len(weights.Vocabulary()),
		"duration", time.Since(start))
	return e, nil
}
