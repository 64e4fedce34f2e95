package ingestion

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/mfenderov/newsrec/internal/corpus"
	"github.com/mfenderov/newsrec/internal/events"
	"github.com/mfenderov/newsrec/pkg/models"
)

// CorpusReader loads a stored corpus.
type CorpusReader interface {
	GetCorpus(ctx context.Context, prefix string) ([]models.Article, error)
}

// Indexer writes articles to a search index.
type Indexer interface {
	CreateIndex(ctx context.Context) error
	DeleteIndex(ctx context.Context) error
	IndexArticle(ctx context.Context, a models.Article) error
	Refresh(ctx context.Context) error
}

// Result holds ingestion execution results.
type Result struct {
	Prefix          string
	ArticlesIndexed int
	Duration        time.Duration
	Errors          []string
}

// Engine reads stored corpora and indexes their articles.
type Engine struct {
	reader  CorpusReader
	indexer Indexer
}

// New creates a new ingestion engine.
func New(reader CorpusReader, indexer Indexer) *Engine {
	return &Engine{
		reader:  reader,
		indexer: indexer,
	}
}

// Reindex drops the index and ingests prefix into a fresh one, so articles
// from earlier corpora no longer match searches.
func (e *Engine) Reindex(ctx context.Context, prefix string) (*Result, error) {
	if err := e.indexer.DeleteIndex(ctx); err != nil {
		return nil, fmt.Errorf("failed to delete index: %w", err)
	}
	return e.Ingest(ctx, prefix)
}

// Ingest indexes every article of the corpus stored under prefix. Articles
// without body text and repeated ids are dropped the same way the
// recommender drops them.
func (e *Engine) Ingest(ctx context.Context, prefix string) (*Result, error) {
	start := time.Now()
	result := &Result{Prefix: prefix}

	slog.Info("starting ingestion", "prefix", prefix)

	if err := e.indexer.CreateIndex(ctx); err != nil {
		return nil, fmt.Errorf("failed to create index: %w", err)
	}

	raw, err := e.reader.GetCorpus(ctx, prefix)
	if err != nil {
		return nil, fmt.Errorf("failed to load corpus %s: %w", prefix, err)
	}

	c := corpus.New(raw)
	slog.Info("found articles to ingest", "count", c.Len(), "dropped", len(raw)-c.Len())

	for i := range c.Len() {
		if ctx.Err() != nil {
			result.Errors = append(result.Errors, "context cancelled")
			break
		}

		a := c.At(i)
		if err := e.indexer.IndexArticle(ctx, a); err != nil {
			slog.Error("failed to index article", "id", a.ID, "error", err)
			result.Errors = append(result.Errors, err.Error())
			continue
		}
		slog.Debug("article indexed", "id", a.ID)
		result.ArticlesIndexed++
	}

	if err := e.indexer.Refresh(ctx); err != nil {
		slog.Warn("failed to refresh index", "error", err)
	}

	result.Duration = time.Since(start)
	slog.Info("ingestion complete",
		"prefix", prefix,
		"articles_indexed", result.ArticlesIndexed,
		"duration", result.Duration,
		"errors", len(result.Errors))

	return result, nil
}

// Run ingests each stored corpus received on in and reports the outcome on
// the returned channel, which is closed once in is closed and drained.
func (e *Engine) Run(ctx context.Context, in <-chan events.CorpusStoredEvent) <-chan events.IngestionCompleteEvent {
	out := make(chan events.IngestionCompleteEvent)

	go func() {
		defer close(out)
		for event := range in {
			done := events.IngestionCompleteEvent{Prefix: event.Prefix}

			result, err := e.Ingest(ctx, event.Prefix)
			if err != nil {
				done.Err = err
			} else {
				done.ArticlesIndexed = result.ArticlesIndexed
				done.Duration = result.Duration
				done.Errors = result.Errors
			}

			select {
			case out <- done:
			case <-ctx.Done():
				return
			}
		}
	}()

	return out
}
