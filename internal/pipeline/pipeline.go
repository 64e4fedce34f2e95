// Package pipeline crawls news sites straight into a local CSV corpus, for
// setups without object storage.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/mfenderov/newsrec/internal/corpus"
	"github.com/mfenderov/newsrec/internal/scraper"
	"github.com/mfenderov/newsrec/pkg/models"
)

// Scraper fetches articles from a start URL.
type Scraper interface {
	Scrape(ctx context.Context, startURL string) ([]models.Article, error)
}

// Result holds pipeline execution results.
type Result struct {
	ArticlesScraped int
	ArticlesAdded   int
	CorpusSize      int
	Duration        time.Duration
	Errors          []error
}

// Pipeline merges crawled articles into a CSV corpus file.
type Pipeline struct {
	scraper Scraper
	path    string
}

// New creates a pipeline writing to the corpus file at path.
func New(s Scraper, path string) *Pipeline {
	return &Pipeline{scraper: s, path: path}
}

// NewWithConfig creates a pipeline with a colly scraper.
func NewWithConfig(config scraper.Config, path string) *Pipeline {
	return New(scraper.New(config), path)
}

// Run crawls startURL and appends articles whose id is not yet in the
// corpus file. Existing articles keep their position and content.
func (p *Pipeline) Run(ctx context.Context, startURL string) (*Result, error) {
	start := time.Now()
	result := &Result{}

	existing, err := p.load()
	if err != nil {
		return nil, err
	}

	scraped, err := p.scraper.Scrape(ctx, startURL)
	if err != nil {
		result.Errors = append(result.Errors, err)
	}
	result.ArticlesScraped = len(scraped)

	seen := make(map[string]struct{}, len(existing))
	for _, a := range existing {
		seen[a.ID] = struct{}{}
	}

	merged := existing
	for _, a := range scraped {
		if _, dup := seen[a.ID]; dup {
			slog.Debug("article already in corpus", "id", a.ID, "url", a.URL)
			continue
		}
		seen[a.ID] = struct{}{}
		merged = append(merged, a)
		result.ArticlesAdded++
	}

	if result.ArticlesAdded > 0 {
		if err := p.write(merged); err != nil {
			return nil, err
		}
	}

	result.CorpusSize = len(merged)
	result.Duration = time.Since(start)
	slog.Info("pipeline complete",
		"url", startURL,
		"scraped", result.ArticlesScraped,
		"added", result.ArticlesAdded,
		"corpus_size", result.CorpusSize)
	return result, nil
}

func (p *Pipeline) load() ([]models.Article, error) {
	articles, err := corpus.LoadFile(p.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return articles, nil
}

func (p *Pipeline) write(articles []models.Article) error {
	dir := filepath.Dir(p.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create corpus directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".corpus-*.csv")
	if err != nil {
		return fmt.Errorf("failed to create temp corpus: %w", err)
	}
	defer os.Remove(tmp.Name())

	if err := corpus.WriteCSV(tmp, articles); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close temp corpus: %w", err)
	}

	if err := os.Rename(tmp.Name(), p.path); err != nil {
		return fmt.Errorf("failed to replace corpus: %w", err)
	}
	return nil
}
