package cmd

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/mfenderov/newsrec/internal/analysis"
	"github.com/mfenderov/newsrec/internal/config"
	"github.com/mfenderov/newsrec/internal/corpus"
	"github.com/mfenderov/newsrec/internal/elasticsearch"
	"github.com/mfenderov/newsrec/internal/engine"
	"github.com/mfenderov/newsrec/internal/expand"
	"github.com/mfenderov/newsrec/internal/storage"
	"github.com/mfenderov/newsrec/pkg/models"
)

func newStorageClient(cfg *config.Config) (*storage.Client, error) {
	if cfg.Storage.Endpoint == "" {
		return nil, fmt.Errorf("storage not configured - set storage.endpoint")
	}

	client, err := storage.New(storage.Config{
		Endpoint:        cfg.Storage.Endpoint,
		Bucket:          cfg.Storage.Bucket,
		AccessKeyID:     cfg.Storage.AccessKeyID,
		SecretAccessKey: cfg.Storage.SecretAccessKey,
		UseSSL:          cfg.Storage.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create storage client: %w", err)
	}
	return client, nil
}

func newESClient(cfg *config.Config) (*elasticsearch.Client, error) {
	client, err := elasticsearch.New(elasticsearch.Config{
		Addresses: cfg.Elasticsearch.Addresses,
		Index:     cfg.Elasticsearch.Index,
		Username:  cfg.Elasticsearch.Username,
		Password:  cfg.Elasticsearch.Password,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create ES client: %w", err)
	}
	return client, nil
}

// loadArticles reads the configured corpus from object storage when a
// prefix is set, otherwise from the CSV file.
func loadArticles(ctx context.Context, cfg *config.Config) ([]models.Article, error) {
	if cfg.Corpus.Prefix != "" {
		client, err := newStorageClient(cfg)
		if err != nil {
			return nil, err
		}
		slog.Debug("loading corpus from storage", "bucket", client.Bucket(), "prefix", cfg.Corpus.Prefix)
		return client.GetCorpus(ctx, cfg.Corpus.Prefix)
	}

	slog.Debug("loading corpus from file", "path", cfg.Corpus.Path)
	return corpus.LoadFile(cfg.Corpus.Path)
}

func stopWords(cfg *config.Config) (analysis.StopWords, error) {
	stop := analysis.NewStopWords(cfg.Corpus.StopWords...)
	if !cfg.Corpus.EnglishStopWords {
		return stop, nil
	}

	english, err := analysis.EnglishStopWords()
	if err != nil {
		return nil, err
	}
	return english.Union(stop), nil
}

// loadEngine validates the config, loads the corpus and builds its model.
func loadEngine(ctx context.Context, cfg *config.Config) (*engine.Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	stop, err := stopWords(cfg)
	if err != nil {
		return nil, err
	}

	articles, err := loadArticles(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to load corpus: %w", err)
	}

	e := engine.New(stop)
	if _, err := e.Load(ctx, articles); err != nil {
		return nil, fmt.Errorf("failed to build model: %w", err)
	}
	return e, nil
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// newExpander builds the query expander from the configured thesaurus. The
// returned closer releases the synonym database, if one was opened.
func newExpander(ctx context.Context, cfg *config.Config) (*expand.Expander, io.Closer, error) {
	var (
		th     expand.Thesaurus
		closer io.Closer = nopCloser{}
	)

	switch {
	case cfg.Thesaurus.Database != "":
		db, err := expand.OpenSQLite(ctx, cfg.Thesaurus.Database)
		if err != nil {
			return nil, nil, err
		}
		th, closer = db, db
	case cfg.Thesaurus.Path != "":
		m, err := expand.LoadYAMLFile(cfg.Thesaurus.Path)
		if err != nil {
			return nil, nil, err
		}
		th = m
	default:
		slog.Debug("no thesaurus configured, queries are not expanded")
		return expand.New(nil), closer, nil
	}

	if cfg.Thesaurus.CacheSize > 0 {
		cached, err := expand.NewCached(th, cfg.Thesaurus.CacheSize)
		if err != nil {
			closer.Close()
			return nil, nil, err
		}
		th = cached
	}
	return expand.New(th), closer, nil
}
