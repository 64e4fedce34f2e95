package cmd

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/mfenderov/newsrec/internal/config"
	"github.com/mfenderov/newsrec/internal/corpus"
	"github.com/mfenderov/newsrec/pkg/models"
)

func writeCorpus(t *testing.T, articles []models.Article) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "articles.csv")
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	if err := corpus.WriteCSV(f, articles); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadEngine_FromFile(t *testing.T) {
	cfg := config.Defaults()
	cfg.Corpus.Path = writeCorpus(t, []models.Article{
		{ID: "1", Title: "Pets", BodyText: "cats and dogs are pets"},
		{ID: "2", Title: "Loyal", BodyText: "dogs are loyal pets"},
		{ID: "3", Title: "Markets", BodyText: "stock markets rose today"},
	})

	e, err := loadEngine(context.Background(), &cfg)
	if err != nil {
		t.Fatalf("loadEngine() error = %v", err)
	}

	recs, err := e.Recommend("1", 1)
	if err != nil {
		t.Fatalf("Recommend() error = %v", err)
	}
	if len(recs) != 1 || recs[0].Article.ID != "2" {
		t.Errorf("Recommend() = %+v, want article 2", recs)
	}
}

func TestLoadEngine_InvalidConfig(t *testing.T) {
	cfg := config.Defaults()
	cfg.Corpus.Path = ""

	if _, err := loadEngine(context.Background(), &cfg); err == nil {
		t.Error("loadEngine() should reject a config without a corpus")
	}
}

func TestStopWords(t *testing.T) {
	cfg := config.Defaults()
	cfg.Corpus.StopWords = []string{"said"}

	stop, err := stopWords(&cfg)
	if err != nil {
		t.Fatalf("stopWords() error = %v", err)
	}
	if !stop.Contains("said") || !stop.Contains("the") {
		t.Error("stop words should include configured and English words")
	}

	cfg.Corpus.EnglishStopWords = false
	stop, err = stopWords(&cfg)
	if err != nil {
		t.Fatalf("stopWords() error = %v", err)
	}
	if stop.Contains("the") {
		t.Error("English stop words should be off")
	}
}

func TestNewExpander(t *testing.T) {
	dir := t.TempDir()
	yamlPath := filepath.Join(dir, "thesaurus.yaml")
	if err := os.WriteFile(yamlPath, []byte("happy: [glad]\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name   string
		mutate func(*config.Config)
		want   string
	}{
		{"none configured", func(*config.Config) {}, "happy"},
		{"yaml file", func(c *config.Config) { c.Thesaurus.Path = yamlPath }, "happy|glad"},
		{"yaml without cache", func(c *config.Config) {
			c.Thesaurus.Path = yamlPath
			c.Thesaurus.CacheSize = 0
		}, "happy|glad"},
		{"empty database", func(c *config.Config) { c.Thesaurus.Database = filepath.Join(dir, "syn.db") }, "happy"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.Defaults()
			tt.mutate(&cfg)

			exp, closer, err := newExpander(context.Background(), &cfg)
			if err != nil {
				t.Fatalf("newExpander() error = %v", err)
			}
			defer closer.Close()

			if got := exp.Expand(context.Background(), "happy"); got != tt.want {
				t.Errorf("Expand() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestFetchTargets(t *testing.T) {
	cfg := config.Defaults()
	cfg.Sources = []config.Source{
		{Name: "world", URL: "https://news.example.com/world"},
		{Name: "sport", URL: "https://news.example.com/sport"},
	}

	t.Cleanup(func() { fetchURL, fetchSource = "", "" })

	urls, err := fetchTargets(&cfg)
	if err != nil || len(urls) != 2 {
		t.Errorf("fetchTargets() = %v, %v", urls, err)
	}

	fetchSource = "sport"
	urls, err = fetchTargets(&cfg)
	if err != nil || len(urls) != 1 || urls[0] != "https://news.example.com/sport" {
		t.Errorf("fetchTargets(sport) = %v, %v", urls, err)
	}

	fetchSource = "missing"
	if _, err := fetchTargets(&cfg); err == nil {
		t.Error("unknown source should fail")
	}

	fetchURL = "https://direct.example.com"
	urls, _ = fetchTargets(&cfg)
	if len(urls) != 1 || urls[0] != fetchURL {
		t.Errorf("--url should win, got %v", urls)
	}
}
