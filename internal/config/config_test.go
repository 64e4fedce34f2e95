package config

import (
	"strings"
	"testing"
)

func TestDefaults(t *testing.T) {
	cfg := Defaults()

	if cfg.Engine.DefaultK != 5 {
		t.Errorf("Engine.DefaultK = %d, want 5", cfg.Engine.DefaultK)
	}
	if cfg.Search.Limit != 5 {
		t.Errorf("Search.Limit = %d, want 5", cfg.Search.Limit)
	}
	if !cfg.Corpus.EnglishStopWords {
		t.Error("English stop words should be enabled by default")
	}
	if cfg.Storage.Endpoint != "" {
		t.Error("object storage should be disabled by default")
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Defaults().Validate() error = %v", err)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"no corpus source", func(c *Config) { c.Corpus.Path = "" }, "corpus.path"},
		{"prefix without storage", func(c *Config) { c.Corpus.Prefix = "corpora/x" }, "storage.endpoint"},
		{"prefix with storage", func(c *Config) {
			c.Corpus.Prefix = "corpora/x"
			c.Storage.Endpoint = "localhost:9000"
		}, ""},
		{"negative k", func(c *Config) { c.Engine.DefaultK = -1 }, "default_k"},
		{"negative limit", func(c *Config) { c.Search.Limit = -2 }, "search.limit"},
		{"negative cache", func(c *Config) { c.Thesaurus.CacheSize = -1 }, "cache_size"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Defaults()
			tt.mutate(&cfg)

			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("Validate() error = %v, want nil", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Validate() error = %v, want mention of %q", err, tt.wantErr)
			}
		})
	}
}
