package config

import (
	"fmt"
	"time"
)

// Config holds all application configuration.
type Config struct {
	Corpus        Corpus        `mapstructure:"corpus"`
	Engine        Engine        `mapstructure:"engine"`
	Search        Search        `mapstructure:"search"`
	Thesaurus     Thesaurus     `mapstructure:"thesaurus"`
	Users         Users         `mapstructure:"users"`
	Elasticsearch Elasticsearch `mapstructure:"elasticsearch"`
	Scraper       Scraper       `mapstructure:"scraper"`
	Storage       Storage       `mapstructure:"storage"`
	MCP           MCP           `mapstructure:"mcp"`
	Sources       []Source      `mapstructure:"sources"`
}

// Corpus says where articles are loaded from. Prefix, when set, names a
// corpus in object storage and takes precedence over Path.
type Corpus struct {
	Path             string   `mapstructure:"path"`
	Prefix           string   `mapstructure:"prefix"`
	EnglishStopWords bool     `mapstructure:"english_stop_words"`
	StopWords        []string `mapstructure:"stop_words"`
}

// Engine holds recommendation defaults.
type Engine struct {
	DefaultK int `mapstructure:"default_k"`
}

// Search holds title search defaults.
type Search struct {
	Limit int `mapstructure:"limit"`
}

// Thesaurus selects the synonym source for query expansion. Database wins
// over Path when both are set; neither leaves expansion as a no-op.
type Thesaurus struct {
	Path      string `mapstructure:"path"`
	Database  string `mapstructure:"database"`
	CacheSize int    `mapstructure:"cache_size"`
}

// Users holds the user registry location.
type Users struct {
	Database string `mapstructure:"database"`
}

// Elasticsearch holds ES connection configuration.
type Elasticsearch struct {
	Addresses []string `mapstructure:"addresses"`
	Index     string   `mapstructure:"index"`
	Username  string   `mapstructure:"username"`
	Password  string   `mapstructure:"password"`
}

// Scraper holds web crawling configuration.
type Scraper struct {
	Delay       time.Duration `mapstructure:"delay"`
	MaxDepth    int           `mapstructure:"max_depth"`
	FollowLinks bool          `mapstructure:"follow_links"`
	Timeout     time.Duration `mapstructure:"timeout"`
	UserAgent   string        `mapstructure:"user_agent"`
	Parallelism int           `mapstructure:"parallelism"`
	Readability bool          `mapstructure:"readability"`
}

// Storage holds S3/MinIO storage configuration. An empty endpoint disables
// object storage.
type Storage struct {
	Endpoint        string `mapstructure:"endpoint"`
	Bucket          string `mapstructure:"bucket"`
	AccessKeyID     string `mapstructure:"access_key_id"`
	SecretAccessKey string `mapstructure:"secret_access_key"`
	UseSSL          bool   `mapstructure:"use_ssl"`
}

// MCP holds MCP server configuration.
type MCP struct {
	Name    string `mapstructure:"name"`
	Version string `mapstructure:"version"`
}

// Source defines a news site to crawl.
type Source struct {
	Name string `mapstructure:"name"`
	URL  string `mapstructure:"url"`
}

// Defaults returns a Config with sensible default values.
func Defaults() Config {
	return Config{
		Corpus: Corpus{
			Path:             "data/articles.csv",
			EnglishStopWords: true,
		},
		Engine: Engine{
			DefaultK: 5,
		},
		Search: Search{
			Limit: 5,
		},
		Thesaurus: Thesaurus{
			CacheSize: 1024,
		},
		Users: Users{
			Database: "data/users.db",
		},
		Elasticsearch: Elasticsearch{
			Addresses: []string{"http://localhost:9200"},
			Index:     "newsrec-articles",
		},
		Scraper: Scraper{
			Delay:       1 * time.Second,
			MaxDepth:    2,
			FollowLinks: true,
			Timeout:     30 * time.Second,
			UserAgent:   "newsrec/1.0",
			Parallelism: 2,
		},
		Storage: Storage{
			Bucket:          "newsrec",
			AccessKeyID:     "minioadmin",
			SecretAccessKey: "minioadmin",
		},
		MCP: MCP{
			Name:    "newsrec",
			Version: "1.0.0",
		},
	}
}

// Validate reports settings the commands cannot run with.
func (c Config) Validate() error {
	if c.Corpus.Path == "" && c.Corpus.Prefix == "" {
		return fmt.Errorf("corpus.path or corpus.prefix is required")
	}
	if c.Corpus.Prefix != "" && c.Storage.Endpoint == "" {
		return fmt.Errorf("corpus.prefix requires storage.endpoint")
	}
	if c.Engine.DefaultK < 0 {
		return fmt.Errorf("engine.default_k must not be negative, got %d", c.Engine.DefaultK)
	}
	if c.Search.Limit < 0 {
		return fmt.Errorf("search.limit must not be negative, got %d", c.Search.Limit)
	}
	if c.Thesaurus.CacheSize < 0 {
		return fmt.Errorf("thesaurus.cache_size must not be negative, got %d", c.Thesaurus.CacheSize)
	}
	return nil
}
