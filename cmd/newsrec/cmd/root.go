package cmd

import (
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/mfenderov/newsrec/internal/config"
)

var (
	cfgFile string
	verbose bool
	cfg     config.Config
)

// GetConfig returns the loaded configuration.
func GetConfig() config.Config {
	return cfg
}

var rootCmd = &cobra.Command{
	Use:   "newsrec",
	Short: "newsrec: content-based news article recommendations",
	Long: `newsrec recommends news articles whose text is most similar to an
article you have read, searches titles with synonym expansion, and crawls
news sites into a corpus.

Commands:
  recommend  Recommend articles similar to one or more read articles
  search     Search article titles
  expand     Show the synonym expansion of a query
  fetch      Crawl news sites into the corpus
  ingest     Index a stored corpus into Elasticsearch
  serve      Start the MCP server
  users      Manage registered users
  thesaurus  Manage the synonym database
  stats      Show corpus and model statistics`,
	SilenceUsage: true,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig, initLogger)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./config/config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")
}

func initLogger() {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}

	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})
	slog.SetDefault(slog.New(handler))
}

func initConfig() {
	cfg = config.Defaults()

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
		viper.AddConfigPath("./config")
		viper.AddConfigPath("/etc/newsrec")
		viper.AddConfigPath(".")
	}

	// NEWSREC_CORPUS_PATH -> corpus.path
	viper.SetEnvPrefix("NEWSREC")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	for _, key := range []string{
		"corpus.path",
		"corpus.prefix",
		"corpus.english_stop_words",
		"engine.default_k",
		"search.limit",
		"thesaurus.path",
		"thesaurus.database",
		"thesaurus.cache_size",
		"users.database",
		"elasticsearch.index",
		"elasticsearch.username",
		"elasticsearch.password",
		"scraper.delay",
		"scraper.max_depth",
		"scraper.readability",
		"storage.endpoint",
		"storage.bucket",
		"storage.access_key_id",
		"storage.secret_access_key",
		"mcp.name",
		"mcp.version",
	} {
		viper.BindEnv(key, "NEWSREC_"+strings.ToUpper(strings.ReplaceAll(key, ".", "_")))
	}

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			slog.Warn("config file error", "error", err)
		}
	}

	if err := viper.Unmarshal(&cfg); err != nil {
		slog.Warn("failed to parse config", "error", err)
	}

	// Comma-separated lists from env
	if addrs := os.Getenv("NEWSREC_ELASTICSEARCH_ADDRESSES"); addrs != "" {
		cfg.Elasticsearch.Addresses = strings.Split(addrs, ",")
	}
	if words := os.Getenv("NEWSREC_CORPUS_STOP_WORDS"); words != "" {
		cfg.Corpus.StopWords = strings.Split(words, ",")
	}
}
