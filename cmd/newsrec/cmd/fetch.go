package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/mfenderov/newsrec/internal/config"
	"github.com/mfenderov/newsrec/internal/events"
	"github.com/mfenderov/newsrec/internal/ingestion"
	"github.com/mfenderov/newsrec/internal/pipeline"
	"github.com/mfenderov/newsrec/internal/scraper"
	"github.com/mfenderov/newsrec/internal/storage"
)

var (
	fetchURL    string
	fetchSource string
	noIngest    bool
)

var fetchCmd = &cobra.Command{
	Use:   "fetch",
	Short: "Crawl news sites into the corpus",
	Long: `Crawl news sites from configured sources or a specific URL and turn
every page with article text into a corpus entry.

With object storage configured each crawl is written as a new corpus under
corpora/{host}/ and indexed into Elasticsearch. Without it, new articles are
appended to the local CSV corpus at corpus.path.

Examples:
  # Crawl all configured sources
  newsrec fetch

  # Crawl a specific source by name
  newsrec fetch --source guardian-world

  # Crawl a specific URL directly
  newsrec fetch --url https://news.example.com/world

  # Store only (no Elasticsearch ingestion)
  newsrec fetch --url https://news.example.com/world --no-ingest`,
	RunE: runFetch,
}

func init() {
	rootCmd.AddCommand(fetchCmd)

	fetchCmd.Flags().StringVar(&fetchURL, "url", "", "URL to crawl directly")
	fetchCmd.Flags().StringVar(&fetchSource, "source", "", "Source name from config to crawl")
	fetchCmd.Flags().BoolVar(&noIngest, "no-ingest", false, "Store only, skip Elasticsearch ingestion")
}

func runFetch(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg := GetConfig()
	slog.Debug("fetch command starting", "verbose", verbose, "no_ingest", noIngest)

	urls, err := fetchTargets(&cfg)
	if err != nil {
		return err
	}

	scraperConfig := scraper.Config{
		Delay:       cfg.Scraper.Delay,
		MaxDepth:    cfg.Scraper.MaxDepth,
		FollowLinks: cfg.Scraper.FollowLinks,
		Timeout:     cfg.Scraper.Timeout,
		UserAgent:   cfg.Scraper.UserAgent,
		Parallelism: cfg.Scraper.Parallelism,
		Readability: cfg.Scraper.Readability,
	}

	if cfg.Storage.Endpoint != "" {
		return runStoredFetch(ctx, cmd, &cfg, scraper.New(scraperConfig), urls)
	}
	return runLocalFetch(ctx, cmd, &cfg, scraperConfig, urls)
}

func fetchTargets(cfg *config.Config) ([]string, error) {
	if fetchURL != "" {
		return []string{fetchURL}, nil
	}
	if len(cfg.Sources) == 0 {
		return nil, fmt.Errorf("no sources configured and no --url provided")
	}

	var urls []string
	for _, source := range cfg.Sources {
		if fetchSource != "" && source.Name != fetchSource {
			continue
		}
		if source.URL != "" {
			urls = append(urls, source.URL)
		}
	}

	if len(urls) == 0 {
		if fetchSource != "" {
			return nil, fmt.Errorf("source %q not found in config", fetchSource)
		}
		return nil, fmt.Errorf("no valid sources found in config")
	}
	return urls, nil
}

func runLocalFetch(ctx context.Context, cmd *cobra.Command, cfg *config.Config, sc scraper.Config, urls []string) error {
	out := cmd.OutOrStdout()
	p := pipeline.NewWithConfig(sc, cfg.Corpus.Path)

	added := 0
	for _, url := range urls {
		fmt.Fprintf(out, "Crawling: %s\n", url)

		result, err := p.Run(ctx, url)
		if err != nil {
			fmt.Fprintf(out, "  Error: %v\n", err)
			continue
		}
		added += result.ArticlesAdded

		fmt.Fprintf(out, "  Articles: %d found, %d new, corpus size %d (%v)\n",
			result.ArticlesScraped, result.ArticlesAdded, result.CorpusSize, result.Duration)
		for _, e := range result.Errors {
			fmt.Fprintf(out, "  Warning: %v\n", e)
		}
	}

	fmt.Fprintf(out, "\nTotal: %d new articles in %s\n", added, cfg.Corpus.Path)
	return nil
}

func runStoredFetch(ctx context.Context, cmd *cobra.Command, cfg *config.Config, s *scraper.Scraper, urls []string) error {
	storageClient, err := newStorageClient(cfg)
	if err != nil {
		return err
	}
	if err := storageClient.EnsureBucket(ctx); err != nil {
		return fmt.Errorf("failed to ensure bucket: %w", err)
	}

	if noIngest {
		return runStoreOnly(ctx, cmd, s, storageClient, urls)
	}
	return runStoreWithIngest(ctx, cmd, cfg, s, storageClient, urls)
}

func runStoreOnly(ctx context.Context, cmd *cobra.Command, s *scraper.Scraper, storageClient *storage.Client, urls []string) error {
	out := cmd.OutOrStdout()
	total := 0

	for _, url := range urls {
		fmt.Fprintf(out, "Crawling to storage: %s\n", url)

		result, err := s.ScrapeToStorage(ctx, url, storageClient)
		if err != nil {
			fmt.Fprintf(out, "  Error: %v\n", err)
			continue
		}

		total += result.ArticleCount
		fmt.Fprintf(out, "  Articles: %d, Prefix: %s\n", result.ArticleCount, result.Prefix)
	}

	fmt.Fprintf(out, "\nTotal: %d articles written to storage\n", total)
	fmt.Fprintln(out, "Run 'newsrec ingest --prefix <prefix>' to index them")
	return nil
}

// runStoreWithIngest crawls on this goroutine and ingests each stored
// corpus on the ingestion engine's worker as soon as it is written.
func runStoreWithIngest(ctx context.Context, cmd *cobra.Command, cfg *config.Config, s *scraper.Scraper, storageClient *storage.Client, urls []string) error {
	out := cmd.OutOrStdout()

	esClient, err := newESClient(cfg)
	if err != nil {
		return err
	}
	engine := ingestion.New(storageClient, esClient)

	stored := make(chan events.CorpusStoredEvent)
	completed := engine.Run(ctx, stored)

	var (
		totalIndexed  int
		totalDuration time.Duration
		done          = make(chan struct{})
	)
	go func() {
		defer close(done)
		for event := range completed {
			if event.Err != nil {
				fmt.Fprintf(out, "  Ingest error (%s): %v\n", event.Prefix, event.Err)
				continue
			}
			totalIndexed += event.ArticlesIndexed
			totalDuration += event.Duration
			fmt.Fprintf(out, "  Indexed %s: %d articles in %v\n", event.Prefix, event.ArticlesIndexed, event.Duration)
			for _, e := range event.Errors {
				fmt.Fprintf(out, "  Warning: %s\n", e)
			}
		}
	}()

	totalArticles := 0
	for _, url := range urls {
		fmt.Fprintf(out, "Crawling: %s\n", url)

		result, err := s.ScrapeToStorage(ctx, url, storageClient)
		if err != nil {
			fmt.Fprintf(out, "  Error: %v\n", err)
			continue
		}

		totalArticles += result.ArticleCount
		fmt.Fprintf(out, "  Articles: %d, Prefix: %s\n", result.ArticleCount, result.Prefix)

		select {
		case stored <- events.CorpusStoredEvent{
			Bucket:       storageClient.Bucket(),
			Prefix:       result.Prefix,
			SourceURL:    result.SourceURL,
			ArticleCount: result.ArticleCount,
			Timestamp:    time.Now(),
		}:
		case <-ctx.Done():
		}
	}

	close(stored)
	<-done

	fmt.Fprintf(out, "\nTotal: %d articles crawled, %d indexed in %v\n",
		totalArticles, totalIndexed, totalDuration)
	return nil
}
