package cmd

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/mfenderov/newsrec/internal/mcp"
	"github.com/mfenderov/newsrec/internal/search"
)

var serveIndex bool

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the MCP server",
	Long: `Start the MCP server for article recommendation and search.

The server communicates via stdio and provides these tools:
  - recommend_articles: Articles most similar to a given article
  - search_articles: Title search with synonym expansion
  - get_article: A single article by ID
  - expand_query: The synonym expansion of a query
  - mark_read, rate_article: Record a user's reads and feedback
  - recommend_for_user: Recommendations seeded by a user's read history
  - user_history: A user's read articles and feedback counts

With --index, search_articles and get_article use Elasticsearch. Index
searches run phrase queries through the english analyzer, so titles match
stemmed whole words rather than substrings.

Example:
  newsrec serve
  newsrec serve --index`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().BoolVar(&serveIndex, "index", false, "Answer search_articles (stemmed phrase match) and get_article from Elasticsearch")
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	cfg := GetConfig()

	e, err := loadEngine(ctx, &cfg)
	if err != nil {
		return err
	}

	expander, closer, err := newExpander(ctx, &cfg)
	if err != nil {
		return err
	}
	defer closer.Close()

	store, err := openUsers(ctx)
	if err != nil {
		return err
	}
	defer store.Close()

	deps := mcp.Deps{
		Engine:   e,
		Expander: expander,
		Searcher: search.New(expander),
		Sessions: store,
	}
	if serveIndex {
		esClient, err := newESClient(&cfg)
		if err != nil {
			return err
		}
		if !esClient.Ping(ctx) {
			slog.Warn("elasticsearch not reachable, searches will fail until it is", "index", esClient.Index())
		}
		deps.Index = esClient
		deps.Articles = esClient
	}

	server, err := mcp.NewServer(mcp.Config{
		Name:        cfg.MCP.Name,
		Version:     cfg.MCP.Version,
		DefaultK:    cfg.Engine.DefaultK,
		SearchLimit: cfg.Search.Limit,
	}, deps)
	if err != nil {
		return fmt.Errorf("failed to create MCP server: %w", err)
	}

	fmt.Fprintln(cmd.ErrOrStderr(), "Starting MCP server...")

	return server.ServeStdio()
}
