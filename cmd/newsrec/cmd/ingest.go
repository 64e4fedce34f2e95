package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/mfenderov/newsrec/internal/ingestion"
)

var (
	ingestPrefix string
	ingestList   bool
	ingestFresh  bool
)

var ingestCmd = &cobra.Command{
	Use:   "ingest",
	Short: "Index a stored corpus into Elasticsearch",
	Long: `Index a corpus previously written to object storage into
Elasticsearch, for example one fetched with --no-ingest.

Examples:
  # List stored corpora
  newsrec ingest --list

  # Ingest one corpus by prefix
  newsrec ingest --prefix corpora/news.example.com/2024-12-04T17-30-00-abc12345

  # Replace the index contents with one corpus
  newsrec ingest --prefix corpora/news.example.com/2024-12-04T17-30-00-abc12345 --recreate`,
	RunE: runIngest,
}

func init() {
	rootCmd.AddCommand(ingestCmd)

	ingestCmd.Flags().StringVar(&ingestPrefix, "prefix", "", "Storage prefix to ingest")
	ingestCmd.Flags().BoolVar(&ingestList, "list", false, "List stored corpora instead of ingesting")
	ingestCmd.Flags().BoolVar(&ingestFresh, "recreate", false, "Delete the index before ingesting")
	ingestCmd.MarkFlagsOneRequired("prefix", "list")
}

func runIngest(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg := GetConfig()
	out := cmd.OutOrStdout()
	slog.Debug("ingest command starting", "prefix", ingestPrefix)

	storageClient, err := newStorageClient(&cfg)
	if err != nil {
		return err
	}

	if ingestList {
		prefixes, err := storageClient.ListCorpora(ctx)
		if err != nil {
			return err
		}
		for _, p := range prefixes {
			meta, err := storageClient.GetMetadata(ctx, p)
			if err != nil {
				fmt.Fprintf(out, "%s\t(no metadata: %v)\n", p, err)
				continue
			}
			fmt.Fprintf(out, "%s\t%d articles\t%s\n", p, meta.ArticleCount, meta.SourceURL)
		}
		return nil
	}

	esClient, err := newESClient(&cfg)
	if err != nil {
		return err
	}

	engine := ingestion.New(storageClient, esClient)

	fmt.Fprintf(out, "Ingesting: %s\n", ingestPrefix)

	ingest := engine.Ingest
	if ingestFresh {
		ingest = engine.Reindex
	}
	result, err := ingest(ctx, ingestPrefix)
	if err != nil {
		return fmt.Errorf("ingestion failed: %w", err)
	}

	fmt.Fprintf(out, "\nIngestion complete:\n")
	fmt.Fprintf(out, "  Articles indexed: %d\n", result.ArticlesIndexed)
	fmt.Fprintf(out, "  Duration: %v\n", result.Duration)

	if len(result.Errors) > 0 {
		fmt.Fprintf(out, "  Warnings: %d\n", len(result.Errors))
		for _, e := range result.Errors {
			fmt.Fprintf(out, "    - %s\n", e)
		}
	}
	return nil
}
