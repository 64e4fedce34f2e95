package cmd

import (
	"context"
	"fmt"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/mfenderov/newsrec/internal/search"
	"github.com/mfenderov/newsrec/internal/session"
)

var (
	searchSection string
	searchLimit   int
	searchFormat  string
	searchBackend string
	searchUser    string
)

var searchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Search article titles",
	Long: `Search article titles, widening the query with synonyms from the
configured thesaurus. Without a query every article in the section matches.

The local backend matches any expanded term as a case-insensitive substring
of the title. The elasticsearch backend runs one phrase query per term
through the index's english analyzer, so matches are stemmed and whole-word:
"rate" finds "Rates rise" but not "Separate".

Examples:
  # Titles matching "happy" or any of its synonyms
  newsrec search happy

  # Restrict to one section
  newsrec search election --section "Politics" --limit 10

  # Query the Elasticsearch index instead of the local corpus
  newsrec search rates --backend elasticsearch --format json

  # Flag articles alice has already read
  newsrec search election --user alice`,
	Args: cobra.MaximumNArgs(1),
	RunE: runSearch,
}

func init() {
	rootCmd.AddCommand(searchCmd)

	searchCmd.Flags().StringVar(&searchSection, "section", search.AllSections, "Section to search in")
	searchCmd.Flags().IntVar(&searchLimit, "limit", 0, "Maximum number of results (default from search.limit)")
	searchCmd.Flags().StringVar(&searchFormat, "format", "text", "Output format: text or json")
	searchCmd.Flags().StringVar(&searchBackend, "backend", "local", "Search backend: local (substring) or elasticsearch (stemmed phrase)")
	searchCmd.Flags().StringVarP(&searchUser, "user", "u", "", "Mark results this user has read")
}

func runSearch(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := checkFormat(searchFormat); err != nil {
		return err
	}

	cfg := GetConfig()
	q := search.Query{
		Text:    strings.Join(args, " "),
		Section: searchSection,
		Limit:   searchLimit,
	}
	if q.Limit == 0 {
		q.Limit = cfg.Search.Limit
	}

	expander, closer, err := newExpander(ctx, &cfg)
	if err != nil {
		return err
	}
	defer closer.Close()
	searcher := search.New(expander)

	var result *search.Result
	switch searchBackend {
	case "local":
		e, err := loadEngine(ctx, &cfg)
		if err != nil {
			return err
		}
		result, err = searcher.Search(ctx, e.Snapshot().Corpus, q)
		if err != nil {
			return err
		}
	case "elasticsearch":
		esClient, err := newESClient(&cfg)
		if err != nil {
			return err
		}
		result, err = searcher.SearchIndex(ctx, esClient, q)
		if err != nil {
			return fmt.Errorf("search failed: %w", err)
		}
	default:
		return fmt.Errorf("unknown backend %q, want local or elasticsearch", searchBackend)
	}

	out := cmd.OutOrStdout()
	if searchFormat == "json" {
		return writeJSON(out, result)
	}

	var sess *session.Session
	if searchUser != "" {
		store, s, err := openSession(ctx, searchUser)
		if err != nil {
			return err
		}
		store.Close()
		sess = s
	}

	if result.Pattern != "" {
		fmt.Fprintf(out, "Pattern: %s\n", result.Pattern)
	}
	if result.Total == 0 {
		fmt.Fprintln(out, "No results found.")
		return nil
	}
	fmt.Fprintf(out, "Showing %d of %d matches:\n\n", len(result.Articles), result.Total)
	for i, a := range result.Articles {
		if sess != nil && sess.IsRead(a.ID) {
			fmt.Fprint(out, "[read] ")
		}
		writeArticle(out, i+1, a)
	}
	return nil
}
