package cmd

import (
	"context"
	"fmt"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/mfenderov/newsrec/internal/vectorize"
)

var statsCmd = &cobra.Command{
	Use:   "stats [term]...",
	Short: "Show corpus and model statistics",
	Long: `Show corpus and model statistics. Given terms, also print the inverse
document frequency of each: rarer terms weigh more in similarity.

Example:
  newsrec stats election budget`,
	RunE: runStats,
}

type termWeight struct {
	Term  string
	IDF   float64
	Known bool
}

func termWeights(w *vectorize.WeightMatrix, terms []string) []termWeight {
	out := make([]termWeight, len(terms))
	for i, term := range terms {
		term = strings.ToLower(strings.TrimSpace(term))
		out[i].Term = term
		if j, ok := w.TermIndex(term); ok {
			out[i].IDF = w.IDF(j)
			out[i].Known = true
		}
	}
	return out
}

func init() {
	rootCmd.AddCommand(statsCmd)
}

func runStats(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg := GetConfig()
	e, err := loadEngine(ctx, &cfg)
	if err != nil {
		return err
	}

	snap := e.Snapshot()
	entry, err := snap.Cache.Get(snap.Corpus)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Articles:    %d\n", snap.Corpus.Len())
	fmt.Fprintf(out, "Vocabulary:  %d terms\n", len(entry.Weights.Vocabulary()))
	fmt.Fprintf(out, "Sections:    %d\n", len(snap.Corpus.Sections()))
	for _, s := range snap.Corpus.Sections() {
		fmt.Fprintf(out, "  - %s\n", s)
	}
	fmt.Fprintf(out, "Fingerprint: %s\n", snap.Corpus.Fingerprint()[:16])
	fmt.Fprintf(out, "Loaded:      %s\n", snap.LoadedAt.Format("2006-01-02 15:04:05"))

	if len(args) > 0 {
		fmt.Fprintln(out, "Terms:")
		for _, tw := range termWeights(entry.Weights, args) {
			if !tw.Known {
				fmt.Fprintf(out, "  %-20s not in vocabulary\n", tw.Term)
				continue
			}
			fmt.Fprintf(out, "  %-20s idf %.3f\n", tw.Term, tw.IDF)
		}
	}
	return nil
}
