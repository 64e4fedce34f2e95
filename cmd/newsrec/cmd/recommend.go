package cmd

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/mfenderov/newsrec/internal/session"
)

var (
	recommendK      int
	recommendFormat string
	recommendUser   string
)

var recommendCmd = &cobra.Command{
	Use:   "recommend [article-id]...",
	Short: "Recommend articles similar to the given ones",
	Long: `Recommend the articles whose body text is most similar to the given
article. With several ids the recommendations for each are concatenated in
the order given, skipping duplicates and the given articles themselves.
With --user the seeds are the user's stored read history.

Examples:
  # Five most similar articles
  newsrec recommend world/2024/jan/02/some-story

  # History of two read articles, three suggestions each
  newsrec recommend id-one id-two --k 3

  # JSON output with scores
  newsrec recommend id-one --format json

  # From everything alice has read
  newsrec recommend --user alice`,
	Args: func(cmd *cobra.Command, args []string) error {
		if recommendUser != "" {
			return cobra.NoArgs(cmd, args)
		}
		return cobra.MinimumNArgs(1)(cmd, args)
	},
	RunE: runRecommend,
}

func init() {
	rootCmd.AddCommand(recommendCmd)

	recommendCmd.Flags().IntVarP(&recommendK, "k", "k", 0, "Recommendations per article (default from engine.default_k)")
	recommendCmd.Flags().StringVar(&recommendFormat, "format", "text", "Output format: text or json")
	recommendCmd.Flags().StringVarP(&recommendUser, "user", "u", "", "Seed from this user's read history")
}

type scoredOutput struct {
	ID      string  `json:"id"`
	Title   string  `json:"title"`
	Section string  `json:"section,omitempty"`
	URL     string  `json:"url,omitempty"`
	Score   float64 `json:"score"`
}

func runRecommend(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := checkFormat(recommendFormat); err != nil {
		return err
	}

	cfg := GetConfig()
	k := recommendK
	if !cmd.Flags().Changed("k") {
		k = cfg.Engine.DefaultK
	}

	e, err := loadEngine(ctx, &cfg)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()

	if recommendUser == "" && len(args) == 1 {
		scored, err := e.Recommend(args[0], k)
		if err != nil {
			return err
		}

		if recommendFormat == "json" {
			rows := make([]scoredOutput, len(scored))
			for i, s := range scored {
				rows[i] = scoredOutput{ID: s.Article.ID, Title: s.Article.Title, Section: s.Article.Section, URL: s.Article.URL, Score: s.Score}
			}
			return writeJSON(out, rows)
		}

		if len(scored) == 0 {
			fmt.Fprintln(out, "No recommendations.")
			return nil
		}
		fmt.Fprintf(out, "Articles similar to %s:\n\n", args[0])
		for i, s := range scored {
			fmt.Fprintf(out, "[%.3f] ", s.Score)
			writeArticle(out, i+1, s.Article)
		}
		return nil
	}

	history := session.New("")
	if recommendUser != "" {
		store, sess, err := openSession(ctx, recommendUser)
		if err != nil {
			return err
		}
		store.Close()
		history = sess
		if len(history.ReadIDs) == 0 {
			fmt.Fprintf(out, "%s has not read any articles yet. Mark some with `newsrec read`.\n", recommendUser)
			return nil
		}
	}
	for _, id := range args {
		history.MarkRead(id)
	}

	recs, err := history.Recommendations(e.Snapshot().Recommender, k)
	if err != nil {
		return err
	}

	if recommendFormat == "json" {
		return writeJSON(out, recs)
	}
	if len(recs) == 0 {
		fmt.Fprintln(out, "No recommendations.")
		return nil
	}
	fmt.Fprintf(out, "Recommended from %d read articles:\n\n", len(history.ReadIDs))
	for i, a := range recs {
		writeArticle(out, i+1, a)
	}
	return nil
}
