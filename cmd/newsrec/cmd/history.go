package cmd

import (
	"context"
	"errors"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/mfenderov/newsrec/internal/config"
	"github.com/mfenderov/newsrec/internal/corpus"
	"github.com/mfenderov/newsrec/internal/session"
	"github.com/mfenderov/newsrec/internal/users"
)

type interaction string

const (
	actionRead    interaction = "read"
	actionLike    interaction = "like"
	actionDislike interaction = "dislike"
)

var (
	historyUser   string
	historyFormat string
	resetAll      bool
)

var readCmd = &cobra.Command{
	Use:   "read <article-id>...",
	Short: "Mark articles as read for a user",
	Args:  cobra.MinimumNArgs(1),
	RunE:  interactionRunner(actionRead),
}

var likeCmd = &cobra.Command{
	Use:   "like <article-id>...",
	Short: "Record that a user liked articles",
	Args:  cobra.MinimumNArgs(1),
	RunE:  interactionRunner(actionLike),
}

var dislikeCmd = &cobra.Command{
	Use:   "dislike <article-id>...",
	Short: "Record that a user disliked articles",
	Args:  cobra.MinimumNArgs(1),
	RunE:  interactionRunner(actionDislike),
}

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List the articles a user has read",
	Args:  cobra.NoArgs,
	RunE:  runHistory,
}

var feedbackCmd = &cobra.Command{
	Use:   "feedback",
	Short: "Show like and dislike counts for a user",
	Args:  cobra.NoArgs,
	RunE:  runFeedback,
}

var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Clear a user's read history",
	Long: `Clear the read history of a user so recommendations start over.
Likes and dislikes are kept unless --all is given.`,
	Args: cobra.NoArgs,
	RunE: runReset,
}

func init() {
	for _, c := range []*cobra.Command{readCmd, likeCmd, dislikeCmd, historyCmd, feedbackCmd, resetCmd} {
		c.Flags().StringVarP(&historyUser, "user", "u", "", "Registered user name")
		c.MarkFlagRequired("user")
		rootCmd.AddCommand(c)
	}
	historyCmd.Flags().StringVar(&historyFormat, "format", "text", "Output format: text or json")
	feedbackCmd.Flags().StringVar(&historyFormat, "format", "text", "Output format: text or json")
	resetCmd.Flags().BoolVar(&resetAll, "all", false, "Also clear likes and dislikes")
}

func loadCorpus(ctx context.Context, cfg *config.Config) (*corpus.Corpus, error) {
	articles, err := loadArticles(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return corpus.New(articles), nil
}

// record applies action to every id for username and persists the result.
// Ids missing from c are rejected before anything is written.
func record(ctx context.Context, store *users.Store, c *corpus.Corpus, username string, action interaction, ids []string) (int, error) {
	for _, id := range ids {
		if _, ok := c.Get(id); !ok {
			return 0, fmt.Errorf("article %q not found", id)
		}
	}

	sess, err := store.LoadSession(ctx, username)
	if err != nil {
		return 0, err
	}

	added := 0
	for _, id := range ids {
		var ok bool
		switch action {
		case actionRead:
			ok = sess.MarkRead(id)
		case actionLike:
			ok = sess.Like(id)
		case actionDislike:
			ok = sess.Dislike(id)
		default:
			return 0, fmt.Errorf("unknown action %q", action)
		}
		if ok {
			added++
		}
	}

	if err := store.SaveSession(ctx, sess); err != nil {
		return 0, err
	}
	return added, nil
}

func interactionRunner(action interaction) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		cfg := GetConfig()
		c, err := loadCorpus(ctx, &cfg)
		if err != nil {
			return err
		}

		store, err := openUsers(ctx)
		if err != nil {
			return err
		}
		defer store.Close()

		added, err := record(ctx, store, c, historyUser, action, args)
		if err != nil {
			return userError(err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Recorded %s for %d of %d articles\n", action, added, len(args))
		return nil
	}
}

func openSession(ctx context.Context, username string) (*users.Store, *session.Session, error) {
	store, err := openUsers(ctx)
	if err != nil {
		return nil, nil, err
	}
	sess, err := store.LoadSession(ctx, username)
	if err != nil {
		store.Close()
		return nil, nil, userError(err)
	}
	return store, sess, nil
}

func userError(err error) error {
	if errors.Is(err, users.ErrUserNotFound) {
		return fmt.Errorf("%w (create it with `newsrec users create`)", err)
	}
	return err
}

func runHistory(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := checkFormat(historyFormat); err != nil {
		return err
	}

	cfg := GetConfig()
	c, err := loadCorpus(ctx, &cfg)
	if err != nil {
		return err
	}

	store, sess, err := openSession(ctx, historyUser)
	if err != nil {
		return err
	}
	defer store.Close()

	read := sess.ReadArticles(c)
	out := cmd.OutOrStdout()
	if historyFormat == "json" {
		return writeJSON(out, read)
	}
	if len(read) == 0 {
		fmt.Fprintf(out, "%s has not read any articles yet.\n", sess.Username)
		return nil
	}
	fmt.Fprintf(out, "Articles read by %s:\n\n", sess.Username)
	for i, a := range read {
		writeArticle(out, i+1, a)
	}
	return nil
}

func runFeedback(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := checkFormat(historyFormat); err != nil {
		return err
	}

	store, sess, err := openSession(ctx, historyUser)
	if err != nil {
		return err
	}
	defer store.Close()

	stats := sess.Stats()
	out := cmd.OutOrStdout()
	if historyFormat == "json" {
		return writeJSON(out, struct {
			session.Stats
			Read      int     `json:"read"`
			LikeShare float64 `json:"like_share"`
		}{stats, len(sess.ReadIDs), stats.LikeShare()})
	}

	fmt.Fprintf(out, "User:     %s\n", sess.Username)
	fmt.Fprintf(out, "Read:     %d\n", len(sess.ReadIDs))
	fmt.Fprintf(out, "Likes:    %d\n", stats.Likes)
	fmt.Fprintf(out, "Dislikes: %d\n", stats.Dislikes)
	if stats.Total() > 0 {
		fmt.Fprintf(out, "Liked:    %.0f%%\n", stats.LikeShare()*100)
	}
	return nil
}

func runReset(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store, sess, err := openSession(ctx, historyUser)
	if err != nil {
		return err
	}
	defer store.Close()

	if resetAll {
		sess.ResetAll()
	} else {
		sess.Reset()
	}
	if err := store.SaveSession(ctx, sess); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Reset history for %s\n", sess.Username)
	return nil
}
