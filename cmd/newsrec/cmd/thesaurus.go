package cmd

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/mfenderov/newsrec/internal/expand"
)

var thesaurusCmd = &cobra.Command{
	Use:   "thesaurus",
	Short: "Manage the synonym database",
}

var thesaurusImportCmd = &cobra.Command{
	Use:   "import <file.yaml>",
	Short: "Import a YAML thesaurus into the synonym database",
	Long: `Import a YAML file of the form

  happy: [glad, felicitous]
  election: [vote, poll]

into the SQLite database at thesaurus.database.`,
	Args: cobra.ExactArgs(1),
	RunE: runThesaurusImport,
}

func init() {
	rootCmd.AddCommand(thesaurusCmd)
	thesaurusCmd.AddCommand(thesaurusImportCmd)
}

func runThesaurusImport(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg := GetConfig()
	if cfg.Thesaurus.Database == "" {
		return fmt.Errorf("thesaurus.database is not configured")
	}

	m, err := expand.LoadYAMLFile(args[0])
	if err != nil {
		return err
	}

	db, err := expand.OpenSQLite(ctx, cfg.Thesaurus.Database)
	if err != nil {
		return err
	}
	defer db.Close()

	n, err := db.Import(ctx, m)
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Imported %d entries into %s\n", n, cfg.Thesaurus.Database)
	return nil
}
