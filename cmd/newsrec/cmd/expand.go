package cmd

import (
	"context"
	"fmt"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
)

var expandCmd = &cobra.Command{
	Use:   "expand <query>",
	Short: "Show the synonym expansion of a query",
	Long: `Print the query followed by its synonyms, joined with "|", exactly as
title search uses it.

Example:
  newsrec expand happy`,
	Args: cobra.MinimumNArgs(1),
	RunE: runExpand,
}

func init() {
	rootCmd.AddCommand(expandCmd)
}

func runExpand(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg := GetConfig()
	expander, closer, err := newExpander(ctx, &cfg)
	if err != nil {
		return err
	}
	defer closer.Close()

	fmt.Fprintln(cmd.OutOrStdout(), expander.Expand(ctx, strings.Join(args, " ")))
	return nil
}
