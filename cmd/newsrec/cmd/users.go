package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/mfenderov/newsrec/internal/users"
)

var usersCmd = &cobra.Command{
	Use:   "users",
	Short: "Manage registered users",
}

var usersCreateCmd = &cobra.Command{
	Use:   "create <username>",
	Short: "Register a new user",
	Args:  cobra.ExactArgs(1),
	RunE:  runUsersCreate,
}

var usersListCmd = &cobra.Command{
	Use:   "list",
	Short: "List registered users in creation order",
	Args:  cobra.NoArgs,
	RunE:  runUsersList,
}

func init() {
	rootCmd.AddCommand(usersCmd)
	usersCmd.AddCommand(usersCreateCmd, usersListCmd)
}

func openUsers(ctx context.Context) (*users.Store, error) {
	cfg := GetConfig()
	if err := os.MkdirAll(filepath.Dir(cfg.Users.Database), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create users directory: %w", err)
	}
	return users.Open(ctx, cfg.Users.Database)
}

func runUsersCreate(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store, err := openUsers(ctx)
	if err != nil {
		return err
	}
	defer store.Close()

	if err := store.Create(ctx, args[0]); err != nil {
		if errors.Is(err, users.ErrUserExists) {
			return fmt.Errorf("user %q already exists", args[0])
		}
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Created user %s\n", args[0])
	return nil
}

func runUsersList(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store, err := openUsers(ctx)
	if err != nil {
		return err
	}
	defer store.Close()

	names, err := store.List(ctx)
	if err != nil {
		return err
	}
	for _, name := range names {
		fmt.Fprintln(cmd.OutOrStdout(), name)
	}
	return nil
}
