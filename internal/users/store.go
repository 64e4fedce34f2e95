// Package users keeps the registry of known user names in SQLite.
package users

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

var (
	// ErrUserExists is returned when creating a name that is taken.
	ErrUserExists = errors.New("user already exists")
	// ErrInvalidUsername is returned for blank names.
	ErrInvalidUsername = errors.New("invalid username")
	// ErrUserNotFound is returned when a session is requested for an
	// unregistered name.
	ErrUserNotFound = errors.New("user not found")
)

const schema = `
CREATE TABLE IF NOT EXISTS users (
	id         INTEGER PRIMARY KEY AUTOINCREMENT,
	username   TEXT NOT NULL UNIQUE,
	created_at TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS interactions (
	username   TEXT NOT NULL REFERENCES users(username) ON DELETE CASCADE,
	kind       TEXT NOT NULL,
	article_id TEXT NOT NULL,
	position   INTEGER NOT NULL,
	PRIMARY KEY (username, kind, article_id)
);
`

// Store is a SQLite-backed user registry.
type Store struct {
	db *sql.DB
}

// Open opens (creating if needed) the registry at path.
func Open(ctx context.Context, path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open users db: %w", err)
	}
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create users schema: %w", err)
	}
	return &Store{db: db}, nil
}

// Close releases the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Create registers a new user name.
func (s *Store) Create(ctx context.Context, username string) error {
	username = strings.TrimSpace(username)
	if username == "" {
		return ErrInvalidUsername
	}

	res, err := s.db.ExecContext(ctx,
		`INSERT INTO users (username, created_at) VALUES (?, ?)
		 ON CONFLICT(username) DO NOTHING`,
		username, time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", ErrUserExists, username)
	}
	return nil
}

// Exists reports whether username is registered.
func (s *Store) Exists(ctx context.Context, username string) (bool, error) {
	var n int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM users WHERE username = ?`, strings.TrimSpace(username)).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("failed to look up user: %w", err)
	}
	return n > 0, nil
}

// List returns every user name in creation order.
func (s *Store) List(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT username FROM users ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		names = append(names, name)
	}
	return names, rows.Err()
}
