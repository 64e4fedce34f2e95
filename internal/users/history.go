package users

import (
	"context"
	"fmt"
	"strings"

	"github.com/mfenderov/newsrec/internal/session"
)

const (
	kindRead     = "read"
	kindLiked    = "liked"
	kindDisliked = "disliked"
)

// LoadSession returns the stored read and feedback history of username.
func (s *Store) LoadSession(ctx context.Context, username string) (*session.Session, error) {
	username = strings.TrimSpace(username)
	exists, err := s.Exists(ctx, username)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, fmt.Errorf("%w: %s", ErrUserNotFound, username)
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT kind, article_id FROM interactions WHERE username = ? ORDER BY position`,
		username)
	if err != nil {
		return nil, fmt.Errorf("failed to load history: %w", err)
	}
	defer rows.Close()

	sess := session.New(username)
	for rows.Next() {
		var kind, id string
		if err := rows.Scan(&kind, &id); err != nil {
			return nil, fmt.Errorf("failed to scan history: %w", err)
		}
		switch kind {
		case kindRead:
			sess.MarkRead(id)
		case kindLiked:
			sess.Like(id)
		case kindDisliked:
			sess.Dislike(id)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to load history: %w", err)
	}
	return sess, nil
}

// SaveSession replaces the stored history of sess.Username with the
// session's lists.
func (s *Store) SaveSession(ctx context.Context, sess *session.Session) error {
	exists, err := s.Exists(ctx, sess.Username)
	if err != nil {
		return err
	}
	if !exists {
		return fmt.Errorf("%w: %s", ErrUserNotFound, sess.Username)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`DELETE FROM interactions WHERE username = ?`, sess.Username); err != nil {
		return fmt.Errorf("failed to clear history: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO interactions (username, kind, article_id, position) VALUES (?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare history insert: %w", err)
	}
	defer stmt.Close()

	pos := 0
	for _, list := range []struct {
		kind string
		ids  []string
	}{
		{kindRead, sess.ReadIDs},
		{kindLiked, sess.LikedIDs},
		{kindDisliked, sess.DislikedIDs},
	} {
		for _, id := range list.ids {
			if _, err := stmt.ExecContext(ctx, sess.Username, list.kind, id, pos); err != nil {
				return fmt.Errorf("failed to save %s article %s: %w", list.kind, id, err)
			}
			pos++
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit history: %w", err)
	}
	return nil
}
