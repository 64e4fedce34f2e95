package expand

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"strings"

	_ "modernc.org/sqlite"
)

const lemmaSchema = `
CREATE TABLE IF NOT EXISTS lemmas (
	synset TEXT NOT NULL,
	lemma  TEXT NOT NULL,
	PRIMARY KEY (synset, lemma)
);
CREATE INDEX IF NOT EXISTS idx_lemmas_lemma ON lemmas(lemma);
`

// SQLiteThesaurus answers lookups from a WordNet-style table of synsets:
// the synonyms of a word are every lemma sharing a synset with it.
type SQLiteThesaurus struct {
	db *sql.DB
}

// OpenSQLite opens (creating if needed) a lemma database at path.
func OpenSQLite(ctx context.Context, path string) (*SQLiteThesaurus, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open thesaurus db: %w", err)
	}
	if _, err := db.ExecContext(ctx, lemmaSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create thesaurus schema: %w", err)
	}
	return &SQLiteThesaurus{db: db}, nil
}

// Close releases the database.
func (s *SQLiteThesaurus) Close() error {
	return s.db.Close()
}

// Synonyms implements Thesaurus. The word itself is included when it
// belongs to a synset, as lexical databases list it among the lemmas.
func (s *SQLiteThesaurus) Synonyms(ctx context.Context, word string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT DISTINCT other.lemma
		FROM lemmas AS self
		JOIN lemmas AS other ON other.synset = self.synset
		WHERE self.lemma = ?
		ORDER BY other.lemma`, strings.ToLower(word))
	if err != nil {
		return nil, fmt.Errorf("synonym query failed: %w", err)
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var lemma string
		if err := rows.Scan(&lemma); err != nil {
			return nil, fmt.Errorf("failed to scan lemma: %w", err)
		}
		out = append(out, lemma)
	}
	return out, rows.Err()
}

// AddSynset stores lemmas as members of one synset.
func (s *SQLiteThesaurus) AddSynset(ctx context.Context, synset string, lemmas ...string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	for _, lemma := range lemmas {
		lemma = strings.ToLower(strings.TrimSpace(lemma))
		if lemma == "" {
			continue
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT OR IGNORE INTO lemmas (synset, lemma) VALUES (?, ?)`, synset, lemma); err != nil {
			return fmt.Errorf("failed to insert lemma %q: %w", lemma, err)
		}
	}
	return tx.Commit()
}

// Import stores every headword of m with its synonyms as one synset named
// after the headword. Returns the number of synsets written.
func (s *SQLiteThesaurus) Import(ctx context.Context, m MapThesaurus) (int, error) {
	words := make([]string, 0, len(m))
	for w := range m {
		words = append(words, w)
	}
	sort.Strings(words)

	for _, w := range words {
		lemmas := append([]string{w}, m[w]...)
		if err := s.AddSynset(ctx, "yaml:"+w, lemmas...); err != nil {
			return 0, err
		}
	}
	return len(words), nil
}
