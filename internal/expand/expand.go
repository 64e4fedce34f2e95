// Package expand widens free-text title searches with synonyms from a
// pluggable lexical database.
package expand

import (
	"context"
	"log/slog"
	"sort"
	"strings"
)

// Separator joins alternatives in an expanded pattern.
const Separator = "|"

// Thesaurus looks up synonyms of a single word.
type Thesaurus interface {
	Synonyms(ctx context.Context, word string) ([]string, error)
}

// Expander turns a query into a set of alternative match terms.
type Expander struct {
	thesaurus Thesaurus
}

// New creates an expander. A nil thesaurus yields no synonyms.
func New(th Thesaurus) *Expander {
	if th == nil {
		th = MapThesaurus(nil)
	}
	return &Expander{thesaurus: th}
}

// Terms returns the original query followed by the sorted synonyms of each
// of its words, deduplicated case-insensitively. Lookup failures are logged
// and skipped. A blank query yields nil; callers treat that as "match all".
func (e *Expander) Terms(ctx context.Context, query string) []string {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil
	}

	seen := map[string]struct{}{strings.ToLower(query): {}}
	var synonyms []string
	for _, word := range strings.Fields(query) {
		found, err := e.thesaurus.Synonyms(ctx, word)
		if err != nil {
			slog.Warn("synonym lookup failed", "word", word, "error", err)
			continue
		}
		for _, s := range found {
			s = strings.TrimSpace(strings.ReplaceAll(s, "_", " "))
			if s == "" {
				continue
			}
			key := strings.ToLower(s)
			if _, dup := seen[key]; dup {
				continue
			}
			seen[key] = struct{}{}
			synonyms = append(synonyms, s)
		}
	}

	sort.Strings(synonyms)
	return append([]string{query}, synonyms...)
}

// Expand returns Terms joined by Separator.
func (e *Expander) Expand(ctx context.Context, query string) string {
	return strings.Join(e.Terms(ctx, query), Separator)
}
