package expand

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	lru "github.com/hashicorp/golang-lru/v2"
	"gopkg.in/yaml.v3"
)

// MapThesaurus is an in-memory word -> synonyms table. Keys are matched
// case-insensitively.
type MapThesaurus map[string][]string

// Synonyms implements Thesaurus.
func (m MapThesaurus) Synonyms(_ context.Context, word string) ([]string, error) {
	return m[strings.ToLower(word)], nil
}

// LoadYAML reads a thesaurus of the form "word: [synonym, ...]".
func LoadYAML(r io.Reader) (MapThesaurus, error) {
	var raw map[string][]string
	if err := yaml.NewDecoder(r).Decode(&raw); err != nil {
		if err == io.EOF {
			return MapThesaurus{}, nil
		}
		return nil, fmt.Errorf("failed to decode thesaurus: %w", err)
	}

	m := make(MapThesaurus, len(raw))
	for word, syns := range raw {
		key := strings.ToLower(strings.TrimSpace(word))
		m[key] = append(m[key], syns...)
	}
	return m, nil
}

// LoadYAMLFile reads a YAML thesaurus from disk.
func LoadYAMLFile(path string) (MapThesaurus, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open thesaurus: %w", err)
	}
	defer f.Close()

	return LoadYAML(f)
}

// CachedThesaurus memoizes lookups of another thesaurus in an LRU.
// Failed lookups are not cached.
type CachedThesaurus struct {
	next  Thesaurus
	cache *lru.Cache[string, []string]
}

// NewCached wraps next with an LRU holding up to size words.
func NewCached(next Thesaurus, size int) (*CachedThesaurus, error) {
	cache, err := lru.New[string, []string](size)
	if err != nil {
		return nil, fmt.Errorf("failed to create synonym cache: %w", err)
	}
	return &CachedThesaurus{next: next, cache: cache}, nil
}

// Synonyms implements Thesaurus.
func (c *CachedThesaurus) Synonyms(ctx context.Context, word string) ([]string, error) {
	key := strings.ToLower(word)
	if syns, ok := c.cache.Get(key); ok {
		return syns, nil
	}

	syns, err := c.next.Synonyms(ctx, word)
	if err != nil {
		return nil, err
	}
	c.cache.Add(key, syns)
	return syns, nil
}
