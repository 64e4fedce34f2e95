// Package corpus holds the ordered, immutable article collection the
// recommendation engine is built over.
package corpus

import (
	"crypto/sha256"
	"encoding/hex"
	"log/slog"
	"sort"
	"strings"

	"github.com/mfenderov/newsrec/pkg/models"
)

// Corpus is an ordered snapshot of articles. The position of an article in
// the corpus is its index in every vector and similarity row derived from it.
type Corpus struct {
	articles    []models.Article
	index       map[string]int
	sections    []string
	fingerprint string
}

// New builds a corpus from raw articles. Articles without body text are
// dropped, and only the first occurrence of a repeated ID is kept.
func New(raw []models.Article) *Corpus {
	c := &Corpus{
		articles: make([]models.Article, 0, len(raw)),
		index:    make(map[string]int, len(raw)),
	}

	dropped := 0
	sectionSet := make(map[string]struct{})
	for _, a := range raw {
		if strings.TrimSpace(a.BodyText) == "" {
			dropped++
			continue
		}
		if _, dup := c.index[a.ID]; dup {
			slog.Warn("duplicate article id, keeping first", "id", a.ID)
			continue
		}
		c.index[a.ID] = len(c.articles)
		c.articles = append(c.articles, a)
		if a.Section != "" {
			sectionSet[a.Section] = struct{}{}
		}
	}

	for s := range sectionSet {
		c.sections = append(c.sections, s)
	}
	sort.Strings(c.sections)

	c.fingerprint = fingerprint(c.articles)

	if dropped > 0 {
		slog.Debug("dropped articles without body text", "count", dropped)
	}
	return c
}

// fingerprint hashes ids and bodies in corpus order, so two corpora with the
// same shape but different content never share a key.
func fingerprint(articles []models.Article) string {
	h := sha256.New()
	for _, a := range articles {
		h.Write([]byte(a.ID))
		h.Write([]byte{0})
		h.Write([]byte(a.BodyText))
		h.Write([]byte{0x1e})
	}
	return hex.EncodeToString(h.Sum(nil))
}

// Len returns the number of articles.
func (c *Corpus) Len() int {
	return len(c.articles)
}

// At returns the article at index i.
func (c *Corpus) At(i int) models.Article {
	return c.articles[i]
}

// IndexOf returns the corpus index of the article with the given ID.
func (c *Corpus) IndexOf(id string) (int, bool) {
	i, ok := c.index[id]
	return i, ok
}

// Get returns the article with the given ID.
func (c *Corpus) Get(id string) (models.Article, bool) {
	i, ok := c.index[id]
	if !ok {
		return models.Article{}, false
	}
	return c.articles[i], true
}

// Articles returns a copy of the articles in corpus order.
func (c *Corpus) Articles() []models.Article {
	out := make([]models.Article, len(c.articles))
	copy(out, c.articles)
	return out
}

// Sections returns the distinct non-empty sections, sorted.
func (c *Corpus) Sections() []string {
	out := make([]string, len(c.sections))
	copy(out, c.sections)
	return out
}

// Fingerprint identifies the corpus content.
func (c *Corpus) Fingerprint() string {
	return c.fingerprint
}
