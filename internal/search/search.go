// Package search filters a corpus by section and by title, widening the
// title query with synonyms.
package search

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/mfenderov/newsrec/internal/corpus"
	"github.com/mfenderov/newsrec/internal/expand"
	"github.com/mfenderov/newsrec/pkg/models"
)

// AllSections disables section filtering.
const AllSections = "All Sections"

// DefaultLimit is the number of matches returned when Query.Limit is unset.
const DefaultLimit = 5

// Query describes a title search.
type Query struct {
	Text    string
	Section string
	Limit   int
}

// Result holds the matches and the expanded pattern that produced them.
type Result struct {
	Pattern  string           `json:"pattern"`
	Total    int              `json:"total"`
	Articles []models.Article `json:"articles"`
}

// Searcher runs title searches against a corpus.
type Searcher struct {
	expander *expand.Expander
}

// New creates a searcher.
func New(expander *expand.Expander) *Searcher {
	if expander == nil {
		expander = expand.New(nil)
	}
	return &Searcher{expander: expander}
}

// Search returns articles in corpus order whose section matches and whose
// title contains any expanded term, case-insensitively. A blank query
// matches every title without consulting the thesaurus.
func (s *Searcher) Search(ctx context.Context, c *corpus.Corpus, q Query) (*Result, error) {
	limit := q.Limit
	if limit <= 0 {
		limit = DefaultLimit
	}

	var (
		pattern string
		re      *regexp.Regexp
	)
	if strings.TrimSpace(q.Text) != "" {
		terms := s.expander.Terms(ctx, q.Text)
		pattern = strings.Join(terms, expand.Separator)

		var err error
		re, err = compile(terms)
		if err != nil {
			return nil, err
		}
	}

	result := &Result{Pattern: pattern, Articles: []models.Article{}}
	for i := 0; i < c.Len(); i++ {
		a := c.At(i)
		if !sectionMatches(q.Section, a.Section) {
			continue
		}
		if re != nil && !re.MatchString(a.Title) {
			continue
		}
		result.Total++
		if len(result.Articles) < limit {
			result.Articles = append(result.Articles, a)
		}
	}
	return result, nil
}

func sectionMatches(want, got string) bool {
	return want == "" || want == AllSections || want == got
}

func compile(terms []string) (*regexp.Regexp, error) {
	quoted := make([]string, len(terms))
	for i, t := range terms {
		quoted[i] = regexp.QuoteMeta(t)
	}
	re, err := regexp.Compile("(?i)" + strings.Join(quoted, "|"))
	if err != nil {
		return nil, fmt.Errorf("failed to compile title pattern: %w", err)
	}
	return re, nil
}

// TitleIndex is an external title index, such as the Elasticsearch article
// index.
type TitleIndex interface {
	SearchTitles(ctx context.Context, terms []string, section string, limit int) ([]models.Article, int, error)
}

// SearchIndex runs the same expanded query against an external index. The
// index decides match semantics and ordering.
func (s *Searcher) SearchIndex(ctx context.Context, idx TitleIndex, q Query) (*Result, error) {
	limit := q.Limit
	if limit <= 0 {
		limit = DefaultLimit
	}

	var terms []string
	if strings.TrimSpace(q.Text) != "" {
		terms = s.expander.Terms(ctx, q.Text)
	}

	articles, total, err := idx.SearchTitles(ctx, terms, q.Section, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to search index: %w", err)
	}
	if articles == nil {
		articles = []models.Article{}
	}

	return &Result{
		Pattern:  strings.Join(terms, expand.Separator),
		Total:    total,
		Articles: articles,
	}, nil
}
