// Package recommend ranks corpus articles by similarity to a seed article.
package recommend

import (
	"cmp"
	"errors"
	"fmt"
	"slices"

	"github.com/mfenderov/newsrec/internal/corpus"
	"github.com/mfenderov/newsrec/internal/similarity"
	"github.com/mfenderov/newsrec/pkg/models"
)

// DefaultK is the number of recommendations returned when the caller has no
// preference.
const DefaultK = 5

// ErrArticleNotFound matches any *ArticleNotFoundError.
var ErrArticleNotFound = errors.New("article not found")

// ArticleNotFoundError reports a seed ID absent from the corpus.
type ArticleNotFoundError struct {
	ID string
}

func (e *ArticleNotFoundError) Error() string {
	return fmt.Sprintf("article not found: %s", e.ID)
}

// Is makes errors.Is(err, ErrArticleNotFound) hold.
func (e *ArticleNotFoundError) Is(target error) bool {
	return target == ErrArticleNotFound
}

// Scored is a recommended article with its similarity to the seed.
type Scored struct {
	Article models.Article `json:"article"`
	Index   int            `json:"index"`
	Score   float64        `json:"score"`
}

// Recommender answers single-seed queries over one corpus.
type Recommender struct {
	corpus *corpus.Corpus
	cache  *similarity.Cache
}

// New creates a recommender. The cache is shared so the similarity matrix
// is built at most once per corpus snapshot.
func New(c *corpus.Corpus, cache *similarity.Cache) *Recommender {
	return &Recommender{corpus: c, cache: cache}
}

// Corpus returns the corpus the recommender ranks.
func (r *Recommender) Corpus() *corpus.Corpus {
	return r.corpus
}

// Recommend returns up to k articles most similar to the seed, best first.
func (r *Recommender) Recommend(seedID string, k int) ([]models.Article, error) {
	scored, err := r.RecommendScored(seedID, k)
	if err != nil {
		return nil, err
	}

	out := make([]models.Article, len(scored))
	for i, s := range scored {
		out[i] = s.Article
	}
	return out, nil
}

// RecommendScored is Recommend with similarity scores. Results are ordered
// by score descending, then corpus index ascending. The seed itself is
// excluded by index, so an identical duplicate of the seed is still ranked.
func (r *Recommender) RecommendScored(seedID string, k int) ([]Scored, error) {
	seed, ok := r.corpus.IndexOf(seedID)
	if !ok {
		return nil, &ArticleNotFoundError{ID: seedID}
	}

	m, err := r.cache.Matrix(r.corpus)
	if err != nil {
		return nil, err
	}

	if k <= 0 {
		return []Scored{}, nil
	}

	row := m.Row(seed)
	candidates := make([]Scored, 0, len(row)-1)
	for j, score := range row {
		if j == seed {
			continue
		}
		candidates = append(candidates, Scored{Index: j, Score: score})
	}

	slices.SortFunc(candidates, func(a, b Scored) int {
		if c := cmp.Compare(b.Score, a.Score); c != 0 {
			return c
		}
		return cmp.Compare(a.Index, b.Index)
	})

	if len(candidates) > k {
		candidates = candidates[:k]
	}
	for i := range candidates {
		candidates[i].Article = r.corpus.At(candidates[i].Index)
	}
	return candidates, nil
}
