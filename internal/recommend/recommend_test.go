package recommend

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mfenderov/newsrec/internal/analysis"
	"github.com/mfenderov/newsrec/internal/corpus"
	"github.com/mfenderov/newsrec/internal/similarity"
	"github.com/mfenderov/newsrec/internal/vectorize"
	"github.com/mfenderov/newsrec/pkg/models"
)

func newRecommender(t *testing.T, articles []models.Article) *Recommender {
	t.Helper()
	stop, err := analysis.EnglishStopWords()
	require.NoError(t, err)
	return New(corpus.New(articles), similarity.NewCache(stop))
}

func ids(articles []models.Article) []string {
	out := make([]string, len(articles))
	for i, a := range articles {
		out[i] = a.ID
	}
	return out
}

var newsArticles = []models.Article{
	{ID: "1", BodyText: "cats and dogs are pets"},
	{ID: "2", BodyText: "dogs are loyal pets"},
	{ID: "3", BodyText: "stock markets rose today"},
	{ID: "4", BodyText: "markets fell as stock traders panicked"},
	{ID: "5", BodyText: "the league striker scored a late goal"},
	{ID: "6", BodyText: "pets need vets and cats need care"},
}

func TestRecommend_SharedVocabularyRanksFirst(t *testing.T) {
	r := newRecommender(t, newsArticles[:3])

	got, err := r.Recommend("1", 2)
	require.NoError(t, err)
	assert.Equal(t, []string{"2", "3"}, ids(got))
}

func TestRecommend_NeverIncludesSeed(t *testing.T) {
	r := newRecommender(t, newsArticles)

	for _, a := range newsArticles {
		got, err := r.Recommend(a.ID, len(newsArticles))
		require.NoError(t, err)
		assert.NotContains(t, ids(got), a.ID)
	}
}

func TestRecommend_LargeKCoversEveryOtherArticle(t *testing.T) {
	r := newRecommender(t, newsArticles)
	n := len(newsArticles)

	for _, k := range []int{n - 1, n, n + 10} {
		got, err := r.Recommend("3", k)
		require.NoError(t, err)
		require.Len(t, got, n-1, "k=%d", k)

		seen := make(map[string]bool)
		for _, a := range got {
			assert.False(t, seen[a.ID], "duplicate %s", a.ID)
			seen[a.ID] = true
		}
		for _, a := range newsArticles {
			if a.ID != "3" {
				assert.True(t, seen[a.ID], "missing %s for k=%d", a.ID, k)
			}
		}
	}
}

func TestRecommend_LimitsToK(t *testing.T) {
	r := newRecommender(t, newsArticles)

	got, err := r.Recommend("1", 2)
	require.NoError(t, err)
	assert.Len(t, got, 2)

	got, err = r.Recommend("1", DefaultK)
	require.NoError(t, err)
	assert.Len(t, got, DefaultK)
}

func TestRecommend_NonPositiveK(t *testing.T) {
	r := newRecommender(t, newsArticles)

	for _, k := range []int{0, -3} {
		got, err := r.Recommend("1", k)
		require.NoError(t, err)
		assert.Empty(t, got)
	}
}

func TestRecommend_Idempotent(t *testing.T) {
	r := newRecommender(t, newsArticles)

	first, err := r.RecommendScored("6", 4)
	require.NoError(t, err)
	second, err := r.RecommendScored("6", 4)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, 1, r.cache.Builds())
}

func TestRecommend_NotFound(t *testing.T) {
	r := newRecommender(t, newsArticles)

	for _, id := range []string{"", "missing", "10"} {
		_, err := r.Recommend(id, 3)
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrArticleNotFound))

		var nf *ArticleNotFoundError
		require.ErrorAs(t, err, &nf)
		assert.Equal(t, id, nf.ID)
	}
}

func TestRecommend_DroppedArticleIsNotFound(t *testing.T) {
	r := newRecommender(t, []models.Article{
		{ID: "1", BodyText: "dogs"},
		{ID: "2", BodyText: ""},
	})

	_, err := r.Recommend("2", 1)
	assert.ErrorIs(t, err, ErrArticleNotFound)
}

func TestRecommend_DuplicateContentStillRecommended(t *testing.T) {
	r := newRecommender(t, []models.Article{
		{ID: "orig", BodyText: "floods hit coastal towns"},
		{ID: "copy", BodyText: "floods hit coastal towns"},
		{ID: "other", BodyText: "parliament passes budget"},
	})

	got, err := r.RecommendScored("copy", 2)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "orig", got[0].Article.ID)
	assert.InDelta(t, 1.0, got[0].Score, 1e-9)
	assert.Equal(t, "other", got[1].Article.ID)
}

func TestRecommend_TiesBrokenByCorpusIndex(t *testing.T) {
	var articles []models.Article
	articles = append(articles, models.Article{ID: "seed", BodyText: "volcano"})
	for i := 0; i < 6; i++ {
		articles = append(articles, models.Article{ID: fmt.Sprintf("z%d", i), BodyText: fmt.Sprintf("unrelated%c", 'a'+i)})
	}
	r := newRecommender(t, articles)

	got, err := r.RecommendScored("seed", 6)
	require.NoError(t, err)
	for i, s := range got {
		assert.Zero(t, s.Score)
		assert.Equal(t, i+1, s.Index)
	}
}

func TestRecommend_ScoresDescending(t *testing.T) {
	r := newRecommender(t, newsArticles)

	got, err := r.RecommendScored("4", 5)
	require.NoError(t, err)
	for i := 1; i < len(got); i++ {
		prev, cur := got[i-1], got[i]
		assert.True(t, prev.Score > cur.Score || (prev.Score == cur.Score && prev.Index < cur.Index),
			"order violated at %d: %+v then %+v", i, prev, cur)
	}
}

func TestRecommend_PropagatesVocabularyError(t *testing.T) {
	r := New(corpus.New([]models.Article{{ID: "1", BodyText: "the and"}}), similarity.NewCache(analysis.NewStopWords("the", "and")))

	_, err := r.Recommend("1", 1)
	assert.ErrorIs(t, err, vectorize.ErrEmptyVocabulary)
}
