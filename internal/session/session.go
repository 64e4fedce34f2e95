// Package session tracks what one user has read and rated, and turns the
// read history into recommendations.
package session

import (
	"errors"
	"log/slog"
	"slices"

	"github.com/mfenderov/newsrec/internal/corpus"
	"github.com/mfenderov/newsrec/internal/recommend"
	"github.com/mfenderov/newsrec/pkg/models"
)

// Recommender is the single-seed engine a session draws from.
type Recommender interface {
	Recommend(seedID string, k int) ([]models.Article, error)
}

// Session is the interaction state of one signed-in user. Each list keeps
// first-seen order and holds no duplicates.
type Session struct {
	Username    string   `json:"username"`
	ReadIDs     []string `json:"read_ids"`
	LikedIDs    []string `json:"liked_ids"`
	DislikedIDs []string `json:"disliked_ids"`
}

// Stats summarizes feedback given during the session.
type Stats struct {
	Likes    int `json:"likes"`
	Dislikes int `json:"dislikes"`
}

// Total returns the number of ratings.
func (s Stats) Total() int {
	return s.Likes + s.Dislikes
}

// LikeShare returns the fraction of ratings that were likes, or 0 with no
// ratings.
func (s Stats) LikeShare() float64 {
	if s.Total() == 0 {
		return 0
	}
	return float64(s.Likes) / float64(s.Total())
}

// New starts an empty session for username.
func New(username string) *Session {
	return &Session{Username: username}
}

// MarkRead records id as read. Returns false if it already was.
func (s *Session) MarkRead(id string) bool {
	return add(&s.ReadIDs, id)
}

// Like records positive feedback on id.
func (s *Session) Like(id string) bool {
	return add(&s.LikedIDs, id)
}

// Dislike records negative feedback on id.
func (s *Session) Dislike(id string) bool {
	return add(&s.DislikedIDs, id)
}

// IsRead reports whether id has been read.
func (s *Session) IsRead(id string) bool {
	return slices.Contains(s.ReadIDs, id)
}

// Reset clears the read history. Feedback is kept.
func (s *Session) Reset() {
	s.ReadIDs = nil
}

// ResetAll clears read history and feedback.
func (s *Session) ResetAll() {
	s.ReadIDs = nil
	s.LikedIDs = nil
	s.DislikedIDs = nil
}

// Stats returns like and dislike counts.
func (s *Session) Stats() Stats {
	return Stats{Likes: len(s.LikedIDs), Dislikes: len(s.DislikedIDs)}
}

// ReadArticles returns the read articles present in c, in read order.
func (s *Session) ReadArticles(c *corpus.Corpus) []models.Article {
	out := make([]models.Article, 0, len(s.ReadIDs))
	for _, id := range s.ReadIDs {
		if a, ok := c.Get(id); ok {
			out = append(out, a)
		}
	}
	return out
}

// Recommendations asks r for k articles per read seed, in read order, and
// concatenates them without duplicates or already-read articles. Seeds that
// are no longer in the corpus are skipped.
func (s *Session) Recommendations(r Recommender, k int) ([]models.Article, error) {
	seen := make(map[string]struct{}, len(s.ReadIDs))
	for _, id := range s.ReadIDs {
		seen[id] = struct{}{}
	}

	var out []models.Article
	for _, seed := range s.ReadIDs {
		recs, err := r.Recommend(seed, k)
		if err != nil {
			if errors.Is(err, recommend.ErrArticleNotFound) {
				slog.Warn("skipping seed missing from corpus", "id", seed, "user", s.Username)
				continue
			}
			return nil, err
		}
		for _, a := range recs {
			if _, dup := seen[a.ID]; dup {
				continue
			}
			seen[a.ID] = struct{}{}
			out = append(out, a)
		}
	}
	return out, nil
}

func add(list *[]string, id string) bool {
	if id == "" || slices.Contains(*list, id) {
		return false
	}
	*list = append(*list, id)
	return true
}
