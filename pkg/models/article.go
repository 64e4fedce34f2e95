package models

import (
	"crypto/sha256"
	"encoding/hex"
	"time"
)

// Article represents a single news article in the corpus.
type Article struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	BodyText    string    `json:"body_text"`
	Section     string    `json:"section,omitempty"`
	PublishedAt time.Time `json:"published_at"`
	URL         string    `json:"url"`
}

// Excerpt returns the first n bytes of the body followed by an ellipsis,
// cut back to a valid rune boundary.
func (a Article) Excerpt(n int) string {
	if len(a.BodyText) <= n {
		return a.BodyText
	}
	cut := n
	for cut > 0 && !isRuneStart(a.BodyText[cut]) {
		cut--
	}
	return a.BodyText[:cut] + "..."
}

func isRuneStart(b byte) bool {
	return b&0xC0 != 0x80
}

// GenerateArticleID creates a deterministic ID from URL.
// The ID is a SHA-256 hash (first 16 chars) of the URL.
func GenerateArticleID(url string) string {
	hash := sha256.Sum256([]byte(url))
	return hex.EncodeToString(hash[:])[:16]
}
