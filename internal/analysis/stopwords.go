package analysis

import "strings"

// StopWords is a set of lowercase terms excluded from vectorization.
type StopWords map[string]struct{}

// NewStopWords builds a set from words, lowercasing each.
func NewStopWords(words ...string) StopWords {
	s := make(StopWords, len(words))
	for _, w := range words {
		w = strings.ToLower(strings.TrimSpace(w))
		if w != "" {
			s[w] = struct{}{}
		}
	}
	return s
}

// Contains reports whether term is a stopword. A nil set contains nothing.
func (s StopWords) Contains(term string) bool {
	_, ok := s[term]
	return ok
}

// Union returns a new set holding the words of s and other.
func (s StopWords) Union(other StopWords) StopWords {
	out := make(StopWords, len(s)+len(other))
	for w := range s {
		out[w] = struct{}{}
	}
	for w := range other {
		out[w] = struct{}{}
	}
	return out
}
