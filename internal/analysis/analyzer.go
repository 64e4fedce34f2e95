// Package analysis turns article text into the terms the vectorizer weighs.
// Tokenization and the English stopword list come from bleve's analysis
// registry.
package analysis

import (
	"fmt"
	"unicode/utf8"

	"github.com/blevesearch/bleve/v2/analysis"
	"github.com/blevesearch/bleve/v2/analysis/lang/en"
	"github.com/blevesearch/bleve/v2/analysis/token/lowercase"
	"github.com/blevesearch/bleve/v2/analysis/tokenizer/unicode"
	"github.com/blevesearch/bleve/v2/registry"
)

// MinTermRunes is the shortest token kept as a term.
const MinTermRunes = 2

// Analyzer splits text on Unicode word boundaries, lowercases, and drops
// stopwords and single-character tokens.
type Analyzer struct {
	tokenizer analysis.Tokenizer
	lower     analysis.TokenFilter
	stop      StopWords
}

// New creates an analyzer that discards the given stopwords.
func New(stop StopWords) (*Analyzer, error) {
	cache := registry.NewCache()

	tokenizer, err := cache.TokenizerNamed(unicode.Name)
	if err != nil {
		return nil, fmt.Errorf("failed to load tokenizer: %w", err)
	}
	lower, err := cache.TokenFilterNamed(lowercase.Name)
	if err != nil {
		return nil, fmt.Errorf("failed to load lowercase filter: %w", err)
	}

	return &Analyzer{
		tokenizer: tokenizer,
		lower:     lower,
		stop:      stop,
	}, nil
}

// Terms returns the terms of text in order of appearance, repeats included.
func (a *Analyzer) Terms(text string) []string {
	if text == "" {
		return nil
	}

	stream := a.lower.Filter(a.tokenizer.Tokenize([]byte(text)))

	terms := make([]string, 0, len(stream))
	for _, tok := range stream {
		if utf8.RuneCount(tok.Term) < MinTermRunes {
			continue
		}
		term := string(tok.Term)
		if a.stop.Contains(term) {
			continue
		}
		terms = append(terms, term)
	}
	return terms
}

// EnglishStopWords returns bleve's English stopword list.
func EnglishStopWords() (StopWords, error) {
	cache := registry.NewCache()
	tm, err := cache.TokenMapNamed(en.StopName)
	if err != nil {
		return nil, fmt.Errorf("failed to load english stopwords: %w", err)
	}

	stop := make(StopWords, len(tm))
	for w := range tm {
		stop[w] = struct{}{}
	}
	return stop, nil
}
