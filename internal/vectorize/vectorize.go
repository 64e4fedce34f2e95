// Package vectorize builds the TF-IDF document-term weight matrix of a corpus.
package vectorize

import (
	"errors"
	"math"
	"sort"

	"github.com/mfenderov/newsrec/internal/analysis"
	"github.com/mfenderov/newsrec/internal/corpus"
)

var (
	// ErrEmptyCorpus is returned when there are no documents to vectorize.
	ErrEmptyCorpus = errors.New("corpus is empty")
	// ErrEmptyVocabulary is returned when no terms survive stopword removal.
	ErrEmptyVocabulary = errors.New("vocabulary is empty after stopword removal")
)

// SparseVector holds the non-zero weights of one document.
// Indices are vocabulary positions in ascending order.
type SparseVector struct {
	Indices []int
	Values  []float64
}

// Dot returns the dot product of two sparse vectors.
func (v SparseVector) Dot(o SparseVector) float64 {
	var sum float64
	i, j := 0, 0
	for i < len(v.Indices) && j < len(o.Indices) {
		switch {
		case v.Indices[i] == o.Indices[j]:
			sum += v.Values[i] * o.Values[j]
			i++
			j++
		case v.Indices[i] < o.Indices[j]:
			i++
		default:
			j++
		}
	}
	return sum
}

// Norm returns the Euclidean length of v.
func (v SparseVector) Norm() float64 {
	var sum float64
	for _, x := range v.Values {
		sum += x * x
	}
	return math.Sqrt(sum)
}

// WeightMatrix is one unit-length row per corpus article over a sorted
// vocabulary. Rows of documents with no surviving terms are empty.
type WeightMatrix struct {
	vocabulary []string
	idf        []float64
	rows       []SparseVector
}

// Rows returns the number of documents.
func (w *WeightMatrix) Rows() int { return len(w.rows) }

// Row returns the weights of document i.
func (w *WeightMatrix) Row(i int) SparseVector { return w.rows[i] }

// Vocabulary returns the sorted vocabulary.
func (w *WeightMatrix) Vocabulary() []string { return w.vocabulary }

// IDF returns the inverse document frequency of vocabulary term j.
func (w *WeightMatrix) IDF(j int) float64 { return w.idf[j] }

// TermIndex returns the vocabulary position of term.
func (w *WeightMatrix) TermIndex(term string) (int, bool) {
	j := sort.SearchStrings(w.vocabulary, term)
	if j < len(w.vocabulary) && w.vocabulary[j] == term {
		return j, true
	}
	return 0, false
}

// Build tokenizes every article body, weights terms by tf * idf with
// idf = ln((1+N)/(1+df)) + 1, and normalizes each row to unit length.
func Build(c *corpus.Corpus, stop analysis.StopWords) (*WeightMatrix, error) {
	if c == nil || c.Len() == 0 {
		return nil, ErrEmptyCorpus
	}

	analyzer, err := analysis.New(stop)
	if err != nil {
		return nil, err
	}

	n := c.Len()
	counts := make([]map[string]int, n)
	df := make(map[string]int)
	for i := 0; i < n; i++ {
		tf := make(map[string]int)
		for _, term := range analyzer.Terms(c.At(i).BodyText) {
			tf[term]++
		}
		for term := range tf {
			df[term]++
		}
		counts[i] = tf
	}

	if len(df) == 0 {
		return nil, ErrEmptyVocabulary
	}

	vocabulary := make([]string, 0, len(df))
	for term := range df {
		vocabulary = append(vocabulary, term)
	}
	sort.Strings(vocabulary)

	position := make(map[string]int, len(vocabulary))
	idf := make([]float64, len(vocabulary))
	for j, term := range vocabulary {
		position[term] = j
		idf[j] = math.Log(float64(1+n)/float64(1+df[term])) + 1
	}

	rows := make([]SparseVector, n)
	for i, tf := range counts {
		row := SparseVector{
			Indices: make([]int, 0, len(tf)),
			Values:  make([]float64, 0, len(tf)),
		}
		for term := range tf {
			row.Indices = append(row.Indices, position[term])
		}
		sort.Ints(row.Indices)
		for _, j := range row.Indices {
			row.Values = append(row.Values, float64(tf[vocabulary[j]])*idf[j])
		}
		if norm := row.Norm(); norm > 0 {
			for k := range row.Values {
				row.Values[k] /= norm
			}
		}
		rows[i] = row
	}

	return &WeightMatrix{
		vocabulary: vocabulary,
		idf:        idf,
		rows:       rows,
	}, nil
}
