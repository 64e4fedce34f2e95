// Package similarity computes and caches the pairwise cosine similarity of
// corpus articles.
package similarity

import (
	"gonum.org/v1/gonum/mat"

	"github.com/mfenderov/newsrec/internal/vectorize"
)

// Matrix is the symmetric n x n article similarity matrix.
type Matrix struct {
	sym *mat.SymDense
	n   int
}

// Len returns the number of articles covered.
func (m *Matrix) Len() int { return m.n }

// At returns the similarity of articles i and j.
func (m *Matrix) At(i, j int) float64 { return m.sym.At(i, j) }

// Row returns a copy of row i.
func (m *Matrix) Row(i int) []float64 {
	return mat.Row(nil, i, m.sym)
}

type posting struct {
	doc    int
	weight float64
}

// Compute returns the cosine similarity of every pair of rows. Rows are
// unit length, so cosine reduces to the dot product. Each pair is computed
// once through term posting lists; the diagonal is fixed at 1.
func Compute(w *vectorize.WeightMatrix) *Matrix {
	n := w.Rows()
	if n == 0 {
		return &Matrix{}
	}

	postings := make([][]posting, len(w.Vocabulary()))
	for i := 0; i < n; i++ {
		row := w.Row(i)
		for k, term := range row.Indices {
			postings[term] = append(postings[term], posting{doc: i, weight: row.Values[k]})
		}
	}

	sym := mat.NewSymDense(n, nil)
	acc := make([]float64, n)
	for i := 0; i < n; i++ {
		clear(acc)

		row := w.Row(i)
		for k, term := range row.Indices {
			wi := row.Values[k]
			for _, p := range postings[term] {
				if p.doc > i {
					acc[p.doc] += wi * p.weight
				}
			}
		}

		sym.SetSym(i, i, 1)
		for j := i + 1; j < n; j++ {
			sym.SetSym(i, j, clamp(acc[j]))
		}
	}

	return &Matrix{sym: sym, n: n}
}

func clamp(v float64) float64 {
	switch {
	case v < 0:
		return 0
	case v > 1:
		return 1
	default:
		return v
	}
}
