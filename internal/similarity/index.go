// Package similarity implements the in-process vector-space model used for
// content-based recommendation: unigram+bigram TF-IDF vectors over the corpus
// of composite documents, queried by cosine similarity.
//
// The index is process-wide shared state. Build takes the write lock and
// swaps in the fitted model atomically, so a concurrent query never observes
// a partially built index. Queries before the first Build fail fast with
// ErrNotBuilt.
package similarity

import (
	"errors"
	"math"
	"regexp"
	"sort"
	"strings"
	"sync"
)

// ErrNotBuilt is returned when the index is queried before Build has run.
// This is an initialization-order bug in the caller, not a data condition.
var ErrNotBuilt = errors.New("similarity: index queried before Build")

// tokenRegex matches runs of letters and digits; compiled once.
var tokenRegex = regexp.MustCompile(`[a-z0-9]+`)

// Document is one corpus entry: a stable movie identifier and its composite
// document text.
type Document struct {
	ID   uint
	Text string
}

// Match is a scored corpus entry returned by Search, ordered by descending
// cosine similarity.
type Match struct {
	ID    uint
	Score float64
}

// sparseVec maps feature index to weight. Vectors are L2-normalized at
// construction so cosine similarity reduces to a sparse dot product.
type sparseVec map[int]float64

// Index is the fitted vector space. The zero value is valid and unbuilt.
type Index struct {
	mu      sync.RWMutex
	built   bool
	version uint64

	vocab   map[string]int // term -> feature index
	idf     []float64      // per feature, smoothed
	ids     []uint         // corpus insertion order
	vectors []sparseVec    // aligned with ids
}

// New returns an empty, unbuilt index.
func New() *Index {
	return &Index{}
}

// Build fits the vocabulary and IDF weights over the ordered corpus and
// vectorizes every document. It replaces any previously fitted model and is
// the only mutating operation; it must be re-run whenever the corpus changes.
// Building an empty corpus is valid and yields an index that matches nothing.
func (ix *Index) Build(corpus []Document) {
	vocab := make(map[string]int)
	df := make([]int, 0)
	termsPerDoc := make([][]string, len(corpus))

	for i, doc := range corpus {
		terms := ngrams(doc.Text)
		termsPerDoc[i] = terms

		seen := make(map[int]bool, len(terms))
		for _, term := range terms {
			idx, ok := vocab[term]
			if !ok {
				idx = len(vocab)
				vocab[term] = idx
				df = append(df, 0)
			}
			if !seen[idx] {
				seen[idx] = true
				df[idx]++
			}
		}
	}

	// Smoothed IDF: ln((1+N)/(1+df)) + 1. Smoothing keeps weights finite
	// for terms present in every document.
	n := float64(len(corpus))
	idf := make([]float64, len(df))
	for i, d := range df {
		idf[i] = math.Log((1+n)/(1+float64(d))) + 1
	}

	ids := make([]uint, len(corpus))
	vectors := make([]sparseVec, len(corpus))
	for i, doc := range corpus {
		ids[i] = doc.ID
		vectors[i] = vectorize(termsPerDoc[i], vocab, idf)
	}

	ix.mu.Lock()
	ix.vocab = vocab
	ix.idf = idf
	ix.ids = ids
	ix.vectors = vectors
	ix.built = true
	ix.version++
	ix.mu.Unlock()
}

// Vectorize projects a single document into the fitted space. Terms outside
// the fitted vocabulary are ignored. Returns ErrNotBuilt before Build.
func (ix *Index) Vectorize(text string) (map[int]float64, error) {
	ix.mu.RLock()
	defer ix.mu.RUnlock()

	if !ix.built {
		return nil, ErrNotBuilt
	}
	return vectorize(ngrams(text), ix.vocab, ix.idf), nil
}

// Search scores the document against every corpus vector and returns up to n
// matches by descending cosine similarity. Ties keep corpus insertion order
// (first indexed wins). n <= 0 means no limit. Returns ErrNotBuilt before
// Build.
func (ix *Index) Search(text string, n int) ([]Match, error) {
	ix.mu.RLock()
	defer ix.mu.RUnlock()

	if !ix.built {
		return nil, ErrNotBuilt
	}

	query := vectorize(ngrams(text), ix.vocab, ix.idf)

	matches := make([]Match, len(ix.ids))
	for i, vec := range ix.vectors {
		matches[i] = Match{ID: ix.ids[i], Score: dot(query, vec)}
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Score > matches[j].Score
	})

	if n > 0 && len(matches) > n {
		matches = matches[:n]
	}
	return matches, nil
}

// Built reports whether Build has completed at least once.
func (ix *Index) Built() bool {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	return ix.built
}

// Version returns the build generation, incremented on every Build. The ETL
// collaborator bumps this by triggering a rebuild after catalog mutations.
func (ix *Index) Version() uint64 {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	return ix.version
}

// Size returns the number of corpus documents in the fitted model.
func (ix *Index) Size() int {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	return len(ix.ids)
}

// ngrams tokenizes text into lowercase unigrams and adjacent bigrams.
// Single-character tokens are dropped; they carry no content signal.
func ngrams(text string) []string {
	tokens := tokenRegex.FindAllString(strings.ToLower(text), -1)

	words := tokens[:0]
	for _, tok := range tokens {
		if len(tok) >= 2 {
			words = append(words, tok)
		}
	}

	terms := make([]string, 0, len(words)*2)
	terms = append(terms, words...)
	for i := 0; i+1 < len(words); i++ {
		terms = append(terms, words[i]+" "+words[i+1])
	}
	return terms
}

// vectorize computes the L2-normalized TF-IDF vector for a term sequence
// against a fitted vocabulary. Out-of-vocabulary terms are skipped.
func vectorize(terms []string, vocab map[string]int, idf []float64) sparseVec {
	vec := make(sparseVec)
	for _, term := range terms {
		if idx, ok := vocab[term]; ok {
			vec[idx] += idf[idx]
		}
	}

	var norm float64
	for _, w := range vec {
		norm += w * w
	}
	if norm > 0 {
		norm = math.Sqrt(norm)
		for idx := range vec {
			vec[idx] /= norm
		}
	}
	return vec
}

// dot computes the sparse dot product, iterating the smaller vector.
func dot(a, b sparseVec) float64 {
	if len(b) < len(a) {
		a, b = b, a
	}
	var sum float64
	for idx, w := range a {
		if bw, ok := b[idx]; ok {
			sum += w * bw
		}
	}
	return sum
}
