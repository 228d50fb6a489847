// Package index builds a TF-IDF vector space over command phrases and answers
// nearest-phrase queries by cosine similarity.
package index

import (
	"math"
	"sort"
)

// Normalizer produces canonical terms for indexing and querying.
type Normalizer interface {
	Normalize(string) []string
}

// entry is one sparse component of an L2-normalized vector.
type entry struct {
	col    int
	weight float64
}

type vector []entry

// Index is a trained snapshot of a phrase list. The zero value answers every
// query with no match.
type Index struct {
	normalizer Normalizer

	phrases    []string
	vectors    []vector
	vocabulary map[string]int
	idf        []float64
	version    uint64
	trained    bool
}

// New returns an untrained index that normalizes text with normalizer.
func New(normalizer Normalizer) *Index {
	return &Index{normalizer: normalizer}
}

// Train rebuilds the vocabulary, idf weights, and phrase vectors. version
// records the registry version the model reflects.
func (ix *Index) Train(phrases []string, version uint64) {
	docs := make([][]string, len(phrases))
	df := make(map[string]int)
	for i, phrase := range phrases {
		docs[i] = ix.features(phrase)
		seen := make(map[string]struct{}, len(docs[i]))
		for _, term := range docs[i] {
			if _, ok := seen[term]; ok {
				continue
			}
			seen[term] = struct{}{}
			df[term]++
		}
	}

	terms := make([]string, 0, len(df))
	for term := range df {
		terms = append(terms, term)
	}
	sort.Strings(terms)

	vocabulary := make(map[string]int, len(terms))
	idf := make([]float64, len(terms))
	n := float64(len(phrases))
	for col, term := range terms {
		vocabulary[term] = col
		idf[col] = math.Log((1+n)/(1+float64(df[term]))) + 1
	}

	ix.phrases = append([]string(nil), phrases...)
	ix.vocabulary = vocabulary
	ix.idf = idf
	ix.vectors = make([]vector, len(docs))
	for i, doc := range docs {
		ix.vectors[i] = ix.weigh(doc)
	}
	ix.version = version
	ix.trained = true
}

// Query returns the indexed phrase most similar to utterance and its cosine
// score in [0,1]. Ties resolve to the earliest phrase. An untrained index, an
// empty index, or a query with no known terms yields ("", 0).
func (ix *Index) Query(utterance string) (string, float64) {
	if !ix.trained || len(ix.phrases) == 0 {
		return "", 0
	}
	q := ix.weigh(ix.features(utterance))
	if len(q) == 0 {
		return "", 0
	}

	best := -1
	bestScore := 0.0
	for i, v := range ix.vectors {
		score := dot(q, v)
		if score > bestScore {
			best = i
			bestScore = score
		}
	}
	if best < 0 {
		return "", 0
	}
	if bestScore > 1 {
		bestScore = 1
	}
	return ix.phrases[best], bestScore
}

// Version returns the registry version of the last Train call.
func (ix *Index) Version() uint64 {
	return ix.version
}

// Trained reports whether Train has run at least once.
func (ix *Index) Trained() bool {
	return ix.trained
}

// Len returns the number of indexed phrases.
func (ix *Index) Len() int {
	return len(ix.phrases)
}

// VocabularySize returns the number of distinct unigram and bigram features.
func (ix *Index) VocabularySize() int {
	return len(ix.vocabulary)
}

// features expands normalized terms into unigrams followed by bigrams.
func (ix *Index) features(text string) []string {
	if ix.normalizer == nil {
		return nil
	}
	terms := ix.normalizer.Normalize(text)
	if len(terms) == 0 {
		return nil
	}
	out := make([]string, 0, 2*len(terms)-1)
	out = append(out, terms...)
	for i := 0; i+1 < len(terms); i++ {
		out = append(out, terms[i]+" "+terms[i+1])
	}
	return out
}

// weigh turns features into an L2-normalized tf-idf vector, skipping
// out-of-vocabulary features.
func (ix *Index) weigh(features []string) vector {
	counts := make(map[int]float64, len(features))
	for _, f := range features {
		col, ok := ix.vocabulary[f]
		if !ok {
			continue
		}
		counts[col]++
	}
	if len(counts) == 0 {
		return nil
	}

	v := make(vector, 0, len(counts))
	for col, tf := range counts {
		v = append(v, entry{col: col, weight: tf * ix.idf[col]})
	}
	sort.Slice(v, func(i, j int) bool { return v[i].col < v[j].col })

	norm := 0.0
	for _, e := range v {
		norm += e.weight * e.weight
	}
	norm = math.Sqrt(norm)
	if norm == 0 {
		return nil
	}
	for i := range v {
		v[i].weight /= norm
	}
	return v
}

// dot multiplies two column-sorted sparse vectors.
func dot(a, b vector) float64 {
	sum := 0.0
	i, j := 0, 0
	for i < len(a) && j < len(b) {
		switch {
		case a[i].col == b[j].col:
			sum += a[i].weight * b[j].weight
			i++
			j++
		case a[i].col < b[j].col:
			i++
		default:
			j++
		}
	}
	return sum
}
