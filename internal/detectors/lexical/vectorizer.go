package lexical

import (
	"math"
	"regexp"
	"sort"
	"strings"
)

// tokenPattern matches runs of two or more word characters.
var tokenPattern = regexp.MustCompile(`[\p{L}\p{N}_]{2,}`)

// sparseVector maps vocabulary index to weight.
type sparseVector map[int]float64

// Vectorizer is a TF-IDF model fitted on one pooled set of chunks.
// Weights are raw term counts scaled by smoothed inverse document frequency
// and rows are L2-normalised, so a dot product is a cosine similarity.
type Vectorizer struct {
	vocabulary map[string]int
	idf        []float64
}

// Fit builds the vocabulary and IDF values from docs.
func Fit(docs []string) *Vectorizer {
	df := make(map[string]int)
	for _, doc := range docs {
		seen := make(map[string]struct{})
		for _, tok := range tokenize(doc) {
			if _, ok := seen[tok]; ok {
				continue
			}
			seen[tok] = struct{}{}
			df[tok]++
		}
	}

	// Stable ordering for vocabulary
	terms := make([]string, 0, len(df))
	for term := range df {
		terms = append(terms, term)
	}
	sort.Strings(terms)

	v := &Vectorizer{
		vocabulary: make(map[string]int, len(terms)),
		idf:        make([]float64, len(terms)),
	}
	n := float64(len(docs))
	for i, term := range terms {
		v.vocabulary[term] = i
		v.idf[i] = math.Log((1+n)/(1+float64(df[term]))) + 1
	}
	return v
}

// VocabularySize returns the number of distinct terms.
func (v *Vectorizer) VocabularySize() int {
	return len(v.vocabulary)
}

// IDF returns the inverse document frequency of term, or 0 if unknown.
func (v *Vectorizer) IDF(term string) float64 {
	idx, ok := v.vocabulary[strings.ToLower(term)]
	if !ok {
		return 0
	}
	return v.idf[idx]
}

// Transform returns the normalised TF-IDF vector of doc.
// Documents with no known terms produce an empty vector.
func (v *Vectorizer) Transform(doc string) sparseVector {
	vec := make(sparseVector)
	for _, tok := range tokenize(doc) {
		if idx, ok := v.vocabulary[tok]; ok {
			vec[idx]++
		}
	}

	norm := 0.0
	for idx, count := range vec {
		w := count * v.idf[idx]
		vec[idx] = w
		norm += w * w
	}
	if norm == 0 {
		return vec
	}
	norm = math.Sqrt(norm)
	for idx := range vec {
		vec[idx] /= norm
	}
	return vec
}

// TransformAll transforms docs in order.
func (v *Vectorizer) TransformAll(docs []string) []sparseVector {
	out := make([]sparseVector, len(docs))
	for i, doc := range docs {
		out[i] = v.Transform(doc)
	}
	return out
}

// dot returns the dot product of two sparse vectors.
func dot(a, b sparseVector) float64 {
	if len(a) > len(b) {
		a, b = b, a
	}
	sum := 0.0
	for idx, w := range a {
		sum += w * b[idx]
	}
	return sum
}

func tokenize(text string) []string {
	return tokenPattern.FindAllString(strings.ToLower(text), -1)
}
