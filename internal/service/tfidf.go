package service

import (
	"math"
	"regexp"
	"sort"
	"strings"
)

var tfidfTokenPattern = regexp.MustCompile(`[\p{L}\p{N}]+`)

// tfidfVectorizer builds sparse TF-IDF vectors over word n-grams with
// smoothed IDF and L2 normalization. Vectors are term-index -> weight
// maps; the corpus is small (tens to low hundreds of chunks), so sparse
// maps beat dense slices here.
type tfidfVectorizer struct {
	minGram int
	maxGram int
}

func newTFIDFVectorizer(minGram, maxGram int) *tfidfVectorizer {
	return &tfidfVectorizer{minGram: minGram, maxGram: maxGram}
}

// FitTransform builds the vocabulary from the corpus and returns one
// normalized vector per document. ok is false when the corpus produced
// no terms at all.
func (v *tfidfVectorizer) FitTransform(corpus []string) ([]map[int]float64, bool) {
	tokenized := make([][]string, len(corpus))
	df := make(map[string]int)
	for i, text := range corpus {
		grams := v.ngrams(text)
		tokenized[i] = grams
		seen := make(map[string]struct{}, len(grams))
		for _, g := range grams {
			if _, ok := seen[g]; ok {
				continue
			}
			seen[g] = struct{}{}
			df[g]++
		}
	}
	if len(df) == 0 {
		return nil, false
	}

	// Stable term ordering keeps vectors comparable across runs.
	terms := make([]string, 0, len(df))
	for term := range df {
		terms = append(terms, term)
	}
	sort.Strings(terms)

	vocabulary := make(map[string]int, len(terms))
	idf := make([]float64, len(terms))
	n := float64(len(corpus))
	for i, term := range terms {
		vocabulary[term] = i
		idf[i] = math.Log((1+n)/(1+float64(df[term]))) + 1.0
	}

	vectors := make([]map[int]float64, len(corpus))
	for i, grams := range tokenized {
		tf := make(map[int]int)
		total := 0
		for _, g := range grams {
			if idx, ok := vocabulary[g]; ok {
				tf[idx]++
				total++
			}
		}

		vec := make(map[int]float64, len(tf))
		if total > 0 {
			for idx, count := range tf {
				vec[idx] = (float64(count) / float64(total)) * idf[idx]
			}
		}
		normalizeSparse(vec)
		vectors[i] = vec
	}

	return vectors, true
}

// ngrams tokenizes text and emits word n-grams from minGram to maxGram
func (v *tfidfVectorizer) ngrams(text string) []string {
	tokens := tfidfTokenPattern.FindAllString(strings.ToLower(text), -1)

	var grams []string
	for size := v.minGram; size <= v.maxGram; size++ {
		for i := 0; i+size <= len(tokens); i++ {
			grams = append(grams, strings.Join(tokens[i:i+size], " "))
		}
	}
	return grams
}

func normalizeSparse(vec map[int]float64) {
	var norm float64
	for _, w := range vec {
		norm += w * w
	}
	norm = math.Sqrt(norm)
	if norm == 0 {
		return
	}
	for idx := range vec {
		vec[idx] /= norm
	}
}

// sparseCosine is the dot product of two L2-normalized sparse vectors
func sparseCosine(a, b map[int]float64) float64 {
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
