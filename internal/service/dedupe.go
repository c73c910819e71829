package service

import (
	"context"
	"log"
	"math"
)

// DefaultDedupeThreshold is the pairwise similarity above which two
// chunks count as near-duplicates.
const DefaultDedupeThreshold = 0.92

// DenseReducer removes near-duplicate chunks using dense embeddings.
// The earlier chunk always survives; every later chunk whose cosine
// similarity to a survivor reaches the threshold is suppressed.
type DenseReducer struct {
	embedder EmbeddingClient
}

func NewDenseReducer(embedder EmbeddingClient) *DenseReducer {
	return &DenseReducer{embedder: embedder}
}

// Reduce returns the surviving chunks in their original relative order
func (r *DenseReducer) Reduce(ctx context.Context, chunks []string, threshold float64) ([]string, error) {
	if len(chunks) == 0 {
		return []string{}, nil
	}

	vectors := make([][]float64, len(chunks))
	for i, chunk := range chunks {
		emb, err := r.embedder.GenerateEmbedding(ctx, chunk)
		if err != nil {
			return nil, err
		}
		vectors[i] = normalize(toFloat64(emb))
	}

	suppressed := make([]bool, len(chunks))
	keep := make([]string, 0, len(chunks))
	for i := range chunks {
		if suppressed[i] {
			continue
		}
		keep = append(keep, chunks[i])
		for j := i + 1; j < len(chunks); j++ {
			if suppressed[j] {
				continue
			}
			if dot(vectors[i], vectors[j]) >= threshold {
				suppressed[j] = true
			}
		}
	}

	return keep, nil
}

// SparseReducer removes near-duplicate chunks using 1-2 gram TF-IDF
// cosine similarity, a lightweight alternative when no embedding
// service is available. Of each similar pair the shorter chunk (by
// character length) is suppressed, unlike DenseReducer which keeps
// whichever came first.
type SparseReducer struct{}

func NewSparseReducer() *SparseReducer {
	return &SparseReducer{}
}

// Reduce returns the surviving chunks in their original relative order
func (r *SparseReducer) Reduce(chunks []string, threshold float64) []string {
	if len(chunks) <= 1 {
		return chunks
	}

	vectorizer := newTFIDFVectorizer(1, 2)
	vectors, ok := vectorizer.FitTransform(chunks)
	if !ok {
		return chunks
	}

	suppressed := make([]bool, len(chunks))
	for i := range chunks {
		if suppressed[i] {
			continue
		}
		for j := i + 1; j < len(chunks); j++ {
			if suppressed[j] {
				continue
			}
			if sparseCosine(vectors[i], vectors[j]) >= threshold {
				// On equal lengths the later chunk goes, matching the
				// dense strategy's first-wins ordering.
				shorter := j
				if len(chunks[i]) < len(chunks[j]) {
					shorter = i
				}
				suppressed[shorter] = true
			}
		}
	}

	keep := make([]string, 0, len(chunks))
	for i, chunk := range chunks {
		if !suppressed[i] {
			keep = append(keep, chunk)
		}
	}

	log.Printf("tfidf dedupe reduced %d chunks to %d (threshold %.2f)", len(chunks), len(keep), threshold)
	return keep
}

func toFloat64(v []float32) []float64 {
	out := make([]float64, len(v))
	for i, x := range v {
		out[i] = float64(x)
	}
	return out
}

func normalize(v []float64) []float64 {
	var norm float64
	for _, x := range v {
		norm += x * x
	}
	norm = math.Sqrt(norm)
	if norm == 0 {
		return v
	}
	for i := range v {
		v[i] /= norm
	}
	return v
}

func dot(a, b []float64) float64 {
	var sum float64
	for i := range a {
		sum += a[i] * b[i]
	}
	return sum
}
