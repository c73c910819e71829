package service

import (
	"context"
	"fmt"

	"github.com/brandloom-ai/brandloom/internal/domain"
)

// Default result counts per collection.
const (
	DefaultProductFactResults = 5
	DefaultKnowledgeResults   = 3
)

// Retriever is a read-only consumer of the vector store: it queries the
// two standing collections and packages matches with relevance scores
// and citation strings.
type Retriever struct {
	store VectorStore
}

func NewRetriever(store VectorStore) *Retriever {
	return &Retriever{store: store}
}

// RetrievalBundle is the aggregate of one product-facts query and one
// knowledge query. The two queries are independent calls, not a shared
// transaction.
type RetrievalBundle struct {
	ProductFacts []domain.RetrievalResult
	Knowledge    []domain.RetrievalResult
}

// RetrieveProductFacts queries product_master, optionally constrained
// to a single SKU by exact metadata match.
func (r *Retriever) RetrieveProductFacts(ctx context.Context, query string, n int, skuFilter string) ([]domain.RetrievalResult, error) {
	if n <= 0 {
		n = DefaultProductFactResults
	}

	var filter map[string]string
	if skuFilter != "" {
		filter = map[string]string{"sku": skuFilter}
	}

	matches, err := r.store.Query(ctx, domain.CollectionProductMaster, query, n, filter)
	if err != nil {
		return nil, err
	}

	results := make([]domain.RetrievalResult, 0, len(matches))
	for _, m := range matches {
		results = append(results, domain.RetrievalResult{
			Text:           m.Text,
			Metadata:       m.Metadata,
			RelevanceScore: relevanceScore(m.Distance),
			Source:         domain.SourceProductMaster,
			Citation:       fmt.Sprintf("%s - %s", metaOr(m.Metadata, "sku", "N/A"), metaOr(m.Metadata, "product_name", "N/A")),
		})
	}

	return results, nil
}

// RetrieveKnowledge queries knowledge_base; the citation is the source
// filename.
func (r *Retriever) RetrieveKnowledge(ctx context.Context, query string, n int) ([]domain.RetrievalResult, error) {
	if n <= 0 {
		n = DefaultKnowledgeResults
	}

	matches, err := r.store.Query(ctx, domain.CollectionKnowledgeBase, query, n, nil)
	if err != nil {
		return nil, err
	}

	results := make([]domain.RetrievalResult, 0, len(matches))
	for _, m := range matches {
		results = append(results, domain.RetrievalResult{
			Text:           m.Text,
			Metadata:       m.Metadata,
			RelevanceScore: relevanceScore(m.Distance),
			Source:         domain.SourceKnowledgeBase,
			Citation:       metaOr(m.Metadata, "filename", "N/A"),
		})
	}

	return results, nil
}

// RetrieveAll runs the product-facts and knowledge queries for the same
// query text.
func (r *Retriever) RetrieveAll(ctx context.Context, query string, nProductFacts, nKnowledge int) (*RetrievalBundle, error) {
	facts, err := r.RetrieveProductFacts(ctx, query, nProductFacts, "")
	if err != nil {
		return nil, err
	}

	knowledge, err := r.RetrieveKnowledge(ctx, query, nKnowledge)
	if err != nil {
		return nil, err
	}

	return &RetrievalBundle{ProductFacts: facts, Knowledge: knowledge}, nil
}

// relevanceScore converts a raw cosine distance to 1-d clamped to
// [0,1]. A missing distance scores 0.
func relevanceScore(distance *float64) float64 {
	if distance == nil {
		return 0.0
	}
	score := 1 - *distance
	if score < 0 {
		return 0.0
	}
	if score > 1 {
		return 1.0
	}
	return score
}

func metaOr(meta map[string]string, key, fallback string) string {
	if v, ok := meta[key]; ok && v != "" {
		return v
	}
	return fallback
}
