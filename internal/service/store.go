package service

import (
	"context"

	"github.com/brandloom-ai/brandloom/internal/domain"
)

// Match is one ranked document returned by a similarity query.
// Distance is the raw cosine distance from the backing store; nil when
// the store did not report one.
type Match struct {
	ID       string
	Text     string
	Metadata map[string]string
	Distance *float64
}

// VectorStore is the embedding-backed document store consumed by the
// indexer and retriever. Any backend that ranks by cosine distance is
// substitutable; the pgvector repository is the default implementation.
//
// The store is single-writer per collection: reset-then-add is not
// atomic, so a concurrent reader may observe a briefly empty collection
// mid-rebuild. Callers serialize indexing per collection.
type VectorStore interface {
	// AddDocuments persists documents with their metadata. documents and
	// metadatas must be equal length. When ids is nil, a deterministic
	// content hash is derived per document, so re-adding identical text
	// does not grow the collection. Re-adding an existing id overwrites.
	AddDocuments(ctx context.Context, collection domain.Collection, documents []string, metadatas []map[string]string, ids []string) error

	// Query returns up to n matches ordered by similarity descending.
	// filter restricts matches to exact metadata equality. Querying an
	// empty collection yields an empty slice, never an error.
	Query(ctx context.Context, collection domain.Collection, queryText string, n int, filter map[string]string) ([]Match, error)

	// ResetCollection destroys the collection's contents; subsequent
	// queries return empty until it is repopulated.
	ResetCollection(ctx context.Context, collection domain.Collection) error

	// Count returns the number of documents in the collection.
	Count(ctx context.Context, collection domain.Collection) (int, error)
}

// EmbeddingClient produces the dense vectors backing similarity search
// and the dense duplicate reducer.
type EmbeddingClient interface {
	GenerateEmbedding(ctx context.Context, text string) ([]float32, error)
}
