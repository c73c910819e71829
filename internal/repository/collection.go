package repository

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	"github.com/brandloom-ai/brandloom/internal/domain"
	"github.com/brandloom-ai/brandloom/internal/service"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pgvector/pgvector-go"
)

type dbtx interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// CollectionRepository is the pgvector-backed VectorStore. Documents of
// both standing collections live in one collection_documents table keyed
// by (collection, doc_id); similarity is cosine distance over embeddings
// produced by the injected embedding client.
type CollectionRepository struct {
	db       dbtx
	embedder service.EmbeddingClient
}

func NewCollectionRepository(pool *pgxpool.Pool, embedder service.EmbeddingClient) *CollectionRepository {
	return &CollectionRepository{db: pool, embedder: embedder}
}

// AddDocuments embeds and upserts documents into a collection. When ids
// is nil, a content hash is derived per document so identical text maps
// to the same row and re-indexing stays idempotent.
func (r *CollectionRepository) AddDocuments(ctx context.Context, collection domain.Collection, documents []string, metadatas []map[string]string, ids []string) error {
	if !collection.IsValid() {
		return domain.ErrUnknownCollection
	}
	if len(documents) != len(metadatas) {
		return domain.ErrDocumentCountMismatch
	}
	if ids == nil {
		ids = make([]string, len(documents))
		for i, doc := range documents {
			ids[i] = ContentID(doc)
		}
	}
	if len(ids) != len(documents) {
		return domain.NewDomainError(domain.ErrCodeValidation, "ids and documents must have equal length")
	}

	now := time.Now().UTC()
	for i, doc := range documents {
		embedding, err := r.embedder.GenerateEmbedding(ctx, doc)
		if err != nil {
			return fmt.Errorf("failed to embed document %s: %w", ids[i], err)
		}

		meta, err := json.Marshal(metadatas[i])
		if err != nil {
			return fmt.Errorf("failed to marshal metadata for %s: %w", ids[i], err)
		}

		_, err = r.db.Exec(ctx,
			`INSERT INTO collection_documents (collection, doc_id, content, metadata, embedding, created_at, updated_at)
			 VALUES ($1, $2, $3, $4, $5, $6, $6)
			 ON CONFLICT (collection, doc_id) DO UPDATE
			 SET content = EXCLUDED.content,
			     metadata = EXCLUDED.metadata,
			     embedding = EXCLUDED.embedding,
			     updated_at = EXCLUDED.updated_at`,
			collection.String(), ids[i], doc, meta, pgvector.NewVector(embedding), now,
		)
		if err != nil {
			return err
		}
	}

	return nil
}

// Query embeds the query text and returns up to n documents ordered by
// ascending cosine distance. An empty collection yields an empty slice.
func (r *CollectionRepository) Query(ctx context.Context, collection domain.Collection, queryText string, n int, filter map[string]string) ([]service.Match, error) {
	if !collection.IsValid() {
		return nil, domain.ErrUnknownCollection
	}
	if n <= 0 {
		return []service.Match{}, nil
	}

	count, err := r.Count(ctx, collection)
	if err != nil {
		return nil, err
	}
	if count == 0 {
		return []service.Match{}, nil
	}

	embedding, err := r.embedder.GenerateEmbedding(ctx, queryText)
	if err != nil {
		return nil, fmt.Errorf("failed to embed query: %w", err)
	}

	query := `SELECT doc_id, content, metadata, embedding <=> $2 AS distance
	          FROM collection_documents
	          WHERE collection = $1`
	args := []any{collection.String(), pgvector.NewVector(embedding)}

	if len(filter) > 0 {
		filterJSON, err := json.Marshal(filter)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal filter: %w", err)
		}
		query += ` AND metadata @> $3`
		args = append(args, filterJSON)
	}

	query += fmt.Sprintf(` ORDER BY distance ASC LIMIT %d`, n)

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	matches := make([]service.Match, 0, n)
	for rows.Next() {
		var m service.Match
		var metaRaw []byte
		var distance float64
		if err := rows.Scan(&m.ID, &m.Text, &metaRaw, &distance); err != nil {
			return nil, err
		}
		if err := json.Unmarshal(metaRaw, &m.Metadata); err != nil {
			return nil, err
		}
		d := distance
		m.Distance = &d
		matches = append(matches, m)
	}

	return matches, rows.Err()
}

// ResetCollection deletes the collection's contents. The delete and the
// following re-add are not atomic; readers may observe an empty
// collection mid-rebuild.
func (r *CollectionRepository) ResetCollection(ctx context.Context, collection domain.Collection) error {
	if !collection.IsValid() {
		return domain.ErrUnknownCollection
	}
	_, err := r.db.Exec(ctx, `DELETE FROM collection_documents WHERE collection = $1`, collection.String())
	return err
}

// Count returns the number of documents in a collection
func (r *CollectionRepository) Count(ctx context.Context, collection domain.Collection) (int, error) {
	if !collection.IsValid() {
		return 0, domain.ErrUnknownCollection
	}
	var count int
	err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM collection_documents WHERE collection = $1`, collection.String()).Scan(&count)
	return count, err
}

// ContentID derives a deterministic id from document text, so the same
// text always maps to the same row.
func ContentID(document string) string {
	sum := md5.Sum([]byte(document))
	return hex.EncodeToString(sum[:])
}
