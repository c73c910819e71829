package service

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"log"
	"os"
	"strings"

	"github.com/brandloom-ai/brandloom/internal/domain"
)

// Product master CSV columns.
const (
	columnSKU           = "SKU"
	columnCNPN          = "CNPN"
	columnProductName   = "Product_Name"
	columnAllowedClaims = "Allowed_Claims"
	columnCategory      = "Category"
)

// Indexer builds the two standing collections. It is the only writer of
// the store; each Index* call is a reset-then-add rebuild, so callers
// serialize indexing per collection (a reader may observe a briefly
// empty collection mid-rebuild).
type Indexer struct {
	store VectorStore
}

func NewIndexer(store VectorStore) *Indexer {
	return &Indexer{store: store}
}

// IndexProductMaster rebuilds the product_master collection from a
// catalog CSV. Every row becomes one synthesized document; row order
// determines the id suffix, so reindexing a changed CSV fully replaces
// prior content. A missing file leaves the collection empty and returns
// a zero count.
func (ix *Indexer) IndexProductMaster(ctx context.Context, csvPath string) (int, error) {
	if err := ix.store.ResetCollection(ctx, domain.CollectionProductMaster); err != nil {
		return 0, err
	}

	f, err := os.Open(csvPath)
	if err != nil {
		if os.IsNotExist(err) {
			log.Printf("product master not found at %s, leaving collection empty", csvPath)
			return 0, nil
		}
		return 0, err
	}
	defer f.Close()

	rows, err := readCSVRows(f)
	if err != nil {
		return 0, domain.NewDomainErrorWithCause(domain.ErrCodeValidation, "failed to parse product master CSV", err)
	}

	documents := make([]string, 0, len(rows))
	metadatas := make([]map[string]string, 0, len(rows))
	ids := make([]string, 0, len(rows))

	for idx, row := range rows {
		sku := row[columnSKU]
		cnpn := row[columnCNPN]
		name := row[columnProductName]
		claims := row[columnAllowedClaims]
		category := row[columnCategory]

		text := fmt.Sprintf("Product: %s\nSKU: %s\nCNPN: %s\nCategory: %s\nClaims: %s",
			name, sku, cnpn, category, claims)

		documents = append(documents, text)
		metadatas = append(metadatas, map[string]string{
			"source":       domain.CollectionProductMaster.String(),
			"sku":          sku,
			"cnpn":         cnpn,
			"product_name": name,
			"category":     category,
		})
		ids = append(ids, fmt.Sprintf("product_%d", idx))
	}

	if len(documents) > 0 {
		if err := ix.store.AddDocuments(ctx, domain.CollectionProductMaster, documents, metadatas, ids); err != nil {
			return 0, err
		}
	}

	return len(documents), nil
}

// IndexKnowledgeBase rebuilds the knowledge_base collection from a
// knowledge source. Each document is chunked into overlapping word
// windows; a per-document read failure is logged and skipped so the
// rest of the source still indexes.
func (ix *Indexer) IndexKnowledgeBase(ctx context.Context, source KnowledgeSource) (int, error) {
	if err := ix.store.ResetCollection(ctx, domain.CollectionKnowledgeBase); err != nil {
		return 0, err
	}

	names, err := source.List(ctx)
	if err != nil {
		return 0, err
	}

	var documents []string
	var metadatas []map[string]string
	var ids []string

	for _, name := range names {
		content, err := source.Read(ctx, name)
		if err != nil {
			log.Printf("error indexing %s: %v", name, err)
			continue
		}

		chunks, err := ChunkWithMetadata(content, map[string]string{
			"source":   domain.CollectionKnowledgeBase.String(),
			"filename": name,
			"filepath": source.Path(name),
		}, DefaultChunkSize, DefaultChunkOverlap)
		if err != nil {
			log.Printf("error chunking %s: %v", name, err)
			continue
		}

		for i, chunk := range chunks {
			documents = append(documents, chunk.Text)
			metadatas = append(metadatas, chunk.Metadata)
			ids = append(ids, fmt.Sprintf("kb_%s_%d", name, i))
		}
	}

	if len(documents) > 0 {
		if err := ix.store.AddDocuments(ctx, domain.CollectionKnowledgeBase, documents, metadatas, ids); err != nil {
			return 0, err
		}
	}

	return len(documents), nil
}

// readCSVRows parses a header-keyed CSV into one map per row. Missing
// columns read as empty strings.
func readCSVRows(r io.Reader) ([]map[string]string, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		if err == io.EOF {
			return nil, nil
		}
		return nil, err
	}
	for i := range header {
		header[i] = strings.TrimSpace(header[i])
	}

	var rows []map[string]string
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		row := make(map[string]string, len(header))
		for i, col := range header {
			if i < len(record) {
				row[col] = strings.TrimSpace(record[i])
			}
		}
		rows = append(rows, row)
	}

	return rows, nil
}
