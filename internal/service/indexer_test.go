package service

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/brandloom-ai/brandloom/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeStore is an in-memory VectorStore capturing writes
type fakeStore struct {
	docs     map[domain.Collection][]string
	metas    map[domain.Collection][]map[string]string
	ids      map[domain.Collection][]string
	resets   []domain.Collection
	queryOut []Match
	queryErr error
	addErr   error
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		docs:  make(map[domain.Collection][]string),
		metas: make(map[domain.Collection][]map[string]string),
		ids:   make(map[domain.Collection][]string),
	}
}

func (s *fakeStore) AddDocuments(ctx context.Context, c domain.Collection, docs []string, metas []map[string]string, ids []string) error {
	if s.addErr != nil {
		return s.addErr
	}
	s.docs[c] = append(s.docs[c], docs...)
	s.metas[c] = append(s.metas[c], metas...)
	s.ids[c] = append(s.ids[c], ids...)
	return nil
}

func (s *fakeStore) Query(ctx context.Context, c domain.Collection, q string, n int, filter map[string]string) ([]Match, error) {
	if s.queryErr != nil {
		return nil, s.queryErr
	}
	if len(s.queryOut) > n {
		return s.queryOut[:n], nil
	}
	return s.queryOut, nil
}

func (s *fakeStore) ResetCollection(ctx context.Context, c domain.Collection) error {
	s.resets = append(s.resets, c)
	s.docs[c] = nil
	s.metas[c] = nil
	s.ids[c] = nil
	return nil
}

func (s *fakeStore) Count(ctx context.Context, c domain.Collection) (int, error) {
	return len(s.docs[c]), nil
}

const productCSV = `SKU,CNPN,Product_Name,Allowed_Claims,Category
HM-001,CN-100,Argan Shampoo,Strengthens hair,Hair Care
HM-002,CN-200,Beard Oil,Softens beard,Beard Care
`

func writeProductCSV(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "Product_Master.csv")
	require.NoError(t, os.WriteFile(path, []byte(productCSV), 0o644))
	return path
}

func TestIndexProductMaster_IndexesEveryRow(t *testing.T) {
	store := newFakeStore()
	ix := NewIndexer(store)

	count, err := ix.IndexProductMaster(context.Background(), writeProductCSV(t))
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	assert.Equal(t, []domain.Collection{domain.CollectionProductMaster}, store.resets)
	require.Len(t, store.docs[domain.CollectionProductMaster], 2)

	assert.Equal(t,
		"Product: Argan Shampoo\nSKU: HM-001\nCNPN: CN-100\nCategory: Hair Care\nClaims: Strengthens hair",
		store.docs[domain.CollectionProductMaster][0])
	assert.Equal(t, []string{"product_0", "product_1"}, store.ids[domain.CollectionProductMaster])

	meta := store.metas[domain.CollectionProductMaster][1]
	assert.Equal(t, "HM-002", meta["sku"])
	assert.Equal(t, "Beard Oil", meta["product_name"])
	assert.Equal(t, "product_master", meta["source"])
}

func TestIndexProductMaster_MissingFileLeavesEmptyCollection(t *testing.T) {
	store := newFakeStore()
	ix := NewIndexer(store)

	count, err := ix.IndexProductMaster(context.Background(), filepath.Join(t.TempDir(), "absent.csv"))
	require.NoError(t, err)
	assert.Equal(t, 0, count)

	// The collection was still reset, so stale rows are gone.
	assert.Equal(t, []domain.Collection{domain.CollectionProductMaster}, store.resets)
	assert.Empty(t, store.docs[domain.CollectionProductMaster])
}

func TestIndexKnowledgeBase_ChunksAndIndexesFiles(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "care.md"), []byte(wordsFixture(60)), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "about.txt"), []byte("short note"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "ignored.pdf"), []byte("binary"), 0o644))

	store := newFakeStore()
	ix := NewIndexer(store)

	count, err := ix.IndexKnowledgeBase(context.Background(), NewDirSource(dir))
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	// Files index in lexicographic order: about.txt before care.md.
	assert.Equal(t, []string{"kb_about.txt_0", "kb_care.md_0"}, store.ids[domain.CollectionKnowledgeBase])

	meta := store.metas[domain.CollectionKnowledgeBase][0]
	assert.Equal(t, "knowledge_base", meta["source"])
	assert.Equal(t, "about.txt", meta["filename"])
	assert.Equal(t, "0", meta[domain.MetadataKeyChunkID])
}

func TestIndexKnowledgeBase_SkipsUnreadableFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "good.txt"), []byte("valid content here"), 0o644))
	// A dangling symlink lists fine but fails to read.
	require.NoError(t, os.Symlink(filepath.Join(dir, "nowhere"), filepath.Join(dir, "broken.txt")))

	store := newFakeStore()
	ix := NewIndexer(store)

	count, err := ix.IndexKnowledgeBase(context.Background(), NewDirSource(dir))
	require.NoError(t, err)
	assert.Equal(t, 1, count)
	assert.Equal(t, []string{"kb_good.txt_0"}, store.ids[domain.CollectionKnowledgeBase])
}

func TestIndexKnowledgeBase_MissingDirCreatedEmpty(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "knowledge")

	store := newFakeStore()
	ix := NewIndexer(store)

	count, err := ix.IndexKnowledgeBase(context.Background(), NewDirSource(dir))
	require.NoError(t, err)
	assert.Equal(t, 0, count)

	info, err := os.Stat(dir)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}
