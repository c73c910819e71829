package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/brandloom-ai/brandloom/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockSearchService struct {
	mock.Mock
}

func (m *MockSearchService) RetrieveProductFacts(ctx context.Context, query string, n int, sku string) ([]domain.RetrievalResult, error) {
	args := m.Called(ctx, query, n, sku)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.RetrievalResult), args.Error(1)
}

func (m *MockSearchService) RetrieveKnowledge(ctx context.Context, query string, n int) ([]domain.RetrievalResult, error) {
	args := m.Called(ctx, query, n)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.RetrievalResult), args.Error(1)
}

func doSearch(t *testing.T, h *SearchHandler, body any) *httptest.ResponseRecorder {
	t.Helper()
	payload, err := json.Marshal(body)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/v1/search", bytes.NewReader(payload))
	w := httptest.NewRecorder()
	h.Search(w, req)
	return w
}

func TestSearch_ProductMaster(t *testing.T) {
	svc := new(MockSearchService)
	svc.On("RetrieveProductFacts", mock.Anything, "argan shampoo", 5, "HM-001").
		Return([]domain.RetrievalResult{
			{Text: "Product: Argan Shampoo", RelevanceScore: 0.9, Source: domain.SourceProductMaster, Citation: "HM-001 - Argan Shampoo"},
		}, nil)

	h := NewSearchHandler(svc)
	w := doSearch(t, h, SearchRequest{Query: "argan shampoo", Collection: "product_master", SKU: "HM-001"})

	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Data SearchResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "product_master", resp.Data.Collection)
	require.Len(t, resp.Data.Results, 1)
	assert.Equal(t, "HM-001 - Argan Shampoo", resp.Data.Results[0].Citation)
	svc.AssertExpectations(t)
}

func TestSearch_KnowledgeBaseWithExplicitN(t *testing.T) {
	svc := new(MockSearchService)
	svc.On("RetrieveKnowledge", mock.Anything, "washing", 2).
		Return([]domain.RetrievalResult{}, nil)

	h := NewSearchHandler(svc)
	w := doSearch(t, h, SearchRequest{Query: "washing", Collection: "knowledge_base", N: 2})

	require.Equal(t, http.StatusOK, w.Code)
	svc.AssertExpectations(t)
}

func TestSearch_EmptyQuery(t *testing.T) {
	h := NewSearchHandler(new(MockSearchService))
	w := doSearch(t, h, SearchRequest{Query: "   ", Collection: "product_master"})

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSearch_UnknownCollection(t *testing.T) {
	h := NewSearchHandler(new(MockSearchService))
	w := doSearch(t, h, SearchRequest{Query: "q", Collection: "other"})

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSearch_InvalidBody(t *testing.T) {
	h := NewSearchHandler(new(MockSearchService))

	req := httptest.NewRequest(http.MethodPost, "/v1/search", bytes.NewReader([]byte("{not json")))
	w := httptest.NewRecorder()
	h.Search(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}
