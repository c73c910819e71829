package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/brandloom-ai/brandloom/internal/api/handlers"
	"github.com/brandloom-ai/brandloom/internal/domain"
	"github.com/brandloom-ai/brandloom/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockIndexService struct {
	mock.Mock
}

func (m *MockIndexService) IndexProductMaster(ctx context.Context, csvPath string) (int, error) {
	args := m.Called(ctx, csvPath)
	return args.Int(0), args.Error(1)
}

func (m *MockIndexService) IndexKnowledgeBase(ctx context.Context, source service.KnowledgeSource) (int, error) {
	args := m.Called(ctx, source)
	return args.Int(0), args.Error(1)
}

type MockCounter struct {
	mock.Mock
}

func (m *MockCounter) Count(ctx context.Context, collection domain.Collection) (int, error) {
	args := m.Called(ctx, collection)
	return args.Int(0), args.Error(1)
}

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

type MockRewriteService struct {
	mock.Mock
}

func (m *MockRewriteService) RewriteWithRAG(ctx context.Context, input service.RewriteInput) (*domain.RewriteResult, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.RewriteResult), args.Error(1)
}

func testRouter(token string, searchSvc *MockSearchService, counter *MockCounter) http.Handler {
	return NewRouter(RouterConfig{
		APIToken:       token,
		IndexHandler:   handlers.NewIndexHandler(new(MockIndexService), counter, "data/products.csv", nil),
		SearchHandler:  handlers.NewSearchHandler(searchSvc),
		RewriteHandler: handlers.NewRewriteHandler(new(MockRewriteService), nil, nil),
		DedupeHandler:  handlers.NewDedupeHandler(nil, service.NewSparseReducer()),
	})
}

func TestRouter_Health(t *testing.T) {
	router := testRouter("", new(MockSearchService), new(MockCounter))

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"status":"ok"`)
}

func TestRouter_SearchRoute(t *testing.T) {
	searchSvc := new(MockSearchService)
	searchSvc.On("RetrieveKnowledge", mock.Anything, "washing", 5).
		Return([]domain.RetrievalResult{}, nil)

	router := testRouter("", searchSvc, new(MockCounter))

	body, _ := json.Marshal(map[string]string{"query": "washing", "collection": "knowledge_base"})
	req := httptest.NewRequest(http.MethodPost, "/v1/search", bytes.NewReader(body))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	searchSvc.AssertExpectations(t)
}

func TestRouter_CountRoute(t *testing.T) {
	counter := new(MockCounter)
	counter.On("Count", mock.Anything, domain.CollectionKnowledgeBase).Return(9, nil)

	router := testRouter("", new(MockSearchService), counter)

	req := httptest.NewRequest(http.MethodGet, "/v1/collections/knowledge_base/count", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"count":9`)
}

func TestRouter_AuthProtectsV1(t *testing.T) {
	router := testRouter("secret", new(MockSearchService), new(MockCounter))

	req := httptest.NewRequest(http.MethodPost, "/v1/dedupe", bytes.NewReader([]byte(`{"chunks":[]}`)))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	req = httptest.NewRequest(http.MethodPost, "/v1/dedupe", bytes.NewReader([]byte(`{"chunks":[]}`)))
	req.Header.Set("Authorization", "Bearer secret")
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRouter_HealthBypassesAuth(t *testing.T) {
	router := testRouter("secret", new(MockSearchService), new(MockCounter))

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRouter_RequestIDHeader(t *testing.T) {
	router := testRouter("", new(MockSearchService), new(MockCounter))

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
}
