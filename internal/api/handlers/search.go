package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/brandloom-ai/brandloom/internal/api"
	"github.com/brandloom-ai/brandloom/internal/domain"
)

const defaultSearchResults = 5

type SearchService interface {
	RetrieveProductFacts(ctx context.Context, query string, n int, sku string) ([]domain.RetrievalResult, error)
	RetrieveKnowledge(ctx context.Context, query string, n int) ([]domain.RetrievalResult, error)
}

type SearchHandler struct {
	svc SearchService
}

func NewSearchHandler(svc SearchService) *SearchHandler {
	return &SearchHandler{svc: svc}
}

type SearchRequest struct {
	Query      string `json:"query"`
	Collection string `json:"collection"`
	N          int    `json:"n"`
	SKU        string `json:"sku,omitempty"`
}

type SearchResponse struct {
	Collection string                   `json:"collection"`
	Results    []domain.RetrievalResult `json:"results"`
}

func (h *SearchHandler) Search(w http.ResponseWriter, r *http.Request) {
	var req SearchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if strings.TrimSpace(req.Query) == "" {
		api.HandleError(w, domain.ErrEmptyQuery)
		return
	}

	collection, err := domain.ParseCollection(req.Collection)
	if err != nil {
		api.HandleError(w, err)
		return
	}

	n := req.N
	if n <= 0 {
		n = defaultSearchResults
	}

	var results []domain.RetrievalResult
	switch collection {
	case domain.CollectionProductMaster:
		results, err = h.svc.RetrieveProductFacts(r.Context(), req.Query, n, req.SKU)
	case domain.CollectionKnowledgeBase:
		results, err = h.svc.RetrieveKnowledge(r.Context(), req.Query, n)
	}
	if err != nil {
		api.HandleError(w, err)
		return
	}

	if results == nil {
		results = []domain.RetrievalResult{}
	}

	api.Success(w, http.StatusOK, SearchResponse{Collection: collection.String(), Results: results})
}
