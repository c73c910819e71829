package handlers

import (
	"context"
	"net/http"

	"github.com/brandloom-ai/brandloom/internal/api"
	"github.com/brandloom-ai/brandloom/internal/domain"
	"github.com/brandloom-ai/brandloom/internal/service"
	"github.com/go-chi/chi/v5"
)

type IndexService interface {
	IndexProductMaster(ctx context.Context, csvPath string) (int, error)
	IndexKnowledgeBase(ctx context.Context, source service.KnowledgeSource) (int, error)
}

type CollectionCounter interface {
	Count(ctx context.Context, collection domain.Collection) (int, error)
}

// IndexHandler exposes the collection rebuild operations. The product
// master path and the knowledge source are fixed at startup; indexing is
// triggered per collection, never partially.
type IndexHandler struct {
	svc        IndexService
	counter    CollectionCounter
	productCSV string
	knowledge  service.KnowledgeSource
}

func NewIndexHandler(svc IndexService, counter CollectionCounter, productCSV string, knowledge service.KnowledgeSource) *IndexHandler {
	return &IndexHandler{svc: svc, counter: counter, productCSV: productCSV, knowledge: knowledge}
}

type IndexResponse struct {
	Collection string `json:"collection"`
	Indexed    int    `json:"indexed"`
}

func (h *IndexHandler) IndexProducts(w http.ResponseWriter, r *http.Request) {
	count, err := h.svc.IndexProductMaster(r.Context(), h.productCSV)
	if err != nil {
		api.HandleError(w, err)
		return
	}

	api.Success(w, http.StatusOK, IndexResponse{
		Collection: domain.CollectionProductMaster.String(),
		Indexed:    count,
	})
}

func (h *IndexHandler) IndexKnowledge(w http.ResponseWriter, r *http.Request) {
	count, err := h.svc.IndexKnowledgeBase(r.Context(), h.knowledge)
	if err != nil {
		api.HandleError(w, err)
		return
	}

	api.Success(w, http.StatusOK, IndexResponse{
		Collection: domain.CollectionKnowledgeBase.String(),
		Indexed:    count,
	})
}

type CountResponse struct {
	Collection string `json:"collection"`
	Count      int    `json:"count"`
}

func (h *IndexHandler) Count(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")

	collection, err := domain.ParseCollection(name)
	if err != nil {
		api.HandleError(w, err)
		return
	}

	count, err := h.counter.Count(r.Context(), collection)
	if err != nil {
		api.HandleError(w, err)
		return
	}

	api.Success(w, http.StatusOK, CountResponse{Collection: collection.String(), Count: count})
}
