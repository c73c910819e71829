package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/brandloom-ai/brandloom/internal/api"
	"github.com/brandloom-ai/brandloom/internal/service"
)

const (
	strategyDense  = "dense"
	strategySparse = "sparse"
)

type DenseDeduper interface {
	Reduce(ctx context.Context, chunks []string, threshold float64) ([]string, error)
}

type SparseDeduper interface {
	Reduce(chunks []string, threshold float64) []string
}

// DedupeHandler exposes both reduction strategies. Dense needs an
// embedding service and may be absent in offline deployments; sparse
// always works.
type DedupeHandler struct {
	dense  DenseDeduper
	sparse SparseDeduper
}

func NewDedupeHandler(dense DenseDeduper, sparse SparseDeduper) *DedupeHandler {
	return &DedupeHandler{dense: dense, sparse: sparse}
}

type DedupeRequest struct {
	Chunks    []string `json:"chunks"`
	Threshold *float64 `json:"threshold,omitempty"`
	Strategy  string   `json:"strategy,omitempty"`
}

type DedupeResponse struct {
	Strategy string   `json:"strategy"`
	Chunks   []string `json:"chunks"`
	Removed  int      `json:"removed"`
}

func (h *DedupeHandler) Dedupe(w http.ResponseWriter, r *http.Request) {
	var req DedupeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	threshold := service.DefaultDedupeThreshold
	if req.Threshold != nil {
		threshold = *req.Threshold
	}
	if threshold < 0 || threshold > 1 {
		api.Error(w, http.StatusBadRequest, "threshold must be between 0 and 1")
		return
	}

	strategy := req.Strategy
	if strategy == "" {
		strategy = strategyDense
	}
	if strategy == strategyDense && h.dense == nil {
		strategy = strategySparse
	}

	var kept []string
	switch strategy {
	case strategyDense:
		var err error
		kept, err = h.dense.Reduce(r.Context(), req.Chunks, threshold)
		if err != nil {
			api.HandleError(w, err)
			return
		}
	case strategySparse:
		kept = h.sparse.Reduce(req.Chunks, threshold)
	default:
		api.Error(w, http.StatusBadRequest, "strategy must be dense or sparse")
		return
	}

	if kept == nil {
		kept = []string{}
	}

	api.Success(w, http.StatusOK, DedupeResponse{
		Strategy: strategy,
		Chunks:   kept,
		Removed:  len(req.Chunks) - len(kept),
	})
}
