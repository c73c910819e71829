package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/brandloom-ai/brandloom/internal/api"
	"github.com/brandloom-ai/brandloom/internal/domain"
	"github.com/brandloom-ai/brandloom/internal/service"
)

type RewriteService interface {
	RewriteWithRAG(ctx context.Context, input service.RewriteInput) (*domain.RewriteResult, error)
}

// RewriteHandler runs the full rewrite flow for one document: the
// generation call, glossary substitution over the rewritten text, and
// the QA gates. Glossary and QA are post-processing; a failed check is
// reported in the response, not an HTTP error.
type RewriteHandler struct {
	svc      RewriteService
	glossary *service.Glossary
	qa       *service.QARunner
}

func NewRewriteHandler(svc RewriteService, glossary *service.Glossary, qa *service.QARunner) *RewriteHandler {
	return &RewriteHandler{svc: svc, glossary: glossary, qa: qa}
}

type RewriteRequest struct {
	Text         string `json:"text"`
	Lang         string `json:"lang"`
	DocumentType string `json:"document_type,omitempty"`
	UseRAG       *bool  `json:"use_rag,omitempty"`
}

type RewriteResponse struct {
	Text      string                  `json:"text"`
	Metadata  *domain.RewriteMetadata `json:"metadata"`
	ParseMode domain.ParseMode        `json:"parse_mode"`
	QAChecks  []service.QACheck       `json:"qa_checks,omitempty"`
}

func (h *RewriteHandler) Rewrite(w http.ResponseWriter, r *http.Request) {
	var req RewriteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if strings.TrimSpace(req.Text) == "" {
		api.Error(w, http.StatusBadRequest, "text is required")
		return
	}
	if req.Lang == "" {
		api.Error(w, http.StatusBadRequest, "lang is required")
		return
	}

	useRAG := true
	if req.UseRAG != nil {
		useRAG = *req.UseRAG
	}

	result, err := h.svc.RewriteWithRAG(r.Context(), service.RewriteInput{
		Text:         req.Text,
		Lang:         req.Lang,
		DocumentType: req.DocumentType,
		UseRAG:       useRAG,
	})
	if err != nil {
		api.HandleError(w, err)
		return
	}

	text := result.Text
	if h.glossary != nil {
		text = h.glossary.Apply(text, req.Lang)
	}

	resp := RewriteResponse{
		Text:      text,
		Metadata:  result.Metadata,
		ParseMode: result.ParseMode,
	}
	if h.qa != nil {
		resp.QAChecks = h.qa.Run(text, req.Lang)
	}

	api.Success(w, http.StatusOK, resp)
}
