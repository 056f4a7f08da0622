package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/cloo-solutions/corpusai/internal/api"
	"github.com/cloo-solutions/corpusai/internal/domain"
)

const (
	defaultSearchLimit     = 10
	defaultSearchThreshold = 0.7
)

type SearchService interface {
	VectorSearch(ctx context.Context, query string, limit int, threshold float64) ([]*domain.SearchResult, error)
	HybridSearch(ctx context.Context, query string, limit int, threshold float64) ([]*domain.SearchResult, error)
}

type SearchHandler struct {
	svc SearchService
}

func NewSearchHandler(svc SearchService) *SearchHandler {
	return &SearchHandler{svc: svc}
}

type SearchRequest struct {
	Query     string   `json:"query"`
	Mode      string   `json:"mode"`
	Limit     *int     `json:"limit"`
	Threshold *float64 `json:"threshold"`
}

type SearchResponse struct {
	Results []*domain.SearchResult `json:"results"`
}

func (h *SearchHandler) Search(w http.ResponseWriter, r *http.Request) {
	var req SearchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if strings.TrimSpace(req.Query) == "" {
		api.HandleError(w, domain.ErrBlankQuery)
		return
	}

	limit := defaultSearchLimit
	if req.Limit != nil && *req.Limit > 0 {
		limit = *req.Limit
	}
	threshold := defaultSearchThreshold
	if req.Threshold != nil {
		threshold = *req.Threshold
	}

	var results []*domain.SearchResult
	var err error
	switch req.Mode {
	case "", "hybrid":
		results, err = h.svc.HybridSearch(r.Context(), req.Query, limit, threshold)
	case "vector":
		results, err = h.svc.VectorSearch(r.Context(), req.Query, limit, threshold)
	default:
		api.Error(w, http.StatusBadRequest, "mode must be hybrid or vector")
		return
	}
	if err != nil {
		api.HandleError(w, err)
		return
	}

	api.Success(w, http.StatusOK, SearchResponse{Results: results})
}
