package handlers

import (
	"context"
	"net/http"

	"github.com/cloo-solutions/corpusai/internal/api"
	"github.com/cloo-solutions/corpusai/internal/service"
)

type StatsService interface {
	Collect(ctx context.Context) (*service.Stats, error)
}

type StatsHandler struct {
	svc StatsService
}

func NewStatsHandler(svc StatsService) *StatsHandler {
	return &StatsHandler{svc: svc}
}

func (h *StatsHandler) Get(w http.ResponseWriter, r *http.Request) {
	stats, err := h.svc.Collect(r.Context())
	if err != nil {
		api.HandleError(w, err)
		return
	}

	api.Success(w, http.StatusOK, stats)
}
