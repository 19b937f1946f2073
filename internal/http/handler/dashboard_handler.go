package handler

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/otoservis/garage-api/internal/service"
)

type DashboardHandler struct {
	dashboard *service.DashboardService
	logger    *zap.Logger
}

func NewDashboardHandler(dashboard *service.DashboardService, logger *zap.Logger) *DashboardHandler {
	return &DashboardHandler{
		dashboard: dashboard,
		logger:    logger,
	}
}

func (h *DashboardHandler) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.dashboard.Stats(r.Context())
	if err != nil {
		h.logger.Error("failed to build dashboard stats", zap.Error(err))
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, stats)
}

func (h *DashboardHandler) StatusCounts(w http.ResponseWriter, r *http.Request) {
	counts, err := h.dashboard.StatusCounts(r.Context())
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, counts)
}
