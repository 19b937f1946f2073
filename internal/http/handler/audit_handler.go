package handler

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/otoservis/garage-api/internal/service"
)

type AuditHandler struct {
	audit  *service.AuditService
	logger *zap.Logger
}

func NewAuditHandler(audit *service.AuditService, logger *zap.Logger) *AuditHandler {
	return &AuditHandler{
		audit:  audit,
		logger: logger,
	}
}

// Recent returns the latest audit entries across all entities
func (h *AuditHandler) Recent(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil {
			limit = v
		}
	}

	entries, err := h.audit.GetRecent(r.Context(), limit)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, entries)
}

// ByEntity returns the audit trail for one entity, newest first
func (h *AuditHandler) ByEntity(w http.ResponseWriter, r *http.Request) {
	entityName := chi.URLParam(r, "entity")
	entityID, err := idParam(r, "id")
	if err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil && v > 0 {
			limit = v
		}
	}

	entries, err := h.audit.GetByEntity(r.Context(), entityName, entityID, limit)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, entries)
}
