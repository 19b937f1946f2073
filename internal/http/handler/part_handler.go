package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/otoservis/garage-api/internal/domain"
	"github.com/otoservis/garage-api/internal/service"
)

type PartHandler struct {
	partService *service.PartService
	logger      *zap.Logger
}

func NewPartHandler(partService *service.PartService, logger *zap.Logger) *PartHandler {
	return &PartHandler{
		partService: partService,
		logger:      logger,
	}
}

func (h *PartHandler) List(w http.ResponseWriter, r *http.Request) {
	page, pageSize := pageParams(r)
	search := r.URL.Query().Get("search")
	category := r.URL.Query().Get("category")
	activeOnly := r.URL.Query().Get("includeInactive") != "true"

	parts, total, err := h.partService.List(r.Context(), page, pageSize, search, category, activeOnly)
	if err != nil {
		h.logger.Error("failed to list parts", zap.Error(err))
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, paginated(parts, total, page, pageSize))
}

// CriticalStock lists parts at or below their critical level
func (h *PartHandler) CriticalStock(w http.ResponseWriter, r *http.Request) {
	parts, err := h.partService.ListCriticalStock(r.Context())
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, parts)
}

func (h *PartHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	part, err := h.partService.GetByID(r.Context(), id)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, part)
}

func (h *PartHandler) GetByStockCode(w http.ResponseWriter, r *http.Request) {
	code := chi.URLParam(r, "code")
	part, err := h.partService.GetByStockCode(r.Context(), code)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, part)
}

func (h *PartHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req domain.CreatePartRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := validate.Struct(&req); err != nil {
		respondValidationError(w, err)
		return
	}

	part, err := h.partService.Create(r.Context(), &req)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, part)
}

func (h *PartHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	var req domain.UpdatePartRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := validate.Struct(&req); err != nil {
		respondValidationError(w, err)
		return
	}

	part, err := h.partService.Update(r.Context(), id, &req)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, part)
}

// AdjustStock applies a manual stock correction by a signed delta
func (h *PartHandler) AdjustStock(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	var req domain.AdjustStockRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := validate.Struct(&req); err != nil {
		respondValidationError(w, err)
		return
	}

	part, err := h.partService.AdjustStock(r.Context(), id, req.Delta)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, part)
}

// Deactivate hides the part from the active catalog
func (h *PartHandler) Deactivate(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.partService.Deactivate(r.Context(), id); err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusNoContent, nil)
}
