package handler

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/otoservis/garage-api/internal/domain"
	"github.com/otoservis/garage-api/internal/service"
)

type VehicleHandler struct {
	vehicleService *service.VehicleService
	logger         *zap.Logger
}

func NewVehicleHandler(vehicleService *service.VehicleService, logger *zap.Logger) *VehicleHandler {
	return &VehicleHandler{
		vehicleService: vehicleService,
		logger:         logger,
	}
}

func (h *VehicleHandler) List(w http.ResponseWriter, r *http.Request) {
	page, pageSize := pageParams(r)
	search := r.URL.Query().Get("search")

	var customerID uint
	if raw := r.URL.Query().Get("customerId"); raw != "" {
		if v, err := strconv.ParseUint(raw, 10, 64); err == nil {
			customerID = uint(v)
		}
	}

	vehicles, total, err := h.vehicleService.List(r.Context(), page, pageSize, search, customerID)
	if err != nil {
		h.logger.Error("failed to list vehicles", zap.Error(err))
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, paginated(vehicles, total, page, pageSize))
}

func (h *VehicleHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	vehicle, err := h.vehicleService.GetByID(r.Context(), id)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, vehicle)
}

// GetByPlate looks a vehicle up by its plate number, spaces and case ignored
func (h *VehicleHandler) GetByPlate(w http.ResponseWriter, r *http.Request) {
	plate := chi.URLParam(r, "plate")
	if plate == "" {
		respondWithError(w, http.StatusBadRequest, "missing plate number")
		return
	}

	vehicle, err := h.vehicleService.GetByPlateNumber(r.Context(), plate)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, vehicle)
}

func (h *VehicleHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req domain.CreateVehicleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := validate.Struct(&req); err != nil {
		respondValidationError(w, err)
		return
	}

	vehicle, err := h.vehicleService.Create(r.Context(), &req)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, vehicle)
}

func (h *VehicleHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	var req domain.UpdateVehicleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := validate.Struct(&req); err != nil {
		respondValidationError(w, err)
		return
	}

	vehicle, err := h.vehicleService.Update(r.Context(), id, &req)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, vehicle)
}

func (h *VehicleHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.vehicleService.Delete(r.Context(), id); err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusNoContent, nil)
}
