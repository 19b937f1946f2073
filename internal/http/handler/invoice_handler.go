package handler

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"github.com/otoservis/garage-api/internal/domain"
	"github.com/otoservis/garage-api/internal/service"
)

type InvoiceHandler struct {
	invoiceService *service.InvoiceService
	logger         *zap.Logger
}

func NewInvoiceHandler(invoiceService *service.InvoiceService, logger *zap.Logger) *InvoiceHandler {
	return &InvoiceHandler{
		invoiceService: invoiceService,
		logger:         logger,
	}
}

func (h *InvoiceHandler) List(w http.ResponseWriter, r *http.Request) {
	page, pageSize := pageParams(r)

	var status domain.PaymentStatus
	if raw := r.URL.Query().Get("paymentStatus"); raw != "" {
		status = domain.PaymentStatus(raw)
	}

	invoices, total, err := h.invoiceService.List(r.Context(), page, pageSize, status)
	if err != nil {
		h.logger.Error("failed to list invoices", zap.Error(err))
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, paginated(invoices, total, page, pageSize))
}

func (h *InvoiceHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	invoice, err := h.invoiceService.GetByID(r.Context(), id)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, invoice)
}

// GetByWorkOrder returns the invoice issued for a work order, if any
func (h *InvoiceHandler) GetByWorkOrder(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	invoice, err := h.invoiceService.GetByWorkOrder(r.Context(), id)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, invoice)
}

func (h *InvoiceHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req domain.CreateInvoiceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := validate.Struct(&req); err != nil {
		respondValidationError(w, err)
		return
	}

	invoice, err := h.invoiceService.Create(r.Context(), &req)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, invoice)
}

// SetPaymentStatus manually overrides the settlement status
func (h *InvoiceHandler) SetPaymentStatus(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	var req domain.UpdateInvoiceStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := validate.Struct(&req); err != nil {
		respondValidationError(w, err)
		return
	}

	invoice, err := h.invoiceService.SetPaymentStatus(r.Context(), id, req.PaymentStatus)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, invoice)
}
