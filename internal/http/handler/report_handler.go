package handler

import (
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/otoservis/garage-api/internal/service"
)

type ReportHandler struct {
	reportService *service.ReportService
	logger        *zap.Logger
}

func NewReportHandler(reportService *service.ReportService, logger *zap.Logger) *ReportHandler {
	return &ReportHandler{
		reportService: reportService,
		logger:        logger,
	}
}

// reportRange parses startDate/endDate query parameters (YYYY-MM-DD).
// The default window is the current month to date; the end date is
// inclusive, so the returned upper bound is the following midnight.
func reportRange(r *http.Request) (time.Time, time.Time, error) {
	now := time.Now()
	start := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	end := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())

	if raw := r.URL.Query().Get("startDate"); raw != "" {
		parsed, err := time.ParseInLocation("2006-01-02", raw, now.Location())
		if err != nil {
			return time.Time{}, time.Time{}, err
		}
		start = parsed
	}
	if raw := r.URL.Query().Get("endDate"); raw != "" {
		parsed, err := time.ParseInLocation("2006-01-02", raw, now.Location())
		if err != nil {
			return time.Time{}, time.Time{}, err
		}
		end = parsed
	}
	return start, end.AddDate(0, 0, 1), nil
}

func (h *ReportHandler) Revenue(w http.ResponseWriter, r *http.Request) {
	from, to, err := reportRange(r)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid date, expected YYYY-MM-DD")
		return
	}

	report, err := h.reportService.Revenue(r.Context(), from, to)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, report)
}

func (h *ReportHandler) Technicians(w http.ResponseWriter, r *http.Request) {
	from, to, err := reportRange(r)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid date, expected YYYY-MM-DD")
		return
	}

	stats, err := h.reportService.TechnicianPerformance(r.Context(), from, to)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, stats)
}

func (h *ReportHandler) Vehicles(w http.ResponseWriter, r *http.Request) {
	counts, err := h.reportService.MostServicedVehicles(r.Context())
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, counts)
}

func (h *ReportHandler) Parts(w http.ResponseWriter, r *http.Request) {
	usage, err := h.reportService.MostUsedParts(r.Context())
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, usage)
}

func (h *ReportHandler) Debts(w http.ResponseWriter, r *http.Request) {
	debts, err := h.reportService.CustomerDebts(r.Context())
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, debts)
}
