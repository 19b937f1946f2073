package handler

import (
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/otoservis/garage-api/internal/backup"
)

type BackupHandler struct {
	manager *backup.Manager
	logger  *zap.Logger
}

func NewBackupHandler(manager *backup.Manager, logger *zap.Logger) *BackupHandler {
	return &BackupHandler{
		manager: manager,
		logger:  logger,
	}
}

// List returns the snapshots currently on disk, newest first
func (h *BackupHandler) List(w http.ResponseWriter, r *http.Request) {
	snapshots, err := h.manager.List()
	if err != nil {
		h.logger.Error("failed to list backups", zap.Error(err))
		respondWithError(w, http.StatusInternalServerError, "failed to list backups")
		return
	}
	respondJSON(w, http.StatusOK, snapshots)
}

// Trigger runs a backup immediately, outside the nightly schedule
func (h *BackupHandler) Trigger(w http.ResponseWriter, r *http.Request) {
	if err := h.manager.Run(r.Context()); err != nil {
		if errors.Is(err, backup.ErrUnsupportedDriver) {
			respondWithError(w, http.StatusConflict, err.Error())
			return
		}
		h.logger.Error("manual backup failed", zap.Error(err))
		respondWithError(w, http.StatusInternalServerError, "backup failed")
		return
	}
	respondJSON(w, http.StatusCreated, map[string]string{"status": "backup written"})
}
