package handler

import (
	"io"
	"net/http"

	"go.uber.org/zap"

	"github.com/otoservis/garage-api/internal/domain"
	"github.com/otoservis/garage-api/internal/service"
)

// maxPhotoFormMemory bounds how much of a multipart upload stays in memory
const maxPhotoFormMemory = 16 << 20

type PhotoHandler struct {
	photoService *service.PhotoService
	logger       *zap.Logger
}

func NewPhotoHandler(photoService *service.PhotoService, logger *zap.Logger) *PhotoHandler {
	return &PhotoHandler{
		photoService: photoService,
		logger:       logger,
	}
}

// Upload accepts a multipart form with a "file" part plus optional
// "category" and "caption" fields.
func (h *PhotoHandler) Upload(w http.ResponseWriter, r *http.Request) {
	orderID, err := idParam(r, "id")
	if err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := r.ParseMultipartForm(maxPhotoFormMemory); err != nil {
		respondWithError(w, http.StatusBadRequest, "expected multipart form data")
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "missing file field")
		return
	}
	defer file.Close()

	content, err := io.ReadAll(file)
	if err != nil {
		h.logger.Error("failed to read uploaded photo", zap.Error(err))
		respondWithError(w, http.StatusInternalServerError, "failed to read upload")
		return
	}

	category := domain.PhotoCategory(r.FormValue("category"))
	caption := r.FormValue("caption")

	photo, err := h.photoService.Upload(r.Context(), orderID, header.Filename, content, category, caption)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, photo)
}

func (h *PhotoHandler) List(w http.ResponseWriter, r *http.Request) {
	orderID, err := idParam(r, "id")
	if err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	photos, err := h.photoService.ListByWorkOrder(r.Context(), orderID)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, photos)
}

// File streams the stored image itself
func (h *PhotoHandler) File(w http.ResponseWriter, r *http.Request) {
	photoID, err := idParam(r, "photoId")
	if err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	path, err := h.photoService.FilePath(r.Context(), photoID)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	http.ServeFile(w, r, path)
}

func (h *PhotoHandler) Delete(w http.ResponseWriter, r *http.Request) {
	photoID, err := idParam(r, "photoId")
	if err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.photoService.Delete(r.Context(), photoID); err != nil {
		respondServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
