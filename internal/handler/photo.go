package handler

import (
	"log/slog"
	"net/http"

	"github.com/DukeRupert/homewatch/internal/domain"
	"github.com/DukeRupert/homewatch/internal/service"
)

// PhotoHandler serves photo upload and removal.
type PhotoHandler struct {
	photos service.PhotoService
	logger *slog.Logger
}

// NewPhotoHandler creates a PhotoHandler.
func NewPhotoHandler(photos service.PhotoService, logger *slog.Logger) *PhotoHandler {
	return &PhotoHandler{photos: photos, logger: logger}
}

// Upload handles POST /items/{id}/photos. Expects a multipart form with
// the photo under the "photo" field.
func (h *PhotoHandler) Upload(w http.ResponseWriter, r *http.Request) {
	itemID, err := pathUUID(r, "id")
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, domain.MaxPhotoSize+1024)
	file, header, err := r.FormFile("photo")
	if err != nil {
		ErrorResponse(w, r, h.logger, domain.Invalid("", "a multipart \"photo\" field is required"))
		return
	}
	defer file.Close()

	photo, err := h.photos.Upload(r.Context(), service.UploadPhotoParams{
		ItemID:      itemID,
		Filename:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Data:        file,
	})
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]string{
		"id":           photo.ID.String(),
		"storage_path": photo.StoragePath,
	})
}

// Delete handles DELETE /photos/{id}.
func (h *PhotoHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "id")
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	if err := h.photos.Delete(r.Context(), id); err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
