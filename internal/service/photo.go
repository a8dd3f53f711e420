// Package service contains the business logic layer.
//
// This file implements checklist photo upload and removal.
package service

import (
	"bytes"
	"context"
	"database/sql"
	"errors"
	"io"
	"log/slog"

	"github.com/DukeRupert/homewatch/internal/domain"
	"github.com/DukeRupert/homewatch/internal/metrics"
	"github.com/DukeRupert/homewatch/internal/repository"
	"github.com/DukeRupert/homewatch/internal/storage"
	"github.com/google/uuid"
)

// =============================================================================
// Interface Definition
// =============================================================================

// UploadPhotoParams holds input for uploading a checklist photo.
type UploadPhotoParams struct {
	ItemID      uuid.UUID
	Filename    string
	ContentType string
	Data        io.Reader
}

// PhotoService manages photo blobs and their database rows.
type PhotoService interface {
	// Upload stores the photo, generates a thumbnail for images, and
	// records the row against the checklist item.
	// Returns domain.ENOTFOUND if the item does not exist.
	// Returns domain.EINVALID for disallowed content types.
	// Returns domain.ETOOLARGE when the upload exceeds the size cap.
	Upload(ctx context.Context, params UploadPhotoParams) (*domain.ChecklistPhoto, error)

	// Delete removes the photo row, then its blob and thumbnail.
	// Blob removal is best-effort; the row is authoritative.
	// Returns domain.ENOTFOUND if the photo does not exist.
	Delete(ctx context.Context, photoID uuid.UUID) error
}

// =============================================================================
// Implementation
// =============================================================================

type photoService struct {
	queries    *repository.Queries
	store      storage.Storage
	thumbnails ThumbnailProcessor
	bucket     string
	logger     *slog.Logger
}

// NewPhotoService creates a PhotoService writing into the given bucket.
func NewPhotoService(
	queries *repository.Queries,
	store storage.Storage,
	thumbnails ThumbnailProcessor,
	bucket string,
	logger *slog.Logger,
) PhotoService {
	return &photoService{
		queries:    queries,
		store:      store,
		thumbnails: thumbnails,
		bucket:     bucket,
		logger:     logger,
	}
}

func (s *photoService) Upload(ctx context.Context, params UploadPhotoParams) (*domain.ChecklistPhoto, error) {
	const op = "photo.upload"

	item, err := s.queries.GetChecklistItemByID(ctx, params.ItemID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.NotFound(op, "checklist item", params.ItemID.String())
		}
		return nil, domain.Internal(err, op, "failed to load checklist item")
	}

	// Buffer the upload so it can be sniffed, stored, and thumbnailed.
	content, err := io.ReadAll(io.LimitReader(params.Data, domain.MaxPhotoSize+1))
	if err != nil {
		return nil, domain.Internal(err, op, "failed to read upload")
	}
	if int64(len(content)) > domain.MaxPhotoSize {
		metrics.PhotosUploaded.WithLabelValues("rejected").Inc()
		return nil, &domain.Error{
			Code:    domain.ETOOLARGE,
			Op:      op,
			Message: "photo exceeds the maximum upload size",
		}
	}

	contentType := storage.DetectContentType(params.ContentType, params.Filename, bytes.NewReader(content))
	if !storage.IsAllowedUploadType(contentType) {
		metrics.PhotosUploaded.WithLabelValues("rejected").Inc()
		return nil, domain.Invalid(op, "unsupported photo type: "+contentType)
	}

	key := storage.PhotoKey(item.ChecklistID, params.Filename)
	err = s.store.Upload(ctx, s.bucket, key, bytes.NewReader(content), storage.PutOptions{
		ContentType: contentType,
	})
	if err != nil {
		return nil, domain.Internal(err, op, "failed to store photo")
	}

	if storage.IsImage(contentType, params.Filename) {
		s.uploadThumbnail(ctx, key, content)
	}

	locator := s.bucket + "/" + key
	photo, err := s.queries.CreatePhoto(ctx, params.ItemID, locator)
	if err != nil {
		// Roll the blob back so storage doesn't accumulate orphans.
		if removeErr := s.store.Remove(ctx, s.bucket, []string{key, storage.ThumbnailKey(key)}); removeErr != nil {
			s.logger.Error("failed to clean up orphaned photo blob", "key", key, "error", removeErr)
		}
		return nil, domain.Internal(err, op, "failed to record photo")
	}

	metrics.PhotosUploaded.WithLabelValues("ok").Inc()
	s.logger.Info("photo uploaded",
		"photo_id", photo.ID,
		"item_id", params.ItemID,
		"locator", locator,
		"content_type", contentType,
		"size", len(content),
	)
	return &photo, nil
}

// uploadThumbnail generates and stores the thumbnail. Failures are logged
// and swallowed; the full-size photo is already safe.
func (s *photoService) uploadThumbnail(ctx context.Context, key string, content []byte) {
	thumb, err := s.thumbnails.GenerateThumbnail(bytes.NewReader(content), domain.ThumbnailMaxWidth, domain.ThumbnailMaxHeight)
	if err != nil {
		s.logger.Warn("failed to generate thumbnail", "key", key, "error", err)
		return
	}
	err = s.store.Upload(ctx, s.bucket, storage.ThumbnailKey(key), bytes.NewReader(thumb), storage.PutOptions{
		ContentType: "image/jpeg",
		Overwrite:   true,
	})
	if err != nil {
		s.logger.Warn("failed to store thumbnail", "key", key, "error", err)
	}
}

func (s *photoService) Delete(ctx context.Context, photoID uuid.UUID) error {
	const op = "photo.delete"

	photo, err := s.queries.GetPhotoByID(ctx, photoID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.NotFound(op, "photo", photoID.String())
		}
		return domain.Internal(err, op, "failed to load photo")
	}

	if err := s.queries.DeletePhoto(ctx, photoID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.NotFound(op, "photo", photoID.String())
		}
		return domain.Internal(err, op, "failed to delete photo")
	}

	// External URLs have no blob of ours to clean up.
	if !isAbsoluteURL(photo.StoragePath) {
		if bucket, key, ok := splitLocator(photo.StoragePath); ok {
			if err := s.store.Remove(ctx, bucket, []string{key, storage.ThumbnailKey(key)}); err != nil {
				s.logger.Warn("failed to remove photo blob", "locator", photo.StoragePath, "error", err)
			}
		}
	}

	s.logger.Info("photo deleted", "photo_id", photoID)
	return nil
}
