// Package storage provides blob storage abstraction for the home watch CRM.
//
// This package defines a Storage interface with implementations for:
// - LocalStorage: File system storage for development
// - S3Storage: S3-compatible object storage for production
//
// Checklist photo locators stored in the database have the form
// "bucket/object/path", so every operation here is bucket-qualified.
package storage

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"time"

	"github.com/google/uuid"
)

// =============================================================================
// Interface Definition
// =============================================================================

// Storage defines the interface for blob storage operations.
//
// All methods are context-aware for timeout and cancellation support.
type Storage interface {
	// Upload stores data in the given bucket at the specified key.
	Upload(ctx context.Context, bucket, key string, data io.Reader, opts PutOptions) error

	// Download retrieves the object at the specified bucket and key.
	// Returns the data as an io.ReadCloser (caller must close), object
	// metadata, and an error. Returns ErrNotFound if the key doesn't exist.
	Download(ctx context.Context, bucket, key string) (io.ReadCloser, ObjectInfo, error)

	// Remove deletes the objects at the specified keys. Removal is
	// best-effort and idempotent: missing keys are not an error.
	Remove(ctx context.Context, bucket string, keys []string) error

	// SignedURL returns a time-limited URL for accessing a private object.
	SignedURL(ctx context.Context, bucket, key string, expires time.Duration) (string, error)

	// PublicURL returns the permanent public URL for an object. It is the
	// fallback when signing fails and does not verify existence.
	PublicURL(bucket, key string) string
}

// =============================================================================
// Data Types
// =============================================================================

// PutOptions configures how an object is stored.
type PutOptions struct {
	// ContentType specifies the MIME type of the object.
	// If empty, it will be auto-detected from the key's extension.
	ContentType string

	// MaxSize specifies the maximum allowed size in bytes.
	// If the data exceeds this size, ErrTooLarge is returned.
	// A value of 0 means no limit.
	MaxSize int64

	// Overwrite allows replacing an existing object at the same key.
	Overwrite bool
}

// ObjectInfo contains metadata about a stored object.
type ObjectInfo struct {
	Key          string    // Object key/path
	Size         int64     // Size in bytes
	ContentType  string    // MIME type
	LastModified time.Time // Last modification time
	ETag         string    // Entity tag (if available)
}

// =============================================================================
// Configuration Types
// =============================================================================

// LocalConfig holds configuration for local filesystem storage.
type LocalConfig struct {
	// BasePath is the root directory where buckets live as subdirectories.
	BasePath string

	// BaseURL is the public URL prefix for accessing files.
	// Example: "http://localhost:8080/files"
	BaseURL string
}

// S3Config holds configuration for S3-compatible storage.
type S3Config struct {
	// Endpoint overrides the AWS endpoint for S3-compatible providers.
	// Leave empty for AWS S3 proper.
	Endpoint string

	// Region is the region to sign requests for. "auto" works for most
	// S3-compatible providers.
	Region string

	AccessKeyID     string
	SecretAccessKey string

	// PublicURL is the public URL prefix for bucket objects (custom
	// domain). When empty, PublicURL falls back to the endpoint form.
	PublicURL string
}

// =============================================================================
// Provider Constants
// =============================================================================

const (
	// ProviderLocal identifies the local filesystem storage provider.
	ProviderLocal = "local"

	// ProviderS3 identifies the S3-compatible storage provider.
	ProviderS3 = "s3"
)

// =============================================================================
// Key Generation Helpers
// =============================================================================

// PhotoKey generates a storage key for an uploaded checklist photo.
// Format: checklists/{checklistID}/{uuid}.{ext}
func PhotoKey(checklistID uuid.UUID, filename string) string {
	ext := filepath.Ext(filename)
	photoID := uuid.New()
	return fmt.Sprintf("checklists/%s/%s%s", checklistID, photoID, ext)
}

// ThumbnailKey derives the thumbnail key for a photo key.
// Format: {dir}/thumbs/{name}.jpg — thumbnails are always JPEG.
func ThumbnailKey(photoKey string) string {
	dir, name := filepath.Split(photoKey)
	base := name[:len(name)-len(filepath.Ext(name))]
	return dir + "thumbs/" + base + ".jpg"
}
