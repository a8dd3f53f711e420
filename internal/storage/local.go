package storage

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// =============================================================================
// LocalStorage Implementation
// =============================================================================

// LocalStorage implements the Storage interface on the local filesystem.
// Buckets are subdirectories of the base path; files are served over HTTP
// by the application itself.
//
// Security: Path traversal prevention is enforced in resolvePath().
type LocalStorage struct {
	basePath string // Root directory for file storage
	baseURL  string // Base URL for file access
	logger   *slog.Logger
}

// NewLocalStorage creates a new LocalStorage instance.
// The base directory is created if it doesn't exist.
func NewLocalStorage(cfg LocalConfig, logger *slog.Logger) (*LocalStorage, error) {
	absPath, err := filepath.Abs(cfg.BasePath)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve base path: %w", err)
	}

	if err := os.MkdirAll(absPath, 0755); err != nil {
		return nil, fmt.Errorf("failed to create storage directory: %w", err)
	}

	baseURL := strings.TrimSuffix(cfg.BaseURL, "/")

	logger.Info("initialized local storage",
		"base_path", absPath,
		"base_url", baseURL,
	)

	return &LocalStorage{
		basePath: absPath,
		baseURL:  baseURL,
		logger:   logger,
	}, nil
}

// =============================================================================
// Interface Implementation
// =============================================================================

// Upload stores data in the given bucket at the specified key.
func (s *LocalStorage) Upload(ctx context.Context, bucket, key string, data io.Reader, opts PutOptions) error {
	if ctx.Err() != nil {
		return ctx.Err()
	}

	filePath, err := s.resolvePath(bucket, key)
	if err != nil {
		return &StorageError{Op: "Upload", Bucket: bucket, Key: key, Err: err}
	}

	if !opts.Overwrite {
		if _, err := os.Stat(filePath); err == nil {
			return &StorageError{Op: "Upload", Bucket: bucket, Key: key, Err: ErrKeyExists}
		}
	}

	if err := os.MkdirAll(filepath.Dir(filePath), 0755); err != nil {
		return &StorageError{Op: "Upload", Bucket: bucket, Key: key, Err: fmt.Errorf("failed to create directory: %w", err)}
	}

	file, err := os.Create(filePath)
	if err != nil {
		return &StorageError{Op: "Upload", Bucket: bucket, Key: key, Err: fmt.Errorf("failed to create file: %w", err)}
	}
	defer file.Close()

	if opts.MaxSize > 0 {
		lr := io.LimitReader(data, opts.MaxSize+1)
		written, err := io.Copy(file, lr)
		if err != nil {
			os.Remove(filePath)
			return &StorageError{Op: "Upload", Bucket: bucket, Key: key, Err: fmt.Errorf("failed to write file: %w", err)}
		}
		if written > opts.MaxSize {
			os.Remove(filePath)
			return &StorageError{Op: "Upload", Bucket: bucket, Key: key, Err: ErrTooLarge}
		}
	} else {
		if _, err := io.Copy(file, data); err != nil {
			os.Remove(filePath)
			return &StorageError{Op: "Upload", Bucket: bucket, Key: key, Err: fmt.Errorf("failed to write file: %w", err)}
		}
	}

	s.logger.Debug("stored file", "bucket", bucket, "key", key)
	return nil
}

// Download retrieves the object at the specified bucket and key.
func (s *LocalStorage) Download(ctx context.Context, bucket, key string) (io.ReadCloser, ObjectInfo, error) {
	if ctx.Err() != nil {
		return nil, ObjectInfo{}, ctx.Err()
	}

	filePath, err := s.resolvePath(bucket, key)
	if err != nil {
		return nil, ObjectInfo{}, &StorageError{Op: "Download", Bucket: bucket, Key: key, Err: err}
	}

	file, err := os.Open(filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ObjectInfo{}, &StorageError{Op: "Download", Bucket: bucket, Key: key, Err: ErrNotFound}
		}
		return nil, ObjectInfo{}, &StorageError{Op: "Download", Bucket: bucket, Key: key, Err: err}
	}

	stat, err := file.Stat()
	if err != nil {
		file.Close()
		return nil, ObjectInfo{}, &StorageError{Op: "Download", Bucket: bucket, Key: key, Err: err}
	}

	info := ObjectInfo{
		Key:          key,
		Size:         stat.Size(),
		ContentType:  DetectContentType("", key, nil),
		LastModified: stat.ModTime(),
	}

	return file, info, nil
}

// Remove deletes the objects at the specified keys, best-effort.
func (s *LocalStorage) Remove(ctx context.Context, bucket string, keys []string) error {
	var firstErr error
	for _, key := range keys {
		filePath, err := s.resolvePath(bucket, key)
		if err != nil {
			if firstErr == nil {
				firstErr = &StorageError{Op: "Remove", Bucket: bucket, Key: key, Err: err}
			}
			continue
		}
		if err := os.Remove(filePath); err != nil && !os.IsNotExist(err) {
			s.logger.Warn("failed to remove file", "bucket", bucket, "key", key, "error", err)
			if firstErr == nil {
				firstErr = &StorageError{Op: "Remove", Bucket: bucket, Key: key, Err: err}
			}
		}
	}
	return firstErr
}

// SignedURL returns the public URL; local files carry no signatures, so
// the expiry is ignored.
func (s *LocalStorage) SignedURL(ctx context.Context, bucket, key string, expires time.Duration) (string, error) {
	if err := validateBucketKey(bucket, key); err != nil {
		return "", &StorageError{Op: "SignedURL", Bucket: bucket, Key: key, Err: err}
	}
	return s.PublicURL(bucket, key), nil
}

// PublicURL returns the URL the application serves this file at.
func (s *LocalStorage) PublicURL(bucket, key string) string {
	return fmt.Sprintf("%s/%s/%s", s.baseURL, bucket, key)
}

// Root returns the base directory, for mounting a file server in dev.
func (s *LocalStorage) Root() string {
	return s.basePath
}

// =============================================================================
// Internal Helpers
// =============================================================================

// resolvePath maps a bucket and key to an absolute file path, rejecting
// anything that would escape the base directory.
func (s *LocalStorage) resolvePath(bucket, key string) (string, error) {
	if err := validateBucketKey(bucket, key); err != nil {
		return "", err
	}

	cleaned := filepath.Join(s.basePath, bucket, filepath.FromSlash(key))
	if !strings.HasPrefix(cleaned, s.basePath+string(os.PathSeparator)) {
		return "", ErrInvalidKey
	}
	return cleaned, nil
}
