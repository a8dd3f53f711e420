package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
)

// =============================================================================
// S3Storage Implementation
// =============================================================================

// S3Storage implements the Storage interface against any S3-compatible
// provider using the AWS SDK v2.
type S3Storage struct {
	client        *s3.Client
	presignClient *s3.PresignClient
	endpoint      string
	publicURL     string // Optional public URL prefix (custom domain)
	logger        *slog.Logger
}

// NewS3Storage creates a new S3Storage instance.
func NewS3Storage(cfg S3Config, logger *slog.Logger) (*S3Storage, error) {
	region := cfg.Region
	if region == "" {
		region = "auto"
	}

	creds := credentials.NewStaticCredentialsProvider(
		cfg.AccessKeyID,
		cfg.SecretAccessKey,
		"",
	)

	awsCfg := aws.Config{
		Region:      region,
		Credentials: creds,
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
	})

	presignClient := s3.NewPresignClient(client)

	logger.Info("initialized S3 storage",
		"endpoint", cfg.Endpoint,
		"region", region,
		"public_url", cfg.PublicURL,
	)

	return &S3Storage{
		client:        client,
		presignClient: presignClient,
		endpoint:      strings.TrimSuffix(cfg.Endpoint, "/"),
		publicURL:     strings.TrimSuffix(cfg.PublicURL, "/"),
		logger:        logger,
	}, nil
}

// =============================================================================
// Interface Implementation
// =============================================================================

// Upload stores data in the given bucket at the specified key.
func (s *S3Storage) Upload(ctx context.Context, bucket, key string, data io.Reader, opts PutOptions) error {
	if err := validateBucketKey(bucket, key); err != nil {
		return &StorageError{Op: "Upload", Bucket: bucket, Key: key, Err: err}
	}

	if !opts.Overwrite {
		if exists, err := s.exists(ctx, bucket, key); err == nil && exists {
			return &StorageError{Op: "Upload", Bucket: bucket, Key: key, Err: ErrKeyExists}
		}
	}

	var reader io.Reader = data
	if opts.MaxSize > 0 {
		reader = io.LimitReader(data, opts.MaxSize+1)
	}

	contentType := opts.ContentType
	if contentType == "" {
		contentType = DetectContentType("", key, nil)
	}

	result, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(bucket),
		Key:         aws.String(key),
		Body:        reader,
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return &StorageError{Op: "Upload", Bucket: bucket, Key: key, Err: wrapS3Error(err)}
	}

	s.logger.Debug("stored object",
		"bucket", bucket,
		"key", key,
		"etag", aws.ToString(result.ETag),
		"content_type", contentType,
	)

	return nil
}

// Download retrieves the object at the specified bucket and key.
func (s *S3Storage) Download(ctx context.Context, bucket, key string) (io.ReadCloser, ObjectInfo, error) {
	if err := validateBucketKey(bucket, key); err != nil {
		return nil, ObjectInfo{}, &StorageError{Op: "Download", Bucket: bucket, Key: key, Err: err}
	}

	result, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, ObjectInfo{}, &StorageError{Op: "Download", Bucket: bucket, Key: key, Err: wrapS3Error(err)}
	}

	info := ObjectInfo{
		Key:          key,
		Size:         aws.ToInt64(result.ContentLength),
		ContentType:  aws.ToString(result.ContentType),
		LastModified: aws.ToTime(result.LastModified),
		ETag:         aws.ToString(result.ETag),
	}

	return result.Body, info, nil
}

// Remove deletes the objects at the specified keys, best-effort.
func (s *S3Storage) Remove(ctx context.Context, bucket string, keys []string) error {
	var firstErr error
	for _, key := range keys {
		if err := validateBucketKey(bucket, key); err != nil {
			if firstErr == nil {
				firstErr = &StorageError{Op: "Remove", Bucket: bucket, Key: key, Err: err}
			}
			continue
		}
		// DeleteObject is idempotent: S3 doesn't error on missing keys.
		_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
			Bucket: aws.String(bucket),
			Key:    aws.String(key),
		})
		if err != nil {
			s.logger.Warn("failed to remove object", "bucket", bucket, "key", key, "error", err)
			if firstErr == nil {
				firstErr = &StorageError{Op: "Remove", Bucket: bucket, Key: key, Err: wrapS3Error(err)}
			}
		}
	}
	return firstErr
}

// SignedURL returns a presigned URL valid for the specified duration.
func (s *S3Storage) SignedURL(ctx context.Context, bucket, key string, expires time.Duration) (string, error) {
	if err := validateBucketKey(bucket, key); err != nil {
		return "", &StorageError{Op: "SignedURL", Bucket: bucket, Key: key, Err: err}
	}

	if expires == 0 {
		expires = 15 * time.Minute
	}

	request, err := s.presignClient.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	}, s3.WithPresignExpires(expires))
	if err != nil {
		return "", &StorageError{Op: "SignedURL", Bucket: bucket, Key: key, Err: fmt.Errorf("failed to generate presigned URL: %w", err)}
	}

	return request.URL, nil
}

// PublicURL returns the permanent public URL for an object.
func (s *S3Storage) PublicURL(bucket, key string) string {
	if s.publicURL != "" {
		return fmt.Sprintf("%s/%s/%s", s.publicURL, bucket, key)
	}
	return fmt.Sprintf("%s/%s/%s", s.endpoint, bucket, key)
}

// =============================================================================
// Internal Helpers
// =============================================================================

func (s *S3Storage) exists(ctx context.Context, bucket, key string) (bool, error) {
	_, err := s.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		var notFound *types.NotFound
		if errors.As(err, &notFound) {
			return false, nil
		}
		var apiErr smithy.APIError
		if errors.As(err, &apiErr) {
			if apiErr.ErrorCode() == "NotFound" || apiErr.ErrorCode() == "NoSuchKey" {
				return false, nil
			}
		}
		return false, wrapS3Error(err)
	}
	return true, nil
}

// validateBucketKey rejects empty values and path traversal attempts.
func validateBucketKey(bucket, key string) error {
	if bucket == "" || key == "" {
		return ErrInvalidKey
	}
	if strings.Contains(bucket, "/") || strings.Contains(key, "..") {
		return ErrInvalidKey
	}
	return nil
}

// wrapS3Error converts S3 SDK errors to storage sentinel errors.
func wrapS3Error(err error) error {
	if err == nil {
		return nil
	}

	var notFound *types.NotFound
	if errors.As(err, &notFound) {
		return ErrNotFound
	}

	var noSuchKey *types.NoSuchKey
	if errors.As(err, &noSuchKey) {
		return ErrNotFound
	}

	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.ErrorCode() {
		case "NotFound", "NoSuchKey", "NoSuchBucket":
			return ErrNotFound
		case "AccessDenied", "Forbidden":
			return ErrAccessDenied
		}

		if httpErr, ok := err.(interface{ HTTPStatusCode() int }); ok {
			switch httpErr.HTTPStatusCode() {
			case http.StatusNotFound:
				return ErrNotFound
			case http.StatusForbidden:
				return ErrAccessDenied
			}
		}
	}

	return fmt.Errorf("s3 operation failed: %w", err)
}
