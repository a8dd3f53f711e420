package storage

import (
	"io"
	"mime"
	"net/http"
	"path/filepath"
	"strings"
)

// =============================================================================
// Content Type Detection
// =============================================================================

// extensionMIMETable maps the file extensions that appear in checklist
// photo uploads to their MIME types. Order matters: ExtensionForMIME
// returns the first extension whose type matches, so preferred extensions
// (.jpg over .jpeg) come first.
var extensionMIMETable = []struct {
	Ext  string
	MIME string
}{
	{".jpg", "image/jpeg"},
	{".jpeg", "image/jpeg"},
	{".png", "image/png"},
	{".webp", "image/webp"},
	{".gif", "image/gif"},
	{".heic", "image/heic"},
	{".heif", "image/heif"},
	{".bmp", "image/bmp"},
	{".mp4", "video/mp4"},
	{".mov", "video/quicktime"},
	{".pdf", "application/pdf"},
}

// MIMEForExtension looks up the MIME type for a file extension
// (case-insensitive, leading dot optional). Returns "" when unknown.
func MIMEForExtension(ext string) string {
	normalized := strings.ToLower(ext)
	if normalized != "" && !strings.HasPrefix(normalized, ".") {
		normalized = "." + normalized
	}
	for _, entry := range extensionMIMETable {
		if entry.Ext == normalized {
			return entry.MIME
		}
	}
	return ""
}

// ExtensionForMIME returns the preferred file extension for a MIME type,
// or "" when the type is not in the table.
func ExtensionForMIME(mimeType string) string {
	normalized := strings.TrimSpace(strings.ToLower(mimeType))
	for _, entry := range extensionMIMETable {
		if entry.MIME == normalized {
			return entry.Ext
		}
	}
	return ""
}

// DetectContentType determines the MIME type of a file.
//
// Detection priority:
// 1. If providedType is non-empty, use it directly
// 2. The photo-upload extension table
// 3. mime.TypeByExtension for anything else
// 4. Sniff content from the first 512 bytes of data (if available)
// 5. Fall back to "application/octet-stream"
func DetectContentType(providedType, filename string, data io.Reader) string {
	if providedType != "" {
		return providedType
	}

	ext := strings.ToLower(filepath.Ext(filename))
	if contentType := MIMEForExtension(ext); contentType != "" {
		return contentType
	}
	if contentType := mime.TypeByExtension(ext); contentType != "" {
		return contentType
	}

	if data != nil {
		buffer := make([]byte, 512)
		n, err := io.ReadFull(data, buffer)
		if err == nil || err == io.EOF || err == io.ErrUnexpectedEOF {
			return http.DetectContentType(buffer[:n])
		}
	}

	return "application/octet-stream"
}

// =============================================================================
// Image Classification
// =============================================================================

// imageExtensions is the secondary check for classifying an attachment as
// an image when its content type is missing or unhelpful.
var imageExtensions = map[string]bool{
	".png":  true,
	".jpg":  true,
	".jpeg": true,
	".webp": true,
	".gif":  true,
	".bmp":  true,
	".heic": true,
	".heif": true,
}

// IsImage reports whether an attachment should be treated as an image:
// the content type starts with "image/", or the filename carries a known
// image extension.
func IsImage(contentType, filename string) bool {
	baseType := strings.TrimSpace(strings.ToLower(strings.Split(contentType, ";")[0]))
	if strings.HasPrefix(baseType, "image/") {
		return true
	}
	return imageExtensions[strings.ToLower(filepath.Ext(filename))]
}

// AllowedUploadTypes defines the MIME types accepted for checklist photo
// uploads.
var AllowedUploadTypes = map[string]bool{
	"image/jpeg": true,
	"image/jpg":  true, // Some systems use this instead of image/jpeg
	"image/png":  true,
	"image/webp": true,
	"image/gif":  true,
	"image/heic": true, // iPhone photos
	"image/heif": true,
}

// IsAllowedUploadType checks if a content type is accepted for photo
// uploads.
func IsAllowedUploadType(contentType string) bool {
	baseType := strings.TrimSpace(strings.ToLower(strings.Split(contentType, ";")[0]))
	return AllowedUploadTypes[baseType]
}
