package storage

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMIMEForExtension(t *testing.T) {
	tests := []struct {
		ext  string
		want string
	}{
		{".jpg", "image/jpeg"},
		{"jpg", "image/jpeg"},
		{".JPEG", "image/jpeg"},
		{"PNG", "image/png"},
		{".heic", "image/heic"},
		{".mp4", "video/mp4"},
		{".pdf", "application/pdf"},
		{".xyz", ""},
		{"", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, MIMEForExtension(tt.ext), "ext %q", tt.ext)
	}
}

func TestExtensionForMIME(t *testing.T) {
	// image/jpeg maps to .jpg, not .jpeg.
	assert.Equal(t, ".jpg", ExtensionForMIME("image/jpeg"))
	assert.Equal(t, ".jpg", ExtensionForMIME(" IMAGE/JPEG "))
	assert.Equal(t, ".png", ExtensionForMIME("image/png"))
	assert.Equal(t, ".mov", ExtensionForMIME("video/quicktime"))
	assert.Equal(t, "", ExtensionForMIME("application/zip"))
	assert.Equal(t, "", ExtensionForMIME(""))
}

func TestDetectContentType(t *testing.T) {
	// Provided type always wins.
	assert.Equal(t, "image/webp", DetectContentType("image/webp", "photo.png", nil))

	// Extension table next.
	assert.Equal(t, "image/heic", DetectContentType("", "IMG_0042.HEIC", nil))
	assert.Equal(t, "video/quicktime", DetectContentType("", "clip.mov", nil))

	// Content sniffing when the extension is unknown.
	pngHeader := append([]byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n'}, make([]byte, 32)...)
	assert.Equal(t, "image/png", DetectContentType("", "mystery.blob1", bytes.NewReader(pngHeader)))

	// Empty content sniffs as text.
	assert.Equal(t, "text/plain; charset=utf-8", DetectContentType("", "", strings.NewReader("")))

	// Nothing to go on.
	assert.Equal(t, "application/octet-stream", DetectContentType("", "mystery.blob1", nil))
}

func TestIsImage(t *testing.T) {
	tests := []struct {
		contentType string
		filename    string
		want        bool
	}{
		{"image/jpeg", "photo.jpg", true},
		{"image/png; charset=binary", "whatever", true},
		{"IMAGE/WEBP", "x", true},
		{"", "photo.HEIC", true},
		{"application/octet-stream", "scan.jpeg", true},
		{"video/mp4", "clip.mp4", false},
		{"application/pdf", "report.pdf", false},
		{"", "notes.txt", false},
		{"", "", false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, IsImage(tt.contentType, tt.filename), "type %q file %q", tt.contentType, tt.filename)
	}
}

func TestIsAllowedUploadType(t *testing.T) {
	assert.True(t, IsAllowedUploadType("image/jpeg"))
	assert.True(t, IsAllowedUploadType("image/jpg"))
	assert.True(t, IsAllowedUploadType("IMAGE/PNG"))
	assert.True(t, IsAllowedUploadType("image/heic; charset=binary"))
	assert.False(t, IsAllowedUploadType("image/tiff"))
	assert.False(t, IsAllowedUploadType("video/mp4"))
	assert.False(t, IsAllowedUploadType("application/pdf"))
	assert.False(t, IsAllowedUploadType(""))
}
