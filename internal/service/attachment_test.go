package service

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/DukeRupert/homewatch/internal/domain"
	"github.com/DukeRupert/homewatch/internal/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeStorage is an in-memory Storage for resolver and delivery tests.
type fakeStorage struct {
	objects map[string][]byte // "bucket/key" -> content
	types   map[string]string // "bucket/key" -> content type
	removed []string
	signErr error
}

func newFakeStorage() *fakeStorage {
	return &fakeStorage{
		objects: make(map[string][]byte),
		types:   make(map[string]string),
	}
}

func (f *fakeStorage) put(bucket, key string, content []byte, contentType string) {
	f.objects[bucket+"/"+key] = content
	f.types[bucket+"/"+key] = contentType
}

func (f *fakeStorage) Upload(ctx context.Context, bucket, key string, data io.Reader, opts storage.PutOptions) error {
	content, err := io.ReadAll(data)
	if err != nil {
		return err
	}
	f.put(bucket, key, content, opts.ContentType)
	return nil
}

func (f *fakeStorage) Download(ctx context.Context, bucket, key string) (io.ReadCloser, storage.ObjectInfo, error) {
	content, ok := f.objects[bucket+"/"+key]
	if !ok {
		return nil, storage.ObjectInfo{}, storage.ErrNotFound
	}
	info := storage.ObjectInfo{
		Key:         key,
		Size:        int64(len(content)),
		ContentType: f.types[bucket+"/"+key],
	}
	return io.NopCloser(bytes.NewReader(content)), info, nil
}

func (f *fakeStorage) Remove(ctx context.Context, bucket string, keys []string) error {
	for _, key := range keys {
		delete(f.objects, bucket+"/"+key)
		f.removed = append(f.removed, bucket+"/"+key)
	}
	return nil
}

func (f *fakeStorage) SignedURL(ctx context.Context, bucket, key string, expires time.Duration) (string, error) {
	if f.signErr != nil {
		return "", f.signErr
	}
	return "https://signed.example.com/" + bucket + "/" + key, nil
}

func (f *fakeStorage) PublicURL(bucket, key string) string {
	return "https://public.example.com/" + bucket + "/" + key
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// =============================================================================
// Filename Helpers
// =============================================================================

func TestSanitizeSegment(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Pat Smith", "Pat-Smith"},
		{"  spaced  out  ", "spaced-out"},
		{"front--door!!.jpg", "front-door.jpg"},
		{"---", ""},
		{"already-clean_name.png", "already-clean_name.png"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, sanitizeSegment(tt.in), "input %q", tt.in)
	}
}

func TestBuildFilename(t *testing.T) {
	tests := []struct {
		name     string
		rawName  string
		fallback string
		mimeHint string
		want     string
	}{
		{"simple name", "front door.jpg", "photo-1-1", "", "front-door.jpg"},
		{"no extension, mime hint supplies it", "lanai", "photo-1-1", "image/png", "lanai.png"},
		{"empty name falls back with default extension", "", "photo-2-3", "", "photo-2-3.jpg"},
		{"unknown mime still defaults to jpg", "", "photo-1-1", "application/x-unknown", "photo-1-1.jpg"},
		{"uppercase extension lowercased", "IMG_0042.JPG", "photo-1-1", "", "IMG_0042.jpg"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, buildFilename(tt.rawName, tt.fallback, tt.mimeHint))
		})
	}
}

func TestEnsureUniqueFilename(t *testing.T) {
	seen := make(map[string]bool)

	assert.Equal(t, "photo.jpg", ensureUniqueFilename("photo.jpg", seen))
	assert.Equal(t, "photo-2.jpg", ensureUniqueFilename("photo.jpg", seen))
	assert.Equal(t, "photo-3.jpg", ensureUniqueFilename("photo.jpg", seen))
	assert.Equal(t, "other.png", ensureUniqueFilename("other.png", seen))
}

func TestSplitLocator(t *testing.T) {
	bucket, key, ok := splitLocator("checklist-photos/checklists/abc/photo.jpg")
	require.True(t, ok)
	assert.Equal(t, "checklist-photos", bucket)
	assert.Equal(t, "checklists/abc/photo.jpg", key)

	_, _, ok = splitLocator("no-slash")
	assert.False(t, ok)

	_, _, ok = splitLocator("bucket/")
	assert.False(t, ok)
}

// =============================================================================
// Resolver
// =============================================================================

func TestResolve_FetchesFromStorage(t *testing.T) {
	store := newFakeStorage()
	store.put("photos", "checklists/1/door.jpg", []byte("jpeg-bytes"), "image/jpeg")
	store.put("photos", "checklists/1/pool.png", []byte("png-bytes"), "image/png")

	resolver := NewPhotoResolver(store, testLogger())
	items := []domain.ChecklistItem{
		{
			Category: "exterior",
			ItemText: "Front door",
			Photos: []domain.ChecklistPhoto{
				{StoragePath: "photos/checklists/1/door.jpg"},
			},
		},
		{
			Category: "lanai_pool",
			ItemText: "Pool deck",
			Photos: []domain.ChecklistPhoto{
				{StoragePath: "photos/checklists/1/pool.png"},
			},
		},
	}

	attachments := resolver.Resolve(context.Background(), items)
	require.Len(t, attachments, 2)

	assert.Equal(t, "door.jpg", attachments[0].Filename)
	assert.Equal(t, []byte("jpeg-bytes"), attachments[0].Content)
	assert.Equal(t, "image/jpeg", attachments[0].ContentType)
	assert.Equal(t, "exterior", attachments[0].CategoryKey)
	assert.Equal(t, "Front door", attachments[0].ItemLabel)

	assert.Equal(t, "pool.png", attachments[1].Filename)
	assert.Equal(t, "lanai_pool", attachments[1].CategoryKey)
}

func TestResolve_SkipsMissingAndMalformed(t *testing.T) {
	store := newFakeStorage()
	store.put("photos", "good.jpg", []byte("ok"), "image/jpeg")

	resolver := NewPhotoResolver(store, testLogger())
	items := []domain.ChecklistItem{
		{
			ItemText: "Mixed bag",
			Photos: []domain.ChecklistPhoto{
				{StoragePath: "photos/good.jpg"},
				{StoragePath: "photos/missing.jpg"},
				{StoragePath: "malformed-no-slash"},
				{StoragePath: ""},
			},
		},
	}

	attachments := resolver.Resolve(context.Background(), items)
	require.Len(t, attachments, 1)
	assert.Equal(t, "good.jpg", attachments[0].Filename)
}

func TestResolve_DeduplicatesFilenames(t *testing.T) {
	store := newFakeStorage()
	store.put("photos", "a/photo.jpg", []byte("first"), "image/jpeg")
	store.put("photos", "b/photo.jpg", []byte("second"), "image/jpeg")
	store.put("photos", "c/photo.jpg", []byte("third"), "image/jpeg")

	resolver := NewPhotoResolver(store, testLogger())
	items := []domain.ChecklistItem{
		{
			ItemText: "Same name thrice",
			Photos: []domain.ChecklistPhoto{
				{StoragePath: "photos/a/photo.jpg"},
				{StoragePath: "photos/b/photo.jpg"},
				{StoragePath: "photos/c/photo.jpg"},
			},
		},
	}

	attachments := resolver.Resolve(context.Background(), items)
	require.Len(t, attachments, 3)
	assert.Equal(t, "photo.jpg", attachments[0].Filename)
	assert.Equal(t, "photo-2.jpg", attachments[1].Filename)
	assert.Equal(t, "photo-3.jpg", attachments[2].Filename)

	// Content order matches the original photo order even though the
	// fetches ran concurrently.
	assert.Equal(t, []byte("first"), attachments[0].Content)
	assert.Equal(t, []byte("second"), attachments[1].Content)
	assert.Equal(t, []byte("third"), attachments[2].Content)
}

func TestResolve_FetchesExternalURLs(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/shared/patio%20view.jpg", "/shared/patio view.jpg":
			w.Header().Set("Content-Type", "image/jpeg")
			w.Write([]byte("remote-bytes"))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer srv.Close()

	resolver := NewPhotoResolver(newFakeStorage(), testLogger())
	items := []domain.ChecklistItem{
		{
			ItemText: "Patio",
			Photos: []domain.ChecklistPhoto{
				{StoragePath: srv.URL + "/shared/patio%20view.jpg"},
				{StoragePath: srv.URL + "/shared/gone.jpg"},
			},
		},
	}

	attachments := resolver.Resolve(context.Background(), items)
	require.Len(t, attachments, 1)
	assert.Equal(t, "patio-view.jpg", attachments[0].Filename)
	assert.Equal(t, []byte("remote-bytes"), attachments[0].Content)
	assert.Equal(t, "image/jpeg", attachments[0].ContentType)
}

func TestPhotoAttachmentIsImage(t *testing.T) {
	assert.True(t, PhotoAttachment{ContentType: "image/jpeg"}.IsImage())
	assert.True(t, PhotoAttachment{Filename: "scan.heic"}.IsImage())
	assert.False(t, PhotoAttachment{ContentType: "video/mp4", Filename: "clip.mp4"}.IsImage())
	assert.False(t, PhotoAttachment{ContentType: "application/pdf", Filename: "doc.pdf"}.IsImage())
}
