// Package service contains the business logic layer.
//
// This file resolves checklist photo locators into in-memory attachments
// for email delivery and PDF rendering.
package service

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/DukeRupert/homewatch/internal/domain"
	"github.com/DukeRupert/homewatch/internal/metrics"
	"github.com/DukeRupert/homewatch/internal/storage"
	"golang.org/x/sync/errgroup"
)

// =============================================================================
// Types
// =============================================================================

// PhotoAttachment is one resolved checklist photo, ready to attach to an
// email or embed in the report gallery.
type PhotoAttachment struct {
	Filename    string
	Content     []byte
	ContentType string
	CategoryKey string
	ItemLabel   string
}

// IsImage reports whether the attachment should render in the PDF gallery
// rather than ride along as a loose email attachment.
func (a PhotoAttachment) IsImage() bool {
	return storage.IsImage(a.ContentType, a.Filename)
}

// AttachmentResolver fetches the photos referenced by a checklist's items.
type AttachmentResolver interface {
	// Resolve downloads every referenced photo. Photos that cannot be
	// fetched are skipped with a warning; the returned slice preserves
	// item-then-photo order and carries collision-free filenames.
	Resolve(ctx context.Context, items []domain.ChecklistItem) []PhotoAttachment
}

// =============================================================================
// Implementation
// =============================================================================

// fetchConcurrency bounds parallel photo downloads per delivery.
const fetchConcurrency = 4

// photoResolver implements AttachmentResolver against blob storage and,
// for absolute URL locators, plain HTTP.
type photoResolver struct {
	store  storage.Storage
	client *http.Client
	logger *slog.Logger
}

// NewPhotoResolver creates an AttachmentResolver.
func NewPhotoResolver(store storage.Storage, logger *slog.Logger) AttachmentResolver {
	return &photoResolver{
		store:  store,
		client: &http.Client{Timeout: 30 * time.Second},
		logger: logger,
	}
}

// downloaded is a fetched photo before filename dedupe.
type downloaded struct {
	filename    string
	content     []byte
	contentType string
}

type fetchTask struct {
	locator      string
	fallbackBase string
	categoryKey  string
	itemLabel    string

	result *downloaded
}

// Resolve downloads every photo referenced by the items. Fetches fan out
// concurrently; the final slice is assembled sequentially so ordering and
// filename dedupe stay deterministic.
func (r *photoResolver) Resolve(ctx context.Context, items []domain.ChecklistItem) []PhotoAttachment {
	var tasks []*fetchTask
	for itemIndex, item := range items {
		itemLabel := item.ItemText
		if itemLabel == "" {
			itemLabel = "Checklist item"
		}
		for photoIndex, photo := range item.Photos {
			if photo.StoragePath == "" {
				continue
			}
			tasks = append(tasks, &fetchTask{
				locator:      photo.StoragePath,
				fallbackBase: fmt.Sprintf("photo-%d-%d", itemIndex+1, photoIndex+1),
				categoryKey:  item.CategoryKey(),
				itemLabel:    itemLabel,
			})
		}
	}
	if len(tasks) == 0 {
		return nil
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(fetchConcurrency)
	for _, task := range tasks {
		task := task
		g.Go(func() error {
			task.result = r.fetch(gctx, task.locator, task.fallbackBase)
			return nil
		})
	}
	// Workers never return errors; failures are recorded as nil results.
	_ = g.Wait()

	seen := make(map[string]bool)
	attachments := make([]PhotoAttachment, 0, len(tasks))
	for _, task := range tasks {
		if task.result == nil {
			metrics.AttachmentsResolved.WithLabelValues("skipped").Inc()
			continue
		}
		metrics.AttachmentsResolved.WithLabelValues("ok").Inc()
		name := task.result.filename
		if name == "" {
			name = buildFilename("", task.fallbackBase, task.result.contentType)
		}
		attachments = append(attachments, PhotoAttachment{
			Filename:    ensureUniqueFilename(name, seen),
			Content:     task.result.content,
			ContentType: task.result.contentType,
			CategoryKey: task.categoryKey,
			ItemLabel:   task.itemLabel,
		})
	}
	return attachments
}

// fetch resolves one locator. Returns nil on any failure; the delivery
// proceeds without the photo.
func (r *photoResolver) fetch(ctx context.Context, locator, fallbackBase string) *downloaded {
	if isAbsoluteURL(locator) {
		return r.fetchURL(ctx, locator, fallbackBase)
	}

	bucket, key, ok := splitLocator(locator)
	if !ok {
		r.logger.Warn("checklist photo locator is malformed", "locator", locator)
		return nil
	}

	body, info, err := r.store.Download(ctx, bucket, key)
	if err != nil {
		r.logger.Warn("failed to download checklist photo", "locator", locator, "error", err)
		return nil
	}
	defer body.Close()

	content, err := io.ReadAll(body)
	if err != nil {
		r.logger.Warn("failed to read checklist photo", "locator", locator, "error", err)
		return nil
	}

	rawName := decodedBase(key)
	filename := buildFilename(rawName, fallbackBase, info.ContentType)
	return &downloaded{
		filename:    filename,
		content:     content,
		contentType: inferContentType(filename, info.ContentType),
	}
}

func (r *photoResolver) fetchURL(ctx context.Context, rawURL, fallbackBase string) *downloaded {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		r.logger.Warn("checklist photo URL is malformed", "url", rawURL, "error", err)
		return nil
	}
	resp, err := r.client.Do(req)
	if err != nil {
		r.logger.Warn("failed to fetch external checklist photo", "url", rawURL, "error", err)
		return nil
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		r.logger.Warn("failed to fetch external checklist photo", "url", rawURL, "status", resp.StatusCode)
		return nil
	}

	content, err := io.ReadAll(resp.Body)
	if err != nil {
		r.logger.Warn("failed to read external checklist photo", "url", rawURL, "error", err)
		return nil
	}

	rawName := ""
	if parsed, err := url.Parse(rawURL); err == nil {
		rawName = decodedBase(parsed.Path)
	}
	hint := resp.Header.Get("Content-Type")
	filename := buildFilename(rawName, fallbackBase, hint)
	return &downloaded{
		filename:    filename,
		content:     content,
		contentType: inferContentType(filename, hint),
	}
}

// =============================================================================
// Locator and Filename Helpers
// =============================================================================

func isAbsoluteURL(locator string) bool {
	lower := strings.ToLower(locator)
	return strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://")
}

// splitLocator parses a "bucket/object/path" locator.
func splitLocator(locator string) (bucket, key string, ok bool) {
	bucket, key, found := strings.Cut(locator, "/")
	if !found || bucket == "" || key == "" {
		return "", "", false
	}
	return bucket, key, true
}

// decodedBase returns the percent-decoded final path segment.
func decodedBase(p string) string {
	base := p
	if idx := strings.LastIndex(base, "/"); idx >= 0 {
		base = base[idx+1:]
	}
	if decoded, err := url.PathUnescape(base); err == nil {
		return decoded
	}
	return base
}

var (
	whitespaceRun = regexp.MustCompile(`\s+`)
	invalidChars  = regexp.MustCompile(`[^a-zA-Z0-9._-]`)
	dashRun       = regexp.MustCompile(`-+`)
)

// sanitizeSegment makes a string safe for use in a filename: whitespace
// and invalid characters become dashes, runs collapse, ends trim.
func sanitizeSegment(value string) string {
	s := strings.TrimSpace(value)
	s = whitespaceRun.ReplaceAllString(s, "-")
	s = invalidChars.ReplaceAllString(s, "-")
	s = dashRun.ReplaceAllString(s, "-")
	return strings.Trim(s, "-")
}

// sanitizeExtension lower-cases an extension and strips anything that
// isn't alphanumeric. Returns "" or a ".ext" form.
func sanitizeExtension(ext string) string {
	normalized := strings.TrimPrefix(ext, ".")
	var b strings.Builder
	for _, r := range strings.ToLower(normalized) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	if b.Len() == 0 {
		return ""
	}
	return "." + b.String()
}

// buildFilename derives a safe attachment filename from the object's raw
// name, falling back to the positional base and a MIME-derived extension
// (".jpg" when even that is unknown).
func buildFilename(rawName, fallbackBase, mimeHint string) string {
	rawExt := filepath.Ext(rawName)
	base := sanitizeSegment(strings.TrimSuffix(rawName, rawExt))
	if base == "" {
		base = sanitizeSegment(fallbackBase)
	}
	if base == "" {
		base = "file"
	}
	ext := sanitizeExtension(rawExt)
	if ext == "" {
		ext = sanitizeExtension(storage.ExtensionForMIME(mimeHint))
	}
	if ext == "" {
		ext = ".jpg"
	}
	return base + ext
}

// ensureUniqueFilename returns name unless it has been handed out before,
// in which case a "-2", "-3", ... suffix is inserted before the extension.
func ensureUniqueFilename(name string, seen map[string]bool) string {
	if !seen[name] {
		seen[name] = true
		return name
	}

	ext := sanitizeExtension(filepath.Ext(name))
	base := sanitizeSegment(strings.TrimSuffix(name, filepath.Ext(name)))
	if base == "" {
		base = "file"
	}

	for counter := 2; ; counter++ {
		candidate := fmt.Sprintf("%s-%d%s", base, counter, ext)
		if !seen[candidate] {
			seen[candidate] = true
			return candidate
		}
	}
}

// inferContentType prefers the explicit hint, then the filename extension.
func inferContentType(filename, explicit string) string {
	if strings.TrimSpace(explicit) != "" {
		return explicit
	}
	return storage.MIMEForExtension(filepath.Ext(filename))
}
