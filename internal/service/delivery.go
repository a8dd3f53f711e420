// Package service contains the business logic layer.
//
// This file implements checklist email delivery: it assembles the PDF
// report and photo attachments and sends them to the client.
package service

import (
	"bytes"
	"context"
	"database/sql"
	"errors"
	"io"
	"log/slog"
	"os"
	"regexp"
	"strings"
	"time"

	"github.com/DukeRupert/homewatch/internal/domain"
	"github.com/DukeRupert/homewatch/internal/email"
	"github.com/DukeRupert/homewatch/internal/metrics"
	"github.com/DukeRupert/homewatch/internal/report"
	"github.com/google/uuid"
)

// =============================================================================
// Interface Definition
// =============================================================================

// DeliveryService sends checklist reports by email.
type DeliveryService interface {
	// SendChecklistEmail renders the checklist PDF and emails it with any
	// photo attachments.
	//
	// overrideEmail, when non-empty, takes priority over the recipient
	// recorded in the checklist metadata and the client record.
	//
	// Returns domain.ENOTFOUND if the checklist does not exist.
	// Returns domain.EINVALID when no valid recipient can be determined.
	// Returns domain.EINTERNAL for load, render, and transport failures.
	SendChecklistEmail(ctx context.Context, checklistID uuid.UUID, overrideEmail string) error
}

// =============================================================================
// Dependencies
// =============================================================================

// deliveryStore is the slice of the repository the delivery flow needs.
type deliveryStore interface {
	GetChecklistAggregate(ctx context.Context, id uuid.UUID) (domain.ChecklistAggregate, error)
	UpdateChecklistNotes(ctx context.Context, id uuid.UUID, notes *string) error
}

// reportRenderer produces the checklist PDF.
type reportRenderer interface {
	Generate(ctx context.Context, data *report.ChecklistData, w io.Writer) (int64, error)
}

// DeliveryConfig carries the fixed identity printed on reports and used
// for outbound mail.
type DeliveryConfig struct {
	SMTP         email.SMTPConfig
	CompanyPhone string
	CompanyEmail string
	LogoPath     string
}

// =============================================================================
// Implementation
// =============================================================================

// recipientPattern is a sanity check, not full address validation: one
// "@", no whitespace, a dot in the domain.
var recipientPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

type deliveryService struct {
	store    deliveryStore
	resolver AttachmentResolver
	renderer reportRenderer
	sender   email.Sender
	cfg      DeliveryConfig
	logger   *slog.Logger
}

// NewDeliveryService creates a DeliveryService.
func NewDeliveryService(
	store deliveryStore,
	resolver AttachmentResolver,
	renderer reportRenderer,
	sender email.Sender,
	cfg DeliveryConfig,
	logger *slog.Logger,
) DeliveryService {
	return &deliveryService{
		store:    store,
		resolver: resolver,
		renderer: renderer,
		sender:   sender,
		cfg:      cfg,
		logger:   logger,
	}
}

// SendChecklistEmail implements the full delivery flow. Recipient and
// configuration checks run before any attachment or rendering work, and
// the metadata write-back after a successful send is best-effort: its
// failure is logged but never turns a delivered email into an error.
func (s *deliveryService) SendChecklistEmail(ctx context.Context, checklistID uuid.UUID, overrideEmail string) error {
	const op = "delivery.send"

	agg, err := s.store.GetChecklistAggregate(ctx, checklistID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.NotFound(op, "checklist", checklistID.String())
		}
		return domain.Internal(err, op, "Unable to load checklist data.")
	}

	meta, err := domain.DecodeMeta(agg.Checklist.Notes)
	if err != nil {
		s.logger.Warn("checklist metadata is malformed, proceeding without it",
			"checklist_id", checklistID, "error", err)
	}

	recipient := s.resolveRecipient(overrideEmail, meta, agg.Client)
	if recipient == "" {
		return domain.Invalid(op, "No recipient email is available for this checklist.")
	}
	if !recipientPattern.MatchString(recipient) {
		return domain.Invalid(op, "Recipient email address is invalid.")
	}

	if !s.cfg.SMTP.IsConfigured() {
		return domain.Internal(nil, op,
			"Email sending is not configured. Set SMTP_HOST, SMTP_PORT, SMTP_USER, SMTP_PASS, and EMAIL_FROM environment variables.")
	}

	attachments := s.resolver.Resolve(ctx, agg.Items)
	var images, loose []PhotoAttachment
	for _, att := range attachments {
		if att.IsImage() {
			images = append(images, att)
		} else {
			loose = append(loose, att)
		}
	}

	visitDate := agg.Checklist.EffectiveVisitDate()
	formattedDate := report.FormatVisitDate(visitDate)

	pdfData := s.buildReportData(meta, agg, visitDate, images)
	var pdfBuf bytes.Buffer
	if _, err := s.renderer.Generate(ctx, pdfData, &pdfBuf); err != nil {
		metrics.ReportsRendered.WithLabelValues("error").Inc()
		return domain.Internal(err, op, "Failed to generate checklist PDF.")
	}
	metrics.ReportsRendered.WithLabelValues("ok").Inc()

	clientName := firstNonEmpty(
		domain.StringValue(meta.ClientName),
		clientNameOf(agg.Client),
		propertyNameOf(agg.Property),
		"Client",
	)

	msg := email.Message{
		To:          recipient,
		Subject:     buildSubject(clientName, formattedDate),
		TextBody:    s.buildBody(clientName, formattedDate, meta, agg, len(images) > 0),
		Attachments: assembleAttachments(clientName, formattedDate, pdfBuf.Bytes(), loose),
	}

	if err := s.sender.Send(ctx, msg); err != nil {
		metrics.EmailsSent.WithLabelValues("failed").Inc()
		s.logger.Error("failed to send checklist email",
			"checklist_id", checklistID, "recipient", recipient, "error", err)
		return domain.Internal(err, op, err.Error())
	}
	metrics.EmailsSent.WithLabelValues("sent").Inc()

	s.recordDelivery(ctx, checklistID, meta, recipient)

	s.logger.Info("checklist email sent",
		"checklist_id", checklistID,
		"recipient", recipient,
		"gallery_photos", len(images),
		"loose_attachments", len(loose),
	)
	return nil
}

// resolveRecipient applies the priority chain: explicit override, then
// the metadata snapshot, then the client record.
func (s *deliveryService) resolveRecipient(override string, meta domain.ChecklistMeta, client *domain.Client) string {
	if trimmed := strings.TrimSpace(override); trimmed != "" {
		return trimmed
	}
	if v := domain.StringValue(meta.Email); v != "" {
		return v
	}
	if client != nil {
		return domain.StringValue(client.Email)
	}
	return ""
}

// buildReportData assembles renderer input, resolving every snapshot
// field against the live rows with the metadata taking priority.
func (s *deliveryService) buildReportData(meta domain.ChecklistMeta, agg domain.ChecklistAggregate, visitDate time.Time, images []PhotoAttachment) *report.ChecklistData {
	var clientName, clientPhone, clientEmail, address string
	if agg.Client != nil {
		clientName = agg.Client.Name
		clientPhone = domain.StringValue(agg.Client.Phone)
		clientEmail = domain.StringValue(agg.Client.Email)
	}
	if agg.Property != nil {
		if clientName == "" {
			clientName = agg.Property.Name
		}
		address = domain.StringValue(agg.Property.Address)
	}

	gallery := make([]report.GalleryPhoto, 0, len(images))
	for _, img := range images {
		gallery = append(gallery, report.GalleryPhoto{
			Filename:    img.Filename,
			Content:     img.Content,
			ContentType: img.ContentType,
			CategoryKey: img.CategoryKey,
			ItemLabel:   img.ItemLabel,
		})
	}

	return &report.ChecklistData{
		ClientName:   firstNonEmpty(domain.StringValue(meta.ClientName), clientName, "Not specified"),
		Address:      firstNonEmpty(domain.StringValue(meta.Address), address, "Not provided"),
		Inspector:    firstNonEmpty(domain.StringValue(meta.Inspector), "Not recorded"),
		VisitDate:    visitDate,
		ClientPhone:  firstNonEmpty(domain.StringValue(meta.Phone), clientPhone),
		ClientEmail:  firstNonEmpty(domain.StringValue(meta.Email), clientEmail),
		CompanyPhone: s.cfg.CompanyPhone,
		CompanyEmail: s.cfg.CompanyEmail,
		Comments:     domain.StringValue(meta.Comments),
		Meta:         meta,
		Items:        agg.Items,
		Photos:       gallery,
		Logo:         s.loadLogo(),
	}
}

// loadLogo reads the company logo from disk. A missing asset renders the
// report without a logo, never fails the delivery.
func (s *deliveryService) loadLogo() []byte {
	if s.cfg.LogoPath == "" {
		return nil
	}
	logo, err := os.ReadFile(s.cfg.LogoPath)
	if err != nil {
		s.logger.Warn("company logo unavailable", "path", s.cfg.LogoPath, "error", err)
		return nil
	}
	return logo
}

// buildSubject joins the non-empty segments with en dashes.
func buildSubject(clientName, formattedDate string) string {
	segments := []string{"Home Watch Checklist"}
	if clientName != "" {
		segments = append(segments, clientName)
	}
	if formattedDate != "" {
		segments = append(segments, formattedDate)
	}
	return strings.Join(segments, " – ")
}

func (s *deliveryService) buildBody(clientName, formattedDate string, meta domain.ChecklistMeta, agg domain.ChecklistAggregate, hasGallery bool) string {
	var address, phone, emailAddr string
	if agg.Property != nil {
		address = domain.StringValue(agg.Property.Address)
	}
	if agg.Client != nil {
		phone = domain.StringValue(agg.Client.Phone)
		emailAddr = domain.StringValue(agg.Client.Email)
	}

	lines := []string{
		"Attached is the completed Home Watch Checklist.",
		"",
		"Client: " + firstNonEmpty(clientName, "Not specified"),
		"Property: " + firstNonEmpty(domain.StringValue(meta.Address), address, "Not specified"),
		"Visit date: " + firstNonEmpty(formattedDate, "Not recorded"),
	}
	if v := firstNonEmpty(domain.StringValue(meta.Phone), phone); v != "" {
		lines = append(lines, "Client phone: "+v)
	}
	if v := firstNonEmpty(domain.StringValue(meta.Email), emailAddr); v != "" {
		lines = append(lines, "Client email: "+v)
	}
	if hasGallery {
		lines = append(lines, "", "Inspection photos are included in the attached PDF report.")
	}
	return strings.Join(lines, "\n")
}

// assembleAttachments puts the PDF first, then any non-image photos.
func assembleAttachments(clientName, formattedDate string, pdf []byte, loose []PhotoAttachment) []email.Attachment {
	clientSlug := sanitizeSegment(clientName)
	if clientSlug == "" {
		clientSlug = "Client"
	}
	dateSlug := sanitizeSegment(strings.ReplaceAll(formattedDate, "/", "-"))
	if dateSlug == "" {
		dateSlug = "Visit"
	}
	pdfName := buildFilename("Checklist-"+clientSlug+"-"+dateSlug+".pdf", "checklist-report", "application/pdf")

	attachments := make([]email.Attachment, 0, 1+len(loose))
	attachments = append(attachments, email.Attachment{
		Filename:    pdfName,
		Content:     pdf,
		ContentType: "application/pdf",
	})
	for _, photo := range loose {
		attachments = append(attachments, email.Attachment{
			Filename:    photo.Filename,
			Content:     photo.Content,
			ContentType: photo.ContentType,
		})
	}
	return attachments
}

// recordDelivery writes emailSentAt/emailSentTo back into the metadata
// blob. Best-effort: failures are logged and swallowed.
func (s *deliveryService) recordDelivery(ctx context.Context, checklistID uuid.UUID, meta domain.ChecklistMeta, recipient string) {
	sentAt := time.Now().UTC().Format("2006-01-02T15:04:05.000Z07:00")
	meta.EmailSentAt = &sentAt
	meta.EmailSentTo = &recipient

	encoded, err := meta.Encode()
	if err != nil {
		s.logger.Error("failed to encode delivery metadata", "checklist_id", checklistID, "error", err)
		return
	}
	if err := s.store.UpdateChecklistNotes(ctx, checklistID, &encoded); err != nil {
		s.logger.Error("failed to record email metadata on checklist", "checklist_id", checklistID, "error", err)
	}
}

func clientNameOf(c *domain.Client) string {
	if c == nil {
		return ""
	}
	return c.Name
}

func propertyNameOf(p *domain.Property) string {
	if p == nil {
		return ""
	}
	return p.Name
}

// firstNonEmpty returns the first argument that isn't blank after trim.
func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
