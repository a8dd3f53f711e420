package service

import (
	"context"
	"database/sql"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/DukeRupert/homewatch/internal/domain"
	"github.com/DukeRupert/homewatch/internal/email"
	"github.com/DukeRupert/homewatch/internal/report"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// =============================================================================
// Fakes
// =============================================================================

type fakeDeliveryStore struct {
	agg     domain.ChecklistAggregate
	loadErr error

	savedNotes *string
	saveErr    error
	saveCalls  int
}

func (f *fakeDeliveryStore) GetChecklistAggregate(ctx context.Context, id uuid.UUID) (domain.ChecklistAggregate, error) {
	if f.loadErr != nil {
		return domain.ChecklistAggregate{}, f.loadErr
	}
	return f.agg, nil
}

func (f *fakeDeliveryStore) UpdateChecklistNotes(ctx context.Context, id uuid.UUID, notes *string) error {
	f.saveCalls++
	if f.saveErr != nil {
		return f.saveErr
	}
	f.savedNotes = notes
	return nil
}

type fakeResolver struct {
	attachments []PhotoAttachment
	calls       int
}

func (f *fakeResolver) Resolve(ctx context.Context, items []domain.ChecklistItem) []PhotoAttachment {
	f.calls++
	return f.attachments
}

type fakeRenderer struct {
	calls   int
	err     error
	lastArg *report.ChecklistData
}

func (f *fakeRenderer) Generate(ctx context.Context, data *report.ChecklistData, w io.Writer) (int64, error) {
	f.calls++
	f.lastArg = data
	if f.err != nil {
		return 0, f.err
	}
	n, _ := w.Write([]byte("%PDF-1.4 fake"))
	return int64(n), nil
}

type fakeSender struct {
	sent  []email.Message
	err   error
	calls int
}

func (f *fakeSender) Send(ctx context.Context, msg email.Message) error {
	f.calls++
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, msg)
	return nil
}

// =============================================================================
// Fixtures
// =============================================================================

func configuredSMTP() email.SMTPConfig {
	return email.SMTPConfig{
		Host:     "smtp.example.com",
		Port:     587,
		Username: "mailer",
		Password: "secret",
		From:     "reports@example.com",
	}
}

type deliveryFixture struct {
	store    *fakeDeliveryStore
	resolver *fakeResolver
	renderer *fakeRenderer
	sender   *fakeSender
	svc      DeliveryService
}

func newDeliveryFixture(agg domain.ChecklistAggregate, smtp email.SMTPConfig) *deliveryFixture {
	f := &deliveryFixture{
		store:    &fakeDeliveryStore{agg: agg},
		resolver: &fakeResolver{},
		renderer: &fakeRenderer{},
		sender:   &fakeSender{},
	}
	f.svc = NewDeliveryService(f.store, f.resolver, f.renderer, f.sender, DeliveryConfig{
		SMTP:         smtp,
		CompanyPhone: "239.572.2025",
		CompanyEmail: "info@239homeservices.com",
	}, testLogger())
	return f
}

func aggregateWithClient(notes *string) domain.ChecklistAggregate {
	clientEmail := "owner@example.com"
	address := "12 Palm Way"
	return domain.ChecklistAggregate{
		Checklist: domain.Checklist{ID: uuid.New(), Notes: notes},
		Property:  &domain.Property{Name: "Palm House", Address: &address},
		Client:    &domain.Client{Name: "Pat Smith", Email: &clientEmail},
		Items: []domain.ChecklistItem{
			{Category: "exterior", ItemText: "Front door", Status: domain.ItemStatusDone},
		},
	}
}

// =============================================================================
// Tests
// =============================================================================

func TestSendChecklistEmail_NotFound(t *testing.T) {
	f := newDeliveryFixture(domain.ChecklistAggregate{}, configuredSMTP())
	f.store.loadErr = sql.ErrNoRows

	err := f.svc.SendChecklistEmail(context.Background(), uuid.New(), "")
	assert.Equal(t, domain.ENOTFOUND, domain.ErrorCode(err))
	assert.Zero(t, f.resolver.calls)
}

func TestSendChecklistEmail_NoRecipient(t *testing.T) {
	agg := aggregateWithClient(nil)
	agg.Client.Email = nil

	f := newDeliveryFixture(agg, configuredSMTP())
	err := f.svc.SendChecklistEmail(context.Background(), agg.Checklist.ID, "")

	assert.Equal(t, domain.EINVALID, domain.ErrorCode(err))
	assert.Contains(t, domain.ErrorMessage(err), "No recipient email")

	// No attachment, render, or send work happens without a recipient.
	assert.Zero(t, f.resolver.calls)
	assert.Zero(t, f.renderer.calls)
	assert.Zero(t, f.sender.calls)
}

func TestSendChecklistEmail_InvalidRecipient(t *testing.T) {
	f := newDeliveryFixture(aggregateWithClient(nil), configuredSMTP())

	err := f.svc.SendChecklistEmail(context.Background(), uuid.New(), "not an address")
	assert.Equal(t, domain.EINVALID, domain.ErrorCode(err))
	assert.Contains(t, domain.ErrorMessage(err), "invalid")
	assert.Zero(t, f.resolver.calls)
}

func TestSendChecklistEmail_SMTPNotConfigured(t *testing.T) {
	f := newDeliveryFixture(aggregateWithClient(nil), email.SMTPConfig{})

	err := f.svc.SendChecklistEmail(context.Background(), uuid.New(), "")
	assert.Equal(t, domain.EINTERNAL, domain.ErrorCode(err))
	assert.Contains(t, domain.ErrorMessage(err), "not configured")
	assert.Zero(t, f.resolver.calls)
	assert.Zero(t, f.sender.calls)
}

func TestSendChecklistEmail_RecipientPriority(t *testing.T) {
	metaNotes := `{"email":"snapshot@example.com"}`

	tests := []struct {
		name     string
		override string
		notes    *string
		want     string
	}{
		{"override wins", "override@example.com", &metaNotes, "override@example.com"},
		{"metadata beats client record", "", &metaNotes, "snapshot@example.com"},
		{"client record is the fallback", "", nil, "owner@example.com"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newDeliveryFixture(aggregateWithClient(tt.notes), configuredSMTP())

			err := f.svc.SendChecklistEmail(context.Background(), uuid.New(), tt.override)
			require.NoError(t, err)
			require.Len(t, f.sent(), 1)
			assert.Equal(t, tt.want, f.sent()[0].To)
		})
	}
}

func (f *deliveryFixture) sent() []email.Message {
	return f.sender.sent
}

func TestSendChecklistEmail_Success(t *testing.T) {
	visitNotes := `{"clientName":"Pat Smith","comments":"Pool pump humming"}`
	agg := aggregateWithClient(&visitNotes)

	f := newDeliveryFixture(agg, configuredSMTP())
	f.resolver.attachments = []PhotoAttachment{
		{Filename: "door.jpg", Content: []byte("img"), ContentType: "image/jpeg", CategoryKey: "exterior", ItemLabel: "Front door"},
		{Filename: "walkthrough.mp4", Content: []byte("vid"), ContentType: "video/mp4", ItemLabel: "Front door"},
	}

	err := f.svc.SendChecklistEmail(context.Background(), agg.Checklist.ID, "")
	require.NoError(t, err)
	require.Len(t, f.sender.sent, 1)
	msg := f.sender.sent[0]

	assert.Equal(t, "owner@example.com", msg.To)
	assert.True(t, strings.HasPrefix(msg.Subject, "Home Watch Checklist – Pat Smith"), "subject %q", msg.Subject)
	assert.Contains(t, msg.TextBody, "Attached is the completed Home Watch Checklist.")
	assert.Contains(t, msg.TextBody, "Client: Pat Smith")
	assert.Contains(t, msg.TextBody, "Property: 12 Palm Way")
	assert.Contains(t, msg.TextBody, "Inspection photos are included in the attached PDF report.")

	// Exactly one PDF plus the non-image attachment; the image went into
	// the report gallery instead.
	require.Len(t, msg.Attachments, 2)
	assert.Equal(t, "application/pdf", msg.Attachments[0].ContentType)
	assert.True(t, strings.HasPrefix(msg.Attachments[0].Filename, "Checklist-Pat-Smith"), "pdf name %q", msg.Attachments[0].Filename)
	assert.Equal(t, "walkthrough.mp4", msg.Attachments[1].Filename)

	require.NotNil(t, f.renderer.lastArg)
	require.Len(t, f.renderer.lastArg.Photos, 1)
	assert.Equal(t, "door.jpg", f.renderer.lastArg.Photos[0].Filename)
	assert.Equal(t, "Pool pump humming", f.renderer.lastArg.Comments)

	// Delivery is recorded in the metadata blob.
	require.NotNil(t, f.store.savedNotes)
	saved, err := domain.DecodeMeta(f.store.savedNotes)
	require.NoError(t, err)
	require.NotNil(t, saved.EmailSentTo)
	assert.Equal(t, "owner@example.com", *saved.EmailSentTo)
	assert.NotNil(t, saved.EmailSentAt)
	// The rest of the snapshot survives the write-back.
	require.NotNil(t, saved.ClientName)
	assert.Equal(t, "Pat Smith", *saved.ClientName)
}

func TestSendChecklistEmail_RenderFailure(t *testing.T) {
	f := newDeliveryFixture(aggregateWithClient(nil), configuredSMTP())
	f.renderer.err = errors.New("boom")

	err := f.svc.SendChecklistEmail(context.Background(), uuid.New(), "")
	assert.Equal(t, domain.EINTERNAL, domain.ErrorCode(err))
	assert.Zero(t, f.sender.calls)
	assert.Zero(t, f.store.saveCalls)
}

func TestSendChecklistEmail_SendFailureSkipsWriteBack(t *testing.T) {
	f := newDeliveryFixture(aggregateWithClient(nil), configuredSMTP())
	f.sender.err = errors.New("smtp: connection refused")

	err := f.svc.SendChecklistEmail(context.Background(), uuid.New(), "")
	assert.Equal(t, domain.EINTERNAL, domain.ErrorCode(err))
	// Transport failure surfaces its own message.
	assert.Contains(t, domain.ErrorMessage(err), "connection refused")
	assert.Zero(t, f.store.saveCalls, "failed sends must not record delivery")
}

func TestSendChecklistEmail_WriteBackFailureStillSucceeds(t *testing.T) {
	f := newDeliveryFixture(aggregateWithClient(nil), configuredSMTP())
	f.store.saveErr = errors.New("pq: deadlock detected")

	err := f.svc.SendChecklistEmail(context.Background(), uuid.New(), "")
	assert.NoError(t, err, "the email went out; a failed write-back is logged, not returned")
	assert.Equal(t, 1, f.sender.calls)
}

func TestSendChecklistEmail_MalformedMetadataStillDelivers(t *testing.T) {
	notes := "not valid json {{{"
	f := newDeliveryFixture(aggregateWithClient(&notes), configuredSMTP())

	err := f.svc.SendChecklistEmail(context.Background(), uuid.New(), "")
	require.NoError(t, err)
	require.Len(t, f.sender.sent, 1)
	// Falls back to the client record for the recipient.
	assert.Equal(t, "owner@example.com", f.sender.sent[0].To)
}
