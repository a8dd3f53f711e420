package handler

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/DukeRupert/homewatch/internal/domain"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeDelivery struct {
	lastID       uuid.UUID
	lastOverride string
	calls        int
	err          error
}

func (f *fakeDelivery) SendChecklistEmail(ctx context.Context, checklistID uuid.UUID, overrideEmail string) error {
	f.calls++
	f.lastID = checklistID
	f.lastOverride = overrideEmail
	return f.err
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func emailRequest(t *testing.T, id string, body string) *http.Request {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	r := httptest.NewRequest(http.MethodPost, "/api/checklists/"+id+"/email", reader)
	r.SetPathValue("id", id)
	return r
}

func decodeErrorBody(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var body struct {
		Error string `json:"error"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body.Error
}

func TestChecklistEmail_Success(t *testing.T) {
	delivery := &fakeDelivery{}
	h := NewChecklistHandler(nil, delivery, testLogger())

	id := uuid.New()
	w := httptest.NewRecorder()
	h.Email(w, emailRequest(t, id.String(), ""))

	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"success": true}`, w.Body.String())
	assert.Equal(t, 1, delivery.calls)
	assert.Equal(t, id, delivery.lastID)
	assert.Equal(t, "", delivery.lastOverride)
}

func TestChecklistEmail_RecipientOverride(t *testing.T) {
	delivery := &fakeDelivery{}
	h := NewChecklistHandler(nil, delivery, testLogger())

	id := uuid.New()
	w := httptest.NewRecorder()
	h.Email(w, emailRequest(t, id.String(), `{"email": "override@example.com"}`))

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "override@example.com", delivery.lastOverride)
}

func TestChecklistEmail_InvalidChecklistID(t *testing.T) {
	delivery := &fakeDelivery{}
	h := NewChecklistHandler(nil, delivery, testLogger())

	w := httptest.NewRecorder()
	h.Email(w, emailRequest(t, "not-a-uuid", ""))

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, 0, delivery.calls)
}

func TestChecklistEmail_MalformedBody(t *testing.T) {
	delivery := &fakeDelivery{}
	h := NewChecklistHandler(nil, delivery, testLogger())

	w := httptest.NewRecorder()
	h.Email(w, emailRequest(t, uuid.NewString(), `{"email": `))

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, 0, delivery.calls)
}

func TestChecklistEmail_ErrorStatusMapping(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantBody   string
	}{
		{
			name:       "checklist missing",
			err:        domain.NotFound("delivery.send", "checklist", uuid.NewString()),
			wantStatus: http.StatusNotFound,
		},
		{
			name:       "no recipient",
			err:        domain.Invalid("delivery.send", "No recipient email is available for this checklist."),
			wantStatus: http.StatusBadRequest,
			wantBody:   "No recipient email is available for this checklist.",
		},
		{
			name:       "invalid recipient",
			err:        domain.Invalid("delivery.send", "Recipient email address is invalid."),
			wantStatus: http.StatusBadRequest,
			wantBody:   "Recipient email address is invalid.",
		},
		{
			name:       "smtp not configured",
			err:        domain.Internal(nil, "delivery.send", "Email sending is not configured. Set SMTP_HOST, SMTP_PORT, SMTP_USER, SMTP_PASS, and EMAIL_FROM environment variables."),
			wantStatus: http.StatusInternalServerError,
			wantBody:   "Email sending is not configured. Set SMTP_HOST, SMTP_PORT, SMTP_USER, SMTP_PASS, and EMAIL_FROM environment variables.",
		},
		{
			name:       "unexpected error",
			err:        errors.New("boom"),
			wantStatus: http.StatusInternalServerError,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			delivery := &fakeDelivery{err: tt.err}
			h := NewChecklistHandler(nil, delivery, testLogger())

			w := httptest.NewRecorder()
			h.Email(w, emailRequest(t, uuid.NewString(), ""))

			assert.Equal(t, tt.wantStatus, w.Code)
			if tt.wantBody != "" {
				assert.Equal(t, tt.wantBody, decodeErrorBody(t, w))
			}
		})
	}
}
