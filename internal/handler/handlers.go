package handler

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/DukeRupert/homewatch/internal/domain"
	"github.com/google/uuid"
)

// maxBodySize caps JSON request bodies.
const maxBodySize = 1 << 20 // 1MB

// visitDateLayout is the wire format for visit dates.
const visitDateLayout = "2006-01-02"

// pathUUID parses the named path segment as a UUID.
func pathUUID(r *http.Request, name string) (uuid.UUID, error) {
	raw := r.PathValue(name)
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, domain.Invalid("", "invalid "+name+": must be a UUID")
	}
	return id, nil
}

// decodeJSON decodes the request body into dst.
func decodeJSON(r *http.Request, dst any) error {
	body := io.LimitReader(r.Body, maxBodySize)
	if err := json.NewDecoder(body).Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return domain.Invalid("", "request body is required")
		}
		return domain.Invalid("", "malformed JSON request body")
	}
	return nil
}

// decodeJSONOptional decodes the request body into dst, treating an
// empty body as a zero value rather than an error.
func decodeJSONOptional(r *http.Request, dst any) error {
	body := io.LimitReader(r.Body, maxBodySize)
	if err := json.NewDecoder(body).Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return domain.Invalid("", "malformed JSON request body")
	}
	return nil
}

// parseVisitDate parses an optional "YYYY-MM-DD" field.
func parseVisitDate(raw *string) (*time.Time, error) {
	if raw == nil || *raw == "" {
		return nil, nil
	}
	t, err := time.Parse(visitDateLayout, *raw)
	if err != nil {
		return nil, domain.Invalid("", "visit_date must be formatted YYYY-MM-DD")
	}
	return &t, nil
}

func formatVisitDate(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.Format(visitDateLayout)
	return &s
}

func uuidString(id *uuid.UUID) *string {
	if id == nil {
		return nil
	}
	s := id.String()
	return &s
}

// HealthHandler reports liveness.
func HealthHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}
