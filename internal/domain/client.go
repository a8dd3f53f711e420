package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Client is a property owner the business reports to.
type Client struct {
	ID        uuid.UUID
	UserID    *uuid.UUID
	Name      string
	Phone     *string
	Email     *string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Property is a watched home, optionally tied to a client.
type Property struct {
	ID        uuid.UUID
	UserID    *uuid.UUID
	ClientID  *uuid.UUID
	Name      string
	Address   *string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Inspector is a staff member who performs visits. Checklists snapshot
// inspector details into their metadata blob at submission time; this row
// only seeds that snapshot.
type Inspector struct {
	ID        uuid.UUID
	UserID    *uuid.UUID
	Name      string
	Email     *string
	Phone     *string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// StringValue returns the value of a nullable string, or empty.
func StringValue(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// NullableString returns nil for blank input, otherwise a pointer to the
// trimmed value.
func NullableString(s string) *string {
	trimmed := strings.TrimSpace(s)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}
