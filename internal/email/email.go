// Package email provides outbound mail for the home watch CRM.
//
// This package defines a Sender interface with an SMTP implementation
// that works with Mailhog in development and any standard authenticated
// SMTP relay in production.
package email

import (
	"context"
)

// =============================================================================
// Interface Definition
// =============================================================================

// Sender delivers a fully-formed message with attachments.
type Sender interface {
	// Send delivers the message. The returned error carries the
	// transport's failure message verbatim.
	Send(ctx context.Context, msg Message) error
}

// =============================================================================
// Message Types
// =============================================================================

// Message represents a single outbound email.
type Message struct {
	To          string       // Recipient email address
	Subject     string       // Email subject line
	TextBody    string       // Plain text content
	Attachments []Attachment // Files attached to the message
}

// Attachment is one file attached to a message.
type Attachment struct {
	Filename    string
	Content     []byte
	ContentType string
}

// =============================================================================
// Configuration Types
// =============================================================================

// SMTPConfig holds SMTP server configuration.
type SMTPConfig struct {
	Host     string // SMTP server hostname
	Port     int    // SMTP server port
	Username string // SMTP authentication username
	Password string // SMTP authentication password
	From     string // Sender email address
	FromName string // Sender display name
	Secure   bool   // Use implicit TLS (port 465 style)
}

// IsConfigured reports whether every field required to send mail is
// present. Deliveries fail fast on an incomplete configuration before any
// attachment work happens.
func (c SMTPConfig) IsConfigured() bool {
	return c.Host != "" && c.Port != 0 && c.Username != "" && c.Password != "" && c.From != ""
}
