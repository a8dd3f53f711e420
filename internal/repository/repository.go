// Package repository implements the record store on PostgreSQL.
//
// Queries follow the one-method-per-query convention: each method wraps a
// single SQL statement and maps rows onto domain types.
package repository

import (
	"database/sql"
	"time"

	"github.com/google/uuid"
)

// Queries provides access to all database queries.
type Queries struct {
	db *sql.DB
}

// New creates a Queries instance backed by the given database handle.
func New(db *sql.DB) *Queries {
	return &Queries{db: db}
}

// =============================================================================
// Null Conversion Helpers
// =============================================================================

func nullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

func stringPtr(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	s := ns.String
	return &s
}

func nullUUID(id *uuid.UUID) uuid.NullUUID {
	if id == nil {
		return uuid.NullUUID{}
	}
	return uuid.NullUUID{UUID: *id, Valid: true}
}

func uuidPtr(nu uuid.NullUUID) *uuid.UUID {
	if !nu.Valid {
		return nil
	}
	id := nu.UUID
	return &id
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}

func timePtr(nt sql.NullTime) *time.Time {
	if !nt.Valid {
		return nil
	}
	t := nt.Time
	return &t
}
