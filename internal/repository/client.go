package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/DukeRupert/homewatch/internal/domain"
	"github.com/google/uuid"
)

// ErrNoRows is returned when a single-row query matches nothing.
var ErrNoRows = sql.ErrNoRows

// IsNoRows reports whether err indicates an empty single-row result.
func IsNoRows(err error) bool {
	return errors.Is(err, sql.ErrNoRows)
}

const clientColumns = "id, user_id, name, phone, email, created_at, updated_at"

func scanClient(row interface{ Scan(...any) error }) (domain.Client, error) {
	var c domain.Client
	var userID uuid.NullUUID
	var phone, email sql.NullString
	err := row.Scan(&c.ID, &userID, &c.Name, &phone, &email, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return domain.Client{}, err
	}
	c.UserID = uuidPtr(userID)
	c.Phone = stringPtr(phone)
	c.Email = stringPtr(email)
	return c, nil
}

// ListClients returns all clients ordered by name.
func (q *Queries) ListClients(ctx context.Context) ([]domain.Client, error) {
	rows, err := q.db.QueryContext(ctx,
		"SELECT "+clientColumns+" FROM clients ORDER BY name ASC")
	if err != nil {
		return nil, fmt.Errorf("list clients: %w", err)
	}
	defer rows.Close()

	var clients []domain.Client
	for rows.Next() {
		c, err := scanClient(rows)
		if err != nil {
			return nil, fmt.Errorf("scan client: %w", err)
		}
		clients = append(clients, c)
	}
	return clients, rows.Err()
}

// GetClientByID returns one client.
func (q *Queries) GetClientByID(ctx context.Context, id uuid.UUID) (domain.Client, error) {
	row := q.db.QueryRowContext(ctx,
		"SELECT "+clientColumns+" FROM clients WHERE id = $1", id)
	return scanClient(row)
}

// CreateClient inserts a client and returns the stored row.
func (q *Queries) CreateClient(ctx context.Context, c domain.Client) (domain.Client, error) {
	row := q.db.QueryRowContext(ctx, `
		INSERT INTO clients (user_id, name, phone, email)
		VALUES ($1, $2, $3, $4)
		RETURNING `+clientColumns,
		nullUUID(c.UserID), c.Name, nullString(c.Phone), nullString(c.Email))
	return scanClient(row)
}

// UpdateClient updates a client's editable fields and returns the stored row.
func (q *Queries) UpdateClient(ctx context.Context, c domain.Client) (domain.Client, error) {
	row := q.db.QueryRowContext(ctx, `
		UPDATE clients
		SET name = $2, phone = $3, email = $4, updated_at = now()
		WHERE id = $1
		RETURNING `+clientColumns,
		c.ID, c.Name, nullString(c.Phone), nullString(c.Email))
	return scanClient(row)
}

// DeleteClient removes a client.
func (q *Queries) DeleteClient(ctx context.Context, id uuid.UUID) error {
	result, err := q.db.ExecContext(ctx, "DELETE FROM clients WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("delete client: %w", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return sql.ErrNoRows
	}
	return nil
}
