package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/DukeRupert/homewatch/internal/domain"
	"github.com/google/uuid"
)

const propertyColumns = "id, user_id, client_id, name, address, created_at, updated_at"

func scanProperty(row interface{ Scan(...any) error }) (domain.Property, error) {
	var p domain.Property
	var userID, clientID uuid.NullUUID
	var address sql.NullString
	err := row.Scan(&p.ID, &userID, &clientID, &p.Name, &address, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return domain.Property{}, err
	}
	p.UserID = uuidPtr(userID)
	p.ClientID = uuidPtr(clientID)
	p.Address = stringPtr(address)
	return p, nil
}

// ListProperties returns all properties ordered by name.
func (q *Queries) ListProperties(ctx context.Context) ([]domain.Property, error) {
	rows, err := q.db.QueryContext(ctx,
		"SELECT "+propertyColumns+" FROM properties ORDER BY name ASC")
	if err != nil {
		return nil, fmt.Errorf("list properties: %w", err)
	}
	defer rows.Close()

	var properties []domain.Property
	for rows.Next() {
		p, err := scanProperty(rows)
		if err != nil {
			return nil, fmt.Errorf("scan property: %w", err)
		}
		properties = append(properties, p)
	}
	return properties, rows.Err()
}

// GetPropertyByID returns one property.
func (q *Queries) GetPropertyByID(ctx context.Context, id uuid.UUID) (domain.Property, error) {
	row := q.db.QueryRowContext(ctx,
		"SELECT "+propertyColumns+" FROM properties WHERE id = $1", id)
	return scanProperty(row)
}

// CreateProperty inserts a property and returns the stored row.
func (q *Queries) CreateProperty(ctx context.Context, p domain.Property) (domain.Property, error) {
	row := q.db.QueryRowContext(ctx, `
		INSERT INTO properties (user_id, client_id, name, address)
		VALUES ($1, $2, $3, $4)
		RETURNING `+propertyColumns,
		nullUUID(p.UserID), nullUUID(p.ClientID), p.Name, nullString(p.Address))
	return scanProperty(row)
}

// UpdateProperty updates a property's editable fields and returns the stored row.
func (q *Queries) UpdateProperty(ctx context.Context, p domain.Property) (domain.Property, error) {
	row := q.db.QueryRowContext(ctx, `
		UPDATE properties
		SET client_id = $2, name = $3, address = $4, updated_at = now()
		WHERE id = $1
		RETURNING `+propertyColumns,
		p.ID, nullUUID(p.ClientID), p.Name, nullString(p.Address))
	return scanProperty(row)
}

// DeleteProperty removes a property.
func (q *Queries) DeleteProperty(ctx context.Context, id uuid.UUID) error {
	result, err := q.db.ExecContext(ctx, "DELETE FROM properties WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("delete property: %w", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return sql.ErrNoRows
	}
	return nil
}
