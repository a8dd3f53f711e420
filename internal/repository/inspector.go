package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/DukeRupert/homewatch/internal/domain"
	"github.com/google/uuid"
)

const inspectorColumns = "id, user_id, name, email, phone, created_at, updated_at"

func scanInspector(row interface{ Scan(...any) error }) (domain.Inspector, error) {
	var i domain.Inspector
	var userID uuid.NullUUID
	var email, phone sql.NullString
	err := row.Scan(&i.ID, &userID, &i.Name, &email, &phone, &i.CreatedAt, &i.UpdatedAt)
	if err != nil {
		return domain.Inspector{}, err
	}
	i.UserID = uuidPtr(userID)
	i.Email = stringPtr(email)
	i.Phone = stringPtr(phone)
	return i, nil
}

// ListInspectors returns all inspectors ordered by name.
func (q *Queries) ListInspectors(ctx context.Context) ([]domain.Inspector, error) {
	rows, err := q.db.QueryContext(ctx,
		"SELECT "+inspectorColumns+" FROM inspectors ORDER BY name ASC")
	if err != nil {
		return nil, fmt.Errorf("list inspectors: %w", err)
	}
	defer rows.Close()

	var inspectors []domain.Inspector
	for rows.Next() {
		i, err := scanInspector(rows)
		if err != nil {
			return nil, fmt.Errorf("scan inspector: %w", err)
		}
		inspectors = append(inspectors, i)
	}
	return inspectors, rows.Err()
}

// GetInspectorByID returns one inspector.
func (q *Queries) GetInspectorByID(ctx context.Context, id uuid.UUID) (domain.Inspector, error) {
	row := q.db.QueryRowContext(ctx,
		"SELECT "+inspectorColumns+" FROM inspectors WHERE id = $1", id)
	return scanInspector(row)
}

// CreateInspector inserts an inspector and returns the stored row.
func (q *Queries) CreateInspector(ctx context.Context, i domain.Inspector) (domain.Inspector, error) {
	row := q.db.QueryRowContext(ctx, `
		INSERT INTO inspectors (user_id, name, email, phone)
		VALUES ($1, $2, $3, $4)
		RETURNING `+inspectorColumns,
		nullUUID(i.UserID), i.Name, nullString(i.Email), nullString(i.Phone))
	return scanInspector(row)
}

// UpdateInspector updates an inspector's editable fields and returns the
// stored row.
func (q *Queries) UpdateInspector(ctx context.Context, i domain.Inspector) (domain.Inspector, error) {
	row := q.db.QueryRowContext(ctx, `
		UPDATE inspectors
		SET name = $2, email = $3, phone = $4, updated_at = now()
		WHERE id = $1
		RETURNING `+inspectorColumns,
		i.ID, i.Name, nullString(i.Email), nullString(i.Phone))
	return scanInspector(row)
}

// DeleteInspector removes an inspector.
func (q *Queries) DeleteInspector(ctx context.Context, id uuid.UUID) error {
	result, err := q.db.ExecContext(ctx, "DELETE FROM inspectors WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("delete inspector: %w", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return sql.ErrNoRows
	}
	return nil
}
