package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/DukeRupert/homewatch/internal/domain"
	"github.com/google/uuid"
)

const photoColumns = "id, checklist_item_id, storage_path, created_at"

func scanPhoto(row interface{ Scan(...any) error }) (domain.ChecklistPhoto, error) {
	var p domain.ChecklistPhoto
	err := row.Scan(&p.ID, &p.ChecklistItemID, &p.StoragePath, &p.CreatedAt)
	if err != nil {
		return domain.ChecklistPhoto{}, err
	}
	return p, nil
}

// ListPhotosForItem returns an item's photos in upload order.
func (q *Queries) ListPhotosForItem(ctx context.Context, itemID uuid.UUID) ([]domain.ChecklistPhoto, error) {
	rows, err := q.db.QueryContext(ctx,
		"SELECT "+photoColumns+" FROM checklist_photos WHERE checklist_item_id = $1 ORDER BY created_at ASC, id ASC",
		itemID)
	if err != nil {
		return nil, fmt.Errorf("list photos for item: %w", err)
	}
	defer rows.Close()

	var photos []domain.ChecklistPhoto
	for rows.Next() {
		p, err := scanPhoto(rows)
		if err != nil {
			return nil, fmt.Errorf("scan photo: %w", err)
		}
		photos = append(photos, p)
	}
	return photos, rows.Err()
}

// ListPhotosForChecklist returns every photo attached to any item on the
// checklist, in upload order.
func (q *Queries) ListPhotosForChecklist(ctx context.Context, checklistID uuid.UUID) ([]domain.ChecklistPhoto, error) {
	rows, err := q.db.QueryContext(ctx, `
		SELECT p.id, p.checklist_item_id, p.storage_path, p.created_at
		FROM checklist_photos p
		JOIN checklist_items i ON i.id = p.checklist_item_id
		WHERE i.checklist_id = $1
		ORDER BY p.created_at ASC, p.id ASC`,
		checklistID)
	if err != nil {
		return nil, fmt.Errorf("list photos for checklist: %w", err)
	}
	defer rows.Close()

	var photos []domain.ChecklistPhoto
	for rows.Next() {
		p, err := scanPhoto(rows)
		if err != nil {
			return nil, fmt.Errorf("scan photo: %w", err)
		}
		photos = append(photos, p)
	}
	return photos, rows.Err()
}

// GetPhotoByID returns one photo row.
func (q *Queries) GetPhotoByID(ctx context.Context, id uuid.UUID) (domain.ChecklistPhoto, error) {
	row := q.db.QueryRowContext(ctx,
		"SELECT "+photoColumns+" FROM checklist_photos WHERE id = $1", id)
	return scanPhoto(row)
}

// CreatePhoto records an uploaded photo against a checklist item.
func (q *Queries) CreatePhoto(ctx context.Context, itemID uuid.UUID, storagePath string) (domain.ChecklistPhoto, error) {
	row := q.db.QueryRowContext(ctx, `
		INSERT INTO checklist_photos (checklist_item_id, storage_path)
		VALUES ($1, $2)
		RETURNING `+photoColumns,
		itemID, storagePath)
	return scanPhoto(row)
}

// DeletePhoto removes a photo row. Blob cleanup is the caller's problem.
func (q *Queries) DeletePhoto(ctx context.Context, id uuid.UUID) error {
	result, err := q.db.ExecContext(ctx, "DELETE FROM checklist_photos WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("delete photo: %w", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return sql.ErrNoRows
	}
	return nil
}
