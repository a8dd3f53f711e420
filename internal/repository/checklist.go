package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/DukeRupert/homewatch/internal/domain"
	"github.com/google/uuid"
)

const checklistColumns = "id, property_id, user_id, visit_date, notes, created_at, updated_at"

const checklistItemColumns = "id, checklist_id, category, item_text, status, notes, created_at, updated_at"

func scanChecklist(row interface{ Scan(...any) error }) (domain.Checklist, error) {
	var c domain.Checklist
	var propertyID, userID uuid.NullUUID
	var visitDate sql.NullTime
	var notes sql.NullString
	err := row.Scan(&c.ID, &propertyID, &userID, &visitDate, &notes, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return domain.Checklist{}, err
	}
	c.PropertyID = uuidPtr(propertyID)
	c.UserID = uuidPtr(userID)
	c.VisitDate = timePtr(visitDate)
	c.Notes = stringPtr(notes)
	return c, nil
}

func scanChecklistItem(row interface{ Scan(...any) error }) (domain.ChecklistItem, error) {
	var item domain.ChecklistItem
	var notes sql.NullString
	err := row.Scan(&item.ID, &item.ChecklistID, &item.Category, &item.ItemText,
		&item.Status, &notes, &item.CreatedAt, &item.UpdatedAt)
	if err != nil {
		return domain.ChecklistItem{}, err
	}
	item.Notes = stringPtr(notes)
	return item, nil
}

// ListChecklists returns all checklists, newest first.
func (q *Queries) ListChecklists(ctx context.Context) ([]domain.Checklist, error) {
	rows, err := q.db.QueryContext(ctx,
		"SELECT "+checklistColumns+" FROM checklists ORDER BY created_at DESC")
	if err != nil {
		return nil, fmt.Errorf("list checklists: %w", err)
	}
	defer rows.Close()

	var checklists []domain.Checklist
	for rows.Next() {
		c, err := scanChecklist(rows)
		if err != nil {
			return nil, fmt.Errorf("scan checklist: %w", err)
		}
		checklists = append(checklists, c)
	}
	return checklists, rows.Err()
}

// ListChecklistsByProperty returns a property's checklists, newest first.
func (q *Queries) ListChecklistsByProperty(ctx context.Context, propertyID uuid.UUID) ([]domain.Checklist, error) {
	rows, err := q.db.QueryContext(ctx,
		"SELECT "+checklistColumns+" FROM checklists WHERE property_id = $1 ORDER BY created_at DESC",
		propertyID)
	if err != nil {
		return nil, fmt.Errorf("list checklists by property: %w", err)
	}
	defer rows.Close()

	var checklists []domain.Checklist
	for rows.Next() {
		c, err := scanChecklist(rows)
		if err != nil {
			return nil, fmt.Errorf("scan checklist: %w", err)
		}
		checklists = append(checklists, c)
	}
	return checklists, rows.Err()
}

// GetChecklistByID returns one checklist.
func (q *Queries) GetChecklistByID(ctx context.Context, id uuid.UUID) (domain.Checklist, error) {
	row := q.db.QueryRowContext(ctx,
		"SELECT "+checklistColumns+" FROM checklists WHERE id = $1", id)
	return scanChecklist(row)
}

// CreateChecklist inserts a checklist and returns the stored row.
func (q *Queries) CreateChecklist(ctx context.Context, c domain.Checklist) (domain.Checklist, error) {
	row := q.db.QueryRowContext(ctx, `
		INSERT INTO checklists (property_id, user_id, visit_date, notes)
		VALUES ($1, $2, $3, $4)
		RETURNING `+checklistColumns,
		nullUUID(c.PropertyID), nullUUID(c.UserID), nullTime(c.VisitDate), nullString(c.Notes))
	return scanChecklist(row)
}

// UpdateChecklist updates a checklist's editable fields and returns the
// stored row.
func (q *Queries) UpdateChecklist(ctx context.Context, c domain.Checklist) (domain.Checklist, error) {
	row := q.db.QueryRowContext(ctx, `
		UPDATE checklists
		SET property_id = $2, visit_date = $3, notes = $4, updated_at = now()
		WHERE id = $1
		RETURNING `+checklistColumns,
		c.ID, nullUUID(c.PropertyID), nullTime(c.VisitDate), nullString(c.Notes))
	return scanChecklist(row)
}

// UpdateChecklistNotes replaces only the notes column. Used for metadata
// write-backs so concurrent edits to other columns are untouched.
func (q *Queries) UpdateChecklistNotes(ctx context.Context, id uuid.UUID, notes *string) error {
	result, err := q.db.ExecContext(ctx,
		"UPDATE checklists SET notes = $2, updated_at = now() WHERE id = $1",
		id, nullString(notes))
	if err != nil {
		return fmt.Errorf("update checklist notes: %w", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// DeleteChecklist removes a checklist. Items and photos cascade.
func (q *Queries) DeleteChecklist(ctx context.Context, id uuid.UUID) error {
	result, err := q.db.ExecContext(ctx, "DELETE FROM checklists WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("delete checklist: %w", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// ListChecklistItems returns a checklist's items in insertion order.
func (q *Queries) ListChecklistItems(ctx context.Context, checklistID uuid.UUID) ([]domain.ChecklistItem, error) {
	rows, err := q.db.QueryContext(ctx,
		"SELECT "+checklistItemColumns+" FROM checklist_items WHERE checklist_id = $1 ORDER BY created_at ASC, id ASC",
		checklistID)
	if err != nil {
		return nil, fmt.Errorf("list checklist items: %w", err)
	}
	defer rows.Close()

	var items []domain.ChecklistItem
	for rows.Next() {
		item, err := scanChecklistItem(rows)
		if err != nil {
			return nil, fmt.Errorf("scan checklist item: %w", err)
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

// GetChecklistItemByID returns one checklist item.
func (q *Queries) GetChecklistItemByID(ctx context.Context, id uuid.UUID) (domain.ChecklistItem, error) {
	row := q.db.QueryRowContext(ctx,
		"SELECT "+checklistItemColumns+" FROM checklist_items WHERE id = $1", id)
	return scanChecklistItem(row)
}

// UpsertChecklistItems saves a submitted item batch atomically. Items
// carrying an ID overwrite the existing row; items without one are
// inserted. Rows absent from the batch are left alone, so attached
// photos survive a form re-save.
func (q *Queries) UpsertChecklistItems(ctx context.Context, checklistID uuid.UUID, items []domain.ChecklistItem) ([]domain.ChecklistItem, error) {
	tx, err := q.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin upsert items: %w", err)
	}
	defer tx.Rollback()

	stored := make([]domain.ChecklistItem, 0, len(items))
	for _, item := range items {
		var row *sql.Row
		if item.ID == uuid.Nil {
			row = tx.QueryRowContext(ctx, `
				INSERT INTO checklist_items (checklist_id, category, item_text, status, notes)
				VALUES ($1, $2, $3, $4, $5)
				RETURNING `+checklistItemColumns,
				checklistID, item.Category, item.ItemText, item.Status, nullString(item.Notes))
		} else {
			row = tx.QueryRowContext(ctx, `
				INSERT INTO checklist_items (id, checklist_id, category, item_text, status, notes)
				VALUES ($1, $2, $3, $4, $5, $6)
				ON CONFLICT (id) DO UPDATE
				SET category = EXCLUDED.category, item_text = EXCLUDED.item_text,
					status = EXCLUDED.status, notes = EXCLUDED.notes, updated_at = now()
				RETURNING `+checklistItemColumns,
				item.ID, checklistID, item.Category, item.ItemText, item.Status, nullString(item.Notes))
		}
		saved, err := scanChecklistItem(row)
		if err != nil {
			return nil, fmt.Errorf("upsert checklist item: %w", err)
		}
		stored = append(stored, saved)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit upsert items: %w", err)
	}
	return stored, nil
}

// UpdateChecklistItem updates one item's recorded outcome and returns the
// stored row.
func (q *Queries) UpdateChecklistItem(ctx context.Context, item domain.ChecklistItem) (domain.ChecklistItem, error) {
	row := q.db.QueryRowContext(ctx, `
		UPDATE checklist_items
		SET category = $2, item_text = $3, status = $4, notes = $5, updated_at = now()
		WHERE id = $1
		RETURNING `+checklistItemColumns,
		item.ID, item.Category, item.ItemText, item.Status, nullString(item.Notes))
	return scanChecklistItem(row)
}

// GetChecklistAggregate loads a checklist together with its property, the
// property's client, and all items with their photos. Returns
// sql.ErrNoRows when the checklist does not exist; a missing property or
// client leaves the corresponding field nil.
func (q *Queries) GetChecklistAggregate(ctx context.Context, id uuid.UUID) (domain.ChecklistAggregate, error) {
	var agg domain.ChecklistAggregate

	checklist, err := q.GetChecklistByID(ctx, id)
	if err != nil {
		return agg, err
	}
	agg.Checklist = checklist

	if checklist.PropertyID != nil {
		property, err := q.GetPropertyByID(ctx, *checklist.PropertyID)
		switch {
		case err == nil:
			agg.Property = &property
		case errors.Is(err, sql.ErrNoRows):
			// dangling reference, render without property details
		default:
			return agg, fmt.Errorf("load property: %w", err)
		}
	}

	if agg.Property != nil && agg.Property.ClientID != nil {
		client, err := q.GetClientByID(ctx, *agg.Property.ClientID)
		switch {
		case err == nil:
			agg.Client = &client
		case errors.Is(err, sql.ErrNoRows):
		default:
			return agg, fmt.Errorf("load client: %w", err)
		}
	}

	items, err := q.ListChecklistItems(ctx, id)
	if err != nil {
		return agg, err
	}

	photos, err := q.ListPhotosForChecklist(ctx, id)
	if err != nil {
		return agg, err
	}
	byItem := make(map[uuid.UUID][]domain.ChecklistPhoto, len(items))
	for _, photo := range photos {
		byItem[photo.ChecklistItemID] = append(byItem[photo.ChecklistItemID], photo)
	}
	for i := range items {
		items[i].Photos = byItem[items[i].ID]
	}
	agg.Items = items

	return agg, nil
}
