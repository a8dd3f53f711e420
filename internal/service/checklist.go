// Package service contains the business logic layer.
//
// This file implements checklist management: visits, their line items,
// and browsable photo URLs.
package service

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/DukeRupert/homewatch/internal/domain"
	"github.com/DukeRupert/homewatch/internal/metrics"
	"github.com/DukeRupert/homewatch/internal/repository"
	"github.com/DukeRupert/homewatch/internal/storage"
	"github.com/google/uuid"
)

// photoURLTTL is how long signed photo links stay valid.
const photoURLTTL = 6 * time.Hour

// =============================================================================
// Interface Definition
// =============================================================================

// CreateChecklistParams holds input for creating a checklist.
type CreateChecklistParams struct {
	PropertyID *uuid.UUID
	UserID     *uuid.UUID
	VisitDate  *time.Time
	Notes      *string
}

// UpdateChecklistParams holds input for updating a checklist.
type UpdateChecklistParams struct {
	ID         uuid.UUID
	PropertyID *uuid.UUID
	VisitDate  *time.Time
	Notes      *string
}

// ItemInput is one submitted checklist line. A non-nil ID overwrites the
// existing row; a nil ID inserts a new one.
type ItemInput struct {
	ID       *uuid.UUID
	Category string
	ItemText string
	Status   string
	Notes    *string
}

// ChecklistDetail is a checklist aggregate enriched with browsable photo
// URLs and the decoded metadata snapshot.
type ChecklistDetail struct {
	domain.ChecklistAggregate
	Meta      domain.ChecklistMeta
	PhotoURLs map[uuid.UUID]string
}

// ChecklistService defines the interface for checklist operations.
type ChecklistService interface {
	// Create creates a new checklist.
	// Returns domain.ENOTFOUND if the referenced property does not exist.
	Create(ctx context.Context, params CreateChecklistParams) (*domain.Checklist, error)

	// GetDetail loads a checklist with its property, client, items, photos,
	// decoded metadata, and a browsable URL per photo.
	// Returns domain.ENOTFOUND if the checklist does not exist.
	GetDetail(ctx context.Context, id uuid.UUID) (*ChecklistDetail, error)

	// List returns all checklists, newest first.
	List(ctx context.Context) ([]domain.Checklist, error)

	// ListByProperty returns a property's checklists, newest first.
	ListByProperty(ctx context.Context, propertyID uuid.UUID) ([]domain.Checklist, error)

	// Update updates a checklist.
	// Returns domain.ENOTFOUND if the checklist does not exist.
	Update(ctx context.Context, params UpdateChecklistParams) (*domain.Checklist, error)

	// Delete deletes a checklist. Items and photo rows cascade.
	// Returns domain.ENOTFOUND if the checklist does not exist.
	Delete(ctx context.Context, id uuid.UUID) error

	// SaveItems upserts the submitted item batch, the way a completed
	// visit form is saved: lines with an ID overwrite, lines without one
	// insert, and rows absent from the batch (with any attached photos)
	// are untouched.
	// Returns domain.EINVALID for blank labels or unknown statuses.
	SaveItems(ctx context.Context, checklistID uuid.UUID, items []ItemInput) ([]domain.ChecklistItem, error)

	// UpdateItem updates a single item's recorded outcome.
	// Returns domain.ENOTFOUND if the item does not exist.
	UpdateItem(ctx context.Context, itemID uuid.UUID, input ItemInput) (*domain.ChecklistItem, error)
}

// =============================================================================
// Implementation
// =============================================================================

type checklistService struct {
	queries *repository.Queries
	store   storage.Storage
	logger  *slog.Logger
}

// NewChecklistService creates a ChecklistService.
func NewChecklistService(queries *repository.Queries, store storage.Storage, logger *slog.Logger) ChecklistService {
	return &checklistService{
		queries: queries,
		store:   store,
		logger:  logger,
	}
}

func (s *checklistService) Create(ctx context.Context, params CreateChecklistParams) (*domain.Checklist, error) {
	const op = "checklist.create"

	if params.PropertyID != nil {
		if _, err := s.queries.GetPropertyByID(ctx, *params.PropertyID); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return nil, domain.NotFound(op, "property", params.PropertyID.String())
			}
			return nil, domain.Internal(err, op, "failed to verify property")
		}
	}

	checklist, err := s.queries.CreateChecklist(ctx, domain.Checklist{
		PropertyID: params.PropertyID,
		UserID:     params.UserID,
		VisitDate:  params.VisitDate,
		Notes:      params.Notes,
	})
	if err != nil {
		return nil, domain.Internal(err, op, "failed to create checklist")
	}

	metrics.ChecklistsCreated.Inc()
	s.logger.Info("checklist created", "checklist_id", checklist.ID, "property_id", params.PropertyID)
	return &checklist, nil
}

func (s *checklistService) GetDetail(ctx context.Context, id uuid.UUID) (*ChecklistDetail, error) {
	const op = "checklist.get"

	agg, err := s.queries.GetChecklistAggregate(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.NotFound(op, "checklist", id.String())
		}
		return nil, domain.Internal(err, op, "failed to load checklist")
	}

	meta, err := domain.DecodeMeta(agg.Checklist.Notes)
	if err != nil {
		s.logger.Warn("checklist metadata is malformed", "checklist_id", id, "error", err)
	}

	detail := &ChecklistDetail{
		ChecklistAggregate: agg,
		Meta:               meta,
		PhotoURLs:          make(map[uuid.UUID]string),
	}
	for _, item := range agg.Items {
		for _, photo := range item.Photos {
			detail.PhotoURLs[photo.ID] = s.photoURL(ctx, photo.StoragePath)
		}
	}
	return detail, nil
}

// photoURL turns a stored locator into something a browser can open.
// Absolute URLs pass through; bucket locators get a signed URL with the
// permanent public URL as fallback when signing fails.
func (s *checklistService) photoURL(ctx context.Context, locator string) string {
	if isAbsoluteURL(locator) {
		return locator
	}
	bucket, key, ok := splitLocator(locator)
	if !ok {
		return ""
	}
	signed, err := s.store.SignedURL(ctx, bucket, key, photoURLTTL)
	if err != nil {
		s.logger.Warn("failed to sign photo URL, using public URL", "locator", locator, "error", err)
		return s.store.PublicURL(bucket, key)
	}
	return signed
}

func (s *checklistService) List(ctx context.Context) ([]domain.Checklist, error) {
	const op = "checklist.list"
	checklists, err := s.queries.ListChecklists(ctx)
	if err != nil {
		return nil, domain.Internal(err, op, "failed to list checklists")
	}
	return checklists, nil
}

func (s *checklistService) ListByProperty(ctx context.Context, propertyID uuid.UUID) ([]domain.Checklist, error) {
	const op = "checklist.list_by_property"
	checklists, err := s.queries.ListChecklistsByProperty(ctx, propertyID)
	if err != nil {
		return nil, domain.Internal(err, op, "failed to list checklists")
	}
	return checklists, nil
}

func (s *checklistService) Update(ctx context.Context, params UpdateChecklistParams) (*domain.Checklist, error) {
	const op = "checklist.update"

	checklist, err := s.queries.UpdateChecklist(ctx, domain.Checklist{
		ID:         params.ID,
		PropertyID: params.PropertyID,
		VisitDate:  params.VisitDate,
		Notes:      params.Notes,
	})
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.NotFound(op, "checklist", params.ID.String())
		}
		return nil, domain.Internal(err, op, "failed to update checklist")
	}
	return &checklist, nil
}

func (s *checklistService) Delete(ctx context.Context, id uuid.UUID) error {
	const op = "checklist.delete"

	if err := s.queries.DeleteChecklist(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.NotFound(op, "checklist", id.String())
		}
		return domain.Internal(err, op, "failed to delete checklist")
	}
	s.logger.Info("checklist deleted", "checklist_id", id)
	return nil
}

func (s *checklistService) SaveItems(ctx context.Context, checklistID uuid.UUID, items []ItemInput) ([]domain.ChecklistItem, error) {
	const op = "checklist.save_items"

	if _, err := s.queries.GetChecklistByID(ctx, checklistID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.NotFound(op, "checklist", checklistID.String())
		}
		return nil, domain.Internal(err, op, "failed to load checklist")
	}

	rows := make([]domain.ChecklistItem, 0, len(items))
	for _, input := range items {
		item, err := itemFromInput(op, checklistID, input)
		if err != nil {
			return nil, err
		}
		rows = append(rows, item)
	}

	stored, err := s.queries.UpsertChecklistItems(ctx, checklistID, rows)
	if err != nil {
		return nil, domain.Internal(err, op, "failed to save checklist items")
	}

	s.logger.Info("checklist items saved", "checklist_id", checklistID, "count", len(stored))
	return stored, nil
}

func (s *checklistService) UpdateItem(ctx context.Context, itemID uuid.UUID, input ItemInput) (*domain.ChecklistItem, error) {
	const op = "checklist.update_item"

	item, err := itemFromInput(op, uuid.Nil, input)
	if err != nil {
		return nil, err
	}
	item.ID = itemID

	updated, err := s.queries.UpdateChecklistItem(ctx, item)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.NotFound(op, "checklist item", itemID.String())
		}
		return nil, domain.Internal(err, op, "failed to update checklist item")
	}
	return &updated, nil
}

// itemFromInput validates one submitted line. A blank status defaults to
// unchecked; a blank category defaults to general.
func itemFromInput(op string, checklistID uuid.UUID, input ItemInput) (domain.ChecklistItem, error) {
	text := strings.TrimSpace(input.ItemText)
	if text == "" {
		return domain.ChecklistItem{}, domain.Invalid(op, "item text is required")
	}

	status := domain.ItemStatus(input.Status)
	if input.Status == "" {
		status = domain.ItemStatusUnchecked
	}
	if !status.Valid() {
		return domain.ChecklistItem{}, domain.Invalid(op, "unknown item status: "+input.Status)
	}

	category := strings.TrimSpace(input.Category)
	if category == "" {
		category = domain.DefaultCategory
	}

	var id uuid.UUID
	if input.ID != nil {
		id = *input.ID
	}

	return domain.ChecklistItem{
		ID:          id,
		ChecklistID: checklistID,
		Category:    category,
		ItemText:    text,
		Status:      status,
		Notes:       input.Notes,
	}, nil
}
