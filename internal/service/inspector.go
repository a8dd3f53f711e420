// Package service contains the business logic layer.
//
// This file implements the inspector service. Inspector rows only seed
// the metadata snapshot a checklist takes at submission time.
package service

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"strings"

	"github.com/DukeRupert/homewatch/internal/domain"
	"github.com/DukeRupert/homewatch/internal/repository"
	"github.com/google/uuid"
)

// CreateInspectorParams holds input for creating or updating an inspector.
type CreateInspectorParams struct {
	UserID *uuid.UUID
	Name   string
	Email  string
	Phone  string
}

// InspectorService defines the interface for inspector operations.
type InspectorService interface {
	// Create creates a new inspector.
	// Returns domain.EINVALID for validation errors.
	Create(ctx context.Context, params CreateInspectorParams) (*domain.Inspector, error)

	// GetByID retrieves an inspector by ID.
	// Returns domain.ENOTFOUND if the inspector does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Inspector, error)

	// List retrieves all inspectors ordered by name.
	List(ctx context.Context) ([]domain.Inspector, error)

	// Update updates an existing inspector. Past checklists keep their
	// snapshotted inspector details.
	// Returns domain.ENOTFOUND if the inspector does not exist.
	Update(ctx context.Context, id uuid.UUID, params CreateInspectorParams) (*domain.Inspector, error)

	// Delete deletes an inspector.
	// Returns domain.ENOTFOUND if the inspector does not exist.
	Delete(ctx context.Context, id uuid.UUID) error
}

type inspectorService struct {
	queries *repository.Queries
	logger  *slog.Logger
}

// NewInspectorService creates an InspectorService.
func NewInspectorService(queries *repository.Queries, logger *slog.Logger) InspectorService {
	return &inspectorService{queries: queries, logger: logger}
}

func (s *inspectorService) Create(ctx context.Context, params CreateInspectorParams) (*domain.Inspector, error) {
	const op = "inspector.create"

	name := strings.TrimSpace(params.Name)
	if name == "" {
		return nil, domain.Invalid(op, "inspector name is required")
	}

	inspector, err := s.queries.CreateInspector(ctx, domain.Inspector{
		UserID: params.UserID,
		Name:   name,
		Email:  domain.NullableString(params.Email),
		Phone:  domain.NullableString(params.Phone),
	})
	if err != nil {
		return nil, domain.Internal(err, op, "failed to create inspector")
	}

	s.logger.Info("inspector created", "inspector_id", inspector.ID, "name", name)
	return &inspector, nil
}

func (s *inspectorService) GetByID(ctx context.Context, id uuid.UUID) (*domain.Inspector, error) {
	const op = "inspector.get"

	inspector, err := s.queries.GetInspectorByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.NotFound(op, "inspector", id.String())
		}
		return nil, domain.Internal(err, op, "failed to load inspector")
	}
	return &inspector, nil
}

func (s *inspectorService) List(ctx context.Context) ([]domain.Inspector, error) {
	const op = "inspector.list"

	inspectors, err := s.queries.ListInspectors(ctx)
	if err != nil {
		return nil, domain.Internal(err, op, "failed to list inspectors")
	}
	return inspectors, nil
}

func (s *inspectorService) Update(ctx context.Context, id uuid.UUID, params CreateInspectorParams) (*domain.Inspector, error) {
	const op = "inspector.update"

	name := strings.TrimSpace(params.Name)
	if name == "" {
		return nil, domain.Invalid(op, "inspector name is required")
	}

	inspector, err := s.queries.UpdateInspector(ctx, domain.Inspector{
		ID:    id,
		Name:  name,
		Email: domain.NullableString(params.Email),
		Phone: domain.NullableString(params.Phone),
	})
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.NotFound(op, "inspector", id.String())
		}
		return nil, domain.Internal(err, op, "failed to update inspector")
	}
	return &inspector, nil
}

func (s *inspectorService) Delete(ctx context.Context, id uuid.UUID) error {
	const op = "inspector.delete"

	if err := s.queries.DeleteInspector(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.NotFound(op, "inspector", id.String())
		}
		return domain.Internal(err, op, "failed to delete inspector")
	}
	s.logger.Info("inspector deleted", "inspector_id", id)
	return nil
}
