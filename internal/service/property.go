// Package service contains the business logic layer.
//
// This file implements the property service for managing watched homes.
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

// CreatePropertyParams holds input for creating or updating a property.
type CreatePropertyParams struct {
	UserID   *uuid.UUID
	ClientID *uuid.UUID
	Name     string
	Address  string
}

// PropertyService defines the interface for property operations.
type PropertyService interface {
	// Create creates a new property.
	// Returns domain.EINVALID for validation errors.
	// Returns domain.ENOTFOUND if the referenced client does not exist.
	Create(ctx context.Context, params CreatePropertyParams) (*domain.Property, error)

	// GetByID retrieves a property by ID.
	// Returns domain.ENOTFOUND if the property does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Property, error)

	// List retrieves all properties ordered by name.
	List(ctx context.Context) ([]domain.Property, error)

	// Update updates an existing property.
	// Returns domain.ENOTFOUND if the property does not exist.
	Update(ctx context.Context, id uuid.UUID, params CreatePropertyParams) (*domain.Property, error)

	// Delete deletes a property. Checklists keep their rows with a
	// cleared property reference.
	Delete(ctx context.Context, id uuid.UUID) error
}

type propertyService struct {
	queries *repository.Queries
	logger  *slog.Logger
}

// NewPropertyService creates a PropertyService.
func NewPropertyService(queries *repository.Queries, logger *slog.Logger) PropertyService {
	return &propertyService{queries: queries, logger: logger}
}

func (s *propertyService) Create(ctx context.Context, params CreatePropertyParams) (*domain.Property, error) {
	const op = "property.create"

	name := strings.TrimSpace(params.Name)
	if name == "" {
		return nil, domain.Invalid(op, "property name is required")
	}
	if err := s.verifyClient(ctx, op, params.ClientID); err != nil {
		return nil, err
	}

	property, err := s.queries.CreateProperty(ctx, domain.Property{
		UserID:   params.UserID,
		ClientID: params.ClientID,
		Name:     name,
		Address:  domain.NullableString(params.Address),
	})
	if err != nil {
		return nil, domain.Internal(err, op, "failed to create property")
	}

	s.logger.Info("property created", "property_id", property.ID, "name", name)
	return &property, nil
}

func (s *propertyService) GetByID(ctx context.Context, id uuid.UUID) (*domain.Property, error) {
	const op = "property.get"

	property, err := s.queries.GetPropertyByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.NotFound(op, "property", id.String())
		}
		return nil, domain.Internal(err, op, "failed to load property")
	}
	return &property, nil
}

func (s *propertyService) List(ctx context.Context) ([]domain.Property, error) {
	const op = "property.list"

	properties, err := s.queries.ListProperties(ctx)
	if err != nil {
		return nil, domain.Internal(err, op, "failed to list properties")
	}
	return properties, nil
}

func (s *propertyService) Update(ctx context.Context, id uuid.UUID, params CreatePropertyParams) (*domain.Property, error) {
	const op = "property.update"

	name := strings.TrimSpace(params.Name)
	if name == "" {
		return nil, domain.Invalid(op, "property name is required")
	}
	if err := s.verifyClient(ctx, op, params.ClientID); err != nil {
		return nil, err
	}

	property, err := s.queries.UpdateProperty(ctx, domain.Property{
		ID:       id,
		ClientID: params.ClientID,
		Name:     name,
		Address:  domain.NullableString(params.Address),
	})
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.NotFound(op, "property", id.String())
		}
		return nil, domain.Internal(err, op, "failed to update property")
	}
	return &property, nil
}

func (s *propertyService) Delete(ctx context.Context, id uuid.UUID) error {
	const op = "property.delete"

	if err := s.queries.DeleteProperty(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.NotFound(op, "property", id.String())
		}
		return domain.Internal(err, op, "failed to delete property")
	}
	s.logger.Info("property deleted", "property_id", id)
	return nil
}

func (s *propertyService) verifyClient(ctx context.Context, op string, clientID *uuid.UUID) error {
	if clientID == nil {
		return nil
	}
	if _, err := s.queries.GetClientByID(ctx, *clientID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.NotFound(op, "client", clientID.String())
		}
		return domain.Internal(err, op, "failed to verify client")
	}
	return nil
}
