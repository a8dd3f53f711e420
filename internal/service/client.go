// Package service contains the business logic layer.
//
// This file implements the client service for managing the property
// owners the business reports to.
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

// CreateClientParams holds input for creating or updating a client.
type CreateClientParams struct {
	UserID *uuid.UUID
	Name   string
	Phone  string
	Email  string
}

// ClientService defines the interface for client operations.
type ClientService interface {
	// Create creates a new client.
	// Returns domain.EINVALID for validation errors.
	Create(ctx context.Context, params CreateClientParams) (*domain.Client, error)

	// GetByID retrieves a client by ID.
	// Returns domain.ENOTFOUND if the client does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Client, error)

	// List retrieves all clients ordered by name.
	List(ctx context.Context) ([]domain.Client, error)

	// Update updates an existing client.
	// Returns domain.ENOTFOUND if the client does not exist.
	Update(ctx context.Context, id uuid.UUID, params CreateClientParams) (*domain.Client, error)

	// Delete deletes a client. Properties keep their rows with a cleared
	// client reference.
	Delete(ctx context.Context, id uuid.UUID) error
}

type clientService struct {
	queries *repository.Queries
	logger  *slog.Logger
}

// NewClientService creates a ClientService.
func NewClientService(queries *repository.Queries, logger *slog.Logger) ClientService {
	return &clientService{queries: queries, logger: logger}
}

func (s *clientService) Create(ctx context.Context, params CreateClientParams) (*domain.Client, error) {
	const op = "client.create"

	name := strings.TrimSpace(params.Name)
	if name == "" {
		return nil, domain.Invalid(op, "client name is required")
	}

	client, err := s.queries.CreateClient(ctx, domain.Client{
		UserID: params.UserID,
		Name:   name,
		Phone:  domain.NullableString(params.Phone),
		Email:  domain.NullableString(params.Email),
	})
	if err != nil {
		return nil, domain.Internal(err, op, "failed to create client")
	}

	s.logger.Info("client created", "client_id", client.ID, "name", name)
	return &client, nil
}

func (s *clientService) GetByID(ctx context.Context, id uuid.UUID) (*domain.Client, error) {
	const op = "client.get"

	client, err := s.queries.GetClientByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.NotFound(op, "client", id.String())
		}
		return nil, domain.Internal(err, op, "failed to load client")
	}
	return &client, nil
}

func (s *clientService) List(ctx context.Context) ([]domain.Client, error) {
	const op = "client.list"

	clients, err := s.queries.ListClients(ctx)
	if err != nil {
		return nil, domain.Internal(err, op, "failed to list clients")
	}
	return clients, nil
}

func (s *clientService) Update(ctx context.Context, id uuid.UUID, params CreateClientParams) (*domain.Client, error) {
	const op = "client.update"

	name := strings.TrimSpace(params.Name)
	if name == "" {
		return nil, domain.Invalid(op, "client name is required")
	}

	client, err := s.queries.UpdateClient(ctx, domain.Client{
		ID:    id,
		Name:  name,
		Phone: domain.NullableString(params.Phone),
		Email: domain.NullableString(params.Email),
	})
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.NotFound(op, "client", id.String())
		}
		return nil, domain.Internal(err, op, "failed to update client")
	}
	return &client, nil
}

func (s *clientService) Delete(ctx context.Context, id uuid.UUID) error {
	const op = "client.delete"

	if err := s.queries.DeleteClient(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.NotFound(op, "client", id.String())
		}
		return domain.Internal(err, op, "failed to delete client")
	}
	s.logger.Info("client deleted", "client_id", id)
	return nil
}
