package handler

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/DukeRupert/homewatch/internal/domain"
	"github.com/DukeRupert/homewatch/internal/service"
	"github.com/google/uuid"
)

// PropertyHandler serves the property CRUD endpoints.
type PropertyHandler struct {
	properties service.PropertyService
	logger     *slog.Logger
}

// NewPropertyHandler creates a PropertyHandler.
func NewPropertyHandler(properties service.PropertyService, logger *slog.Logger) *PropertyHandler {
	return &PropertyHandler{properties: properties, logger: logger}
}

type propertyRequest struct {
	ClientID *string `json:"client_id"`
	Name     string  `json:"name"`
	Address  string  `json:"address"`
}

type propertyResponse struct {
	ID        string    `json:"id"`
	ClientID  *string   `json:"client_id"`
	Name      string    `json:"name"`
	Address   *string   `json:"address"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func toPropertyResponse(p *domain.Property) propertyResponse {
	return propertyResponse{
		ID:        p.ID.String(),
		ClientID:  uuidString(p.ClientID),
		Name:      p.Name,
		Address:   p.Address,
		CreatedAt: p.CreatedAt,
		UpdatedAt: p.UpdatedAt,
	}
}

func (req propertyRequest) params() (service.CreatePropertyParams, error) {
	params := service.CreatePropertyParams{
		Name:    req.Name,
		Address: req.Address,
	}
	if req.ClientID != nil && *req.ClientID != "" {
		id, err := uuid.Parse(*req.ClientID)
		if err != nil {
			return params, domain.Invalid("", "client_id must be a UUID")
		}
		params.ClientID = &id
	}
	return params, nil
}

// List handles GET /properties.
func (h *PropertyHandler) List(w http.ResponseWriter, r *http.Request) {
	properties, err := h.properties.List(r.Context())
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}
	out := make([]propertyResponse, 0, len(properties))
	for i := range properties {
		out = append(out, toPropertyResponse(&properties[i]))
	}
	writeJSON(w, http.StatusOK, out)
}

// Create handles POST /properties.
func (h *PropertyHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req propertyRequest
	if err := decodeJSON(r, &req); err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}
	params, err := req.params()
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	property, err := h.properties.Create(r.Context(), params)
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, toPropertyResponse(property))
}

// Get handles GET /properties/{id}.
func (h *PropertyHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "id")
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	property, err := h.properties.GetByID(r.Context(), id)
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, toPropertyResponse(property))
}

// Update handles PUT /properties/{id}.
func (h *PropertyHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "id")
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	var req propertyRequest
	if err := decodeJSON(r, &req); err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}
	params, err := req.params()
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	property, err := h.properties.Update(r.Context(), id, params)
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, toPropertyResponse(property))
}

// Delete handles DELETE /properties/{id}.
func (h *PropertyHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "id")
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	if err := h.properties.Delete(r.Context(), id); err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
