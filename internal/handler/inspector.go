package handler

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/DukeRupert/homewatch/internal/domain"
	"github.com/DukeRupert/homewatch/internal/service"
)

// InspectorHandler serves the inspector CRUD endpoints.
type InspectorHandler struct {
	inspectors service.InspectorService
	logger     *slog.Logger
}

// NewInspectorHandler creates an InspectorHandler.
func NewInspectorHandler(inspectors service.InspectorService, logger *slog.Logger) *InspectorHandler {
	return &InspectorHandler{inspectors: inspectors, logger: logger}
}

type inspectorRequest struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone"`
}

type inspectorResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     *string   `json:"email"`
	Phone     *string   `json:"phone"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func toInspectorResponse(i *domain.Inspector) inspectorResponse {
	return inspectorResponse{
		ID:        i.ID.String(),
		Name:      i.Name,
		Email:     i.Email,
		Phone:     i.Phone,
		CreatedAt: i.CreatedAt,
		UpdatedAt: i.UpdatedAt,
	}
}

// List handles GET /inspectors.
func (h *InspectorHandler) List(w http.ResponseWriter, r *http.Request) {
	inspectors, err := h.inspectors.List(r.Context())
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}
	out := make([]inspectorResponse, 0, len(inspectors))
	for i := range inspectors {
		out = append(out, toInspectorResponse(&inspectors[i]))
	}
	writeJSON(w, http.StatusOK, out)
}

// Create handles POST /inspectors.
func (h *InspectorHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req inspectorRequest
	if err := decodeJSON(r, &req); err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	inspector, err := h.inspectors.Create(r.Context(), service.CreateInspectorParams{
		Name:  req.Name,
		Email: req.Email,
		Phone: req.Phone,
	})
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, toInspectorResponse(inspector))
}

// Get handles GET /inspectors/{id}.
func (h *InspectorHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "id")
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	inspector, err := h.inspectors.GetByID(r.Context(), id)
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, toInspectorResponse(inspector))
}

// Update handles PUT /inspectors/{id}.
func (h *InspectorHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "id")
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	var req inspectorRequest
	if err := decodeJSON(r, &req); err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	inspector, err := h.inspectors.Update(r.Context(), id, service.CreateInspectorParams{
		Name:  req.Name,
		Email: req.Email,
		Phone: req.Phone,
	})
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, toInspectorResponse(inspector))
}

// Delete handles DELETE /inspectors/{id}.
func (h *InspectorHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "id")
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	if err := h.inspectors.Delete(r.Context(), id); err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
