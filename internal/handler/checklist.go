package handler

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/DukeRupert/homewatch/internal/domain"
	"github.com/DukeRupert/homewatch/internal/service"
	"github.com/google/uuid"
)

// ChecklistHandler serves checklist endpoints, including email delivery.
type ChecklistHandler struct {
	checklists service.ChecklistService
	delivery   service.DeliveryService
	logger     *slog.Logger
}

// NewChecklistHandler creates a ChecklistHandler.
func NewChecklistHandler(
	checklists service.ChecklistService,
	delivery service.DeliveryService,
	logger *slog.Logger,
) *ChecklistHandler {
	return &ChecklistHandler{
		checklists: checklists,
		delivery:   delivery,
		logger:     logger,
	}
}

// =============================================================================
// Wire Types
// =============================================================================

type checklistRequest struct {
	PropertyID *string `json:"property_id"`
	VisitDate  *string `json:"visit_date"`
	Notes      *string `json:"notes"`
}

type checklistResponse struct {
	ID         string    `json:"id"`
	PropertyID *string   `json:"property_id"`
	VisitDate  *string   `json:"visit_date"`
	Notes      *string   `json:"notes"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

type itemRequest struct {
	ID       *string `json:"id"`
	Category string  `json:"category"`
	ItemText string  `json:"item_text"`
	Status   string  `json:"status"`
	Notes    *string `json:"notes"`
}

type photoResponse struct {
	ID        string    `json:"id"`
	URL       string    `json:"url"`
	CreatedAt time.Time `json:"created_at"`
}

type itemResponse struct {
	ID        string          `json:"id"`
	Category  string          `json:"category"`
	ItemText  string          `json:"item_text"`
	Status    string          `json:"status"`
	Notes     *string         `json:"notes"`
	Photos    []photoResponse `json:"photos"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

type checklistDetailResponse struct {
	checklistResponse
	Property *propertyResponse    `json:"property"`
	Client   *clientResponse      `json:"client"`
	Items    []itemResponse       `json:"items"`
	Meta     domain.ChecklistMeta `json:"meta"`
}

func toChecklistResponse(c *domain.Checklist) checklistResponse {
	return checklistResponse{
		ID:         c.ID.String(),
		PropertyID: uuidString(c.PropertyID),
		VisitDate:  formatVisitDate(c.VisitDate),
		Notes:      c.Notes,
		CreatedAt:  c.CreatedAt,
		UpdatedAt:  c.UpdatedAt,
	}
}

func toItemResponse(item *domain.ChecklistItem, photoURLs map[uuid.UUID]string) itemResponse {
	photos := make([]photoResponse, 0, len(item.Photos))
	for _, photo := range item.Photos {
		photos = append(photos, photoResponse{
			ID:        photo.ID.String(),
			URL:       photoURLs[photo.ID],
			CreatedAt: photo.CreatedAt,
		})
	}
	return itemResponse{
		ID:        item.ID.String(),
		Category:  item.Category,
		ItemText:  item.ItemText,
		Status:    string(item.Status),
		Notes:     item.Notes,
		Photos:    photos,
		CreatedAt: item.CreatedAt,
		UpdatedAt: item.UpdatedAt,
	}
}

// =============================================================================
// Checklist CRUD
// =============================================================================

// List handles GET /checklists, optionally filtered by ?property_id=.
func (h *ChecklistHandler) List(w http.ResponseWriter, r *http.Request) {
	var checklists []domain.Checklist
	var err error

	if raw := r.URL.Query().Get("property_id"); raw != "" {
		propertyID, parseErr := uuid.Parse(raw)
		if parseErr != nil {
			ErrorResponse(w, r, h.logger, domain.Invalid("", "property_id must be a UUID"))
			return
		}
		checklists, err = h.checklists.ListByProperty(r.Context(), propertyID)
	} else {
		checklists, err = h.checklists.List(r.Context())
	}
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	out := make([]checklistResponse, 0, len(checklists))
	for i := range checklists {
		out = append(out, toChecklistResponse(&checklists[i]))
	}
	writeJSON(w, http.StatusOK, out)
}

// Create handles POST /checklists.
func (h *ChecklistHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req checklistRequest
	if err := decodeJSON(r, &req); err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	params := service.CreateChecklistParams{Notes: req.Notes}
	if req.PropertyID != nil && *req.PropertyID != "" {
		propertyID, err := uuid.Parse(*req.PropertyID)
		if err != nil {
			ErrorResponse(w, r, h.logger, domain.Invalid("", "property_id must be a UUID"))
			return
		}
		params.PropertyID = &propertyID
	}
	visitDate, err := parseVisitDate(req.VisitDate)
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}
	params.VisitDate = visitDate

	checklist, err := h.checklists.Create(r.Context(), params)
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, toChecklistResponse(checklist))
}

// Get handles GET /checklists/{id}, returning the full aggregate.
func (h *ChecklistHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "id")
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	detail, err := h.checklists.GetDetail(r.Context(), id)
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	resp := checklistDetailResponse{
		checklistResponse: toChecklistResponse(&detail.Checklist),
		Items:             make([]itemResponse, 0, len(detail.Items)),
		Meta:              detail.Meta,
	}
	if detail.Property != nil {
		p := toPropertyResponse(detail.Property)
		resp.Property = &p
	}
	if detail.Client != nil {
		c := toClientResponse(detail.Client)
		resp.Client = &c
	}
	for i := range detail.Items {
		resp.Items = append(resp.Items, toItemResponse(&detail.Items[i], detail.PhotoURLs))
	}
	writeJSON(w, http.StatusOK, resp)
}

// Update handles PUT /checklists/{id}.
func (h *ChecklistHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "id")
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	var req checklistRequest
	if err := decodeJSON(r, &req); err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	params := service.UpdateChecklistParams{ID: id, Notes: req.Notes}
	if req.PropertyID != nil && *req.PropertyID != "" {
		propertyID, parseErr := uuid.Parse(*req.PropertyID)
		if parseErr != nil {
			ErrorResponse(w, r, h.logger, domain.Invalid("", "property_id must be a UUID"))
			return
		}
		params.PropertyID = &propertyID
	}
	visitDate, err := parseVisitDate(req.VisitDate)
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}
	params.VisitDate = visitDate

	checklist, err := h.checklists.Update(r.Context(), params)
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, toChecklistResponse(checklist))
}

// Delete handles DELETE /checklists/{id}.
func (h *ChecklistHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "id")
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	if err := h.checklists.Delete(r.Context(), id); err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// =============================================================================
// Items
// =============================================================================

// SaveItems handles PUT /checklists/{id}/items, the completed visit form
// save. Lines with an id overwrite existing rows; lines without one are
// inserted.
func (h *ChecklistHandler) SaveItems(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "id")
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	var req struct {
		Items []itemRequest `json:"items"`
	}
	if err := decodeJSON(r, &req); err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	inputs := make([]service.ItemInput, 0, len(req.Items))
	for _, item := range req.Items {
		input := service.ItemInput{
			Category: item.Category,
			ItemText: item.ItemText,
			Status:   item.Status,
			Notes:    item.Notes,
		}
		if item.ID != nil && *item.ID != "" {
			itemID, parseErr := uuid.Parse(*item.ID)
			if parseErr != nil {
				ErrorResponse(w, r, h.logger, domain.Invalid("", "item id must be a UUID"))
				return
			}
			input.ID = &itemID
		}
		inputs = append(inputs, input)
	}

	stored, err := h.checklists.SaveItems(r.Context(), id, inputs)
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	out := make([]itemResponse, 0, len(stored))
	for i := range stored {
		out = append(out, toItemResponse(&stored[i], nil))
	}
	writeJSON(w, http.StatusOK, out)
}

// UpdateItem handles PATCH /items/{id}.
func (h *ChecklistHandler) UpdateItem(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "id")
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	var req itemRequest
	if err := decodeJSON(r, &req); err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	item, err := h.checklists.UpdateItem(r.Context(), id, service.ItemInput{
		Category: req.Category,
		ItemText: req.ItemText,
		Status:   req.Status,
		Notes:    req.Notes,
	})
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, toItemResponse(item, nil))
}

// =============================================================================
// Email Delivery
// =============================================================================

// Email handles POST /checklists/{id}/email. The body may carry an
// optional recipient override; an empty or absent body uses the stored
// recipient chain.
func (h *ChecklistHandler) Email(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "id")
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	var req struct {
		Email string `json:"email"`
	}
	if err := decodeJSONOptional(r, &req); err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	if err := h.delivery.SendChecklistEmail(r.Context(), id, req.Email); err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}
