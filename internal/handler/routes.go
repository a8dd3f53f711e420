package handler

import "net/http"

// Handlers bundles every API handler for route registration.
type Handlers struct {
	Clients    *ClientHandler
	Properties *PropertyHandler
	Inspectors *InspectorHandler
	Checklists *ChecklistHandler
	Photos     *PhotoHandler
}

// RegisterRoutes wires the full API surface onto the mux.
func RegisterRoutes(mux *http.ServeMux, h Handlers) {
	mux.HandleFunc("GET /health", HealthHandler())

	mux.HandleFunc("GET /api/clients", h.Clients.List)
	mux.HandleFunc("POST /api/clients", h.Clients.Create)
	mux.HandleFunc("GET /api/clients/{id}", h.Clients.Get)
	mux.HandleFunc("PUT /api/clients/{id}", h.Clients.Update)
	mux.HandleFunc("DELETE /api/clients/{id}", h.Clients.Delete)

	mux.HandleFunc("GET /api/properties", h.Properties.List)
	mux.HandleFunc("POST /api/properties", h.Properties.Create)
	mux.HandleFunc("GET /api/properties/{id}", h.Properties.Get)
	mux.HandleFunc("PUT /api/properties/{id}", h.Properties.Update)
	mux.HandleFunc("DELETE /api/properties/{id}", h.Properties.Delete)

	mux.HandleFunc("GET /api/inspectors", h.Inspectors.List)
	mux.HandleFunc("POST /api/inspectors", h.Inspectors.Create)
	mux.HandleFunc("GET /api/inspectors/{id}", h.Inspectors.Get)
	mux.HandleFunc("PUT /api/inspectors/{id}", h.Inspectors.Update)
	mux.HandleFunc("DELETE /api/inspectors/{id}", h.Inspectors.Delete)

	mux.HandleFunc("GET /api/checklists", h.Checklists.List)
	mux.HandleFunc("POST /api/checklists", h.Checklists.Create)
	mux.HandleFunc("GET /api/checklists/{id}", h.Checklists.Get)
	mux.HandleFunc("PUT /api/checklists/{id}", h.Checklists.Update)
	mux.HandleFunc("DELETE /api/checklists/{id}", h.Checklists.Delete)
	mux.HandleFunc("PUT /api/checklists/{id}/items", h.Checklists.SaveItems)
	mux.HandleFunc("POST /api/checklists/{id}/email", h.Checklists.Email)
	mux.HandleFunc("PATCH /api/items/{id}", h.Checklists.UpdateItem)

	mux.HandleFunc("POST /api/items/{id}/photos", h.Photos.Upload)
	mux.HandleFunc("DELETE /api/photos/{id}", h.Photos.Delete)
}
