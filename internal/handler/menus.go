package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/carte-app/api/internal/database"
	"github.com/carte-app/api/internal/event"
	"github.com/carte-app/api/internal/service"
	"github.com/go-chi/chi/v5"
)

// MenuServicer defines the service methods needed by menu handlers.
// Satisfied by *service.CatalogService; narrow interface for testability.
type MenuServicer interface {
	ListMenus(ctx context.Context) ([]database.Menu, error)
	CreateMenu(ctx context.Context, name, password string) (database.Menu, error)
	Carte(ctx context.Context, menuID int64) (*service.Carte, error)
	RenameMenu(ctx context.Context, menuID int64, name string) (database.Menu, error)
	DeleteMenu(ctx context.Context, menuID int64) error
}

// MenuHandler handles menu endpoints.
type MenuHandler struct {
	svc MenuServicer
}

// NewMenuHandler creates a new MenuHandler.
func NewMenuHandler(svc MenuServicer) *MenuHandler {
	return &MenuHandler{svc: svc}
}

// RegisterRoutes registers the menu collection endpoints on /menus.
func (h *MenuHandler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.List)
	r.Post("/", h.Create)
}

// RegisterMenuRoutes registers the public carte endpoint. Expected to be
// mounted inside /menus/{mid}.
func (h *MenuHandler) RegisterMenuRoutes(r chi.Router) {
	r.Get("/", h.Get)
}

// RegisterAdminRoutes registers admin menu endpoints. Expected to be mounted
// inside an admin-guarded /menus/{mid} subrouter.
func (h *MenuHandler) RegisterAdminRoutes(r chi.Router) {
	r.Patch("/", h.Rename)
	r.Delete("/", h.Delete)
}

// --- Request / Response types ---

type createMenuRequest struct {
	Name          string `json:"name" validate:"required"`
	AdminPassword string `json:"adminPassword" validate:"required"`
}

type renameMenuRequest struct {
	Name string `json:"name" validate:"required"`
}

type menuResponse struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Version   int64     `json:"version"`
	CreatedAt time.Time `json:"createdAt"`
}

type carteResponse struct {
	menuResponse
	Categories []event.Category `json:"categories"`
}

func toMenuResponse(m database.Menu) menuResponse {
	return menuResponse{
		ID:        m.ID,
		Name:      m.Name,
		Version:   m.Version,
		CreatedAt: m.CreatedAt,
	}
}

// --- Handlers ---

// List returns every menu without its admin secret.
func (h *MenuHandler) List(w http.ResponseWriter, r *http.Request) {
	menus, err := h.svc.ListMenus(r.Context())
	if err != nil {
		writeServiceError(w, r, "list menus", err)
		return
	}
	resp := make([]menuResponse, len(menus))
	for i, m := range menus {
		resp[i] = toMenuResponse(m)
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *MenuHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createMenuRequest
	if !decodeBody(w, r, &req) {
		return
	}
	menu, err := h.svc.CreateMenu(r.Context(), req.Name, req.AdminPassword)
	if err != nil {
		writeServiceError(w, r, "create menu", err)
		return
	}
	writeJSON(w, http.StatusCreated, toMenuResponse(menu))
}

// Get returns the carte: the menu with its categories and items.
func (h *MenuHandler) Get(w http.ResponseWriter, r *http.Request) {
	menuID, ok := idParam(w, r, "mid", "menu")
	if !ok {
		return
	}
	carte, err := h.svc.Carte(r.Context(), menuID)
	if err != nil {
		writeServiceError(w, r, "get carte", err)
		return
	}
	writeJSON(w, http.StatusOK, carteResponse{
		menuResponse: toMenuResponse(carte.Menu),
		Categories:   carte.Categories,
	})
}

func (h *MenuHandler) Rename(w http.ResponseWriter, r *http.Request) {
	menuID, ok := idParam(w, r, "mid", "menu")
	if !ok {
		return
	}
	var req renameMenuRequest
	if !decodeBody(w, r, &req) {
		return
	}
	menu, err := h.svc.RenameMenu(r.Context(), menuID, req.Name)
	if err != nil {
		writeServiceError(w, r, "rename menu", err)
		return
	}
	writeJSON(w, http.StatusOK, toMenuResponse(menu))
}

// Delete removes the menu with its categories, items and orders.
func (h *MenuHandler) Delete(w http.ResponseWriter, r *http.Request) {
	menuID, ok := idParam(w, r, "mid", "menu")
	if !ok {
		return
	}
	if err := h.svc.DeleteMenu(r.Context(), menuID); err != nil {
		writeServiceError(w, r, "delete menu", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
