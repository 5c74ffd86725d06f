package handler

import (
	"context"
	"net/http"

	"github.com/carte-app/api/internal/event"
	"github.com/carte-app/api/internal/service"
	"github.com/go-chi/chi/v5"
)

// CatalogServicer defines the service methods needed by category, item and
// stock handlers. Satisfied by *service.CatalogService.
type CatalogServicer interface {
	AddCategory(ctx context.Context, menuID int64, name string) (*service.CatalogUpdate, error)
	DeleteCategory(ctx context.Context, menuID, categoryID int64) (*service.CatalogUpdate, error)
	AddItem(ctx context.Context, menuID, categoryID int64, name string, stock int32) (*service.CatalogUpdate, error)
	DeleteItem(ctx context.Context, menuID, itemID int64) (*service.CatalogUpdate, error)
	SetStock(ctx context.Context, menuID, itemID int64, value int32) (*service.StockUpdate, error)
}

// CatalogHandler handles the admin catalog endpoints. Every successful
// mutation is published to the menu's relay channel.
type CatalogHandler struct {
	svc CatalogServicer
	pub Publisher
}

// NewCatalogHandler creates a new CatalogHandler. pub may be nil.
func NewCatalogHandler(svc CatalogServicer, pub Publisher) *CatalogHandler {
	return &CatalogHandler{svc: svc, pub: pub}
}

// RegisterRoutes registers catalog endpoints. Expected to be mounted inside
// an admin-guarded /menus/{mid} subrouter.
func (h *CatalogHandler) RegisterRoutes(r chi.Router) {
	r.Post("/categories", h.CreateCategory)
	r.Delete("/categories/{id}", h.DeleteCategory)
	r.Post("/categories/{cid}/items", h.CreateItem)
	r.Delete("/items/{id}", h.DeleteItem)
	r.Put("/items/{id}/stock", h.SetStock)
}

// --- Request / Response types ---

type createCategoryRequest struct {
	Name string `json:"name" validate:"required"`
}

type createItemRequest struct {
	Name  string `json:"name" validate:"required"`
	Stock int32  `json:"stock"`
}

type setStockRequest struct {
	Stock *int32 `json:"stock" validate:"required"`
}

type catalogResponse struct {
	Categories []event.Category `json:"categories"`
	Version    int64            `json:"version"`
}

type stockResponse struct {
	Item    event.Item `json:"item"`
	Version int64      `json:"version"`
}

// --- Handlers ---

func (h *CatalogHandler) CreateCategory(w http.ResponseWriter, r *http.Request) {
	menuID, ok := idParam(w, r, "mid", "menu")
	if !ok {
		return
	}
	var req createCategoryRequest
	if !decodeBody(w, r, &req) {
		return
	}
	update, err := h.svc.AddCategory(r.Context(), menuID, req.Name)
	if err != nil {
		writeServiceError(w, r, "create category", err)
		return
	}
	h.respondCatalog(w, menuID, http.StatusCreated, update)
}

func (h *CatalogHandler) DeleteCategory(w http.ResponseWriter, r *http.Request) {
	menuID, ok := idParam(w, r, "mid", "menu")
	if !ok {
		return
	}
	categoryID, ok := idParam(w, r, "id", "category")
	if !ok {
		return
	}
	update, err := h.svc.DeleteCategory(r.Context(), menuID, categoryID)
	if err != nil {
		writeServiceError(w, r, "delete category", err)
		return
	}
	h.respondCatalog(w, menuID, http.StatusOK, update)
}

func (h *CatalogHandler) CreateItem(w http.ResponseWriter, r *http.Request) {
	menuID, ok := idParam(w, r, "mid", "menu")
	if !ok {
		return
	}
	categoryID, ok := idParam(w, r, "cid", "category")
	if !ok {
		return
	}
	var req createItemRequest
	if !decodeBody(w, r, &req) {
		return
	}
	update, err := h.svc.AddItem(r.Context(), menuID, categoryID, req.Name, req.Stock)
	if err != nil {
		writeServiceError(w, r, "create item", err)
		return
	}
	h.respondCatalog(w, menuID, http.StatusCreated, update)
}

func (h *CatalogHandler) DeleteItem(w http.ResponseWriter, r *http.Request) {
	menuID, ok := idParam(w, r, "mid", "menu")
	if !ok {
		return
	}
	itemID, ok := idParam(w, r, "id", "item")
	if !ok {
		return
	}
	update, err := h.svc.DeleteItem(r.Context(), menuID, itemID)
	if err != nil {
		writeServiceError(w, r, "delete item", err)
		return
	}
	h.respondCatalog(w, menuID, http.StatusOK, update)
}

// SetStock overrides an item's stock and publishes UPDATE_STOCK.
func (h *CatalogHandler) SetStock(w http.ResponseWriter, r *http.Request) {
	menuID, ok := idParam(w, r, "mid", "menu")
	if !ok {
		return
	}
	itemID, ok := idParam(w, r, "id", "item")
	if !ok {
		return
	}
	var req setStockRequest
	if !decodeBody(w, r, &req) {
		return
	}
	update, err := h.svc.SetStock(r.Context(), menuID, itemID, *req.Stock)
	if err != nil {
		writeServiceError(w, r, "set stock", err)
		return
	}

	item := update.Item
	publish(h.pub, menuID, event.UpdateStock{
		ItemID:   item.ID,
		NewStock: item.Stock,
		Version:  event.Version(update.Version),
	})
	writeJSON(w, http.StatusOK, stockResponse{
		Item: event.Item{
			ID:         item.ID,
			CategoryID: item.CategoryID,
			Name:       item.Name,
			Stock:      item.Stock,
		},
		Version: update.Version,
	})
}

// respondCatalog publishes the new category tree and writes it as the
// response body.
func (h *CatalogHandler) respondCatalog(w http.ResponseWriter, menuID int64, status int, update *service.CatalogUpdate) {
	publish(h.pub, menuID, event.UpdateCategories{
		Categories: update.Categories,
		Version:    event.Version(update.Version),
	})
	categories := update.Categories
	if categories == nil {
		categories = []event.Category{}
	}
	writeJSON(w, status, catalogResponse{Categories: categories, Version: update.Version})
}
