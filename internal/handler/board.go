package handler

import (
	"context"
	"net/http"

	"github.com/carte-app/api/internal/event"
	"github.com/carte-app/api/internal/reconciler"
	"github.com/carte-app/api/internal/service"
	"github.com/go-chi/chi/v5"
)

// CarteReader is satisfied by *service.CatalogService.
type CarteReader interface {
	Carte(ctx context.Context, menuID int64) (*service.Carte, error)
}

// OrderLister is satisfied by *service.OrderService.
type OrderLister interface {
	ListOrders(ctx context.Context, menuID int64, includeArchived bool) ([]service.OrderResult, error)
}

// BoardHandler serves the baseline snapshot a preparation board seeds its
// reconciler with before following the relay.
type BoardHandler struct {
	catalog CarteReader
	orders  OrderLister
}

// NewBoardHandler creates a new BoardHandler.
func NewBoardHandler(catalog CarteReader, orders OrderLister) *BoardHandler {
	return &BoardHandler{catalog: catalog, orders: orders}
}

// RegisterRoutes registers the board endpoint. Expected to be mounted
// inside an admin-guarded /menus/{mid} subrouter.
func (h *BoardHandler) RegisterRoutes(r chi.Router) {
	r.Get("/board", h.Get)
}

// Get returns the catalog and the active orders. The catalog is read
// first, so the version never claims more than the snapshot holds.
func (h *BoardHandler) Get(w http.ResponseWriter, r *http.Request) {
	menuID, ok := idParam(w, r, "mid", "menu")
	if !ok {
		return
	}
	carte, err := h.catalog.Carte(r.Context(), menuID)
	if err != nil {
		writeServiceError(w, r, "load board catalog", err)
		return
	}
	results, err := h.orders.ListOrders(r.Context(), menuID, false)
	if err != nil {
		writeServiceError(w, r, "load board orders", err)
		return
	}

	categories := carte.Categories
	if categories == nil {
		categories = []event.Category{}
	}
	writeJSON(w, http.StatusOK, reconciler.Snapshot{
		MenuID:     menuID,
		Version:    carte.Menu.Version,
		Categories: categories,
		Orders:     wireOrders(results),
	})
}
