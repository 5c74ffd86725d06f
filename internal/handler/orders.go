package handler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/carte-app/api/internal/enum"
	"github.com/carte-app/api/internal/event"
	"github.com/carte-app/api/internal/service"
	"github.com/go-chi/chi/v5"
)

// OrderServicer defines the service methods needed by order handlers.
// Satisfied by *service.OrderService; narrow interface for testability.
type OrderServicer interface {
	CreateOrder(ctx context.Context, req service.CreateOrderRequest) (*service.OrderResult, error)
	UpdateOrderStatus(ctx context.Context, menuID, orderID int64, newStatus string) (*service.OrderResult, error)
	ArchiveOrder(ctx context.Context, menuID, orderID int64) (*service.OrderResult, error)
	GetOrder(ctx context.Context, menuID, orderID int64) (*service.OrderResult, error)
	ListOrders(ctx context.Context, menuID int64, includeArchived bool) ([]service.OrderResult, error)
}

// OrderHandler handles order endpoints.
type OrderHandler struct {
	svc OrderServicer
	pub Publisher
}

// NewOrderHandler creates a new OrderHandler. pub may be nil.
func NewOrderHandler(svc OrderServicer, pub Publisher) *OrderHandler {
	return &OrderHandler{svc: svc, pub: pub}
}

// RegisterRoutes registers the public order endpoint. Expected to be
// mounted inside /menus/{mid}.
func (h *OrderHandler) RegisterRoutes(r chi.Router) {
	r.Post("/orders", h.Create)
}

// RegisterAdminRoutes registers staff order endpoints. Expected to be
// mounted inside an admin-guarded /menus/{mid} subrouter.
func (h *OrderHandler) RegisterAdminRoutes(r chi.Router) {
	r.Get("/orders", h.List)
	r.Get("/orders/{id}", h.Get)
	r.Patch("/orders/{id}/status", h.UpdateStatus)
	r.Post("/orders/{id}/archive", h.Archive)
}

// --- Request types ---

type createOrderRequest struct {
	UserName string                   `json:"userName"`
	Items    []createOrderLineRequest `json:"items" validate:"dive"`
}

type createOrderLineRequest struct {
	ItemID   int64 `json:"itemId" validate:"required"`
	Quantity int32 `json:"quantity"`
}

type updateStatusRequest struct {
	Status string `json:"status" validate:"required"`
}

// --- Handlers ---

// Create places an order. The response body has the same shape as the
// order of a NEW_ORDER frame.
func (h *OrderHandler) Create(w http.ResponseWriter, r *http.Request) {
	menuID, ok := idParam(w, r, "mid", "menu")
	if !ok {
		return
	}
	var req createOrderRequest
	if !decodeBody(w, r, &req) {
		return
	}

	lines := make([]service.CreateOrderLineRequest, len(req.Items))
	for i, item := range req.Items {
		lines[i] = service.CreateOrderLineRequest{ItemID: item.ItemID, Quantity: item.Quantity}
	}
	result, err := h.svc.CreateOrder(r.Context(), service.CreateOrderRequest{
		MenuID:       menuID,
		CustomerName: req.UserName,
		Lines:        lines,
	})
	if err != nil {
		writeServiceError(w, r, "create order", err)
		return
	}

	order := result.Wire()
	msgs := []event.Message{event.NewOrder{Order: order}}
	for _, s := range result.Stock {
		msgs = append(msgs, event.UpdateStock{
			ItemID:   s.ItemID,
			NewStock: s.NewStock,
			Version:  event.Version(result.Version),
		})
	}
	publish(h.pub, menuID, msgs...)

	writeJSON(w, http.StatusCreated, order)
}

// List returns the menu's orders. Archived orders are included only with
// ?archived=true.
func (h *OrderHandler) List(w http.ResponseWriter, r *http.Request) {
	menuID, ok := idParam(w, r, "mid", "menu")
	if !ok {
		return
	}
	includeArchived := false
	if v := r.URL.Query().Get("archived"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid archived flag"})
			return
		}
		includeArchived = b
	}

	results, err := h.svc.ListOrders(r.Context(), menuID, includeArchived)
	if err != nil {
		writeServiceError(w, r, "list orders", err)
		return
	}
	writeJSON(w, http.StatusOK, wireOrders(results))
}

func (h *OrderHandler) Get(w http.ResponseWriter, r *http.Request) {
	menuID, ok := idParam(w, r, "mid", "menu")
	if !ok {
		return
	}
	orderID, ok := idParam(w, r, "id", "order")
	if !ok {
		return
	}
	result, err := h.svc.GetOrder(r.Context(), menuID, orderID)
	if err != nil {
		writeServiceError(w, r, "get order", err)
		return
	}
	writeJSON(w, http.StatusOK, result.Wire())
}

func (h *OrderHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	menuID, ok := idParam(w, r, "mid", "menu")
	if !ok {
		return
	}
	orderID, ok := idParam(w, r, "id", "order")
	if !ok {
		return
	}
	var req updateStatusRequest
	if !decodeBody(w, r, &req) {
		return
	}

	result, err := h.svc.UpdateOrderStatus(r.Context(), menuID, orderID, req.Status)
	if err != nil {
		writeServiceError(w, r, "update order status", err)
		return
	}
	publish(h.pub, menuID, event.UpdateOrderStatus{
		OrderID:   result.Order.ID,
		NewStatus: string(result.Order.Status),
	})
	writeJSON(w, http.StatusOK, result.Wire())
}

// Archive moves the order to ARCHIVED from any status.
func (h *OrderHandler) Archive(w http.ResponseWriter, r *http.Request) {
	menuID, ok := idParam(w, r, "mid", "menu")
	if !ok {
		return
	}
	orderID, ok := idParam(w, r, "id", "order")
	if !ok {
		return
	}
	result, err := h.svc.ArchiveOrder(r.Context(), menuID, orderID)
	if err != nil {
		writeServiceError(w, r, "archive order", err)
		return
	}
	publish(h.pub, menuID, event.UpdateOrderStatus{
		OrderID:   result.Order.ID,
		NewStatus: enum.OrderStatusArchived,
	})
	writeJSON(w, http.StatusOK, result.Wire())
}

func wireOrders(results []service.OrderResult) []event.Order {
	orders := make([]event.Order, len(results))
	for i := range results {
		orders[i] = results[i].Wire()
	}
	return orders
}
