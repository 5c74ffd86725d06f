package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/carte-app/api/internal/database"
	"github.com/carte-app/api/internal/event"
	"github.com/jackc/pgx/v5"
	"github.com/sirupsen/logrus"
)

const (
	maxTxRetries     = 3
	maxStatusRetries = 3
)

// TxBeginner starts a new database transaction.
type TxBeginner interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}

// Pool is a connection pool that can both run queries and open
// transactions. Satisfied by *pgxpool.Pool.
type Pool interface {
	database.DBTX
	TxBeginner
}

// OrderStore defines the DB methods needed to create and track orders.
// Satisfied by *database.Queries (and its WithTx variant).
type OrderStore interface {
	StockStore
	GetMenu(ctx context.Context, id int64) (database.Menu, error)
	BumpMenuVersion(ctx context.Context, id int64) (int64, error)
	CreateOrder(ctx context.Context, arg database.CreateOrderParams) (database.Order, error)
	CreateOrderLine(ctx context.Context, arg database.CreateOrderLineParams) (database.OrderLine, error)
	GetOrder(ctx context.Context, arg database.GetOrderParams) (database.Order, error)
	UpdateOrderStatus(ctx context.Context, arg database.UpdateOrderStatusParams) (database.Order, error)
	ArchiveOrder(ctx context.Context, arg database.ArchiveOrderParams) (database.Order, error)
	ListOrdersByMenu(ctx context.Context, arg database.ListOrdersByMenuParams) ([]database.Order, error)
	ListOrderLinesByOrder(ctx context.Context, orderID int64) ([]database.ListOrderLinesByOrderRow, error)
	ListOrderLinesByMenu(ctx context.Context, menuID int64) ([]database.ListOrderLinesByMenuRow, error)
}

// NewOrderStore creates an OrderStore from a DBTX (pool or tx).
// This allows the service to create store instances from transactions.
type NewOrderStore func(db database.DBTX) OrderStore

// CreateOrderRequest is the input for creating an order.
type CreateOrderRequest struct {
	MenuID       int64
	CustomerName string
	Lines        []CreateOrderLineRequest
}

// CreateOrderLineRequest is a single line in the order.
type CreateOrderLineRequest struct {
	ItemID   int64
	Quantity int32
}

// OrderResult is an order with its lines. Stock and Version are filled only
// by CreateOrder.
type OrderResult struct {
	Order   database.Order
	Lines   []LineResult
	Stock   []StockChange
	Version int64
}

// LineResult is an order line with the ordered item's name resolved.
type LineResult struct {
	ID       int64
	ItemID   int64
	ItemName string
	Quantity int32
}

// StockChange is the stock of an item after an order withdrew from it.
type StockChange struct {
	ItemID   int64
	NewStock int32
}

// Wire converts the result to the shape shared by HTTP and the relay.
func (r *OrderResult) Wire() event.Order {
	items := make([]event.OrderLine, 0, len(r.Lines))
	for _, l := range r.Lines {
		items = append(items, event.OrderLine{
			ID:       l.ID,
			Quantity: l.Quantity,
			Item:     event.ItemRef{ID: l.ItemID, Name: l.ItemName},
		})
	}
	return event.Order{
		ID:        r.Order.ID,
		MenuID:    r.Order.MenuID,
		UserName:  r.Order.UserName,
		Status:    string(r.Order.Status),
		CreatedAt: r.Order.CreatedAt,
		Items:     items,
	}
}

// OrderService handles order business logic.
type OrderService struct {
	pool     Pool
	newStore NewOrderStore
}

// NewOrderService creates a new OrderService.
func NewOrderService(pool Pool, newStore NewOrderStore) *OrderService {
	return &OrderService{pool: pool, newStore: newStore}
}

// CreateOrder validates the request, then creates the order, its lines and
// the matching stock withdrawals in one transaction. Either everything
// commits or nothing does. Deadlocks and serialization failures retry the
// whole transaction up to maxTxRetries times.
func (s *OrderService) CreateOrder(ctx context.Context, req CreateOrderRequest) (*OrderResult, error) {
	req.CustomerName = strings.TrimSpace(req.CustomerName)
	if req.CustomerName == "" {
		return nil, ErrEmptyCustomerName
	}
	if len(req.Lines) == 0 {
		return nil, ErrEmptyLines
	}
	for i, line := range req.Lines {
		if line.Quantity <= 0 {
			return nil, fmt.Errorf("line[%d]: %w", i, ErrInvalidQuantity)
		}
	}

	var lastErr error
	for attempt := 0; attempt < maxTxRetries; attempt++ {
		result, err := s.createOrderTx(ctx, req)
		if err == nil {
			return result, nil
		}
		if isTransientConflict(err) {
			logrus.WithFields(logrus.Fields{
				"menu_id": req.MenuID,
				"attempt": attempt + 1,
			}).WithError(err).Warn("create order: transient conflict, retrying")
			lastErr = err
			continue
		}
		return nil, err
	}
	return nil, lastErr
}

// createOrderTx executes the full order creation in a single transaction.
func (s *OrderService) createOrderTx(ctx context.Context, req CreateOrderRequest) (*OrderResult, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	store := s.newStore(tx)

	menu, err := store.GetMenu(ctx, req.MenuID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrMenuNotFound
		}
		return nil, fmt.Errorf("get menu: %w", err)
	}

	// --- Resolve items ---
	names := make(map[int64]string, len(req.Lines))
	for i, line := range req.Lines {
		item, err := store.GetMenuItem(ctx, line.ItemID)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return nil, fmt.Errorf("line[%d]: %w", i, ErrItemNotFound)
			}
			return nil, fmt.Errorf("line[%d]: get item: %w", i, err)
		}
		if item.MenuID != menu.ID {
			return nil, fmt.Errorf("line[%d]: %w", i, ErrItemNotInMenu)
		}
		names[item.ID] = item.Name
	}

	// --- Insert order + lines ---
	order, err := store.CreateOrder(ctx, database.CreateOrderParams{
		MenuID:   menu.ID,
		UserName: req.CustomerName,
	})
	if err != nil {
		return nil, fmt.Errorf("create order: %w", err)
	}

	lines := make([]LineResult, 0, len(req.Lines))
	for i, line := range req.Lines {
		created, err := store.CreateOrderLine(ctx, database.CreateOrderLineParams{
			OrderID:  order.ID,
			ItemID:   line.ItemID,
			Quantity: line.Quantity,
		})
		if err != nil {
			return nil, fmt.Errorf("line[%d]: create order line: %w", i, err)
		}
		lines = append(lines, LineResult{
			ID:       created.ID,
			ItemID:   created.ItemID,
			ItemName: names[created.ItemID],
			Quantity: created.Quantity,
		})
	}

	// --- Withdraw stock ---
	// Ascending item id keeps row-lock order identical across transactions.
	byItem := make([]CreateOrderLineRequest, len(req.Lines))
	copy(byItem, req.Lines)
	sort.SliceStable(byItem, func(i, j int) bool { return byItem[i].ItemID < byItem[j].ItemID })

	ledger := NewStockLedger(store)
	var changes []StockChange
	for _, line := range byItem {
		newStock, err := ledger.Decrement(ctx, line.ItemID, line.Quantity)
		if err != nil {
			return nil, err
		}
		if n := len(changes); n > 0 && changes[n-1].ItemID == line.ItemID {
			changes[n-1].NewStock = newStock
			continue
		}
		changes = append(changes, StockChange{ItemID: line.ItemID, NewStock: newStock})
	}

	version, err := store.BumpMenuVersion(ctx, menu.ID)
	if err != nil {
		return nil, fmt.Errorf("bump menu version: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit tx: %w", err)
	}

	logrus.WithFields(logrus.Fields{
		"menu_id":  menu.ID,
		"order_id": order.ID,
		"lines":    len(lines),
	}).Info("order created")

	return &OrderResult{
		Order:   order,
		Lines:   lines,
		Stock:   changes,
		Version: version,
	}, nil
}

// UpdateOrderStatus moves an order to newStatus if the lifecycle allows it.
// Setting the current status again succeeds without writing. The write only
// applies if the status is still the one that was validated; otherwise the
// order is re-read and re-validated.
func (s *OrderService) UpdateOrderStatus(ctx context.Context, menuID, orderID int64, newStatus string) (*OrderResult, error) {
	if !event.ValidStatus(newStatus) {
		return nil, ErrInvalidStatus
	}

	store := s.newStore(s.pool)
	for attempt := 0; attempt < maxStatusRetries; attempt++ {
		current, err := s.getOrder(ctx, store, menuID, orderID)
		if err != nil {
			return nil, err
		}

		from := string(current.Status)
		if from == newStatus {
			return s.withLines(ctx, store, current)
		}
		if !CanTransition(from, newStatus) {
			return nil, &InvalidTransitionError{From: from, To: newStatus}
		}

		updated, err := store.UpdateOrderStatus(ctx, database.UpdateOrderStatusParams{
			ID:       orderID,
			MenuID:   menuID,
			Status:   database.OrderStatus(newStatus),
			Status_2: current.Status,
		})
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				// Status changed (or order deleted) since the read.
				continue
			}
			return nil, fmt.Errorf("update order status: %w", err)
		}

		logrus.WithFields(logrus.Fields{
			"menu_id":  menuID,
			"order_id": orderID,
			"from":     from,
			"to":       newStatus,
		}).Info("order status updated")
		return s.withLines(ctx, store, updated)
	}
	return nil, ErrStatusConflict
}

// ArchiveOrder archives the order from any status. Archiving an archived
// order is a no-op success.
func (s *OrderService) ArchiveOrder(ctx context.Context, menuID, orderID int64) (*OrderResult, error) {
	store := s.newStore(s.pool)
	order, err := store.ArchiveOrder(ctx, database.ArchiveOrderParams{ID: orderID, MenuID: menuID})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrOrderNotFound
		}
		return nil, fmt.Errorf("archive order: %w", err)
	}
	return s.withLines(ctx, store, order)
}

// GetOrder returns one order of the menu with its lines.
func (s *OrderService) GetOrder(ctx context.Context, menuID, orderID int64) (*OrderResult, error) {
	store := s.newStore(s.pool)
	order, err := s.getOrder(ctx, store, menuID, orderID)
	if err != nil {
		return nil, err
	}
	return s.withLines(ctx, store, order)
}

// ListOrders returns the menu's orders oldest first, each with its lines.
func (s *OrderService) ListOrders(ctx context.Context, menuID int64, includeArchived bool) ([]OrderResult, error) {
	store := s.newStore(s.pool)
	orders, err := store.ListOrdersByMenu(ctx, database.ListOrdersByMenuParams{
		MenuID:          menuID,
		IncludeArchived: includeArchived,
	})
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}

	rows, err := store.ListOrderLinesByMenu(ctx, menuID)
	if err != nil {
		return nil, fmt.Errorf("list order lines: %w", err)
	}
	linesByOrder := make(map[int64][]LineResult)
	for _, row := range rows {
		linesByOrder[row.OrderID] = append(linesByOrder[row.OrderID], LineResult{
			ID:       row.ID,
			ItemID:   row.ItemID,
			ItemName: row.ItemName,
			Quantity: row.Quantity,
		})
	}

	results := make([]OrderResult, 0, len(orders))
	for _, o := range orders {
		lines := linesByOrder[o.ID]
		if lines == nil {
			lines = []LineResult{}
		}
		results = append(results, OrderResult{Order: o, Lines: lines})
	}
	return results, nil
}

func (s *OrderService) getOrder(ctx context.Context, store OrderStore, menuID, orderID int64) (database.Order, error) {
	order, err := store.GetOrder(ctx, database.GetOrderParams{ID: orderID, MenuID: menuID})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return database.Order{}, ErrOrderNotFound
		}
		return database.Order{}, fmt.Errorf("get order: %w", err)
	}
	return order, nil
}

func (s *OrderService) withLines(ctx context.Context, store OrderStore, order database.Order) (*OrderResult, error) {
	rows, err := store.ListOrderLinesByOrder(ctx, order.ID)
	if err != nil {
		return nil, fmt.Errorf("list order lines: %w", err)
	}
	lines := make([]LineResult, 0, len(rows))
	for _, row := range rows {
		lines = append(lines, LineResult{
			ID:       row.ID,
			ItemID:   row.ItemID,
			ItemName: row.ItemName,
			Quantity: row.Quantity,
		})
	}
	return &OrderResult{Order: order, Lines: lines}, nil
}
