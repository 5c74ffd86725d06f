package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/carte-app/api/internal/database"
	"github.com/jackc/pgx/v5"
)

// StockStore defines the DB methods the stock ledger needs.
// Satisfied by *database.Queries (and its WithTx variant).
type StockStore interface {
	DecrementStock(ctx context.Context, arg database.DecrementStockParams) (int32, error)
	GetMenuItem(ctx context.Context, id int64) (database.GetMenuItemRow, error)
	SetStock(ctx context.Context, arg database.SetStockParams) (database.MenuItem, error)
}

// StockLedger is the only writer of menu item stock. Bind it to a
// transaction-scoped store to make decrements part of that transaction.
type StockLedger struct {
	store StockStore
}

func NewStockLedger(store StockStore) *StockLedger {
	return &StockLedger{store: store}
}

// Decrement withdraws quantity from the item's stock and returns the new
// value. The update is conditional on stock >= quantity, so concurrent
// callers can never drive the counter below zero.
func (l *StockLedger) Decrement(ctx context.Context, itemID int64, quantity int32) (int32, error) {
	if quantity <= 0 {
		return 0, ErrInvalidQuantity
	}

	newStock, err := l.store.DecrementStock(ctx, database.DecrementStockParams{
		ID:       itemID,
		Quantity: quantity,
	})
	if err == nil {
		return newStock, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return 0, fmt.Errorf("decrement stock: %w", err)
	}

	// No row updated: either the item is gone or the stock is short.
	item, err := l.store.GetMenuItem(ctx, itemID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, ErrItemNotFound
		}
		return 0, fmt.Errorf("get item: %w", err)
	}
	return 0, &InsufficientStockError{
		ItemID:    item.ID,
		ItemName:  item.Name,
		Requested: quantity,
		Available: item.Stock,
	}
}

// Set overrides the item's stock with an absolute value.
func (l *StockLedger) Set(ctx context.Context, itemID int64, value int32) (database.MenuItem, error) {
	if value < 0 {
		return database.MenuItem{}, ErrInvalidStock
	}

	item, err := l.store.SetStock(ctx, database.SetStockParams{ID: itemID, Stock: value})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return database.MenuItem{}, ErrItemNotFound
		}
		return database.MenuItem{}, fmt.Errorf("set stock: %w", err)
	}
	return item, nil
}
