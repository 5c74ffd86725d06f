package reconciler_test

import (
	"testing"
	"time"

	"github.com/carte-app/api/internal/event"
	"github.com/carte-app/api/internal/reconciler"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func order(id int64, name, status string, lines ...event.OrderLine) event.Order {
	if lines == nil {
		lines = []event.OrderLine{}
	}
	return event.Order{
		ID:        id,
		MenuID:    1,
		UserName:  name,
		Status:    status,
		CreatedAt: time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC),
		Items:     lines,
	}
}

func line(id int64, itemID int64, itemName string, qty int32) event.OrderLine {
	return event.OrderLine{ID: id, Quantity: qty, Item: event.ItemRef{ID: itemID, Name: itemName}}
}

func seed() reconciler.Snapshot {
	return reconciler.Snapshot{
		MenuID:  1,
		Version: 4,
		Categories: []event.Category{
			{ID: 10, MenuID: 1, Name: "Drinks", Items: []event.Item{
				{ID: 3, CategoryID: 10, Name: "Cola", Stock: 5},
				{ID: 4, CategoryID: 10, Name: "Water", Stock: 8},
			}},
		},
		Orders: []event.Order{order(1, "Alice", "PENDING", line(1, 3, "Cola", 2))},
	}
}

func TestApply_NewOrder(t *testing.T) {
	s := seed()
	next := reconciler.Apply(s, event.NewOrder{Order: order(2, "Bob", "PENDING")})

	require.Len(t, next.Orders, 2)
	assert.Equal(t, "Bob", next.Orders[1].UserName)
	assert.Len(t, s.Orders, 1, "input must not change")
}

func TestApply_NewOrderDeduplicates(t *testing.T) {
	s := seed()
	next := reconciler.Apply(s, event.NewOrder{Order: order(1, "Alice again", "PENDING")})

	require.Len(t, next.Orders, 1)
	assert.Equal(t, "Alice", next.Orders[0].UserName)
}

func TestApply_UpdateOrderStatus(t *testing.T) {
	s := seed()
	next := reconciler.Apply(s, event.UpdateOrderStatus{OrderID: 1, NewStatus: "IN_PROGRESS"})

	assert.Equal(t, "IN_PROGRESS", next.Orders[0].Status)
	assert.Equal(t, "PENDING", s.Orders[0].Status, "input must not change")
}

func TestApply_UpdateOrderStatusUnknownOrderIgnored(t *testing.T) {
	s := seed()
	next := reconciler.Apply(s, event.UpdateOrderStatus{OrderID: 99, NewStatus: "COMPLETED"})
	assert.Equal(t, s, next)
}

func TestApply_UpdateCategoriesUnversionedAlwaysWins(t *testing.T) {
	s := seed()
	cats := []event.Category{{ID: 11, MenuID: 1, Name: "Food", Items: []event.Item{}}}
	next := reconciler.Apply(s, event.UpdateCategories{Categories: cats})

	assert.Equal(t, cats, next.Categories)
	assert.Equal(t, int64(4), next.Version)
	assert.Equal(t, "Drinks", s.Categories[0].Name, "input must not change")

	// The snapshot does not alias the message.
	cats[0].Name = "Changed"
	assert.Equal(t, "Food", next.Categories[0].Name)
}

func TestApply_UpdateCategoriesVersioned(t *testing.T) {
	s := seed()
	cats := []event.Category{{ID: 11, MenuID: 1, Name: "Food", Items: []event.Item{}}}

	stale := reconciler.Apply(s, event.UpdateCategories{Categories: cats, Version: event.Version(4)})
	assert.Equal(t, s, stale, "same version is not newer")

	older := reconciler.Apply(s, event.UpdateCategories{Categories: cats, Version: event.Version(2)})
	assert.Equal(t, s, older)

	newer := reconciler.Apply(s, event.UpdateCategories{Categories: cats, Version: event.Version(5)})
	assert.Equal(t, cats, newer.Categories)
	assert.Equal(t, int64(5), newer.Version)
}

func TestApply_UpdateStock(t *testing.T) {
	s := seed()
	next := reconciler.Apply(s, event.UpdateStock{ItemID: 3, NewStock: 0})

	assert.Equal(t, int32(0), next.Categories[0].Items[0].Stock)
	assert.Equal(t, int32(8), next.Categories[0].Items[1].Stock)
	assert.Equal(t, int32(5), s.Categories[0].Items[0].Stock, "input must not change")
}

func TestApply_UpdateStockVersioned(t *testing.T) {
	s := seed()

	ignored := reconciler.Apply(s, event.UpdateStock{ItemID: 3, NewStock: 1, Version: event.Version(3)})
	assert.Equal(t, int32(5), ignored.Categories[0].Items[0].Stock)

	applied := reconciler.Apply(s, event.UpdateStock{ItemID: 3, NewStock: 1, Version: event.Version(6)})
	assert.Equal(t, int32(1), applied.Categories[0].Items[0].Stock)
	assert.Equal(t, int64(6), applied.StockVersion(3))
	assert.Equal(t, int64(4), applied.StockVersion(4))
	assert.Equal(t, int64(4), applied.Version, "stock updates do not move the catalog version")

	// An older update arriving late does not undo the newer one.
	late := reconciler.Apply(applied, event.UpdateStock{ItemID: 3, NewStock: 4, Version: event.Version(5)})
	assert.Equal(t, int32(1), late.Categories[0].Items[0].Stock)
}

func TestApply_UpdateStockUnknownItem(t *testing.T) {
	s := seed()
	next := reconciler.Apply(s, event.UpdateStock{ItemID: 99, NewStock: 1})
	assert.Equal(t, s, next)

	next = reconciler.Apply(s, event.UpdateStock{ItemID: 99, NewStock: 1, Version: event.Version(7)})
	assert.Equal(t, s, next)
}

// One order touching two items publishes one stock update per item, all
// carrying the version the order committed at.
func TestApply_UpdateStockSameVersionPerItem(t *testing.T) {
	s := seed()
	s = reconciler.Apply(s, event.UpdateStock{ItemID: 3, NewStock: 3, Version: event.Version(5)})
	s = reconciler.Apply(s, event.UpdateStock{ItemID: 4, NewStock: 6, Version: event.Version(5)})

	assert.Equal(t, int32(3), s.Categories[0].Items[0].Stock)
	assert.Equal(t, int32(6), s.Categories[0].Items[1].Stock)

	// A replay of the same frame is still recognised as stale.
	replay := reconciler.Apply(s, event.UpdateStock{ItemID: 4, NewStock: 7, Version: event.Version(5)})
	assert.Equal(t, int32(6), replay.Categories[0].Items[1].Stock)
}

// Two orders on different items may reach a client out of commit order.
func TestApply_UpdateStockOutOfOrderAcrossItems(t *testing.T) {
	s := seed()
	s = reconciler.Apply(s, event.UpdateStock{ItemID: 3, NewStock: 2, Version: event.Version(6)})
	s = reconciler.Apply(s, event.UpdateStock{ItemID: 4, NewStock: 7, Version: event.Version(5)})

	assert.Equal(t, int32(2), s.Categories[0].Items[0].Stock)
	assert.Equal(t, int32(7), s.Categories[0].Items[1].Stock)
}

func TestApply_UpdateCategoriesAfterNewerStock(t *testing.T) {
	s := seed()
	s = reconciler.Apply(s, event.UpdateStock{ItemID: 3, NewStock: 1, Version: event.Version(7)})

	// A tree committed at v6 is newer than the catalog but older than Cola's stock.
	tree := []event.Category{
		{ID: 10, MenuID: 1, Name: "Drinks", Items: []event.Item{
			{ID: 3, CategoryID: 10, Name: "Cola", Stock: 4},
			{ID: 4, CategoryID: 10, Name: "Water", Stock: 8},
			{ID: 5, CategoryID: 10, Name: "Juice", Stock: 2},
		}},
	}
	next := reconciler.Apply(s, event.UpdateCategories{Categories: tree, Version: event.Version(6)})

	require.Len(t, next.Categories[0].Items, 3)
	assert.Equal(t, int32(1), next.Categories[0].Items[0].Stock, "newer stock kept")
	assert.Equal(t, int32(2), next.Categories[0].Items[2].Stock)
	assert.Equal(t, int64(6), next.Version)
	assert.Equal(t, int64(7), next.StockVersion(3))
	assert.Equal(t, int32(4), tree[0].Items[0].Stock, "message must not change")

	// A tree at v8 covers the v7 stock update.
	tree[0].Items[0].Stock = 9
	later := reconciler.Apply(next, event.UpdateCategories{Categories: tree, Version: event.Version(8)})
	assert.Equal(t, int32(9), later.Categories[0].Items[0].Stock)
	assert.Equal(t, int64(8), later.StockVersion(3))
}

func TestApply_UpdateStockOlderThanTree(t *testing.T) {
	s := seed()
	tree := []event.Category{
		{ID: 10, MenuID: 1, Name: "Drinks", Items: []event.Item{
			{ID: 3, CategoryID: 10, Name: "Cola", Stock: 4},
		}},
	}
	s = reconciler.Apply(s, event.UpdateCategories{Categories: tree, Version: event.Version(6)})
	next := reconciler.Apply(s, event.UpdateStock{ItemID: 3, NewStock: 5, Version: event.Version(5)})
	assert.Equal(t, int32(4), next.Categories[0].Items[0].Stock)
}

// Replaying the same stream in the same order converges to the same state.
func TestApply_Converges(t *testing.T) {
	stream := []event.Message{
		event.NewOrder{Order: order(2, "Bob", "PENDING", line(2, 4, "Water", 1))},
		event.UpdateStock{ItemID: 4, NewStock: 7, Version: event.Version(5)},
		event.UpdateOrderStatus{OrderID: 2, NewStatus: "IN_PROGRESS"},
		event.NewOrder{Order: order(2, "Bob", "PENDING", line(2, 4, "Water", 1))},
		event.UpdateOrderStatus{OrderID: 1, NewStatus: "ARCHIVED"},
	}

	a, b := seed(), seed()
	for _, m := range stream {
		a = reconciler.Apply(a, m)
	}
	for _, m := range stream {
		b = reconciler.Apply(b, m)
	}
	assert.Equal(t, a, b)
	require.Len(t, a.Orders, 2)
	assert.Equal(t, "IN_PROGRESS", a.Orders[1].Status)
}
