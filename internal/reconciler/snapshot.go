// Package reconciler keeps a client-side copy of a menu's catalog and
// orders in step with the relay, without re-fetching.
package reconciler

import (
	"github.com/carte-app/api/internal/event"
)

// Snapshot is what a client knows about one menu. It is seeded from
// GET /menus/{mid}/board and advanced by Apply.
type Snapshot struct {
	MenuID     int64            `json:"menuId"`
	Version    int64            `json:"version"`
	Categories []event.Category `json:"categories"`
	Orders     []event.Order    `json:"orders"`

	// stockVersions holds, per item, the version of the last stock update
	// applied after the category tree was loaded. Items missing from it are
	// known as of Version.
	stockVersions map[int64]int64
}

// StockVersion returns the version an item's stock is known at.
func (s Snapshot) StockVersion(itemID int64) int64 {
	if v, ok := s.stockVersions[itemID]; ok {
		return v
	}
	return s.Version
}

// Apply returns the snapshot that results from applying msg to s. s itself
// is never modified; unchanged parts are shared between the two.
//
// Version orders category trees: a versioned UPDATE_CATEGORIES that is not
// newer than s.Version is discarded. A versioned UPDATE_STOCK is compared
// with the item's own StockVersion, so every item of one order applies even
// though they share a version. Unversioned updates always apply.
func Apply(s Snapshot, msg event.Message) Snapshot {
	switch m := msg.(type) {
	case event.NewOrder:
		for _, o := range s.Orders {
			if o.ID == m.Order.ID {
				return s
			}
		}
		orders := make([]event.Order, len(s.Orders), len(s.Orders)+1)
		copy(orders, s.Orders)
		s.Orders = append(orders, copyOrder(m.Order))

	case event.UpdateOrderStatus:
		idx := -1
		for i, o := range s.Orders {
			if o.ID == m.OrderID {
				idx = i
				break
			}
		}
		if idx < 0 || s.Orders[idx].Status == m.NewStatus {
			return s
		}
		orders := make([]event.Order, len(s.Orders))
		copy(orders, s.Orders)
		orders[idx].Status = m.NewStatus
		s.Orders = orders

	case event.UpdateCategories:
		if m.Version == nil {
			s.Categories = copyCategories(m.Categories)
			return s
		}
		v := *m.Version
		if v <= s.Version {
			return s
		}
		categories := copyCategories(m.Categories)
		// Stock updates newer than the tree survive it.
		newer := map[int64]int64{}
		for id, sv := range s.stockVersions {
			if sv <= v {
				continue
			}
			if stock, ok := findStock(s.Categories, id); ok {
				setStock(categories, id, stock)
			}
			newer[id] = sv
		}
		s.Categories = categories
		s.Version = v
		s.stockVersions = nil
		if len(newer) > 0 {
			s.stockVersions = newer
		}

	case event.UpdateStock:
		if _, ok := findStock(s.Categories, m.ItemID); !ok {
			return s
		}
		if m.Version != nil {
			if *m.Version <= s.StockVersion(m.ItemID) {
				return s
			}
			versions := make(map[int64]int64, len(s.stockVersions)+1)
			for id, sv := range s.stockVersions {
				versions[id] = sv
			}
			versions[m.ItemID] = *m.Version
			s.stockVersions = versions
		}
		categories := make([]event.Category, len(s.Categories))
		copy(categories, s.Categories)
		setStock(categories, m.ItemID, m.NewStock)
		s.Categories = categories
	}
	return s
}

func findStock(categories []event.Category, itemID int64) (int32, bool) {
	for _, c := range categories {
		for _, it := range c.Items {
			if it.ID == itemID {
				return it.Stock, true
			}
		}
	}
	return 0, false
}

// setStock sets the item's stock, copying the items slice it lives in.
// categories itself must already be a copy owned by the caller.
func setStock(categories []event.Category, itemID int64, stock int32) {
	for ci, c := range categories {
		for ii, it := range c.Items {
			if it.ID != itemID {
				continue
			}
			items := make([]event.Item, len(c.Items))
			copy(items, c.Items)
			items[ii].Stock = stock
			categories[ci].Items = items
			return
		}
	}
}

func copyOrder(o event.Order) event.Order {
	items := make([]event.OrderLine, len(o.Items))
	copy(items, o.Items)
	o.Items = items
	return o
}

func copyCategories(in []event.Category) []event.Category {
	out := make([]event.Category, len(in))
	for i, c := range in {
		items := make([]event.Item, len(c.Items))
		copy(items, c.Items)
		c.Items = items
		out[i] = c
	}
	return out
}
