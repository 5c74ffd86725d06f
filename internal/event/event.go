// Package event defines the messages exchanged over the relay.
//
// A frame is a JSON object with a "type" discriminator. Exactly four types
// exist; anything else decodes to ErrUnknownType.
package event

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/carte-app/api/internal/enum"
)

var (
	ErrUnknownType = errors.New("unknown message type")
	ErrMalformed   = errors.New("malformed message")
)

// Message is one of NewOrder, UpdateOrderStatus, UpdateCategories or
// UpdateStock.
type Message interface {
	Type() string
	isMessage()
}

// Order is the wire shape of an order. HTTP responses use it too.
type Order struct {
	ID        int64       `json:"id"`
	MenuID    int64       `json:"menuId"`
	UserName  string      `json:"userName"`
	Status    string      `json:"status"`
	CreatedAt time.Time   `json:"createdAt"`
	Items     []OrderLine `json:"items"`
}

type OrderLine struct {
	ID       int64   `json:"id"`
	Quantity int32   `json:"quantity"`
	Item     ItemRef `json:"item"`
}

type ItemRef struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// Category is the wire shape of a category with its items.
type Category struct {
	ID     int64  `json:"id"`
	MenuID int64  `json:"menuId"`
	Name   string `json:"name"`
	Items  []Item `json:"items"`
}

type Item struct {
	ID         int64  `json:"id"`
	CategoryID int64  `json:"categoryId"`
	Name       string `json:"name"`
	Stock      int32  `json:"stock"`
}

type NewOrder struct {
	Order Order `json:"order"`
}

type UpdateOrderStatus struct {
	OrderID   int64  `json:"orderId"`
	NewStatus string `json:"newStatus"`
}

// UpdateCategories replaces a client's whole category tree. Version is set
// only when the server publishes it.
type UpdateCategories struct {
	Categories []Category `json:"categories"`
	Version    *int64     `json:"version,omitempty"`
}

type UpdateStock struct {
	ItemID   int64  `json:"itemId"`
	NewStock int32  `json:"newStock"`
	Version  *int64 `json:"version,omitempty"`
}

func (NewOrder) Type() string          { return enum.MessageNewOrder }
func (UpdateOrderStatus) Type() string { return enum.MessageUpdateOrderStatus }
func (UpdateCategories) Type() string  { return enum.MessageUpdateCategories }
func (UpdateStock) Type() string       { return enum.MessageUpdateStock }

func (NewOrder) isMessage()          {}
func (UpdateOrderStatus) isMessage() {}
func (UpdateCategories) isMessage()  {}
func (UpdateStock) isMessage()       {}

func (m NewOrder) MarshalJSON() ([]byte, error) {
	type alias NewOrder
	return json.Marshal(struct {
		Type string `json:"type"`
		alias
	}{m.Type(), alias(m)})
}

func (m UpdateOrderStatus) MarshalJSON() ([]byte, error) {
	type alias UpdateOrderStatus
	return json.Marshal(struct {
		Type string `json:"type"`
		alias
	}{m.Type(), alias(m)})
}

func (m UpdateCategories) MarshalJSON() ([]byte, error) {
	type alias UpdateCategories
	if m.Categories == nil {
		m.Categories = []Category{}
	}
	return json.Marshal(struct {
		Type string `json:"type"`
		alias
	}{m.Type(), alias(m)})
}

func (m UpdateStock) MarshalJSON() ([]byte, error) {
	type alias UpdateStock
	return json.Marshal(struct {
		Type string `json:"type"`
		alias
	}{m.Type(), alias(m)})
}

// Version returns a pointer to v, for the optional version fields.
func Version(v int64) *int64 { return &v }

// Encode serializes m as a single relay frame.
func Encode(m Message) ([]byte, error) {
	if m == nil {
		return nil, fmt.Errorf("encode: nil message")
	}
	return json.Marshal(m)
}

// Kind returns the type tag of a frame without checking its body. It fails
// with ErrMalformed when the frame is not a JSON object and ErrUnknownType
// when the tag is missing or not one of the four known kinds.
func Kind(data []byte) (string, error) {
	var envelope struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(data, &envelope); err != nil {
		return "", fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	switch envelope.Type {
	case enum.MessageNewOrder, enum.MessageUpdateOrderStatus,
		enum.MessageUpdateCategories, enum.MessageUpdateStock:
		return envelope.Type, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownType, envelope.Type)
}

// Decode parses a relay frame. It returns ErrUnknownType when the type tag
// is missing or not one of the four known kinds, and ErrMalformed when the
// frame is not valid JSON or a required field is absent or invalid.
func Decode(data []byte) (Message, error) {
	kind, err := Kind(data)
	if err != nil {
		return nil, err
	}

	switch kind {
	case enum.MessageNewOrder:
		var raw struct {
			Order *Order `json:"order"`
		}
		if err := json.Unmarshal(data, &raw); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
		}
		if raw.Order == nil || raw.Order.ID == 0 {
			return nil, fmt.Errorf("%w: NEW_ORDER without order id", ErrMalformed)
		}
		return NewOrder{Order: *raw.Order}, nil

	case enum.MessageUpdateOrderStatus:
		var m UpdateOrderStatus
		if err := json.Unmarshal(data, &m); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
		}
		if m.OrderID == 0 {
			return nil, fmt.Errorf("%w: UPDATE_ORDER_STATUS without orderId", ErrMalformed)
		}
		if !ValidStatus(m.NewStatus) {
			return nil, fmt.Errorf("%w: invalid newStatus %q", ErrMalformed, m.NewStatus)
		}
		return m, nil

	case enum.MessageUpdateCategories:
		var raw struct {
			Categories *[]Category `json:"categories"`
			Version    *int64      `json:"version"`
		}
		if err := json.Unmarshal(data, &raw); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
		}
		if raw.Categories == nil {
			return nil, fmt.Errorf("%w: UPDATE_CATEGORIES without categories", ErrMalformed)
		}
		return UpdateCategories{Categories: *raw.Categories, Version: raw.Version}, nil

	case enum.MessageUpdateStock:
		var raw struct {
			ItemID   int64  `json:"itemId"`
			NewStock *int32 `json:"newStock"`
			Version  *int64 `json:"version"`
		}
		if err := json.Unmarshal(data, &raw); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
		}
		if raw.ItemID == 0 || raw.NewStock == nil || *raw.NewStock < 0 {
			return nil, fmt.Errorf("%w: UPDATE_STOCK needs itemId and a non-negative newStock", ErrMalformed)
		}
		return UpdateStock{ItemID: raw.ItemID, NewStock: *raw.NewStock, Version: raw.Version}, nil
	}

	return nil, fmt.Errorf("%w: %q", ErrUnknownType, kind)
}

// ValidStatus reports whether s is one of the four order statuses.
func ValidStatus(s string) bool {
	switch s {
	case enum.OrderStatusPending, enum.OrderStatusInProgress,
		enum.OrderStatusCompleted, enum.OrderStatusArchived:
		return true
	}
	return false
}
