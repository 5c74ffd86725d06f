package reconciler

import (
	"sort"
	"strings"

	"github.com/carte-app/api/internal/enum"
	"github.com/carte-app/api/internal/event"
	"github.com/shopspring/decimal"
)

// Board is the preparation board view of a snapshot.
type Board struct {
	Pending    []event.Order `json:"pending"`
	InProgress []event.Order `json:"inProgress"`
	Completed  []event.Order `json:"completed"`
	Stats      BoardStats    `json:"stats"`
}

// BoardStats summarize the active (non-archived) orders regardless of the
// search filter.
type BoardStats struct {
	Total      int `json:"total"`
	Pending    int `json:"pending"`
	InProgress int `json:"inProgress"`
	Completed  int `json:"completed"`
	// Ingredients is the quantity per item name still to prepare, summed
	// over orders that are not completed.
	Ingredients map[string]int32 `json:"ingredients"`
	// CompletionRate is completed/total as a percentage, rounded to 2 places.
	CompletionRate decimal.Decimal `json:"completionRate"`
}

// Ingredient is one row of BoardStats.Ingredients, for sorted display.
type Ingredient struct {
	Name     string
	Quantity int32
}

// BuildBoard groups the snapshot's active orders by status. search, when
// non-empty, keeps only orders whose customer name or one of whose item
// names contains it, ignoring case.
func BuildBoard(s Snapshot, search string) Board {
	board := Board{
		Pending:    []event.Order{},
		InProgress: []event.Order{},
		Completed:  []event.Order{},
		Stats:      BoardStats{Ingredients: map[string]int32{}},
	}
	needle := strings.ToLower(strings.TrimSpace(search))

	for _, o := range s.Orders {
		if o.Status == enum.OrderStatusArchived {
			continue
		}

		board.Stats.Total++
		switch o.Status {
		case enum.OrderStatusPending:
			board.Stats.Pending++
		case enum.OrderStatusInProgress:
			board.Stats.InProgress++
		case enum.OrderStatusCompleted:
			board.Stats.Completed++
		}
		if o.Status != enum.OrderStatusCompleted {
			for _, line := range o.Items {
				board.Stats.Ingredients[line.Item.Name] += line.Quantity
			}
		}

		if needle != "" && !matches(o, needle) {
			continue
		}
		switch o.Status {
		case enum.OrderStatusPending:
			board.Pending = append(board.Pending, o)
		case enum.OrderStatusInProgress:
			board.InProgress = append(board.InProgress, o)
		case enum.OrderStatusCompleted:
			board.Completed = append(board.Completed, o)
		}
	}

	board.Stats.CompletionRate = decimal.Zero
	if board.Stats.Total > 0 {
		board.Stats.CompletionRate = decimal.NewFromInt(int64(board.Stats.Completed)).
			Mul(decimal.NewFromInt(100)).
			Div(decimal.NewFromInt(int64(board.Stats.Total))).
			Round(2)
	}
	return board
}

// SortedIngredients returns the ingredient totals by name.
func (st BoardStats) SortedIngredients() []Ingredient {
	out := make([]Ingredient, 0, len(st.Ingredients))
	for name, qty := range st.Ingredients {
		out = append(out, Ingredient{Name: name, Quantity: qty})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

func matches(o event.Order, needle string) bool {
	if strings.Contains(strings.ToLower(o.UserName), needle) {
		return true
	}
	for _, line := range o.Items {
		if strings.Contains(strings.ToLower(line.Item.Name), needle) {
			return true
		}
	}
	return false
}
