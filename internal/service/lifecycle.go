package service

import "github.com/carte-app/api/internal/enum"

// transitions lists the statuses reachable from each status in one step.
// COMPLETED -> PENDING is the staff "unconfirm" action. ARCHIVED is terminal.
var transitions = map[string][]string{
	enum.OrderStatusPending:    {enum.OrderStatusInProgress, enum.OrderStatusArchived},
	enum.OrderStatusInProgress: {enum.OrderStatusCompleted, enum.OrderStatusArchived},
	enum.OrderStatusCompleted:  {enum.OrderStatusPending, enum.OrderStatusArchived},
}

// CanTransition reports whether an order in status from may move to status
// to. Staying in the same status is always allowed.
func CanTransition(from, to string) bool {
	if from == to {
		return true
	}
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}
