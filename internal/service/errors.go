package service

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
)

// Error classes. Every error below matches exactly one of them with errors.Is.
var (
	ErrValidation = errors.New("validation failed")
	ErrNotFound   = errors.New("not found")
)

var (
	ErrEmptyCustomerName = validationError("customer name is required")
	ErrEmptyLines        = validationError("at least one line is required")
	ErrInvalidQuantity   = validationError("quantity must be > 0")
	ErrItemNotInMenu     = validationError("item does not belong to this menu")
	ErrInvalidStock      = validationError("stock must be >= 0")
	ErrInvalidStatus     = validationError("invalid status")
	ErrEmptyName         = validationError("name is required")
	ErrEmptyPassword     = validationError("admin password is required")

	ErrMenuNotFound     = notFoundError("menu not found")
	ErrCategoryNotFound = notFoundError("category not found")
	ErrItemNotFound     = notFoundError("item not found")
	ErrOrderNotFound    = notFoundError("order not found")
)

var (
	ErrInsufficientStock = errors.New("insufficient stock")
	ErrInvalidTransition = errors.New("invalid status transition")
	ErrItemInUse         = errors.New("item is referenced by existing orders")
)

var (
	// ErrStatusConflict is returned when the order kept changing under
	// concurrent updates for every attempt.
	ErrStatusConflict  = errors.New("order status changed concurrently, retry")
	ErrInvalidPassword = errors.New("invalid admin password")
)

type classifiedError struct {
	msg   string
	class error
}

func (e *classifiedError) Error() string { return e.msg }
func (e *classifiedError) Unwrap() error { return e.class }

func validationError(msg string) error {
	return &classifiedError{msg: msg, class: ErrValidation}
}

func notFoundError(msg string) error {
	return &classifiedError{msg: msg, class: ErrNotFound}
}

// InsufficientStockError names the item whose stock could not cover a line.
type InsufficientStockError struct {
	ItemID    int64
	ItemName  string
	Requested int32
	Available int32
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for %q: requested %d, available %d", e.ItemName, e.Requested, e.Available)
}

func (e *InsufficientStockError) Is(target error) bool {
	return target == ErrInsufficientStock
}

// InvalidTransitionError reports a status change the lifecycle does not
// allow. From is the order's current, unchanged status.
type InvalidTransitionError struct {
	From string
	To   string
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("cannot change status from %s to %s", e.From, e.To)
}

func (e *InvalidTransitionError) Is(target error) bool {
	return target == ErrInvalidTransition
}

// isTransientConflict reports deadlocks and serialization failures, which
// are safe to retry as a whole transaction.
func isTransientConflict(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "40P01" || pgErr.Code == "40001"
	}
	return false
}

// isForeignKeyViolation checks for pgconn error code 23503.
func isForeignKeyViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23503"
	}
	return false
}
