package repository

import (
	"errors"
	"fmt"
)

var (
	ErrProductNotFound  = errors.New("product not found")
	ErrPurchaseNotFound = errors.New("purchase not found")
	ErrUserNotFound     = errors.New("user not found")
	ErrEmailTaken       = errors.New("email already taken")
)

// InsufficientStockError names the product that could not cover the requested
// quantity, so callers can report which line sank the purchase.
type InsufficientStockError struct {
	ProductID int64
	Title     string
	Available int64
	Requested int64
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for product %q: %d available, %d requested",
		e.Title, e.Available, e.Requested)
}
