package domain

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

var (
	ErrEmptyCart = errors.New("cart is empty")
	ErrNotFound  = errors.New("not found")

	// ErrStockLimit reports the non-fatal "stock limit reached" condition
	// when re-adding a book already capped at its stock. No state changes.
	ErrStockLimit = errors.New("stock limit reached")
)

// ValidationError wraps a malformed-input failure at the operation boundary.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string { return "invalid input: " + e.Reason }

type InsufficientStockError struct {
	BookID    string
	Title     string
	Requested int
	Available int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for %q (requested %d, available %d)", e.Title, e.Requested, e.Available)
}

type OutOfStockError struct {
	BookID string
	Title  string
}

func (e *OutOfStockError) Error() string {
	return fmt.Sprintf("%q is out of stock", e.Title)
}

type InsufficientPaymentError struct {
	Received decimal.Decimal
	Required decimal.Decimal
}

func (e *InsufficientPaymentError) Error() string {
	return fmt.Sprintf("payment received (%s) is below the total (%s)", e.Received.StringFixed(2), e.Required.StringFixed(2))
}

type InvalidStateError struct {
	SaleID string
	Status string
}

func (e *InvalidStateError) Error() string {
	return fmt.Sprintf("sale %s is %s, expected %s", e.SaleID, e.Status, SaleCompleted)
}
