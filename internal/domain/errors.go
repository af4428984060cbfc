package domain

import (
	"errors"
	"fmt"
)

var (
	ErrValidation        = errors.New("validation")          // 400
	ErrForbidden         = errors.New("forbidden")           // 403
	ErrNotFound          = errors.New("not found")           // 404
	ErrUnavailable       = errors.New("product unavailable") // 409
	ErrInsufficientStock = errors.New("insufficient stock")  // 409
	ErrConflict          = errors.New("conflict")            // 409
	ErrIllegalTransition = errors.New("illegal status transition")
	ErrNotCancellable    = errors.New("order cannot be cancelled")
	ErrEmptyCart         = errors.New("cart is empty") // 422
)

// InsufficientStockError matches ErrInsufficientStock via errors.Is.
type InsufficientStockError struct {
	ProductID uint
	Requested int
	Available int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("product %d: requested %d, available %d: %s",
		e.ProductID, e.Requested, e.Available, ErrInsufficientStock)
}

func (e *InsufficientStockError) Is(target error) bool {
	return target == ErrInsufficientStock
}

var business = []error{
	ErrValidation,
	ErrForbidden,
	ErrNotFound,
	ErrUnavailable,
	ErrInsufficientStock,
	ErrConflict,
	ErrIllegalTransition,
	ErrNotCancellable,
	ErrEmptyCart,
}

// IsBusiness reports whether err is an expected rule violation rather than an internal failure.
func IsBusiness(err error) bool {
	for _, target := range business {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
