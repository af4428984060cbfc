package domain

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestInsufficientStockError(t *testing.T) {
	t.Parallel()

	err := fmt.Errorf("checkout: %w", &InsufficientStockError{ProductID: 3, Requested: 2, Available: 1})

	assert.ErrorIs(t, err, ErrInsufficientStock)
	assert.NotErrorIs(t, err, ErrConflict)

	var se *InsufficientStockError
	assert.True(t, errors.As(err, &se))
	assert.Equal(t, uint(3), se.ProductID)
	assert.Contains(t, err.Error(), "requested 2, available 1")
}

func TestIsBusiness(t *testing.T) {
	t.Parallel()

	assert.True(t, IsBusiness(fmt.Errorf("order 1: %w", ErrIllegalTransition)))
	assert.True(t, IsBusiness(&InsufficientStockError{}))
	assert.False(t, IsBusiness(errors.New("connection reset")))
	assert.False(t, IsBusiness(nil))
}
