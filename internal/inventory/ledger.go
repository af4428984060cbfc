// Package inventory owns Product.StockQuantity. Every ledger call takes the unit of work it
// must run in; stock is only ever changed inside a caller-scoped transaction.
package inventory

import (
	"context"
	"fmt"

	"github.com/Skotchmaster/silkroad/internal/domain"
	"github.com/Skotchmaster/silkroad/internal/models"
	"github.com/Skotchmaster/silkroad/internal/repo"
)

// Ledger is the production stock ledger.
type Ledger struct{}

// HasStock locks the product row and reports whether qty units are on hand.
func (Ledger) HasStock(ctx context.Context, tx *repo.GormRepo, productID uint, qty int) (bool, error) {
	p, err := tx.LockProduct(ctx, productID)
	if err != nil {
		return false, err
	}
	return p.HasStock(qty), nil
}

// Decrement removes qty units with a guarded update, so a concurrent checkout that got there
// first makes this one fail with ErrInsufficientStock rather than drive stock negative.
func (Ledger) Decrement(ctx context.Context, tx *repo.GormRepo, productID uint, qty int) error {
	if qty < 1 {
		return fmt.Errorf("decrement %d units: %w", qty, domain.ErrValidation)
	}
	ok, err := tx.DecrementStock(ctx, productID, qty)
	if err != nil {
		return fmt.Errorf("decrement stock of product %d: %w", productID, err)
	}
	if ok {
		return nil
	}

	p, err := tx.GetProduct(ctx, productID)
	if err != nil {
		return err
	}
	return &domain.InsufficientStockError{ProductID: productID, Requested: qty, Available: p.StockQuantity}
}

// Increment puts qty units back. There is no upper bound.
func (Ledger) Increment(ctx context.Context, tx *repo.GormRepo, productID uint, qty int) error {
	if qty < 1 {
		return fmt.Errorf("increment %d units: %w", qty, domain.ErrValidation)
	}
	ok, err := tx.IncrementStock(ctx, productID, qty)
	if err != nil {
		return fmt.Errorf("increment stock of product %d: %w", productID, err)
	}
	if !ok {
		return fmt.Errorf("product %d: %w", productID, domain.ErrNotFound)
	}
	return nil
}

func IsAvailable(p *models.Product) bool { return p.IsAvailable() }
