// Package cart manages the per-user shopping cart. Every mutation locks the user's active
// cart row for the duration of its transaction.
package cart

import (
	"context"
	"errors"
	"fmt"

	"github.com/Skotchmaster/silkroad/internal/domain"
	"github.com/Skotchmaster/silkroad/internal/models"
	"github.com/Skotchmaster/silkroad/internal/repo"
	"github.com/Skotchmaster/silkroad/pkg/logging"
	"github.com/shopspring/decimal"
)

type Service struct {
	Repo *repo.GormRepo
}

// Open deactivates whatever cart the user has open and starts an empty active one.
// It runs inside the caller's transaction.
func Open(ctx context.Context, tx *repo.GormRepo, userID uint) (*models.Cart, error) {
	if _, err := tx.DeactivateCarts(ctx, userID); err != nil {
		return nil, fmt.Errorf("deactivate carts: %w", err)
	}
	c := &models.Cart{UserID: userID, Active: true}
	if err := tx.CreateCart(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *Service) CreateActiveCart(ctx context.Context, userID uint) (*models.Cart, error) {
	var cart *models.Cart
	err := s.Repo.Transaction(ctx, func(tx *repo.GormRepo) error {
		if _, err := tx.GetActiveUser(ctx, userID); err != nil {
			return err
		}
		c, err := Open(ctx, tx, userID)
		if err != nil {
			return err
		}
		cart = c
		return nil
	})
	if err != nil {
		return nil, err
	}
	logging.FromContext(ctx).Info("cart_opened", "user_id", userID, "cart_id", cart.ID)
	return cart, nil
}

// GetActiveCart returns the user's active cart, opening one if the user has none.
func (s *Service) GetActiveCart(ctx context.Context, userID uint) (*models.Cart, error) {
	cart, err := s.Repo.ActiveCart(ctx, userID)
	if err == nil {
		return cart, nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}

	err = s.Repo.Transaction(ctx, func(tx *repo.GormRepo) error {
		c, err := lockOrOpen(ctx, tx, userID)
		cart = c
		return err
	})
	if err != nil {
		return nil, err
	}
	return cart, nil
}

// lockOrOpen locks the active cart, creating it when missing. Unlike Open it never
// supersedes an existing cart.
func lockOrOpen(ctx context.Context, tx *repo.GormRepo, userID uint) (*models.Cart, error) {
	cart, err := tx.LockActiveCart(ctx, userID)
	if err == nil {
		return cart, nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}
	if _, err := tx.GetActiveUser(ctx, userID); err != nil {
		return nil, err
	}
	cart = &models.Cart{UserID: userID, Active: true}
	if err := tx.CreateCart(ctx, cart); err != nil {
		return nil, err
	}
	return cart, nil
}

func (s *Service) AddItem(ctx context.Context, userID, productID uint, qty int) (*models.Cart, error) {
	if qty < 1 {
		return nil, fmt.Errorf("quantity must be >= 1: %w", domain.ErrValidation)
	}

	var out *models.Cart
	err := s.Repo.Transaction(ctx, func(tx *repo.GormRepo) error {
		cart, err := lockOrOpen(ctx, tx, userID)
		if err != nil {
			return err
		}

		p, err := tx.GetProduct(ctx, productID)
		if err != nil {
			return err
		}
		if !p.IsAvailable() {
			return fmt.Errorf("product %d: %w", productID, domain.ErrUnavailable)
		}

		line, exists := cart.LineForProduct(productID)
		total := qty
		if exists {
			total += line.Quantity
		}
		if !p.HasStock(total) {
			return &domain.InsufficientStockError{ProductID: productID, Requested: total, Available: p.StockQuantity}
		}

		if exists {
			err = tx.UpdateCartLine(ctx, line.ID, total, p.Price)
		} else {
			err = tx.CreateCartLine(ctx, &models.CartLine{
				CartID:    cart.ID,
				ProductID: productID,
				Quantity:  total,
				UnitPrice: p.Price,
			})
		}
		if err != nil {
			return err
		}

		out, err = tx.GetCart(ctx, cart.ID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// UpdateLine sets an absolute quantity. Removing a line goes through RemoveLine.
func (s *Service) UpdateLine(ctx context.Context, userID, lineID uint, qty int) (*models.Cart, error) {
	if qty < 1 {
		return nil, fmt.Errorf("quantity must be >= 1: %w", domain.ErrValidation)
	}

	var out *models.Cart
	err := s.Repo.Transaction(ctx, func(tx *repo.GormRepo) error {
		cart, line, err := lockLine(ctx, tx, userID, lineID)
		if err != nil {
			return err
		}

		p, err := tx.GetProduct(ctx, line.ProductID)
		if err != nil {
			return err
		}
		if !p.HasStock(qty) {
			return &domain.InsufficientStockError{ProductID: p.ID, Requested: qty, Available: p.StockQuantity}
		}

		if err := tx.UpdateCartLine(ctx, line.ID, qty, p.Price); err != nil {
			return err
		}
		out, err = tx.GetCart(ctx, cart.ID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (s *Service) RemoveLine(ctx context.Context, userID, lineID uint) (*models.Cart, error) {
	var out *models.Cart
	err := s.Repo.Transaction(ctx, func(tx *repo.GormRepo) error {
		cart, line, err := lockLine(ctx, tx, userID, lineID)
		if err != nil {
			return err
		}
		if _, err := tx.DeleteCartLines(ctx, cart.ID, line.ID); err != nil {
			return err
		}
		out, err = tx.GetCart(ctx, cart.ID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (s *Service) Clear(ctx context.Context, userID uint) error {
	return s.Repo.Transaction(ctx, func(tx *repo.GormRepo) error {
		cart, err := tx.LockActiveCart(ctx, userID)
		if err != nil {
			return err
		}
		return tx.ClearCart(ctx, cart.ID)
	})
}

// Validate runs the cart validator on the user's active cart and commits its corrections.
func (s *Service) Validate(ctx context.Context, userID uint) (*models.Cart, Report, error) {
	var (
		out    *models.Cart
		report Report
	)
	err := s.Repo.Transaction(ctx, func(tx *repo.GormRepo) error {
		cart, err := tx.LockActiveCart(ctx, userID)
		if err != nil {
			return err
		}
		out, report, err = Validate(ctx, tx, cart)
		return err
	})
	if err != nil {
		return nil, Report{}, err
	}
	return out, report, nil
}

func (s *Service) CountLines(ctx context.Context, userID uint) (int, error) {
	cart, err := s.Repo.ActiveCart(ctx, userID)
	if err != nil {
		return 0, err
	}
	n, err := s.Repo.CountCartLines(ctx, cart.ID)
	return int(n), err
}

func (s *Service) TotalPrice(ctx context.Context, userID uint) (decimal.Decimal, error) {
	cart, err := s.Repo.ActiveCart(ctx, userID)
	if err != nil {
		return decimal.Zero, err
	}
	return cart.TotalPrice(), nil
}

func lockLine(ctx context.Context, tx *repo.GormRepo, userID, lineID uint) (*models.Cart, *models.CartLine, error) {
	cart, err := tx.LockActiveCart(ctx, userID)
	if err != nil {
		return nil, nil, err
	}
	line, ok := cart.Line(lineID)
	if !ok {
		return nil, nil, fmt.Errorf("cart line %d: %w", lineID, domain.ErrNotFound)
	}
	return cart, line, nil
}
