// Package catalog is the admin side of products: listing, pricing, restocking and retiring.
package catalog

import (
	"context"
	"fmt"
	"strings"

	"github.com/Skotchmaster/silkroad/internal/domain"
	"github.com/Skotchmaster/silkroad/internal/inventory"
	"github.com/Skotchmaster/silkroad/internal/models"
	"github.com/Skotchmaster/silkroad/internal/repo"
	"github.com/Skotchmaster/silkroad/internal/util"
	"github.com/Skotchmaster/silkroad/pkg/logging"
	"github.com/shopspring/decimal"
)

type Restocker interface {
	Increment(ctx context.Context, tx *repo.GormRepo, productID uint, qty int) error
}

type Service struct {
	Repo   *repo.GormRepo
	Ledger Restocker
}

type CreateProductRequest struct {
	Name          string          `json:"name"`
	Description   string          `json:"description"`
	SKU           string          `json:"sku"`
	Price         decimal.Decimal `json:"price"`
	StockQuantity int             `json:"stock_quantity"`
}

func (s *Service) ledger() Restocker {
	if s.Ledger != nil {
		return s.Ledger
	}
	return inventory.Ledger{}
}

func (s *Service) CreateProduct(ctx context.Context, req CreateProductRequest) (*models.Product, error) {
	l := logging.FromContext(ctx).With("svc", "catalog.create_product")

	name, sku := strings.TrimSpace(req.Name), strings.TrimSpace(req.SKU)
	switch {
	case name == "" || sku == "":
		return nil, fmt.Errorf("name and sku required: %w", domain.ErrValidation)
	case req.Price.IsNegative():
		return nil, fmt.Errorf("price %s: %w", req.Price, domain.ErrValidation)
	case req.StockQuantity < 0:
		return nil, fmt.Errorf("stock %d: %w", req.StockQuantity, domain.ErrValidation)
	}

	p := &models.Product{
		Name:          name,
		Description:   strings.TrimSpace(req.Description),
		SKU:           sku,
		Price:         req.Price.Round(2),
		StockQuantity: req.StockQuantity,
		Active:        true,
	}
	if err := s.Repo.CreateProduct(ctx, p); err != nil {
		l.Warn("create_product_error", "sku", sku, "error", err)
		return nil, err
	}
	l.Info("product_created", "product_id", p.ID, "sku", p.SKU)
	return p, nil
}

func (s *Service) GetProduct(ctx context.Context, id uint) (*models.Product, error) {
	return s.Repo.GetProduct(ctx, id)
}

// ListProducts returns one page of the catalog and the total count.
func (s *Service) ListProducts(ctx context.Context, includeInactive bool, page, size int) ([]models.Product, int64, error) {
	offset, limit := util.Calculate(page, size)
	return s.Repo.ListProducts(ctx, !includeInactive, limit, offset)
}

// UpdatePrice affects future cart additions and revalidated carts, never placed orders.
func (s *Service) UpdatePrice(ctx context.Context, id uint, price decimal.Decimal) (*models.Product, error) {
	if price.IsNegative() {
		return nil, fmt.Errorf("price %s: %w", price, domain.ErrValidation)
	}
	p, err := s.Repo.UpdateProduct(ctx, id, map[string]any{"price": price.Round(2)})
	if err != nil {
		return nil, err
	}
	logging.FromContext(ctx).Info("product_price_changed", "svc", "catalog.update_price", "product_id", id, "price", p.Price.StringFixed(2))
	return p, nil
}

func (s *Service) Restock(ctx context.Context, id uint, qty int) (*models.Product, error) {
	var p *models.Product
	err := s.Repo.Transaction(ctx, func(tx *repo.GormRepo) error {
		if err := s.ledger().Increment(ctx, tx, id, qty); err != nil {
			return err
		}
		got, err := tx.GetProduct(ctx, id)
		p = got
		return err
	})
	if err != nil {
		return nil, err
	}
	logging.FromContext(ctx).Info("product_restocked", "svc", "catalog.restock", "product_id", id, "added", qty, "stock", p.StockQuantity)
	return p, nil
}

func (s *Service) Deactivate(ctx context.Context, id uint) (*models.Product, error) {
	return s.setActive(ctx, id, false)
}

func (s *Service) Activate(ctx context.Context, id uint) (*models.Product, error) {
	return s.setActive(ctx, id, true)
}

func (s *Service) setActive(ctx context.Context, id uint, active bool) (*models.Product, error) {
	p, err := s.Repo.UpdateProduct(ctx, id, map[string]any{"active": active})
	if err != nil {
		return nil, err
	}
	logging.FromContext(ctx).Info("product_active_changed", "svc", "catalog.set_active", "product_id", id, "active", active)
	return p, nil
}
