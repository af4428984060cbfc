package order

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/Skotchmaster/silkroad/internal/cart"
	"github.com/Skotchmaster/silkroad/internal/domain"
	"github.com/Skotchmaster/silkroad/internal/events"
	"github.com/Skotchmaster/silkroad/internal/models"
	"github.com/Skotchmaster/silkroad/internal/repo"
	"github.com/Skotchmaster/silkroad/pkg/logging"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

type CheckoutRequest struct {
	ShippingAddress string
	BillingAddress  string
	Notes           string
	PaymentMethod   models.PaymentMethod
}

// CreateOrderFromCart places an order for everything in the user's active cart.
//
// In one transaction it validates the cart, re-checks and decrements stock line by line,
// stores the order with frozen line copies, empties and retires the cart and opens a new one.
// Any failure rolls all of it back.
func (s *Service) CreateOrderFromCart(ctx context.Context, userID uint, req CheckoutRequest) (*models.Order, error) {
	ctx, span := tracer.Start(ctx, "order.create_from_cart",
		trace.WithAttributes(attribute.Int64("user.id", int64(userID))))
	defer span.End()
	l := logging.FromContext(ctx).With("svc", "order.create_from_cart", "user_id", userID)

	if req.PaymentMethod != "" && !req.PaymentMethod.Valid() {
		err := fmt.Errorf("payment method %q: %w", req.PaymentMethod, domain.ErrValidation)
		fail(span, err)
		return nil, err
	}

	var order *models.Order
	err := s.Repo.Transaction(ctx, func(tx *repo.GormRepo) error {
		o, err := s.assemble(ctx, tx, userID, req)
		order = o
		return err
	})
	if err != nil {
		fail(span, err)
		if domain.IsBusiness(err) {
			l.Warn("create_order_rejected", "reason", err.Error())
		} else {
			l.Error("create_order_error", "error", err)
		}
		return nil, err
	}

	span.SetAttributes(attribute.Int64("order.id", int64(order.ID)), attribute.String("order.total", order.TotalPrice.String()))
	l.Info("order_created", "order_id", order.ID, "lines", len(order.Lines), "total", order.TotalPrice.StringFixed(2))

	s.publish(ctx, events.Event{
		Type:       events.TypeOrderCreated,
		OrderID:    order.ID,
		UserID:     order.UserID,
		Status:     order.Status.String(),
		TotalPrice: order.TotalPrice.StringFixed(2),
		OccurredAt: order.OrderDate,
	})
	return order, nil
}

func (s *Service) assemble(ctx context.Context, tx *repo.GormRepo, userID uint, req CheckoutRequest) (*models.Order, error) {
	user, err := tx.GetActiveUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	c, err := tx.LockActiveCart(ctx, userID)
	if err != nil {
		return nil, err
	}
	if c.IsEmpty() {
		return nil, fmt.Errorf("cart %d: %w", c.ID, domain.ErrEmptyCart)
	}

	c, report, err := cart.Validate(ctx, tx, c)
	if err != nil {
		return nil, err
	}
	if c.IsEmpty() {
		if report.LostToStock() {
			return nil, fmt.Errorf("cart %d sold out during validation: %w", c.ID, domain.ErrInsufficientStock)
		}
		return nil, fmt.Errorf("cart %d has no orderable lines: %w", c.ID, domain.ErrEmptyCart)
	}

	shipping := firstNonBlank(req.ShippingAddress, user.Address)
	if shipping == "" {
		return nil, fmt.Errorf("shipping address required: %w", domain.ErrValidation)
	}

	now := s.now()
	o := &models.Order{
		UserID:          userID,
		OrderDate:       now,
		Status:          models.StatusPending,
		ShippingAddress: shipping,
		BillingAddress:  firstNonBlank(req.BillingAddress, shipping),
		Notes:           strings.TrimSpace(req.Notes),
		PaymentMethod:   req.PaymentMethod,
	}

	lines := append([]models.CartLine(nil), c.Lines...)
	sort.Slice(lines, func(i, j int) bool { return lines[i].ProductID < lines[j].ProductID })

	ids := make([]uint, 0, len(lines))
	for i := range lines {
		ids = append(ids, lines[i].ProductID)
	}
	products, err := tx.ProductsByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}

	ledger := s.ledger()
	for _, line := range lines {
		p, ok := products[line.ProductID]
		if !ok {
			return nil, fmt.Errorf("product %d: %w", line.ProductID, domain.ErrNotFound)
		}

		enough, err := ledger.HasStock(ctx, tx, line.ProductID, line.Quantity)
		if err != nil {
			return nil, err
		}
		if !enough {
			return nil, fmt.Errorf("product %d, %d units: %w", line.ProductID, line.Quantity, domain.ErrInsufficientStock)
		}
		if err := ledger.Decrement(ctx, tx, line.ProductID, line.Quantity); err != nil {
			return nil, err
		}

		o.Lines = append(o.Lines, models.OrderLine{
			ProductID:      p.ID,
			ProductName:    p.Name,
			ProductSKU:     p.SKU,
			UnitPrice:      line.UnitPrice,
			Quantity:       line.Quantity,
			DiscountAmount: decimal.Zero,
		})
	}
	o.TotalPrice = o.CalculateTotal()

	if err := tx.CreateOrder(ctx, o); err != nil {
		return nil, err
	}
	if err := tx.ClearCart(ctx, c.ID); err != nil {
		return nil, err
	}
	if _, err := cart.Open(ctx, tx, userID); err != nil {
		return nil, err
	}
	return o, nil
}

func firstNonBlank(vals ...string) string {
	for _, v := range vals {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}
