package order

import (
	"context"
	"testing"
	"time"

	"github.com/Skotchmaster/silkroad/internal/cart"
	"github.com/Skotchmaster/silkroad/internal/events"
	"github.com/Skotchmaster/silkroad/internal/models"
	"github.com/Skotchmaster/silkroad/internal/repo"
	"github.com/Skotchmaster/silkroad/internal/repo/repotest"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2024, 3, 10, 9, 30, 0, 0, time.UTC)

type fixture struct {
	svc   *Service
	carts *cart.Service
	repo  *repo.GormRepo
	rec   *events.Recorder
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	r := repotest.New(t)
	rec := events.NewRecorder()
	return &fixture{
		svc: &Service{
			Repo:      r,
			Publisher: rec,
			Now:       func() time.Time { return fixedNow },
		},
		carts: &cart.Service{Repo: r},
		repo:  r,
		rec:   rec,
	}
}

// shopper creates a user with an active cart holding qty units of each product.
func (f *fixture) shopper(t *testing.T, items map[*models.Product]int) *models.User {
	t.Helper()

	u := repotest.User(t, f.repo)
	_, err := f.carts.CreateActiveCart(context.Background(), u.ID)
	require.NoError(t, err)
	for p, qty := range items {
		_, err := f.carts.AddItem(context.Background(), u.ID, p.ID, qty)
		require.NoError(t, err)
	}
	return u
}

// seedOrder stores an order directly in the given status.
func (f *fixture) seedOrder(t *testing.T, status models.OrderStatus, lines map[*models.Product]int) *models.Order {
	t.Helper()

	u := repotest.User(t, f.repo)
	o := &models.Order{
		UserID:          u.ID,
		OrderDate:       fixedNow,
		Status:          status,
		ShippingAddress: u.Address,
		BillingAddress:  u.Address,
	}
	for p, qty := range lines {
		o.Lines = append(o.Lines, models.OrderLine{
			ProductID:      p.ID,
			ProductName:    p.Name,
			ProductSKU:     p.SKU,
			UnitPrice:      p.Price,
			Quantity:       qty,
			DiscountAmount: decimal.Zero,
		})
	}
	o.TotalPrice = o.CalculateTotal()
	require.NoError(t, f.repo.CreateOrder(context.Background(), o))
	return o
}

func (f *fixture) countOrders(t *testing.T) int64 {
	t.Helper()
	var n int64
	require.NoError(t, f.repo.DB.Model(&models.Order{}).Count(&n).Error)
	return n
}
