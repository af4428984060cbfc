package repo_test

import (
	"context"
	"errors"
	"testing"

	"github.com/Skotchmaster/silkroad/internal/domain"
	"github.com/Skotchmaster/silkroad/internal/models"
	"github.com/Skotchmaster/silkroad/internal/repo"
	"github.com/Skotchmaster/silkroad/internal/repo/repotest"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateCart_SecondActiveCartConflicts(t *testing.T) {
	t.Parallel()

	r := repotest.New(t)
	ctx := context.Background()
	u := repotest.User(t, r)
	repotest.Cart(t, r, u.ID)

	err := r.CreateCart(ctx, &models.Cart{UserID: u.ID, Active: true})
	require.ErrorIs(t, err, domain.ErrConflict)

	n, err := r.DeactivateCarts(ctx, u.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	require.NoError(t, r.CreateCart(ctx, &models.Cart{UserID: u.ID, Active: true}))
	require.NoError(t, r.CreateCart(ctx, &models.Cart{UserID: u.ID, Active: false}))
}

func TestCreateCartLine_DuplicateProductConflicts(t *testing.T) {
	t.Parallel()

	r := repotest.New(t)
	u := repotest.User(t, r)
	p := repotest.Product(t, r, "5.00", 10)
	c := repotest.Cart(t, r, u.ID)
	repotest.Line(t, r, c.ID, p.ID, 1, "5.00")

	err := r.CreateCartLine(context.Background(), &models.CartLine{
		CartID: c.ID, ProductID: p.ID, Quantity: 2, UnitPrice: decimal.RequireFromString("5.00"),
	})
	require.ErrorIs(t, err, domain.ErrConflict)
}

func TestDecrementStock_NeverBelowZero(t *testing.T) {
	t.Parallel()

	r := repotest.New(t)
	ctx := context.Background()
	p := repotest.Product(t, r, "1.00", 2)

	ok, err := r.DecrementStock(ctx, p.ID, 3)
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = r.DecrementStock(ctx, p.ID, 2)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 0, repotest.Stock(t, r, p.ID))

	ok, err = r.DecrementStock(ctx, 9999, 1)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestStockCheckConstraint(t *testing.T) {
	t.Parallel()

	r := repotest.New(t)
	p := repotest.Product(t, r, "1.00", 1)

	err := r.DB.Model(&models.Product{}).Where("id = ?", p.ID).Update("stock_quantity", -1).Error
	assert.Error(t, err)
}

func TestTransaction_RollsBack(t *testing.T) {
	t.Parallel()

	r := repotest.New(t)
	ctx := context.Background()
	p := repotest.Product(t, r, "1.00", 5)
	boom := errors.New("boom")

	err := r.Transaction(ctx, func(tx *repo.GormRepo) error {
		ok, err := tx.DecrementStock(ctx, p.ID, 4)
		require.NoError(t, err)
		require.True(t, ok)
		return boom
	})
	require.ErrorIs(t, err, boom)
	assert.Equal(t, 5, repotest.Stock(t, r, p.ID))
}

func TestSaveOrderState_VersionGuard(t *testing.T) {
	t.Parallel()

	r := repotest.New(t)
	ctx := context.Background()
	u := repotest.User(t, r)
	p := repotest.Product(t, r, "2.50", 5)

	o := &models.Order{
		UserID:          u.ID,
		Status:          models.StatusPending,
		ShippingAddress: u.Address,
		TotalPrice:      decimal.RequireFromString("2.50"),
		Lines: []models.OrderLine{{
			ProductID: p.ID, ProductName: p.Name, ProductSKU: p.SKU,
			UnitPrice: p.Price, Quantity: 1,
		}},
	}
	require.NoError(t, r.CreateOrder(ctx, o))

	o.Status = models.StatusPaymentConfirmed
	o.Version = 1
	require.NoError(t, r.SaveOrderState(ctx, o, 0))

	err := r.SaveOrderState(ctx, o, 0)
	require.ErrorIs(t, err, domain.ErrConflict)

	got, err := r.GetOrder(ctx, o.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusPaymentConfirmed, got.Status)
	assert.Equal(t, 1, got.Version)
	require.Len(t, got.Lines, 1)
	assert.Equal(t, p.SKU, got.Lines[0].ProductSKU)
}

func TestGetters_NotFound(t *testing.T) {
	t.Parallel()

	r := repotest.New(t)
	ctx := context.Background()

	_, err := r.GetProduct(ctx, 1)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	_, err = r.GetOrder(ctx, 1)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	_, err = r.ActiveCart(ctx, 1)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	_, err = r.FindOrderByTrackingNumber(ctx, "TRK-1-ABCDEF01")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
