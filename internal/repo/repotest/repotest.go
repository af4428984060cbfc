// Package repotest opens throwaway sqlite databases and seeds them for tests.
package repotest

import (
	"context"
	"fmt"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/Skotchmaster/silkroad/internal/models"
	"github.com/Skotchmaster/silkroad/internal/repo"
	pkgdb "github.com/Skotchmaster/silkroad/pkg/db"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

var seq atomic.Int64

func New(t *testing.T) *repo.GormRepo {
	t.Helper()

	dsn := pkgdb.SQLitePrefix + filepath.Join(t.TempDir(), "shop.db")
	db, err := pkgdb.Open(context.Background(), dsn)
	require.NoError(t, err)
	require.NoError(t, repo.AutoMigrate(db))

	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return &repo.GormRepo{DB: db}
}

// User creates an active user with an address; the caller opens carts as needed.
func User(t *testing.T, r *repo.GormRepo) *models.User {
	t.Helper()

	n := seq.Add(1)
	u := &models.User{
		Email:        fmt.Sprintf("user%d@example.com", n),
		PasswordHash: "x",
		Address:      fmt.Sprintf("%d Market Street", n),
		Role:         models.RoleUser,
		Active:       true,
	}
	require.NoError(t, r.CreateUser(context.Background(), u))
	return u
}

func Product(t *testing.T, r *repo.GormRepo, price string, stock int) *models.Product {
	t.Helper()

	n := seq.Add(1)
	p := &models.Product{
		Name:          fmt.Sprintf("product-%d", n),
		SKU:           fmt.Sprintf("SKU-%d", n),
		Price:         decimal.RequireFromString(price),
		StockQuantity: stock,
		Active:        true,
	}
	require.NoError(t, r.CreateProduct(context.Background(), p))
	return p
}

func Cart(t *testing.T, r *repo.GormRepo, userID uint) *models.Cart {
	t.Helper()

	c := &models.Cart{UserID: userID, Active: true}
	require.NoError(t, r.CreateCart(context.Background(), c))
	return c
}

// Line inserts a cart line directly, bypassing stock checks.
func Line(t *testing.T, r *repo.GormRepo, cartID, productID uint, qty int, price string) *models.CartLine {
	t.Helper()

	l := &models.CartLine{
		CartID:    cartID,
		ProductID: productID,
		Quantity:  qty,
		UnitPrice: decimal.RequireFromString(price),
	}
	require.NoError(t, r.CreateCartLine(context.Background(), l))
	return l
}

func Stock(t *testing.T, r *repo.GormRepo, productID uint) int {
	t.Helper()

	p, err := r.GetProduct(context.Background(), productID)
	require.NoError(t, err)
	return p.StockQuantity
}
