package httpserver

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/Skotchmaster/silkroad/internal/account"
	"github.com/Skotchmaster/silkroad/internal/cart"
	"github.com/Skotchmaster/silkroad/internal/catalog"
	"github.com/Skotchmaster/silkroad/internal/domain"
	"github.com/Skotchmaster/silkroad/internal/events"
	"github.com/Skotchmaster/silkroad/internal/models"
	"github.com/Skotchmaster/silkroad/internal/order"
	"github.com/Skotchmaster/silkroad/internal/repo"
	"github.com/Skotchmaster/silkroad/internal/repo/repotest"
	"github.com/Skotchmaster/silkroad/pkg/tokens"
	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testSecret = []byte("http-test-secret")

type testEnv struct {
	e    *echo.Echo
	repo *repo.GormRepo
	rec  *events.Recorder
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	r := repotest.New(t)
	rec := events.NewRecorder()
	e := echo.New()
	Register(e, &Deps{
		CartHandler:    &CartHTTP{Svc: &cart.Service{Repo: r}},
		OrderHandler:   &OrderHTTP{Svc: &order.Service{Repo: r, Publisher: rec}},
		AccountHandler: &AccountHTTP{Svc: &account.Service{Repo: r, JWTSecret: testSecret}},
		CatalogHandler: &CatalogHTTP{Svc: &catalog.Service{Repo: r}},
		JWTSecret:      testSecret,
	})
	return &testEnv{e: e, repo: r, rec: rec}
}

func (env *testEnv) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	if token != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	env.e.ServeHTTP(rec, req)
	return rec
}

func tokenFor(t *testing.T, u *models.User) string {
	t.Helper()
	tok, err := tokens.NewAccessToken(testSecret, strconv.FormatUint(uint64(u.ID), 10), u.Role, time.Now().Add(time.Hour))
	require.NoError(t, err)
	return tok
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func TestShoppingFlow(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)

	admin := repotest.User(t, env.repo)
	require.NoError(t, env.repo.DB.Model(admin).Update("role", models.RoleAdmin).Error)
	admin.Role = models.RoleAdmin
	adminTok := tokenFor(t, admin)

	rec := env.do(t, http.MethodPost, "/api/v1/admin/products", adminTok, map[string]any{
		"name": "Teapot", "sku": "TEA-1", "price": "15.50", "stock_quantity": 3,
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	product := decode[models.Product](t, rec)

	rec = env.do(t, http.MethodPost, "/api/v1/accounts", "", map[string]any{
		"email": "tea@example.com", "password": "earlgrey-hot", "address": "1 Leaf Lane",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = env.do(t, http.MethodPost, "/api/v1/accounts/login", "", map[string]any{
		"email": "tea@example.com", "password": "earlgrey-hot",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	tok := decode[map[string]any](t, rec)["access_token"].(string)

	rec = env.do(t, http.MethodPost, "/api/v1/cart/items", tok, map[string]any{"product_id": product.ID, "quantity": 2})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	view := decode[map[string]any](t, rec)
	assert.EqualValues(t, 2, view["total_items"])
	assert.True(t, decimal.RequireFromString(view["total_price"].(string)).Equal(decimal.NewFromInt(31)))

	rec = env.do(t, http.MethodPost, "/api/v1/cart/items", tok, map[string]any{"product_id": product.ID, "quantity": 5})
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = env.do(t, http.MethodPost, "/api/v1/cart/checkout", tok, map[string]any{"payment_method": "PAYPAL"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	placed := decode[map[string]any](t, rec)
	orderID := uint(placed["id"].(float64))
	assert.Equal(t, "PENDING", placed["status"])
	assert.Equal(t, true, placed["cancellable"])
	assert.Equal(t, 1, repotest.Stock(t, env.repo, product.ID))

	rec = env.do(t, http.MethodPost, "/api/v1/cart/checkout", tok, nil)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	rec = env.do(t, http.MethodGet, "/api/v1/orders", tok, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	list := decode[map[string]any](t, rec)
	assert.Len(t, list["data"], 1)

	rec = env.do(t, http.MethodGet, fmt.Sprintf("/api/v1/orders/%d", orderID), adminTok, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = env.do(t, http.MethodPost, fmt.Sprintf("/api/v1/orders/%d/cancel", orderID), tok, map[string]any{"reason": "changed mind"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, 3, repotest.Stock(t, env.repo, product.ID))

	rec = env.do(t, http.MethodPost, fmt.Sprintf("/api/v1/admin/orders/%d/status", orderID), adminTok, map[string]any{"status": "SHIPPED"})
	assert.Equal(t, http.StatusConflict, rec.Code)

	evs := env.rec.Drain()
	require.Len(t, evs, 2)
	assert.Equal(t, events.TypeOrderCreated, evs[0].Type)
	assert.Equal(t, events.TypeOrderCancelled, evs[1].Type)
}

func TestAuthGuards(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	u := repotest.User(t, env.repo)
	tok := tokenFor(t, u)

	rec := env.do(t, http.MethodGet, "/api/v1/cart", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = env.do(t, http.MethodGet, "/api/v1/cart", "garbage", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = env.do(t, http.MethodPost, "/api/v1/admin/products", tok, map[string]any{"name": "x", "sku": "x", "price": "1"})
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = env.do(t, http.MethodGet, "/api/v1/cart", tok, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.EqualValues(t, 0, decode[map[string]any](t, rec)["total_items"])

	rec = env.do(t, http.MethodGet, "/health/live", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestAdminQueues(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	admin := &models.User{Email: "boss@example.com", PasswordHash: "x", Role: models.RoleAdmin, Active: true}
	require.NoError(t, env.repo.CreateUser(context.Background(), admin))
	adminTok := tokenFor(t, admin)

	rec := env.do(t, http.MethodGet, "/api/v1/admin/orders?status=BOGUS", adminTok, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = env.do(t, http.MethodGet, "/api/v1/admin/orders?queue=to_ship", adminTok, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, decode[map[string]any](t, rec)["data"])

	rec = env.do(t, http.MethodGet, "/api/v1/admin/orders/12345", adminTok, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = env.do(t, http.MethodGet, "/api/v1/admin/orders/abc", adminTok, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestStatusOf(t *testing.T) {
	t.Parallel()

	cases := []struct {
		err  error
		want int
	}{
		{domain.ErrValidation, http.StatusBadRequest},
		{account.ErrInvalidCredentials, http.StatusUnauthorized},
		{domain.ErrForbidden, http.StatusForbidden},
		{domain.ErrNotFound, http.StatusNotFound},
		{domain.ErrUnavailable, http.StatusConflict},
		{&domain.InsufficientStockError{ProductID: 1, Requested: 2}, http.StatusConflict},
		{domain.ErrConflict, http.StatusConflict},
		{domain.ErrIllegalTransition, http.StatusConflict},
		{domain.ErrNotCancellable, http.StatusConflict},
		{domain.ErrEmptyCart, http.StatusUnprocessableEntity},
		{errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, statusOf(fmt.Errorf("wrapped: %w", tc.err)), tc.err.Error())
	}
}
