package httpserver

import (
	"net/http"

	"github.com/Skotchmaster/silkroad/internal/catalog"
	"github.com/Skotchmaster/silkroad/pkg/logging"
	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
)

type CatalogHTTP struct {
	Svc *catalog.Service
}

func (h *CatalogHTTP) GetProduct(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "catalog.get_product")

	id, ok := idParam(c, "id")
	if !ok {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid product id")
	}
	p, err := h.Svc.GetProduct(ctx, id)
	if err != nil {
		return fail(l, "get_product_error", err)
	}
	return c.JSON(http.StatusOK, p)
}

func (h *CatalogHTTP) ListProducts(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "catalog.list_products")

	p, size := page(c)
	items, total, err := h.Svc.ListProducts(ctx, false, p, size)
	if err != nil {
		return fail(l, "list_products_error", err)
	}
	return c.JSON(http.StatusOK, map[string]any{
		"data": items,
		"meta": map[string]any{"page": p, "total": total},
	})
}

func (h *CatalogHTTP) CreateProduct(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "catalog.create_product")

	var req catalog.CreateProductRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("create_product_error", "status", 400, "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	p, err := h.Svc.CreateProduct(ctx, req)
	if err != nil {
		return fail(l, "create_product_error", err)
	}
	return c.JSON(http.StatusCreated, p)
}

func (h *CatalogHTTP) UpdatePrice(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "catalog.update_price")

	id, ok := idParam(c, "id")
	if !ok {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid product id")
	}
	var req struct {
		Price decimal.Decimal `json:"price"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	p, err := h.Svc.UpdatePrice(ctx, id, req.Price)
	if err != nil {
		return fail(l, "update_price_error", err)
	}
	return c.JSON(http.StatusOK, p)
}

func (h *CatalogHTTP) Restock(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "catalog.restock")

	id, ok := idParam(c, "id")
	if !ok {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid product id")
	}
	var req struct {
		Quantity int `json:"quantity"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	p, err := h.Svc.Restock(ctx, id, req.Quantity)
	if err != nil {
		return fail(l, "restock_error", err)
	}
	return c.JSON(http.StatusOK, p)
}

func (h *CatalogHTTP) Deactivate(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "catalog.deactivate")

	id, ok := idParam(c, "id")
	if !ok {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid product id")
	}
	p, err := h.Svc.Deactivate(ctx, id)
	if err != nil {
		return fail(l, "deactivate_product_error", err)
	}
	return c.JSON(http.StatusOK, p)
}

func (h *CatalogHTTP) Activate(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "catalog.activate")

	id, ok := idParam(c, "id")
	if !ok {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid product id")
	}
	p, err := h.Svc.Activate(ctx, id)
	if err != nil {
		return fail(l, "activate_product_error", err)
	}
	return c.JSON(http.StatusOK, p)
}
