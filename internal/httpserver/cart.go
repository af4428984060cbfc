package httpserver

import (
	"net/http"

	"github.com/Skotchmaster/silkroad/internal/cart"
	"github.com/Skotchmaster/silkroad/internal/models"
	"github.com/Skotchmaster/silkroad/pkg/logging"
	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
)

type CartHTTP struct {
	Svc *cart.Service
}

type cartResponse struct {
	*models.Cart
	TotalItems int             `json:"total_items"`
	TotalPrice decimal.Decimal `json:"total_price"`
}

func viewCart(c *models.Cart) cartResponse {
	return cartResponse{Cart: c, TotalItems: c.TotalItems(), TotalPrice: c.TotalPrice()}
}

func (h *CartHTTP) GetCart(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "cart.get")

	uid, err := userID(c)
	if err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}

	ct, err := h.Svc.GetActiveCart(ctx, uid)
	if err != nil {
		return fail(l, "get_cart_error", err)
	}
	return c.JSON(http.StatusOK, viewCart(ct))
}

func (h *CartHTTP) AddItem(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "cart.add_item")

	uid, err := userID(c)
	if err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}

	var req struct {
		ProductID uint `json:"product_id"`
		Quantity  int  `json:"quantity"`
	}
	if err := c.Bind(&req); err != nil {
		l.Warn("add_item_error", "status", 400, "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	if req.ProductID == 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "product_id required")
	}

	ct, err := h.Svc.AddItem(ctx, uid, req.ProductID, req.Quantity)
	if err != nil {
		return fail(l, "add_item_error", err)
	}
	return c.JSON(http.StatusOK, viewCart(ct))
}

func (h *CartHTTP) UpdateLine(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "cart.update_line")

	uid, err := userID(c)
	if err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	lineID, ok := idParam(c, "id")
	if !ok {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid line id")
	}

	var req struct {
		Quantity int `json:"quantity"`
	}
	if err := c.Bind(&req); err != nil {
		l.Warn("update_line_error", "status", 400, "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	ct, err := h.Svc.UpdateLine(ctx, uid, lineID, req.Quantity)
	if err != nil {
		return fail(l, "update_line_error", err)
	}
	return c.JSON(http.StatusOK, viewCart(ct))
}

func (h *CartHTTP) RemoveLine(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "cart.remove_line")

	uid, err := userID(c)
	if err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	lineID, ok := idParam(c, "id")
	if !ok {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid line id")
	}

	ct, err := h.Svc.RemoveLine(ctx, uid, lineID)
	if err != nil {
		return fail(l, "remove_line_error", err)
	}
	return c.JSON(http.StatusOK, viewCart(ct))
}

func (h *CartHTTP) Clear(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "cart.clear")

	uid, err := userID(c)
	if err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if err := h.Svc.Clear(ctx, uid); err != nil {
		return fail(l, "clear_cart_error", err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *CartHTTP) Validate(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "cart.validate")

	uid, err := userID(c)
	if err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}

	ct, report, err := h.Svc.Validate(ctx, uid)
	if err != nil {
		return fail(l, "validate_cart_error", err)
	}
	return c.JSON(http.StatusOK, map[string]any{
		"cart":    viewCart(ct),
		"changes": report,
		"changed": report.Changed(),
	})
}
