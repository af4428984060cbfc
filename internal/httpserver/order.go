package httpserver

import (
	"net/http"

	"github.com/Skotchmaster/silkroad/internal/models"
	"github.com/Skotchmaster/silkroad/internal/order"
	"github.com/Skotchmaster/silkroad/internal/util"
	"github.com/Skotchmaster/silkroad/pkg/logging"
	"github.com/labstack/echo/v4"
)

type OrderHTTP struct {
	Svc *order.Service
}

type checkoutRequest struct {
	ShippingAddress string `json:"shipping_address"`
	BillingAddress  string `json:"billing_address"`
	Notes           string `json:"notes"`
	PaymentMethod   string `json:"payment_method"`
}

type orderResponse struct {
	*models.Order
	TotalItems        int    `json:"total_items"`
	StatusDescription string `json:"status_description"`
	Cancellable       bool   `json:"cancellable"`
}

func viewOrder(o *models.Order) orderResponse {
	return orderResponse{
		Order:             o,
		TotalItems:        o.TotalItems(),
		StatusDescription: o.Status.Description(),
		Cancellable:       o.IsCancellable(),
	}
}

func viewOrders(orders []models.Order) []orderResponse {
	out := make([]orderResponse, 0, len(orders))
	for i := range orders {
		out = append(out, viewOrder(&orders[i]))
	}
	return out
}

func page(c echo.Context) (int, int) {
	return util.ParseIntDefault(c.QueryParam("page"), 1),
		util.ParseIntDefault(c.QueryParam("size"), util.DefaultPageSize)
}

func (h *OrderHTTP) Checkout(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "order.checkout")

	uid, err := userID(c)
	if err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}

	var req checkoutRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("checkout_error", "status", 400, "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	o, err := h.Svc.CreateOrderFromCart(ctx, uid, order.CheckoutRequest{
		ShippingAddress: req.ShippingAddress,
		BillingAddress:  req.BillingAddress,
		Notes:           req.Notes,
		PaymentMethod:   models.PaymentMethod(req.PaymentMethod),
	})
	if err != nil {
		return fail(l, "checkout_error", err)
	}
	return c.JSON(http.StatusCreated, viewOrder(o))
}

func (h *OrderHTTP) ListMine(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "order.list_mine")

	uid, err := userID(c)
	if err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}

	p, size := page(c)
	orders, total, err := h.Svc.ListUserOrders(ctx, uid, p, size)
	if err != nil {
		return fail(l, "list_orders_error", err)
	}
	return c.JSON(http.StatusOK, map[string]any{
		"data": viewOrders(orders),
		"meta": map[string]any{"page": p, "total": total},
	})
}

func (h *OrderHTTP) GetMine(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "order.get_mine")

	uid, err := userID(c)
	if err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	id, ok := idParam(c, "id")
	if !ok {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid order id")
	}

	o, err := h.Svc.GetOrderForUser(ctx, uid, id)
	if err != nil {
		return fail(l, "get_order_error", err)
	}
	return c.JSON(http.StatusOK, viewOrder(o))
}

func (h *OrderHTTP) CancelMine(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "order.cancel_mine")

	uid, err := userID(c)
	if err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	id, ok := idParam(c, "id")
	if !ok {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid order id")
	}

	var req struct {
		Reason string `json:"reason"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	o, err := h.Svc.CancelOrderForUser(ctx, uid, id, req.Reason)
	if err != nil {
		return fail(l, "cancel_order_error", err)
	}
	return c.JSON(http.StatusOK, viewOrder(o))
}

func (h *OrderHTTP) Track(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "order.track")

	o, err := h.Svc.GetByTrackingNumber(ctx, c.Param("tracking"))
	if err != nil {
		return fail(l, "track_order_error", err)
	}
	return c.JSON(http.StatusOK, map[string]any{
		"order_id":                o.ID,
		"status":                  o.Status,
		"status_description":      o.Status.Description(),
		"estimated_delivery_date": o.EstimatedDeliveryDate,
		"actual_delivery_date":    o.ActualDeliveryDate,
	})
}

// Admin endpoints.

func (h *OrderHTTP) Get(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "order.get")

	id, ok := idParam(c, "id")
	if !ok {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid order id")
	}
	o, err := h.Svc.GetOrder(ctx, id)
	if err != nil {
		return fail(l, "get_order_error", err)
	}
	return c.JSON(http.StatusOK, viewOrder(o))
}

func (h *OrderHTTP) UpdateStatus(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "order.update_status")

	id, ok := idParam(c, "id")
	if !ok {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid order id")
	}
	var req struct {
		Status string `json:"status"`
		Note   string `json:"note"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	o, err := h.Svc.UpdateStatus(ctx, id, models.OrderStatus(req.Status), req.Note)
	if err != nil {
		return fail(l, "update_status_error", err)
	}
	return c.JSON(http.StatusOK, viewOrder(o))
}

func (h *OrderHTTP) Cancel(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "order.cancel")

	id, ok := idParam(c, "id")
	if !ok {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid order id")
	}
	var req struct {
		Reason string `json:"reason"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	o, err := h.Svc.CancelOrder(ctx, id, req.Reason)
	if err != nil {
		return fail(l, "cancel_order_error", err)
	}
	return c.JSON(http.StatusOK, viewOrder(o))
}

// ListByStatus serves ?status=X plus the two work queues.
func (h *OrderHTTP) ListByStatus(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "order.list_by_status")

	p, size := page(c)
	var (
		orders []models.Order
		err    error
	)
	switch c.QueryParam("queue") {
	case "to_process":
		orders, err = h.Svc.OrdersToProcess(ctx, p, size)
	case "to_ship":
		orders, err = h.Svc.OrdersToShip(ctx, p, size)
	case "":
		st, perr := models.ParseOrderStatus(c.QueryParam("status"))
		if perr != nil {
			return echo.NewHTTPError(http.StatusBadRequest, perr.Error())
		}
		orders, err = h.Svc.ListByStatus(ctx, st, p, size)
	default:
		return echo.NewHTTPError(http.StatusBadRequest, "unknown queue")
	}
	if err != nil {
		return fail(l, "list_orders_error", err)
	}
	return c.JSON(http.StatusOK, map[string]any{"data": viewOrders(orders), "meta": map[string]any{"page": p}})
}
