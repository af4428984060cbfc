package order

import (
	"context"
	"fmt"
	"strings"

	"github.com/Skotchmaster/silkroad/internal/domain"
	"github.com/Skotchmaster/silkroad/internal/events"
	"github.com/Skotchmaster/silkroad/internal/models"
	"github.com/Skotchmaster/silkroad/internal/repo"
	"github.com/Skotchmaster/silkroad/pkg/logging"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// UpdateStatus moves the order to next if the transition table allows it and applies the
// side effects of entering next. A non-empty note is appended to the order's note log.
func (s *Service) UpdateStatus(ctx context.Context, orderID uint, next models.OrderStatus, note string) (*models.Order, error) {
	return s.transition(ctx, orderID, next, note, nil)
}

// CancelOrder is only allowed before processing starts.
func (s *Service) CancelOrder(ctx context.Context, orderID uint, reason string) (*models.Order, error) {
	note := "Cancellation reason: " + strings.TrimSpace(reason)
	if strings.TrimSpace(reason) == "" {
		note = "Cancelled without a reason"
	}
	return s.transition(ctx, orderID, models.StatusCancelled, note, func(o *models.Order) error {
		if !o.IsCancellable() {
			return fmt.Errorf("order %d is %s: %w", o.ID, o.Status, domain.ErrNotCancellable)
		}
		return nil
	})
}

// CancelOrderForUser cancels one of the user's own orders.
func (s *Service) CancelOrderForUser(ctx context.Context, userID, orderID uint, reason string) (*models.Order, error) {
	if _, err := s.GetOrderForUser(ctx, userID, orderID); err != nil {
		return nil, err
	}
	return s.CancelOrder(ctx, orderID, reason)
}

func (s *Service) transition(ctx context.Context, orderID uint, next models.OrderStatus, note string, guard func(*models.Order) error) (*models.Order, error) {
	ctx, span := tracer.Start(ctx, "order.update_status", trace.WithAttributes(
		attribute.Int64("order.id", int64(orderID)),
		attribute.String("order.status_to", next.String()),
	))
	defer span.End()
	l := logging.FromContext(ctx).With("svc", "order.update_status", "order_id", orderID, "to", next)

	if _, err := models.ParseOrderStatus(string(next)); err != nil {
		err = fmt.Errorf("%v: %w", err, domain.ErrValidation)
		fail(span, err)
		return nil, err
	}

	var (
		out  *models.Order
		prev models.OrderStatus
	)
	err := s.Repo.Transaction(ctx, func(tx *repo.GormRepo) error {
		o, err := tx.LockOrder(ctx, orderID)
		if err != nil {
			return err
		}
		if guard != nil {
			if err := guard(o); err != nil {
				return err
			}
		}
		prev = o.Status
		if err := s.apply(ctx, tx, o, next, note); err != nil {
			return err
		}
		out = o
		return nil
	})
	if err != nil {
		fail(span, err)
		if domain.IsBusiness(err) {
			l.Warn("update_status_rejected", "reason", err.Error())
		} else {
			l.Error("update_status_error", "error", err)
		}
		return nil, err
	}

	l.Info("order_status_changed", "from", prev, "version", out.Version)

	ev := events.Event{
		Type:           events.TypeOrderStatusChanged,
		OrderID:        out.ID,
		UserID:         out.UserID,
		Status:         out.Status.String(),
		PreviousStatus: prev.String(),
		TrackingNumber: out.TrackingNumber,
		OccurredAt:     out.UpdatedAt,
	}
	if next == models.StatusCancelled {
		ev.Type = events.TypeOrderCancelled
		ev.Reason = note
	}
	s.publish(ctx, ev)
	return out, nil
}

// apply performs the transition on a locked order inside tx.
func (s *Service) apply(ctx context.Context, tx *repo.GormRepo, o *models.Order, next models.OrderStatus, note string) error {
	if !o.Status.CanTransitionTo(next) {
		return fmt.Errorf("order %d: %s -> %s: %w", o.ID, o.Status, next, domain.ErrIllegalTransition)
	}

	now := s.now()
	expected := o.Version

	switch next {
	case models.StatusPaymentConfirmed:
		o.PaymentTransactionID = s.ids().PaymentTransactionID()
	case models.StatusShipped:
		o.TrackingNumber = s.ids().TrackingNumber(now)
		eta := now.Add(estimatedDeliveryLead)
		o.EstimatedDeliveryDate = &eta
	case models.StatusDelivered:
		delivered := now
		o.ActualDeliveryDate = &delivered
	}

	if next.RestoresStock() {
		if err := s.restoreStock(ctx, tx, o); err != nil {
			return err
		}
	}

	o.Status = next
	o.AppendNote(now, next, note)
	o.Version++
	o.UpdatedAt = now
	return tx.SaveOrderState(ctx, o, expected)
}

func (s *Service) restoreStock(ctx context.Context, tx *repo.GormRepo, o *models.Order) error {
	ledger := s.ledger()
	for _, line := range o.Lines {
		if err := ledger.Increment(ctx, tx, line.ProductID, line.Quantity); err != nil {
			return fmt.Errorf("restore stock for order %d: %w", o.ID, err)
		}
	}
	logging.FromContext(ctx).Info("order_stock_restored", "order_id", o.ID, "lines", len(o.Lines))
	return nil
}
