// Package order turns carts into orders and drives them through their lifecycle.
package order

import (
	"context"
	"time"

	"github.com/Skotchmaster/silkroad/internal/events"
	"github.com/Skotchmaster/silkroad/internal/inventory"
	"github.com/Skotchmaster/silkroad/internal/repo"
	"github.com/Skotchmaster/silkroad/pkg/idgen"
	"github.com/Skotchmaster/silkroad/pkg/logging"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const estimatedDeliveryLead = 3 * 24 * time.Hour

var tracer = otel.Tracer("github.com/Skotchmaster/silkroad/internal/order")

// StockLedger moves stock inside the caller's unit of work.
type StockLedger interface {
	HasStock(ctx context.Context, tx *repo.GormRepo, productID uint, qty int) (bool, error)
	Decrement(ctx context.Context, tx *repo.GormRepo, productID uint, qty int) error
	Increment(ctx context.Context, tx *repo.GormRepo, productID uint, qty int) error
}

type IDGenerator interface {
	TrackingNumber(now time.Time) string
	PaymentTransactionID() string
}

// Service zero values fall back to the production ledger, id generator, a no-op publisher
// and the UTC wall clock.
type Service struct {
	Repo      *repo.GormRepo
	Ledger    StockLedger
	IDs       IDGenerator
	Publisher events.Publisher
	Now       func() time.Time
}

func (s *Service) ledger() StockLedger {
	if s.Ledger != nil {
		return s.Ledger
	}
	return inventory.Ledger{}
}

func (s *Service) ids() IDGenerator {
	if s.IDs != nil {
		return s.IDs
	}
	return idgen.Generator{}
}

func (s *Service) now() time.Time {
	if s.Now != nil {
		return s.Now().UTC()
	}
	return time.Now().UTC()
}

// publish runs after commit; a broker outage must not undo a placed order.
func (s *Service) publish(ctx context.Context, ev events.Event) {
	if s.Publisher == nil {
		return
	}
	if err := s.Publisher.Publish(ctx, ev); err != nil {
		logging.FromContext(ctx).Error("publish_event_error", "type", ev.Type, "order_id", ev.OrderID, "error", err)
	}
}

func fail(span trace.Span, err error) {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}
