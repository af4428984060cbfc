package order

import (
	"context"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/Skotchmaster/silkroad/internal/domain"
	"github.com/Skotchmaster/silkroad/internal/events"
	"github.com/Skotchmaster/silkroad/internal/models"
	"github.com/Skotchmaster/silkroad/internal/repo/repotest"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUpdateStatus_HappyPath(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	ctx := context.Background()
	p := repotest.Product(t, f.repo, "8.00", 10)
	u := f.shopper(t, map[*models.Product]int{p: 2})

	o, err := f.svc.CreateOrderFromCart(ctx, u.ID, CheckoutRequest{})
	require.NoError(t, err)
	f.rec.Drain()

	o, err = f.svc.UpdateStatus(ctx, o.ID, models.StatusPaymentConfirmed, "card authorised")
	require.NoError(t, err)
	_, err = uuid.Parse(o.PaymentTransactionID)
	require.NoError(t, err)

	o, err = f.svc.UpdateStatus(ctx, o.ID, models.StatusProcessing, "")
	require.NoError(t, err)

	o, err = f.svc.UpdateStatus(ctx, o.ID, models.StatusShipped, "handed to courier")
	require.NoError(t, err)
	assert.Regexp(t, regexp.MustCompile(`^TRK-\d+-[0-9A-F]{8}$`), o.TrackingNumber)
	require.NotNil(t, o.EstimatedDeliveryDate)
	assert.True(t, o.EstimatedDeliveryDate.Equal(fixedNow.Add(72*time.Hour)))

	o, err = f.svc.UpdateStatus(ctx, o.ID, models.StatusDelivered, "")
	require.NoError(t, err)
	require.NotNil(t, o.ActualDeliveryDate)
	assert.True(t, o.ActualDeliveryDate.Equal(fixedNow))

	stored, err := f.svc.GetOrder(ctx, o.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusDelivered, stored.Status)
	assert.Equal(t, 4, stored.Version)
	assert.Equal(t, o.TrackingNumber, stored.TrackingNumber)
	assert.Equal(t, []string{
		"[2024-03-10T09:30:00Z] PAYMENT_CONFIRMED: card authorised",
		"[2024-03-10T09:30:00Z] SHIPPED: handed to courier",
	}, strings.Split(stored.Notes, "\n"))

	byTracking, err := f.svc.GetByTrackingNumber(ctx, o.TrackingNumber)
	require.NoError(t, err)
	assert.Equal(t, o.ID, byTracking.ID)

	assert.Equal(t, 8, repotest.Stock(t, f.repo, p.ID))

	evs := f.rec.Drain()
	require.Len(t, evs, 4)
	assert.Equal(t, events.TypeOrderStatusChanged, evs[3].Type)
	assert.Equal(t, "SHIPPED", evs[3].PreviousStatus)
	assert.Equal(t, "DELIVERED", evs[3].Status)
}

func TestUpdateStatus_TransitionTableSoundness(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	ctx := context.Background()
	p := repotest.Product(t, f.repo, "1.00", 1000)

	for _, from := range models.AllStatuses {
		for _, to := range models.AllStatuses {
			o := f.seedOrder(t, from, map[*models.Product]int{p: 1})

			_, err := f.svc.UpdateStatus(ctx, o.ID, to, "")
			if from.CanTransitionTo(to) {
				assert.NoError(t, err, "%s -> %s", from, to)
			} else {
				assert.ErrorIs(t, err, domain.ErrIllegalTransition, "%s -> %s", from, to)
				got, gerr := f.svc.GetOrder(ctx, o.ID)
				require.NoError(t, gerr)
				assert.Equal(t, from, got.Status)
			}
		}
	}
}

func TestUpdateStatus_ShippedToPendingIsIllegal(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	p := repotest.Product(t, f.repo, "1.00", 5)
	o := f.seedOrder(t, models.StatusShipped, map[*models.Product]int{p: 1})

	_, err := f.svc.UpdateStatus(context.Background(), o.ID, models.StatusPending, "back please")
	assert.ErrorIs(t, err, domain.ErrIllegalTransition)
	assert.Empty(t, f.rec.Drain())
}

func TestUpdateStatus_BadInput(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	ctx := context.Background()
	p := repotest.Product(t, f.repo, "1.00", 5)
	o := f.seedOrder(t, models.StatusPending, map[*models.Product]int{p: 1})

	_, err := f.svc.UpdateStatus(ctx, o.ID, models.OrderStatus("LOST"), "")
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = f.svc.UpdateStatus(ctx, 424242, models.StatusProcessing, "")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestCancelOrder_RestoresStock(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	ctx := context.Background()
	p1 := repotest.Product(t, f.repo, "3.00", 10)
	p2 := repotest.Product(t, f.repo, "4.00", 10)
	u := f.shopper(t, map[*models.Product]int{p1: 3, p2: 2})

	o, err := f.svc.CreateOrderFromCart(ctx, u.ID, CheckoutRequest{})
	require.NoError(t, err)
	f.rec.Drain()

	s1, s2 := repotest.Stock(t, f.repo, p1.ID), repotest.Stock(t, f.repo, p2.ID)
	assert.Equal(t, 7, s1)
	assert.Equal(t, 8, s2)

	cancellable, err := f.svc.IsCancellable(ctx, o.ID)
	require.NoError(t, err)
	assert.True(t, cancellable)

	o, err = f.svc.CancelOrder(ctx, o.ID, "changed mind")
	require.NoError(t, err)
	assert.Equal(t, models.StatusCancelled, o.Status)
	assert.Contains(t, o.Notes, "changed mind")

	assert.Equal(t, s1+3, repotest.Stock(t, f.repo, p1.ID))
	assert.Equal(t, s2+2, repotest.Stock(t, f.repo, p2.ID))

	evs := f.rec.Drain()
	require.Len(t, evs, 1)
	assert.Equal(t, events.TypeOrderCancelled, evs[0].Type)
	assert.Contains(t, evs[0].Reason, "changed mind")

	_, err = f.svc.CancelOrder(ctx, o.ID, "again")
	assert.ErrorIs(t, err, domain.ErrNotCancellable)
	assert.Equal(t, s1+3, repotest.Stock(t, f.repo, p1.ID))
}

func TestCancelOrder_NotCancellableOnceProcessing(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	ctx := context.Background()
	p := repotest.Product(t, f.repo, "1.00", 5)

	for _, st := range []models.OrderStatus{models.StatusProcessing, models.StatusShipped, models.StatusDelivered, models.StatusRefunded} {
		o := f.seedOrder(t, st, map[*models.Product]int{p: 1})
		_, err := f.svc.CancelOrder(ctx, o.ID, "too late")
		assert.ErrorIs(t, err, domain.ErrNotCancellable, st)

		ok, err := f.svc.IsCancellable(ctx, o.ID)
		require.NoError(t, err)
		assert.False(t, ok)
	}
	assert.Equal(t, 5, repotest.Stock(t, f.repo, p.ID))

	o := f.seedOrder(t, models.StatusPaymentConfirmed, map[*models.Product]int{p: 2})
	_, err := f.svc.CancelOrder(ctx, o.ID, "")
	require.NoError(t, err)
	assert.Equal(t, 7, repotest.Stock(t, f.repo, p.ID))
}

func TestRefundRestoresStockButReturnDoesNot(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	ctx := context.Background()
	p := repotest.Product(t, f.repo, "1.00", 0)

	refunded := f.seedOrder(t, models.StatusDelivered, map[*models.Product]int{p: 4})
	_, err := f.svc.UpdateStatus(ctx, refunded.ID, models.StatusRefunded, "damaged")
	require.NoError(t, err)
	assert.Equal(t, 4, repotest.Stock(t, f.repo, p.ID))

	returned := f.seedOrder(t, models.StatusShipped, map[*models.Product]int{p: 2})
	_, err = f.svc.UpdateStatus(ctx, returned.ID, models.StatusReturned, "refused at door")
	require.NoError(t, err)
	assert.Equal(t, 4, repotest.Stock(t, f.repo, p.ID))
}

func TestCancelOrderForUser_ChecksOwnership(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	ctx := context.Background()
	p := repotest.Product(t, f.repo, "1.00", 5)
	o := f.seedOrder(t, models.StatusPending, map[*models.Product]int{p: 1})
	stranger := repotest.User(t, f.repo)

	_, err := f.svc.CancelOrderForUser(ctx, stranger.ID, o.ID, "not mine")
	assert.ErrorIs(t, err, domain.ErrForbidden)

	got, err := f.svc.CancelOrderForUser(ctx, o.UserID, o.ID, "mine")
	require.NoError(t, err)
	assert.Equal(t, models.StatusCancelled, got.Status)
}
