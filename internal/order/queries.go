package order

import (
	"context"
	"fmt"

	"github.com/Skotchmaster/silkroad/internal/domain"
	"github.com/Skotchmaster/silkroad/internal/models"
	"github.com/Skotchmaster/silkroad/internal/util"
)

func (s *Service) GetOrder(ctx context.Context, orderID uint) (*models.Order, error) {
	return s.Repo.GetOrder(ctx, orderID)
}

func (s *Service) GetOrderForUser(ctx context.Context, userID, orderID uint) (*models.Order, error) {
	o, err := s.Repo.GetOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if o.UserID != userID {
		return nil, fmt.Errorf("order %d does not belong to user %d: %w", orderID, userID, domain.ErrForbidden)
	}
	return o, nil
}

func (s *Service) IsCancellable(ctx context.Context, orderID uint) (bool, error) {
	o, err := s.Repo.GetOrder(ctx, orderID)
	if err != nil {
		return false, err
	}
	return o.IsCancellable(), nil
}

// ListUserOrders returns one page of the user's orders, newest first, and the total count.
func (s *Service) ListUserOrders(ctx context.Context, userID uint, page, size int) ([]models.Order, int64, error) {
	offset, limit := util.Calculate(page, size)
	return s.Repo.ListOrdersByUser(ctx, userID, limit, offset)
}

func (s *Service) ListByStatus(ctx context.Context, status models.OrderStatus, page, size int) ([]models.Order, error) {
	offset, limit := util.Calculate(page, size)
	return s.Repo.ListOrdersByStatus(ctx, status, false, limit, offset)
}

// OrdersToProcess is the paid queue, oldest first.
func (s *Service) OrdersToProcess(ctx context.Context, page, size int) ([]models.Order, error) {
	offset, limit := util.Calculate(page, size)
	return s.Repo.ListOrdersByStatus(ctx, models.StatusPaymentConfirmed, true, limit, offset)
}

// OrdersToShip is the packing queue, oldest first.
func (s *Service) OrdersToShip(ctx context.Context, page, size int) ([]models.Order, error) {
	offset, limit := util.Calculate(page, size)
	return s.Repo.ListOrdersByStatus(ctx, models.StatusProcessing, true, limit, offset)
}

func (s *Service) GetByTrackingNumber(ctx context.Context, tracking string) (*models.Order, error) {
	return s.Repo.FindOrderByTrackingNumber(ctx, tracking)
}
