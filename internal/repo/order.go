package repo

import (
	"context"
	"fmt"

	"github.com/Skotchmaster/silkroad/internal/domain"
	"github.com/Skotchmaster/silkroad/internal/models"
	"gorm.io/gorm"
)

// CreateOrder inserts the order and its lines.
func (r *GormRepo) CreateOrder(ctx context.Context, order *models.Order) error {
	if err := r.DB.WithContext(ctx).Create(order).Error; err != nil {
		return conflict(err, "order of user %d", order.UserID)
	}
	return nil
}

func (r *GormRepo) GetOrder(ctx context.Context, id uint) (*models.Order, error) {
	var o models.Order
	if err := r.DB.WithContext(ctx).Preload("Lines", orderedLines).First(&o, id).Error; err != nil {
		return nil, notFound(err, "order %d", id)
	}
	return &o, nil
}

func (r *GormRepo) LockOrder(ctx context.Context, id uint) (*models.Order, error) {
	var o models.Order
	if err := r.DB.WithContext(ctx).Clauses(forUpdate).First(&o, id).Error; err != nil {
		return nil, notFound(err, "order %d", id)
	}
	var lines []models.OrderLine
	if err := r.DB.WithContext(ctx).Where("order_id = ?", id).Order("id ASC").Find(&lines).Error; err != nil {
		return nil, err
	}
	o.Lines = lines
	return &o, nil
}

// SaveOrderState writes the mutable order fields if the row still carries expectedVersion.
func (r *GormRepo) SaveOrderState(ctx context.Context, o *models.Order, expectedVersion int) error {
	res := r.DB.WithContext(ctx).Model(&models.Order{}).
		Where("id = ? AND version = ?", o.ID, expectedVersion).
		Updates(map[string]any{
			"status":                  o.Status,
			"notes":                   o.Notes,
			"payment_transaction_id":  o.PaymentTransactionID,
			"tracking_number":         o.TrackingNumber,
			"estimated_delivery_date": o.EstimatedDeliveryDate,
			"actual_delivery_date":    o.ActualDeliveryDate,
			"version":                 o.Version,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("order %d changed concurrently: %w", o.ID, domain.ErrConflict)
	}
	return nil
}

func (r *GormRepo) ListOrdersByUser(ctx context.Context, userID uint, limit, offset int) ([]models.Order, int64, error) {
	byUser := func() *gorm.DB {
		return r.DB.WithContext(ctx).Model(&models.Order{}).Where("user_id = ?", userID)
	}

	var total int64
	if err := byUser().Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var orders []models.Order
	err := byUser().Preload("Lines", orderedLines).
		Order("order_date DESC").Order("id DESC").
		Limit(limit).Offset(offset).
		Find(&orders).Error
	if err != nil {
		return nil, 0, err
	}
	return orders, total, nil
}

func (r *GormRepo) ListOrdersByStatus(ctx context.Context, status models.OrderStatus, oldestFirst bool, limit, offset int) ([]models.Order, error) {
	dir := "DESC"
	if oldestFirst {
		dir = "ASC"
	}
	var orders []models.Order
	err := r.DB.WithContext(ctx).
		Preload("Lines", orderedLines).
		Where("status = ?", status).
		Order("order_date " + dir).Order("id " + dir).
		Limit(limit).Offset(offset).
		Find(&orders).Error
	if err != nil {
		return nil, err
	}
	return orders, nil
}

func (r *GormRepo) FindOrderByTrackingNumber(ctx context.Context, tracking string) (*models.Order, error) {
	var o models.Order
	err := r.DB.WithContext(ctx).Preload("Lines", orderedLines).Where("tracking_number = ?", tracking).First(&o).Error
	if err != nil {
		return nil, notFound(err, "order with tracking number %q", tracking)
	}
	return &o, nil
}
