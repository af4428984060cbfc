package repo

import (
	"context"

	"github.com/Skotchmaster/silkroad/internal/models"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

func (r *GormRepo) ActiveCart(ctx context.Context, userID uint) (*models.Cart, error) {
	var cart models.Cart
	err := r.DB.WithContext(ctx).
		Preload("Lines", orderedLines).
		Where("user_id = ? AND active = ?", userID, true).
		First(&cart).Error
	if err != nil {
		return nil, notFound(err, "active cart of user %d", userID)
	}
	return &cart, nil
}

// LockActiveCart serializes mutations of one cart for the rest of the transaction.
func (r *GormRepo) LockActiveCart(ctx context.Context, userID uint) (*models.Cart, error) {
	var cart models.Cart
	err := r.DB.WithContext(ctx).
		Clauses(forUpdate).
		Where("user_id = ? AND active = ?", userID, true).
		First(&cart).Error
	if err != nil {
		return nil, notFound(err, "active cart of user %d", userID)
	}
	lines, err := r.CartLines(ctx, cart.ID)
	if err != nil {
		return nil, err
	}
	cart.Lines = lines
	return &cart, nil
}

func (r *GormRepo) GetCart(ctx context.Context, cartID uint) (*models.Cart, error) {
	var cart models.Cart
	if err := r.DB.WithContext(ctx).Preload("Lines", orderedLines).First(&cart, cartID).Error; err != nil {
		return nil, notFound(err, "cart %d", cartID)
	}
	return &cart, nil
}

func (r *GormRepo) CreateCart(ctx context.Context, cart *models.Cart) error {
	if err := r.DB.WithContext(ctx).Omit("Lines").Create(cart).Error; err != nil {
		return conflict(err, "active cart of user %d", cart.UserID)
	}
	return nil
}

func (r *GormRepo) DeactivateCarts(ctx context.Context, userID uint) (int64, error) {
	res := r.DB.WithContext(ctx).Model(&models.Cart{}).
		Where("user_id = ? AND active = ?", userID, true).
		Update("active", false)
	return res.RowsAffected, res.Error
}

func (r *GormRepo) CartLines(ctx context.Context, cartID uint) ([]models.CartLine, error) {
	var lines []models.CartLine
	if err := r.DB.WithContext(ctx).Where("cart_id = ?", cartID).Order("id ASC").Find(&lines).Error; err != nil {
		return nil, err
	}
	return lines, nil
}

func (r *GormRepo) CreateCartLine(ctx context.Context, line *models.CartLine) error {
	if err := r.DB.WithContext(ctx).Create(line).Error; err != nil {
		return conflict(err, "product %d already in cart %d", line.ProductID, line.CartID)
	}
	return nil
}

func (r *GormRepo) UpdateCartLine(ctx context.Context, lineID uint, qty int, price decimal.Decimal) error {
	res := r.DB.WithContext(ctx).Model(&models.CartLine{}).
		Where("id = ?", lineID).
		Updates(map[string]any{"quantity": qty, "unit_price": price})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return notFound(gorm.ErrRecordNotFound, "cart line %d", lineID)
	}
	return nil
}

func (r *GormRepo) DeleteCartLines(ctx context.Context, cartID uint, lineIDs ...uint) (int64, error) {
	if len(lineIDs) == 0 {
		return 0, nil
	}
	res := r.DB.WithContext(ctx).
		Where("cart_id = ? AND id IN ?", cartID, lineIDs).
		Delete(&models.CartLine{})
	return res.RowsAffected, res.Error
}

func (r *GormRepo) ClearCart(ctx context.Context, cartID uint) error {
	return r.DB.WithContext(ctx).Where("cart_id = ?", cartID).Delete(&models.CartLine{}).Error
}

func (r *GormRepo) CountCartLines(ctx context.Context, cartID uint) (int64, error) {
	var n int64
	err := r.DB.WithContext(ctx).Model(&models.CartLine{}).Where("cart_id = ?", cartID).Count(&n).Error
	return n, err
}
