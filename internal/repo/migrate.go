package repo

import (
	"fmt"

	"github.com/Skotchmaster/silkroad/internal/models"
	"gorm.io/gorm"
)

// ActiveCartIndex keeps a single active cart per user.
const ActiveCartIndex = "CREATE UNIQUE INDEX IF NOT EXISTS idx_carts_user_active ON carts (user_id) WHERE active"

// AutoMigrate builds the schema from the models. Postgres deployments use the SQL migrations instead.
func AutoMigrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&models.User{},
		&models.Product{},
		&models.Cart{},
		&models.CartLine{},
		&models.Order{},
		&models.OrderLine{},
	); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	if err := db.Exec(ActiveCartIndex).Error; err != nil {
		return fmt.Errorf("active cart index: %w", err)
	}
	return nil
}
