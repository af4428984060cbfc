package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product rows are never deleted; Active=false retires them while order lines keep referencing the id.
type Product struct {
	ID            uint            `gorm:"primaryKey;autoIncrement"                json:"id"`
	Name          string          `gorm:"size:100;not null"                       json:"name"`
	Description   string          `gorm:"type:text"                               json:"description"`
	SKU           string          `gorm:"size:50;not null;uniqueIndex"            json:"sku"`
	Price         decimal.Decimal `gorm:"type:numeric(12,2);not null"             json:"price"`
	StockQuantity int             `gorm:"not null;check:stock_quantity >= 0"      json:"stock_quantity"`
	Active        bool            `gorm:"not null;index"                          json:"active"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

func (Product) TableName() string { return "products" }

func (p *Product) HasStock(qty int) bool {
	return qty <= p.StockQuantity
}

func (p *Product) IsAvailable() bool {
	return p.Active && p.StockQuantity > 0
}
