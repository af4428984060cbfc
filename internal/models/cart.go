package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Cart is a user's basket. At most one cart per user is active; the partial unique
// index idx_carts_user_active enforces it in storage.
type Cart struct {
	ID        uint       `gorm:"primaryKey;autoIncrement"   json:"id"`
	UserID    uint       `gorm:"not null;index"             json:"user_id"`
	Active    bool       `gorm:"not null"                   json:"active"`
	Lines     []CartLine `gorm:"foreignKey:CartID"          json:"lines"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

func (Cart) TableName() string { return "carts" }

type CartLine struct {
	ID        uint            `gorm:"primaryKey;autoIncrement"                                json:"id"`
	CartID    uint            `gorm:"not null;uniqueIndex:idx_cart_lines_cart_product"        json:"cart_id"`
	ProductID uint            `gorm:"not null;uniqueIndex:idx_cart_lines_cart_product"        json:"product_id"`
	Quantity  int             `gorm:"not null;check:quantity >= 1"                            json:"quantity"`
	UnitPrice decimal.Decimal `gorm:"type:numeric(12,2);not null"                             json:"unit_price"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

func (CartLine) TableName() string { return "cart_lines" }

func (l *CartLine) Subtotal() decimal.Decimal {
	return l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

func (c *Cart) TotalPrice() decimal.Decimal {
	total := decimal.Zero
	for i := range c.Lines {
		total = total.Add(c.Lines[i].Subtotal())
	}
	return total
}

func (c *Cart) TotalItems() int {
	n := 0
	for i := range c.Lines {
		n += c.Lines[i].Quantity
	}
	return n
}

func (c *Cart) CountLines() int { return len(c.Lines) }

func (c *Cart) IsEmpty() bool { return len(c.Lines) == 0 }

func (c *Cart) Line(lineID uint) (*CartLine, bool) {
	for i := range c.Lines {
		if c.Lines[i].ID == lineID {
			return &c.Lines[i], true
		}
	}
	return nil, false
}

func (c *Cart) LineForProduct(productID uint) (*CartLine, bool) {
	for i := range c.Lines {
		if c.Lines[i].ProductID == productID {
			return &c.Lines[i], true
		}
	}
	return nil, false
}
