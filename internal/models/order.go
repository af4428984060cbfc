package models

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

type PaymentMethod string

const (
	PaymentCreditCard   PaymentMethod = "CREDIT_CARD"
	PaymentDebitCard    PaymentMethod = "DEBIT_CARD"
	PaymentPayPal       PaymentMethod = "PAYPAL"
	PaymentBankTransfer PaymentMethod = "BANK_TRANSFER"
)

func (m PaymentMethod) Valid() bool {
	switch m {
	case PaymentCreditCard, PaymentDebitCard, PaymentPayPal, PaymentBankTransfer:
		return true
	}
	return false
}

// Order is frozen at checkout. Only status, notes, payment and shipping fields change afterwards,
// each change bumping Version.
type Order struct {
	ID                    uint            `gorm:"primaryKey;autoIncrement"          json:"id"`
	UserID                uint            `gorm:"not null;index"                    json:"user_id"`
	OrderDate             time.Time       `gorm:"not null;index"                    json:"order_date"`
	Status                OrderStatus     `gorm:"type:varchar(20);not null;index"   json:"status"`
	TotalPrice            decimal.Decimal `gorm:"type:numeric(12,2);not null"       json:"total_price"`
	ShippingAddress       string          `gorm:"size:500;not null"                 json:"shipping_address"`
	BillingAddress        string          `gorm:"size:500"                          json:"billing_address"`
	Notes                 string          `gorm:"type:text"                         json:"notes"`
	PaymentMethod         PaymentMethod   `gorm:"size:50"                           json:"payment_method"`
	PaymentTransactionID  string          `gorm:"size:100"                          json:"payment_transaction_id,omitempty"`
	TrackingNumber        string          `gorm:"size:100;index"                    json:"tracking_number,omitempty"`
	EstimatedDeliveryDate *time.Time      `json:"estimated_delivery_date,omitempty"`
	ActualDeliveryDate    *time.Time      `json:"actual_delivery_date,omitempty"`
	Version               int             `gorm:"not null;default:0"                json:"version"`
	Lines                 []OrderLine     `gorm:"foreignKey:OrderID"                json:"lines"`
	CreatedAt             time.Time       `json:"created_at"`
	UpdatedAt             time.Time       `json:"updated_at"`
}

func (Order) TableName() string { return "orders" }

// OrderLine copies the product attributes at purchase time.
type OrderLine struct {
	ID             uint            `gorm:"primaryKey;autoIncrement"                          json:"id"`
	OrderID        uint            `gorm:"not null;uniqueIndex:idx_order_lines_order_product" json:"order_id"`
	ProductID      uint            `gorm:"not null;uniqueIndex:idx_order_lines_order_product" json:"product_id"`
	ProductName    string          `gorm:"size:100;not null"                                 json:"product_name"`
	ProductSKU     string          `gorm:"size:50"                                           json:"product_sku"`
	UnitPrice      decimal.Decimal `gorm:"type:numeric(12,2);not null"                       json:"unit_price"`
	Quantity       int             `gorm:"not null;check:quantity >= 1"                      json:"quantity"`
	DiscountAmount decimal.Decimal `gorm:"type:numeric(12,2);not null"                       json:"discount_amount"`
}

func (OrderLine) TableName() string { return "order_lines" }

func (l *OrderLine) SubtotalBeforeDiscount() decimal.Decimal {
	return l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

func (l *OrderLine) Subtotal() decimal.Decimal {
	return l.SubtotalBeforeDiscount().Sub(l.DiscountAmount)
}

func (o *Order) CalculateTotal() decimal.Decimal {
	total := decimal.Zero
	for i := range o.Lines {
		total = total.Add(o.Lines[i].Subtotal())
	}
	return total
}

func (o *Order) TotalItems() int {
	n := 0
	for i := range o.Lines {
		n += o.Lines[i].Quantity
	}
	return n
}

func (o *Order) IsCancellable() bool { return o.Status.IsCancellable() }

// AppendNote adds one "[time] STATUS: text" line to the note log.
func (o *Order) AppendNote(at time.Time, status OrderStatus, text string) {
	text = strings.TrimSpace(text)
	if text == "" {
		return
	}
	entry := fmt.Sprintf("[%s] %s: %s", at.UTC().Format(time.RFC3339), status, text)
	if o.Notes == "" {
		o.Notes = entry
		return
	}
	o.Notes += "\n" + entry
}
