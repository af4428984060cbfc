package models

import (
	"fmt"
	"strings"
)

type OrderStatus string

const (
	StatusPending          OrderStatus = "PENDING"
	StatusPaymentConfirmed OrderStatus = "PAYMENT_CONFIRMED"
	StatusProcessing       OrderStatus = "PROCESSING"
	StatusShipped          OrderStatus = "SHIPPED"
	StatusDelivered        OrderStatus = "DELIVERED"
	StatusCancelled        OrderStatus = "CANCELLED"
	StatusRefunded         OrderStatus = "REFUNDED"
	StatusReturned         OrderStatus = "RETURNED"
)

var AllStatuses = []OrderStatus{
	StatusPending,
	StatusPaymentConfirmed,
	StatusProcessing,
	StatusShipped,
	StatusDelivered,
	StatusCancelled,
	StatusRefunded,
	StatusReturned,
}

var transitions = map[OrderStatus][]OrderStatus{
	StatusPending:          {StatusPaymentConfirmed, StatusCancelled},
	StatusPaymentConfirmed: {StatusProcessing, StatusCancelled},
	StatusProcessing:       {StatusShipped, StatusCancelled},
	StatusShipped:          {StatusDelivered, StatusReturned},
	StatusDelivered:        {StatusReturned, StatusRefunded},
}

var descriptions = map[OrderStatus]string{
	StatusPending:          "Awaiting payment",
	StatusPaymentConfirmed: "Payment confirmed",
	StatusProcessing:       "Being prepared",
	StatusShipped:          "Shipped",
	StatusDelivered:        "Delivered",
	StatusCancelled:        "Cancelled",
	StatusRefunded:         "Refunded",
	StatusReturned:         "Returned",
}

func ParseOrderStatus(s string) (OrderStatus, error) {
	st := OrderStatus(strings.ToUpper(strings.TrimSpace(s)))
	if _, ok := descriptions[st]; !ok {
		return "", fmt.Errorf("unknown order status %q", s)
	}
	return st, nil
}

func (s OrderStatus) CanTransitionTo(next OrderStatus) bool {
	for _, allowed := range transitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// NextStatuses returns a copy of the allowed targets.
func (s OrderStatus) NextStatuses() []OrderStatus {
	return append([]OrderStatus(nil), transitions[s]...)
}

func (s OrderStatus) IsTerminal() bool { return len(transitions[s]) == 0 }

func (s OrderStatus) IsCancellable() bool {
	return s == StatusPending || s == StatusPaymentConfirmed
}

// RestoresStock reports whether entering s puts the ordered quantities back on the shelf.
func (s OrderStatus) RestoresStock() bool {
	return s == StatusCancelled || s == StatusRefunded
}

func (s OrderStatus) Description() string { return descriptions[s] }

func (s OrderStatus) String() string { return string(s) }
