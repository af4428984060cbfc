// Package idgen produces the external identifiers attached to orders.
package idgen

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

type Generator struct{}

// TrackingNumber returns TRK-<unix millis>-<8 upper hex>.
func (Generator) TrackingNumber(now time.Time) string {
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
	return fmt.Sprintf("TRK-%d-%s", now.UnixMilli(), strings.ToUpper(suffix))
}

func (Generator) PaymentTransactionID() string {
	return uuid.NewString()
}
