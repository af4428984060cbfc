package cart

import (
	"context"

	"github.com/Skotchmaster/silkroad/internal/models"
	"github.com/Skotchmaster/silkroad/internal/repo"
	"github.com/Skotchmaster/silkroad/pkg/logging"
	"github.com/shopspring/decimal"
)

const (
	ReasonMissing    = "missing"
	ReasonInactive   = "inactive"
	ReasonOutOfStock = "out_of_stock"
)

type LineChange struct {
	LineID    uint   `json:"line_id"`
	ProductID uint   `json:"product_id"`
	Reason    string `json:"reason,omitempty"`
	From      int    `json:"from,omitempty"`
	To        int    `json:"to,omitempty"`
}

type Report struct {
	Removed  []LineChange `json:"removed"`
	Clamped  []LineChange `json:"clamped"`
	Repriced []LineChange `json:"repriced"`
}

func (r Report) Changed() bool {
	return len(r.Removed)+len(r.Clamped)+len(r.Repriced) > 0
}

// LostToStock reports whether any line was dropped because its product sold out.
func (r Report) LostToStock() bool {
	for _, c := range r.Removed {
		if c.Reason == ReasonOutOfStock {
			return true
		}
	}
	return false
}

type lineUpdate struct {
	lineID uint
	qty    int
	price  decimal.Decimal
}

// Validate re-checks every line of cart against the live catalog inside tx. Lines whose
// product is gone, inactive or sold out are removed; quantities above stock are clamped;
// prices are refreshed. All lines are inspected before anything is written. Running it again
// without intervening changes writes nothing.
func Validate(ctx context.Context, tx *repo.GormRepo, cart *models.Cart) (*models.Cart, Report, error) {
	l := logging.FromContext(ctx).With("svc", "cart.validate", "cart_id", cart.ID)

	ids := make([]uint, 0, len(cart.Lines))
	for i := range cart.Lines {
		ids = append(ids, cart.Lines[i].ProductID)
	}
	products, err := tx.ProductsByIDs(ctx, ids)
	if err != nil {
		return nil, Report{}, err
	}

	var (
		report  Report
		remove  []uint
		updates []lineUpdate
	)
	for i := range cart.Lines {
		line := &cart.Lines[i]
		p, ok := products[line.ProductID]

		switch {
		case !ok:
			remove = append(remove, line.ID)
			report.Removed = append(report.Removed, LineChange{LineID: line.ID, ProductID: line.ProductID, Reason: ReasonMissing})
		case !p.IsAvailable():
			reason := ReasonOutOfStock
			if !p.Active {
				reason = ReasonInactive
			}
			remove = append(remove, line.ID)
			report.Removed = append(report.Removed, LineChange{LineID: line.ID, ProductID: p.ID, Reason: reason})
		case line.Quantity > p.StockQuantity:
			updates = append(updates, lineUpdate{lineID: line.ID, qty: p.StockQuantity, price: p.Price})
			report.Clamped = append(report.Clamped, LineChange{LineID: line.ID, ProductID: p.ID, From: line.Quantity, To: p.StockQuantity})
		case !line.UnitPrice.Equal(p.Price):
			updates = append(updates, lineUpdate{lineID: line.ID, qty: line.Quantity, price: p.Price})
			report.Repriced = append(report.Repriced, LineChange{LineID: line.ID, ProductID: p.ID})
		}
	}

	if _, err := tx.DeleteCartLines(ctx, cart.ID, remove...); err != nil {
		return nil, Report{}, err
	}
	for _, u := range updates {
		if err := tx.UpdateCartLine(ctx, u.lineID, u.qty, u.price); err != nil {
			return nil, Report{}, err
		}
	}

	for _, c := range report.Removed {
		l.Warn("cart_line_removed", "line_id", c.LineID, "product_id", c.ProductID, "reason", c.Reason)
	}
	for _, c := range report.Clamped {
		l.Info("cart_line_clamped", "line_id", c.LineID, "product_id", c.ProductID, "from", c.From, "to", c.To)
	}

	if !report.Changed() {
		return cart, report, nil
	}
	lines, err := tx.CartLines(ctx, cart.ID)
	if err != nil {
		return nil, Report{}, err
	}
	cart.Lines = lines
	return cart, report, nil
}
