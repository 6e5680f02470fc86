package billing

import (
	"time"

	"github.com/google/uuid"
	"github.com/proptax/backend/internal/domain/property"
	"github.com/shopspring/decimal"
)

// Balance is the outstanding amount shown for a property
type Balance struct {
	Amount decimal.Decimal `json:"amount"`
	Year   int             `json:"year"`
	// IsAuthoritative is true when Amount comes from the year's issued bill
	IsAuthoritative bool       `json:"is_authoritative"`
	BillID          *uuid.UUID `json:"bill_id,omitempty"`
}

// BalanceReconciler chooses between a property's running total and its dated bill
type BalanceReconciler struct{}

// CurrentBalance returns the bill snapshot for now's calendar year when one exists for p,
// otherwise p's own AmountPayable marked non-authoritative.
// When several bills exist for the year, the most recently generated one wins.
func (BalanceReconciler) CurrentBalance(p *property.Property, bills []Bill, now time.Time) Balance {
	year := now.Year()
	ref := p.Ref()

	var chosen *Bill
	for i := range bills {
		b := &bills[i]
		if !b.IsFor(ref, year) {
			continue
		}
		if chosen == nil || b.generatedAfter(chosen) {
			chosen = b
		}
	}

	if chosen == nil {
		return Balance{
			Amount:          p.AmountPayable,
			Year:            year,
			IsAuthoritative: false,
		}
	}

	id := chosen.ID
	return Balance{
		Amount:          chosen.AmountPayable,
		Year:            year,
		IsAuthoritative: true,
		BillID:          &id,
	}
}
