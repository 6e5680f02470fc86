package billing

import (
	"fmt"
	"strings"
	"time"

	"github.com/proptax/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// BillStatus represents the payment lifecycle of a bill
type BillStatus string

const (
	BillStatusPending       BillStatus = "Pending"
	BillStatusPartiallyPaid BillStatus = "Partially Paid"
	BillStatusPaid          BillStatus = "Paid"
	BillStatusOverdue       BillStatus = "Overdue"
)

// IsValid checks if the bill status is valid
func (s BillStatus) IsValid() bool {
	switch s {
	case BillStatusPending, BillStatusPartiallyPaid, BillStatusPaid, BillStatusOverdue:
		return true
	}
	return false
}

// String returns the string representation of BillStatus
func (s BillStatus) String() string {
	return string(s)
}

// Bill is the yearly bill issued against a property or business.
// AmountPayable is a snapshot taken at generation time and is never recomputed.
type Bill struct {
	shared.BaseEntity
	Ref           shared.EntityRef
	Year          int
	BillNumber    string
	AmountPayable decimal.Decimal
	Status        BillStatus
	DueDate       *time.Time
	GeneratedAt   time.Time

	ServedStatus  DeliveryStatus
	ServedBy      *string
	ServedAt      *time.Time
	DeliveryNotes string
}

// NewBill creates a pending, not-yet-served bill for ref and year
func NewBill(ref shared.EntityRef, year int, amountPayable decimal.Decimal, dueDate *time.Time) (*Bill, error) {
	if ref.IsZero() || !ref.Kind.IsValid() {
		return nil, shared.NewValidationError("Bill must reference a property or business")
	}
	if year < 1900 || year > 9999 {
		return nil, shared.NewValidationError(fmt.Sprintf("Invalid billing year %d", year))
	}

	b := &Bill{
		BaseEntity:    shared.NewBaseEntity(),
		Ref:           ref,
		Year:          year,
		AmountPayable: amountPayable,
		Status:        BillStatusPending,
		DueDate:       dueDate,
		ServedStatus:  DeliveryNotServed,
	}
	b.GeneratedAt = b.CreatedAt
	b.BillNumber = GenerateBillNumber(ref, year, b.ID.String())
	return b, nil
}

// GenerateBillNumber builds a human readable bill number such as "PRP-2026-1A2B3C4D"
func GenerateBillNumber(ref shared.EntityRef, year int, seed string) string {
	prefix := "PRP"
	if ref.Kind == shared.EntityKindBusiness {
		prefix = "BOP"
	}
	seed = strings.ToUpper(strings.ReplaceAll(seed, "-", ""))
	if len(seed) > 8 {
		seed = seed[:8]
	}
	return fmt.Sprintf("%s-%d-%s", prefix, year, seed)
}

// RefreshStatus derives the lifecycle status from the successful amount paid so far.
// A bill past its due date that is not fully paid is Overdue.
func (b *Bill) RefreshStatus(paid decimal.Decimal, now time.Time) BillStatus {
	switch {
	case paid.GreaterThanOrEqual(b.AmountPayable):
		b.Status = BillStatusPaid
	case b.DueDate != nil && now.After(*b.DueDate):
		b.Status = BillStatusOverdue
	case paid.IsPositive():
		b.Status = BillStatusPartiallyPaid
	default:
		b.Status = BillStatusPending
	}
	return b.Status
}

// Outstanding returns what remains to be paid after paid
func (b *Bill) Outstanding(paid decimal.Decimal) decimal.Decimal {
	return b.AmountPayable.Sub(paid)
}

// ApplyDelivery moves the bill to status.
// Entering Not Served clears the server stamp; any other status records actor and now.
// Notes replace the previous notes verbatim.
func (b *Bill) ApplyDelivery(status DeliveryStatus, notes, actor string, now time.Time) error {
	current := b.ServedStatus
	if !current.IsValid() {
		current = DeliveryNotServed
	}
	if !current.CanTransitionTo(status) {
		return shared.NewDomainError(shared.CodeInvalidStatus,
			fmt.Sprintf("Cannot move delivery status from %q to %q", current, status))
	}

	b.ServedStatus = status
	b.DeliveryNotes = notes
	if status.RecordsServer() {
		servedBy := actor
		servedAt := now
		b.ServedBy = &servedBy
		b.ServedAt = &servedAt
	} else {
		b.ServedBy = nil
		b.ServedAt = nil
	}
	b.UpdatedAt = now
	return nil
}

// IsFor reports whether the bill belongs to ref for year
func (b *Bill) IsFor(ref shared.EntityRef, year int) bool {
	return b.Year == year && b.Ref.Matches(ref)
}

// generatedAfter orders bills by GeneratedAt, falling back to CreatedAt
func (b *Bill) generatedAfter(other *Bill) bool {
	if !b.GeneratedAt.Equal(other.GeneratedAt) {
		return b.GeneratedAt.After(other.GeneratedAt)
	}
	return b.CreatedAt.After(other.CreatedAt)
}
