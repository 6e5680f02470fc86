package billing

import (
	"time"

	"github.com/google/uuid"
	"github.com/proptax/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// PaymentStatus represents the settlement state of a payment
type PaymentStatus string

const (
	PaymentStatusSuccessful PaymentStatus = "Successful"
	PaymentStatusPending    PaymentStatus = "Pending"
	PaymentStatusFailed     PaymentStatus = "Failed"
)

// IsValid checks if the payment status is valid
func (s PaymentStatus) IsValid() bool {
	switch s {
	case PaymentStatusSuccessful, PaymentStatusPending, PaymentStatusFailed:
		return true
	}
	return false
}

// Payment is money received against one bill
type Payment struct {
	shared.BaseEntity
	BillID    uuid.UUID
	Amount    decimal.Decimal
	PaidAt    time.Time
	Method    string
	Reference string
	Status    PaymentStatus
}

// NewPayment creates a payment against billID
func NewPayment(billID uuid.UUID, amount decimal.Decimal, method string, status PaymentStatus, paidAt time.Time) (*Payment, error) {
	if billID == uuid.Nil {
		return nil, shared.NewValidationError("Payment must reference a bill")
	}
	if !amount.IsPositive() {
		return nil, shared.NewValidationError("Payment amount must be positive")
	}
	if !status.IsValid() {
		return nil, shared.NewValidationError("Invalid payment status")
	}
	return &Payment{
		BaseEntity: shared.NewBaseEntity(),
		BillID:     billID,
		Amount:     amount,
		PaidAt:     paidAt,
		Method:     method,
		Status:     status,
	}, nil
}

// Counts reports whether the payment counts toward paid totals
func (p *Payment) Counts() bool {
	return p.Status == PaymentStatusSuccessful
}

// SumSuccessful totals the successful payments in payments
func SumSuccessful(payments []Payment) decimal.Decimal {
	total := decimal.Zero
	for i := range payments {
		if payments[i].Counts() {
			total = total.Add(payments[i].Amount)
		}
	}
	return total
}
