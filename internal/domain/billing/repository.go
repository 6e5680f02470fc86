package billing

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/proptax/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// BillRepository defines the interface for bill persistence
type BillRepository interface {
	// FindByID finds a bill by its ID, returning nil when absent
	FindByID(ctx context.Context, id uuid.UUID) (*Bill, error)

	// FindByRef returns every bill issued against ref
	FindByRef(ctx context.Context, ref shared.EntityRef) ([]Bill, error)

	// ExistsForYear reports whether ref already has a bill for year
	ExistsForYear(ctx context.Context, ref shared.EntityRef, year int) (bool, error)

	// CountByRef counts the bills issued against ref
	CountByRef(ctx context.Context, ref shared.EntityRef) (int64, error)

	// LockIDsByRef returns the IDs of ref's bills and row-locks them until the transaction ends
	LockIDsByRef(ctx context.Context, ref shared.EntityRef) ([]uuid.UUID, error)

	// Save creates or updates a bill
	Save(ctx context.Context, bill *Bill) error

	// UpdateDelivery writes only the delivery fields of bill, returning NOT_FOUND when no row matched
	UpdateDelivery(ctx context.Context, bill *Bill) error

	// FindPastDue returns up to limit Pending or Partially Paid bills whose due date is before asOf, oldest first
	FindPastDue(ctx context.Context, asOf time.Time, limit int) ([]Bill, error)

	// UpdateStatus writes only the lifecycle status of bill
	UpdateStatus(ctx context.Context, bill *Bill) error

	// DeleteByRef removes ref's bills and returns the number of rows deleted
	DeleteByRef(ctx context.Context, ref shared.EntityRef) (int64, error)
}

// PaymentRepository defines the interface for payment persistence
type PaymentRepository interface {
	// FindByBill returns the payments recorded against billID
	FindByBill(ctx context.Context, billID uuid.UUID) ([]Payment, error)

	// CountByRef counts payments of every status made against ref's bills
	CountByRef(ctx context.Context, ref shared.EntityRef) (int64, error)

	// SumSuccessfulByRef totals successful payments made against ref's bills
	SumSuccessfulByRef(ctx context.Context, ref shared.EntityRef) (decimal.Decimal, error)

	// Save creates or updates a payment
	Save(ctx context.Context, payment *Payment) error

	// DeleteByBillIDs removes the payments of the given bills and returns the number of rows deleted
	DeleteByBillIDs(ctx context.Context, billIDs []uuid.UUID) (int64, error)
}

// AdjustmentRepository defines the interface for bill adjustment persistence
type AdjustmentRepository interface {
	// CountByTarget counts adjustments recorded against target
	CountByTarget(ctx context.Context, target shared.EntityRef) (int64, error)

	// Save creates a bill adjustment
	Save(ctx context.Context, adjustment *BillAdjustment) error

	// DeleteByTarget removes target's adjustments and returns the number of rows deleted
	DeleteByTarget(ctx context.Context, target shared.EntityRef) (int64, error)
}
