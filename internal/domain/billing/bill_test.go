package billing

import (
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/proptax/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewBill(t *testing.T) {
	ref := shared.PropertyRef(uuid.New())

	t.Run("creates pending bill", func(t *testing.T) {
		b, err := NewBill(ref, 2026, decimal.NewFromInt(300), nil)
		require.NoError(t, err)
		assert.Equal(t, BillStatusPending, b.Status)
		assert.Equal(t, 2026, b.Year)
		assert.True(t, b.IsFor(ref, 2026))
		assert.False(t, b.IsFor(ref, 2025))
		assert.False(t, b.IsFor(shared.BusinessRef(ref.ID), 2026))
		assert.True(t, strings.HasPrefix(b.BillNumber, "PRP-2026-"))
		assert.Equal(t, b.CreatedAt, b.GeneratedAt)
	})

	t.Run("business bills get their own prefix", func(t *testing.T) {
		b, err := NewBill(shared.BusinessRef(uuid.New()), 2026, decimal.NewFromInt(10), nil)
		require.NoError(t, err)
		assert.True(t, strings.HasPrefix(b.BillNumber, "BOP-2026-"))
	})

	t.Run("rejects empty ref", func(t *testing.T) {
		_, err := NewBill(shared.EntityRef{}, 2026, decimal.NewFromInt(10), nil)
		assert.ErrorIs(t, err, shared.ErrValidation)
	})

	t.Run("rejects silly year", func(t *testing.T) {
		_, err := NewBill(ref, 26, decimal.NewFromInt(10), nil)
		assert.ErrorIs(t, err, shared.ErrValidation)
	})
}

func TestGenerateBillNumber(t *testing.T) {
	ref := shared.PropertyRef(uuid.New())
	assert.Equal(t, "PRP-2026-ABCDEF12", GenerateBillNumber(ref, 2026, "abcdef12-3456"))
	assert.Equal(t, "PRP-2026-AB", GenerateBillNumber(ref, 2026, "ab"))
}

func TestBill_RefreshStatus(t *testing.T) {
	now := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)
	past := now.AddDate(0, -1, 0)
	future := now.AddDate(0, 1, 0)

	tests := []struct {
		name string
		due  *time.Time
		paid string
		want BillStatus
	}{
		{"nothing paid", &future, "0", BillStatusPending},
		{"some paid", &future, "100", BillStatusPartiallyPaid},
		{"fully paid", &future, "300", BillStatusPaid},
		{"overpaid", nil, "350", BillStatusPaid},
		{"past due unpaid", &past, "0", BillStatusOverdue},
		{"past due partially paid", &past, "150", BillStatusOverdue},
		{"past due but paid", &past, "300", BillStatusPaid},
		{"no due date", nil, "0", BillStatusPending},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b, err := NewBill(shared.PropertyRef(uuid.New()), 2026, decimal.NewFromInt(300), tt.due)
			require.NoError(t, err)
			got := b.RefreshStatus(decimal.RequireFromString(tt.paid), now)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.want, b.Status)
		})
	}
}

func TestSumSuccessful(t *testing.T) {
	billID := uuid.New()
	now := time.Now()
	mk := func(amount int64, status PaymentStatus) Payment {
		p, err := NewPayment(billID, decimal.NewFromInt(amount), "cash", status, now)
		require.NoError(t, err)
		return *p
	}

	payments := []Payment{
		mk(100, PaymentStatusSuccessful),
		mk(200, PaymentStatusSuccessful),
		mk(150, PaymentStatusSuccessful),
		mk(999, PaymentStatusPending),
		mk(50, PaymentStatusFailed),
	}
	assert.Equal(t, "450.00", SumSuccessful(payments).StringFixed(2))
	assert.True(t, SumSuccessful(nil).IsZero())
}

func TestNewPayment_Validation(t *testing.T) {
	_, err := NewPayment(uuid.Nil, decimal.NewFromInt(1), "cash", PaymentStatusSuccessful, time.Now())
	assert.ErrorIs(t, err, shared.ErrValidation)

	_, err = NewPayment(uuid.New(), decimal.Zero, "cash", PaymentStatusSuccessful, time.Now())
	assert.ErrorIs(t, err, shared.ErrValidation)

	_, err = NewPayment(uuid.New(), decimal.NewFromInt(1), "cash", "Refunded", time.Now())
	assert.ErrorIs(t, err, shared.ErrValidation)
}

func TestNewBillAdjustment(t *testing.T) {
	target := shared.PropertyRef(uuid.New())

	adj, err := NewBillAdjustment(target, AdjustmentWaiver, decimal.NewFromInt(-20), "hardship", "officer-1")
	require.NoError(t, err)
	assert.True(t, adj.Target.Matches(target))

	_, err = NewBillAdjustment(target, "Bonus", decimal.NewFromInt(5), "x", "officer-1")
	assert.ErrorIs(t, err, shared.ErrValidation)

	_, err = NewBillAdjustment(target, AdjustmentPenalty, decimal.NewFromInt(5), " ", "officer-1")
	assert.ErrorIs(t, err, shared.ErrValidation)
}
