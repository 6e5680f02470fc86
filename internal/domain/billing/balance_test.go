package billing

import (
	"testing"
	"time"

	"github.com/proptax/backend/internal/domain/property"
	"github.com/proptax/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestProperty(t *testing.T, amountPayable string) *property.Property {
	t.Helper()
	p, err := property.NewProperty(property.Attributes{
		Owner:     property.Owner{Name: "Kofi Boateng"},
		Structure: "Modern",
		Use:       "Residential",
		RoomCount: 1,
	}, decimal.Zero)
	require.NoError(t, err)
	p.AmountPayable = decimal.RequireFromString(amountPayable)
	return p
}

func billFor(t *testing.T, ref shared.EntityRef, year int, amount string, generatedAt time.Time) Bill {
	t.Helper()
	b, err := NewBill(ref, year, decimal.RequireFromString(amount), nil)
	require.NoError(t, err)
	b.GeneratedAt = generatedAt
	return *b
}

func TestBalanceReconciler_CurrentBalance(t *testing.T) {
	now := time.Date(2026, 8, 15, 12, 0, 0, 0, time.UTC)
	reconciler := BalanceReconciler{}

	t.Run("current year bill wins over running total", func(t *testing.T) {
		p := newTestProperty(t, "500")
		bill := billFor(t, p.Ref(), 2026, "300", now.AddDate(0, -6, 0))

		got := reconciler.CurrentBalance(p, []Bill{bill}, now)
		assert.Equal(t, "300.00", got.Amount.StringFixed(2))
		assert.True(t, got.IsAuthoritative)
		assert.Equal(t, 2026, got.Year)
		require.NotNil(t, got.BillID)
		assert.Equal(t, bill.ID, *got.BillID)
	})

	t.Run("falls back to property when no bill for the year", func(t *testing.T) {
		p := newTestProperty(t, "500")

		got := reconciler.CurrentBalance(p, nil, now)
		assert.Equal(t, "500.00", got.Amount.StringFixed(2))
		assert.False(t, got.IsAuthoritative)
		assert.Equal(t, 2026, got.Year)
		assert.Nil(t, got.BillID)
	})

	t.Run("last year's bill is ignored", func(t *testing.T) {
		p := newTestProperty(t, "500")
		old := billFor(t, p.Ref(), 2025, "300", now.AddDate(-1, 0, 0))

		got := reconciler.CurrentBalance(p, []Bill{old}, now)
		assert.False(t, got.IsAuthoritative)
		assert.True(t, got.Amount.Equal(decimal.NewFromInt(500)))
	})

	t.Run("bills for other entities are ignored", func(t *testing.T) {
		p := newTestProperty(t, "500")
		other := billFor(t, shared.BusinessRef(p.ID), 2026, "300", now)

		got := reconciler.CurrentBalance(p, []Bill{other}, now)
		assert.False(t, got.IsAuthoritative)
	})

	t.Run("most recently generated bill wins", func(t *testing.T) {
		p := newTestProperty(t, "500")
		older := billFor(t, p.Ref(), 2026, "300", now.AddDate(0, -3, 0))
		newer := billFor(t, p.Ref(), 2026, "320", now.AddDate(0, -1, 0))

		got := reconciler.CurrentBalance(p, []Bill{newer, older}, now)
		assert.Equal(t, "320.00", got.Amount.StringFixed(2))
		assert.Equal(t, newer.ID, *got.BillID)

		got = reconciler.CurrentBalance(p, []Bill{older, newer}, now)
		assert.Equal(t, newer.ID, *got.BillID)
	})

	t.Run("created at breaks generated at ties", func(t *testing.T) {
		p := newTestProperty(t, "500")
		generated := now.AddDate(0, -2, 0)
		first := billFor(t, p.Ref(), 2026, "300", generated)
		second := billFor(t, p.Ref(), 2026, "310", generated)
		second.CreatedAt = first.CreatedAt.Add(time.Second)

		got := reconciler.CurrentBalance(p, []Bill{second, first}, now)
		assert.Equal(t, second.ID, *got.BillID)
	})

	t.Run("snapshot is not recomputed", func(t *testing.T) {
		p := newTestProperty(t, "500")
		bill := billFor(t, p.Ref(), 2026, "300", now)
		p.Arrears = decimal.NewFromInt(1000)

		got := reconciler.CurrentBalance(p, []Bill{bill}, now)
		assert.True(t, got.Amount.Equal(decimal.NewFromInt(300)))
	})
}
