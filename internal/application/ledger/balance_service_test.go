package ledger

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/proptax/backend/internal/domain/billing"
	"github.com/proptax/backend/internal/domain/property"
	"github.com/proptax/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestBalanceService_CurrentBalance(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)

	prop, err := property.NewProperty(property.Attributes{
		Owner:     property.Owner{Name: "Esi Asante"},
		Structure: "Modern",
		Use:       "Residential",
		RoomCount: 10,
	}, decimal.NewFromInt(50))
	require.NoError(t, err)
	require.Equal(t, "500.00", prop.AmountPayable.StringFixed(2))

	t.Run("prefers the current year bill", func(t *testing.T) {
		props, bills := new(MockPropertyRepository), new(MockBillRepository)
		bill, err := billing.NewBill(prop.Ref(), 2026, decimal.NewFromInt(300), nil)
		require.NoError(t, err)
		props.On("FindByID", mock.Anything, prop.ID).Return(prop, nil)
		bills.On("FindByRef", mock.Anything, prop.Ref()).Return([]billing.Bill{*bill}, nil)

		svc := NewBalanceService(props, bills)
		svc.now = func() time.Time { return now }

		got, err := svc.CurrentBalance(ctx, prop.ID)
		require.NoError(t, err)
		assert.Equal(t, "300.00", got.Amount.StringFixed(2))
		assert.True(t, got.IsAuthoritative)
	})

	t.Run("falls back to the property", func(t *testing.T) {
		props, bills := new(MockPropertyRepository), new(MockBillRepository)
		props.On("FindByID", mock.Anything, prop.ID).Return(prop, nil)
		bills.On("FindByRef", mock.Anything, prop.Ref()).Return([]billing.Bill{}, nil)

		svc := NewBalanceService(props, bills)
		svc.now = func() time.Time { return now }

		got, err := svc.CurrentBalance(ctx, prop.ID)
		require.NoError(t, err)
		assert.Equal(t, "500.00", got.Amount.StringFixed(2))
		assert.False(t, got.IsAuthoritative)
		assert.Equal(t, 2026, got.Year)
	})

	t.Run("missing property", func(t *testing.T) {
		props, bills := new(MockPropertyRepository), new(MockBillRepository)
		id := uuid.New()
		props.On("FindByID", mock.Anything, id).Return(nil, nil)

		_, err := NewBalanceService(props, bills).CurrentBalance(ctx, id)
		assert.ErrorIs(t, err, shared.ErrNotFound)
		bills.AssertNotCalled(t, "FindByRef", mock.Anything, mock.Anything)
	})
}
