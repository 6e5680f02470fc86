package ledger

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/proptax/backend/internal/domain/billing"
	"github.com/proptax/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var sweepNow = time.Date(2026, 4, 2, 1, 0, 0, 0, time.UTC)

func pastDueBill(t *testing.T, amount int64) billing.Bill {
	t.Helper()
	due := time.Date(2026, time.March, 31, 23, 59, 59, 0, time.UTC)
	bill, err := billing.NewBill(shared.PropertyRef(uuid.New()), 2026, decimal.NewFromInt(amount), &due)
	require.NoError(t, err)
	return *bill
}

func newSweeper(bills *MockBillRepository, payments *MockPaymentRepository) *OverdueSweeper {
	s := NewOverdueSweeper(bills, payments, nil)
	s.now = func() time.Time { return sweepNow }
	return s
}

func successful(t *testing.T, billID uuid.UUID, amount int64) billing.Payment {
	t.Helper()
	p, err := billing.NewPayment(billID, decimal.NewFromInt(amount), "cash", billing.PaymentStatusSuccessful, sweepNow)
	require.NoError(t, err)
	return *p
}

func TestOverdueSweeper_Sweep(t *testing.T) {
	ctx := context.Background()

	t.Run("unpaid becomes overdue and settled becomes paid", func(t *testing.T) {
		bills := new(MockBillRepository)
		payments := new(MockPaymentRepository)
		unpaid := pastDueBill(t, 300)
		settled := pastDueBill(t, 200)

		bills.On("FindPastDue", mock.Anything, sweepNow, DefaultSweepBatchSize).
			Return([]billing.Bill{unpaid, settled}, nil).Once()
		payments.On("FindByBill", mock.Anything, unpaid.ID).
			Return([]billing.Payment{successful(t, unpaid.ID, 100)}, nil)
		payments.On("FindByBill", mock.Anything, settled.ID).
			Return([]billing.Payment{successful(t, settled.ID, 200)}, nil)

		var written []billing.BillStatus
		bills.On("UpdateStatus", mock.Anything, mock.AnythingOfType("*billing.Bill")).
			Run(func(args mock.Arguments) {
				b := args.Get(1).(*billing.Bill)
				assert.Equal(t, sweepNow, b.UpdatedAt)
				written = append(written, b.Status)
			}).
			Return(nil)

		res, err := newSweeper(bills, payments).Sweep(ctx)
		require.NoError(t, err)
		assert.Equal(t, SweepResult{Examined: 2, Overdue: 1, Paid: 1}, res)
		assert.Equal(t, []billing.BillStatus{billing.BillStatusOverdue, billing.BillStatusPaid}, written)
		bills.AssertExpectations(t)
	})

	t.Run("full batches are followed by another read", func(t *testing.T) {
		bills := new(MockBillRepository)
		payments := new(MockPaymentRepository)
		first, second, third := pastDueBill(t, 10), pastDueBill(t, 20), pastDueBill(t, 30)

		bills.On("FindPastDue", mock.Anything, sweepNow, 2).Return([]billing.Bill{first, second}, nil).Once()
		bills.On("FindPastDue", mock.Anything, sweepNow, 2).Return([]billing.Bill{third}, nil).Once()
		payments.On("FindByBill", mock.Anything, mock.Anything).Return([]billing.Payment{}, nil)
		bills.On("UpdateStatus", mock.Anything, mock.Anything).Return(nil)

		res, err := newSweeper(bills, payments).WithBatchSize(2).Sweep(ctx)
		require.NoError(t, err)
		assert.Equal(t, 3, res.Examined)
		assert.Equal(t, 3, res.Overdue)
		bills.AssertNumberOfCalls(t, "FindPastDue", 2)
	})

	t.Run("bill deleted mid-sweep is skipped", func(t *testing.T) {
		bills := new(MockBillRepository)
		payments := new(MockPaymentRepository)
		gone := pastDueBill(t, 50)

		bills.On("FindPastDue", mock.Anything, sweepNow, DefaultSweepBatchSize).Return([]billing.Bill{gone}, nil).Once()
		payments.On("FindByBill", mock.Anything, gone.ID).Return([]billing.Payment{}, nil)
		bills.On("UpdateStatus", mock.Anything, mock.Anything).Return(shared.NewNotFoundError("Bill not found"))

		res, err := newSweeper(bills, payments).Sweep(ctx)
		require.NoError(t, err)
		assert.Equal(t, SweepResult{Examined: 1}, res)
	})

	t.Run("repository failure stops the sweep", func(t *testing.T) {
		bills := new(MockBillRepository)
		payments := new(MockPaymentRepository)
		bills.On("FindPastDue", mock.Anything, sweepNow, DefaultSweepBatchSize).Return(nil, errors.New("connection reset"))

		err := newSweeper(bills, payments).Run(ctx)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "past-due bills")
	})

	t.Run("cancelled context", func(t *testing.T) {
		cctx, cancel := context.WithCancel(ctx)
		cancel()

		_, err := newSweeper(new(MockBillRepository), new(MockPaymentRepository)).Sweep(cctx)
		assert.ErrorIs(t, err, context.Canceled)
	})
}
