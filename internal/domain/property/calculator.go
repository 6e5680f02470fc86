package property

import (
	"fmt"

	"github.com/proptax/backend/internal/domain/shared"
	"github.com/proptax/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
)

// BillInput carries the figures the calculator works from
type BillInput struct {
	FeePerRoom       decimal.Decimal
	RoomCount        int
	OldBill          decimal.Decimal
	Arrears          decimal.Decimal
	PreviousPayments decimal.Decimal
}

// BillAmount is the result of a bill computation, rounded to two decimals
type BillAmount struct {
	CurrentBill   decimal.Decimal `json:"current_bill"`
	AmountPayable decimal.Decimal `json:"amount_payable"`
}

// BillAmountCalculator computes a property's current bill and amount payable.
// It is a pure function of its input: no I/O, no clock.
type BillAmountCalculator struct{}

// Compute returns
//
//	currentBill   = feePerRoom * roomCount
//	amountPayable = oldBill + arrears + currentBill - previousPayments
//
// Intermediate values keep full precision. Only the two results are rounded.
// A negative amountPayable (a credit) is returned as is.
func (BillAmountCalculator) Compute(in BillInput) (BillAmount, error) {
	if in.RoomCount < 1 {
		return BillAmount{}, shared.NewValidationError("Room count must be at least 1")
	}
	for _, f := range []struct {
		name  string
		value decimal.Decimal
	}{
		{"Fee per room", in.FeePerRoom},
		{"Old bill", in.OldBill},
		{"Arrears", in.Arrears},
		{"Previous payments", in.PreviousPayments},
	} {
		if f.value.IsNegative() {
			return BillAmount{}, shared.NewValidationError(fmt.Sprintf("%s cannot be negative", f.name))
		}
	}

	current := in.FeePerRoom.Mul(decimal.NewFromInt(int64(in.RoomCount)))
	payable := in.OldBill.Add(in.Arrears).Add(current).Sub(in.PreviousPayments)

	return BillAmount{
		CurrentBill:   valueobject.RoundMoney(current),
		AmountPayable: valueobject.RoundMoney(payable),
	}, nil
}
