package billing

import (
	"strings"

	"github.com/proptax/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// AdjustmentType classifies a manual bill adjustment
type AdjustmentType string

const (
	AdjustmentWaiver     AdjustmentType = "Waiver"
	AdjustmentPenalty    AdjustmentType = "Penalty"
	AdjustmentCorrection AdjustmentType = "Correction"
)

// IsValid checks if the adjustment type is valid
func (t AdjustmentType) IsValid() bool {
	switch t {
	case AdjustmentWaiver, AdjustmentPenalty, AdjustmentCorrection:
		return true
	}
	return false
}

// BillAdjustment is a manual correction recorded against an entity
type BillAdjustment struct {
	shared.BaseEntity
	Target    shared.EntityRef
	Type      AdjustmentType
	Amount    decimal.Decimal
	Reason    string
	CreatedBy string
}

// NewBillAdjustment creates an adjustment for target
func NewBillAdjustment(target shared.EntityRef, adjType AdjustmentType, amount decimal.Decimal, reason, createdBy string) (*BillAdjustment, error) {
	if target.IsZero() {
		return nil, shared.NewValidationError("Adjustment must reference a property or business")
	}
	if !adjType.IsValid() {
		return nil, shared.NewValidationError("Invalid adjustment type")
	}
	if strings.TrimSpace(reason) == "" {
		return nil, shared.NewValidationError("Adjustment reason cannot be empty")
	}
	return &BillAdjustment{
		BaseEntity: shared.NewBaseEntity(),
		Target:     target,
		Type:       adjType,
		Amount:     amount,
		Reason:     reason,
		CreatedBy:  createdBy,
	}, nil
}
