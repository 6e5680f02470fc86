package property

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/proptax/backend/internal/domain/shared"
	"github.com/proptax/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
)

// Owner holds the contact attributes of a property owner
type Owner struct {
	Name    string `json:"name"`
	Phone   string `json:"phone"`
	Address string `json:"address"`
}

// Property is the aggregate root of the fiscal ledger.
// AmountPayable is derived and kept in line with the four monetary inputs by Recalculate.
type Property struct {
	shared.BaseAggregateRoot
	Owner            Owner
	HouseNumber      string
	Structure        string
	Use              string
	RoomCount        int
	ZoneID           *uuid.UUID
	OldBill          decimal.Decimal
	Arrears          decimal.Decimal
	CurrentBill      decimal.Decimal
	PreviousPayments decimal.Decimal
	AmountPayable    decimal.Decimal
}

// Attributes are the mutable inputs of a property upsert
type Attributes struct {
	Owner            Owner
	HouseNumber      string
	Structure        string
	Use              string
	RoomCount        int
	ZoneID           *uuid.UUID
	OldBill          decimal.Decimal
	Arrears          decimal.Decimal
	PreviousPayments decimal.Decimal
}

// Validate checks the attributes that do not depend on the fee schedule
func (a Attributes) Validate() error {
	if strings.TrimSpace(a.Owner.Name) == "" {
		return shared.NewValidationError("Owner name cannot be empty")
	}
	if strings.TrimSpace(a.Structure) == "" {
		return shared.NewValidationError("Structure cannot be empty")
	}
	if strings.TrimSpace(a.Use) == "" {
		return shared.NewValidationError("Use cannot be empty")
	}
	if a.RoomCount < 1 {
		return shared.NewValidationError("Room count must be at least 1")
	}
	return nil
}

// NewProperty creates a property and derives its bill figures from feePerRoom
func NewProperty(attrs Attributes, feePerRoom decimal.Decimal) (*Property, error) {
	if err := attrs.Validate(); err != nil {
		return nil, err
	}

	p := &Property{BaseAggregateRoot: shared.NewBaseAggregateRoot()}
	p.assign(attrs)
	if err := p.Recalculate(feePerRoom); err != nil {
		return nil, err
	}
	return p, nil
}

// Update replaces the mutable attributes and re-derives the bill figures
func (p *Property) Update(attrs Attributes, feePerRoom decimal.Decimal) error {
	if err := attrs.Validate(); err != nil {
		return err
	}

	p.assign(attrs)
	if err := p.Recalculate(feePerRoom); err != nil {
		return err
	}
	p.Touch()
	p.IncrementVersion()
	return nil
}

func (p *Property) assign(attrs Attributes) {
	p.Owner = attrs.Owner
	p.HouseNumber = attrs.HouseNumber
	p.Structure = attrs.Structure
	p.Use = attrs.Use
	p.RoomCount = attrs.RoomCount
	p.ZoneID = attrs.ZoneID
	p.OldBill = attrs.OldBill
	p.Arrears = attrs.Arrears
	p.PreviousPayments = attrs.PreviousPayments
}

// Recalculate derives CurrentBill and AmountPayable from the fee per room.
// Must be called before every write of the row.
func (p *Property) Recalculate(feePerRoom decimal.Decimal) error {
	amount, err := BillAmountCalculator{}.Compute(BillInput{
		FeePerRoom:       feePerRoom,
		RoomCount:        p.RoomCount,
		OldBill:          p.OldBill,
		Arrears:          p.Arrears,
		PreviousPayments: p.PreviousPayments,
	})
	if err != nil {
		return err
	}
	p.CurrentBill = amount.CurrentBill
	p.AmountPayable = amount.AmountPayable
	return nil
}

// IsConsistent reports whether AmountPayable matches the monetary inputs
func (p *Property) IsConsistent() bool {
	expected := valueobject.RoundMoney(p.OldBill.Add(p.Arrears).Add(p.CurrentBill).Sub(p.PreviousPayments))
	return expected.Equal(p.AmountPayable)
}

// Ref returns the entity reference bills and adjustments use to point at this property
func (p *Property) Ref() shared.EntityRef {
	return shared.PropertyRef(p.ID)
}

// Snapshot is the serializable view of a property used in audit entries and responses
type Snapshot struct {
	ID               uuid.UUID       `json:"id"`
	Owner            Owner           `json:"owner"`
	HouseNumber      string          `json:"house_number,omitempty"`
	Structure        string          `json:"structure"`
	Use              string          `json:"use"`
	RoomCount        int             `json:"room_count"`
	ZoneID           *uuid.UUID      `json:"zone_id,omitempty"`
	OldBill          decimal.Decimal `json:"old_bill"`
	Arrears          decimal.Decimal `json:"arrears"`
	CurrentBill      decimal.Decimal `json:"current_bill"`
	PreviousPayments decimal.Decimal `json:"previous_payments"`
	AmountPayable    decimal.Decimal `json:"amount_payable"`
	Version          int             `json:"version"`
	CreatedAt        time.Time       `json:"created_at"`
	UpdatedAt        time.Time       `json:"updated_at"`
}

// Snapshot returns the current state of the property
func (p *Property) Snapshot() Snapshot {
	return Snapshot{
		ID:               p.ID,
		Owner:            p.Owner,
		HouseNumber:      p.HouseNumber,
		Structure:        p.Structure,
		Use:              p.Use,
		RoomCount:        p.RoomCount,
		ZoneID:           p.ZoneID,
		OldBill:          p.OldBill,
		Arrears:          p.Arrears,
		CurrentBill:      p.CurrentBill,
		PreviousPayments: p.PreviousPayments,
		AmountPayable:    p.AmountPayable,
		Version:          p.Version,
		CreatedAt:        p.CreatedAt,
		UpdatedAt:        p.UpdatedAt,
	}
}
