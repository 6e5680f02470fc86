package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/proptax/backend/internal/domain/billing"
	"github.com/shopspring/decimal"
)

// BillModel is the persistence model for a Bill. The owner is stored as a
// (type, reference_id) pair so bills can point at properties or businesses.
type BillModel struct {
	BaseModel
	Type          string          `gorm:"column:type;type:varchar(20);not null;index:idx_bills_ref_year,priority:1"`
	ReferenceID   uuid.UUID       `gorm:"type:uuid;not null;index:idx_bills_ref_year,priority:2"`
	Year          int             `gorm:"not null;index:idx_bills_ref_year,priority:3"`
	BillNumber    string          `gorm:"type:varchar(50);not null;uniqueIndex"`
	AmountPayable decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	Status        string          `gorm:"type:varchar(20);not null;default:'Pending'"`
	DueDate       *time.Time
	GeneratedAt   time.Time `gorm:"not null"`
	ServedStatus  string    `gorm:"type:varchar(20);not null;default:'Not Served'"`
	ServedBy      *string   `gorm:"type:varchar(100)"`
	ServedAt      *time.Time
	DeliveryNotes string `gorm:"type:text"`
}

// TableName returns the table name for GORM
func (BillModel) TableName() string {
	return "bills"
}

// ToDomain converts the persistence model to a domain Bill entity.
func (m *BillModel) ToDomain() *billing.Bill {
	return &billing.Bill{
		BaseEntity:    m.BaseModel.ToDomain(),
		Ref:           toRef(m.Type, m.ReferenceID),
		Year:          m.Year,
		BillNumber:    m.BillNumber,
		AmountPayable: m.AmountPayable,
		Status:        billing.BillStatus(m.Status),
		DueDate:       m.DueDate,
		GeneratedAt:   m.GeneratedAt,
		ServedStatus:  billing.DeliveryStatus(m.ServedStatus),
		ServedBy:      m.ServedBy,
		ServedAt:      m.ServedAt,
		DeliveryNotes: m.DeliveryNotes,
	}
}

// FromDomain populates the persistence model from a domain Bill entity.
func (m *BillModel) FromDomain(b *billing.Bill) {
	m.FromDomainBaseEntity(b.BaseEntity)
	m.Type = b.Ref.Kind.String()
	m.ReferenceID = b.Ref.ID
	m.Year = b.Year
	m.BillNumber = b.BillNumber
	m.AmountPayable = b.AmountPayable
	m.Status = string(b.Status)
	m.DueDate = b.DueDate
	m.GeneratedAt = b.GeneratedAt
	m.ServedStatus = b.ServedStatus.String()
	m.ServedBy = b.ServedBy
	m.ServedAt = b.ServedAt
	m.DeliveryNotes = b.DeliveryNotes
}

// BillModelFromDomain creates a new persistence model from a domain Bill entity.
func BillModelFromDomain(b *billing.Bill) *BillModel {
	m := &BillModel{}
	m.FromDomain(b)
	return m
}

// PaymentModel is the persistence model for a Payment.
type PaymentModel struct {
	BaseModel
	BillID    uuid.UUID       `gorm:"type:uuid;not null;index"`
	Amount    decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	PaidAt    time.Time       `gorm:"not null"`
	Method    string          `gorm:"type:varchar(50)"`
	Reference string          `gorm:"type:varchar(100)"`
	Status    string          `gorm:"type:varchar(20);not null;index"`
}

// TableName returns the table name for GORM
func (PaymentModel) TableName() string {
	return "payments"
}

// ToDomain converts the persistence model to a domain Payment entity.
func (m *PaymentModel) ToDomain() *billing.Payment {
	return &billing.Payment{
		BaseEntity: m.BaseModel.ToDomain(),
		BillID:     m.BillID,
		Amount:     m.Amount,
		PaidAt:     m.PaidAt,
		Method:     m.Method,
		Reference:  m.Reference,
		Status:     billing.PaymentStatus(m.Status),
	}
}

// FromDomain populates the persistence model from a domain Payment entity.
func (m *PaymentModel) FromDomain(p *billing.Payment) {
	m.FromDomainBaseEntity(p.BaseEntity)
	m.BillID = p.BillID
	m.Amount = p.Amount
	m.PaidAt = p.PaidAt
	m.Method = p.Method
	m.Reference = p.Reference
	m.Status = string(p.Status)
}

// BillAdjustmentModel is the persistence model for a BillAdjustment.
type BillAdjustmentModel struct {
	BaseModel
	TargetType     string          `gorm:"type:varchar(20);not null;index:idx_bill_adjustments_target,priority:1"`
	TargetID       uuid.UUID       `gorm:"type:uuid;not null;index:idx_bill_adjustments_target,priority:2"`
	AdjustmentType string          `gorm:"type:varchar(20);not null"`
	Amount         decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	Reason         string          `gorm:"type:text"`
	CreatedBy      string          `gorm:"type:varchar(100)"`
}

// TableName returns the table name for GORM
func (BillAdjustmentModel) TableName() string {
	return "bill_adjustments"
}

// ToDomain converts the persistence model to a domain BillAdjustment entity.
func (m *BillAdjustmentModel) ToDomain() *billing.BillAdjustment {
	return &billing.BillAdjustment{
		BaseEntity: m.BaseModel.ToDomain(),
		Target:     toRef(m.TargetType, m.TargetID),
		Type:       billing.AdjustmentType(m.AdjustmentType),
		Amount:     m.Amount,
		Reason:     m.Reason,
		CreatedBy:  m.CreatedBy,
	}
}

// FromDomain populates the persistence model from a domain BillAdjustment entity.
func (m *BillAdjustmentModel) FromDomain(a *billing.BillAdjustment) {
	m.FromDomainBaseEntity(a.BaseEntity)
	m.TargetType = a.Target.Kind.String()
	m.TargetID = a.Target.ID
	m.AdjustmentType = string(a.Type)
	m.Amount = a.Amount
	m.Reason = a.Reason
	m.CreatedBy = a.CreatedBy
}
