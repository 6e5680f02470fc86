package models

import (
	"github.com/google/uuid"
	"github.com/proptax/backend/internal/domain/property"
	"github.com/shopspring/decimal"
)

// PropertyModel is the persistence model for the Property aggregate.
type PropertyModel struct {
	AggregateModel
	OwnerName        string          `gorm:"type:varchar(200);not null"`
	OwnerPhone       string          `gorm:"type:varchar(50)"`
	OwnerAddress     string          `gorm:"type:varchar(500)"`
	HouseNumber      string          `gorm:"type:varchar(50);index"`
	Structure        string          `gorm:"type:varchar(100);not null"`
	Use              string          `gorm:"column:use;type:varchar(100);not null"`
	RoomCount        int             `gorm:"not null"`
	ZoneID           *uuid.UUID      `gorm:"type:uuid;index"`
	OldBill          decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0"`
	Arrears          decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0"`
	CurrentBill      decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0"`
	PreviousPayments decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0"`
	AmountPayable    decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0"`
}

// TableName returns the table name for GORM
func (PropertyModel) TableName() string {
	return "properties"
}

// ToDomain converts the persistence model to a domain Property entity.
func (m *PropertyModel) ToDomain() *property.Property {
	return &property.Property{
		BaseAggregateRoot: m.ToDomainAggregateRoot(),
		Owner: property.Owner{
			Name:    m.OwnerName,
			Phone:   m.OwnerPhone,
			Address: m.OwnerAddress,
		},
		HouseNumber:      m.HouseNumber,
		Structure:        m.Structure,
		Use:              m.Use,
		RoomCount:        m.RoomCount,
		ZoneID:           m.ZoneID,
		OldBill:          m.OldBill,
		Arrears:          m.Arrears,
		CurrentBill:      m.CurrentBill,
		PreviousPayments: m.PreviousPayments,
		AmountPayable:    m.AmountPayable,
	}
}

// FromDomain populates the persistence model from a domain Property entity.
func (m *PropertyModel) FromDomain(p *property.Property) {
	m.FromDomainAggregateRoot(p.BaseAggregateRoot)
	m.OwnerName = p.Owner.Name
	m.OwnerPhone = p.Owner.Phone
	m.OwnerAddress = p.Owner.Address
	m.HouseNumber = p.HouseNumber
	m.Structure = p.Structure
	m.Use = p.Use
	m.RoomCount = p.RoomCount
	m.ZoneID = p.ZoneID
	m.OldBill = p.OldBill
	m.Arrears = p.Arrears
	m.CurrentBill = p.CurrentBill
	m.PreviousPayments = p.PreviousPayments
	m.AmountPayable = p.AmountPayable
}

// PropertyModelFromDomain creates a new persistence model from a domain Property entity.
func PropertyModelFromDomain(p *property.Property) *PropertyModel {
	m := &PropertyModel{}
	m.FromDomain(p)
	return m
}

// FeeScheduleModel is one row of the fee schedule. The core only reads it.
type FeeScheduleModel struct {
	BaseModel
	Structure  string          `gorm:"type:varchar(100);not null;index:idx_fee_schedules_lookup,priority:1"`
	Use        string          `gorm:"column:use;type:varchar(100);not null;index:idx_fee_schedules_lookup,priority:2"`
	FeePerRoom decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	Active     bool            `gorm:"not null;default:true"`
}

// TableName returns the table name for GORM
func (FeeScheduleModel) TableName() string {
	return "fee_schedules"
}

// ToDomain converts the persistence model to a domain FeeScheduleEntry.
func (m *FeeScheduleModel) ToDomain() property.FeeScheduleEntry {
	return property.FeeScheduleEntry{
		BaseEntity: m.BaseModel.ToDomain(),
		Structure:  m.Structure,
		Use:        m.Use,
		FeePerRoom: m.FeePerRoom,
		Active:     m.Active,
	}
}

// FromDomain populates the persistence model from a domain FeeScheduleEntry.
func (m *FeeScheduleModel) FromDomain(e property.FeeScheduleEntry) {
	m.FromDomainBaseEntity(e.BaseEntity)
	m.Structure = e.Structure
	m.Use = e.Use
	m.FeePerRoom = e.FeePerRoom
	m.Active = e.Active
}
