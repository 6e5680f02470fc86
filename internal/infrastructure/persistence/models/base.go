package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/proptax/backend/internal/domain/shared"
)

// BaseModel holds the id and timestamp columns shared by ledger tables.
type BaseModel struct {
	ID        uuid.UUID `gorm:"type:uuid;primary_key"`
	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

func (m *BaseModel) ToDomain() shared.BaseEntity {
	return shared.BaseEntity{ID: m.ID, CreatedAt: m.CreatedAt, UpdatedAt: m.UpdatedAt}
}

func (m *BaseModel) FromDomainBaseEntity(e shared.BaseEntity) {
	m.ID = e.ID
	m.CreatedAt = e.CreatedAt
	m.UpdatedAt = e.UpdatedAt
}

// AggregateModel adds the properties.version column.
type AggregateModel struct {
	BaseModel
	Version int `gorm:"not null;default:1"`
}

func (m *AggregateModel) FromDomainAggregateRoot(a shared.BaseAggregateRoot) {
	m.FromDomainBaseEntity(a.BaseEntity)
	m.Version = a.Version
}

func (m *AggregateModel) ToDomainAggregateRoot() shared.BaseAggregateRoot {
	return shared.BaseAggregateRoot{BaseEntity: m.ToDomain(), Version: m.Version}
}

// toRef rebuilds an EntityRef from its kind and id columns.
func toRef(kind string, id uuid.UUID) shared.EntityRef {
	return shared.EntityRef{Kind: shared.EntityKind(kind), ID: id}
}

// Ledger returns one zero value per ledger table, in dependency order,
// for AutoMigrate in tests and local sqlite runs.
func Ledger() []any {
	return []any{
		&PropertyModel{},
		&FeeScheduleModel{},
		&BillModel{},
		&PaymentModel{},
		&BillAdjustmentModel{},
		&AuditLogModel{},
	}
}
