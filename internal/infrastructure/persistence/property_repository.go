package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/proptax/backend/internal/domain/property"
	"github.com/proptax/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormPropertyRepository implements property.PropertyRepository using GORM
type GormPropertyRepository struct {
	db *gorm.DB
}

// NewGormPropertyRepository creates a new GormPropertyRepository
func NewGormPropertyRepository(db *gorm.DB) *GormPropertyRepository {
	return &GormPropertyRepository{db: db}
}

// FindByID finds a property by its ID
func (r *GormPropertyRepository) FindByID(ctx context.Context, id uuid.UUID) (*property.Property, error) {
	return r.find(r.db.WithContext(ctx), id)
}

// FindByIDForUpdate finds a property and holds a row lock on it until the transaction ends
func (r *GormPropertyRepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*property.Property, error) {
	return r.find(r.db.WithContext(ctx).Clauses(clause.Locking{Strength: "UPDATE"}), id)
}

func (r *GormPropertyRepository) find(db *gorm.DB, id uuid.UUID) (*property.Property, error) {
	var model models.PropertyModel
	if err := db.Where("id = ?", id).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// Save creates or updates a property
func (r *GormPropertyRepository) Save(ctx context.Context, p *property.Property) error {
	return r.db.WithContext(ctx).Save(models.PropertyModelFromDomain(p)).Error
}

// Delete removes the property row
func (r *GormPropertyRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.PropertyModel{}).Error
}

// GormFeeScheduleRepository implements property.FeeScheduleRepository using GORM
type GormFeeScheduleRepository struct {
	db *gorm.DB
}

// NewGormFeeScheduleRepository creates a new GormFeeScheduleRepository
func NewGormFeeScheduleRepository(db *gorm.DB) *GormFeeScheduleRepository {
	return &GormFeeScheduleRepository{db: db}
}

// FindActive returns every active entry for (structure, use)
func (r *GormFeeScheduleRepository) FindActive(ctx context.Context, structure, use string) ([]property.FeeScheduleEntry, error) {
	var rows []models.FeeScheduleModel
	if err := r.db.WithContext(ctx).
		Where("structure = ? AND use = ? AND active = ?", structure, use, true).
		Order("created_at").
		Find(&rows).Error; err != nil {
		return nil, err
	}

	entries := make([]property.FeeScheduleEntry, len(rows))
	for i := range rows {
		entries[i] = rows[i].ToDomain()
	}
	return entries, nil
}

// Ensure interfaces are implemented
var (
	_ property.PropertyRepository    = (*GormPropertyRepository)(nil)
	_ property.FeeScheduleRepository = (*GormFeeScheduleRepository)(nil)
)
