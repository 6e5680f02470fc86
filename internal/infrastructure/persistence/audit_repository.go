package persistence

import (
	"context"
	"fmt"

	"github.com/proptax/backend/internal/domain/audit"
	"github.com/proptax/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormAuditRepository implements audit.Repository using GORM.
// It only inserts and reads; audit rows are never updated or deleted.
type GormAuditRepository struct {
	db *gorm.DB
}

// NewGormAuditRepository creates a new GormAuditRepository
func NewGormAuditRepository(db *gorm.DB) *GormAuditRepository {
	return &GormAuditRepository{db: db}
}

// Insert appends an entry
func (r *GormAuditRepository) Insert(ctx context.Context, entry *audit.Entry) error {
	return r.db.WithContext(ctx).Create(models.AuditLogModelFromDomain(entry)).Error
}

// List returns entries matching the filter
func (r *GormAuditRepository) List(ctx context.Context, filter audit.ListFilter) ([]audit.Entry, error) {
	query := r.db.WithContext(ctx).Model(&models.AuditLogModel{})

	if filter.Action != "" {
		query = query.Where("action = ?", string(filter.Action))
	}
	if filter.Target != nil {
		query = query.Where("target_type = ? AND target_id = ?", filter.Target.Kind.String(), filter.Target.ID)
	}
	if filter.ActorID != "" {
		query = query.Where("actor_id = ?", filter.ActorID)
	}
	if filter.StartAt != nil {
		query = query.Where("created_at >= ?", *filter.StartAt)
	}
	if filter.EndAt != nil {
		query = query.Where("created_at <= ?", *filter.EndAt)
	}

	sortField := ValidateSortField(filter.OrderBy, AuditLogSortFields, "created_at")
	query = query.Order(fmt.Sprintf("%s %s", sortField, ValidateSortOrder(filter.OrderDir)))
	if filter.PageSize > 0 {
		query = query.Offset(filter.Offset()).Limit(filter.PageSize)
	}

	var rows []models.AuditLogModel
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}

	entries := make([]audit.Entry, len(rows))
	for i := range rows {
		entries[i] = rows[i].ToDomain()
	}
	return entries, nil
}

var _ audit.Repository = (*GormAuditRepository)(nil)
