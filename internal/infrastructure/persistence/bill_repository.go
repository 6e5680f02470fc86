package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/proptax/backend/internal/domain/billing"
	"github.com/proptax/backend/internal/domain/shared"
	"github.com/proptax/backend/internal/infrastructure/persistence/models"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormBillRepository implements billing.BillRepository using GORM
type GormBillRepository struct {
	db *gorm.DB
}

// NewGormBillRepository creates a new GormBillRepository
func NewGormBillRepository(db *gorm.DB) *GormBillRepository {
	return &GormBillRepository{db: db}
}

func byRef(db *gorm.DB, ref shared.EntityRef) *gorm.DB {
	return db.Where("type = ? AND reference_id = ?", ref.Kind.String(), ref.ID)
}

// FindByID finds a bill by its ID
func (r *GormBillRepository) FindByID(ctx context.Context, id uuid.UUID) (*billing.Bill, error) {
	var model models.BillModel
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByRef returns ref's bills, newest year first
func (r *GormBillRepository) FindByRef(ctx context.Context, ref shared.EntityRef) ([]billing.Bill, error) {
	var rows []models.BillModel
	if err := byRef(r.db.WithContext(ctx), ref).
		Order("year DESC, generated_at DESC").
		Find(&rows).Error; err != nil {
		return nil, err
	}

	bills := make([]billing.Bill, len(rows))
	for i := range rows {
		bills[i] = *rows[i].ToDomain()
	}
	return bills, nil
}

// ExistsForYear reports whether ref already has a bill for year
func (r *GormBillRepository) ExistsForYear(ctx context.Context, ref shared.EntityRef, year int) (bool, error) {
	var count int64
	if err := byRef(r.db.WithContext(ctx).Model(&models.BillModel{}), ref).
		Where("year = ?", year).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// CountByRef counts the bills issued against ref
func (r *GormBillRepository) CountByRef(ctx context.Context, ref shared.EntityRef) (int64, error) {
	var count int64
	err := byRef(r.db.WithContext(ctx).Model(&models.BillModel{}), ref).Count(&count).Error
	return count, err
}

// LockIDsByRef returns the IDs of ref's bills with their rows locked for update
func (r *GormBillRepository) LockIDsByRef(ctx context.Context, ref shared.EntityRef) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	if err := byRef(r.db.WithContext(ctx).Model(&models.BillModel{}), ref).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Order("id").
		Pluck("id", &ids).Error; err != nil {
		return nil, err
	}
	return ids, nil
}

// Save creates or updates a bill
func (r *GormBillRepository) Save(ctx context.Context, bill *billing.Bill) error {
	return r.db.WithContext(ctx).Save(models.BillModelFromDomain(bill)).Error
}

// UpdateDelivery writes only the delivery columns
func (r *GormBillRepository) UpdateDelivery(ctx context.Context, bill *billing.Bill) error {
	result := r.db.WithContext(ctx).Model(&models.BillModel{}).
		Where("id = ?", bill.ID).
		Updates(map[string]any{
			"served_status":  bill.ServedStatus.String(),
			"served_by":      bill.ServedBy,
			"served_at":      bill.ServedAt,
			"delivery_notes": bill.DeliveryNotes,
			"updated_at":     bill.UpdatedAt,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.NewNotFoundError("Bill not found")
	}
	return nil
}

// FindPastDue returns unsettled bills that fell due before asOf
func (r *GormBillRepository) FindPastDue(ctx context.Context, asOf time.Time, limit int) ([]billing.Bill, error) {
	var rows []models.BillModel
	if err := r.db.WithContext(ctx).
		Where("status IN ?", []string{billing.BillStatusPending.String(), billing.BillStatusPartiallyPaid.String()}).
		Where("due_date IS NOT NULL AND due_date < ?", asOf).
		Order("due_date, id").
		Limit(limit).
		Find(&rows).Error; err != nil {
		return nil, err
	}

	bills := make([]billing.Bill, len(rows))
	for i := range rows {
		bills[i] = *rows[i].ToDomain()
	}
	return bills, nil
}

// UpdateStatus writes only the status column
func (r *GormBillRepository) UpdateStatus(ctx context.Context, bill *billing.Bill) error {
	result := r.db.WithContext(ctx).Model(&models.BillModel{}).
		Where("id = ?", bill.ID).
		Updates(map[string]any{
			"status":     bill.Status.String(),
			"updated_at": bill.UpdatedAt,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.NewNotFoundError("Bill not found")
	}
	return nil
}

// DeleteByRef removes ref's bills
func (r *GormBillRepository) DeleteByRef(ctx context.Context, ref shared.EntityRef) (int64, error) {
	result := byRef(r.db.WithContext(ctx), ref).Delete(&models.BillModel{})
	return result.RowsAffected, result.Error
}

// GormPaymentRepository implements billing.PaymentRepository using GORM
type GormPaymentRepository struct {
	db *gorm.DB
}

// NewGormPaymentRepository creates a new GormPaymentRepository
func NewGormPaymentRepository(db *gorm.DB) *GormPaymentRepository {
	return &GormPaymentRepository{db: db}
}

// billsOf selects the ids of ref's bills for use in an IN subquery
func (r *GormPaymentRepository) billsOf(ctx context.Context, ref shared.EntityRef) *gorm.DB {
	return byRef(r.db.WithContext(ctx).Model(&models.BillModel{}), ref).Select("id")
}

// FindByBill returns the payments recorded against billID
func (r *GormPaymentRepository) FindByBill(ctx context.Context, billID uuid.UUID) ([]billing.Payment, error) {
	var rows []models.PaymentModel
	if err := r.db.WithContext(ctx).
		Where("bill_id = ?", billID).
		Order("paid_at").
		Find(&rows).Error; err != nil {
		return nil, err
	}

	payments := make([]billing.Payment, len(rows))
	for i := range rows {
		payments[i] = *rows[i].ToDomain()
	}
	return payments, nil
}

// CountByRef counts payments of any status made against ref's bills
func (r *GormPaymentRepository) CountByRef(ctx context.Context, ref shared.EntityRef) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.PaymentModel{}).
		Where("bill_id IN (?)", r.billsOf(ctx, ref)).
		Count(&count).Error
	return count, err
}

// SumSuccessfulByRef totals the successful payments made against ref's bills
func (r *GormPaymentRepository) SumSuccessfulByRef(ctx context.Context, ref shared.EntityRef) (decimal.Decimal, error) {
	var result struct {
		Total decimal.Decimal
	}
	if err := r.db.WithContext(ctx).Model(&models.PaymentModel{}).
		Select("COALESCE(SUM(amount), 0) as total").
		Where("bill_id IN (?) AND status = ?", r.billsOf(ctx, ref), string(billing.PaymentStatusSuccessful)).
		Scan(&result).Error; err != nil {
		return decimal.Zero, err
	}
	return result.Total, nil
}

// Save creates or updates a payment
func (r *GormPaymentRepository) Save(ctx context.Context, payment *billing.Payment) error {
	m := &models.PaymentModel{}
	m.FromDomain(payment)
	return r.db.WithContext(ctx).Save(m).Error
}

// DeleteByBillIDs removes the payments of the given bills
func (r *GormPaymentRepository) DeleteByBillIDs(ctx context.Context, billIDs []uuid.UUID) (int64, error) {
	if len(billIDs) == 0 {
		return 0, nil
	}
	result := r.db.WithContext(ctx).Where("bill_id IN ?", billIDs).Delete(&models.PaymentModel{})
	return result.RowsAffected, result.Error
}

// GormAdjustmentRepository implements billing.AdjustmentRepository using GORM
type GormAdjustmentRepository struct {
	db *gorm.DB
}

// NewGormAdjustmentRepository creates a new GormAdjustmentRepository
func NewGormAdjustmentRepository(db *gorm.DB) *GormAdjustmentRepository {
	return &GormAdjustmentRepository{db: db}
}

func byTarget(db *gorm.DB, target shared.EntityRef) *gorm.DB {
	return db.Where("target_type = ? AND target_id = ?", target.Kind.String(), target.ID)
}

// CountByTarget counts adjustments recorded against target
func (r *GormAdjustmentRepository) CountByTarget(ctx context.Context, target shared.EntityRef) (int64, error) {
	var count int64
	err := byTarget(r.db.WithContext(ctx).Model(&models.BillAdjustmentModel{}), target).Count(&count).Error
	return count, err
}

// Save creates a bill adjustment
func (r *GormAdjustmentRepository) Save(ctx context.Context, adjustment *billing.BillAdjustment) error {
	m := &models.BillAdjustmentModel{}
	m.FromDomain(adjustment)
	return r.db.WithContext(ctx).Create(m).Error
}

// DeleteByTarget removes target's adjustments
func (r *GormAdjustmentRepository) DeleteByTarget(ctx context.Context, target shared.EntityRef) (int64, error) {
	result := byTarget(r.db.WithContext(ctx), target).Delete(&models.BillAdjustmentModel{})
	return result.RowsAffected, result.Error
}

// Ensure interfaces are implemented
var (
	_ billing.BillRepository       = (*GormBillRepository)(nil)
	_ billing.PaymentRepository    = (*GormPaymentRepository)(nil)
	_ billing.AdjustmentRepository = (*GormAdjustmentRepository)(nil)
)
