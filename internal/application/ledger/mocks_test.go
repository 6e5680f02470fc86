package ledger

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/proptax/backend/internal/domain/audit"
	"github.com/proptax/backend/internal/domain/billing"
	"github.com/proptax/backend/internal/domain/property"
	"github.com/proptax/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
)

// MockPropertyRepository is a mock implementation of property.PropertyRepository
type MockPropertyRepository struct {
	mock.Mock
}

func (m *MockPropertyRepository) FindByID(ctx context.Context, id uuid.UUID) (*property.Property, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*property.Property), args.Error(1)
}

func (m *MockPropertyRepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*property.Property, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*property.Property), args.Error(1)
}

func (m *MockPropertyRepository) Save(ctx context.Context, p *property.Property) error {
	args := m.Called(ctx, p)
	return args.Error(0)
}

func (m *MockPropertyRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// MockFeeScheduleRepository is a mock implementation of property.FeeScheduleRepository
type MockFeeScheduleRepository struct {
	mock.Mock
}

func (m *MockFeeScheduleRepository) FindActive(ctx context.Context, structure, use string) ([]property.FeeScheduleEntry, error) {
	args := m.Called(ctx, structure, use)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]property.FeeScheduleEntry), args.Error(1)
}

// MockBillRepository is a mock implementation of billing.BillRepository
type MockBillRepository struct {
	mock.Mock
}

func (m *MockBillRepository) FindByID(ctx context.Context, id uuid.UUID) (*billing.Bill, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*billing.Bill), args.Error(1)
}

func (m *MockBillRepository) FindByRef(ctx context.Context, ref shared.EntityRef) ([]billing.Bill, error) {
	args := m.Called(ctx, ref)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]billing.Bill), args.Error(1)
}

func (m *MockBillRepository) ExistsForYear(ctx context.Context, ref shared.EntityRef, year int) (bool, error) {
	args := m.Called(ctx, ref, year)
	return args.Bool(0), args.Error(1)
}

func (m *MockBillRepository) CountByRef(ctx context.Context, ref shared.EntityRef) (int64, error) {
	args := m.Called(ctx, ref)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockBillRepository) LockIDsByRef(ctx context.Context, ref shared.EntityRef) ([]uuid.UUID, error) {
	args := m.Called(ctx, ref)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]uuid.UUID), args.Error(1)
}

func (m *MockBillRepository) Save(ctx context.Context, bill *billing.Bill) error {
	args := m.Called(ctx, bill)
	return args.Error(0)
}

func (m *MockBillRepository) UpdateDelivery(ctx context.Context, bill *billing.Bill) error {
	args := m.Called(ctx, bill)
	return args.Error(0)
}

func (m *MockBillRepository) FindPastDue(ctx context.Context, asOf time.Time, limit int) ([]billing.Bill, error) {
	args := m.Called(ctx, asOf, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]billing.Bill), args.Error(1)
}

func (m *MockBillRepository) UpdateStatus(ctx context.Context, bill *billing.Bill) error {
	args := m.Called(ctx, bill)
	return args.Error(0)
}

func (m *MockBillRepository) DeleteByRef(ctx context.Context, ref shared.EntityRef) (int64, error) {
	args := m.Called(ctx, ref)
	return args.Get(0).(int64), args.Error(1)
}

// MockPaymentRepository is a mock implementation of billing.PaymentRepository
type MockPaymentRepository struct {
	mock.Mock
}

func (m *MockPaymentRepository) FindByBill(ctx context.Context, billID uuid.UUID) ([]billing.Payment, error) {
	args := m.Called(ctx, billID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]billing.Payment), args.Error(1)
}

func (m *MockPaymentRepository) CountByRef(ctx context.Context, ref shared.EntityRef) (int64, error) {
	args := m.Called(ctx, ref)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockPaymentRepository) SumSuccessfulByRef(ctx context.Context, ref shared.EntityRef) (decimal.Decimal, error) {
	args := m.Called(ctx, ref)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

func (m *MockPaymentRepository) Save(ctx context.Context, payment *billing.Payment) error {
	args := m.Called(ctx, payment)
	return args.Error(0)
}

func (m *MockPaymentRepository) DeleteByBillIDs(ctx context.Context, billIDs []uuid.UUID) (int64, error) {
	args := m.Called(ctx, billIDs)
	return args.Get(0).(int64), args.Error(1)
}

// MockAdjustmentRepository is a mock implementation of billing.AdjustmentRepository
type MockAdjustmentRepository struct {
	mock.Mock
}

func (m *MockAdjustmentRepository) CountByTarget(ctx context.Context, target shared.EntityRef) (int64, error) {
	args := m.Called(ctx, target)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockAdjustmentRepository) Save(ctx context.Context, adjustment *billing.BillAdjustment) error {
	args := m.Called(ctx, adjustment)
	return args.Error(0)
}

func (m *MockAdjustmentRepository) DeleteByTarget(ctx context.Context, target shared.EntityRef) (int64, error) {
	args := m.Called(ctx, target)
	return args.Get(0).(int64), args.Error(1)
}

// MockAuditRepository is a mock implementation of audit.Repository
type MockAuditRepository struct {
	mock.Mock
}

func (m *MockAuditRepository) Insert(ctx context.Context, entry *audit.Entry) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}

func (m *MockAuditRepository) List(ctx context.Context, filter audit.ListFilter) ([]audit.Entry, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]audit.Entry), args.Error(1)
}

// MockDeletionLock is a mock implementation of shared.DeletionLock
type MockDeletionLock struct {
	mock.Mock
}

func (m *MockDeletionLock) Acquire(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	args := m.Called(ctx, key, ttl)
	return args.Bool(0), args.Error(1)
}

func (m *MockDeletionLock) Release(ctx context.Context, key string) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}

func (m *MockDeletionLock) Close() error {
	args := m.Called()
	return args.Error(0)
}

// recordingTxScope wraps NoOpTransactionScope and remembers whether Execute ran
type recordingTxScope struct {
	*NoOpTransactionScope
	executed bool
}

func (s *recordingTxScope) Execute(ctx context.Context, fn func(repos TransactionalRepositories) error) error {
	s.executed = true
	return s.NoOpTransactionScope.Execute(ctx, fn)
}
