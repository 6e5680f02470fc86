package ledger

import (
	"context"

	"github.com/proptax/backend/internal/domain/billing"
	"github.com/proptax/backend/internal/domain/property"
)

// TransactionScope provides transactional access to the ledger repositories.
// Every repository operation performed inside Execute belongs to the same database
// transaction and is committed or rolled back as a unit.
type TransactionScope interface {
	// Execute runs fn within a database transaction.
	// If fn returns an error, the transaction is rolled back; otherwise it is committed.
	Execute(ctx context.Context, fn func(repos TransactionalRepositories) error) error
}

// TransactionalRepositories gives access to the ledger repositories bound to one transaction
type TransactionalRepositories interface {
	// PropertyRepo returns the property repository scoped to the current transaction
	PropertyRepo() property.PropertyRepository
	// BillRepo returns the bill repository scoped to the current transaction
	BillRepo() billing.BillRepository
	// PaymentRepo returns the payment repository scoped to the current transaction
	PaymentRepo() billing.PaymentRepository
	// AdjustmentRepo returns the bill adjustment repository scoped to the current transaction
	AdjustmentRepo() billing.AdjustmentRepository
}

// NoOpTransactionScope runs the function against plain repositories without a transaction.
// Useful in tests.
type NoOpTransactionScope struct {
	propertyRepo   property.PropertyRepository
	billRepo       billing.BillRepository
	paymentRepo    billing.PaymentRepository
	adjustmentRepo billing.AdjustmentRepository
}

// NewNoOpTransactionScope creates a NoOpTransactionScope with the given repositories.
func NewNoOpTransactionScope(
	propertyRepo property.PropertyRepository,
	billRepo billing.BillRepository,
	paymentRepo billing.PaymentRepository,
	adjustmentRepo billing.AdjustmentRepository,
) *NoOpTransactionScope {
	return &NoOpTransactionScope{
		propertyRepo:   propertyRepo,
		billRepo:       billRepo,
		paymentRepo:    paymentRepo,
		adjustmentRepo: adjustmentRepo,
	}
}

// Execute runs the function without a real transaction.
func (s *NoOpTransactionScope) Execute(_ context.Context, fn func(repos TransactionalRepositories) error) error {
	return fn(s)
}

// PropertyRepo returns the property repository.
func (s *NoOpTransactionScope) PropertyRepo() property.PropertyRepository {
	return s.propertyRepo
}

// BillRepo returns the bill repository.
func (s *NoOpTransactionScope) BillRepo() billing.BillRepository {
	return s.billRepo
}

// PaymentRepo returns the payment repository.
func (s *NoOpTransactionScope) PaymentRepo() billing.PaymentRepository {
	return s.paymentRepo
}

// AdjustmentRepo returns the bill adjustment repository.
func (s *NoOpTransactionScope) AdjustmentRepo() billing.AdjustmentRepository {
	return s.adjustmentRepo
}

var _ TransactionScope = (*NoOpTransactionScope)(nil)
var _ TransactionalRepositories = (*NoOpTransactionScope)(nil)
