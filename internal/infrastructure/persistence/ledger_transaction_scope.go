package persistence

import (
	"context"
	"database/sql"

	"github.com/proptax/backend/internal/application/ledger"
	"github.com/proptax/backend/internal/domain/billing"
	"github.com/proptax/backend/internal/domain/property"
	"gorm.io/gorm"
)

// GormTransactionScope implements ledger.TransactionScope using GORM transactions.
// Every repository handed to fn shares one read-committed transaction.
type GormTransactionScope struct {
	db   *gorm.DB
	opts *sql.TxOptions
}

// NewGormTransactionScope creates a new GormTransactionScope.
// Isolation is only requested from postgres; sqlite has a single isolation mode.
func NewGormTransactionScope(db *gorm.DB) *GormTransactionScope {
	s := &GormTransactionScope{db: db}
	if db.Dialector.Name() == "postgres" {
		s.opts = &sql.TxOptions{Isolation: sql.LevelReadCommitted}
	}
	return s
}

// Execute runs fn in a transaction, rolling back if fn returns an error.
func (s *GormTransactionScope) Execute(ctx context.Context, fn func(repos ledger.TransactionalRepositories) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&gormTransactionalRepositories{tx: tx})
	}, s.opts)
}

type gormTransactionalRepositories struct {
	tx *gorm.DB
}

func (r *gormTransactionalRepositories) PropertyRepo() property.PropertyRepository {
	return NewGormPropertyRepository(r.tx)
}

func (r *gormTransactionalRepositories) BillRepo() billing.BillRepository {
	return NewGormBillRepository(r.tx)
}

func (r *gormTransactionalRepositories) PaymentRepo() billing.PaymentRepository {
	return NewGormPaymentRepository(r.tx)
}

func (r *gormTransactionalRepositories) AdjustmentRepo() billing.AdjustmentRepository {
	return NewGormAdjustmentRepository(r.tx)
}

var (
	_ ledger.TransactionScope          = (*GormTransactionScope)(nil)
	_ ledger.TransactionalRepositories = (*gormTransactionalRepositories)(nil)
)
