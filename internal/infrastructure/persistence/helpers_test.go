package persistence

import (
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/proptax/backend/internal/domain/billing"
	"github.com/proptax/backend/internal/domain/property"
	"github.com/proptax/backend/internal/domain/shared"
	"github.com/proptax/backend/internal/infrastructure/persistence/models"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// newSQLiteDB opens a private in-memory database with the ledger schema.
// A single connection keeps every statement on the same memory database.
func newSQLiteDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:                 logger.Default.LogMode(logger.Silent),
		SkipDefaultTransaction: true,
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(models.Ledger()...))
	return db
}

// newMockPostgres returns a GORM handle on the postgres dialect backed by sqlmock.
func newMockPostgres(t *testing.T) (*gorm.DB, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)

	db, err := gorm.Open(postgres.New(postgres.Config{Conn: mockDB, DriverName: "postgres"}), &gorm.Config{
		Logger:                 logger.Default.LogMode(logger.Silent),
		SkipDefaultTransaction: true,
	})
	require.NoError(t, err)
	return db, mock, mockDB
}

type seed struct {
	t  *testing.T
	db *gorm.DB
}

func (s seed) property(name string) *property.Property {
	s.t.Helper()
	p, err := property.NewProperty(property.Attributes{
		Owner:     property.Owner{Name: name},
		Structure: "Modern",
		Use:       "Residential",
		RoomCount: 4,
	}, decimal.NewFromInt(50))
	require.NoError(s.t, err)
	require.NoError(s.t, NewGormPropertyRepository(s.db).Save(s.t.Context(), p))
	return p
}

func (s seed) bill(ref shared.EntityRef, year int, amount string) *billing.Bill {
	s.t.Helper()
	b, err := billing.NewBill(ref, year, decimal.RequireFromString(amount), nil)
	require.NoError(s.t, err)
	require.NoError(s.t, NewGormBillRepository(s.db).Save(s.t.Context(), b))
	return b
}

func (s seed) payment(billID uuid.UUID, amount string, status billing.PaymentStatus) *billing.Payment {
	s.t.Helper()
	p, err := billing.NewPayment(billID, decimal.RequireFromString(amount), "cash", status, time.Now())
	require.NoError(s.t, err)
	require.NoError(s.t, NewGormPaymentRepository(s.db).Save(s.t.Context(), p))
	return p
}

func (s seed) adjustment(ref shared.EntityRef) *billing.BillAdjustment {
	s.t.Helper()
	a, err := billing.NewBillAdjustment(ref, billing.AdjustmentWaiver, decimal.NewFromInt(10), "hardship", "officer-1")
	require.NoError(s.t, err)
	require.NoError(s.t, NewGormAdjustmentRepository(s.db).Save(s.t.Context(), a))
	return a
}

func countRows(t *testing.T, db *gorm.DB, model any) int64 {
	t.Helper()
	var n int64
	require.NoError(t, db.Model(model).Count(&n).Error)
	return n
}
