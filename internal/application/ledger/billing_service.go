package ledger

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/proptax/backend/internal/domain/audit"
	"github.com/proptax/backend/internal/domain/billing"
	"github.com/proptax/backend/internal/domain/property"
	"github.com/proptax/backend/internal/domain/shared"
	"github.com/proptax/backend/internal/infrastructure/telemetry"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// BillingService issues yearly bills for properties
type BillingService struct {
	propertyRepo property.PropertyRepository
	billRepo     billing.BillRepository
	auditor      *AuditRecorder
	metrics      *telemetry.LedgerMetrics
	logger       *zap.Logger
	now          func() time.Time
}

// NewBillingService creates a new BillingService
func NewBillingService(
	propertyRepo property.PropertyRepository,
	billRepo billing.BillRepository,
	auditor *AuditRecorder,
	logger *zap.Logger,
) *BillingService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &BillingService{
		propertyRepo: propertyRepo,
		billRepo:     billRepo,
		auditor:      auditor,
		logger:       logger,
		now:          time.Now,
	}
}

// WithMetrics counts generated bills on m
func (s *BillingService) WithMetrics(m *telemetry.LedgerMetrics) *BillingService {
	s.metrics = m
	return s
}

// GenerateAnnualBill issues the property's bill for year, snapshotting its current AmountPayable.
// A second bill for the same property and year is refused with ALREADY_EXISTS.
// The bill falls due at the end of March of the billing year.
func (s *BillingService) GenerateAnnualBill(ctx context.Context, propertyID uuid.UUID, year int, actor string) (*billing.Bill, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "bill", "generate_annual")
	defer span.End()
	telemetry.SetAttributes(span,
		telemetry.SpanAttrPropertyID, propertyID.String(),
		telemetry.SpanAttrBillYear, year,
		telemetry.SpanAttrActorID, actor,
	)

	if strings.TrimSpace(actor) == "" {
		return nil, shared.NewValidationError("Actor is required")
	}

	prop, err := s.propertyRepo.FindByID(ctx, propertyID)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, fmt.Errorf("failed to load property: %w", err)
	}
	if prop == nil {
		return nil, shared.NewNotFoundError("Property not found")
	}

	exists, err := s.billRepo.ExistsForYear(ctx, prop.Ref(), year)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, fmt.Errorf("failed to check existing bills: %w", err)
	}
	if exists {
		return nil, shared.NewDomainError(shared.CodeAlreadyExists,
			fmt.Sprintf("A bill for %d already exists for this property", year))
	}

	due := time.Date(year, time.March, 31, 23, 59, 59, 0, s.now().Location())
	bill, err := billing.NewBill(prop.Ref(), year, prop.AmountPayable, &due)
	if err != nil {
		return nil, err
	}
	// nothing has been paid against a fresh bill
	bill.RefreshStatus(decimal.Zero, s.now())

	if err := s.billRepo.Save(ctx, bill); err != nil {
		telemetry.RecordError(span, err)
		return nil, fmt.Errorf("failed to save bill: %w", err)
	}
	s.metrics.RecordBillGenerated(ctx)

	s.auditor.Record(ctx, s.auditor.build(actor, audit.ActionGenerateBill, prop.Ref(), nil, map[string]any{
		"bill_id":        bill.ID,
		"bill_number":    bill.BillNumber,
		"year":           bill.Year,
		"amount_payable": bill.AmountPayable.StringFixed(2),
	}))

	s.logger.Info("Annual bill generated",
		zap.String("property_id", propertyID.String()),
		zap.String("bill_id", bill.ID.String()),
		zap.Int("year", year),
		zap.String("actor_id", actor),
	)
	return bill, nil
}
