package ledger

import (
	"context"

	"github.com/google/uuid"
	"github.com/proptax/backend/internal/domain/billing"
	"github.com/proptax/backend/internal/domain/shared"
	"github.com/proptax/backend/internal/infrastructure/telemetry"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/trace"
)

// Relationships summarizes the financial records that depend on a property
type Relationships struct {
	BillCount                    int64           `json:"bills"`
	PaymentCount                 int64           `json:"payments"`
	AdjustmentCount              int64           `json:"adjustments"`
	TotalSuccessfulPaymentAmount decimal.Decimal `json:"total_payment_amount"`
	HasRelationships             bool            `json:"has_relationships"`
}

// RelationshipInspector counts the records that depend on a property
type RelationshipInspector struct {
	billRepo       billing.BillRepository
	paymentRepo    billing.PaymentRepository
	adjustmentRepo billing.AdjustmentRepository
}

// NewRelationshipInspector creates a new RelationshipInspector
func NewRelationshipInspector(
	billRepo billing.BillRepository,
	paymentRepo billing.PaymentRepository,
	adjustmentRepo billing.AdjustmentRepository,
) *RelationshipInspector {
	return &RelationshipInspector{
		billRepo:       billRepo,
		paymentRepo:    paymentRepo,
		adjustmentRepo: adjustmentRepo,
	}
}

// inspectorFor builds an inspector reading through repos
func inspectorFor(repos TransactionalRepositories) *RelationshipInspector {
	return NewRelationshipInspector(repos.BillRepo(), repos.PaymentRepo(), repos.AdjustmentRepo())
}

// Inspect returns the bill, payment and adjustment counts for the property.
// Payments of every status are counted but only successful ones are summed.
// Any read failure yields INSPECTION_FAILED and no partial result.
func (i *RelationshipInspector) Inspect(ctx context.Context, propertyID uuid.UUID) (*Relationships, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "relationship", "inspect")
	defer span.End()
	telemetry.SetAttribute(span, telemetry.SpanAttrPropertyID, propertyID.String())

	ref := shared.PropertyRef(propertyID)

	bills, err := i.billRepo.CountByRef(ctx, ref)
	if err != nil {
		return nil, i.fail(span, "Failed to count bills", err)
	}
	payments, err := i.paymentRepo.CountByRef(ctx, ref)
	if err != nil {
		return nil, i.fail(span, "Failed to count payments", err)
	}
	total, err := i.paymentRepo.SumSuccessfulByRef(ctx, ref)
	if err != nil {
		return nil, i.fail(span, "Failed to total payments", err)
	}
	adjustments, err := i.adjustmentRepo.CountByTarget(ctx, ref)
	if err != nil {
		return nil, i.fail(span, "Failed to count adjustments", err)
	}

	rel := &Relationships{
		BillCount:                    bills,
		PaymentCount:                 payments,
		AdjustmentCount:              adjustments,
		TotalSuccessfulPaymentAmount: total,
		HasRelationships:             bills > 0 || payments > 0 || adjustments > 0,
	}

	telemetry.SetAttributes(span,
		"bill_count", bills,
		"payment_count", payments,
		"adjustment_count", adjustments,
	)
	return rel, nil
}

func (i *RelationshipInspector) fail(span trace.Span, message string, cause error) error {
	err := shared.WrapDomainError(shared.CodeInspectionFailed, message, cause)
	telemetry.RecordError(span, err)
	return err
}
