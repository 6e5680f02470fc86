package ledger

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/proptax/backend/internal/domain/audit"
	"github.com/proptax/backend/internal/domain/billing"
	"github.com/proptax/backend/internal/domain/shared"
	"github.com/proptax/backend/internal/infrastructure/telemetry"
	"go.uber.org/zap"
)

// DeliveryResult is the delivery state of a bill after a transition
type DeliveryResult struct {
	BillID   uuid.UUID              `json:"bill_id"`
	Status   billing.DeliveryStatus `json:"status"`
	ServedAt *time.Time             `json:"served_at"`
	ServedBy *string                `json:"served_by"`
	Notes    string                 `json:"notes"`
}

// DeliveryService records the physical delivery of bills
type DeliveryService struct {
	billRepo billing.BillRepository
	auditor  *AuditRecorder
	metrics  *telemetry.LedgerMetrics
	logger   *zap.Logger
	now      func() time.Time
}

// NewDeliveryService creates a new DeliveryService
func NewDeliveryService(billRepo billing.BillRepository, auditor *AuditRecorder, logger *zap.Logger) *DeliveryService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DeliveryService{
		billRepo: billRepo,
		auditor:  auditor,
		logger:   logger,
		now:      time.Now,
	}
}

// WithMetrics counts transitions on m
func (s *DeliveryService) WithMetrics(m *telemetry.LedgerMetrics) *DeliveryService {
	s.metrics = m
	return s
}

// Transition moves the bill to status, stamping or clearing who served it.
// The status is checked before the bill is read so a bad value never touches the store.
func (s *DeliveryService) Transition(ctx context.Context, billID uuid.UUID, status, notes, actor string) (*DeliveryResult, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "bill", "update_delivery")
	defer span.End()
	telemetry.SetAttributes(span,
		telemetry.SpanAttrBillID, billID.String(),
		telemetry.SpanAttrDeliveryStatus, status,
		telemetry.SpanAttrActorID, actor,
	)

	next, err := billing.ParseDeliveryStatus(status)
	if err != nil {
		return nil, err
	}
	if next.RecordsServer() && strings.TrimSpace(actor) == "" {
		return nil, shared.NewValidationError("Actor is required to record a delivery")
	}

	bill, err := s.billRepo.FindByID(ctx, billID)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, fmt.Errorf("failed to load bill: %w", err)
	}
	if bill == nil {
		return nil, shared.NewNotFoundError("Bill not found")
	}

	before := deliveryOf(bill)
	if err := bill.ApplyDelivery(next, notes, actor, s.now()); err != nil {
		return nil, err
	}
	if err := s.billRepo.UpdateDelivery(ctx, bill); err != nil {
		telemetry.RecordError(span, err)
		if shared.ErrorCode(err) != "" {
			return nil, err
		}
		return nil, fmt.Errorf("failed to update bill delivery: %w", err)
	}

	result := deliveryOf(bill)
	s.metrics.RecordDelivery(ctx, next.String())
	if actor != "" {
		s.auditor.Record(ctx, s.auditor.build(actor, audit.ActionUpdateDelivery, bill.Ref, before, result))
	}

	s.logger.Info("Bill delivery updated",
		zap.String("bill_id", billID.String()),
		zap.String("status", next.String()),
		zap.String("actor_id", actor),
	)
	telemetry.SetOK(span)
	return result, nil
}

func deliveryOf(bill *billing.Bill) *DeliveryResult {
	return &DeliveryResult{
		BillID:   bill.ID,
		Status:   bill.ServedStatus,
		ServedAt: bill.ServedAt,
		ServedBy: bill.ServedBy,
		Notes:    bill.DeliveryNotes,
	}
}
