package ledger

import (
	"context"
	"fmt"
	"time"

	"github.com/proptax/backend/internal/domain/billing"
	"github.com/proptax/backend/internal/domain/shared"
	"github.com/proptax/backend/internal/infrastructure/telemetry"
	"go.uber.org/zap"
)

// DefaultSweepBatchSize is how many past-due bills are loaded per round trip
const DefaultSweepBatchSize = 200

// SweepResult summarizes one overdue sweep
type SweepResult struct {
	Examined int
	Overdue  int
	Paid     int
}

// OverdueSweeper re-derives the lifecycle status of bills whose due date has passed.
// Bills that were settled in full become Paid; the rest become Overdue.
type OverdueSweeper struct {
	billRepo    billing.BillRepository
	paymentRepo billing.PaymentRepository
	batchSize   int
	metrics     *telemetry.LedgerMetrics
	logger      *zap.Logger
	now         func() time.Time
}

// NewOverdueSweeper creates a new OverdueSweeper
func NewOverdueSweeper(billRepo billing.BillRepository, paymentRepo billing.PaymentRepository, logger *zap.Logger) *OverdueSweeper {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &OverdueSweeper{
		billRepo:    billRepo,
		paymentRepo: paymentRepo,
		batchSize:   DefaultSweepBatchSize,
		logger:      logger,
		now:         time.Now,
	}
}

// WithBatchSize overrides DefaultSweepBatchSize; n <= 0 is ignored
func (s *OverdueSweeper) WithBatchSize(n int) *OverdueSweeper {
	if n > 0 {
		s.batchSize = n
	}
	return s
}

// WithMetrics records the overdue status changes on m
func (s *OverdueSweeper) WithMetrics(m *telemetry.LedgerMetrics) *OverdueSweeper {
	s.metrics = m
	return s
}

// Name identifies the sweep in scheduler logs
func (s *OverdueSweeper) Name() string { return "bill_overdue_sweep" }

// Run performs a sweep and discards the counts
func (s *OverdueSweeper) Run(ctx context.Context) error {
	_, err := s.Sweep(ctx)
	return err
}

// Sweep walks every unsettled past-due bill in batches. Each processed bill leaves
// the Pending/Partially Paid set, so the loop ends once a batch comes back short.
func (s *OverdueSweeper) Sweep(ctx context.Context) (SweepResult, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "bill", "overdue_sweep")
	defer span.End()

	var result SweepResult
	asOf := s.now()
	for {
		if err := ctx.Err(); err != nil {
			return result, err
		}

		bills, err := s.billRepo.FindPastDue(ctx, asOf, s.batchSize)
		if err != nil {
			telemetry.RecordError(span, err)
			return result, fmt.Errorf("failed to load past-due bills: %w", err)
		}

		for i := range bills {
			if err := s.refresh(ctx, &bills[i], asOf, &result); err != nil {
				telemetry.RecordError(span, err)
				return result, err
			}
		}
		if len(bills) < s.batchSize {
			break
		}
	}

	telemetry.SetAttributes(span, "examined", result.Examined, "overdue", result.Overdue, "paid", result.Paid)
	if result.Examined > 0 {
		s.logger.Info("Overdue sweep completed",
			zap.Int("examined", result.Examined),
			zap.Int("overdue", result.Overdue),
			zap.Int("paid", result.Paid),
		)
	}
	return result, nil
}

func (s *OverdueSweeper) refresh(ctx context.Context, bill *billing.Bill, asOf time.Time, result *SweepResult) error {
	result.Examined++

	payments, err := s.paymentRepo.FindByBill(ctx, bill.ID)
	if err != nil {
		return fmt.Errorf("failed to load payments of bill %s: %w", bill.ID, err)
	}
	status := bill.RefreshStatus(billing.SumSuccessful(payments), asOf)
	bill.UpdatedAt = asOf
	if err := s.billRepo.UpdateStatus(ctx, bill); err != nil {
		if shared.ErrorCode(err) == shared.CodeNotFound {
			// deleted along with its property since the batch was read
			return nil
		}
		return fmt.Errorf("failed to update status of bill %s: %w", bill.ID, err)
	}

	switch status {
	case billing.BillStatusOverdue:
		result.Overdue++
	case billing.BillStatusPaid:
		result.Paid++
	}
	s.metrics.RecordStatusChange(ctx, status.String())
	return nil
}
