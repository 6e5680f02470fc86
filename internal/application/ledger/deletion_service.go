package ledger

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/proptax/backend/internal/domain/audit"
	"github.com/proptax/backend/internal/domain/property"
	"github.com/proptax/backend/internal/domain/shared"
	"github.com/proptax/backend/internal/infrastructure/telemetry"
	"go.uber.org/zap"
)

// DefaultDeletionLockTTL bounds how long a crashed caller can block deletes of one property
const DefaultDeletionLockTTL = 30 * time.Second

// DeletionCounts holds the number of rows removed per category
type DeletionCounts struct {
	Bills       int64 `json:"bills"`
	Payments    int64 `json:"payments"`
	Adjustments int64 `json:"adjustments"`
}

// DeletionResult describes a completed cascading delete
type DeletionResult struct {
	PropertyID uuid.UUID      `json:"property_id"`
	Counts     DeletionCounts `json:"counts"`
	// Summary lists the non-empty categories, e.g. "2 bill record(s)"
	Summary      []string `json:"summary"`
	AuditWritten bool     `json:"audit_written"`
}

// Message renders the summary as a sentence
func (r *DeletionResult) Message() string {
	if len(r.Summary) == 0 {
		return "Property deleted successfully"
	}
	return "Property deleted successfully along with " + strings.Join(r.Summary, ", ")
}

// DeletionService removes a property together with every financial record that depends on it
type DeletionService struct {
	propertyRepo property.PropertyRepository
	inspector    *RelationshipInspector
	txScope      TransactionScope
	lock         shared.DeletionLock
	lockTTL      time.Duration
	auditor      *AuditRecorder
	metrics      *telemetry.LedgerMetrics
	logger       *zap.Logger
}

// NewDeletionService creates a new DeletionService
func NewDeletionService(
	propertyRepo property.PropertyRepository,
	inspector *RelationshipInspector,
	txScope TransactionScope,
	lock shared.DeletionLock,
	auditor *AuditRecorder,
	logger *zap.Logger,
) *DeletionService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DeletionService{
		propertyRepo: propertyRepo,
		inspector:    inspector,
		txScope:      txScope,
		lock:         lock,
		lockTTL:      DefaultDeletionLockTTL,
		auditor:      auditor,
		logger:       logger,
	}
}

// WithLockTTL sets how long the per-property deletion lock is held at most
func (s *DeletionService) WithLockTTL(ttl time.Duration) *DeletionService {
	if ttl > 0 {
		s.lockTTL = ttl
	}
	return s
}

// WithMetrics records deletion outcomes on m
func (s *DeletionService) WithMetrics(m *telemetry.LedgerMetrics) *DeletionService {
	s.metrics = m
	return s
}

// Execute deletes the property and its payments, adjustments and bills in one transaction.
//
// The steps are:
//  1. take the per-property deletion lock (CONCURRENCY_CONFLICT when held elsewhere)
//  2. load the property (NOT_FOUND, no transaction opened)
//  3. inspect relationships (INSPECTION_FAILED aborts)
//  4. in one read-committed transaction, lock the property and bill rows, then delete
//     payments, adjustments, bills and the property in that order
//  5. after commit, append a HARD_DELETE_PROPERTY audit entry on a best-effort basis
//
// Any failure in step 4 rolls everything back and yields DELETION_FAILED.
func (s *DeletionService) Execute(ctx context.Context, propertyID uuid.UUID, actor string) (_ *DeletionResult, err error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "property", "hard_delete")
	defer span.End()
	start := time.Now()
	defer func() { s.metrics.RecordDeletion(ctx, deletionOutcome(err), time.Since(start)) }()
	telemetry.SetAttributes(span,
		telemetry.SpanAttrPropertyID, propertyID.String(),
		telemetry.SpanAttrActorID, actor,
	)

	if strings.TrimSpace(actor) == "" {
		return nil, shared.NewValidationError("Actor is required to delete a property")
	}

	ref := shared.PropertyRef(propertyID)
	release, err := s.acquire(ctx, ref)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	defer release()

	prop, err := s.propertyRepo.FindByID(ctx, propertyID)
	if err != nil {
		err = shared.WrapDomainError(shared.CodeDeletionFailed, "Failed to load property", err)
		telemetry.RecordError(span, err)
		return nil, err
	}
	if prop == nil {
		return nil, shared.NewNotFoundError("Property not found")
	}
	snapshot := prop.Snapshot()

	rel, err := s.inspector.Inspect(ctx, propertyID)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	var counts DeletionCounts
	err = s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		var txErr error
		counts, txErr = s.cascade(ctx, repos, propertyID)
		return txErr
	})
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, err
		}
		var domainErr *shared.DomainError
		if !errors.As(err, &domainErr) || domainErr.Code != shared.CodeDeletionFailed {
			err = shared.WrapDomainError(shared.CodeDeletionFailed, "Failed to delete property", err)
		}
		s.logger.Warn("Property deletion rolled back",
			zap.String("property_id", propertyID.String()),
			zap.String("actor_id", actor),
			zap.Error(err),
		)
		telemetry.RecordError(span, err)
		return nil, err
	}

	result := &DeletionResult{
		PropertyID: propertyID,
		Counts:     counts,
		Summary:    summarize(counts),
	}

	entry := s.auditor.build(actor, audit.ActionHardDeleteProperty, ref, snapshot, nil)
	if entry != nil {
		entry.WithMetadata("deleted_bills", counts.Bills).
			WithMetadata("deleted_payments", counts.Payments).
			WithMetadata("deleted_adjustments", counts.Adjustments).
			WithMetadata("inspected_bills", rel.BillCount).
			WithMetadata("inspected_payments", rel.PaymentCount).
			WithMetadata("inspected_adjustments", rel.AdjustmentCount).
			WithMetadata("total_payment_amount", rel.TotalSuccessfulPaymentAmount.StringFixed(2))
		result.AuditWritten = s.auditor.Record(ctx, entry)
	}

	s.logger.Info("Property deleted",
		zap.String("property_id", propertyID.String()),
		zap.String("actor_id", actor),
		zap.Int64("bills", counts.Bills),
		zap.Int64("payments", counts.Payments),
		zap.Int64("adjustments", counts.Adjustments),
		zap.Bool("audit_written", result.AuditWritten),
	)
	telemetry.AddEvent(span, "property_deleted",
		"bills", counts.Bills,
		"payments", counts.Payments,
		"adjustments", counts.Adjustments,
	)
	telemetry.SetOK(span)
	return result, nil
}

// cascade runs inside the transaction. Counts are re-read after the row locks are
// taken so records added between inspection and locking are not left behind.
func (s *DeletionService) cascade(ctx context.Context, repos TransactionalRepositories, propertyID uuid.UUID) (DeletionCounts, error) {
	var counts DeletionCounts
	ref := shared.PropertyRef(propertyID)

	locked, err := repos.PropertyRepo().FindByIDForUpdate(ctx, propertyID)
	if err != nil {
		return counts, fmt.Errorf("lock property: %w", err)
	}
	if locked == nil {
		return counts, shared.NewNotFoundError("Property not found")
	}

	billIDs, err := repos.BillRepo().LockIDsByRef(ctx, ref)
	if err != nil {
		return counts, fmt.Errorf("lock bills: %w", err)
	}

	rel, err := inspectorFor(repos).Inspect(ctx, propertyID)
	if err != nil {
		return counts, err
	}

	if rel.PaymentCount > 0 && len(billIDs) > 0 {
		if counts.Payments, err = repos.PaymentRepo().DeleteByBillIDs(ctx, billIDs); err != nil {
			return counts, fmt.Errorf("delete payments: %w", err)
		}
	}
	if rel.AdjustmentCount > 0 {
		if counts.Adjustments, err = repos.AdjustmentRepo().DeleteByTarget(ctx, ref); err != nil {
			return counts, fmt.Errorf("delete adjustments: %w", err)
		}
	}
	if rel.BillCount > 0 {
		if counts.Bills, err = repos.BillRepo().DeleteByRef(ctx, ref); err != nil {
			return counts, fmt.Errorf("delete bills: %w", err)
		}
	}
	if err := repos.PropertyRepo().Delete(ctx, propertyID); err != nil {
		return counts, fmt.Errorf("delete property: %w", err)
	}
	return counts, nil
}

// acquire takes the deletion lock for ref and returns its release func
func (s *DeletionService) acquire(ctx context.Context, ref shared.EntityRef) (func(), error) {
	if s.lock == nil {
		return func() {}, nil
	}

	key := shared.DeletionLockKey(ref)
	ok, err := s.lock.Acquire(ctx, key, s.lockTTL)
	if err != nil {
		return nil, shared.WrapDomainError(shared.CodeDeletionFailed, "Failed to acquire deletion lock", err)
	}
	if !ok {
		return nil, shared.NewDomainError(shared.CodeConcurrencyConflict, "Property is already being deleted")
	}

	return func() {
		// release even when the request context is already cancelled
		if err := s.lock.Release(context.WithoutCancel(ctx), key); err != nil {
			s.logger.Warn("Failed to release deletion lock", zap.String("key", key), zap.Error(err))
		}
	}, nil
}

func deletionOutcome(err error) string {
	if err == nil {
		return "deleted"
	}
	if code := shared.ErrorCode(err); code != "" {
		return code
	}
	return shared.CodeDeletionFailed
}

func summarize(c DeletionCounts) []string {
	summary := make([]string, 0, 3)
	if c.Bills > 0 {
		summary = append(summary, fmt.Sprintf("%d bill record(s)", c.Bills))
	}
	if c.Payments > 0 {
		summary = append(summary, fmt.Sprintf("%d payment record(s)", c.Payments))
	}
	if c.Adjustments > 0 {
		summary = append(summary, fmt.Sprintf("%d bill adjustment(s)", c.Adjustments))
	}
	return summary
}
