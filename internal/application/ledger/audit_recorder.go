package ledger

import (
	"context"

	"github.com/proptax/backend/internal/domain/audit"
	"github.com/proptax/backend/internal/domain/shared"
	"github.com/proptax/backend/internal/infrastructure/logger"
	"github.com/proptax/backend/internal/infrastructure/telemetry"
	"go.uber.org/zap"
)

// AuditRecorder appends audit entries on a best-effort basis.
// A failed write is logged at error level and never returned to the caller.
type AuditRecorder struct {
	repo    audit.Repository
	enabled bool
	log     *zap.Logger
	metrics *telemetry.LedgerMetrics
}

// NewAuditRecorder creates a new AuditRecorder. A nil repo or enabled=false turns recording off.
func NewAuditRecorder(repo audit.Repository, enabled bool, log *zap.Logger) *AuditRecorder {
	if log == nil {
		log = zap.NewNop()
	}
	return &AuditRecorder{
		repo:    repo,
		enabled: enabled && repo != nil,
		log:     log,
	}
}

// WithMetrics counts failed writes on m
func (r *AuditRecorder) WithMetrics(m *telemetry.LedgerMetrics) *AuditRecorder {
	r.metrics = m
	return r
}

// Record writes entry, stamping it with the request origin carried by ctx.
// It returns whether the entry was written.
func (r *AuditRecorder) Record(ctx context.Context, entry *audit.Entry) bool {
	if r == nil || !r.enabled || entry == nil {
		return false
	}
	entry.WithOrigin(audit.OriginFromContext(ctx))

	if err := r.repo.Insert(ctx, entry); err != nil {
		wrapped := shared.WrapDomainError(shared.CodeAuditWriteFailed, "Failed to write audit entry", err)
		logger.WithLogger(ctx, r.log).Error("Audit write failed, continuing",
			zap.String("code", wrapped.Code),
			zap.String("action", string(entry.Action)),
			zap.String("target", entry.Target.String()),
			zap.String("actor_id", entry.ActorID),
			zap.Error(wrapped),
		)
		r.metrics.RecordAuditFailure(ctx, string(entry.Action))
		return false
	}
	return true
}

// build creates an entry and logs instead of failing when the snapshots cannot be encoded
func (r *AuditRecorder) build(actor string, action audit.Action, target shared.EntityRef, before, after any) *audit.Entry {
	entry, err := audit.NewEntry(actor, action, target, before, after)
	if err != nil {
		if r != nil {
			r.log.Error("Failed to build audit entry",
				zap.String("code", shared.CodeAuditWriteFailed),
				zap.String("action", string(action)),
				zap.String("target", target.String()),
				zap.Error(err),
			)
		}
		return nil
	}
	return entry
}
