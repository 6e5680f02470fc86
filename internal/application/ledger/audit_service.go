package ledger

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/proptax/backend/internal/domain/audit"
	"github.com/proptax/backend/internal/domain/shared"
)

// AuditTrailService reads the audit trail. It cannot modify it.
type AuditTrailService struct {
	repo audit.Repository
}

// NewAuditTrailService creates a new AuditTrailService
func NewAuditTrailService(repo audit.Repository) *AuditTrailService {
	return &AuditTrailService{repo: repo}
}

// ForProperty lists the entries recorded against the property, newest first.
// Entries survive deletion of the property, so no existence check is made.
func (s *AuditTrailService) ForProperty(ctx context.Context, propertyID uuid.UUID, action string, filter shared.Filter) ([]audit.Entry, error) {
	ref := shared.PropertyRef(propertyID)
	entries, err := s.repo.List(ctx, audit.ListFilter{
		Filter: filter,
		Action: audit.Action(action),
		Target: &ref,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list audit entries: %w", err)
	}
	return entries, nil
}
