package ledger

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/proptax/backend/internal/domain/billing"
	"github.com/proptax/backend/internal/domain/property"
	"github.com/proptax/backend/internal/domain/shared"
	"github.com/proptax/backend/internal/infrastructure/telemetry"
)

// BalanceService loads a property and its bills and reconciles the outstanding balance
type BalanceService struct {
	propertyRepo property.PropertyRepository
	billRepo     billing.BillRepository
	reconciler   billing.BalanceReconciler
	now          func() time.Time
}

// NewBalanceService creates a new BalanceService
func NewBalanceService(propertyRepo property.PropertyRepository, billRepo billing.BillRepository) *BalanceService {
	return &BalanceService{
		propertyRepo: propertyRepo,
		billRepo:     billRepo,
		now:          time.Now,
	}
}

// CurrentBalance returns the authoritative outstanding balance for the property
func (s *BalanceService) CurrentBalance(ctx context.Context, propertyID uuid.UUID) (*billing.Balance, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "balance", "current")
	defer span.End()
	telemetry.SetAttribute(span, telemetry.SpanAttrPropertyID, propertyID.String())

	prop, err := s.propertyRepo.FindByID(ctx, propertyID)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, fmt.Errorf("failed to load property: %w", err)
	}
	if prop == nil {
		return nil, shared.NewNotFoundError("Property not found")
	}

	bills, err := s.billRepo.FindByRef(ctx, prop.Ref())
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, fmt.Errorf("failed to load bills: %w", err)
	}

	balance := s.reconciler.CurrentBalance(prop, bills, s.now())
	telemetry.SetAttribute(span, "is_authoritative", balance.IsAuthoritative)
	return &balance, nil
}
