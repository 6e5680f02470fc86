package property

import (
	"context"
	"fmt"
	"strings"

	"github.com/proptax/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// FeeScheduleEntry maps a (structure, use) pair to a fee per room.
// Entries are maintained outside this service and only read here.
type FeeScheduleEntry struct {
	shared.BaseEntity
	Structure  string
	Use        string
	FeePerRoom decimal.Decimal
	Active     bool
}

// FeeScheduleRepository reads fee schedule entries
type FeeScheduleRepository interface {
	// FindActive returns every active entry whose structure and use match exactly
	FindActive(ctx context.Context, structure, use string) ([]FeeScheduleEntry, error)
}

// FeeScheduleResolver resolves the fee per room for a (structure, use) pair
type FeeScheduleResolver struct {
	repo FeeScheduleRepository
}

// NewFeeScheduleResolver creates a new FeeScheduleResolver
func NewFeeScheduleResolver(repo FeeScheduleRepository) *FeeScheduleResolver {
	return &FeeScheduleResolver{repo: repo}
}

// Resolve returns the fee per room of the single active entry matching structure and use.
// Matching is exact and case-sensitive. No match yields SCHEDULE_NOT_FOUND and more than
// one match yields SCHEDULE_AMBIGUOUS; the resolver never picks one of several candidates.
func (r *FeeScheduleResolver) Resolve(ctx context.Context, structure, use string) (decimal.Decimal, error) {
	if strings.TrimSpace(structure) == "" || strings.TrimSpace(use) == "" {
		return decimal.Zero, shared.NewValidationError("Structure and use are required")
	}

	entries, err := r.repo.FindActive(ctx, structure, use)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to load fee schedule: %w", err)
	}

	// the store may be case-insensitive; re-check to keep the match exact
	matches := make([]FeeScheduleEntry, 0, len(entries))
	for _, e := range entries {
		if e.Active && e.Structure == structure && e.Use == use {
			matches = append(matches, e)
		}
	}

	switch len(matches) {
	case 0:
		return decimal.Zero, shared.NewDomainError(shared.CodeScheduleNotFound,
			fmt.Sprintf("No active fee schedule entry for structure %q and use %q", structure, use))
	case 1:
		return matches[0].FeePerRoom, nil
	default:
		return decimal.Zero, shared.NewDomainError(shared.CodeScheduleAmbiguous,
			fmt.Sprintf("%d active fee schedule entries for structure %q and use %q", len(matches), structure, use))
	}
}
