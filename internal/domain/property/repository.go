package property

import (
	"context"

	"github.com/google/uuid"
)

// PropertyRepository defines the interface for property persistence
type PropertyRepository interface {
	// FindByID finds a property by its ID, returning nil when absent
	FindByID(ctx context.Context, id uuid.UUID) (*Property, error)

	// FindByIDForUpdate finds a property by ID and locks its row until the transaction ends
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*Property, error)

	// Save creates or updates a property
	Save(ctx context.Context, property *Property) error

	// Delete removes the property row
	Delete(ctx context.Context, id uuid.UUID) error
}
