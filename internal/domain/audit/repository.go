package audit

import (
	"context"
	"time"

	"github.com/proptax/backend/internal/domain/shared"
)

// ListFilter narrows an audit trail query
type ListFilter struct {
	shared.Filter
	Action  Action
	Target  *shared.EntityRef
	ActorID string
	StartAt *time.Time
	EndAt   *time.Time
}

// Repository is the append-only audit store
type Repository interface {
	// Insert appends an entry
	Insert(ctx context.Context, entry *Entry) error

	// List returns entries matching the filter, newest first
	List(ctx context.Context, filter ListFilter) ([]Entry, error)
}
