package audit

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/proptax/backend/internal/domain/shared"
)

// Action names a recorded change
type Action string

const (
	ActionCreateProperty     Action = "CREATE_PROPERTY"
	ActionUpdateProperty     Action = "UPDATE_PROPERTY"
	ActionHardDeleteProperty Action = "HARD_DELETE_PROPERTY"
	ActionGenerateBill       Action = "GENERATE_BILL"
	ActionUpdateDelivery     Action = "UPDATE_BILL_DELIVERY"
)

// Entry is an immutable audit record.
// Entries are only ever inserted; nothing updates or deletes them.
type Entry struct {
	ID        uuid.UUID
	ActorID   string
	Action    Action
	Target    shared.EntityRef
	Before    json.RawMessage
	After     json.RawMessage
	Metadata  map[string]any
	IPAddress string
	UserAgent string
	RequestID string
	CreatedAt time.Time
}

// NewEntry builds an entry for action on target.
// before and after are marshalled to JSON; either may be nil.
func NewEntry(actor string, action Action, target shared.EntityRef, before, after any) (*Entry, error) {
	if strings.TrimSpace(actor) == "" {
		return nil, shared.NewValidationError("Audit entry requires an actor")
	}
	if action == "" {
		return nil, shared.NewValidationError("Audit entry requires an action")
	}

	beforeJSON, err := marshalSnapshot(before)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal before snapshot: %w", err)
	}
	afterJSON, err := marshalSnapshot(after)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal after snapshot: %w", err)
	}

	return &Entry{
		ID:        uuid.New(),
		ActorID:   actor,
		Action:    action,
		Target:    target,
		Before:    beforeJSON,
		After:     afterJSON,
		Metadata:  map[string]any{},
		CreatedAt: time.Now(),
	}, nil
}

func marshalSnapshot(v any) (json.RawMessage, error) {
	if v == nil {
		return nil, nil
	}
	return json.Marshal(v)
}

// WithMetadata sets a metadata key and returns the entry
func (e *Entry) WithMetadata(key string, value any) *Entry {
	if e.Metadata == nil {
		e.Metadata = map[string]any{}
	}
	e.Metadata[key] = value
	return e
}

// WithOrigin copies the request origin onto the entry
func (e *Entry) WithOrigin(o Origin) *Entry {
	e.IPAddress = o.IPAddress
	e.UserAgent = o.UserAgent
	e.RequestID = o.RequestID
	return e
}
