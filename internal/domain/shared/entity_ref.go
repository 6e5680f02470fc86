package shared

import (
	"fmt"

	"github.com/google/uuid"
)

// EntityKind identifies which kind of record an EntityRef points at.
// The string value is what gets persisted in the *_type columns.
type EntityKind string

const (
	EntityKindProperty EntityKind = "Property"
	EntityKindBusiness EntityKind = "Business"
)

// IsValid checks if the kind is one of the known entity kinds
func (k EntityKind) IsValid() bool {
	switch k {
	case EntityKindProperty, EntityKindBusiness:
		return true
	}
	return false
}

// String returns the string representation of EntityKind
func (k EntityKind) String() string {
	return string(k)
}

// EntityRef is a typed reference to a billable entity.
// Bills and adjustments point at their owner through it instead of a bare id string.
type EntityRef struct {
	Kind EntityKind `json:"kind"`
	ID   uuid.UUID  `json:"id"`
}

// NewEntityRef creates a validated EntityRef
func NewEntityRef(kind EntityKind, id uuid.UUID) (EntityRef, error) {
	if !kind.IsValid() {
		return EntityRef{}, NewValidationError(fmt.Sprintf("Unknown entity kind %q", kind))
	}
	if id == uuid.Nil {
		return EntityRef{}, NewValidationError("Entity ID cannot be empty")
	}
	return EntityRef{Kind: kind, ID: id}, nil
}

// PropertyRef returns a reference to the property with the given id
func PropertyRef(id uuid.UUID) EntityRef {
	return EntityRef{Kind: EntityKindProperty, ID: id}
}

// BusinessRef returns a reference to the business with the given id
func BusinessRef(id uuid.UUID) EntityRef {
	return EntityRef{Kind: EntityKindBusiness, ID: id}
}

// IsZero reports whether the reference is unset
func (r EntityRef) IsZero() bool {
	return r.Kind == "" && r.ID == uuid.Nil
}

// Matches reports whether two references point at the same entity
func (r EntityRef) Matches(other EntityRef) bool {
	return r.Kind == other.Kind && r.ID == other.ID
}

// String returns "Kind:id"
func (r EntityRef) String() string {
	return fmt.Sprintf("%s:%s", r.Kind, r.ID)
}
