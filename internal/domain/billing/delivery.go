package billing

import (
	"fmt"
	"strings"

	"github.com/proptax/backend/internal/domain/shared"
)

// DeliveryStatus is the physical-delivery state of a printed bill
type DeliveryStatus string

const (
	DeliveryNotServed DeliveryStatus = "Not Served"
	DeliveryServed    DeliveryStatus = "Served"
	DeliveryAttempted DeliveryStatus = "Attempted"
	DeliveryReturned  DeliveryStatus = "Returned"
)

// DeliveryStatuses lists every delivery status in display order
var DeliveryStatuses = []DeliveryStatus{
	DeliveryNotServed,
	DeliveryServed,
	DeliveryAttempted,
	DeliveryReturned,
}

// IsValid checks if the delivery status is one of the known values
func (s DeliveryStatus) IsValid() bool {
	switch s {
	case DeliveryNotServed, DeliveryServed, DeliveryAttempted, DeliveryReturned:
		return true
	}
	return false
}

// String returns the string representation of DeliveryStatus
func (s DeliveryStatus) String() string {
	return string(s)
}

// RecordsServer reports whether entering this status stamps who served the bill and when
func (s DeliveryStatus) RecordsServer() bool {
	return s != DeliveryNotServed
}

// CanTransitionTo reports whether a bill in s may move to next.
// The graph is complete, so only next is checked. An unknown s counts as
// not served and can always be corrected.
func (s DeliveryStatus) CanTransitionTo(next DeliveryStatus) bool {
	return next.IsValid()
}

// deliveryAliases accepts the enum-style spelling of statuses whose stored
// value contains a space.
var deliveryAliases = map[string]DeliveryStatus{
	"NotServed": DeliveryNotServed,
}

// ParseDeliveryStatus converts raw input into a DeliveryStatus.
// Matching is exact apart from deliveryAliases; anything else is INVALID_STATUS.
func ParseDeliveryStatus(raw string) (DeliveryStatus, error) {
	if alias, ok := deliveryAliases[raw]; ok {
		return alias, nil
	}
	s := DeliveryStatus(raw)
	if !s.IsValid() {
		names := make([]string, len(DeliveryStatuses))
		for i, v := range DeliveryStatuses {
			names[i] = string(v)
		}
		return "", shared.NewDomainError(shared.CodeInvalidStatus, fmt.Sprintf("Invalid delivery status %q, expected one of: %s", raw, strings.Join(names, ", ")))
	}
	return s, nil
}
