package enums

import "fmt"

// ShipmentStatus tracks the lifecycle of a supplier shipment. The stored
// values match the legacy shipment rows.
type ShipmentStatus string

const (
	ShipmentStatusPending  ShipmentStatus = "Pending"
	ShipmentStatusReceived ShipmentStatus = "Received"
	ShipmentStatusDeleted  ShipmentStatus = "Deleted"
)

var validShipmentStatuses = []ShipmentStatus{
	ShipmentStatusPending,
	ShipmentStatusReceived,
	ShipmentStatusDeleted,
}

// String implements fmt.Stringer.
func (s ShipmentStatus) String() string {
	return string(s)
}

// IsValid reports whether the value is a known ShipmentStatus.
func (s ShipmentStatus) IsValid() bool {
	for _, candidate := range validShipmentStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// IsTerminal reports whether no further transitions are allowed.
func (s ShipmentStatus) IsTerminal() bool {
	return s == ShipmentStatusReceived || s == ShipmentStatusDeleted
}

// CanTransitionTo reports whether the transition is part of the lifecycle.
// Received and Deleted are terminal and only reachable from Pending.
func (s ShipmentStatus) CanTransitionTo(next ShipmentStatus) bool {
	if s != ShipmentStatusPending {
		return false
	}
	return next == ShipmentStatusReceived || next == ShipmentStatusDeleted
}

// ParseShipmentStatus converts raw input into a ShipmentStatus.
func ParseShipmentStatus(value string) (ShipmentStatus, error) {
	for _, candidate := range validShipmentStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid shipment status %q", value)
}
