package enums

import "fmt"

// MovementAction is the direction of an inventory movement. The stored
// values match the legacy log rows ("IN"/"OUT").
type MovementAction string

const (
	MovementIn  MovementAction = "IN"
	MovementOut MovementAction = "OUT"
)

var validMovementActions = []MovementAction{
	MovementIn,
	MovementOut,
}

// String implements fmt.Stringer.
func (m MovementAction) String() string {
	return string(m)
}

// IsValid reports whether the value is a known MovementAction.
func (m MovementAction) IsValid() bool {
	for _, candidate := range validMovementActions {
		if candidate == m {
			return true
		}
	}
	return false
}

// Sign returns +1 for IN and -1 for OUT.
func (m MovementAction) Sign() int {
	if m == MovementOut {
		return -1
	}
	return 1
}

// ParseMovementAction converts raw input into a MovementAction.
func ParseMovementAction(value string) (MovementAction, error) {
	for _, candidate := range validMovementActions {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid movement action %q", value)
}
