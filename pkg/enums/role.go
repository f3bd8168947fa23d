package enums

import "fmt"

// Role identifies the access level of an authenticated user.
type Role string

const (
	RoleAdmin      Role = "admin"
	RoleHubManager Role = "hub_manager"
	RoleRetail     Role = "retail"
	RoleSupplier   Role = "supplier"
)

var validRoles = []Role{
	RoleAdmin,
	RoleHubManager,
	RoleRetail,
	RoleSupplier,
}

// String implements fmt.Stringer.
func (r Role) String() string {
	return string(r)
}

// IsValid reports whether the value is a known Role.
func (r Role) IsValid() bool {
	for _, candidate := range validRoles {
		if candidate == r {
			return true
		}
	}
	return false
}

// HoldsStock reports whether users with this role operate against a home hub.
func (r Role) HoldsStock() bool {
	return r == RoleHubManager || r == RoleRetail
}

// ParseRole converts raw input into a Role.
func ParseRole(value string) (Role, error) {
	for _, candidate := range validRoles {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid role %q", value)
}
