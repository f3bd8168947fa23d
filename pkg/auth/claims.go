package auth

import (
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/triplethreads/hubstock-backend/pkg/enums"
)

// AccessTokenPayload captures the data available when minting a JWT.
type AccessTokenPayload struct {
	UserID   uuid.UUID
	Username string
	Role     enums.Role
	HomeHub  string
	JTI      string
}

// AccessTokenClaims represents the typed JWT issued to clients.
type AccessTokenClaims struct {
	UserID   uuid.UUID  `json:"user_id"`
	Username string     `json:"username"`
	Role     enums.Role `json:"role"`
	HomeHub  string     `json:"home_hub,omitempty"`
	jwt.RegisteredClaims
}

// Actor is the authenticated identity handed to services for
// capability checks. Derived from claims by the auth middleware.
type Actor struct {
	UserID   uuid.UUID
	Username string
	Role     enums.Role
	HomeHub  string
}

// ActorFromClaims builds the service-facing identity out of verified claims.
func ActorFromClaims(claims *AccessTokenClaims) Actor {
	return Actor{
		UserID:   claims.UserID,
		Username: claims.Username,
		Role:     claims.Role,
		HomeHub:  claims.HomeHub,
	}
}

// IsAdmin reports whether the actor carries the admin role.
func (a Actor) IsAdmin() bool {
	return a.Role == enums.RoleAdmin
}

// CanAccessHub reports whether the actor may operate on the given hub.
// Admins reach every hub; stock-holding roles are pinned to their home hub.
func (a Actor) CanAccessHub(hub string) bool {
	if a.Role == enums.RoleAdmin {
		return true
	}
	return a.Role.HoldsStock() && a.HomeHub == hub
}
