package accounts

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// SessionClaims are the claims carried by session (access) tokens
type SessionClaims struct {
	jwt.RegisteredClaims
	UID       string     `json:"uid,omitempty"`
	Uname     string     `json:"username,omitempty"`
	RoleNames []RoleName `json:"roles,omitempty"`
}

// Subject returns the subject claim
func (c *SessionClaims) Subject() string {
	return c.RegisteredClaims.Subject
}

// UserID returns the user ID
func (c *SessionClaims) UserID() string {
	if c.UID != "" {
		return c.UID
	}
	return c.Subject()
}

// Username returns the username claim
func (c *SessionClaims) Username() string {
	return c.Uname
}

// Roles returns the role memberships carried by the token
func (c *SessionClaims) Roles() []RoleName {
	return c.RoleNames
}

// HasRole checks if the session carries a specific role
func (c *SessionClaims) HasRole(role RoleName) bool {
	return HasRole(c.RoleNames, role)
}

// Expires returns the expiration time
func (c *SessionClaims) Expires() time.Time {
	if c.RegisteredClaims.ExpiresAt != nil {
		return c.RegisteredClaims.ExpiresAt.Time
	}
	return time.Time{}
}

// IssuedAt returns the issued at time
func (c *SessionClaims) IssuedAt() time.Time {
	if c.RegisteredClaims.IssuedAt != nil {
		return c.RegisteredClaims.IssuedAt.Time
	}
	return time.Time{}
}
