package models

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// UserClaims represents the JWT claims of a session token.
// The member ID travels in the standard "sub" claim.
type UserClaims struct {
	Email string `json:"email"`
	Role  Role   `json:"role"`
	jwt.RegisteredClaims
}

// AuthenticatedUser represents the authenticated user context
type AuthenticatedUser struct {
	MemberID  string    `json:"memberId"`
	Email     string    `json:"email"`
	Role      Role      `json:"role"`
	IssuedAt  time.Time `json:"issuedAt"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// NewAuthenticatedUser creates an AuthenticatedUser from verified claims
func NewAuthenticatedUser(claims *UserClaims) *AuthenticatedUser {
	user := &AuthenticatedUser{
		MemberID: claims.Subject,
		Email:    claims.Email,
		Role:     claims.Role,
	}
	if claims.IssuedAt != nil {
		user.IssuedAt = claims.IssuedAt.Time
	}
	if claims.ExpiresAt != nil {
		user.ExpiresAt = claims.ExpiresAt.Time
	}
	return user
}

// HasPermission is the single authorization predicate used by every gated endpoint
func (u *AuthenticatedUser) HasPermission(permission Permission) bool {
	if u == nil || !u.Role.IsValid() {
		return false
	}
	return u.Role.HasPermission(permission)
}

// IsAdmin checks if the user has admin role
func (u *AuthenticatedUser) IsAdmin() bool {
	return u != nil && u.Role == RoleAdmin
}

// IsMember checks if the user has member role
func (u *AuthenticatedUser) IsMember() bool {
	return u != nil && u.Role == RoleMember
}
