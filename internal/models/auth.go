package models

import "github.com/golang-jwt/jwt/v5"

// StaffRole identifies which shared-password gate a session came through.
type StaffRole string

const (
	RoleAdmin   StaffRole = "admin"
	RoleLibrary StaffRole = "library"
)

// SessionClaims are embedded in staff session tokens.
type SessionClaims struct {
	Role StaffRole `json:"role"`
	jwt.RegisteredClaims
}

// LoginRequest is the shared-password login payload.
type LoginRequest struct {
	Role     StaffRole `json:"role" validate:"required,oneof=admin library"`
	Password string    `json:"password" validate:"required"`
}

// LoginResponse carries the issued session token.
type LoginResponse struct {
	Token     string    `json:"token"`
	Role      StaffRole `json:"role"`
	ExpiresAt int64     `json:"expires_at"`
}
