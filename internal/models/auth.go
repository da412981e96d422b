package models

import "github.com/golang-jwt/jwt/v5"

// LoginRequest holds credentials for authenticating a user.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// LoginResponse returns the issued token and the user's role.
type LoginResponse struct {
	Token string   `json:"token"`
	Role  UserRole `json:"role"`
}

// JWTClaims represents the identity claim carried by access tokens.
type JWTClaims struct {
	UserID    int64    `json:"user_id"`
	Role      UserRole `json:"role"`
	FirstName string   `json:"first_name"`
	jwt.RegisteredClaims
}

// IsAdmin reports whether the claim carries the admin role.
func (c *JWTClaims) IsAdmin() bool {
	return c != nil && c.Role == RoleAdmin
}
