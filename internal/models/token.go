package models

import "github.com/golang-jwt/jwt/v5"

// JWTClaims carries authenticated user identity through requests.
type JWTClaims struct {
	UserID   string   `json:"user_id"`
	Email    string   `json:"email"`
	FullName string   `json:"name"`
	Roll     string   `json:"roll,omitempty"`
	Role     UserRole `json:"role"`
	jwt.RegisteredClaims
}
