package dto

import "github.com/golang-jwt/jwt/v5"

// ==================== Auth DTOs ====================

// NonceRequest nonce issuance request
type NonceRequest struct {
	UserAddress string `json:"user_address" binding:"required"` // wallet address
}

// NonceResponse nonce issuance response. Message is the exact text the
// wallet must sign.
type NonceResponse struct {
	Success bool   `json:"success"`
	Nonce   string `json:"nonce"`
	Message string `json:"message"`
}

// AuthRequest authentication request structure
type AuthRequest struct {
	UserAddress string `json:"user_address" binding:"required"` // wallet address
	Message     string `json:"message" binding:"required"`      // signed message text
	Signature   string `json:"signature" binding:"required"`    // 65-byte hex signature
}

// AuthResponse authentication response structure
type AuthResponse struct {
	Success bool   `json:"success"`
	Token   string `json:"token,omitempty"`
	Message string `json:"message"`
}

// JWTClaims JWT claims structure
type JWTClaims struct {
	UserAddress string `json:"user_address"` // wallet address
	jwt.RegisteredClaims
}
