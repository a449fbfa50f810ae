package handlers

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"zkdex-backend/internal/config"
	"zkdex-backend/internal/dto"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/sirupsen/logrus"
)

const (
	authMessagePrefix = "ZkDex Authentication"
	// Signed messages older than this are rejected, bounding replay of a
	// captured signature without a server-side nonce store.
	authMessageMaxAge = 5 * time.Minute
)

// jwtSecret resolves the signing key from configuration with an environment
// fallback for processes that run without a config file.
func jwtSecret() []byte {
	if config.AppConfig != nil && config.AppConfig.Auth.JWTSecret != "" {
		return []byte(config.AppConfig.Auth.JWTSecret)
	}
	if secret := os.Getenv("JWT_SECRET"); secret != "" {
		return []byte(secret)
	}
	return []byte("zkdex-jwt-secret-dev-only")
}

// AuthHandler wallet signature authentication handler
type AuthHandler struct {
	logger *logrus.Logger
}

type AuthRequest = dto.AuthRequest
type AuthResponse = dto.AuthResponse
type JWTClaims = dto.JWTClaims

// NewAuthHandler creates the authentication handler
func NewAuthHandler(logger *logrus.Logger) *AuthHandler {
	return &AuthHandler{logger: logger}
}

// GenerateNonceHandler issues a fresh nonce and the exact message text the
// wallet must sign. The flow is stateless; the timestamp embedded in the
// message bounds its validity.
func (h *AuthHandler) GenerateNonceHandler(c *gin.Context) {
	nonce := make([]byte, 16)
	if _, err := rand.Read(nonce); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"message": "Failed to generate nonce",
		})
		return
	}

	nonceStr := hex.EncodeToString(nonce)
	timestamp := time.Now().Unix()
	message := fmt.Sprintf("%s\nNonce: %s\nTimestamp: %d", authMessagePrefix, nonceStr, timestamp)

	c.JSON(http.StatusOK, gin.H{
		"success":   true,
		"nonce":     nonceStr,
		"message":   message,
		"timestamp": timestamp,
	})
}

// AuthenticateHandler verifies a wallet signature over the nonce message and
// issues a session token bound to the recovered address.
func (h *AuthHandler) AuthenticateHandler(c *gin.Context) {
	var req AuthRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, AuthResponse{
			Success: false,
			Message: fmt.Sprintf("Invalid request: %v", err),
		})
		return
	}

	if err := h.validateSignature(req.UserAddress, req.Message, req.Signature); err != nil {
		h.logger.WithFields(logrus.Fields{
			"user_address": req.UserAddress,
			"error":        err.Error(),
		}).Warn("Signature verification failed")

		c.JSON(http.StatusUnauthorized, AuthResponse{
			Success: false,
			Message: "Signature verification failed",
		})
		return
	}

	// Engines compare caller addresses byte for byte, so claims always
	// carry the lowercase form.
	userAddress := strings.ToLower(req.UserAddress)
	token, err := h.generateJWTToken(userAddress)
	if err != nil {
		c.JSON(http.StatusInternalServerError, AuthResponse{
			Success: false,
			Message: "Failed to generate token",
		})
		return
	}

	h.logger.WithField("user_address", userAddress).Info("User authenticated")

	c.JSON(http.StatusOK, AuthResponse{
		Success: true,
		Token:   token,
		Message: "Authentication successful",
	})
}

// validateSignature recovers the signer from a personal-sign signature and
// checks it matches the claimed address. The message must be one of ours and
// recent.
func (h *AuthHandler) validateSignature(userAddress, message, signature string) error {
	if !strings.HasPrefix(message, authMessagePrefix) {
		return fmt.Errorf("unexpected message format")
	}
	if err := checkMessageFreshness(message); err != nil {
		return err
	}

	sig, err := hexutil.Decode(signature)
	if err != nil {
		return fmt.Errorf("malformed signature: %w", err)
	}
	if len(sig) != 65 {
		return fmt.Errorf("signature must be 65 bytes, got %d", len(sig))
	}
	// Wallets produce V as 27/28, SigToPub expects 0/1.
	if sig[64] >= 27 {
		sig[64] -= 27
	}

	prefixed := fmt.Sprintf("\x19Ethereum Signed Message:\n%d%s", len(message), message)
	hash := crypto.Keccak256Hash([]byte(prefixed))

	pubKey, err := crypto.SigToPub(hash.Bytes(), sig)
	if err != nil {
		return fmt.Errorf("signature recovery failed: %w", err)
	}

	recovered := crypto.PubkeyToAddress(*pubKey)
	if !strings.EqualFold(recovered.Hex(), userAddress) {
		return fmt.Errorf("recovered address %s does not match %s", recovered.Hex(), userAddress)
	}

	return nil
}

// checkMessageFreshness parses the Timestamp line and rejects stale or
// future-dated messages.
func checkMessageFreshness(message string) error {
	var timestamp int64
	for _, line := range strings.Split(message, "\n") {
		if value, ok := strings.CutPrefix(line, "Timestamp: "); ok {
			parsed, err := strconv.ParseInt(value, 10, 64)
			if err != nil {
				return fmt.Errorf("malformed timestamp: %w", err)
			}
			timestamp = parsed
		}
	}
	if timestamp == 0 {
		return fmt.Errorf("message missing timestamp")
	}

	age := time.Since(time.Unix(timestamp, 0))
	if age > authMessageMaxAge {
		return fmt.Errorf("message expired")
	}
	if age < -time.Minute {
		return fmt.Errorf("message timestamp in the future")
	}
	return nil
}

// generateJWTToken issues a 24 hour session token
func (h *AuthHandler) generateJWTToken(userAddress string) (string, error) {
	claims := JWTClaims{
		UserAddress: userAddress,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(24 * time.Hour)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			NotBefore: jwt.NewNumericDate(time.Now()),
			Issuer:    "zkdex-backend",
			Subject:   userAddress,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(jwtSecret())
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}

	return tokenString, nil
}

// ValidateJWTToken verifies a user session token. Called by the auth
// middleware.
func ValidateJWTToken(tokenString string) (*JWTClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &JWTClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return jwtSecret(), nil
	})

	if err != nil {
		return nil, fmt.Errorf("failed to parse token: %w", err)
	}

	if claims, ok := token.Claims.(*JWTClaims); ok && token.Valid {
		return claims, nil
	}

	return nil, fmt.Errorf("invalid token")
}
