package handlers

import (
	"crypto/subtle"
	"fmt"
	"net/http"
	"os"
	"time"

	"zkdex-backend/internal/config"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/pquerna/otp"
	"github.com/pquerna/otp/totp"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
)

// AdminAuthHandler control-plane authentication handler. Login requires a
// password and a TOTP code; the issued token carries the admin role checked
// by the admin middleware.
type AdminAuthHandler struct {
	jwtSecret  []byte
	totpSecret string
	logger     *logrus.Logger
}

// AdminLoginRequest admin login request
type AdminLoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
	TOTPCode string `json:"totp_code" binding:"required"`
}

// AdminLoginResponse admin login response
type AdminLoginResponse struct {
	Success bool   `json:"success"`
	Token   string `json:"token,omitempty"`
	Message string `json:"message"`
}

// AdminJWTClaims admin JWT claims
type AdminJWTClaims struct {
	Username string `json:"username"`
	Role     string `json:"role"`
	jwt.RegisteredClaims
}

// NewAdminAuthHandler creates the admin authentication handler
func NewAdminAuthHandler(logger *logrus.Logger) *AdminAuthHandler {
	totpSecret := os.Getenv("ADMIN_TOTP_SECRET")
	if totpSecret == "" && config.AppConfig != nil {
		totpSecret = config.AppConfig.Auth.TOTPSecret
	}

	if totpSecret == "" || (os.Getenv("ADMIN_PASSWORD") == "" && os.Getenv("ADMIN_PASSWORD_HASH") == "") {
		logger.Warn("ADMIN_TOTP_SECRET or admin password not configured, admin login will be rejected")
	}

	return &AdminAuthHandler{
		jwtSecret:  adminJWTSecret(),
		totpSecret: totpSecret,
		logger:     logger,
	}
}

func adminJWTSecret() []byte {
	if secret := os.Getenv("ADMIN_JWT_SECRET"); secret != "" {
		return []byte(secret)
	}
	return []byte("zkdex-admin-jwt-secret-dev-only")
}

// AdminLoginHandler verifies the password and TOTP code and issues an admin
// token.
func (h *AdminAuthHandler) AdminLoginHandler(c *gin.Context) {
	if h.totpSecret == "" {
		c.JSON(http.StatusInternalServerError, AdminLoginResponse{
			Success: false,
			Message: "Server misconfiguration: ADMIN_TOTP_SECRET not set",
		})
		return
	}

	var req AdminLoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, AdminLoginResponse{
			Success: false,
			Message: fmt.Sprintf("Invalid request: %v", err),
		})
		return
	}

	expectedUsername := os.Getenv("ADMIN_USERNAME")
	if expectedUsername == "" {
		expectedUsername = "admin"
	}

	// Generic message for every credential failure so probes learn nothing
	// about which part was wrong.
	if req.Username != expectedUsername || !verifyAdminPassword(req.Password) {
		h.logger.WithField("username", req.Username).Warn("Admin login rejected - bad credentials")
		c.JSON(http.StatusUnauthorized, AdminLoginResponse{
			Success: false,
			Message: "Invalid credentials",
		})
		return
	}

	if !totp.Validate(req.TOTPCode, h.totpSecret) {
		h.logger.WithField("username", req.Username).Warn("Admin login rejected - bad TOTP code")
		c.JSON(http.StatusUnauthorized, AdminLoginResponse{
			Success: false,
			Message: "Invalid TOTP code",
		})
		return
	}

	token, err := h.generateAdminJWTToken(req.Username)
	if err != nil {
		c.JSON(http.StatusInternalServerError, AdminLoginResponse{
			Success: false,
			Message: "Failed to generate token",
		})
		return
	}

	h.logger.WithField("username", req.Username).Info("Admin authenticated")

	c.JSON(http.StatusOK, AdminLoginResponse{
		Success: true,
		Token:   token,
		Message: "Login successful",
	})
}

// verifyAdminPassword checks the supplied password against
// ADMIN_PASSWORD_HASH (bcrypt) when set, falling back to a constant-time
// comparison with the plain ADMIN_PASSWORD.
func verifyAdminPassword(password string) bool {
	if hash := os.Getenv("ADMIN_PASSWORD_HASH"); hash != "" {
		return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
	}
	expected := os.Getenv("ADMIN_PASSWORD")
	if expected == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(password), []byte(expected)) == 1
}

// GenerateTOTPSecretHandler generates a TOTP secret for initial setup. Only
// available while no secret is configured.
func (h *AdminAuthHandler) GenerateTOTPSecretHandler(c *gin.Context) {
	if h.totpSecret != "" {
		c.JSON(http.StatusForbidden, gin.H{
			"success": false,
			"error":   "TOTP secret already configured",
		})
		return
	}

	key, err := totp.Generate(totp.GenerateOpts{
		Issuer:      "ZkDex Admin",
		AccountName: "admin@zkdex",
		Period:      30,
		Digits:      otp.DigitsSix,
		Algorithm:   otp.AlgorithmSHA1,
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error":   "Failed to generate TOTP secret",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"secret":  key.Secret(),
		"url":     key.URL(),
		"message": "Save this secret securely to ADMIN_TOTP_SECRET env var. Use it to generate TOTP codes.",
	})
}

// generateAdminJWTToken issues a 24 hour admin token
func (h *AdminAuthHandler) generateAdminJWTToken(username string) (string, error) {
	claims := AdminJWTClaims{
		Username: username,
		Role:     "admin",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(24 * time.Hour)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			NotBefore: jwt.NewNumericDate(time.Now()),
			Issuer:    "zkdex-backend-admin",
			Subject:   username,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(h.jwtSecret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}

	return tokenString, nil
}

// ValidateAdminJWTToken verifies an admin token. Called by the admin
// middleware.
func ValidateAdminJWTToken(tokenString string) (*AdminJWTClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &AdminJWTClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return adminJWTSecret(), nil
	})

	if err != nil {
		return nil, fmt.Errorf("failed to parse token: %w", err)
	}

	if claims, ok := token.Claims.(*AdminJWTClaims); ok && token.Valid {
		return claims, nil
	}

	return nil, fmt.Errorf("invalid token")
}
