// Issues a JWT for a chosen address without going through wallet signing.
// Development helper for exercising the authenticated API by hand.
package main

import (
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"zkdex-backend/internal/dto"
)

func main() {
	address := flag.String("address", "0x742d35cc6634c0532925a3b0f26750c66d78eb66", "user address for the token")
	ttl := flag.Duration("ttl", 24*time.Hour, "token lifetime")
	flag.Parse()

	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		secret = "zkdex-jwt-secret-dev-only"
	}

	// The engines compare caller addresses byte for byte, so tokens carry
	// the lowercase form just like the login flow issues.
	userAddress := strings.ToLower(*address)

	now := time.Now()
	claims := dto.JWTClaims{
		UserAddress: userAddress,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(*ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			Issuer:    "zkdex-backend",
			Subject:   userAddress,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString([]byte(secret))
	if err != nil {
		fmt.Printf("Error generating token: %v\n", err)
		os.Exit(1)
	}

	fmt.Println("Token:")
	fmt.Println(tokenString)
	fmt.Println()
	fmt.Printf("  Address: %s\n", userAddress)
	fmt.Printf("  Expires: %s\n", claims.ExpiresAt.Time)
	fmt.Println()
	fmt.Printf("Usage: curl -H 'Authorization: Bearer %s...' http://localhost:8080/api/v1/swap/positions\n", tokenString[:16])
}
