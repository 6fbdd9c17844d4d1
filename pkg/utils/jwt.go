package utils

import (
	"os"

	"github.com/golang-jwt/jwt/v5"
)

// ValidateToken parses and verifies a token issued by the identity
// service. Token issuance lives there; this API only validates.
func ValidateToken(tokenString string) (*jwt.Token, error) {
	return jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		return []byte(os.Getenv("JWT_SECRET")), nil
	})
}
