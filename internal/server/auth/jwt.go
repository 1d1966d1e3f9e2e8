// Package auth issues and validates the HS256 access tokens handed out at
// login. Tokens only carry the user id; the role is looked up per request.
package auth

import (
	"errors"
	"time"

	"github.com/dmitrijs2005/logitrack/internal/common"
	"github.com/golang-jwt/jwt/v5"
)

const issuer = "logitrack"

// Claims are the registered claims plus the user id.
type Claims struct {
	jwt.RegisteredClaims
	UserID string `json:"uid"`
}

func GenerateToken(userID string, secretKey []byte, validityDuration time.Duration) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(validityDuration)),
		},
		UserID: userID,
	})

	return token.SignedString(secretKey)
}

// GetUserIDFromToken validates tokenString and returns its user id.
// Expired tokens yield common.ErrTokenExpired, every other failure
// common.ErrInvalidToken.
func GetUserIDFromToken(tokenString string, secretKey []byte) (string, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		return secretKey, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithIssuer(issuer))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return "", common.ErrTokenExpired
		}
		return "", common.ErrInvalidToken
	}

	if !token.Valid || claims.UserID == "" {
		return "", common.ErrInvalidToken
	}

	return claims.UserID, nil
}
