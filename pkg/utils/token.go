package utils

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v4"
)

// SessionClaims is the payload of the session cookie. The cookie only names a
// server-side session; identity lives in the session store.
type SessionClaims struct {
	jwt.RegisteredClaims
}

// SignSessionToken wraps a session id into an HS256-signed cookie value.
func SignSessionToken(secret []byte, sessionID string, issuedAt time.Time) (string, error) {
	if len(secret) == 0 {
		return "", errors.New("session secret is missing")
	}

	claims := SessionClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:       sessionID,
			IssuedAt: jwt.NewNumericDate(issuedAt),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(secret)
}

// ParseSessionToken validates the signature and returns the session id.
func ParseSessionToken(secret []byte, tokenString string) (string, error) {
	if len(secret) == 0 {
		return "", errors.New("session secret is missing")
	}

	// Expiry is checked against the stored login time, not the token.
	claims := &SessionClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(*jwt.Token) (interface{}, error) {
		return secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithoutClaimsValidation())
	if err != nil {
		return "", err
	}
	if !token.Valid || claims.ID == "" {
		return "", errors.New("invalid session token")
	}
	return claims.ID, nil
}
