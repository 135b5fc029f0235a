package utils

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const (
	tokenIssuer    = "genzfits-api"
	MinSecretBytes = 32
)

// SessionClaims identify a server-side session. Expiry is enforced by the
// session store, so the token itself carries no exp claim.
type SessionClaims struct {
	jwt.RegisteredClaims
}

// TokenSigner signs and verifies session cookie values.
type TokenSigner struct {
	secret []byte
}

func NewTokenSigner(secret string) (*TokenSigner, error) {
	raw := strings.TrimSpace(secret)
	if raw == "" {
		return nil, errors.New("token secret is required")
	}
	if len(raw) < MinSecretBytes {
		return nil, fmt.Errorf("token secret must be at least %d characters", MinSecretBytes)
	}
	return &TokenSigner{secret: []byte(raw)}, nil
}

// Sign returns a token naming the given session ID.
func (s *TokenSigner) Sign(sessionID string, issuedAt time.Time) (string, error) {
	if strings.TrimSpace(sessionID) == "" {
		return "", errors.New("session ID is empty")
	}

	claims := SessionClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:       sessionID,
			Issuer:   tokenIssuer,
			IssuedAt: jwt.NewNumericDate(issuedAt),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}

// Parse validates the token and returns the session ID it names.
func (s *TokenSigner) Parse(tokenString string) (string, error) {
	if strings.TrimSpace(tokenString) == "" {
		return "", errors.New("token is empty")
	}

	claims := &SessionClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if token.Method == nil || token.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.secret, nil
	}, jwt.WithIssuer(tokenIssuer))
	if err != nil {
		return "", err
	}

	if !token.Valid {
		return "", errors.New("invalid token")
	}

	if claims.ID == "" {
		return "", errors.New("invalid token session")
	}

	return claims.ID, nil
}
