package security

import (
	"errors"
	"time"

	"github.com/go-chi/jwtauth/v5"
	"github.com/golang-jwt/jwt/v5"
)

// NewTokenAuth verifies Supabase access tokens, which are HS256-signed with
// the project's JWT secret. It returns nil when no secret is configured.
func NewTokenAuth(secret []byte) *jwtauth.JWTAuth {
	if len(secret) == 0 {
		return nil
	}
	return jwtauth.New("HS256", secret, nil)
}

// GenerateToken issues a token shaped like a Supabase session token. The
// service itself never logs anyone in; this exists for local tooling.
func GenerateToken(ta *jwtauth.JWTAuth, userID string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"sub":  userID,
		"role": "authenticated",
		"aud":  "authenticated",
		"exp":  now.Add(ttl).Unix(),
		"iat":  now.Unix(),
	}
	_, tokenString, err := ta.Encode(claims)
	return tokenString, err
}

func GetUserIDFromClaims(claims jwt.MapClaims) (string, error) {
	id, ok := claims["sub"].(string)
	if !ok || id == "" {
		return "", errors.New("sub claim is missing or not a string")
	}
	return id, nil
}
