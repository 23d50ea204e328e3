package util

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Token purposes. Access tokens authenticate API calls, session tokens back
// the refresh flow, reset tokens are mailed out for password recovery.
const (
	PurposeAccess  = "access"
	PurposeSession = "session"
	PurposeReset   = "reset"
)

// Claims carries the authenticated user's identity and role.
type Claims struct {
	UserID    uint   `json:"user_id"`
	Role      string `json:"role"`
	Purpose   string `json:"purpose"`
	SessionID string `json:"session_id,omitempty"`
	jwt.RegisteredClaims
}

// GenerateToken signs a JWT for the given user with the given purpose and TTL.
func GenerateToken(secret string, userID uint, role, purpose string, ttl time.Duration) (string, error) {
	return GenerateSessionToken(secret, userID, role, purpose, "", ttl)
}

// GenerateSessionToken is GenerateToken with a session id bound into the claims.
func GenerateSessionToken(secret string, userID uint, role, purpose, sessionID string, ttl time.Duration) (string, error) {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	now := time.Now()
	claims := &Claims{
		UserID:    userID,
		Role:      role,
		Purpose:   purpose,
		SessionID: sessionID,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

// ParseToken parses and validates a JWT, checking it was issued for purpose.
func ParseToken(secret, tokenStr, purpose string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		return []byte(secret), nil
	})
	if err != nil {
		return nil, err
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, jwt.ErrTokenInvalidClaims
	}
	if claims.Purpose != purpose {
		return nil, fmt.Errorf("token purpose %q, want %q", claims.Purpose, purpose)
	}
	return claims, nil
}
