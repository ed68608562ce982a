package token

import (
	"time"

	"github.com/golang-jwt/jwt/v5"

	"chatwave/pkg/errors"
)

// JWTManager issues and verifies the HS256 bearer tokens that identify a
// user on both the REST API and the realtime channel.
type JWTManager struct {
	secret []byte
	expiry time.Duration
}

func NewJWTManager(secret string, expiry time.Duration) *JWTManager {
	return &JWTManager{
		secret: []byte(secret),
		expiry: expiry,
	}
}

func (m *JWTManager) Generate(userID string) (string, error) {
	if userID == "" {
		return "", errors.Internal("cannot issue token for empty user ID", nil)
	}

	now := time.Now()
	claims := jwt.MapClaims{
		"sub": userID,
		"iat": now.Unix(),
		"exp": now.Add(m.expiry).Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	signed, err := token.SignedString(m.secret)
	if err != nil {
		return "", errors.Internal("failed to sign token", err)
	}

	return signed, nil
}

// Verify resolves a bearer credential to the user ID it was issued for.
func (m *JWTManager) Verify(tokenString string) (string, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.Unauthorized("unexpected signing method", nil)
		}
		return m.secret, nil
	})
	if err != nil {
		return "", errors.Unauthorized("Invalid or expired token", err)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return "", errors.Unauthorized("Invalid token claims", nil)
	}

	sub, ok := claims["sub"].(string)
	if !ok || sub == "" {
		return "", errors.Unauthorized("Token missing subject", nil)
	}

	return sub, nil
}
