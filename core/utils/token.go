package utils

import (
	stderrors "errors"
	"fmt"
	"time"

	"venue-booking/core/errors"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

type TokenData struct {
	CustomerID uuid.UUID
	Role       string
}

type tokenClaims struct {
	CustomerID string `json:"customer_id"`
	Role       string `json:"role,omitempty"`
	jwt.RegisteredClaims
}

// GenerateToken signs an HS256 token for the customer.
func GenerateToken(secret, issuer string, customerID uuid.UUID, role string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := tokenClaims{
		CustomerID: customerID.String(),
		Role:       role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   customerID.String(),
			Issuer:    issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
}

func ValidateAndParseToken(secret, token string) (*TokenData, error) {
	claims := &tokenClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil {
		if stderrors.Is(err, jwt.ErrTokenExpired) {
			return nil, errors.NewAppError(errors.ErrTokenExpired, "Token expired", err)
		}
		return nil, errors.NewAppError(errors.ErrInvalidTokenFormat, "Invalid token", err)
	}
	if !parsed.Valid {
		return nil, errors.NewAppError(errors.ErrInvalidTokenFormat, "Invalid token", nil)
	}

	raw := claims.CustomerID
	if raw == "" {
		raw = claims.Subject
	}
	customerID, err := uuid.Parse(raw)
	if err != nil {
		return nil, errors.NewAppError(errors.ErrInvalidTokenFormat, "Invalid customer id in token", err)
	}

	return &TokenData{CustomerID: customerID, Role: claims.Role}, nil
}
