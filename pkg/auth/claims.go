// Package auth provides JWT-based authentication for farmcare-engine.
// Account management itself lives in the hosted auth provider; this package
// only validates the tokens it issues, using JWKS endpoints.
package auth

import (
	"context"
	"fmt"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// contextKey is a custom type for context keys to avoid collisions.
type contextKey string

const (
	// ClaimsKey is the context key for storing JWT claims.
	ClaimsKey contextKey = "claims"
	// TokenKey is the context key for storing the raw JWT token string.
	TokenKey contextKey = "token"
)

// Claims represents the JWT claims issued by the hosted auth provider.
// It embeds RegisteredClaims for standard JWT fields (sub, iss, exp, etc.);
// the subject is the farmer's UUID.
type Claims struct {
	jwt.RegisteredClaims
	Email string `json:"email,omitempty"` // Farmer email address
	Name  string `json:"name,omitempty"`  // Farmer display name
}

// GetClaims retrieves JWT claims from the request context.
// Returns nil and false if claims are not present.
func GetClaims(ctx context.Context) (*Claims, bool) {
	claims, ok := ctx.Value(ClaimsKey).(*Claims)
	return claims, ok
}

// GetToken retrieves the raw JWT token string from the request context.
// Returns empty string and false if token is not present.
func GetToken(ctx context.Context) (string, bool) {
	token, ok := ctx.Value(TokenKey).(string)
	return token, ok
}

// FarmerIDFromContext extracts the farmer UUID from JWT claims in context.
// Returns an error if not authenticated or the subject is not a UUID.
func FarmerIDFromContext(ctx context.Context) (uuid.UUID, error) {
	claims, ok := GetClaims(ctx)
	if !ok || claims == nil {
		return uuid.Nil, fmt.Errorf("authentication required: no claims in context")
	}

	if claims.Subject == "" {
		return uuid.Nil, fmt.Errorf("missing subject in JWT claims")
	}

	farmerID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return uuid.Nil, fmt.Errorf("invalid farmer ID format: %w", err)
	}

	return farmerID, nil
}
