package auth

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// JWTService verifies the bearer tokens issued by the hosted auth provider
// and can mint compatible tokens for development and tests.
type JWTService interface {
	// GenerateToken creates a signed HS256 token whose subject is ownerID.
	GenerateToken(ctx context.Context, ownerID uuid.UUID) (string, error)

	// ValidateToken verifies the signature, time claims and audience of the
	// token and extracts the owner from its subject.
	// Returns ErrExpiredToken, ErrTokenNotYetValid or ErrInvalidToken.
	ValidateToken(ctx context.Context, tokenString string) (*Claims, error)
}

// Claims holds the verified contents of a token.
type Claims struct {
	// OwnerID is the subject parsed as a UUID.
	OwnerID uuid.UUID

	Subject   string
	Audience  []string
	IssuedAt  time.Time
	ExpiresAt time.Time
	ID        string
}
