package auth

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/taskhive/taskhive-api/internal/domain"
)

// Identity is the user information carried into token issuance.
type Identity struct {
	UserID uuid.UUID
	Email  string
	Role   domain.Role
}

// TokenPair is an issued access/refresh token pair. ExpiresIn is the access
// token lifetime in seconds, for clients that schedule refreshes.
type TokenPair struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
	ExpiresIn    int64  `json:"expiresIn"`
}

// Claims represents the validated contents of a token. Email and Role are
// only present on access tokens; refresh tokens carry the user ID alone.
type Claims struct {
	UserID    uuid.UUID
	Email     string
	Role      domain.Role
	TokenType string
	Subject   string
	IssuedAt  time.Time
	ExpiresAt time.Time
	ID        string
}

// TokenService defines operations for managing JWT authentication tokens.
type TokenService interface {
	// IssuePair creates a signed access/refresh token pair for the given
	// identity. The access token carries email and role in addition to the
	// user ID; both tokens carry issued-at and expiry timestamps.
	IssuePair(ctx context.Context, identity Identity) (*TokenPair, error)

	// ValidateAccess validates an access token and extracts its claims.
	// Fails with ErrExpiredToken when past expiry, ErrInvalidToken on a
	// signature or structure mismatch, ErrWrongTokenType when handed a
	// refresh token, and ErrTokenVerification for any other decode error.
	ValidateAccess(ctx context.Context, tokenString string) (*Claims, error)

	// ValidateRefresh validates a refresh token and extracts its claims,
	// with the refresh-specific error variants.
	ValidateRefresh(ctx context.Context, tokenString string) (*Claims, error)
}

// ExtractFromHeader pulls the bearer token out of an Authorization header
// value. Only the exact two-part "Bearer <token>" form is accepted; any
// other shape yields the empty string, not an error.
func ExtractFromHeader(headerValue string) string {
	parts := strings.Split(headerValue, " ")
	if len(parts) != 2 || parts[0] != "Bearer" {
		return ""
	}
	return parts[1]
}
