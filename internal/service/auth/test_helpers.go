package auth

import (
	"time"

	"github.com/taskhive/taskhive-api/internal/config"
)

// DefaultTestAuthConfig returns a standard auth configuration for tests.
func DefaultTestAuthConfig() config.AuthConfig {
	return config.AuthConfig{
		JWTSecret:                   "test-jwt-secret-that-is-32-chars-long",
		TokenLifetimeMinutes:        60,
		RefreshTokenLifetimeMinutes: 1440,
	}
}

// NewTestTokenService creates a token service with an injectable clock. The
// clock skew is zeroed so expiry tests behave at exact boundaries.
func NewTestTokenService(secret string, accessLifetime, refreshLifetime time.Duration, timeFunc func() time.Time) TokenService {
	return &hmacTokenService{
		signingKey:      []byte(secret),
		accessLifetime:  accessLifetime,
		refreshLifetime: refreshLifetime,
		timeFunc:        timeFunc,
		clockSkew:       0,
	}
}
