package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/taskhive/taskhive-api/internal/config"
	"github.com/taskhive/taskhive-api/internal/domain"
	"github.com/taskhive/taskhive-api/internal/platform/logger"
)

// Token type claim values.
const (
	tokenTypeAccess  = "access"
	tokenTypeRefresh = "refresh"
)

// hmacTokenService is an implementation of TokenService using HMAC-SHA256
// signing with a process-wide secret read once from configuration.
type hmacTokenService struct {
	signingKey      []byte
	accessLifetime  time.Duration
	refreshLifetime time.Duration
	timeFunc        func() time.Time // Injectable for testing
	clockSkew       time.Duration    // Leeway for clock drift during validation
}

// tokenClaims is the on-the-wire claims structure.
type tokenClaims struct {
	Email     string `json:"email,omitempty"`
	Role      string `json:"role,omitempty"`
	TokenType string `json:"type"`
	jwt.RegisteredClaims
}

var _ TokenService = (*hmacTokenService)(nil)

// NewTokenService creates a TokenService using HMAC-SHA256 signing.
func NewTokenService(cfg config.AuthConfig) (TokenService, error) {
	if len(cfg.JWTSecret) < 32 {
		return nil, fmt.Errorf("jwt secret must be at least 32 characters")
	}

	return &hmacTokenService{
		signingKey:      []byte(cfg.JWTSecret),
		accessLifetime:  time.Duration(cfg.TokenLifetimeMinutes) * time.Minute,
		refreshLifetime: time.Duration(cfg.RefreshTokenLifetimeMinutes) * time.Minute,
		timeFunc:        time.Now,
		clockSkew:       2 * time.Minute,
	}, nil
}

// IssuePair implements TokenService.IssuePair.
func (s *hmacTokenService) IssuePair(ctx context.Context, identity Identity) (*TokenPair, error) {
	log := logger.FromContext(ctx)

	access, err := s.sign(identity, tokenTypeAccess, s.accessLifetime)
	if err != nil {
		log.Error("failed to sign access token",
			"error", err, "user_id", identity.UserID)
		return nil, fmt.Errorf("failed to sign access token: %w", err)
	}

	refresh, err := s.sign(identity, tokenTypeRefresh, s.refreshLifetime)
	if err != nil {
		log.Error("failed to sign refresh token",
			"error", err, "user_id", identity.UserID)
		return nil, fmt.Errorf("failed to sign refresh token: %w", err)
	}

	return &TokenPair{
		AccessToken:  access,
		RefreshToken: refresh,
		ExpiresIn:    int64(s.accessLifetime.Seconds()),
	}, nil
}

// sign builds and signs a single token. Refresh tokens carry only the user
// identity; access tokens additionally carry email and role.
func (s *hmacTokenService) sign(identity Identity, tokenType string, lifetime time.Duration) (string, error) {
	now := s.timeFunc()

	claims := tokenClaims{
		TokenType: tokenType,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   identity.UserID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(lifetime)),
			ID:        uuid.New().String(),
		},
	}
	if tokenType == tokenTypeAccess {
		claims.Email = identity.Email
		claims.Role = string(identity.Role)
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.signingKey)
}

// ValidateAccess implements TokenService.ValidateAccess.
func (s *hmacTokenService) ValidateAccess(ctx context.Context, tokenString string) (*Claims, error) {
	return s.validate(ctx, tokenString, tokenTypeAccess, ErrExpiredToken, ErrInvalidToken)
}

// ValidateRefresh implements TokenService.ValidateRefresh.
func (s *hmacTokenService) ValidateRefresh(ctx context.Context, tokenString string) (*Claims, error) {
	return s.validate(ctx, tokenString, tokenTypeRefresh, ErrExpiredRefreshToken, ErrInvalidRefreshToken)
}

func (s *hmacTokenService) validate(
	ctx context.Context,
	tokenString string,
	wantType string,
	expiredErr, invalidErr error,
) (*Claims, error) {
	log := logger.FromContext(ctx)
	now := s.timeFunc()

	parserOpts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Name}),
		jwt.WithExpirationRequired(),
		jwt.WithLeeway(s.clockSkew),
		jwt.WithTimeFunc(func() time.Time { return now }),
	}

	token, err := jwt.ParseWithClaims(
		tokenString,
		&tokenClaims{},
		func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
			}
			return s.signingKey, nil
		},
		parserOpts...)

	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenExpired):
			log.Debug("token validation failed: expired",
				"token_type", wantType)
			return nil, expiredErr
		case errors.Is(err, jwt.ErrTokenMalformed),
			errors.Is(err, jwt.ErrTokenSignatureInvalid),
			errors.Is(err, jwt.ErrTokenNotValidYet):
			log.Debug("token validation failed: invalid",
				"error", err, "token_type", wantType)
			return nil, invalidErr
		default:
			log.Debug("token validation failed: other decode error",
				"error", err, "token_type", wantType,
				"error_type", fmt.Sprintf("%T", err))
			return nil, ErrTokenVerification
		}
	}

	claims, ok := token.Claims.(*tokenClaims)
	if !ok || !token.Valid {
		log.Debug("token validation failed: invalid claims")
		return nil, invalidErr
	}

	if claims.TokenType != wantType {
		log.Debug("token validation failed: wrong token type",
			"expected", wantType, "actual", claims.TokenType)
		return nil, ErrWrongTokenType
	}

	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		log.Debug("token validation failed: malformed subject",
			"token_type", wantType)
		return nil, invalidErr
	}

	// exp is enforced by WithExpirationRequired; iat stays optional, so
	// guard both dereferences rather than trust the issuer.
	var issuedAt, expiresAt time.Time
	if claims.IssuedAt != nil {
		issuedAt = claims.IssuedAt.Time
	}
	if claims.ExpiresAt != nil {
		expiresAt = claims.ExpiresAt.Time
	}

	return &Claims{
		UserID:    userID,
		Email:     claims.Email,
		Role:      domain.Role(claims.Role),
		TokenType: claims.TokenType,
		Subject:   claims.Subject,
		IssuedAt:  issuedAt,
		ExpiresAt: expiresAt,
		ID:        claims.ID,
	}, nil
}
