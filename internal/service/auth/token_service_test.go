package auth

import (
	"context"
	"encoding/base64"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taskhive/taskhive-api/internal/domain"
)

const (
	testSecret      = "test-secret-that-is-long-enough-for-signing"
	wrongSecret     = "wrong-secret-that-is-long-enough-for-signing"
	accessLifetime  = 60 * time.Minute
	refreshLifetime = 24 * time.Hour
)

// craftToken assembles a compact JWS from raw header and payload JSON
// without going through the signing library, for header-level attack cases.
func craftToken(header, payload string) string {
	enc := base64.RawURLEncoding.EncodeToString
	return enc([]byte(header)) + "." + enc([]byte(payload)) + "." + enc([]byte("sig"))
}

func testIdentity() Identity {
	return Identity{
		UserID: uuid.New(),
		Email:  "a@x.com",
		Role:   domain.RoleUser,
	}
}

func TestIssuePair(t *testing.T) {
	t.Parallel()

	fixedTime := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	identity := testIdentity()
	svc := NewTestTokenService(testSecret, accessLifetime, refreshLifetime, func() time.Time {
		return fixedTime
	})

	pair, err := svc.IssuePair(context.Background(), identity)
	require.NoError(t, err)
	require.NotEmpty(t, pair.AccessToken)
	require.NotEmpty(t, pair.RefreshToken)
	assert.Equal(t, int64(accessLifetime.Seconds()), pair.ExpiresIn)

	t.Run("access token carries full identity", func(t *testing.T) {
		claims, err := svc.ValidateAccess(context.Background(), pair.AccessToken)
		require.NoError(t, err)

		assert.Equal(t, identity.UserID, claims.UserID)
		assert.Equal(t, identity.Email, claims.Email)
		assert.Equal(t, domain.RoleUser, claims.Role)
		assert.Equal(t, "access", claims.TokenType)
		assert.Equal(t, fixedTime.Unix(), claims.IssuedAt.Unix())
		assert.Equal(t, fixedTime.Add(accessLifetime).Unix(), claims.ExpiresAt.Unix())
		assert.NotEmpty(t, claims.ID)
	})

	t.Run("refresh token carries identity only", func(t *testing.T) {
		claims, err := svc.ValidateRefresh(context.Background(), pair.RefreshToken)
		require.NoError(t, err)

		assert.Equal(t, identity.UserID, claims.UserID)
		assert.Empty(t, claims.Email)
		assert.Equal(t, "refresh", claims.TokenType)
		assert.Equal(t, fixedTime.Add(refreshLifetime).Unix(), claims.ExpiresAt.Unix())
	})

	t.Run("distinct lifetimes", func(t *testing.T) {
		access, _ := svc.ValidateAccess(context.Background(), pair.AccessToken)
		refresh, _ := svc.ValidateRefresh(context.Background(), pair.RefreshToken)
		assert.True(t, refresh.ExpiresAt.After(access.ExpiresAt))
	})
}

func TestValidateAccess(t *testing.T) {
	t.Parallel()

	fixedTime := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	identity := testIdentity()

	tests := []struct {
		name      string
		setupFunc func() (TokenService, string)
		wantErr   error
	}{
		{
			name: "valid token",
			setupFunc: func() (TokenService, string) {
				svc := NewTestTokenService(testSecret, accessLifetime, refreshLifetime, func() time.Time {
					return fixedTime
				})
				pair, _ := svc.IssuePair(context.Background(), identity)
				return svc, pair.AccessToken
			},
			wantErr: nil,
		},
		{
			name: "expired token",
			setupFunc: func() (TokenService, string) {
				genSvc := NewTestTokenService(testSecret, accessLifetime, refreshLifetime, func() time.Time {
					return fixedTime
				})
				pair, _ := genSvc.IssuePair(context.Background(), identity)

				// Validate from a clock past the expiry.
				valSvc := NewTestTokenService(testSecret, accessLifetime, refreshLifetime, func() time.Time {
					return fixedTime.Add(accessLifetime + time.Minute)
				})
				return valSvc, pair.AccessToken
			},
			wantErr: ErrExpiredToken,
		},
		{
			name: "tampered signature",
			setupFunc: func() (TokenService, string) {
				genSvc := NewTestTokenService(wrongSecret, accessLifetime, refreshLifetime, func() time.Time {
					return fixedTime
				})
				pair, _ := genSvc.IssuePair(context.Background(), identity)

				valSvc := NewTestTokenService(testSecret, accessLifetime, refreshLifetime, func() time.Time {
					return fixedTime
				})
				return valSvc, pair.AccessToken
			},
			wantErr: ErrInvalidToken,
		},
		{
			name: "malformed token",
			setupFunc: func() (TokenService, string) {
				svc := NewTestTokenService(testSecret, accessLifetime, refreshLifetime, func() time.Time {
					return fixedTime
				})
				return svc, "not.a.token"
			},
			wantErr: ErrInvalidToken,
		},
		{
			name: "unknown signing algorithm",
			setupFunc: func() (TokenService, string) {
				svc := NewTestTokenService(testSecret, accessLifetime, refreshLifetime, func() time.Time {
					return fixedTime
				})
				token := craftToken(`{"alg":"HS999","typ":"JWT"}`,
					`{"sub":"`+identity.UserID.String()+`","type":"access"}`)
				return svc, token
			},
			wantErr: ErrTokenVerification,
		},
		{
			name: "signed token without expiry",
			setupFunc: func() (TokenService, string) {
				svc := NewTestTokenService(testSecret, accessLifetime, refreshLifetime, func() time.Time {
					return fixedTime
				})

				// Correctly signed but missing exp entirely. Must be
				// rejected, not dereferenced.
				claims := tokenClaims{
					TokenType: tokenTypeAccess,
					RegisteredClaims: jwt.RegisteredClaims{
						Subject: identity.UserID.String(),
					},
				}
				signed, _ := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).
					SignedString([]byte(testSecret))
				return svc, signed
			},
			wantErr: ErrTokenVerification,
		},
		{
			name: "refresh token rejected as access",
			setupFunc: func() (TokenService, string) {
				svc := NewTestTokenService(testSecret, accessLifetime, refreshLifetime, func() time.Time {
					return fixedTime
				})
				pair, _ := svc.IssuePair(context.Background(), identity)
				return svc, pair.RefreshToken
			},
			wantErr: ErrWrongTokenType,
		},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			svc, token := tc.setupFunc()
			claims, err := svc.ValidateAccess(context.Background(), token)

			if tc.wantErr == nil {
				require.NoError(t, err)
				assert.Equal(t, identity.UserID, claims.UserID)
				return
			}

			assert.ErrorIs(t, err, tc.wantErr)
			assert.Nil(t, claims)
		})
	}
}

func TestValidateRefresh(t *testing.T) {
	t.Parallel()

	fixedTime := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	identity := testIdentity()

	t.Run("access token rejected as refresh", func(t *testing.T) {
		t.Parallel()

		svc := NewTestTokenService(testSecret, accessLifetime, refreshLifetime, func() time.Time {
			return fixedTime
		})
		pair, err := svc.IssuePair(context.Background(), identity)
		require.NoError(t, err)

		_, err = svc.ValidateRefresh(context.Background(), pair.AccessToken)
		assert.ErrorIs(t, err, ErrWrongTokenType)
	})

	t.Run("expired refresh token", func(t *testing.T) {
		t.Parallel()

		genSvc := NewTestTokenService(testSecret, accessLifetime, refreshLifetime, func() time.Time {
			return fixedTime
		})
		pair, err := genSvc.IssuePair(context.Background(), identity)
		require.NoError(t, err)

		valSvc := NewTestTokenService(testSecret, accessLifetime, refreshLifetime, func() time.Time {
			return fixedTime.Add(refreshLifetime + time.Minute)
		})
		_, err = valSvc.ValidateRefresh(context.Background(), pair.RefreshToken)
		assert.ErrorIs(t, err, ErrExpiredRefreshToken)
	})
}

func TestExtractFromHeader(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		header string
		want   string
	}{
		{name: "valid bearer", header: "Bearer abc.def.ghi", want: "abc.def.ghi"},
		{name: "empty header", header: "", want: ""},
		{name: "missing scheme", header: "abc.def.ghi", want: ""},
		{name: "wrong scheme", header: "Basic abc.def.ghi", want: ""},
		{name: "lowercase scheme", header: "bearer abc.def.ghi", want: ""},
		{name: "too many parts", header: "Bearer abc def", want: ""},
		{name: "scheme only", header: "Bearer", want: ""},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tc.want, ExtractFromHeader(tc.header))
		})
	}
}

func TestNewTokenService(t *testing.T) {
	t.Parallel()

	t.Run("rejects short secret", func(t *testing.T) {
		t.Parallel()

		cfg := DefaultTestAuthConfig()
		cfg.JWTSecret = "short"
		_, err := NewTokenService(cfg)
		assert.Error(t, err)
	})

	t.Run("accepts valid config", func(t *testing.T) {
		t.Parallel()

		svc, err := NewTokenService(DefaultTestAuthConfig())
		require.NoError(t, err)
		require.NotNil(t, svc)
	})
}

func TestHashPassword(t *testing.T) {
	t.Parallel()

	hash, err := HashPassword("Secret1", 4)
	require.NoError(t, err)
	require.NotEmpty(t, hash)

	verifier := NewBcryptVerifier()
	assert.NoError(t, verifier.Compare(hash, "Secret1"))
	assert.Error(t, verifier.Compare(hash, "Secret2"))
}
