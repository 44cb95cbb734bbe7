package shared

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taskhive/taskhive-api/internal/domain"
)

func TestTraceID(t *testing.T) {
	t.Parallel()

	ctx := SetTraceID(context.Background())
	traceID := GetTraceID(ctx)

	require.NotEmpty(t, traceID)
	assert.Len(t, traceID, TraceIDLength*2) // hex-encoded

	// A second context gets a different ID.
	other := GetTraceID(SetTraceID(context.Background()))
	assert.NotEqual(t, traceID, other)
}

func TestGetTraceIDMissing(t *testing.T) {
	t.Parallel()

	assert.Empty(t, GetTraceID(context.Background()))
}

func TestPrincipalRoundTrip(t *testing.T) {
	t.Parallel()

	principal := Principal{
		UserID: uuid.New(),
		Email:  "user@example.com",
		Role:   domain.RoleUser,
	}

	ctx := SetPrincipal(context.Background(), principal)
	got, ok := GetPrincipal(ctx)

	require.True(t, ok)
	assert.Equal(t, principal, got)
	assert.False(t, got.IsAdmin())
}

func TestGetPrincipalMissing(t *testing.T) {
	t.Parallel()

	_, ok := GetPrincipal(context.Background())
	assert.False(t, ok)
}

func TestGetPrincipalZeroUserID(t *testing.T) {
	t.Parallel()

	ctx := SetPrincipal(context.Background(), Principal{Email: "user@example.com"})
	_, ok := GetPrincipal(ctx)
	assert.False(t, ok)
}

func TestPrincipalIsAdmin(t *testing.T) {
	t.Parallel()

	admin := Principal{UserID: uuid.New(), Role: domain.RoleAdmin}
	assert.True(t, admin.IsAdmin())
}
