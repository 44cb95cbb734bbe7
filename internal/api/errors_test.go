package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taskhive/taskhive-api/internal/api/shared"
	"github.com/taskhive/taskhive-api/internal/domain"
	"github.com/taskhive/taskhive-api/internal/service/auth"
	"github.com/taskhive/taskhive-api/internal/store"
)

func TestMapErrorToStatusCode(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name           string
		err            error
		expectedStatus int
	}{
		{"invalid token", auth.ErrInvalidToken, http.StatusUnauthorized},
		{"expired token", auth.ErrExpiredToken, http.StatusUnauthorized},
		{"invalid refresh token", auth.ErrInvalidRefreshToken, http.StatusUnauthorized},
		{"expired refresh token", auth.ErrExpiredRefreshToken, http.StatusUnauthorized},
		{"wrong token type", auth.ErrWrongTokenType, http.StatusUnauthorized},
		{"verification fallthrough", auth.ErrTokenVerification, http.StatusUnauthorized},
		{"missing token", auth.ErrMissingToken, http.StatusUnauthorized},
		{"user not found", store.ErrUserNotFound, http.StatusNotFound},
		{"task not found", store.ErrTaskNotFound, http.StatusNotFound},
		{"generic not found", store.ErrNotFound, http.StatusNotFound},
		{"email exists", store.ErrEmailExists, http.StatusConflict},
		{"generic duplicate", store.ErrDuplicate, http.StatusConflict},
		{"validation failure", domain.ErrValidation, http.StatusBadRequest},
		{"validation error type", domain.NewValidationError("title", "is required"), http.StatusBadRequest},
		{"invalid id", domain.ErrInvalidID, http.StatusBadRequest},
		{"invalid entity", store.ErrInvalidEntity, http.StatusBadRequest},
		{"wrapped sentinel", fmt.Errorf("context: %w", store.ErrTaskNotFound), http.StatusNotFound},
		{"unknown error", errors.New("something broke"), http.StatusInternalServerError},
		{"nil error", nil, http.StatusInternalServerError},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, tc.expectedStatus, MapErrorToStatusCode(tc.err))
		})
	}
}

func TestGetSafeErrorMessage(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name            string
		err             error
		expectedMessage string
	}{
		{"expired token", auth.ErrExpiredToken, "Token expired"},
		{"invalid token", auth.ErrInvalidToken, "Invalid token"},
		{"verification fallthrough", auth.ErrTokenVerification, "Invalid token"},
		{"refresh variants", auth.ErrInvalidRefreshToken, "Invalid refresh token"},
		{"user not found", store.ErrUserNotFound, "User not found"},
		{"task not found", store.ErrTaskNotFound, "Task not found"},
		{"email exists", store.ErrEmailExists, "Email already exists"},
		{"validation", domain.ErrValidation, "Validation failed"},
		{"invalid entity", store.ErrInvalidEntity, "Invalid entity data"},
		{"unknown error never leaks", errors.New("pq: connection refused host=10.0.0.1"), "An unexpected error occurred"},
		{"nil error", nil, "An unexpected error occurred"},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			message := GetSafeErrorMessage(tc.err)
			assert.Equal(t, tc.expectedMessage, message)

			// Internal detail must never surface.
			if tc.err != nil {
				assert.NotContains(t, message, "10.0.0.1")
			}
		})
	}
}

func TestHandleAPIErrorValidationFields(t *testing.T) {
	t.Parallel()

	err := domain.NewValidationError("title", "is required").
		Add("priority", "must be one of low, medium, high")

	req := httptest.NewRequest(http.MethodPost, "/tasks", nil)
	w := httptest.NewRecorder()

	HandleAPIError(w, req, err, "")

	assert.Equal(t, http.StatusBadRequest, w.Code)

	var response shared.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))

	assert.Equal(t, shared.StatusError, response.Status)
	require.Len(t, response.Errors, 2)
	assert.Equal(t, "title", response.Errors[0].Field)
	assert.Equal(t, "priority", response.Errors[1].Field)
}

func TestHandleAPIErrorDefaultMessage(t *testing.T) {
	t.Parallel()

	req := httptest.NewRequest(http.MethodGet, "/tasks/1", nil)
	w := httptest.NewRecorder()

	HandleAPIError(w, req, store.ErrTaskNotFound, "Could not load task")

	assert.Equal(t, http.StatusNotFound, w.Code)

	var response shared.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(t, "Could not load task", response.Message)
}

func TestHandleAPIErrorInternal(t *testing.T) {
	t.Parallel()

	req := httptest.NewRequest(http.MethodGet, "/tasks", nil)
	w := httptest.NewRecorder()

	HandleAPIError(w, req, errors.New("dial tcp: connection refused"), "")

	assert.Equal(t, http.StatusInternalServerError, w.Code)

	var response shared.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(t, "An unexpected error occurred", response.Message)
	assert.NotContains(t, w.Body.String(), "dial tcp")
}
