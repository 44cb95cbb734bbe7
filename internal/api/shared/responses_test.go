package shared

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taskhive/taskhive-api/internal/domain"
)

func TestRespondWithData(t *testing.T) {
	req, _ := http.NewRequest(http.MethodGet, "/test", nil)
	w := httptest.NewRecorder()

	RespondWithData(w, req, http.StatusCreated, "Task created", map[string]interface{}{
		"id": 42,
	})

	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))

	var response Response
	err := json.Unmarshal(w.Body.Bytes(), &response)
	require.NoError(t, err)

	assert.Equal(t, StatusSuccess, response.Status)
	assert.Equal(t, "Task created", response.Message)
	assert.Nil(t, response.Count)
	assert.Nil(t, response.Pagination)
	assert.Empty(t, response.Errors)

	data, ok := response.Data.(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, float64(42), data["id"])
}

func TestRespondWithList(t *testing.T) {
	req, _ := http.NewRequest(http.MethodGet, "/test", nil)
	w := httptest.NewRecorder()

	RespondWithList(w, req, "Tasks retrieved", []string{"a", "b", "c"}, 3)

	assert.Equal(t, http.StatusOK, w.Code)

	var response Response
	err := json.Unmarshal(w.Body.Bytes(), &response)
	require.NoError(t, err)

	assert.Equal(t, StatusSuccess, response.Status)
	require.NotNil(t, response.Count)
	assert.Equal(t, 3, *response.Count)
	assert.Nil(t, response.Pagination)
}

func TestRespondWithListZeroCount(t *testing.T) {
	// A count of zero must still serialize; omitempty on a bare int would
	// swallow it, which is why Count is a pointer.
	req, _ := http.NewRequest(http.MethodGet, "/test", nil)
	w := httptest.NewRecorder()

	RespondWithList(w, req, "Tasks retrieved", []string{}, 0)

	assert.Contains(t, w.Body.String(), `"count":0`)
}

func TestRespondWithPage(t *testing.T) {
	req, _ := http.NewRequest(http.MethodGet, "/test", nil)
	w := httptest.NewRecorder()

	RespondWithPage(w, req, "Tasks retrieved", []string{"a"}, Pagination{
		Page:       2,
		Limit:      10,
		Total:      25,
		TotalPages: 3,
		HasNext:    true,
		HasPrev:    true,
	})

	var response Response
	err := json.Unmarshal(w.Body.Bytes(), &response)
	require.NoError(t, err)

	require.NotNil(t, response.Pagination)
	assert.Equal(t, 2, response.Pagination.Page)
	assert.Equal(t, int64(25), response.Pagination.Total)
	assert.Equal(t, 3, response.Pagination.TotalPages)
	assert.True(t, response.Pagination.HasNext)
	assert.True(t, response.Pagination.HasPrev)
}

func TestRespondWithError(t *testing.T) {
	ctx := context.WithValue(context.Background(), TraceIDKey, "test-trace-id")
	req, _ := http.NewRequest(http.MethodGet, "/test", nil)
	req = req.WithContext(ctx)
	w := httptest.NewRecorder()

	RespondWithError(w, req, http.StatusBadRequest, "Invalid request")

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))

	var response Response
	err := json.Unmarshal(w.Body.Bytes(), &response)
	require.NoError(t, err)

	assert.Equal(t, StatusError, response.Status)
	assert.Equal(t, "Invalid request", response.Message)
	assert.Equal(t, "test-trace-id", response.TraceID)
	assert.Nil(t, response.Data)
}

func TestRespondWithErrorNoTraceID(t *testing.T) {
	req, _ := http.NewRequest(http.MethodGet, "/test", nil)
	w := httptest.NewRecorder()

	RespondWithError(w, req, http.StatusUnauthorized, "Unauthorized")

	var response Response
	err := json.Unmarshal(w.Body.Bytes(), &response)
	require.NoError(t, err)

	assert.Equal(t, "Unauthorized", response.Message)
	assert.Empty(t, response.TraceID)
}

func TestRespondWithValidationErrors(t *testing.T) {
	req, _ := http.NewRequest(http.MethodPost, "/test", nil)
	w := httptest.NewRecorder()

	fields := []domain.FieldError{
		{Field: "title", Message: "is required"},
		{Field: "priority", Message: "must be one of low, medium, high"},
	}

	RespondWithValidationErrors(w, req, http.StatusBadRequest, "Validation failed", fields)

	assert.Equal(t, http.StatusBadRequest, w.Code)

	var response Response
	err := json.Unmarshal(w.Body.Bytes(), &response)
	require.NoError(t, err)

	assert.Equal(t, StatusError, response.Status)
	require.Len(t, response.Errors, 2)
	assert.Equal(t, "title", response.Errors[0].Field)
	assert.Equal(t, "is required", response.Errors[0].Message)
	assert.Equal(t, "priority", response.Errors[1].Field)
}

func TestRespondWithErrorAndLog(t *testing.T) {
	tests := []struct {
		name             string
		statusCode       int
		message          string
		err              error
		expectedLogLevel string
		elevateLogLevel  bool
	}{
		{
			name:             "server error",
			statusCode:       http.StatusInternalServerError,
			message:          "Internal server error",
			err:              errors.New("database connection failed"),
			expectedLogLevel: "ERROR",
		},
		{
			name:             "client error with default log level",
			statusCode:       http.StatusBadRequest,
			message:          "Bad request",
			err:              errors.New("invalid input"),
			expectedLogLevel: "DEBUG",
		},
		{
			name:             "client error with elevated log level",
			statusCode:       http.StatusBadRequest,
			message:          "Bad request (elevated)",
			err:              errors.New("invalid input requiring attention"),
			expectedLogLevel: "WARN",
			elevateLogLevel:  true,
		},
		{
			name:             "rate limiting error",
			statusCode:       http.StatusTooManyRequests,
			message:          "Too many requests",
			err:              errors.New("rate limit exceeded"),
			expectedLogLevel: "WARN",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			ctx := context.WithValue(context.Background(), TraceIDKey, "test-trace-id")
			req, _ := http.NewRequest(http.MethodGet, "/test", nil)
			req = req.WithContext(ctx)
			w := httptest.NewRecorder()

			var logBuf strings.Builder
			logger := slog.New(slog.NewTextHandler(&logBuf, &slog.HandlerOptions{
				Level: slog.LevelDebug,
			}))
			oldLogger := slog.Default()
			slog.SetDefault(logger)
			defer slog.SetDefault(oldLogger)

			if tc.elevateLogLevel {
				RespondWithErrorAndLog(w, req, tc.statusCode, tc.message, tc.err, WithElevatedLogLevel())
			} else {
				RespondWithErrorAndLog(w, req, tc.statusCode, tc.message, tc.err)
			}

			assert.Equal(t, tc.statusCode, w.Code)

			var response Response
			err := json.Unmarshal(w.Body.Bytes(), &response)
			require.NoError(t, err)

			assert.Equal(t, StatusError, response.Status)
			assert.Equal(t, tc.message, response.Message)
			assert.Equal(t, "test-trace-id", response.TraceID)

			logOutput := logBuf.String()
			assert.Contains(t, logOutput, tc.expectedLogLevel)
			assert.Contains(t, logOutput, tc.message)
			assert.Contains(t, logOutput, "trace_id=test-trace-id")

			if tc.err != nil {
				assert.Contains(t, logOutput, "error_type=")
			}
		})
	}
}

func TestWithElevatedLogLevel(t *testing.T) {
	opts := responseOptions{}
	WithElevatedLogLevel()(&opts)
	assert.True(t, opts.elevateLogLevel)
}
