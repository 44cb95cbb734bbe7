package shared

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/taskhive/taskhive-api/internal/domain"
)

// Envelope statuses. Every response body carries exactly one of these.
const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// Pagination is the metadata block attached to paginated list responses.
type Pagination struct {
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"totalPages"`
	HasNext    bool  `json:"hasNext"`
	HasPrev    bool  `json:"hasPrev"`
}

// Response is the uniform envelope every endpoint returns. Data is present
// on success responses that carry a payload; Errors enumerates field-level
// validation failures on 400s. Count and Pagination appear on list and
// paginated responses respectively.
type Response struct {
	Status     string              `json:"status"`
	Message    string              `json:"message"`
	Data       interface{}         `json:"data,omitempty"`
	Count      *int                `json:"count,omitempty"`
	Pagination *Pagination         `json:"pagination,omitempty"`
	Errors     []domain.FieldError `json:"errors,omitempty"`
	TraceID    string              `json:"trace_id,omitempty"`
}

// ResponseOption defines a function to customize response behavior.
type ResponseOption func(*responseOptions)

type responseOptions struct {
	elevateLogLevel bool
}

// WithElevatedLogLevel raises 4xx error logging to WARN level instead of the
// default DEBUG. Use for important operational issues like repeated auth
// failures.
func WithElevatedLogLevel() ResponseOption {
	return func(opts *responseOptions) {
		opts.elevateLogLevel = true
	}
}

// RespondWithJSON writes a JSON response with the given status code and body.
func RespondWithJSON(w http.ResponseWriter, r *http.Request, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		slog.Error("failed to encode JSON response", "error", err)
	}
}

// RespondWithData writes a success envelope carrying a single payload object.
func RespondWithData(w http.ResponseWriter, r *http.Request, status int, message string, data interface{}) {
	RespondWithJSON(w, r, status, Response{
		Status:  StatusSuccess,
		Message: message,
		Data:    data,
	})
}

// RespondWithList writes a success envelope carrying a slice payload plus its
// element count.
func RespondWithList(w http.ResponseWriter, r *http.Request, message string, data interface{}, count int) {
	RespondWithJSON(w, r, http.StatusOK, Response{
		Status:  StatusSuccess,
		Message: message,
		Data:    data,
		Count:   &count,
	})
}

// RespondWithPage writes a success envelope carrying one page of results and
// its pagination metadata.
func RespondWithPage(w http.ResponseWriter, r *http.Request, message string, data interface{}, pagination Pagination) {
	RespondWithJSON(w, r, http.StatusOK, Response{
		Status:     StatusSuccess,
		Message:    message,
		Data:       data,
		Pagination: &pagination,
	})
}

// RespondWithError writes an error envelope with the given status code and
// message. The trace ID from the request context is included for correlation.
func RespondWithError(w http.ResponseWriter, r *http.Request, status int, message string) {
	RespondWithValidationErrors(w, r, status, message, nil)
}

// RespondWithValidationErrors writes an error envelope enumerating every
// field-level validation failure.
func RespondWithValidationErrors(
	w http.ResponseWriter,
	r *http.Request,
	status int,
	message string,
	fields []domain.FieldError,
) {
	traceID := GetTraceID(r.Context())

	slog.Debug("sending error response",
		"status_code", status,
		"message", message,
		"trace_id", traceID,
		"path", r.URL.Path,
		"method", r.Method)

	RespondWithJSON(w, r, status, Response{
		Status:  StatusError,
		Message: message,
		Errors:  fields,
		TraceID: traceID,
	})
}

// RespondWithErrorAndLog writes an error envelope and also logs the detailed
// error. The full error only ever reaches the logs, never the client.
//
// Log level strategy: 5xx at ERROR, 429 at WARN, other 4xx at DEBUG unless
// elevated with WithElevatedLogLevel.
func RespondWithErrorAndLog(
	w http.ResponseWriter,
	r *http.Request,
	status int,
	userMessage string,
	err error,
	opts ...ResponseOption,
) {
	traceID := GetTraceID(r.Context())

	logAttrs := []slog.Attr{
		slog.String("trace_id", traceID),
		slog.String("path", r.URL.Path),
		slog.String("method", r.Method),
		slog.Int("status_code", status),
		slog.String("user_message", userMessage),
	}

	if err != nil {
		logAttrs = append(logAttrs,
			slog.String("error", err.Error()),
			slog.String("error_type", fmt.Sprintf("%T", err)))
	}

	responseOpts := responseOptions{}
	for _, opt := range opts {
		opt(&responseOpts)
	}

	logLevel := slog.LevelDebug
	if status >= http.StatusInternalServerError {
		logLevel = slog.LevelError
	} else if status == http.StatusTooManyRequests {
		logLevel = slog.LevelWarn
	} else if responseOpts.elevateLogLevel && status >= http.StatusBadRequest {
		logLevel = slog.LevelWarn
	}

	slog.LogAttrs(r.Context(), logLevel, "API error response", logAttrs...)

	RespondWithJSON(w, r, status, Response{
		Status:  StatusError,
		Message: userMessage,
		TraceID: traceID,
	})
}
