package api

import (
	"errors"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/taskhive/taskhive-api/internal/api/shared"
	"github.com/taskhive/taskhive-api/internal/domain"
	"github.com/taskhive/taskhive-api/internal/store"
)

// requirePrincipal extracts the authenticated principal from the request
// context, writing a 401 if the authentication middleware did not attach
// one.
func requirePrincipal(w http.ResponseWriter, r *http.Request) (shared.Principal, bool) {
	principal, ok := shared.GetPrincipal(r.Context())
	if !ok {
		shared.RespondWithError(w, r, http.StatusUnauthorized, "Authentication required")
		return shared.Principal{}, false
	}
	return principal, true
}

// getPathInt64 extracts a numeric id from the URL path. A non-numeric value
// is a request-shape problem, reported as a 400 by the caller.
func getPathInt64(r *http.Request, paramName string) (int64, error) {
	pathParam := chi.URLParam(r, paramName)
	if pathParam == "" {
		return 0, domain.NewValidationError(paramName, "is required")
	}

	id, err := strconv.ParseInt(pathParam, 10, 64)
	if err != nil {
		return 0, domain.NewValidationError(paramName, "must be a number")
	}
	return id, nil
}

// parseTaskFilters reads the completed, priority and search query
// parameters. Unrecognized values are reported rather than ignored.
func parseTaskFilters(query url.Values) (store.TaskFilters, error) {
	filters := store.TaskFilters{}
	verr := &domain.ValidationError{}

	if raw := query.Get("completed"); raw != "" {
		completed, err := strconv.ParseBool(raw)
		if err != nil {
			verr.Add("completed", "must be true or false")
		} else {
			filters.Completed = &completed
		}
	}

	if raw := query.Get("priority"); raw != "" {
		priority := domain.Priority(raw)
		if !priority.Valid() {
			verr.Add("priority", "must be one of low, medium, high")
		} else {
			filters.Priority = priority
		}
	}

	filters.Search = strings.TrimSpace(query.Get("search"))

	if err := verr.OrNil(); err != nil {
		return store.TaskFilters{}, err
	}
	return filters, nil
}

// hasPageParams reports whether the request asked for a paginated response.
// The flat list shape is kept for requests that mention neither page nor
// limit.
func hasPageParams(query url.Values) bool {
	return query.Get("page") != "" || query.Get("limit") != ""
}

// parsePageRequest reads page, limit, sortBy and sortOrder. Values outside
// the allowed ranges are clamped by PageRequest.Normalize at the store.
func parsePageRequest(query url.Values) (store.PageRequest, error) {
	req := store.PageRequest{
		Page:      store.DefaultPage,
		Limit:     store.DefaultLimit,
		SortBy:    store.SortByCreatedAt,
		SortOrder: store.SortDesc,
	}
	verr := &domain.ValidationError{}

	if raw := query.Get("page"); raw != "" {
		page, err := strconv.Atoi(raw)
		if err != nil || page < 1 {
			verr.Add("page", "must be a positive number")
		} else {
			req.Page = page
		}
	}

	if raw := query.Get("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit < 1 {
			verr.Add("limit", "must be a positive number")
		} else {
			req.Limit = limit
		}
	}

	if raw := query.Get("sortBy"); raw != "" {
		switch field := store.SortField(raw); field {
		case store.SortByCreatedAt, store.SortByUpdatedAt, store.SortByTitle,
			store.SortByPriority, store.SortByDueDate:
			req.SortBy = field
		default:
			verr.Add("sortBy", "must be one of createdAt, updatedAt, title, priority, dueDate")
		}
	}

	if raw := query.Get("sortOrder"); raw != "" {
		switch order := store.SortOrder(strings.ToUpper(raw)); order {
		case store.SortAsc, store.SortDesc:
			req.SortOrder = order
		default:
			verr.Add("sortOrder", "must be ASC or DESC")
		}
	}

	if err := verr.OrNil(); err != nil {
		return store.PageRequest{}, err
	}
	return req, nil
}

// paginationFromPage converts store pagination metadata into the response
// envelope block.
func paginationFromPage[T any](page *store.Page[T]) shared.Pagination {
	return shared.Pagination{
		Page:       page.PageNumber,
		Limit:      page.Limit,
		Total:      page.Total,
		TotalPages: page.TotalPages,
		HasNext:    page.HasNext,
		HasPrev:    page.HasPrev,
	}
}

// fieldErrorsFromValidator flattens validator violations into the field
// error list the envelope expects, enumerating every failing field.
func fieldErrorsFromValidator(err error) []domain.FieldError {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return nil
	}

	fields := make([]domain.FieldError, 0, len(verrs))
	for _, fe := range verrs {
		fields = append(fields, domain.FieldError{
			Field:   strings.ToLower(fe.Field()[:1]) + fe.Field()[1:],
			Message: validationTagMessage(fe),
		})
	}
	return fields
}

// validationTagMessage maps validation tags to user-friendly messages.
func validationTagMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "min":
		return "must be at least " + fe.Param() + " characters"
	case "max":
		return "must not exceed " + fe.Param() + " characters"
	case "oneof":
		return "must be one of " + strings.ReplaceAll(fe.Param(), " ", ", ")
	case "url":
		return "must be a valid URL"
	default:
		return "is invalid"
	}
}

// decodeAndValidate parses the JSON body into req and runs struct
// validation, writing the 400 itself on failure.
func decodeAndValidate(w http.ResponseWriter, r *http.Request, req interface{}) bool {
	if err := shared.DecodeJSON(r, req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return false
	}

	if err := shared.ValidateRequest(req); err != nil {
		shared.RespondWithValidationErrors(w, r, http.StatusBadRequest,
			"Validation failed", fieldErrorsFromValidator(err))
		return false
	}
	return true
}
