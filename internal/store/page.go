package store

import (
	"github.com/taskhive/taskhive-api/internal/domain"
)

// SortField names a task attribute that list operations may sort by.
type SortField string

const (
	SortByCreatedAt SortField = "createdAt"
	SortByUpdatedAt SortField = "updatedAt"
	SortByTitle     SortField = "title"
	SortByPriority  SortField = "priority"
	SortByDueDate   SortField = "dueDate"
)

// SortOrder is the direction of a sort.
type SortOrder string

const (
	SortAsc  SortOrder = "ASC"
	SortDesc SortOrder = "DESC"
)

// Pagination defaults.
const (
	DefaultPage  = 1
	DefaultLimit = 10
	MaxLimit     = 100
)

// TaskFilters are the predicates applied to task list operations. All set
// predicates compose with logical AND. The Search predicate diverges between
// backends: the relational store matches a case-insensitive substring over
// title and description, while the document store uses a weighted full-text
// index (title weighted above description).
type TaskFilters struct {
	Completed *bool
	Priority  domain.Priority
	Search    string
}

// PageRequest describes a page of results. Page numbers are 1-based.
type PageRequest struct {
	Page      int
	Limit     int
	SortBy    SortField
	SortOrder SortOrder
}

// Normalize clamps the request to sane values: page >= 1, limit within
// [1, MaxLimit], known sort field, known sort order. Unknown sort fields
// fall back to creation time descending, matching the default ordering of
// unpaginated lists.
func (p PageRequest) Normalize() PageRequest {
	if p.Page < 1 {
		p.Page = DefaultPage
	}
	if p.Limit < 1 {
		p.Limit = DefaultLimit
	}
	if p.Limit > MaxLimit {
		p.Limit = MaxLimit
	}

	switch p.SortBy {
	case SortByCreatedAt, SortByUpdatedAt, SortByTitle, SortByPriority, SortByDueDate:
	default:
		p.SortBy = SortByCreatedAt
	}

	switch p.SortOrder {
	case SortAsc, SortDesc:
	default:
		p.SortOrder = SortDesc
	}

	return p
}

// Offset converts the 1-based page number into a row offset.
func (p PageRequest) Offset() int {
	return (p.Page - 1) * p.Limit
}

// Page is one page of results together with its pagination metadata.
type Page[T any] struct {
	Items      []T
	PageNumber int
	Limit      int
	Total      int64
	TotalPages int
	HasNext    bool
	HasPrev    bool
}

// NewPage assembles pagination metadata for the given request and total:
// totalPages = ceil(total/limit), hasNext = page < totalPages,
// hasPrev = page > 1.
func NewPage[T any](items []T, req PageRequest, total int64) *Page[T] {
	totalPages := int((total + int64(req.Limit) - 1) / int64(req.Limit))

	return &Page[T]{
		Items:      items,
		PageNumber: req.Page,
		Limit:      req.Limit,
		Total:      total,
		TotalPages: totalPages,
		HasNext:    req.Page < totalPages,
		HasPrev:    req.Page > 1,
	}
}
