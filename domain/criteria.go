package domain

import (
	"math"
	"strings"
)

const (
	DefaultPageSize = 100
	MaxPageSize     = 1000
)

// SortField names a column users can be ordered by.
type SortField string

const (
	SortByCreatedAt SortField = "created_at"
	SortByEmail     SortField = "email"
	SortByUsername  SortField = "username"
)

// SortOrder is the direction of a listing.
type SortOrder string

const (
	SortAsc  SortOrder = "asc"
	SortDesc SortOrder = "desc"
)

// ParseSortField accepts the wire name of a sort field. An empty value yields
// the default (creation time).
func ParseSortField(value string) (SortField, error) {
	switch SortField(strings.ToLower(strings.TrimSpace(value))) {
	case "", SortByCreatedAt:
		return SortByCreatedAt, nil
	case SortByEmail:
		return SortByEmail, nil
	case SortByUsername:
		return SortByUsername, nil
	default:
		return "", Invalidf("unsupported sort field %q", value)
	}
}

// ParseSortOrder accepts "asc" or "desc". An empty value yields descending.
func ParseSortOrder(value string) (SortOrder, error) {
	switch SortOrder(strings.ToLower(strings.TrimSpace(value))) {
	case "", SortDesc:
		return SortDesc, nil
	case SortAsc:
		return SortAsc, nil
	default:
		return "", Invalidf("unsupported sort order %q", value)
	}
}

// ListCriteria describes one page of a listing. It is validated on
// construction and immutable afterwards.
type ListCriteria struct {
	page     int
	pageSize int
	field    SortField
	order    SortOrder
}

// NewListCriteria validates the page, page size and sort settings. Empty sort
// values fall back to created_at descending.
func NewListCriteria(page, pageSize int, field SortField, order SortOrder) (ListCriteria, error) {
	if page < 1 {
		return ListCriteria{}, Invalidf("page must be >= 1")
	}
	if pageSize < 1 {
		return ListCriteria{}, Invalidf("page size must be >= 1")
	}
	if pageSize > MaxPageSize {
		return ListCriteria{}, Invalidf("page size cannot exceed %d", MaxPageSize)
	}
	if page-1 > math.MaxInt/pageSize {
		return ListCriteria{}, Invalidf("page %d is out of range", page)
	}

	f, err := ParseSortField(string(field))
	if err != nil {
		return ListCriteria{}, err
	}
	o, err := ParseSortOrder(string(order))
	if err != nil {
		return ListCriteria{}, err
	}

	return ListCriteria{page: page, pageSize: pageSize, field: f, order: o}, nil
}

// DefaultListCriteria is the first page of DefaultPageSize, newest first.
func DefaultListCriteria() ListCriteria {
	return ListCriteria{page: 1, pageSize: DefaultPageSize, field: SortByCreatedAt, order: SortDesc}
}

func (c ListCriteria) Page() int            { return c.page }
func (c ListCriteria) PageSize() int        { return c.pageSize }
func (c ListCriteria) SortField() SortField { return c.field }
func (c ListCriteria) SortOrder() SortOrder { return c.order }

// Offset is the number of rows skipped before the page starts.
func (c ListCriteria) Offset() int {
	return (c.page - 1) * c.pageSize
}

// Limit is the maximum number of rows in the page.
func (c ListCriteria) Limit() int {
	return c.pageSize
}
