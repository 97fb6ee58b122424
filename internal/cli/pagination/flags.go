package pagination

import (
	"errors"
	"fmt"
	"slices"
	"strings"
)

// SortKey is a server-side sort column. The zero value means server default order.
type SortKey string

// SortOrder is the sort direction.
type SortOrder string

// Sort keys accepted by the list endpoint.
const (
	SortNone         SortKey = ""
	SortByMessage    SortKey = "message"
	SortByTarget     SortKey = "target"
	SortByTime       SortKey = "time"
	SortByRecurrence SortKey = "recurrence"
)

// Sort orders and page size limits.
const (
	SortOrderAsc     SortOrder = "asc"
	SortOrderDesc    SortOrder = "desc"
	DefaultSortOrder           = SortOrderAsc
	DefaultPageSize            = 20
	MinPageSize                = 1
	MaxPageSize                = 100
)

// PageSizeChoices are the page sizes offered by the interactive view.
//
//nolint:gochecknoglobals // Read-only option list.
var PageSizeChoices = []int{10, 20, 50, 100}

// Common validation errors.
var (
	ErrInvalidPageSize   = fmt.Errorf("page size must be between %d and %d", MinPageSize, MaxPageSize)
	ErrInvalidSortOrder  = errors.New("sort order must be 'asc' or 'desc'")
	ErrInvalidSortFormat = errors.New("invalid sort format: use 'field' or 'field:order' (e.g., 'time:desc')")
	ErrEmptySortField    = errors.New("sort field cannot be empty")
	ErrInvalidSortField  = errors.New("invalid sort field")
)

// ListParams holds list query flags.
type ListParams struct {
	// Limit is the page size sent to the server.
	Limit int

	// Cursor is the opaque token of the page to fetch ("" = first page).
	Cursor string

	// Search is a free-text filter.
	Search string

	// SortKey is the column to sort by, SortNone for server order.
	SortKey SortKey

	// SortOrder is only sent when SortKey is set.
	SortOrder SortOrder
}

// NewListParams creates ListParams with default values.
func NewListParams() *ListParams {
	return &ListParams{
		Limit:     DefaultPageSize,
		SortKey:   SortNone,
		SortOrder: DefaultSortOrder,
	}
}

// Validate checks if the list parameters are valid (value receiver).
func (p ListParams) Validate() error {
	if err := ValidatePageSize(p.Limit); err != nil {
		return err
	}
	if p.SortKey != SortNone && !IsValidSortKey(p.SortKey) {
		return fmt.Errorf("%w: %q (valid: %s)", ErrInvalidSortField, p.SortKey, strings.Join(SortKeyNames(), ", "))
	}
	if p.SortOrder != SortOrderAsc && p.SortOrder != SortOrderDesc {
		return fmt.Errorf("%w: got %q", ErrInvalidSortOrder, p.SortOrder)
	}
	return nil
}

// ValidatePageSize checks that n is an accepted page size.
func ValidatePageSize(n int) error {
	if n < MinPageSize || n > MaxPageSize {
		return fmt.Errorf("%w: got %d", ErrInvalidPageSize, n)
	}
	return nil
}

// StepPageSize moves delta positions through PageSizeChoices from the choice
// closest to current, clamping at both ends.
func StepPageSize(current, delta int) int {
	idx := slices.Index(PageSizeChoices, current)
	if idx < 0 {
		idx = 0
		for i, c := range PageSizeChoices {
			if c <= current {
				idx = i
			}
		}
	}
	idx += delta
	idx = max(0, min(idx, len(PageSizeChoices)-1))
	return PageSizeChoices[idx]
}

// sortPartsMax is the maximum number of parts in a sort string (field:order).
const sortPartsMax = 2

// ParseSort parses a sort string in the format "field" or "field:order".
// Examples: "time", "message:desc", "recurrence:asc"
// An empty string means server default order.
//
//nolint:nonamedreturns // Named returns improve readability for this multi-value function.
func ParseSort(sortStr string) (key SortKey, order SortOrder, err error) {
	if strings.TrimSpace(sortStr) == "" {
		return SortNone, DefaultSortOrder, nil
	}

	parts := strings.Split(sortStr, ":")
	switch len(parts) {
	case 1:
		key = SortKey(strings.ToLower(strings.TrimSpace(parts[0])))
		order = DefaultSortOrder
	case sortPartsMax:
		key = SortKey(strings.ToLower(strings.TrimSpace(parts[0])))
		order = SortOrder(strings.ToLower(strings.TrimSpace(parts[1])))
	default:
		return "", "", fmt.Errorf("%w: %q", ErrInvalidSortFormat, sortStr)
	}

	if key == SortNone {
		return "", "", ErrEmptySortField
	}
	if !IsValidSortKey(key) {
		return "", "", fmt.Errorf("%w: %q (valid: %s)", ErrInvalidSortField, key, strings.Join(SortKeyNames(), ", "))
	}
	if order != SortOrderAsc && order != SortOrderDesc {
		return "", "", fmt.Errorf("%w: got %q", ErrInvalidSortOrder, order)
	}

	return key, order, nil
}
