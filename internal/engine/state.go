package engine

import (
	"strings"

	"github.com/rshade/reminderin/internal/api"
	"github.com/rshade/reminderin/internal/cli/pagination"
)

// QueryState is the list query shared by the synchronizer and the views.
// It is mutated only from the goroutine that owns the Synchronizer.
type QueryState struct {
	Cursors   *pagination.CursorStack
	PageSize  int
	SortKey   pagination.SortKey
	SortOrder pagination.SortOrder
	Search    string

	// ETag is the validator of the page currently displayed. Empty forces
	// the next fetch to bypass the server's conditional cache.
	ETag string

	// Total and NextCursor come from the last successful fetch.
	Total      int
	NextCursor string
}

// NewQueryState returns the first page, unsorted, with pageSize rows.
func NewQueryState(pageSize int) *QueryState {
	if pagination.ValidatePageSize(pageSize) != nil {
		pageSize = pagination.DefaultPageSize
	}
	return &QueryState{
		Cursors:   pagination.NewCursorStack(),
		PageSize:  pageSize,
		SortOrder: pagination.DefaultSortOrder,
	}
}

// InvalidateETag drops the validator. Every parameter change calls it first.
func (s *QueryState) InvalidateETag() {
	s.ETag = ""
}

// Query builds the request for the current page.
func (s *QueryState) Query() api.ListQuery {
	return api.ListQuery{
		Limit:     s.PageSize,
		Cursor:    s.Cursors.Current(),
		Search:    strings.TrimSpace(s.Search),
		SortKey:   s.SortKey,
		SortOrder: s.SortOrder,
	}
}
