package pagination

// PageMeta describes the position of one fetched page.
type PageMeta struct {
	Start       int    `json:"start"                 yaml:"start"`
	End         int    `json:"end"                   yaml:"end"`
	Total       int    `json:"total"                 yaml:"total"`
	PageSize    int    `json:"page_size"             yaml:"page_size"`
	Page        int    `json:"page"                  yaml:"page"`
	HasPrevious bool   `json:"has_previous"          yaml:"has_previous"`
	HasNext     bool   `json:"has_next"              yaml:"has_next"`
	NextCursor  string `json:"next_cursor,omitempty" yaml:"next_cursor,omitempty"`
}

// NewPageMeta derives the display range for a page. The start index is
// depth*pageSize+1, which is only an approximation when page sizes changed
// between navigations. A zero total or an emptied page yields a 0-0 range.
func NewPageMeta(depth, pageSize, displayed, total int, nextCursor string) PageMeta {
	meta := PageMeta{
		Total:       total,
		PageSize:    pageSize,
		Page:        depth + 1,
		HasPrevious: depth > 0,
		HasNext:     nextCursor != "",
		NextCursor:  nextCursor,
	}
	if total <= 0 || displayed <= 0 {
		return meta
	}
	meta.Start = depth*pageSize + 1
	meta.End = min(meta.Start+displayed-1, max(total, meta.Start))
	return meta
}
