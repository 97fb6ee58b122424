package pagination

// Indicator glyphs for the active sort column.
const (
	GlyphAsc  = "↑"
	GlyphDesc = "↓"
)

// SortKeys returns the sortable columns in display order.
func SortKeys() []SortKey {
	return []SortKey{SortByMessage, SortByTarget, SortByTime, SortByRecurrence}
}

// SortKeyNames returns SortKeys as strings.
func SortKeyNames() []string {
	keys := SortKeys()
	names := make([]string, len(keys))
	for i, k := range keys {
		names[i] = string(k)
	}
	return names
}

// IsValidSortKey reports whether key is a sortable column.
func IsValidSortKey(key SortKey) bool {
	for _, k := range SortKeys() {
		if k == key {
			return true
		}
	}
	return false
}

// ToggleSort applies a click on column: the active column flips direction,
// any other column becomes active in ascending order.
func ToggleSort(activeKey SortKey, activeOrder SortOrder, column SortKey) (SortKey, SortOrder) {
	if activeKey == column {
		if activeOrder == SortOrderAsc {
			return column, SortOrderDesc
		}
		return column, SortOrderAsc
	}
	return column, SortOrderAsc
}

// Indicator returns the glyph shown next to column, or "" if column is not the
// active sort key.
func Indicator(activeKey SortKey, activeOrder SortOrder, column SortKey) string {
	if activeKey == SortNone || activeKey != column {
		return ""
	}
	if activeOrder == SortOrderDesc {
		return GlyphDesc
	}
	return GlyphAsc
}
