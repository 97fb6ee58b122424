// Package pagination provides cursor pagination, sorting and page metadata helpers
// shared by the reminder list commands and the interactive list view.
//
// This package contains:
//   - ListParams: list flag parsing and validation (limit, cursor, search, sort)
//   - CursorStack: opaque server cursors with back-navigation history
//   - PageMeta: display range and navigation flags for one fetched page
//   - Sort helpers: valid sort keys, the column toggle rule and indicator glyphs
package pagination
