// Package listview provides a keyed, virtually scrolled list for Bubble Tea.
//
// Rows are identified by a key derived from each item. Reconcile replaces the
// item set while preserving row identity:
//   - Rows whose key disappeared are removed, new keys create rows
//   - A kept row is re-rendered and replaced only if its content changed
//   - Row order always follows the input order
//   - An empty input shows a single placeholder row
//
// Only rows inside the viewport (plus a small buffer) are drawn, so a page of
// any size renders in O(viewport height).
package listview
