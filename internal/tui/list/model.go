package listview

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"
)

// defaultBufferSize is the number of extra rows drawn above and below the viewport.
const defaultBufferSize = 5

const halfViewportDivisor = 2

// DefaultPlaceholder is shown when the list is empty.
const DefaultPlaceholder = "No results"

// KeyFunc returns the stable identity of an item.
type KeyFunc[T any] func(item T) string

// RenderFunc renders the content of one row.
type RenderFunc[T any] func(item T) string

// DecorateFunc styles a rendered row for display. selected marks the cursor row.
type DecorateFunc func(content string, selected bool) string

type row[T any] struct {
	key     string
	item    T
	content string
}

// ReconcileStats counts the row changes made by one Reconcile.
type ReconcileStats struct {
	Created           int
	Updated           int
	Removed           int
	Moved             int
	PlaceholderShown  bool
	PlaceholderHidden bool
}

// Mutations is the total number of row writes. It is zero when the input
// matched what was already displayed.
func (s ReconcileStats) Mutations() int {
	n := s.Created + s.Updated + s.Removed + s.Moved
	if s.PlaceholderShown {
		n++
	}
	if s.PlaceholderHidden {
		n++
	}
	return n
}

// KeyedListModel is the single owner of a list's displayed rows.
type KeyedListModel[T any] struct {
	rows        []row[T]
	keyFunc     KeyFunc[T]
	renderFunc  RenderFunc[T]
	decorate    DecorateFunc
	placeholder string
	showEmpty   bool

	selected    int
	selectedKey string

	visibleFrom int
	visibleTo   int
	height      int
	width       int
	bufferSize  int
}

// NewKeyedListModel creates an empty list. It shows nothing until the first
// Reconcile, so a list that has not loaded yet does not claim "no results".
func NewKeyedListModel[T any](height, width int, key KeyFunc[T], render RenderFunc[T]) *KeyedListModel[T] {
	return &KeyedListModel[T]{
		keyFunc:     key,
		renderFunc:  render,
		decorate:    func(content string, _ bool) string { return content },
		placeholder: DefaultPlaceholder,
		height:      height,
		width:       width,
		bufferSize:  defaultBufferSize,
	}
}

// SetPlaceholder sets the text shown for an empty list.
func (m *KeyedListModel[T]) SetPlaceholder(text string) {
	m.placeholder = text
}

// SetDecorator sets the selection styling applied in View.
func (m *KeyedListModel[T]) SetDecorator(d DecorateFunc) {
	if d != nil {
		m.decorate = d
	}
}

// SetBufferSize sets how many rows beyond the viewport View draws.
func (m *KeyedListModel[T]) SetBufferSize(n int) {
	m.bufferSize = max(0, n)
}

// Reconcile replaces the rows with items.
func (m *KeyedListModel[T]) Reconcile(items []T) ReconcileStats {
	var stats ReconcileStats

	wanted := make(map[string]struct{}, len(items))
	for _, it := range items {
		wanted[m.keyFunc(it)] = struct{}{}
	}

	// Kept rows in their old relative order, indexed by key.
	existing := make(map[string]int, len(m.rows))
	var kept []string
	for _, r := range m.rows {
		if _, ok := wanted[r.key]; !ok {
			stats.Removed++
			continue
		}
		existing[r.key] = len(kept)
		kept = append(kept, r.key)
	}
	old := make(map[string]row[T], len(m.rows))
	for _, r := range m.rows {
		old[r.key] = r
	}

	next := make([]row[T], 0, len(items))
	keptPos := 0
	for _, it := range items {
		key := m.keyFunc(it)
		content := m.renderFunc(it)

		prev, ok := old[key]
		if !ok {
			stats.Created++
			next = append(next, row[T]{key: key, item: it, content: content})
			continue
		}
		if prev.content != content {
			stats.Updated++
			prev.content = content
		}
		prev.item = it
		if existing[key] != keptPos {
			stats.Moved++
		}
		keptPos++
		next = append(next, prev)
	}

	wasEmpty := m.showEmpty
	m.showEmpty = len(next) == 0
	stats.PlaceholderShown = m.showEmpty && !wasEmpty
	stats.PlaceholderHidden = !m.showEmpty && wasEmpty

	m.rows = next
	m.restoreSelection()
	return stats
}

// Remove drops the row with key and reports whether it existed.
func (m *KeyedListModel[T]) Remove(key string) bool {
	for i, r := range m.rows {
		if r.key != key {
			continue
		}
		m.rows = append(m.rows[:i], m.rows[i+1:]...)
		m.showEmpty = len(m.rows) == 0
		m.restoreSelection()
		return true
	}
	return false
}

// Rerender renders every row again, for example after a resize changed the
// column widths. It returns the number of rows whose content changed.
func (m *KeyedListModel[T]) Rerender() int {
	changed := 0
	for i := range m.rows {
		content := m.renderFunc(m.rows[i].item)
		if content != m.rows[i].content {
			m.rows[i].content = content
			changed++
		}
	}
	return changed
}

// restoreSelection moves the cursor to the previously selected key, or keeps
// the index in bounds if that row is gone.
func (m *KeyedListModel[T]) restoreSelection() {
	if m.selectedKey != "" {
		for i, r := range m.rows {
			if r.key == m.selectedKey {
				m.selected = i
				m.updateVisibleRange()
				return
			}
		}
	}
	m.SetSelected(m.selected)
}

// Init implements tea.Model.
func (m *KeyedListModel[T]) Init() tea.Cmd {
	return nil
}

// Update handles navigation keys and resizes.
func (m *KeyedListModel[T]) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		m.handleKeyMsg(msg)
	case tea.WindowSizeMsg:
		m.height = msg.Height
		m.width = msg.Width
		m.updateVisibleRange()
	}
	return m, nil
}

//nolint:exhaustive // Only navigation keys are handled.
func (m *KeyedListModel[T]) handleKeyMsg(msg tea.KeyMsg) {
	if len(m.rows) == 0 {
		return
	}

	switch msg.Type {
	case tea.KeyUp:
		m.SetSelected(m.selected - 1)
	case tea.KeyDown:
		m.SetSelected(m.selected + 1)
	case tea.KeyPgUp:
		m.SetSelected(m.selected - m.height)
	case tea.KeyPgDown:
		m.SetSelected(m.selected + m.height)
	case tea.KeyHome:
		m.SetSelected(0)
	case tea.KeyEnd:
		m.SetSelected(len(m.rows) - 1)
	case tea.KeyRunes:
		if len(msg.Runes) == 0 {
			return
		}
		switch msg.Runes[0] {
		case 'j':
			m.SetSelected(m.selected + 1)
		case 'k':
			m.SetSelected(m.selected - 1)
		}
	}
}

// updateVisibleRange keeps the selected row inside the viewport.
func (m *KeyedListModel[T]) updateVisibleRange() {
	if len(m.rows) == 0 {
		m.visibleFrom, m.visibleTo = 0, 0
		return
	}

	half := m.height / halfViewportDivisor
	from := m.selected - half
	to := m.selected + half

	if from < 0 {
		from = 0
		to = m.height
	}
	if to > len(m.rows) {
		to = len(m.rows)
		from = max(0, to-m.height)
	}

	m.visibleFrom = from
	m.visibleTo = to
}

// View draws the visible rows, or the placeholder for an empty list.
func (m *KeyedListModel[T]) View() string {
	if m.showEmpty {
		return m.placeholder
	}
	if len(m.rows) == 0 {
		return ""
	}

	from := max(0, m.visibleFrom-m.bufferSize)
	to := min(len(m.rows), m.visibleTo+m.bufferSize)

	lines := make([]string, 0, to-from)
	for i := from; i < to; i++ {
		lines = append(lines, m.decorate(m.rows[i].content, i == m.selected))
	}
	return strings.Join(lines, "\n")
}

// ShowsPlaceholder reports whether the placeholder row is displayed.
func (m *KeyedListModel[T]) ShowsPlaceholder() bool {
	return m.showEmpty
}

// ItemCount returns the number of data rows.
func (m *KeyedListModel[T]) ItemCount() int {
	return len(m.rows)
}

// Keys returns the row keys in display order.
func (m *KeyedListModel[T]) Keys() []string {
	keys := make([]string, len(m.rows))
	for i, r := range m.rows {
		keys[i] = r.key
	}
	return keys
}

// Items returns the items in display order.
func (m *KeyedListModel[T]) Items() []T {
	items := make([]T, len(m.rows))
	for i, r := range m.rows {
		items[i] = r.item
	}
	return items
}

// Selected returns the cursor index.
func (m *KeyedListModel[T]) Selected() int {
	return m.selected
}

// SetSelected moves the cursor, clamped to the rows.
func (m *KeyedListModel[T]) SetSelected(index int) {
	if len(m.rows) == 0 {
		m.selected = 0
		m.selectedKey = ""
		m.updateVisibleRange()
		return
	}
	m.selected = min(max(index, 0), len(m.rows)-1)
	m.selectedKey = m.rows[m.selected].key
	m.updateVisibleRange()
}

// SelectedItem returns the item under the cursor, or nil for an empty list.
func (m *KeyedListModel[T]) SelectedItem() *T {
	if m.selected < 0 || m.selected >= len(m.rows) {
		return nil
	}
	return &m.rows[m.selected].item
}

// VisibleFrom returns the first row in the viewport.
func (m *KeyedListModel[T]) VisibleFrom() int {
	return m.visibleFrom
}

// VisibleTo returns the row after the last one in the viewport.
func (m *KeyedListModel[T]) VisibleTo() int {
	return m.visibleTo
}

// Height returns the viewport height.
func (m *KeyedListModel[T]) Height() int {
	return m.height
}

// Width returns the viewport width.
func (m *KeyedListModel[T]) Width() int {
	return m.width
}
