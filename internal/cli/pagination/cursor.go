package pagination

// CursorStack tracks the current page cursor and the cursors of previously
// visited pages. The empty cursor is the first page.
type CursorStack struct {
	current string
	history []string
}

// NewCursorStack returns a stack positioned on the first page.
func NewCursorStack() *CursorStack {
	return &CursorStack{}
}

// Reset returns to the first page and forgets history.
func (s *CursorStack) Reset() {
	s.current = ""
	s.history = s.history[:0]
}

// Advance pushes the current cursor and adopts next.
func (s *CursorStack) Advance(next string) {
	s.history = append(s.history, s.current)
	s.current = next
}

// Retreat pops the most recent cursor and adopts it. It is a no-op returning
// false when there is no history.
func (s *CursorStack) Retreat() bool {
	if len(s.history) == 0 {
		return false
	}
	last := len(s.history) - 1
	s.current = s.history[last]
	s.history = s.history[:last]
	return true
}

// Clone returns an independent copy of the stack.
func (s *CursorStack) Clone() *CursorStack {
	return &CursorStack{current: s.current, history: append([]string(nil), s.history...)}
}

// Current returns the cursor of the page being shown.
func (s *CursorStack) Current() string {
	return s.current
}

// Depth returns the number of pages behind the current one.
func (s *CursorStack) Depth() int {
	return len(s.history)
}

// CanRetreat reports whether a previous page exists.
func (s *CursorStack) CanRetreat() bool {
	return len(s.history) > 0
}
