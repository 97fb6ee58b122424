package tui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// Toast durations.
const (
	DefaultToastDuration = 3 * time.Second
	MinToastDuration     = time.Second
)

// ToastLevel picks the toast color.
type ToastLevel int

// Toast levels.
const (
	ToastInfo ToastLevel = iota
	ToastSuccess
	ToastError
)

// Toast is a transient status message.
type Toast struct {
	ID    uint64
	Text  string
	Level ToastLevel
}

// ToastExpiredMsg dismisses the toast with ID, if it is still showing.
type ToastExpiredMsg struct {
	ID uint64
}

// Toaster shows one toast at a time. A newer toast replaces the old one and
// the old toast's timer becomes a no-op.
type Toaster struct {
	duration time.Duration
	current  *Toast
	nextID   uint64
}

// NewToaster returns a toaster that keeps each toast up for duration,
// but never less than MinToastDuration.
func NewToaster(duration time.Duration) *Toaster {
	t := &Toaster{}
	t.SetDuration(duration)
	return t
}

// SetDuration changes how long later toasts stay up.
func (t *Toaster) SetDuration(d time.Duration) {
	if d == 0 {
		d = DefaultToastDuration
	}
	t.duration = max(MinToastDuration, d)
}

// Duration returns the effective display duration.
func (t *Toaster) Duration() time.Duration {
	return t.duration
}

// Show displays text and returns the command that dismisses it.
func (t *Toaster) Show(text string, level ToastLevel) tea.Cmd {
	t.nextID++
	id := t.nextID
	t.current = &Toast{ID: id, Text: SingleLine(text), Level: level}
	return tea.Tick(t.duration, func(time.Time) tea.Msg {
		return ToastExpiredMsg{ID: id}
	})
}

// Expire handles a ToastExpiredMsg.
func (t *Toaster) Expire(msg ToastExpiredMsg) {
	if t.current != nil && t.current.ID == msg.ID {
		t.current = nil
	}
}

// Dismiss hides the current toast.
func (t *Toaster) Dismiss() {
	t.current = nil
}

// Current returns the showing toast, or nil.
func (t *Toaster) Current() *Toast {
	return t.current
}

// View renders the current toast, or "".
func (t *Toaster) View() string {
	if t.current == nil {
		return ""
	}
	switch t.current.Level {
	case ToastSuccess:
		return SuccessStyle.Render("✓ " + t.current.Text)
	case ToastError:
		return CriticalStyle.Render("✗ " + t.current.Text)
	default:
		return InfoStyle.Render(t.current.Text)
	}
}
