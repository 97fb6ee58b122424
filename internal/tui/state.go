package tui

import (
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

// ViewState is the screen a model is showing.
type ViewState int

// View states.
const (
	ViewStateLoading ViewState = iota
	ViewStateList
	ViewStateDetail
	ViewStateConfirmDelete
	ViewStateConfirmDeleteAll
	ViewStateQuitting
	ViewStateError
	ViewStateCompose
)

func (s ViewState) String() string {
	switch s {
	case ViewStateLoading:
		return "loading"
	case ViewStateList:
		return "list"
	case ViewStateDetail:
		return "detail"
	case ViewStateConfirmDelete:
		return "confirm-delete"
	case ViewStateConfirmDeleteAll:
		return "confirm-delete-all"
	case ViewStateQuitting:
		return "quitting"
	case ViewStateError:
		return "error"
	case ViewStateCompose:
		return "compose"
	default:
		return "unknown"
	}
}

// LoadingState wraps the spinner shown while a fetch is outstanding.
type LoadingState struct {
	spinner spinner.Model
	message string
}

// NewLoadingState returns a spinner with the default message.
func NewLoadingState() *LoadingState {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = InfoStyle
	return &LoadingState{spinner: s, message: "Loading reminders..."}
}

// Init starts the spinner.
func (l *LoadingState) Init() tea.Cmd {
	return l.spinner.Tick
}

// Update advances the spinner on its own tick messages.
func (l *LoadingState) Update(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	l.spinner, cmd = l.spinner.Update(msg)
	return cmd
}

// View renders the spinner frame.
func (l *LoadingState) View() string {
	return l.spinner.View()
}

// RenderLoading returns the full loading line.
func RenderLoading(loading *LoadingState) string {
	if loading == nil {
		return "Loading..."
	}
	return loading.spinner.View() + " " + loading.message
}

func newTextInput() textinput.Model {
	ti := textinput.New()
	ti.Placeholder = "search messages and targets"
	ti.Prompt = "/ "
	ti.CharLimit = 200
	ti.Width = 40
	return ti
}
