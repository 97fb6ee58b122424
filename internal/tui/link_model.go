package tui

import (
	"context"
	"fmt"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/rshade/reminderin/internal/api"
)

// StreamFunc opens a connection event stream and feeds it to h until it ends.
type StreamFunc func(ctx context.Context, h api.ConnectionEventHandler) error

// LinkEventMsg carries one connection event into Update.
type LinkEventMsg struct {
	Event api.ConnectionEvent
}

// LinkDoneMsg reports that the stream has ended.
type LinkDoneMsg struct {
	Err error
}

// LinkModel shows the progress of linking a WhatsApp account.
//
//nolint:recvcheck // Bubble Tea requires value receivers for Init/Update/View interface methods.
type LinkModel struct {
	ctx    context.Context
	cancel context.CancelFunc
	stream StreamFunc
	events chan tea.Msg
	saveQR func(*api.QREvent) (string, error)

	loading *LoadingState
	code    string
	qrPath  string
	qrCount int
	number  string
	err     error
	done    bool
}

// NewLinkModel prepares a link screen over stream. saveQR, if set, stores
// each QR image and returns where it was written.
func NewLinkModel(ctx context.Context, stream StreamFunc, saveQR func(*api.QREvent) (string, error)) LinkModel {
	ctx, cancel := context.WithCancel(ctx)
	l := NewLoadingState()
	l.message = "Waiting for the server..."
	return LinkModel{
		ctx:     ctx,
		cancel:  cancel,
		stream:  stream,
		events:  make(chan tea.Msg),
		saveQR:  saveQR,
		loading: l,
	}
}

// Init starts the stream (Bubble Tea interface).
func (m LinkModel) Init() tea.Cmd {
	return tea.Batch(m.loading.Init(), m.run(), m.next())
}

// run feeds events and the final LinkDoneMsg through one channel, so the
// done message never overtakes the last event.
func (m LinkModel) run() tea.Cmd {
	ctx, stream, events := m.ctx, m.stream, m.events
	send := func(msg tea.Msg) {
		select {
		case events <- msg:
		case <-ctx.Done():
		}
	}
	return func() tea.Msg {
		err := stream(ctx, api.HandlerFunc(func(ev api.ConnectionEvent) {
			send(LinkEventMsg{Event: ev})
		}))
		send(LinkDoneMsg{Err: err})
		return nil
	}
}

func (m LinkModel) next() tea.Cmd {
	ctx, events := m.ctx, m.events
	return func() tea.Msg {
		select {
		case msg := <-events:
			return msg
		case <-ctx.Done():
			return nil
		}
	}
}

// Update handles messages (Bubble Tea interface).
func (m LinkModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case spinner.TickMsg:
		if m.done {
			return m, nil
		}
		return m, m.loading.Update(msg)
	case LinkEventMsg:
		m.handleEvent(msg.Event)
		return m, m.next()
	case LinkDoneMsg:
		m.done = true
		if msg.Err != nil && m.err == nil && m.number == "" {
			m.err = msg.Err
		}
		m.cancel()
		return m, tea.Quit
	case tea.KeyMsg:
		switch msg.String() {
		case keyQuit, keyCtrlC, keyEsc:
			m.done = true
			m.cancel()
			return m, tea.Quit
		}
	}
	return m, nil
}

func (m *LinkModel) handleEvent(ev api.ConnectionEvent) {
	switch ev := ev.(type) {
	case *api.QREvent:
		m.qrCount++
		m.loading.message = "Scan the QR code from WhatsApp > Linked devices"
		if m.saveQR != nil {
			path, err := m.saveQR(ev)
			if err != nil {
				m.err = err
				return
			}
			m.qrPath = path
		}
	case *api.CodeEvent:
		m.code = ev.Code
		m.loading.message = "Enter the code in WhatsApp > Linked devices > Link with phone number"
	case *api.SuccessEvent:
		m.number = ev.Number
	case *api.ErrorEvent:
		m.err = &api.LinkError{Message: ev.Message}
	}
}

// View renders the link progress (Bubble Tea interface).
func (m LinkModel) View() string {
	sections := []string{HeaderStyle.Render("Link WhatsApp")}
	if m.code != "" {
		sections = append(sections, "", BoxStyle.Render(ValueStyle.Render(m.code)))
	}
	if m.qrPath != "" {
		sections = append(sections, "", LabelStyle.Render(fmt.Sprintf("QR code #%d saved to ", m.qrCount))+m.qrPath)
	}
	switch {
	case m.number != "":
		sections = append(sections, "", SuccessStyle.Render("✓ Linked as "+m.number))
	case m.err != nil:
		sections = append(sections, "", CriticalStyle.Render("✗ "+m.err.Error()))
	case !m.done:
		sections = append(sections, "", RenderLoading(m.loading), SubtleStyle.Render("q cancel"))
	}
	return lipgloss.JoinVertical(lipgloss.Left, sections...) + "\n"
}

// Number returns the linked number, "" if linking did not succeed.
func (m LinkModel) Number() string {
	return m.number
}

// Err returns why linking failed.
func (m LinkModel) Err() error {
	return m.err
}
