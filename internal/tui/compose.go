package tui

import (
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/rshade/reminderin/internal/reminder"
)

// whenLayout is how one-time schedules are typed into the form.
const whenLayout = "2006-01-02 15:04"

// maxComposeMessages bounds the message fields of a new-reminder form.
const maxComposeMessages = 10

// ComposeForm collects a new reminder, or the replacement fields of an
// existing one when editID is set.
type ComposeForm struct {
	editID   string
	messages []textinput.Model
	targets  textinput.Model
	when     textinput.Model
	cron     textinput.Model
	focus    int
	err      string
}

// NewComposeForm returns an empty form for scheduling new reminders.
func NewComposeForm() ComposeForm {
	f := ComposeForm{
		messages: []textinput.Model{newFormInput("Message 1", "message text, *bold* _italic_")},
		targets:  newFormInput("To", "phone, group id or JID, comma separated; empty for yourself"),
		when:     newFormInput("At", whenLayout),
		cron:     newFormInput("Repeat", "cron, e.g. 0 9 * * 1-5; empty for one-time"),
	}
	return f.focusField(0)
}

// EditComposeForm returns a form prefilled from r that replaces it on submit.
func EditComposeForm(r reminder.Reminder, loc *time.Location) ComposeForm {
	f := NewComposeForm()
	f.editID = r.ID
	f.messages[0].Prompt = formPrompt("Message")
	f.messages[0].SetValue(r.Message)
	f.targets.SetValue(strings.Join(reminder.SplitTargets(r.TargetWA), ", "))
	if r.IsRecurring() {
		f.cron.SetValue(r.Recurrence)
	} else if !r.ScheduledAt.IsZero() {
		f.when.SetValue(r.ScheduledAt.In(loc).Format(whenLayout))
	}
	return f.focusField(0)
}

func newFormInput(label, placeholder string) textinput.Model {
	ti := textinput.New()
	ti.Prompt = formPrompt(label)
	ti.Placeholder = placeholder
	ti.CharLimit = reminder.MaxMessageChars
	ti.Width = 60
	return ti
}

func formPrompt(label string) string {
	return LabelStyle.Render(label+":") + " "
}

// Editing reports whether the form replaces an existing reminder.
func (f ComposeForm) Editing() bool { return f.editID != "" }

// EditID returns the reminder the form replaces.
func (f ComposeForm) EditID() string { return f.editID }

func (f ComposeForm) fieldCount() int { return len(f.messages) + 3 }

// field returns a pointer to the input at position i of the focus order.
func (f *ComposeForm) field(i int) *textinput.Model {
	n := len(f.messages)
	switch {
	case i < n:
		return &f.messages[i]
	case i == n:
		return &f.targets
	case i == n+1:
		return &f.when
	default:
		return &f.cron
	}
}

func (f ComposeForm) focusField(i int) ComposeForm {
	f.field(f.focus).Blur()
	f.focus = (i + f.fieldCount()) % f.fieldCount()
	f.field(f.focus).Focus()
	return f
}

// AddMessage appends another message field to a new-reminder form.
func (f ComposeForm) AddMessage() ComposeForm {
	if f.Editing() || len(f.messages) >= maxComposeMessages {
		return f
	}
	f.messages = append(f.messages, newFormInput("Message "+strconv.Itoa(len(f.messages)+1), ""))
	return f.focusField(len(f.messages) - 1)
}

// Update moves focus on tab and arrows and forwards everything else to the
// focused input.
func (f ComposeForm) Update(msg tea.Msg) (ComposeForm, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		switch keyMsg.String() {
		case "tab", "down":
			return f.focusField(f.focus + 1), nil
		case "shift+tab", "up":
			return f.focusField(f.focus - 1), nil
		case "ctrl+n":
			return f.AddMessage(), nil
		}
	}
	var cmd tea.Cmd
	in := f.field(f.focus)
	*in, cmd = in.Update(msg)
	return f, cmd
}

// Compose validates the typed schedule into compose inputs.
func (f ComposeForm) Compose(loc *time.Location) (reminder.Compose, error) {
	c := reminder.Compose{
		Targets:    []string{f.targets.Value()},
		Recurrence: strings.TrimSpace(f.cron.Value()),
	}
	for _, m := range f.messages {
		c.Messages = append(c.Messages, m.Value())
	}
	if when := strings.TrimSpace(f.when.Value()); when != "" && c.Recurrence == "" {
		at, err := reminder.ParseWhen(when, loc)
		if err != nil {
			return reminder.Compose{}, err
		}
		c.At = at
	}
	return c, nil
}

// Drafts validates the form against now. An edit form yields exactly one
// draft carrying the reminder's ID.
func (f ComposeForm) Drafts(now time.Time) ([]reminder.Draft, error) {
	c, err := f.Compose(now.Location())
	if err != nil {
		return nil, err
	}
	drafts, err := c.Drafts(now)
	if err != nil {
		return nil, err
	}
	if f.Editing() {
		drafts = drafts[:1]
		drafts[0].ID = f.editID
	}
	return drafts, nil
}

// WithError records a validation message shown under the fields.
func (f ComposeForm) WithError(err error) ComposeForm {
	f.err = ""
	if err != nil {
		f.err = ErrorText(err)
	}
	return f
}

// View renders the fields, the cron preview and any validation error.
func (f ComposeForm) View(now time.Time, width int) string {
	title := "NEW REMINDER"
	hint := "tab next field • ctrl+n add message • enter save • esc cancel"
	if f.Editing() {
		title = "EDIT REMINDER"
		hint = "tab next field • enter save • esc cancel"
	}

	var b strings.Builder
	b.WriteString(HeaderStyle.Render(title))
	b.WriteString("\n\n")
	for _, m := range f.messages {
		b.WriteString(m.View())
		b.WriteString("\n")
	}
	b.WriteString(f.targets.View())
	b.WriteString("\n")
	if strings.TrimSpace(f.cron.Value()) == "" {
		b.WriteString(f.when.View())
		b.WriteString("\n")
	}
	b.WriteString(f.cron.View())
	b.WriteString("\n")
	if preview := cronPreview(f.cron.Value(), now); preview != "" {
		b.WriteString(SubtleStyle.Render("  " + preview))
		b.WriteString("\n")
	}
	if f.err != "" {
		b.WriteString("\n")
		b.WriteString(CriticalStyle.Render(f.err))
		b.WriteString("\n")
	}

	box := BoxStyle.Width(max(minMessageWidth, width-borderPadding)).Render(strings.TrimRight(b.String(), "\n"))
	return lipgloss.JoinVertical(lipgloss.Left, box, SubtleStyle.Render(hint))
}

// cronPreview describes the next run of expr, or why it does not parse.
func cronPreview(expr string, now time.Time) string {
	expr = strings.TrimSpace(expr)
	if expr == "" {
		return ""
	}
	r := reminder.Reminder{Recurrence: expr, IsActive: true}
	next, ok := r.NextRun(now)
	if !ok {
		return "not a valid 5-field cron expression"
	}
	return "next: " + reminder.FormatHuman(next, now)
}
