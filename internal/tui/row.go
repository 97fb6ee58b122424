package tui

import (
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"

	"github.com/rshade/reminderin/internal/cli/pagination"
	"github.com/rshade/reminderin/internal/reminder"
)

// Labeler resolves a target identifier to a display name, "" when unknown.
type Labeler interface {
	Label(target string) string
}

// Fixed column widths; the message column takes the rest.
const (
	targetColWidth     = 22
	timeColWidth       = 24
	recurrenceColWidth = 14
	statusColWidth     = 8
	minMessageWidth    = 16
	columnGap          = 1
)

type columns struct {
	message, target, time, recurrence, status int
}

func layoutColumns(width int) columns {
	fixed := targetColWidth + timeColWidth + recurrenceColWidth + statusColWidth + 4*columnGap
	return columns{
		message:    max(minMessageWidth, width-fixed-2),
		target:     targetColWidth,
		time:       timeColWidth,
		recurrence: recurrenceColWidth,
		status:     statusColWidth,
	}
}

// Row status labels.
const (
	statusActive  = "active"
	statusPaused  = "paused"
	statusExpired = "expired"
)

// StatusText is "active", "paused" or "expired".
func StatusText(r reminder.Reminder, now time.Time) string {
	switch {
	case r.IsExpired(now):
		return statusExpired
	case r.IsActive:
		return statusActive
	default:
		return statusPaused
	}
}

// TargetLabels renders a reminder's recipients, preferring directory names.
// No targets means the linked account itself.
func TargetLabels(r reminder.Reminder, labels Labeler) string {
	targets := r.Targets()
	if len(targets) == 0 {
		return "Self"
	}
	names := make([]string, 0, len(targets))
	for _, t := range targets {
		name := ""
		if labels != nil {
			name = labels.Label(t)
		}
		if name == "" {
			name = t
		}
		names = append(names, SingleLine(name))
	}
	return strings.Join(names, ", ")
}

// ScheduleText describes when the reminder fires next.
func ScheduleText(r reminder.Reminder, now time.Time) string {
	next, ok := r.NextRun(now)
	if !ok {
		return "invalid cron"
	}
	if next.IsZero() {
		return "-"
	}
	return reminder.FormatHuman(next, now)
}

// RecurrenceText is the cron expression, or "once".
func RecurrenceText(r reminder.Reminder) string {
	if !r.IsRecurring() {
		return "once"
	}
	return SingleLine(r.Recurrence)
}

// RenderReminderRow renders one list row at width. User content is sanitized
// before its markup is applied.
func RenderReminderRow(r reminder.Reminder, labels Labeler, now time.Time, width int) string {
	cols := layoutColumns(width)
	status := StatusText(r, now)

	cells := []string{
		cell(FormatInline(SingleLine(r.Message)), cols.message),
		cell(TargetLabels(r, labels), cols.target),
		cell(ScheduleText(r, now), cols.time),
		cell(RecurrenceText(r), cols.recurrence),
		cell(statusStyle(status).Render(status), cols.status),
	}
	line := strings.Join(cells, strings.Repeat(" ", columnGap))
	if status != statusActive {
		line = SubtleStyle.Render(ansi.Strip(line))
	}
	return line
}

// RenderHeader renders the column titles with the active sort glyph. Each
// sortable title carries the number key that sorts by it.
func RenderHeader(glyphs map[pagination.SortKey]string, width int) string {
	cols := layoutColumns(width)
	title := func(n, name string, key pagination.SortKey, w int) string {
		t := n + " " + name
		if g := glyphs[key]; g != "" {
			t += " " + g
		}
		return cell(t, w)
	}
	cells := []string{
		title("1", "Message", pagination.SortByMessage, cols.message),
		title("2", "Target", pagination.SortByTarget, cols.target),
		title("3", "Time", pagination.SortByTime, cols.time),
		title("4", "Recurrence", pagination.SortByRecurrence, cols.recurrence),
		cell("Status", cols.status),
	}
	return TableHeaderStyle.Render(strings.Join(cells, strings.Repeat(" ", columnGap)))
}

func statusStyle(status string) lipgloss.Style {
	switch status {
	case statusActive:
		return SuccessStyle
	case statusExpired:
		return CriticalStyle
	default:
		return WarningStyle
	}
}

// cell truncates s to w cells and pads it to exactly w.
func cell(s string, w int) string {
	s = ansi.Truncate(s, w, "…")
	if pad := w - ansi.StringWidth(s); pad > 0 {
		s += strings.Repeat(" ", pad)
	}
	return s
}
