package reminder

import (
	"fmt"
	"strings"
	"time"

	"github.com/robfig/cron/v3"
)

// whenLayouts are the accepted layouts for a one-time delivery time, tried in order.
//
//nolint:gochecknoglobals // Read-only lookup table.
var whenLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04",
	"2006-01-02T15:04",
}

//nolint:gochecknoglobals // Parser is stateless and safe for concurrent use.
var recurrenceParser = cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)

// ParseRecurrence parses a standard 5-field cron expression.
func ParseRecurrence(expr string) (cron.Schedule, error) {
	sched, err := recurrenceParser.Parse(strings.TrimSpace(expr))
	if err != nil {
		return nil, &ValidationError{Field: "recurrence", Reason: fmt.Sprintf("invalid cron expression %q", expr), Err: err}
	}
	return sched, nil
}

// ParseWhen parses a one-time delivery time. Layouts without a zone are read in loc.
func ParseWhen(s string, loc *time.Location) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, &ValidationError{Field: "scheduled_at", Reason: "time is required"}
	}
	for _, layout := range whenLayouts {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return t, nil
		}
	}
	return time.Time{}, &ValidationError{
		Field:  "scheduled_at",
		Reason: fmt.Sprintf("cannot parse %q, use RFC3339 or \"2006-01-02 15:04\"", s),
	}
}

// FormatHuman renders t relative to now: "today at 15:04", "tomorrow at 09:30",
// "yesterday at 18:00", or an absolute date for anything further away.
func FormatHuman(t, now time.Time) string {
	t = t.In(now.Location())
	day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, now.Location())
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())

	clock := t.Format("15:04")
	switch {
	case day.Equal(today):
		return "today at " + clock
	case day.Equal(today.AddDate(0, 0, 1)):
		return "tomorrow at " + clock
	case day.Equal(today.AddDate(0, 0, -1)):
		return "yesterday at " + clock
	default:
		return t.Format("Mon, 2 Jan 2006 15:04")
	}
}
