package reminder

import (
	"time"
)

// Reminder is a scheduled message as returned by the list endpoint.
type Reminder struct {
	ID          string    `json:"id"                   yaml:"id"`
	Message     string    `json:"message"              yaml:"message"`
	TargetWA    string    `json:"target_wa"            yaml:"target_wa"`
	ScheduledAt time.Time `json:"scheduled_at"         yaml:"scheduled_at"`
	Recurrence  string    `json:"recurrence"           yaml:"recurrence"`
	IsActive    bool      `json:"is_active"            yaml:"is_active"`
	CreatedAt   time.Time `json:"created_at,omitzero"  yaml:"created_at,omitempty"`
}

// IsRecurring reports whether the reminder repeats on a cron schedule.
func (r Reminder) IsRecurring() bool {
	return r.Recurrence != ""
}

// IsExpired reports whether a one-time reminder's delivery time has passed.
// Recurring reminders never expire.
func (r Reminder) IsExpired(now time.Time) bool {
	if r.IsRecurring() {
		return false
	}
	return !r.ScheduledAt.IsZero() && r.ScheduledAt.Before(now)
}

// Targets returns the individual recipient identifiers. An empty result means
// the reminder is delivered to the linked account itself.
func (r Reminder) Targets() []string {
	return SplitTargets(r.TargetWA)
}

// NextRun returns the time the reminder will fire next. For recurring reminders
// it is computed from the cron expression, for one-time reminders it is the
// scheduled time. ok is false when a recurrence cannot be parsed.
//
//nolint:nonamedreturns // Named returns document the ok flag.
func (r Reminder) NextRun(now time.Time) (next time.Time, ok bool) {
	if !r.IsRecurring() {
		return r.ScheduledAt, true
	}
	sched, err := ParseRecurrence(r.Recurrence)
	if err != nil {
		return time.Time{}, false
	}
	return sched.Next(now), true
}

// Draft is the payload for create and full-replace edit.
type Draft struct {
	ID          string `json:"id,omitempty"`
	Message     string `json:"message"`
	TargetWA    string `json:"target_wa"`
	Recurrence  string `json:"recurrence"`
	ScheduledAt string `json:"scheduled_at"`
}

// DraftFrom builds an edit draft that replaces the reminder with itself.
func DraftFrom(r Reminder) Draft {
	return Draft{
		ID:          r.ID,
		Message:     r.Message,
		TargetWA:    r.TargetWA,
		Recurrence:  r.Recurrence,
		ScheduledAt: r.ScheduledAt.Format(time.RFC3339),
	}
}
