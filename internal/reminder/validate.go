package reminder

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"
)

// MaxMessageChars is the longest message body the service accepts.
const MaxMessageChars = 4000

// ErrValidation is matched by every *ValidationError.
var ErrValidation = errors.New("validation failed")

//nolint:gochecknoglobals // Compiled once, read-only.
var pairPhonePattern = regexp.MustCompile(`^\d{8,20}$`)

// ValidationError describes input rejected before any request is sent.
type ValidationError struct {
	Field  string
	Reason string
	Err    error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

// Is makes every ValidationError match ErrValidation.
func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

// Compose collects the inputs of the compose form. Several messages share one
// target set and one schedule and become one reminder each.
type Compose struct {
	Messages   []string
	Targets    []string
	Recurrence string
	At         time.Time
}

// Drafts validates the compose inputs and returns one draft per non-blank message.
// Recurring drafts are scheduled from now; the server derives the next run.
func (c Compose) Drafts(now time.Time) ([]Draft, error) {
	var messages []string
	for _, m := range c.Messages {
		m = strings.TrimSpace(m)
		if m == "" {
			continue
		}
		if n := utf8.RuneCountInString(m); n > MaxMessageChars {
			return nil, &ValidationError{
				Field:  "message",
				Reason: fmt.Sprintf("message is %d characters, limit is %d", n, MaxMessageChars),
			}
		}
		messages = append(messages, m)
	}
	if len(messages) == 0 {
		return nil, &ValidationError{Field: "message", Reason: "at least one message is required"}
	}

	targets, err := NormalizeTargets(c.Targets)
	if err != nil {
		return nil, err
	}

	recurrence := strings.TrimSpace(c.Recurrence)
	var scheduledAt time.Time
	if recurrence != "" {
		if _, parseErr := ParseRecurrence(recurrence); parseErr != nil {
			return nil, parseErr
		}
		scheduledAt = now
	} else {
		if c.At.IsZero() {
			return nil, &ValidationError{Field: "scheduled_at", Reason: "time is required for a one-time reminder"}
		}
		if !c.At.After(now) {
			return nil, &ValidationError{Field: "scheduled_at", Reason: "time must be in the future"}
		}
		scheduledAt = c.At
	}

	drafts := make([]Draft, 0, len(messages))
	for _, m := range messages {
		drafts = append(drafts, Draft{
			Message:     m,
			TargetWA:    targets,
			Recurrence:  recurrence,
			ScheduledAt: scheduledAt.Format(time.RFC3339),
		})
	}
	return drafts, nil
}

// CanToggle rejects toggling a one-time reminder whose time has passed.
func CanToggle(r Reminder, now time.Time) error {
	if r.IsExpired(now) {
		return &ValidationError{Field: "is_active", Reason: "reminder time has already passed"}
	}
	return nil
}

// NormalizePairPhone strips formatting from a phone number used for code pairing.
func NormalizePairPhone(phone string) (string, error) {
	var b strings.Builder
	for _, r := range phone {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	digits := b.String()
	if !pairPhonePattern.MatchString(digits) {
		return "", &ValidationError{Field: "phone", Reason: "phone number must have 8 to 20 digits"}
	}
	return digits, nil
}
