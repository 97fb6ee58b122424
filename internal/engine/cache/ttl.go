package cache

import (
	"fmt"
	"strconv"
	"time"
)

// TTL bounds.
const (
	// DefaultTTLSeconds is one hour.
	DefaultTTLSeconds = 3600

	// MinTTLSeconds is one minute.
	MinTTLSeconds = 60

	// MaxTTLSeconds is seven days.
	MaxTTLSeconds = 604800

	minutesPerHour = 60
	hoursPerDay    = 24
)

// ErrInvalidTTL is returned for a TTL outside the allowed range.
var ErrInvalidTTL = fmt.Errorf("TTL must be between %d and %d seconds", MinTTLSeconds, MaxTTLSeconds)

// ValidateTTL checks seconds against the allowed range.
func ValidateTTL(seconds int) error {
	if seconds < MinTTLSeconds || seconds > MaxTTLSeconds {
		return fmt.Errorf("%w: got %d", ErrInvalidTTL, seconds)
	}
	return nil
}

// FormatDuration formats a duration as "30s", "5m", "2h30m" or "3d2h".
func FormatDuration(d time.Duration) string {
	if d < time.Minute {
		return fmt.Sprintf("%.0fs", d.Seconds())
	}
	if d < time.Hour {
		return fmt.Sprintf("%.0fm", d.Minutes())
	}
	if d < hoursPerDay*time.Hour {
		hours := int(d.Hours())
		minutes := int(d.Minutes()) % minutesPerHour
		if minutes == 0 {
			return fmt.Sprintf("%dh", hours)
		}
		return fmt.Sprintf("%dh%dm", hours, minutes)
	}
	days := int(d.Hours()) / hoursPerDay
	hours := int(d.Hours()) % hoursPerDay
	if hours == 0 {
		return fmt.Sprintf("%dd", days)
	}
	return fmt.Sprintf("%dd%dh", days, hours)
}

// ParseTTL accepts integer seconds ("3600") or a duration ("1h", "90m").
func ParseTTL(s string) (int, error) {
	seconds, err := strconv.Atoi(s)
	if err != nil {
		duration, durErr := time.ParseDuration(s)
		if durErr != nil {
			return 0, fmt.Errorf("invalid TTL format: %w", durErr)
		}
		seconds = int(duration.Seconds())
	}
	if validErr := ValidateTTL(seconds); validErr != nil {
		return 0, validErr
	}
	return seconds, nil
}
