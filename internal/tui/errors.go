package tui

import (
	"context"
	"errors"

	"github.com/rshade/reminderin/internal/api"
	"github.com/rshade/reminderin/internal/reminder"
)

// ErrorText turns an error into a toast line.
func ErrorText(err error) string {
	var (
		rateErr   *api.RateLimitedError
		statusErr *api.StatusError
	)
	switch {
	case err == nil:
		return ""
	case errors.Is(err, api.ErrUnauthorized):
		return "Session expired. Run `reminderin login` and try again."
	case errors.As(err, &rateErr):
		return rateErr.Error()
	case errors.Is(err, reminder.ErrValidation):
		return err.Error()
	case errors.As(err, &statusErr):
		if statusErr.Message != "" {
			return statusErr.Message
		}
		return "Server error: " + statusErr.Status
	case errors.Is(err, context.DeadlineExceeded):
		return "The server did not respond in time."
	default:
		return "Network error: " + err.Error()
	}
}
