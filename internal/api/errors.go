package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"
)

// maxErrorBody caps how much of an error response is kept.
const maxErrorBody = 4096

// Sentinel errors matched through StatusError.Is.
var (
	ErrUnauthorized = errors.New("not logged in")
	ErrNotFound     = errors.New("not found")
)

// StatusError is a non-2xx answer from the server.
type StatusError struct {
	Code    int
	Status  string
	Message string
}

func (e *StatusError) Error() string {
	if e.Message == "" {
		return "server returned " + e.Status
	}
	return fmt.Sprintf("server returned %s: %s", e.Status, e.Message)
}

// Is maps status codes onto the package sentinels.
func (e *StatusError) Is(target error) bool {
	switch target {
	case ErrUnauthorized:
		return e.Code == http.StatusUnauthorized
	case ErrNotFound:
		return e.Code == http.StatusNotFound
	default:
		return false
	}
}

func newStatusError(resp *http.Response) *StatusError {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	return &StatusError{
		Code:    resp.StatusCode,
		Status:  resp.Status,
		Message: strings.TrimSpace(string(body)),
	}
}

// RateLimitedError is returned when the server refuses a login attempt with 429.
// RetryAfter is zero when the server gave no usable wait time.
type RateLimitedError struct {
	RetryAfter time.Duration
}

func (e *RateLimitedError) Error() string {
	if e.RetryAfter <= 0 {
		return "Too many login attempts. Please try again later."
	}
	return "Too many login attempts. Try again in " + FormatWait(e.RetryAfter) + "."
}

// newRateLimitedError reads the wait from the Retry-After header and the JSON
// retry_after_seconds field and keeps the larger one.
func newRateLimitedError(resp *http.Response) *RateLimitedError {
	var headerSecs, bodySecs int
	if v, err := strconv.Atoi(strings.TrimSpace(resp.Header.Get("Retry-After"))); err == nil && v > 0 {
		headerSecs = v
	}

	var payload struct {
		RetryAfterSeconds json.Number `json:"retry_after_seconds"`
	}
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxErrorBody)).Decode(&payload); err == nil {
		if v, convErr := strconv.Atoi(payload.RetryAfterSeconds.String()); convErr == nil && v > 0 {
			bodySecs = v
		}
	}

	return &RateLimitedError{RetryAfter: time.Duration(max(headerSecs, bodySecs)) * time.Second}
}

// FormatWait renders a wait as "1 minute and 30 seconds", "45 seconds" or "2 minutes".
func FormatWait(d time.Duration) string {
	total := int(d.Round(time.Second) / time.Second)
	minutes, seconds := total/60, total%60

	unit := func(n int, word string) string {
		if n == 1 {
			return "1 " + word
		}
		return strconv.Itoa(n) + " " + word + "s"
	}

	switch {
	case minutes == 0:
		return unit(seconds, "second")
	case seconds == 0:
		return unit(minutes, "minute")
	default:
		return unit(minutes, "minute") + " and " + unit(seconds, "second")
	}
}
