package api

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/rshade/reminderin/internal/logging"
)

// maxEventSize bounds one event; QR events carry a base64 PNG.
const maxEventSize = 1 << 20

// ErrStreamClosed is returned when a link stream ends without success or error.
var ErrStreamClosed = errors.New("link stream closed before completion")

// ConnectionEvent is one message from a link stream: *QREvent, *CodeEvent,
// *SuccessEvent or *ErrorEvent.
type ConnectionEvent interface {
	// Type returns the wire name of the event.
	Type() string
}

// QREvent carries a QR code to scan, as a PNG data URI and the raw code.
type QREvent struct {
	Image string
	Code  string
}

// CodeEvent carries a pairing code to type on the phone.
type CodeEvent struct {
	Code string
}

// SuccessEvent reports that the account with Number is linked.
type SuccessEvent struct {
	Number string
}

// ErrorEvent reports that linking failed.
type ErrorEvent struct {
	Message string
}

func (*QREvent) Type() string      { return "qr" }
func (*CodeEvent) Type() string    { return "code" }
func (*SuccessEvent) Type() string { return "success" }
func (*ErrorEvent) Type() string   { return "error" }

// LinkError is returned by the stream calls when the server sent an error event.
type LinkError struct {
	Message string
}

func (e *LinkError) Error() string {
	return "linking failed: " + e.Message
}

// ConnectionEventHandler consumes link stream events.
type ConnectionEventHandler interface {
	HandleEvent(ev ConnectionEvent)
}

// HandlerFunc adapts a function to ConnectionEventHandler.
type HandlerFunc func(ev ConnectionEvent)

// HandleEvent calls f(ev).
func (f HandlerFunc) HandleEvent(ev ConnectionEvent) { f(ev) }

// StreamQR links an account by QR code. It returns nil after a success event.
func (c *Client) StreamQR(ctx context.Context, h ConnectionEventHandler) error {
	return c.streamEvents(ctx, "/api/wa/qr", nil, h)
}

// StreamPair links an account by pairing code sent to phone.
func (c *Client) StreamPair(ctx context.Context, phone string, h ConnectionEventHandler) error {
	return c.streamEvents(ctx, "/api/wa/pair", url.Values{"phone": {phone}}, h)
}

func (c *Client) streamEvents(ctx context.Context, path string, query url.Values, h ConnectionEventHandler) error {
	req, err := c.newRequest(ctx, http.MethodGet, path, query, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "text/event-stream")

	resp, err := c.send(c.stream, req)
	if err != nil {
		return fmt.Errorf("opening %s: %w", path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return newStatusError(resp)
	}

	log := logging.FromContext(ctx)
	return readEvents(resp.Body, func(ev ConnectionEvent) (bool, error) {
		log.Debug().Str("component", "api").Str("event", ev.Type()).Msg("link event")
		h.HandleEvent(ev)
		switch e := ev.(type) {
		case *SuccessEvent:
			return true, nil
		case *ErrorEvent:
			return true, &LinkError{Message: e.Message}
		default:
			return false, nil
		}
	})
}

// wireEvent is the JSON payload of a data line.
type wireEvent struct {
	Type    string `json:"type"`
	Image   string `json:"image"`
	Code    string `json:"code"`
	Number  string `json:"number"`
	Message string `json:"message"`
}

func (w wireEvent) decode(fallbackType string) ConnectionEvent {
	typ := w.Type
	if typ == "" {
		typ = fallbackType
	}
	switch typ {
	case "qr":
		return &QREvent{Image: w.Image, Code: w.Code}
	case "code":
		return &CodeEvent{Code: w.Code}
	case "success":
		return &SuccessEvent{Number: w.Number}
	case "error":
		return &ErrorEvent{Message: w.Message}
	default:
		return nil
	}
}

// readEvents parses a server-sent event stream, calling emit for every known
// event until emit reports done or the stream ends.
func readEvents(r io.Reader, emit func(ConnectionEvent) (bool, error)) error {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), maxEventSize)

	var (
		eventName string
		data      strings.Builder
	)
	dispatch := func() (bool, error) {
		defer func() {
			eventName = ""
			data.Reset()
		}()
		if data.Len() == 0 {
			return false, nil
		}
		var w wireEvent
		if err := json.Unmarshal([]byte(data.String()), &w); err != nil {
			return false, nil //nolint:nilerr // Malformed events are skipped.
		}
		ev := w.decode(eventName)
		if ev == nil {
			return false, nil
		}
		return emit(ev)
	}

	for sc.Scan() {
		line := sc.Text()
		switch {
		case line == "":
			if done, err := dispatch(); done {
				return err
			}
		case strings.HasPrefix(line, ":"):
			// Comment or keep-alive.
		case strings.HasPrefix(line, "event:"):
			eventName = strings.TrimSpace(strings.TrimPrefix(line, "event:"))
		case strings.HasPrefix(line, "data:"):
			if data.Len() > 0 {
				data.WriteByte('\n')
			}
			data.WriteString(strings.TrimPrefix(strings.TrimPrefix(line, "data:"), " "))
		}
	}
	if err := sc.Err(); err != nil {
		return fmt.Errorf("reading link stream: %w", err)
	}
	if done, err := dispatch(); done {
		return err
	}
	return ErrStreamClosed
}
