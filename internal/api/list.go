package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"

	"github.com/rshade/reminderin/internal/cli/pagination"
	"github.com/rshade/reminderin/internal/logging"
	"github.com/rshade/reminderin/internal/reminder"
)

const remindersPath = "/api/reminders"

// maxListBody caps a list response; the server limits pages to 100 records.
const maxListBody = 8 << 20

// OutcomeKind classifies the result of a list fetch.
type OutcomeKind int

// List fetch outcomes.
const (
	OutcomeSuccess OutcomeKind = iota
	OutcomeNotModified
	OutcomeCancelled
	OutcomeFailed
)

func (k OutcomeKind) String() string {
	switch k {
	case OutcomeSuccess:
		return "success"
	case OutcomeNotModified:
		return "not-modified"
	case OutcomeCancelled:
		return "cancelled"
	case OutcomeFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// ListQuery selects one page of reminders.
type ListQuery struct {
	Limit     int
	Cursor    string
	Search    string
	SortKey   pagination.SortKey
	SortOrder pagination.SortOrder
}

// Values encodes the query string. Sort parameters are only sent with a sort key.
func (q ListQuery) Values() url.Values {
	v := url.Values{}
	v.Set("limit", strconv.Itoa(q.Limit))
	if q.Cursor != "" {
		v.Set("cursor", q.Cursor)
	}
	if q.Search != "" {
		v.Set("search", q.Search)
	}
	if q.SortKey != pagination.SortNone {
		v.Set("sortBy", string(q.SortKey))
		order := q.SortOrder
		if order == "" {
			order = pagination.DefaultSortOrder
		}
		v.Set("order", string(order))
	}
	return v
}

// Page is one successfully fetched page.
type Page struct {
	Records    []reminder.Reminder
	Total      int
	NextCursor string
	ETag       string
}

// Outcome is the result of FetchList. Page is set for OutcomeSuccess and Err
// for OutcomeFailed.
type Outcome struct {
	Kind OutcomeKind
	Page Page
	Err  error
}

// listMeta is the canonical pagination block.
type listMeta struct {
	Total      int     `json:"total"`
	NextCursor *string `json:"next_cursor"`
}

// listEnvelope accepts both the canonical {data, meta} shape and the
// deprecated flat {data, total, next_cursor} shape.
type listEnvelope struct {
	Data       []reminder.Reminder `json:"data"`
	Meta       *listMeta           `json:"meta"`
	Total      *int                `json:"total"`
	NextCursor *string             `json:"next_cursor"`
}

// decodeListBody decodes a list response. legacy reports the flat shape.
//
//nolint:nonamedreturns // Named returns document the legacy flag.
func decodeListBody(data []byte) (page Page, legacy bool, err error) {
	var env listEnvelope
	if err = json.Unmarshal(data, &env); err != nil {
		return Page{}, false, fmt.Errorf("decoding reminder list: %w", err)
	}

	page.Records = env.Data
	if page.Records == nil {
		page.Records = []reminder.Reminder{}
	}

	switch {
	case env.Meta != nil:
		page.Total = env.Meta.Total
		if env.Meta.NextCursor != nil {
			page.NextCursor = *env.Meta.NextCursor
		}
	default:
		legacy = true
		if env.Total != nil {
			page.Total = *env.Total
		}
		if env.NextCursor != nil {
			page.NextCursor = *env.NextCursor
		}
	}
	return page, legacy, nil
}

// FetchList requests one page. A non-empty etag is sent as If-None-Match.
// Cancellation of ctx, before or during the call, yields OutcomeCancelled.
func (c *Client) FetchList(ctx context.Context, q ListQuery, etag string) Outcome {
	if ctx.Err() != nil {
		return Outcome{Kind: OutcomeCancelled}
	}

	req, err := c.newRequest(ctx, http.MethodGet, remindersPath, q.Values(), nil)
	if err != nil {
		return Outcome{Kind: OutcomeFailed, Err: err}
	}
	if etag != "" {
		req.Header.Set("If-None-Match", etag)
	}

	resp, err := c.send(c.http, req)
	if err != nil {
		if ctx.Err() != nil || errors.Is(err, context.Canceled) {
			return Outcome{Kind: OutcomeCancelled}
		}
		return Outcome{Kind: OutcomeFailed, Err: fmt.Errorf("fetching reminders: %w", err)}
	}
	defer drainClose(resp.Body)

	switch resp.StatusCode {
	case http.StatusNotModified:
		return Outcome{Kind: OutcomeNotModified}
	case http.StatusOK:
	default:
		return Outcome{Kind: OutcomeFailed, Err: newStatusError(resp)}
	}

	data, err := readBody(resp)
	if err != nil {
		if ctx.Err() != nil {
			return Outcome{Kind: OutcomeCancelled}
		}
		return Outcome{Kind: OutcomeFailed, Err: fmt.Errorf("reading reminder list: %w", err)}
	}

	page, legacy, err := decodeListBody(data)
	if err != nil {
		return Outcome{Kind: OutcomeFailed, Err: err}
	}
	if legacy {
		c.legacyOnce.Do(func() {
			logging.FromContext(ctx).Debug().
				Str("component", "api").
				Msg("server uses the flat list envelope; nested meta is preferred")
		})
	}
	page.ETag = resp.Header.Get("ETag")

	// A response that lost the race with cancellation must not be applied.
	if ctx.Err() != nil {
		return Outcome{Kind: OutcomeCancelled}
	}
	return Outcome{Kind: OutcomeSuccess, Page: page}
}

func readBody(resp *http.Response) ([]byte, error) {
	return io.ReadAll(io.LimitReader(resp.Body, maxListBody))
}
