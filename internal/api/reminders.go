package api

import (
	"context"
	"net/http"
	"net/url"

	"github.com/rshade/reminderin/internal/reminder"
)

func reminderPath(id string) string {
	return remindersPath + "/" + url.PathEscape(id)
}

// Create schedules a new reminder and returns the stored record.
func (c *Client) Create(ctx context.Context, d reminder.Draft) (reminder.Reminder, error) {
	d.ID = ""
	var created reminder.Reminder
	err := c.mutate(ctx, http.MethodPost, remindersPath, d, &created)
	return created, err
}

// Update replaces message, targets, recurrence and schedule of d.ID.
func (c *Client) Update(ctx context.Context, d reminder.Draft) error {
	return c.mutate(ctx, http.MethodPut, reminderPath(d.ID), d, nil)
}

// Delete removes one reminder.
func (c *Client) Delete(ctx context.Context, id string) error {
	return c.mutate(ctx, http.MethodDelete, reminderPath(id), nil, nil)
}

// DeleteAll removes every reminder.
func (c *Client) DeleteAll(ctx context.Context) error {
	return c.mutate(ctx, http.MethodDelete, remindersPath, nil, nil)
}

// Toggle flips is_active of one reminder.
func (c *Client) Toggle(ctx context.Context, id string) error {
	return c.mutate(ctx, http.MethodPatch, reminderPath(id)+"/toggle", nil, nil)
}
