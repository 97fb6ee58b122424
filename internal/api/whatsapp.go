package api

import (
	"context"
	"net/http"
)

// Linked account states reported by Status.
const (
	WAConnected    = "connected"
	WADisconnected = "disconnected"
	WANotLinked    = "not_linked"
)

// WAStatus is the linked WhatsApp account state.
type WAStatus struct {
	Status string `json:"status" yaml:"status"`
	Number string `json:"number" yaml:"number,omitempty"`
}

// Connected reports whether the account is linked and online.
func (s WAStatus) Connected() bool {
	return s.Status == WAConnected
}

// Chat is a contact or group the linked account can message.
type Chat struct {
	JID  string `json:"jid"  yaml:"jid"`
	Name string `json:"name" yaml:"name"`
}

// Status returns the linked account state.
func (c *Client) Status(ctx context.Context) (WAStatus, error) {
	var s WAStatus
	err := c.getJSON(ctx, "/api/wa/status", &s)
	return s, err
}

// Groups lists the groups the linked account has joined.
func (c *Client) Groups(ctx context.Context) ([]Chat, error) {
	var chats []Chat
	err := c.getJSON(ctx, "/api/wa/groups", &chats)
	return chats, err
}

// Contacts lists the linked account's contacts.
func (c *Client) Contacts(ctx context.Context) ([]Chat, error) {
	var chats []Chat
	err := c.getJSON(ctx, "/api/wa/contacts", &chats)
	return chats, err
}

// Unlink logs the WhatsApp account out of the service.
func (c *Client) Unlink(ctx context.Context) error {
	return c.mutate(ctx, http.MethodDelete, "/api/wa", nil, nil)
}
