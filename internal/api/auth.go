package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
)

// ErrInvalidCredentials is returned by Login for a rejected username or password.
var ErrInvalidCredentials = errors.New("invalid username or password")

type loginRequest struct {
	Username   string `json:"username"`
	Password   string `json:"password"`
	RememberMe bool   `json:"rememberMe"`
}

// Login opens a session. A 429 answer yields *RateLimitedError. When the
// client has a session store the cookie is persisted.
func (c *Client) Login(ctx context.Context, username, password string, remember bool) error {
	req, err := c.newRequest(ctx, http.MethodPost, "/api/login", nil, loginRequest{
		Username:   username,
		Password:   password,
		RememberMe: remember,
	})
	if err != nil {
		return err
	}
	resp, err := c.send(c.http, req)
	if err != nil {
		return fmt.Errorf("logging in: %w", err)
	}
	defer drainClose(resp.Body)

	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		return newRateLimitedError(resp)
	case resp.StatusCode == http.StatusUnauthorized:
		return ErrInvalidCredentials
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		return newStatusError(resp)
	}

	if c.session != nil {
		if saveErr := c.session.Save(c.http.Jar, c.baseURL); saveErr != nil {
			return saveErr
		}
	}
	return nil
}

// Logout ends the session on the server and forgets the persisted cookie.
func (c *Client) Logout(ctx context.Context) error {
	req, err := c.newRequest(ctx, http.MethodPost, "/api/logout", nil, nil)
	if err != nil {
		return err
	}
	resp, err := c.send(c.http, req)
	if err != nil {
		return fmt.Errorf("logging out: %w", err)
	}
	defer drainClose(resp.Body)

	if c.session != nil {
		if clearErr := c.session.Clear(); clearErr != nil {
			return clearErr
		}
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return newStatusError(resp)
	}
	return nil
}

// Session reports whether the current cookie is accepted by the server.
func (c *Client) Session(ctx context.Context) (bool, error) {
	req, err := c.newRequest(ctx, http.MethodGet, "/api/session", nil, nil)
	if err != nil {
		return false, err
	}
	resp, err := c.send(c.http, req)
	if err != nil {
		return false, fmt.Errorf("checking session: %w", err)
	}
	defer drainClose(resp.Body)

	switch resp.StatusCode {
	case http.StatusOK, http.StatusNoContent:
		return true, nil
	case http.StatusUnauthorized:
		return false, nil
	default:
		return false, newStatusError(resp)
	}
}
