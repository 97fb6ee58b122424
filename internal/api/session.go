package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
)

// SessionStore persists session cookies for one server in a JSON file.
type SessionStore struct {
	path string
}

type sessionFile struct {
	Server  string          `json:"server"`
	Cookies []sessionCookie `json:"cookies"`
}

type sessionCookie struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// NewSessionStore returns a store backed by path.
func NewSessionStore(path string) *SessionStore {
	return &SessionStore{path: path}
}

// Path returns the session file location.
func (s *SessionStore) Path() string {
	return s.path
}

// Load restores cookies saved for server into jar. A missing file, or one
// saved for another server, leaves jar untouched.
func (s *SessionStore) Load(jar http.CookieJar, server *url.URL) error {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("reading session: %w", err)
	}

	var sf sessionFile
	if err = json.Unmarshal(data, &sf); err != nil {
		return fmt.Errorf("parsing session %s: %w", s.path, err)
	}
	if sf.Server != server.String() {
		return nil
	}

	cookies := make([]*http.Cookie, 0, len(sf.Cookies))
	for _, c := range sf.Cookies {
		cookies = append(cookies, &http.Cookie{Name: c.Name, Value: c.Value, Path: "/"})
	}
	jar.SetCookies(server, cookies)
	return nil
}

// Save writes the cookies jar holds for server.
func (s *SessionStore) Save(jar http.CookieJar, server *url.URL) error {
	sf := sessionFile{Server: server.String()}
	for _, c := range jar.Cookies(server) {
		sf.Cookies = append(sf.Cookies, sessionCookie{Name: c.Name, Value: c.Value})
	}

	data, err := json.MarshalIndent(sf, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding session: %w", err)
	}
	if err = os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return fmt.Errorf("creating session directory: %w", err)
	}

	tmp := s.path + ".tmp"
	if err = os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("writing session: %w", err)
	}
	if err = os.Rename(tmp, s.path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("replacing session: %w", err)
	}
	return nil
}

// Clear deletes the session file.
func (s *SessionStore) Clear() error {
	if err := os.Remove(s.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("removing session: %w", err)
	}
	return nil
}
