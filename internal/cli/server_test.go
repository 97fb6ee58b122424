package cli_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/rshade/reminderin/internal/cli"
	"github.com/rshade/reminderin/internal/config"
	"github.com/rshade/reminderin/internal/reminder"
)

const sessionCookie = "sid"

// fakeServer is an in-memory scheduling server.
type fakeServer struct {
	*httptest.Server

	mu         sync.Mutex
	reminders  []reminder.Reminder
	queries    []url.Values
	created    []reminder.Draft
	updated    []reminder.Draft
	deleted    []string
	toggled    []string
	wiped      bool
	loggedOut  bool
	requests   int
	failCreate string
	missingIDs map[string]bool
	rejectAll  bool
	nextID     int
}

func newFakeServer(t *testing.T) *fakeServer {
	t.Helper()

	fs := &fakeServer{missingIDs: map[string]bool{}}
	mux := http.NewServeMux()

	mux.HandleFunc("GET /api/reminders", fs.authed(fs.handleList))
	mux.HandleFunc("POST /api/reminders", fs.authed(fs.handleCreate))
	mux.HandleFunc("PUT /api/reminders/{id}", fs.authed(fs.handleUpdate))
	mux.HandleFunc("DELETE /api/reminders/{id}", fs.authed(fs.handleDelete))
	mux.HandleFunc("DELETE /api/reminders", fs.authed(func(w http.ResponseWriter, _ *http.Request) {
		fs.wiped = true
		w.WriteHeader(http.StatusNoContent)
	}))
	mux.HandleFunc("PATCH /api/reminders/{id}/toggle", fs.authed(func(w http.ResponseWriter, r *http.Request) {
		fs.toggled = append(fs.toggled, r.PathValue("id"))
		w.WriteHeader(http.StatusNoContent)
	}))

	mux.HandleFunc("POST /api/login", fs.handleLogin)
	mux.HandleFunc("POST /api/logout", func(w http.ResponseWriter, _ *http.Request) {
		fs.mu.Lock()
		fs.loggedOut = true
		fs.mu.Unlock()
		w.WriteHeader(http.StatusNoContent)
	})
	mux.HandleFunc("GET /api/session", func(w http.ResponseWriter, r *http.Request) {
		if c, err := r.Cookie(sessionCookie); err == nil && c.Value == "ok" {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		w.WriteHeader(http.StatusUnauthorized)
	})

	mux.HandleFunc("GET /api/wa/status", fs.authed(func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, map[string]string{"status": "connected", "number": "6281234567890"})
	}))
	mux.HandleFunc("GET /api/wa/groups", fs.authed(func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, []map[string]string{{"jid": "120363025246125486@g.us", "name": "Family"}})
	}))
	mux.HandleFunc("GET /api/wa/contacts", fs.authed(func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, []map[string]string{
			{"jid": "6281234567890@s.whatsapp.net", "name": "Budi"},
			{"jid": "6289876543210@s.whatsapp.net", "name": "Sari"},
		})
	}))
	mux.HandleFunc("GET /api/wa/pair", fs.authed(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		flusher, _ := w.(http.Flusher)
		_, _ = fmt.Fprintf(w, "event: code\ndata: {\"type\":\"code\",\"code\":\"ABCD-EFGH\"}\n\n")
		if flusher != nil {
			flusher.Flush()
		}
		_, _ = fmt.Fprintf(w, "event: success\ndata: {\"type\":\"success\",\"number\":%q}\n\n", r.URL.Query().Get("phone"))
	}))

	fs.Server = httptest.NewServer(mux)
	t.Cleanup(fs.Close)
	return fs
}

// authed counts the request and rejects it when rejectAll is set.
func (fs *fakeServer) authed(h http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		fs.mu.Lock()
		defer fs.mu.Unlock()
		fs.requests++
		if fs.rejectAll {
			http.Error(w, `{"message":"session expired"}`, http.StatusUnauthorized)
			return
		}
		h(w, r)
	}
}

func (fs *fakeServer) handleList(w http.ResponseWriter, r *http.Request) {
	fs.queries = append(fs.queries, r.URL.Query())
	data := fs.reminders
	if data == nil {
		data = []reminder.Reminder{}
	}
	writeJSON(w, map[string]any{
		"data": data,
		"meta": map[string]any{"total": len(data), "next_cursor": nil},
	})
}

func (fs *fakeServer) handleCreate(w http.ResponseWriter, r *http.Request) {
	var d reminder.Draft
	if err := json.NewDecoder(r.Body).Decode(&d); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if fs.failCreate != "" && d.Message == fs.failCreate {
		http.Error(w, `{"message":"rejected"}`, http.StatusUnprocessableEntity)
		return
	}
	fs.created = append(fs.created, d)
	fs.nextID++
	at, _ := time.Parse(time.RFC3339, d.ScheduledAt)
	writeJSON(w, reminder.Reminder{
		ID:          fmt.Sprintf("r%d", fs.nextID),
		Message:     d.Message,
		TargetWA:    d.TargetWA,
		ScheduledAt: at,
		Recurrence:  d.Recurrence,
		IsActive:    true,
	})
}

func (fs *fakeServer) handleUpdate(w http.ResponseWriter, r *http.Request) {
	var d reminder.Draft
	if err := json.NewDecoder(r.Body).Decode(&d); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	d.ID = r.PathValue("id")
	fs.updated = append(fs.updated, d)
	w.WriteHeader(http.StatusNoContent)
}

func (fs *fakeServer) handleDelete(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if fs.missingIDs[id] {
		http.Error(w, `{"message":"not found"}`, http.StatusNotFound)
		return
	}
	fs.deleted = append(fs.deleted, id)
	w.WriteHeader(http.StatusNoContent)
}

func (fs *fakeServer) handleLogin(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if body.Username != "alice" || body.Password != "secret" {
		w.WriteHeader(http.StatusUnauthorized)
		return
	}
	http.SetCookie(w, &http.Cookie{Name: sessionCookie, Value: "ok", Path: "/"})
	w.WriteHeader(http.StatusOK)
}

func (fs *fakeServer) snapshot(fn func(fs *fakeServer)) {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	fn(fs)
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

// runOpts configures one CLI invocation.
type runOpts struct {
	env   map[string]string
	stdin io.Reader
}

// setupHome points the config directory at a temp dir and resets global config.
func setupHome(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv(config.EnvHome, home)
	t.Setenv(config.EnvServer, "")
	t.Setenv(config.EnvPageSize, "")
	config.ResetGlobalConfigForTest()
	t.Cleanup(config.ResetGlobalConfigForTest)
	return home
}

// run executes the root command like a fresh process would and returns
// stdout and stderr.
func run(t *testing.T, opts runOpts, args ...string) (string, string, error) {
	t.Helper()
	config.ResetGlobalConfigForTest()

	lookup := func(k string) (string, bool) {
		if k == cli.EnvNoTUI {
			return "1", true
		}
		v, ok := opts.env[k]
		return v, ok
	}
	root := cli.NewRootCmdWithEnv("test", lookup)

	var stdout, stderr bytes.Buffer
	root.SetOut(&stdout)
	root.SetErr(&stderr)
	if opts.stdin != nil {
		root.SetIn(opts.stdin)
	} else {
		root.SetIn(strings.NewReader(""))
	}
	root.SetArgs(args)

	err := root.ExecuteContext(context.Background())
	return stdout.String(), stderr.String(), err
}

// runAgainst runs a command with --server pointed at fs.
func runAgainst(t *testing.T, fs *fakeServer, args ...string) (string, string, error) {
	t.Helper()
	return run(t, runOpts{}, append([]string{"--server", fs.URL}, args...)...)
}

// login opens a session against fs through the login command.
func login(t *testing.T, fs *fakeServer) {
	t.Helper()
	_, _, err := run(t, runOpts{env: map[string]string{
		config.EnvUsername: "alice",
		config.EnvPassword: "secret",
	}}, "--server", fs.URL, "login")
	require.NoError(t, err)
}
