package directory

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/rshade/reminderin/internal/reminder"
)

//go:embed schema.sql
var schema string

// Kind distinguishes contacts from groups.
type Kind string

// Label kinds.
const (
	KindContact Kind = "contact"
	KindGroup   Kind = "group"
)

// ErrClosed is returned by a closed or nil store.
var ErrClosed = errors.New("directory is closed")

// Label is the display name of one WhatsApp id.
type Label struct {
	JID       string
	Name      string
	Kind      Kind
	UpdatedAt time.Time
}

// Store is the SQLite-backed label directory.
type Store struct {
	db *sql.DB
}

// Open opens or creates the directory database at path.
func Open(ctx context.Context, path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("directory path is required")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, fmt.Errorf("creating directory folder: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening directory: %w", err)
	}
	// One connection serializes writers.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	for _, pragma := range []string{
		"PRAGMA busy_timeout = 2000",
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
	} {
		_, _ = db.ExecContext(ctx, pragma)
	}

	if _, err = db.ExecContext(ctx, schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrating directory: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the database.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Upsert inserts or renames labels.
func (s *Store) Upsert(ctx context.Context, labels ...Label) error {
	if s == nil || s.db == nil {
		return ErrClosed
	}
	return s.inTx(ctx, func(tx *sql.Tx) error {
		return upsertAll(ctx, tx, labels, time.Now())
	})
}

// Replace makes kind hold exactly labels, dropping ids no longer present.
func (s *Store) Replace(ctx context.Context, kind Kind, labels []Label) error {
	if s == nil || s.db == nil {
		return ErrClosed
	}
	return s.inTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM labels WHERE kind = ?`, string(kind)); err != nil {
			return fmt.Errorf("clearing %s labels: %w", kind, err)
		}
		for i := range labels {
			labels[i].Kind = kind
		}
		return upsertAll(ctx, tx, labels, time.Now())
	})
}

func upsertAll(ctx context.Context, tx *sql.Tx, labels []Label, now time.Time) error {
	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO labels(jid, name, kind, updated_at) VALUES(?,?,?,?)
		 ON CONFLICT(jid) DO UPDATE SET name=excluded.name, kind=excluded.kind, updated_at=excluded.updated_at`)
	if err != nil {
		return fmt.Errorf("preparing upsert: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	for _, l := range labels {
		jid := CanonicalJID(l.JID)
		if jid == "" || strings.TrimSpace(l.Name) == "" {
			continue
		}
		kind := l.Kind
		if kind == "" {
			kind = kindOf(jid)
		}
		if _, err = stmt.ExecContext(ctx, jid, strings.TrimSpace(l.Name), string(kind), now.UnixMilli()); err != nil {
			return fmt.Errorf("storing label %s: %w", jid, err)
		}
	}
	return nil
}

func (s *Store) inTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	if err = fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}

// Lookup returns the label for a target in any accepted form.
func (s *Store) Lookup(ctx context.Context, target string) (Label, bool, error) {
	if s == nil || s.db == nil {
		return Label{}, false, ErrClosed
	}
	var (
		l    Label
		kind string
		ms   int64
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT jid, name, kind, updated_at FROM labels WHERE jid = ?`, CanonicalJID(target),
	).Scan(&l.JID, &l.Name, &kind, &ms)
	if errors.Is(err, sql.ErrNoRows) {
		return Label{}, false, nil
	}
	if err != nil {
		return Label{}, false, fmt.Errorf("looking up %s: %w", target, err)
	}
	l.Kind = Kind(kind)
	l.UpdatedAt = time.UnixMilli(ms)
	return l, true, nil
}

// List returns the labels of kind, or all labels for an empty kind, by name.
func (s *Store) List(ctx context.Context, kind Kind) ([]Label, error) {
	if s == nil || s.db == nil {
		return nil, ErrClosed
	}
	query := `SELECT jid, name, kind, updated_at FROM labels`
	var args []any
	if kind != "" {
		query += ` WHERE kind = ?`
		args = append(args, string(kind))
	}
	query += ` ORDER BY name COLLATE NOCASE, jid`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing labels: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []Label
	for rows.Next() {
		var (
			l  Label
			k  string
			ms int64
		)
		if err = rows.Scan(&l.JID, &l.Name, &k, &ms); err != nil {
			return nil, fmt.Errorf("reading label: %w", err)
		}
		l.Kind = Kind(k)
		l.UpdatedAt = time.UnixMilli(ms)
		out = append(out, l)
	}
	return out, rows.Err()
}

// Names returns every label as a jid to name map.
func (s *Store) Names(ctx context.Context) (Names, error) {
	labels, err := s.List(ctx, "")
	if err != nil {
		return nil, err
	}
	names := make(Names, len(labels))
	for _, l := range labels {
		names[l.JID] = l.Name
	}
	return names, nil
}

// Names resolves targets to display names in memory.
type Names map[string]string

// Label returns the name for target, or "" when unknown.
func (n Names) Label(target string) string {
	return n[CanonicalJID(target)]
}

// CanonicalJID maps the accepted target forms onto a full JID: bare phone
// digits become a user JID and legacy "creator-timestamp" ids a group JID.
func CanonicalJID(target string) string {
	t := strings.TrimSpace(target)
	switch {
	case t == "":
		return ""
	case strings.Contains(t, "@"):
		return strings.ToLower(t)
	case reminder.IsGroup(t):
		return t + "@g.us"
	default:
		return t + "@s.whatsapp.net"
	}
}

func kindOf(jid string) Kind {
	if strings.HasSuffix(jid, "@g.us") {
		return KindGroup
	}
	return KindContact
}
