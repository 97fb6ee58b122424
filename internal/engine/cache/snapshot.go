package cache

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/rshade/reminderin/internal/api"
	"github.com/rshade/reminderin/internal/cli/pagination"
	"github.com/rshade/reminderin/internal/reminder"
)

// Snapshot is a saved first page.
type Snapshot struct {
	Page    api.Page
	SavedAt time.Time
}

type snapshotData struct {
	Records    []reminder.Reminder `json:"records"`
	Total      int                 `json:"total"`
	NextCursor string              `json:"next_cursor,omitempty"`
}

// Snapshots stores first pages of list queries for one server.
type Snapshots struct {
	store  *FileStore
	server string
}

// NewSnapshots returns a snapshot view of store for server.
func NewSnapshots(store *FileStore, server string) *Snapshots {
	return &Snapshots{store: store, server: server}
}

// Cacheable reports whether q selects a page worth snapshotting: the first
// page with no search term.
func Cacheable(q api.ListQuery) bool {
	return q.Cursor == "" && q.Search == ""
}

func (s *Snapshots) key(q api.ListQuery) (string, error) {
	order := q.SortOrder
	if q.SortKey == pagination.SortNone {
		order = ""
	}
	return GenerateKey(KeyParams{
		Server:    s.server,
		Limit:     q.Limit,
		Search:    q.Search,
		SortKey:   string(q.SortKey),
		SortOrder: string(order),
	})
}

// Save stores page as the answer to q. Queries that are not Cacheable are ignored.
func (s *Snapshots) Save(q api.ListQuery, page api.Page) error {
	if !Cacheable(q) || !s.store.IsEnabled() {
		return nil
	}
	key, err := s.key(q)
	if err != nil {
		return err
	}
	data, err := json.Marshal(snapshotData{
		Records:    page.Records,
		Total:      page.Total,
		NextCursor: page.NextCursor,
	})
	if err != nil {
		return fmt.Errorf("encoding snapshot: %w", err)
	}
	return s.store.Set(key, data, page.ETag)
}

// Restore returns the snapshot saved for q. ok is false when there is none,
// it expired, or the store is disabled.
func (s *Snapshots) Restore(q api.ListQuery) (Snapshot, bool, error) {
	if !Cacheable(q) || !s.store.IsEnabled() {
		return Snapshot{}, false, nil
	}
	key, err := s.key(q)
	if err != nil {
		return Snapshot{}, false, err
	}

	entry, err := s.store.Get(key)
	switch {
	case errors.Is(err, ErrCacheNotFound), errors.Is(err, ErrCacheExpired):
		return Snapshot{}, false, nil
	case err != nil:
		return Snapshot{}, false, err
	}

	var sd snapshotData
	if err = json.Unmarshal(entry.Data, &sd); err != nil {
		return Snapshot{}, false, fmt.Errorf("decoding snapshot: %w", err)
	}
	if sd.Records == nil {
		sd.Records = []reminder.Reminder{}
	}
	return Snapshot{
		Page: api.Page{
			Records:    sd.Records,
			Total:      sd.Total,
			NextCursor: sd.NextCursor,
			ETag:       entry.ETag,
		},
		SavedAt: entry.CreatedAt,
	}, true, nil
}
