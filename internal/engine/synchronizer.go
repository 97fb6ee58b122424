package engine

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/rshade/reminderin/internal/api"
	"github.com/rshade/reminderin/internal/cli/pagination"
	"github.com/rshade/reminderin/internal/reminder"
)

// Phase is the synchronizer's position in the fetch cycle.
type Phase int

// Fetch cycle phases. Rendering, SkippedNotModified and Failed are passed
// through inside Apply, which always ends in Idle.
const (
	PhaseIdle Phase = iota
	PhaseFetching
	PhaseRendering
	PhaseSkippedNotModified
	PhaseFailed
)

func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseFetching:
		return "fetching"
	case PhaseRendering:
		return "rendering"
	case PhaseSkippedNotModified:
		return "skipped-not-modified"
	case PhaseFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// MutationKind names a completed reminder mutation.
type MutationKind int

// Mutations that trigger a reload.
const (
	MutationDeleteOne MutationKind = iota
	MutationDeleteAll
	MutationCreate
	MutationEdit
	MutationToggle
)

// resetsCursor reports whether the reload after k starts from the first page.
func (k MutationKind) resetsCursor() bool {
	switch k {
	case MutationDeleteAll, MutationCreate, MutationEdit:
		return true
	default:
		return false
	}
}

// Gateway fetches one page of reminders.
type Gateway interface {
	FetchList(ctx context.Context, q api.ListQuery, etag string) api.Outcome
}

// Renderer owns the displayed rows.
type Renderer interface {
	// Reconcile replaces the rows with records, preserving row identity.
	Reconcile(records []reminder.Reminder)
	// Remove drops the row with id and reports whether it was shown.
	Remove(id string) bool
}

// SnapshotStore persists pages for a stale-but-present startup.
type SnapshotStore interface {
	Save(q api.ListQuery, page api.Page) error
}

// SearchTicket identifies one search keystroke.
type SearchTicket uint64

// Fetch is a pending list request. It is created on the owning goroutine and
// executed on any goroutine.
type Fetch struct {
	Generation uint64
	Query      api.ListQuery
	ETag       string

	ctx     context.Context
	gateway Gateway
}

// Result is the outcome of a Fetch, delivered back to Apply.
type Result struct {
	Generation uint64
	Query      api.ListQuery
	Outcome    api.Outcome
}

// Execute performs the request. It returns a Cancelled outcome if either ctx
// or the synchronizer's cancellation fires first.
func (f *Fetch) Execute(ctx context.Context) Result {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	stop := context.AfterFunc(f.ctx, cancel)
	defer stop()
	if f.ctx.Err() != nil {
		cancel()
	}

	return Result{
		Generation: f.Generation,
		Query:      f.Query,
		Outcome:    f.gateway.FetchList(ctx, f.Query, f.ETag),
	}
}

// Synchronizer keeps the rendered rows consistent with the server list.
// At most one fetch is authoritative; results of superseded fetches are
// discarded in Apply. All methods must be called from one goroutine.
type Synchronizer struct {
	state     *QueryState
	gateway   Gateway
	renderer  Renderer
	snapshots SnapshotStore
	log       zerolog.Logger

	base       context.Context
	cancel     context.CancelFunc
	generation uint64
	phase      Phase

	// nav is the position before a page navigation, restored if the
	// navigation's fetch does not succeed.
	nav *navigation

	search    SearchTicket
	displayed int
	lastErr   error
	stale     bool
	proj      Projection
}

type navigation struct {
	cursors *pagination.CursorStack
	next    string
	etag    string
}

// Option configures a Synchronizer.
type Option func(*Synchronizer)

// WithLogger sets the logger for fetch failures and discarded results.
func WithLogger(l zerolog.Logger) Option {
	return func(s *Synchronizer) { s.log = l.With().Str("component", "sync").Logger() }
}

// WithSnapshots saves every successful first page to store.
func WithSnapshots(store SnapshotStore) Option {
	return func(s *Synchronizer) { s.snapshots = store }
}

// WithContext sets the parent of every fetch context.
func WithContext(ctx context.Context) Option {
	return func(s *Synchronizer) { s.base = ctx }
}

// New creates a synchronizer over state.
func New(state *QueryState, gateway Gateway, renderer Renderer, opts ...Option) *Synchronizer {
	s := &Synchronizer{
		state:    state,
		gateway:  gateway,
		renderer: renderer,
		log:      zerolog.Nop(),
		base:     context.Background(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.proj = Project(state, 0)
	return s
}

// State returns the query state.
func (s *Synchronizer) State() *QueryState { return s.state }

// Phase returns the current phase.
func (s *Synchronizer) Phase() Phase { return s.phase }

// Projection returns the display derived from the last applied result.
func (s *Synchronizer) Projection() Projection { return s.proj }

// Err returns the error of the last failed fetch, cleared by the next success.
func (s *Synchronizer) Err() error { return s.lastErr }

// Stale reports whether the rows shown may be out of date: restored from a
// snapshot or kept after a failed fetch.
func (s *Synchronizer) Stale() bool { return s.stale }

// Load cancels any outstanding fetch and returns a new one for the current
// query. fresh restarts from the first page.
func (s *Synchronizer) Load(fresh bool) *Fetch {
	if s.cancel != nil {
		s.cancel()
	}
	s.generation++
	s.nav = nil
	if fresh {
		s.state.Cursors.Reset()
	}

	ctx, cancel := context.WithCancel(s.base)
	s.cancel = cancel
	s.phase = PhaseFetching
	s.proj.Loading = true

	return &Fetch{
		Generation: s.generation,
		Query:      s.state.Query(),
		ETag:       s.state.ETag,
		ctx:        ctx,
		gateway:    s.gateway,
	}
}

// Apply installs a fetch result and returns the phase it passed through.
// Results from superseded fetches are dropped and report PhaseIdle.
func (s *Synchronizer) Apply(r Result) Phase {
	if r.Generation != s.generation || s.phase != PhaseFetching {
		s.log.Debug().
			Uint64("generation", r.Generation).
			Uint64("current", s.generation).
			Msg("discarding superseded result")
		return PhaseIdle
	}

	s.cancel()
	s.cancel = nil
	nav := s.nav
	s.nav = nil

	var passed Phase
	switch r.Outcome.Kind {
	case api.OutcomeCancelled:
		s.log.Debug().Msg("fetch cancelled")
		passed = PhaseIdle
		s.restoreNavigation(nav)

	case api.OutcomeNotModified:
		passed = PhaseSkippedNotModified
		s.stale = false

	case api.OutcomeSuccess:
		passed = PhaseRendering
		s.phase = PhaseRendering
		page := r.Outcome.Page
		s.state.ETag = page.ETag
		s.state.Total = page.Total
		s.state.NextCursor = page.NextCursor
		s.renderer.Reconcile(page.Records)
		s.displayed = len(page.Records)
		s.lastErr = nil
		s.stale = false
		s.saveSnapshot(r.Query, page)

	case api.OutcomeFailed:
		passed = PhaseFailed
		s.lastErr = r.Outcome.Err
		s.stale = true
		s.log.Warn().Err(r.Outcome.Err).Str("cursor", r.Query.Cursor).Msg("list fetch failed")
		s.restoreNavigation(nav)
	}

	s.phase = PhaseIdle
	s.proj = Project(s.state, s.displayed)
	return passed
}

// restoreNavigation puts the cursor back on the page whose rows are still shown.
func (s *Synchronizer) restoreNavigation(nav *navigation) {
	if nav == nil {
		return
	}
	s.state.Cursors = nav.cursors
	s.state.NextCursor = nav.next
	s.state.ETag = nav.etag
}

func (s *Synchronizer) saveSnapshot(q api.ListQuery, page api.Page) {
	if s.snapshots == nil {
		return
	}
	if err := s.snapshots.Save(q, page); err != nil {
		s.log.Debug().Err(err).Msg("saving snapshot")
	}
}

// Restore shows a previously saved page before the first fetch. Its ETag is
// kept, so an unchanged list revalidates with a 304.
func (s *Synchronizer) Restore(page api.Page) {
	s.state.ETag = page.ETag
	s.state.Total = page.Total
	s.state.NextCursor = page.NextCursor
	s.renderer.Reconcile(page.Records)
	s.displayed = len(page.Records)
	s.stale = true
	s.proj = Project(s.state, s.displayed)
}

// ToggleSort sorts by column, flipping the order if it is already active.
func (s *Synchronizer) ToggleSort(column pagination.SortKey) *Fetch {
	s.state.InvalidateETag()
	s.state.SortKey, s.state.SortOrder = pagination.ToggleSort(s.state.SortKey, s.state.SortOrder, column)
	return s.Load(true)
}

// SetPageSize changes the page size and restarts from the first page.
// It returns nil for an invalid or unchanged size.
func (s *Synchronizer) SetPageSize(n int) *Fetch {
	if pagination.ValidatePageSize(n) != nil || n == s.state.PageSize {
		return nil
	}
	s.state.InvalidateETag()
	s.state.PageSize = n
	return s.Load(true)
}

// NextPage advances to the page after the current one. It returns nil when
// the last fetch reported no next page.
func (s *Synchronizer) NextPage() *Fetch {
	next := s.state.NextCursor
	if next == "" {
		return nil
	}
	nav := s.position()
	s.state.InvalidateETag()
	s.state.Cursors.Advance(next)
	s.state.NextCursor = ""
	f := s.Load(false)
	s.nav = nav
	return f
}

// PrevPage returns to the previous page. It returns nil on the first page.
func (s *Synchronizer) PrevPage() *Fetch {
	if !s.state.Cursors.CanRetreat() {
		return nil
	}
	nav := s.position()
	s.state.InvalidateETag()
	s.state.Cursors.Retreat()
	s.state.NextCursor = ""
	f := s.Load(false)
	s.nav = nav
	return f
}

// position captures the page being shown. While a navigation is pending
// that is still the page it started from.
func (s *Synchronizer) position() *navigation {
	if s.nav != nil {
		return s.nav
	}
	return &navigation{cursors: s.state.Cursors.Clone(), next: s.state.NextCursor, etag: s.state.ETag}
}

// Refresh reloads the current page, bypassing the conditional cache.
func (s *Synchronizer) Refresh() *Fetch {
	s.state.InvalidateETag()
	return s.Load(false)
}

// MutationCompleted reloads after a successful mutation. For a single delete
// the row with id is removed at once, ahead of the reload.
func (s *Synchronizer) MutationCompleted(kind MutationKind, id string) *Fetch {
	s.state.InvalidateETag()
	if kind == MutationDeleteOne && id != "" && s.renderer.Remove(id) {
		s.displayed--
		s.state.Total = max(0, s.state.Total-1)
		loading := s.proj.Loading
		s.proj = Project(s.state, s.displayed)
		s.proj.Loading = loading
	}
	return s.Load(kind.resetsCursor())
}

// SetSearch records a keystroke in the search box. It does not fetch; the
// caller hands the ticket to SearchSettled once input has been quiet.
func (s *Synchronizer) SetSearch(term string) SearchTicket {
	s.state.InvalidateETag()
	s.state.Search = term
	s.search++
	return s.search
}

// SearchSettled fetches the first page for the search term if t is still the
// latest keystroke, otherwise it returns nil.
func (s *Synchronizer) SearchSettled(t SearchTicket) *Fetch {
	if t != s.search {
		return nil
	}
	return s.Load(true)
}
