package engine

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rshade/reminderin/internal/api"
	"github.com/rshade/reminderin/internal/cli/pagination"
	"github.com/rshade/reminderin/internal/reminder"
)

// scriptedGateway answers every query with reply and records the calls.
type scriptedGateway struct {
	calls []gatewayCall
	reply func(q api.ListQuery, etag string) api.Outcome
}

type gatewayCall struct {
	query api.ListQuery
	etag  string
}

func (g *scriptedGateway) FetchList(ctx context.Context, q api.ListQuery, etag string) api.Outcome {
	g.calls = append(g.calls, gatewayCall{query: q, etag: etag})
	if ctx.Err() != nil {
		return api.Outcome{Kind: api.OutcomeCancelled}
	}
	return g.reply(q, etag)
}

type fakeRenderer struct {
	rows       []string
	reconciles int
}

func (r *fakeRenderer) Reconcile(records []reminder.Reminder) {
	r.reconciles++
	r.rows = r.rows[:0]
	for _, rec := range records {
		r.rows = append(r.rows, rec.ID)
	}
}

func (r *fakeRenderer) Remove(id string) bool {
	i := slices.Index(r.rows, id)
	if i < 0 {
		return false
	}
	r.rows = slices.Delete(r.rows, i, i+1)
	return true
}

type recordingSnapshots struct {
	saved []api.ListQuery
}

func (s *recordingSnapshots) Save(q api.ListQuery, _ api.Page) error {
	s.saved = append(s.saved, q)
	return nil
}

func records(prefix string, n int) []reminder.Reminder {
	out := make([]reminder.Reminder, n)
	for i := range out {
		out[i] = reminder.Reminder{ID: fmt.Sprintf("%s%d", prefix, i+1), Message: "m"}
	}
	return out
}

func success(recs []reminder.Reminder, total int, next, etag string) api.Outcome {
	return api.Outcome{Kind: api.OutcomeSuccess, Page: api.Page{
		Records: recs, Total: total, NextCursor: next, ETag: etag,
	}}
}

func newTestSync(reply func(api.ListQuery, string) api.Outcome) (*Synchronizer, *scriptedGateway, *fakeRenderer) {
	gw := &scriptedGateway{reply: reply}
	r := &fakeRenderer{}
	return New(NewQueryState(20), gw, r), gw, r
}

func run(s *Synchronizer, f *Fetch) Phase {
	return s.Apply(f.Execute(context.Background()))
}

func TestSynchronizer_OnlyLatestLoadIsRendered(t *testing.T) {
	s, _, r := newTestSync(func(q api.ListQuery, _ string) api.Outcome {
		return success(records(q.Search, 2), 2, "", "")
	})

	var fetches []*Fetch
	for _, term := range []string{"a", "ab", "abc"} {
		s.State().Search = term
		fetches = append(fetches, s.Load(true))
	}

	// Execute in order so the superseded fetches see their cancelled context,
	// then deliver the results newest first.
	var results []Result
	for _, f := range fetches {
		results = append(results, f.Execute(context.Background()))
	}
	assert.Equal(t, api.OutcomeCancelled, results[0].Outcome.Kind)
	assert.Equal(t, api.OutcomeCancelled, results[1].Outcome.Kind)

	assert.Equal(t, PhaseRendering, s.Apply(results[2]))
	assert.Equal(t, PhaseIdle, s.Apply(results[1]))
	assert.Equal(t, PhaseIdle, s.Apply(results[0]))

	assert.Equal(t, []string{"abc1", "abc2"}, r.rows)
	assert.Equal(t, 1, r.reconciles)
	assert.Equal(t, PhaseIdle, s.Phase())
}

func TestSynchronizer_LateSuccessOfSupersededFetchIsDiscarded(t *testing.T) {
	s, _, r := newTestSync(func(q api.ListQuery, _ string) api.Outcome {
		return success(records("x", 1), 1, "", "")
	})

	stale := Result{
		Generation: s.Load(true).Generation,
		Outcome:    success(records("old", 3), 3, "", `"old"`),
	}
	current := s.Load(true)

	assert.Equal(t, PhaseIdle, s.Apply(stale))
	assert.Empty(t, r.rows)
	assert.Empty(t, s.State().ETag)

	assert.Equal(t, PhaseRendering, run(s, current))
	assert.Equal(t, []string{"x1"}, r.rows)

	// A duplicate delivery of an applied result is ignored too.
	assert.Equal(t, PhaseIdle, s.Apply(Result{Generation: current.Generation, Outcome: success(nil, 0, "", "")}))
	assert.Equal(t, []string{"x1"}, r.rows)
}

func TestSynchronizer_NotModifiedLeavesRowsAlone(t *testing.T) {
	calls := 0
	s, gw, r := newTestSync(func(_ api.ListQuery, etag string) api.Outcome {
		calls++
		if etag == `"v1"` {
			return api.Outcome{Kind: api.OutcomeNotModified}
		}
		return success(records("r", 3), 3, "", `"v1"`)
	})

	require.Equal(t, PhaseRendering, run(s, s.Load(true)))
	before := slices.Clone(r.rows)

	f := s.Load(false)
	assert.Equal(t, `"v1"`, f.ETag)
	assert.True(t, s.Projection().Loading)
	assert.Equal(t, PhaseSkippedNotModified, run(s, f))

	assert.Equal(t, before, r.rows)
	assert.Equal(t, 1, r.reconciles)
	assert.False(t, s.Projection().Loading)
	assert.Equal(t, "Showing 1-3 of 3", s.Projection().Summary)
	assert.Len(t, gw.calls, 2)
}

func TestSynchronizer_ParameterChangesInvalidateETag(t *testing.T) {
	s, _, _ := newTestSync(func(q api.ListQuery, _ string) api.Outcome {
		return success(records("r", 20), 57, "abc", `"v1"`)
	})

	actions := map[string]func() *Fetch{
		"sort":      func() *Fetch { return s.ToggleSort(pagination.SortByTime) },
		"page size": func() *Fetch { return s.SetPageSize(50) },
		"refresh":   s.Refresh,
		"next":      s.NextPage,
		"search":    func() *Fetch { return s.SearchSettled(s.SetSearch("milk")) },
		"mutation":  func() *Fetch { return s.MutationCompleted(MutationToggle, "") },
	}

	for name, act := range actions {
		t.Run(name, func(t *testing.T) {
			s.State().Cursors.Reset()
			require.Equal(t, PhaseRendering, run(s, s.Load(true)))
			require.Equal(t, `"v1"`, s.State().ETag)

			f := act()
			require.NotNil(t, f)
			assert.Empty(t, f.ETag)
			assert.Empty(t, s.State().ETag)
		})
	}
}

func TestSynchronizer_FirstPageScenario(t *testing.T) {
	s, _, _ := newTestSync(func(api.ListQuery, string) api.Outcome {
		return success(records("r", 20), 57, "abc", "")
	})

	run(s, s.Load(true))
	p := s.Projection()
	assert.True(t, p.NextEnabled)
	assert.False(t, p.PrevEnabled)
	assert.Equal(t, "Showing 1-20 of 57", p.Summary)
	assert.Equal(t, 1, p.Page)
}

func TestSynchronizer_NextAndPrevious(t *testing.T) {
	s, gw, _ := newTestSync(func(q api.ListQuery, _ string) api.Outcome {
		switch q.Cursor {
		case "":
			return success(records("p1-", 20), 45, "abc", "")
		case "abc":
			return success(records("p2-", 20), 45, "def", "")
		default:
			return success(records("p3-", 5), 45, "", "")
		}
	})

	run(s, s.Load(true))
	assert.Nil(t, s.PrevPage(), "no previous page on the first page")

	next := s.NextPage()
	require.NotNil(t, next)
	assert.Equal(t, "abc", next.Query.Cursor)
	assert.Equal(t, 1, s.State().Cursors.Depth())
	assert.Nil(t, s.NextPage(), "next cursor is consumed until the page arrives")

	run(s, next)
	p := s.Projection()
	assert.True(t, p.PrevEnabled)
	assert.True(t, p.NextEnabled)
	assert.Equal(t, "Showing 21-40 of 45", p.Summary)

	run(s, s.NextPage())
	p = s.Projection()
	assert.False(t, p.NextEnabled)
	assert.Equal(t, "Showing 41-45 of 45", p.Summary)
	assert.Nil(t, s.NextPage())

	prev := s.PrevPage()
	require.NotNil(t, prev)
	assert.Equal(t, "abc", prev.Query.Cursor)
	run(s, prev)
	assert.Equal(t, "Showing 21-40 of 45", s.Projection().Summary)

	cursors := make([]string, 0, len(gw.calls))
	for _, c := range gw.calls {
		cursors = append(cursors, c.query.Cursor)
	}
	assert.Equal(t, []string{"", "abc", "def", "abc"}, cursors)
}

func TestSynchronizer_SearchDebounce(t *testing.T) {
	s, gw, _ := newTestSync(func(q api.ListQuery, _ string) api.Outcome {
		return success(nil, 0, "", "")
	})

	var tickets []SearchTicket
	for _, term := range []string{"a", "ab", "abc"} {
		tickets = append(tickets, s.SetSearch(term))
	}
	assert.Empty(t, gw.calls, "keystrokes never fetch")

	var fetches []*Fetch
	for _, tk := range tickets {
		if f := s.SearchSettled(tk); f != nil {
			fetches = append(fetches, f)
		}
	}
	require.Len(t, fetches, 1)
	run(s, fetches[0])

	require.Len(t, gw.calls, 1)
	assert.Equal(t, "abc", gw.calls[0].query.Search)
	assert.Equal(t, "Showing 0-0 of 0", s.Projection().Summary)
}

func TestSynchronizer_SearchResetsCursor(t *testing.T) {
	s, _, _ := newTestSync(func(q api.ListQuery, _ string) api.Outcome {
		return success(records("r", 20), 100, "next-"+q.Cursor, "")
	})
	run(s, s.Load(true))
	run(s, s.NextPage())
	require.Equal(t, 1, s.State().Cursors.Depth())

	f := s.SearchSettled(s.SetSearch("  milk "))
	require.NotNil(t, f)
	assert.Empty(t, f.Query.Cursor)
	assert.Equal(t, "milk", f.Query.Search)
	assert.Zero(t, s.State().Cursors.Depth())
}

func TestSynchronizer_DeleteOneRemovesRowAndBypassesCache(t *testing.T) {
	s, _, r := newTestSync(func(q api.ListQuery, _ string) api.Outcome {
		if q.Cursor == "" {
			return success(records("r", 20), 45, "abc", `"v1"`)
		}
		return success(records("s", 20), 45, "def", `"v2"`)
	})
	run(s, s.Load(true))
	run(s, s.NextPage())
	require.Contains(t, r.rows, "s3")

	f := s.MutationCompleted(MutationDeleteOne, "s3")
	assert.NotContains(t, r.rows, "s3")
	assert.Len(t, r.rows, 19)
	assert.Empty(t, f.ETag)
	assert.Equal(t, "abc", f.Query.Cursor, "delete-one reloads the same page")
	assert.Equal(t, 44, s.State().Total)
	assert.Equal(t, "Showing 21-39 of 44", s.Projection().Summary)
	assert.True(t, s.Projection().Loading)
}

func TestSynchronizer_MutationReloadPolicy(t *testing.T) {
	tests := []struct {
		kind      MutationKind
		wantDepth int
	}{
		{MutationDeleteOne, 1},
		{MutationToggle, 1},
		{MutationDeleteAll, 0},
		{MutationCreate, 0},
		{MutationEdit, 0},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprint(tt.kind), func(t *testing.T) {
			s, _, _ := newTestSync(func(q api.ListQuery, _ string) api.Outcome {
				return success(records("r", 20), 45, "c"+q.Cursor, "")
			})
			run(s, s.Load(true))
			run(s, s.NextPage())

			f := s.MutationCompleted(tt.kind, "missing")
			assert.Equal(t, tt.wantDepth, s.State().Cursors.Depth())
			assert.Empty(t, f.ETag)
		})
	}
}

func TestSynchronizer_FailureKeepsRows(t *testing.T) {
	fail := false
	boom := errors.New("connection refused")
	s, _, r := newTestSync(func(api.ListQuery, string) api.Outcome {
		if fail {
			return api.Outcome{Kind: api.OutcomeFailed, Err: boom}
		}
		return success(records("r", 4), 4, "", `"v1"`)
	})
	run(s, s.Load(true))
	fail = true

	assert.Equal(t, PhaseFailed, run(s, s.Refresh()))
	assert.Equal(t, []string{"r1", "r2", "r3", "r4"}, r.rows)
	assert.Equal(t, 4, s.State().Total)
	assert.ErrorIs(t, s.Err(), boom)
	assert.True(t, s.Stale())
	assert.Equal(t, PhaseIdle, s.Phase())
	assert.Equal(t, "Showing 1-4 of 4", s.Projection().Summary)

	fail = false
	run(s, s.Refresh())
	assert.NoError(t, s.Err())
	assert.False(t, s.Stale())
}

func TestSynchronizer_FailedNavigationStaysOnShownPage(t *testing.T) {
	failNext := false
	s, _, r := newTestSync(func(q api.ListQuery, _ string) api.Outcome {
		if q.Cursor == "abc" && failNext {
			return api.Outcome{Kind: api.OutcomeFailed, Err: errors.New("timeout")}
		}
		if q.Cursor == "abc" {
			return success(records("p2-", 20), 45, "def", `"v2"`)
		}
		return success(records("p1-", 20), 45, "abc", `"v1"`)
	})
	run(s, s.Load(true))
	failNext = true

	assert.Equal(t, PhaseFailed, run(s, s.NextPage()))
	assert.Equal(t, "p1-1", r.rows[0])
	assert.Equal(t, 0, s.State().Cursors.Depth())
	assert.Equal(t, "abc", s.State().NextCursor)
	assert.Equal(t, `"v1"`, s.State().ETag)
	p := s.Projection()
	assert.Equal(t, 1, p.Page)
	assert.True(t, p.NextEnabled)
	assert.Equal(t, "Showing 1-20 of 45", p.Summary)

	failNext = false
	run(s, s.NextPage())
	assert.Equal(t, 1, s.State().Cursors.Depth())
	assert.Equal(t, "p2-1", r.rows[0])
}

func TestSynchronizer_SupersededNavigationKeepsOrigin(t *testing.T) {
	s, _, r := newTestSync(func(q api.ListQuery, _ string) api.Outcome {
		switch q.Cursor {
		case "":
			return success(records("p1-", 20), 45, "abc", "")
		case "abc":
			return success(records("p2-", 20), 45, "def", "")
		default:
			return success(records("p3-", 5), 45, "", "")
		}
	})
	run(s, s.Load(true))
	run(s, s.NextPage())
	run(s, s.NextPage())
	require.Equal(t, 2, s.State().Cursors.Depth())

	require.NotNil(t, s.PrevPage())
	assert.Nil(t, s.NextPage(), "next cursor is unknown until the previous page arrives")
	f := s.PrevPage()
	require.NotNil(t, f)
	assert.Empty(t, f.Query.Cursor)

	s.Apply(Result{Generation: f.Generation, Query: f.Query, Outcome: api.Outcome{Kind: api.OutcomeFailed, Err: errors.New("boom")}})
	assert.Equal(t, 2, s.State().Cursors.Depth())
	assert.Equal(t, "def", s.State().Cursors.Current())
	assert.Equal(t, "p3-1", r.rows[0])
	assert.Equal(t, "Showing 41-45 of 45", s.Projection().Summary)
}

func TestSynchronizer_PageEmptiedByDeletes(t *testing.T) {
	s, _, _ := newTestSync(func(q api.ListQuery, _ string) api.Outcome {
		if q.Cursor == "" {
			return success(records("p1-", 20), 21, "abc", "")
		}
		return success(records("p2-", 1), 21, "", "")
	})
	run(s, s.Load(true))
	run(s, s.NextPage())

	s.MutationCompleted(MutationDeleteOne, "p2-1")
	assert.Equal(t, "Showing 0-0 of 20", s.Projection().Summary)
}

func TestSynchronizer_CancelledIsSilent(t *testing.T) {
	s, _, r := newTestSync(func(api.ListQuery, string) api.Outcome {
		return success(records("r", 2), 2, "", "")
	})
	f := s.Load(true)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.Equal(t, PhaseIdle, s.Apply(f.Execute(ctx)))
	assert.Empty(t, r.rows)
	assert.NoError(t, s.Err())
	assert.False(t, s.Projection().Loading)
}

func TestSynchronizer_SetPageSize(t *testing.T) {
	s, _, _ := newTestSync(func(api.ListQuery, string) api.Outcome {
		return success(nil, 0, "", "")
	})
	assert.Nil(t, s.SetPageSize(20), "unchanged size")
	assert.Nil(t, s.SetPageSize(0))
	assert.Nil(t, s.SetPageSize(101))

	f := s.SetPageSize(50)
	require.NotNil(t, f)
	assert.Equal(t, 50, f.Query.Limit)
}

func TestSynchronizer_ToggleSortGlyphs(t *testing.T) {
	s, _, _ := newTestSync(func(api.ListQuery, string) api.Outcome {
		return success(records("r", 1), 1, "", "")
	})

	f := s.ToggleSort(pagination.SortByTime)
	assert.Equal(t, pagination.SortByTime, f.Query.SortKey)
	assert.Equal(t, pagination.SortOrderAsc, f.Query.SortOrder)
	run(s, f)
	assert.Equal(t, pagination.GlyphAsc, s.Projection().Glyphs[pagination.SortByTime])
	assert.Empty(t, s.Projection().Glyphs[pagination.SortByMessage])

	run(s, s.ToggleSort(pagination.SortByTime))
	assert.Equal(t, pagination.GlyphDesc, s.Projection().Glyphs[pagination.SortByTime])
}

func TestSynchronizer_SnapshotsAndRestore(t *testing.T) {
	snaps := &recordingSnapshots{}
	gw := &scriptedGateway{reply: func(_ api.ListQuery, etag string) api.Outcome {
		if etag == `"snap"` {
			return api.Outcome{Kind: api.OutcomeNotModified}
		}
		return success(records("r", 2), 2, "", `"v2"`)
	}}
	r := &fakeRenderer{}
	s := New(NewQueryState(20), gw, r, WithSnapshots(snaps))

	s.Restore(api.Page{Records: records("cached", 3), Total: 3, ETag: `"snap"`})
	assert.True(t, s.Stale())
	assert.Equal(t, []string{"cached1", "cached2", "cached3"}, r.rows)
	assert.Equal(t, "Showing 1-3 of 3", s.Projection().Summary)

	// An unchanged list revalidates the snapshot instead of re-rendering.
	assert.Equal(t, PhaseSkippedNotModified, run(s, s.Load(true)))
	assert.False(t, s.Stale())
	assert.Equal(t, 1, r.reconciles)
	assert.Empty(t, snaps.saved)

	run(s, s.Refresh())
	require.Len(t, snaps.saved, 1)
	assert.Equal(t, 20, snaps.saved[0].Limit)
}

func TestFetch_ExecuteHonorsCallerContext(t *testing.T) {
	blocked := make(chan struct{})
	gw := gatewayFunc(func(ctx context.Context, _ api.ListQuery, _ string) api.Outcome {
		close(blocked)
		<-ctx.Done()
		return api.Outcome{Kind: api.OutcomeCancelled}
	})
	s := New(NewQueryState(20), gw, &fakeRenderer{})
	f := s.Load(true)

	done := make(chan Result, 1)
	go func() { done <- f.Execute(context.Background()) }()
	<-blocked

	// Superseding the fetch cancels the in-flight request.
	s.Load(true)
	select {
	case res := <-done:
		assert.Equal(t, api.OutcomeCancelled, res.Outcome.Kind)
	case <-time.After(2 * time.Second):
		t.Fatal("superseded fetch was not cancelled")
	}
}

type gatewayFunc func(ctx context.Context, q api.ListQuery, etag string) api.Outcome

func (f gatewayFunc) FetchList(ctx context.Context, q api.ListQuery, etag string) api.Outcome {
	return f(ctx, q, etag)
}

func TestPhase_String(t *testing.T) {
	assert.Equal(t, "idle", PhaseIdle.String())
	assert.Equal(t, "skipped-not-modified", PhaseSkippedNotModified.String())
	assert.Equal(t, "unknown", Phase(42).String())
}
