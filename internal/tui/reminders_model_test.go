package tui

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/x/ansi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rshade/reminderin/internal/api"
	"github.com/rshade/reminderin/internal/cli/pagination"
	"github.com/rshade/reminderin/internal/directory"
	"github.com/rshade/reminderin/internal/engine"
	"github.com/rshade/reminderin/internal/reminder"
)

// fakeService is an in-memory reminder server.
type fakeService struct {
	mu        sync.Mutex
	records   []reminder.Reminder
	etag      string
	listErr   error
	deleteErr error
	queries   []api.ListQuery
	deleted   []string
	toggled   []string
	wiped     bool
	created   []reminder.Draft
	updated   []reminder.Draft
	createErr map[string]error
}

func (f *fakeService) FetchList(ctx context.Context, q api.ListQuery, etag string) api.Outcome {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.queries = append(f.queries, q)
	if ctx.Err() != nil {
		return api.Outcome{Kind: api.OutcomeCancelled}
	}
	if f.listErr != nil {
		return api.Outcome{Kind: api.OutcomeFailed, Err: f.listErr}
	}
	if etag != "" && etag == f.etag {
		return api.Outcome{Kind: api.OutcomeNotModified}
	}
	var out []reminder.Reminder
	for _, r := range f.records {
		if q.Search == "" || strings.Contains(strings.ToLower(r.Message), strings.ToLower(q.Search)) {
			out = append(out, r)
		}
	}
	total := len(out)
	if len(out) > q.Limit {
		out = out[:q.Limit]
	}
	return api.Outcome{Kind: api.OutcomeSuccess, Page: api.Page{Records: out, Total: total, ETag: f.etag}}
}

func (f *fakeService) Create(_ context.Context, d reminder.Draft) (reminder.Reminder, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.createErr[d.Message]; err != nil {
		return reminder.Reminder{}, err
	}
	f.created = append(f.created, d)
	at, _ := time.Parse(time.RFC3339, d.ScheduledAt)
	r := reminder.Reminder{
		ID:          "new" + d.Message,
		Message:     d.Message,
		TargetWA:    d.TargetWA,
		ScheduledAt: at,
		Recurrence:  d.Recurrence,
		IsActive:    true,
	}
	f.records = append([]reminder.Reminder{r}, f.records...)
	return r, nil
}

func (f *fakeService) Update(_ context.Context, d reminder.Draft) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.updated = append(f.updated, d)
	for i, r := range f.records {
		if r.ID == d.ID {
			f.records[i].Message = d.Message
			f.records[i].TargetWA = d.TargetWA
			f.records[i].Recurrence = d.Recurrence
		}
	}
	return nil
}

func (f *fakeService) Delete(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.deleteErr != nil {
		return f.deleteErr
	}
	f.deleted = append(f.deleted, id)
	for i, r := range f.records {
		if r.ID == id {
			f.records = append(f.records[:i], f.records[i+1:]...)
			break
		}
	}
	return nil
}

func (f *fakeService) DeleteAll(context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.wiped = true
	f.records = nil
	return nil
}

func (f *fakeService) Toggle(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.toggled = append(f.toggled, id)
	return nil
}

func (f *fakeService) lastQuery() api.ListQuery {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.queries[len(f.queries)-1]
}

func sampleRecords() []reminder.Reminder {
	return []reminder.Reminder{
		{ID: "a", Message: "Standup", ScheduledAt: testNow.Add(20 * time.Hour), IsActive: true},
		{ID: "b", Message: "Pay rent", Recurrence: "0 9 1 * *", IsActive: true},
		{ID: "c", Message: "Old call", ScheduledAt: testNow.Add(-time.Hour), IsActive: true},
	}
}

func newTestModel(t *testing.T, svc *fakeService, opts Options) RemindersModel {
	t.Helper()
	opts.Now = func() time.Time { return testNow }
	opts.SearchDebounce = 10 * time.Millisecond
	return NewRemindersModel(context.Background(), svc, opts)
}

func keyPress(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEscape}
	default:
		return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
	}
}

// drain runs cmd and its batched children, collecting the messages that
// arrive before the commands go quiet. Long timers such as toast expiry are
// left behind.
func drain(cmd tea.Cmd) []tea.Msg {
	if cmd == nil {
		return nil
	}
	ch := make(chan tea.Msg, 64)
	var run func(c tea.Cmd)
	run = func(c tea.Cmd) {
		go func() {
			msg := c()
			if batch, ok := msg.(tea.BatchMsg); ok {
				for _, sub := range batch {
					if sub != nil {
						run(sub)
					}
				}
				return
			}
			if msg != nil {
				ch <- msg
			}
		}()
	}
	run(cmd)

	var msgs []tea.Msg
	for {
		select {
		case msg := <-ch:
			msgs = append(msgs, msg)
		case <-time.After(150 * time.Millisecond):
			return msgs
		}
	}
}

// step feeds msg and then every resulting data message back into the model.
func step(t *testing.T, m RemindersModel, msg tea.Msg) RemindersModel {
	t.Helper()
	updated, cmd := m.Update(msg)
	m = updated.(RemindersModel)
	for _, out := range drain(cmd) {
		switch out.(type) {
		case FetchResultMsg, MutationDoneMsg, SearchSettledMsg, LabelsLoadedMsg:
			m = step(t, m, out)
		}
	}
	return m
}

// started runs the initial fetch.
func started(t *testing.T, m RemindersModel) RemindersModel {
	t.Helper()
	return step(t, m, FetchResultMsg{Result: m.initial.Execute(context.Background())})
}

func TestNewRemindersModel(t *testing.T) {
	m := newTestModel(t, &fakeService{}, Options{})

	assert.Equal(t, ViewStateLoading, m.state)
	assert.NotNil(t, m.Init())
	assert.Equal(t, engine.PhaseFetching, m.sync.Phase())
	assert.Equal(t, pagination.DefaultPageSize, m.sync.State().PageSize)
	assert.Contains(t, ansi.Strip(m.View()), "Loading reminders")
}

func TestRemindersModel_FirstLoad(t *testing.T) {
	svc := &fakeService{records: sampleRecords(), etag: `"v1"`}
	m := started(t, newTestModel(t, svc, Options{}))

	assert.Equal(t, ViewStateList, m.state)
	assert.Equal(t, []string{"a", "b", "c"}, m.rows.Keys())

	view := ansi.Strip(m.View())
	assert.Contains(t, view, "Showing 1-3 of 3")
	assert.Contains(t, view, "Standup")
	assert.Contains(t, view, "expired")
}

func TestRemindersModel_EmptyListShowsPlaceholder(t *testing.T) {
	m := started(t, newTestModel(t, &fakeService{}, Options{}))

	assert.True(t, m.rows.ShowsPlaceholder())
	view := ansi.Strip(m.View())
	assert.Contains(t, view, "No reminders found.")
	assert.Contains(t, view, "Showing 0-0 of 0")
}

func TestRemindersModel_FirstLoadFailure(t *testing.T) {
	svc := &fakeService{listErr: errors.New("connection refused")}
	m := started(t, newTestModel(t, svc, Options{}))

	require.Equal(t, ViewStateError, m.state)
	assert.Contains(t, ansi.Strip(m.View()), "connection refused")

	svc.mu.Lock()
	svc.listErr = nil
	svc.records = sampleRecords()
	svc.mu.Unlock()

	m = step(t, m, keyPress("r"))
	assert.Equal(t, ViewStateList, m.state)
	assert.Equal(t, 3, m.rows.ItemCount())
}

func TestRemindersModel_SnapshotShownStale(t *testing.T) {
	svc := &fakeService{records: sampleRecords(), etag: `"v1"`}
	snap := &api.Page{Records: sampleRecords()[:2], Total: 2, ETag: `"v1"`}

	m := newTestModel(t, svc, Options{Snapshot: snap})
	assert.Equal(t, ViewStateList, m.state)
	assert.True(t, m.sync.Stale())
	assert.Equal(t, []string{"a", "b"}, m.rows.Keys())
	assert.Contains(t, ansi.Strip(m.View()), "(stale)")

	// The snapshot's ETag still matches, so the server answers 304.
	m = started(t, m)
	assert.False(t, m.sync.Stale())
	assert.Equal(t, []string{"a", "b"}, m.rows.Keys())
	assert.NotContains(t, ansi.Strip(m.View()), "(stale)")
}

func TestRemindersModel_FailedReloadKeepsRows(t *testing.T) {
	svc := &fakeService{records: sampleRecords()}
	m := started(t, newTestModel(t, svc, Options{}))

	svc.mu.Lock()
	svc.listErr = &api.StatusError{Code: 502, Status: "502 Bad Gateway"}
	svc.mu.Unlock()

	m = step(t, m, keyPress("r"))
	assert.Equal(t, ViewStateList, m.state)
	assert.Equal(t, 3, m.rows.ItemCount())
	assert.True(t, m.sync.Stale())
	require.NotNil(t, m.toaster.Current())
	assert.Equal(t, ToastError, m.toaster.Current().Level)
	assert.Contains(t, m.toaster.Current().Text, "502 Bad Gateway")
}

func TestRemindersModel_RefreshToast(t *testing.T) {
	svc := &fakeService{records: sampleRecords(), etag: `"v1"`}
	m := started(t, newTestModel(t, svc, Options{}))

	m = step(t, m, keyPress("r"))
	require.NotNil(t, m.toaster.Current())
	assert.Equal(t, "Refreshed", m.toaster.Current().Text)

	m = step(t, m, keyPress("x"))
	assert.Nil(t, m.toaster.Current())
}

func TestRemindersModel_SearchDebounce(t *testing.T) {
	svc := &fakeService{records: sampleRecords()}
	m := started(t, newTestModel(t, svc, Options{}))

	m = step(t, m, keyPress("/"))
	require.True(t, m.searching)

	// Each keystroke takes a ticket; only the latest one fetches.
	updated, _ := m.Update(keyPress("p"))
	m = updated.(RemindersModel)
	updated, _ = m.Update(keyPress("a"))
	m = updated.(RemindersModel)
	assert.Equal(t, "pa", m.search.Value())

	_, cmd := m.Update(SearchSettledMsg{Ticket: engine.SearchTicket(1)})
	assert.Nil(t, cmd, "superseded ticket must not fetch")

	m = step(t, m, SearchSettledMsg{Ticket: engine.SearchTicket(2)})
	assert.Equal(t, "pa", svc.lastQuery().Search)
	assert.Equal(t, []string{"b"}, m.rows.Keys())

	m = step(t, m, keyPress("esc"))
	assert.False(t, m.searching)
	m = step(t, m, keyPress("esc"))
	assert.Empty(t, m.search.Value())
	assert.Equal(t, 3, m.rows.ItemCount())
}

func TestRemindersModel_TypingSchedulesSettle(t *testing.T) {
	svc := &fakeService{records: sampleRecords()}
	m := started(t, newTestModel(t, svc, Options{}))
	m = step(t, m, keyPress("/"))

	m = step(t, m, keyPress("r"))
	assert.Equal(t, "r", svc.lastQuery().Search, "debounced search fetched after the quiet period")
	assert.Equal(t, []string{"b"}, m.rows.Keys())
}

func TestRemindersModel_SortKeys(t *testing.T) {
	svc := &fakeService{records: sampleRecords()}
	m := started(t, newTestModel(t, svc, Options{}))

	m = step(t, m, keyPress("3"))
	q := svc.lastQuery()
	assert.Equal(t, pagination.SortByTime, q.SortKey)
	assert.Equal(t, pagination.SortOrderAsc, q.SortOrder)
	assert.Contains(t, ansi.Strip(m.View()), "3 Time ↑")

	m = step(t, m, keyPress("3"))
	assert.Equal(t, pagination.SortOrderDesc, svc.lastQuery().SortOrder)
	assert.Contains(t, ansi.Strip(m.View()), "3 Time ↓")

	step(t, m, keyPress("1"))
	assert.Equal(t, pagination.SortByMessage, svc.lastQuery().SortKey)
	assert.Equal(t, pagination.SortOrderAsc, svc.lastQuery().SortOrder)
}

func TestRemindersModel_PageSizeKeys(t *testing.T) {
	svc := &fakeService{records: sampleRecords()}
	m := started(t, newTestModel(t, svc, Options{}))

	m = step(t, m, keyPress("+"))
	assert.Equal(t, 50, m.sync.State().PageSize)
	assert.Equal(t, 50, svc.lastQuery().Limit)

	m = step(t, m, keyPress("-"))
	m = step(t, m, keyPress("-"))
	assert.Equal(t, 10, m.sync.State().PageSize)
	assert.Contains(t, ansi.Strip(m.View()), "10 per page")
}

func TestRemindersModel_ConfigChanged(t *testing.T) {
	svc := &fakeService{records: sampleRecords()}
	m := started(t, newTestModel(t, svc, Options{}))

	m = step(t, m, ConfigChangedMsg{PageSize: 100, ToastDuration: 5 * time.Second})
	assert.Equal(t, 100, m.sync.State().PageSize)
	assert.Equal(t, 5*time.Second, m.toaster.Duration())
}

func TestRemindersModel_DeleteConfirmed(t *testing.T) {
	svc := &fakeService{records: sampleRecords()}
	m := started(t, newTestModel(t, svc, Options{}))

	m = step(t, m, keyPress("d"))
	require.Equal(t, ViewStateConfirmDelete, m.state)
	assert.Contains(t, ansi.Strip(m.View()), `Delete "Standup"?`)

	m = step(t, m, keyPress("y"))
	assert.Equal(t, ViewStateList, m.state)
	assert.Equal(t, []string{"a"}, svc.deleted)
	assert.Equal(t, []string{"b", "c"}, m.rows.Keys())
	require.NotNil(t, m.toaster.Current())
	assert.Equal(t, "Reminder deleted", m.toaster.Current().Text)
}

func TestRemindersModel_DeleteCancelled(t *testing.T) {
	svc := &fakeService{records: sampleRecords()}
	m := started(t, newTestModel(t, svc, Options{}))

	m = step(t, m, keyPress("d"))
	m = step(t, m, keyPress("n"))
	assert.Equal(t, ViewStateList, m.state)
	assert.Empty(t, svc.deleted)
	assert.Equal(t, 3, m.rows.ItemCount())
}

func TestRemindersModel_DeleteFailureKeepsRows(t *testing.T) {
	svc := &fakeService{records: sampleRecords(), deleteErr: &api.StatusError{Code: 401, Status: "401 Unauthorized"}}
	m := started(t, newTestModel(t, svc, Options{}))

	m = step(t, m, keyPress("d"))
	m = step(t, m, keyPress("y"))
	assert.Equal(t, 3, m.rows.ItemCount())
	require.NotNil(t, m.toaster.Current())
	assert.Contains(t, m.toaster.Current().Text, "reminderin login")
}

func TestRemindersModel_DeleteAll(t *testing.T) {
	svc := &fakeService{records: sampleRecords()}
	m := started(t, newTestModel(t, svc, Options{}))

	m = step(t, m, keyPress("D"))
	require.Equal(t, ViewStateConfirmDeleteAll, m.state)
	m = step(t, m, keyPress("y"))

	assert.True(t, svc.wiped)
	assert.True(t, m.rows.ShowsPlaceholder())
}

func TestRemindersModel_Toggle(t *testing.T) {
	svc := &fakeService{records: sampleRecords()}
	m := started(t, newTestModel(t, svc, Options{}))

	m = step(t, m, keyPress("t"))
	assert.Equal(t, []string{"a"}, svc.toggled)
	require.NotNil(t, m.toaster.Current())
	assert.Equal(t, "Reminder paused", m.toaster.Current().Text)
}

func TestRemindersModel_ToggleExpiredRejected(t *testing.T) {
	svc := &fakeService{records: sampleRecords()}
	m := started(t, newTestModel(t, svc, Options{}))
	m.rows.SetSelected(2)

	m = step(t, m, keyPress("t"))
	assert.Empty(t, svc.toggled)
	require.NotNil(t, m.toaster.Current())
	assert.Equal(t, ToastError, m.toaster.Current().Level)
	assert.Contains(t, m.toaster.Current().Text, "already passed")
}

func TestRemindersModel_DetailView(t *testing.T) {
	svc := &fakeService{records: []reminder.Reminder{{
		ID:          "a",
		Message:     "*Standup* in room 4",
		TargetWA:    "6281234567",
		ScheduledAt: testNow.Add(20 * time.Hour),
		IsActive:    true,
		CreatedAt:   testNow.Add(-3 * time.Minute),
	}}}
	m := started(t, newTestModel(t, svc, Options{}))

	m = step(t, m, keyPress("enter"))
	require.Equal(t, ViewStateDetail, m.state)
	view := ansi.Strip(m.View())
	assert.Contains(t, view, "Standup in room 4")
	assert.Contains(t, view, "6281234567")
	assert.Contains(t, view, "3 minutes ago")
	assert.Contains(t, view, "tomorrow at 08:00")

	m = step(t, m, keyPress("esc"))
	assert.Equal(t, ViewStateList, m.state)
}

func TestRemindersModel_NavigationMovesSelection(t *testing.T) {
	svc := &fakeService{records: sampleRecords()}
	m := started(t, newTestModel(t, svc, Options{}))

	m = step(t, m, keyPress("j"))
	require.NotNil(t, m.rows.SelectedItem())
	assert.Equal(t, "b", m.rows.SelectedItem().ID)
}

func TestRemindersModel_Quit(t *testing.T) {
	m := started(t, newTestModel(t, &fakeService{}, Options{}))

	updated, cmd := m.Update(keyPress("q"))
	assert.Equal(t, ViewStateQuitting, updated.(RemindersModel).state)
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
}

// typeText sends s to the model one rune at a time.
func typeText(t *testing.T, m RemindersModel, s string) RemindersModel {
	t.Helper()
	for _, r := range s {
		updated, _ := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
		m = updated.(RemindersModel)
	}
	return m
}

func TestRemindersModel_ComposeCreatesAndReloadsFirstPage(t *testing.T) {
	svc := &fakeService{records: sampleRecords()}
	m := started(t, newTestModel(t, svc, Options{}))

	m = step(t, m, keyPress("a"))
	require.Equal(t, ViewStateCompose, m.state)
	assert.Contains(t, ansi.Strip(m.View()), "NEW REMINDER")

	m = typeText(t, m, "Gym")
	m = step(t, m, tea.KeyMsg{Type: tea.KeyTab})
	m = typeText(t, m, "6281234567")
	m = step(t, m, tea.KeyMsg{Type: tea.KeyTab})
	m = typeText(t, m, "2026-03-11 07:30")
	m = step(t, m, keyPress("enter"))

	assert.Equal(t, ViewStateList, m.state)
	require.Len(t, svc.created, 1)
	assert.Equal(t, "Gym", svc.created[0].Message)
	assert.Equal(t, "6281234567", svc.created[0].TargetWA)
	assert.Equal(t, "2026-03-11T07:30:00Z", svc.created[0].ScheduledAt)

	assert.Empty(t, svc.lastQuery().Cursor)
	assert.Equal(t, "newGym", m.rows.Keys()[0])
	require.NotNil(t, m.toaster.Current())
	assert.Equal(t, "Scheduled 1 reminder", m.toaster.Current().Text)
}

func TestRemindersModel_ComposeSeveralMessages(t *testing.T) {
	svc := &fakeService{records: sampleRecords()}
	m := started(t, newTestModel(t, svc, Options{}))

	m = step(t, m, keyPress("a"))
	m = typeText(t, m, "Stretch")
	m = step(t, m, tea.KeyMsg{Type: tea.KeyCtrlN})
	m = typeText(t, m, "Drink water")
	for range 3 {
		m = step(t, m, tea.KeyMsg{Type: tea.KeyTab})
	}
	m = typeText(t, m, "0 15 * * *")
	assert.Contains(t, ansi.Strip(m.View()), "next: today at 15:00")
	m = step(t, m, keyPress("enter"))

	require.Len(t, svc.created, 2)
	assert.Equal(t, "Stretch", svc.created[0].Message)
	assert.Equal(t, "Drink water", svc.created[1].Message)
	assert.Equal(t, "0 15 * * *", svc.created[1].Recurrence)
	assert.Equal(t, "Scheduled 2 reminders", m.toaster.Current().Text)
}

func TestRemindersModel_ComposePartialFailureStillReloads(t *testing.T) {
	svc := &fakeService{
		records:   sampleRecords(),
		createErr: map[string]error{"two": &api.StatusError{Code: 422, Status: "422 Unprocessable Entity"}},
	}
	m := started(t, newTestModel(t, svc, Options{}))

	m = step(t, m, keyPress("a"))
	m = typeText(t, m, "one")
	m = step(t, m, tea.KeyMsg{Type: tea.KeyCtrlN})
	m = typeText(t, m, "two")
	m = step(t, m, tea.KeyMsg{Type: tea.KeyTab})
	m = step(t, m, tea.KeyMsg{Type: tea.KeyTab})
	m = typeText(t, m, "2026-03-12 10:00")
	m = step(t, m, keyPress("enter"))

	assert.Equal(t, ViewStateList, m.state)
	assert.Equal(t, "newone", m.rows.Keys()[0])
	require.NotNil(t, m.toaster.Current())
	assert.Equal(t, ToastError, m.toaster.Current().Level)
	assert.Contains(t, m.toaster.Current().Text, "Scheduled 1 of 2 reminders")
}

func TestRemindersModel_ComposeValidationStaysOnForm(t *testing.T) {
	svc := &fakeService{records: sampleRecords()}
	m := started(t, newTestModel(t, svc, Options{}))
	fetches := len(svc.queries)

	m = step(t, m, keyPress("a"))
	m = step(t, m, keyPress("enter"))
	assert.Equal(t, ViewStateCompose, m.state)
	assert.Contains(t, ansi.Strip(m.View()), "at least one message is required")

	m = typeText(t, m, "Late")
	m = step(t, m, tea.KeyMsg{Type: tea.KeyTab})
	m = step(t, m, tea.KeyMsg{Type: tea.KeyTab})
	m = typeText(t, m, "2026-03-09 10:00")
	m = step(t, m, keyPress("enter"))
	assert.Contains(t, ansi.Strip(m.View()), "time must be in the future")

	assert.Empty(t, svc.created)
	assert.Len(t, svc.queries, fetches)

	m = step(t, m, keyPress("esc"))
	assert.Equal(t, ViewStateList, m.state)
}

func TestRemindersModel_EditReplacesSelected(t *testing.T) {
	svc := &fakeService{records: sampleRecords()}
	m := started(t, newTestModel(t, svc, Options{}))
	m = step(t, m, keyPress("j"))
	require.Equal(t, "b", m.rows.SelectedItem().ID)

	m = step(t, m, keyPress("e"))
	require.Equal(t, ViewStateCompose, m.state)
	view := ansi.Strip(m.View())
	assert.Contains(t, view, "EDIT REMINDER")
	assert.Contains(t, view, "Pay rent")
	assert.Contains(t, view, "0 9 1 * *")

	m = step(t, m, tea.KeyMsg{Type: tea.KeyEnd})
	m = typeText(t, m, " today")
	m = step(t, m, keyPress("enter"))

	assert.Equal(t, ViewStateList, m.state)
	require.Len(t, svc.updated, 1)
	assert.Equal(t, "b", svc.updated[0].ID)
	assert.Equal(t, "Pay rent today", svc.updated[0].Message)
	assert.Equal(t, "0 9 1 * *", svc.updated[0].Recurrence)
	assert.Empty(t, svc.lastQuery().Cursor)
	assert.Equal(t, "Reminder updated", m.toaster.Current().Text)
}

func TestRemindersModel_EditFromDetailPrefillsTime(t *testing.T) {
	svc := &fakeService{records: sampleRecords()}
	m := started(t, newTestModel(t, svc, Options{}))

	m = step(t, m, keyPress("enter"))
	m = step(t, m, keyPress("e"))
	require.Equal(t, ViewStateCompose, m.state)
	assert.Contains(t, ansi.Strip(m.View()), "2026-03-11 08:00")
}

func TestRemindersModel_SyncLabels(t *testing.T) {
	svc := &fakeService{records: []reminder.Reminder{
		{ID: "a", Message: "Standup", TargetWA: "6281234567", ScheduledAt: testNow.Add(time.Hour), IsActive: true},
	}}
	calls := 0
	refresh := func(context.Context) (Labeler, string, error) {
		calls++
		return directory.Names{"6281234567@s.whatsapp.net": "Budi"}, "Synced 1 contact", nil
	}
	m := started(t, newTestModel(t, svc, Options{RefreshLabels: refresh}))
	assert.NotContains(t, ansi.Strip(m.View()), "Budi")

	m = step(t, m, keyPress("S"))
	assert.Equal(t, 1, calls)
	assert.Contains(t, ansi.Strip(m.View()), "Budi")
	assert.Equal(t, "Synced 1 contact", m.toaster.Current().Text)
}

func TestRemindersModel_SyncLabelsFailure(t *testing.T) {
	refresh := func(context.Context) (Labeler, string, error) {
		return nil, "", errors.New("label directory is disabled")
	}
	m := started(t, newTestModel(t, &fakeService{records: sampleRecords()}, Options{RefreshLabels: refresh}))

	m = step(t, m, keyPress("S"))
	require.NotNil(t, m.toaster.Current())
	assert.Equal(t, ToastError, m.toaster.Current().Level)
}
