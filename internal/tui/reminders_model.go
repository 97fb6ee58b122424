package tui

import (
	"context"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"

	"github.com/rshade/reminderin/internal/api"
	"github.com/rshade/reminderin/internal/cli/pagination"
	"github.com/rshade/reminderin/internal/engine"
	"github.com/rshade/reminderin/internal/engine/batch"
	"github.com/rshade/reminderin/internal/reminder"
	listview "github.com/rshade/reminderin/internal/tui/list"
)

// DefaultSearchDebounce is the quiet period before a search is sent.
const DefaultSearchDebounce = 300 * time.Millisecond

// Service is the server surface the list screen needs.
type Service interface {
	engine.Gateway
	Create(ctx context.Context, d reminder.Draft) (reminder.Reminder, error)
	Update(ctx context.Context, d reminder.Draft) error
	Delete(ctx context.Context, id string) error
	DeleteAll(ctx context.Context) error
	Toggle(ctx context.Context, id string) error
}

// FetchResultMsg carries a finished list fetch back to Update.
type FetchResultMsg struct {
	Result engine.Result
}

// SearchSettledMsg fires once the search box has been quiet for the debounce.
type SearchSettledMsg struct {
	Ticket engine.SearchTicket
}

// MutationDoneMsg reports a finished create, edit, delete, delete-all or toggle.
// Applied marks a failed batch that still changed the server, so the list is
// reloaded and the error shown.
type MutationDoneMsg struct {
	Kind    engine.MutationKind
	ID      string
	Done    string
	Err     error
	Applied bool
}

// LabelsLoadedMsg carries a refreshed target directory.
type LabelsLoadedMsg struct {
	Labels Labeler
	Done   string
	Err    error
}

// LabelRefresher re-syncs contact and group names from the server.
type LabelRefresher func(ctx context.Context) (Labeler, string, error)

// ConfigChangedMsg applies a hot-reloaded configuration.
type ConfigChangedMsg struct {
	PageSize      int
	ToastDuration time.Duration
}

// Options configures a RemindersModel.
type Options struct {
	PageSize       int
	SortKey        pagination.SortKey
	SortOrder      pagination.SortOrder
	SearchDebounce time.Duration
	ToastDuration  time.Duration

	// Labels resolves targets to names; nil shows raw identifiers.
	Labels Labeler

	// RefreshLabels is run by the sync-names key; nil disables it.
	RefreshLabels LabelRefresher

	// Snapshot is shown, marked stale, until the first fetch completes.
	Snapshot *api.Page

	// Snapshots receives every successful unfiltered first page.
	Snapshots engine.SnapshotStore

	Logger zerolog.Logger

	// Now is the clock used for schedule text; defaults to time.Now.
	Now func() time.Time
}

// rowContext is shared by the row render closure and the model, so resizes
// and label changes reach rows rendered later.
type rowContext struct {
	width  int
	labels Labeler
	now    func() time.Time
}

// reminderRows adapts the keyed list to the synchronizer's Renderer.
type reminderRows struct {
	list *listview.KeyedListModel[reminder.Reminder]
	log  zerolog.Logger
}

func (r reminderRows) Reconcile(records []reminder.Reminder) {
	stats := r.list.Reconcile(records)
	r.log.Debug().
		Int("created", stats.Created).
		Int("updated", stats.Updated).
		Int("removed", stats.Removed).
		Int("moved", stats.Moved).
		Msg("rows reconciled")
}

func (r reminderRows) Remove(id string) bool {
	return r.list.Remove(id)
}

// RemindersModel is the Bubble Tea model for the interactive reminder list.
//
//nolint:recvcheck // Bubble Tea requires value receivers for Init/Update/View interface methods.
type RemindersModel struct {
	// View state
	state ViewState
	ctx   context.Context
	err   error

	// Data
	svc     Service
	sync    *engine.Synchronizer
	rows    *listview.KeyedListModel[reminder.Reminder]
	rowCtx  *rowContext
	initial *engine.Fetch

	// Interactive components
	search    textinput.Model
	searching bool
	debounce  time.Duration
	keys      KeyMap
	help      help.Model
	toaster   *Toaster
	loading   *LoadingState

	// Pending confirmation target and refresh feedback
	pending    reminder.Reminder
	refreshing bool

	form          ComposeForm
	saving        bool
	refreshLabels LabelRefresher

	width  int
	height int
	log    zerolog.Logger
}

// NewRemindersModel creates the list screen. The first fetch starts in Init.
func NewRemindersModel(ctx context.Context, svc Service, opts Options) RemindersModel {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.SearchDebounce <= 0 {
		opts.SearchDebounce = DefaultSearchDebounce
	}
	log := opts.Logger.With().Str("component", "tui").Logger()

	rc := &rowContext{width: defaultWidth, labels: opts.Labels, now: opts.Now}
	rows := listview.NewKeyedListModel(
		defaultHeight-chromeHeight,
		defaultWidth,
		func(r reminder.Reminder) string { return r.ID },
		func(r reminder.Reminder) string { return RenderReminderRow(r, rc.labels, rc.now(), rc.width) },
	)
	rows.SetBufferSize(0)
	rows.SetPlaceholder(SubtleStyle.Render("No reminders found."))
	rows.SetDecorator(func(content string, selected bool) string {
		if selected {
			return TableSelectedStyle.Render(content)
		}
		return content
	})

	state := engine.NewQueryState(opts.PageSize)
	if opts.SortKey != pagination.SortNone {
		state.SortKey = opts.SortKey
		if opts.SortOrder != "" {
			state.SortOrder = opts.SortOrder
		}
	}

	syncOpts := []engine.Option{engine.WithLogger(opts.Logger), engine.WithContext(ctx)}
	if opts.Snapshots != nil {
		syncOpts = append(syncOpts, engine.WithSnapshots(opts.Snapshots))
	}
	s := engine.New(state, svc, reminderRows{list: rows, log: log}, syncOpts...)

	m := RemindersModel{
		state:    ViewStateLoading,
		ctx:      ctx,
		svc:      svc,
		sync:     s,
		rows:     rows,
		rowCtx:   rc,
		search:   newTextInput(),
		debounce: opts.SearchDebounce,
		keys:     DefaultKeyMap(),
		help:     help.New(),
		toaster:  NewToaster(opts.ToastDuration),
		loading:  NewLoadingState(),
		width:    defaultWidth,
		height:   defaultHeight,
		log:      log,

		refreshLabels: opts.RefreshLabels,
	}

	if opts.Snapshot != nil {
		s.Restore(*opts.Snapshot)
		m.state = ViewStateList
	}
	m.initial = s.Load(false)
	return m
}

// Init starts the spinner and the first fetch (Bubble Tea interface).
func (m RemindersModel) Init() tea.Cmd {
	return tea.Batch(m.loading.Init(), m.fetch(m.initial))
}

// Update handles messages and updates the model state (Bubble Tea interface).
func (m RemindersModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		return m.handleResize(msg)
	case spinner.TickMsg:
		return m, m.loading.Update(msg)
	case FetchResultMsg:
		return m.handleFetchResult(msg)
	case SearchSettledMsg:
		return m, m.load(m.sync.SearchSettled(msg.Ticket))
	case MutationDoneMsg:
		return m.handleMutationDone(msg)
	case LabelsLoadedMsg:
		return m.handleLabelsLoaded(msg)
	case ToastExpiredMsg:
		m.toaster.Expire(msg)
		return m, nil
	case ConfigChangedMsg:
		return m.handleConfigChanged(msg)
	}

	if m.searching {
		return m.handleSearchInput(msg)
	}
	if m.state == ViewStateCompose {
		return m.handleComposeInput(msg)
	}

	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	switch m.state {
	case ViewStateLoading:
		return m.handleLoadingKeypress(keyMsg)
	case ViewStateList:
		return m.handleListKeypress(keyMsg)
	case ViewStateDetail:
		return m.handleDetailKeypress(keyMsg)
	case ViewStateConfirmDelete, ViewStateConfirmDeleteAll:
		return m.handleConfirmKeypress(keyMsg)
	case ViewStateError:
		return m.handleErrorKeypress(keyMsg)
	case ViewStateQuitting:
		return m, nil
	default:
		return m, nil
	}
}

func (m RemindersModel) handleResize(msg tea.WindowSizeMsg) (tea.Model, tea.Cmd) {
	m.width = msg.Width
	m.height = msg.Height
	m.help.Width = msg.Width
	m.rowCtx.width = msg.Width
	m.rows.Update(tea.WindowSizeMsg{Width: msg.Width, Height: max(minHeight, msg.Height-chromeHeight)})
	m.rows.Rerender()
	return m, nil
}

// fetch runs f off the Update goroutine. A nil f means nothing to do.
func (m RemindersModel) fetch(f *engine.Fetch) tea.Cmd {
	if f == nil {
		return nil
	}
	ctx := m.ctx
	return func() tea.Msg {
		return FetchResultMsg{Result: f.Execute(ctx)}
	}
}

func (m RemindersModel) handleFetchResult(msg FetchResultMsg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch m.sync.Apply(msg.Result) {
	case engine.PhaseRendering, engine.PhaseSkippedNotModified:
		m.err = nil
		if m.state == ViewStateLoading || m.state == ViewStateError {
			m.state = ViewStateList
		}
		if m.refreshing {
			m.refreshing = false
			cmd = m.toaster.Show("Refreshed", ToastSuccess)
		}
	case engine.PhaseFailed:
		m.refreshing = false
		err := m.sync.Err()
		if m.state == ViewStateLoading {
			m.err = err
			m.state = ViewStateError
			return m, nil
		}
		cmd = m.toaster.Show(ErrorText(err), ToastError)
	case engine.PhaseIdle, engine.PhaseFetching:
	}
	return m, cmd
}

// load starts f, dropping any pending refresh feedback.
func (m *RemindersModel) load(f *engine.Fetch) tea.Cmd {
	m.refreshing = false
	return m.fetch(f)
}

func (m RemindersModel) handleMutationDone(msg MutationDoneMsg) (tea.Model, tea.Cmd) {
	if msg.Kind == engine.MutationCreate || msg.Kind == engine.MutationEdit {
		m.saving = false
	}
	if msg.Err != nil {
		m.log.Warn().Err(msg.Err).Str("id", msg.ID).Msg("mutation failed")
		if !msg.Applied {
			if m.state == ViewStateCompose {
				m.form = m.form.WithError(msg.Err)
				return m, nil
			}
			return m, m.toaster.Show(ErrorText(msg.Err), ToastError)
		}
	}
	if m.state == ViewStateCompose {
		m.state = ViewStateList
	}
	fetch := m.load(m.sync.MutationCompleted(msg.Kind, msg.ID))
	if msg.Err != nil {
		return m, tea.Batch(fetch, m.toaster.Show(msg.Done+": "+ErrorText(msg.Err), ToastError))
	}
	return m, tea.Batch(fetch, m.toaster.Show(msg.Done, ToastSuccess))
}

func (m RemindersModel) handleLabelsLoaded(msg LabelsLoadedMsg) (tea.Model, tea.Cmd) {
	if msg.Err != nil {
		m.log.Warn().Err(msg.Err).Msg("label refresh failed")
		return m, m.toaster.Show(ErrorText(msg.Err), ToastError)
	}
	m.setLabels(msg.Labels)
	return m, m.toaster.Show(msg.Done, ToastSuccess)
}

// handleComposeInput drives the compose form. Input is ignored while a save
// is in flight.
func (m RemindersModel) handleComposeInput(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		switch keyMsg.String() {
		case keyCtrlC:
			m.state = ViewStateQuitting
			return m, tea.Quit
		case keyEsc:
			if !m.saving {
				m.state = ViewStateList
			}
			return m, nil
		case keyEnter:
			return m.submitForm()
		}
		if m.saving {
			return m, nil
		}
	}
	var cmd tea.Cmd
	m.form, cmd = m.form.Update(msg)
	return m, cmd
}

func (m RemindersModel) openForm(form ComposeForm) (tea.Model, tea.Cmd) {
	m.form = form
	m.saving = false
	m.state = ViewStateCompose
	return m, textinput.Blink
}

// submitForm validates the form and sends it. Validation errors stay on the
// form and nothing is sent.
func (m RemindersModel) submitForm() (tea.Model, tea.Cmd) {
	if m.saving {
		return m, nil
	}
	drafts, err := m.form.Drafts(m.rowCtx.now())
	if err != nil {
		m.form = m.form.WithError(err)
		return m, nil
	}
	m.form = m.form.WithError(nil)
	m.saving = true

	ctx, svc := m.ctx, m.svc
	if m.form.Editing() {
		d := drafts[0]
		return m, func() tea.Msg {
			return MutationDoneMsg{Kind: engine.MutationEdit, ID: d.ID, Done: "Reminder updated", Err: svc.Update(ctx, d)}
		}
	}
	return m, func() tea.Msg {
		return createDrafts(ctx, svc, drafts)
	}
}

// createDrafts schedules drafts in order and summarizes the outcome.
func createDrafts(ctx context.Context, svc Service, drafts []reminder.Draft) MutationDoneMsg {
	msg := MutationDoneMsg{Kind: engine.MutationCreate}
	proc, err := batch.NewProcessor[reminder.Draft](1)
	if err != nil {
		msg.Err = err
		return msg
	}
	report, err := proc.Process(ctx, drafts, func(ctx context.Context, d reminder.Draft, _ int) error {
		_, createErr := svc.Create(ctx, d)
		return createErr
	})
	if report == nil {
		msg.Err = err
		return msg
	}
	msg.Done = report.Summary("Scheduled")
	switch {
	case err != nil:
		msg.Err, msg.Applied = err, report.Succeeded > 0
	case report.Total == 1 && !report.OK():
		msg.Err = report.Failures[0].Err
	case !report.OK():
		msg.Err, msg.Applied = report.Err(), report.Succeeded > 0
	}
	return msg
}

func (m RemindersModel) syncLabels() tea.Cmd {
	if m.refreshLabels == nil {
		return nil
	}
	ctx, refresh := m.ctx, m.refreshLabels
	return func() tea.Msg {
		labels, done, err := refresh(ctx)
		return LabelsLoadedMsg{Labels: labels, Done: done, Err: err}
	}
}

func (m RemindersModel) handleConfigChanged(msg ConfigChangedMsg) (tea.Model, tea.Cmd) {
	if msg.ToastDuration > 0 {
		m.toaster.SetDuration(msg.ToastDuration)
	}
	return m, m.load(m.sync.SetPageSize(msg.PageSize))
}

func (m RemindersModel) handleSearchInput(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		switch keyMsg.String() {
		case keyCtrlC:
			m.state = ViewStateQuitting
			return m, tea.Quit
		case keyEnter, keyEsc:
			m.searching = false
			m.search.Blur()
			return m, nil
		}
	}

	before := m.search.Value()
	var cmd tea.Cmd
	m.search, cmd = m.search.Update(msg)
	if m.search.Value() == before {
		return m, cmd
	}
	return m, tea.Batch(cmd, m.debounceSearch(m.search.Value()))
}

// debounceSearch records term and schedules its settle check.
func (m RemindersModel) debounceSearch(term string) tea.Cmd {
	ticket := m.sync.SetSearch(term)
	return tea.Tick(m.debounce, func(time.Time) tea.Msg {
		return SearchSettledMsg{Ticket: ticket}
	})
}

func (m RemindersModel) handleLoadingKeypress(keyMsg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(keyMsg, m.keys.Quit) {
		m.state = ViewStateQuitting
		return m, tea.Quit
	}
	return m, nil
}

func (m RemindersModel) handleErrorKeypress(keyMsg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(keyMsg, m.keys.Quit):
		m.state = ViewStateQuitting
		return m, tea.Quit
	case key.Matches(keyMsg, m.keys.Refresh):
		m.state = ViewStateLoading
		return m, m.load(m.sync.Refresh())
	}
	return m, nil
}

//nolint:gocyclo,cyclop // One case per binding.
func (m RemindersModel) handleListKeypress(keyMsg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(keyMsg, m.keys.Quit):
		m.state = ViewStateQuitting
		return m, tea.Quit
	case key.Matches(keyMsg, m.keys.Search):
		m.searching = true
		m.search.Focus()
		return m, textinput.Blink
	case key.Matches(keyMsg, m.keys.Back):
		if m.search.Value() == "" {
			return m, nil
		}
		m.search.SetValue("")
		return m, m.load(m.sync.SearchSettled(m.sync.SetSearch("")))
	case key.Matches(keyMsg, m.keys.Detail):
		if m.rows.SelectedItem() != nil {
			m.state = ViewStateDetail
		}
		return m, nil
	case key.Matches(keyMsg, m.keys.NextPage):
		return m, m.load(m.sync.NextPage())
	case key.Matches(keyMsg, m.keys.PrevPage):
		return m, m.load(m.sync.PrevPage())
	case key.Matches(keyMsg, m.keys.PageSizeUp):
		return m, m.load(m.sync.SetPageSize(pagination.StepPageSize(m.sync.State().PageSize, 1)))
	case key.Matches(keyMsg, m.keys.PageSizeDn):
		return m, m.load(m.sync.SetPageSize(pagination.StepPageSize(m.sync.State().PageSize, -1)))
	case key.Matches(keyMsg, m.keys.Refresh):
		cmd := m.load(m.sync.Refresh())
		m.refreshing = true
		return m, cmd
	case key.Matches(keyMsg, m.keys.Toggle):
		return m.toggleSelected()
	case key.Matches(keyMsg, m.keys.Compose):
		return m.openForm(NewComposeForm())
	case key.Matches(keyMsg, m.keys.Edit):
		return m.editSelected()
	case key.Matches(keyMsg, m.keys.SyncLabels):
		return m, m.syncLabels()
	case key.Matches(keyMsg, m.keys.Delete):
		if item := m.rows.SelectedItem(); item != nil {
			m.pending = *item
			m.state = ViewStateConfirmDelete
		}
		return m, nil
	case key.Matches(keyMsg, m.keys.DeleteAll):
		if m.rows.ItemCount() > 0 {
			m.state = ViewStateConfirmDeleteAll
		}
		return m, nil
	case key.Matches(keyMsg, m.keys.Dismiss):
		m.toaster.Dismiss()
		return m, nil
	case key.Matches(keyMsg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
		return m, nil
	}

	for i, b := range m.keys.SortColumns {
		if key.Matches(keyMsg, b) {
			return m, m.load(m.sync.ToggleSort(pagination.SortKeys()[i]))
		}
	}

	m.rows.Update(keyMsg)
	return m, nil
}

func (m RemindersModel) handleDetailKeypress(keyMsg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case keyMsg.String() == keyCtrlC:
		m.state = ViewStateQuitting
		return m, tea.Quit
	case key.Matches(keyMsg, m.keys.Back), key.Matches(keyMsg, m.keys.Detail), keyMsg.String() == keyQuit:
		m.state = ViewStateList
		return m, nil
	case key.Matches(keyMsg, m.keys.Toggle):
		m.state = ViewStateList
		return m.toggleSelected()
	case key.Matches(keyMsg, m.keys.Edit):
		return m.editSelected()
	case key.Matches(keyMsg, m.keys.Delete):
		if item := m.rows.SelectedItem(); item != nil {
			m.pending = *item
			m.state = ViewStateConfirmDelete
		}
		return m, nil
	case key.Matches(keyMsg, m.keys.Dismiss):
		m.toaster.Dismiss()
		return m, nil
	}
	return m, nil
}

func (m RemindersModel) handleConfirmKeypress(keyMsg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch keyMsg.String() {
	case keyYes, "Y":
		kind := m.state
		m.state = ViewStateList
		if kind == ViewStateConfirmDeleteAll {
			return m, m.deleteAll()
		}
		return m, m.deleteOne(m.pending.ID)
	case keyNo, "N", keyEsc, keyQuit:
		m.state = ViewStateList
		m.pending = reminder.Reminder{}
		return m, nil
	case keyCtrlC:
		m.state = ViewStateQuitting
		return m, tea.Quit
	}
	return m, nil
}

func (m RemindersModel) editSelected() (tea.Model, tea.Cmd) {
	item := m.rows.SelectedItem()
	if item == nil {
		return m, nil
	}
	return m.openForm(EditComposeForm(*item, m.rowCtx.now().Location()))
}

func (m RemindersModel) toggleSelected() (tea.Model, tea.Cmd) {
	item := m.rows.SelectedItem()
	if item == nil {
		return m, nil
	}
	if err := reminder.CanToggle(*item, m.rowCtx.now()); err != nil {
		return m, m.toaster.Show(ErrorText(err), ToastError)
	}

	ctx, svc, id := m.ctx, m.svc, item.ID
	done := "Reminder paused"
	if !item.IsActive {
		done = "Reminder resumed"
	}
	return m, func() tea.Msg {
		return MutationDoneMsg{Kind: engine.MutationToggle, ID: id, Done: done, Err: svc.Toggle(ctx, id)}
	}
}

func (m RemindersModel) deleteOne(id string) tea.Cmd {
	if id == "" {
		return nil
	}
	ctx, svc := m.ctx, m.svc
	return func() tea.Msg {
		return MutationDoneMsg{Kind: engine.MutationDeleteOne, ID: id, Done: "Reminder deleted", Err: svc.Delete(ctx, id)}
	}
}

func (m RemindersModel) deleteAll() tea.Cmd {
	ctx, svc := m.ctx, m.svc
	return func() tea.Msg {
		return MutationDoneMsg{Kind: engine.MutationDeleteAll, Done: "All reminders deleted", Err: svc.DeleteAll(ctx)}
	}
}

// setLabels swaps the target directory and re-renders the rows.
func (m RemindersModel) setLabels(labels Labeler) {
	m.rowCtx.labels = labels
	m.rows.Rerender()
}

// Synchronizer exposes the list synchronizer.
func (m RemindersModel) Synchronizer() *engine.Synchronizer {
	return m.sync
}
