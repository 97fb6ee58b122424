package cli

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/rshade/reminderin/internal/api"
	"github.com/rshade/reminderin/internal/cli/pagination"
	"github.com/rshade/reminderin/internal/config"
	"github.com/rshade/reminderin/internal/tui"
)

// tuiOptions holds flag overrides for the interactive list.
type tuiOptions struct {
	Sort     string
	PageSize int
}

// NewTUICmd creates the command that opens the interactive reminder list.
func NewTUICmd() *cobra.Command {
	var opts tuiOptions

	cmd := &cobra.Command{
		Use:   "tui",
		Short: "Open the interactive reminder list",
		Long: `Opens a full-screen, paginated view of your reminders. The list is
searchable and sortable, and reminders can be created, edited, paused,
resumed and deleted in place. S refreshes contact and group names. Logs go to <config dir>/logs/reminderin.log while the view is open.`,
		Example: `  # Open the list sorted by message text
  reminderin tui --sort message

  # Show 50 reminders per page
  reminderin tui --page-size 50`,
		Annotations: map[string]string{annotationFullScreen: "true"},
		Args:        cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runTUI(cmd, opts)
		},
	}

	cmd.Flags().StringVar(&opts.Sort, "sort", "", "initial sort as field[:asc|desc] (message, target, time, recurrence)")
	cmd.Flags().IntVar(&opts.PageSize, "page-size", 0, "initial page size (10, 20, 50 or 100)")

	return cmd
}

// runTUI builds the list model from the configuration and runs it until the user quits.
func runTUI(cmd *cobra.Command, opts tuiOptions) error {
	ctx := cmd.Context()
	cfg, client, err := clientFor()
	if err != nil {
		return err
	}

	modelOpts, err := buildModelOptions(ctx, cfg, opts)
	if err != nil {
		return err
	}
	modelOpts.RefreshLabels = labelRefresher(cfg, client)

	m := tui.NewRemindersModel(ctx, client, modelOpts)
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))

	watchCtx, stopWatch := context.WithCancel(ctx)
	defer stopWatch()
	if path := cfg.Path(); path != "" {
		go watchConfig(watchCtx, path, p)
	}

	if _, err = p.Run(); err != nil {
		return fmt.Errorf("running interactive view: %w", err)
	}
	return nil
}

// buildModelOptions resolves flags, labels and the cached first page into model options.
func buildModelOptions(ctx context.Context, cfg *config.Config, opts tuiOptions) (tui.Options, error) {
	pageSize := cfg.List.PageSize
	if opts.PageSize != 0 {
		if err := pagination.ValidatePageSize(opts.PageSize); err != nil {
			return tui.Options{}, fmt.Errorf("--page-size: %w", err)
		}
		pageSize = opts.PageSize
	}

	sortSpec := cfg.List.Sort
	if opts.Sort != "" {
		sortSpec = opts.Sort
	}
	sortKey, sortOrder, err := pagination.ParseSort(sortSpec)
	if err != nil {
		return tui.Options{}, fmt.Errorf("--sort: %w", err)
	}

	modelOpts := tui.Options{
		PageSize:       pageSize,
		SortKey:        sortKey,
		SortOrder:      sortOrder,
		SearchDebounce: cfg.List.SearchDebounce,
		ToastDuration:  cfg.Toast.Duration,
		Logger:         logger,
	}

	if names := loadNames(ctx, cfg); len(names) > 0 {
		modelOpts.Labels = names
	}

	_, snaps, err := openSnapshots(cfg)
	if err != nil {
		logger.Warn().Ctx(ctx).Err(err).Msg("snapshot cache unavailable")
		return modelOpts, nil
	}
	if snaps == nil {
		return modelOpts, nil
	}
	modelOpts.Snapshots = snaps

	q := api.ListQuery{Limit: pageSize, SortKey: sortKey, SortOrder: sortOrder}
	snap, ok, err := snaps.Restore(q)
	switch {
	case err != nil:
		logger.Debug().Ctx(ctx).Err(err).Msg("no usable snapshot")
	case ok:
		page := snap.Page
		modelOpts.Snapshot = &page
		logger.Debug().Ctx(ctx).Int("records", len(page.Records)).Time("saved_at", snap.SavedAt).Msg("showing cached first page")
	}
	return modelOpts, nil
}

// labelRefresher re-syncs contact and group names for the running list.
func labelRefresher(cfg *config.Config, client *api.Client) tui.LabelRefresher {
	return func(ctx context.Context) (tui.Labeler, string, error) {
		groups, contacts, err := syncDirectory(ctx, cfg, client)
		if err != nil {
			return nil, "", err
		}
		return loadNames(ctx, cfg), syncSummary(groups, contacts), nil
	}
}

// watchConfig forwards hot-reloadable settings to the running program.
func watchConfig(ctx context.Context, path string, p *tea.Program) {
	err := config.Watch(ctx, path, func(next *config.Config) {
		p.Send(tui.ConfigChangedMsg{
			PageSize:      next.List.PageSize,
			ToastDuration: next.Toast.Duration,
		})
	})
	if err != nil {
		logger.Debug().Ctx(ctx).Err(err).Msg("config hot reload disabled")
	}
}
