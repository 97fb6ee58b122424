package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/gosuri/uitable"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/rshade/reminderin/internal/api"
	"github.com/rshade/reminderin/internal/cli/pagination"
	"github.com/rshade/reminderin/internal/config"
	"github.com/rshade/reminderin/internal/directory"
	"github.com/rshade/reminderin/internal/engine"
	"github.com/rshade/reminderin/internal/reminder"
	"github.com/rshade/reminderin/internal/tui"
)

// Output formats accepted by -o.
const (
	outputTable = "table"
	outputJSON  = "json"
	outputYAML  = "yaml"
)

// listMessageWidth caps the message column in table output.
const listMessageWidth = 48

// listOutput is the machine-readable form of one page.
type listOutput struct {
	Reminders []reminder.Reminder `json:"reminders" yaml:"reminders"`
	Meta      pagination.PageMeta `json:"meta"      yaml:"meta"`
}

// NewListCmd creates the command that prints one page of reminders.
func NewListCmd() *cobra.Command {
	var (
		params pagination.ListParams
		sort   string
		output string
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "Print one page of reminders",
		Example: `  # First page with the configured page size
  reminderin list

  # Search and sort, newest schedule first
  reminderin list --search standup --sort time:desc

  # Continue from a cursor printed by a previous page
  reminderin list --cursor eyJpZCI6IjQyIn0

  # Export as JSON
  reminderin list --limit 100 -o json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := config.GetGlobalConfig()
			if !cmd.Flags().Changed("limit") {
				params.Limit = cfg.List.PageSize
			}
			if !cmd.Flags().Changed("sort") {
				sort = cfg.List.Sort
			}
			key, order, err := pagination.ParseSort(sort)
			if err != nil {
				return fmt.Errorf("--sort: %w", err)
			}
			params.SortKey, params.SortOrder = key, order
			if err = params.Validate(); err != nil {
				return err
			}
			return runList(cmd, cfg, params, output)
		},
	}

	cmd.Flags().IntVar(&params.Limit, "limit", pagination.DefaultPageSize, "reminders per page (1-100)")
	cmd.Flags().StringVar(&params.Cursor, "cursor", "", "cursor of the page to fetch")
	cmd.Flags().StringVar(&params.Search, "search", "", "only reminders whose message or target contains this text")
	cmd.Flags().StringVar(&sort, "sort", "", "sort as field[:asc|desc] (message, target, time, recurrence)")
	cmd.Flags().StringVarP(&output, "output", "o", outputTable, "output format: table, json or yaml")

	return cmd
}

func runList(cmd *cobra.Command, cfg *config.Config, params pagination.ListParams, output string) error {
	switch output {
	case outputTable, outputJSON, outputYAML:
	default:
		return fmt.Errorf("unknown output format %q (use table, json or yaml)", output)
	}

	client, err := newClient(cfg)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	q := api.ListQuery{
		Limit:     params.Limit,
		Cursor:    params.Cursor,
		Search:    strings.TrimSpace(params.Search),
		SortKey:   params.SortKey,
		SortOrder: params.SortOrder,
	}
	out := client.FetchList(ctx, q, "")
	switch out.Kind {
	case api.OutcomeSuccess:
	case api.OutcomeFailed:
		return explain(out.Err)
	default:
		return errors.New("list request was cancelled")
	}

	page := out.Page
	meta := pagination.NewPageMeta(0, params.Limit, len(page.Records), page.Total, page.NextCursor)
	if params.Cursor != "" {
		// An arbitrary cursor's position is unknown, so the range is not reported.
		meta.HasPrevious = true
		meta.Start, meta.End, meta.Page = 0, 0, 0
	}

	w := cmd.OutOrStdout()
	switch output {
	case outputJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(listOutput{Reminders: nonNil(page.Records), Meta: meta})
	case outputYAML:
		enc := yaml.NewEncoder(w)
		defer func() { _ = enc.Close() }()
		return enc.Encode(listOutput{Reminders: nonNil(page.Records), Meta: meta})
	}

	names := loadNames(ctx, cfg)
	renderReminderTable(w, page.Records, names, time.Now())

	if params.Cursor == "" {
		_, _ = fmt.Fprintln(w, engine.Summary(meta))
	} else {
		_, _ = fmt.Fprintf(w, "Showing %d of %d\n", len(page.Records), page.Total)
	}
	if page.NextCursor != "" {
		_, _ = fmt.Fprintf(w, "Next page: reminderin list --cursor %s\n", page.NextCursor)
	}
	return nil
}

func nonNil(records []reminder.Reminder) []reminder.Reminder {
	if records == nil {
		return []reminder.Reminder{}
	}
	return records
}

// renderReminderTable prints reminders as an aligned table.
func renderReminderTable(w io.Writer, records []reminder.Reminder, names directory.Names, now time.Time) {
	if len(records) == 0 {
		_, _ = fmt.Fprintln(w, "No reminders found.")
		return
	}

	var labels tui.Labeler
	if len(names) > 0 {
		labels = names
	}

	table := uitable.New()
	table.MaxColWidth = listMessageWidth
	table.AddRow(
		headerColor.Sprint("ID"), headerColor.Sprint("MESSAGE"), headerColor.Sprint("TO"),
		headerColor.Sprint("NEXT RUN"), headerColor.Sprint("REPEATS"), headerColor.Sprint("STATUS"),
	)
	for _, r := range records {
		table.AddRow(
			r.ID,
			tui.SingleLine(tui.Sanitize(r.Message)),
			tui.TargetLabels(r, labels),
			tui.ScheduleText(r, now),
			tui.RecurrenceText(r),
			tui.StatusText(r, now),
		)
	}
	_, _ = fmt.Fprintln(w, table)
}
