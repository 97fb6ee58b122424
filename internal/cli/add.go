package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/rshade/reminderin/internal/engine/batch"
	"github.com/rshade/reminderin/internal/reminder"
)

// composeFlags are the reminder fields shared by add and edit.
type composeFlags struct {
	Messages []string
	Targets  []string
	At       string
	Cron     string
}

func (f *composeFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringArrayVarP(&f.Messages, "message", "m", nil,
		"message text; supports *bold*, _italic_, ~strike~ and ```code```")
	cmd.Flags().StringSliceVarP(&f.Targets, "to", "t", nil,
		"recipient phone, group id or JID (repeat or comma-separate; empty sends to yourself)")
	cmd.Flags().StringVar(&f.At, "at", "", `one-time delivery time, RFC3339 or "2006-01-02 15:04" in local time`)
	cmd.Flags().StringVar(&f.Cron, "cron", "", `recurring schedule as a 5-field cron expression, e.g. "0 9 * * 1-5"`)
	cmd.MarkFlagsMutuallyExclusive("at", "cron")
}

// compose validates the flags into a reminder.Compose.
func (f *composeFlags) compose() (reminder.Compose, error) {
	c := reminder.Compose{
		Messages:   f.Messages,
		Targets:    f.Targets,
		Recurrence: f.Cron,
	}
	if f.At != "" {
		at, err := reminder.ParseWhen(f.At, time.Local)
		if err != nil {
			return reminder.Compose{}, err
		}
		c.At = at
	}
	return c, nil
}

// NewAddCmd creates the command that schedules new reminders.
func NewAddCmd() *cobra.Command {
	var flags composeFlags

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Schedule one or more reminders",
		Long: `Schedules a reminder for every --message. All messages share the same
recipients and schedule. Give either --at for a one-time reminder or --cron for
a recurring one.`,
		Example: `  # One-time note to yourself
  reminderin add -m "Pay rent" --at "2026-11-01 09:00"

  # Two messages to a contact and a group, every Monday
  reminderin add -m "Weekly report due" -m "Send timesheet" \
    -t 6281234567890,120363025246125486@g.us --cron "0 9 * * 1"`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runAdd(cmd, &flags)
		},
	}
	flags.register(cmd)

	return cmd
}

func runAdd(cmd *cobra.Command, flags *composeFlags) error {
	c, err := flags.compose()
	if err != nil {
		return err
	}
	drafts, err := c.Drafts(time.Now())
	if err != nil {
		return err
	}

	_, client, err := clientFor()
	if err != nil {
		return err
	}

	proc, err := batch.NewProcessor[reminder.Draft](1)
	if err != nil {
		return err
	}
	proc.WithProgressCallback(batchProgress(cmd, "Creating"))

	ctx := cmd.Context()
	var created []reminder.Reminder
	report, err := proc.Process(ctx, drafts, func(ctx context.Context, d reminder.Draft, _ int) error {
		r, createErr := client.Create(ctx, d)
		if createErr != nil {
			logger.Warn().Ctx(ctx).Err(createErr).Msg("create failed")
			return explain(createErr)
		}
		created = append(created, r)
		return nil
	})
	if err != nil {
		return err
	}

	for _, r := range created {
		_, _ = fmt.Fprintf(cmd.OutOrStdout(), "  %s  %s\n", r.ID, r.Message)
	}
	return reportBatch(cmd, report, "Created", func(i int) string {
		return fmt.Sprintf("message %d", i+1)
	})
}

// reportBatch prints per-item failures and the summary line. A batch where
// every item failed returns the failure; a partial one returns an ExitError.
func reportBatch(cmd *cobra.Command, report *batch.Report, verb string, describe func(int) string) error {
	if report.Total == 1 && !report.OK() {
		return report.Failures[0].Err
	}

	for _, f := range report.Failures {
		printFailure(cmd.ErrOrStderr(), "%s: %v", describe(f.Index), f.Err)
	}

	summary := report.Summary(verb)
	switch {
	case report.OK():
		printSuccess(cmd.OutOrStdout(), "%s", summary)
		return nil
	case report.Succeeded == 0:
		return fmt.Errorf("%s: %w", summary, report.Err())
	default:
		printWarning(cmd.OutOrStdout(), "%s", summary)
		return &ExitError{ExitCode: PartialFailureExitCode, Reason: summary, Err: report.Err()}
	}
}
