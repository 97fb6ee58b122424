package cli

import (
	"errors"
	"time"

	"github.com/spf13/cobra"
)

// NewEditCmd creates the command that replaces an existing reminder.
func NewEditCmd() *cobra.Command {
	var flags composeFlags

	cmd := &cobra.Command{
		Use:   "edit ID",
		Short: "Replace a reminder's message, recipients and schedule",
		Long: `Replaces every field of the reminder with ID. Unlike add, exactly one
--message is accepted. Omitting --to sends the reminder to yourself.`,
		Example: `  # Move a reminder to a new time
  reminderin edit 01J9Z3Q4 -m "Dentist" -t 6281234567890 --at "2026-11-05 10:30"

  # Turn it into a daily reminder
  reminderin edit 01J9Z3Q4 -m "Stretch" --cron "0 15 * * *"`,
		Args: exactArgs(1, "a reminder ID"),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(flags.Messages) != 1 {
				return errors.New("edit takes exactly one --message")
			}
			c, err := flags.compose()
			if err != nil {
				return err
			}
			drafts, err := c.Drafts(time.Now())
			if err != nil {
				return err
			}
			draft := drafts[0]
			draft.ID = args[0]

			_, client, err := clientFor()
			if err != nil {
				return err
			}
			if err = client.Update(cmd.Context(), draft); err != nil {
				return explain(err)
			}
			printSuccess(cmd.OutOrStdout(), "Updated reminder %s", draft.ID)
			return nil
		},
	}
	flags.register(cmd)

	return cmd
}
