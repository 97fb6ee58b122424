package cli

import (
	"github.com/spf13/cobra"
)

// NewToggleCmd creates the command that pauses or resumes a reminder.
func NewToggleCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "toggle ID",
		Short:   "Pause an active reminder or resume a paused one",
		Example: `  reminderin toggle 01J9Z3Q4`,
		Args:    exactArgs(1, "a reminder ID"),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, client, err := clientFor()
			if err != nil {
				return err
			}
			if err = client.Toggle(cmd.Context(), args[0]); err != nil {
				return explain(err)
			}
			printSuccess(cmd.OutOrStdout(), "Toggled reminder %s", args[0])
			return nil
		},
	}
}
