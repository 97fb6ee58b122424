package cli

import (
	"context"
	"errors"

	"github.com/spf13/cobra"

	"github.com/rshade/reminderin/internal/engine/batch"
)

// deleteConcurrency bounds parallel deletes; the client's limiter still applies.
const deleteConcurrency = 4

// NewDeleteCmd creates the command that removes reminders.
func NewDeleteCmd() *cobra.Command {
	var (
		all bool
		yes bool
	)

	cmd := &cobra.Command{
		Use:   "delete ID... | --all",
		Short: "Delete reminders",
		Example: `  # Delete two reminders
  reminderin delete 01J9Z3Q4 01J9Z3R7

  # Delete every reminder without asking
  reminderin delete --all --yes`,
		Args: func(_ *cobra.Command, args []string) error {
			switch {
			case all && len(args) > 0:
				return errors.New("--all cannot be combined with reminder IDs")
			case !all && len(args) == 0:
				return errors.New("expected at least one reminder ID, or --all")
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			if all {
				return runDeleteAll(cmd, yes)
			}
			return runDelete(cmd, args)
		},
	}

	cmd.Flags().BoolVar(&all, "all", false, "delete every reminder")
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "do not ask for confirmation")

	return cmd
}

func runDelete(cmd *cobra.Command, ids []string) error {
	_, client, err := clientFor()
	if err != nil {
		return err
	}

	proc, err := batch.NewProcessor[string](deleteConcurrency)
	if err != nil {
		return err
	}
	proc.WithProgressCallback(batchProgress(cmd, "Deleting"))

	report, err := proc.ProcessConcurrent(cmd.Context(), ids, func(ctx context.Context, id string, _ int) error {
		return explain(client.Delete(ctx, id))
	}, deleteConcurrency)
	if err != nil {
		return err
	}
	return reportBatch(cmd, report, "Deleted", func(i int) string { return ids[i] })
}

func runDeleteAll(cmd *cobra.Command, yes bool) error {
	if !yes {
		if _, ok := stdinTerminal(cmd); !ok {
			return errors.New("refusing to delete all reminders without --yes")
		}
		answer := Confirm(cmd.OutOrStdout(), cmd.InOrStdin(), "Delete ALL reminders? This cannot be undone.")
		if !answer.Accepted {
			cmd.Println("Aborted.")
			return nil
		}
	}

	_, client, err := clientFor()
	if err != nil {
		return err
	}
	if err = client.DeleteAll(cmd.Context()); err != nil {
		return explain(err)
	}
	printSuccess(cmd.OutOrStdout(), "All reminders deleted")
	return nil
}
