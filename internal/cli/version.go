package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rshade/reminderin/pkg/version"
)

// NewVersionCmd creates the command that prints build information.
func NewVersionCmd(ver string) *cobra.Command {
	var short bool

	cmd := &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if short {
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), ver)
				return nil
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "reminderin %s\n", ver)
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "commit:  %s\n", version.GetGitCommit())
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "built:   %s\n", version.GetBuildDate())
			return nil
		},
	}
	cmd.Flags().BoolVar(&short, "short", false, "print only the version number")

	return cmd
}
