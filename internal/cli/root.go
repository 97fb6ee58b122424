package cli

import (
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/rshade/reminderin/internal/config"
	"github.com/rshade/reminderin/internal/logging"
)

// isTerminal checks if the given file is a terminal.
func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

// stdinTerminal returns the command's input when it is an interactive terminal.
func stdinTerminal(cmd *cobra.Command) (*os.File, bool) {
	f, ok := cmd.InOrStdin().(*os.File)
	return f, ok && isTerminal(f)
}

func stdoutIsTerminal(cmd *cobra.Command) bool {
	f, ok := cmd.OutOrStdout().(*os.File)
	return ok && isTerminal(f)
}

// logger is the package-level logger for CLI operations.
var logger zerolog.Logger //nolint:gochecknoglobals // Required for zerolog context integration

// NewRootCmd creates the root Cobra command for the reminderin CLI.
// It wires up configuration, logging, tracing and the subcommands.
func NewRootCmd(ver string) *cobra.Command {
	return NewRootCmdWithEnv(ver, os.LookupEnv)
}

// NewRootCmdWithEnv creates the root command with an explicit env lookup for testability.
// lookupEnv supplies login credentials and the interactive-mode switch.
func NewRootCmdWithEnv(ver string, lookupEnv func(string) (string, bool)) *cobra.Command {
	var logResult *logging.LogPathResult

	cmd := &cobra.Command{
		Use:   "reminderin",
		Short: "Schedule WhatsApp reminders from the terminal",
		Long: `reminderin manages one-time and recurring WhatsApp messages on a
scheduling server. Run it without arguments on a terminal for the interactive
list, or use the subcommands for scripting.`,
		Version:       ver,
		Example:       rootCmdExample,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if err := applyGlobalFlags(cmd); err != nil {
				return err
			}
			result := setupLogging(cmd)
			logResult = &result
			return nil
		},
		PersistentPostRunE: func(cmd *cobra.Command, _ []string) error {
			return cleanupLogging(cmd, logResult)
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			if !interactive(lookupEnv) {
				return cmd.Help()
			}
			return runTUI(cmd, tuiOptions{})
		},
	}

	cmd.PersistentFlags().Bool("debug", false, "enable debug logging")
	cmd.PersistentFlags().String("config", "", "config file (default <config dir>/config.yaml)")
	cmd.PersistentFlags().String("server", "", "scheduling server URL (overrides server.url)")

	cmd.AddCommand(
		NewTUICmd(),
		NewListCmd(),
		NewAddCmd(),
		NewEditCmd(),
		NewDeleteCmd(),
		NewToggleCmd(),
		NewLoginCmd(lookupEnv),
		NewLogoutCmd(),
		NewSessionCmd(),
		newWACmd(),
		newConfigCmd(),
		newCacheCmd(),
		NewSetupCmd(),
		NewVersionCmd(ver),
	)

	return cmd
}

const rootCmdExample = `  # Open the interactive list
  reminderin

  # Sign in and keep the session
  reminderin login -u alice --remember

  # Remind a group every weekday at 09:00
  reminderin add -m "*Standup* in five" -t 120363025246125486@g.us --cron "55 8 * * 1-5"

  # Send yourself a one-time note
  reminderin add -m "Call the bank" --at "2026-11-02 14:00"

  # Print the first page sorted by time, newest first
  reminderin list --sort time:desc

  # Link WhatsApp with a pairing code
  reminderin wa link --phone 6281234567890`

// EnvNoTUI disables the interactive view when the root command runs without a subcommand.
const EnvNoTUI = "REMINDERIN_NO_TUI"

// interactive reports whether the root command should open the list view.
func interactive(lookupEnv func(string) (string, bool)) bool {
	if v, ok := lookupEnv(EnvNoTUI); ok && v != "" {
		return false
	}
	return isTerminal(os.Stdin) && isTerminal(os.Stdout)
}

// applyGlobalFlags loads the configuration and applies --config and --server.
func applyGlobalFlags(cmd *cobra.Command) error {
	if path, _ := cmd.Flags().GetString("config"); path != "" {
		if err := config.InitGlobalConfigFrom(path); err != nil {
			return fmt.Errorf("loading --config: %w", err)
		}
	}

	if server, _ := cmd.Flags().GetString("server"); server != "" {
		if err := config.GetGlobalConfig().Set("server.url", server); err != nil {
			return fmt.Errorf("--server: %w", err)
		}
	}
	return nil
}

// newConfigCmd creates the config command group with configuration subcommands.
func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{Use: "config", Short: "Configuration management commands"}
	cmd.AddCommand(
		NewConfigInitCmd(), NewConfigSetCmd(), NewConfigGetCmd(),
		NewConfigListCmd(), NewConfigPathCmd(), NewConfigValidateCmd(),
	)
	return cmd
}

// newWACmd creates the WhatsApp connection command group.
func newWACmd() *cobra.Command {
	cmd := &cobra.Command{Use: "wa", Short: "WhatsApp connection commands"}
	cmd.AddCommand(
		NewWAStatusCmd(), NewWALinkCmd(), NewWAUnlinkCmd(),
		NewWAGroupsCmd(), NewWAContactsCmd(), NewWASyncCmd(),
	)
	return cmd
}

// newCacheCmd creates the snapshot cache command group.
func newCacheCmd() *cobra.Command {
	cmd := &cobra.Command{Use: "cache", Short: "Snapshot cache commands"}
	cmd.AddCommand(NewCacheStatsCmd(), NewCacheClearCmd())
	return cmd
}
