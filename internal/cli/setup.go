package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"github.com/spf13/cobra"

	"github.com/rshade/reminderin/internal/api"
	"github.com/rshade/reminderin/internal/config"
	"github.com/rshade/reminderin/internal/logging"
	"github.com/rshade/reminderin/pkg/version"
)

// StepStatus represents the outcome of a single setup step.
type StepStatus int

const (
	// StepSuccess indicates the step completed successfully.
	StepSuccess StepStatus = iota
	// StepWarning indicates the step completed with a non-fatal issue.
	StepWarning
	// StepSkipped indicates the step was intentionally skipped via flag.
	StepSkipped
	// StepError indicates the step failed.
	StepError
)

// StepResult describes the outcome of executing a single setup step.
type StepResult struct {
	Name     string
	Status   StepStatus
	Message  string
	Critical bool
	Err      error
}

// SetupOptions holds the configuration for the setup command, derived from CLI flags.
type SetupOptions struct {
	Offline        bool
	NonInteractive bool
}

// SetupResult is the aggregate outcome of all setup steps.
type SetupResult struct {
	Steps       []StepResult
	HasErrors   bool
	HasWarnings bool
}

// dirPermBase is the permission mode for the config directory and its children.
const dirPermBase = 0o700

// formatStatus returns a status marker appropriate for the output mode.
func formatStatus(status StepStatus, nonInteractive bool) string {
	if nonInteractive {
		switch status {
		case StepSuccess:
			return "[OK]"
		case StepWarning:
			return "[WARN]"
		case StepSkipped:
			return "[SKIP]"
		case StepError:
			return "[ERR]"
		default:
			return "[??]"
		}
	}

	switch status {
	case StepSuccess:
		return successColor.Sprint("✓")
	case StepWarning:
		return warnColor.Sprint("!")
	case StepSkipped:
		return "-"
	case StepError:
		return errorColor.Sprint("✗")
	default:
		return "?"
	}
}

// NewSetupCmd creates the setup command that prepares the local environment
// and checks the server connection.
func NewSetupCmd() *cobra.Command {
	var opts SetupOptions

	cmd := &cobra.Command{
		Use:   "setup",
		Short: "Prepare reminderin and check the server connection",
		Long: `Creates the config directory, writes a default configuration, opens
the contact directory and checks that the server is reachable, that you are
logged in and that a WhatsApp account is linked.

This command is idempotent and safe to run multiple times. Existing
configuration files are preserved.`,
		Example: `  # Full setup
  reminderin setup

  # Local files only
  reminderin setup --offline`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runSetup(cmd, &opts)
		},
	}

	cmd.Flags().BoolVar(&opts.NonInteractive, "non-interactive", false,
		"Disable TTY-dependent output (status symbols, color)")
	cmd.Flags().BoolVar(&opts.Offline, "offline", false,
		"Skip the server and WhatsApp checks")

	return cmd
}

// runSetup runs every step in order and keeps going after failures. It
// returns an error only if a critical step failed.
func runSetup(cmd *cobra.Command, opts *SetupOptions) error {
	ctx := cmd.Context()
	log := logging.FromContext(ctx)

	// Auto-detect non-interactive mode when stdin is not a TTY
	if _, ok := stdinTerminal(cmd); !opts.NonInteractive && !ok {
		opts.NonInteractive = true
	}

	result := &SetupResult{}
	record := func(steps ...StepResult) {
		for _, s := range steps {
			printStep(cmd, s, opts.NonInteractive)
			result.Steps = append(result.Steps, s)
		}
	}

	record(stepDisplayVersion())
	record(stepCreateDirectories()...)
	record(stepInitConfig())
	record(stepOpenDirectory(ctx))

	if opts.Offline {
		record(StepResult{Name: "Server check", Status: StepSkipped, Message: "Skipped server checks"})
	} else {
		record(stepCheckServer(ctx)...)
	}

	for _, s := range result.Steps {
		if s.Status == StepError && s.Critical {
			result.HasErrors = true
		}
		if s.Status == StepWarning {
			result.HasWarnings = true
		}
	}

	printSummary(cmd, result)

	if result.HasErrors {
		log.Error().
			Ctx(ctx).
			Str("component", "setup").
			Msg("setup completed with critical errors")
		return errors.New("setup failed: one or more critical steps failed")
	}

	return nil
}

// printStep outputs a single step's status line.
func printStep(cmd *cobra.Command, step StepResult, nonInteractive bool) {
	marker := formatStatus(step.Status, nonInteractive)
	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", marker, step.Message)
}

// printSummary outputs the final completion message.
func printSummary(cmd *cobra.Command, result *SetupResult) {
	w := cmd.OutOrStdout()
	_, _ = fmt.Fprintln(w)
	if result.HasErrors {
		_, _ = fmt.Fprintln(w, "Setup completed with errors. Review the messages above for remediation steps.")
	} else {
		_, _ = fmt.Fprintln(w, "Setup complete! Run 'reminderin' to open your reminders.")
	}
}

// stepDisplayVersion reports the reminderin version and Go runtime.
func stepDisplayVersion() StepResult {
	return StepResult{
		Name:    "Version display",
		Status:  StepSuccess,
		Message: fmt.Sprintf("reminderin %s (%s)", version.GetVersion(), runtime.Version()),
	}
}

// stepCreateDirectories creates the config directory and its cache and log folders.
// Returns one StepResult per directory.
func stepCreateDirectories() []StepResult {
	baseDir, err := config.GetConfigDir()
	if err != nil {
		return []StepResult{{
			Name:     "Directory creation",
			Status:   StepError,
			Message:  fmt.Sprintf("Cannot resolve config directory: %v\n  Try: export %s=/path/to/dir", err, config.EnvHome),
			Critical: true,
			Err:      err,
		}}
	}

	dirs := []string{baseDir, filepath.Join(baseDir, "cache"), filepath.Join(baseDir, "logs")}

	var results []StepResult
	for _, d := range dirs {
		info, statErr := os.Stat(d)
		if statErr == nil && info.IsDir() {
			results = append(results, StepResult{
				Name:     "Directory creation",
				Status:   StepSuccess,
				Message:  fmt.Sprintf("Directory exists: %s", d),
				Critical: true,
			})
			continue
		}

		if mkErr := os.MkdirAll(d, dirPermBase); mkErr != nil {
			results = append(results, StepResult{
				Name:   "Directory creation",
				Status: StepError,
				Message: fmt.Sprintf(
					"Failed to create %s: %v\n  Try: export %s=/path/to/writable/directory",
					d, mkErr, config.EnvHome,
				),
				Critical: true,
				Err:      mkErr,
			})
			continue
		}

		results = append(results, StepResult{
			Name:     "Directory creation",
			Status:   StepSuccess,
			Message:  fmt.Sprintf("Created %s", d),
			Critical: true,
		})
	}

	return results
}

// stepInitConfig initializes the default config file if one does not exist.
func stepInitConfig() StepResult {
	cfgPath, err := config.DefaultConfigPath()
	if err != nil {
		return StepResult{Name: "Config initialization", Status: StepError, Message: err.Error(), Critical: true, Err: err}
	}

	if _, statErr := os.Stat(cfgPath); statErr == nil {
		return StepResult{
			Name:     "Config initialization",
			Status:   StepSuccess,
			Message:  fmt.Sprintf("Config already exists (%s)", cfgPath),
			Critical: true,
		}
	}

	cfg := config.New()
	cfg.SetPath(cfgPath)
	if saveErr := cfg.Save(); saveErr != nil {
		return StepResult{
			Name:     "Config initialization",
			Status:   StepError,
			Message:  fmt.Sprintf("Failed to initialize config: %v", saveErr),
			Critical: true,
			Err:      saveErr,
		}
	}

	return StepResult{
		Name:     "Config initialization",
		Status:   StepSuccess,
		Message:  fmt.Sprintf("Initialized config (%s)", cfgPath),
		Critical: true,
	}
}

// stepOpenDirectory makes sure the contact directory database can be created.
func stepOpenDirectory(ctx context.Context) StepResult {
	store, err := openDirectory(ctx, config.GetGlobalConfig())
	switch {
	case err != nil:
		return StepResult{
			Name:    "Contact directory",
			Status:  StepWarning,
			Message: fmt.Sprintf("Contact directory unavailable: %v\n  Names fall back to phone numbers", err),
			Err:     err,
		}
	case store == nil:
		return StepResult{Name: "Contact directory", Status: StepSkipped, Message: "Contact directory disabled"}
	}
	defer func() { _ = store.Close() }()

	names, err := store.Names(ctx)
	if err != nil {
		return StepResult{Name: "Contact directory", Status: StepWarning, Message: err.Error(), Err: err}
	}
	return StepResult{
		Name:    "Contact directory",
		Status:  StepSuccess,
		Message: fmt.Sprintf("Contact directory ready (%d names)", len(names)),
	}
}

// stepCheckServer checks reachability, the login session and the WhatsApp link.
func stepCheckServer(ctx context.Context) []StepResult {
	cfg := config.GetGlobalConfig()
	client, err := newClient(cfg)
	if err != nil {
		return []StepResult{{Name: "Server check", Status: StepError, Message: err.Error(), Critical: true, Err: err}}
	}

	loggedIn, err := client.Session(ctx)
	if err != nil {
		return []StepResult{{
			Name:    "Server check",
			Status:  StepWarning,
			Message: fmt.Sprintf("Cannot reach %s: %v\n  Try: reminderin config set server.url <url>", cfg.Server.URL, err),
			Err:     err,
		}}
	}
	if !loggedIn {
		return []StepResult{{
			Name:    "Server check",
			Status:  StepWarning,
			Message: fmt.Sprintf("Reached %s but not logged in\n  Try: reminderin login", cfg.Server.URL),
		}}
	}

	results := []StepResult{{
		Name:    "Server check",
		Status:  StepSuccess,
		Message: fmt.Sprintf("Logged in to %s", cfg.Server.URL),
	}}

	st, err := client.Status(ctx)
	switch {
	case err != nil:
		results = append(results, StepResult{Name: "WhatsApp", Status: StepWarning, Message: err.Error(), Err: err})
	case st.Status == api.WAConnected:
		results = append(results, StepResult{
			Name:    "WhatsApp",
			Status:  StepSuccess,
			Message: fmt.Sprintf("WhatsApp connected as %s", st.Number),
		})
	default:
		results = append(results, StepResult{
			Name:    "WhatsApp",
			Status:  StepWarning,
			Message: fmt.Sprintf("WhatsApp is %s\n  Try: reminderin wa link", st.Status),
		})
	}
	return results
}
