package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/rshade/reminderin/internal/config"
)

// NewConfigValidateCmd creates the config validate command for validating configuration.
func NewConfigValidateCmd() *cobra.Command {
	var verbose bool
	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Validate the configuration file",
		Long: `Validates the configuration file for syntax and value ranges.

This includes:
- YAML syntax and the config_version schema check
- Server URL, timeout and mutation rate
- Page size and default sort
- Cache TTL when the cache is enabled
- REMINDERIN_* environment overrides`,
		Example: `  # Validate current configuration
  reminderin config validate

  # Validate and show the values in effect
  reminderin config validate --verbose`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runConfigValidate(cmd, verbose)
		},
	}

	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "show the configuration values in effect")

	return cmd
}

// runConfigValidate executes the configuration validation logic.
func runConfigValidate(cmd *cobra.Command, verbose bool) error {
	cfg, err := loadEditableConfig(cmd)
	if err != nil {
		return fmt.Errorf("configuration validation failed: %w", err)
	}

	// Overrides are checked on the loaded file so their errors name the variable.
	if envErr := config.ApplyEnv(cfg, os.LookupEnv); envErr != nil {
		return fmt.Errorf("environment override rejected: %w", envErr)
	}

	printSuccess(cmd.OutOrStdout(), "Configuration is valid (%s)", cfg.Path())

	if verbose {
		printVerboseDetails(cmd, cfg)
	}
	return nil
}

// printVerboseDetails prints detailed configuration information.
func printVerboseDetails(cmd *cobra.Command, cfg *config.Config) {
	w := cmd.OutOrStdout()
	_, _ = fmt.Fprintln(w)
	_, _ = fmt.Fprintln(w, "Configuration details:")
	_, _ = fmt.Fprintf(w, "  Server: %s (timeout %s)\n", cfg.Server.URL, cfg.Server.Timeout)
	_, _ = fmt.Fprintf(w, "  Page size: %d\n", cfg.List.PageSize)
	if cfg.List.Sort != "" {
		_, _ = fmt.Fprintf(w, "  Sort: %s\n", cfg.List.Sort)
	}
	_, _ = fmt.Fprintf(w, "  Logging level: %s\n", cfg.Logging.Level)
	_, _ = fmt.Fprintf(w, "  Log file: %s\n", cfg.Logging.File)

	printStorageDetails(cmd, cfg)
}

// printStorageDetails prints where snapshots and contact names are kept.
func printStorageDetails(cmd *cobra.Command, cfg *config.Config) {
	w := cmd.OutOrStdout()
	if cfg.Cache.Enabled {
		dir, _ := cfg.CacheDir()
		_, _ = fmt.Fprintf(w, "  Snapshot cache: %s (ttl %ds)\n", dir, cfg.Cache.TTLSeconds)
	} else {
		_, _ = fmt.Fprintln(w, "  Snapshot cache disabled")
	}

	if cfg.Directory.Enabled {
		path, _ := cfg.DirectoryPath()
		_, _ = fmt.Fprintf(w, "  Contact directory: %s\n", path)
	} else {
		_, _ = fmt.Fprintln(w, "  Contact directory disabled")
	}
}
