package cli

import (
	"fmt"

	"github.com/gosuri/uitable"
	"github.com/spf13/cobra"

	"github.com/rshade/reminderin/internal/config"
)

// loadEditableConfig reads the config file itself, without environment
// overrides, so that set only writes what the user asked for.
func loadEditableConfig(cmd *cobra.Command) (*config.Config, error) {
	path := configPath(cmd)
	if path == "" {
		var err error
		if path, err = config.DefaultConfigPath(); err != nil {
			return nil, err
		}
	}
	return config.Load(path)
}

// NewConfigGetCmd creates the config get command.
func NewConfigGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "get KEY",
		Short:   "Print one configuration value",
		Example: `  reminderin config get list.page_size`,
		Args:    exactArgs(1, "a configuration key"),
		RunE: func(cmd *cobra.Command, args []string) error {
			v, err := config.GetGlobalConfig().Get(args[0])
			if err != nil {
				return fmt.Errorf("%w (see `reminderin config list`)", err)
			}
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), v)
			return nil
		},
	}
}

// NewConfigSetCmd creates the config set command.
func NewConfigSetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "set KEY VALUE",
		Short: "Change one configuration value",
		Example: `  # Show 50 reminders per page
  reminderin config set list.page_size 50

  # Point at another server
  reminderin config set server.url https://reminders.example.com`,
		Args: exactArgs(2, "a key and a value"),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadEditableConfig(cmd)
			if err != nil {
				return err
			}
			if err = cfg.Set(args[0], args[1]); err != nil {
				return err
			}
			if err = cfg.Save(); err != nil {
				return fmt.Errorf("failed to save configuration: %w", err)
			}
			printSuccess(cmd.OutOrStdout(), "%s = %s", args[0], args[1])
			return nil
		},
	}
}

// NewConfigListCmd creates the config list command.
func NewConfigListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "Print every configuration value in effect",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := config.GetGlobalConfig()
			table := uitable.New()
			for _, key := range config.Keys() {
				v, _ := cfg.Get(key)
				table.AddRow(key, v)
			}
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), table)
			return nil
		},
	}
}

// NewConfigPathCmd creates the config path command.
func NewConfigPathCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print the configuration file path",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			path := config.GetGlobalConfig().Path()
			if path == "" {
				var err error
				if path, err = config.DefaultConfigPath(); err != nil {
					return err
				}
			}
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), path)
			return nil
		},
	}
}
