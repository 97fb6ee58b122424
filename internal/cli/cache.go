package cli

import (
	"fmt"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/dustin/go-humanize/english"
	"github.com/gosuri/uitable"
	"github.com/spf13/cobra"

	"github.com/rshade/reminderin/internal/config"
	"github.com/rshade/reminderin/internal/engine/cache"
)

// NewCacheStatsCmd creates the command that summarizes the snapshot cache.
func NewCacheStatsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show snapshot cache usage",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			store, _, err := openSnapshots(config.GetGlobalConfig())
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			if store == nil {
				_, _ = fmt.Fprintln(w, "Snapshot cache is disabled (cache.enabled: false).")
				return nil
			}

			st, err := store.Stats()
			if err != nil {
				return fmt.Errorf("reading cache: %w", err)
			}

			table := uitable.New()
			table.AddRow("Directory:", store.GetDirectory())
			table.AddRow("Entries:", fmt.Sprintf("%d (%d expired)", st.Entries, st.Expired))
			table.AddRow("Size:", humanize.Bytes(uint64(max(st.Bytes, 0))))
			table.AddRow("TTL:", cache.FormatDuration(time.Duration(store.GetTTL())*time.Second))
			if st.Entries > 0 {
				table.AddRow("Oldest:", humanize.Time(st.Oldest))
				table.AddRow("Newest:", humanize.Time(st.Newest))
			}
			_, _ = fmt.Fprintln(w, table)
			return nil
		},
	}
}

// NewCacheClearCmd creates the command that empties the snapshot cache.
func NewCacheClearCmd() *cobra.Command {
	var expiredOnly bool

	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Remove cached first pages",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			store, _, err := openSnapshots(config.GetGlobalConfig())
			if err != nil {
				return err
			}
			if store == nil {
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), "Snapshot cache is disabled (cache.enabled: false).")
				return nil
			}

			var n int
			if expiredOnly {
				n, err = store.CleanupExpired()
			} else {
				n, err = store.Clear()
			}
			if err != nil {
				return fmt.Errorf("clearing cache: %w", err)
			}
			printSuccess(cmd.OutOrStdout(), "Removed %s", english.Plural(n, "entry", "entries"))
			return nil
		},
	}
	cmd.Flags().BoolVar(&expiredOnly, "expired", false, "only remove expired entries")

	return cmd
}
