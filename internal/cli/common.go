package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/rshade/reminderin/internal/api"
	"github.com/rshade/reminderin/internal/config"
	"github.com/rshade/reminderin/internal/directory"
	"github.com/rshade/reminderin/internal/engine/batch"
	"github.com/rshade/reminderin/internal/engine/cache"
)

// PartialFailureExitCode is returned when a batch command succeeded for some items only.
const PartialFailureExitCode = 2

// ExitError carries a specific process exit code out of a command.
type ExitError struct {
	ExitCode int
	Reason   string
	Err      error
}

func (e *ExitError) Error() string {
	return e.Reason
}

func (e *ExitError) Unwrap() error {
	return e.Err
}

//nolint:gochecknoglobals // Shared output styles.
var (
	successColor = color.New(color.FgGreen)
	warnColor    = color.New(color.FgYellow)
	errorColor   = color.New(color.FgRed)
	headerColor  = color.New(color.Bold)
)

func printSuccess(w io.Writer, format string, args ...any) {
	_, _ = successColor.Fprintf(w, "✓ "+format+"\n", args...)
}

func printWarning(w io.Writer, format string, args ...any) {
	_, _ = warnColor.Fprintf(w, "! "+format+"\n", args...)
}

func printFailure(w io.Writer, format string, args ...any) {
	_, _ = errorColor.Fprintf(w, "✗ "+format+"\n", args...)
}

// batchProgress returns a callback that reports a running batch on stderr,
// or nil when stderr is not a terminal.
func batchProgress(cmd *cobra.Command, verb string) batch.ProgressCallback {
	f, ok := cmd.ErrOrStderr().(*os.File)
	if !ok || !isTerminal(f) {
		return nil
	}
	return progressWriter(f, verb)
}

// progressWriter rewrites one "Deleting 4/10" line per batch and ends it once
// every item is done. Single-item runs print nothing.
func progressWriter(w io.Writer, verb string) batch.ProgressCallback {
	return func(s batch.ProgressSnapshot) {
		if s.TotalItems < 2 {
			return
		}
		end := "\r"
		if s.ProcessedItems >= s.TotalItems {
			end = "\n"
		}
		_, _ = fmt.Fprintf(w, "%s %d/%d (%.0f%%)%s", verb, s.ProcessedItems, s.TotalItems, s.PercentComplete, end)
	}
}

// newClient builds an API client from cfg, restoring the persisted session.
func newClient(cfg *config.Config) (*api.Client, error) {
	sessionPath, err := config.SessionPath()
	if err != nil {
		return nil, err
	}
	client, err := api.New(cfg.Server.URL,
		api.WithTimeout(cfg.Server.Timeout),
		api.WithMutationRate(cfg.Server.MutationRate),
		api.WithSession(api.NewSessionStore(sessionPath)),
	)
	if err != nil {
		return nil, fmt.Errorf("creating client: %w", err)
	}
	return client, nil
}

// clientFor returns the global configuration and a client for it.
func clientFor() (*config.Config, *api.Client, error) {
	cfg := config.GetGlobalConfig()
	client, err := newClient(cfg)
	if err != nil {
		return nil, nil, err
	}
	return cfg, client, nil
}

// openSnapshots opens the first-page cache, or returns nil when it is disabled.
func openSnapshots(cfg *config.Config) (*cache.FileStore, *cache.Snapshots, error) {
	if !cfg.Cache.Enabled {
		return nil, nil, nil
	}
	dir, err := cfg.CacheDir()
	if err != nil {
		return nil, nil, err
	}
	store, err := cache.NewFileStore(dir, true, cfg.Cache.TTLSeconds)
	if err != nil {
		return nil, nil, fmt.Errorf("opening cache: %w", err)
	}
	return store, cache.NewSnapshots(store, cfg.Server.URL), nil
}

// openDirectory opens the label store, or returns nil when it is disabled.
func openDirectory(ctx context.Context, cfg *config.Config) (*directory.Store, error) {
	if !cfg.Directory.Enabled {
		return nil, nil //nolint:nilnil // A disabled directory is not an error.
	}
	path, err := cfg.DirectoryPath()
	if err != nil {
		return nil, err
	}
	return directory.Open(ctx, path)
}

// loadNames returns the label map, or nil when the directory is unavailable.
// A directory failure never blocks a command.
func loadNames(ctx context.Context, cfg *config.Config) directory.Names {
	store, err := openDirectory(ctx, cfg)
	if err != nil || store == nil {
		if err != nil {
			logger.Warn().Ctx(ctx).Err(err).Msg("label directory unavailable")
		}
		return nil
	}
	defer func() { _ = store.Close() }()

	names, err := store.Names(ctx)
	if err != nil {
		logger.Warn().Ctx(ctx).Err(err).Msg("reading labels")
		return nil
	}
	return names
}

// explain turns well-known client errors into actionable messages.
func explain(err error) error {
	if errors.Is(err, api.ErrUnauthorized) {
		return fmt.Errorf("%w (run `reminderin login` first)", err)
	}
	return err
}

// exactArgs is cobra.ExactArgs with a friendlier message.
func exactArgs(n int, what string) cobra.PositionalArgs {
	return func(_ *cobra.Command, args []string) error {
		if len(args) != n {
			return fmt.Errorf("expected %s, got %d argument(s)", what, len(args))
		}
		return nil
	}
}
