package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rshade/reminderin/internal/config"
	"github.com/rshade/reminderin/internal/logging"
)

// ownsTerminal reports whether cmd draws a full-screen view, in which case
// console logging would corrupt the display.
func ownsTerminal(cmd *cobra.Command) bool {
	if cmd.Annotations[annotationFullScreen] == "true" {
		return true
	}
	return cmd == cmd.Root() && cmd.Flags().NArg() == 0
}

// annotationFullScreen marks commands that take over the terminal.
const annotationFullScreen = "reminderin/fullscreen"

// setupLogging configures logging based on config file, environment, and CLI flags.
func setupLogging(cmd *cobra.Command) logging.LogPathResult {
	loggingCfg := config.GetLoggingConfig()

	debug, _ := cmd.Flags().GetBool("debug")
	if debug {
		loggingCfg.Level = "debug"
		loggingCfg.Format = "console"
		loggingCfg.File = ""
	}

	if ownsTerminal(cmd) && loggingCfg.File == "" {
		if path, err := config.DefaultLogPath(); err == nil {
			loggingCfg.File = path
		} else {
			_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "Warning: could not resolve log path: %v\n", err)
		}
	}

	result := logging.NewLoggerWithPath(loggingCfg.ToLoggingConfig())
	logger = logging.ComponentLogger(result.Logger, "cli")

	if result.UsingFile && ownsTerminal(cmd) {
		logging.PrintLogPathMessage(cmd.ErrOrStderr(), result.FilePath)
	} else if result.FallbackUsed {
		logging.PrintFallbackWarning(cmd.ErrOrStderr(), result.FallbackReason)
	}

	ctx := cmd.Context()
	traceID := logging.GetOrGenerateTraceID(ctx)
	ctx = logging.ContextWithTraceID(ctx, traceID)
	ctx = logger.WithContext(ctx)
	cmd.SetContext(ctx)

	logger.Debug().Ctx(ctx).Str("command", cmd.CommandPath()).Str("trace_id", traceID).Msg("command started")

	return result
}

// cleanupLogging closes the log file handle.
func cleanupLogging(_ *cobra.Command, logResult *logging.LogPathResult) error {
	if logResult != nil {
		return logResult.Close()
	}
	return nil
}
