// Command reminderin is a terminal client for a scheduled WhatsApp message service.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/rshade/reminderin/internal/cli"
	"github.com/rshade/reminderin/pkg/version"
)

func main() {
	err := run()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	}
	os.Exit(extractExitCode(err))
}

// run executes the root command with a context cancelled on SIGINT or SIGTERM.
func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	root := cli.NewRootCmd(version.GetVersion())
	return root.ExecuteContext(ctx)
}

// extractExitCode maps an error to the process exit code: 0 for nil, the
// carried code for a cli.ExitError, and 1 otherwise.
func extractExitCode(err error) int {
	if err == nil {
		return 0
	}
	var exitErr *cli.ExitError
	if errors.As(err, &exitErr) {
		return exitErr.ExitCode
	}
	return 1
}
