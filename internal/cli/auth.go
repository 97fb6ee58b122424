package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/rshade/reminderin/internal/config"
)

// NewLoginCmd creates the command that opens a server session.
// Credentials fall back to REMINDERIN_USERNAME and REMINDERIN_PASSWORD.
func NewLoginCmd(lookupEnv func(string) (string, bool)) *cobra.Command {
	var (
		username      string
		remember      bool
		passwordStdin bool
	)

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in to the scheduling server",
		Long: `Signs in and stores the session cookie in <config dir>/session.json.
The password is read from REMINDERIN_PASSWORD, from stdin with --password-stdin,
or prompted for without echo.`,
		Example: `  # Interactive
  reminderin login -u alice --remember

  # Scripted
  echo "$PASS" | reminderin login -u alice --password-stdin`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			envUser, envPass := config.Credentials(lookupEnv)
			if username == "" {
				username = envUser
			}
			if strings.TrimSpace(username) == "" {
				return errors.New("username is required (use -u or " + config.EnvUsername + ")")
			}

			password, err := readPassword(cmd, envPass, passwordStdin)
			if err != nil {
				return err
			}

			cfg, client, err := clientFor()
			if err != nil {
				return err
			}
			if err = client.Login(cmd.Context(), username, password, remember); err != nil {
				logger.Warn().Ctx(cmd.Context()).Err(err).Str("user", username).Msg("login failed")
				return err
			}
			printSuccess(cmd.OutOrStdout(), "Logged in to %s as %s", cfg.Server.URL, username)
			return nil
		},
	}

	cmd.Flags().StringVarP(&username, "username", "u", "", "account name")
	cmd.Flags().BoolVar(&remember, "remember", false, "ask the server for a long-lived session")
	cmd.Flags().BoolVar(&passwordStdin, "password-stdin", false, "read the password from stdin")

	return cmd
}

// readPassword picks the password source: --password-stdin, then the
// environment, then a no-echo terminal prompt.
func readPassword(cmd *cobra.Command, envPass string, fromStdin bool) (string, error) {
	if fromStdin {
		return readLine(cmd.InOrStdin())
	}
	if envPass != "" {
		return envPass, nil
	}
	in, ok := stdinTerminal(cmd)
	if !ok {
		return "", errors.New("no password: set " + config.EnvPassword + " or use --password-stdin")
	}

	_, _ = fmt.Fprint(cmd.ErrOrStderr(), "Password: ")
	b, err := term.ReadPassword(int(in.Fd()))
	_, _ = fmt.Fprintln(cmd.ErrOrStderr())
	if err != nil {
		return "", fmt.Errorf("reading password: %w", err)
	}
	return string(b), nil
}

func readLine(r io.Reader) (string, error) {
	scanner := bufio.NewScanner(r)
	if !scanner.Scan() {
		if err := scanner.Err(); err != nil {
			return "", fmt.Errorf("reading password: %w", err)
		}
		return "", errors.New("no password on stdin")
	}
	return strings.TrimRight(scanner.Text(), "\r"), nil
}

// NewLogoutCmd creates the command that ends the server session.
func NewLogoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Sign out and forget the stored session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, client, err := clientFor()
			if err != nil {
				return err
			}
			if err = client.Logout(cmd.Context()); err != nil {
				return err
			}
			printSuccess(cmd.OutOrStdout(), "Logged out")
			return nil
		},
	}
}

// NewSessionCmd creates the command that reports whether the stored session is valid.
func NewSessionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "session",
		Short: "Check whether the stored session is still valid",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, client, err := clientFor()
			if err != nil {
				return err
			}
			ok, err := client.Session(cmd.Context())
			if err != nil {
				return err
			}
			if !ok {
				printWarning(cmd.OutOrStdout(), "Not logged in to %s", cfg.Server.URL)
				return &ExitError{ExitCode: 1, Reason: "no valid session"}
			}
			printSuccess(cmd.OutOrStdout(), "Logged in to %s", cfg.Server.URL)
			return nil
		},
	}
}
