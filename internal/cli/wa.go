package cli

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/dustin/go-humanize/english"
	"github.com/gosuri/uitable"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/rshade/reminderin/internal/api"
	"github.com/rshade/reminderin/internal/config"
	"github.com/rshade/reminderin/internal/directory"
	"github.com/rshade/reminderin/internal/reminder"
	"github.com/rshade/reminderin/internal/tui"
)

// qrFileName is where link QR codes are written inside the config directory.
const qrFileName = "link-qr.png"

// NewWAStatusCmd creates the command that shows the linked account state.
func NewWAStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the linked WhatsApp account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, client, err := clientFor()
			if err != nil {
				return err
			}
			st, err := client.Status(cmd.Context())
			if err != nil {
				return explain(err)
			}

			w := cmd.OutOrStdout()
			switch st.Status {
			case api.WAConnected:
				printSuccess(w, "Connected as %s", st.Number)
			case api.WANotLinked:
				printWarning(w, "No WhatsApp account linked (run `reminderin wa link`)")
			default:
				printWarning(w, "WhatsApp is %s", st.Status)
			}
			return nil
		},
	}
}

// NewWALinkCmd creates the command that links a WhatsApp account by QR code or pairing code.
func NewWALinkCmd() *cobra.Command {
	var phone string

	cmd := &cobra.Command{
		Use:   "link",
		Short: "Link a WhatsApp account",
		Long: `Links a WhatsApp account to the scheduling server. Without --phone the
server sends QR codes, which are saved as a PNG in the config directory for you
to scan. With --phone it sends a pairing code to type into WhatsApp instead.
The contact and group directory is refreshed once linking succeeds.`,
		Example: `  # Scan a QR code
  reminderin wa link

  # Use a pairing code
  reminderin wa link --phone "+62 812-3456-7890"`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runLink(cmd, phone)
		},
	}
	cmd.Flags().StringVar(&phone, "phone", "", "phone number to pair with a code instead of a QR scan")

	return cmd
}

func runLink(cmd *cobra.Command, phone string) error {
	ctx := cmd.Context()
	cfg, client, err := clientFor()
	if err != nil {
		return err
	}

	stream := tui.StreamFunc(client.StreamQR)
	if phone != "" {
		digits, phoneErr := reminder.NormalizePairPhone(phone)
		if phoneErr != nil {
			return phoneErr
		}
		stream = func(ctx context.Context, h api.ConnectionEventHandler) error {
			return client.StreamPair(ctx, digits, h)
		}
	}

	dir, err := config.GetConfigDir()
	if err != nil {
		return err
	}
	qrPath := filepath.Join(dir, qrFileName)
	saveQR := func(ev *api.QREvent) (string, error) {
		return qrPath, writeDataURI(qrPath, ev.Image)
	}

	var number string
	if _, ok := stdinTerminal(cmd); ok && stdoutIsTerminal(cmd) {
		final, runErr := tea.NewProgram(tui.NewLinkModel(ctx, stream, saveQR)).Run()
		if runErr != nil {
			return fmt.Errorf("running link view: %w", runErr)
		}
		lm, _ := final.(tui.LinkModel)
		number, err = lm.Number(), lm.Err()
	} else {
		number, err = streamPlain(ctx, cmd.OutOrStdout(), stream, saveQR)
	}
	if err != nil {
		return explain(err)
	}
	if number == "" {
		cmd.Println("Linking cancelled.")
		return nil
	}

	printSuccess(cmd.OutOrStdout(), "Linked as %s", number)
	groups, contacts, syncErr := syncDirectory(ctx, cfg, client)
	if syncErr != nil {
		logger.Warn().Ctx(ctx).Err(syncErr).Msg("directory refresh after link failed")
		printWarning(cmd.ErrOrStderr(), "Could not refresh contacts: %v", syncErr)
		return nil
	}
	printSuccess(cmd.OutOrStdout(), "%s", syncSummary(groups, contacts))
	return nil
}

func syncSummary(groups, contacts int) string {
	return fmt.Sprintf("Synced %s and %s",
		english.Plural(groups, "group", "groups"), english.Plural(contacts, "contact", "contacts"))
}

// streamPlain consumes a link stream with line output, for pipes and CI.
func streamPlain(
	ctx context.Context,
	w io.Writer,
	stream tui.StreamFunc,
	saveQR func(*api.QREvent) (string, error),
) (string, error) {
	var number string
	err := stream(ctx, api.HandlerFunc(func(ev api.ConnectionEvent) {
		switch ev := ev.(type) {
		case *api.QREvent:
			path, saveErr := saveQR(ev)
			if saveErr != nil {
				_, _ = fmt.Fprintf(w, "QR code: %s\n", ev.Code)
				return
			}
			_, _ = fmt.Fprintf(w, "Scan the QR code saved to %s\n", path)
		case *api.CodeEvent:
			_, _ = fmt.Fprintf(w, "Enter this code in WhatsApp > Linked devices: %s\n", ev.Code)
		case *api.SuccessEvent:
			number = ev.Number
		case *api.ErrorEvent:
			_, _ = fmt.Fprintf(w, "Link failed: %s\n", ev.Message)
		}
	}))
	return number, err
}

// writeDataURI decodes a base64 data URI such as "data:image/png;base64,..." to path.
func writeDataURI(path, uri string) error {
	header, payload, ok := strings.Cut(uri, ",")
	if !ok || !strings.HasPrefix(header, "data:") || !strings.HasSuffix(header, ";base64") {
		return errors.New("QR image is not a base64 data URI")
	}
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return fmt.Errorf("decoding QR image: %w", err)
	}
	if err = os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("creating QR directory: %w", err)
	}
	if err = os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("writing QR image: %w", err)
	}
	return nil
}

// NewWAUnlinkCmd creates the command that logs the WhatsApp account out.
func NewWAUnlinkCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "unlink",
		Short: "Unlink the WhatsApp account from the server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, client, err := clientFor()
			if err != nil {
				return err
			}
			if err = client.Unlink(cmd.Context()); err != nil {
				return explain(err)
			}
			printSuccess(cmd.OutOrStdout(), "WhatsApp unlinked")
			return nil
		},
	}
}

// NewWAGroupsCmd creates the command that lists joined groups.
func NewWAGroupsCmd() *cobra.Command {
	return newChatListCmd("groups", "List WhatsApp groups you can message", (*api.Client).Groups)
}

// NewWAContactsCmd creates the command that lists contacts.
func NewWAContactsCmd() *cobra.Command {
	return newChatListCmd("contacts", "List WhatsApp contacts", (*api.Client).Contacts)
}

func newChatListCmd(
	use, short string,
	fetch func(*api.Client, context.Context) ([]api.Chat, error),
) *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if output != outputTable && output != outputJSON {
				return fmt.Errorf("unknown output format %q (use table or json)", output)
			}
			_, client, err := clientFor()
			if err != nil {
				return err
			}
			chats, err := fetch(client, cmd.Context())
			if err != nil {
				return explain(err)
			}

			w := cmd.OutOrStdout()
			if output == outputJSON {
				if chats == nil {
					chats = []api.Chat{}
				}
				enc := json.NewEncoder(w)
				enc.SetIndent("", "  ")
				return enc.Encode(chats)
			}
			if len(chats) == 0 {
				_, _ = fmt.Fprintf(w, "No %s found.\n", use)
				return nil
			}
			table := uitable.New()
			table.MaxColWidth = listMessageWidth
			table.AddRow(headerColor.Sprint("NAME"), headerColor.Sprint("JID"))
			for _, c := range chats {
				table.AddRow(tui.SingleLine(tui.Sanitize(c.Name)), c.JID)
			}
			_, _ = fmt.Fprintln(w, table)
			return nil
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", outputTable, "output format: table or json")

	return cmd
}

// NewWASyncCmd creates the command that refreshes the local contact and group names.
func NewWASyncCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "sync",
		Short: "Refresh the local contact and group names shown in lists",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, client, err := clientFor()
			if err != nil {
				return err
			}
			groups, contacts, err := syncDirectory(cmd.Context(), cfg, client)
			if err != nil {
				return err
			}
			printSuccess(cmd.OutOrStdout(), "%s", syncSummary(groups, contacts))
			return nil
		},
	}
}

// syncDirectory fetches groups and contacts in parallel and replaces the stored labels.
//
//nolint:nonamedreturns // Named returns document the counts.
func syncDirectory(ctx context.Context, cfg *config.Config, client *api.Client) (groups, contacts int, err error) {
	store, err := openDirectory(ctx, cfg)
	if err != nil {
		return 0, 0, err
	}
	if store == nil {
		return 0, 0, errors.New("the label directory is disabled (directory.enabled: false)")
	}
	defer func() { _ = store.Close() }()

	var groupChats, contactChats []api.Chat
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var fetchErr error
		groupChats, fetchErr = client.Groups(gctx)
		return fetchErr
	})
	g.Go(func() error {
		var fetchErr error
		contactChats, fetchErr = client.Contacts(gctx)
		return fetchErr
	})
	if err = g.Wait(); err != nil {
		return 0, 0, explain(err)
	}

	if err = store.Replace(ctx, directory.KindGroup, toLabels(groupChats)); err != nil {
		return 0, 0, err
	}
	if err = store.Replace(ctx, directory.KindContact, toLabels(contactChats)); err != nil {
		return 0, 0, err
	}
	logger.Debug().Ctx(ctx).Int("groups", len(groupChats)).Int("contacts", len(contactChats)).Msg("directory synced")
	return len(groupChats), len(contactChats), nil
}

func toLabels(chats []api.Chat) []directory.Label {
	labels := make([]directory.Label, 0, len(chats))
	for _, c := range chats {
		if c.JID == "" {
			continue
		}
		labels = append(labels, directory.Label{JID: c.JID, Name: c.Name})
	}
	return labels
}
