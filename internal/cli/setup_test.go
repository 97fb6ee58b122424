package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rshade/reminderin/internal/config"
	"github.com/rshade/reminderin/pkg/version"
)

// newTestSetupCmd creates a testable setup command with captured output.
// It returns the command and a buffer that receives all output.
func newTestSetupCmd() (*cobra.Command, *bytes.Buffer) {
	buf := &bytes.Buffer{}
	cmd := NewSetupCmd()
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetIn(strings.NewReader(""))
	cmd.SilenceUsage = true
	cmd.SilenceErrors = true
	return cmd, buf
}

// useTempHome points REMINDERIN_HOME at a fresh directory and resets the global config.
func useTempHome(t *testing.T) string {
	t.Helper()
	tmpDir := t.TempDir()
	t.Setenv(config.EnvHome, tmpDir)
	config.ResetGlobalConfigForTest()
	t.Cleanup(config.ResetGlobalConfigForTest)
	return tmpDir
}

// runTestSetup executes the offline setup command in a temporary home and returns its output.
func runTestSetup(t *testing.T, flags ...string) (string, error) {
	t.Helper()
	useTempHome(t)

	cmd, buf := newTestSetupCmd()
	cmd.SetArgs(append([]string{"--non-interactive", "--offline"}, flags...))

	err := cmd.Execute()
	return buf.String(), err
}

// TestFormatStatus verifies TTY and non-TTY status markers.
func TestFormatStatus(t *testing.T) {
	tests := []struct {
		name           string
		status         StepStatus
		nonInteractive bool
		expected       string
	}{
		{"success_tty", StepSuccess, false, "✓"},
		{"warning_tty", StepWarning, false, "!"},
		{"skipped_tty", StepSkipped, false, "-"},
		{"error_tty", StepError, false, "✗"},
		{"success_non_interactive", StepSuccess, true, "[OK]"},
		{"warning_non_interactive", StepWarning, true, "[WARN]"},
		{"skipped_non_interactive", StepSkipped, true, "[SKIP]"},
		{"error_non_interactive", StepError, true, "[ERR]"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Contains(t, formatStatus(tt.status, tt.nonInteractive), tt.expected)
		})
	}
}

func TestStepDisplayVersion(t *testing.T) {
	step := stepDisplayVersion()

	assert.Equal(t, StepSuccess, step.Status)
	assert.Contains(t, step.Message, version.GetVersion())
	assert.Contains(t, step.Message, runtime.Version())
}

func TestStepCreateDirectories(t *testing.T) {
	tmpDir := filepath.Join(useTempHome(t), "fresh")
	t.Setenv(config.EnvHome, tmpDir)

	steps := stepCreateDirectories()
	require.Len(t, steps, 3)
	for _, s := range steps {
		assert.Equal(t, StepSuccess, s.Status)
		assert.Contains(t, s.Message, "Created")
	}

	assert.DirExists(t, filepath.Join(tmpDir, "cache"))
	assert.DirExists(t, filepath.Join(tmpDir, "logs"))
}

func TestStepCreateDirectories_AlreadyExist(t *testing.T) {
	tmpDir := useTempHome(t)
	require.NoError(t, os.MkdirAll(filepath.Join(tmpDir, "cache"), 0o700))
	require.NoError(t, os.MkdirAll(filepath.Join(tmpDir, "logs"), 0o700))

	steps := stepCreateDirectories()
	require.Len(t, steps, 3)
	for _, s := range steps {
		assert.Equal(t, StepSuccess, s.Status)
		assert.Contains(t, s.Message, "Directory exists")
	}
}

func TestStepInitConfig(t *testing.T) {
	tmpDir := useTempHome(t)

	step := stepInitConfig()
	assert.Equal(t, StepSuccess, step.Status)
	assert.Contains(t, step.Message, "Initialized config")

	cfg, err := config.Load(filepath.Join(tmpDir, "config.yaml"))
	require.NoError(t, err)
	assert.Equal(t, config.New().Server.URL, cfg.Server.URL)
}

func TestStepInitConfig_AlreadyExists(t *testing.T) {
	tmpDir := useTempHome(t)
	cfgPath := filepath.Join(tmpDir, "config.yaml")
	existing := []byte("server:\n  url: https://reminders.example.com\n")
	require.NoError(t, os.WriteFile(cfgPath, existing, 0o600))

	step := stepInitConfig()
	assert.Equal(t, StepSuccess, step.Status)
	assert.Contains(t, step.Message, "Config already exists")

	data, err := os.ReadFile(cfgPath)
	require.NoError(t, err)
	assert.Equal(t, existing, data, "existing config must not be rewritten")
}

func TestStepOpenDirectory(t *testing.T) {
	tmpDir := useTempHome(t)

	step := stepOpenDirectory(t.Context())
	assert.Equal(t, StepSuccess, step.Status)
	assert.Contains(t, step.Message, "0 names")
	assert.FileExists(t, filepath.Join(tmpDir, "directory.db"))
}

func TestStepOpenDirectory_Disabled(t *testing.T) {
	useTempHome(t)
	cfg := config.New()
	cfg.Directory.Enabled = false
	config.SetGlobalConfigForTest(cfg)

	step := stepOpenDirectory(t.Context())
	assert.Equal(t, StepSkipped, step.Status)
}

func TestStepCheckServer_Unreachable(t *testing.T) {
	useTempHome(t)
	cfg := config.New()
	require.NoError(t, cfg.Set("server.url", "http://127.0.0.1:1"))
	config.SetGlobalConfigForTest(cfg)

	steps := stepCheckServer(t.Context())
	require.Len(t, steps, 1)
	assert.Equal(t, StepWarning, steps[0].Status)
	assert.Contains(t, steps[0].Message, "Cannot reach")
}

func TestSetupIdempotency(t *testing.T) {
	tmpDir := useTempHome(t)

	for range 2 {
		config.ResetGlobalConfigForTest()
		cmd, buf := newTestSetupCmd()
		cmd.SetArgs([]string{"--non-interactive", "--offline"})
		require.NoError(t, cmd.Execute())
		assert.Contains(t, buf.String(), "Setup complete!")
	}

	assert.FileExists(t, filepath.Join(tmpDir, "config.yaml"))
}

func TestSetupNonInteractive(t *testing.T) {
	output, err := runTestSetup(t)
	require.NoError(t, err)

	assert.NotContains(t, output, "✓")
	assert.Contains(t, output, "[OK]")
	assert.Contains(t, output, "[SKIP] Skipped server checks")
}

func TestSetupReminderinHome(t *testing.T) {
	tmpDir := useTempHome(t)
	custom := filepath.Join(tmpDir, "nested", "home")
	t.Setenv(config.EnvHome, custom)

	cmd, buf := newTestSetupCmd()
	cmd.SetArgs([]string{"--non-interactive", "--offline"})
	require.NoError(t, cmd.Execute())

	assert.Contains(t, buf.String(), custom)
	assert.FileExists(t, filepath.Join(custom, "config.yaml"))
}
