package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_Defaults(t *testing.T) {
	cfg := New()

	require.NoError(t, cfg.Validate())
	assert.Equal(t, CurrentConfigVersion, cfg.ConfigVersion)
	assert.Equal(t, 20, cfg.List.PageSize)
	assert.Equal(t, 300*time.Millisecond, cfg.List.SearchDebounce)
	assert.Equal(t, 3*time.Second, cfg.Toast.Duration)
	assert.True(t, cfg.Cache.Enabled)
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, DefaultServerURL, cfg.Server.URL)
	assert.Equal(t, path, cfg.Path())
}

func TestLoad_PartialFileKeepsOtherDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
server:
  url: https://reminders.example.com
  timeout: 5s
list:
  page_size: 50
  sort: time:desc
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "https://reminders.example.com", cfg.Server.URL)
	assert.Equal(t, 5*time.Second, cfg.Server.Timeout)
	assert.Equal(t, DefaultMutationRate, cfg.Server.MutationRate)
	assert.Equal(t, 50, cfg.List.PageSize)
	assert.Equal(t, "time:desc", cfg.List.Sort)
	assert.Equal(t, DefaultSearchDebounce, cfg.List.SearchDebounce)
}

func TestLoad_RejectsInvalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
		errMsg  string
	}{
		{"page size", "list:\n  page_size: 500\n", "list.page_size"},
		{"sort", "list:\n  sort: cost\n", "list.sort"},
		{"version", "config_version: 2.1.0\n", "unsupported config_version"},
		{"yaml", "server: [\n", "parsing config"},
		{"cache ttl", "cache:\n  ttl_seconds: 5\n", "cache.ttl_seconds"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "config.yaml")
			require.NoError(t, os.WriteFile(path, []byte(tt.content), 0o600))

			_, err := Load(path)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}
}

func TestSave_ThenLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")
	cfg := New()
	cfg.SetPath(path)
	require.NoError(t, cfg.Set("list.page_size", "50"))
	require.NoError(t, cfg.Set("toast.duration", "5s"))
	require.NoError(t, cfg.Save())

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 50, loaded.List.PageSize)
	assert.Equal(t, 5*time.Second, loaded.Toast.Duration)
}

func TestGetSet(t *testing.T) {
	cfg := New()

	require.NoError(t, cfg.Set("server.url", "https://example.com/"))
	got, err := cfg.Get("server.url")
	require.NoError(t, err)
	assert.Equal(t, "https://example.com", got)

	require.NoError(t, cfg.Set("cache.ttl_seconds", "2h"))
	assert.Equal(t, 7200, cfg.Cache.TTLSeconds)
	require.ErrorIs(t, cfg.Set("cache.ttl_seconds", "10"), ErrInvalidValue)

	require.NoError(t, cfg.Set("cache.enabled", "false"))
	assert.False(t, cfg.Cache.Enabled)

	_, err = cfg.Get("notifications.email")
	require.ErrorIs(t, err, ErrUnknownKey)

	err = cfg.Set("list.page_size", "abc")
	require.ErrorIs(t, err, ErrInvalidValue)

	// Out of range: rejected and rolled back.
	err = cfg.Set("list.page_size", "0")
	require.Error(t, err)
	assert.Equal(t, 20, cfg.List.PageSize)
}

func TestKeys_Sorted(t *testing.T) {
	keys := Keys()
	require.NotEmpty(t, keys)
	assert.IsNonDecreasing(t, keys)
	assert.Contains(t, keys, "list.page_size")
	for _, k := range keys {
		_, err := New().Get(k)
		assert.NoError(t, err, k)
	}
}

func TestCheckConfigVersion(t *testing.T) {
	assert.NoError(t, CheckConfigVersion(""))
	assert.NoError(t, CheckConfigVersion("1.0.0"))
	assert.NoError(t, CheckConfigVersion("1.4.2"))
	assert.ErrorIs(t, CheckConfigVersion("2.0.0"), ErrUnsupportedConfigVersion)
	assert.ErrorIs(t, CheckConfigVersion("0.9.0"), ErrUnsupportedConfigVersion)
	assert.ErrorIs(t, CheckConfigVersion("one"), ErrUnsupportedConfigVersion)
}
