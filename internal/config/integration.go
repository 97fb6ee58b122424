package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/mitchellh/go-homedir"
)

// EnvHome overrides the configuration directory.
const EnvHome = "REMINDERIN_HOME"

// GlobalConfig holds the global configuration instance.
var GlobalConfig *Config        //nolint:gochecknoglobals // Singleton pattern for configuration
var globalConfigMu sync.RWMutex //nolint:gochecknoglobals // Protects globalConfigInit flag
var globalConfigInit bool       //nolint:gochecknoglobals // Tracks if global config has been initialized

// InitGlobalConfig loads the global configuration: defaults, then the user
// config file, then the nearest .reminderin.yaml overlay, then .env and
// REMINDERIN_* environment variables. Load failures are logged and leave the
// defaults in place.
func InitGlobalConfig() {
	globalConfigMu.Lock()
	defer globalConfigMu.Unlock()

	if globalConfigInit {
		return
	}

	path, err := DefaultConfigPath()
	if err != nil {
		log := GetLogger()
		log.Warn().Str("component", "config").Err(err).Msg("no config directory")
	}
	GlobalConfig = loadLayered(path)
	globalConfigInit = true
}

// InitGlobalConfigFrom loads the global configuration from an explicit file,
// replacing anything loaded before. Unlike InitGlobalConfig, an unreadable or
// invalid file is an error.
func InitGlobalConfigFrom(path string) error {
	if _, err := Load(path); err != nil {
		return err
	}

	globalConfigMu.Lock()
	defer globalConfigMu.Unlock()
	GlobalConfig = loadLayered(path)
	globalConfigInit = true
	return nil
}

func loadLayered(path string) *Config {
	log := GetLogger()

	cfg := New()
	if path != "" {
		loaded, loadErr := Load(path)
		if loadErr != nil {
			log.Warn().Str("component", "config").Err(loadErr).Msg("using default configuration")
			cfg.SetPath(path)
		} else {
			cfg = loaded
		}
	}

	if overlay, err := FindProjectOverlay(".", os.LookupEnv); err == nil {
		if mergeErr := ShallowMergeYAML(cfg, overlay); mergeErr != nil {
			log.Warn().Str("component", "config").Err(mergeErr).Str("overlay", overlay).Msg("ignoring project overlay")
		}
	} else if !errors.Is(err, ErrNoOverlay) {
		log.Debug().Str("component", "config").Err(err).Msg("project overlay lookup failed")
	}

	if err := LoadDotEnv(); err != nil {
		log.Debug().Str("component", "config").Err(err).Msg("no .env loaded")
	}
	if err := ApplyEnv(cfg, os.LookupEnv); err != nil {
		log.Warn().Str("component", "config").Err(err).Msg("ignoring invalid environment override")
	}
	return cfg
}

// ResetGlobalConfigForTest resets the global config for testing purposes.
func ResetGlobalConfigForTest() {
	globalConfigMu.Lock()
	defer globalConfigMu.Unlock()

	GlobalConfig = nil
	globalConfigInit = false
}

// SetGlobalConfigForTest installs cfg as the global configuration.
func SetGlobalConfigForTest(cfg *Config) {
	globalConfigMu.Lock()
	defer globalConfigMu.Unlock()

	GlobalConfig = cfg
	globalConfigInit = true
}

// GetGlobalConfig returns the global configuration, initializing it if needed.
func GetGlobalConfig() *Config {
	InitGlobalConfig()
	globalConfigMu.RLock()
	defer globalConfigMu.RUnlock()
	return GlobalConfig
}

// GetConfigDir returns the reminderin configuration directory:
// $REMINDERIN_HOME, or ~/.reminderin.
func GetConfigDir() (string, error) {
	if home := os.Getenv(EnvHome); home != "" {
		return home, nil
	}

	homeDir, err := homedir.Dir()
	if err != nil {
		return "", fmt.Errorf("failed to get user home directory: %w", err)
	}
	return filepath.Join(homeDir, ".reminderin"), nil
}

// EnsureConfigDir ensures the configuration directory exists.
func EnsureConfigDir() error {
	dir, err := GetConfigDir()
	if err != nil {
		return err
	}
	return os.MkdirAll(dir, 0o700)
}

// EnsureLogDir ensures the directory for the configured log file exists.
// If no log file is configured, it does nothing.
func EnsureLogDir() error {
	cfg := GetGlobalConfig()
	if cfg.Logging.File == "" {
		return nil
	}
	logDir := filepath.Dir(cfg.Logging.File)
	if err := os.MkdirAll(logDir, 0o700); err != nil {
		return fmt.Errorf("failed to create log directory %q: %w", logDir, err)
	}
	return nil
}

func inConfigDir(parts ...string) (string, error) {
	dir, err := GetConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(append([]string{dir}, parts...)...), nil
}

// DefaultConfigPath returns <config dir>/config.yaml.
func DefaultConfigPath() (string, error) {
	return inConfigDir(configFileName)
}

// SessionPath returns the file holding the persisted login session.
func SessionPath() (string, error) {
	return inConfigDir("session.json")
}

// DefaultLogPath returns the log file used while the interactive view owns the terminal.
func DefaultLogPath() (string, error) {
	return inConfigDir("logs", "reminderin.log")
}

// CacheDir returns the snapshot cache directory, honoring cache.directory.
func (c *Config) CacheDir() (string, error) {
	if c.Cache.Directory != "" {
		return homedir.Expand(c.Cache.Directory)
	}
	return inConfigDir("cache")
}

// DirectoryPath returns the label database path, honoring directory.path.
func (c *Config) DirectoryPath() (string, error) {
	if c.Directory.Path != "" {
		return homedir.Expand(c.Directory.Path)
	}
	return inConfigDir("directory.db")
}
