package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/rshade/reminderin/internal/cli/pagination"
	"github.com/rshade/reminderin/internal/engine/cache"
)

// Defaults for a fresh configuration.
const (
	DefaultServerURL      = "http://localhost:8080"
	DefaultTimeout        = 30 * time.Second
	DefaultMutationRate   = 5.0
	DefaultSearchDebounce = 300 * time.Millisecond
	DefaultToastDuration  = 3 * time.Second
	DefaultCacheTTL       = cache.DefaultTTLSeconds
	configFileName        = "config.yaml"
)

// Errors returned by Get, Set and Validate.
var (
	ErrUnknownKey   = errors.New("unknown configuration key")
	ErrInvalidValue = errors.New("invalid configuration value")
)

// Config is the reminderin configuration file.
type Config struct {
	ConfigVersion string          `yaml:"config_version"`
	Server        ServerConfig    `yaml:"server"`
	List          ListConfig      `yaml:"list"`
	Cache         CacheConfig     `yaml:"cache"`
	Directory     DirectoryConfig `yaml:"directory"`
	Logging       LoggingConfig   `yaml:"logging"`
	Toast         ToastConfig     `yaml:"toast"`

	configPath string
}

// ServerConfig points the client at the scheduling service.
type ServerConfig struct {
	URL          string        `yaml:"url"`
	Timeout      time.Duration `yaml:"timeout"`
	MutationRate float64       `yaml:"mutation_rate"`
}

// ListConfig holds the initial list query settings.
type ListConfig struct {
	PageSize       int           `yaml:"page_size"`
	Sort           string        `yaml:"sort"`
	SearchDebounce time.Duration `yaml:"search_debounce"`
}

// CacheConfig controls the first-page snapshot cache.
type CacheConfig struct {
	Enabled    bool   `yaml:"enabled"`
	TTLSeconds int    `yaml:"ttl_seconds"`
	Directory  string `yaml:"directory,omitempty"`
}

// DirectoryConfig controls the local contact and group label store.
type DirectoryConfig struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path,omitempty"`
}

// LoggingConfig controls log output.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	File   string `yaml:"file,omitempty"`
}

// ToastConfig controls transient notifications in the interactive view.
type ToastConfig struct {
	Duration time.Duration `yaml:"duration"`
}

// New returns a configuration populated with defaults.
func New() *Config {
	return &Config{
		ConfigVersion: CurrentConfigVersion,
		Server: ServerConfig{
			URL:          DefaultServerURL,
			Timeout:      DefaultTimeout,
			MutationRate: DefaultMutationRate,
		},
		List: ListConfig{
			PageSize:       pagination.DefaultPageSize,
			SearchDebounce: DefaultSearchDebounce,
		},
		Cache:     CacheConfig{Enabled: true, TTLSeconds: DefaultCacheTTL},
		Directory: DirectoryConfig{Enabled: true},
		Logging:   LoggingConfig{Level: "info", Format: "console"},
		Toast:     ToastConfig{Duration: DefaultToastDuration},
	}
}

// Load reads path over the defaults. A missing file is not an error.
func Load(path string) (*Config, error) {
	cfg := New()
	cfg.configPath = path

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}
	if err = yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}
	if err = cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// Save writes the configuration atomically to its path.
func (c *Config) Save() error {
	if c.configPath == "" {
		path, err := DefaultConfigPath()
		if err != nil {
			return err
		}
		c.configPath = path
	}
	if err := os.MkdirAll(filepath.Dir(c.configPath), 0o700); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}

	tmp := c.configPath + ".tmp"
	if err = os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	if err = os.Rename(tmp, c.configPath); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("replacing config: %w", err)
	}
	return nil
}

// Path returns the file the configuration was loaded from or will be saved to.
func (c *Config) Path() string {
	return c.configPath
}

// SetPath overrides the file used by Save.
func (c *Config) SetPath(path string) {
	c.configPath = path
}

// Validate checks value ranges and the config schema version.
func (c *Config) Validate() error {
	if err := CheckConfigVersion(c.ConfigVersion); err != nil {
		return err
	}
	if strings.TrimSpace(c.Server.URL) == "" {
		return fmt.Errorf("%w: server.url is empty", ErrInvalidValue)
	}
	if c.Server.Timeout < 0 {
		return fmt.Errorf("%w: server.timeout must be >= 0", ErrInvalidValue)
	}
	if c.Server.MutationRate <= 0 {
		return fmt.Errorf("%w: server.mutation_rate must be > 0", ErrInvalidValue)
	}
	if err := pagination.ValidatePageSize(c.List.PageSize); err != nil {
		return fmt.Errorf("list.page_size: %w", err)
	}
	if _, _, err := pagination.ParseSort(c.List.Sort); err != nil {
		return fmt.Errorf("list.sort: %w", err)
	}
	if c.List.SearchDebounce < 0 {
		return fmt.Errorf("%w: list.search_debounce must be >= 0", ErrInvalidValue)
	}
	if c.Cache.Enabled {
		if err := cache.ValidateTTL(c.Cache.TTLSeconds); err != nil {
			return fmt.Errorf("cache.ttl_seconds: %w", err)
		}
	}
	return nil
}

// configField reads and writes one dotted key.
type configField struct {
	get func(c *Config) string
	set func(c *Config, v string) error
}

//nolint:gochecknoglobals // Static key table.
var configFields = map[string]configField{
	"config_version": {
		get: func(c *Config) string { return c.ConfigVersion },
		set: func(c *Config, v string) error { c.ConfigVersion = v; return nil },
	},
	"server.url": {
		get: func(c *Config) string { return c.Server.URL },
		set: func(c *Config, v string) error { c.Server.URL = strings.TrimRight(v, "/"); return nil },
	},
	"server.timeout": {
		get: func(c *Config) string { return c.Server.Timeout.String() },
		set: func(c *Config, v string) error { return setDuration(&c.Server.Timeout, v) },
	},
	"server.mutation_rate": {
		get: func(c *Config) string { return strconv.FormatFloat(c.Server.MutationRate, 'g', -1, 64) },
		set: func(c *Config, v string) error {
			f, err := strconv.ParseFloat(v, 64)
			if err != nil {
				return fmt.Errorf("%w: %q is not a number", ErrInvalidValue, v)
			}
			c.Server.MutationRate = f
			return nil
		},
	},
	"list.page_size": {
		get: func(c *Config) string { return strconv.Itoa(c.List.PageSize) },
		set: func(c *Config, v string) error { return setInt(&c.List.PageSize, v) },
	},
	"list.sort": {
		get: func(c *Config) string { return c.List.Sort },
		set: func(c *Config, v string) error { c.List.Sort = v; return nil },
	},
	"list.search_debounce": {
		get: func(c *Config) string { return c.List.SearchDebounce.String() },
		set: func(c *Config, v string) error { return setDuration(&c.List.SearchDebounce, v) },
	},
	"cache.enabled": {
		get: func(c *Config) string { return strconv.FormatBool(c.Cache.Enabled) },
		set: func(c *Config, v string) error { return setBool(&c.Cache.Enabled, v) },
	},
	"cache.ttl_seconds": {
		get: func(c *Config) string { return strconv.Itoa(c.Cache.TTLSeconds) },
		set: func(c *Config, v string) error {
			secs, err := cache.ParseTTL(v)
			if err != nil {
				return fmt.Errorf("%w: %w", ErrInvalidValue, err)
			}
			c.Cache.TTLSeconds = secs
			return nil
		},
	},
	"cache.directory": {
		get: func(c *Config) string { return c.Cache.Directory },
		set: func(c *Config, v string) error { c.Cache.Directory = v; return nil },
	},
	"directory.enabled": {
		get: func(c *Config) string { return strconv.FormatBool(c.Directory.Enabled) },
		set: func(c *Config, v string) error { return setBool(&c.Directory.Enabled, v) },
	},
	"directory.path": {
		get: func(c *Config) string { return c.Directory.Path },
		set: func(c *Config, v string) error { c.Directory.Path = v; return nil },
	},
	"logging.level": {
		get: func(c *Config) string { return c.Logging.Level },
		set: func(c *Config, v string) error { c.Logging.Level = v; return nil },
	},
	"logging.format": {
		get: func(c *Config) string { return c.Logging.Format },
		set: func(c *Config, v string) error { c.Logging.Format = v; return nil },
	},
	"logging.file": {
		get: func(c *Config) string { return c.Logging.File },
		set: func(c *Config, v string) error { c.Logging.File = v; return nil },
	},
	"toast.duration": {
		get: func(c *Config) string { return c.Toast.Duration.String() },
		set: func(c *Config, v string) error { return setDuration(&c.Toast.Duration, v) },
	},
}

// Keys returns every settable dotted key, sorted.
func Keys() []string {
	keys := make([]string, 0, len(configFields))
	for k := range configFields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Get returns the string form of a dotted key such as "list.page_size".
func (c *Config) Get(key string) (string, error) {
	f, ok := configFields[key]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrUnknownKey, key)
	}
	return f.get(c), nil
}

// Set assigns a dotted key and re-validates the whole configuration. On a
// validation error the previous value is restored.
func (c *Config) Set(key, value string) error {
	f, ok := configFields[key]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownKey, key)
	}
	prev := f.get(c)
	if err := f.set(c, value); err != nil {
		return err
	}
	if err := c.Validate(); err != nil {
		_ = f.set(c, prev)
		return err
	}
	return nil
}

func setInt(dst *int, v string) error {
	n, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil {
		return fmt.Errorf("%w: %q is not an integer", ErrInvalidValue, v)
	}
	*dst = n
	return nil
}

func setBool(dst *bool, v string) error {
	b, err := strconv.ParseBool(strings.TrimSpace(v))
	if err != nil {
		return fmt.Errorf("%w: %q is not a boolean", ErrInvalidValue, v)
	}
	*dst = b
	return nil
}

func setDuration(dst *time.Duration, v string) error {
	d, err := time.ParseDuration(strings.TrimSpace(v))
	if err != nil {
		return fmt.Errorf("%w: %q is not a duration", ErrInvalidValue, v)
	}
	*dst = d
	return nil
}
