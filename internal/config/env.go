package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/joho/godotenv"
)

// Environment variables read on top of the configuration file.
const (
	EnvServer   = "REMINDERIN_SERVER"
	EnvPageSize = "REMINDERIN_PAGE_SIZE"
	EnvLogLevel = "REMINDERIN_LOG_LEVEL"
	EnvUsername = "REMINDERIN_USERNAME"
	EnvPassword = "REMINDERIN_PASSWORD"
)

// dotEnvFile is loaded from the working directory when present.
const dotEnvFile = ".env"

// LoadDotEnv loads .env from the working directory without overriding
// variables that are already set. A missing file is not an error.
func LoadDotEnv() error {
	if _, err := os.Stat(dotEnvFile); errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err := godotenv.Load(dotEnvFile); err != nil {
		return fmt.Errorf("loading %s: %w", dotEnvFile, err)
	}
	return nil
}

// ApplyEnv applies REMINDERIN_* overrides through Set, so they are validated
// like any other value.
func ApplyEnv(cfg *Config, lookupEnv func(string) (string, bool)) error {
	overrides := []struct {
		env string
		key string
	}{
		{EnvServer, "server.url"},
		{EnvPageSize, "list.page_size"},
		{EnvLogLevel, "logging.level"},
	}

	var errs []error
	for _, o := range overrides {
		v, ok := lookupEnv(o.env)
		if !ok || v == "" {
			continue
		}
		if err := cfg.Set(o.key, v); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", o.env, err))
		}
	}
	return errors.Join(errs...)
}

// Credentials returns the login credentials from the environment, if set.
//
//nolint:nonamedreturns // Named returns document the pair.
func Credentials(lookupEnv func(string) (string, bool)) (username, password string) {
	username, _ = lookupEnv(EnvUsername)
	password, _ = lookupEnv(EnvPassword)
	return username, password
}
