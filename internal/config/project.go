package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// EnvProjectDir names the directory whose overlay is used, skipping the walk-up.
const EnvProjectDir = "REMINDERIN_PROJECT_DIR"

// ErrNoOverlay is returned by FindProjectOverlay when no overlay file exists.
var ErrNoOverlay = errors.New("no " + ProjectOverlayName + " found")

// FindProjectOverlay locates the per-directory overlay. It checks (in order):
//  1. REMINDERIN_PROJECT_DIR
//  2. dir and each of its parents up to the filesystem root
//
// Returns the absolute path of the overlay file.
func FindProjectOverlay(dir string, lookupEnv func(string) (string, bool)) (string, error) {
	if envDir, ok := lookupEnv(EnvProjectDir); ok && envDir != "" {
		abs, err := filepath.Abs(envDir)
		if err != nil {
			return "", fmt.Errorf("resolving %s: %w", EnvProjectDir, err)
		}
		candidate := filepath.Join(abs, ProjectOverlayName)
		if _, err = os.Stat(candidate); err != nil {
			return "", ErrNoOverlay
		}
		return candidate, nil
	}

	current, err := filepath.Abs(dir)
	if err != nil {
		return "", fmt.Errorf("resolving absolute path: %w", err)
	}
	for {
		candidate := filepath.Join(current, ProjectOverlayName)
		if info, statErr := os.Stat(candidate); statErr == nil && !info.IsDir() {
			return candidate, nil
		}

		parent := filepath.Dir(current)
		if parent == current {
			return "", ErrNoOverlay
		}
		current = parent
	}
}
