package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// ProjectOverlayName is a per-directory overlay merged over the user config.
const ProjectOverlayName = ".reminderin.yaml"

// Top-level YAML config key names used for shallow merge.
const (
	keyServer    = "server"
	keyList      = "list"
	keyCache     = "cache"
	keyDirectory = "directory"
	keyLogging   = "logging"
	keyToast     = "toast"
)

// ShallowMergeYAML loads a YAML file and merges its sections onto the target
// Config. Fields present in the overlay override the target, absent fields
// and sections are left unchanged. Unknown keys are ignored. The target is
// only modified if the merged result validates.
func ShallowMergeYAML(target *Config, overlayPath string) error {
	if target == nil {
		return errors.New("nil target *Config in ShallowMergeYAML")
	}

	data, err := os.ReadFile(overlayPath)
	if err != nil {
		return fmt.Errorf("reading overlay file %s: %w", overlayPath, err)
	}

	var overlay map[string]yaml.Node
	if err = yaml.Unmarshal(data, &overlay); err != nil {
		return fmt.Errorf("parsing overlay YAML from %s: %w", overlayPath, err)
	}

	// Empty or comment-only file: nothing to merge.
	if len(overlay) == 0 {
		return nil
	}

	merged := *target
	for key, node := range overlay {
		if err = unmarshalSection(&merged, key, &node); err != nil {
			return fmt.Errorf("applying overlay section %q: %w", key, err)
		}
	}
	if err = merged.Validate(); err != nil {
		return fmt.Errorf("overlay %s: %w", overlayPath, err)
	}
	*target = merged
	return nil
}

// unmarshalSection decodes node over a copy of the section named key.
func unmarshalSection(target *Config, key string, node *yaml.Node) error {
	switch key {
	case keyServer:
		v := target.Server
		if err := node.Decode(&v); err != nil {
			return err
		}
		target.Server = v
	case keyList:
		v := target.List
		if err := node.Decode(&v); err != nil {
			return err
		}
		target.List = v
	case keyCache:
		v := target.Cache
		if err := node.Decode(&v); err != nil {
			return err
		}
		target.Cache = v
	case keyDirectory:
		v := target.Directory
		if err := node.Decode(&v); err != nil {
			return err
		}
		target.Directory = v
	case keyLogging:
		v := target.Logging
		if err := node.Decode(&v); err != nil {
			return err
		}
		target.Logging = v
	case keyToast:
		v := target.Toast
		if err := node.Decode(&v); err != nil {
			return err
		}
		target.Toast = v
	}
	return nil
}
