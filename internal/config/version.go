package config

import (
	"errors"
	"fmt"

	"github.com/Masterminds/semver/v3"
)

// CurrentConfigVersion is written into new configuration files.
const CurrentConfigVersion = "1.0.0"

// supportedConfigVersions is the range of config_version values this build reads.
const supportedConfigVersions = "^1.0.0"

// ErrUnsupportedConfigVersion is returned for config files written by an incompatible release.
var ErrUnsupportedConfigVersion = errors.New("unsupported config_version")

// CheckConfigVersion accepts an empty version (pre-versioned file) or any
// version inside supportedConfigVersions.
func CheckConfigVersion(v string) error {
	if v == "" {
		return nil
	}
	ver, err := semver.NewVersion(v)
	if err != nil {
		return fmt.Errorf("%w: %q is not a semantic version", ErrUnsupportedConfigVersion, v)
	}
	constraint, err := semver.NewConstraint(supportedConfigVersions)
	if err != nil {
		return fmt.Errorf("parsing version constraint: %w", err)
	}
	if !constraint.Check(ver) {
		return fmt.Errorf("%w: %s (supported %s)", ErrUnsupportedConfigVersion, v, supportedConfigVersions)
	}
	return nil
}
