package config

import (
	"fmt"
	"strconv"
	"strings"
)

// CurrentSchemaVersion is the current configuration schema version
const CurrentSchemaVersion = "1.0"

// ValidateVersion checks that a configuration version is well formed and not newer than this build
func ValidateVersion(version string) error {
	if version == "" {
		return fmt.Errorf("configuration version is required")
	}

	major, minor, err := parseVersion(version)
	if err != nil {
		return fmt.Errorf("invalid version format: %w", err)
	}

	currentMajor, currentMinor, _ := parseVersion(CurrentSchemaVersion)
	if major > currentMajor || (major == currentMajor && minor > currentMinor) {
		return fmt.Errorf("configuration version %s is newer than supported version %s", version, CurrentSchemaVersion)
	}

	return nil
}

// parseVersion parses a version string into major and minor components
func parseVersion(version string) (int, int, error) {
	parts := strings.Split(version, ".")
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("version must be in format X.Y")
	}

	major, err := strconv.Atoi(parts[0])
	if err != nil {
		return 0, 0, fmt.Errorf("invalid major version: %w", err)
	}

	minor, err := strconv.Atoi(parts[1])
	if err != nil {
		return 0, 0, fmt.Errorf("invalid minor version: %w", err)
	}

	return major, minor, nil
}
