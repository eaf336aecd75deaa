package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Load loads the run configuration.
// Search order: customPath -> ~/.trento/config.yaml -> ./trento.yaml -> embedded default
func Load(customPath string) (RunSpec, error) {
	var spec RunSpec

	// Try custom path first
	if customPath != "" {
		data, err := os.ReadFile(customPath)
		if err != nil {
			return spec, fmt.Errorf("failed to read config %s: %w", customPath, err)
		}
		if err := yaml.Unmarshal(data, &spec); err != nil {
			return spec, fmt.Errorf("failed to parse config %s: %w", customPath, err)
		}
		return spec, nil
	}

	// Try user config directory
	if userCfgPath := userConfigPath("config.yaml"); userCfgPath != "" {
		if data, err := os.ReadFile(userCfgPath); err == nil {
			if err := yaml.Unmarshal(data, &spec); err == nil {
				return spec, nil
			}
		}
	}

	// Try local config file
	if data, err := os.ReadFile("trento.yaml"); err == nil {
		if err := yaml.Unmarshal(data, &spec); err == nil {
			return spec, nil
		}
	}

	// Use embedded default YAML
	if err := yaml.Unmarshal(defaultRunYAML, &spec); err != nil {
		return DefaultRunSpec(), nil // Fallback to hardcoded if embed fails
	}
	return spec, nil
}

// userConfigPath returns the path to a user config file, or empty if home
// is unavailable.
func userConfigPath(filename string) string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".trento", filename)
}
