package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// LoadOverrideFile reads a `.perl-ls.yaml` override for headless/CLI use,
// when no editor is present to answer workspace/configuration. A missing
// file is not an error — the caller gets Default() settings.
func LoadOverrideFile(path string) (Settings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Default(), nil
		}
		return Settings{}, fmt.Errorf("read settings override %q: %w", path, err)
	}

	var override Settings
	if err := yaml.Unmarshal(data, &override); err != nil {
		return Settings{}, fmt.Errorf("parse settings override %q: %w", path, err)
	}
	return Merge(override), nil
}
