package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// LoadGlobal reads the global environment configuration layer from a YAML
// file at path (spec.md §4.14's "global environment" layer — operator-wide
// defaults that sit above the built-in defaults but below any session's own
// config). A missing file is not an error: it means the global layer is
// empty and Defaults() alone applies.
func LoadGlobal(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Config{}, nil
		}
		return Config{}, fmt.Errorf("read global config %s: %w", path, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse global config %s: %w", path, err)
	}
	return cfg, nil
}
