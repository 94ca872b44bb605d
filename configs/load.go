package configs

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// LoadServerConfigFile reads and strictly decodes the YAML config at path.
// Unknown keys are rejected.
func LoadServerConfigFile(path string) (*ServerConfigFile, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open config file: %w", err)
	}
	defer func() { _ = f.Close() }()
	var cfg ServerConfigFile
	decoder := yaml.NewDecoder(f)
	decoder.KnownFields(true)
	if err := decoder.Decode(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return &cfg, nil
}
