package policy

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// LoadPolicy reads and parses the policy file at path.
func LoadPolicy(path string) (*PolicyConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read policy file: %w", err)
	}
	return ParsePolicy(data)
}

// ParsePolicy parses policy YAML. Only version 1 is accepted.
func ParsePolicy(data []byte) (*PolicyConfig, error) {
	var cfg PolicyConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse policy yaml: %w", err)
	}

	if cfg.Version != 1 {
		return nil, fmt.Errorf("unsupported policy version %d", cfg.Version)
	}

	if cfg.Providers == nil {
		cfg.Providers = map[string]ProviderConfig{}
	}
	if cfg.Rules == nil {
		cfg.Rules = map[string]RuleConfig{}
	}

	return &cfg, nil
}
