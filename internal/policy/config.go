package policy

// PolicyConfig is the parsed form of a policy file.
type PolicyConfig struct {
	Version     int                       `yaml:"version"`
	Providers   map[string]ProviderConfig `yaml:"providers"`
	Rules       map[string]RuleConfig     `yaml:"rules"`
	Enforcement EnforcementConfig         `yaml:"enforcement"`
}

// ProviderConfig switches a whole provider on or off and optionally hides
// findings below a status.
type ProviderConfig struct {
	Enabled   *bool  `yaml:"enabled,omitempty"`
	MinStatus string `yaml:"min_status,omitempty"`
}

// RuleConfig overrides the behaviour of a single rule.
type RuleConfig struct {
	Enabled *bool `yaml:"enabled,omitempty"`

	// Status replaces the status of WARN and FAIL findings.
	Status string `yaml:"status,omitempty"`

	Settings map[string]any `yaml:"settings,omitempty"`
}

// EnforcementConfig decides when a scan exits non-zero.
type EnforcementConfig struct {
	FailOn []string `yaml:"fail_on,omitempty"`
}
