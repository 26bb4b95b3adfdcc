// Package config loads the cloudscan runtime configuration. The file lives at
// ~/.config/cloudscan/config.yaml by default; a missing file yields Default().
// CLI flags are applied on top of whatever is loaded here.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/pankaj-dahiya-devops/cloudscan/internal/collector"
	"github.com/pankaj-dahiya-devops/cloudscan/internal/rules"
)

// Config is the top-level runtime configuration.
type Config struct {
	AWS        AWSConfig        `yaml:"aws"        json:"aws"`
	GCP        GCPConfig        `yaml:"gcp"        json:"gcp"`
	Kubernetes KubernetesConfig `yaml:"kubernetes" json:"kubernetes"`
	Collection CollectionConfig `yaml:"collection" json:"collection"`
	Evaluation EvaluationConfig `yaml:"evaluation" json:"evaluation"`
}

// AWSConfig holds AWS defaults used when flags are not provided.
type AWSConfig struct {
	// Profile is used when no --profile flag is provided.
	Profile string `yaml:"profile" json:"profile"`

	// Regions restricts collection. Empty means every enabled region.
	Regions []string `yaml:"regions" json:"regions"`
}

// GCPConfig holds Google Cloud defaults.
type GCPConfig struct {
	Project string `yaml:"project" json:"project"`
}

// KubernetesConfig holds Kubernetes defaults.
type KubernetesConfig struct {
	// Context overrides the kubeconfig current-context.
	Context string `yaml:"context" json:"context"`

	// Kubeconfig overrides $KUBECONFIG and ~/.kube/config.
	Kubeconfig string `yaml:"kubeconfig" json:"kubeconfig"`
}

// CollectionConfig tunes the collector scheduler.
type CollectionConfig struct {
	Concurrency       int           `yaml:"concurrency"        json:"concurrency"`
	RegionConcurrency int           `yaml:"region_concurrency" json:"region_concurrency"`
	UnitTimeout       time.Duration `yaml:"unit_timeout"       json:"unit_timeout"`

	// RateLimit is unit starts per second; 0 disables limiting.
	RateLimit float64 `yaml:"rate_limit" json:"rate_limit"`
	Burst     int     `yaml:"burst"      json:"burst"`
}

// EvaluationConfig tunes the rule runner.
type EvaluationConfig struct {
	Concurrency int `yaml:"concurrency" json:"concurrency"`
}

// Default returns the configuration used when no file exists.
func Default() *Config {
	return &Config{
		Collection: CollectionConfig{
			Concurrency:       collector.DefaultConcurrency,
			RegionConcurrency: collector.DefaultRegionConcurrency,
			UnitTimeout:       collector.DefaultUnitTimeout,
		},
		Evaluation: EvaluationConfig{
			Concurrency: rules.DefaultRunnerConcurrency,
		},
	}
}

// SchedulerOptions converts the collection block into scheduler options.
func (c *Config) SchedulerOptions() collector.Options {
	return collector.Options{
		Concurrency:       c.Collection.Concurrency,
		RegionConcurrency: c.Collection.RegionConcurrency,
		UnitTimeout:       c.Collection.UnitTimeout,
		RateLimit:         c.Collection.RateLimit,
		Burst:             c.Collection.Burst,
	}
}

// Validate rejects values the scheduler cannot honour.
func (c *Config) Validate() error {
	switch {
	case c.Collection.Concurrency < 0:
		return fmt.Errorf("collection.concurrency must not be negative")
	case c.Collection.RegionConcurrency < 0:
		return fmt.Errorf("collection.region_concurrency must not be negative")
	case c.Collection.UnitTimeout < 0:
		return fmt.Errorf("collection.unit_timeout must not be negative")
	case c.Collection.RateLimit < 0:
		return fmt.Errorf("collection.rate_limit must not be negative")
	case c.Collection.Burst < 0:
		return fmt.Errorf("collection.burst must not be negative")
	case c.Evaluation.Concurrency < 0:
		return fmt.Errorf("evaluation.concurrency must not be negative")
	}
	return nil
}

// Loader is the interface for reading Config from disk.
type Loader interface {
	// Load reads, parses, and validates the configuration file.
	Load() (*Config, error)

	// ConfigPath returns the absolute path to the configuration file.
	ConfigPath() string
}

// FileLoader reads Config from a YAML file.
type FileLoader struct {
	// Path overrides the default location when non-empty.
	Path string
}

// ConfigPath returns the file FileLoader reads.
func (l FileLoader) ConfigPath() string {
	if l.Path != "" {
		return l.Path
	}
	return DefaultPath()
}

// Load reads the file over Default(). A missing file is not an error unless
// Path was set explicitly.
func (l FileLoader) Load() (*Config, error) {
	cfg := Default()
	path := l.ConfigPath()

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) && l.Path == "" {
			return cfg, nil
		}
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// DefaultPath returns ~/.config/cloudscan/config.yaml, or a relative path
// when the home directory cannot be determined.
func DefaultPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".config", "cloudscan", "config.yaml")
	}
	return filepath.Join(home, ".config", "cloudscan", "config.yaml")
}
