package rules

import (
	"time"

	"github.com/pankaj-dahiya-devops/cloudscan/internal/cache"
	"github.com/pankaj-dahiya-devops/cloudscan/internal/collector"
	"github.com/pankaj-dahiya-devops/cloudscan/internal/models"
	"github.com/pankaj-dahiya-devops/cloudscan/internal/settings"
)

// Provider names used in Descriptor.Provider.
const (
	ProviderAWS        = "aws"
	ProviderGoogle     = "google"
	ProviderKubernetes = "kubernetes"
)

// Descriptor is the static metadata of a rule: what it checks, what collected
// data it reads, and which settings tune it.
type Descriptor struct {
	ID          string
	Title       string
	Category    string
	Provider    string
	Description string
	MoreInfo    string
	Link        string
	Remediation string

	// APIs lists every cache API the rule reads. The collector must cover all
	// of them before a scan starts.
	APIs []cache.API

	Settings settings.Schema
}

// Context carries everything a rule may read. Rules must never make network
// calls or read external state.
type Context struct {
	// Cache is the frozen source cache, read through a tracking reader.
	Cache cache.Reader

	// Settings are the rule's resolved tunables.
	Settings settings.Resolved

	// Regions lists, per service, the regions that were collected.
	Regions collector.RegionSet

	// Now is the evaluation timestamp shared by every rule in a run.
	Now time.Time

	AccountID string
	Profile   string
}

// Rule is a single deterministic configuration check.
// Rules must be stateless and safe to call concurrently.
type Rule interface {
	// Describe returns the rule's static metadata.
	Describe() Descriptor

	// Evaluate inspects the cache and returns one finding per evaluated unit
	// of work. Status UNKNOWN is used whenever required data erred.
	Evaluate(ctx Context) []models.Finding
}

// RuleRegistry manages the set of available rules.
type RuleRegistry interface {
	// Register adds a rule to the registry. Panics on duplicate ID.
	Register(rule Rule)

	// All returns all registered rules in registration order.
	All() []Rule

	// Get returns the rule with id.
	Get(id string) (Rule, bool)
}
