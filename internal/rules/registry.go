package rules

import (
	"fmt"
)

// DefaultRuleRegistry is a simple, ordered, in-memory registry.
// Register panics on duplicate rule IDs and on invalid settings schemas to
// catch wiring mistakes at startup.
type DefaultRuleRegistry struct {
	rules []Rule
	index map[string]Rule
}

// NewDefaultRuleRegistry returns an empty registry ready for rule registration.
func NewDefaultRuleRegistry() *DefaultRuleRegistry {
	return &DefaultRuleRegistry{
		index: make(map[string]Rule),
	}
}

// Register adds rule to the registry.
func (r *DefaultRuleRegistry) Register(rule Rule) {
	d := rule.Describe()
	if _, exists := r.index[d.ID]; exists {
		panic(fmt.Sprintf("duplicate rule ID: %q", d.ID))
	}
	if err := d.Settings.Validate(); err != nil {
		panic(fmt.Sprintf("rule %q: %v", d.ID, err))
	}
	r.rules = append(r.rules, rule)
	r.index[d.ID] = rule
}

// All returns all registered rules in registration order.
func (r *DefaultRuleRegistry) All() []Rule {
	return r.rules
}

// Get returns the rule registered under id.
func (r *DefaultRuleRegistry) Get(id string) (Rule, bool) {
	rule, ok := r.index[id]
	return rule, ok
}

// IDs returns every registered rule ID in registration order.
func (r *DefaultRuleRegistry) IDs() []string {
	ids := make([]string, 0, len(r.rules))
	for _, rule := range r.rules {
		ids = append(ids, rule.Describe().ID)
	}
	return ids
}

// Provider returns the rules registered for provider, in registration order.
func (r *DefaultRuleRegistry) Provider(provider string) []Rule {
	var out []Rule
	for _, rule := range r.rules {
		if rule.Describe().Provider == provider {
			out = append(out, rule)
		}
	}
	return out
}
