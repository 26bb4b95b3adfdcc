package policy

import (
	"fmt"
	"sort"

	"github.com/pankaj-dahiya-devops/cloudscan/internal/models"
	"github.com/pankaj-dahiya-devops/cloudscan/internal/rules"
)

// validProviders is the set of recognised provider names.
var validProviders = map[string]struct{}{
	rules.ProviderAWS:        {},
	rules.ProviderGoogle:     {},
	rules.ProviderKubernetes: {},
}

// Validate checks cfg against the known rules and returns all validation
// errors found. An empty slice means the config is valid.
//
// Checks performed:
//   - version must be 1
//   - provider names must be aws, google or kubernetes
//   - provider min_status must be a valid status if set
//   - rule IDs must belong to a known rule
//   - rule status overrides must be valid statuses if set
//   - rule settings must name options of that rule and satisfy their constraints
//   - enforcement fail_on entries must be valid statuses
//
// Errors are reported in a stable order.
func Validate(cfg *PolicyConfig, available []rules.Rule) []error {
	if cfg == nil {
		return []error{fmt.Errorf("policy config is nil")}
	}

	known := make(map[string]rules.Descriptor, len(available))
	for _, r := range available {
		d := r.Describe()
		known[d.ID] = d
	}

	var errs []error

	if cfg.Version != 1 {
		errs = append(errs, fmt.Errorf("version: unsupported value %d; must be 1", cfg.Version))
	}

	for _, name := range sortedKeys(cfg.Providers) {
		pc := cfg.Providers[name]
		if _, ok := validProviders[name]; !ok {
			errs = append(errs, fmt.Errorf("providers.%s: unknown provider; valid values: aws, google, kubernetes", name))
		}
		if pc.MinStatus != "" {
			if _, err := models.ParseStatus(pc.MinStatus); err != nil {
				errs = append(errs, fmt.Errorf("providers.%s.min_status: invalid value %q; valid values: OK, WARN, FAIL, UNKNOWN", name, pc.MinStatus))
			}
		}
	}

	for _, id := range sortedKeys(cfg.Rules) {
		rc := cfg.Rules[id]
		d, ok := known[id]
		if !ok {
			errs = append(errs, fmt.Errorf("rules.%s: unknown rule ID", id))
			continue
		}
		if rc.Status != "" {
			if _, err := models.ParseStatus(rc.Status); err != nil {
				errs = append(errs, fmt.Errorf("rules.%s.status: invalid value %q; valid values: OK, WARN, FAIL, UNKNOWN", id, rc.Status))
			}
		}
		for _, name := range sortedKeys(rc.Settings) {
			if err := d.Settings.Check(name, rc.Settings[name]); err != nil {
				errs = append(errs, fmt.Errorf("rules.%s.settings: %w", id, err))
			}
		}
	}

	for i, name := range cfg.Enforcement.FailOn {
		if _, err := models.ParseStatus(name); err != nil {
			errs = append(errs, fmt.Errorf("enforcement.fail_on[%d]: invalid value %q; valid values: OK, WARN, FAIL, UNKNOWN", i, name))
		}
	}

	return errs
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
