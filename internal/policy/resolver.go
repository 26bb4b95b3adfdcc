package policy

import (
	"github.com/pankaj-dahiya-devops/cloudscan/internal/models"
)

// ProviderEnabled reports whether provider may run. Providers are enabled
// unless the policy says otherwise.
func ProviderEnabled(provider string, cfg *PolicyConfig) bool {
	if cfg == nil {
		return true
	}
	pc, ok := cfg.Providers[provider]
	if !ok || pc.Enabled == nil {
		return true
	}
	return *pc.Enabled
}

// RuleEnabled reports whether the rule should be evaluated.
func RuleEnabled(ruleID, provider string, cfg *PolicyConfig) bool {
	if !ProviderEnabled(provider, cfg) {
		return false
	}
	if cfg == nil {
		return true
	}
	rc, ok := cfg.Rules[ruleID]
	if !ok || rc.Enabled == nil {
		return true
	}
	return *rc.Enabled
}

// Overrides returns the per-rule settings overrides, keyed by rule ID.
func Overrides(cfg *PolicyConfig) map[string]map[string]any {
	if cfg == nil {
		return nil
	}
	out := make(map[string]map[string]any)
	for id, rc := range cfg.Rules {
		if len(rc.Settings) > 0 {
			out[id] = rc.Settings
		}
	}
	return out
}

// ApplyPolicy drops findings of disabled rules and providers, rewrites
// overridden statuses and hides findings below a provider's min_status.
// The input slice is not modified.
func ApplyPolicy(findings []models.Finding, cfg *PolicyConfig) []models.Finding {
	if cfg == nil {
		return findings
	}

	out := make([]models.Finding, 0, len(findings))
	for _, f := range findings {
		if !RuleEnabled(f.RuleID, f.Provider, cfg) {
			continue
		}

		if rc, ok := cfg.Rules[f.RuleID]; ok && rc.Status != "" {
			if s, err := models.ParseStatus(rc.Status); err == nil && overridable(f.Status) {
				f.Status = s
			}
		}

		if pc, ok := cfg.Providers[f.Provider]; ok && pc.MinStatus != "" {
			if floor, err := models.ParseStatus(pc.MinStatus); err == nil && f.Status < floor {
				continue
			}
		}

		out = append(out, f)
	}
	return out
}

// overridable reports whether a status may be replaced by a rule override.
// OK and UNKNOWN describe what was observed, not how serious it is.
func overridable(s models.Status) bool {
	return s == models.StatusWarn || s == models.StatusFail
}
