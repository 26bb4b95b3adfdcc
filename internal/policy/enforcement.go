package policy

import (
	"github.com/pankaj-dahiya-devops/cloudscan/internal/models"
)

// DefaultFailOn is used when the policy has no enforcement block.
var DefaultFailOn = []models.Status{models.StatusFail}

// FailOn returns the statuses that make a scan fail.
func FailOn(cfg *PolicyConfig) []models.Status {
	if cfg == nil || len(cfg.Enforcement.FailOn) == 0 {
		return DefaultFailOn
	}
	var out []models.Status
	for _, name := range cfg.Enforcement.FailOn {
		if s, err := models.ParseStatus(name); err == nil {
			out = append(out, s)
		}
	}
	return out
}

// ShouldFail reports whether any finding carries one of the fail_on statuses.
//
// It returns false when findings is empty. A nil cfg behaves like a policy
// with fail_on: [FAIL].
func ShouldFail(findings []models.Finding, cfg *PolicyConfig) bool {
	failOn := FailOn(cfg)
	for _, f := range findings {
		for _, s := range failOn {
			if f.Status == s {
				return true
			}
		}
	}
	return false
}
