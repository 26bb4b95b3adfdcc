package policy

import (
	"strings"
	"testing"

	"github.com/pankaj-dahiya-devops/cloudscan/internal/rules"
)

var knownRules = []rules.Rule{
	rules.CloudFormationStackFailedStatusRule{},
	rules.RootMFAEnabledRule{},
}

func TestValidate_Valid(t *testing.T) {
	cfg := &PolicyConfig{
		Version:   1,
		Providers: map[string]ProviderConfig{"aws": {MinStatus: "WARN"}},
		Rules: map[string]RuleConfig{
			"cloudformationStackFailedStatus": {Settings: map[string]any{"failed_hours_limit": 12}},
			"rootMFAEnabled":                  {Status: "warn"},
		},
		Enforcement: EnforcementConfig{FailOn: []string{"FAIL"}},
	}
	if errs := Validate(cfg, knownRules); len(errs) != 0 {
		t.Fatalf("expected no errors, got %v", errs)
	}
}

func TestValidate_Nil(t *testing.T) {
	if errs := Validate(nil, knownRules); len(errs) != 1 {
		t.Fatalf("expected 1 error for nil config, got %d", len(errs))
	}
}

func TestValidate_CollectsAllErrors(t *testing.T) {
	cfg := &PolicyConfig{
		Version:   2,
		Providers: map[string]ProviderConfig{"azure": {MinStatus: "LOW"}},
		Rules: map[string]RuleConfig{
			"noSuchRule":                      {},
			"rootMFAEnabled":                  {Status: "HIGH"},
			"cloudformationStackFailedStatus": {Settings: map[string]any{"failed_hours_limit": "abc", "nope": 1}},
		},
		Enforcement: EnforcementConfig{FailOn: []string{"CRITICAL"}},
	}

	errs := Validate(cfg, knownRules)

	wantFragments := []string{
		"version",
		"providers.azure: unknown provider",
		"providers.azure.min_status",
		"rules.cloudformationStackFailedStatus.settings: setting \"failed_hours_limit\"",
		"unknown setting \"nope\"",
		"rules.noSuchRule: unknown rule ID",
		"rules.rootMFAEnabled.status",
		"enforcement.fail_on[0]",
	}
	if len(errs) != len(wantFragments) {
		t.Fatalf("expected %d errors, got %d: %v", len(wantFragments), len(errs), errs)
	}
	for _, frag := range wantFragments {
		found := false
		for _, err := range errs {
			if strings.Contains(err.Error(), frag) {
				found = true
				break
			}
		}
		if !found {
			t.Errorf("expected an error containing %q", frag)
		}
	}
}

func TestValidate_RejectsUncompilableNamespacePattern(t *testing.T) {
	cfg := &PolicyConfig{
		Version: 1,
		Rules: map[string]RuleConfig{
			"privilegedContainers": {Settings: map[string]any{"allowed_namespaces": "^(kube-system"}},
		},
	}
	errs := Validate(cfg, []rules.Rule{rules.PrivilegedContainersRule{}})
	if len(errs) != 1 {
		t.Fatalf("expected 1 error, got %v", errs)
	}
	if !strings.Contains(errs[0].Error(), `rules.privilegedContainers.settings: setting "allowed_namespaces"`) {
		t.Errorf("unexpected error %v", errs[0])
	}
}
