package policy

import (
	"testing"

	"github.com/pankaj-dahiya-devops/cloudscan/internal/models"
)

func boolPtr(b bool) *bool { return &b }

func finding(ruleID, provider string, status models.Status) models.Finding {
	return models.Finding{ID: ruleID + "-x", RuleID: ruleID, Provider: provider, Status: status}
}

func TestApplyPolicy_NilConfigPassesThrough(t *testing.T) {
	in := []models.Finding{finding("a", "aws", models.StatusFail)}
	out := ApplyPolicy(in, nil)
	if len(out) != 1 {
		t.Fatalf("expected 1 finding, got %d", len(out))
	}
}

func TestApplyPolicy_DisabledRuleDropped(t *testing.T) {
	cfg := &PolicyConfig{Rules: map[string]RuleConfig{"a": {Enabled: boolPtr(false)}}}
	out := ApplyPolicy([]models.Finding{
		finding("a", "aws", models.StatusFail),
		finding("b", "aws", models.StatusFail),
	}, cfg)
	if len(out) != 1 || out[0].RuleID != "b" {
		t.Fatalf("expected only rule b, got %+v", out)
	}
}

func TestApplyPolicy_DisabledProviderDropped(t *testing.T) {
	cfg := &PolicyConfig{Providers: map[string]ProviderConfig{"google": {Enabled: boolPtr(false)}}}
	out := ApplyPolicy([]models.Finding{
		finding("a", "google", models.StatusFail),
		finding("b", "aws", models.StatusOK),
	}, cfg)
	if len(out) != 1 || out[0].Provider != "aws" {
		t.Fatalf("expected only the aws finding, got %+v", out)
	}
}

func TestApplyPolicy_StatusOverride(t *testing.T) {
	cfg := &PolicyConfig{Rules: map[string]RuleConfig{"a": {Status: "warn"}}}
	in := []models.Finding{
		finding("a", "aws", models.StatusFail),
		finding("a", "aws", models.StatusOK),
		finding("a", "aws", models.StatusUnknown),
	}
	out := ApplyPolicy(in, cfg)

	want := []models.Status{models.StatusWarn, models.StatusOK, models.StatusUnknown}
	for i, s := range want {
		if out[i].Status != s {
			t.Errorf("finding %d: expected %s, got %s", i, s, out[i].Status)
		}
	}
	if in[0].Status != models.StatusFail {
		t.Errorf("input slice must not be modified")
	}
}

func TestApplyPolicy_InvalidStatusOverrideIgnored(t *testing.T) {
	cfg := &PolicyConfig{Rules: map[string]RuleConfig{"a": {Status: "SEVERE"}}}
	out := ApplyPolicy([]models.Finding{finding("a", "aws", models.StatusFail)}, cfg)
	if out[0].Status != models.StatusFail {
		t.Fatalf("expected FAIL to survive invalid override, got %s", out[0].Status)
	}
}

func TestApplyPolicy_MinStatusFilters(t *testing.T) {
	cfg := &PolicyConfig{Providers: map[string]ProviderConfig{"aws": {MinStatus: "WARN"}}}
	out := ApplyPolicy([]models.Finding{
		finding("a", "aws", models.StatusOK),
		finding("b", "aws", models.StatusWarn),
		finding("c", "kubernetes", models.StatusOK),
	}, cfg)
	if len(out) != 2 {
		t.Fatalf("expected 2 findings, got %d", len(out))
	}
	if out[0].RuleID != "b" || out[1].RuleID != "c" {
		t.Fatalf("unexpected findings %+v", out)
	}
}

func TestRuleEnabled(t *testing.T) {
	cfg := &PolicyConfig{
		Providers: map[string]ProviderConfig{"google": {Enabled: boolPtr(false)}},
		Rules: map[string]RuleConfig{
			"off": {Enabled: boolPtr(false)},
			"on":  {Enabled: boolPtr(true)},
		},
	}

	cases := []struct {
		id, provider string
		want         bool
	}{
		{"off", "aws", false},
		{"on", "aws", true},
		{"unlisted", "aws", true},
		{"on", "google", false},
	}
	for _, c := range cases {
		if got := RuleEnabled(c.id, c.provider, cfg); got != c.want {
			t.Errorf("RuleEnabled(%s, %s) = %v, want %v", c.id, c.provider, got, c.want)
		}
	}

	if !RuleEnabled("anything", "aws", nil) {
		t.Errorf("nil policy must enable every rule")
	}
}

func TestOverrides(t *testing.T) {
	cfg := &PolicyConfig{Rules: map[string]RuleConfig{
		"a": {Settings: map[string]any{"x": 1}},
		"b": {Enabled: boolPtr(false)},
	}}
	ov := Overrides(cfg)
	if len(ov) != 1 || ov["a"]["x"] != 1 {
		t.Fatalf("unexpected overrides %+v", ov)
	}
	if Overrides(nil) != nil {
		t.Fatalf("expected nil overrides for nil policy")
	}
}
