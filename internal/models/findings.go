package models

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/pankaj-dahiya-devops/cloudscan/internal/cache"
)

// Status is the outcome of one unit of rule evaluation. The numeric values
// are stable and ordered by how much attention a finding needs.
type Status int

const (
	StatusOK Status = iota
	StatusWarn
	StatusFail
	StatusUnknown
)

var statusNames = [...]string{"OK", "WARN", "FAIL", "UNKNOWN"}

// String returns the upper-case status name.
func (s Status) String() string {
	if s < StatusOK || s > StatusUnknown {
		return fmt.Sprintf("Status(%d)", int(s))
	}
	return statusNames[s]
}

// ParseStatus parses a status name, case-insensitively.
func ParseStatus(name string) (Status, error) {
	upper := strings.ToUpper(strings.TrimSpace(name))
	for i, n := range statusNames {
		if n == upper {
			return Status(i), nil
		}
	}
	return 0, fmt.Errorf("unknown status %q; valid values: OK, WARN, FAIL, UNKNOWN", name)
}

// MarshalJSON encodes the status by name.
func (s Status) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

// UnmarshalJSON decodes a status name.
func (s *Status) UnmarshalJSON(data []byte) error {
	var name string
	if err := json.Unmarshal(data, &name); err != nil {
		return err
	}
	v, err := ParseStatus(name)
	if err != nil {
		return err
	}
	*s = v
	return nil
}

// Finding is a single result of evaluating one rule against one resource (or
// one region when the rule found nothing to evaluate).
// It is the atomic output unit of the rule engine.
type Finding struct {
	ID         string         `json:"id"`
	RuleID     string         `json:"rule_id"`
	Title      string         `json:"title"`
	Category   string         `json:"category"`
	Provider   string         `json:"provider,omitempty"`
	Status     Status         `json:"status"`
	Message    string         `json:"message"`
	Region     string         `json:"region,omitempty"`
	Resource   string         `json:"resource,omitempty"`
	AccountID  string         `json:"account_id,omitempty"`
	Profile    string         `json:"profile,omitempty"`
	DetectedAt time.Time      `json:"detected_at"`
	Metadata   map[string]any `json:"metadata,omitempty"`
}

// DedupKey identifies a finding within one rule invocation. Findings without
// a resource are distinguished by message.
func (f Finding) DedupKey() string {
	if f.Resource != "" {
		return f.Region + "\x00" + f.Resource
	}
	return f.Region + "\x00\x00" + f.Message
}

// RunResult is what the runner hands to reporting: the findings in rule
// invocation order plus the cache entries the rules consumed.
type RunResult struct {
	Findings []Finding    `json:"findings"`
	Source   cache.Source `json:"source"`
	// Crashed lists the IDs of rules whose evaluation panicked.
	Crashed []string `json:"crashed,omitempty"`
}

// ScanSummary aggregates counts across all findings.
type ScanSummary struct {
	TotalFindings   int `json:"total_findings"`
	OKFindings      int `json:"ok_findings"`
	WarnFindings    int `json:"warn_findings"`
	FailFindings    int `json:"fail_findings"`
	UnknownFindings int `json:"unknown_findings"`
	RulesEvaluated  int `json:"rules_evaluated"`
	// CrashedRules lists rules that panicked during evaluation.
	CrashedRules []string `json:"crashed_rules,omitempty"`
}

// Summarize counts findings by status.
func Summarize(findings []Finding) ScanSummary {
	s := ScanSummary{TotalFindings: len(findings)}
	for _, f := range findings {
		switch f.Status {
		case StatusOK:
			s.OKFindings++
		case StatusWarn:
			s.WarnFindings++
		case StatusFail:
			s.FailFindings++
		default:
			s.UnknownFindings++
		}
	}
	return s
}

// ScanReport is the top-level output of a scan.
type ScanReport struct {
	ReportID    string      `json:"report_id"`
	GeneratedAt time.Time   `json:"generated_at"`
	Providers   []string    `json:"providers"`
	Profile     string      `json:"profile,omitempty"`
	AccountID   string      `json:"account_id,omitempty"`
	Regions     []string    `json:"regions"`
	Summary     ScanSummary `json:"summary"`
	Findings    []Finding   `json:"findings"`
	// Source holds the collected data the findings were derived from. It is
	// only populated when the caller asks for it.
	Source cache.Source `json:"source,omitempty"`
	// Metadata carries optional provider-specific key/value pairs such as the
	// Kubernetes context or GCP project.
	Metadata map[string]any `json:"metadata,omitempty"`
}
