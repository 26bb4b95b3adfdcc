package engine

import (
	"context"

	"github.com/pankaj-dahiya-devops/cloudscan/internal/models"
	"github.com/pankaj-dahiya-devops/cloudscan/internal/policy"
)

// ReportFormat controls the CLI output format.
type ReportFormat string

const (
	ReportFormatJSON  ReportFormat = "json"
	ReportFormatTable ReportFormat = "table"
)

// ScanOptions configures a single scan.
// It is the sole input to Engine.RunScan.
type ScanOptions struct {
	// Providers restricts the scan. Empty means every provider with selected
	// rules; a provider that fails setup is then skipped with a warning.
	// Providers named here fail the scan when they cannot be set up.
	Providers []string

	// RuleIDs restricts the scan to these rules. Empty means all rules.
	RuleIDs []string

	// Profile is the named AWS profile to use. Empty means the default profile.
	Profile string

	// Regions is an explicit list of AWS regions to scan.
	// When empty the engine scans every enabled region.
	Regions []string

	// Project is the GCP project for the google provider.
	Project string

	// KubeContext overrides the kubeconfig current-context.
	KubeContext string

	// Policy is applied to rule selection, settings and findings. Nil means
	// no policy.
	Policy *policy.PolicyConfig

	// IncludeSource attaches the collected data each finding was derived
	// from to the report.
	IncludeSource bool
}

// Engine is the central orchestration interface.
// It selects rules, collects exactly the data they declare, evaluates them
// and returns a fully populated ScanReport.
//
// Engine never calls a cloud SDK directly; it delegates to provider
// sources, the collector and the rule runner.
type Engine interface {
	RunScan(ctx context.Context, opts ScanOptions) (*models.ScanReport, error)
}
