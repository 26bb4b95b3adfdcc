package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"

	"github.com/spf13/cobra"

	"github.com/pankaj-dahiya-devops/cloudscan/internal/config"
	"github.com/pankaj-dahiya-devops/cloudscan/internal/engine"
	"github.com/pankaj-dahiya-devops/cloudscan/internal/metrics"
	"github.com/pankaj-dahiya-devops/cloudscan/internal/models"
	"github.com/pankaj-dahiya-devops/cloudscan/internal/output"
	"github.com/pankaj-dahiya-devops/cloudscan/internal/policy"
	"github.com/pankaj-dahiya-devops/cloudscan/internal/providers/aws/common"
	kube "github.com/pankaj-dahiya-devops/cloudscan/internal/providers/kubernetes"
)

// newSources builds the provider sources for a scan. Tests replace it.
var newSources = func(cfg *config.Config) []engine.ProviderSource {
	return []engine.ProviderSource{
		engine.NewAWSSource(common.NewDefaultAWSClientProvider()),
		engine.NewGoogleSource(),
		engine.NewKubernetesSource(&kube.DefaultKubeClientProvider{Path: cfg.Kubernetes.Kubeconfig}),
	}
}

type scanFlags struct {
	providers   []string
	regions     []string
	profile     string
	project     string
	kubeContext string
	ruleIDs     []string
	policyPath  string
	configPath  string
	reportFmt   string
	output      string
	metricsFile string
	colored     bool
	withSource  bool
}

func newScanCmd() *cobra.Command {
	var f scanFlags

	cmd := &cobra.Command{
		Use:   "scan",
		Short: "Collect cloud configuration and evaluate compliance rules",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runScan(cmd, f)
		},
	}

	cmd.Flags().StringSliceVar(&f.providers, "provider", nil, "Provider(s) to scan: aws, google, kubernetes (default: every provider that can be set up)")
	cmd.Flags().StringSliceVar(&f.regions, "region", nil, "AWS region(s) to scan (default: all enabled regions)")
	cmd.Flags().StringVar(&f.profile, "profile", "", "AWS profile name (default: config file, then the default credential chain)")
	cmd.Flags().StringVar(&f.project, "project", "", "GCP project ID")
	cmd.Flags().StringVar(&f.kubeContext, "kube-context", "", "Kubeconfig context (default: current-context)")
	cmd.Flags().StringSliceVar(&f.ruleIDs, "rule", nil, "Only evaluate these rule IDs")
	cmd.Flags().StringVar(&f.policyPath, "policy", "", "Policy file (default: ./"+defaultPolicyPath+" when present)")
	cmd.Flags().StringVar(&f.configPath, "config", "", "Config file (default: ~/.config/cloudscan/config.yaml)")
	cmd.Flags().StringVar(&f.reportFmt, "report", "table", "Output format: json or table")
	cmd.Flags().StringVar(&f.output, "output", "", "Write full JSON report to this file path (in addition to stdout output)")
	cmd.Flags().StringVar(&f.metricsFile, "metrics-file", "", "Write prometheus metrics in text format to this file")
	cmd.Flags().BoolVar(&f.colored, "colored", false, "Colour status labels in table output")
	cmd.Flags().BoolVar(&f.withSource, "include-source", false, "Attach the collected data behind each finding to JSON reports")

	return cmd
}

func runScan(cmd *cobra.Command, f scanFlags) error {
	if f.reportFmt != string(engine.ReportFormatTable) && f.reportFmt != string(engine.ReportFormatJSON) {
		return fmt.Errorf("unsupported report format %q", f.reportFmt)
	}

	cfg, err := config.FileLoader{Path: f.configPath}.Load()
	if err != nil {
		return err
	}

	registry := newRegistry()

	pol, err := loadPolicy(f.policyPath)
	if err != nil {
		return err
	}
	if pol != nil {
		if errs := policy.Validate(pol, registry.All()); len(errs) > 0 {
			return fmt.Errorf("invalid policy: %w", errors.Join(errs...))
		}
	}

	opts := engine.ScanOptions{
		Providers:     f.providers,
		RuleIDs:       f.ruleIDs,
		Profile:       firstNonEmpty(f.profile, cfg.AWS.Profile),
		Regions:       f.regions,
		Project:       firstNonEmpty(f.project, cfg.GCP.Project),
		KubeContext:   firstNonEmpty(f.kubeContext, cfg.Kubernetes.Context),
		Policy:        pol,
		IncludeSource: f.withSource,
	}
	if len(opts.Regions) == 0 {
		opts.Regions = cfg.AWS.Regions
	}

	eng := engine.NewDefaultEngine(registry, newSources(cfg), engine.Options{
		Scheduler:         cfg.SchedulerOptions(),
		RunnerConcurrency: cfg.Evaluation.Concurrency,
	})

	report, err := eng.RunScan(cmd.Context(), opts)
	if err != nil {
		return fmt.Errorf("scan failed: %w", err)
	}

	if f.output != "" {
		if err := writeReportToFile(f.output, report); err != nil {
			return err
		}
	}
	if f.metricsFile != "" {
		if err := metrics.WriteTextfile(f.metricsFile); err != nil {
			return fmt.Errorf("write metrics file %q: %w", f.metricsFile, err)
		}
	}

	w := cmd.OutOrStdout()
	if f.reportFmt == string(engine.ReportFormatJSON) {
		if err := output.RenderJSON(w, report); err != nil {
			return err
		}
	} else {
		printTable(w, report, f.colored)
	}

	if policy.ShouldFail(report.Findings, pol) {
		return errPolicyFailed
	}
	return nil
}

// loadPolicy loads path, or the default policy file when path is empty and
// that file exists. It returns nil when there is no policy.
func loadPolicy(path string) (*policy.PolicyConfig, error) {
	if path == "" {
		if _, err := os.Stat(defaultPolicyPath); errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		path = defaultPolicyPath
	}
	return policy.LoadPolicy(path)
}

// printTable renders a header line, the findings table and a summary.
func printTable(w io.Writer, report *models.ScanReport, colored bool) {
	if report.AccountID != "" {
		fmt.Fprintf(w, "Profile: %-20s  Account: %-14s  ", report.Profile, report.AccountID)
	}
	fmt.Fprintf(w, "Providers: %v  Regions: %d\n\n", report.Providers, len(report.Regions))

	output.RenderTable(w, report.Findings, output.TableOptions{
		Colored:         colored,
		IncludeProvider: len(report.Providers) > 1,
	})
	fmt.Fprintln(w)
	output.RenderSummary(w, report.Summary, colored)
}

// writeReportToFile serialises report as indented JSON and writes it to path,
// creating or overwriting the file. It does not affect stdout output.
func writeReportToFile(path string, report *models.ScanReport) error {
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal report: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write report file %q: %w", path, err)
	}
	return nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
