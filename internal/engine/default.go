package engine

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/pankaj-dahiya-devops/cloudscan/internal/cache"
	"github.com/pankaj-dahiya-devops/cloudscan/internal/collector"
	"github.com/pankaj-dahiya-devops/cloudscan/internal/errors"
	"github.com/pankaj-dahiya-devops/cloudscan/internal/models"
	"github.com/pankaj-dahiya-devops/cloudscan/internal/policy"
	"github.com/pankaj-dahiya-devops/cloudscan/internal/rules"
)

// Options tunes a DefaultEngine.
type Options struct {
	// Scheduler is applied to every provider's scheduler. Its Logger is
	// replaced by the engine logger when unset.
	Scheduler collector.Options

	RunnerConcurrency int
	Logger            *slog.Logger
	Now               func() time.Time
}

// DefaultEngine is the production implementation of Engine.
// It coordinates provider setup, collection, rule evaluation, and report
// assembly. It never calls a cloud SDK directly.
type DefaultEngine struct {
	registry rules.RuleRegistry
	sources  []ProviderSource
	opts     Options
	logger   *slog.Logger
}

// NewDefaultEngine constructs a DefaultEngine. Sources are scanned, and
// their findings reported, in the order given.
func NewDefaultEngine(registry rules.RuleRegistry, sources []ProviderSource, opts Options) *DefaultEngine {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Now == nil {
		opts.Now = func() time.Time { return time.Now().UTC() }
	}
	if opts.Scheduler.Logger == nil {
		opts.Scheduler.Logger = opts.Logger
	}
	return &DefaultEngine{
		registry: registry,
		sources:  sources,
		opts:     opts,
		logger:   opts.Logger,
	}
}

// scanTarget is one provider that passed setup, with its rules and plan.
type scanTarget struct {
	*Target
	rules []rules.Rule
	plan  *collector.Plan
	stats collector.Stats
}

// RunScan implements Engine. It selects rules, sets up every provider they
// need, collects exactly the APIs those rules declare, evaluates the rules
// against the frozen cache and returns the report.
func (e *DefaultEngine) RunScan(ctx context.Context, opts ScanOptions) (*models.ScanReport, error) {
	selected, err := e.selectRules(opts)
	if err != nil {
		return nil, err
	}

	targets, err := e.setup(ctx, opts, selected)
	if err != nil {
		return nil, err
	}

	for _, t := range targets {
		plan, err := t.Catalog.Plan(declaredAPIs(t.rules), t.Regions)
		if err != nil {
			return nil, fmt.Errorf("plan %s collection: %w", t.Provider, err)
		}
		t.plan = plan
	}

	c := cache.New()
	if err := e.collect(ctx, targets, c); err != nil {
		return nil, err
	}
	c.Freeze()

	runner := rules.NewRunner(rules.RunnerOptions{
		Concurrency: e.opts.RunnerConcurrency,
		Logger:      e.logger,
		Now:         e.opts.Now,
	})
	overrides := policy.Overrides(opts.Policy)

	var (
		findings []models.Finding
		crashed  []string
		source   = make(cache.Source)
	)
	for _, t := range targets {
		result := runner.Run(ctx, rules.RunInput{
			Rules:     t.rules,
			Cache:     c,
			Regions:   t.plan.RegionSet(),
			Overrides: overrides,
			AccountID: t.AccountID,
			Profile:   t.Profile,
		})
		findings = append(findings, result.Findings...)
		crashed = append(crashed, result.Crashed...)
		source.Merge(result.Source)
	}

	findings = policy.ApplyPolicy(findings, opts.Policy)
	report := e.buildReport(targets, findings)
	report.Summary.CrashedRules = crashed
	if opts.IncludeSource {
		report.Source = source
	}
	return report, nil
}

// selectRules returns the rules to evaluate grouped by provider, in
// registration order: registry ∩ policy ∩ opts.RuleIDs ∩ opts.Providers.
func (e *DefaultEngine) selectRules(opts ScanOptions) (map[string][]rules.Rule, error) {
	wanted := make(map[string]bool, len(opts.RuleIDs))
	for _, id := range opts.RuleIDs {
		if _, ok := e.registry.Get(id); !ok {
			return nil, errors.New(errors.ErrCodeInvalidRequest, fmt.Sprintf("unknown rule %q", id))
		}
		wanted[id] = true
	}

	providers := make(map[string]bool, len(opts.Providers))
	for _, p := range opts.Providers {
		if e.source(p) == nil {
			return nil, errors.New(errors.ErrCodeInvalidRequest, fmt.Sprintf("unknown provider %q", p))
		}
		providers[p] = true
	}

	out := make(map[string][]rules.Rule)
	for _, r := range e.registry.All() {
		d := r.Describe()
		if len(wanted) > 0 && !wanted[d.ID] {
			continue
		}
		if len(providers) > 0 && !providers[d.Provider] {
			continue
		}
		if !policy.RuleEnabled(d.ID, d.Provider, opts.Policy) {
			e.logger.Debug("rule disabled by policy", "rule", d.ID)
			continue
		}
		out[d.Provider] = append(out[d.Provider], r)
	}
	if len(out) == 0 {
		return nil, errors.New(errors.ErrCodeInvalidRequest, "no rules selected")
	}
	return out, nil
}

// setup prepares every provider that has selected rules. A provider that
// was named explicitly must succeed; others are dropped with a warning.
func (e *DefaultEngine) setup(ctx context.Context, opts ScanOptions, selected map[string][]rules.Rule) ([]*scanTarget, error) {
	explicit := make(map[string]bool, len(opts.Providers))
	for _, p := range opts.Providers {
		explicit[p] = true
	}

	var targets []*scanTarget
	for _, src := range e.sources {
		rs := selected[src.Name()]
		if len(rs) == 0 {
			continue
		}
		t, err := src.Setup(ctx, opts)
		if err != nil {
			if explicit[src.Name()] {
				return nil, fmt.Errorf("set up %s: %w", src.Name(), err)
			}
			e.logger.Warn("skipping provider",
				"provider", src.Name(),
				"rules", len(rs),
				"error", err.Error(),
			)
			continue
		}
		targets = append(targets, &scanTarget{Target: t, rules: rs})
	}
	if len(targets) == 0 {
		return nil, errors.New(errors.ErrCodeUnavailable, "no provider could be set up")
	}
	return targets, nil
}

// collect runs every provider's plan into c concurrently. Each provider gets
// its own scheduler so rate limits stay per provider.
func (e *DefaultEngine) collect(ctx context.Context, targets []*scanTarget, c *cache.Cache) error {
	g := new(errgroup.Group)
	for _, t := range targets {
		g.Go(func() error {
			sched := collector.NewScheduler(e.opts.Scheduler)
			stats, err := sched.Run(ctx, t.plan, c)
			t.stats = stats
			if err != nil {
				return fmt.Errorf("collect %s: %w", t.Provider, err)
			}
			return nil
		})
	}
	return g.Wait()
}

func (e *DefaultEngine) source(name string) ProviderSource {
	for _, s := range e.sources {
		if s.Name() == name {
			return s
		}
	}
	return nil
}

// declaredAPIs returns the union of the APIs rs declare, in first-seen order.
func declaredAPIs(rs []rules.Rule) []cache.API {
	seen := make(map[cache.API]bool)
	var apis []cache.API
	for _, r := range rs {
		for _, api := range r.Describe().APIs {
			if !seen[api] {
				seen[api] = true
				apis = append(apis, api)
			}
		}
	}
	return apis
}

// buildReport assembles a ScanReport from the scanned targets and their
// policy-filtered findings.
func (e *DefaultEngine) buildReport(targets []*scanTarget, findings []models.Finding) *models.ScanReport {
	if findings == nil {
		findings = []models.Finding{}
	}

	report := &models.ScanReport{
		ReportID:    uuid.NewString(),
		GeneratedAt: e.opts.Now(),
		Providers:   make([]string, 0, len(targets)),
		Summary:     models.Summarize(findings),
		Findings:    findings,
		Metadata:    make(map[string]any),
	}

	regions := make(map[string]bool)
	var units, failed int64
	for _, t := range targets {
		report.Providers = append(report.Providers, t.Provider)
		report.Summary.RulesEvaluated += len(t.rules)
		if t.AccountID != "" {
			report.AccountID = t.AccountID
			report.Profile = t.Profile
		}
		for _, rs := range t.plan.RegionSet() {
			for _, r := range rs {
				regions[r] = true
			}
		}
		for k, v := range t.Metadata {
			report.Metadata[k] = v
		}
		units += t.stats.Units
		failed += t.stats.Failed
	}

	report.Regions = make([]string, 0, len(regions))
	for r := range regions {
		report.Regions = append(report.Regions, r)
	}
	sort.Strings(report.Regions)

	report.Metadata["collector_units"] = units
	report.Metadata["collector_failures"] = failed
	return report
}
