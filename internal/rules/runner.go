package rules

import (
	"context"
	"fmt"
	"log/slog"
	"runtime/debug"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/pankaj-dahiya-devops/cloudscan/internal/cache"
	"github.com/pankaj-dahiya-devops/cloudscan/internal/collector"
	"github.com/pankaj-dahiya-devops/cloudscan/internal/metrics"
	"github.com/pankaj-dahiya-devops/cloudscan/internal/models"
	"github.com/pankaj-dahiya-devops/cloudscan/internal/settings"
)

// DefaultRunnerConcurrency is how many rules evaluate at once.
const DefaultRunnerConcurrency = 4

// State is the lifecycle of one rule invocation.
type State int

const (
	StateNotStarted State = iota
	StateRunning
	StateCompleted
	StateCrashed
)

// RunInput is everything the runner needs for one evaluation phase.
type RunInput struct {
	Rules []Rule

	// Cache must be frozen before Run is called.
	Cache cache.Reader

	Regions collector.RegionSet

	// Overrides maps rule ID to raw setting overrides.
	Overrides map[string]map[string]any

	AccountID string
	Profile   string
}

// Runner evaluates rules against a populated cache.
type Runner struct {
	concurrency int
	logger      *slog.Logger
	now         func() time.Time
}

// RunnerOptions configures a Runner. Zero values select the defaults.
type RunnerOptions struct {
	Concurrency int
	Logger      *slog.Logger
	Now         func() time.Time
}

// NewRunner returns a Runner configured by opts.
func NewRunner(opts RunnerOptions) *Runner {
	r := &Runner{concurrency: opts.Concurrency, logger: opts.Logger, now: opts.Now}
	if r.concurrency <= 0 {
		r.concurrency = DefaultRunnerConcurrency
	}
	if r.logger == nil {
		r.logger = slog.Default()
	}
	if r.now == nil {
		r.now = func() time.Time { return time.Now().UTC() }
	}
	return r
}

type invocation struct {
	ruleID   string
	state    State
	findings []models.Finding
	source   cache.Source
}

// Run evaluates every rule in in.Rules and merges their findings in rule
// order. A rule that panics contributes one UNKNOWN finding naming it and
// the remaining rules still run. Run always returns a complete result.
func (r *Runner) Run(ctx context.Context, in RunInput) models.RunResult {
	now := r.now()
	slots := make([]invocation, len(in.Rules))

	g := new(errgroup.Group)
	g.SetLimit(r.concurrency)
	for i, rule := range in.Rules {
		g.Go(func() error {
			slots[i] = r.invoke(ctx, i, rule, in, now)
			return nil
		})
	}
	_ = g.Wait()

	result := models.RunResult{Findings: []models.Finding{}, Source: make(cache.Source)}
	for _, inv := range slots {
		result.Findings = append(result.Findings, inv.findings...)
		result.Source.Merge(inv.source)
		if inv.state == StateCrashed {
			result.Crashed = append(result.Crashed, inv.ruleID)
		}
	}
	for _, f := range result.Findings {
		metrics.FindingEmitted(f.Status.String())
	}
	return result
}

// invoke runs one rule in isolation. A panic anywhere in the rule's code,
// Describe included, is recovered; until Describe returns the rule is
// identified by its position.
func (r *Runner) invoke(ctx context.Context, pos int, rule Rule, in RunInput, now time.Time) (inv invocation) {
	desc := Descriptor{ID: fmt.Sprintf("rule#%d", pos)}
	tracker := cache.Track(in.Cache)
	inv.ruleID = desc.ID
	inv.state = StateNotStarted

	defer func() {
		inv.source = tracker.Source()
		if p := recover(); p != nil {
			inv.state = StateCrashed
			inv.findings = []models.Finding{crashFinding(desc, in, now, fmt.Sprintf("Rule %s crashed during evaluation: %v", desc.ID, p))}
			metrics.RuleEvaluated(desc.ID, metrics.OutcomeCrashed)
			r.logger.Error("rule crashed",
				"rule", desc.ID,
				"panic", fmt.Sprint(p),
				"stack", string(debug.Stack()),
			)
		}
	}()

	desc = rule.Describe()
	inv.ruleID = desc.ID

	if err := ctx.Err(); err != nil {
		inv.findings = []models.Finding{crashFinding(desc, in, now, fmt.Sprintf("Rule was not evaluated: %v", err))}
		return inv
	}

	rctx := Context{
		Cache:     tracker,
		Settings:  settings.Resolve(desc.Settings, in.Overrides[desc.ID]),
		Regions:   in.Regions,
		Now:       now,
		AccountID: in.AccountID,
		Profile:   in.Profile,
	}

	inv.state = StateRunning
	start := time.Now()
	findings := rule.Evaluate(rctx)
	inv.findings = r.dedupe(desc.ID, findings)
	inv.state = StateCompleted
	metrics.RuleEvaluated(desc.ID, metrics.OutcomeOK)
	r.logger.Debug("rule evaluated",
		"rule", desc.ID,
		"findings", len(inv.findings),
		"duration", time.Since(start).String(),
	)
	return inv
}

// dedupe drops repeated findings for the same (region, resource) or, for
// resource-less findings, the same (region, message).
func (r *Runner) dedupe(ruleID string, findings []models.Finding) []models.Finding {
	seen := make(map[string]bool, len(findings))
	out := make([]models.Finding, 0, len(findings))
	for _, f := range findings {
		key := f.DedupKey()
		if seen[key] {
			r.logger.Warn("dropping duplicate finding",
				"rule", ruleID,
				"region", f.Region,
				"resource", f.Resource,
				"status", f.Status.String(),
			)
			continue
		}
		seen[key] = true
		out = append(out, f)
	}
	return out
}

func crashFinding(desc Descriptor, in RunInput, now time.Time, msg string) models.Finding {
	return models.Finding{
		ID:         desc.ID + "-crash",
		RuleID:     desc.ID,
		Title:      desc.Title,
		Category:   desc.Category,
		Provider:   desc.Provider,
		Status:     models.StatusUnknown,
		Message:    msg,
		AccountID:  in.AccountID,
		Profile:    in.Profile,
		DetectedAt: now,
	}
}
