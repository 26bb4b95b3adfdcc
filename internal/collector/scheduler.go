package collector

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/pankaj-dahiya-devops/cloudscan/internal/cache"
	"github.com/pankaj-dahiya-devops/cloudscan/internal/metrics"
)

const (
	// DefaultConcurrency is the in-flight unit bound per batch.
	DefaultConcurrency = 15

	// DefaultRegionConcurrency bounds how many regions collect at once.
	DefaultRegionConcurrency = 5

	// DefaultUnitTimeout bounds a single unit including all of its pages.
	DefaultUnitTimeout = 2 * time.Minute
)

// Options tunes a Scheduler. Zero values select the defaults.
type Options struct {
	Concurrency       int
	RegionConcurrency int
	UnitTimeout       time.Duration

	// RateLimit is the provider-wide unit start rate per second; 0 disables it.
	RateLimit float64
	Burst     int

	Logger *slog.Logger
}

// Stats summarises one Scheduler.Run.
type Stats struct {
	Units   int64
	Failed  int64
	Skipped int64
}

// Scheduler runs a Plan into a cache.
type Scheduler struct {
	concurrency       int
	regionConcurrency int
	unitTimeout       time.Duration
	limiter           *rate.Limiter
	logger            *slog.Logger

	units   atomic.Int64
	failed  atomic.Int64
	skipped atomic.Int64
}

// NewScheduler returns a Scheduler configured by opts.
func NewScheduler(opts Options) *Scheduler {
	s := &Scheduler{
		concurrency:       opts.Concurrency,
		regionConcurrency: opts.RegionConcurrency,
		unitTimeout:       opts.UnitTimeout,
		logger:            opts.Logger,
	}
	if s.concurrency <= 0 {
		s.concurrency = DefaultConcurrency
	}
	if s.regionConcurrency <= 0 {
		s.regionConcurrency = DefaultRegionConcurrency
	}
	if s.unitTimeout <= 0 {
		s.unitTimeout = DefaultUnitTimeout
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	if opts.RateLimit > 0 {
		burst := opts.Burst
		if burst <= 0 {
			burst = 1
		}
		s.limiter = rate.NewLimiter(rate.Limit(opts.RateLimit), burst)
	}
	return s
}

// Run executes every unit of plan and writes each result to c. It returns
// once every unit, including every spawned dependent, has settled. Unit
// failures are recorded as error nodes and never abort sibling units; the
// returned error is non-nil only for cache write failures or a cancelled ctx.
func (s *Scheduler) Run(ctx context.Context, plan *Plan, c *cache.Cache) (Stats, error) {
	start := time.Now()
	s.units.Store(0)
	s.failed.Store(0)
	s.skipped.Store(0)

	g := new(errgroup.Group)
	g.SetLimit(s.regionConcurrency)
	for region, ops := range s.regionBatches(plan) {
		g.Go(func() error {
			units := make([]Unit, 0, len(ops))
			for _, op := range ops {
				units = append(units, Unit{Op: op, Region: region})
			}
			return s.runBatch(ctx, plan, c, units)
		})
	}
	err := g.Wait()
	if err == nil {
		err = ctx.Err()
	}

	stats := Stats{Units: s.units.Load(), Failed: s.failed.Load(), Skipped: s.skipped.Load()}
	s.logger.Info("collection complete",
		"operations", plan.Len(),
		"regions", len(plan.Regions),
		"units", stats.Units,
		"failed", stats.Failed,
		"skipped", stats.Skipped,
		"duration", time.Since(start).String(),
	)
	return stats, err
}

// regionBatches groups root operations by the region they run in. Pinned
// global operations join the batch of their pinned region.
func (s *Scheduler) regionBatches(plan *Plan) map[string][]Operation {
	batches := make(map[string][]Operation)
	for _, op := range plan.Roots() {
		if op.Region != "" {
			batches[op.Region] = append(batches[op.Region], op)
			continue
		}
		for _, region := range plan.Regions {
			batches[region] = append(batches[region], op)
		}
	}
	return batches
}

// runBatch runs units with at most s.concurrency in flight. Each unit's
// dependents run as their own batch once the unit's node is written.
func (s *Scheduler) runBatch(ctx context.Context, plan *Plan, c *cache.Cache, units []Unit) error {
	g := new(errgroup.Group)
	g.SetLimit(s.concurrency)
	for _, u := range units {
		g.Go(func() error {
			node, err := s.runUnit(ctx, c, u)
			if err != nil {
				return err
			}
			return s.runDependents(ctx, plan, c, u, node)
		})
	}
	return g.Wait()
}

func (s *Scheduler) runUnit(ctx context.Context, c *cache.Cache, u Unit) (*cache.Node, error) {
	key := u.Key()
	done := metrics.UnitStarted(u.Op.API.Service, u.Op.API.Operation)
	start := time.Now()

	var node *cache.Node
	var outcome string
	if s.limiter != nil {
		if err := s.limiter.Wait(ctx); err != nil {
			node, outcome = cache.ErrNode(err), metrics.OutcomeError
		}
	}
	if node == nil {
		node, outcome = u.run(ctx, s.unitTimeout)
	}
	done(outcome)
	s.units.Add(1)

	if node.Err != nil {
		s.failed.Add(1)
		s.logger.Warn("collector unit failed",
			"key", key.String(),
			"error", node.Err.Error(),
			"duration", time.Since(start).String(),
		)
	} else {
		s.logger.Debug("collector unit complete",
			"key", key.String(),
			"items", itemCount(node.Data),
			"duration", time.Since(start).String(),
		)
	}
	return node, c.Put(key, node)
}

// runDependents fans out the children of u over the identifiers its node
// yields. A failed or empty parent leaves every child key absent.
func (s *Scheduler) runDependents(ctx context.Context, plan *Plan, c *cache.Cache, parent Unit, node *cache.Node) error {
	children := plan.Children(parent.Op.API)
	if len(children) == 0 {
		return nil
	}
	if !node.OK() || itemCount(node.Data) == 0 {
		for _, child := range children {
			s.skipped.Add(1)
			metrics.UnitSkipped(child.API.Service, child.API.Operation)
		}
		s.logger.Debug("dependent fetch skipped", "parent", parent.Key().String(), "children", len(children))
		return nil
	}

	var units []Unit
	for _, child := range children {
		for _, id := range dedupe(child.ParentIDs(node.Data)) {
			path := make([]string, 0, len(parent.Path)+1)
			path = append(path, parent.Path...)
			path = append(path, id)
			units = append(units, Unit{Op: child, Region: parent.Region, Path: path})
		}
	}
	return s.runBatch(ctx, plan, c, units)
}

func dedupe(ids []string) []string {
	seen := make(map[string]bool, len(ids))
	out := ids[:0:0]
	for _, id := range ids {
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}
