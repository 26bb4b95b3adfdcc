// Package collector populates the source cache. An Operation describes how to
// fetch one provider API; the Scheduler runs one Collector Unit per
// (operation, region, parent path) with bounded concurrency and writes each
// result into the cache exactly once.
package collector

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/pankaj-dahiya-devops/cloudscan/internal/cache"
)

// ErrUncoveredAPI is returned by Catalog.Plan when a rule declares an API no
// operation populates.
var ErrUncoveredAPI = errors.New("no collector operation for API")

// FetchFunc fetches every page of one cache key and returns the accumulated
// items. path holds the parent identifiers of a dependent fetch, outermost
// first. Implementations page sequentially and return the first page error.
type FetchFunc func(ctx context.Context, region string, path []string) (any, error)

// Operation describes one provider API the collector can populate.
type Operation struct {
	API cache.API

	// Region pins a global API to a single region (IAM and S3 account-level
	// calls are recorded under us-east-1). Empty means once per scanned region.
	Region string

	// Parent is set on dependent operations. The operation runs once per
	// identifier ParentIDs extracts from each successful parent node.
	Parent *cache.API

	// ParentIDs extracts child identifiers from the parent node's data.
	ParentIDs func(data any) []string

	Fetch FetchFunc
}

// Dependent reports whether the operation waits on a parent.
func (o Operation) Dependent() bool {
	return o.Parent != nil
}

// IDs adapts a typed identifier extractor to Operation.ParentIDs.
func IDs[T any](id func(T) string) func(any) []string {
	return func(data any) []string {
		items, ok := data.([]T)
		if !ok {
			return nil
		}
		ids := make([]string, 0, len(items))
		for _, item := range items {
			if v := id(item); v != "" {
				ids = append(ids, v)
			}
		}
		return ids
	}
}

// Catalog is the set of operations one provider can run.
type Catalog struct {
	ops   map[cache.API]Operation
	order []cache.API
}

// NewCatalog returns a catalog of ops. It panics on a duplicate API or a
// dependent operation whose parent is not in the catalog, both of which are
// wiring mistakes.
func NewCatalog(ops ...Operation) *Catalog {
	c := &Catalog{ops: make(map[cache.API]Operation, len(ops))}
	for _, op := range ops {
		if _, exists := c.ops[op.API]; exists {
			panic(fmt.Sprintf("duplicate collector operation: %q", op.API))
		}
		if op.Fetch == nil {
			panic(fmt.Sprintf("collector operation %q has no fetch", op.API))
		}
		c.ops[op.API] = op
		c.order = append(c.order, op.API)
	}
	for _, op := range ops {
		if op.Parent == nil {
			continue
		}
		if _, ok := c.ops[*op.Parent]; !ok {
			panic(fmt.Sprintf("collector operation %q depends on unknown %q", op.API, *op.Parent))
		}
		if op.ParentIDs == nil {
			panic(fmt.Sprintf("collector operation %q has no parent id extractor", op.API))
		}
	}
	return c
}

// APIs returns every API the catalog covers, in registration order.
func (c *Catalog) APIs() []cache.API {
	out := make([]cache.API, len(c.order))
	copy(out, c.order)
	return out
}

// Covers reports whether api has an operation.
func (c *Catalog) Covers(api cache.API) bool {
	_, ok := c.ops[api]
	return ok
}

// Plan selects the operations needed to populate apis across regions. Parent
// operations are added automatically. Every API without an operation is
// reported in a single ErrUncoveredAPI error before anything runs.
func (c *Catalog) Plan(apis []cache.API, regions []string) (*Plan, error) {
	selected := make(map[cache.API]bool)
	var uncovered []string
	for _, api := range apis {
		op, ok := c.ops[api]
		if !ok {
			uncovered = append(uncovered, api.String())
			continue
		}
		for {
			selected[op.API] = true
			if op.Parent == nil {
				break
			}
			op = c.ops[*op.Parent]
		}
	}
	if len(uncovered) > 0 {
		sort.Strings(uncovered)
		return nil, fmt.Errorf("%w: %s", ErrUncoveredAPI, strings.Join(uncovered, ", "))
	}

	p := &Plan{
		Regions:  append([]string(nil), regions...),
		children: make(map[cache.API][]Operation),
		regions:  make(RegionSet),
	}
	for _, api := range c.order {
		if !selected[api] {
			continue
		}
		op := c.ops[api]
		if op.Parent != nil {
			p.children[*op.Parent] = append(p.children[*op.Parent], op)
		} else {
			p.roots = append(p.roots, op)
		}
		p.regions.add(op.API.Service, p.regionsFor(c.rootOf(op)))
	}
	return p, nil
}

func (c *Catalog) rootOf(op Operation) Operation {
	for op.Parent != nil {
		op = c.ops[*op.Parent]
	}
	return op
}

// Plan is the resolved set of operations for one provider run.
type Plan struct {
	// Regions are the regions regional operations run in.
	Regions []string

	roots    []Operation
	children map[cache.API][]Operation
	regions  RegionSet
}

// Roots returns the operations without a parent.
func (p *Plan) Roots() []Operation {
	return p.roots
}

// Children returns the operations that depend on api.
func (p *Plan) Children(api cache.API) []Operation {
	return p.children[api]
}

// Len returns the number of planned operations.
func (p *Plan) Len() int {
	n := len(p.roots)
	for _, ops := range p.children {
		n += len(ops)
	}
	return n
}

// RegionSet returns the regions each planned service was collected in.
func (p *Plan) RegionSet() RegionSet {
	return p.regions
}

// regionsFor returns the regions a root operation runs in.
func (p *Plan) regionsFor(op Operation) []string {
	if op.Region != "" {
		return []string{op.Region}
	}
	return p.Regions
}

// RegionSet maps a service name to the regions its data was collected in.
// Rules iterate RegionSet.For(service) to find their cache keys.
type RegionSet map[string][]string

// For returns the regions collected for service.
func (r RegionSet) For(service string) []string {
	return r[service]
}

// Merge adds every entry of other to r.
func (r RegionSet) Merge(other RegionSet) {
	for svc, regions := range other {
		r.add(svc, regions)
	}
}

func (r RegionSet) add(service string, regions []string) {
	existing := r[service]
	seen := make(map[string]bool, len(existing))
	for _, reg := range existing {
		seen[reg] = true
	}
	for _, reg := range regions {
		if !seen[reg] {
			existing = append(existing, reg)
			seen[reg] = true
		}
	}
	r[service] = existing
}
