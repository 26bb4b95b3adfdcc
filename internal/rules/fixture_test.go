package rules

import (
	"errors"
	"testing"
	"time"

	"github.com/pankaj-dahiya-devops/cloudscan/internal/cache"
	"github.com/pankaj-dahiya-devops/cloudscan/internal/collector"
	"github.com/pankaj-dahiya-devops/cloudscan/internal/models"
	"github.com/pankaj-dahiya-devops/cloudscan/internal/settings"
)

// testNow is the evaluation timestamp used by every rule test.
var testNow = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

// fixture builds a frozen cache and the region set a scan would have produced.
type fixture struct {
	t       *testing.T
	cache   *cache.Cache
	regions collector.RegionSet
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	return &fixture{t: t, cache: cache.New(), regions: make(collector.RegionSet)}
}

// collected marks service as collected in region without writing any node.
func (f *fixture) collected(service, region string) *fixture {
	for _, r := range f.regions[service] {
		if r == region {
			return f
		}
	}
	f.regions[service] = append(f.regions[service], region)
	return f
}

func (f *fixture) data(key cache.Key, v any) *fixture {
	f.t.Helper()
	if err := f.cache.Put(key, cache.DataNode(v)); err != nil {
		f.t.Fatalf("put %s: %v", key, err)
	}
	return f.collected(key.Service, key.Region)
}

func (f *fixture) fail(key cache.Key, msg string) *fixture {
	f.t.Helper()
	return f.failWith(key, errors.New(msg))
}

func (f *fixture) failWith(key cache.Key, err error) *fixture {
	f.t.Helper()
	if err := f.cache.Put(key, cache.ErrNode(err)); err != nil {
		f.t.Fatalf("put %s: %v", key, err)
	}
	return f.collected(key.Service, key.Region)
}

// eval freezes the cache and evaluates r with the given overrides.
func (f *fixture) eval(r Rule, overrides map[string]any) []models.Finding {
	f.t.Helper()
	f.cache.Freeze()
	return r.Evaluate(Context{
		Cache:     f.cache,
		Settings:  settings.Resolve(r.Describe().Settings, overrides),
		Regions:   f.regions,
		Now:       testNow,
		AccountID: "123456789012",
		Profile:   "test",
	})
}

// expectOne asserts exactly one finding with status and returns it.
func expectOne(t *testing.T, findings []models.Finding, status models.Status) models.Finding {
	t.Helper()
	if len(findings) != 1 {
		t.Fatalf("expected 1 finding, got %d: %+v", len(findings), findings)
	}
	if findings[0].Status != status {
		t.Fatalf("expected %s, got %s (%s)", status, findings[0].Status, findings[0].Message)
	}
	return findings[0]
}

// statuses counts findings by status.
func statuses(findings []models.Finding) map[models.Status]int {
	out := make(map[models.Status]int)
	for _, f := range findings {
		out[f.Status]++
	}
	return out
}
