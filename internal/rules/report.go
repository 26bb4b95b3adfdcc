package rules

import (
	"fmt"

	"github.com/pankaj-dahiya-devops/cloudscan/internal/cache"
	"github.com/pankaj-dahiya-devops/cloudscan/internal/models"
)

// report accumulates the findings of one rule invocation.
type report struct {
	desc     Descriptor
	ctx      Context
	findings []models.Finding
}

func newReport(desc Descriptor, ctx Context) *report {
	return &report{desc: desc, ctx: ctx}
}

// add appends one finding. resource may be empty for region-level results.
func (r *report) add(status models.Status, region, resource, format string, args ...any) {
	msg := format
	if len(args) > 0 {
		msg = fmt.Sprintf(format, args...)
	}
	id := r.desc.ID + "-" + region
	if resource != "" {
		id += "-" + resource
	}
	r.findings = append(r.findings, models.Finding{
		ID:         id,
		RuleID:     r.desc.ID,
		Title:      r.desc.Title,
		Category:   r.desc.Category,
		Provider:   r.desc.Provider,
		Status:     status,
		Message:    msg,
		Region:     region,
		Resource:   resource,
		AccountID:  r.ctx.AccountID,
		Profile:    r.ctx.Profile,
		DetectedAt: r.ctx.Now,
	})
}

func (r *report) ok(region, resource, format string, args ...any) {
	r.add(models.StatusOK, region, resource, format, args...)
}

func (r *report) warn(region, resource, format string, args ...any) {
	r.add(models.StatusWarn, region, resource, format, args...)
}

func (r *report) fail(region, resource, format string, args ...any) {
	r.add(models.StatusFail, region, resource, format, args...)
}

func (r *report) unknown(region, resource, format string, args ...any) {
	r.add(models.StatusUnknown, region, resource, format, args...)
}

// read reads a top-level collection for one region. It returns ok=false when
// the caller should stop evaluating the region:
//   - key absent: the region was not collected; nothing is reported
//   - error or missing data: one UNKNOWN finding quoting the error
func read[T any](r *report, key cache.Key, what string) ([]T, bool) {
	node, present := r.ctx.Cache.Get(key)
	if !present {
		return nil, false
	}
	items, ok := cache.As[[]T](node)
	if !ok {
		r.unknown(key.Region, "", "Unable to query for %s: %s", what, node.ErrorMessage())
		return nil, false
	}
	return items, true
}

// list is read for collections whose emptiness is compliant: zero items
// produce one OK finding "No <what> found" and ok=false.
func list[T any](r *report, key cache.Key, what string) ([]T, bool) {
	items, ok := read[T](r, key, what)
	if !ok {
		return nil, false
	}
	if len(items) == 0 {
		r.ok(key.Region, "", "No %s found", what)
		return nil, false
	}
	return items, true
}

// detail reads a per-resource node whose parent was listed successfully. An
// absent node here means its fetch never ran, so it is reported as UNKNOWN
// against the resource rather than skipped.
func detail[T any](r *report, key cache.Key, what, resource string) (T, bool) {
	node, _ := r.ctx.Cache.Get(key)
	v, ok := cache.As[T](node)
	if !ok {
		r.unknown(key.Region, resource, "Unable to query for %s: %s", what, node.ErrorMessage())
	}
	return v, ok
}
