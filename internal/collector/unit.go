package collector

import (
	"context"
	stderrors "errors"
	"fmt"
	"reflect"
	"time"

	"github.com/pankaj-dahiya-devops/cloudscan/internal/cache"
	"github.com/pankaj-dahiya-devops/cloudscan/internal/errors"
	"github.com/pankaj-dahiya-devops/cloudscan/internal/metrics"
)

// Unit is one fetch of one cache key.
type Unit struct {
	Op     Operation
	Region string
	Path   []string
}

// Key returns the cache key the unit writes.
func (u Unit) Key() cache.Key {
	return u.Op.API.Key(u.Region, u.Path...)
}

type fetchResult struct {
	data     any
	err      error
	panicked bool
}

// run executes the unit's fetch under timeout and converts the outcome into
// a cache node plus a metrics outcome label. It never returns a nil node and
// never panics.
func (u Unit) run(ctx context.Context, timeout time.Duration) (*cache.Node, string) {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	done := make(chan fetchResult, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- fetchResult{err: fmt.Errorf("collector panic: %v", r), panicked: true}
			}
		}()
		data, err := u.Op.Fetch(ctx, u.Region, u.Path)
		done <- fetchResult{data: data, err: err}
	}()

	var res fetchResult
	select {
	case res = <-done:
	case <-ctx.Done():
		res = fetchResult{err: ctx.Err()}
	}

	api := u.Op.API.String()
	switch {
	case res.panicked:
		return cache.ErrNode(errors.Wrap(errors.ErrCodeInternal, api, res.err)), metrics.OutcomePanic
	case res.err != nil && (stderrors.Is(res.err, context.DeadlineExceeded) || stderrors.Is(ctx.Err(), context.DeadlineExceeded)):
		return cache.ErrNode(errors.Wrap(errors.ErrCodeTimeout, api, res.err)), metrics.OutcomeTimeout
	case res.err != nil:
		var se *errors.StructuredError
		if stderrors.As(res.err, &se) {
			return cache.ErrNode(res.err), metrics.OutcomeError
		}
		return cache.ErrNode(errors.WrapWithContext(errors.Classify(res.err), api, res.err, map[string]any{
			"region": u.Region,
			"path":   u.Path,
		})), metrics.OutcomeError
	case res.data == nil:
		return cache.ErrNode(errors.New(errors.ErrCodeInternal, api+": fetch returned no data")), metrics.OutcomeError
	}
	return cache.DataNode(res.data), metrics.OutcomeOK
}

// itemCount returns the length of slice data, or -1 for non-slices.
func itemCount(data any) int {
	v := reflect.ValueOf(data)
	if v.Kind() == reflect.Slice {
		return v.Len()
	}
	return -1
}
