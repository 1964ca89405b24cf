// Package fetch is the one data-loading helper every page uses. A page asks
// for one or more resources by key and gets back a Result per key that holds
// either the data or an error, never both.
package fetch

import (
	"context"
	"sync"

	"golang.org/x/sync/errgroup"

	applog "mibolsillo/internal/log"
)

// Result is the outcome of loading one resource.
type Result[T any] struct {
	Key  string
	Data T
	Err  error
}

// OK reports whether the data is usable.
func (r Result[T]) OK() bool { return r.Err == nil }

// Loader fetches one resource.
type Loader[T any] func(ctx context.Context) (T, error)

// Load runs one loader and logs a failure under key.
func Load[T any](ctx context.Context, key string, load Loader[T]) Result[T] {
	data, err := load(ctx)
	if err != nil {
		applog.FromContext(ctx).WarnContext(ctx, "Resource load failed",
			applog.FieldResource, key,
			applog.FieldError, err)
		var zero T
		return Result[T]{Key: key, Data: zero, Err: err}
	}
	return Result[T]{Key: key, Data: data}
}

// Group loads several resources concurrently. Failures are recorded per key
// and do not cancel the other loads.
type Group struct {
	g    *errgroup.Group
	ctx  context.Context
	mu   sync.Mutex
	errs map[string]error
}

// NewGroup returns a group bound to ctx. limit caps concurrent loads; zero
// or less means no limit.
func NewGroup(ctx context.Context, limit int) *Group {
	g, gctx := errgroup.WithContext(ctx)
	if limit > 0 {
		g.SetLimit(limit)
	}
	return &Group{g: g, ctx: gctx, errs: map[string]error{}}
}

// Go schedules load and writes its result into dst once it finishes.
func Go[T any](grp *Group, key string, dst *Result[T], load Loader[T]) {
	grp.g.Go(func() error {
		*dst = Load(grp.ctx, key, load)
		if dst.Err != nil {
			grp.mu.Lock()
			grp.errs[key] = dst.Err
			grp.mu.Unlock()
		}
		return nil
	})
}

// Wait blocks until every load has finished and returns the failures by key.
func (grp *Group) Wait() map[string]error {
	_ = grp.g.Wait()
	grp.mu.Lock()
	defer grp.mu.Unlock()
	return grp.errs
}
