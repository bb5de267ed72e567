// Package workerpool bounds how many CPU-heavy jobs (password key
// derivation) run at once, so a burst of logins queues here instead of
// starving the rest of the server.
package workerpool

import (
	"context"
	"runtime"

	"golang.org/x/sync/semaphore"
)

// Pool admits at most Size jobs concurrently. Waiting callers give up when
// their context ends.
type Pool struct {
	sem  *semaphore.Weighted
	size int
}

// New returns a pool of the given size; size < 1 means runtime.NumCPU().
func New(size int) *Pool {
	if size < 1 {
		size = runtime.NumCPU()
	}
	return &Pool{sem: semaphore.NewWeighted(int64(size)), size: size}
}

// Size is the concurrency limit.
func (p *Pool) Size() int {
	return p.size
}

// Do runs fn once a slot is free. It returns ctx.Err() without running fn
// if ctx ends first.
func (p *Pool) Do(ctx context.Context, fn func()) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := p.sem.Acquire(ctx, 1); err != nil {
		return err
	}
	defer p.sem.Release(1)

	fn()
	return nil
}

// Run is Do for jobs that produce a value.
func Run[T any](ctx context.Context, p *Pool, fn func() (T, error)) (T, error) {
	var (
		out T
		err error
	)
	if poolErr := p.Do(ctx, func() { out, err = fn() }); poolErr != nil {
		var zero T
		return zero, poolErr
	}
	return out, err
}
