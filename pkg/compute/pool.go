// Package compute runs independent index-addressed tasks on a bounded set of
// worker goroutines.
package compute

import (
	"context"
	"fmt"
	"runtime"
	"sync"
	"sync/atomic"
)

// Pool executes tasks 0..n-1 with a fixed number of workers
type Pool struct {
	workers  int
	progress func(done, total int)
}

// Option configures a Pool
type Option func(*Pool)

// WithProgress registers a callback invoked after each completed task. It
// is called from worker goroutines and must be safe for concurrent use.
func WithProgress(fn func(done, total int)) Option {
	return func(p *Pool) { p.progress = fn }
}

// NewPool creates a pool. workers ≤ 0 uses runtime.NumCPU().
func NewPool(workers int, opts ...Option) *Pool {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	p := &Pool{workers: workers}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Workers returns the worker count
func (p *Pool) Workers() int { return p.workers }

// Run calls task(i) for every i in [0, n). Tasks must write only to state
// owned by their index. Run stops handing out work once ctx is done and
// returns ctx.Err(); a panicking task is converted into an error.
func (p *Pool) Run(ctx context.Context, n int, task func(i int)) error {
	if err := ctx.Err(); err != nil || n <= 0 {
		return err
	}

	indices := make(chan int)
	var (
		wg       sync.WaitGroup
		done     atomic.Int64
		errOnce  sync.Once
		panicErr error
	)

	workers := p.workers
	if workers > n {
		workers = n
	}
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range indices {
				if err := p.runTask(task, i); err != nil {
					errOnce.Do(func() { panicErr = err })
					continue
				}
				finished := done.Add(1)
				if p.progress != nil {
					p.progress(int(finished), n)
				}
			}
		}()
	}

	var ctxErr error
feed:
	for i := 0; i < n; i++ {
		select {
		case <-ctx.Done():
			ctxErr = ctx.Err()
			break feed
		case indices <- i:
		}
	}
	close(indices)
	wg.Wait()

	if ctxErr != nil {
		return ctxErr
	}
	return panicErr
}

func (p *Pool) runTask(task func(int), i int) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("task %d panicked: %v", i, r)
		}
	}()
	task(i)
	return nil
}
