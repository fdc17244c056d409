// Package worker provides a bounded task queue for CPU-bound batch stages.
// The dispatching goroutine and the workers exchange typed request and
// response values over channels and share no mutable state.
package worker

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// task pairs one request with its reply channel.
type task[Req, Resp any] struct {
	payload Req
	reply   chan Resp
}

// Pool runs a fixed number of workers over a bounded queue. Req values are
// handed to the worker function by value; Resp values travel back the same
// way.
type Pool[Req, Resp any] struct {
	fn    func(Req) Resp
	tasks chan task[Req, Resp]
}

// NewPool creates a pool whose workers apply fn to each submitted request.
// queue bounds the number of submissions waiting for a worker.
func NewPool[Req, Resp any](queue int, fn func(Req) Resp) *Pool[Req, Resp] {
	if queue < 1 {
		queue = 1
	}
	return &Pool[Req, Resp]{
		fn:    fn,
		tasks: make(chan task[Req, Resp], queue),
	}
}

// Run starts workers goroutines and blocks until ctx is cancelled.
func (p *Pool[Req, Resp]) Run(ctx context.Context, workers int) error {
	if workers < 1 {
		workers = 1
	}
	g, ctx := errgroup.WithContext(ctx)
	for i := 0; i < workers; i++ {
		g.Go(func() error {
			for {
				select {
				case <-ctx.Done():
					return ctx.Err()
				case t := <-p.tasks:
					t.reply <- p.fn(t.payload)
				}
			}
		})
	}
	return g.Wait()
}

// Do submits one request and waits for its response. Returns ctx.Err() when
// cancelled while queued or in flight.
func (p *Pool[Req, Resp]) Do(ctx context.Context, req Req) (Resp, error) {
	t := task[Req, Resp]{payload: req, reply: make(chan Resp, 1)}
	select {
	case <-ctx.Done():
		var zero Resp
		return zero, ctx.Err()
	case p.tasks <- t:
	}
	select {
	case <-ctx.Done():
		var zero Resp
		return zero, ctx.Err()
	case resp := <-t.reply:
		return resp, nil
	}
}
