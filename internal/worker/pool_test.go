package worker

import (
	"context"
	"sync"
	"testing"
)

func TestPoolProcessesRequests(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	p := NewPool(8, func(n int) int { return n * n })

	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = p.Run(ctx, 4)
	}()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			got, err := p.Do(ctx, n)
			if err != nil {
				t.Errorf("Do(%d): %v", n, err)
				return
			}
			if got != n*n {
				t.Errorf("Do(%d) = %d, want %d", n, got, n*n)
			}
		}(i)
	}
	wg.Wait()

	cancel()
	<-done
}

func TestPoolDoCancelled(t *testing.T) {
	p := NewPool[int, int](1, func(n int) int { return n })
	// No workers running: Do must unblock on cancellation.
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := p.Do(ctx, 1); err != context.Canceled {
		t.Fatalf("Do on cancelled context = %v, want context.Canceled", err)
	}
}

func TestPoolRunStopsOnCancel(t *testing.T) {
	p := NewPool(1, func(n int) int { return n })
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := p.Run(ctx, 2); err != context.Canceled {
		t.Fatalf("Run = %v, want context.Canceled", err)
	}
}
