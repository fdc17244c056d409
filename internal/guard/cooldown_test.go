package guard

import (
	"context"
	"sort"
	"sync"
	"testing"
	"time"
)

func TestCooldownSpacesGrants(t *testing.T) {
	const interval = 30 * time.Millisecond
	c := NewCooldown(interval)
	ctx := context.Background()

	var (
		mu     sync.Mutex
		grants []time.Time
		wg     sync.WaitGroup
	)
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := c.Wait(ctx); err != nil {
				t.Errorf("Wait: %v", err)
				return
			}
			mu.Lock()
			grants = append(grants, time.Now())
			mu.Unlock()
		}()
	}
	wg.Wait()

	if len(grants) != 4 {
		t.Fatalf("got %d grants, want 4", len(grants))
	}
	sort.Slice(grants, func(i, j int) bool { return grants[i].Before(grants[j]) })
	for i := 1; i < len(grants); i++ {
		// Small tolerance: the grant timestamp is taken after Wait returns,
		// so scheduling can compress the observed gap slightly.
		if d := grants[i].Sub(grants[i-1]); d < interval-5*time.Millisecond {
			t.Fatalf("grants %v apart, want at least %v", d, interval)
		}
	}
}

func TestCooldownDisabled(t *testing.T) {
	c := NewCooldown(0)
	start := time.Now()
	for i := 0; i < 10; i++ {
		if err := c.Wait(context.Background()); err != nil {
			t.Fatalf("Wait: %v", err)
		}
	}
	if elapsed := time.Since(start); elapsed > 20*time.Millisecond {
		t.Fatalf("disabled cooldown blocked for %v", elapsed)
	}
}

func TestCooldownCancel(t *testing.T) {
	c := NewCooldown(time.Hour)
	ctx := context.Background()

	// First grant is immediate; the second would wait an hour.
	if err := c.Wait(ctx); err != nil {
		t.Fatalf("first Wait: %v", err)
	}

	ctx, cancel := context.WithTimeout(ctx, 20*time.Millisecond)
	defer cancel()
	if err := c.Wait(ctx); err != context.DeadlineExceeded {
		t.Fatalf("second Wait = %v, want context.DeadlineExceeded", err)
	}
}

func TestCooldownReset(t *testing.T) {
	c := NewCooldown(time.Hour)
	if err := c.Wait(context.Background()); err != nil {
		t.Fatalf("first Wait: %v", err)
	}
	c.Reset()

	done := make(chan error, 1)
	go func() { done <- c.Wait(context.Background()) }()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Wait after Reset: %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("Wait after Reset did not return promptly")
	}
}
