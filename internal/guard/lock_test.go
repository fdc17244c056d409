package guard

import (
	"sync"
	"testing"
	"time"
)

func TestLockSingleFlight(t *testing.T) {
	l := NewExecutionLock(testLogger())

	token, ok := l.TryBegin("m1")
	if !ok || token == "" {
		t.Fatal("first TryBegin must succeed with a token")
	}
	if _, ok := l.TryBegin("m1"); ok {
		t.Fatal("second TryBegin for the same match must fail")
	}
	if _, ok := l.TryBegin("m2"); !ok {
		t.Fatal("a different match must lock independently")
	}

	if !l.IsExecuting("m1") {
		t.Fatal("m1 must report executing")
	}
	l.End("m1")
	if l.IsExecuting("m1") {
		t.Fatal("m1 must be released after End")
	}
	if _, ok := l.TryBegin("m1"); !ok {
		t.Fatal("TryBegin must succeed again after End")
	}
}

func TestLockConcurrentTryBegin(t *testing.T) {
	l := NewExecutionLock(testLogger())

	const n = 32
	var (
		wg   sync.WaitGroup
		won  int
		wonM sync.Mutex
	)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, ok := l.TryBegin("m1"); ok {
				wonM.Lock()
				won++
				wonM.Unlock()
			}
		}()
	}
	wg.Wait()

	if won != 1 {
		t.Fatalf("%d goroutines acquired the lock, want exactly 1", won)
	}
}

func TestLockOwnership(t *testing.T) {
	l := NewExecutionLock(testLogger())

	token, _ := l.TryBegin("m1")
	if !l.Owns("m1", token) {
		t.Fatal("holder must own its lock")
	}
	if l.Owns("m1", "someone-else") {
		t.Fatal("a foreign token must not own the lock")
	}

	// After a forced release and re-acquisition, the old token is stale.
	if !l.ForceRelease("m1") {
		t.Fatal("ForceRelease must release a held lock")
	}
	token2, ok := l.TryBegin("m1")
	if !ok {
		t.Fatal("TryBegin must succeed after ForceRelease")
	}
	if l.Owns("m1", token) {
		t.Fatal("the pre-release token must no longer own the lock")
	}
	if !l.Owns("m1", token2) {
		t.Fatal("the new holder must own the lock")
	}
}

func TestLockStale(t *testing.T) {
	l := NewExecutionLock(testLogger())

	l.TryBegin("m1")
	if stale := l.Stale(time.Hour); len(stale) != 0 {
		t.Fatalf("fresh lock reported stale: %v", stale)
	}

	time.Sleep(10 * time.Millisecond)
	stale := l.Stale(time.Millisecond)
	if len(stale) != 1 || stale[0].MatchID != "m1" {
		t.Fatalf("Stale = %v, want one entry for m1", stale)
	}
}

func TestForceReleaseUnheld(t *testing.T) {
	l := NewExecutionLock(testLogger())
	if l.ForceRelease("m1") {
		t.Fatal("ForceRelease of an unheld match must report false")
	}
}
