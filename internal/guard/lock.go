package guard

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
)

// LockEntry is one in-flight execution.
type LockEntry struct {
	MatchID   string
	Token     string
	StartedAt time.Time
}

// ExecutionLock is a single-process mutual-exclusion primitive keyed by
// match id: at most one execution may be in flight per match. Each holder
// gets a token; a leg completing after the watchdog force-released its entry
// can detect that via Owns before committing its result.
type ExecutionLock struct {
	mu      sync.Mutex
	entries map[string]LockEntry
	logger  *slog.Logger
}

// NewExecutionLock creates an empty lock map.
func NewExecutionLock(logger *slog.Logger) *ExecutionLock {
	return &ExecutionLock{
		entries: make(map[string]LockEntry),
		logger:  logger.With(slog.String("component", "execution_lock")),
	}
}

// TryBegin acquires the lock for matchID. It returns the holder token and
// true, or "" and false when an execution is already in flight.
func (l *ExecutionLock) TryBegin(matchID string) (string, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if _, held := l.entries[matchID]; held {
		return "", false
	}
	token := uuid.New().String()
	l.entries[matchID] = LockEntry{MatchID: matchID, Token: token, StartedAt: time.Now()}
	return token, true
}

// End releases the lock for matchID regardless of holder.
func (l *ExecutionLock) End(matchID string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.entries, matchID)
}

// IsExecuting reports whether an execution is in flight for matchID.
func (l *ExecutionLock) IsExecuting(matchID string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	_, held := l.entries[matchID]
	return held
}

// Owns reports whether the entry for matchID still belongs to token. A
// false return after a successful TryBegin means the watchdog force-released
// the entry; the holder must discard its result instead of committing it.
func (l *ExecutionLock) Owns(matchID, token string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	e, held := l.entries[matchID]
	return held && e.Token == token
}

// Stale returns the entries held longer than timeout.
func (l *ExecutionLock) Stale(timeout time.Duration) []LockEntry {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := time.Now()
	var stale []LockEntry
	for _, e := range l.entries {
		if now.Sub(e.StartedAt) > timeout {
			stale = append(stale, e)
		}
	}
	return stale
}

// ForceRelease removes the entry for matchID, reporting whether one existed.
func (l *ExecutionLock) ForceRelease(matchID string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	if _, held := l.entries[matchID]; !held {
		return false
	}
	delete(l.entries, matchID)
	return true
}

// Watchdog polls for stale entries every interval and force-releases any
// execution held past staleness. It does not cancel the underlying leg call;
// it only frees the match for a future attempt. Blocks until ctx is done.
func (l *ExecutionLock) Watchdog(ctx context.Context, interval, staleness time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			for _, e := range l.Stale(staleness) {
				if l.ForceRelease(e.MatchID) {
					l.logger.Warn("force-released stale execution lock",
						slog.String("match_id", e.MatchID),
						slog.Duration("held_for", time.Since(e.StartedAt)),
					)
				}
			}
		}
	}
}
