package guard

import (
	"log/slog"
	"sync"
)

// ExposureConfig holds the stake ceilings. Enforce is normally true; test
// and CI environments disable it so fixtures do not trip the limits.
type ExposureConfig struct {
	PerMatchLimit   float64
	PerAccountLimit float64
	Enforce         bool
}

// exposureRecord tracks the committed stake for one account.
type exposureRecord struct {
	total   float64
	byMatch map[string]float64
}

// ExposureTracker enforces per-match and per-account stake ceilings. All
// mutation happens under one mutex; Reserve checks and records in a single
// hold so concurrent callers on different matches cannot jointly overshoot
// a shared account's ceiling.
type ExposureTracker struct {
	cfg    ExposureConfig
	logger *slog.Logger

	mu       sync.Mutex
	accounts map[string]*exposureRecord
}

// NewExposureTracker creates an empty tracker.
func NewExposureTracker(cfg ExposureConfig, logger *slog.Logger) *ExposureTracker {
	return &ExposureTracker{
		cfg:      cfg,
		logger:   logger.With(slog.String("component", "exposure_tracker")),
		accounts: make(map[string]*exposureRecord),
	}
}

// Stake is one account's share of a reservation.
type Stake struct {
	AccountID string
	Amount    float64
}

// Reserve commits all stakes or none of them. The ceiling checks and the
// commit happen under one mutex hold, so two overlapping executions cannot
// jointly clear a shared account's ceiling between check and record. With
// enforcement off the stakes are still recorded.
func (t *ExposureTracker) Reserve(matchID string, stakes []Stake) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.cfg.Enforce {
		// Total per account first so two stakes landing on one account
		// are checked jointly.
		perAccount := make(map[string]float64, len(stakes))
		for _, s := range stakes {
			perAccount[s.AccountID] += s.Amount
		}
		for accountID, amount := range perAccount {
			if !t.fitsLocked(accountID, matchID, amount) {
				return false
			}
		}
	}

	for _, s := range stakes {
		t.addLocked(s.AccountID, matchID, s.Amount)
	}
	return true
}

// CanPlace reports whether amount can be committed for the account and match
// without exceeding either ceiling. Always true when enforcement is off.
func (t *ExposureTracker) CanPlace(accountID, matchID string, amount float64) bool {
	if !t.cfg.Enforce {
		return true
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	return t.fitsLocked(accountID, matchID, amount)
}

func (t *ExposureTracker) fitsLocked(accountID, matchID string, amount float64) bool {
	rec := t.accounts[accountID]
	var matchTotal, accountTotal float64
	if rec != nil {
		matchTotal = rec.byMatch[matchID]
		accountTotal = rec.total
	}

	if t.cfg.PerMatchLimit > 0 && matchTotal+amount > t.cfg.PerMatchLimit {
		t.logger.Warn("per-match exposure ceiling reached",
			slog.String("account_id", accountID),
			slog.String("match_id", matchID),
			slog.Float64("committed", matchTotal),
			slog.Float64("requested", amount),
			slog.Float64("limit", t.cfg.PerMatchLimit),
		)
		return false
	}
	if t.cfg.PerAccountLimit > 0 && accountTotal+amount > t.cfg.PerAccountLimit {
		t.logger.Warn("per-account exposure ceiling reached",
			slog.String("account_id", accountID),
			slog.Float64("committed", accountTotal),
			slog.Float64("requested", amount),
			slog.Float64("limit", t.cfg.PerAccountLimit),
		)
		return false
	}
	return true
}

// Add records a placed stake.
func (t *ExposureTracker) Add(accountID, matchID string, amount float64) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.addLocked(accountID, matchID, amount)
}

func (t *ExposureTracker) addLocked(accountID, matchID string, amount float64) {
	rec := t.accounts[accountID]
	if rec == nil {
		rec = &exposureRecord{byMatch: make(map[string]float64)}
		t.accounts[accountID] = rec
	}
	rec.total += amount
	rec.byMatch[matchID] += amount
}

// Reduce releases a previously recorded stake, flooring at zero.
func (t *ExposureTracker) Reduce(accountID, matchID string, amount float64) {
	t.mu.Lock()
	defer t.mu.Unlock()

	rec := t.accounts[accountID]
	if rec == nil {
		return
	}
	rec.total -= amount
	if rec.total < 0 {
		rec.total = 0
	}
	rec.byMatch[matchID] -= amount
	if rec.byMatch[matchID] <= 0 {
		delete(rec.byMatch, matchID)
	}
}

// ResetMatch clears the account's exposure for one match, releasing it from
// the account total as well.
func (t *ExposureTracker) ResetMatch(accountID, matchID string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	rec := t.accounts[accountID]
	if rec == nil {
		return
	}
	rec.total -= rec.byMatch[matchID]
	if rec.total < 0 {
		rec.total = 0
	}
	delete(rec.byMatch, matchID)
}

// Exposure returns the account's current total and per-match stake for
// matchID.
func (t *ExposureTracker) Exposure(accountID, matchID string) (total, match float64) {
	t.mu.Lock()
	defer t.mu.Unlock()

	rec := t.accounts[accountID]
	if rec == nil {
		return 0, 0
	}
	return rec.total, rec.byMatch[matchID]
}
