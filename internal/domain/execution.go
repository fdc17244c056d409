package domain

import "time"

// LegStatus is the outcome of a single bet-placement call.
type LegStatus string

const (
	LegAccepted LegStatus = "ACCEPTED"
	LegRejected LegStatus = "REJECTED"
	LegFailed   LegStatus = "FAILED"
	LegSkipped  LegStatus = "SKIPPED"
)

// ExecutionStatus is the terminal state of one execution attempt.
type ExecutionStatus string

const (
	ExecutionSuccess ExecutionStatus = "SUCCESS"
	ExecutionAborted ExecutionStatus = "ABORTED"
	ExecutionPartial ExecutionStatus = "PARTIAL"
	ExecutionFailed  ExecutionStatus = "FAILED"
	ExecutionHedged  ExecutionStatus = "HEDGED"
)

// BetRequest is the payload handed to a provider placement client.
type BetRequest struct {
	MatchID   string
	OddsID    string
	Selection Selection
	Odds      float64
	Stake     float64
}

// BetResult is the provider's answer to a placement request. Provider
// errors never surface as Go errors out of the engine; they are folded into
// Status/ErrorMessage here.
type BetResult struct {
	Status       LegStatus
	BetID        string
	ErrorMessage string
}

// LegResult records how one leg of an execution ended.
type LegResult struct {
	Provider     string
	Selection    Selection
	Odds         float64
	Stake        float64
	Status       LegStatus
	BetID        string
	ErrorMessage string
}

// ExecutionResult is the audit record of one execution attempt. SecondBet is
// nil only when the attempt aborted before leg 2 was planned.
type ExecutionResult struct {
	ID          string
	EventID     string
	MarketType  MarketType
	Line        float64
	FirstBet    LegResult
	SecondBet   *LegResult
	FinalStatus ExecutionStatus
	Timestamp   time.Time
}

// HedgeEvent is the best-effort compensation record written when the two
// legs of an execution diverge.
type HedgeEvent struct {
	ID        string
	AuditID   string
	Provider  string
	Selection Selection
	Odds      float64
	Stake     float64
	Details   string
	Timestamp time.Time
}
