package domain

import (
	"context"
	"time"
)

// ListOpts provides pagination and time filtering for list queries.
type ListOpts struct {
	Limit  int
	Offset int
	Since  *time.Time
	Until  *time.Time
}

// ExecutionStore persists the execution audit trail.
type ExecutionStore interface {
	Create(ctx context.Context, res ExecutionResult) error
	UpdateStatus(ctx context.Context, id string, status ExecutionStatus) error
	GetByID(ctx context.Context, id string) (ExecutionResult, error)
	ListRecent(ctx context.Context, opts ListOpts) ([]ExecutionResult, error)
	ListBefore(ctx context.Context, before time.Time) ([]ExecutionResult, error)
}

// HedgeStore persists hedge events keyed by the audit row they compensate.
type HedgeStore interface {
	Create(ctx context.Context, ev HedgeEvent) error
	ListByAudit(ctx context.Context, auditID string) ([]HedgeEvent, error)
}

// RawBatch is one inbound odds batch: all raw items for one event from one
// provider, already tagged upstream with a resolved event id.
type RawBatch struct {
	EventID  string      `json:"event_id"`
	Provider string      `json:"provider"`
	Items    []RawMarket `json:"items"`
}

// FeedSource delivers raw odds batches from the external transport. Receive
// blocks until a batch arrives, the source closes (ErrFeedClosed), or ctx is
// done.
type FeedSource interface {
	Receive(ctx context.Context) (RawBatch, error)
	Close() error
}

// BetPlacer is the provider-facing placement contract. Implementations
// convert transport failures into BetResult{Status: LegFailed} and return a
// Go error only for programmer mistakes (nil request, bad config).
type BetPlacer interface {
	Name() string
	Place(ctx context.Context, req BetRequest) (BetResult, error)
}

// ReadinessProbe reports whether the surrounding system (sessions, feeds,
// provider health) currently allows real executions.
type ReadinessProbe interface {
	Ready(ctx context.Context) bool
}

// Notifier delivers operator-facing alerts.
type Notifier interface {
	Notify(ctx context.Context, event, title, message string)
}

// Archiver exports old audit rows to blob storage.
type Archiver interface {
	ArchiveBefore(ctx context.Context, before time.Time) (int, error)
}
