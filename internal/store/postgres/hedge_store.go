package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/oddskit/surebet/internal/domain"
)

// HedgeStore implements domain.HedgeStore using PostgreSQL.
type HedgeStore struct {
	pool *pgxpool.Pool
}

// NewHedgeStore creates a HedgeStore backed by the given pool.
func NewHedgeStore(pool *pgxpool.Pool) *HedgeStore {
	return &HedgeStore{pool: pool}
}

// Create inserts one hedge event.
func (s *HedgeStore) Create(ctx context.Context, ev domain.HedgeEvent) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO hedge_events (id, audit_id, provider, selection, odds, stake, details, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		ev.ID, ev.AuditID, ev.Provider, string(ev.Selection),
		ev.Odds, ev.Stake, ev.Details, ev.Timestamp,
	)
	if err != nil {
		return fmt.Errorf("postgres: insert hedge event: %w", err)
	}
	return nil
}

// ListByAudit returns the hedge events recorded for one audit row.
func (s *HedgeStore) ListByAudit(ctx context.Context, auditID string) ([]domain.HedgeEvent, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, audit_id, provider, selection, odds, stake, details, created_at
		FROM hedge_events WHERE audit_id = $1 ORDER BY created_at`,
		auditID,
	)
	if err != nil {
		return nil, fmt.Errorf("postgres: list hedge events: %w", err)
	}
	defer rows.Close()

	var out []domain.HedgeEvent
	for rows.Next() {
		var (
			ev        domain.HedgeEvent
			selection string
		)
		if err := rows.Scan(&ev.ID, &ev.AuditID, &ev.Provider, &selection,
			&ev.Odds, &ev.Stake, &ev.Details, &ev.Timestamp); err != nil {
			return nil, fmt.Errorf("postgres: scan hedge event: %w", err)
		}
		ev.Selection = domain.Selection(selection)
		out = append(out, ev)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("postgres: iterate hedge events: %w", err)
	}
	return out, nil
}

var _ domain.HedgeStore = (*HedgeStore)(nil)
