package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/oddskit/surebet/internal/domain"
)

// ExecutionStore implements domain.ExecutionStore using PostgreSQL.
type ExecutionStore struct {
	pool *pgxpool.Pool
}

// NewExecutionStore creates an ExecutionStore backed by the given pool.
func NewExecutionStore(pool *pgxpool.Pool) *ExecutionStore {
	return &ExecutionStore{pool: pool}
}

const executionColumns = `
	id, event_id, market_type, line,
	first_provider, first_selection, first_odds, first_stake, first_status, first_bet_id, first_error,
	second_provider, second_selection, second_odds, second_stake, second_status, second_bet_id, second_error,
	final_status, created_at`

// Create inserts one execution audit row.
func (s *ExecutionStore) Create(ctx context.Context, res domain.ExecutionResult) error {
	var (
		secondProvider, secondSelection, secondStatus, secondBetID, secondError *string
		secondOdds, secondStake                                                *float64
	)
	if sb := res.SecondBet; sb != nil {
		provider := sb.Provider
		selection := string(sb.Selection)
		status := string(sb.Status)
		secondProvider, secondSelection, secondStatus = &provider, &selection, &status
		secondBetID, secondError = &sb.BetID, &sb.ErrorMessage
		secondOdds, secondStake = &sb.Odds, &sb.Stake
	}

	_, err := s.pool.Exec(ctx, `
		INSERT INTO execution_audit (`+executionColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20)`,
		res.ID, res.EventID, string(res.MarketType), res.Line,
		res.FirstBet.Provider, string(res.FirstBet.Selection), res.FirstBet.Odds,
		res.FirstBet.Stake, string(res.FirstBet.Status), res.FirstBet.BetID, res.FirstBet.ErrorMessage,
		secondProvider, secondSelection, secondOdds, secondStake, secondStatus, secondBetID, secondError,
		string(res.FinalStatus), res.Timestamp,
	)
	if err != nil {
		return fmt.Errorf("postgres: insert execution audit: %w", err)
	}
	return nil
}

// UpdateStatus sets the final status of an existing audit row.
func (s *ExecutionStore) UpdateStatus(ctx context.Context, id string, status domain.ExecutionStatus) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE execution_audit SET final_status = $2 WHERE id = $1`,
		id, string(status),
	)
	if err != nil {
		return fmt.Errorf("postgres: update execution status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// GetByID returns one audit row.
func (s *ExecutionStore) GetByID(ctx context.Context, id string) (domain.ExecutionResult, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT `+executionColumns+` FROM execution_audit WHERE id = $1`, id)
	res, err := scanExecution(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.ExecutionResult{}, domain.ErrNotFound
		}
		return domain.ExecutionResult{}, fmt.Errorf("postgres: get execution %s: %w", id, err)
	}
	return res, nil
}

// ListRecent returns audit rows ordered by recency.
func (s *ExecutionStore) ListRecent(ctx context.Context, opts domain.ListOpts) ([]domain.ExecutionResult, error) {
	query := `SELECT ` + executionColumns + ` FROM execution_audit WHERE 1=1`
	args := []any{}
	argIdx := 1

	if opts.Since != nil {
		query += fmt.Sprintf(" AND created_at >= $%d", argIdx)
		args = append(args, *opts.Since)
		argIdx++
	}
	if opts.Until != nil {
		query += fmt.Sprintf(" AND created_at <= $%d", argIdx)
		args = append(args, *opts.Until)
		argIdx++
	}
	query += " ORDER BY created_at DESC"
	if opts.Limit > 0 {
		query += fmt.Sprintf(" LIMIT $%d", argIdx)
		args = append(args, opts.Limit)
		argIdx++
	}
	if opts.Offset > 0 {
		query += fmt.Sprintf(" OFFSET $%d", argIdx)
		args = append(args, opts.Offset)
	}

	return s.queryExecutions(ctx, query, args...)
}

// ListBefore returns all audit rows created strictly before the cutoff, used
// by the archiver.
func (s *ExecutionStore) ListBefore(ctx context.Context, before time.Time) ([]domain.ExecutionResult, error) {
	return s.queryExecutions(ctx,
		`SELECT `+executionColumns+` FROM execution_audit WHERE created_at < $1 ORDER BY created_at`,
		before,
	)
}

func (s *ExecutionStore) queryExecutions(ctx context.Context, query string, args ...any) ([]domain.ExecutionResult, error) {
	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("postgres: query executions: %w", err)
	}
	defer rows.Close()

	var out []domain.ExecutionResult
	for rows.Next() {
		res, err := scanExecution(rows)
		if err != nil {
			return nil, fmt.Errorf("postgres: scan execution: %w", err)
		}
		out = append(out, res)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("postgres: iterate executions: %w", err)
	}
	return out, nil
}

func scanExecution(row pgx.Row) (domain.ExecutionResult, error) {
	var (
		res                                                                    domain.ExecutionResult
		marketType, firstSelection, firstStatus, finalStatus                   string
		secondProvider, secondSelection, secondStatus, secondBetID, secondErr  *string
		secondOdds, secondStake                                                *float64
	)
	err := row.Scan(
		&res.ID, &res.EventID, &marketType, &res.Line,
		&res.FirstBet.Provider, &firstSelection, &res.FirstBet.Odds,
		&res.FirstBet.Stake, &firstStatus, &res.FirstBet.BetID, &res.FirstBet.ErrorMessage,
		&secondProvider, &secondSelection, &secondOdds, &secondStake, &secondStatus, &secondBetID, &secondErr,
		&finalStatus, &res.Timestamp,
	)
	if err != nil {
		return domain.ExecutionResult{}, err
	}

	res.MarketType = domain.MarketType(marketType)
	res.FirstBet.Selection = domain.Selection(firstSelection)
	res.FirstBet.Status = domain.LegStatus(firstStatus)
	res.FinalStatus = domain.ExecutionStatus(finalStatus)

	if secondProvider != nil {
		sb := domain.LegResult{Provider: *secondProvider}
		if secondSelection != nil {
			sb.Selection = domain.Selection(*secondSelection)
		}
		if secondOdds != nil {
			sb.Odds = *secondOdds
		}
		if secondStake != nil {
			sb.Stake = *secondStake
		}
		if secondStatus != nil {
			sb.Status = domain.LegStatus(*secondStatus)
		}
		if secondBetID != nil {
			sb.BetID = *secondBetID
		}
		if secondErr != nil {
			sb.ErrorMessage = *secondErr
		}
		res.SecondBet = &sb
	}
	return res, nil
}

var _ domain.ExecutionStore = (*ExecutionStore)(nil)
