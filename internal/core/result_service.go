package core

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// ResultService persists engine output. Replacement is keyed by
// (employee_id, period_month): rerunning a period overwrites, never merges.
type ResultService interface {
	// Replace stores all results for one period inside a single
	// transaction. Each result upserts on (employee_id, period_month), so
	// a rerun atomically overwrites the prior run with no window in which
	// a result row is missing. Any failure rolls the whole run back.
	Replace(ctx context.Context, period Period, results []CalculationResult) error

	// ForPeriod returns the stored results for a period, ordered by
	// employee ID.
	ForPeriod(ctx context.Context, period Period) ([]CalculationResult, error)
}

type resultService struct {
	pool *pgxpool.Pool
}

// NewResultService constructs a ResultService backed by the
// calculation_results table.
func NewResultService(pool *pgxpool.Pool) ResultService {
	return &resultService{pool: pool}
}

func (s *resultService) Replace(ctx context.Context, period Period, results []CalculationResult) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	for _, res := range results {
		breakdown, err := json.Marshal(res.Bonuses)
		if err != nil {
			return fmt.Errorf("failed to encode breakdown for employee %s: %w", res.EmployeeID, err)
		}
		_, err = tx.Exec(ctx, `
			INSERT INTO calculation_results
				(employee_id, period_month, total_incentive, breakdown_json, status, calculated_at)
			VALUES ($1, $2, $3, $4, $5, $6)
			ON CONFLICT (employee_id, period_month) DO UPDATE SET
				total_incentive = EXCLUDED.total_incentive,
				breakdown_json  = EXCLUDED.breakdown_json,
				status          = EXCLUDED.status,
				calculated_at   = EXCLUDED.calculated_at`,
			res.EmployeeID, period.String(), res.TotalIncentive,
			breakdown, string(res.Status), res.CalculatedAt,
		)
		if err != nil {
			return fmt.Errorf("failed to store result for employee %s, period %s: %w", res.EmployeeID, period, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit results for period %s: %w", period, err)
	}
	return nil
}

func (s *resultService) ForPeriod(ctx context.Context, period Period) ([]CalculationResult, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT employee_id, total_incentive, breakdown_json, status, calculated_at
		FROM calculation_results
		WHERE period_month = $1
		ORDER BY employee_id`,
		period.String(),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query results for %s: %w", period, err)
	}
	defer rows.Close()

	var results []CalculationResult
	for rows.Next() {
		var (
			res       CalculationResult
			breakdown []byte
			status    string
		)
		if err := rows.Scan(&res.EmployeeID, &res.TotalIncentive, &breakdown, &status, &res.CalculatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan result: %w", err)
		}
		if err := json.Unmarshal(breakdown, &res.Bonuses); err != nil {
			return nil, fmt.Errorf("failed to decode breakdown for employee %s: %w", res.EmployeeID, err)
		}
		res.Period = period
		res.Status = CalculationStatus(status)
		results = append(results, res)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read results: %w", err)
	}
	return results, nil
}
