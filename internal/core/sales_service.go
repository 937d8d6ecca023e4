package core

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// SalesService supplies the engine's sales facts and the roster snapshot.
type SalesService interface {
	// FactsForPeriod returns every sale line item whose sale date falls
	// inside the period, in no particular order.
	FactsForPeriod(ctx context.Context, period Period) ([]SaleFact, error)

	// Profiles returns the full roster keyed by employee ID.
	Profiles(ctx context.Context) (map[string]EmployeeProfile, error)
}

type salesService struct {
	pool *pgxpool.Pool
}

// NewSalesService constructs a SalesService backed by PostgreSQL.
func NewSalesService(pool *pgxpool.Pool) SalesService {
	return &salesService{pool: pool}
}

func (s *salesService) FactsForPeriod(ctx context.Context, period Period) ([]SaleFact, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT employee_id, vehicle_type, quantity, sale_date
		FROM sales_records
		WHERE sale_date BETWEEN $1 AND $2`,
		period.Start(), period.End(),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query sales records for %s: %w", period, err)
	}
	defer rows.Close()

	var facts []SaleFact
	for rows.Next() {
		var f SaleFact
		if err := rows.Scan(&f.EmployeeID, &f.VehicleType, &f.Quantity, &f.SaleDate); err != nil {
			return nil, fmt.Errorf("failed to scan sales record: %w", err)
		}
		facts = append(facts, f)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read sales records: %w", err)
	}
	return facts, nil
}

func (s *salesService) Profiles(ctx context.Context) (map[string]EmployeeProfile, error) {
	rows, err := s.pool.Query(ctx, `SELECT id, branch, role FROM salespeople`)
	if err != nil {
		return nil, fmt.Errorf("failed to query salespeople: %w", err)
	}
	defer rows.Close()

	profiles := make(map[string]EmployeeProfile)
	for rows.Next() {
		var p EmployeeProfile
		if err := rows.Scan(&p.EmployeeID, &p.Branch, &p.Role); err != nil {
			return nil, fmt.Errorf("failed to scan salesperson: %w", err)
		}
		profiles[p.EmployeeID] = p
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read salespeople: %w", err)
	}
	return profiles, nil
}
