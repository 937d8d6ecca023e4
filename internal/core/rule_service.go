package core

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// RuleService supplies the structured incentive rules active for a period.
type RuleService interface {
	// ActiveStructuredRules returns every structured rule whose validity
	// window overlaps the period.
	ActiveStructuredRules(ctx context.Context, period Period) ([]IncentiveRule, error)
}

type ruleService struct {
	pool *pgxpool.Pool
}

// NewRuleService constructs a RuleService backed by the incentive_rules table.
func NewRuleService(pool *pgxpool.Pool) RuleService {
	return &ruleService{pool: pool}
}

func (s *ruleService) ActiveStructuredRules(ctx context.Context, period Period) ([]IncentiveRule, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, role, vehicle_type, min_units, max_units,
		       incentive_amount, bonus_per_unit, valid_from, valid_to
		FROM incentive_rules
		WHERE rule_type = 'Structured'
		  AND valid_from <= $1
		  AND valid_to >= $2`,
		period.End(), period.Start(),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query incentive rules for %s: %w", period, err)
	}
	defer rows.Close()

	var rules []IncentiveRule
	for rows.Next() {
		var r IncentiveRule
		if err := rows.Scan(
			&r.ID, &r.Role, &r.VehicleType, &r.MinUnits, &r.MaxUnits,
			&r.BaseAmount, &r.BonusPerUnit, &r.ValidFrom, &r.ValidTo,
		); err != nil {
			return nil, fmt.Errorf("failed to scan incentive rule: %w", err)
		}
		rules = append(rules, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read incentive rules: %w", err)
	}
	return rules, nil
}
