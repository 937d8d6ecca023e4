package core

import (
	"context"
	"fmt"
	"time"
)

// RunSummary reports what a calculation run did.
type RunSummary struct {
	Period    Period `json:"period"`
	Processed int    `json:"processed_salespeople"`
}

// CalculationService orchestrates one period's calculation run: resolve the
// period, snapshot facts and rules, run the pure engine, and persist the
// output atomically. It holds no state between runs and assumes the caller
// does not mutate facts or rules mid-run.
type CalculationService struct {
	sales   SalesService
	rules   RuleService
	results ResultService
	engine  *Engine
	now     func() time.Time
}

// NewCalculationService wires the engine to its repositories. The clock is
// injected so tests can pin CalculatedAt.
func NewCalculationService(sales SalesService, rules RuleService, results ResultService, now func() time.Time) *CalculationService {
	if now == nil {
		now = time.Now
	}
	return &CalculationService{
		sales:   sales,
		rules:   rules,
		results: results,
		engine:  NewEngine(),
		now:     now,
	}
}

// Run calculates and persists incentives for the given period token.
// An unparsable token fails with ErrInvalidPeriod before any query runs.
// A period with no sales succeeds with zero processed and persists nothing.
// Persistence is all-or-nothing: a storage failure leaves no partial rows.
func (s *CalculationService) Run(ctx context.Context, periodToken string) (*RunSummary, error) {
	period, err := ParsePeriod(periodToken)
	if err != nil {
		return nil, err
	}

	facts, err := s.sales.FactsForPeriod(ctx, period)
	if err != nil {
		return nil, fmt.Errorf("calculation run for %s: %w", period, err)
	}
	if len(facts) == 0 {
		return &RunSummary{Period: period}, nil
	}

	profiles, err := s.sales.Profiles(ctx)
	if err != nil {
		return nil, fmt.Errorf("calculation run for %s: %w", period, err)
	}
	rules, err := s.rules.ActiveStructuredRules(ctx, period)
	if err != nil {
		return nil, fmt.Errorf("calculation run for %s: %w", period, err)
	}

	results := s.engine.Calculate(EngineInput{
		Period:       period,
		Facts:        facts,
		Profiles:     profiles,
		Rules:        rules,
		CalculatedAt: s.now().UTC(),
	})

	if err := s.results.Replace(ctx, period, results); err != nil {
		return nil, fmt.Errorf("calculation run for %s: %w", period, err)
	}
	return &RunSummary{Period: period, Processed: len(results)}, nil
}
