package core_test

import (
	"context"
	"os"
	"testing"
	"time"

	"incentive-engine/internal/core"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
)

func setupTestDB(t *testing.T) *pgxpool.Pool {
	_ = godotenv.Load("../../.env")

	// Use a dedicated TEST database to avoid wiping the live app database.
	// Set TEST_DATABASE_URL in your .env or environment to run integration tests.
	dbURL := os.Getenv("TEST_DATABASE_URL")
	if dbURL == "" {
		t.Skip("TEST_DATABASE_URL not set, skipping integration test to protect live database")
	}

	ctx := context.Background()
	pool, err := pgxpool.New(ctx, dbURL)
	if err != nil {
		t.Fatalf("Failed to connect to test database: %v", err)
	}

	_, err = pool.Exec(ctx, `
		TRUNCATE TABLE calculation_results, sales_records, sales_upload_errors,
			rule_upload_errors, incentive_rules, rule_uploads, salespeople, users
		RESTART IDENTITY CASCADE;

		INSERT INTO salespeople (id, branch, role) VALUES
		('A', 'North', 'Sales'),
		('B', 'North', 'Sales');

		INSERT INTO incentive_rules
			(rule_type, role, vehicle_type, min_units, max_units, incentive_amount, bonus_per_unit, valid_from, valid_to)
		VALUES
		('Structured', 'Sales', 'SUV', 5, 10, 1000, 50, '2025-09-01', '2025-09-30');

		INSERT INTO sales_records (employee_id, vehicle_type, quantity, sale_date) VALUES
		('A', 'SUV', 7, '2025-09-03'),
		('B', 'SUV', 3, '2025-09-10'),
		('GHOST', 'SUV', 99, '2025-09-12');
	`)
	if err != nil {
		t.Fatalf("Failed to seed test database: %v", err)
	}

	return pool
}

func newTestCalcService(pool *pgxpool.Pool, now func() time.Time) (*core.CalculationService, core.ResultService) {
	sales := core.NewSalesService(pool)
	rules := core.NewRuleService(pool)
	results := core.NewResultService(pool)
	return core.NewCalculationService(sales, rules, results, now), results
}

func TestCalculationRun_Integration(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()
	ctx := context.Background()

	svc, resultService := newTestCalcService(pool, nil)

	summary, err := svc.Run(ctx, "2025-09")
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	// GHOST has sales but no roster entry: excluded, not an error.
	if summary.Processed != 2 {
		t.Errorf("expected 2 processed salespeople, got %d", summary.Processed)
	}

	period, _ := core.ParsePeriod("2025-09")
	stored, err := resultService.ForPeriod(ctx, period)
	if err != nil {
		t.Fatalf("ForPeriod failed: %v", err)
	}
	if len(stored) != 2 {
		t.Fatalf("expected 2 stored results, got %d", len(stored))
	}

	a := stored[0]
	if a.EmployeeID != "A" {
		t.Fatalf("expected results ordered by employee ID, got %s first", a.EmployeeID)
	}
	// 1100 structured + 15000 rank 1 + 8050 top decile.
	if !a.TotalIncentive.Equal(d("24150")) {
		t.Errorf("A: expected total 24150, got %s", a.TotalIncentive)
	}
	if len(a.Bonuses) != 3 {
		t.Errorf("A: expected 3 bonus entries, got %d", len(a.Bonuses))
	}
}

func TestCalculationRun_RerunReplacesResults(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()
	ctx := context.Background()

	firstClock := func() time.Time { return time.Date(2025, 10, 1, 8, 0, 0, 0, time.UTC) }
	secondClock := func() time.Time { return time.Date(2025, 10, 2, 8, 0, 0, 0, time.UTC) }

	svc1, _ := newTestCalcService(pool, firstClock)
	if _, err := svc1.Run(ctx, "2025-09"); err != nil {
		t.Fatalf("first run failed: %v", err)
	}

	svc2, resultService := newTestCalcService(pool, secondClock)
	if _, err := svc2.Run(ctx, "2025-09"); err != nil {
		t.Fatalf("second run failed: %v", err)
	}

	// Still exactly one row per (employee, period): the upsert replaced,
	// never duplicated.
	var count int
	if err := pool.QueryRow(ctx,
		"SELECT COUNT(*) FROM calculation_results WHERE period_month = '2025-09'",
	).Scan(&count); err != nil {
		t.Fatalf("count query failed: %v", err)
	}
	if count != 2 {
		t.Errorf("expected 2 result rows after rerun, got %d", count)
	}

	period, _ := core.ParsePeriod("2025-09")
	stored, err := resultService.ForPeriod(ctx, period)
	if err != nil {
		t.Fatalf("ForPeriod failed: %v", err)
	}
	for _, res := range stored {
		if !res.CalculatedAt.Equal(secondClock().UTC()) {
			t.Errorf("%s: expected second run timestamp, got %v", res.EmployeeID, res.CalculatedAt)
		}
	}
}

func TestCalculationRun_EmptyPeriodStoresNothing(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()
	ctx := context.Background()

	svc, resultService := newTestCalcService(pool, nil)

	summary, err := svc.Run(ctx, "2024-01")
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if summary.Processed != 0 {
		t.Errorf("expected 0 processed for a period with no sales, got %d", summary.Processed)
	}

	period, _ := core.ParsePeriod("2024-01")
	stored, err := resultService.ForPeriod(ctx, period)
	if err != nil {
		t.Fatalf("ForPeriod failed: %v", err)
	}
	if len(stored) != 0 {
		t.Errorf("expected no stored results, got %d", len(stored))
	}
}

func TestRuleService_ValidityOverlap_Integration(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()
	ctx := context.Background()

	// A rule that ends mid-September still overlaps the period; a rule
	// wholly in August does not.
	_, err := pool.Exec(ctx, `
		INSERT INTO incentive_rules
			(rule_type, role, vehicle_type, min_units, incentive_amount, bonus_per_unit, valid_from, valid_to)
		VALUES
		('Structured', 'Sales', 'Sedan', 1, 500, 10, '2025-08-15', '2025-09-10'),
		('Structured', 'Sales', 'Truck', 1, 700, 10, '2025-08-01', '2025-08-31');
	`)
	if err != nil {
		t.Fatalf("Failed to insert rules: %v", err)
	}

	period, _ := core.ParsePeriod("2025-09")
	rules, err := core.NewRuleService(pool).ActiveStructuredRules(ctx, period)
	if err != nil {
		t.Fatalf("ActiveStructuredRules failed: %v", err)
	}

	types := make(map[string]bool)
	for _, r := range rules {
		types[r.VehicleType] = true
	}
	if !types["SUV"] || !types["Sedan"] {
		t.Errorf("expected SUV and Sedan rules active, got %v", types)
	}
	if types["Truck"] {
		t.Errorf("August-only Truck rule must not be active in September")
	}
}
