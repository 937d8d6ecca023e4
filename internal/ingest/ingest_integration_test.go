package ingest_test

import (
	"context"
	"os"
	"strings"
	"testing"

	"incentive-engine/internal/ingest"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
)

func setupTestDB(t *testing.T) *pgxpool.Pool {
	_ = godotenv.Load("../../.env")

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
	`)
	if err != nil {
		t.Fatalf("Failed to clean test database: %v", err)
	}
	return pool
}

func TestIngestSales_Integration(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()
	ctx := context.Background()

	csv := strings.Join([]string{
		"Employee_ID,Branch,Role,Vehicle_Model,Vehicle_Type,Quantity,Sale_Date",
		"EMP001,North,Sales,XUV700,SUV,3,01-09-2025",
		"EMP002,North,Sales,,Sedan,2,2025-09-05",
		",North,Sales,,SUV,1,02-09-2025",     // missing employee
		"EMP003,North,Sales,,SUV,0,03-09-2025", // zero quantity
		"EMP004,North,Sales,,SUV,2,someday",    // bad date
	}, "\n")

	svc := ingest.NewService(pool)
	summary, err := svc.IngestSales(ctx, strings.NewReader(csv), "sales.csv", "tester")
	if err != nil {
		t.Fatalf("IngestSales failed: %v", err)
	}

	if summary.TotalRows != 5 || summary.ValidRows != 2 || summary.InvalidRows != 3 {
		t.Errorf("unexpected summary: %+v", summary)
	}

	var records, errRows int
	if err := pool.QueryRow(ctx, "SELECT COUNT(*) FROM sales_records").Scan(&records); err != nil {
		t.Fatalf("count failed: %v", err)
	}
	if err := pool.QueryRow(ctx, "SELECT COUNT(*) FROM sales_upload_errors").Scan(&errRows); err != nil {
		t.Fatalf("count failed: %v", err)
	}
	if records != 2 || errRows != 3 {
		t.Errorf("expected 2 records and 3 error rows, got %d and %d", records, errRows)
	}
}

func TestIngestRules_Integration(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()
	ctx := context.Background()

	csv := strings.Join([]string{
		"Role,Vehicle_Type,Min_Units,Max_Units,Incentive_Amount,Bonus_Per_Unit,Valid_From,Valid_To",
		"Sales,SUV,5,10,1000,50,01-09-2025,30-09-2025",
		"Sales,SUV,11,,2500,75,01-09-2025,30-09-2025",
		"Sales,Sedan,-2,,600,40,01-09-2025,30-09-2025", // invalid min
	}, "\n")

	svc := ingest.NewService(pool)
	summary, err := svc.IngestRules(ctx, strings.NewReader(csv), "rules.csv", "tester")
	if err != nil {
		t.Fatalf("IngestRules failed: %v", err)
	}

	if summary.UploadID == 0 {
		t.Error("expected a registered upload ID")
	}
	if summary.ValidRows != 2 || summary.InvalidRows != 1 {
		t.Errorf("unexpected summary: %+v", summary)
	}

	// All rules from the file carry the upload's ID for traceability.
	var bound int
	if err := pool.QueryRow(ctx,
		"SELECT COUNT(*) FROM incentive_rules WHERE upload_id = $1", summary.UploadID,
	).Scan(&bound); err != nil {
		t.Fatalf("count failed: %v", err)
	}
	if bound != 2 {
		t.Errorf("expected 2 rules bound to upload %d, got %d", summary.UploadID, bound)
	}

	var maxUnits *int
	if err := pool.QueryRow(ctx,
		"SELECT max_units FROM incentive_rules WHERE min_units = 11",
	).Scan(&maxUnits); err != nil {
		t.Fatalf("select failed: %v", err)
	}
	if maxUnits != nil {
		t.Errorf("expected open-ended slab to store NULL max_units, got %v", *maxUnits)
	}
}
