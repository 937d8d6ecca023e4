// restore-seed is a one-shot tool that resets the database to a small demo
// dataset: one roster, one structured rule set, one month of sales, and a
// default admin user. Run it against a scratch database, never production.
//
// Usage: go run ./cmd/restore-seed
package main

import (
	"context"
	"log"
	"os"

	"incentive-engine/internal/db"

	"github.com/joho/godotenv"
	"golang.org/x/crypto/bcrypt"
)

func main() {
	_ = godotenv.Load()

	ctx := context.Background()
	pool, err := db.NewPool(ctx)
	if err != nil {
		log.Fatalf("Failed to connect: %v", err)
	}
	defer pool.Close()

	tx, err := pool.Begin(ctx)
	if err != nil {
		log.Fatalf("Failed to begin transaction: %v", err)
	}
	defer tx.Rollback(ctx)

	log.Println("Clearing existing data...")
	_, err = tx.Exec(ctx, `
		TRUNCATE TABLE calculation_results, sales_records, sales_upload_errors,
			rule_upload_errors, incentive_rules, rule_uploads, salespeople, users
		RESTART IDENTITY CASCADE;
	`)
	if err != nil {
		log.Fatalf("Failed to clear data: %v", err)
	}

	log.Println("Seeding roster...")
	_, err = tx.Exec(ctx, `
		INSERT INTO salespeople (id, name, branch, role) VALUES
		('EMP001', 'Asha Verma',   'North', 'Sales'),
		('EMP002', 'Rahul Mehta',  'North', 'Sales'),
		('EMP003', 'Priya Nair',   'North', 'Senior Sales'),
		('EMP004', 'Vikram Singh', 'South', 'Sales'),
		('EMP005', 'Divya Rao',    'South', 'Sales');
	`)
	if err != nil {
		log.Fatalf("Failed to seed salespeople: %v", err)
	}

	log.Println("Seeding structured rules...")
	_, err = tx.Exec(ctx, `
		INSERT INTO incentive_rules
			(rule_type, role, vehicle_type, min_units, max_units, incentive_amount, bonus_per_unit, valid_from, valid_to)
		VALUES
		('Structured', 'Sales',        'SUV',       5, 10,   1000, 50, '2025-01-01', '2025-12-31'),
		('Structured', 'Sales',        'SUV',      11, NULL, 2500, 75, '2025-01-01', '2025-12-31'),
		('Structured', 'Sales',        'Sedan',     3, 8,     600, 40, '2025-01-01', '2025-12-31'),
		('Structured', 'Sales',        'Hatchback', 4, NULL,  400, 25, '2025-01-01', '2025-12-31'),
		('Structured', 'Senior Sales', 'SUV',       4, NULL, 1500, 60, '2025-01-01', '2025-12-31');
	`)
	if err != nil {
		log.Fatalf("Failed to seed rules: %v", err)
	}

	log.Println("Seeding one month of sales...")
	_, err = tx.Exec(ctx, `
		INSERT INTO sales_records (employee_id, vehicle_type, quantity, sale_date) VALUES
		('EMP001', 'SUV',       4, '2025-09-02'),
		('EMP001', 'SUV',       3, '2025-09-10'),
		('EMP001', 'Sedan',     5, '2025-09-15'),
		('EMP002', 'SUV',       3, '2025-09-05'),
		('EMP002', 'Hatchback', 6, '2025-09-18'),
		('EMP003', 'SUV',       8, '2025-09-07'),
		('EMP004', 'Sedan',     4, '2025-09-12'),
		('EMP005', 'SUV',      12, '2025-09-20');
	`)
	if err != nil {
		log.Fatalf("Failed to seed sales: %v", err)
	}

	log.Println("Seeding default admin user...")
	password := os.Getenv("SEED_ADMIN_PASSWORD")
	if password == "" {
		password = "changeme"
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		log.Fatalf("Failed to hash password: %v", err)
	}
	_, err = tx.Exec(ctx, `
		INSERT INTO users (username, email, password_hash, role)
		VALUES ('admin', 'admin@example.com', $1, 'admin');
	`, string(hash))
	if err != nil {
		log.Fatalf("Failed to seed user: %v", err)
	}

	if err := tx.Commit(ctx); err != nil {
		log.Fatalf("Failed to commit seed: %v", err)
	}
	log.Println("Seed restored.")
}
