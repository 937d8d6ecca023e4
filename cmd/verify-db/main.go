// verify-db checks that the database is reachable and that every table the
// application needs exists. Useful as a deploy smoke test.
//
// Usage: go run ./cmd/verify-db
package main

import (
	"context"
	"log"

	"incentive-engine/internal/db"

	"github.com/joho/godotenv"
)

var requiredTables = []string{
	"salespeople",
	"sales_records",
	"sales_upload_errors",
	"rule_uploads",
	"incentive_rules",
	"rule_upload_errors",
	"calculation_results",
	"users",
}

func main() {
	_ = godotenv.Load()

	ctx := context.Background()
	pool, err := db.NewPool(ctx)
	if err != nil {
		log.Fatalf("[CONNECT] %v", err)
	}
	defer pool.Close()
	log.Println("[CONNECT] success")

	missing := 0
	for _, table := range requiredTables {
		var exists bool
		err := pool.QueryRow(ctx,
			"SELECT EXISTS (SELECT 1 FROM information_schema.tables WHERE table_schema = 'public' AND table_name = $1)",
			table,
		).Scan(&exists)
		if err != nil {
			log.Fatalf("[CHECK] failed to check table %s: %v", table, err)
		}
		if exists {
			log.Printf("[OK]   %s", table)
		} else {
			log.Printf("[MISS] %s", table)
			missing++
		}
	}

	if missing > 0 {
		log.Fatalf("[FAIL] %d table(s) missing, run ./cmd/migrate", missing)
	}
	log.Println("[DONE] schema verified")
}
