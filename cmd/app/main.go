package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"

	"incentive-engine/internal/core"
	"incentive-engine/internal/db"
	"incentive-engine/internal/ingest"

	"github.com/joho/godotenv"
)

func main() {
	_ = godotenv.Load()

	ctx := context.Background()
	pool, err := db.NewPool(ctx)
	if err != nil {
		log.Fatalf("Unable to connect to database: %v", err)
	}
	defer pool.Close()

	salesService := core.NewSalesService(pool)
	ruleService := core.NewRuleService(pool)
	resultService := core.NewResultService(pool)
	calcService := core.NewCalculationService(salesService, ruleService, resultService, nil)

	if len(os.Args) < 2 {
		usage()
	}

	switch os.Args[1] {
	case "calculate":
		if len(os.Args) < 3 {
			log.Fatal("Usage: app calculate <YYYY-MM>")
		}
		summary, err := calcService.Run(ctx, os.Args[2])
		if err != nil {
			log.Fatalf("Calculation failed: %v", err)
		}
		fmt.Printf("Period %s: %d salespeople processed\n", summary.Period, summary.Processed)

	case "results":
		if len(os.Args) < 3 {
			log.Fatal("Usage: app results <YYYY-MM>")
		}
		period, err := core.ParsePeriod(os.Args[2])
		if err != nil {
			log.Fatalf("Bad period: %v", err)
		}
		results, err := resultService.ForPeriod(ctx, period)
		if err != nil {
			log.Fatalf("Failed to load results: %v", err)
		}
		if len(results) == 0 {
			fmt.Printf("No results stored for %s\n", period)
			return
		}
		for _, res := range results {
			fmt.Printf("%-12s total=%s calculated_at=%s\n",
				res.EmployeeID, res.TotalIncentive, res.CalculatedAt.Format("2006-01-02 15:04"))
			for _, b := range res.Bonuses {
				line, _ := json.Marshal(b)
				fmt.Printf("    %s\n", line)
			}
		}

	case "rules":
		if len(os.Args) < 3 {
			log.Fatal("Usage: app rules <YYYY-MM>")
		}
		period, err := core.ParsePeriod(os.Args[2])
		if err != nil {
			log.Fatalf("Bad period: %v", err)
		}
		rules, err := ruleService.ActiveStructuredRules(ctx, period)
		if err != nil {
			log.Fatalf("Failed to load rules: %v", err)
		}
		for _, r := range rules {
			maxUnits := "none"
			if r.MaxUnits != nil {
				maxUnits = fmt.Sprint(*r.MaxUnits)
			}
			fmt.Printf("#%d %s/%s [%d..%s] base=%s per_unit=%s valid %s..%s\n",
				r.ID, r.Role, r.VehicleType, r.MinUnits, maxUnits,
				r.BaseAmount, r.BonusPerUnit,
				r.ValidFrom.Format("2006-01-02"), r.ValidTo.Format("2006-01-02"))
		}

	case "ingest-sales", "ingest-rules":
		if len(os.Args) < 3 {
			log.Fatalf("Usage: app %s <file.csv>", os.Args[1])
		}
		f, err := os.Open(os.Args[2])
		if err != nil {
			log.Fatalf("Failed to open file: %v", err)
		}
		defer f.Close()

		svc := ingest.NewService(pool)
		if os.Args[1] == "ingest-sales" {
			summary, err := svc.IngestSales(ctx, f, os.Args[2], "cli")
			if err != nil {
				log.Fatalf("Ingestion failed: %v", err)
			}
			fmt.Printf("Sales upload: %d valid, %d invalid of %d rows\n",
				summary.ValidRows, summary.InvalidRows, summary.TotalRows)
		} else {
			summary, err := svc.IngestRules(ctx, f, os.Args[2], "cli")
			if err != nil {
				log.Fatalf("Ingestion failed: %v", err)
			}
			fmt.Printf("Rule upload %d: %d valid, %d invalid of %d rows\n",
				summary.UploadID, summary.ValidRows, summary.InvalidRows, summary.TotalRows)
		}

	default:
		usage()
	}
}

func usage() {
	fmt.Println(`Usage:
  app calculate <YYYY-MM>     run the incentive engine for a period
  app results <YYYY-MM>       show stored results for a period
  app rules <YYYY-MM>         show structured rules active in a period
  app ingest-sales <file>     load a sales CSV
  app ingest-rules <file>     load a rule CSV`)
	os.Exit(1)
}
