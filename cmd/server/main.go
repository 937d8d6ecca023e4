package main

import (
	"context"
	"log"
	"net/http"
	"os"

	webAdapter "incentive-engine/internal/adapters/web"
	"incentive-engine/internal/app"
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
		log.Fatalf("database: %v", err)
	}
	defer pool.Close()

	salesService := core.NewSalesService(pool)
	ruleService := core.NewRuleService(pool)
	resultService := core.NewResultService(pool)
	userService := core.NewUserService(pool)
	calcService := core.NewCalculationService(salesService, ruleService, resultService, nil)
	ingestService := ingest.NewService(pool)

	svc := app.NewAppService(calcService, ruleService, resultService, userService, ingestService)

	port := os.Getenv("SERVER_PORT")
	if port == "" {
		port = "8080"
	}

	jwtSecret := os.Getenv("JWT_SECRET")
	if jwtSecret == "" {
		log.Fatal("JWT_SECRET is not set")
	}

	allowedOrigins := os.Getenv("ALLOWED_ORIGINS")
	handler := webAdapter.NewHandler(svc, allowedOrigins, jwtSecret)

	log.Printf("server starting on :%s", port)
	if err := http.ListenAndServe(":"+port, handler); err != nil {
		log.Fatalf("server: %v", err)
	}
}
