package app

import (
	"context"
	"io"

	"incentive-engine/internal/core"
	"incentive-engine/internal/ingest"
)

// ApplicationService is the single interface all adapters (web, CLI) call.
// It decouples presentation from business logic. Implementations must
// contain no display logic of any kind.
type ApplicationService interface {
	// CalculateIncentives runs the incentive engine for one period and
	// persists the results, replacing any prior run for that period.
	// An unparsable period token fails with core.ErrInvalidPeriod.
	CalculateIncentives(ctx context.Context, periodToken string) (*core.RunSummary, error)

	// ResultsForPeriod returns the stored calculation results for a period.
	ResultsForPeriod(ctx context.Context, periodToken string) (*ResultListResult, error)

	// ListActiveRules returns the structured rules active during a period.
	ListActiveRules(ctx context.Context, periodToken string) (*RuleListResult, error)

	// IngestSalesCSV loads a sales CSV stream into the sales facts table.
	IngestSalesCSV(ctx context.Context, r io.Reader, fileName, uploadedBy string) (*ingest.SalesSummary, error)

	// IngestRulesCSV loads a versioned rule CSV stream into the rules table.
	IngestRulesCSV(ctx context.Context, r io.Reader, fileName, uploadedBy string) (*ingest.RuleSummary, error)

	// AuthenticateUser verifies credentials and returns a session on success.
	AuthenticateUser(ctx context.Context, username, password string) (*UserSession, error)

	// GetUser returns user profile by ID.
	GetUser(ctx context.Context, userID int) (*UserResult, error)
}
