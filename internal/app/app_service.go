package app

import (
	"context"
	"fmt"
	"io"

	"incentive-engine/internal/core"
	"incentive-engine/internal/ingest"

	"golang.org/x/crypto/bcrypt"
)

type appService struct {
	calc    *core.CalculationService
	rules   core.RuleService
	results core.ResultService
	users   core.UserService
	ingest  *ingest.Service
}

// NewAppService constructs an appService that satisfies ApplicationService.
func NewAppService(
	calc *core.CalculationService,
	rules core.RuleService,
	results core.ResultService,
	users core.UserService,
	ingestService *ingest.Service,
) ApplicationService {
	return &appService{
		calc:    calc,
		rules:   rules,
		results: results,
		users:   users,
		ingest:  ingestService,
	}
}

func (s *appService) CalculateIncentives(ctx context.Context, periodToken string) (*core.RunSummary, error) {
	return s.calc.Run(ctx, periodToken)
}

func (s *appService) ResultsForPeriod(ctx context.Context, periodToken string) (*ResultListResult, error) {
	period, err := core.ParsePeriod(periodToken)
	if err != nil {
		return nil, err
	}
	results, err := s.results.ForPeriod(ctx, period)
	if err != nil {
		return nil, err
	}
	return &ResultListResult{Period: period, Results: results}, nil
}

func (s *appService) ListActiveRules(ctx context.Context, periodToken string) (*RuleListResult, error) {
	period, err := core.ParsePeriod(periodToken)
	if err != nil {
		return nil, err
	}
	rules, err := s.rules.ActiveStructuredRules(ctx, period)
	if err != nil {
		return nil, err
	}
	return &RuleListResult{Period: period, Rules: rules}, nil
}

func (s *appService) IngestSalesCSV(ctx context.Context, r io.Reader, fileName, uploadedBy string) (*ingest.SalesSummary, error) {
	return s.ingest.IngestSales(ctx, r, fileName, uploadedBy)
}

func (s *appService) IngestRulesCSV(ctx context.Context, r io.Reader, fileName, uploadedBy string) (*ingest.RuleSummary, error) {
	return s.ingest.IngestRules(ctx, r, fileName, uploadedBy)
}

func (s *appService) AuthenticateUser(ctx context.Context, username, password string) (*UserSession, error) {
	user, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("authentication failed: %w", err)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, fmt.Errorf("authentication failed: invalid credentials")
	}
	return &UserSession{
		UserID:   user.ID,
		Username: user.Username,
		Role:     user.Role,
	}, nil
}

func (s *appService) GetUser(ctx context.Context, userID int) (*UserResult, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &UserResult{
		Username: user.Username,
		Email:    user.Email,
		Role:     user.Role,
	}, nil
}
