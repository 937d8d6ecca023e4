package app

import "incentive-engine/internal/core"

// ResultListResult is returned by ResultsForPeriod.
type ResultListResult struct {
	Period  core.Period
	Results []core.CalculationResult
}

// RuleListResult is returned by ListActiveRules.
type RuleListResult struct {
	Period core.Period
	Rules  []core.IncentiveRule
}

// UserSession is returned by AuthenticateUser.
type UserSession struct {
	UserID   int    `json:"user_id"`
	Username string `json:"username"`
	Role     string `json:"role"`
}

// UserResult is returned by GetUser.
type UserResult struct {
	Username string
	Email    string
	Role     string
}
