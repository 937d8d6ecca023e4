package core

import (
	"time"

	"github.com/shopspring/decimal"
)

// SaleFact is one sold unit batch as ingested from a sales file.
// Facts are immutable once ingested; the engine reads them as-is.
type SaleFact struct {
	EmployeeID  string    `json:"employee_id"`
	VehicleType string    `json:"vehicle_type"`
	Quantity    int       `json:"quantity"`
	SaleDate    time.Time `json:"sale_date"`
}

// EmployeeProfile maps a salesperson to their branch and role.
// An employee with sales but no profile is excluded from calculation.
type EmployeeProfile struct {
	EmployeeID string `json:"employee_id"`
	Branch     string `json:"branch"`
	Role       string `json:"role"`
}

// IncentiveRule is one structured slab: it applies to a (role, vehicle type)
// pair for unit counts in [MinUnits, MaxUnits] (unbounded above when
// MaxUnits is nil), within the [ValidFrom, ValidTo] validity window.
type IncentiveRule struct {
	ID           int64           `json:"id"`
	Role         string          `json:"role"`
	VehicleType  string          `json:"vehicle_type"`
	MinUnits     int             `json:"min_units"`
	MaxUnits     *int            `json:"max_units,omitempty"`
	BaseAmount   decimal.Decimal `json:"incentive_amount"`
	BonusPerUnit decimal.Decimal `json:"bonus_per_unit"`
	ValidFrom    time.Time       `json:"valid_from"`
	ValidTo      time.Time       `json:"valid_to"`
}

// Matches reports whether the rule's slab covers the given unit count for
// the given (role, vehicle type).
func (r IncentiveRule) Matches(role, vehicleType string, units int) bool {
	if r.Role != role || r.VehicleType != vehicleType {
		return false
	}
	if units < r.MinUnits {
		return false
	}
	return r.MaxUnits == nil || units <= *r.MaxUnits
}

// BonusKind tags one applied-bonus entry in a calculation breakdown.
type BonusKind string

const (
	BonusStructuredSlab  BonusKind = "Structured Slab"
	BonusBranchMilestone BonusKind = "Branch Milestone"
	BonusConsistency     BonusKind = "Consistency Bonus"
	BonusCrossSell       BonusKind = "Cross Sell Bonus"
	BonusBranchRank      BonusKind = "Branch Rank Bonus"
	BonusTopDecile       BonusKind = "Top 10 Percent Bonus"
)

// AppliedBonus is a single line in a result's breakdown. RuleID,
// VehicleType and Rank are populated only where the kind uses them.
// Amount is always non-negative and rounded to 2 decimal places.
type AppliedBonus struct {
	Kind        BonusKind       `json:"type"`
	RuleID      *int64          `json:"rule_id,omitempty"`
	VehicleType string          `json:"vehicle_type,omitempty"`
	Rank        int             `json:"rank,omitempty"`
	Amount      decimal.Decimal `json:"amount"`
}

// CalculationStatus is the persisted outcome of a calculation run for one
// employee. The engine only emits StatusSuccess; a failed run persists
// nothing at all.
type CalculationStatus string

const StatusSuccess CalculationStatus = "Success"

// CalculationResult is the engine output for one (employee, period).
// Bonuses is ordered: structured slabs first (ascending vehicle type),
// then milestone, consistency, cross-sell, rank, and top-decile last.
// A recalculation fully replaces any prior result for the same key.
type CalculationResult struct {
	EmployeeID     string            `json:"employee_id"`
	Period         Period            `json:"period"`
	TotalIncentive decimal.Decimal   `json:"total_incentive"`
	Bonuses        []AppliedBonus    `json:"breakdown"`
	Status         CalculationStatus `json:"status"`
	CalculatedAt   time.Time         `json:"calculated_at"`
}
