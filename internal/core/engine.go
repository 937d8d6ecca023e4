package core

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"
)

// Branch milestone tiers, checked in descending order so exactly one
// tier applies per employee.
var milestoneTiers = []struct {
	MinUnits int
	Amount   decimal.Decimal
}{
	{400, decimal.NewFromInt(10000)},
	{300, decimal.NewFromInt(6000)},
	{200, decimal.NewFromInt(3000)},
}

// Branch rank bonuses for ranks 1..3 within a branch.
var rankBonuses = []decimal.Decimal{
	decimal.NewFromInt(15000),
	decimal.NewFromInt(10000),
	decimal.NewFromInt(5000),
}

const (
	consistencyMinDays   = 20
	crossSellMinVehicles = 3
)

var (
	consistencyAmount = decimal.NewFromInt(4000)
	crossSellAmount   = decimal.NewFromInt(3000)
	topDecileFactor   = decimal.NewFromFloat(0.5)
)

// EngineInput is one period's worth of consistent, already-validated facts.
// The engine never queries anything: the caller supplies a snapshot of
// sales facts, the roster, and the rules active during the period.
type EngineInput struct {
	Period       Period
	Facts        []SaleFact
	Profiles     map[string]EmployeeProfile
	Rules        []IncentiveRule
	CalculatedAt time.Time
}

// Engine is the pure incentive calculation. It is deterministic: identical
// inputs produce identical results regardless of fact or rule order, so a
// rerun for the same period fully reproduces (and replaces) its output.
type Engine struct{}

func NewEngine() *Engine { return &Engine{} }

// tally is the per-employee accumulator the bonus stages operate on.
type tally struct {
	employeeID  string
	branch      string
	role        string
	totalUnits  int
	unitsByType map[string]int
	saleDates   map[string]struct{}

	total   decimal.Decimal
	bonuses []AppliedBonus
}

func (t *tally) apply(b AppliedBonus) {
	t.total = t.total.Add(b.Amount)
	t.bonuses = append(t.bonuses, b)
}

// runState is shared by all stages of one calculation run.
type runState struct {
	rules        []IncentiveRule
	tallies      []*tally // ascending employee ID
	branchTotals map[string]int
}

// bonusStage mutates the accumulators for one bonus family. Stages run in
// a fixed order because the top-decile stage reads each employee's
// already-accumulated total.
type bonusStage func(*runState)

var stages = []bonusStage{
	structuredSlabStage,
	branchMilestoneStage,
	consistencyStage,
	crossSellStage,
	branchRankStage,
	topDecileStage,
}

// Calculate produces one CalculationResult per employee that has both sales
// in the period and a roster profile. Employees missing from Profiles are
// skipped silently. An empty fact list yields an empty (non-nil error-free)
// result set. Results are ordered by ascending employee ID.
func (e *Engine) Calculate(in EngineInput) []CalculationResult {
	st := aggregate(in)

	for _, stage := range stages {
		stage(st)
	}

	results := make([]CalculationResult, 0, len(st.tallies))
	for _, t := range st.tallies {
		results = append(results, CalculationResult{
			EmployeeID:     t.employeeID,
			Period:         in.Period,
			TotalIncentive: t.total.Round(2),
			Bonuses:        t.bonuses,
			Status:         StatusSuccess,
			CalculatedAt:   in.CalculatedAt,
		})
	}
	return results
}

// aggregate partitions facts by employee and derives the per-employee unit
// counts, distinct sale dates, and branch totals every stage depends on.
func aggregate(in EngineInput) *runState {
	byEmployee := make(map[string]*tally)
	for _, f := range in.Facts {
		profile, ok := in.Profiles[f.EmployeeID]
		if !ok {
			// Sales without a roster entry are excluded, not an error.
			continue
		}
		t := byEmployee[f.EmployeeID]
		if t == nil {
			t = &tally{
				employeeID:  f.EmployeeID,
				branch:      profile.Branch,
				role:        profile.Role,
				unitsByType: make(map[string]int),
				saleDates:   make(map[string]struct{}),
				total:       decimal.Zero,
			}
			byEmployee[f.EmployeeID] = t
		}
		t.totalUnits += f.Quantity
		t.unitsByType[f.VehicleType] += f.Quantity
		t.saleDates[f.SaleDate.Format("2006-01-02")] = struct{}{}
	}

	st := &runState{
		rules:        in.Rules,
		branchTotals: make(map[string]int),
	}
	for _, t := range byEmployee {
		st.tallies = append(st.tallies, t)
		st.branchTotals[t.branch] += t.totalUnits
	}
	sort.Slice(st.tallies, func(i, j int) bool {
		return st.tallies[i].employeeID < st.tallies[j].employeeID
	})
	return st
}

// structuredSlabStage applies the best matching slab rule per vehicle type.
// Among matching rules the highest MinUnits wins; ties go to the lowest
// rule ID so reruns are stable regardless of rule fetch order. Vehicle
// types are walked in ascending order for the same reason. A vehicle type
// with no matching rule contributes zero.
func structuredSlabStage(st *runState) {
	for _, t := range st.tallies {
		vehicleTypes := make([]string, 0, len(t.unitsByType))
		for vt := range t.unitsByType {
			vehicleTypes = append(vehicleTypes, vt)
		}
		sort.Strings(vehicleTypes)

		for _, vt := range vehicleTypes {
			count := t.unitsByType[vt]
			rule, ok := bestSlab(st.rules, t.role, vt, count)
			if !ok {
				continue
			}
			over := decimal.NewFromInt(int64(count - rule.MinUnits))
			amount := rule.BaseAmount.Add(over.Mul(rule.BonusPerUnit))
			ruleID := rule.ID
			t.apply(AppliedBonus{
				Kind:        BonusStructuredSlab,
				RuleID:      &ruleID,
				VehicleType: vt,
				Amount:      amount.Round(2),
			})
		}
	}
}

// bestSlab selects the matching rule with the highest MinUnits, breaking
// ties on the lowest rule ID.
func bestSlab(rules []IncentiveRule, role, vehicleType string, units int) (IncentiveRule, bool) {
	var best IncentiveRule
	found := false
	for _, r := range rules {
		if !r.Matches(role, vehicleType, units) {
			continue
		}
		if !found ||
			r.MinUnits > best.MinUnits ||
			(r.MinUnits == best.MinUnits && r.ID < best.ID) {
			best = r
			found = true
		}
	}
	return best, found
}

// branchMilestoneStage awards at most one milestone bonus per employee,
// based on their branch's combined unit total for the period.
func branchMilestoneStage(st *runState) {
	for _, t := range st.tallies {
		branchUnits := st.branchTotals[t.branch]
		for _, tier := range milestoneTiers {
			if branchUnits >= tier.MinUnits {
				t.apply(AppliedBonus{Kind: BonusBranchMilestone, Amount: tier.Amount})
				break
			}
		}
	}
}

func consistencyStage(st *runState) {
	for _, t := range st.tallies {
		if len(t.saleDates) >= consistencyMinDays {
			t.apply(AppliedBonus{Kind: BonusConsistency, Amount: consistencyAmount})
		}
	}
}

func crossSellStage(st *runState) {
	for _, t := range st.tallies {
		if len(t.unitsByType) >= crossSellMinVehicles {
			t.apply(AppliedBonus{Kind: BonusCrossSell, Amount: crossSellAmount})
		}
	}
}

// branchRankStage awards a one-time bonus to the top three employees per
// branch by total units. Equal totals rank by ascending employee ID, so
// ranking does not depend on repository iteration order.
func branchRankStage(st *runState) {
	byBranch := make(map[string][]*tally)
	for _, t := range st.tallies {
		byBranch[t.branch] = append(byBranch[t.branch], t)
	}
	for _, ranked := range byBranch {
		sortByUnitsDesc(ranked)
		for i, t := range ranked {
			if i >= len(rankBonuses) {
				break
			}
			t.apply(AppliedBonus{
				Kind:   BonusBranchRank,
				Rank:   i + 1,
				Amount: rankBonuses[i],
			})
		}
	}
}

// topDecileStage ranks every employee across all branches by total units
// and grants the top ceil(N/10) of them (at least one) a bonus of 50% of
// their own already-accumulated incentive. It must run last: the bonus
// amount depends on the sum of everything the earlier stages applied.
func topDecileStage(st *runState) {
	if len(st.tallies) == 0 {
		return
	}
	ranked := make([]*tally, len(st.tallies))
	copy(ranked, st.tallies)
	sortByUnitsDesc(ranked)

	topN := (len(ranked) + 9) / 10 // ceil(N * 0.1), never below 1
	for _, t := range ranked[:topN] {
		bonus := t.total.Mul(topDecileFactor).Round(2)
		t.apply(AppliedBonus{Kind: BonusTopDecile, Amount: bonus})
	}
}

func sortByUnitsDesc(ts []*tally) {
	sort.Slice(ts, func(i, j int) bool {
		if ts[i].totalUnits != ts[j].totalUnits {
			return ts[i].totalUnits > ts[j].totalUnits
		}
		return ts[i].employeeID < ts[j].employeeID
	})
}
