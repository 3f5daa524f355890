package metrics

import (
	"fmt"
	"strings"

	"github.com/yigit/costequity/internal/app/store"
	"github.com/yigit/costequity/internal/pkg/apperrors"
)

// Metric names accepted by rankings and series export
const (
	MetricTuition                        = "tuition"
	MetricAffordabilityRatio             = "affordability_ratio"
	MetricEquityGap                      = "equity_gap"
	MetricOutcomeToCost                  = "outcome_to_cost"
	MetricDiversityWeightedAffordability = "diversity_weighted_affordability"
	MetricTuitionChange                  = "tuition_change"
)

// Names lists every supported metric
var Names = []string{
	MetricTuition,
	MetricAffordabilityRatio,
	MetricEquityGap,
	MetricOutcomeToCost,
	MetricDiversityWeightedAffordability,
	MetricTuitionChange,
}

// Metric names a derived indicator together with the parameters it needs.
//
// Evaluate always works on the requested year. For outcome_to_cost that means
// rankings and series divide the latest salary by that year's tuition, while
// Engine.OutcomeToCostRatio uses the most recent tuition year instead.
type Metric struct {
	Name string
	// Bracket is required by affordability_ratio and diversity_weighted_affordability
	Bracket string
	// Field is the diversity field used by diversity_weighted_affordability
	Field string
	// BracketOrder lists bracket labels from lowest to highest income, for equity_gap
	BracketOrder []string
}

// Validate checks that the metric is known and carries its parameters
func (m Metric) Validate() error {
	switch m.Name {
	case MetricTuition, MetricOutcomeToCost, MetricTuitionChange:
		return nil
	case MetricAffordabilityRatio:
		if strings.TrimSpace(m.Bracket) == "" {
			return apperrors.NewValidationError("affordability_ratio requires a bracket")
		}
		return nil
	case MetricDiversityWeightedAffordability:
		if strings.TrimSpace(m.Bracket) == "" || strings.TrimSpace(m.Field) == "" {
			return apperrors.NewValidationError("diversity_weighted_affordability requires a bracket and a field")
		}
		return nil
	case MetricEquityGap:
		return validateBracketOrder(m.BracketOrder)
	default:
		return apperrors.NewValidationError(fmt.Sprintf("unknown metric %q (want one of %s)", m.Name, strings.Join(Names, ", ")))
	}
}

// Evaluate computes the metric for one institution and year on a snapshot
func (m Metric) Evaluate(snap *store.Snapshot, institutionID int64, year int) (float64, error) {
	switch m.Name {
	case MetricTuition:
		amount, ok := snap.Tuition(institutionID, year)
		if !ok {
			return 0, gap("no tuition for institution %d in %d", institutionID, year)
		}
		return amount.Float(), nil
	case MetricAffordabilityRatio:
		return affordabilityRatio(snap, institutionID, year, m.Bracket)
	case MetricEquityGap:
		return equityGap(snap, institutionID, m.BracketOrder)
	case MetricOutcomeToCost:
		return outcomeToCost(snap, institutionID, year)
	case MetricDiversityWeightedAffordability:
		return diversityWeightedAffordability(snap, institutionID, year, m.Bracket, m.Field)
	case MetricTuitionChange:
		return tuitionChange(snap, institutionID, year)
	default:
		return 0, m.Validate()
	}
}

// validateBracketOrder requires at least two distinct, non-blank labels
func validateBracketOrder(order []string) error {
	if len(order) < 2 {
		return apperrors.NewValidationError("equity_gap requires a bracket order of at least two labels")
	}
	seen := make(map[string]struct{}, len(order))
	for _, label := range order {
		if strings.TrimSpace(label) == "" {
			return apperrors.NewValidationError("equity_gap bracket order contains a blank label")
		}
		if _, dup := seen[label]; dup {
			return apperrors.NewValidationError(fmt.Sprintf("equity_gap bracket order repeats %q", label))
		}
		seen[label] = struct{}{}
	}
	return nil
}
