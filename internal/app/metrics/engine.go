// Package metrics computes derived equity indicators by joining an
// institution's tuition, bracket cost, salary and diversity rows.
//
// Every computation runs on a store snapshot taken at the start of the call,
// never mutates the store and never substitutes a default for a missing
// operand: absent inputs surface as apperrors.ErrDataGap.
package metrics

import (
	"context"
	"iter"

	"github.com/rs/zerolog"

	"github.com/yigit/costequity/internal/app/store"
	"github.com/yigit/costequity/internal/pkg/apperrors"
)

// Engine evaluates metrics against a store
type Engine struct {
	store  store.Reader
	logger zerolog.Logger
}

// NewEngine creates a metrics engine reading from r
func NewEngine(r store.Reader, logger zerolog.Logger) *Engine {
	return &Engine{
		store:  r,
		logger: logger.With().Str("component", "metrics").Logger(),
	}
}

// snapshotFor loads the rows of one institution, failing if it does not exist
func (e *Engine) snapshotFor(ctx context.Context, id int64) (*store.Snapshot, error) {
	snap, err := e.store.Snapshot(ctx, id)
	if err != nil {
		return nil, err
	}
	if _, ok := snap.Institution(id); !ok {
		return nil, apperrors.ErrInstitutionNotFound
	}
	return snap, nil
}

// AffordabilityRatio returns avgNetCost(bracket) / tuition(year)
func (e *Engine) AffordabilityRatio(ctx context.Context, institutionID int64, year int, bracket string) (float64, error) {
	snap, err := e.snapshotFor(ctx, institutionID)
	if err != nil {
		return 0, err
	}
	return e.logGap(affordabilityRatio(snap, institutionID, year, bracket))
}

// CostTrend returns the institution's (year, tuition) pairs ascending by year.
// The sequence is finite and can be ranged over any number of times;
// it is empty when no tuition rows exist.
func (e *Engine) CostTrend(ctx context.Context, institutionID int64) (iter.Seq2[int, float64], error) {
	snap, err := e.snapshotFor(ctx, institutionID)
	if err != nil {
		return nil, err
	}
	records := snap.TuitionRecords(institutionID)
	return func(yield func(int, float64) bool) {
		for _, r := range records {
			if !yield(r.Year, r.Amount.Float()) {
				return
			}
		}
	}, nil
}

// EquityGap returns the net cost difference between the highest and lowest
// present brackets of order (lowest income first). order needs at least two
// distinct labels. Bracket costs carry no year, so year only scopes the request.
func (e *Engine) EquityGap(ctx context.Context, institutionID int64, year int, order []string) (float64, error) {
	if err := validateBracketOrder(order); err != nil {
		return 0, err
	}
	snap, err := e.snapshotFor(ctx, institutionID)
	if err != nil {
		return 0, err
	}
	e.logger.Debug().Int64("institutionID", institutionID).Int("year", year).Strs("order", order).Msg("Computing equity gap")
	return e.logGap(equityGap(snap, institutionID, order))
}

// OutcomeToCostRatio returns the latest salary outcome divided by the tuition
// of the most recent tuition year
func (e *Engine) OutcomeToCostRatio(ctx context.Context, institutionID int64) (float64, error) {
	snap, err := e.snapshotFor(ctx, institutionID)
	if err != nil {
		return 0, err
	}
	return e.logGap(outcomeToCost(snap, institutionID, 0))
}

// DiversityWeightedAffordability returns the affordability ratio weighted by
// diversity field / 100
func (e *Engine) DiversityWeightedAffordability(ctx context.Context, institutionID int64, year int, bracket, field string) (float64, error) {
	snap, err := e.snapshotFor(ctx, institutionID)
	if err != nil {
		return 0, err
	}
	return e.logGap(diversityWeightedAffordability(snap, institutionID, year, bracket, field))
}

// TuitionChange returns tuition(year) minus the previous recorded year's tuition
func (e *Engine) TuitionChange(ctx context.Context, institutionID int64, year int) (float64, error) {
	snap, err := e.snapshotFor(ctx, institutionID)
	if err != nil {
		return 0, err
	}
	return e.logGap(tuitionChange(snap, institutionID, year))
}

// Evaluate computes any named metric for one institution and year
func (e *Engine) Evaluate(ctx context.Context, m Metric, institutionID int64, year int) (float64, error) {
	if err := m.Validate(); err != nil {
		return 0, err
	}
	snap, err := e.snapshotFor(ctx, institutionID)
	if err != nil {
		return 0, err
	}
	return e.logGap(m.Evaluate(snap, institutionID, year))
}

func (e *Engine) logGap(v float64, err error) (float64, error) {
	if err != nil {
		e.logger.Debug().Err(err).Msg("Metric not computable")
	}
	return v, err
}
