package services

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"sort"
	"strconv"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/yigit/costequity/internal/app/metrics"
	"github.com/yigit/costequity/internal/app/models"
	"github.com/yigit/costequity/internal/app/store"
	"github.com/yigit/costequity/internal/pkg/apperrors"
)

// QueryService defines the grouped, filtered and sorted views offered to
// reporting and visualization collaborators
type QueryService interface {
	GetInstitution(ctx context.Context, id int64) (*models.Institution, error)
	ListInstitutions(ctx context.Context, filter models.InstitutionFilter) ([]models.Institution, error)
	AggregateTuition(ctx context.Context, groupBy models.GroupBy, year int) (map[string]models.TuitionStats, error)
	RankByMetric(ctx context.Context, metric metrics.Metric, year int, direction models.Direction, limit int) ([]models.RankedInstitution, error)
	ExportSeries(ctx context.Context, institutionID int64, metric metrics.Metric) (iter.Seq2[int, float64], error)
	Summary(ctx context.Context, year, topN int) (*models.Summary, error)
}

// queryServiceImpl implements the QueryService interface
type queryServiceImpl struct {
	store  store.Reader
	logger zerolog.Logger
}

// NewQueryService creates a new query service
func NewQueryService(r store.Reader, logger zerolog.Logger) QueryService {
	return &queryServiceImpl{
		store:  r,
		logger: logger.With().Str("component", "query").Logger(),
	}
}

// GetInstitution returns one institution
func (s *queryServiceImpl) GetInstitution(ctx context.Context, id int64) (*models.Institution, error) {
	if err := validateID(id); err != nil {
		return nil, err
	}
	inst, err := s.store.GetInstitution(ctx, id)
	if err != nil {
		return nil, err
	}
	return &inst, nil
}

// ListInstitutions returns the institutions matching every set filter field,
// ordered by name then state
func (s *queryServiceImpl) ListInstitutions(ctx context.Context, filter models.InstitutionFilter) ([]models.Institution, error) {
	snap, err := s.store.Snapshot(ctx)
	if err != nil {
		return nil, fmt.Errorf("error loading institutions: %w", err)
	}
	return listInstitutions(snap, filter), nil
}

func listInstitutions(snap *store.Snapshot, filter models.InstitutionFilter) []models.Institution {
	out := []models.Institution{}
	for _, inst := range snap.Institutions() {
		if filter.Matches(inst) {
			out = append(out, inst)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return out[i].State < out[j].State
	})
	return out
}

// AggregateTuition groups the institutions that report tuition for year and
// returns count, mean, median, min and max per group. Empty groups are omitted.
func (s *queryServiceImpl) AggregateTuition(ctx context.Context, groupBy models.GroupBy, year int) (map[string]models.TuitionStats, error) {
	if !groupBy.Valid() {
		return nil, apperrors.NewValidationError(fmt.Sprintf("invalid groupBy %q (want region, state or degree_length)", groupBy))
	}
	snap, err := s.store.Snapshot(ctx)
	if err != nil {
		return nil, fmt.Errorf("error loading tuition: %w", err)
	}
	return aggregateTuition(snap, groupBy, year), nil
}

func groupKey(inst models.Institution, groupBy models.GroupBy) string {
	var key string
	switch groupBy {
	case models.GroupByRegion:
		key = inst.Region
	case models.GroupByState:
		key = inst.State
	case models.GroupByDegreeLength:
		key = strconv.Itoa(inst.DegreeLength)
	}
	if key == "" {
		return models.UnknownGroup
	}
	return key
}

func aggregateTuition(snap *store.Snapshot, groupBy models.GroupBy, year int) map[string]models.TuitionStats {
	groups := map[string][]float64{}
	for _, inst := range snap.Institutions() {
		amount, ok := snap.Tuition(inst.ID, year)
		if !ok {
			continue
		}
		key := groupKey(inst, groupBy)
		groups[key] = append(groups[key], amount.Float())
	}

	out := make(map[string]models.TuitionStats, len(groups))
	for key, values := range groups {
		out[key] = describe(values)
	}
	return out
}

// describe computes summary statistics; values must be non-empty
func describe(values []float64) models.TuitionStats {
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)

	sum := 0.0
	for _, v := range sorted {
		sum += v
	}
	n := len(sorted)
	median := sorted[n/2]
	if n%2 == 0 {
		median = (sorted[n/2-1] + sorted[n/2]) / 2
	}
	return models.TuitionStats{
		Count:  n,
		Mean:   sum / float64(n),
		Median: median,
		Min:    sorted[0],
		Max:    sorted[n-1],
	}
}

// RankByMetric orders institutions by a metric for one year. Institutions
// whose metric cannot be computed are left out. Ties are broken by name.
// A non-positive limit returns every ranked institution.
func (s *queryServiceImpl) RankByMetric(ctx context.Context, metric metrics.Metric, year int, direction models.Direction, limit int) ([]models.RankedInstitution, error) {
	if err := metric.Validate(); err != nil {
		return nil, err
	}
	if !direction.Valid() {
		return nil, apperrors.NewValidationError(fmt.Sprintf("invalid direction %q (want asc or desc)", direction))
	}
	snap, err := s.store.Snapshot(ctx)
	if err != nil {
		return nil, fmt.Errorf("error loading snapshot for ranking: %w", err)
	}

	ranked, excluded, err := rank(snap, metric, year, direction)
	if err != nil {
		return nil, err
	}
	s.logger.Debug().Str("metric", metric.Name).Int("year", year).Int("ranked", len(ranked)).Int("excluded", excluded).Msg("Ranking computed")

	if limit > 0 && len(ranked) > limit {
		ranked = ranked[:limit]
	}
	return ranked, nil
}

func rank(snap *store.Snapshot, metric metrics.Metric, year int, direction models.Direction) ([]models.RankedInstitution, int, error) {
	ranked := []models.RankedInstitution{}
	excluded := 0
	for _, inst := range snap.Institutions() {
		value, err := metric.Evaluate(snap, inst.ID, year)
		if err != nil {
			if errors.Is(err, apperrors.ErrDataGap) {
				excluded++
				continue
			}
			return nil, 0, err
		}
		ranked = append(ranked, models.RankedInstitution{Institution: inst, Value: value})
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		a, b := ranked[i], ranked[j]
		if a.Value != b.Value {
			if direction == models.Descending {
				return a.Value > b.Value
			}
			return a.Value < b.Value
		}
		if a.Institution.Name != b.Institution.Name {
			return a.Institution.Name < b.Institution.Name
		}
		return a.Institution.ID < b.Institution.ID
	})
	return ranked, excluded, nil
}

// ExportSeries returns one (year, value) point per tuition year of the
// institution for which the metric is computable, ascending by year.
// An unknown institution yields an empty series.
func (s *queryServiceImpl) ExportSeries(ctx context.Context, institutionID int64, metric metrics.Metric) (iter.Seq2[int, float64], error) {
	if err := metric.Validate(); err != nil {
		return nil, err
	}
	snap, err := s.store.Snapshot(ctx, institutionID)
	if err != nil {
		return nil, fmt.Errorf("error loading snapshot for series: %w", err)
	}
	years := snap.TuitionYears(institutionID)

	return func(yield func(int, float64) bool) {
		for _, year := range years {
			value, err := metric.Evaluate(snap, institutionID, year)
			if err != nil {
				continue
			}
			if !yield(year, value) {
				return
			}
		}
	}, nil
}

// Summary computes the dashboard overview: institution count, mean tuition
// for year and the topN states by mean tuition. The parts run concurrently
// over one snapshot.
func (s *queryServiceImpl) Summary(ctx context.Context, year, topN int) (*models.Summary, error) {
	snap, err := s.store.Snapshot(ctx)
	if err != nil {
		return nil, fmt.Errorf("error loading snapshot for summary: %w", err)
	}

	summary := &models.Summary{Year: year}
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		summary.InstitutionCount = len(listInstitutions(snap, models.InstitutionFilter{}))
		return gctx.Err()
	})

	g.Go(func() error {
		var values []float64
		for _, inst := range snap.Institutions() {
			if amount, ok := snap.Tuition(inst.ID, year); ok {
				values = append(values, amount.Float())
			}
		}
		summary.ReportingCount = len(values)
		if len(values) > 0 {
			mean := describe(values).Mean
			summary.AverageTuition = &mean
		}
		return gctx.Err()
	})

	g.Go(func() error {
		summary.TopStatesByTuition = topGroups(aggregateTuition(snap, models.GroupByState, year), topN)
		return gctx.Err()
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return summary, nil
}

// topGroups orders groups by mean descending (key ascending on ties) and keeps n
func topGroups(groups map[string]models.TuitionStats, n int) []models.GroupStat {
	out := make([]models.GroupStat, 0, len(groups))
	for key, stats := range groups {
		out = append(out, models.GroupStat{Key: key, Stats: stats})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Stats.Mean != out[j].Stats.Mean {
			return out[i].Stats.Mean > out[j].Stats.Mean
		}
		return out[i].Key < out[j].Key
	})
	if n > 0 && len(out) > n {
		out = out[:n]
	}
	return out
}
