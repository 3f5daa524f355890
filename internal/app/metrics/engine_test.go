package metrics

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/rs/zerolog"

	"github.com/yigit/costequity/internal/app/models"
	"github.com/yigit/costequity/internal/app/store"
	"github.com/yigit/costequity/internal/pkg/apperrors"
)

func newTestEngine(t *testing.T) (*Engine, *store.MemoryStore, int64) {
	t.Helper()
	ctx := context.Background()
	s := store.NewMemoryStore()
	id, err := s.CreateInstitution(ctx, models.InstitutionInput{Name: "Alpha U", State: "TX", DegreeLength: 4, Region: "South"})
	if err != nil {
		t.Fatalf("create institution: %v", err)
	}
	if err := s.UpsertTuition(ctx, id, 2020, 1000000); err != nil {
		t.Fatalf("upsert tuition: %v", err)
	}
	if err := s.UpsertIncomeBracketCost(ctx, id, "<30k", 400000); err != nil {
		t.Fatalf("upsert bracket: %v", err)
	}
	return NewEngine(s, zerolog.Nop()), s, id
}

func almostEqual(a, b float64) bool {
	if a == b {
		return true
	}
	return math.Abs(a-b) <= 1e-9*math.Max(math.Abs(a), math.Abs(b))
}

func TestAffordabilityRatio(t *testing.T) {
	ctx := context.Background()
	e, _, id := newTestEngine(t)

	got, err := e.AffordabilityRatio(ctx, id, 2020, "<30k")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !almostEqual(got, 0.4) {
		t.Fatalf("affordability ratio = %v, want 0.4", got)
	}

	if _, err := e.AffordabilityRatio(ctx, id, 2021, "<30k"); !errors.Is(err, apperrors.ErrDataGap) {
		t.Fatalf("missing tuition: want data gap, got %v", err)
	}
	if _, err := e.AffordabilityRatio(ctx, id, 2020, "30k-60k"); !errors.Is(err, apperrors.ErrDataGap) {
		t.Fatalf("missing bracket: want data gap, got %v", err)
	}
	if _, err := e.AffordabilityRatio(ctx, 999, 2020, "<30k"); !errors.Is(err, apperrors.ErrNotFound) {
		t.Fatalf("missing institution: want not found, got %v", err)
	}
}

func TestAffordabilityRatioZeroTuition(t *testing.T) {
	ctx := context.Background()
	e, s, id := newTestEngine(t)
	if err := s.UpsertTuition(ctx, id, 2021, 0); err != nil {
		t.Fatal(err)
	}
	if _, err := e.AffordabilityRatio(ctx, id, 2021, "<30k"); !errors.Is(err, apperrors.ErrDataGap) {
		t.Fatalf("zero tuition: want data gap, got %v", err)
	}
}

func TestEquityGap(t *testing.T) {
	ctx := context.Background()
	e, s, id := newTestEngine(t)
	order := []string{"<30k", "30k-60k", ">60k"}

	if _, err := e.EquityGap(ctx, id, 2020, order); !errors.Is(err, apperrors.ErrDataGap) {
		t.Fatalf("single bracket: want data gap, got %v", err)
	}

	if err := s.UpsertIncomeBracketCost(ctx, id, ">60k", 900000); err != nil {
		t.Fatal(err)
	}
	got, err := e.EquityGap(ctx, id, 2020, order)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !almostEqual(got, 5000) {
		t.Fatalf("equity gap = %v, want 5000", got)
	}

	// the engine follows the caller's order, not label sorting
	got, err = e.EquityGap(ctx, id, 2020, []string{">60k", "<30k"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !almostEqual(got, -5000) {
		t.Fatalf("reversed order gap = %v, want -5000", got)
	}

	// brackets outside the order are ignored
	if _, err := e.EquityGap(ctx, id, 2020, []string{"<30k", "unlisted"}); !errors.Is(err, apperrors.ErrDataGap) {
		t.Fatalf("want data gap, got %v", err)
	}

	// one stored bracket listed twice is not two brackets
	if _, err := e.EquityGap(ctx, id, 2020, []string{"<30k", "<30k"}); !errors.Is(err, apperrors.ErrValidation) {
		t.Fatalf("repeated label: want validation error, got %v", err)
	}
}

func TestEquityGapCountsDistinctLabels(t *testing.T) {
	ctx := context.Background()
	_, s, id := newTestEngine(t)
	snap, err := s.Snapshot(ctx, id)
	if err != nil {
		t.Fatal(err)
	}

	if _, err := equityGap(snap, id, []string{"<30k", "<30k", "unlisted"}); !errors.Is(err, apperrors.ErrDataGap) {
		t.Fatalf("want data gap, got %v", err)
	}

	if err := s.UpsertIncomeBracketCost(ctx, id, ">60k", 900000); err != nil {
		t.Fatal(err)
	}
	snap, err = s.Snapshot(ctx, id)
	if err != nil {
		t.Fatal(err)
	}
	got, err := equityGap(snap, id, []string{"<30k", ">60k", "<30k"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !almostEqual(got, 5000) {
		t.Fatalf("equity gap = %v, want 5000", got)
	}
}

func TestCostTrend(t *testing.T) {
	ctx := context.Background()
	e, s, id := newTestEngine(t)
	for year, amount := range map[int]models.Money{2022: 1200000, 2018: 900000, 2021: 1100000} {
		if err := s.UpsertTuition(ctx, id, year, amount); err != nil {
			t.Fatal(err)
		}
	}

	trend, err := e.CostTrend(ctx, id)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	wantYears := []int{2018, 2020, 2021, 2022}
	for pass := 0; pass < 2; pass++ {
		var years []int
		for year, amount := range trend {
			years = append(years, year)
			if amount <= 0 {
				t.Fatalf("unexpected amount %v for %d", amount, year)
			}
		}
		if len(years) != len(wantYears) {
			t.Fatalf("pass %d: got years %v, want %v", pass, years, wantYears)
		}
		for i := range years {
			if years[i] != wantYears[i] {
				t.Fatalf("pass %d: got years %v, want %v", pass, years, wantYears)
			}
		}
	}

	// early break stops the sequence
	count := 0
	for range trend {
		count++
		break
	}
	if count != 1 {
		t.Fatalf("break should stop after one element, got %d", count)
	}
}

func TestCostTrendEmpty(t *testing.T) {
	ctx := context.Background()
	s := store.NewMemoryStore()
	id, _ := s.CreateInstitution(ctx, models.InstitutionInput{Name: "Empty U", DegreeLength: 2})
	e := NewEngine(s, zerolog.Nop())

	trend, err := e.CostTrend(ctx, id)
	if err != nil {
		t.Fatalf("empty trend is not an error: %v", err)
	}
	for range trend {
		t.Fatal("expected empty sequence")
	}
}

func TestOutcomeToCostRatio(t *testing.T) {
	ctx := context.Background()
	e, s, id := newTestEngine(t)

	if _, err := e.OutcomeToCostRatio(ctx, id); !errors.Is(err, apperrors.ErrDataGap) {
		t.Fatalf("no salary: want data gap, got %v", err)
	}

	if _, err := s.AddSalaryOutcome(ctx, id, 4000000); err != nil {
		t.Fatal(err)
	}
	if _, err := s.AddSalaryOutcome(ctx, id, 5000000); err != nil {
		t.Fatal(err)
	}
	if err := s.UpsertTuition(ctx, id, 2019, 500000); err != nil {
		t.Fatal(err)
	}

	got, err := e.OutcomeToCostRatio(ctx, id)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// latest salary 50000 over the 2020 tuition of 10000
	if !almostEqual(got, 5) {
		t.Fatalf("outcome to cost = %v, want 5", got)
	}
}

func TestDiversityWeightedAffordability(t *testing.T) {
	ctx := context.Background()
	e, s, id := newTestEngine(t)

	if _, err := e.DiversityWeightedAffordability(ctx, id, 2020, "<30k", "pell_pct"); !errors.Is(err, apperrors.ErrDataGap) {
		t.Fatalf("no diversity row: want data gap, got %v", err)
	}

	if err := s.UpsertDiversity(ctx, id, 2020, models.Demographics{"female_pct": 55}); err != nil {
		t.Fatal(err)
	}
	if _, err := e.DiversityWeightedAffordability(ctx, id, 2020, "<30k", "pell_pct"); !errors.Is(err, apperrors.ErrDataGap) {
		t.Fatalf("absent field: want data gap, got %v", err)
	}

	if err := s.UpsertDiversity(ctx, id, 2020, models.Demographics{"pell_pct": 50}); err != nil {
		t.Fatal(err)
	}
	got, err := e.DiversityWeightedAffordability(ctx, id, 2020, "<30k", "pell_pct")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !almostEqual(got, 0.2) {
		t.Fatalf("weighted affordability = %v, want 0.2", got)
	}
}

func TestTuitionChange(t *testing.T) {
	ctx := context.Background()
	e, s, id := newTestEngine(t)

	if _, err := e.TuitionChange(ctx, id, 2020); !errors.Is(err, apperrors.ErrDataGap) {
		t.Fatalf("single year: want data gap, got %v", err)
	}
	if err := s.UpsertTuition(ctx, id, 2017, 850000); err != nil {
		t.Fatal(err)
	}
	got, err := e.TuitionChange(ctx, id, 2020)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !almostEqual(got, 1500) {
		t.Fatalf("tuition change = %v, want 1500", got)
	}
}

func TestMetricValidate(t *testing.T) {
	cases := []struct {
		m       Metric
		wantErr bool
	}{
		{Metric{Name: MetricTuition}, false},
		{Metric{Name: MetricAffordabilityRatio}, true},
		{Metric{Name: MetricAffordabilityRatio, Bracket: "<30k"}, false},
		{Metric{Name: MetricDiversityWeightedAffordability, Bracket: "<30k"}, true},
		{Metric{Name: MetricDiversityWeightedAffordability, Bracket: "<30k", Field: "pell_pct"}, false},
		{Metric{Name: MetricEquityGap, BracketOrder: []string{"<30k"}}, true},
		{Metric{Name: MetricEquityGap, BracketOrder: []string{"<30k", ">60k"}}, false},
		{Metric{Name: MetricEquityGap, BracketOrder: []string{"<30k", "<30k"}}, true},
		{Metric{Name: MetricEquityGap, BracketOrder: []string{"<30k", " "}}, true},
		{Metric{Name: "graduation_rate"}, true},
	}
	for _, tc := range cases {
		err := tc.m.Validate()
		if tc.wantErr && !errors.Is(err, apperrors.ErrValidation) {
			t.Errorf("%+v: want validation error, got %v", tc.m, err)
		}
		if !tc.wantErr && err != nil {
			t.Errorf("%+v: unexpected error %v", tc.m, err)
		}
	}
}

func TestEngineDoesNotMutate(t *testing.T) {
	ctx := context.Background()
	e, s, id := newTestEngine(t)

	before, _ := s.Snapshot(ctx, id)
	_, _ = e.AffordabilityRatio(ctx, id, 2020, "<30k")
	_, _ = e.EquityGap(ctx, id, 2020, []string{"<30k", ">60k"})
	_, _ = e.OutcomeToCostRatio(ctx, id)
	after, _ := s.Snapshot(ctx, id)

	if len(before.TuitionRecords(id)) != len(after.TuitionRecords(id)) ||
		len(before.BracketCosts(id)) != len(after.BracketCosts(id)) ||
		len(before.Salaries(id)) != len(after.Salaries(id)) {
		t.Fatal("engine calls changed the store")
	}
}
