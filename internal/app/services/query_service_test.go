package services

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/rs/zerolog"

	"github.com/yigit/costequity/internal/app/metrics"
	"github.com/yigit/costequity/internal/app/models"
	"github.com/yigit/costequity/internal/app/store"
	"github.com/yigit/costequity/internal/pkg/apperrors"
)

type fixture struct {
	store *store.MemoryStore
	svc   QueryService
	ids   map[string]int64
}

// newFixture loads three institutions:
//
//	A (TX, South, 4y) tuition 2020=10000 2021=11000, <30k=4000, salary 50000
//	B (CA, West, 4y)  tuition 2020=20000, <30k=5000
//	C (no state, South, 2y) tuition 2021=5000
func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()
	s := store.NewMemoryStore()
	f := &fixture{store: s, svc: NewQueryService(s, zerolog.Nop()), ids: map[string]int64{}}

	mustCreate := func(key string, in models.InstitutionInput) int64 {
		id, err := s.CreateInstitution(ctx, in)
		if err != nil {
			t.Fatalf("create %s: %v", key, err)
		}
		f.ids[key] = id
		return id
	}
	must := func(err error) {
		t.Helper()
		if err != nil {
			t.Fatal(err)
		}
	}

	a := mustCreate("A", models.InstitutionInput{Name: "Alpha U", State: "TX", DegreeLength: 4, Region: "South"})
	b := mustCreate("B", models.InstitutionInput{Name: "Beta U", State: "CA", DegreeLength: 4, Region: "West"})
	c := mustCreate("C", models.InstitutionInput{Name: "Community C", DegreeLength: 2, Region: "South"})

	must(s.UpsertTuition(ctx, a, 2020, 1000000))
	must(s.UpsertTuition(ctx, a, 2021, 1100000))
	must(s.UpsertTuition(ctx, b, 2020, 2000000))
	must(s.UpsertTuition(ctx, c, 2021, 500000))
	must(s.UpsertIncomeBracketCost(ctx, a, "<30k", 400000))
	must(s.UpsertIncomeBracketCost(ctx, b, "<30k", 500000))
	_, err := s.AddSalaryOutcome(ctx, a, 5000000)
	must(err)
	return f
}

func TestListInstitutions(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	all, err := f.svc.ListInstitutions(ctx, models.InstitutionFilter{})
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != 3 || all[0].Name != "Alpha U" || all[2].Name != "Community C" {
		t.Fatalf("unexpected order %+v", all)
	}

	south := "South"
	four := 4
	got, err := f.svc.ListInstitutions(ctx, models.InstitutionFilter{Region: &south, DegreeLength: &four})
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 || got[0].ID != f.ids["A"] {
		t.Fatalf("conjunctive filter returned %+v", got)
	}
}

func TestGetInstitution(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	inst, err := f.svc.GetInstitution(ctx, f.ids["B"])
	if err != nil {
		t.Fatal(err)
	}
	if inst.Name != "Beta U" || inst.State != "CA" {
		t.Fatalf("unexpected institution %+v", inst)
	}
	if _, err := f.svc.GetInstitution(ctx, 9999); !errors.Is(err, apperrors.ErrNotFound) {
		t.Fatalf("want not found, got %v", err)
	}
	if _, err := f.svc.GetInstitution(ctx, 0); !errors.Is(err, apperrors.ErrNotFound) {
		t.Fatalf("zero id: want not found, got %v", err)
	}
}

func TestAggregateTuition(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	byState, err := f.svc.AggregateTuition(ctx, models.GroupByState, 2020)
	if err != nil {
		t.Fatal(err)
	}
	if len(byState) != 2 {
		t.Fatalf("want TX and CA groups, got %v", byState)
	}
	if byState["TX"].Mean != 10000 || byState["CA"].Count != 1 {
		t.Fatalf("unexpected stats %+v", byState)
	}

	// Community C has no state and only reports in 2021
	byState2021, _ := f.svc.AggregateTuition(ctx, models.GroupByState, 2021)
	if st, ok := byState2021[models.UnknownGroup]; !ok || st.Mean != 5000 {
		t.Fatalf("null state should group under unknown: %+v", byState2021)
	}

	byRegion, _ := f.svc.AggregateTuition(ctx, models.GroupByRegion, 2021)
	south := byRegion["South"]
	if south.Count != 2 || south.Mean != 8000 || south.Median != 8000 || south.Min != 5000 || south.Max != 11000 {
		t.Fatalf("unexpected South stats %+v", south)
	}

	byLength, _ := f.svc.AggregateTuition(ctx, models.GroupByDegreeLength, 2020)
	if byLength["4"].Count != 2 || byLength["4"].Mean != 15000 {
		t.Fatalf("unexpected degree length stats %+v", byLength)
	}

	if _, err := f.svc.AggregateTuition(ctx, models.GroupBy("city"), 2020); !errors.Is(err, apperrors.ErrValidation) {
		t.Fatalf("bad groupBy: want validation, got %v", err)
	}
}

func TestDescribeMedian(t *testing.T) {
	st := describe([]float64{9, 1, 5})
	if st.Median != 5 || st.Min != 1 || st.Max != 9 || st.Mean != 5 {
		t.Fatalf("odd stats %+v", st)
	}
	st = describe([]float64{4, 1, 3, 2})
	if st.Median != 2.5 {
		t.Fatalf("even median = %v, want 2.5", st.Median)
	}
}

func TestRankByMetric(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	afford := metrics.Metric{Name: metrics.MetricAffordabilityRatio, Bracket: "<30k"}

	ranked, err := f.svc.RankByMetric(ctx, afford, 2020, models.Ascending, 0)
	if err != nil {
		t.Fatal(err)
	}
	// C has no bracket cost and is excluded
	if len(ranked) != 2 {
		t.Fatalf("want 2 ranked, got %+v", ranked)
	}
	if ranked[0].Institution.ID != f.ids["B"] || math.Abs(ranked[0].Value-0.25) > 1e-12 {
		t.Fatalf("unexpected first row %+v", ranked[0])
	}
	if ranked[1].Institution.ID != f.ids["A"] || math.Abs(ranked[1].Value-0.4) > 1e-12 {
		t.Fatalf("unexpected second row %+v", ranked[1])
	}

	desc, _ := f.svc.RankByMetric(ctx, afford, 2020, models.Descending, 1)
	if len(desc) != 1 || desc[0].Institution.ID != f.ids["A"] {
		t.Fatalf("desc limit 1 returned %+v", desc)
	}

	if _, err := f.svc.RankByMetric(ctx, metrics.Metric{Name: "nope"}, 2020, models.Ascending, 0); !errors.Is(err, apperrors.ErrValidation) {
		t.Fatalf("unknown metric: want validation, got %v", err)
	}
	if _, err := f.svc.RankByMetric(ctx, afford, 2020, models.Direction("up"), 0); !errors.Is(err, apperrors.ErrValidation) {
		t.Fatalf("bad direction: want validation, got %v", err)
	}
}

func TestRankByMetricTiesByName(t *testing.T) {
	ctx := context.Background()
	s := store.NewMemoryStore()
	for _, name := range []string{"Zeta", "Eta", "Theta"} {
		id, err := s.CreateInstitution(ctx, models.InstitutionInput{Name: name, DegreeLength: 4})
		if err != nil {
			t.Fatal(err)
		}
		if err := s.UpsertTuition(ctx, id, 2022, 700000); err != nil {
			t.Fatal(err)
		}
	}
	svc := NewQueryService(s, zerolog.Nop())
	ranked, err := svc.RankByMetric(ctx, metrics.Metric{Name: metrics.MetricTuition}, 2022, models.Descending, -1)
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"Eta", "Theta", "Zeta"}
	for i, r := range ranked {
		if r.Institution.Name != want[i] {
			t.Fatalf("tie order %d = %s, want %s", i, r.Institution.Name, want[i])
		}
	}
}

func TestExportSeries(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	a := f.ids["A"]

	series, err := f.svc.ExportSeries(ctx, a, metrics.Metric{Name: metrics.MetricTuition})
	if err != nil {
		t.Fatal(err)
	}
	var points []models.SeriesPoint
	for year, v := range series {
		points = append(points, models.SeriesPoint{Year: year, Value: v})
	}
	if len(points) != 2 || points[0] != (models.SeriesPoint{Year: 2020, Value: 10000}) || points[1] != (models.SeriesPoint{Year: 2021, Value: 11000}) {
		t.Fatalf("unexpected tuition series %+v", points)
	}

	// outcome_to_cost pairs the latest salary with each year's tuition
	ratio, _ := f.svc.ExportSeries(ctx, a, metrics.Metric{Name: metrics.MetricOutcomeToCost})
	var ratios []float64
	for _, v := range ratio {
		ratios = append(ratios, v)
	}
	if len(ratios) != 2 || math.Abs(ratios[0]-5) > 1e-12 || math.Abs(ratios[1]-50000.0/11000.0) > 1e-12 {
		t.Fatalf("unexpected ratio series %v", ratios)
	}

	// tuition_change has no point for the first year
	change, _ := f.svc.ExportSeries(ctx, a, metrics.Metric{Name: metrics.MetricTuitionChange})
	n := 0
	for year, v := range change {
		n++
		if year != 2021 || v != 1000 {
			t.Fatalf("unexpected change point %d=%v", year, v)
		}
	}
	if n != 1 {
		t.Fatalf("want one change point, got %d", n)
	}
}

func TestExportSeriesAfterDelete(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	a := f.ids["A"]
	if err := f.store.DeleteInstitution(ctx, a); err != nil {
		t.Fatal(err)
	}
	series, err := f.svc.ExportSeries(ctx, a, metrics.Metric{Name: metrics.MetricTuition})
	if err != nil {
		t.Fatalf("absent institution should yield an empty series: %v", err)
	}
	for range series {
		t.Fatal("expected empty series after delete")
	}
}

func TestSummary(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	sum, err := f.svc.Summary(ctx, 2020, 1)
	if err != nil {
		t.Fatal(err)
	}
	if sum.InstitutionCount != 3 || sum.ReportingCount != 2 {
		t.Fatalf("unexpected counts %+v", sum)
	}
	if sum.AverageTuition == nil || *sum.AverageTuition != 15000 {
		t.Fatalf("unexpected average %v", sum.AverageTuition)
	}
	if len(sum.TopStatesByTuition) != 1 || sum.TopStatesByTuition[0].Key != "CA" {
		t.Fatalf("unexpected top states %+v", sum.TopStatesByTuition)
	}

	empty, err := f.svc.Summary(ctx, 1999, 10)
	if err != nil {
		t.Fatal(err)
	}
	if empty.AverageTuition != nil || len(empty.TopStatesByTuition) != 0 {
		t.Fatalf("year without data should have no average: %+v", empty)
	}
}
