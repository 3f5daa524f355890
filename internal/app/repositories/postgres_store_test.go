package repositories

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/yigit/costequity/internal/app/migrations"
	"github.com/yigit/costequity/internal/app/models"
	"github.com/yigit/costequity/internal/db"
	"github.com/yigit/costequity/internal/pkg/apperrors"
)

// newTestStore connects to TEST_POSTGRES_DSN, applies the migrations and
// empties every table. Tests are skipped when the variable is unset.
func newTestStore(t *testing.T) *PostgresStore {
	t.Helper()
	dsn := os.Getenv("TEST_POSTGRES_DSN")
	if dsn == "" {
		t.Skip("set TEST_POSTGRES_DSN to run postgres store integration tests")
	}

	ctx := context.Background()
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	t.Cleanup(pool.Close)

	if err := migrations.NewMigrator(pool).MigrateFromDirectory(ctx, filepath.Join("..", "..", "..", "migrations")); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	if _, err := pool.Exec(ctx, `TRUNCATE institutions, tuition_records, diversity_records, salary_outcomes, income_bracket_costs RESTART IDENTITY CASCADE`); err != nil {
		t.Fatalf("truncate: %v", err)
	}
	return NewPostgresStore(&db.PostgresDB{Pool: pool})
}

func TestPostgresStoreInstitutions(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	id, err := s.CreateInstitution(ctx, models.InstitutionInput{Name: "Alpha U", State: "TX", DegreeLength: 4, Region: "South"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := s.CreateInstitution(ctx, models.InstitutionInput{Name: "Alpha U", State: "TX", DegreeLength: 2}); !errors.Is(err, apperrors.ErrConflict) {
		t.Fatalf("duplicate: want conflict, got %v", err)
	}

	// two null states with the same name conflict as well
	if _, err := s.CreateInstitution(ctx, models.InstitutionInput{Name: "Online U", DegreeLength: 4}); err != nil {
		t.Fatal(err)
	}
	if _, err := s.CreateInstitution(ctx, models.InstitutionInput{Name: "Online U", DegreeLength: 4}); !errors.Is(err, apperrors.ErrConflict) {
		t.Fatalf("null state duplicate: want conflict, got %v", err)
	}

	if err := s.UpdateInstitution(ctx, id, models.InstitutionInput{Name: "Alpha University", State: "TX", DegreeLength: 4, Region: "South"}); err != nil {
		t.Fatalf("update: %v", err)
	}
	got, err := s.GetInstitution(ctx, id)
	if err != nil || got.Name != "Alpha University" {
		t.Fatalf("get after update = %+v, %v", got, err)
	}
	if _, err := s.GetInstitution(ctx, id+1000); !errors.Is(err, apperrors.ErrNotFound) {
		t.Fatalf("missing: want not found, got %v", err)
	}
}

func TestPostgresStoreChildRowsAndCascade(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	id, err := s.CreateInstitution(ctx, models.InstitutionInput{Name: "Beta College", State: "CA", DegreeLength: 2})
	if err != nil {
		t.Fatal(err)
	}
	must := func(err error) {
		t.Helper()
		if err != nil {
			t.Fatal(err)
		}
	}
	must(s.UpsertTuition(ctx, id, 2020, 1000001))
	must(s.UpsertTuition(ctx, id, 2020, 1234599))
	must(s.UpsertDiversity(ctx, id, 2020, models.Demographics{"pell_pct": 41.5}))
	must(s.UpsertIncomeBracketCost(ctx, id, "0-30000", 450050))
	first, err := s.AddSalaryOutcome(ctx, id, 4000000)
	must(err)
	second, err := s.AddSalaryOutcome(ctx, id, 4200000)
	must(err)
	if second <= first {
		t.Fatalf("seq must grow: %d then %d", first, second)
	}

	if err := s.UpsertTuition(ctx, id+1000, 2020, 100); !errors.Is(err, apperrors.ErrNotFound) {
		t.Fatalf("orphan tuition: want not found, got %v", err)
	}

	snap, err := s.Snapshot(ctx, id)
	if err != nil {
		t.Fatal(err)
	}
	if amount, ok := snap.Tuition(id, 2020); !ok || amount != 1234599 {
		t.Fatalf("tuition round trip = %v %v", amount, ok)
	}
	if d, ok := snap.Demographics(id, 2020); !ok || d["pell_pct"] != 41.5 {
		t.Fatalf("demographics round trip = %v", d)
	}
	if latest, ok := snap.LatestSalary(id); !ok || latest.MedianSalary != 4200000 {
		t.Fatalf("latest salary = %+v", latest)
	}
	if cost, ok := snap.BracketCost(id, "0-30000"); !ok || cost != 450050 {
		t.Fatalf("bracket cost = %v", cost)
	}

	must(s.DeleteInstitution(ctx, id))
	if err := s.DeleteInstitution(ctx, id); !errors.Is(err, apperrors.ErrNotFound) {
		t.Fatalf("second delete: want not found, got %v", err)
	}
	snap, err = s.Snapshot(ctx, id)
	must(err)
	if len(snap.TuitionRecords(id)) != 0 || len(snap.Salaries(id)) != 0 || len(snap.BracketCosts(id)) != 0 {
		t.Fatal("cascade left child rows")
	}
}

func TestPostgresStoreConcurrentUpserts(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	id, err := s.CreateInstitution(ctx, models.InstitutionInput{Name: "Gamma Tech", DegreeLength: 4})
	if err != nil {
		t.Fatal(err)
	}

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			if err := s.UpsertTuition(ctx, id, 2021, models.Money(100000+i)); err != nil {
				t.Errorf("upsert %d: %v", i, err)
			}
		}(i)
	}
	wg.Wait()

	snap, err := s.Snapshot(ctx, id)
	if err != nil {
		t.Fatal(err)
	}
	if records := snap.TuitionRecords(id); len(records) != 1 {
		t.Fatalf("want exactly one row, got %+v", records)
	}
}
