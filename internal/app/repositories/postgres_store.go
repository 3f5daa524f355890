package repositories

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/yigit/costequity/internal/app/models"
	"github.com/yigit/costequity/internal/app/store"
	"github.com/yigit/costequity/internal/db"
	"github.com/yigit/costequity/internal/pkg/validation"
)

// Compile-time check that PostgresStore satisfies store.Store
var _ store.Store = (*PostgresStore)(nil)

// PostgresStore is the relational store.Store. Single-row writes rely on
// constraints and ON CONFLICT upserts; deletes and snapshots run in
// transactions.
type PostgresStore struct {
	db    *db.PostgresDB
	repos *Repositories
}

// NewPostgresStore creates a store on an open connection pool
func NewPostgresStore(pg *db.PostgresDB) *PostgresStore {
	return &PostgresStore{
		db:    pg,
		repos: NewRepositories(pg.Pool),
	}
}

// CreateInstitution inserts a new institution and returns its id
func (s *PostgresStore) CreateInstitution(ctx context.Context, in models.InstitutionInput) (int64, error) {
	if err := validation.ValidateInstitution(in); err != nil {
		return 0, err
	}
	return s.repos.Institutions.CreateInstitution(ctx, in)
}

// UpdateInstitution replaces the attributes of an existing institution
func (s *PostgresStore) UpdateInstitution(ctx context.Context, id int64, in models.InstitutionInput) error {
	if err := validation.ValidateInstitution(in); err != nil {
		return err
	}
	return s.repos.Institutions.UpdateInstitution(ctx, id, in)
}

// DeleteInstitution locks the institution row, removes its children table by
// table and then the row itself, all in one transaction
func (s *PostgresStore) DeleteInstitution(ctx context.Context, id int64) error {
	return s.db.WithTransaction(ctx, func(ctx context.Context, tx pgx.Tx) error {
		repos := NewRepositories(tx)
		if err := repos.Institutions.LockInstitution(ctx, id); err != nil {
			return err
		}
		for _, deleteChildren := range []func(context.Context, int64) error{
			repos.Tuition.DeleteByInstitution,
			repos.Diversity.DeleteByInstitution,
			repos.Salaries.DeleteByInstitution,
			repos.IncomeBrackets.DeleteByInstitution,
		} {
			if err := deleteChildren(ctx, id); err != nil {
				return err
			}
		}
		return repos.Institutions.DeleteInstitution(ctx, id)
	})
}

// UpsertTuition inserts or overwrites the (institution, year) tuition row
func (s *PostgresStore) UpsertTuition(ctx context.Context, institutionID int64, year int, amount models.Money) error {
	if err := validation.ValidateYear(year); err != nil {
		return err
	}
	if err := validation.ValidateMoney(amount); err != nil {
		return err
	}
	return s.repos.Tuition.UpsertTuition(ctx, models.TuitionRecord{InstitutionID: institutionID, Year: year, Amount: amount})
}

// UpsertDiversity inserts or overwrites the (institution, year) diversity row
func (s *PostgresStore) UpsertDiversity(ctx context.Context, institutionID int64, year int, demographics models.Demographics) error {
	if err := validation.ValidateYear(year); err != nil {
		return err
	}
	if err := validation.ValidateDemographics(demographics, validation.DemographicRules{}); err != nil {
		return err
	}
	if demographics == nil {
		demographics = models.Demographics{}
	}
	return s.repos.Diversity.UpsertDiversity(ctx, models.DiversityRecord{InstitutionID: institutionID, Year: year, Demographics: demographics})
}

// AddSalaryOutcome appends a salary observation and returns its seq
func (s *PostgresStore) AddSalaryOutcome(ctx context.Context, institutionID int64, amount models.Money) (int64, error) {
	if err := validation.ValidateMoney(amount); err != nil {
		return 0, err
	}
	return s.repos.Salaries.AddSalaryOutcome(ctx, institutionID, amount)
}

// UpsertIncomeBracketCost inserts or overwrites the (institution, bracket) row
func (s *PostgresStore) UpsertIncomeBracketCost(ctx context.Context, institutionID int64, bracket string, avgNetCost models.Money) error {
	if err := validation.ValidateBracket(bracket); err != nil {
		return err
	}
	if err := validation.ValidateMoney(avgNetCost); err != nil {
		return err
	}
	return s.repos.IncomeBrackets.UpsertIncomeBracketCost(ctx, models.IncomeBracketCost{InstitutionID: institutionID, Bracket: bracket, AvgNetCost: avgNetCost})
}

// GetInstitution returns one institution
func (s *PostgresStore) GetInstitution(ctx context.Context, id int64) (models.Institution, error) {
	return s.repos.Institutions.GetInstitutionByID(ctx, id)
}

// Snapshot reads the requested institutions and every child row inside one
// repeatable-read transaction
func (s *PostgresStore) Snapshot(ctx context.Context, ids ...int64) (*store.Snapshot, error) {
	snap := store.NewSnapshot()
	err := s.db.WithSnapshot(ctx, func(ctx context.Context, tx pgx.Tx) error {
		repos := NewRepositories(tx)

		institutions, err := repos.Institutions.ListInstitutions(ctx, ids)
		if err != nil {
			return err
		}
		if len(institutions) == 0 {
			return nil
		}
		for _, inst := range institutions {
			snap.AddInstitution(inst)
		}

		tuition, err := repos.Tuition.ListTuition(ctx, ids)
		if err != nil {
			return err
		}
		for _, r := range tuition {
			snap.AddTuition(r)
		}

		diversity, err := repos.Diversity.ListDiversity(ctx, ids)
		if err != nil {
			return err
		}
		for _, r := range diversity {
			snap.AddDiversity(r)
		}

		salaries, err := repos.Salaries.ListSalaries(ctx, ids)
		if err != nil {
			return err
		}
		for _, r := range salaries {
			snap.AddSalary(r)
		}

		costs, err := repos.IncomeBrackets.ListIncomeBracketCosts(ctx, ids)
		if err != nil {
			return err
		}
		for _, r := range costs {
			snap.AddBracketCost(r)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("error reading snapshot: %w", err)
	}
	return snap, nil
}
