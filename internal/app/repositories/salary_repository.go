package repositories

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"

	"github.com/yigit/costequity/internal/app/models"
	"github.com/yigit/costequity/internal/pkg/dberrors"
	"github.com/yigit/costequity/internal/pkg/logger"
)

// SalaryRepository handles salary_outcomes operations.
// seq is a BIGSERIAL and orders observations by insertion.
type SalaryRepository struct {
	db DBTX
	sb squirrel.StatementBuilderType
}

// NewSalaryRepository creates a new SalaryRepository
func NewSalaryRepository(db DBTX) *SalaryRepository {
	return &SalaryRepository{db: db, sb: statementBuilder()}
}

// AddSalaryOutcome appends an observation and returns its seq
func (r *SalaryRepository) AddSalaryOutcome(ctx context.Context, institutionID int64, amount models.Money) (int64, error) {
	sql, args, err := r.sb.Insert("salary_outcomes").
		Columns("institution_id", "median_salary").
		Values(institutionID, moneyValue(amount.Cents())).
		Suffix("RETURNING seq").
		ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building add salary SQL")
		return 0, fmt.Errorf("failed to build add salary query: %w", err)
	}

	var seq int64
	if err := r.db.QueryRow(ctx, sql, args...).Scan(&seq); err != nil {
		logger.Error().Err(err).Int64("institutionID", institutionID).Msg("Error executing add salary query")
		return 0, dberrors.Translate(err)
	}
	return seq, nil
}

// ListSalaries returns the salary rows of the given institutions in seq order
func (r *SalaryRepository) ListSalaries(ctx context.Context, ids []int64) ([]models.SalaryOutcome, error) {
	q := byInstitution(r.sb.Select("institution_id", "seq", moneyColumn("median_salary"), "recorded_at").From("salary_outcomes"), "institution_id", ids).
		OrderBy("seq ASC")
	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build list salaries query: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Msg("Error executing list salaries query")
		return nil, fmt.Errorf("error querying salaries: %w", err)
	}
	defer rows.Close()

	outcomes := []models.SalaryOutcome{}
	for rows.Next() {
		var o models.SalaryOutcome
		var cents int64
		if err := rows.Scan(&o.InstitutionID, &o.Seq, &cents, &o.RecordedAt); err != nil {
			return nil, fmt.Errorf("error scanning salary row: %w", err)
		}
		o.MedianSalary = models.MoneyFromCents(cents)
		outcomes = append(outcomes, o)
	}
	return outcomes, rows.Err()
}

// DeleteByInstitution removes every salary row of an institution
func (r *SalaryRepository) DeleteByInstitution(ctx context.Context, institutionID int64) error {
	return deleteByInstitution(ctx, r.db, r.sb, "salary_outcomes", institutionID)
}
