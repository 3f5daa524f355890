package repositories

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"

	"github.com/yigit/costequity/internal/app/models"
	"github.com/yigit/costequity/internal/pkg/dberrors"
	"github.com/yigit/costequity/internal/pkg/logger"
)

// TuitionRepository handles tuition_records operations
type TuitionRepository struct {
	db DBTX
	sb squirrel.StatementBuilderType
}

// NewTuitionRepository creates a new TuitionRepository
func NewTuitionRepository(db DBTX) *TuitionRepository {
	return &TuitionRepository{db: db, sb: statementBuilder()}
}

// UpsertTuition inserts or overwrites the (institution, year) row
func (r *TuitionRepository) UpsertTuition(ctx context.Context, rec models.TuitionRecord) error {
	sql, args, err := r.sb.Insert("tuition_records").
		Columns("institution_id", "year", "amount").
		Values(rec.InstitutionID, rec.Year, moneyValue(rec.Amount.Cents())).
		Suffix("ON CONFLICT (institution_id, year) DO UPDATE SET amount = EXCLUDED.amount").
		ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building upsert tuition SQL")
		return fmt.Errorf("failed to build upsert tuition query: %w", err)
	}

	if _, err := r.db.Exec(ctx, sql, args...); err != nil {
		logger.Error().Err(err).Int64("institutionID", rec.InstitutionID).Int("year", rec.Year).Msg("Error executing upsert tuition query")
		return dberrors.Translate(err)
	}
	return nil
}

// ListTuition returns the tuition rows of the given institutions
func (r *TuitionRepository) ListTuition(ctx context.Context, ids []int64) ([]models.TuitionRecord, error) {
	q := byInstitution(r.sb.Select("institution_id", "year", moneyColumn("amount")).From("tuition_records"), "institution_id", ids).
		OrderBy("institution_id ASC", "year ASC")
	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build list tuition query: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Msg("Error executing list tuition query")
		return nil, fmt.Errorf("error querying tuition: %w", err)
	}
	defer rows.Close()

	records := []models.TuitionRecord{}
	for rows.Next() {
		var rec models.TuitionRecord
		var cents int64
		if err := rows.Scan(&rec.InstitutionID, &rec.Year, &cents); err != nil {
			return nil, fmt.Errorf("error scanning tuition row: %w", err)
		}
		rec.Amount = models.MoneyFromCents(cents)
		records = append(records, rec)
	}
	return records, rows.Err()
}

// DeleteByInstitution removes every tuition row of an institution
func (r *TuitionRepository) DeleteByInstitution(ctx context.Context, institutionID int64) error {
	return deleteByInstitution(ctx, r.db, r.sb, "tuition_records", institutionID)
}

// deleteByInstitution is shared by the child table repositories
func deleteByInstitution(ctx context.Context, db DBTX, sb squirrel.StatementBuilderType, table string, institutionID int64) error {
	sql, args, err := sb.Delete(table).Where(squirrel.Eq{"institution_id": institutionID}).ToSql()
	if err != nil {
		return fmt.Errorf("failed to build delete %s query: %w", table, err)
	}
	if _, err := db.Exec(ctx, sql, args...); err != nil {
		logger.Error().Err(err).Str("table", table).Int64("institutionID", institutionID).Msg("Error deleting child rows")
		return fmt.Errorf("error deleting %s: %w", table, err)
	}
	return nil
}
