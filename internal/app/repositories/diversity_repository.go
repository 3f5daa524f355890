package repositories

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/Masterminds/squirrel"

	"github.com/yigit/costequity/internal/app/models"
	"github.com/yigit/costequity/internal/pkg/dberrors"
	"github.com/yigit/costequity/internal/pkg/logger"
)

// DiversityRepository handles diversity_records operations.
// The demographic payload is a JSONB object of field -> percentage.
type DiversityRepository struct {
	db DBTX
	sb squirrel.StatementBuilderType
}

// NewDiversityRepository creates a new DiversityRepository
func NewDiversityRepository(db DBTX) *DiversityRepository {
	return &DiversityRepository{db: db, sb: statementBuilder()}
}

// UpsertDiversity inserts or overwrites the (institution, year) row
func (r *DiversityRepository) UpsertDiversity(ctx context.Context, rec models.DiversityRecord) error {
	payload, err := json.Marshal(rec.Demographics)
	if err != nil {
		return fmt.Errorf("failed to encode demographics: %w", err)
	}

	sql, args, err := r.sb.Insert("diversity_records").
		Columns("institution_id", "year", "demographics").
		Values(rec.InstitutionID, rec.Year, squirrel.Expr("?::jsonb", string(payload))).
		Suffix("ON CONFLICT (institution_id, year) DO UPDATE SET demographics = EXCLUDED.demographics").
		ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building upsert diversity SQL")
		return fmt.Errorf("failed to build upsert diversity query: %w", err)
	}

	if _, err := r.db.Exec(ctx, sql, args...); err != nil {
		logger.Error().Err(err).Int64("institutionID", rec.InstitutionID).Int("year", rec.Year).Msg("Error executing upsert diversity query")
		return dberrors.Translate(err)
	}
	return nil
}

// ListDiversity returns the diversity rows of the given institutions
func (r *DiversityRepository) ListDiversity(ctx context.Context, ids []int64) ([]models.DiversityRecord, error) {
	q := byInstitution(r.sb.Select("institution_id", "year", "demographics").From("diversity_records"), "institution_id", ids).
		OrderBy("institution_id ASC", "year ASC")
	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build list diversity query: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Msg("Error executing list diversity query")
		return nil, fmt.Errorf("error querying diversity: %w", err)
	}
	defer rows.Close()

	records := []models.DiversityRecord{}
	for rows.Next() {
		var rec models.DiversityRecord
		var payload []byte
		if err := rows.Scan(&rec.InstitutionID, &rec.Year, &payload); err != nil {
			return nil, fmt.Errorf("error scanning diversity row: %w", err)
		}
		if err := json.Unmarshal(payload, &rec.Demographics); err != nil {
			return nil, fmt.Errorf("error decoding demographics of institution %d: %w", rec.InstitutionID, err)
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

// DeleteByInstitution removes every diversity row of an institution
func (r *DiversityRepository) DeleteByInstitution(ctx context.Context, institutionID int64) error {
	return deleteByInstitution(ctx, r.db, r.sb, "diversity_records", institutionID)
}
