package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"

	"github.com/yigit/costequity/internal/app/models"
	"github.com/yigit/costequity/internal/pkg/apperrors"
	"github.com/yigit/costequity/internal/pkg/dberrors"
	"github.com/yigit/costequity/internal/pkg/logger"
)

var institutionColumns = []string{"id", "name", "COALESCE(state, '')", "degree_length", "region"}

// InstitutionRepository handles institution database operations
type InstitutionRepository struct {
	db DBTX
	sb squirrel.StatementBuilderType
}

// NewInstitutionRepository creates a new InstitutionRepository
func NewInstitutionRepository(db DBTX) *InstitutionRepository {
	return &InstitutionRepository{
		db: db,
		sb: statementBuilder(),
	}
}

func scanInstitution(row pgx.Row) (models.Institution, error) {
	var inst models.Institution
	err := row.Scan(&inst.ID, &inst.Name, &inst.State, &inst.DegreeLength, &inst.Region)
	return inst, err
}

// CreateInstitution inserts an institution and returns its id
func (r *InstitutionRepository) CreateInstitution(ctx context.Context, in models.InstitutionInput) (int64, error) {
	sql, args, err := r.sb.Insert("institutions").
		Columns("name", "state", "degree_length", "region").
		Values(in.Name, nullableString(in.State), in.DegreeLength, in.Region).
		Suffix("RETURNING id").
		ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building create institution SQL")
		return 0, fmt.Errorf("failed to build create institution query: %w", err)
	}

	var id int64
	if err := r.db.QueryRow(ctx, sql, args...).Scan(&id); err != nil {
		if dberrors.IsDuplicateKeyError(err) {
			return 0, apperrors.ErrInstitutionAlreadyExists
		}
		logger.Error().Err(err).Str("name", in.Name).Msg("Error executing create institution query")
		return 0, fmt.Errorf("error creating institution: %w", dberrors.Translate(err))
	}
	return id, nil
}

// GetInstitutionByID retrieves an institution by ID
func (r *InstitutionRepository) GetInstitutionByID(ctx context.Context, id int64) (models.Institution, error) {
	sql, args, err := r.sb.Select(institutionColumns...).
		From("institutions").
		Where(squirrel.Eq{"id": id}).
		Limit(1).
		ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building get institution SQL")
		return models.Institution{}, fmt.Errorf("failed to build get institution query: %w", err)
	}

	inst, err := scanInstitution(r.db.QueryRow(ctx, sql, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Institution{}, apperrors.ErrInstitutionNotFound
		}
		logger.Error().Err(err).Int64("institutionID", id).Msg("Error scanning institution row")
		return models.Institution{}, fmt.Errorf("error getting institution by ID: %w", err)
	}
	return inst, nil
}

// ListInstitutions returns the institutions with the given ids, or all of
// them when ids is empty, ordered by id
func (r *InstitutionRepository) ListInstitutions(ctx context.Context, ids []int64) ([]models.Institution, error) {
	q := byInstitution(r.sb.Select(institutionColumns...).From("institutions"), "id", ids).OrderBy("id ASC")
	sql, args, err := q.ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building list institutions SQL")
		return nil, fmt.Errorf("failed to build list institutions query: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Msg("Error executing list institutions query")
		return nil, fmt.Errorf("error querying institutions: %w", err)
	}
	defer rows.Close()

	institutions := []models.Institution{}
	for rows.Next() {
		inst, err := scanInstitution(rows)
		if err != nil {
			return nil, fmt.Errorf("error scanning institution row: %w", err)
		}
		institutions = append(institutions, inst)
	}
	if err := rows.Err(); err != nil {
		logger.Error().Err(err).Msg("Error iterating institution rows")
		return nil, fmt.Errorf("error iterating institution rows: %w", err)
	}
	return institutions, nil
}

// UpdateInstitution replaces the attributes of an institution
func (r *InstitutionRepository) UpdateInstitution(ctx context.Context, id int64, in models.InstitutionInput) error {
	sql, args, err := r.sb.Update("institutions").
		SetMap(map[string]interface{}{
			"name":          in.Name,
			"state":         nullableString(in.State),
			"degree_length": in.DegreeLength,
			"region":        in.Region,
			"updated_at":    squirrel.Expr("now()"),
		}).
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building update institution SQL")
		return fmt.Errorf("failed to build update institution query: %w", err)
	}

	cmdTag, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		if dberrors.IsDuplicateKeyError(err) {
			return apperrors.ErrInstitutionAlreadyExists
		}
		logger.Error().Err(err).Int64("institutionID", id).Msg("Error executing update institution query")
		return fmt.Errorf("error updating institution: %w", dberrors.Translate(err))
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.ErrInstitutionNotFound
	}
	return nil
}

// LockInstitution takes a row lock on the institution for the rest of the
// surrounding transaction. It fails with ErrInstitutionNotFound when absent.
func (r *InstitutionRepository) LockInstitution(ctx context.Context, id int64) error {
	sql, args, err := r.sb.Select("id").
		From("institutions").
		Where(squirrel.Eq{"id": id}).
		Suffix("FOR UPDATE").
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build lock institution query: %w", err)
	}

	var locked int64
	if err := r.db.QueryRow(ctx, sql, args...).Scan(&locked); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.ErrInstitutionNotFound
		}
		logger.Error().Err(err).Int64("institutionID", id).Msg("Error locking institution row")
		return fmt.Errorf("error locking institution: %w", err)
	}
	return nil
}

// DeleteInstitution deletes the institution row only; callers remove
// children first
func (r *InstitutionRepository) DeleteInstitution(ctx context.Context, id int64) error {
	sql, args, err := r.sb.Delete("institutions").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building delete institution SQL")
		return fmt.Errorf("failed to build delete institution query: %w", err)
	}

	cmdTag, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Int64("institutionID", id).Msg("Error executing delete institution query")
		return fmt.Errorf("error deleting institution: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.ErrInstitutionNotFound
	}
	return nil
}
