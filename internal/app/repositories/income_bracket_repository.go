package repositories

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"

	"github.com/yigit/costequity/internal/app/models"
	"github.com/yigit/costequity/internal/pkg/dberrors"
	"github.com/yigit/costequity/internal/pkg/logger"
)

// IncomeBracketRepository handles income_bracket_costs operations
type IncomeBracketRepository struct {
	db DBTX
	sb squirrel.StatementBuilderType
}

// NewIncomeBracketRepository creates a new IncomeBracketRepository
func NewIncomeBracketRepository(db DBTX) *IncomeBracketRepository {
	return &IncomeBracketRepository{db: db, sb: statementBuilder()}
}

// UpsertIncomeBracketCost inserts or overwrites the (institution, bracket) row
func (r *IncomeBracketRepository) UpsertIncomeBracketCost(ctx context.Context, rec models.IncomeBracketCost) error {
	sql, args, err := r.sb.Insert("income_bracket_costs").
		Columns("institution_id", "bracket", "avg_net_cost").
		Values(rec.InstitutionID, rec.Bracket, moneyValue(rec.AvgNetCost.Cents())).
		Suffix("ON CONFLICT (institution_id, bracket) DO UPDATE SET avg_net_cost = EXCLUDED.avg_net_cost").
		ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building upsert bracket cost SQL")
		return fmt.Errorf("failed to build upsert bracket cost query: %w", err)
	}

	if _, err := r.db.Exec(ctx, sql, args...); err != nil {
		logger.Error().Err(err).Int64("institutionID", rec.InstitutionID).Str("bracket", rec.Bracket).Msg("Error executing upsert bracket cost query")
		return dberrors.Translate(err)
	}
	return nil
}

// ListIncomeBracketCosts returns the bracket rows of the given institutions
func (r *IncomeBracketRepository) ListIncomeBracketCosts(ctx context.Context, ids []int64) ([]models.IncomeBracketCost, error) {
	q := byInstitution(r.sb.Select("institution_id", "bracket", moneyColumn("avg_net_cost")).From("income_bracket_costs"), "institution_id", ids).
		OrderBy("institution_id ASC", "bracket ASC")
	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build list bracket costs query: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Msg("Error executing list bracket costs query")
		return nil, fmt.Errorf("error querying bracket costs: %w", err)
	}
	defer rows.Close()

	costs := []models.IncomeBracketCost{}
	for rows.Next() {
		var c models.IncomeBracketCost
		var cents int64
		if err := rows.Scan(&c.InstitutionID, &c.Bracket, &cents); err != nil {
			return nil, fmt.Errorf("error scanning bracket cost row: %w", err)
		}
		c.AvgNetCost = models.MoneyFromCents(cents)
		costs = append(costs, c)
	}
	return costs, rows.Err()
}

// DeleteByInstitution removes every bracket row of an institution
func (r *IncomeBracketRepository) DeleteByInstitution(ctx context.Context, institutionID int64) error {
	return deleteByInstitution(ctx, r.db, r.sb, "income_bracket_costs", institutionID)
}
