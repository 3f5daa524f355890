package repositories

import (
	"context"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// DBTX is the query surface shared by *pgxpool.Pool and pgx.Tx, so the same
// repository code runs standalone or inside a transaction
type DBTX interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Repositories holds all the repository instances
type Repositories struct {
	Institutions   *InstitutionRepository
	Tuition        *TuitionRepository
	Diversity      *DiversityRepository
	Salaries       *SalaryRepository
	IncomeBrackets *IncomeBracketRepository
}

// NewRepositories initializes all repositories on db
func NewRepositories(db DBTX) *Repositories {
	return &Repositories{
		Institutions:   NewInstitutionRepository(db),
		Tuition:        NewTuitionRepository(db),
		Diversity:      NewDiversityRepository(db),
		Salaries:       NewSalaryRepository(db),
		IncomeBrackets: NewIncomeBracketRepository(db),
	}
}

// statementBuilder is squirrel configured for PostgreSQL placeholders
func statementBuilder() squirrel.StatementBuilderType {
	return squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
}

// Money is stored as NUMERIC(16,2) and handled as int64 cents in Go.
// These fragments do the conversion inside PostgreSQL so no float rounding
// happens on the way in or out.
func moneyValue(cents int64) squirrel.Sqlizer {
	return squirrel.Expr("?::numeric / 100", cents)
}

func moneyColumn(column string) string {
	return "ROUND(" + column + " * 100)::BIGINT"
}

// nullableString maps the empty string to SQL NULL
func nullableString(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}

// byInstitution filters on institution_id when ids is non-empty
func byInstitution(q squirrel.SelectBuilder, column string, ids []int64) squirrel.SelectBuilder {
	if len(ids) == 0 {
		return q
	}
	return q.Where(squirrel.Eq{column: ids})
}
