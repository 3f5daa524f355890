package dberrors

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/yigit/costequity/internal/pkg/apperrors"
)

// PostgreSQL SQLSTATE codes the store reacts to
const (
	UniqueViolation     = "23505"
	ForeignKeyViolation = "23503"
	CheckViolation      = "23514"
)

// IsDuplicateConstraintError checks if the error is a PostgreSQL unique violation error
// for a specific constraint.
func IsDuplicateConstraintError(err error, constraintName string) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == UniqueViolation && pgErr.ConstraintName == constraintName
}

// IsDuplicateKeyError reports a unique violation on any constraint
func IsDuplicateKeyError(err error) bool {
	return hasCode(err, UniqueViolation)
}

// IsForeignKeyError reports a reference to a missing parent row
func IsForeignKeyError(err error) bool {
	return hasCode(err, ForeignKeyViolation)
}

// IsCheckViolation reports a failed CHECK constraint
func IsCheckViolation(err error) bool {
	return hasCode(err, CheckViolation)
}

func hasCode(err error, code string) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == code
}

// Translate maps constraint failures to the application's error kinds.
// Unique violations become conflicts, foreign key violations mean the
// institution is gone and check violations are range errors. Other errors
// are returned unchanged.
func Translate(err error) error {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return err
	}
	switch pgErr.Code {
	case UniqueViolation:
		return apperrors.NewCustomError(apperrors.ErrConflict, pgErr.Message).
			WithDetails(map[string]interface{}{"constraint": pgErr.ConstraintName})
	case ForeignKeyViolation:
		return apperrors.ErrInstitutionNotFound
	case CheckViolation:
		return apperrors.NewCustomError(apperrors.ErrRange, pgErr.Message).
			WithDetails(map[string]interface{}{"constraint": pgErr.ConstraintName})
	}
	return err
}
