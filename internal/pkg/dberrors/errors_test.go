package dberrors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/yigit/costequity/internal/pkg/apperrors"
)

func TestTranslate(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want error
	}{
		{"unique", &pgconn.PgError{Code: UniqueViolation, ConstraintName: "institutions_name_state_key"}, apperrors.ErrConflict},
		{"wrapped unique", fmt.Errorf("insert: %w", &pgconn.PgError{Code: UniqueViolation}), apperrors.ErrConflict},
		{"foreign key", &pgconn.PgError{Code: ForeignKeyViolation}, apperrors.ErrNotFound},
		{"check", &pgconn.PgError{Code: CheckViolation}, apperrors.ErrRange},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := Translate(tc.err); !errors.Is(got, tc.want) {
				t.Fatalf("Translate(%v) = %v, want %v", tc.err, got, tc.want)
			}
		})
	}

	plain := errors.New("connection reset")
	if got := Translate(plain); got != plain {
		t.Fatalf("non-pg errors must pass through, got %v", got)
	}
	other := &pgconn.PgError{Code: "40001"}
	if got := Translate(other); got != other {
		t.Fatalf("unmapped codes must pass through, got %v", got)
	}
}

func TestIsDuplicateConstraintError(t *testing.T) {
	err := &pgconn.PgError{Code: UniqueViolation, ConstraintName: "tuition_records_pkey"}
	if !IsDuplicateConstraintError(err, "tuition_records_pkey") {
		t.Fatal("expected match")
	}
	if IsDuplicateConstraintError(err, "other") {
		t.Fatal("constraint name must match")
	}
	if !IsDuplicateKeyError(err) || IsForeignKeyError(err) || IsCheckViolation(err) {
		t.Fatal("code helpers disagree")
	}
}
