// Package store defines the constraint-enforcing storage contract for
// institutions and the records they own, plus an in-memory implementation.
//
// Institution is the root of the ownership graph:
//
//	Institution -> {TuitionRecord, DiversityRecord, SalaryOutcome, IncomeBracketCost}
//
// Every implementation enforces the same invariants: unique (name, state),
// unique (institution, year) for tuition and diversity, unique
// (institution, bracket) for bracket costs, non-negative money and no
// orphaned children. A failing write leaves the store unchanged.
package store

import (
	"context"

	"github.com/yigit/costequity/internal/app/models"
)

// Writer is the ingestion contract
type Writer interface {
	CreateInstitution(ctx context.Context, in models.InstitutionInput) (int64, error)
	UpdateInstitution(ctx context.Context, id int64, in models.InstitutionInput) error
	DeleteInstitution(ctx context.Context, id int64) error
	UpsertTuition(ctx context.Context, institutionID int64, year int, amount models.Money) error
	UpsertDiversity(ctx context.Context, institutionID int64, year int, demographics models.Demographics) error
	AddSalaryOutcome(ctx context.Context, institutionID int64, amount models.Money) (int64, error)
	UpsertIncomeBracketCost(ctx context.Context, institutionID int64, bracket string, avgNetCost models.Money) error
}

// Reader exposes consistent point-in-time reads
type Reader interface {
	GetInstitution(ctx context.Context, id int64) (models.Institution, error)
	// Snapshot copies the rows of the given institutions, or of every
	// institution when ids is empty. Unknown ids are skipped.
	Snapshot(ctx context.Context, ids ...int64) (*Snapshot, error)
}

// Store is the full schema store
type Store interface {
	Writer
	Reader
}
