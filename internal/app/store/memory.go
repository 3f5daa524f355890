package store

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/yigit/costequity/internal/app/models"
	"github.com/yigit/costequity/internal/pkg/apperrors"
	"github.com/yigit/costequity/internal/pkg/validation"
)

// Compile-time check that MemoryStore satisfies Store
var _ Store = (*MemoryStore)(nil)

// MemoryStore keeps every table in process memory.
// All writes hold mu exclusively for their whole check-and-apply step;
// reads copy rows into a Snapshot under the read lock.
type MemoryStore struct {
	mu sync.RWMutex

	nextID  int64
	nextSeq int64

	institutions map[int64]models.Institution
	byKey        map[models.InstitutionKey]int64
	tuition      map[int64]map[int]models.Money
	diversity    map[int64]map[int]models.Demographics
	salaries     map[int64][]models.SalaryOutcome
	brackets     map[int64]map[string]models.Money

	now func() time.Time
}

// NewMemoryStore creates an empty in-memory store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		institutions: map[int64]models.Institution{},
		byKey:        map[models.InstitutionKey]int64{},
		tuition:      map[int64]map[int]models.Money{},
		diversity:    map[int64]map[int]models.Demographics{},
		salaries:     map[int64][]models.SalaryOutcome{},
		brackets:     map[int64]map[string]models.Money{},
		now:          time.Now,
	}
}

// CreateInstitution inserts a new institution and returns its id
func (s *MemoryStore) CreateInstitution(ctx context.Context, in models.InstitutionInput) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	if err := validation.ValidateInstitution(in); err != nil {
		return 0, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.byKey[in.Key()]; exists {
		return 0, apperrors.ErrInstitutionAlreadyExists
	}

	s.nextID++
	inst := models.Institution{
		ID:           s.nextID,
		Name:         in.Name,
		State:        in.State,
		DegreeLength: in.DegreeLength,
		Region:       in.Region,
	}
	s.institutions[inst.ID] = inst
	s.byKey[inst.Key()] = inst.ID
	return inst.ID, nil
}

// UpdateInstitution replaces the attributes of an existing institution.
// Children reference the surrogate id and are unaffected.
func (s *MemoryStore) UpdateInstitution(ctx context.Context, id int64, in models.InstitutionInput) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := validation.ValidateInstitution(in); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	current, ok := s.institutions[id]
	if !ok {
		return apperrors.ErrInstitutionNotFound
	}
	if other, exists := s.byKey[in.Key()]; exists && other != id {
		return apperrors.ErrInstitutionAlreadyExists
	}

	delete(s.byKey, current.Key())
	updated := models.Institution{
		ID:           id,
		Name:         in.Name,
		State:        in.State,
		DegreeLength: in.DegreeLength,
		Region:       in.Region,
	}
	s.institutions[id] = updated
	s.byKey[updated.Key()] = id
	return nil
}

// DeleteInstitution removes an institution and cascades to every owned row.
// Deleting an absent institution returns a not-found error.
func (s *MemoryStore) DeleteInstitution(ctx context.Context, id int64) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	inst, ok := s.institutions[id]
	if !ok {
		return apperrors.ErrInstitutionNotFound
	}

	s.cascadeDelete(id)
	delete(s.byKey, inst.Key())
	delete(s.institutions, id)
	return nil
}

// cascadeDelete walks the ownership graph of one institution
func (s *MemoryStore) cascadeDelete(id int64) {
	for _, drop := range []func(int64){
		func(id int64) { delete(s.tuition, id) },
		func(id int64) { delete(s.diversity, id) },
		func(id int64) { delete(s.salaries, id) },
		func(id int64) { delete(s.brackets, id) },
	} {
		drop(id)
	}
}

// UpsertTuition inserts or overwrites the (institution, year) tuition row
func (s *MemoryStore) UpsertTuition(ctx context.Context, institutionID int64, year int, amount models.Money) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := validation.ValidateYear(year); err != nil {
		return err
	}
	if err := validation.ValidateMoney(amount); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.requireInstitution(institutionID); err != nil {
		return err
	}
	byYear, ok := s.tuition[institutionID]
	if !ok {
		byYear = map[int]models.Money{}
		s.tuition[institutionID] = byYear
	}
	byYear[year] = amount
	return nil
}

// UpsertDiversity inserts or overwrites the (institution, year) diversity row
func (s *MemoryStore) UpsertDiversity(ctx context.Context, institutionID int64, year int, demographics models.Demographics) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := validation.ValidateYear(year); err != nil {
		return err
	}
	if err := validation.ValidateDemographics(demographics, validation.DemographicRules{}); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.requireInstitution(institutionID); err != nil {
		return err
	}
	byYear, ok := s.diversity[institutionID]
	if !ok {
		byYear = map[int]models.Demographics{}
		s.diversity[institutionID] = byYear
	}
	byYear[year] = demographics.Clone()
	return nil
}

// AddSalaryOutcome appends a salary observation and returns its sequence number
func (s *MemoryStore) AddSalaryOutcome(ctx context.Context, institutionID int64, amount models.Money) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	if err := validation.ValidateMoney(amount); err != nil {
		return 0, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.requireInstitution(institutionID); err != nil {
		return 0, err
	}
	s.nextSeq++
	s.salaries[institutionID] = append(s.salaries[institutionID], models.SalaryOutcome{
		InstitutionID: institutionID,
		Seq:           s.nextSeq,
		MedianSalary:  amount,
		RecordedAt:    s.now().UTC(),
	})
	return s.nextSeq, nil
}

// UpsertIncomeBracketCost inserts or overwrites the (institution, bracket) row
func (s *MemoryStore) UpsertIncomeBracketCost(ctx context.Context, institutionID int64, bracket string, avgNetCost models.Money) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := validation.ValidateBracket(bracket); err != nil {
		return err
	}
	if err := validation.ValidateMoney(avgNetCost); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.requireInstitution(institutionID); err != nil {
		return err
	}
	byBracket, ok := s.brackets[institutionID]
	if !ok {
		byBracket = map[string]models.Money{}
		s.brackets[institutionID] = byBracket
	}
	byBracket[bracket] = avgNetCost
	return nil
}

// GetInstitution returns one institution
func (s *MemoryStore) GetInstitution(ctx context.Context, id int64) (models.Institution, error) {
	if err := ctx.Err(); err != nil {
		return models.Institution{}, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	inst, ok := s.institutions[id]
	if !ok {
		return models.Institution{}, apperrors.ErrInstitutionNotFound
	}
	return inst, nil
}

// Snapshot copies the requested institutions and their rows
func (s *MemoryStore) Snapshot(ctx context.Context, ids ...int64) (*Snapshot, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	snap := NewSnapshot()
	copyOne := func(id int64) {
		inst, ok := s.institutions[id]
		if !ok {
			return
		}
		snap.AddInstitution(inst)
		for year, amount := range s.tuition[id] {
			snap.AddTuition(models.TuitionRecord{InstitutionID: id, Year: year, Amount: amount})
		}
		for year, d := range s.diversity[id] {
			snap.AddDiversity(models.DiversityRecord{InstitutionID: id, Year: year, Demographics: d})
		}
		for _, row := range s.salaries[id] {
			snap.AddSalary(row)
		}
		for bracket, cost := range s.brackets[id] {
			snap.AddBracketCost(models.IncomeBracketCost{InstitutionID: id, Bracket: bracket, AvgNetCost: cost})
		}
	}

	if len(ids) == 0 {
		for id := range s.institutions {
			copyOne(id)
		}
	} else {
		for _, id := range ids {
			copyOne(id)
		}
	}
	return snap, nil
}

// requireInstitution must be called with mu held
func (s *MemoryStore) requireInstitution(id int64) error {
	if _, ok := s.institutions[id]; !ok {
		return apperrors.NewResourceNotFoundError(fmt.Sprintf("institution %d not found", id))
	}
	return nil
}
