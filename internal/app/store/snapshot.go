package store

import (
	"sort"

	"github.com/yigit/costequity/internal/app/models"
)

// Snapshot is an immutable copy of a set of institutions and their child rows.
// Builders (Add*) are only called by store implementations before the
// snapshot is handed out.
type Snapshot struct {
	institutions map[int64]models.Institution
	tuition      map[int64]map[int]models.Money
	diversity    map[int64]map[int]models.Demographics
	salaries     map[int64][]models.SalaryOutcome
	brackets     map[int64]map[string]models.Money
}

// NewSnapshot creates an empty snapshot
func NewSnapshot() *Snapshot {
	return &Snapshot{
		institutions: map[int64]models.Institution{},
		tuition:      map[int64]map[int]models.Money{},
		diversity:    map[int64]map[int]models.Demographics{},
		salaries:     map[int64][]models.SalaryOutcome{},
		brackets:     map[int64]map[string]models.Money{},
	}
}

// AddInstitution records an institution row
func (s *Snapshot) AddInstitution(inst models.Institution) {
	s.institutions[inst.ID] = inst
}

// AddTuition records a tuition row
func (s *Snapshot) AddTuition(r models.TuitionRecord) {
	byYear, ok := s.tuition[r.InstitutionID]
	if !ok {
		byYear = map[int]models.Money{}
		s.tuition[r.InstitutionID] = byYear
	}
	byYear[r.Year] = r.Amount
}

// AddDiversity records a diversity row
func (s *Snapshot) AddDiversity(r models.DiversityRecord) {
	byYear, ok := s.diversity[r.InstitutionID]
	if !ok {
		byYear = map[int]models.Demographics{}
		s.diversity[r.InstitutionID] = byYear
	}
	byYear[r.Year] = r.Demographics.Clone()
}

// AddSalary records a salary row; rows are kept ordered by Seq
func (s *Snapshot) AddSalary(r models.SalaryOutcome) {
	rows := append(s.salaries[r.InstitutionID], r)
	sort.Slice(rows, func(i, j int) bool { return rows[i].Seq < rows[j].Seq })
	s.salaries[r.InstitutionID] = rows
}

// AddBracketCost records an income bracket row
func (s *Snapshot) AddBracketCost(r models.IncomeBracketCost) {
	byBracket, ok := s.brackets[r.InstitutionID]
	if !ok {
		byBracket = map[string]models.Money{}
		s.brackets[r.InstitutionID] = byBracket
	}
	byBracket[r.Bracket] = r.AvgNetCost
}

// Institution returns the institution with the given id
func (s *Snapshot) Institution(id int64) (models.Institution, bool) {
	inst, ok := s.institutions[id]
	return inst, ok
}

// Institutions returns every institution ordered by id
func (s *Snapshot) Institutions() []models.Institution {
	out := make([]models.Institution, 0, len(s.institutions))
	for _, inst := range s.institutions {
		out = append(out, inst)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Tuition returns the tuition amount for (id, year)
func (s *Snapshot) Tuition(id int64, year int) (models.Money, bool) {
	amount, ok := s.tuition[id][year]
	return amount, ok
}

// TuitionYears returns the years with a tuition row, ascending
func (s *Snapshot) TuitionYears(id int64) []int {
	years := make([]int, 0, len(s.tuition[id]))
	for y := range s.tuition[id] {
		years = append(years, y)
	}
	sort.Ints(years)
	return years
}

// TuitionRecords returns the tuition rows of an institution, ascending by year
func (s *Snapshot) TuitionRecords(id int64) []models.TuitionRecord {
	years := s.TuitionYears(id)
	out := make([]models.TuitionRecord, 0, len(years))
	for _, y := range years {
		out = append(out, models.TuitionRecord{InstitutionID: id, Year: y, Amount: s.tuition[id][y]})
	}
	return out
}

// Demographics returns the diversity payload for (id, year)
func (s *Snapshot) Demographics(id int64, year int) (models.Demographics, bool) {
	d, ok := s.diversity[id][year]
	if !ok {
		return nil, false
	}
	return d.Clone(), true
}

// DiversityRecords returns the diversity rows of an institution, ascending by year
func (s *Snapshot) DiversityRecords(id int64) []models.DiversityRecord {
	years := make([]int, 0, len(s.diversity[id]))
	for y := range s.diversity[id] {
		years = append(years, y)
	}
	sort.Ints(years)
	out := make([]models.DiversityRecord, 0, len(years))
	for _, y := range years {
		out = append(out, models.DiversityRecord{InstitutionID: id, Year: y, Demographics: s.diversity[id][y].Clone()})
	}
	return out
}

// Salaries returns the salary rows of an institution in insertion order
func (s *Snapshot) Salaries(id int64) []models.SalaryOutcome {
	rows := s.salaries[id]
	out := make([]models.SalaryOutcome, len(rows))
	copy(out, rows)
	return out
}

// LatestSalary returns the most recently inserted salary outcome
func (s *Snapshot) LatestSalary(id int64) (models.SalaryOutcome, bool) {
	rows := s.salaries[id]
	if len(rows) == 0 {
		return models.SalaryOutcome{}, false
	}
	return rows[len(rows)-1], true
}

// BracketCost returns the average net cost for (id, bracket)
func (s *Snapshot) BracketCost(id int64, bracket string) (models.Money, bool) {
	cost, ok := s.brackets[id][bracket]
	return cost, ok
}

// BracketCosts returns the bracket rows of an institution ordered by label
func (s *Snapshot) BracketCosts(id int64) []models.IncomeBracketCost {
	labels := make([]string, 0, len(s.brackets[id]))
	for b := range s.brackets[id] {
		labels = append(labels, b)
	}
	sort.Strings(labels)
	out := make([]models.IncomeBracketCost, 0, len(labels))
	for _, b := range labels {
		out = append(out, models.IncomeBracketCost{InstitutionID: id, Bracket: b, AvgNetCost: s.brackets[id][b]})
	}
	return out
}
