package models

// Institution is the root entity that owns every other record
type Institution struct {
	ID           int64  `json:"id"`
	Name         string `json:"name"`
	State        string `json:"state,omitempty"` // empty means null
	DegreeLength int    `json:"degreeLength"`
	Region       string `json:"region"`
}

// InstitutionInput carries the writable institution attributes
type InstitutionInput struct {
	Name         string
	State        string
	DegreeLength int
	Region       string
}

// Key returns the (name, state) uniqueness key
func (i InstitutionInput) Key() InstitutionKey {
	return InstitutionKey{Name: i.Name, State: i.State}
}

// InstitutionKey is the natural key of an institution
type InstitutionKey struct {
	Name  string
	State string
}

// Key returns the (name, state) uniqueness key
func (i Institution) Key() InstitutionKey {
	return InstitutionKey{Name: i.Name, State: i.State}
}

// InstitutionFilter selects institutions; nil fields match everything
type InstitutionFilter struct {
	State        *string
	Region       *string
	DegreeLength *int
}

// Matches reports whether inst satisfies every set field of the filter
func (f InstitutionFilter) Matches(inst Institution) bool {
	if f.State != nil && inst.State != *f.State {
		return false
	}
	if f.Region != nil && inst.Region != *f.Region {
		return false
	}
	if f.DegreeLength != nil && inst.DegreeLength != *f.DegreeLength {
		return false
	}
	return true
}
