package models

import "sort"

// Demographics maps a percentage field name (female_pct, pell_pct, ...) to its value
type Demographics map[string]float64

// Clone returns an independent copy
func (d Demographics) Clone() Demographics {
	if d == nil {
		return nil
	}
	out := make(Demographics, len(d))
	for k, v := range d {
		out[k] = v
	}
	return out
}

// Fields returns the field names in sorted order
func (d Demographics) Fields() []string {
	names := make([]string, 0, len(d))
	for k := range d {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

// DiversityRecord is the demographic composition of one institution in one year
type DiversityRecord struct {
	InstitutionID int64        `json:"institutionId"`
	Year          int          `json:"year"`
	Demographics  Demographics `json:"demographics"`
}
