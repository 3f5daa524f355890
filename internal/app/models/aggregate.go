package models

// TuitionStats summarizes the tuition of one group of institutions in one year
type TuitionStats struct {
	Count  int     `json:"count"`
	Mean   float64 `json:"mean"`
	Median float64 `json:"median"`
	Min    float64 `json:"min"`
	Max    float64 `json:"max"`
}

// GroupStat is one group key with its statistics, used for ordered listings
type GroupStat struct {
	Key   string       `json:"key"`
	Stats TuitionStats `json:"stats"`
}

// RankedInstitution is one row of a metric ranking
type RankedInstitution struct {
	Institution Institution `json:"institution"`
	Value       float64     `json:"value"`
}

// SeriesPoint is one (year, value) pair handed to visualization collaborators
type SeriesPoint struct {
	Year  int     `json:"year"`
	Value float64 `json:"value"`
}

// Summary is the dashboard overview for one year
type Summary struct {
	Year               int         `json:"year"`
	InstitutionCount   int         `json:"institutionCount"`
	ReportingCount     int         `json:"reportingCount"`
	AverageTuition     *float64    `json:"averageTuition,omitempty"`
	TopStatesByTuition []GroupStat `json:"topStatesByTuition"`
}
