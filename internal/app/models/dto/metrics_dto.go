package dto

import "github.com/yigit/costequity/internal/app/models"

// CreatedResponse returns the identifier of a created row
type CreatedResponse struct {
	ID int64 `json:"id"`
}

// SalaryCreatedResponse returns the sequence number of a salary observation
type SalaryCreatedResponse struct {
	InstitutionID int64 `json:"institutionId"`
	Seq           int64 `json:"seq"`
}

// MetricValueResponse is one computed metric value
type MetricValueResponse struct {
	InstitutionID int64   `json:"institutionId"`
	Metric        string  `json:"metric"`
	Year          int     `json:"year,omitempty"`
	Bracket       string  `json:"bracket,omitempty"`
	Field         string  `json:"field,omitempty"`
	Value         float64 `json:"value"`
}

// SeriesResponse is an ordered (year, value) sequence for one institution
type SeriesResponse struct {
	InstitutionID int64                `json:"institutionId"`
	Metric        string               `json:"metric"`
	Points        []models.SeriesPoint `json:"points"`
}

// AggregateResponse is grouped tuition statistics for one year
type AggregateResponse struct {
	GroupBy string                         `json:"groupBy"`
	Year    int                            `json:"year"`
	Groups  map[string]models.TuitionStats `json:"groups"`
}

// RankingResponse is an ordered metric ranking
type RankingResponse struct {
	Metric    string                     `json:"metric"`
	Year      int                        `json:"year"`
	Direction string                     `json:"direction"`
	Items     []models.RankedInstitution `json:"items"`
}
