package dto

import "github.com/yigit/costequity/internal/app/models"

// InstitutionRequest creates or replaces an institution
type InstitutionRequest struct {
	Name         string `json:"name" binding:"required,max=255"`
	State        string `json:"state" binding:"omitempty,len=2,uppercase"`
	DegreeLength int    `json:"degreeLength" binding:"required,min=1,max=8"`
	Region       string `json:"region" binding:"max=64"`
}

// ToInput converts the request to the store input
func (r InstitutionRequest) ToInput() models.InstitutionInput {
	return models.InstitutionInput{
		Name:         r.Name,
		State:        r.State,
		DegreeLength: r.DegreeLength,
		Region:       r.Region,
	}
}

// TuitionRequest sets the tuition of one year; the year is a path parameter
type TuitionRequest struct {
	Amount *float64 `json:"amount" binding:"required"`
}

// DiversityRequest sets the demographic payload of one year.
// Values are kept raw so non-numeric entries can be reported precisely.
type DiversityRequest struct {
	Demographics map[string]interface{} `json:"demographics" binding:"required"`
	Partitions   [][]string             `json:"partitions"`
}

// SalaryRequest appends one salary observation
type SalaryRequest struct {
	MedianSalary *float64 `json:"medianSalary" binding:"required"`
}

// BracketCostRequest sets the net cost of one bracket; the label is a path parameter
type BracketCostRequest struct {
	AvgNetCost *float64 `json:"avgNetCost" binding:"required"`
}

// InstitutionListQuery holds the optional list filters. Absent parameters stay nil.
type InstitutionListQuery struct {
	State        *string `form:"state"`
	Region       *string `form:"region"`
	DegreeLength *int    `form:"degreeLength" binding:"omitempty,min=1,max=8"`
}

// ToFilter converts the query to the store filter
func (q InstitutionListQuery) ToFilter() models.InstitutionFilter {
	return models.InstitutionFilter{
		State:        q.State,
		Region:       q.Region,
		DegreeLength: q.DegreeLength,
	}
}

// RankingQuery holds the ranking parameters. Year stays raw so fractional
// and out-of-range values are reported as range errors.
type RankingQuery struct {
	Metric    string `form:"metric" binding:"required"`
	Year      string `form:"year" binding:"required"`
	Direction string `form:"direction"`
	Limit     int    `form:"limit" binding:"min=0"`
}
