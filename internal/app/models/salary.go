package models

import "time"

// SalaryOutcome is an early-career median salary observation.
// Seq grows with every insert and defines "most recent".
type SalaryOutcome struct {
	InstitutionID int64     `json:"institutionId"`
	Seq           int64     `json:"seq"`
	MedianSalary  Money     `json:"medianSalary"`
	RecordedAt    time.Time `json:"recordedAt"`
}
