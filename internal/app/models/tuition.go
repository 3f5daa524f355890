package models

// TuitionRecord is one annual total-tuition observation
type TuitionRecord struct {
	InstitutionID int64 `json:"institutionId"`
	Year          int   `json:"year"`
	Amount        Money `json:"amount"`
}
