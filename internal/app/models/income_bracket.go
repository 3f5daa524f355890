package models

// IncomeBracketCost is the average net cost paid by one household-income tier
type IncomeBracketCost struct {
	InstitutionID int64  `json:"institutionId"`
	Bracket       string `json:"bracket"`
	AvgNetCost    Money  `json:"avgNetCost"`
}
