package models

import "fmt"

// Money is a non-negative monetary amount stored as a count of cents
type Money int64

// MoneyFromCents wraps a raw cent count
func MoneyFromCents(cents int64) Money {
	return Money(cents)
}

// Cents returns the raw cent count
func (m Money) Cents() int64 {
	return int64(m)
}

// Float returns the amount in currency units
func (m Money) Float() float64 {
	return float64(m) / 100
}

// String formats the amount with two decimal places
func (m Money) String() string {
	cents := int64(m)
	sign := ""
	if cents < 0 {
		sign = "-"
		cents = -cents
	}
	return fmt.Sprintf("%s%d.%02d", sign, cents/100, cents%100)
}

// GroupBy names the institution attribute used to bucket aggregates
type GroupBy string

// GroupBy constants
const (
	GroupByRegion       GroupBy = "region"
	GroupByState        GroupBy = "state"
	GroupByDegreeLength GroupBy = "degree_length"
)

// Valid reports whether g is a known grouping attribute
func (g GroupBy) Valid() bool {
	switch g {
	case GroupByRegion, GroupByState, GroupByDegreeLength:
		return true
	}
	return false
}

// Direction is a sort direction for rankings
type Direction string

// Direction constants
const (
	Ascending  Direction = "asc"
	Descending Direction = "desc"
)

// Valid reports whether d is asc or desc
func (d Direction) Valid() bool {
	return d == Ascending || d == Descending
}

// UnknownGroup is the aggregate key for institutions whose grouping attribute is null
const UnknownGroup = "unknown"
