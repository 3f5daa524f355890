package validation

import (
	"encoding/json"
	"fmt"
	"math"
	"regexp"
	"strings"

	"github.com/yigit/costequity/internal/app/models"
	"github.com/yigit/costequity/internal/pkg/apperrors"
)

// Validation bounds
var (
	// MinYear and MaxYear bound every year-scoped record
	MinYear = 1900
	MaxYear = 2100

	// StatePattern is a two letter upper-case postal code
	StatePattern = `^[A-Z]{2}$`

	// DegreeLength bounds in years
	MinDegreeLength = 1
	MaxDegreeLength = 8

	// MaxMoney keeps cent counts far away from int64 overflow
	MaxMoney = 1e13

	// DefaultPartitionTolerance is the allowed distance of a partition sum from 100
	DefaultPartitionTolerance = 0.5

	// centEpsilon is the sub-cent residue tolerated when rounding to cents,
	// on top of float64 representation error
	centEpsilon = 1e-6
)

// CompiledPatterns caches compiled regex patterns
var CompiledPatterns = struct {
	State *regexp.Regexp
}{
	State: regexp.MustCompile(StatePattern),
}

// ValidateYear checks that year lies in [MinYear, MaxYear]
func ValidateYear(year int) error {
	if year < MinYear || year > MaxYear {
		return apperrors.NewRangeError(fmt.Sprintf("year %d outside [%d, %d]", year, MinYear, MaxYear))
	}
	return nil
}

// YearFromFloat converts a decoded JSON number to a year, rejecting fractions
func YearFromFloat(v float64) (int, error) {
	if math.IsNaN(v) || math.IsInf(v, 0) || v != math.Trunc(v) {
		return 0, apperrors.NewRangeError(fmt.Sprintf("year %v is not an integer", v))
	}
	if v < float64(MinYear) || v > float64(MaxYear) {
		return 0, apperrors.NewRangeError(fmt.Sprintf("year %v outside [%d, %d]", v, MinYear, MaxYear))
	}
	return int(v), nil
}

// MoneyFromFloat converts a currency amount to cents.
// The amount must be finite, non-negative and exact to the cent.
func MoneyFromFloat(v float64) (models.Money, error) {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, apperrors.NewValidationError("amount must be a finite number")
	}
	if v < 0 {
		return 0, apperrors.NewRangeError(fmt.Sprintf("amount %v is negative", v))
	}
	if v > MaxMoney {
		return 0, apperrors.NewRangeError(fmt.Sprintf("amount %v exceeds %v", v, MaxMoney))
	}
	cents := v * 100
	rounded := math.Round(cents)
	if math.Abs(cents-rounded) > centEpsilon+rounded*1e-15 {
		return 0, apperrors.NewValidationError(fmt.Sprintf("amount %v has sub-cent precision", v))
	}
	return models.MoneyFromCents(int64(rounded)), nil
}

// ValidateMoney checks an already-converted amount
func ValidateMoney(m models.Money) error {
	if m < 0 {
		return apperrors.NewRangeError(fmt.Sprintf("amount %s is negative", m))
	}
	return nil
}

// ValidateInstitution checks the writable institution attributes
func ValidateInstitution(in models.InstitutionInput) error {
	if strings.TrimSpace(in.Name) == "" {
		return apperrors.NewValidationError("institution name cannot be empty")
	}
	if in.State != "" && !CompiledPatterns.State.MatchString(in.State) {
		return apperrors.NewValidationError(fmt.Sprintf("state %q must be a two letter upper-case code", in.State))
	}
	if in.DegreeLength < MinDegreeLength || in.DegreeLength > MaxDegreeLength {
		return apperrors.NewValidationError(fmt.Sprintf("degree length %d outside [%d, %d]", in.DegreeLength, MinDegreeLength, MaxDegreeLength))
	}
	return nil
}

// ValidateBracket checks an income bracket label
func ValidateBracket(label string) error {
	if strings.TrimSpace(label) == "" {
		return apperrors.NewValidationError("income bracket label cannot be empty")
	}
	return nil
}

// DemographicRules configures payload checks.
// Recognized, when non-empty, is the closed set of accepted field names.
// Each Partitions group must be fully present and sum to 100 within Tolerance.
type DemographicRules struct {
	Recognized []string
	Partitions [][]string
	Tolerance  float64
}

// ValidateDemographics checks every field of a demographic payload
func ValidateDemographics(d models.Demographics, rules DemographicRules) error {
	var recognized map[string]struct{}
	if len(rules.Recognized) > 0 {
		recognized = make(map[string]struct{}, len(rules.Recognized))
		for _, name := range rules.Recognized {
			recognized[name] = struct{}{}
		}
	}

	for _, name := range d.Fields() {
		v := d[name]
		if strings.TrimSpace(name) == "" {
			return apperrors.NewValidationError("demographic field name cannot be empty")
		}
		if recognized != nil {
			if _, ok := recognized[name]; !ok {
				return apperrors.NewValidationError(fmt.Sprintf("unrecognized demographic field %q", name))
			}
		}
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return apperrors.NewValidationError(fmt.Sprintf("demographic field %q must be a finite number", name))
		}
		if v < 0 || v > 100 {
			return apperrors.NewValidationError(fmt.Sprintf("demographic field %q = %v outside [0, 100]", name, v))
		}
	}

	tolerance := rules.Tolerance
	if tolerance <= 0 {
		tolerance = DefaultPartitionTolerance
	}
	for _, group := range rules.Partitions {
		if len(group) == 0 {
			continue
		}
		sum := 0.0
		for _, name := range group {
			v, ok := d[name]
			if !ok {
				return apperrors.NewValidationError(fmt.Sprintf("partition %v is missing field %q", group, name))
			}
			sum += v
		}
		if math.Abs(sum-100) > tolerance {
			return apperrors.NewValidationError(fmt.Sprintf("partition %v sums to %v, want 100 ± %v", group, sum, tolerance))
		}
	}

	return nil
}

// ParseDemographics converts a decoded JSON object into a typed payload.
// Every value must be numeric.
func ParseDemographics(raw map[string]interface{}) (models.Demographics, error) {
	out := make(models.Demographics, len(raw))
	for name, value := range raw {
		var f float64
		switch v := value.(type) {
		case float64:
			f = v
		case float32:
			f = float64(v)
		case int:
			f = float64(v)
		case int64:
			f = float64(v)
		case json.Number:
			parsed, err := v.Float64()
			if err != nil {
				return nil, apperrors.NewValidationError(fmt.Sprintf("demographic field %q is not numeric", name))
			}
			f = parsed
		default:
			return nil, apperrors.NewValidationError(fmt.Sprintf("demographic field %q is not numeric", name))
		}
		out[name] = f
	}
	return out, nil
}
