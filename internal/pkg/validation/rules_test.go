package validation

import (
	"errors"
	"math"
	"testing"

	"github.com/yigit/costequity/internal/app/models"
	"github.com/yigit/costequity/internal/pkg/apperrors"
)

func TestValidateYear(t *testing.T) {
	cases := []struct {
		year    int
		wantErr bool
	}{
		{1899, true},
		{1900, false},
		{2020, false},
		{2100, false},
		{2101, true},
	}
	for _, tc := range cases {
		err := ValidateYear(tc.year)
		if tc.wantErr && !errors.Is(err, apperrors.ErrRange) {
			t.Errorf("year %d: want range error, got %v", tc.year, err)
		}
		if !tc.wantErr && err != nil {
			t.Errorf("year %d: unexpected error %v", tc.year, err)
		}
	}
}

func TestYearFromFloat(t *testing.T) {
	if y, err := YearFromFloat(2020); err != nil || y != 2020 {
		t.Fatalf("YearFromFloat(2020) = %d, %v", y, err)
	}
	for _, v := range []float64{2020.5, math.NaN(), 1800, 3000} {
		if _, err := YearFromFloat(v); !errors.Is(err, apperrors.ErrRange) {
			t.Errorf("YearFromFloat(%v): want range error, got %v", v, err)
		}
	}
}

func TestMoneyFromFloat(t *testing.T) {
	cases := []struct {
		in      float64
		want    models.Money
		wantErr error
	}{
		{10000, 1000000, nil},
		{0.1, 10, nil},
		{19.99, 1999, nil},
		{0, 0, nil},
		{-1, 0, apperrors.ErrRange},
		{10.005, 0, apperrors.ErrValidation},
		{math.Inf(1), 0, apperrors.ErrValidation},
		{math.NaN(), 0, apperrors.ErrValidation},
	}
	for _, tc := range cases {
		got, err := MoneyFromFloat(tc.in)
		if tc.wantErr != nil {
			if !errors.Is(err, tc.wantErr) {
				t.Errorf("MoneyFromFloat(%v): want %v, got %v", tc.in, tc.wantErr, err)
			}
			continue
		}
		if err != nil {
			t.Errorf("MoneyFromFloat(%v): unexpected error %v", tc.in, err)
			continue
		}
		if got != tc.want {
			t.Errorf("MoneyFromFloat(%v) = %d, want %d", tc.in, got, tc.want)
		}
	}
}

func TestValidateInstitution(t *testing.T) {
	ok := models.InstitutionInput{Name: "Alpha U", State: "TX", DegreeLength: 4, Region: "South"}
	if err := ValidateInstitution(ok); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	noState := ok
	noState.State = ""
	if err := ValidateInstitution(noState); err != nil {
		t.Fatalf("null state should be accepted: %v", err)
	}

	bad := []models.InstitutionInput{
		{Name: " ", State: "TX", DegreeLength: 4},
		{Name: "Alpha U", State: "tx", DegreeLength: 4},
		{Name: "Alpha U", State: "TEX", DegreeLength: 4},
		{Name: "Alpha U", State: "TX", DegreeLength: 0},
	}
	for _, in := range bad {
		if err := ValidateInstitution(in); !errors.Is(err, apperrors.ErrValidation) {
			t.Errorf("%+v: want validation error, got %v", in, err)
		}
	}
}

func TestValidateDemographics(t *testing.T) {
	t.Run("independent fields", func(t *testing.T) {
		d := models.Demographics{"female_pct": 55, "pell_pct": 30, "hispanic_pct": 20}
		if err := ValidateDemographics(d, DemographicRules{}); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	})

	t.Run("out of range", func(t *testing.T) {
		d := models.Demographics{"pell_pct": 150}
		if err := ValidateDemographics(d, DemographicRules{}); !errors.Is(err, apperrors.ErrValidation) {
			t.Fatalf("want validation error, got %v", err)
		}
	})

	t.Run("not finite", func(t *testing.T) {
		d := models.Demographics{"pell_pct": math.NaN()}
		if err := ValidateDemographics(d, DemographicRules{}); !errors.Is(err, apperrors.ErrValidation) {
			t.Fatalf("want validation error, got %v", err)
		}
	})

	t.Run("recognized set", func(t *testing.T) {
		rules := DemographicRules{Recognized: []string{"pell_pct"}}
		if err := ValidateDemographics(models.Demographics{"pell_pct": 10}, rules); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if err := ValidateDemographics(models.Demographics{"other_pct": 10}, rules); !errors.Is(err, apperrors.ErrValidation) {
			t.Fatalf("want validation error, got %v", err)
		}
	})

	t.Run("partition", func(t *testing.T) {
		rules := DemographicRules{Partitions: [][]string{{"female_pct", "male_pct"}}}
		if err := ValidateDemographics(models.Demographics{"female_pct": 55.2, "male_pct": 44.5}, rules); err != nil {
			t.Fatalf("sum within tolerance rejected: %v", err)
		}
		if err := ValidateDemographics(models.Demographics{"female_pct": 55, "male_pct": 40}, rules); !errors.Is(err, apperrors.ErrValidation) {
			t.Fatalf("want validation error for bad sum, got %v", err)
		}
		if err := ValidateDemographics(models.Demographics{"female_pct": 100}, rules); !errors.Is(err, apperrors.ErrValidation) {
			t.Fatalf("want validation error for missing member, got %v", err)
		}
	})
}

func TestParseDemographics(t *testing.T) {
	d, err := ParseDemographics(map[string]interface{}{"pell_pct": 30.0, "female_pct": 55})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if d["pell_pct"] != 30 || d["female_pct"] != 55 {
		t.Fatalf("unexpected payload %v", d)
	}

	if _, err := ParseDemographics(map[string]interface{}{"pell_pct": "thirty"}); !errors.Is(err, apperrors.ErrValidation) {
		t.Fatalf("want validation error, got %v", err)
	}
}
