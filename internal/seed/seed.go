package seed

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/yigit/costequity/internal/app/models"
	"github.com/yigit/costequity/internal/app/services"
	"github.com/yigit/costequity/internal/pkg/apperrors"
)

type sampleInstitution struct {
	input    models.InstitutionInput
	tuition  map[int]float64
	brackets map[string]float64
	salaries []float64
	// diversity is recorded for the latest tuition year
	diversity map[string]interface{}
}

var samples = []sampleInstitution{
	{
		input:   models.InstitutionInput{Name: "Lone Star State University", State: "TX", DegreeLength: 4, Region: "Southwest"},
		tuition: map[int]float64{2019: 10420, 2020: 10800, 2021: 11250},
		brackets: map[string]float64{
			"0-30000": 7450, "30001-48000": 9100, "48001-75000": 13200, "75001-110000": 17800, "110001+": 20100,
		},
		salaries:  []float64{46800, 48300},
		diversity: map[string]interface{}{"female_pct": 54.0, "male_pct": 46.0, "pell_pct": 38.5, "first_gen_pct": 31.0},
	},
	{
		input:   models.InstitutionInput{Name: "Pacific Coast College", State: "CA", DegreeLength: 4, Region: "Far West"},
		tuition: map[int]float64{2020: 14100, 2021: 14600},
		brackets: map[string]float64{
			"0-30000": 9800, "48001-75000": 16900, "110001+": 27400,
		},
		salaries:  []float64{55200},
		diversity: map[string]interface{}{"female_pct": 58.2, "male_pct": 41.8, "pell_pct": 42.0, "international_pct": 6.5},
	},
	{
		input:   models.InstitutionInput{Name: "Prairie Community College", State: "KS", DegreeLength: 2, Region: "Plains"},
		tuition: map[int]float64{2019: 3300, 2020: 3420, 2021: 3510},
		brackets: map[string]float64{
			"0-30000": 2100, "30001-48000": 2900,
		},
		diversity: map[string]interface{}{"female_pct": 61.0, "male_pct": 39.0, "pell_pct": 47.5},
	},
}

// CreateDefaultData loads a small sample data set through the ingestion
// service. Institutions that already exist are reused; other failures are
// collected and returned together.
func CreateDefaultData(ctx context.Context, ingestion services.IngestionService, query services.QueryService, lgr zerolog.Logger) error {
	lgr.Info().Int("institutions", len(samples)).Msg("Checking/Creating default data...")
	var finalErr error

	for _, sample := range samples {
		id, err := ensureInstitution(ctx, ingestion, query, sample.input)
		if err != nil {
			lgr.Error().Err(err).Str("name", sample.input.Name).Msg("Error creating sample institution")
			finalErr = errors.Join(finalErr, err)
			continue
		}

		latest := 0
		for year, amount := range sample.tuition {
			if err := ingestion.UpsertTuition(ctx, id, year, amount); err != nil {
				finalErr = errors.Join(finalErr, err)
			}
			latest = max(latest, year)
		}
		for bracket, cost := range sample.brackets {
			if err := ingestion.UpsertIncomeBracketCost(ctx, id, bracket, cost); err != nil {
				finalErr = errors.Join(finalErr, err)
			}
		}
		for _, salary := range sample.salaries {
			if _, err := ingestion.AddSalaryOutcome(ctx, id, salary); err != nil {
				finalErr = errors.Join(finalErr, err)
			}
		}
		if sample.diversity != nil && latest > 0 {
			in := services.DiversityInput{
				Year:       latest,
				Fields:     sample.diversity,
				Partitions: [][]string{{"female_pct", "male_pct"}},
			}
			if err := ingestion.UpsertDiversity(ctx, id, in); err != nil {
				finalErr = errors.Join(finalErr, err)
			}
		}
	}

	if finalErr == nil {
		lgr.Info().Msg("Default data ready")
	}
	return finalErr
}

// ensureInstitution creates the institution or returns the ID of the existing
// one with the same name and state
func ensureInstitution(ctx context.Context, ingestion services.IngestionService, query services.QueryService, in models.InstitutionInput) (int64, error) {
	id, err := ingestion.CreateInstitution(ctx, in)
	if err == nil {
		return id, nil
	}
	if !errors.Is(err, apperrors.ErrConflict) {
		return 0, err
	}

	state := in.State
	existing, errGet := query.ListInstitutions(ctx, models.InstitutionFilter{State: &state})
	if errGet != nil {
		return 0, errGet
	}
	for _, inst := range existing {
		if inst.Name == in.Name {
			return inst.ID, nil
		}
	}
	return 0, fmt.Errorf("institution %q conflicts but was not found: %w", in.Name, err)
}
