package services

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/yigit/costequity/internal/app/models"
	"github.com/yigit/costequity/internal/app/store"
	"github.com/yigit/costequity/internal/pkg/apperrors"
	"github.com/yigit/costequity/internal/pkg/validation"
)

// IngestionService defines the write contract offered to external loaders
type IngestionService interface {
	CreateInstitution(ctx context.Context, in models.InstitutionInput) (int64, error)
	UpdateInstitution(ctx context.Context, id int64, in models.InstitutionInput) error
	DeleteInstitution(ctx context.Context, id int64) error
	UpsertTuition(ctx context.Context, institutionID int64, year int, amount float64) error
	UpsertDiversity(ctx context.Context, institutionID int64, in DiversityInput) error
	AddSalaryOutcome(ctx context.Context, institutionID int64, amount float64) (int64, error)
	UpsertIncomeBracketCost(ctx context.Context, institutionID int64, bracket string, avgNetCost float64) error
}

// DiversityInput is a raw demographic payload as decoded from a loader.
// Partitions names field groups that must sum to 100.
type DiversityInput struct {
	Year       int
	Fields     map[string]interface{}
	Partitions [][]string
}

// ingestionServiceImpl implements the IngestionService interface
type ingestionServiceImpl struct {
	store  store.Writer
	rules  validation.DemographicRules
	logger zerolog.Logger
}

// NewIngestionService creates a new ingestion service.
// rules carries the configured recognized fields, partitions and tolerance.
func NewIngestionService(w store.Writer, rules validation.DemographicRules, logger zerolog.Logger) IngestionService {
	return &ingestionServiceImpl{
		store:  w,
		rules:  rules,
		logger: logger.With().Str("component", "ingestion").Logger(),
	}
}

// validateID short-circuits identifiers that can never exist
func validateID(id int64) error {
	if id <= 0 {
		return apperrors.ErrInstitutionNotFound
	}
	return nil
}

// CreateInstitution creates a new institution
func (s *ingestionServiceImpl) CreateInstitution(ctx context.Context, in models.InstitutionInput) (int64, error) {
	if err := validation.ValidateInstitution(in); err != nil {
		return 0, err
	}

	id, err := s.store.CreateInstitution(ctx, in)
	if err != nil {
		s.logger.Warn().Err(err).Str("name", in.Name).Str("state", in.State).Msg("Create institution rejected")
		return 0, err
	}
	s.logger.Info().Int64("institutionID", id).Str("name", in.Name).Msg("Institution created")
	return id, nil
}

// UpdateInstitution updates the attributes of an institution
func (s *ingestionServiceImpl) UpdateInstitution(ctx context.Context, id int64, in models.InstitutionInput) error {
	if err := validateID(id); err != nil {
		return err
	}
	if err := validation.ValidateInstitution(in); err != nil {
		return err
	}

	if err := s.store.UpdateInstitution(ctx, id, in); err != nil {
		s.logger.Warn().Err(err).Int64("institutionID", id).Msg("Update institution rejected")
		return err
	}
	s.logger.Info().Int64("institutionID", id).Msg("Institution updated")
	return nil
}

// DeleteInstitution deletes an institution and every record it owns
func (s *ingestionServiceImpl) DeleteInstitution(ctx context.Context, id int64) error {
	if err := validateID(id); err != nil {
		return err
	}

	if err := s.store.DeleteInstitution(ctx, id); err != nil {
		s.logger.Warn().Err(err).Int64("institutionID", id).Msg("Delete institution rejected")
		return err
	}
	s.logger.Info().Int64("institutionID", id).Msg("Institution deleted with owned records")
	return nil
}

// UpsertTuition validates and stores one annual tuition figure
func (s *ingestionServiceImpl) UpsertTuition(ctx context.Context, institutionID int64, year int, amount float64) error {
	if err := validateID(institutionID); err != nil {
		return err
	}
	if err := validation.ValidateYear(year); err != nil {
		return err
	}
	money, err := validation.MoneyFromFloat(amount)
	if err != nil {
		return err
	}

	if err := s.store.UpsertTuition(ctx, institutionID, year, money); err != nil {
		s.logger.Warn().Err(err).Int64("institutionID", institutionID).Int("year", year).Msg("Tuition upsert rejected")
		return err
	}
	s.logger.Info().Int64("institutionID", institutionID).Int("year", year).Str("amount", money.String()).Msg("Tuition upserted")
	return nil
}

// UpsertDiversity validates and stores one demographic payload
func (s *ingestionServiceImpl) UpsertDiversity(ctx context.Context, institutionID int64, in DiversityInput) error {
	if err := validateID(institutionID); err != nil {
		return err
	}
	if err := validation.ValidateYear(in.Year); err != nil {
		return err
	}
	demographics, err := validation.ParseDemographics(in.Fields)
	if err != nil {
		return err
	}

	rules := s.rules
	rules.Partitions = append(append([][]string{}, s.rules.Partitions...), in.Partitions...)
	if err := validation.ValidateDemographics(demographics, rules); err != nil {
		return err
	}

	if err := s.store.UpsertDiversity(ctx, institutionID, in.Year, demographics); err != nil {
		s.logger.Warn().Err(err).Int64("institutionID", institutionID).Int("year", in.Year).Msg("Diversity upsert rejected")
		return err
	}
	s.logger.Info().Int64("institutionID", institutionID).Int("year", in.Year).Strs("fields", demographics.Fields()).Msg("Diversity upserted")
	return nil
}

// AddSalaryOutcome validates and appends one salary observation
func (s *ingestionServiceImpl) AddSalaryOutcome(ctx context.Context, institutionID int64, amount float64) (int64, error) {
	if err := validateID(institutionID); err != nil {
		return 0, err
	}
	money, err := validation.MoneyFromFloat(amount)
	if err != nil {
		return 0, err
	}

	seq, err := s.store.AddSalaryOutcome(ctx, institutionID, money)
	if err != nil {
		s.logger.Warn().Err(err).Int64("institutionID", institutionID).Msg("Salary outcome rejected")
		return 0, err
	}
	s.logger.Info().Int64("institutionID", institutionID).Int64("seq", seq).Msg("Salary outcome added")
	return seq, nil
}

// UpsertIncomeBracketCost validates and stores the net cost of one bracket
func (s *ingestionServiceImpl) UpsertIncomeBracketCost(ctx context.Context, institutionID int64, bracket string, avgNetCost float64) error {
	if err := validateID(institutionID); err != nil {
		return err
	}
	if err := validation.ValidateBracket(bracket); err != nil {
		return err
	}
	money, err := validation.MoneyFromFloat(avgNetCost)
	if err != nil {
		return err
	}

	if err := s.store.UpsertIncomeBracketCost(ctx, institutionID, bracket, money); err != nil {
		s.logger.Warn().Err(err).Int64("institutionID", institutionID).Str("bracket", bracket).Msg("Bracket cost upsert rejected")
		return err
	}
	s.logger.Info().Int64("institutionID", institutionID).Str("bracket", bracket).Msg("Bracket cost upserted")
	return nil
}
