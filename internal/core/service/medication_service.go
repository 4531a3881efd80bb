package service

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/healthtrack/healthtrack/internal/core/domain"
	"github.com/healthtrack/healthtrack/internal/core/ports"
)

type MedicationService struct {
	repo   ports.MedicationRepository
	logger zerolog.Logger
}

func NewMedicationService(repo ports.MedicationRepository, logger zerolog.Logger) *MedicationService {
	return &MedicationService{repo: repo, logger: logger}
}

func (s *MedicationService) List(ctx context.Context, userID string) ([]*domain.Medication, error) {
	meds, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if meds == nil {
		meds = []*domain.Medication{}
	}
	return meds, nil
}

func (s *MedicationService) Create(ctx context.Context, userID string, input ports.MedicationInput) (*domain.Medication, error) {
	med := &domain.Medication{
		ID:        uuid.NewString(),
		UserID:    userID,
		CreatedAt: time.Now().UTC(),
	}
	applyMedicationInput(med, input)

	if err := s.repo.Create(ctx, med); err != nil {
		s.logger.Error().Err(err).Str("user_id", userID).Msg("failed to create medication")
		return nil, err
	}

	s.logger.Info().Str("medication_id", med.ID).Str("user_id", userID).Msg("medication created")
	return med, nil
}

func (s *MedicationService) Get(ctx context.Context, userID, id string) (*domain.Medication, error) {
	return s.repo.FindByID(ctx, userID, id)
}

// Update replaces the editable fields. ID, owner and creation time are kept.
func (s *MedicationService) Update(ctx context.Context, userID, id string, input ports.MedicationInput) (*domain.Medication, error) {
	med, err := s.repo.FindByID(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	applyMedicationInput(med, input)

	if err := s.repo.Update(ctx, med); err != nil {
		s.logger.Error().Err(err).Str("medication_id", id).Msg("failed to update medication")
		return nil, err
	}

	s.logger.Info().Str("medication_id", id).Str("user_id", userID).Msg("medication updated")
	return med, nil
}

func (s *MedicationService) Delete(ctx context.Context, userID, id string) error {
	if err := s.repo.Delete(ctx, userID, id); err != nil {
		return err
	}
	s.logger.Info().Str("medication_id", id).Str("user_id", userID).Msg("medication deleted")
	return nil
}

func applyMedicationInput(med *domain.Medication, input ports.MedicationInput) {
	med.Name = strings.TrimSpace(input.Name)
	med.Dosage = strings.TrimSpace(input.Dosage)
	med.Frequency = strings.TrimSpace(input.Frequency)
	med.Instructions = strings.TrimSpace(input.Instructions)
}
