package service

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/johnrcarty/smart-home-health-hub/internal/domain"
	"github.com/johnrcarty/smart-home-health-hub/internal/repository"
)

// MedicationService manages medications and their dose events.
type MedicationService interface {
	ListMedications(ctx context.Context, req ListMedicationsRequest) (*ListMedicationsResponse, error)
	GetMedication(ctx context.Context, medicationID string) (*domain.Medication, error)
	CreateMedication(ctx context.Context, req CreateMedicationRequest) (string, error)
	UpdateMedication(ctx context.Context, medicationID string, req CreateMedicationRequest) error
	DeactivateMedication(ctx context.Context, medicationID string) error

	CreateDoseEvent(ctx context.Context, req CreateDoseEventRequest) (string, error)
	AdministerDose(ctx context.Context, req AdministerDoseRequest) error
	AdministerMedication(ctx context.Context, medicationID string, req AdministerDoseRequest) error
}

type medicationService struct {
	medsRepo repository.MedicationsRepository
	logger   *zap.Logger
}

func NewMedicationService(medsRepo repository.MedicationsRepository, logger *zap.Logger) MedicationService {
	return &medicationService{medsRepo: medsRepo, logger: logger}
}

type ListMedicationsRequest struct {
	ActiveOnly bool
}

type ListMedicationsResponse struct {
	Items []*domain.Medication
	Total int
}

func (s *medicationService) ListMedications(ctx context.Context, req ListMedicationsRequest) (*ListMedicationsResponse, error) {
	items, err := s.medsRepo.ListMedications(ctx, req.ActiveOnly)
	if err != nil {
		s.logger.Error("ListMedications failed", zap.Error(err))
		return nil, fmt.Errorf("failed to list medications")
	}
	return &ListMedicationsResponse{Items: items, Total: len(items)}, nil
}

func (s *medicationService) GetMedication(ctx context.Context, medicationID string) (*domain.Medication, error) {
	if medicationID == "" {
		return nil, fmt.Errorf("medication_id is required")
	}
	return s.medsRepo.GetMedication(ctx, medicationID)
}

type CreateMedicationRequest struct {
	Name         string
	Dosage       string
	Unit         string
	Instructions string
	CategoryID   string
	PatientID    string
	Active       bool
	StartDate    *time.Time
	EndDate      *time.Time
}

func (req *CreateMedicationRequest) toDomain() *domain.Medication {
	m := &domain.Medication{
		Name:   strings.TrimSpace(req.Name),
		Dosage: strings.TrimSpace(req.Dosage),
		Unit:   strings.TrimSpace(req.Unit),
		Active: req.Active,
	}
	if req.Instructions != "" {
		m.Instructions = sql.NullString{String: req.Instructions, Valid: true}
	}
	if req.CategoryID != "" {
		m.CategoryID = sql.NullString{String: req.CategoryID, Valid: true}
	}
	if req.PatientID != "" {
		m.PatientID = sql.NullString{String: req.PatientID, Valid: true}
	}
	if req.StartDate != nil {
		m.StartDate = sql.NullTime{Time: *req.StartDate, Valid: true}
	}
	if req.EndDate != nil {
		m.EndDate = sql.NullTime{Time: *req.EndDate, Valid: true}
	}
	return m
}

func (s *medicationService) CreateMedication(ctx context.Context, req CreateMedicationRequest) (string, error) {
	if strings.TrimSpace(req.Name) == "" {
		return "", fmt.Errorf("name is required")
	}
	id, err := s.medsRepo.CreateMedication(ctx, req.toDomain())
	if err != nil {
		s.logger.Error("CreateMedication failed", zap.String("name", req.Name), zap.Error(err))
		return "", fmt.Errorf("failed to create medication")
	}
	s.logger.Info("Medication created", zap.String("medication_id", id), zap.String("name", req.Name))
	return id, nil
}

func (s *medicationService) UpdateMedication(ctx context.Context, medicationID string, req CreateMedicationRequest) error {
	if medicationID == "" {
		return fmt.Errorf("medication_id is required")
	}
	if strings.TrimSpace(req.Name) == "" {
		return fmt.Errorf("name is required")
	}
	if err := s.medsRepo.UpdateMedication(ctx, medicationID, req.toDomain()); err != nil {
		if err == repository.ErrNotFound {
			return err
		}
		s.logger.Error("UpdateMedication failed", zap.String("medication_id", medicationID), zap.Error(err))
		return fmt.Errorf("failed to update medication")
	}
	return nil
}

func (s *medicationService) DeactivateMedication(ctx context.Context, medicationID string) error {
	if medicationID == "" {
		return fmt.Errorf("medication_id is required")
	}
	if err := s.medsRepo.DeactivateMedication(ctx, medicationID); err != nil {
		if err == repository.ErrNotFound {
			return err
		}
		s.logger.Error("DeactivateMedication failed", zap.String("medication_id", medicationID), zap.Error(err))
		return fmt.Errorf("failed to deactivate medication")
	}
	s.logger.Info("Medication deactivated", zap.String("medication_id", medicationID))
	return nil
}

type CreateDoseEventRequest struct {
	MedicationID  string
	ScheduledTime time.Time
	DoseAmount    float64
}

func (s *medicationService) CreateDoseEvent(ctx context.Context, req CreateDoseEventRequest) (string, error) {
	if req.MedicationID == "" {
		return "", fmt.Errorf("medication_id is required")
	}
	if req.ScheduledTime.IsZero() {
		return "", fmt.Errorf("scheduled_time is required")
	}

	// The medication must exist; a dangling dose event would show up on the
	// daily schedule with no name.
	if _, err := s.medsRepo.GetMedication(ctx, req.MedicationID); err != nil {
		return "", err
	}

	id, err := s.medsRepo.CreateDoseEvent(ctx, &domain.DoseEvent{
		MedicationID:  req.MedicationID,
		ScheduledTime: req.ScheduledTime,
		DoseAmount:    req.DoseAmount,
	})
	if err != nil {
		s.logger.Error("CreateDoseEvent failed", zap.String("medication_id", req.MedicationID), zap.Error(err))
		return "", fmt.Errorf("failed to create dose event")
	}
	return id, nil
}

type AdministerDoseRequest struct {
	DoseID  string
	Amount  float64 // 0 marks the dose skipped
	TakenAt *time.Time
	Notes   string
}

// AdministerDose records the administered amount on a dose event. Amount 0
// records an explicit skip; TakenAt defaults to now.
func (s *medicationService) AdministerDose(ctx context.Context, req AdministerDoseRequest) error {
	if req.DoseID == "" {
		return fmt.Errorf("dose_id is required")
	}
	if req.Amount < 0 {
		return fmt.Errorf("amount must not be negative")
	}

	takenAt := time.Now()
	if req.TakenAt != nil {
		takenAt = *req.TakenAt
	}

	if err := s.medsRepo.RecordDose(ctx, req.DoseID, req.Amount, takenAt, req.Notes); err != nil {
		if err == repository.ErrNotFound {
			return err
		}
		s.logger.Error("AdministerDose failed", zap.String("dose_id", req.DoseID), zap.Error(err))
		return fmt.Errorf("failed to record dose")
	}

	s.logger.Info("Dose recorded",
		zap.String("dose_id", req.DoseID),
		zap.Float64("amount", req.Amount),
		zap.Bool("skipped", req.Amount == 0),
	)
	return nil
}

// AdministerMedication records a dose against a medication. With a DoseID it
// fills the existing slot; without one it writes an ad-hoc dose event (an
// as-needed med taken outside any schedule).
func (s *medicationService) AdministerMedication(ctx context.Context, medicationID string, req AdministerDoseRequest) error {
	if medicationID == "" {
		return fmt.Errorf("medication_id is required")
	}
	if req.DoseID != "" {
		return s.AdministerDose(ctx, req)
	}
	if req.Amount <= 0 {
		return fmt.Errorf("amount must be positive for an ad-hoc dose")
	}

	takenAt := time.Now()
	if req.TakenAt != nil {
		takenAt = *req.TakenAt
	}

	doseID, err := s.CreateDoseEvent(ctx, CreateDoseEventRequest{
		MedicationID:  medicationID,
		ScheduledTime: takenAt,
		DoseAmount:    req.Amount,
	})
	if err != nil {
		return err
	}

	req.DoseID = doseID
	req.TakenAt = &takenAt
	return s.AdministerDose(ctx, req)
}
