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

// AdminService manages patients and categories.
type AdminService interface {
	ListPatients(ctx context.Context) ([]*domain.Patient, error)
	GetPatient(ctx context.Context, patientID string) (*domain.Patient, error)
	CreatePatient(ctx context.Context, req SavePatientRequest) (string, error)
	UpdatePatient(ctx context.Context, patientID string, req SavePatientRequest) error
	DeletePatient(ctx context.Context, patientID string) error

	ListCategories(ctx context.Context, kind string) ([]*domain.Category, error)
	CreateCategory(ctx context.Context, req SaveCategoryRequest) (string, error)
	UpdateCategory(ctx context.Context, categoryID string, req SaveCategoryRequest) error
	DeleteCategory(ctx context.Context, categoryID string) error
}

type adminService struct {
	patientsRepo   repository.PatientsRepository
	categoriesRepo repository.CategoriesRepository
	logger         *zap.Logger
}

func NewAdminService(patientsRepo repository.PatientsRepository, categoriesRepo repository.CategoriesRepository, logger *zap.Logger) AdminService {
	return &adminService{
		patientsRepo:   patientsRepo,
		categoriesRepo: categoriesRepo,
		logger:         logger,
	}
}

// ============================================
// Patients
// ============================================

func (s *adminService) ListPatients(ctx context.Context) ([]*domain.Patient, error) {
	return s.patientsRepo.ListPatients(ctx)
}

func (s *adminService) GetPatient(ctx context.Context, patientID string) (*domain.Patient, error) {
	if patientID == "" {
		return nil, fmt.Errorf("patient_id is required")
	}
	return s.patientsRepo.GetPatient(ctx, patientID)
}

type SavePatientRequest struct {
	FirstName string
	LastName  string
	BirthDate *time.Time
	Notes     string
}

func (req *SavePatientRequest) toDomain() *domain.Patient {
	p := &domain.Patient{
		FirstName: strings.TrimSpace(req.FirstName),
		LastName:  strings.TrimSpace(req.LastName),
	}
	if req.BirthDate != nil {
		p.BirthDate = sql.NullTime{Time: *req.BirthDate, Valid: true}
	}
	if req.Notes != "" {
		p.Notes = sql.NullString{String: req.Notes, Valid: true}
	}
	return p
}

func (s *adminService) CreatePatient(ctx context.Context, req SavePatientRequest) (string, error) {
	if strings.TrimSpace(req.FirstName) == "" {
		return "", fmt.Errorf("first_name is required")
	}
	id, err := s.patientsRepo.CreatePatient(ctx, req.toDomain())
	if err != nil {
		s.logger.Error("CreatePatient failed", zap.Error(err))
		return "", fmt.Errorf("failed to create patient")
	}
	return id, nil
}

func (s *adminService) UpdatePatient(ctx context.Context, patientID string, req SavePatientRequest) error {
	if patientID == "" {
		return fmt.Errorf("patient_id is required")
	}
	if strings.TrimSpace(req.FirstName) == "" {
		return fmt.Errorf("first_name is required")
	}
	if err := s.patientsRepo.UpdatePatient(ctx, patientID, req.toDomain()); err != nil {
		if err == repository.ErrNotFound {
			return err
		}
		s.logger.Error("UpdatePatient failed", zap.String("patient_id", patientID), zap.Error(err))
		return fmt.Errorf("failed to update patient")
	}
	return nil
}

func (s *adminService) DeletePatient(ctx context.Context, patientID string) error {
	if patientID == "" {
		return fmt.Errorf("patient_id is required")
	}
	if err := s.patientsRepo.DeletePatient(ctx, patientID); err != nil {
		if err == repository.ErrNotFound {
			return err
		}
		s.logger.Error("DeletePatient failed", zap.String("patient_id", patientID), zap.Error(err))
		return fmt.Errorf("failed to delete patient")
	}
	return nil
}

// ============================================
// Categories
// ============================================

func (s *adminService) ListCategories(ctx context.Context, kind string) ([]*domain.Category, error) {
	if kind != "" && kind != domain.ScheduledKindMedication && kind != domain.ScheduledKindCareTask {
		return nil, fmt.Errorf("kind must be %q or %q", domain.ScheduledKindMedication, domain.ScheduledKindCareTask)
	}
	return s.categoriesRepo.ListCategories(ctx, kind)
}

type SaveCategoryRequest struct {
	Name  string
	Kind  string
	Color string
}

func (req *SaveCategoryRequest) toDomain() (*domain.Category, error) {
	if strings.TrimSpace(req.Name) == "" {
		return nil, fmt.Errorf("name is required")
	}
	if req.Kind != domain.ScheduledKindMedication && req.Kind != domain.ScheduledKindCareTask {
		return nil, fmt.Errorf("kind must be %q or %q", domain.ScheduledKindMedication, domain.ScheduledKindCareTask)
	}
	c := &domain.Category{
		Name: strings.TrimSpace(req.Name),
		Kind: req.Kind,
	}
	if req.Color != "" {
		c.Color = sql.NullString{String: req.Color, Valid: true}
	}
	return c, nil
}

func (s *adminService) CreateCategory(ctx context.Context, req SaveCategoryRequest) (string, error) {
	c, err := req.toDomain()
	if err != nil {
		return "", err
	}
	id, err := s.categoriesRepo.CreateCategory(ctx, c)
	if err != nil {
		s.logger.Error("CreateCategory failed", zap.Error(err))
		return "", fmt.Errorf("failed to create category")
	}
	return id, nil
}

func (s *adminService) UpdateCategory(ctx context.Context, categoryID string, req SaveCategoryRequest) error {
	if categoryID == "" {
		return fmt.Errorf("category_id is required")
	}
	c, err := req.toDomain()
	if err != nil {
		return err
	}
	if err := s.categoriesRepo.UpdateCategory(ctx, categoryID, c); err != nil {
		if err == repository.ErrNotFound {
			return err
		}
		s.logger.Error("UpdateCategory failed", zap.String("category_id", categoryID), zap.Error(err))
		return fmt.Errorf("failed to update category")
	}
	return nil
}

func (s *adminService) DeleteCategory(ctx context.Context, categoryID string) error {
	if categoryID == "" {
		return fmt.Errorf("category_id is required")
	}
	if err := s.categoriesRepo.DeleteCategory(ctx, categoryID); err != nil {
		if err == repository.ErrNotFound {
			return err
		}
		s.logger.Error("DeleteCategory failed", zap.String("category_id", categoryID), zap.Error(err))
		return fmt.Errorf("failed to delete category")
	}
	return nil
}
