package repository

import (
	"context"

	"github.com/johnrcarty/smart-home-health-hub/internal/domain"
)

// PatientsRepository persists monitored persons.
type PatientsRepository interface {
	ListPatients(ctx context.Context) ([]*domain.Patient, error)
	GetPatient(ctx context.Context, patientID string) (*domain.Patient, error)
	CreatePatient(ctx context.Context, p *domain.Patient) (string, error)
	UpdatePatient(ctx context.Context, patientID string, p *domain.Patient) error
	DeletePatient(ctx context.Context, patientID string) error
}

// CategoriesRepository persists medication/care-task categories.
type CategoriesRepository interface {
	ListCategories(ctx context.Context, kind string) ([]*domain.Category, error)
	CreateCategory(ctx context.Context, c *domain.Category) (string, error)
	UpdateCategory(ctx context.Context, categoryID string, c *domain.Category) error
	DeleteCategory(ctx context.Context, categoryID string) error
}
