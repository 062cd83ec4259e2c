package repository

import (
	"context"
	"time"

	"github.com/johnrcarty/smart-home-health-hub/internal/domain"
)

// MedicationsRepository persists medications and their dose events.
// Strongly typed domain models, no map[string]any payloads.
type MedicationsRepository interface {
	ListMedications(ctx context.Context, activeOnly bool) ([]*domain.Medication, error)
	GetMedication(ctx context.Context, medicationID string) (*domain.Medication, error)
	CreateMedication(ctx context.Context, m *domain.Medication) (string, error)
	UpdateMedication(ctx context.Context, medicationID string, m *domain.Medication) error
	DeactivateMedication(ctx context.Context, medicationID string) error

	// Dose events
	CreateDoseEvent(ctx context.Context, d *domain.DoseEvent) (string, error)
	GetDoseEvent(ctx context.Context, doseID string) (*domain.DoseEvent, error)
	// ListDoseEventsForDay returns dose events whose scheduled_time falls in
	// [dayStart, dayStart+24h), joined order unspecified.
	ListDoseEventsForDay(ctx context.Context, dayStart time.Time) ([]*domain.DoseEvent, error)
	// RecordDose writes the administered amount and time. amount 0 marks the
	// dose skipped.
	RecordDose(ctx context.Context, doseID string, amount float64, takenAt time.Time, notes string) error
}
