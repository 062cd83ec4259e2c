package repository

import (
	"context"
	"database/sql"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/johnrcarty/smart-home-health-hub/internal/domain"
)

// MemoryMedicationsRepo keeps the hub usable without a database (plain
// `go run` on a fresh box). No cross-field validation beyond what the
// handlers do.
type MemoryMedicationsRepo struct {
	mu          sync.RWMutex
	medications map[string]domain.Medication
	doses       map[string]domain.DoseEvent
}

func NewMemoryMedicationsRepo() *MemoryMedicationsRepo {
	return &MemoryMedicationsRepo{
		medications: map[string]domain.Medication{},
		doses:       map[string]domain.DoseEvent{},
	}
}

func (r *MemoryMedicationsRepo) ListMedications(_ context.Context, activeOnly bool) ([]*domain.Medication, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*domain.Medication, 0, len(r.medications))
	for id := range r.medications {
		m := r.medications[id]
		if activeOnly && !m.Active {
			continue
		}
		out = append(out, &m)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r *MemoryMedicationsRepo) GetMedication(_ context.Context, medicationID string) (*domain.Medication, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	m, ok := r.medications[medicationID]
	if !ok {
		return nil, ErrNotFound
	}
	return &m, nil
}

func (r *MemoryMedicationsRepo) CreateMedication(_ context.Context, m *domain.Medication) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	id := uuid.NewString()
	stored := *m
	stored.MedicationID = id
	stored.CreatedAt = time.Now()
	stored.UpdatedAt = stored.CreatedAt
	r.medications[id] = stored
	return id, nil
}

func (r *MemoryMedicationsRepo) UpdateMedication(_ context.Context, medicationID string, m *domain.Medication) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, ok := r.medications[medicationID]
	if !ok {
		return ErrNotFound
	}
	updated := *m
	updated.MedicationID = medicationID
	updated.CreatedAt = existing.CreatedAt
	updated.UpdatedAt = time.Now()
	r.medications[medicationID] = updated
	return nil
}

func (r *MemoryMedicationsRepo) DeactivateMedication(_ context.Context, medicationID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	m, ok := r.medications[medicationID]
	if !ok {
		return ErrNotFound
	}
	m.Active = false
	m.UpdatedAt = time.Now()
	r.medications[medicationID] = m
	return nil
}

func (r *MemoryMedicationsRepo) CreateDoseEvent(_ context.Context, d *domain.DoseEvent) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	id := uuid.NewString()
	stored := *d
	stored.DoseID = id
	stored.CreatedAt = time.Now()
	stored.UpdatedAt = stored.CreatedAt
	r.doses[id] = stored
	return id, nil
}

func (r *MemoryMedicationsRepo) GetDoseEvent(_ context.Context, doseID string) (*domain.DoseEvent, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	d, ok := r.doses[doseID]
	if !ok {
		return nil, ErrNotFound
	}
	return &d, nil
}

func (r *MemoryMedicationsRepo) ListDoseEventsForDay(_ context.Context, dayStart time.Time) ([]*domain.DoseEvent, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	dayEnd := dayStart.Add(24 * time.Hour)
	var out []*domain.DoseEvent
	for id := range r.doses {
		d := r.doses[id]
		if d.ScheduledTime.Before(dayStart) || !d.ScheduledTime.Before(dayEnd) {
			continue
		}
		out = append(out, &d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ScheduledTime.Before(out[j].ScheduledTime) })
	return out, nil
}

func (r *MemoryMedicationsRepo) RecordDose(_ context.Context, doseID string, amount float64, takenAt time.Time, notes string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	d, ok := r.doses[doseID]
	if !ok {
		return ErrNotFound
	}
	d.ActualDose = sql.NullFloat64{Float64: amount, Valid: true}
	d.ActualTime = sql.NullTime{Time: takenAt, Valid: true}
	if notes != "" {
		d.Notes = sql.NullString{String: notes, Valid: true}
	}
	d.UpdatedAt = time.Now()
	r.doses[doseID] = d
	return nil
}
