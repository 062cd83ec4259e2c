package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/johnrcarty/smart-home-health-hub/internal/domain"
)

// MemoryPatientsRepo is the no-DB fallback for patients.
type MemoryPatientsRepo struct {
	mu       sync.RWMutex
	patients map[string]domain.Patient
}

func NewMemoryPatientsRepo() *MemoryPatientsRepo {
	return &MemoryPatientsRepo{patients: map[string]domain.Patient{}}
}

func (r *MemoryPatientsRepo) ListPatients(_ context.Context) ([]*domain.Patient, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []*domain.Patient
	for id := range r.patients {
		p := r.patients[id]
		out = append(out, &p)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].LastName != out[j].LastName {
			return out[i].LastName < out[j].LastName
		}
		return out[i].FirstName < out[j].FirstName
	})
	return out, nil
}

func (r *MemoryPatientsRepo) GetPatient(_ context.Context, patientID string) (*domain.Patient, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.patients[patientID]
	if !ok {
		return nil, ErrNotFound
	}
	return &p, nil
}

func (r *MemoryPatientsRepo) CreatePatient(_ context.Context, p *domain.Patient) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	id := uuid.NewString()
	stored := *p
	stored.PatientID = id
	stored.CreatedAt = time.Now()
	stored.UpdatedAt = stored.CreatedAt
	r.patients[id] = stored
	return id, nil
}

func (r *MemoryPatientsRepo) UpdatePatient(_ context.Context, patientID string, p *domain.Patient) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, ok := r.patients[patientID]
	if !ok {
		return ErrNotFound
	}
	updated := *p
	updated.PatientID = patientID
	updated.CreatedAt = existing.CreatedAt
	updated.UpdatedAt = time.Now()
	r.patients[patientID] = updated
	return nil
}

func (r *MemoryPatientsRepo) DeletePatient(_ context.Context, patientID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.patients[patientID]; !ok {
		return ErrNotFound
	}
	delete(r.patients, patientID)
	return nil
}

// MemoryCategoriesRepo is the no-DB fallback for categories.
type MemoryCategoriesRepo struct {
	mu         sync.RWMutex
	categories map[string]domain.Category
}

func NewMemoryCategoriesRepo() *MemoryCategoriesRepo {
	return &MemoryCategoriesRepo{categories: map[string]domain.Category{}}
}

func (r *MemoryCategoriesRepo) ListCategories(_ context.Context, kind string) ([]*domain.Category, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []*domain.Category
	for id := range r.categories {
		c := r.categories[id]
		if kind != "" && c.Kind != kind {
			continue
		}
		out = append(out, &c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r *MemoryCategoriesRepo) CreateCategory(_ context.Context, c *domain.Category) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	id := uuid.NewString()
	stored := *c
	stored.CategoryID = id
	stored.CreatedAt = time.Now()
	r.categories[id] = stored
	return id, nil
}

func (r *MemoryCategoriesRepo) UpdateCategory(_ context.Context, categoryID string, c *domain.Category) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, ok := r.categories[categoryID]
	if !ok {
		return ErrNotFound
	}
	updated := *c
	updated.CategoryID = categoryID
	updated.CreatedAt = existing.CreatedAt
	r.categories[categoryID] = updated
	return nil
}

func (r *MemoryCategoriesRepo) DeleteCategory(_ context.Context, categoryID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.categories[categoryID]; !ok {
		return ErrNotFound
	}
	delete(r.categories, categoryID)
	return nil
}
