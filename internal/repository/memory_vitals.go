package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/johnrcarty/smart-home-health-hub/internal/domain"
)

// MemoryVitalsRepo is the no-DB fallback for vitals, nutrition and
// bathroom events.
type MemoryVitalsRepo struct {
	mu       sync.RWMutex
	readings map[string]domain.VitalReading
	bp       map[string]domain.BloodPressureReading
	meals    map[string]domain.MealEntry
	bathroom map[string]domain.BathroomEvent
}

func NewMemoryVitalsRepo() *MemoryVitalsRepo {
	return &MemoryVitalsRepo{
		readings: map[string]domain.VitalReading{},
		bp:       map[string]domain.BloodPressureReading{},
		meals:    map[string]domain.MealEntry{},
		bathroom: map[string]domain.BathroomEvent{},
	}
}

func inWindow(at, from, to time.Time) bool {
	return !at.Before(from) && at.Before(to)
}

func (r *MemoryVitalsRepo) InsertReading(_ context.Context, v *domain.VitalReading) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	id := uuid.NewString()
	stored := *v
	stored.ReadingID = id
	stored.CreatedAt = time.Now()
	r.readings[id] = stored
	return id, nil
}

func (r *MemoryVitalsRepo) ListReadings(_ context.Context, metric string, from, to time.Time, limit int) ([]*domain.VitalReading, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if limit <= 0 {
		limit = 500
	}
	var out []*domain.VitalReading
	for id := range r.readings {
		v := r.readings[id]
		if v.Metric != metric || !inWindow(v.TakenAt, from, to) {
			continue
		}
		out = append(out, &v)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].TakenAt.After(out[j].TakenAt) })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *MemoryVitalsRepo) InsertBloodPressure(_ context.Context, b *domain.BloodPressureReading) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	id := uuid.NewString()
	stored := *b
	stored.ReadingID = id
	stored.CreatedAt = time.Now()
	r.bp[id] = stored
	return id, nil
}

func (r *MemoryVitalsRepo) ListBloodPressure(_ context.Context, from, to time.Time, limit int) ([]*domain.BloodPressureReading, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if limit <= 0 {
		limit = 500
	}
	var out []*domain.BloodPressureReading
	for id := range r.bp {
		b := r.bp[id]
		if !inWindow(b.TakenAt, from, to) {
			continue
		}
		out = append(out, &b)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].TakenAt.After(out[j].TakenAt) })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *MemoryVitalsRepo) InsertMeal(_ context.Context, m *domain.MealEntry) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	id := uuid.NewString()
	stored := *m
	stored.EntryID = id
	stored.CreatedAt = time.Now()
	r.meals[id] = stored
	return id, nil
}

func (r *MemoryVitalsRepo) ListMealsForDay(_ context.Context, dayStart time.Time) ([]*domain.MealEntry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []*domain.MealEntry
	for id := range r.meals {
		m := r.meals[id]
		if !inWindow(m.EatenAt, dayStart, dayStart.Add(24*time.Hour)) {
			continue
		}
		out = append(out, &m)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].EatenAt.Before(out[j].EatenAt) })
	return out, nil
}

func (r *MemoryVitalsRepo) DeleteMeal(_ context.Context, entryID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.meals[entryID]; !ok {
		return ErrNotFound
	}
	delete(r.meals, entryID)
	return nil
}

func (r *MemoryVitalsRepo) InsertBathroomEvent(_ context.Context, b *domain.BathroomEvent) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	id := uuid.NewString()
	stored := *b
	stored.EventID = id
	stored.CreatedAt = time.Now()
	r.bathroom[id] = stored
	return id, nil
}

func (r *MemoryVitalsRepo) ListBathroomEventsForDay(_ context.Context, dayStart time.Time) ([]*domain.BathroomEvent, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []*domain.BathroomEvent
	for id := range r.bathroom {
		b := r.bathroom[id]
		if !inWindow(b.OccurredAt, dayStart, dayStart.Add(24*time.Hour)) {
			continue
		}
		out = append(out, &b)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].OccurredAt.Before(out[j].OccurredAt) })
	return out, nil
}

func (r *MemoryVitalsRepo) DeleteBathroomEvent(_ context.Context, eventID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.bathroom[eventID]; !ok {
		return ErrNotFound
	}
	delete(r.bathroom, eventID)
	return nil
}
