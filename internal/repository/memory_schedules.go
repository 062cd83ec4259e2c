package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/johnrcarty/smart-home-health-hub/internal/domain"
)

// MemorySchedulesRepo is the no-DB fallback for schedules.
type MemorySchedulesRepo struct {
	mu        sync.RWMutex
	schedules map[string]domain.Schedule
}

func NewMemorySchedulesRepo() *MemorySchedulesRepo {
	return &MemorySchedulesRepo{schedules: map[string]domain.Schedule{}}
}

func (r *MemorySchedulesRepo) ListSchedules(_ context.Context, activeOnly bool) ([]*domain.Schedule, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []*domain.Schedule
	for id := range r.schedules {
		s := r.schedules[id]
		if activeOnly && !s.Active {
			continue
		}
		out = append(out, &s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r *MemorySchedulesRepo) GetSchedule(_ context.Context, scheduleID string) (*domain.Schedule, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	s, ok := r.schedules[scheduleID]
	if !ok {
		return nil, ErrNotFound
	}
	return &s, nil
}

func (r *MemorySchedulesRepo) CreateSchedule(_ context.Context, s *domain.Schedule) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	id := uuid.NewString()
	stored := *s
	stored.ScheduleID = id
	stored.CreatedAt = time.Now()
	stored.UpdatedAt = stored.CreatedAt
	r.schedules[id] = stored
	return id, nil
}

func (r *MemorySchedulesRepo) UpdateSchedule(_ context.Context, scheduleID string, s *domain.Schedule) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, ok := r.schedules[scheduleID]
	if !ok {
		return ErrNotFound
	}
	updated := *s
	updated.ScheduleID = scheduleID
	updated.CreatedAt = existing.CreatedAt
	updated.UpdatedAt = time.Now()
	r.schedules[scheduleID] = updated
	return nil
}

func (r *MemorySchedulesRepo) DeleteSchedule(_ context.Context, scheduleID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.schedules[scheduleID]; !ok {
		return ErrNotFound
	}
	delete(r.schedules, scheduleID)
	return nil
}
