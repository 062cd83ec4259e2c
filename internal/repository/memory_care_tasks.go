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

// MemoryCareTasksRepo is the no-DB fallback for care tasks.
type MemoryCareTasksRepo struct {
	mu    sync.RWMutex
	tasks map[string]domain.CareTask
}

func NewMemoryCareTasksRepo() *MemoryCareTasksRepo {
	return &MemoryCareTasksRepo{tasks: map[string]domain.CareTask{}}
}

func sortTasks(out []*domain.CareTask) {
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.ScheduledTime.Valid != b.ScheduledTime.Valid {
			return a.ScheduledTime.Valid
		}
		if a.ScheduledTime.Valid && !a.ScheduledTime.Time.Equal(b.ScheduledTime.Time) {
			return a.ScheduledTime.Time.Before(b.ScheduledTime.Time)
		}
		return a.CreatedAt.Before(b.CreatedAt)
	})
}

func (r *MemoryCareTasksRepo) ListCareTasks(_ context.Context, openOnly bool) ([]*domain.CareTask, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []*domain.CareTask
	for id := range r.tasks {
		t := r.tasks[id]
		if openOnly && t.Completed() {
			continue
		}
		out = append(out, &t)
	}
	sortTasks(out)
	return out, nil
}

func (r *MemoryCareTasksRepo) ListCareTasksForDay(_ context.Context, dayStart time.Time) ([]*domain.CareTask, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	dayEnd := dayStart.Add(24 * time.Hour)
	var out []*domain.CareTask
	for id := range r.tasks {
		t := r.tasks[id]
		if !t.ScheduledTime.Valid {
			continue
		}
		at := t.ScheduledTime.Time
		if at.Before(dayStart) || !at.Before(dayEnd) {
			continue
		}
		out = append(out, &t)
	}
	sortTasks(out)
	return out, nil
}

func (r *MemoryCareTasksRepo) GetCareTask(_ context.Context, taskID string) (*domain.CareTask, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	t, ok := r.tasks[taskID]
	if !ok {
		return nil, ErrNotFound
	}
	return &t, nil
}

func (r *MemoryCareTasksRepo) CreateCareTask(_ context.Context, t *domain.CareTask) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	id := uuid.NewString()
	stored := *t
	stored.TaskID = id
	stored.CreatedAt = time.Now()
	stored.UpdatedAt = stored.CreatedAt
	r.tasks[id] = stored
	return id, nil
}

func (r *MemoryCareTasksRepo) UpdateCareTask(_ context.Context, taskID string, t *domain.CareTask) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, ok := r.tasks[taskID]
	if !ok {
		return ErrNotFound
	}
	updated := *t
	updated.TaskID = taskID
	updated.CreatedAt = existing.CreatedAt
	updated.CompletedAt = existing.CompletedAt
	updated.CompletedBy = existing.CompletedBy
	updated.Skipped = existing.Skipped
	updated.UpdatedAt = time.Now()
	r.tasks[taskID] = updated
	return nil
}

func (r *MemoryCareTasksRepo) DeleteCareTask(_ context.Context, taskID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.tasks[taskID]; !ok {
		return ErrNotFound
	}
	delete(r.tasks, taskID)
	return nil
}

func (r *MemoryCareTasksRepo) CompleteCareTask(_ context.Context, taskID string, completedAt time.Time, completedBy string, skipped bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	t, ok := r.tasks[taskID]
	if !ok {
		return ErrNotFound
	}
	t.CompletedAt = sql.NullTime{Time: completedAt, Valid: true}
	if completedBy != "" {
		t.CompletedBy = sql.NullString{String: completedBy, Valid: true}
	}
	t.Skipped = skipped
	t.UpdatedAt = time.Now()
	r.tasks[taskID] = t
	return nil
}
