package repository

import (
	"context"
	"time"

	"github.com/johnrcarty/smart-home-health-hub/internal/domain"
)

// CareTasksRepository persists caregiver tasks.
type CareTasksRepository interface {
	ListCareTasks(ctx context.Context, openOnly bool) ([]*domain.CareTask, error)
	ListCareTasksForDay(ctx context.Context, dayStart time.Time) ([]*domain.CareTask, error)
	GetCareTask(ctx context.Context, taskID string) (*domain.CareTask, error)
	CreateCareTask(ctx context.Context, t *domain.CareTask) (string, error)
	UpdateCareTask(ctx context.Context, taskID string, t *domain.CareTask) error
	DeleteCareTask(ctx context.Context, taskID string) error
	// CompleteCareTask marks the task done (or skipped when skipped=true).
	CompleteCareTask(ctx context.Context, taskID string, completedAt time.Time, completedBy string, skipped bool) error
}
