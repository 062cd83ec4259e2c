package repository

import (
	"context"

	"github.com/johnrcarty/smart-home-health-hub/internal/domain"
)

// SchedulesRepository persists recurring schedules.
type SchedulesRepository interface {
	ListSchedules(ctx context.Context, activeOnly bool) ([]*domain.Schedule, error)
	GetSchedule(ctx context.Context, scheduleID string) (*domain.Schedule, error)
	CreateSchedule(ctx context.Context, s *domain.Schedule) (string, error)
	UpdateSchedule(ctx context.Context, scheduleID string, s *domain.Schedule) error
	DeleteSchedule(ctx context.Context, scheduleID string) error
}
