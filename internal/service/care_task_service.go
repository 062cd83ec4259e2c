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

// CareTaskService manages caregiver tasks.
type CareTaskService interface {
	ListCareTasks(ctx context.Context, openOnly bool) ([]*domain.CareTask, error)
	GetCareTask(ctx context.Context, taskID string) (*domain.CareTask, error)
	CreateCareTask(ctx context.Context, req SaveCareTaskRequest) (string, error)
	UpdateCareTask(ctx context.Context, taskID string, req SaveCareTaskRequest) error
	DeleteCareTask(ctx context.Context, taskID string) error
	CompleteCareTask(ctx context.Context, req CompleteCareTaskRequest) error
}

type careTaskService struct {
	tasksRepo repository.CareTasksRepository
	logger    *zap.Logger
}

func NewCareTaskService(tasksRepo repository.CareTasksRepository, logger *zap.Logger) CareTaskService {
	return &careTaskService{tasksRepo: tasksRepo, logger: logger}
}

func (s *careTaskService) ListCareTasks(ctx context.Context, openOnly bool) ([]*domain.CareTask, error) {
	return s.tasksRepo.ListCareTasks(ctx, openOnly)
}

func (s *careTaskService) GetCareTask(ctx context.Context, taskID string) (*domain.CareTask, error) {
	if taskID == "" {
		return nil, fmt.Errorf("task_id is required")
	}
	return s.tasksRepo.GetCareTask(ctx, taskID)
}

type SaveCareTaskRequest struct {
	Title         string
	Description   string
	CategoryID    string
	PatientID     string
	ScheduledTime *time.Time
}

func (req *SaveCareTaskRequest) toDomain() *domain.CareTask {
	t := &domain.CareTask{Title: strings.TrimSpace(req.Title)}
	if req.Description != "" {
		t.Description = sql.NullString{String: req.Description, Valid: true}
	}
	if req.CategoryID != "" {
		t.CategoryID = sql.NullString{String: req.CategoryID, Valid: true}
	}
	if req.PatientID != "" {
		t.PatientID = sql.NullString{String: req.PatientID, Valid: true}
	}
	if req.ScheduledTime != nil {
		t.ScheduledTime = sql.NullTime{Time: *req.ScheduledTime, Valid: true}
	}
	return t
}

func (s *careTaskService) CreateCareTask(ctx context.Context, req SaveCareTaskRequest) (string, error) {
	if strings.TrimSpace(req.Title) == "" {
		return "", fmt.Errorf("title is required")
	}
	id, err := s.tasksRepo.CreateCareTask(ctx, req.toDomain())
	if err != nil {
		s.logger.Error("CreateCareTask failed", zap.String("title", req.Title), zap.Error(err))
		return "", fmt.Errorf("failed to create care task")
	}
	s.logger.Info("Care task created", zap.String("task_id", id), zap.String("title", req.Title))
	return id, nil
}

func (s *careTaskService) UpdateCareTask(ctx context.Context, taskID string, req SaveCareTaskRequest) error {
	if taskID == "" {
		return fmt.Errorf("task_id is required")
	}
	if strings.TrimSpace(req.Title) == "" {
		return fmt.Errorf("title is required")
	}
	if err := s.tasksRepo.UpdateCareTask(ctx, taskID, req.toDomain()); err != nil {
		if err == repository.ErrNotFound {
			return err
		}
		s.logger.Error("UpdateCareTask failed", zap.String("task_id", taskID), zap.Error(err))
		return fmt.Errorf("failed to update care task")
	}
	return nil
}

func (s *careTaskService) DeleteCareTask(ctx context.Context, taskID string) error {
	if taskID == "" {
		return fmt.Errorf("task_id is required")
	}
	if err := s.tasksRepo.DeleteCareTask(ctx, taskID); err != nil {
		if err == repository.ErrNotFound {
			return err
		}
		s.logger.Error("DeleteCareTask failed", zap.String("task_id", taskID), zap.Error(err))
		return fmt.Errorf("failed to delete care task")
	}
	return nil
}

type CompleteCareTaskRequest struct {
	TaskID      string
	CompletedBy string
	CompletedAt *time.Time
	Skipped     bool
}

func (s *careTaskService) CompleteCareTask(ctx context.Context, req CompleteCareTaskRequest) error {
	if req.TaskID == "" {
		return fmt.Errorf("task_id is required")
	}

	completedAt := time.Now()
	if req.CompletedAt != nil {
		completedAt = *req.CompletedAt
	}

	if err := s.tasksRepo.CompleteCareTask(ctx, req.TaskID, completedAt, req.CompletedBy, req.Skipped); err != nil {
		if err == repository.ErrNotFound {
			return err
		}
		s.logger.Error("CompleteCareTask failed", zap.String("task_id", req.TaskID), zap.Error(err))
		return fmt.Errorf("failed to complete care task")
	}

	s.logger.Info("Care task completed",
		zap.String("task_id", req.TaskID),
		zap.Bool("skipped", req.Skipped),
	)
	return nil
}
