package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/johnrcarty/smart-home-health-hub/internal/domain"
)

// PostgresCareTasksRepo implements CareTasksRepository on PostgreSQL.
type PostgresCareTasksRepo struct {
	db *sql.DB
}

func NewPostgresCareTasksRepo(db *sql.DB) *PostgresCareTasksRepo {
	return &PostgresCareTasksRepo{db: db}
}

const careTaskColumns = `task_id, title, description, category_id, patient_id, schedule_id,
	scheduled_time, completed_at, completed_by, skipped, created_at, updated_at`

func scanCareTask(row interface{ Scan(...any) error }) (*domain.CareTask, error) {
	var t domain.CareTask
	err := row.Scan(
		&t.TaskID, &t.Title, &t.Description, &t.CategoryID, &t.PatientID, &t.ScheduleID,
		&t.ScheduledTime, &t.CompletedAt, &t.CompletedBy, &t.Skipped, &t.CreatedAt, &t.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *PostgresCareTasksRepo) queryTasks(ctx context.Context, query string, args ...any) ([]*domain.CareTask, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list care tasks: %w", err)
	}
	defer rows.Close()

	var out []*domain.CareTask
	for rows.Next() {
		t, err := scanCareTask(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan care task: %w", err)
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func (r *PostgresCareTasksRepo) ListCareTasks(ctx context.Context, openOnly bool) ([]*domain.CareTask, error) {
	query := `SELECT ` + careTaskColumns + ` FROM care_tasks`
	if openOnly {
		query += ` WHERE completed_at IS NULL AND skipped = false`
	}
	query += ` ORDER BY scheduled_time NULLS LAST, created_at`
	return r.queryTasks(ctx, query)
}

func (r *PostgresCareTasksRepo) ListCareTasksForDay(ctx context.Context, dayStart time.Time) ([]*domain.CareTask, error) {
	query := `SELECT ` + careTaskColumns + `
		FROM care_tasks
		WHERE scheduled_time >= $1 AND scheduled_time < $2
		ORDER BY scheduled_time`
	return r.queryTasks(ctx, query, dayStart, dayStart.Add(24*time.Hour))
}

func (r *PostgresCareTasksRepo) GetCareTask(ctx context.Context, taskID string) (*domain.CareTask, error) {
	query := `SELECT ` + careTaskColumns + ` FROM care_tasks WHERE task_id = $1`
	t, err := scanCareTask(r.db.QueryRowContext(ctx, query, taskID))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get care task: %w", err)
	}
	return t, nil
}

func (r *PostgresCareTasksRepo) CreateCareTask(ctx context.Context, t *domain.CareTask) (string, error) {
	query := `
		INSERT INTO care_tasks (title, description, category_id, patient_id, schedule_id, scheduled_time)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING task_id`
	var id string
	err := r.db.QueryRowContext(ctx, query,
		t.Title, t.Description, t.CategoryID, t.PatientID, t.ScheduleID, t.ScheduledTime,
	).Scan(&id)
	if err != nil {
		return "", fmt.Errorf("failed to create care task: %w", err)
	}
	return id, nil
}

func (r *PostgresCareTasksRepo) UpdateCareTask(ctx context.Context, taskID string, t *domain.CareTask) error {
	query := `
		UPDATE care_tasks
		SET title = $1, description = $2, category_id = $3, patient_id = $4,
		    schedule_id = $5, scheduled_time = $6, updated_at = now()
		WHERE task_id = $7`
	res, err := r.db.ExecContext(ctx, query,
		t.Title, t.Description, t.CategoryID, t.PatientID, t.ScheduleID, t.ScheduledTime, taskID,
	)
	if err != nil {
		return fmt.Errorf("failed to update care task: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *PostgresCareTasksRepo) DeleteCareTask(ctx context.Context, taskID string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM care_tasks WHERE task_id = $1`, taskID)
	if err != nil {
		return fmt.Errorf("failed to delete care task: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *PostgresCareTasksRepo) CompleteCareTask(ctx context.Context, taskID string, completedAt time.Time, completedBy string, skipped bool) error {
	query := `
		UPDATE care_tasks
		SET completed_at = $1, completed_by = NULLIF($2, ''), skipped = $3, updated_at = now()
		WHERE task_id = $4`
	res, err := r.db.ExecContext(ctx, query, completedAt, completedBy, skipped, taskID)
	if err != nil {
		return fmt.Errorf("failed to complete care task: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}
