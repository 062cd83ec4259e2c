package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/johnrcarty/smart-home-health-hub/internal/domain"
)

// PostgresSchedulesRepo implements SchedulesRepository on PostgreSQL.
type PostgresSchedulesRepo struct {
	db *sql.DB
}

func NewPostgresSchedulesRepo(db *sql.DB) *PostgresSchedulesRepo {
	return &PostgresSchedulesRepo{db: db}
}

const scheduleColumns = `schedule_id, name, cron_expr, target_type, target_id,
	dose_amount, timezone, active, created_at, updated_at`

func scanSchedule(row interface{ Scan(...any) error }) (*domain.Schedule, error) {
	var s domain.Schedule
	err := row.Scan(
		&s.ScheduleID, &s.Name, &s.CronExpr, &s.TargetType, &s.TargetID,
		&s.DoseAmount, &s.Timezone, &s.Active, &s.CreatedAt, &s.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *PostgresSchedulesRepo) ListSchedules(ctx context.Context, activeOnly bool) ([]*domain.Schedule, error) {
	query := `SELECT ` + scheduleColumns + ` FROM schedules`
	if activeOnly {
		query += ` WHERE active = true`
	}
	query += ` ORDER BY name`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list schedules: %w", err)
	}
	defer rows.Close()

	var out []*domain.Schedule
	for rows.Next() {
		s, err := scanSchedule(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan schedule: %w", err)
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

func (r *PostgresSchedulesRepo) GetSchedule(ctx context.Context, scheduleID string) (*domain.Schedule, error) {
	query := `SELECT ` + scheduleColumns + ` FROM schedules WHERE schedule_id = $1`
	s, err := scanSchedule(r.db.QueryRowContext(ctx, query, scheduleID))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get schedule: %w", err)
	}
	return s, nil
}

func (r *PostgresSchedulesRepo) CreateSchedule(ctx context.Context, s *domain.Schedule) (string, error) {
	query := `
		INSERT INTO schedules (name, cron_expr, target_type, target_id, dose_amount, timezone, active)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING schedule_id`
	var id string
	err := r.db.QueryRowContext(ctx, query,
		s.Name, s.CronExpr, s.TargetType, s.TargetID, s.DoseAmount, s.Timezone, s.Active,
	).Scan(&id)
	if err != nil {
		return "", fmt.Errorf("failed to create schedule: %w", err)
	}
	return id, nil
}

func (r *PostgresSchedulesRepo) UpdateSchedule(ctx context.Context, scheduleID string, s *domain.Schedule) error {
	query := `
		UPDATE schedules
		SET name = $1, cron_expr = $2, target_type = $3, target_id = $4,
		    dose_amount = $5, timezone = $6, active = $7, updated_at = now()
		WHERE schedule_id = $8`
	res, err := r.db.ExecContext(ctx, query,
		s.Name, s.CronExpr, s.TargetType, s.TargetID, s.DoseAmount, s.Timezone, s.Active, scheduleID,
	)
	if err != nil {
		return fmt.Errorf("failed to update schedule: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *PostgresSchedulesRepo) DeleteSchedule(ctx context.Context, scheduleID string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM schedules WHERE schedule_id = $1`, scheduleID)
	if err != nil {
		return fmt.Errorf("failed to delete schedule: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}
