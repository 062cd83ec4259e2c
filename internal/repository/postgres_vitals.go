package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/johnrcarty/smart-home-health-hub/internal/domain"
)

// PostgresVitalsRepo implements VitalsRepository on PostgreSQL.
type PostgresVitalsRepo struct {
	db *sql.DB
}

func NewPostgresVitalsRepo(db *sql.DB) *PostgresVitalsRepo {
	return &PostgresVitalsRepo{db: db}
}

// ============================================
// Vital readings
// ============================================

func (r *PostgresVitalsRepo) InsertReading(ctx context.Context, v *domain.VitalReading) (string, error) {
	query := `
		INSERT INTO vital_readings (metric, value, unit, source, taken_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING reading_id`
	var id string
	err := r.db.QueryRowContext(ctx, query, v.Metric, v.Value, v.Unit, v.Source, v.TakenAt).Scan(&id)
	if err != nil {
		return "", fmt.Errorf("failed to insert vital reading: %w", err)
	}
	return id, nil
}

func (r *PostgresVitalsRepo) ListReadings(ctx context.Context, metric string, from, to time.Time, limit int) ([]*domain.VitalReading, error) {
	if limit <= 0 {
		limit = 500
	}
	query := `
		SELECT reading_id, metric, value, unit, source, taken_at, created_at
		FROM vital_readings
		WHERE metric = $1 AND taken_at >= $2 AND taken_at < $3
		ORDER BY taken_at DESC
		LIMIT $4`
	rows, err := r.db.QueryContext(ctx, query, metric, from, to, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list vital readings: %w", err)
	}
	defer rows.Close()

	var out []*domain.VitalReading
	for rows.Next() {
		var v domain.VitalReading
		if err := rows.Scan(&v.ReadingID, &v.Metric, &v.Value, &v.Unit, &v.Source, &v.TakenAt, &v.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan vital reading: %w", err)
		}
		out = append(out, &v)
	}
	return out, rows.Err()
}

// ============================================
// Blood pressure
// ============================================

func (r *PostgresVitalsRepo) InsertBloodPressure(ctx context.Context, b *domain.BloodPressureReading) (string, error) {
	query := `
		INSERT INTO blood_pressure (systolic, diastolic, pulse, source, taken_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING reading_id`
	var id string
	err := r.db.QueryRowContext(ctx, query, b.Systolic, b.Diastolic, b.Pulse, b.Source, b.TakenAt).Scan(&id)
	if err != nil {
		return "", fmt.Errorf("failed to insert blood pressure reading: %w", err)
	}
	return id, nil
}

func (r *PostgresVitalsRepo) ListBloodPressure(ctx context.Context, from, to time.Time, limit int) ([]*domain.BloodPressureReading, error) {
	if limit <= 0 {
		limit = 500
	}
	query := `
		SELECT reading_id, systolic, diastolic, pulse, source, taken_at, created_at
		FROM blood_pressure
		WHERE taken_at >= $1 AND taken_at < $2
		ORDER BY taken_at DESC
		LIMIT $3`
	rows, err := r.db.QueryContext(ctx, query, from, to, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list blood pressure readings: %w", err)
	}
	defer rows.Close()

	var out []*domain.BloodPressureReading
	for rows.Next() {
		var b domain.BloodPressureReading
		if err := rows.Scan(&b.ReadingID, &b.Systolic, &b.Diastolic, &b.Pulse, &b.Source, &b.TakenAt, &b.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan blood pressure reading: %w", err)
		}
		out = append(out, &b)
	}
	return out, rows.Err()
}

// ============================================
// Nutrition
// ============================================

func (r *PostgresVitalsRepo) InsertMeal(ctx context.Context, m *domain.MealEntry) (string, error) {
	query := `
		INSERT INTO meal_entries (meal_type, description, calories, amount, eaten_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING entry_id`
	var id string
	err := r.db.QueryRowContext(ctx, query, m.MealType, m.Description, m.Calories, m.Amount, m.EatenAt).Scan(&id)
	if err != nil {
		return "", fmt.Errorf("failed to insert meal entry: %w", err)
	}
	return id, nil
}

func (r *PostgresVitalsRepo) ListMealsForDay(ctx context.Context, dayStart time.Time) ([]*domain.MealEntry, error) {
	query := `
		SELECT entry_id, meal_type, description, calories, amount, eaten_at, created_at
		FROM meal_entries
		WHERE eaten_at >= $1 AND eaten_at < $2
		ORDER BY eaten_at`
	rows, err := r.db.QueryContext(ctx, query, dayStart, dayStart.Add(24*time.Hour))
	if err != nil {
		return nil, fmt.Errorf("failed to list meal entries: %w", err)
	}
	defer rows.Close()

	var out []*domain.MealEntry
	for rows.Next() {
		var m domain.MealEntry
		if err := rows.Scan(&m.EntryID, &m.MealType, &m.Description, &m.Calories, &m.Amount, &m.EatenAt, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan meal entry: %w", err)
		}
		out = append(out, &m)
	}
	return out, rows.Err()
}

func (r *PostgresVitalsRepo) DeleteMeal(ctx context.Context, entryID string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM meal_entries WHERE entry_id = $1`, entryID)
	if err != nil {
		return fmt.Errorf("failed to delete meal entry: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// ============================================
// Bathroom events
// ============================================

func (r *PostgresVitalsRepo) InsertBathroomEvent(ctx context.Context, b *domain.BathroomEvent) (string, error) {
	query := `
		INSERT INTO bathroom_events (event_type, notes, occurred_at)
		VALUES ($1, $2, $3)
		RETURNING event_id`
	var id string
	err := r.db.QueryRowContext(ctx, query, b.EventType, b.Notes, b.OccurredAt).Scan(&id)
	if err != nil {
		return "", fmt.Errorf("failed to insert bathroom event: %w", err)
	}
	return id, nil
}

func (r *PostgresVitalsRepo) ListBathroomEventsForDay(ctx context.Context, dayStart time.Time) ([]*domain.BathroomEvent, error) {
	query := `
		SELECT event_id, event_type, notes, occurred_at, created_at
		FROM bathroom_events
		WHERE occurred_at >= $1 AND occurred_at < $2
		ORDER BY occurred_at`
	rows, err := r.db.QueryContext(ctx, query, dayStart, dayStart.Add(24*time.Hour))
	if err != nil {
		return nil, fmt.Errorf("failed to list bathroom events: %w", err)
	}
	defer rows.Close()

	var out []*domain.BathroomEvent
	for rows.Next() {
		var b domain.BathroomEvent
		if err := rows.Scan(&b.EventID, &b.EventType, &b.Notes, &b.OccurredAt, &b.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan bathroom event: %w", err)
		}
		out = append(out, &b)
	}
	return out, rows.Err()
}

func (r *PostgresVitalsRepo) DeleteBathroomEvent(ctx context.Context, eventID string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM bathroom_events WHERE event_id = $1`, eventID)
	if err != nil {
		return fmt.Errorf("failed to delete bathroom event: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}
