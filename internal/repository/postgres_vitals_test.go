package repository

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/johnrcarty/smart-home-health-hub/internal/domain"
)

func setupMockVitalsDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock, *PostgresVitalsRepo) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	repo := NewPostgresVitalsRepo(db)
	return db, mock, repo
}

func TestInsertReading_Success(t *testing.T) {
	db, mock, repo := setupMockVitalsDB(t)
	defer db.Close()

	newID := uuid.New().String()
	takenAt := time.Now()

	mock.ExpectQuery(`INSERT INTO vital_readings`).
		WithArgs(domain.MetricSpO2, 97.0, "%", domain.SourceManual, takenAt).
		WillReturnRows(sqlmock.NewRows([]string{"reading_id"}).AddRow(newID))

	id, err := repo.InsertReading(context.Background(), &domain.VitalReading{
		Metric:  domain.MetricSpO2,
		Value:   97,
		Unit:    "%",
		Source:  domain.SourceManual,
		TakenAt: takenAt,
	})

	require.NoError(t, err)
	assert.Equal(t, newID, id)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestListReadings_DefaultLimit(t *testing.T) {
	db, mock, repo := setupMockVitalsDB(t)
	defer db.Close()

	from := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)
	to := from.Add(24 * time.Hour)
	now := time.Now()

	rows := sqlmock.NewRows([]string{
		"reading_id", "metric", "value", "unit", "source", "taken_at", "created_at",
	}).
		AddRow(uuid.New().String(), domain.MetricHeartRate, 72.0, "bpm", domain.SourceDevice, from.Add(10*time.Hour), now).
		AddRow(uuid.New().String(), domain.MetricHeartRate, 68.0, "bpm", domain.SourceDevice, from.Add(8*time.Hour), now)

	mock.ExpectQuery(`SELECT .+ FROM vital_readings`).
		WithArgs(domain.MetricHeartRate, from, to, 500).
		WillReturnRows(rows)

	out, err := repo.ListReadings(context.Background(), domain.MetricHeartRate, from, to, 0)

	require.NoError(t, err)
	require.Len(t, out, 2)
	assert.Equal(t, 72.0, out[0].Value)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestListBloodPressure_Success(t *testing.T) {
	db, mock, repo := setupMockVitalsDB(t)
	defer db.Close()

	from := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)
	to := from.Add(24 * time.Hour)
	now := time.Now()

	rows := sqlmock.NewRows([]string{
		"reading_id", "systolic", "diastolic", "pulse", "source", "taken_at", "created_at",
	}).AddRow(uuid.New().String(), 120, 80, 70, domain.SourceManual, from.Add(9*time.Hour), now)

	mock.ExpectQuery(`SELECT .+ FROM blood_pressure`).
		WithArgs(from, to, 500).
		WillReturnRows(rows)

	out, err := repo.ListBloodPressure(context.Background(), from, to, 0)

	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, 120, out[0].Systolic)
	assert.InDelta(t, 93.3, out[0].MAP(), 0.01)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteMeal_NotFound(t *testing.T) {
	db, mock, repo := setupMockVitalsDB(t)
	defer db.Close()

	mock.ExpectExec(`DELETE FROM meal_entries`).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.DeleteMeal(context.Background(), uuid.New().String())

	assert.True(t, errors.Is(err, ErrNotFound))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestListBathroomEventsForDay_Success(t *testing.T) {
	db, mock, repo := setupMockVitalsDB(t)
	defer db.Close()

	dayStart := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)
	now := time.Now()

	rows := sqlmock.NewRows([]string{
		"event_id", "event_type", "notes", "occurred_at", "created_at",
	}).AddRow(uuid.New().String(), "urine", nil, dayStart.Add(7*time.Hour), now)

	mock.ExpectQuery(`SELECT .+ FROM bathroom_events`).
		WithArgs(dayStart, dayStart.Add(24*time.Hour)).
		WillReturnRows(rows)

	out, err := repo.ListBathroomEventsForDay(context.Background(), dayStart)

	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, "urine", out[0].EventType)

	require.NoError(t, mock.ExpectationsWereMet())
}
