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

func setupMockMedicationsDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock, *PostgresMedicationsRepo) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	repo := NewPostgresMedicationsRepo(db)
	return db, mock, repo
}

// ============================================
// Medication CRUD
// ============================================

func TestGetMedication_Success(t *testing.T) {
	db, mock, repo := setupMockMedicationsDB(t)
	defer db.Close()

	ctx := context.Background()
	medicationID := uuid.New().String()
	now := time.Now()

	rows := sqlmock.NewRows([]string{
		"medication_id", "name", "dosage", "unit", "instructions", "category_id",
		"patient_id", "active", "start_date", "end_date", "created_at", "updated_at",
	}).AddRow(
		medicationID, "Lisinopril", "10", "mg", "Take with water", nil,
		nil, true, now, nil, now, now,
	)

	mock.ExpectQuery(`SELECT`).
		WithArgs(medicationID).
		WillReturnRows(rows)

	m, err := repo.GetMedication(ctx, medicationID)

	require.NoError(t, err)
	assert.Equal(t, medicationID, m.MedicationID)
	assert.Equal(t, "Lisinopril", m.Name)
	assert.Equal(t, "10", m.Dosage)
	assert.Equal(t, "mg", m.Unit)
	assert.True(t, m.Active)
	assert.True(t, m.Instructions.Valid)
	assert.False(t, m.CategoryID.Valid)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestGetMedication_NotFound(t *testing.T) {
	db, mock, repo := setupMockMedicationsDB(t)
	defer db.Close()

	medicationID := uuid.New().String()

	mock.ExpectQuery(`SELECT`).
		WithArgs(medicationID).
		WillReturnError(sql.ErrNoRows)

	m, err := repo.GetMedication(context.Background(), medicationID)

	assert.Nil(t, m)
	assert.True(t, errors.Is(err, ErrNotFound))

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestListMedications_ActiveOnly(t *testing.T) {
	db, mock, repo := setupMockMedicationsDB(t)
	defer db.Close()

	now := time.Now()
	rows := sqlmock.NewRows([]string{
		"medication_id", "name", "dosage", "unit", "instructions", "category_id",
		"patient_id", "active", "start_date", "end_date", "created_at", "updated_at",
	}).
		AddRow(uuid.New().String(), "Aspirin", "81", "mg", nil, nil, nil, true, now, nil, now, now).
		AddRow(uuid.New().String(), "Metformin", "500", "mg", nil, nil, nil, true, now, nil, now, now)

	mock.ExpectQuery(`SELECT .+ FROM medications WHERE active = true`).
		WillReturnRows(rows)

	out, err := repo.ListMedications(context.Background(), true)

	require.NoError(t, err)
	require.Len(t, out, 2)
	assert.Equal(t, "Aspirin", out[0].Name)
	assert.Equal(t, "Metformin", out[1].Name)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateMedication_Success(t *testing.T) {
	db, mock, repo := setupMockMedicationsDB(t)
	defer db.Close()

	newID := uuid.New().String()
	m := &domain.Medication{
		Name:   "Atorvastatin",
		Dosage: "20",
		Unit:   "mg",
		Active: true,
	}

	mock.ExpectQuery(`INSERT INTO medications`).
		WillReturnRows(sqlmock.NewRows([]string{"medication_id"}).AddRow(newID))

	id, err := repo.CreateMedication(context.Background(), m)

	require.NoError(t, err)
	assert.Equal(t, newID, id)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateMedication_NotFound(t *testing.T) {
	db, mock, repo := setupMockMedicationsDB(t)
	defer db.Close()

	mock.ExpectExec(`UPDATE medications`).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.UpdateMedication(context.Background(), uuid.New().String(), &domain.Medication{Name: "x"})

	assert.True(t, errors.Is(err, ErrNotFound))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestDeactivateMedication_Success(t *testing.T) {
	db, mock, repo := setupMockMedicationsDB(t)
	defer db.Close()

	medicationID := uuid.New().String()

	mock.ExpectExec(`UPDATE medications SET active = false`).
		WithArgs(medicationID).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.DeactivateMedication(context.Background(), medicationID)

	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

// ============================================
// Dose events
// ============================================

func TestListDoseEventsForDay_Success(t *testing.T) {
	db, mock, repo := setupMockMedicationsDB(t)
	defer db.Close()

	dayStart := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)
	now := time.Now()

	rows := sqlmock.NewRows([]string{
		"dose_id", "medication_id", "scheduled_time", "dose_amount",
		"actual_dose", "actual_time", "notes", "created_at", "updated_at",
	}).
		AddRow(uuid.New().String(), uuid.New().String(), dayStart.Add(8*time.Hour), 1.0, 1.0, dayStart.Add(8*time.Hour+5*time.Minute), nil, now, now).
		AddRow(uuid.New().String(), uuid.New().String(), dayStart.Add(20*time.Hour), 1.0, nil, nil, nil, now, now)

	mock.ExpectQuery(`SELECT .+ FROM dose_events`).
		WithArgs(dayStart, dayStart.Add(24*time.Hour)).
		WillReturnRows(rows)

	out, err := repo.ListDoseEventsForDay(context.Background(), dayStart)

	require.NoError(t, err)
	require.Len(t, out, 2)
	assert.True(t, out[0].ActualDose.Valid)
	assert.True(t, out[0].Completed())
	assert.False(t, out[1].Completed())

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRecordDose_Success(t *testing.T) {
	db, mock, repo := setupMockMedicationsDB(t)
	defer db.Close()

	doseID := uuid.New().String()
	takenAt := time.Now()

	mock.ExpectExec(`UPDATE dose_events`).
		WithArgs(2.0, takenAt, "with breakfast", doseID).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.RecordDose(context.Background(), doseID, 2.0, takenAt, "with breakfast")

	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRecordDose_NotFound(t *testing.T) {
	db, mock, repo := setupMockMedicationsDB(t)
	defer db.Close()

	mock.ExpectExec(`UPDATE dose_events`).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.RecordDose(context.Background(), uuid.New().String(), 1.0, time.Now(), "")

	assert.True(t, errors.Is(err, ErrNotFound))
	require.NoError(t, mock.ExpectationsWereMet())
}
