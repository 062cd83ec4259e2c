package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/johnrcarty/smart-home-health-hub/internal/domain"
)

// PostgresMedicationsRepo implements MedicationsRepository on PostgreSQL.
type PostgresMedicationsRepo struct {
	db *sql.DB
}

func NewPostgresMedicationsRepo(db *sql.DB) *PostgresMedicationsRepo {
	return &PostgresMedicationsRepo{db: db}
}

const medicationColumns = `medication_id, name, dosage, unit, instructions, category_id,
	patient_id, active, start_date, end_date, created_at, updated_at`

func scanMedication(row interface{ Scan(...any) error }) (*domain.Medication, error) {
	var m domain.Medication
	err := row.Scan(
		&m.MedicationID, &m.Name, &m.Dosage, &m.Unit, &m.Instructions, &m.CategoryID,
		&m.PatientID, &m.Active, &m.StartDate, &m.EndDate, &m.CreatedAt, &m.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &m, nil
}

func (r *PostgresMedicationsRepo) ListMedications(ctx context.Context, activeOnly bool) ([]*domain.Medication, error) {
	query := `SELECT ` + medicationColumns + ` FROM medications`
	if activeOnly {
		query += ` WHERE active = true`
	}
	query += ` ORDER BY name`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list medications: %w", err)
	}
	defer rows.Close()

	var out []*domain.Medication
	for rows.Next() {
		m, err := scanMedication(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan medication: %w", err)
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

func (r *PostgresMedicationsRepo) GetMedication(ctx context.Context, medicationID string) (*domain.Medication, error) {
	query := `SELECT ` + medicationColumns + ` FROM medications WHERE medication_id = $1`
	m, err := scanMedication(r.db.QueryRowContext(ctx, query, medicationID))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get medication: %w", err)
	}
	return m, nil
}

func (r *PostgresMedicationsRepo) CreateMedication(ctx context.Context, m *domain.Medication) (string, error) {
	query := `
		INSERT INTO medications (name, dosage, unit, instructions, category_id, patient_id, active, start_date, end_date)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING medication_id`
	var id string
	err := r.db.QueryRowContext(ctx, query,
		m.Name, m.Dosage, m.Unit, m.Instructions, m.CategoryID,
		m.PatientID, m.Active, m.StartDate, m.EndDate,
	).Scan(&id)
	if err != nil {
		return "", fmt.Errorf("failed to create medication: %w", err)
	}
	return id, nil
}

func (r *PostgresMedicationsRepo) UpdateMedication(ctx context.Context, medicationID string, m *domain.Medication) error {
	query := `
		UPDATE medications
		SET name = $1, dosage = $2, unit = $3, instructions = $4, category_id = $5,
		    patient_id = $6, active = $7, start_date = $8, end_date = $9, updated_at = now()
		WHERE medication_id = $10`
	res, err := r.db.ExecContext(ctx, query,
		m.Name, m.Dosage, m.Unit, m.Instructions, m.CategoryID,
		m.PatientID, m.Active, m.StartDate, m.EndDate, medicationID,
	)
	if err != nil {
		return fmt.Errorf("failed to update medication: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *PostgresMedicationsRepo) DeactivateMedication(ctx context.Context, medicationID string) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE medications SET active = false, updated_at = now() WHERE medication_id = $1`,
		medicationID,
	)
	if err != nil {
		return fmt.Errorf("failed to deactivate medication: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

const doseEventColumns = `dose_id, medication_id, scheduled_time, dose_amount,
	actual_dose, actual_time, notes, created_at, updated_at`

func scanDoseEvent(row interface{ Scan(...any) error }) (*domain.DoseEvent, error) {
	var d domain.DoseEvent
	err := row.Scan(
		&d.DoseID, &d.MedicationID, &d.ScheduledTime, &d.DoseAmount,
		&d.ActualDose, &d.ActualTime, &d.Notes, &d.CreatedAt, &d.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

func (r *PostgresMedicationsRepo) CreateDoseEvent(ctx context.Context, d *domain.DoseEvent) (string, error) {
	query := `
		INSERT INTO dose_events (medication_id, scheduled_time, dose_amount, actual_dose, actual_time, notes)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING dose_id`
	var id string
	err := r.db.QueryRowContext(ctx, query,
		d.MedicationID, d.ScheduledTime, d.DoseAmount, d.ActualDose, d.ActualTime, d.Notes,
	).Scan(&id)
	if err != nil {
		return "", fmt.Errorf("failed to create dose event: %w", err)
	}
	return id, nil
}

func (r *PostgresMedicationsRepo) GetDoseEvent(ctx context.Context, doseID string) (*domain.DoseEvent, error) {
	query := `SELECT ` + doseEventColumns + ` FROM dose_events WHERE dose_id = $1`
	d, err := scanDoseEvent(r.db.QueryRowContext(ctx, query, doseID))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get dose event: %w", err)
	}
	return d, nil
}

func (r *PostgresMedicationsRepo) ListDoseEventsForDay(ctx context.Context, dayStart time.Time) ([]*domain.DoseEvent, error) {
	query := `SELECT ` + doseEventColumns + `
		FROM dose_events
		WHERE scheduled_time >= $1 AND scheduled_time < $2
		ORDER BY scheduled_time`
	rows, err := r.db.QueryContext(ctx, query, dayStart, dayStart.Add(24*time.Hour))
	if err != nil {
		return nil, fmt.Errorf("failed to list dose events: %w", err)
	}
	defer rows.Close()

	var out []*domain.DoseEvent
	for rows.Next() {
		d, err := scanDoseEvent(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan dose event: %w", err)
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

func (r *PostgresMedicationsRepo) RecordDose(ctx context.Context, doseID string, amount float64, takenAt time.Time, notes string) error {
	query := `
		UPDATE dose_events
		SET actual_dose = $1, actual_time = $2, notes = NULLIF($3, ''), updated_at = now()
		WHERE dose_id = $4`
	res, err := r.db.ExecContext(ctx, query, amount, takenAt, notes, doseID)
	if err != nil {
		return fmt.Errorf("failed to record dose: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}
