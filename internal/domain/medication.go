package domain

import (
	"database/sql"
	"time"
)

// Medication is one managed medication (medications table).
type Medication struct {
	MedicationID string `db:"medication_id"`

	Name   string `db:"name"` // NOT NULL
	Dosage string `db:"dosage"`
	Unit   string `db:"unit"`

	Instructions sql.NullString `db:"instructions"` // nullable
	CategoryID   sql.NullString `db:"category_id"`  // nullable
	PatientID    sql.NullString `db:"patient_id"`   // nullable

	Active    bool         `db:"active"` // NOT NULL, default true
	StartDate sql.NullTime `db:"start_date"`
	EndDate   sql.NullTime `db:"end_date"`

	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

// ToJSON shapes the medication for HTTP responses.
func (m *Medication) ToJSON() map[string]any {
	out := map[string]any{
		"medication_id": m.MedicationID,
		"name":          m.Name,
		"dosage":        m.Dosage,
		"unit":          m.Unit,
		"active":        m.Active,
		"created_at":    m.CreatedAt,
		"updated_at":    m.UpdatedAt,
	}
	if m.Instructions.Valid {
		out["instructions"] = m.Instructions.String
	}
	if m.CategoryID.Valid {
		out["category_id"] = m.CategoryID.String
	}
	if m.PatientID.Valid {
		out["patient_id"] = m.PatientID.String
	}
	if m.StartDate.Valid {
		out["start_date"] = m.StartDate.Time
	}
	if m.EndDate.Valid {
		out["end_date"] = m.EndDate.Time
	}
	return out
}

// DoseEvent is one scheduled occurrence of a medication dose
// (dose_events table). ActualDose is the source of truth for completion:
// present and zero means explicitly skipped, present and non-zero means
// administered.
type DoseEvent struct {
	DoseID       string `db:"dose_id"`
	MedicationID string `db:"medication_id"`

	ScheduledTime time.Time `db:"scheduled_time"` // NOT NULL
	DoseAmount    float64   `db:"dose_amount"`

	ActualDose sql.NullFloat64 `db:"actual_dose"` // nullable
	ActualTime sql.NullTime    `db:"actual_time"` // nullable
	Notes      sql.NullString  `db:"notes"`       // nullable

	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

// Completed reports whether a dose amount has been recorded (including an
// explicit zero for a skipped dose).
func (d *DoseEvent) Completed() bool {
	return d.ActualDose.Valid
}
