package domain

import (
	"database/sql"
	"time"
)

// CareTask is one caregiver task occurrence (care_tasks table).
type CareTask struct {
	TaskID string `db:"task_id"`

	Title       string         `db:"title"` // NOT NULL
	Description sql.NullString `db:"description"`
	CategoryID  sql.NullString `db:"category_id"`
	PatientID   sql.NullString `db:"patient_id"`
	ScheduleID  sql.NullString `db:"schedule_id"` // set when generated from a schedule

	ScheduledTime sql.NullTime `db:"scheduled_time"`

	CompletedAt sql.NullTime   `db:"completed_at"`
	CompletedBy sql.NullString `db:"completed_by"`
	Skipped     bool           `db:"skipped"` // NOT NULL, default false

	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

// Completed reports whether the task was finished or explicitly skipped.
func (t *CareTask) Completed() bool {
	return t.CompletedAt.Valid || t.Skipped
}

// ToJSON shapes the task for HTTP responses.
func (t *CareTask) ToJSON() map[string]any {
	out := map[string]any{
		"task_id":    t.TaskID,
		"title":      t.Title,
		"skipped":    t.Skipped,
		"created_at": t.CreatedAt,
		"updated_at": t.UpdatedAt,
	}
	if t.Description.Valid {
		out["description"] = t.Description.String
	}
	if t.CategoryID.Valid {
		out["category_id"] = t.CategoryID.String
	}
	if t.PatientID.Valid {
		out["patient_id"] = t.PatientID.String
	}
	if t.ScheduleID.Valid {
		out["schedule_id"] = t.ScheduleID.String
	}
	if t.ScheduledTime.Valid {
		out["scheduled_time"] = t.ScheduledTime.Time
	}
	if t.CompletedAt.Valid {
		out["completed_at"] = t.CompletedAt.Time
	}
	if t.CompletedBy.Valid {
		out["completed_by"] = t.CompletedBy.String
	}
	return out
}
