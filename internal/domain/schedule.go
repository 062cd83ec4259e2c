package domain

import (
	"database/sql"
	"time"
)

// Schedule target types.
const (
	ScheduleTargetMedication = "medication"
	ScheduleTargetCareTask   = "care_task"
)

// Schedule is a recurring rule that generates dose events or care tasks
// (schedules table). CronExpr is a standard 5-field cron expression.
type Schedule struct {
	ScheduleID string `db:"schedule_id"`

	Name     string `db:"name"` // NOT NULL
	CronExpr string `db:"cron_expr"`

	TargetType string         `db:"target_type"` // 'medication' | 'care_task'
	TargetID   sql.NullString `db:"target_id"`

	DoseAmount sql.NullFloat64 `db:"dose_amount"` // for medication targets
	Timezone   string          `db:"timezone"`    // IANA name, default 'Local'
	Active     bool            `db:"active"`

	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

// ToJSON shapes the schedule for HTTP responses.
func (s *Schedule) ToJSON() map[string]any {
	out := map[string]any{
		"schedule_id": s.ScheduleID,
		"name":        s.Name,
		"cron_expr":   s.CronExpr,
		"target_type": s.TargetType,
		"timezone":    s.Timezone,
		"active":      s.Active,
		"created_at":  s.CreatedAt,
		"updated_at":  s.UpdatedAt,
	}
	if s.TargetID.Valid {
		out["target_id"] = s.TargetID.String
	}
	if s.DoseAmount.Valid {
		out["dose_amount"] = s.DoseAmount.Float64
	}
	return out
}
