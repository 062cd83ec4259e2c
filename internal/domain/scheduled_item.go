package domain

import "time"

// Scheduled item kinds.
const (
	ScheduledKindMedication = "medication"
	ScheduledKindCareTask   = "care_task"
)

// ScheduledItem is the transient view model the daily-schedule endpoint
// serves: one dose event or care task occurrence, flattened for display.
// Status is derived per request by the schedule package, never stored.
//
// ActualDose presence is authoritative for completion; IsCompleted is a
// display flag kept for the frontend and is not consulted when deriving
// Status.
type ScheduledItem struct {
	ID   string `json:"id"`
	Kind string `json:"kind"` // 'medication' | 'care_task'

	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	DoseAmount  string `json:"dose_amount,omitempty"`

	ScheduledTime *time.Time `json:"scheduled_time"`
	ActualDose    *float64   `json:"actual_dose,omitempty"`
	ActualTime    *time.Time `json:"actual_time,omitempty"`
	IsCompleted   bool       `json:"is_completed"`

	Status string `json:"status"`
}
