package domain

import (
	"database/sql"
	"time"
)

// MealEntry is one nutrition record (meal_entries table).
type MealEntry struct {
	EntryID string `db:"entry_id"`

	MealType    string         `db:"meal_type"` // breakfast/lunch/dinner/snack
	Description string         `db:"description"`
	Calories    sql.NullInt64  `db:"calories"`
	Amount      sql.NullString `db:"amount"` // free text, e.g. "half portion"

	EatenAt   time.Time `db:"eaten_at"`
	CreatedAt time.Time `db:"created_at"`
}

// ToJSON shapes the entry for HTTP responses.
func (m *MealEntry) ToJSON() map[string]any {
	out := map[string]any{
		"entry_id":    m.EntryID,
		"meal_type":   m.MealType,
		"description": m.Description,
		"eaten_at":    m.EatenAt,
	}
	if m.Calories.Valid {
		out["calories"] = m.Calories.Int64
	}
	if m.Amount.Valid {
		out["amount"] = m.Amount.String
	}
	return out
}

// BathroomEvent is one bathroom record (bathroom_events table).
type BathroomEvent struct {
	EventID string `db:"event_id"`

	EventType string         `db:"event_type"` // urine/stool/both
	Notes     sql.NullString `db:"notes"`

	OccurredAt time.Time `db:"occurred_at"`
	CreatedAt  time.Time `db:"created_at"`
}

// ToJSON shapes the event for HTTP responses.
func (b *BathroomEvent) ToJSON() map[string]any {
	out := map[string]any{
		"event_id":    b.EventID,
		"event_type":  b.EventType,
		"occurred_at": b.OccurredAt,
	}
	if b.Notes.Valid {
		out["notes"] = b.Notes.String
	}
	return out
}
