package domain

import (
	"database/sql"
	"time"
)

// Patient is one monitored person (patients table). A home hub normally
// has exactly one, but the tables don't assume it.
type Patient struct {
	PatientID string `db:"patient_id"`

	FirstName string         `db:"first_name"`
	LastName  string         `db:"last_name"`
	BirthDate sql.NullTime   `db:"birth_date"`
	Notes     sql.NullString `db:"notes"`

	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

// ToJSON shapes the patient for HTTP responses.
func (p *Patient) ToJSON() map[string]any {
	out := map[string]any{
		"patient_id": p.PatientID,
		"first_name": p.FirstName,
		"last_name":  p.LastName,
		"created_at": p.CreatedAt,
		"updated_at": p.UpdatedAt,
	}
	if p.BirthDate.Valid {
		out["birth_date"] = p.BirthDate.Time
	}
	if p.Notes.Valid {
		out["notes"] = p.Notes.String
	}
	return out
}

// Category groups medications and care tasks for display (categories table).
type Category struct {
	CategoryID string `db:"category_id"`

	Name  string         `db:"name"` // NOT NULL
	Kind  string         `db:"kind"` // 'medication' | 'care_task'
	Color sql.NullString `db:"color"`

	CreatedAt time.Time `db:"created_at"`
}

// ToJSON shapes the category for HTTP responses.
func (c *Category) ToJSON() map[string]any {
	out := map[string]any{
		"category_id": c.CategoryID,
		"name":        c.Name,
		"kind":        c.Kind,
	}
	if c.Color.Valid {
		out["color"] = c.Color.String
	}
	return out
}
