package domain

import (
	"database/sql"
	"math"
	"time"
)

// Vital metric names. BloodPressure has its own table because a reading is
// a systolic/diastolic pair, not a single value.
const (
	MetricSpO2        = "spo2"
	MetricHeartRate   = "heart_rate"
	MetricTemperature = "temperature"
	MetricWeight      = "weight"
)

// Reading sources.
const (
	SourceManual = "manual"
	SourceDevice = "device"
)

// VitalReading is one single-value vital sample (vital_readings table).
type VitalReading struct {
	ReadingID string `db:"reading_id"`

	Metric string  `db:"metric"` // NOT NULL
	Value  float64 `db:"value"`
	Unit   string  `db:"unit"`

	Source  string    `db:"source"` // 'manual' | 'device'
	TakenAt time.Time `db:"taken_at"`

	CreatedAt time.Time `db:"created_at"`
}

// ToJSON shapes the reading for HTTP responses.
func (v *VitalReading) ToJSON() map[string]any {
	return map[string]any{
		"reading_id": v.ReadingID,
		"metric":     v.Metric,
		"value":      v.Value,
		"unit":       v.Unit,
		"source":     v.Source,
		"taken_at":   v.TakenAt,
	}
}

// BloodPressureReading is one blood pressure sample (blood_pressure table).
type BloodPressureReading struct {
	ReadingID string `db:"reading_id"`

	Systolic  int           `db:"systolic"`  // mmHg
	Diastolic int           `db:"diastolic"` // mmHg
	Pulse     sql.NullInt64 `db:"pulse"`     // nullable

	Source  string    `db:"source"`
	TakenAt time.Time `db:"taken_at"`

	CreatedAt time.Time `db:"created_at"`
}

// MAP returns the mean arterial pressure, (systolic + 2*diastolic) / 3,
// rounded to one decimal.
func (b *BloodPressureReading) MAP() float64 {
	m := (float64(b.Systolic) + 2*float64(b.Diastolic)) / 3
	return math.Round(m*10) / 10
}

// ToJSON shapes the reading for HTTP responses, including the derived MAP.
func (b *BloodPressureReading) ToJSON() map[string]any {
	out := map[string]any{
		"reading_id": b.ReadingID,
		"systolic":   b.Systolic,
		"diastolic":  b.Diastolic,
		"map":        b.MAP(),
		"source":     b.Source,
		"taken_at":   b.TakenAt,
	}
	if b.Pulse.Valid {
		out["pulse"] = b.Pulse.Int64
	}
	return out
}
