package repository

import (
	"context"
	"time"

	"github.com/johnrcarty/smart-home-health-hub/internal/domain"
)

// VitalsRepository persists vital readings, blood pressure, nutrition and
// bathroom events. They share a repository because every dashboard panel
// reads them the same way: insert one record, list a window.
type VitalsRepository interface {
	InsertReading(ctx context.Context, v *domain.VitalReading) (string, error)
	ListReadings(ctx context.Context, metric string, from, to time.Time, limit int) ([]*domain.VitalReading, error)

	InsertBloodPressure(ctx context.Context, b *domain.BloodPressureReading) (string, error)
	ListBloodPressure(ctx context.Context, from, to time.Time, limit int) ([]*domain.BloodPressureReading, error)

	InsertMeal(ctx context.Context, m *domain.MealEntry) (string, error)
	ListMealsForDay(ctx context.Context, dayStart time.Time) ([]*domain.MealEntry, error)
	DeleteMeal(ctx context.Context, entryID string) error

	InsertBathroomEvent(ctx context.Context, b *domain.BathroomEvent) (string, error)
	ListBathroomEventsForDay(ctx context.Context, dayStart time.Time) ([]*domain.BathroomEvent, error)
	DeleteBathroomEvent(ctx context.Context, eventID string) error
}
