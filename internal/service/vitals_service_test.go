package service

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/johnrcarty/smart-home-health-hub/internal/domain"
	"github.com/johnrcarty/smart-home-health-hub/internal/repository"
	"github.com/johnrcarty/smart-home-health-hub/internal/store"
)

func newTestVitalsService(t *testing.T) (VitalsService, *goredis.Client, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })

	svc := NewVitalsService(
		repository.NewMemoryVitalsRepo(),
		store.NewRedisKV(rdb),
		rdb,
		VitalsStreamConfig{
			Stream:          "healthhub:vitals",
			LatestKeyPrefix: "vitals:latest:",
			LatestTTL:       time.Hour,
		},
		zap.NewNop(),
	)
	return svc, rdb, mr
}

func TestRecordReading_StoresCachesAndPublishes(t *testing.T) {
	ctx := context.Background()
	svc, rdb, _ := newTestVitalsService(t)

	id, err := svc.RecordReading(ctx, RecordReadingRequest{
		Metric: domain.MetricSpO2,
		Value:  97,
		Unit:   "%",
		Source: domain.SourceDevice,
	})
	require.NoError(t, err)
	assert.NotEmpty(t, id)

	// Latest-value cache holds the reading.
	raw, err := rdb.Get(ctx, "vitals:latest:spo2").Result()
	require.NoError(t, err)
	var latest LatestReading
	require.NoError(t, json.Unmarshal([]byte(raw), &latest))
	assert.Equal(t, domain.MetricSpO2, latest.Metric)
	assert.Equal(t, 97.0, latest.Value)

	// One entry landed on the vitals stream for the dispatcher.
	n, err := rdb.XLen(ctx, "healthhub:vitals").Result()
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}

func TestRecordReading_RejectsImplausibleValue(t *testing.T) {
	svc, _, _ := newTestVitalsService(t)

	_, err := svc.RecordReading(context.Background(), RecordReadingRequest{
		Metric: domain.MetricSpO2,
		Value:  120, // SpO2 cannot exceed 100
		Unit:   "%",
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "outside plausible range")
}

func TestRecordReading_RejectsUnknownMetric(t *testing.T) {
	svc, _, _ := newTestVitalsService(t)

	_, err := svc.RecordReading(context.Background(), RecordReadingRequest{
		Metric: "blood_sugar",
		Value:  5.5,
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown metric")
}

func TestLatestReadings_SkipsExpiredKeys(t *testing.T) {
	ctx := context.Background()
	svc, _, mr := newTestVitalsService(t)

	_, err := svc.RecordReading(ctx, RecordReadingRequest{
		Metric: domain.MetricHeartRate,
		Value:  72,
		Unit:   "bpm",
	})
	require.NoError(t, err)
	_, err = svc.RecordReading(ctx, RecordReadingRequest{
		Metric: domain.MetricWeight,
		Value:  80,
		Unit:   "kg",
	})
	require.NoError(t, err)

	latest, err := svc.LatestReadings(ctx)
	require.NoError(t, err)
	require.Len(t, latest, 2)
	assert.Equal(t, 72.0, latest[domain.MetricHeartRate].Value)

	// Past the TTL both cached keys are gone; the map just shrinks.
	mr.FastForward(2 * time.Hour)

	latest, err = svc.LatestReadings(ctx)
	require.NoError(t, err)
	assert.Len(t, latest, 0)
}

func TestRecordBloodPressure_Validation(t *testing.T) {
	svc, _, _ := newTestVitalsService(t)
	ctx := context.Background()

	_, err := svc.RecordBloodPressure(ctx, RecordBloodPressureRequest{Systolic: 80, Diastolic: 120})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "diastolic must be below systolic")

	id, err := svc.RecordBloodPressure(ctx, RecordBloodPressureRequest{Systolic: 120, Diastolic: 80, Pulse: 70})
	require.NoError(t, err)
	assert.NotEmpty(t, id)

	readings, err := svc.ListBloodPressure(ctx, time.Now().Add(-time.Hour), time.Now().Add(time.Hour), 0)
	require.NoError(t, err)
	require.Len(t, readings, 1)
	assert.InDelta(t, 93.3, readings[0].MAP(), 0.01)
}

func TestRecordMeal_Validation(t *testing.T) {
	svc, _, _ := newTestVitalsService(t)
	ctx := context.Background()

	_, err := svc.RecordMeal(ctx, RecordMealRequest{MealType: "brunch", Description: "toast"})
	require.Error(t, err)

	_, err = svc.RecordMeal(ctx, RecordMealRequest{MealType: "breakfast", Description: ""})
	require.Error(t, err)

	id, err := svc.RecordMeal(ctx, RecordMealRequest{
		MealType:    "breakfast",
		Description: "oatmeal with berries",
		Calories:    320,
	})
	require.NoError(t, err)
	assert.NotEmpty(t, id)
}

func TestRecordBathroomEvent_Validation(t *testing.T) {
	svc, _, _ := newTestVitalsService(t)
	ctx := context.Background()

	_, err := svc.RecordBathroomEvent(ctx, RecordBathroomEventRequest{EventType: "shower"})
	require.Error(t, err)

	id, err := svc.RecordBathroomEvent(ctx, RecordBathroomEventRequest{EventType: "urine"})
	require.NoError(t, err)
	assert.NotEmpty(t, id)
}
