package service

import (
	"context"
	"database/sql"
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

func newTestAlarmService(t *testing.T, cooldown time.Duration) (AlarmService, *repository.MemorySettingsRepo, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })

	settingsRepo := repository.NewMemorySettingsRepo()
	svc := NewAlarmService(settingsRepo, store.NewRedisKV(rdb), cooldown, zap.NewNop())
	return svc, settingsRepo, mr
}

func lowSpO2Wiring(t *testing.T, repo *repository.MemorySettingsRepo) string {
	t.Helper()
	id, err := repo.CreateAlarmWiring(context.Background(), &domain.AlarmWiring{
		Name:       "Low SpO2",
		Pin:        17,
		Metric:     domain.MetricSpO2,
		MinValue:   sql.NullFloat64{Float64: 90, Valid: true},
		ActiveHigh: true,
		Topic:      "healthhub/alarm/spo2",
		Enabled:    true,
	})
	require.NoError(t, err)
	return id
}

func spo2Reading(value float64) *domain.VitalReading {
	return &domain.VitalReading{
		Metric:  domain.MetricSpO2,
		Value:   value,
		Unit:    "%",
		Source:  domain.SourceDevice,
		TakenAt: time.Now(),
	}
}

func TestEvaluate_TriggersOnBreach(t *testing.T) {
	ctx := context.Background()
	svc, settingsRepo, _ := newTestAlarmService(t, 5*time.Minute)
	wiringID := lowSpO2Wiring(t, settingsRepo)

	triggered, err := svc.Evaluate(ctx, spo2Reading(85))
	require.NoError(t, err)
	require.Len(t, triggered, 1)

	assert.Equal(t, wiringID, triggered[0].Event.WiringID)
	assert.Equal(t, "healthhub/alarm/spo2", triggered[0].Wiring.Topic)
	assert.Contains(t, triggered[0].Event.Message, "below minimum")

	// The event is persisted for the recent-alarms list.
	events, err := settingsRepo.ListRecentAlarmEvents(ctx, 10)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, 85.0, events[0].Value)
}

func TestEvaluate_NoBreachNoAlarm(t *testing.T) {
	ctx := context.Background()
	svc, settingsRepo, _ := newTestAlarmService(t, 5*time.Minute)
	lowSpO2Wiring(t, settingsRepo)

	triggered, err := svc.Evaluate(ctx, spo2Reading(97))
	require.NoError(t, err)
	assert.Empty(t, triggered)
}

func TestEvaluate_IgnoresOtherMetrics(t *testing.T) {
	ctx := context.Background()
	svc, settingsRepo, _ := newTestAlarmService(t, 5*time.Minute)
	lowSpO2Wiring(t, settingsRepo)

	triggered, err := svc.Evaluate(ctx, &domain.VitalReading{
		Metric: domain.MetricHeartRate, Value: 30, TakenAt: time.Now(),
	})
	require.NoError(t, err)
	assert.Empty(t, triggered)
}

func TestEvaluate_IgnoresDisabledWiring(t *testing.T) {
	ctx := context.Background()
	svc, settingsRepo, _ := newTestAlarmService(t, 5*time.Minute)

	_, err := settingsRepo.CreateAlarmWiring(ctx, &domain.AlarmWiring{
		Name:     "Disabled",
		Pin:      4,
		Metric:   domain.MetricSpO2,
		MinValue: sql.NullFloat64{Float64: 90, Valid: true},
		Topic:    "healthhub/alarm/spo2",
		Enabled:  false,
	})
	require.NoError(t, err)

	triggered, err := svc.Evaluate(ctx, spo2Reading(85))
	require.NoError(t, err)
	assert.Empty(t, triggered)
}

func TestEvaluate_CooldownSuppressesRepeats(t *testing.T) {
	ctx := context.Background()
	svc, settingsRepo, mr := newTestAlarmService(t, 5*time.Minute)
	lowSpO2Wiring(t, settingsRepo)

	triggered, err := svc.Evaluate(ctx, spo2Reading(85))
	require.NoError(t, err)
	require.Len(t, triggered, 1)

	// Same breach a moment later stays quiet.
	triggered, err = svc.Evaluate(ctx, spo2Reading(84))
	require.NoError(t, err)
	assert.Empty(t, triggered)

	// After the cooldown lapses the alarm fires again.
	mr.FastForward(6 * time.Minute)
	triggered, err = svc.Evaluate(ctx, spo2Reading(84))
	require.NoError(t, err)
	assert.Len(t, triggered, 1)
}

func TestEvaluate_MaxBound(t *testing.T) {
	ctx := context.Background()
	svc, settingsRepo, _ := newTestAlarmService(t, 0)

	_, err := settingsRepo.CreateAlarmWiring(ctx, &domain.AlarmWiring{
		Name:     "High heart rate",
		Pin:      27,
		Metric:   domain.MetricHeartRate,
		MaxValue: sql.NullFloat64{Float64: 120, Valid: true},
		Topic:    "healthhub/alarm/hr",
		Enabled:  true,
	})
	require.NoError(t, err)

	triggered, err := svc.Evaluate(ctx, &domain.VitalReading{
		Metric: domain.MetricHeartRate, Value: 140, TakenAt: time.Now(),
	})
	require.NoError(t, err)
	require.Len(t, triggered, 1)
	assert.Contains(t, triggered[0].Event.Message, "above maximum")
}
