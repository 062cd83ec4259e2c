package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/johnrcarty/smart-home-health-hub/internal/domain"
	"github.com/johnrcarty/smart-home-health-hub/internal/repository"
	"github.com/johnrcarty/smart-home-health-hub/internal/store"
)

// AlarmService evaluates vital readings against the configured alarm wiring.
type AlarmService interface {
	// Evaluate checks one reading against every enabled wiring for its
	// metric and records an alarm event per breach. Breaches inside the
	// per-wiring cooldown window are suppressed.
	Evaluate(ctx context.Context, reading *domain.VitalReading) ([]*TriggeredAlarm, error)
}

// TriggeredAlarm pairs a recorded alarm event with the wiring that raised
// it, so the dispatcher knows which topic and pin polarity to publish.
type TriggeredAlarm struct {
	Event  *domain.AlarmEvent
	Wiring *domain.AlarmWiring
}

type alarmService struct {
	settingsRepo repository.SettingsRepository
	kv           store.KV
	cooldown     time.Duration
	logger       *zap.Logger

	now func() time.Time
}

func NewAlarmService(settingsRepo repository.SettingsRepository, kv store.KV, cooldown time.Duration, logger *zap.Logger) AlarmService {
	return &alarmService{
		settingsRepo: settingsRepo,
		kv:           kv,
		cooldown:     cooldown,
		logger:       logger,
		now:          time.Now,
	}
}

func (s *alarmService) Evaluate(ctx context.Context, reading *domain.VitalReading) ([]*TriggeredAlarm, error) {
	wirings, err := s.settingsRepo.ListAlarmWiring(ctx, true)
	if err != nil {
		s.logger.Error("Evaluate: listing alarm wiring failed", zap.Error(err))
		return nil, fmt.Errorf("failed to load alarm wiring")
	}

	var triggered []*TriggeredAlarm
	for _, w := range wirings {
		if w.Metric != reading.Metric {
			continue
		}
		if !w.Breached(reading.Value) {
			continue
		}
		if !s.claimCooldown(ctx, w.WiringID) {
			s.logger.Debug("Alarm suppressed by cooldown",
				zap.String("wiring_id", w.WiringID),
				zap.String("metric", reading.Metric),
				zap.Float64("value", reading.Value),
			)
			continue
		}

		event := &domain.AlarmEvent{
			WiringID:    w.WiringID,
			Metric:      reading.Metric,
			Value:       reading.Value,
			Message:     breachMessage(w, reading.Value),
			TriggeredAt: s.now(),
		}
		id, err := s.settingsRepo.InsertAlarmEvent(ctx, event)
		if err != nil {
			s.logger.Error("Evaluate: recording alarm event failed",
				zap.String("wiring_id", w.WiringID),
				zap.Error(err),
			)
			return triggered, fmt.Errorf("failed to record alarm event")
		}
		event.EventID = id

		s.logger.Warn("Alarm triggered",
			zap.String("event_id", id),
			zap.String("wiring", w.Name),
			zap.String("metric", reading.Metric),
			zap.Float64("value", reading.Value),
			zap.Int("pin", w.Pin),
		)
		triggered = append(triggered, &TriggeredAlarm{Event: event, Wiring: w})
	}
	return triggered, nil
}

// claimCooldown reserves the wiring's cooldown slot. Without a cache every
// breach fires; a noisy sensor then hammers the alarm output.
func (s *alarmService) claimCooldown(ctx context.Context, wiringID string) bool {
	if s.kv == nil || s.cooldown <= 0 {
		return true
	}
	ok, err := s.kv.SetNX(ctx, "alarm:cooldown:"+wiringID, "1", s.cooldown)
	if err != nil {
		s.logger.Warn("Cooldown check failed, firing anyway", zap.String("wiring_id", wiringID), zap.Error(err))
		return true
	}
	return ok
}

func breachMessage(w *domain.AlarmWiring, value float64) string {
	if w.MinValue.Valid && value < w.MinValue.Float64 {
		return fmt.Sprintf("%s %.1f below minimum %.1f (%s)", w.Metric, value, w.MinValue.Float64, w.Name)
	}
	if w.MaxValue.Valid && value > w.MaxValue.Float64 {
		return fmt.Sprintf("%s %.1f above maximum %.1f (%s)", w.Metric, value, w.MaxValue.Float64, w.Name)
	}
	return fmt.Sprintf("%s %.1f out of range (%s)", w.Metric, value, w.Name)
}
