package repository

import (
	"context"

	"github.com/johnrcarty/smart-home-health-hub/internal/domain"
)

// SettingsRepository persists the MQTT settings row, alarm wiring and
// raised alarm events.
type SettingsRepository interface {
	// GetMQTTSettings returns ErrNotFound until the caregiver saves once.
	GetMQTTSettings(ctx context.Context) (*domain.MQTTSettings, error)
	SaveMQTTSettings(ctx context.Context, s *domain.MQTTSettings) error

	ListAlarmWiring(ctx context.Context, enabledOnly bool) ([]*domain.AlarmWiring, error)
	GetAlarmWiring(ctx context.Context, wiringID string) (*domain.AlarmWiring, error)
	CreateAlarmWiring(ctx context.Context, w *domain.AlarmWiring) (string, error)
	UpdateAlarmWiring(ctx context.Context, wiringID string, w *domain.AlarmWiring) error
	DeleteAlarmWiring(ctx context.Context, wiringID string) error

	InsertAlarmEvent(ctx context.Context, e *domain.AlarmEvent) (string, error)
	ListRecentAlarmEvents(ctx context.Context, limit int) ([]*domain.AlarmEvent, error)
}
