package service

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/johnrcarty/smart-home-health-hub/internal/domain"
	"github.com/johnrcarty/smart-home-health-hub/internal/repository"
)

// SettingsService manages the MQTT/Home-Assistant settings row and the GPIO
// alarm wiring table.
type SettingsService interface {
	GetMQTTSettings(ctx context.Context) (*domain.MQTTSettings, error)
	SaveMQTTSettings(ctx context.Context, req SaveMQTTSettingsRequest) error

	ListAlarmWiring(ctx context.Context, enabledOnly bool) ([]*domain.AlarmWiring, error)
	GetAlarmWiring(ctx context.Context, wiringID string) (*domain.AlarmWiring, error)
	CreateAlarmWiring(ctx context.Context, req SaveAlarmWiringRequest) (string, error)
	UpdateAlarmWiring(ctx context.Context, wiringID string, req SaveAlarmWiringRequest) error
	DeleteAlarmWiring(ctx context.Context, wiringID string) error

	ListRecentAlarmEvents(ctx context.Context, limit int) ([]*domain.AlarmEvent, error)
}

type settingsService struct {
	settingsRepo repository.SettingsRepository
	logger       *zap.Logger

	// onMQTTChange fires after a successful settings save so the bridge can
	// reconnect and republish discovery. May be nil.
	onMQTTChange func(*domain.MQTTSettings)
}

func NewSettingsService(settingsRepo repository.SettingsRepository, logger *zap.Logger, onMQTTChange func(*domain.MQTTSettings)) SettingsService {
	return &settingsService{
		settingsRepo: settingsRepo,
		logger:       logger,
		onMQTTChange: onMQTTChange,
	}
}

// ============================================
// MQTT settings
// ============================================

// GetMQTTSettings returns the saved settings, or defaults when the caregiver
// has never saved any.
func (s *settingsService) GetMQTTSettings(ctx context.Context) (*domain.MQTTSettings, error) {
	settings, err := s.settingsRepo.GetMQTTSettings(ctx)
	if err != nil {
		if err == repository.ErrNotFound {
			return &domain.MQTTSettings{
				BaseTopic:       "healthhub",
				DiscoveryPrefix: "homeassistant",
				NodeID:          "healthhub",
				QoS:             1,
			}, nil
		}
		s.logger.Error("GetMQTTSettings failed", zap.Error(err))
		return nil, fmt.Errorf("failed to load mqtt settings")
	}
	return settings, nil
}

type SaveMQTTSettingsRequest struct {
	Enabled         bool
	Broker          string
	ClientID        string
	Username        string
	Password        string // empty keeps the stored password
	BaseTopic       string
	DiscoveryPrefix string
	NodeID          string
	QoS             int
}

func (s *settingsService) SaveMQTTSettings(ctx context.Context, req SaveMQTTSettingsRequest) error {
	if req.Enabled && strings.TrimSpace(req.Broker) == "" {
		return fmt.Errorf("broker is required when mqtt is enabled")
	}
	if req.QoS < 0 || req.QoS > 2 {
		return fmt.Errorf("qos must be 0, 1 or 2")
	}

	settings := &domain.MQTTSettings{
		Enabled:         req.Enabled,
		Broker:          strings.TrimSpace(req.Broker),
		ClientID:        strings.TrimSpace(req.ClientID),
		Username:        req.Username,
		Password:        req.Password,
		BaseTopic:       strings.TrimSpace(req.BaseTopic),
		DiscoveryPrefix: strings.TrimSpace(req.DiscoveryPrefix),
		NodeID:          strings.TrimSpace(req.NodeID),
		QoS:             req.QoS,
	}
	if settings.BaseTopic == "" {
		settings.BaseTopic = "healthhub"
	}
	if settings.DiscoveryPrefix == "" {
		settings.DiscoveryPrefix = "homeassistant"
	}
	if settings.NodeID == "" {
		settings.NodeID = "healthhub"
	}

	// Empty password on the form means "keep what's stored".
	if settings.Password == "" {
		if existing, err := s.settingsRepo.GetMQTTSettings(ctx); err == nil {
			settings.Password = existing.Password
		}
	}

	if err := s.settingsRepo.SaveMQTTSettings(ctx, settings); err != nil {
		s.logger.Error("SaveMQTTSettings failed", zap.Error(err))
		return fmt.Errorf("failed to save mqtt settings")
	}

	s.logger.Info("MQTT settings saved",
		zap.Bool("enabled", settings.Enabled),
		zap.String("broker", settings.Broker),
		zap.String("node_id", settings.NodeID),
	)

	if s.onMQTTChange != nil {
		s.onMQTTChange(settings)
	}
	return nil
}

// ============================================
// Alarm wiring
// ============================================

func (s *settingsService) ListAlarmWiring(ctx context.Context, enabledOnly bool) ([]*domain.AlarmWiring, error) {
	return s.settingsRepo.ListAlarmWiring(ctx, enabledOnly)
}

func (s *settingsService) GetAlarmWiring(ctx context.Context, wiringID string) (*domain.AlarmWiring, error) {
	if wiringID == "" {
		return nil, fmt.Errorf("wiring_id is required")
	}
	return s.settingsRepo.GetAlarmWiring(ctx, wiringID)
}

type SaveAlarmWiringRequest struct {
	Name       string
	Pin        int
	Metric     string
	MinValue   *float64
	MaxValue   *float64
	ActiveHigh bool
	Topic      string
	Enabled    bool
}

func (req *SaveAlarmWiringRequest) validate() (*domain.AlarmWiring, error) {
	if strings.TrimSpace(req.Name) == "" {
		return nil, fmt.Errorf("name is required")
	}
	if req.Pin < 0 || req.Pin > 27 {
		return nil, fmt.Errorf("pin must be a BCM number in [0, 27]")
	}
	if _, ok := metricBounds[req.Metric]; !ok {
		return nil, fmt.Errorf("unknown metric %q", req.Metric)
	}
	if req.MinValue == nil && req.MaxValue == nil {
		return nil, fmt.Errorf("at least one of min_value and max_value is required")
	}
	if req.MinValue != nil && req.MaxValue != nil && *req.MinValue >= *req.MaxValue {
		return nil, fmt.Errorf("min_value must be below max_value")
	}
	if strings.TrimSpace(req.Topic) == "" {
		return nil, fmt.Errorf("topic is required")
	}

	w := &domain.AlarmWiring{
		Name:       strings.TrimSpace(req.Name),
		Pin:        req.Pin,
		Metric:     req.Metric,
		ActiveHigh: req.ActiveHigh,
		Topic:      strings.TrimSpace(req.Topic),
		Enabled:    req.Enabled,
	}
	if req.MinValue != nil {
		w.MinValue = sql.NullFloat64{Float64: *req.MinValue, Valid: true}
	}
	if req.MaxValue != nil {
		w.MaxValue = sql.NullFloat64{Float64: *req.MaxValue, Valid: true}
	}
	return w, nil
}

func (s *settingsService) CreateAlarmWiring(ctx context.Context, req SaveAlarmWiringRequest) (string, error) {
	w, err := req.validate()
	if err != nil {
		return "", err
	}
	id, err := s.settingsRepo.CreateAlarmWiring(ctx, w)
	if err != nil {
		s.logger.Error("CreateAlarmWiring failed", zap.String("name", req.Name), zap.Error(err))
		return "", fmt.Errorf("failed to create alarm wiring")
	}
	s.logger.Info("Alarm wiring created",
		zap.String("wiring_id", id),
		zap.String("metric", req.Metric),
		zap.Int("pin", req.Pin),
	)
	return id, nil
}

func (s *settingsService) UpdateAlarmWiring(ctx context.Context, wiringID string, req SaveAlarmWiringRequest) error {
	if wiringID == "" {
		return fmt.Errorf("wiring_id is required")
	}
	w, err := req.validate()
	if err != nil {
		return err
	}
	if err := s.settingsRepo.UpdateAlarmWiring(ctx, wiringID, w); err != nil {
		if err == repository.ErrNotFound {
			return err
		}
		s.logger.Error("UpdateAlarmWiring failed", zap.String("wiring_id", wiringID), zap.Error(err))
		return fmt.Errorf("failed to update alarm wiring")
	}
	return nil
}

func (s *settingsService) DeleteAlarmWiring(ctx context.Context, wiringID string) error {
	if wiringID == "" {
		return fmt.Errorf("wiring_id is required")
	}
	if err := s.settingsRepo.DeleteAlarmWiring(ctx, wiringID); err != nil {
		if err == repository.ErrNotFound {
			return err
		}
		s.logger.Error("DeleteAlarmWiring failed", zap.String("wiring_id", wiringID), zap.Error(err))
		return fmt.Errorf("failed to delete alarm wiring")
	}
	return nil
}

func (s *settingsService) ListRecentAlarmEvents(ctx context.Context, limit int) ([]*domain.AlarmEvent, error) {
	return s.settingsRepo.ListRecentAlarmEvents(ctx, limit)
}
