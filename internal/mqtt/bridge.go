package mqtt

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/johnrcarty/smart-home-health-hub/internal/domain"
	"github.com/johnrcarty/smart-home-health-hub/internal/service"
	mqttutil "github.com/johnrcarty/smart-home-health-hub/pkg/mqtt"
)

// inboundReading is the payload a device or Home Assistant automation
// publishes on <base>/vitals/<metric>.
type inboundReading struct {
	Value   float64 `json:"value"`
	Unit    string  `json:"unit,omitempty"`
	TakenAt *int64  `json:"taken_at,omitempty"` // unix seconds
}

// Bridge connects the hub to the MQTT broker: inbound device readings on
// <base>/vitals/<metric> flow into the vitals service, and Home Assistant
// discovery configs are published so the metrics appear as sensors.
type Bridge struct {
	vitalsService service.VitalsService
	logger        *zap.Logger

	mu       sync.Mutex
	client   *mqttutil.Client
	settings *domain.MQTTSettings
}

func NewBridge(vitalsService service.VitalsService, logger *zap.Logger) *Bridge {
	return &Bridge{
		vitalsService: vitalsService,
		logger:        logger,
	}
}

// Start connects with the given settings and subscribes. A disabled settings
// row is not an error; the bridge just stays down until the caregiver
// enables it.
func (b *Bridge) Start(settings *domain.MQTTSettings) error {
	if !settings.Enabled {
		b.logger.Info("MQTT bridge disabled by settings")
		return nil
	}

	clientID := settings.ClientID
	if clientID == "" {
		clientID = "healthhub-bridge"
	}

	client, err := mqttutil.NewClient(&mqttutil.Config{
		Broker:   settings.Broker,
		ClientID: clientID,
		Username: settings.Username,
		Password: settings.Password,
		QoS:      byte(settings.QoS),
	}, b.logger)
	if err != nil {
		return fmt.Errorf("mqtt bridge connect: %w", err)
	}

	topic := settings.BaseTopic + "/vitals/#"
	if err := client.Subscribe(topic, byte(settings.QoS), b.handleVitalsMessage); err != nil {
		client.Disconnect()
		return fmt.Errorf("mqtt bridge subscribe: %w", err)
	}

	b.mu.Lock()
	b.client = client
	b.settings = settings
	b.mu.Unlock()

	b.logger.Info("MQTT bridge started",
		zap.String("broker", settings.Broker),
		zap.String("topic", topic),
	)

	if err := b.PublishDiscovery(); err != nil {
		b.logger.Warn("Publishing discovery configs failed", zap.Error(err))
	}
	return nil
}

// Restart tears the connection down and brings it back up with new
// settings. Called by the settings service after a save.
func (b *Bridge) Restart(settings *domain.MQTTSettings) {
	b.Stop()
	if err := b.Start(settings); err != nil {
		b.logger.Error("MQTT bridge restart failed", zap.Error(err))
	}
}

func (b *Bridge) Stop() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.client != nil {
		b.client.Disconnect()
		b.client = nil
		b.logger.Info("MQTT bridge stopped")
	}
}

// Connected reports whether the bridge currently holds a broker connection.
func (b *Bridge) Connected() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.client != nil && b.client.IsConnected()
}

// PublishAlarm publishes the alarm state for a triggered wiring. The payload
// carries the pin so a Home Assistant automation (or a GPIO bridge on the
// Pi) can drive the output with the right polarity.
func (b *Bridge) PublishAlarm(alarm *service.TriggeredAlarm) error {
	b.mu.Lock()
	client := b.client
	settings := b.settings
	b.mu.Unlock()

	if client == nil {
		return fmt.Errorf("mqtt bridge not connected")
	}

	state := "ON"
	if !alarm.Wiring.ActiveHigh {
		state = "OFF"
	}
	payload, err := json.Marshal(map[string]any{
		"state":        state,
		"pin":          alarm.Wiring.Pin,
		"metric":       alarm.Event.Metric,
		"value":        alarm.Event.Value,
		"message":      alarm.Event.Message,
		"triggered_at": alarm.Event.TriggeredAt.Unix(),
	})
	if err != nil {
		return err
	}
	return client.Publish(alarm.Wiring.Topic, byte(settings.QoS), false, payload)
}

// handleVitalsMessage decodes one inbound reading. The metric is the last
// topic segment: healthhub/vitals/spo2 -> spo2.
func (b *Bridge) handleVitalsMessage(topic string, payload []byte) error {
	segments := strings.Split(topic, "/")
	metric := segments[len(segments)-1]
	if metric == "" || metric == "vitals" {
		return fmt.Errorf("no metric in topic %q", topic)
	}

	var msg inboundReading
	if err := json.Unmarshal(payload, &msg); err != nil {
		return fmt.Errorf("bad reading payload on %s: %w", topic, err)
	}

	req := service.RecordReadingRequest{
		Metric: metric,
		Value:  msg.Value,
		Unit:   msg.Unit,
		Source: domain.SourceDevice,
	}
	if msg.TakenAt != nil {
		at := time.Unix(*msg.TakenAt, 0)
		req.TakenAt = &at
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if _, err := b.vitalsService.RecordReading(ctx, req); err != nil {
		return fmt.Errorf("recording device reading: %w", err)
	}

	b.logger.Debug("Device reading accepted",
		zap.String("metric", metric),
		zap.Float64("value", msg.Value),
	)
	return nil
}
