package mqtt

import (
	"encoding/json"
	"fmt"

	"go.uber.org/zap"

	"github.com/johnrcarty/smart-home-health-hub/internal/domain"
)

// sensorMeta describes how one metric is announced to Home Assistant.
type sensorMeta struct {
	Name        string
	DeviceClass string
	Unit        string
}

var discoverySensors = map[string]sensorMeta{
	domain.MetricSpO2:        {Name: "SpO2", DeviceClass: "", Unit: "%"},
	domain.MetricHeartRate:   {Name: "Heart Rate", DeviceClass: "", Unit: "bpm"},
	domain.MetricTemperature: {Name: "Body Temperature", DeviceClass: "temperature", Unit: "°C"},
	domain.MetricWeight:      {Name: "Weight", DeviceClass: "weight", Unit: "kg"},
}

// discoveryConfig is the Home Assistant MQTT discovery payload published
// retained under <prefix>/sensor/<node>/<metric>/config.
type discoveryConfig struct {
	Name              string          `json:"name"`
	UniqueID          string          `json:"unique_id"`
	StateTopic        string          `json:"state_topic"`
	ValueTemplate     string          `json:"value_template"`
	UnitOfMeasurement string          `json:"unit_of_measurement,omitempty"`
	DeviceClass       string          `json:"device_class,omitempty"`
	Device            discoveryDevice `json:"device"`
}

type discoveryDevice struct {
	Identifiers  []string `json:"identifiers"`
	Name         string   `json:"name"`
	Manufacturer string   `json:"manufacturer"`
	Model        string   `json:"model"`
}

// PublishDiscovery announces every vitals metric as a Home Assistant sensor.
// Configs are retained so HA picks them up after its own restarts.
func (b *Bridge) PublishDiscovery() error {
	b.mu.Lock()
	client := b.client
	settings := b.settings
	b.mu.Unlock()

	if client == nil || settings == nil {
		return fmt.Errorf("mqtt bridge not connected")
	}

	device := discoveryDevice{
		Identifiers:  []string{settings.NodeID},
		Name:         "Health Hub",
		Manufacturer: "healthhub",
		Model:        "home-monitor",
	}

	for metric, meta := range discoverySensors {
		cfg := discoveryConfig{
			Name:              meta.Name,
			UniqueID:          settings.NodeID + "_" + metric,
			StateTopic:        settings.BaseTopic + "/vitals/" + metric,
			ValueTemplate:     "{{ value_json.value }}",
			UnitOfMeasurement: meta.Unit,
			DeviceClass:       meta.DeviceClass,
			Device:            device,
		}
		payload, err := json.Marshal(cfg)
		if err != nil {
			return err
		}

		topic := fmt.Sprintf("%s/sensor/%s/%s/config", settings.DiscoveryPrefix, settings.NodeID, metric)
		if err := client.Publish(topic, byte(settings.QoS), true, payload); err != nil {
			return fmt.Errorf("publishing discovery config for %s: %w", metric, err)
		}
		b.logger.Debug("Discovery config published", zap.String("topic", topic))
	}

	b.logger.Info("Home Assistant discovery published",
		zap.String("prefix", settings.DiscoveryPrefix),
		zap.String("node_id", settings.NodeID),
		zap.Int("sensors", len(discoverySensors)),
	)
	return nil
}
