package domain

import (
	"database/sql"
	"time"
)

// MQTTSettings is the single caregiver-editable MQTT/Home-Assistant row
// (mqtt_settings table). The password is write-only over HTTP.
type MQTTSettings struct {
	Enabled         bool   `db:"enabled"`
	Broker          string `db:"broker"`
	ClientID        string `db:"client_id"`
	Username        string `db:"username"`
	Password        string `db:"password"`
	BaseTopic       string `db:"base_topic"`
	DiscoveryPrefix string `db:"discovery_prefix"`
	NodeID          string `db:"node_id"`
	QoS             int    `db:"qos"`

	UpdatedAt time.Time `db:"updated_at"`
}

// ToJSON shapes settings for HTTP responses. The password is masked; the
// form posts a new one or leaves the field empty to keep the old value.
func (s *MQTTSettings) ToJSON() map[string]any {
	out := map[string]any{
		"enabled":          s.Enabled,
		"broker":           s.Broker,
		"client_id":        s.ClientID,
		"username":         s.Username,
		"base_topic":       s.BaseTopic,
		"discovery_prefix": s.DiscoveryPrefix,
		"node_id":          s.NodeID,
		"qos":              s.QoS,
		"updated_at":       s.UpdatedAt,
	}
	if s.Password != "" {
		out["password_set"] = true
	}
	return out
}

// AlarmWiring maps a vitals metric onto a GPIO-driven alarm output
// (alarm_wiring table). When a reading for Metric falls outside
// [MinValue, MaxValue] the dispatcher publishes to Topic; a hardware
// bridge (e.g. Home Assistant) drives the pin.
type AlarmWiring struct {
	WiringID string `db:"wiring_id"`

	Name   string `db:"name"` // NOT NULL
	Pin    int    `db:"pin"`  // BCM pin number
	Metric string `db:"metric"`

	MinValue sql.NullFloat64 `db:"min_value"` // nullable: no lower bound
	MaxValue sql.NullFloat64 `db:"max_value"` // nullable: no upper bound

	ActiveHigh bool   `db:"active_high"`
	Topic      string `db:"topic"` // MQTT topic to publish alarm state on
	Enabled    bool   `db:"enabled"`

	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

// Breached reports whether value falls outside the configured bounds.
func (w *AlarmWiring) Breached(value float64) bool {
	if w.MinValue.Valid && value < w.MinValue.Float64 {
		return true
	}
	if w.MaxValue.Valid && value > w.MaxValue.Float64 {
		return true
	}
	return false
}

// ToJSON shapes the wiring for HTTP responses.
func (w *AlarmWiring) ToJSON() map[string]any {
	out := map[string]any{
		"wiring_id":   w.WiringID,
		"name":        w.Name,
		"pin":         w.Pin,
		"metric":      w.Metric,
		"active_high": w.ActiveHigh,
		"topic":       w.Topic,
		"enabled":     w.Enabled,
		"created_at":  w.CreatedAt,
		"updated_at":  w.UpdatedAt,
	}
	if w.MinValue.Valid {
		out["min_value"] = w.MinValue.Float64
	}
	if w.MaxValue.Valid {
		out["max_value"] = w.MaxValue.Float64
	}
	return out
}

// AlarmEvent is one raised alarm (alarm_events table).
type AlarmEvent struct {
	EventID  string `db:"event_id"`
	WiringID string `db:"wiring_id"`

	Metric  string  `db:"metric"`
	Value   float64 `db:"value"`
	Message string  `db:"message"`

	TriggeredAt time.Time `db:"triggered_at"`
}

// ToJSON shapes the event for HTTP responses.
func (e *AlarmEvent) ToJSON() map[string]any {
	return map[string]any{
		"event_id":     e.EventID,
		"wiring_id":    e.WiringID,
		"metric":       e.Metric,
		"value":        e.Value,
		"message":      e.Message,
		"triggered_at": e.TriggeredAt,
	}
}
