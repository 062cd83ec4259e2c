package httpapi

import (
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/johnrcarty/smart-home-health-hub/internal/repository"
	"github.com/johnrcarty/smart-home-health-hub/internal/service"
)

type SettingsHandler struct {
	settingsService service.SettingsService
	logger          *zap.Logger
}

func NewSettingsHandler(settingsService service.SettingsService, logger *zap.Logger) *SettingsHandler {
	return &SettingsHandler{settingsService: settingsService, logger: logger}
}

// ============================================
// MQTT settings
// ============================================

type mqttSettingsBody struct {
	Enabled         bool   `json:"enabled"`
	Broker          string `json:"broker"`
	ClientID        string `json:"client_id"`
	Username        string `json:"username"`
	Password        string `json:"password"` // empty keeps the stored one
	BaseTopic       string `json:"base_topic"`
	DiscoveryPrefix string `json:"discovery_prefix"`
	NodeID          string `json:"node_id"`
	QoS             int    `json:"qos"`
}

// MQTTSettings handles GET and POST on /api/mqtt/settings. The stored
// password never leaves the server; GET responses only say whether one is
// set.
func (h *SettingsHandler) MQTTSettings(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		settings, err := h.settingsService.GetMQTTSettings(r.Context())
		if err != nil {
			writeJSON(w, http.StatusOK, Fail(err.Error()))
			return
		}
		writeJSON(w, http.StatusOK, Ok(settings.ToJSON()))

	case http.MethodPost:
		var body mqttSettingsBody
		if err := readBodyJSON(r, &body); err != nil {
			writeJSON(w, http.StatusOK, Fail("invalid JSON body"))
			return
		}
		err := h.settingsService.SaveMQTTSettings(r.Context(), service.SaveMQTTSettingsRequest{
			Enabled:         body.Enabled,
			Broker:          body.Broker,
			ClientID:        body.ClientID,
			Username:        body.Username,
			Password:        body.Password,
			BaseTopic:       body.BaseTopic,
			DiscoveryPrefix: body.DiscoveryPrefix,
			NodeID:          body.NodeID,
			QoS:             body.QoS,
		})
		if err != nil {
			writeJSON(w, http.StatusOK, Fail(err.Error()))
			return
		}
		writeJSON(w, http.StatusOK, Ok("saved"))

	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

// ============================================
// Alarm wiring
// ============================================

type wiringBody struct {
	Name       string   `json:"name"`
	Pin        int      `json:"pin"`
	Metric     string   `json:"metric"`
	MinValue   *float64 `json:"min_value"`
	MaxValue   *float64 `json:"max_value"`
	ActiveHigh bool     `json:"active_high"`
	Topic      string   `json:"topic"`
	Enabled    bool     `json:"enabled"`
}

func (b *wiringBody) toRequest() service.SaveAlarmWiringRequest {
	return service.SaveAlarmWiringRequest{
		Name:       b.Name,
		Pin:        b.Pin,
		Metric:     b.Metric,
		MinValue:   b.MinValue,
		MaxValue:   b.MaxValue,
		ActiveHigh: b.ActiveHigh,
		Topic:      b.Topic,
		Enabled:    b.Enabled,
	}
}

// Wiring handles GET (?enabled=true) and POST on /api/alarms/wiring.
func (h *SettingsHandler) Wiring(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		items, err := h.settingsService.ListAlarmWiring(r.Context(), r.URL.Query().Get("enabled") == "true")
		if err != nil {
			writeJSON(w, http.StatusOK, Fail(err.Error()))
			return
		}
		writeJSON(w, http.StatusOK, Ok(map[string]any{
			"items": toJSONList(items),
			"total": len(items),
		}))

	case http.MethodPost:
		var body wiringBody
		if err := readBodyJSON(r, &body); err != nil {
			writeJSON(w, http.StatusOK, Fail("invalid JSON body"))
			return
		}
		id, err := h.settingsService.CreateAlarmWiring(r.Context(), body.toRequest())
		if err != nil {
			writeJSON(w, http.StatusOK, Fail(err.Error()))
			return
		}
		writeJSON(w, http.StatusOK, Ok(map[string]any{"wiring_id": id}))

	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

// WiringItem handles GET/PUT/DELETE on /api/alarms/wiring/{id}.
func (h *SettingsHandler) WiringItem(w http.ResponseWriter, r *http.Request) {
	wiringID := strings.Trim(strings.TrimPrefix(r.URL.Path, "/api/alarms/wiring/"), "/")
	if wiringID == "" || strings.Contains(wiringID, "/") {
		w.WriteHeader(http.StatusNotFound)
		return
	}

	switch r.Method {
	case http.MethodGet:
		wiring, err := h.settingsService.GetAlarmWiring(r.Context(), wiringID)
		if err != nil {
			if err == repository.ErrNotFound {
				writeJSON(w, http.StatusNotFound, Fail("alarm wiring not found"))
				return
			}
			writeJSON(w, http.StatusOK, Fail(err.Error()))
			return
		}
		writeJSON(w, http.StatusOK, Ok(wiring.ToJSON()))

	case http.MethodPut:
		var body wiringBody
		if err := readBodyJSON(r, &body); err != nil {
			writeJSON(w, http.StatusOK, Fail("invalid JSON body"))
			return
		}
		if err := h.settingsService.UpdateAlarmWiring(r.Context(), wiringID, body.toRequest()); err != nil {
			if err == repository.ErrNotFound {
				writeJSON(w, http.StatusNotFound, Fail("alarm wiring not found"))
				return
			}
			writeJSON(w, http.StatusOK, Fail(err.Error()))
			return
		}
		writeJSON(w, http.StatusOK, Ok("updated"))

	case http.MethodDelete:
		if err := h.settingsService.DeleteAlarmWiring(r.Context(), wiringID); err != nil {
			if err == repository.ErrNotFound {
				writeJSON(w, http.StatusNotFound, Fail("alarm wiring not found"))
				return
			}
			writeJSON(w, http.StatusOK, Fail(err.Error()))
			return
		}
		writeJSON(w, http.StatusOK, Ok("deleted"))

	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

// RecentAlarms handles GET /api/alarms/recent?limit=50.
func (h *SettingsHandler) RecentAlarms(w http.ResponseWriter, r *http.Request) {
	items, err := h.settingsService.ListRecentAlarmEvents(r.Context(), parseInt(r.URL.Query().Get("limit"), 0))
	if err != nil {
		writeJSON(w, http.StatusOK, Fail(err.Error()))
		return
	}
	writeJSON(w, http.StatusOK, Ok(map[string]any{
		"items": toJSONList(items),
		"total": len(items),
	}))
}
