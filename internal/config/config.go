package config

import (
	"os"
	"strconv"

	"github.com/johnrcarty/smart-home-health-hub/pkg/database"
)

// Config holds all healthhub settings, loaded from environment variables.
type Config struct {
	HTTP struct {
		Addr string
	}
	DBEnabled bool
	Database  database.Config
	Redis     struct {
		Addr     string
		Password string
		DB       int
	}
	Log struct {
		Level  string
		Format string
	}
	MQTT   MQTTConfig
	Vitals VitalsConfig
	Alarm  AlarmConfig
}

// MQTTConfig configures the Home Assistant bridge. These are only the
// process-level connection defaults; the caregiver-editable settings live
// in the settings repository and override these at runtime.
type MQTTConfig struct {
	Enabled         bool
	Broker          string
	ClientID        string
	Username        string
	Password        string
	BaseTopic       string // device topic root, e.g. "healthhub"
	DiscoveryPrefix string // Home Assistant discovery prefix
	NodeID          string // node id used in discovery topics
	QoS             byte
}

// VitalsConfig configures the latest-readings cache and the vitals stream.
type VitalsConfig struct {
	Stream          string
	LatestKeyPrefix string
	LatestTTL       int // seconds, 0 = no expiry
}

// AlarmConfig configures the GPIO alarm dispatcher loop.
type AlarmConfig struct {
	Enabled       bool
	ConsumerGroup string
	Consumer      string
	BatchSize     int
	CooldownSecs  int
}

// Load reads configuration from the environment with local-dev defaults.
func Load() *Config {
	cfg := &Config{}
	cfg.HTTP.Addr = getEnv("HTTP_ADDR", ":8080")

	// Default true: if the DB is unavailable the hub falls back to memory
	// repositories so the dashboard still renders with plain `go run`.
	cfg.DBEnabled = getEnv("DB_ENABLED", "true") == "true"
	cfg.Database.Host = getEnv("DB_HOST", "localhost")
	cfg.Database.Port = parseInt(getEnv("DB_PORT", "5432"), 5432)
	cfg.Database.User = getEnv("DB_USER", "postgres")
	cfg.Database.Password = getEnv("DB_PASSWORD", "postgres")
	cfg.Database.Database = getEnv("DB_NAME", "healthhub")
	cfg.Database.SSLMode = getEnv("DB_SSLMODE", "disable")
	cfg.Database.MaxConns = parseInt(getEnv("DB_MAX_CONNS", "10"), 10)
	cfg.Database.MaxIdle = parseInt(getEnv("DB_MAX_IDLE", "5"), 5)

	cfg.Redis.Addr = getEnv("REDIS_ADDR", "localhost:6379")
	cfg.Redis.Password = getEnv("REDIS_PASSWORD", "")
	cfg.Redis.DB = parseInt(getEnv("REDIS_DB", "0"), 0)

	cfg.Log.Level = getEnv("LOG_LEVEL", "info")
	cfg.Log.Format = getEnv("LOG_FORMAT", "json")

	cfg.MQTT.Enabled = getEnv("MQTT_ENABLED", "false") == "true"
	cfg.MQTT.Broker = getEnv("MQTT_BROKER", "tcp://localhost:1883")
	cfg.MQTT.ClientID = getEnv("MQTT_CLIENT_ID", "healthhub")
	cfg.MQTT.Username = getEnv("MQTT_USERNAME", "")
	cfg.MQTT.Password = getEnv("MQTT_PASSWORD", "")
	cfg.MQTT.BaseTopic = getEnv("MQTT_BASE_TOPIC", "healthhub")
	cfg.MQTT.DiscoveryPrefix = getEnv("MQTT_DISCOVERY_PREFIX", "homeassistant")
	cfg.MQTT.NodeID = getEnv("MQTT_NODE_ID", "healthhub")
	cfg.MQTT.QoS = byte(parseInt(getEnv("MQTT_QOS", "1"), 1))

	cfg.Vitals.Stream = getEnv("VITALS_STREAM", "healthhub:vitals")
	cfg.Vitals.LatestKeyPrefix = getEnv("VITALS_LATEST_KEY_PREFIX", "vitals:latest:")
	cfg.Vitals.LatestTTL = parseInt(getEnv("VITALS_LATEST_TTL", "86400"), 86400)

	cfg.Alarm.Enabled = getEnv("ALARM_ENABLED", "true") == "true"
	cfg.Alarm.ConsumerGroup = getEnv("ALARM_CONSUMER_GROUP", "healthhub-alarm")
	cfg.Alarm.Consumer = getEnv("ALARM_CONSUMER", "alarm-1")
	cfg.Alarm.BatchSize = parseInt(getEnv("ALARM_BATCH_SIZE", "10"), 10)
	cfg.Alarm.CooldownSecs = parseInt(getEnv("ALARM_COOLDOWN_SECS", "300"), 300)

	return cfg
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func parseInt(s string, def int) int {
	i, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return i
}
