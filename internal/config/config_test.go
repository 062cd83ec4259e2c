package config

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLoad_DefaultValues(t *testing.T) {
	os.Clearenv()

	cfg := Load()
	assert.NotNil(t, cfg)

	assert.Equal(t, ":8080", cfg.HTTP.Addr)
	assert.True(t, cfg.DBEnabled)
	assert.Equal(t, "localhost", cfg.Database.Host)
	assert.Equal(t, 5432, cfg.Database.Port)
	assert.Equal(t, "postgres", cfg.Database.User)
	assert.Equal(t, "healthhub", cfg.Database.Database)
	assert.Equal(t, "disable", cfg.Database.SSLMode)

	assert.Equal(t, "localhost:6379", cfg.Redis.Addr)
	assert.Equal(t, "", cfg.Redis.Password)
	assert.Equal(t, 0, cfg.Redis.DB)

	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)

	assert.False(t, cfg.MQTT.Enabled)
	assert.Equal(t, "tcp://localhost:1883", cfg.MQTT.Broker)
	assert.Equal(t, "homeassistant", cfg.MQTT.DiscoveryPrefix)
	assert.Equal(t, "healthhub", cfg.MQTT.NodeID)
	assert.Equal(t, byte(1), cfg.MQTT.QoS)

	assert.Equal(t, "healthhub:vitals", cfg.Vitals.Stream)
	assert.Equal(t, "vitals:latest:", cfg.Vitals.LatestKeyPrefix)
	assert.Equal(t, 86400, cfg.Vitals.LatestTTL)

	assert.True(t, cfg.Alarm.Enabled)
	assert.Equal(t, "healthhub-alarm", cfg.Alarm.ConsumerGroup)
	assert.Equal(t, 300, cfg.Alarm.CooldownSecs)
}

func TestLoad_EnvironmentVariables(t *testing.T) {
	os.Clearenv()
	os.Setenv("HTTP_ADDR", ":9090")
	os.Setenv("DB_ENABLED", "false")
	os.Setenv("DB_HOST", "db.local")
	os.Setenv("DB_PORT", "5433")
	os.Setenv("REDIS_ADDR", "redis.local:6380")
	os.Setenv("LOG_LEVEL", "debug")
	os.Setenv("MQTT_ENABLED", "true")
	os.Setenv("MQTT_BROKER", "tcp://ha.local:1883")
	os.Setenv("ALARM_COOLDOWN_SECS", "60")
	defer os.Clearenv()

	cfg := Load()

	assert.Equal(t, ":9090", cfg.HTTP.Addr)
	assert.False(t, cfg.DBEnabled)
	assert.Equal(t, "db.local", cfg.Database.Host)
	assert.Equal(t, 5433, cfg.Database.Port)
	assert.Equal(t, "redis.local:6380", cfg.Redis.Addr)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.True(t, cfg.MQTT.Enabled)
	assert.Equal(t, "tcp://ha.local:1883", cfg.MQTT.Broker)
	assert.Equal(t, 60, cfg.Alarm.CooldownSecs)
}

func TestLoad_InvalidIntFallsBack(t *testing.T) {
	os.Clearenv()
	os.Setenv("DB_PORT", "not-a-number")
	defer os.Clearenv()

	cfg := Load()
	assert.Equal(t, 5432, cfg.Database.Port)
}
