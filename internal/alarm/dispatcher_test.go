package alarm

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	redisutil "github.com/johnrcarty/smart-home-health-hub/pkg/redis"
)

func TestDecodeReading_Success(t *testing.T) {
	msg := redisutil.StreamMessage{
		ID: "1-0",
		Values: map[string]interface{}{
			"data": `{"reading_id":"r1","metric":"spo2","value":85,"unit":"%","source":"device","taken_at":"2026-03-10T08:00:00Z"}`,
		},
	}

	reading, err := decodeReading(msg)
	require.NoError(t, err)

	assert.Equal(t, "r1", reading.ReadingID)
	assert.Equal(t, "spo2", reading.Metric)
	assert.Equal(t, 85.0, reading.Value)
	assert.Equal(t, "device", reading.Source)
	assert.Equal(t, time.Date(2026, 3, 10, 8, 0, 0, 0, time.UTC), reading.TakenAt.UTC())
}

func TestDecodeReading_MissingData(t *testing.T) {
	_, err := decodeReading(redisutil.StreamMessage{ID: "1-0", Values: map[string]interface{}{}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no data field")
}

func TestDecodeReading_BadJSON(t *testing.T) {
	_, err := decodeReading(redisutil.StreamMessage{
		ID:     "1-0",
		Values: map[string]interface{}{"data": "not json"},
	})
	require.Error(t, err)
}

func TestDecodeReading_NoMetric(t *testing.T) {
	_, err := decodeReading(redisutil.StreamMessage{
		ID:     "1-0",
		Values: map[string]interface{}{"data": `{"value": 85}`},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no metric")
}
