package mqtt

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/johnrcarty/smart-home-health-hub/internal/domain"
	"github.com/johnrcarty/smart-home-health-hub/internal/service"
)

// stubVitals records RecordReading calls; the rest of the interface is
// never hit by the bridge.
type stubVitals struct {
	service.VitalsService
	recorded []service.RecordReadingRequest
	fail     error
}

func (s *stubVitals) RecordReading(_ context.Context, req service.RecordReadingRequest) (string, error) {
	if s.fail != nil {
		return "", s.fail
	}
	s.recorded = append(s.recorded, req)
	return "reading-1", nil
}

func TestHandleVitalsMessage_RecordsReading(t *testing.T) {
	stub := &stubVitals{}
	b := NewBridge(stub, zap.NewNop())

	err := b.handleVitalsMessage("healthhub/vitals/spo2", []byte(`{"value": 96, "unit": "%"}`))
	require.NoError(t, err)

	require.Len(t, stub.recorded, 1)
	assert.Equal(t, "spo2", stub.recorded[0].Metric)
	assert.Equal(t, 96.0, stub.recorded[0].Value)
	assert.Equal(t, "%", stub.recorded[0].Unit)
	assert.Equal(t, domain.SourceDevice, stub.recorded[0].Source)
	assert.Nil(t, stub.recorded[0].TakenAt)
}

func TestHandleVitalsMessage_HonorsTimestamp(t *testing.T) {
	stub := &stubVitals{}
	b := NewBridge(stub, zap.NewNop())

	at := time.Date(2026, 3, 10, 8, 0, 0, 0, time.UTC)
	err := b.handleVitalsMessage("healthhub/vitals/heart_rate", []byte(`{"value": 72, "taken_at": 1773129600}`))
	require.NoError(t, err)

	require.Len(t, stub.recorded, 1)
	require.NotNil(t, stub.recorded[0].TakenAt)
	assert.Equal(t, at.Unix(), stub.recorded[0].TakenAt.Unix())
}

func TestHandleVitalsMessage_BadPayload(t *testing.T) {
	stub := &stubVitals{}
	b := NewBridge(stub, zap.NewNop())

	err := b.handleVitalsMessage("healthhub/vitals/spo2", []byte(`not json`))
	require.Error(t, err)
	assert.Empty(t, stub.recorded)
}

func TestHandleVitalsMessage_NoMetricSegment(t *testing.T) {
	stub := &stubVitals{}
	b := NewBridge(stub, zap.NewNop())

	err := b.handleVitalsMessage("healthhub/vitals", []byte(`{"value": 96}`))
	require.Error(t, err)
	assert.Empty(t, stub.recorded)
}

func TestPublishAlarm_NotConnected(t *testing.T) {
	b := NewBridge(&stubVitals{}, zap.NewNop())

	err := b.PublishAlarm(&service.TriggeredAlarm{
		Event:  &domain.AlarmEvent{Metric: domain.MetricSpO2, Value: 85},
		Wiring: &domain.AlarmWiring{Topic: "healthhub/alarm/spo2"},
	})
	assert.Error(t, err)
}
