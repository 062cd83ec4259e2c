package schedule

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/johnrcarty/smart-home-health-hub/internal/domain"
)

func timePtr(t time.Time) *time.Time { return &t }
func floatPtr(f float64) *float64    { return &f }

func itemAt(scheduled time.Time) domain.ScheduledItem {
	return domain.ScheduledItem{
		ID:            "dose-1",
		Kind:          domain.ScheduledKindMedication,
		Name:          "Albuterol",
		ScheduledTime: timePtr(scheduled),
	}
}

// ============================================
// Pending items (no completion data)
// ============================================

func TestClassify_Pending(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name      string
		scheduled time.Time
		want      Status
	}{
		{"more than 1h in the future", now.Add(90 * time.Minute), StatusUpcoming},
		{"exactly 1h in the future", now.Add(time.Hour), StatusReadyToTake},
		{"due now", now, StatusReadyToTake},
		{"59m in the past", now.Add(-59 * time.Minute), StatusReadyToTake},
		{"exactly 1h in the past stays ready", now.Add(-time.Hour), StatusReadyToTake},
		{"1h1s in the past", now.Add(-time.Hour - time.Second), StatusMissed},
		{"90m in the past", now.Add(-90 * time.Minute), StatusMissed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(itemAt(tt.scheduled), now))
		})
	}
}

// ============================================
// Completed items
// ============================================

func TestClassify_Completed(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	scheduled := now.Add(-3 * time.Hour)

	tests := []struct {
		name   string
		dose   float64
		actual *time.Time
		want   Status
	}{
		{"taken 45m after schedule", 5, timePtr(scheduled.Add(45 * time.Minute)), StatusOnTime},
		{"taken exactly 1h after", 5, timePtr(scheduled.Add(time.Hour)), StatusOnTime},
		{"taken 1h1s after", 5, timePtr(scheduled.Add(time.Hour + time.Second)), StatusWarning},
		{"taken exactly 2h after", 5, timePtr(scheduled.Add(2 * time.Hour)), StatusWarning},
		{"taken 2h1s after", 5, timePtr(scheduled.Add(2*time.Hour + time.Second)), StatusLateEarly},
		{"taken 90m early", 5, timePtr(scheduled.Add(-90 * time.Minute)), StatusWarning},
		{"taken 3h early", 5, timePtr(scheduled.Add(-3 * time.Hour)), StatusLateEarly},
		{"no actual time defaults to on_time", 5, nil, StatusOnTime},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			item := itemAt(scheduled)
			item.ActualDose = floatPtr(tt.dose)
			item.ActualTime = tt.actual
			assert.Equal(t, tt.want, Classify(item, now))
		})
	}
}

func TestClassify_SkippedRegardlessOfTiming(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

	for _, scheduled := range []time.Time{
		now.Add(6 * time.Hour),
		now,
		now.Add(-6 * time.Hour),
	} {
		item := itemAt(scheduled)
		item.ActualDose = floatPtr(0)
		item.ActualTime = timePtr(now)
		assert.Equal(t, StatusSkipped, Classify(item, now))
	}
}

func TestClassify_NoScheduledTime(t *testing.T) {
	now := time.Now()
	item := domain.ScheduledItem{ID: "x", Name: "orphan"}
	assert.Equal(t, StatusUnknown, Classify(item, now))
}

// IsCompleted is a display flag only; ActualDose presence decides.
func TestClassify_IgnoresIsCompletedFlag(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

	item := itemAt(now.Add(-2 * time.Hour))
	item.IsCompleted = true
	assert.Equal(t, StatusMissed, Classify(item, now))
}

func TestClassifyAll_StampsAndCounts(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

	items := []domain.ScheduledItem{
		itemAt(now.Add(2 * time.Hour)),
		itemAt(now.Add(-2 * time.Hour)),
		itemAt(now),
	}
	items[2].ActualDose = floatPtr(0)

	counts := ClassifyAll(items, now)

	assert.Equal(t, string(StatusUpcoming), items[0].Status)
	assert.Equal(t, string(StatusMissed), items[1].Status)
	assert.Equal(t, string(StatusSkipped), items[2].Status)
	assert.Equal(t, 1, counts[StatusUpcoming])
	assert.Equal(t, 1, counts[StatusMissed])
	assert.Equal(t, 1, counts[StatusSkipped])
}

// ============================================
// Status filter
// ============================================

func TestDefaultStatusFilter(t *testing.T) {
	f := DefaultStatusFilter()

	assert.True(t, f[StatusUpcoming])
	assert.True(t, f[StatusReadyToTake])
	assert.True(t, f[StatusMissed])
	assert.False(t, f[StatusOnTime])
	assert.False(t, f[StatusWarning])
	assert.False(t, f[StatusSkipped])
	assert.False(t, f[StatusLateEarly])
}

func TestStatusFilter_ApplyClassified(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

	items := []domain.ScheduledItem{
		itemAt(now.Add(2 * time.Hour)),  // upcoming
		itemAt(now.Add(-2 * time.Hour)), // missed
		itemAt(now.Add(-3 * time.Hour)), // on_time once completed
	}
	items[2].ActualDose = floatPtr(5)
	items[2].ActualTime = timePtr(now.Add(-3 * time.Hour))
	ClassifyAll(items, now)

	visible := DefaultStatusFilter().Apply(items)
	assert.Len(t, visible, 2)
	for _, it := range visible {
		assert.NotEqual(t, string(StatusOnTime), it.Status)
	}
}

func TestStatusFilter_Merge(t *testing.T) {
	f := DefaultStatusFilter().Merge(map[string]bool{
		"on_time": true,
		"missed":  false,
	})

	assert.True(t, f[StatusOnTime])
	assert.False(t, f[StatusMissed])
	assert.True(t, f[StatusUpcoming]) // default untouched
}
