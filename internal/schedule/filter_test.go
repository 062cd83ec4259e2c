package schedule

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/johnrcarty/smart-home-health-hub/internal/domain"
)

func TestDefaultStatusFilter_ShowsPendingHidesResolved(t *testing.T) {
	f := DefaultStatusFilter()

	assert.True(t, f[StatusUpcoming])
	assert.True(t, f[StatusReadyToTake])
	assert.True(t, f[StatusMissed])
	assert.True(t, f[StatusUnknown])

	assert.False(t, f[StatusOnTime])
	assert.False(t, f[StatusWarning])
	assert.False(t, f[StatusLateEarly])
	assert.False(t, f[StatusSkipped])
}

func TestStatusFilter_Apply(t *testing.T) {
	items := []domain.ScheduledItem{
		{ID: "a", Status: string(StatusReadyToTake)},
		{ID: "b", Status: string(StatusOnTime)},
		{ID: "c", Status: string(StatusMissed)},
		{ID: "d", Status: string(StatusSkipped)},
	}

	visible := DefaultStatusFilter().Apply(items)

	assert.Len(t, visible, 2)
	assert.Equal(t, "a", visible[0].ID)
	assert.Equal(t, "c", visible[1].ID)
}

func TestStatusFilter_MergeFlipsOnlyNamedBuckets(t *testing.T) {
	merged := DefaultStatusFilter().Merge(map[string]bool{
		"on_time": true,
		"missed":  false,
	})

	assert.True(t, merged[StatusOnTime])
	assert.False(t, merged[StatusMissed])
	// untouched buckets keep their defaults
	assert.True(t, merged[StatusReadyToTake])
	assert.False(t, merged[StatusSkipped])

	// the receiver is not mutated
	assert.False(t, DefaultStatusFilter()[StatusOnTime])
}
