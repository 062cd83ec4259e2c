package schedule

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDescribeCron(t *testing.T) {
	tests := []struct {
		expr string
		want string
	}{
		{"0 8 * * *", "Daily at 8:00 AM"},
		{"30 20 * * *", "Daily at 8:30 PM"},
		{"0 8,20 * * *", "Daily at 8:00 AM and 8:00 PM"},
		{"*/15 * * * *", "Every 15 minutes"},
		{"*/1 * * * *", "Every minute"},
		{"0 */4 * * *", "Every 4 hours"},
		{"30 9 * * 1,3,5", "Mon, Wed, Fri at 9:30 AM"},
		{"0 7 * * 1-5", "Mon, Tue, Wed, Thu, Fri at 7:00 AM"},
		{"0 9 1 * *", "Monthly on day 1 at 9:00 AM"},
	}
	for _, tt := range tests {
		t.Run(tt.expr, func(t *testing.T) {
			got, err := DescribeCron(tt.expr)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDescribeCron_FallsBackToRawExpression(t *testing.T) {
	// valid but outside the dashboard's common patterns
	got, err := DescribeCron("5 4 * 2 1")
	require.NoError(t, err)
	assert.Equal(t, "5 4 * 2 1", got)
}

func TestDescribeCron_Invalid(t *testing.T) {
	_, err := DescribeCron("not a cron")
	assert.Error(t, err)

	_, err = DescribeCron("0 8 * *")
	assert.Error(t, err)
}

func TestValidateCron(t *testing.T) {
	assert.NoError(t, ValidateCron("0 8 * * *"))
	assert.Error(t, ValidateCron("61 8 * * *"))
}

func TestNextRun(t *testing.T) {
	after := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)

	next, err := NextRun("0 8 * * *", after, time.UTC)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 3, 11, 8, 0, 0, 0, time.UTC), next)
}

func TestOccurrences_DayWindow(t *testing.T) {
	from := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)
	to := from.Add(24 * time.Hour)

	got, err := Occurrences("0 8,20 * * *", from, to, time.UTC)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, 8, got[0].Hour())
	assert.Equal(t, 20, got[1].Hour())
}

func TestOccurrences_IncludesWindowStart(t *testing.T) {
	from := time.Date(2026, 3, 10, 8, 0, 0, 0, time.UTC)
	to := from.Add(time.Hour)

	got, err := Occurrences("0 8 * * *", from, to, time.UTC)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.True(t, got[0].Equal(from))
}
