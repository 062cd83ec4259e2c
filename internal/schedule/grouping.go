package schedule

import (
	"sort"
	"time"

	"github.com/johnrcarty/smart-home-health-hub/internal/domain"
)

// Display formats for group labels.
const (
	dayLabelFormat  = "Monday, Jan 2"
	timeLabelFormat = "3:04 PM"
)

// TimeGroup is one clock-time bucket within a day. At is the raw sort key;
// Label is only for display and is never parsed back.
type TimeGroup struct {
	At    time.Time              `json:"-"`
	Label string                 `json:"time"`
	Items []domain.ScheduledItem `json:"items"`
}

// DayGroup is one calendar day of scheduled items.
type DayGroup struct {
	Day   time.Time   `json:"-"`
	Label string      `json:"day"`
	Times []TimeGroup `json:"times"`
}

// GroupByDay groups items by calendar day (in loc), then by clock time
// within each day, both in chronological order regardless of input order.
// Items without a scheduled time are dropped; they have no place on a
// timeline.
func GroupByDay(items []domain.ScheduledItem, loc *time.Location) []DayGroup {
	if loc == nil {
		loc = time.Local
	}

	days := make(map[time.Time]map[time.Time][]domain.ScheduledItem)
	for _, item := range items {
		if item.ScheduledTime == nil {
			continue
		}
		at := item.ScheduledTime.In(loc)
		dayKey := time.Date(at.Year(), at.Month(), at.Day(), 0, 0, 0, 0, loc)
		// minute resolution: seconds never appear on the dashboard
		timeKey := time.Date(at.Year(), at.Month(), at.Day(), at.Hour(), at.Minute(), 0, 0, loc)

		if days[dayKey] == nil {
			days[dayKey] = make(map[time.Time][]domain.ScheduledItem)
		}
		days[dayKey][timeKey] = append(days[dayKey][timeKey], item)
	}

	out := make([]DayGroup, 0, len(days))
	for dayKey, times := range days {
		dg := DayGroup{
			Day:   dayKey,
			Label: dayKey.Format(dayLabelFormat),
			Times: make([]TimeGroup, 0, len(times)),
		}
		for timeKey, bucket := range times {
			dg.Times = append(dg.Times, TimeGroup{
				At:    timeKey,
				Label: timeKey.Format(timeLabelFormat),
				Items: bucket,
			})
		}
		sort.Slice(dg.Times, func(i, j int) bool {
			return dg.Times[i].At.Before(dg.Times[j].At)
		})
		out = append(out, dg)
	}

	sort.Slice(out, func(i, j int) bool {
		return out[i].Day.Before(out[j].Day)
	})

	return out
}
