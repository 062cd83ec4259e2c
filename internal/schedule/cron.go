package schedule

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/robfig/cron/v3"
)

var cronParser = cron.NewParser(
	cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow,
)

// ValidateCron checks a 5-field cron expression.
func ValidateCron(expr string) error {
	_, err := cronParser.Parse(expr)
	return err
}

// NextRun returns the first activation strictly after `after`, evaluated
// in loc.
func NextRun(expr string, after time.Time, loc *time.Location) (time.Time, error) {
	sched, err := cronParser.Parse(expr)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid cron expression %q: %w", expr, err)
	}
	if loc == nil {
		loc = time.Local
	}
	return sched.Next(after.In(loc)), nil
}

// Occurrences returns every activation within [from, to) in loc. Used to
// materialize a schedule onto the daily view.
func Occurrences(expr string, from, to time.Time, loc *time.Location) ([]time.Time, error) {
	sched, err := cronParser.Parse(expr)
	if err != nil {
		return nil, fmt.Errorf("invalid cron expression %q: %w", expr, err)
	}
	if loc == nil {
		loc = time.Local
	}

	var out []time.Time
	// Next is strictly-after, so back off one second to include `from`.
	t := from.In(loc).Add(-time.Second)
	for {
		t = sched.Next(t)
		if t.IsZero() || !t.Before(to.In(loc)) {
			return out, nil
		}
		out = append(out, t)
	}
}

var dowNames = []string{"Sunday", "Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday"}

// DescribeCron renders a 5-field cron expression as caregiver-readable
// text, e.g. "Daily at 8:00 AM", "Every 4 hours", "Mon, Wed, Fri at
// 9:30 AM". Expressions outside the common dashboard patterns fall back
// to the raw expression.
func DescribeCron(expr string) (string, error) {
	if err := ValidateCron(expr); err != nil {
		return "", fmt.Errorf("invalid cron expression %q: %w", expr, err)
	}

	fields := strings.Fields(expr)
	minute, hour, dom, month, dow := fields[0], fields[1], fields[2], fields[3], fields[4]

	// interval patterns first
	if strings.HasPrefix(minute, "*/") && hour == "*" && dom == "*" && month == "*" && dow == "*" {
		n := strings.TrimPrefix(minute, "*/")
		if n == "1" {
			return "Every minute", nil
		}
		return fmt.Sprintf("Every %s minutes", n), nil
	}
	if minute == "0" && strings.HasPrefix(hour, "*/") && dom == "*" && month == "*" && dow == "*" {
		n := strings.TrimPrefix(hour, "*/")
		if n == "1" {
			return "Every hour", nil
		}
		return fmt.Sprintf("Every %s hours", n), nil
	}

	clock, ok := clockLabel(minute, hour)
	if !ok {
		return expr, nil
	}

	switch {
	case dom == "*" && month == "*" && dow == "*":
		return fmt.Sprintf("Daily at %s", clock), nil
	case dom == "*" && month == "*":
		names, ok := dowLabels(dow)
		if !ok {
			return expr, nil
		}
		return fmt.Sprintf("%s at %s", names, clock), nil
	case month == "*" && dow == "*":
		day, err := strconv.Atoi(dom)
		if err != nil {
			return expr, nil
		}
		return fmt.Sprintf("Monthly on day %d at %s", day, clock), nil
	default:
		return expr, nil
	}
}

// clockLabel renders fixed minute/hour fields as a 12-hour label. Multiple
// hours ("0 8,20 * * *") become "8:00 AM and 8:00 PM".
func clockLabel(minute, hour string) (string, bool) {
	m, err := strconv.Atoi(minute)
	if err != nil || m < 0 || m > 59 {
		return "", false
	}

	var labels []string
	for _, h := range strings.Split(hour, ",") {
		hv, err := strconv.Atoi(h)
		if err != nil || hv < 0 || hv > 23 {
			return "", false
		}
		t := time.Date(2000, 1, 1, hv, m, 0, 0, time.UTC)
		labels = append(labels, t.Format("3:04 PM"))
	}
	if len(labels) == 1 {
		return labels[0], true
	}
	return strings.Join(labels[:len(labels)-1], ", ") + " and " + labels[len(labels)-1], true
}

// dowLabels renders a day-of-week field ("1,3,5" or "1-5") as day names.
func dowLabels(dow string) (string, bool) {
	var days []int
	for _, part := range strings.Split(dow, ",") {
		if from, to, ok := strings.Cut(part, "-"); ok {
			a, err1 := strconv.Atoi(from)
			b, err2 := strconv.Atoi(to)
			if err1 != nil || err2 != nil || a < 0 || b > 6 || a > b {
				return "", false
			}
			for d := a; d <= b; d++ {
				days = append(days, d)
			}
			continue
		}
		d, err := strconv.Atoi(part)
		if err != nil || d < 0 || d > 6 {
			return "", false
		}
		days = append(days, d)
	}
	if len(days) == 0 {
		return "", false
	}
	sort.Ints(days)

	if len(days) == 7 {
		return "Daily", true
	}
	names := make([]string, len(days))
	for i, d := range days {
		names[i] = dowNames[d][:3]
	}
	return strings.Join(names, ", "), true
}
