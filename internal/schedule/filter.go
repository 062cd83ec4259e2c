package schedule

import "github.com/johnrcarty/smart-home-health-hub/internal/domain"

// StatusFilter maps a status bucket to its visibility.
type StatusFilter map[Status]bool

// DefaultStatusFilter shows what still needs caregiver attention and hides
// what is already resolved. A UX default, not a correctness rule.
func DefaultStatusFilter() StatusFilter {
	return StatusFilter{
		StatusUpcoming:    true,
		StatusReadyToTake: true,
		StatusMissed:      true,
		StatusOnTime:      false,
		StatusWarning:     false,
		StatusLateEarly:   false,
		StatusSkipped:     false,
		StatusUnknown:     true,
	}
}

// Apply returns the items whose derived status is visible. Statuses absent
// from the filter are hidden.
func (f StatusFilter) Apply(items []domain.ScheduledItem) []domain.ScheduledItem {
	out := make([]domain.ScheduledItem, 0, len(items))
	for _, item := range items {
		if f[Status(item.Status)] {
			out = append(out, item)
		}
	}
	return out
}

// Merge overlays explicit choices (e.g. from query params) onto the
// defaults, so a request only has to name the buckets it flips.
func (f StatusFilter) Merge(overrides map[string]bool) StatusFilter {
	merged := make(StatusFilter, len(f))
	for k, v := range f {
		merged[k] = v
	}
	for k, v := range overrides {
		merged[Status(k)] = v
	}
	return merged
}
