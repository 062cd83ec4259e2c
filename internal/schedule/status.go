// Package schedule holds the pure display-status logic for scheduled
// items: status classification, day/time grouping and status filtering.
// The evaluation instant is always passed in; nothing here reads the
// clock, touches I/O, or keeps state.
package schedule

import (
	"time"

	"github.com/johnrcarty/smart-home-health-hub/internal/domain"
)

// Status is the display bucket for one scheduled item.
type Status string

const (
	StatusUpcoming    Status = "upcoming"
	StatusReadyToTake Status = "ready_to_take"
	StatusOnTime      Status = "on_time"
	StatusWarning     Status = "warning"
	StatusLateEarly   Status = "late_early"
	StatusMissed      Status = "missed"
	StatusSkipped     Status = "skipped"
	StatusUnknown     Status = "unknown"
)

// Classification windows, shared by every call site.
const (
	// ReadyWindow: a pending item within +/- this of now is ready_to_take.
	// A completed item taken within this of its scheduled time is on_time.
	ReadyWindow = time.Hour
	// WarnWindow: a completed item taken within this (but outside
	// ReadyWindow) of its scheduled time is warning; beyond is late_early.
	WarnWindow = 2 * time.Hour
)

// Classify derives the display status of one scheduled item at instant now.
//
// ActualDose presence is the source of truth for completion; the
// IsCompleted display flag on the item is intentionally ignored.
// Boundary equality goes to the milder bucket: an item exactly
// ReadyWindow past due is still ready_to_take, a dose taken exactly
// ReadyWindow off schedule is still on_time.
func Classify(item domain.ScheduledItem, now time.Time) Status {
	if item.ScheduledTime == nil {
		return StatusUnknown
	}
	scheduled := *item.ScheduledTime

	if item.ActualDose != nil {
		if *item.ActualDose == 0 {
			return StatusSkipped
		}
		if item.ActualTime == nil {
			return StatusOnTime
		}
		off := item.ActualTime.Sub(scheduled)
		if off < 0 {
			off = -off
		}
		switch {
		case off <= ReadyWindow:
			return StatusOnTime
		case off <= WarnWindow:
			return StatusWarning
		default:
			return StatusLateEarly
		}
	}

	delta := now.Sub(scheduled)
	switch {
	case delta < -ReadyWindow:
		return StatusUpcoming
	case delta <= ReadyWindow:
		return StatusReadyToTake
	default:
		return StatusMissed
	}
}

// ClassifyAll stamps the derived status onto each item and returns counts
// per bucket.
func ClassifyAll(items []domain.ScheduledItem, now time.Time) map[Status]int {
	counts := make(map[Status]int)
	for i := range items {
		s := Classify(items[i], now)
		items[i].Status = string(s)
		counts[s]++
	}
	return counts
}
