package scheduler

import (
	"strconv"
	"strings"
	"time"

	"mindbuddy/internal/resources"
)

// TimelineItem is a display row of the static daily schedule.
type TimelineItem struct {
	resources.ScheduledNotification
	At        time.Time
	Completed bool
}

// Timeline lays the fixed daily schedule onto now's date. Items already
// past are marked completed with probability 0.7; the flag is purely
// cosmetic.
func Timeline(now time.Time, rnd interface{ Float64() float64 }) []TimelineItem {
	out := make([]TimelineItem, 0, len(resources.DailySchedule))
	for _, n := range resources.DailySchedule {
		h, m := parseClock(n.Time)
		at := time.Date(now.Year(), now.Month(), now.Day(), h, m, 0, 0, now.Location())
		item := TimelineItem{ScheduledNotification: n, At: at}
		if at.Before(now) && rnd.Float64() > 0.3 {
			item.Completed = true
		}
		out = append(out, item)
	}
	return out
}

// NextCheckIn is the time left until the next top of the hour.
func NextCheckIn(now time.Time) time.Duration {
	next := time.Date(now.Year(), now.Month(), now.Day(), now.Hour()+1, 0, 0, 0, now.Location())
	return next.Sub(now)
}

func parseClock(s string) (int, int) {
	parts := strings.SplitN(s, ":", 2)
	if len(parts) != 2 {
		return 0, 0
	}
	h, _ := strconv.Atoi(parts[0])
	m, _ := strconv.Atoi(parts[1])
	return h, m
}
