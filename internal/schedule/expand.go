package schedule

import (
	"strings"

	"github.com/hangyu-feng/myplan-calendar/internal/model"
)

// ParseDays reads a compact day string such as "MTWThF" or "TTh".
//
// "Th" must be consumed before single letters are scanned, otherwise it would
// split into T and a stray h. The result is in week order without repeats.
func ParseDays(s string) []model.DayCode {
	seen := make(map[model.DayCode]bool, len(model.Week))
	if strings.Contains(s, "Th") {
		seen[model.Thursday] = true
		s = strings.ReplaceAll(s, "Th", "")
	}
	for _, r := range s {
		switch d := model.DayCode(string(r)); d {
		case model.Monday, model.Tuesday, model.Wednesday, model.Friday:
			seen[d] = true
		}
	}

	days := make([]model.DayCode, 0, len(seen))
	for _, d := range model.Week {
		if seen[d] {
			days = append(days, d)
		}
	}
	return days
}

// Expand produces one Event per meeting day of c. Each Event carries its own
// copy of the course fields; the Days slice is shared and must not be mutated.
func Expand(c model.Course) []model.Event {
	events := make([]model.Event, 0, len(c.Days))
	for _, d := range c.Days {
		events = append(events, model.Event{Course: c, Day: d})
	}
	return events
}

// ByDay expands all courses and buckets the events by weekday, keeping the
// course order inside each day.
func ByDay(courses []model.Course) map[model.DayCode][]model.Event {
	out := make(map[model.DayCode][]model.Event, len(model.Week))
	for _, c := range courses {
		for _, ev := range Expand(c) {
			if ev.Day.Index() < 0 {
				continue
			}
			out[ev.Day] = append(out[ev.Day], ev)
		}
	}
	return out
}
