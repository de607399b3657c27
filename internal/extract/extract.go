// Package extract turns plan item snapshots into normalized Course records.
//
// Every attribute is derived by an ordered chain of strategies; a missing or
// malformed element degrades to an empty string. Only an item without a
// usable meeting pattern is dropped, and then only that item.
package extract

import (
	"errors"
	"strings"

	appLog "github.com/hangyu-feng/myplan-calendar/internal/log"
	"github.com/hangyu-feng/myplan-calendar/internal/model"
	"github.com/hangyu-feng/myplan-calendar/internal/palette"
	"github.com/hangyu-feng/myplan-calendar/internal/schedule"
	"github.com/hangyu-feng/myplan-calendar/internal/timeparse"
)

// Reasons an item is left out of the course list.
var (
	ErrNoDayLabel    = errors.New("no day-code label")
	ErrNoTimeMarkers = errors.New("fewer than two time markers")
	ErrBadTime       = errors.New("unparsable meeting time")
	ErrEmptyRange    = errors.New("meeting ends before it starts")
	ErrNoDays        = errors.New("day label has no day codes")
)

// ErrNoCourses is reported by callers when a pass yields nothing to show.
var ErrNoCourses = errors.New("no courses found")

// Skipped records an excluded item.
type Skipped struct {
	Index  int    `json:"index"`
	ID     string `json:"id"`
	Reason string `json:"reason"`
	Err    error  `json:"-"`
}

// Result is the outcome of one extraction pass. Courses keep the input order.
type Result struct {
	Courses []model.Course `json:"courses"`
	Skipped []Skipped      `json:"skipped,omitempty"`
}

// Extract builds one Course per schedulable item.
func Extract(items []Item) Result {
	res := Result{Courses: make([]model.Course, 0, len(items))}
	for i, it := range items {
		c, err := Course(it)
		if err != nil {
			appLog.Debug("plan item skipped", "index", i, "id", it.ID, "reason", err.Error())
			res.Skipped = append(res.Skipped, Skipped{Index: i, ID: it.ID, Reason: err.Error(), Err: err})
			continue
		}
		res.Courses = append(res.Courses, c)
	}
	appLog.Info("extraction completed", "items", len(items), "courses", len(res.Courses), "skipped", len(res.Skipped))
	return res
}

// Course extracts a single item. The returned error only explains why the
// item is not schedulable; no other field can fail.
func Course(it Item) (model.Course, error) {
	days, start, end, err := meetingPattern(it)
	if err != nil {
		return model.Course{}, err
	}

	c := model.Course{
		Code:             First(it, codeFromTitleLink, unknownCode),
		DeptName:         First(it, deptFromLabel),
		CourseName:       First(it, nameFromLabel, nameFromSiblingLink, shortNameFromLabel),
		Section:          First(it, sectionFromPrimaryCode),
		Instructor:       First(it, instructorFromElement),
		Location:         First(it, locationFromLabel),
		SLN:              First(it, slnFromLink),
		RestrictionsLink: First(it, restrictionsFromLink, restrictionsFromSLN),
		LearningFormat:   First(it, formatFromSpan),
		Availability:     First(it, availabilityFromBadges),
		Credits:          First(it, creditsFromBadge),
		Days:             days,
		Start:            start,
		End:              end,
	}
	c.Title = c.Code
	if c.CourseName != "" {
		c.Title = c.Code + " " + c.CourseName
	}
	c.Color = palette.Assign(c.Code)
	return c, nil
}

func meetingPattern(it Item) ([]model.DayCode, int, int, error) {
	var dayLabel *Span
	for i := range it.Spans {
		if strings.Contains(it.Spans[i].Title, "day") {
			dayLabel = &it.Spans[i]
			break
		}
	}
	if dayLabel == nil {
		return nil, 0, 0, ErrNoDayLabel
	}
	if len(it.Times) < 2 {
		return nil, 0, 0, ErrNoTimeMarkers
	}

	start, ok := markerMinutes(it.Times[0], false)
	if !ok {
		return nil, 0, 0, ErrBadTime
	}
	end, ok := markerMinutes(it.Times[1], true)
	if !ok {
		return nil, 0, 0, ErrBadTime
	}
	if start >= end || end >= timeparse.MinutesPerDay {
		return nil, 0, 0, ErrEmptyRange
	}

	days := schedule.ParseDays(strings.TrimSpace(dayLabel.Text))
	if len(days) == 0 {
		return nil, 0, 0, ErrNoDays
	}
	return days, start, end, nil
}

// markerMinutes prefers the datetime attribute and falls back to the visible
// label only when the attribute is absent.
func markerMinutes(m TimeMarker, isEnd bool) (int, bool) {
	if strings.TrimSpace(m.Datetime) != "" {
		v, err := timeparse.FromISO(m.Datetime)
		if err != nil {
			return 0, false
		}
		return v, true
	}
	l, ok := timeparse.ParseLabel(m.Text)
	if !ok {
		return 0, false
	}
	return timeparse.ToMinutes(l, isEnd), true
}
