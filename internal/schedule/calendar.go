// Package schedule expands courses into per-day events, packs overlapping
// events into columns and maps them onto the hour grid.
package schedule

import (
	"fmt"

	appLog "github.com/hangyu-feng/myplan-calendar/internal/log"
	"github.com/hangyu-feng/myplan-calendar/internal/model"
	"github.com/hangyu-feng/myplan-calendar/internal/timeparse"
)

// Detail is one labeled line of the selection panel.
type Detail struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

// Placement is everything needed to draw and select one event.
type Placement struct {
	ID       string      `json:"id"`
	Event    model.Event `json:"event"`
	Rect     model.Rect  `json:"rect"`
	Color    model.Color `json:"color"`
	TimeText string      `json:"time_text"`
	Details  []Detail    `json:"details"`
}

// Day is one calendar column with its placements in layout order.
type Day struct {
	Code       model.DayCode `json:"code"`
	Name       string        `json:"name"`
	Placements []Placement   `json:"placements"`
}

// Calendar is the complete, render-ready weekly view.
type Calendar struct {
	Grid    Grid           `json:"grid"`
	Hours   []string       `json:"hours"`
	Days    []Day          `json:"days"`
	Courses []model.Course `json:"courses"`
}

// Build runs expansion, layout and geometry for every weekday.
func Build(courses []model.Course, g Grid) Calendar {
	cal := Calendar{
		Grid:    g,
		Courses: courses,
		Days:    make([]Day, 0, len(model.Week)),
	}
	for h := g.StartHour; h < g.EndHour; h++ {
		cal.Hours = append(cal.Hours, timeparse.HourLabel(h))
	}

	byDay := ByDay(courses)
	for _, d := range model.Week {
		day := Day{Code: d, Name: d.Name(), Placements: []Placement{}}
		for i, ev := range Layout(byDay[d]) {
			if !g.Contains(ev) {
				appLog.Debug("event outside grid hours", "code", ev.Code, "day", string(d), "start", ev.Start, "end", ev.End)
			}
			day.Placements = append(day.Placements, Placement{
				ID:       fmt.Sprintf("%s-%d", d, i),
				Event:    ev,
				Rect:     g.Rect(ev),
				Color:    ev.Color,
				TimeText: timeparse.FormatRange(ev.Start, ev.End),
				Details:  Details(ev.Course),
			})
		}
		cal.Days = append(cal.Days, day)
	}
	return cal
}

// Empty reports whether the calendar has no courses at all.
func (c Calendar) Empty() bool {
	return len(c.Courses) == 0
}

// Find looks a placement up by its ID.
func (c Calendar) Find(id string) (Placement, bool) {
	for _, d := range c.Days {
		for _, p := range d.Placements {
			if p.ID == id {
				return p, true
			}
		}
	}
	return Placement{}, false
}

// Details lists the non-empty course attributes in panel order.
func Details(c model.Course) []Detail {
	fields := []Detail{
		{"SLN", c.SLN},
		{"Section", c.Section},
		{"Credits", c.Credits},
		{"Format", c.LearningFormat},
		{"Instructor", c.Instructor},
		{"Location", c.Location},
		{"Availability", c.Availability},
	}
	out := make([]Detail, 0, len(fields))
	for _, f := range fields {
		if f.Value != "" {
			out = append(out, f)
		}
	}
	return out
}
