// Package ics exports the weekly class schedule as an iCalendar feed.
//
// Each course becomes one recurring VEVENT bounded by the term. Times are
// floating (no TZID): a 10:30 class is 10:30 wherever the calendar is opened.
package ics

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	ical "github.com/arran4/golang-ical"
	"github.com/google/uuid"
	"github.com/teambition/rrule-go"

	appLog "github.com/hangyu-feng/myplan-calendar/internal/log"
	"github.com/hangyu-feng/myplan-calendar/internal/model"
	"github.com/hangyu-feng/myplan-calendar/internal/schedule"
	"github.com/hangyu-feng/myplan-calendar/internal/timeparse"
)

const (
	ProductID = "-//myplan-calendar//Weekly Schedule//EN"

	// floatingLayout is a DATE-TIME without the UTC designator.
	floatingLayout = "20060102T150405"
)

// uidNamespace scopes the deterministic per-course UIDs.
var uidNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("https://myplan-calendar/course"))

var weekdays = map[model.DayCode]rrule.Weekday{
	model.Monday:    rrule.MO,
	model.Tuesday:   rrule.TU,
	model.Wednesday: rrule.WE,
	model.Thursday:  rrule.TH,
	model.Friday:    rrule.FR,
}

// Term is the inclusive date range classes meet in. Only the date parts are
// used.
type Term struct {
	Start time.Time
	End   time.Time
}

// Options controls an export.
type Options struct {
	Term Term

	// Name is written as X-WR-CALNAME when set.
	Name string

	// Now stamps DTSTAMP. Zero means time.Now().
	Now time.Time
}

// Export builds a calendar with one weekly recurring event per course.
// Courses that never meet within the term are left out.
func Export(courses []model.Course, opts Options) (*ical.Calendar, error) {
	termStart := floatingDate(opts.Term.Start)
	termEnd := floatingDate(opts.Term.End)
	if termStart.IsZero() || termEnd.IsZero() {
		return nil, errors.New("ics: term start and end are required")
	}
	if termEnd.Before(termStart) {
		return nil, errors.New("ics: term ends before it starts")
	}
	now := opts.Now
	if now.IsZero() {
		now = time.Now()
	}

	cal := ical.NewCalendar()
	cal.SetMethod(ical.MethodPublish)
	cal.SetProductId(ProductID)
	if opts.Name != "" {
		cal.SetXWRCalName(opts.Name)
	}

	exported := 0
	for _, c := range courses {
		rule, first, err := recurrence(c, termStart, termEnd)
		if err != nil {
			appLog.Warn("ics: course not exported", "code", c.Code, "reason", err.Error())
			continue
		}

		ev := cal.AddEvent(CourseUID(c))
		ev.SetDtStampTime(now)
		ev.SetProperty(ical.ComponentPropertyDtStart, first.Format(floatingLayout))
		ev.SetProperty(ical.ComponentPropertyDtEnd, first.Add(time.Duration(c.End-c.Start)*time.Minute).Format(floatingLayout))
		ev.AddProperty(ical.ComponentPropertyRrule, rule)
		ev.SetSummary(summary(c))
		if c.Location != "" {
			ev.SetLocation(c.Location)
		}
		if desc := description(c); desc != "" {
			ev.SetDescription(desc)
		}
		if c.RestrictionsLink != "" {
			ev.SetURL(c.RestrictionsLink)
		}
		ev.SetProperty(ical.ComponentProperty("COLOR"), c.Color.Background)
		exported++
	}

	appLog.Info("ics export built", "courses", len(courses), "events", exported)
	return cal, nil
}

// Write serializes the export to w.
func Write(w io.Writer, courses []model.Course, opts Options) error {
	cal, err := Export(courses, opts)
	if err != nil {
		return err
	}
	if err := cal.SerializeTo(w); err != nil {
		return fmt.Errorf("ics: serialize: %w", err)
	}
	return nil
}

// CourseUID is stable across exports so calendar clients update events in
// place instead of duplicating them.
func CourseUID(c model.Course) string {
	key := strings.Join([]string{
		c.Code, c.Section, c.SLN, daysKey(c.Days), fmt.Sprint(c.Start, "-", c.End),
	}, "|")
	return uuid.NewSHA1(uidNamespace, []byte(key)).String() + "@myplan-calendar"
}

// recurrence returns the RRULE value and the first meeting on or after the
// term start.
func recurrence(c model.Course, termStart, termEnd time.Time) (string, time.Time, error) {
	if len(c.Days) == 0 {
		return "", time.Time{}, errors.New("no meeting days")
	}
	if c.End <= c.Start {
		return "", time.Time{}, errors.New("empty meeting range")
	}

	byDay := make([]rrule.Weekday, 0, len(c.Days))
	for _, d := range c.Days {
		if wd, ok := weekdays[d]; ok {
			byDay = append(byDay, wd)
		}
	}
	if len(byDay) == 0 {
		return "", time.Time{}, errors.New("no weekday meetings")
	}

	dtstart := termStart.Add(time.Duration(c.Start) * time.Minute)
	until := termEnd.Add(24*time.Hour - time.Second)
	r, err := rrule.NewRRule(rrule.ROption{
		Freq:      rrule.WEEKLY,
		Dtstart:   dtstart,
		Byweekday: byDay,
		Until:     until,
	})
	if err != nil {
		return "", time.Time{}, err
	}
	first := r.After(dtstart, true)
	if first.IsZero() {
		return "", time.Time{}, errors.New("no meeting within the term")
	}
	return ruleValue(byDay, until), first, nil
}

// ruleValue formats the RRULE value. UNTIL must be floating like DTSTART;
// ROption.RRuleString always writes it in UTC.
func ruleValue(byDay []rrule.Weekday, until time.Time) string {
	days := make([]string, 0, len(byDay))
	for _, wd := range byDay {
		days = append(days, wd.String())
	}
	return "FREQ=WEEKLY;UNTIL=" + until.Format(floatingLayout) + ";BYDAY=" + strings.Join(days, ",")
}

func summary(c model.Course) string {
	if c.Title != "" {
		return c.Title
	}
	if c.CourseName == "" {
		return c.Code
	}
	return c.Code + " " + c.CourseName
}

func description(c model.Course) string {
	var lines []string
	if c.DeptName != "" {
		lines = append(lines, c.DeptName)
	}
	lines = append(lines, "Time: "+timeparse.FormatRange(c.Start, c.End))
	for _, d := range schedule.Details(c) {
		lines = append(lines, d.Label+": "+d.Value)
	}
	return strings.Join(lines, "\n")
}

func daysKey(days []model.DayCode) string {
	var b strings.Builder
	for _, d := range days {
		b.WriteString(string(d))
	}
	return b.String()
}

// floatingDate keeps the calendar date of t at midnight UTC. UTC only
// carries the wall clock here, so DST never shifts a class.
func floatingDate(t time.Time) time.Time {
	if t.IsZero() {
		return time.Time{}
	}
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
