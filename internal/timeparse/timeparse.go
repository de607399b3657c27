// Package timeparse converts the time strings found on plan pages into
// minutes since midnight.
//
// Two inputs exist: the machine-readable datetime attribute of a time marker
// ("13:30"), which is authoritative, and the visible label ("1:30 PM"), used
// only when the attribute is absent.
package timeparse

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

const MinutesPerDay = 24 * 60

var labelRe = regexp.MustCompile(`(?i)(\d{1,2}):(\d{2})\s*(AM|PM)?`)

// Label is a parsed free-text clock reading. Meridiem is "AM", "PM" or "".
type Label struct {
	Hours    int
	Minutes  int
	Meridiem string
}

// ParseLabel finds the first H:MM [AM|PM] reading in text. Minutes past 59
// are not a clock reading.
func ParseLabel(text string) (Label, bool) {
	m := labelRe.FindStringSubmatch(text)
	if m == nil {
		return Label{}, false
	}
	h, _ := strconv.Atoi(m[1])
	mins, _ := strconv.Atoi(m[2])
	if mins > 59 {
		return Label{}, false
	}
	return Label{Hours: h, Minutes: mins, Meridiem: strings.ToUpper(m[3])}, true
}

// ToMinutes applies the 12 to 24 hour conversion.
//
// A label without meridiem and an hour below 8 is taken to be in the
// afternoon; plan pages rarely list sections starting before 8 AM.
// isEnd is accepted for symmetry with callers but does not change the result.
func ToMinutes(l Label, isEnd bool) int {
	_ = isEnd
	h := l.Hours
	switch l.Meridiem {
	case "PM":
		if h != 12 {
			h += 12
		}
	case "AM":
		if h == 12 {
			h = 0
		}
	default:
		if h < 8 {
			h += 12
		}
	}
	return h*60 + l.Minutes
}

var ErrMalformed = errors.New("timeparse: malformed time")

// FromISO parses a 24-hour "HH:MM" (optionally "HH:MM:SS") string as found in
// datetime attributes. An empty string yields 0.
func FromISO(s string) (int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, nil
	}
	parts := strings.Split(s, ":")
	if len(parts) < 2 || len(parts) > 3 {
		return 0, fmt.Errorf("%w: %q", ErrMalformed, s)
	}
	if len(parts[0]) < 1 || len(parts[0]) > 2 || len(parts[1]) != 2 {
		return 0, fmt.Errorf("%w: %q", ErrMalformed, s)
	}
	h, err := strconv.Atoi(parts[0])
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrMalformed, s)
	}
	m, err := strconv.Atoi(parts[1])
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrMalformed, s)
	}
	if h < 0 || h > 23 || m < 0 || m > 59 {
		return 0, fmt.Errorf("%w: %q out of range", ErrMalformed, s)
	}
	return h*60 + m, nil
}

// Clock renders minutes since midnight the way the calendar cells show it:
// 12-hour folding without meridiem ("1:05", "12:30", "9:00").
func Clock(minutes int) string {
	h := minutes / 60
	if h > 12 {
		h -= 12
	}
	return fmt.Sprintf("%d:%02d", h, minutes%60)
}

// FormatRange renders "start - end" using Clock.
func FormatRange(start, end int) string {
	return Clock(start) + " - " + Clock(end)
}

// HourLabel renders a grid hour heading such as "7 AM" or "1 PM".
func HourLabel(h int) string {
	suffix := "AM"
	if h >= 12 {
		suffix = "PM"
	}
	if h > 12 {
		h -= 12
	}
	return fmt.Sprintf("%d %s", h, suffix)
}
