package extract

import (
	"fmt"
	"regexp"
	"strings"
)

// Strategy derives one Course attribute from an item. It returns false when
// the item does not carry what the strategy looks for.
type Strategy func(Item) (string, bool)

// First runs strategies in order and returns the first value found, or "".
func First(it Item, strategies ...Strategy) string {
	for _, s := range strategies {
		if v, ok := s(it); ok {
			return v
		}
	}
	return ""
}

const (
	enrollmentPath     = "sln.asp"
	enrollmentCheck    = "Check enrollment"
	restrictionsText   = "Check enrollment restrictions"
	sectionStatusLabel = "SECTION IS"
	seatsLabel         = "SEATS"
	locationLabel      = "building room"
	instructorLabel    = "Instructor:"
	minCourseNameLen   = 3
)

var (
	// "<department words> <3-digit number> <course name>"
	courseLabelRe = regexp.MustCompile(`^(.*?)\s+(\d{3})\s+(.*)$`)
	seatsRe       = regexp.MustCompile(`(\d+)\s+.*?(\d+)`)
	slnRe         = regexp.MustCompile(`^\d{5}$`)

	learningFormats = []string{"In-person", "Online", "Hybrid"}
)

// normalize folds line breaks and whitespace runs into single spaces.
func normalize(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// Code strategies.

func codeFromTitleLink(it Item) (string, bool) {
	if it.TitleLink == nil {
		return "", false
	}
	return strings.TrimSpace(it.TitleLink.Text), true
}

func unknownCode(Item) (string, bool) { return "Unknown", true }

// Title strategies. The accessible label reads like
// "Computer Science & Engineering 142 Computer Programming I".

func parseCourseLabel(it Item) (dept, name string, ok bool) {
	if it.TitleLink == nil {
		return "", "", false
	}
	m := courseLabelRe.FindStringSubmatch(normalize(it.TitleLink.Label))
	if m == nil {
		return "", "", false
	}
	return strings.TrimSpace(m[1]), strings.TrimSpace(m[3]), true
}

func deptFromLabel(it Item) (string, bool) {
	dept, _, ok := parseCourseLabel(it)
	return dept, ok && dept != ""
}

// nameFromLabel accepts the label's course name only when it is long enough
// to be a real name.
func nameFromLabel(it Item) (string, bool) {
	_, name, ok := parseCourseLabel(it)
	return name, ok && len(name) >= minCourseNameLen
}

// shortNameFromLabel is the last resort: any non-empty name from the label.
func shortNameFromLabel(it Item) (string, bool) {
	_, name, ok := parseCourseLabel(it)
	return name, ok && name != ""
}

// nameFromSiblingLink picks the first link that is neither the code link, an
// enrollment lookup nor a seat-count link. Only used when a title link exists.
func nameFromSiblingLink(it Item) (string, bool) {
	if it.TitleLink == nil {
		return "", false
	}
	for _, l := range it.Links {
		if it.isTitle(l) {
			continue
		}
		if strings.Contains(l.Href, enrollmentPath) || strings.Contains(l.Text, enrollmentCheck) {
			continue
		}
		if strings.Contains(strings.ToUpper(l.Text), seatsLabel) {
			continue
		}
		return strings.TrimSpace(l.Text), true
	}
	return "", false
}

// Detail strategies.

func sectionFromPrimaryCode(it Item) (string, bool) {
	if it.PrimaryCode == nil {
		return "", false
	}
	return strings.TrimSpace(*it.PrimaryCode), true
}

func instructorFromElement(it Item) (string, bool) {
	if it.Instructor == nil {
		return "", false
	}
	text := strings.Replace(*it.Instructor, instructorLabel, "", 1)
	var names []string
	for _, line := range strings.Split(text, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			names = append(names, line)
		}
	}
	return strings.Join(names, ", "), true
}

// formatFromSpan matches the whole span text; substring matches would pick
// up descriptions such as "Online homework required".
func formatFromSpan(it Item) (string, bool) {
	for _, s := range it.Spans {
		t := strings.TrimSpace(s.Text)
		for _, f := range learningFormats {
			if t == f {
				return t, true
			}
		}
	}
	return "", false
}

func findBadge(it Item, substr string) (string, bool) {
	for _, b := range it.Badges {
		if strings.Contains(b, substr) {
			return b, true
		}
	}
	return "", false
}

func availabilityFromBadges(it Item) (string, bool) {
	var status string
	if b, ok := findBadge(it, sectionStatusLabel); ok {
		status = strings.TrimSpace(strings.Replace(b, sectionStatusLabel, "", 1))
	}

	seats, ok := findBadge(it, seatsLabel)
	if !ok {
		return status, status != ""
	}

	text := normalize(seats)
	if m := seatsRe.FindStringSubmatch(text); m != nil {
		return fmt.Sprintf("%s (%s/%s available)", status, m[1], m[2]), true
	}
	if status == "" {
		return text, text != ""
	}
	return fmt.Sprintf("%s (%s)", status, text), true
}

func locationFromLabel(it Item) (string, bool) {
	for _, s := range it.Spans {
		if strings.Contains(s.Text, locationLabel) {
			return normalize(strings.Replace(s.ParentText, locationLabel, "", 1)), true
		}
	}
	return "", false
}

func slnLink(it Item) (Link, bool) {
	for _, l := range it.Links {
		if strings.Contains(l.Href, enrollmentPath) && slnRe.MatchString(strings.TrimSpace(l.Text)) {
			return l, true
		}
	}
	return Link{}, false
}

func slnFromLink(it Item) (string, bool) {
	l, ok := slnLink(it)
	if !ok {
		return "", false
	}
	return strings.TrimSpace(l.Text), true
}

func creditsFromBadge(it Item) (string, bool) {
	for _, b := range it.Badges {
		if strings.Contains(b, "CR") || strings.Contains(b, "Credit") {
			return normalize(b), true
		}
	}
	return "", false
}

func restrictionsFromLink(it Item) (string, bool) {
	for _, l := range it.Links {
		if strings.Contains(l.Text, restrictionsText) {
			return l.Href, true
		}
	}
	return "", false
}

func restrictionsFromSLN(it Item) (string, bool) {
	l, ok := slnLink(it)
	if !ok {
		return "", false
	}
	return l.Href, true
}
