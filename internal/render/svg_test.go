package render

import (
	"bytes"
	"encoding/xml"
	"io"
	"strings"
	"testing"

	"github.com/hangyu-feng/myplan-calendar/internal/model"
	"github.com/hangyu-feng/myplan-calendar/internal/palette"
	"github.com/hangyu-feng/myplan-calendar/internal/schedule"
)

func course(code string, days []model.DayCode, start, end int) model.Course {
	return model.Course{Code: code, Days: days, Start: start, End: end, Color: palette.Assign(code)}
}

func TestSVGPlacesEvents(t *testing.T) {
	cal := schedule.Build([]model.Course{
		course("CSE 142", []model.DayCode{model.Monday}, 600, 650),
		course("R&D <1>", []model.DayCode{model.Monday, model.Wednesday}, 600, 650),
	}, schedule.DefaultGrid())

	out := SVG(cal, DefaultOptions())

	if n := strings.Count(out, `<rect class="event"`); n != 3 {
		t.Errorf("event rects = %d, want 3", n)
	}
	// Two Monday events share the 10:00 slot side by side.
	for _, want := range []string{
		`<g id="M-0">`,
		`x="62" y="272" width="96" height="62.67"`,
		`x="162" y="272" width="96" height="62.67"`,
		`R&amp;D &lt;1&gt;`,
		`>10:00 - 10:50<`,
		`>Wed<`,
		`>7 AM<`,
	} {
		if !strings.Contains(out, want) {
			t.Errorf("svg missing %q", want)
		}
	}
	if strings.Contains(out, "R&D") {
		t.Error("unescaped text in svg")
	}
	assertWellFormed(t, out)
}

func TestSVGEmpty(t *testing.T) {
	out := SVG(schedule.Build(nil, schedule.DefaultGrid()), Options{})
	if !strings.Contains(out, "No courses found") {
		t.Error("empty calendar should carry the notice")
	}
	if !strings.Contains(out, `width="1060" height="1230"`) {
		t.Errorf("unexpected canvas size in %q", out[:200])
	}
	assertWellFormed(t, out)
}

func TestWrite(t *testing.T) {
	var buf bytes.Buffer
	cal := schedule.Build([]model.Course{course("MATH 126", []model.DayCode{model.Tuesday}, 810, 860)}, schedule.DefaultGrid())
	if err := Write(&buf, cal, DefaultOptions()); err != nil {
		t.Fatal(err)
	}
	if !strings.HasSuffix(buf.String(), "</svg>") {
		t.Error("document not terminated")
	}
}

func TestNum(t *testing.T) {
	tests := map[float64]string{0: "0", 100: "100", 10.5: "10.5", 66.6666: "66.67", -2: "-2"}
	for in, want := range tests {
		if got := num(in); got != want {
			t.Errorf("num(%v) = %q, want %q", in, got, want)
		}
	}
}

func assertWellFormed(t *testing.T, doc string) {
	t.Helper()
	dec := xml.NewDecoder(strings.NewReader(doc))
	for {
		_, err := dec.Token()
		if err == io.EOF {
			return
		}
		if err != nil {
			t.Fatalf("svg is not well-formed XML: %v", err)
		}
	}
}
