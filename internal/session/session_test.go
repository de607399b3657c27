package session

import (
	"errors"
	"testing"

	"github.com/hangyu-feng/myplan-calendar/internal/model"
	"github.com/hangyu-feng/myplan-calendar/internal/schedule"
)

func testCalendar() schedule.Calendar {
	return schedule.Build([]model.Course{{
		Code:             "CSE 142",
		CourseName:       "Computer Programming I",
		DeptName:         "Computer Science & Engineering",
		SLN:              "12345",
		RestrictionsLink: "https://example.edu/r",
		Days:             []model.DayCode{model.Monday},
		Start:            600,
		End:              650,
	}}, schedule.DefaultGrid())
}

func TestOpenClosesPrevious(t *testing.T) {
	var closed []string
	m := NewManager(0, func(s *Session) { closed = append(closed, s.ID) })

	first := m.Open(testCalendar())
	second := m.Open(testCalendar())
	if first.ID == second.ID {
		t.Fatal("sessions should get distinct ids")
	}
	if len(closed) != 1 || closed[0] != first.ID {
		t.Errorf("closed = %v, want [%s]", closed, first.ID)
	}

	cur, ok := m.Current()
	if !ok || cur.ID != second.ID {
		t.Errorf("current = %v, %v", cur.ID, ok)
	}

	m.Close()
	m.Close()
	if _, ok := m.Current(); ok {
		t.Error("session still open after Close")
	}
	if len(closed) != 2 {
		t.Errorf("closed = %v, want two teardowns", closed)
	}
}

func TestDismissal(t *testing.T) {
	m := NewManager(0, nil)
	m.Open(testCalendar())

	if m.HandleKey("Enter") {
		t.Error("non-Escape key must not close")
	}
	if _, ok := m.Current(); !ok {
		t.Fatal("session closed by non-Escape key")
	}
	if !m.HandleKey(EscapeKey) {
		t.Error("Escape should close")
	}
	if m.HandleKey(EscapeKey) {
		t.Error("Escape with nothing open should report false")
	}

	m.Open(testCalendar())
	if closed, err := m.HandleClick(TargetPopover); closed || err != nil {
		t.Errorf("popover click: %v, %v", closed, err)
	}
	if closed, err := m.HandleClick(TargetBackdrop); !closed || err != nil {
		t.Errorf("backdrop click: %v, %v", closed, err)
	}
	if _, err := m.HandleClick(TargetBackdrop); !errors.Is(err, ErrNoSession) {
		t.Errorf("click without session: %v", err)
	}
}

func TestSurfaceClickHidesPopover(t *testing.T) {
	m := NewManager(0, nil)
	m.Open(testCalendar())

	vp := Viewport{Width: 1600, Height: 900}
	if _, err := m.Select("M-0", Box{Left: 100, Top: 100, Width: 200, Height: 66}, vp, 300); err != nil {
		t.Fatal(err)
	}
	cur, _ := m.Current()
	if cur.Popover == nil {
		t.Fatal("popover not recorded")
	}

	if closed, err := m.HandleClick(TargetSurface); closed || err != nil {
		t.Fatalf("surface click: %v, %v", closed, err)
	}
	cur, ok := m.Current()
	if !ok || cur.Popover != nil {
		t.Errorf("surface click should hide only the popover: open=%v popover=%v", ok, cur.Popover)
	}
}

func TestSelect(t *testing.T) {
	m := NewManager(0, nil)
	vp := Viewport{Width: 1600, Height: 900}

	if _, err := m.Select("M-0", Box{}, vp, 200); !errors.Is(err, ErrNoSession) {
		t.Errorf("select without session: %v", err)
	}

	m.Open(testCalendar())
	if _, err := m.Select("T-0", Box{}, vp, 200); !errors.Is(err, ErrUnknownEvent) {
		t.Errorf("select unknown: %v", err)
	}

	pop, err := m.Select("M-0", Box{Left: 100, Top: 120, Width: 200, Height: 66}, vp, 200)
	if err != nil {
		t.Fatal(err)
	}
	if pop.Code != "CSE 142" || pop.TimeText != "10:00 - 10:50" || pop.Restriction != "https://example.edu/r" {
		t.Errorf("popover = %+v", pop)
	}
	if pop.Left != 310 || pop.Top != 120 || pop.Width != DefaultPopoverWidth {
		t.Errorf("popover position = %v,%v width %v", pop.Left, pop.Top, pop.Width)
	}
	if len(pop.Details) != 1 || pop.Details[0].Value != "12345" {
		t.Errorf("details = %+v", pop.Details)
	}
	// Department and restrictions link ride on the panel, not in Details.
	if pop.DeptName != "Computer Science & Engineering" {
		t.Errorf("dept name = %q", pop.DeptName)
	}
	for _, d := range pop.Details {
		if d.Label == "Department" || d.Value == "https://example.edu/r" {
			t.Errorf("unexpected detail row %+v", d)
		}
	}
}

func TestPosition(t *testing.T) {
	vp := Viewport{Width: 1000, Height: 800}
	tests := []struct {
		name     string
		anchor   Box
		height   float64
		wantLeft float64
		wantTop  float64
	}{
		{"right side", Box{Left: 100, Top: 50, Width: 100, Height: 40}, 200, 210, 50},
		{"flips left", Box{Left: 700, Top: 50, Width: 100, Height: 40}, 200, 370, 50},
		{"lifted from bottom", Box{Left: 100, Top: 700, Width: 100, Height: 40}, 200, 210, 580},
		{"clamped at left edge", Box{Left: 200, Top: 50, Width: 700, Height: 40}, 200, 0, 50},
		{"clamped at top", Box{Left: 100, Top: 10, Width: 100, Height: 40}, 900, 210, 0},
	}
	for _, tt := range tests {
		left, top := Position(tt.anchor, vp, DefaultPopoverWidth, tt.height)
		if left != tt.wantLeft || top != tt.wantTop {
			t.Errorf("%s: got (%v, %v), want (%v, %v)", tt.name, left, top, tt.wantLeft, tt.wantTop)
		}
		if left < 0 || top < 0 {
			t.Errorf("%s: panel outside viewport", tt.name)
		}
	}
}
