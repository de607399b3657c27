package timeparse

import (
	"errors"
	"testing"
)

func TestToMinutesMeridiem(t *testing.T) {
	tests := []struct {
		in   string
		want int
	}{
		{"12:00 AM", 0},
		{"12:00 PM", 720},
		{"1:30 PM", 810},
		{"11:59 pm", 1439},
		{"9:05 am", 545},
		{"10:30AM", 630},
		// No meridiem: hours below 8 are read as afternoon.
		{"1:30", 810},
		{"7:59", 1199},
		{"8:00", 480},
		{"12:15", 735},
	}
	for _, tt := range tests {
		l, ok := ParseLabel(tt.in)
		if !ok {
			t.Fatalf("ParseLabel(%q) did not match", tt.in)
		}
		got := ToMinutes(l, false)
		if got != tt.want {
			t.Errorf("ToMinutes(%q) = %d, want %d", tt.in, got, tt.want)
		}
		if got < 0 || got >= MinutesPerDay {
			t.Errorf("ToMinutes(%q) = %d out of day range", tt.in, got)
		}
	}
}

func TestParseLabelNoMatch(t *testing.T) {
	for _, in := range []string{"", "TBA", "10-11", "1:3 PM", "1:75 PM", "10:60", "To be arranged"} {
		if _, ok := ParseLabel(in); ok {
			t.Errorf("ParseLabel(%q) matched, want no match", in)
		}
	}
}

func TestParseLabelEmbedded(t *testing.T) {
	l, ok := ParseLabel("Starts at 2:20 pm in KNE 110")
	if !ok {
		t.Fatal("expected a match")
	}
	if l.Hours != 2 || l.Minutes != 20 || l.Meridiem != "PM" {
		t.Errorf("unexpected label: %+v", l)
	}
}

func TestFromISO(t *testing.T) {
	tests := []struct {
		in      string
		want    int
		wantErr bool
	}{
		{"", 0, false},
		{"00:00", 0, false},
		{"09:30", 570, false},
		{"9:30", 570, false},
		{"13:20", 800, false},
		{"23:59", 1439, false},
		{"14:30:00", 870, false},
		{"24:00", 0, true},
		{"12:60", 0, true},
		{"noon", 0, true},
		{"1230", 0, true},
		{"12:3", 0, true},
	}
	for _, tt := range tests {
		got, err := FromISO(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("FromISO(%q) err = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if err != nil && !errors.Is(err, ErrMalformed) {
			t.Errorf("FromISO(%q) err = %v, want ErrMalformed", tt.in, err)
		}
		if got != tt.want {
			t.Errorf("FromISO(%q) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

func TestFormatRange(t *testing.T) {
	if got := FormatRange(630, 680); got != "10:30 - 11:20" {
		t.Errorf("FormatRange = %q", got)
	}
	if got := FormatRange(750, 830); got != "12:30 - 1:50" {
		t.Errorf("FormatRange = %q", got)
	}
}

func TestHourLabel(t *testing.T) {
	tests := map[int]string{7: "7 AM", 11: "11 AM", 12: "12 PM", 13: "1 PM", 21: "9 PM"}
	for h, want := range tests {
		if got := HourLabel(h); got != want {
			t.Errorf("HourLabel(%d) = %q, want %q", h, got, want)
		}
	}
}
