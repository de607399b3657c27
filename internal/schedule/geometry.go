package schedule

import "github.com/hangyu-feng/myplan-calendar/internal/model"

const (
	DefaultStartHour  = 7
	DefaultEndHour    = 22
	DefaultHourHeight = 80
)

// Grid is the fixed hour grid events are drawn on.
type Grid struct {
	StartHour  int     `json:"start_hour" yaml:"start_hour"`
	EndHour    int     `json:"end_hour" yaml:"end_hour"`
	HourHeight float64 `json:"hour_height" yaml:"hour_height"`
}

func DefaultGrid() Grid {
	return Grid{StartHour: DefaultStartHour, EndHour: DefaultEndHour, HourHeight: DefaultHourHeight}
}

// Height is the pixel height of the whole grid.
func (g Grid) Height() float64 {
	return float64(g.EndHour-g.StartHour) * g.HourHeight
}

// Contains reports whether ev lies entirely inside the grid hours.
func (g Grid) Contains(ev model.Event) bool {
	return ev.Start >= g.StartHour*60 && ev.End <= g.EndHour*60
}

// Rect places a laid-out event. Events outside the grid hours are not
// clipped: Top may be negative and Top+Height may exceed Height().
//
// The hour term uses fractional hours and the minute term is added on top,
// so an event starting off the hour sits Start%60 minutes lower than its
// clock time. Plan pages have always drawn events this way.
func (g Grid) Rect(ev model.Event) model.Rect {
	perMinute := g.HourHeight / 60
	top := (float64(ev.Start)/60-float64(g.StartHour))*g.HourHeight + float64(ev.Start%60)*perMinute

	clusterWidth := ev.ClusterWidth
	if clusterWidth < 1 {
		clusterWidth = 1
	}
	width := 100 / float64(clusterWidth)

	return model.Rect{
		Top:    top,
		Height: float64(ev.End-ev.Start) * perMinute,
		Left:   float64(ev.Column) * width,
		Width:  width,
	}
}
