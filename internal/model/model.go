package model

// DayCode is a weekday a section meets on. Only the five teaching days exist;
// the calendar models a single repeating week.
type DayCode string

const (
	Monday    DayCode = "M"
	Tuesday   DayCode = "T"
	Wednesday DayCode = "W"
	Thursday  DayCode = "Th"
	Friday    DayCode = "F"
)

// Week lists the day codes in calendar column order.
var Week = []DayCode{Monday, Tuesday, Wednesday, Thursday, Friday}

// Index returns the column index of d in Week, or -1 for an unknown code.
func (d DayCode) Index() int {
	for i, w := range Week {
		if w == d {
			return i
		}
	}
	return -1
}

// Name returns the short column header for d (e.g. "Mon").
func (d DayCode) Name() string {
	switch d {
	case Monday:
		return "Mon"
	case Tuesday:
		return "Tue"
	case Wednesday:
		return "Wed"
	case Thursday:
		return "Thu"
	case Friday:
		return "Fri"
	}
	return string(d)
}

// Color is a background/foreground pair used to draw one course.
type Color struct {
	Background string `json:"background" yaml:"background"`
	Foreground string `json:"foreground" yaml:"foreground"`
}

// Course represents one scheduled section as extracted from a plan item.
//
// Every string field is either populated or empty; none is ever "missing".
// Start and End are minutes since midnight with 0 <= Start < End < 1440.
type Course struct {
	Code       string `json:"code"`
	DeptName   string `json:"dept_name"`
	CourseName string `json:"course_name"`
	Title      string `json:"title"`

	Section          string `json:"section"`
	Instructor       string `json:"instructor"`
	Location         string `json:"location"`
	SLN              string `json:"sln"`
	RestrictionsLink string `json:"restrictions_link"`
	LearningFormat   string `json:"learning_format"`
	Availability     string `json:"availability"`
	Credits          string `json:"credits"`

	Days  []DayCode `json:"days"`
	Start int       `json:"start"`
	End   int       `json:"end"`

	Color Color `json:"color"`
}

// Event is a single (Course, DayCode) occurrence on the weekly grid.
//
// Column and ClusterWidth are filled in by the layout pass; Column is always
// smaller than ClusterWidth once laid out.
type Event struct {
	Course

	Day DayCode `json:"day"`

	Column       int `json:"column"`
	ClusterWidth int `json:"cluster_width"`
	Cluster      int `json:"cluster"`
}

// Overlaps reports whether the half-open time ranges of e and o intersect.
func (e Event) Overlaps(o Event) bool {
	return e.Start < o.End && o.Start < e.End
}

// Rect is an event's position inside a day column. Top and Height are pixels
// relative to the top of the hour grid; Left and Width are percentages of the
// day column width.
type Rect struct {
	Top    float64 `json:"top"`
	Height float64 `json:"height"`
	Left   float64 `json:"left"`
	Width  float64 `json:"width"`
}
