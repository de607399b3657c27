package session

import (
	"fmt"

	"github.com/hangyu-feng/myplan-calendar/internal/schedule"
)

const (
	DefaultPopoverWidth = 320
	popoverGap          = 10
	popoverBottomMargin = 20
	EscapeKey           = "Escape"
)

// Target identifies what a click landed on.
type Target string

const (
	// TargetBackdrop is the area outside the calendar surface.
	TargetBackdrop Target = "backdrop"
	// TargetSurface is the calendar itself, outside any event.
	TargetSurface Target = "surface"
	// TargetPopover is the open detail panel.
	TargetPopover Target = "popover"
)

// Box is a screen rectangle in viewport pixels.
type Box struct {
	Left   float64 `json:"left"`
	Top    float64 `json:"top"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

func (b Box) Right() float64 { return b.Left + b.Width }

// Viewport is the visible area size in pixels.
type Viewport struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Popover is the detail panel for a selected event.
type Popover struct {
	PlacementID string            `json:"placement_id"`
	Code        string            `json:"code"`
	CourseName  string            `json:"course_name"`
	DeptName    string            `json:"dept_name,omitempty"`
	TimeText    string            `json:"time_text"`
	Details     []schedule.Detail `json:"details"`
	Restriction string            `json:"restrictions_link,omitempty"`
	Left        float64           `json:"left"`
	Top         float64           `json:"top"`
	Width       float64           `json:"width"`
}

// HandleKey applies a key press. Only Escape dismisses; it reports whether
// the session was closed.
func (m *Manager) HandleKey(key string) bool {
	if key != EscapeKey {
		return false
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.current == nil {
		return false
	}
	m.closeLocked()
	return true
}

// HandleClick applies a click on a non-event target and reports whether the
// session was closed. A click on the calendar surface only hides the panel.
func (m *Manager) HandleClick(target Target) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.current == nil {
		return false, ErrNoSession
	}
	switch target {
	case TargetBackdrop:
		m.closeLocked()
		return true, nil
	case TargetSurface:
		m.current.Popover = nil
		return false, nil
	case TargetPopover:
		return false, nil
	default:
		return false, fmt.Errorf("session: unknown click target %q", target)
	}
}

// Select opens the detail panel for placement id next to anchor, the event's
// on-screen box. popoverHeight is the rendered panel height.
func (m *Manager) Select(id string, anchor Box, vp Viewport, popoverHeight float64) (Popover, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.current == nil {
		return Popover{}, ErrNoSession
	}
	p, ok := m.current.Calendar.Find(id)
	if !ok {
		return Popover{}, fmt.Errorf("%w: %q", ErrUnknownEvent, id)
	}

	left, top := Position(anchor, vp, m.popoverWidth, popoverHeight)
	pop := Popover{
		PlacementID: p.ID,
		Code:        p.Event.Code,
		CourseName:  p.Event.CourseName,
		DeptName:    p.Event.DeptName,
		TimeText:    p.TimeText,
		Details:     p.Details,
		Restriction: p.Event.RestrictionsLink,
		Left:        left,
		Top:         top,
		Width:       m.popoverWidth,
	}
	m.current.Popover = &pop
	return pop, nil
}

// Position places a panel of size width x height beside anchor: to the right
// when it fits, otherwise to the left, lifted when it would run off the
// bottom, and finally clamped into the viewport.
func Position(anchor Box, vp Viewport, width, height float64) (left, top float64) {
	left = anchor.Right() + popoverGap
	if left+width > vp.Width {
		left = anchor.Left - width - popoverGap
	}
	top = anchor.Top
	if top+height > vp.Height {
		top = vp.Height - height - popoverBottomMargin
	}

	left = clamp(left, 0, vp.Width-width)
	top = clamp(top, 0, vp.Height-height)
	return left, top
}

// clamp keeps v within [lo, hi]; lo wins when the range is empty.
func clamp(v, lo, hi float64) float64 {
	if v > hi {
		v = hi
	}
	if v < lo {
		v = lo
	}
	return v
}
