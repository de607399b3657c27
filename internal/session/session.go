// Package session owns the single open calendar and its detail panel.
//
// At most one session is open at a time. Opening a new one always tears the
// previous one down first, so no state from an earlier run is reused.
package session

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	appLog "github.com/hangyu-feng/myplan-calendar/internal/log"
	"github.com/hangyu-feng/myplan-calendar/internal/schedule"
)

var (
	ErrNoSession    = errors.New("session: no open calendar")
	ErrUnknownEvent = errors.New("session: unknown event")
)

// Session is one open calendar surface plus the currently shown detail panel.
type Session struct {
	ID       string            `json:"id"`
	OpenedAt time.Time         `json:"opened_at"`
	Calendar schedule.Calendar `json:"calendar"`
	Popover  *Popover          `json:"popover,omitempty"`
}

// Manager holds the current session. The HTTP server and the refresh job
// share it, hence the lock.
type Manager struct {
	mu           sync.Mutex
	current      *Session
	popoverWidth float64
	onClose      func(*Session)
}

// NewManager creates a Manager placing detail panels of the given preferred
// width. onClose, if set, runs for every torn-down session.
func NewManager(popoverWidth float64, onClose func(*Session)) *Manager {
	if popoverWidth <= 0 {
		popoverWidth = DefaultPopoverWidth
	}
	return &Manager{popoverWidth: popoverWidth, onClose: onClose}
}

// Open replaces any current session with a fresh one showing cal.
func (m *Manager) Open(cal schedule.Calendar) Session {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.closeLocked()
	s := &Session{
		ID:       uuid.NewString(),
		OpenedAt: time.Now(),
		Calendar: cal,
	}
	m.current = s
	appLog.Info("calendar session opened", "session", s.ID, "courses", len(cal.Courses))
	return *s
}

// Close tears the current session down. Closing with nothing open is a no-op.
func (m *Manager) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closeLocked()
}

func (m *Manager) closeLocked() {
	if m.current == nil {
		return
	}
	s := m.current
	m.current = nil
	s.Popover = nil
	appLog.Info("calendar session closed", "session", s.ID)
	if m.onClose != nil {
		m.onClose(s)
	}
}

// Current returns a copy of the open session.
func (m *Manager) Current() (Session, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.current == nil {
		return Session{}, false
	}
	return *m.current, true
}
