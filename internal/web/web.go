package web

import (
	"context"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"strings"
	"sync"

	"github.com/hangyu-feng/myplan-calendar/internal/config"
	"github.com/hangyu-feng/myplan-calendar/internal/extract"
	"github.com/hangyu-feng/myplan-calendar/internal/ics"
	appLog "github.com/hangyu-feng/myplan-calendar/internal/log"
	"github.com/hangyu-feng/myplan-calendar/internal/render"
	"github.com/hangyu-feng/myplan-calendar/internal/schedule"
	"github.com/hangyu-feng/myplan-calendar/internal/session"
	"github.com/hangyu-feng/myplan-calendar/internal/source"
)

// NoCoursesMessage is shown when a snapshot yields nothing to schedule.
const NoCoursesMessage = "No courses found! Make sure you are on the 'Planned' or 'Schedule' page and course times are visible."

// Server provides the HTTP API around the single calendar session.
type Server struct {
	cfg      *config.Config
	mux      *http.ServeMux
	src      source.Source
	sessions *session.Manager

	// loadMu serializes rebuilds; the refresh job and API requests may race.
	loadMu sync.Mutex

	skippedMu sync.RWMutex
	skipped   []extract.Skipped
}

// embeddedStatic holds the small viewer page served at /.
//
//go:embed all:static
var embeddedStatic embed.FS

// NewServer constructs a new Server.
func NewServer(cfg *config.Config, src source.Source, sessions *session.Manager) *Server {
	s := &Server{
		cfg:      cfg,
		mux:      http.NewServeMux(),
		src:      src,
		sessions: sessions,
	}
	s.registerRoutes()
	return s
}

// Handler returns the underlying http.Handler for this server.
func (s *Server) Handler() http.Handler {
	h := http.Handler(s.mux)
	if s.basicAuthEnabled() {
		appLog.Info("HTTP basic auth enabled", "listen", "http://"+s.cfg.Listen)
		return s.basicAuthMiddleware(h)
	}
	return h
}

func (s *Server) registerRoutes() {
	s.mux.HandleFunc("GET /health", s.handleHealth)
	s.mux.HandleFunc("GET /api/calendar", s.handleCalendar)
	s.mux.HandleFunc("POST /api/calendar/open", s.handleOpen)
	s.mux.HandleFunc("POST /api/calendar/close", s.handleClose)
	s.mux.HandleFunc("POST /api/calendar/select", s.handleSelect)
	s.mux.HandleFunc("POST /api/calendar/dismiss", s.handleDismiss)
	s.mux.HandleFunc("GET /calendar.svg", s.handleSVG)
	s.mux.HandleFunc("GET /calendar.ics", s.handleICS)

	s.mux.Handle("/", s.staticFileServer())
}

// Reload reads a fresh snapshot, rebuilds the calendar and replaces the open
// session with it. An empty result leaves the current session untouched and
// returns extract.ErrNoCourses.
func (s *Server) Reload(ctx context.Context) (session.Session, error) {
	s.loadMu.Lock()
	defer s.loadMu.Unlock()

	items, err := s.src.Load(ctx)
	if err != nil {
		return session.Session{}, fmt.Errorf("load plan items: %w", err)
	}
	res := extract.Extract(items)

	s.skippedMu.Lock()
	s.skipped = res.Skipped
	s.skippedMu.Unlock()

	if len(res.Courses) == 0 {
		return session.Session{}, extract.ErrNoCourses
	}
	cal := schedule.Build(res.Courses, s.cfg.Grid)
	return s.sessions.Open(cal), nil
}

// current returns the open session, opening one on first use.
func (s *Server) current(ctx context.Context) (session.Session, error) {
	if sess, ok := s.sessions.Current(); ok {
		return sess, nil
	}
	return s.Reload(ctx)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}

// calendarResponse is the JSON shape of /api/calendar and /api/calendar/open.
type calendarResponse struct {
	Session session.Session   `json:"session"`
	Skipped []extract.Skipped `json:"skipped,omitempty"`
}

func (s *Server) calendarResponse(sess session.Session) calendarResponse {
	s.skippedMu.RLock()
	defer s.skippedMu.RUnlock()
	return calendarResponse{Session: sess, Skipped: s.skipped}
}

func (s *Server) handleCalendar(w http.ResponseWriter, r *http.Request) {
	sess, err := s.current(r.Context())
	if err != nil {
		s.writeLoadError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, s.calendarResponse(sess))
}

func (s *Server) handleOpen(w http.ResponseWriter, r *http.Request) {
	sess, err := s.Reload(r.Context())
	if err != nil {
		s.writeLoadError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, s.calendarResponse(sess))
}

func (s *Server) handleClose(w http.ResponseWriter, _ *http.Request) {
	s.sessions.Close()
	w.WriteHeader(http.StatusNoContent)
}

// selectRequest carries the clicked placement and where it sits on screen.
type selectRequest struct {
	ID            string           `json:"id"`
	Anchor        session.Box      `json:"anchor"`
	Viewport      session.Viewport `json:"viewport"`
	PopoverHeight float64          `json:"popover_height"`
}

func (s *Server) handleSelect(w http.ResponseWriter, r *http.Request) {
	var req selectRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if req.ID == "" {
		writeError(w, http.StatusBadRequest, "id is required")
		return
	}

	pop, err := s.sessions.Select(req.ID, req.Anchor, req.Viewport, req.PopoverHeight)
	switch {
	case errors.Is(err, session.ErrNoSession):
		writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, session.ErrUnknownEvent):
		writeError(w, http.StatusNotFound, err.Error())
	case err != nil:
		writeError(w, http.StatusInternalServerError, err.Error())
	default:
		writeJSON(w, http.StatusOK, pop)
	}
}

// dismissRequest is either a key press or a click target.
type dismissRequest struct {
	Key    string         `json:"key,omitempty"`
	Target session.Target `json:"target,omitempty"`
}

type dismissResponse struct {
	Closed bool `json:"closed"`
}

func (s *Server) handleDismiss(w http.ResponseWriter, r *http.Request) {
	var req dismissRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if req.Key != "" {
		writeJSON(w, http.StatusOK, dismissResponse{Closed: s.sessions.HandleKey(req.Key)})
		return
	}
	if req.Target == "" {
		writeError(w, http.StatusBadRequest, "key or target is required")
		return
	}

	closed, err := s.sessions.HandleClick(req.Target)
	switch {
	case errors.Is(err, session.ErrNoSession):
		writeError(w, http.StatusConflict, err.Error())
	case err != nil:
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		writeJSON(w, http.StatusOK, dismissResponse{Closed: closed})
	}
}

func (s *Server) handleSVG(w http.ResponseWriter, r *http.Request) {
	sess, err := s.current(r.Context())
	if err != nil {
		s.writeLoadError(w, err)
		return
	}
	w.Header().Set("Content-Type", "image/svg+xml")
	w.Header().Set("Cache-Control", "no-store")
	if err := render.Write(w, sess.Calendar, render.DefaultOptions()); err != nil {
		appLog.Error("failed to write SVG response", err)
	}
}

func (s *Server) handleICS(w http.ResponseWriter, r *http.Request) {
	start, end, err := s.cfg.Term.Range()
	if err != nil {
		writeError(w, http.StatusServiceUnavailable, err.Error())
		return
	}
	sess, err := s.current(r.Context())
	if err != nil {
		s.writeLoadError(w, err)
		return
	}

	cal, err := ics.Export(sess.Calendar.Courses, ics.Options{
		Term: ics.Term{Start: start, End: end},
		Name: "MyPlan Schedule",
	})
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	w.Header().Set("Content-Type", "text/calendar; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="myplan.ics"`)
	if err := cal.SerializeTo(w); err != nil {
		appLog.Error("failed to write ICS response", err)
	}
}

func (s *Server) writeLoadError(w http.ResponseWriter, err error) {
	if errors.Is(err, extract.ErrNoCourses) {
		writeError(w, http.StatusNotFound, NoCoursesMessage)
		return
	}
	appLog.Error("calendar load failed", err)
	writeError(w, http.StatusBadGateway, "failed to load plan items")
}

// staticFileServer serves the embedded viewer page.
func (s *Server) staticFileServer() http.Handler {
	sub, err := fs.Sub(embeddedStatic, "static")
	if err != nil {
		appLog.Error("failed to initialize embedded static filesystem", err)
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "static UI not available", http.StatusServiceUnavailable)
		})
	}

	fileServer := http.FileServer(http.FS(sub))

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Unknown API paths must 404 rather than fall through to HTML.
		if r.URL.Path == "/api" || strings.HasPrefix(r.URL.Path, "/api/") {
			http.NotFound(w, r)
			return
		}
		fileServer.ServeHTTP(w, r)
	})
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<20))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("invalid request body: %w", err)
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		appLog.Error("failed to write JSON response", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	type errResp struct {
		Error string `json:"error"`
	}
	writeJSON(w, status, errResp{Error: msg})
}
