package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/ldi/dayplan/internal/calendar"
	"github.com/ldi/dayplan/internal/db"
	"github.com/ldi/dayplan/internal/ics"
	appLog "github.com/ldi/dayplan/internal/log"
)

const dateLayout = "2006-01-02"

type Server struct {
	db      *db.DB
	surface *calendar.Surface
	loc     *time.Location
	now     func() time.Time
	server  *http.Server
}

func NewServer(database *db.DB, surface *calendar.Surface, loc *time.Location) *Server {
	if loc == nil {
		loc = time.Local
	}
	return &Server{db: database, surface: surface, loc: loc, now: time.Now}
}

// Handler returns the API routes.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /api/day", s.handleDay)
	mux.HandleFunc("GET /api/day.ics", s.handleDayICS)
	mux.HandleFunc("GET /api/deadlines", s.handleDeadlines)
	mux.HandleFunc("GET /api/tasks", s.handleTasks)
	mux.HandleFunc("POST /api/entries/move", s.handleMove)
	mux.HandleFunc("POST /api/entries/resize", s.handleResize)

	return mux
}

func (s *Server) Start(addr string) error {
	s.server = &http.Server{
		Addr:    addr,
		Handler: s.Handler(),
	}

	appLog.Info("http server listening", "addr", addr)
	return s.server.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

func (s *Server) handleTasks(w http.ResponseWriter, r *http.Request) {
	tasks, err := s.db.ListTasks(r.Context(), nil)
	s.respond(w, tasks, err)
}

func (s *Server) handleDay(w http.ResponseWriter, r *http.Request) {
	view, err := s.dayView(r.Context(), r.URL.Query().Get("date"))
	s.respond(w, view, err)
}

func (s *Server) handleDeadlines(w http.ResponseWriter, r *http.Request) {
	view, err := s.dayView(r.Context(), r.URL.Query().Get("date"))
	s.respond(w, view.Deadlines, err)
}

func (s *Server) handleDayICS(w http.ResponseWriter, r *http.Request) {
	view, err := s.dayView(r.Context(), r.URL.Query().Get("date"))
	if err != nil {
		s.respond(w, nil, err)
		return
	}
	w.Header().Set("Content-Type", "text/calendar; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="dayplan-%s.ics"`, view.Date.Format(dateLayout)))
	w.Write([]byte(ics.ExportDay(view)))
}

type gestureRequest struct {
	TaskID   string  `json:"task_id"`
	EntryID  string  `json:"entry_id"`
	Date     string  `json:"date"`
	Edge     string  `json:"edge,omitempty"`
	AnchorY  float64 `json:"anchor_y,omitempty"`
	PointerY float64 `json:"pointer_y"`
}

type gestureResponse struct {
	TaskID  string `json:"task_id"`
	EntryID string `json:"entry_id"`
	calendar.TimeRange
}

func (s *Server) handleMove(w http.ResponseWriter, r *http.Request) {
	req, day, err := s.decodeGesture(r)
	if err != nil {
		s.respond(w, nil, err)
		return
	}
	rng, err := s.surface.MoveEntry(r.Context(), day, req.TaskID, req.EntryID, req.PointerY)
	s.respond(w, gestureResponse{TaskID: req.TaskID, EntryID: req.EntryID, TimeRange: rng}, err)
}

func (s *Server) handleResize(w http.ResponseWriter, r *http.Request) {
	req, day, err := s.decodeGesture(r)
	if err != nil {
		s.respond(w, nil, err)
		return
	}
	edge, err := calendar.ParseEdge(req.Edge)
	if err != nil {
		s.respond(w, nil, badRequest(err))
		return
	}
	rng, err := s.surface.ResizeEntry(r.Context(), day, req.TaskID, req.EntryID, edge, req.AnchorY, req.PointerY)
	s.respond(w, gestureResponse{TaskID: req.TaskID, EntryID: req.EntryID, TimeRange: rng}, err)
}

func (s *Server) decodeGesture(r *http.Request) (gestureRequest, time.Time, error) {
	var req gestureRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return req, time.Time{}, badRequest(fmt.Errorf("invalid request body: %w", err))
	}
	if req.TaskID == "" || req.EntryID == "" {
		return req, time.Time{}, badRequest(errors.New("task_id and entry_id are required"))
	}
	day, err := s.parseDate(req.Date)
	return req, day, err
}

func (s *Server) dayView(ctx context.Context, date string) (calendar.DayView, error) {
	day, err := s.parseDate(date)
	if err != nil {
		return calendar.DayView{}, err
	}
	return s.surface.Day(ctx, day, s.now())
}

func (s *Server) parseDate(v string) (time.Time, error) {
	if v == "" {
		start, _ := calendar.DayBounds(s.now().In(s.loc))
		return start, nil
	}
	day, err := time.ParseInLocation(dateLayout, v, s.loc)
	if err != nil {
		return time.Time{}, badRequest(fmt.Errorf("invalid date %q: %w", v, err))
	}
	return day, nil
}

type requestError struct{ err error }

func (e requestError) Error() string { return e.err.Error() }
func (e requestError) Unwrap() error { return e.err }

func badRequest(err error) error { return requestError{err: err} }

func statusFor(err error) int {
	var reqErr requestError
	switch {
	case errors.As(err, &reqErr):
		return http.StatusBadRequest
	case errors.Is(err, calendar.ErrEventNotFound):
		return http.StatusNotFound
	case errors.Is(err, calendar.ErrConcurrentGesture), errors.Is(err, calendar.ErrSessionClosed):
		return http.StatusConflict
	case errors.Is(err, calendar.ErrCollaboratorUnavailable):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

type errorBody struct {
	Error  string `json:"error"`
	Notice string `json:"notice,omitempty"`
}

func (s *Server) respond(w http.ResponseWriter, data any, err error) {
	w.Header().Set("Content-Type", "application/json")
	if err != nil {
		status := statusFor(err)
		body := errorBody{Error: err.Error()}
		if status == http.StatusConflict || status == http.StatusBadGateway {
			body.Notice = calendar.FailureNotice(err)
		}
		w.WriteHeader(status)
		json.NewEncoder(w).Encode(body)
		return
	}
	json.NewEncoder(w).Encode(data)
}
