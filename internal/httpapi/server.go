// Package httpapi serves the salat view model over HTTP for `salat serve`.
package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/log"

	"github.com/five82/salat/internal/metrics"
	"github.com/five82/salat/internal/prayer"
	"github.com/five82/salat/internal/state"
	"github.com/five82/salat/internal/syncer"
)

// Session is the part of syncer.Session the API drives.
type Session interface {
	Snapshot() state.Snapshot
	PreviousDay() error
	NextDay() error
	GoTo(day prayer.Date) error
	Reload() error
	Toggle(id int) error
}

var _ Session = (*syncer.Session)(nil)

type Server struct {
	session Session
}

func NewServer(session Session) *Server {
	return &Server{session: session}
}

// Router builds the full handler tree including /health and /metrics.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.RealIP)
	r.Use(middleware.RequestID)
	r.Use(requestLogger)
	r.Use(metrics.Middleware)

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Method(http.MethodGet, "/metrics", metrics.Handler())

	r.Route("/api", func(r chi.Router) {
		s.RegisterRoutes(r)
	})
	return r
}

func (s *Server) RegisterRoutes(r chi.Router) {
	r.Get("/day", s.handleDay)
	r.Post("/day/previous", s.handleNavigate(s.session.PreviousDay))
	r.Post("/day/next", s.handleNavigate(s.session.NextDay))
	r.Post("/day/reload", s.handleNavigate(s.session.Reload))
	r.Post("/day/{date}", s.handleGoTo)
	r.Post("/prayers/{id}/toggle", s.handleToggle)
}

type dayResponse struct {
	Date        prayer.Date        `json:"date"`
	Loading     bool               `json:"loading"`
	Error       string             `json:"error,omitempty"`
	Completed   int                `json:"completed"`
	Total       int                `json:"total"`
	Location    *prayer.Coordinate `json:"location"`
	Prayers     prayer.DayView     `json:"prayers"`
	Generation  uint64             `json:"generation"`
	LastUpdated time.Time          `json:"last_updated"`
}

func newDayResponse(snap state.Snapshot) dayResponse {
	prayers := snap.Prayers
	if prayers == nil {
		prayers = prayer.DayView{}
	}
	return dayResponse{
		Date:        snap.CurrentDay,
		Loading:     snap.Loading,
		Error:       snap.ErrorMsg,
		Completed:   snap.Completed(),
		Total:       prayer.Count,
		Location:    snap.Location,
		Prayers:     prayers,
		Generation:  snap.Generation,
		LastUpdated: snap.LastUpdated,
	}
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func (s *Server) handleDay(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, newDayResponse(s.session.Snapshot()))
}

// handleNavigate runs op and returns the resulting view. Load failures are
// part of the view (error field), so they still answer 200.
func (s *Server) handleNavigate(op func() error) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		if err := op(); err != nil {
			log.Debug().Err(err).Msg("navigation finished with error")
		}
		writeJSON(w, http.StatusOK, newDayResponse(s.session.Snapshot()))
	}
}

func (s *Server) handleGoTo(w http.ResponseWriter, r *http.Request) {
	day, err := prayer.ParseDate(chi.URLParam(r, "date"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	s.handleNavigate(func() error { return s.session.GoTo(day) })(w, r)
}

func (s *Server) handleToggle(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil || !prayer.ValidID(id) {
		writeError(w, http.StatusBadRequest, "invalid prayer id")
		return
	}
	if err := s.session.Toggle(id); err != nil {
		if syncer.KindOf(err) != syncer.StorageUnavailable {
			writeError(w, http.StatusConflict, err.Error())
			return
		}
		log.Warn().Err(err).Int("id", id).Msg("toggle not persisted")
	}
	writeJSON(w, http.StatusOK, newDayResponse(s.session.Snapshot()))
}

func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		log.Debug().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Dur("duration", time.Since(start)).
			Str("request_id", middleware.GetReqID(r.Context())).
			Msg("http request")
	})
}

// ListenAndServe serves until ctx is cancelled, then shuts down gracefully.
func ListenAndServe(ctx context.Context, addr string, handler http.Handler) error {
	httpSrv := &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", addr).Msg("http server started")
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	log.Info().Msg("http server shutting down")
	return httpSrv.Shutdown(shutdownCtx)
}
