// Package api exposes the planner services over HTTP. Callers identify
// themselves with the X-Actor-ID header.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/imkarma/planner/internal/apperr"
	"github.com/imkarma/planner/internal/metrics"
	"github.com/imkarma/planner/internal/service"
)

// ActorHeader carries the id of the calling user.
const ActorHeader = "X-Actor-ID"

// Server routes HTTP requests to the services.
type Server struct {
	svc *service.Services
	log *logrus.Logger
	mux *http.ServeMux
}

// NewServer registers every route.
func NewServer(svc *service.Services, logger *logrus.Logger) *Server {
	s := &Server{svc: svc, log: logger, mux: http.NewServeMux()}

	s.mux.HandleFunc("GET /healthz", s.health)
	s.mux.Handle("GET /metrics", metrics.Handler())

	s.mux.HandleFunc("GET /templates", s.listTemplates)
	s.mux.HandleFunc("GET /templates/{id}", s.getTemplate)
	s.mux.HandleFunc("POST /templates/{id}/apply", s.applyTemplate)

	s.mux.HandleFunc("GET /events", s.listEvents)
	s.mux.HandleFunc("GET /events/{id}", s.getEvent)
	s.mux.HandleFunc("PATCH /events/{id}", s.updateEvent)
	s.mux.HandleFunc("DELETE /events/{id}", s.deleteEvent)
	s.mux.HandleFunc("GET /events/{id}/progress", s.eventProgress)
	s.mux.HandleFunc("GET /events/{id}/activity", s.eventActivity)

	s.mux.HandleFunc("GET /tasks/{id}", s.getTask)
	s.mux.HandleFunc("PATCH /tasks/{id}", s.updateTask)
	s.mux.HandleFunc("DELETE /tasks/{id}", s.deleteTask)
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	s.mux.ServeHTTP(w, r)
	s.log.WithFields(logrus.Fields{
		"method":   r.Method,
		"path":     r.URL.Path,
		"duration": time.Since(start),
	}).Debug("request")
}

// Run serves on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string, shutdownTimeout time.Duration) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
	}
	errc := make(chan error, 1)
	go func() {
		s.log.Infof("Starting planner API on %s", addr)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errc; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func actorID(r *http.Request) string { return r.Header.Get(ActorHeader) }

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

type errorBody struct {
	Error   string   `json:"error"`
	Message string   `json:"message"`
	Field   string   `json:"field,omitempty"`
	Details []string `json:"details,omitempty"`
}

var statusByKind = map[error]int{
	apperr.ErrValidation:             http.StatusBadRequest,
	apperr.ErrNotFound:               http.StatusNotFound,
	apperr.ErrForbidden:              http.StatusForbidden,
	apperr.ErrDependencyNotSatisfied: http.StatusConflict,
	apperr.ErrInvalidState:           http.StatusConflict,
	apperr.ErrHasDependents:          http.StatusConflict,
	apperr.ErrInstantiationFailed:    http.StatusInternalServerError,
	apperr.ErrInternal:               http.StatusInternalServerError,
}

// writeError renders err with the status code of its kind.
func (s *Server) writeError(w http.ResponseWriter, err error) {
	kind := apperr.Kind(err)
	body := errorBody{Error: kind.Error()}
	var ae *apperr.Error
	if errors.As(err, &ae) {
		body.Message = ae.Msg
		body.Field = ae.Field
		body.Details = ae.Details
	} else {
		s.log.WithError(err).Error("unclassified error")
		body.Message = "the operation could not be completed"
	}
	writeJSON(w, statusByKind[kind], body)
}

func (s *Server) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<20))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		s.writeError(w, apperr.Validation("body", "invalid request body: %v", err))
		return false
	}
	return true
}
