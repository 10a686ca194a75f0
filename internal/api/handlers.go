package api

import (
	"net/http"
	"time"

	"github.com/shopspring/decimal"

	"github.com/imkarma/planner/internal/apperr"
	"github.com/imkarma/planner/internal/lifecycle"
	"github.com/imkarma/planner/internal/service"
	"github.com/imkarma/planner/internal/store"
)

func (s *Server) listTemplates(w http.ResponseWriter, r *http.Request) {
	ts, err := s.svc.Templates.List(r.Context(), actorID(r))
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, ts)
}

func (s *Server) getTemplate(w http.ResponseWriter, r *http.Request) {
	t, err := s.svc.Templates.Get(r.Context(), actorID(r), r.PathValue("id"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, t)
}

// applyRequest is the body of POST /templates/{id}/apply. Dates are
// YYYY-MM-DD or RFC 3339.
type applyRequest struct {
	Name             string                            `json:"name"`
	Description      string                            `json:"description"`
	StartDate        string                            `json:"start_date"`
	EndDate          string                            `json:"end_date"`
	Venue            string                            `json:"venue"`
	Budget           decimal.Decimal                   `json:"budget"`
	GuestCount       int                               `json:"guest_count"`
	ClientID         string                            `json:"client_id"`
	ExcludeModuleIDs []string                          `json:"exclude_module_ids"`
	ModuleOverrides  map[string]service.ModuleOverride `json:"module_overrides"`
}

func parseDate(field, v string) (time.Time, error) {
	if v == "" {
		return time.Time{}, nil
	}
	if t, err := time.Parse(time.DateOnly, v); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339, v)
	if err != nil {
		return time.Time{}, apperr.Validation(field, "%q is not a date", v)
	}
	return t, nil
}

func (s *Server) applyTemplate(w http.ResponseWriter, r *http.Request) {
	var req applyRequest
	if !s.decode(w, r, &req) {
		return
	}
	start, err := parseDate("start_date", req.StartDate)
	if err != nil {
		s.writeError(w, err)
		return
	}
	end, err := parseDate("end_date", req.EndDate)
	if err != nil {
		s.writeError(w, err)
		return
	}

	e, err := s.svc.Instantiator.Instantiate(r.Context(), actorID(r), r.PathValue("id"),
		service.EventParams{
			Name:        req.Name,
			Description: req.Description,
			StartDate:   start,
			EndDate:     end,
			Venue:       req.Venue,
			Budget:      req.Budget,
			GuestCount:  req.GuestCount,
			ClientID:    req.ClientID,
		},
		service.Customizations{
			ExcludeModuleIDs: req.ExcludeModuleIDs,
			ModuleOverrides:  req.ModuleOverrides,
		})
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, e)
}

func (s *Server) listEvents(w http.ResponseWriter, r *http.Request) {
	events, err := s.svc.Events.List(r.Context(), actorID(r))
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, events)
}

func (s *Server) getEvent(w http.ResponseWriter, r *http.Request) {
	e, err := s.svc.Events.Get(r.Context(), actorID(r), r.PathValue("id"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, e)
}

func (s *Server) updateEvent(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Status store.EventStatus `json:"status"`
	}
	if !s.decode(w, r, &req) {
		return
	}
	e, err := s.svc.Events.UpdateStatus(r.Context(), actorID(r), r.PathValue("id"), req.Status)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, e)
}

func (s *Server) deleteEvent(w http.ResponseWriter, r *http.Request) {
	if err := s.svc.Events.Delete(r.Context(), actorID(r), r.PathValue("id")); err != nil {
		s.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) eventProgress(w http.ResponseWriter, r *http.Request) {
	report, err := s.svc.Events.Progress(r.Context(), actorID(r), r.PathValue("id"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

func (s *Server) eventActivity(w http.ResponseWriter, r *http.Request) {
	log, err := s.svc.Events.Activity(r.Context(), actorID(r), r.PathValue("id"), r.URL.Query().Get("task_id"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, log)
}

func (s *Server) getTask(w http.ResponseWriter, r *http.Request) {
	t, err := s.svc.Tasks.Get(r.Context(), actorID(r), r.PathValue("id"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, t)
}

func (s *Server) updateTask(w http.ResponseWriter, r *http.Request) {
	var u lifecycle.Update
	if !s.decode(w, r, &u) {
		return
	}
	t, err := s.svc.Tasks.Transition(r.Context(), r.PathValue("id"), u, actorID(r))
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, t)
}

func (s *Server) deleteTask(w http.ResponseWriter, r *http.Request) {
	if err := s.svc.Tasks.Delete(r.Context(), r.PathValue("id"), actorID(r)); err != nil {
		s.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
