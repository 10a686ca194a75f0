package service

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/imkarma/planner/internal/apperr"
	"github.com/imkarma/planner/internal/blueprint"
	"github.com/imkarma/planner/internal/lifecycle"
	"github.com/imkarma/planner/internal/metrics"
	"github.com/imkarma/planner/internal/notify"
	"github.com/imkarma/planner/internal/store"
)

// EventParams are the caller-supplied fields of a new event.
type EventParams struct {
	Name        string          `json:"name"`
	Description string          `json:"description,omitempty"`
	StartDate   time.Time       `json:"start_date"`
	EndDate     time.Time       `json:"end_date"`
	Venue       string          `json:"venue"`
	Budget      decimal.Decimal `json:"budget"`
	GuestCount  int             `json:"guest_count"`
	ClientID    string          `json:"client_id"`
}

func (p EventParams) validate() error {
	switch {
	case strings.TrimSpace(p.Name) == "":
		return apperr.Validation("name", "event name is required")
	case p.StartDate.IsZero():
		return apperr.Validation("start_date", "start date is required")
	case p.EndDate.IsZero():
		return apperr.Validation("end_date", "end date is required")
	case p.EndDate.Before(p.StartDate):
		return apperr.Validation("end_date", "end date %s is before start date %s",
			p.EndDate.Format(time.DateOnly), p.StartDate.Format(time.DateOnly))
	case strings.TrimSpace(p.Venue) == "":
		return apperr.Validation("venue", "venue is required")
	case p.Budget.IsNegative():
		return apperr.Validation("budget", "budget cannot be negative")
	case p.GuestCount < 0:
		return apperr.Validation("guest_count", "guest count cannot be negative")
	case p.ClientID == "":
		return apperr.Validation("client_id", "client is required")
	}
	return nil
}

// ModuleOverride replaces blueprint values for one module. Nil fields keep
// the blueprint value.
type ModuleOverride struct {
	Name         *string          `json:"name,omitempty"`
	Description  *string          `json:"description,omitempty"`
	Budget       *decimal.Decimal `json:"budget,omitempty"`
	DurationDays *int             `json:"duration_days,omitempty"`
}

// Customizations select and adjust the modules copied from a template.
// Both fields are keyed by module blueprint id.
type Customizations struct {
	ExcludeModuleIDs []string                  `json:"exclude_module_ids,omitempty"`
	ModuleOverrides  map[string]ModuleOverride `json:"module_overrides,omitempty"`
}

func (c Customizations) validate(t *store.Template) error {
	modules := make(map[string]*store.ModuleBlueprint, len(t.Modules))
	for i := range t.Modules {
		modules[t.Modules[i].ID] = &t.Modules[i]
	}
	for _, id := range c.ExcludeModuleIDs {
		m, ok := modules[id]
		if !ok {
			return apperr.Validation("exclude_module_ids", "module %s is not part of template %s", id, t.ID)
		}
		if m.Required {
			return apperr.Validation("exclude_module_ids", "module %q is required and cannot be excluded", m.Name)
		}
	}
	for id, o := range c.ModuleOverrides {
		if _, ok := modules[id]; !ok {
			return apperr.Validation("module_overrides", "module %s is not part of template %s", id, t.ID)
		}
		if o.Name != nil && strings.TrimSpace(*o.Name) == "" {
			return apperr.Validation("module_overrides.name", "module name cannot be empty")
		}
		if o.Budget != nil && o.Budget.IsNegative() {
			return apperr.Validation("module_overrides.budget", "module budget cannot be negative")
		}
		if o.DurationDays != nil && *o.DurationDays < 0 {
			return apperr.Validation("module_overrides.duration_days", "module duration cannot be negative")
		}
	}
	return nil
}

// Instantiator clones templates into live events.
type Instantiator struct {
	base
}

// Instantiate creates an event from a template as one atomic unit: the
// event, every module not excluded, every task of those modules and every
// dependency edge between surviving tasks. It returns the event graph as
// read back after commit.
func (s *Instantiator) Instantiate(ctx context.Context, actorID, templateID string, p EventParams, c Customizations) (*store.Event, error) {
	started := time.Now()
	e, err := s.instantiate(ctx, actorID, templateID, p, c)
	metrics.ObserveInstantiation(started, err)
	return e, err
}

func (s *Instantiator) instantiate(ctx context.Context, actorID, templateID string, p EventParams, c Customizations) (*store.Event, error) {
	u, err := actor(ctx, s.store, actorID)
	if err != nil {
		return nil, s.fail("instantiate", err)
	}
	if !lifecycle.IsPrivileged(u.Role) {
		return nil, apperr.Forbidden("only managers and administrators may create events")
	}

	t, err := s.store.GetTemplate(ctx, templateID)
	if errors.Is(err, store.ErrNotFound) || (err == nil && !t.IsPublic && t.OrgID != u.OrgID) {
		return nil, apperr.NotFound("template %s", templateID)
	}
	if err != nil {
		return nil, s.fail("instantiate", err)
	}

	if err := p.validate(); err != nil {
		return nil, err
	}
	if _, err := s.store.GetUser(ctx, p.ClientID); errors.Is(err, store.ErrNotFound) {
		return nil, apperr.Validation("client_id", "client %s does not exist", p.ClientID)
	} else if err != nil {
		return nil, s.fail("instantiate", err)
	}
	if err := c.validate(t); err != nil {
		return nil, err
	}

	eventID, err := s.apply(ctx, u, t, p, c)
	if err != nil {
		s.log.WithError(err).WithFields(logrus.Fields{
			"template_id": t.ID,
			"actor_id":    u.ID,
		}).Error("instantiation rolled back")
		return nil, apperr.InstantiationFailed()
	}

	e, err := s.store.GetEventGraph(ctx, eventID)
	if err != nil {
		return nil, s.fail("load instantiated event", err)
	}

	s.log.WithFields(logrus.Fields{
		"event_id":    e.ID,
		"template_id": t.ID,
		"modules":     len(e.Modules),
		"tasks":       len(e.Tasks()),
	}).Info("event instantiated")
	s.send(ctx, notify.Message{
		Type:       notify.EventInstantiated,
		Recipients: recipients(e.ManagerID, e.ClientID),
		EventID:    e.ID,
		Data:       map[string]string{"name": e.Name, "template_id": t.ID},
	})
	return e, nil
}

// apply writes the clone in one transaction and returns the new event id.
// Pass one creates modules and tasks, allocating instance ids through the
// mapper; pass two resolves every dependency through the mapper. A
// dependency on a task of an excluded module is dropped. A dependency on a
// task outside the template aborts the whole run.
func (s *Instantiator) apply(ctx context.Context, u *store.User, t *store.Template, p EventParams, c Customizations) (string, error) {
	excluded := make(map[string]bool, len(c.ExcludeModuleIDs))
	for _, id := range c.ExcludeModuleIDs {
		excluded[id] = true
	}
	owner := make(map[string]string) // task blueprint id -> module blueprint id
	var modules []store.ModuleBlueprint
	for _, m := range t.Modules {
		for _, tb := range m.Tasks {
			owner[tb.ID] = m.ID
		}
		if !excluded[m.ID] {
			modules = append(modules, m)
		}
	}
	sort.SliceStable(modules, func(i, j int) bool { return modules[i].OrderIndex < modules[j].OrderIndex })

	mapper := blueprint.NewMapper(s.newID)
	start := p.StartDate.UTC()
	eventID := s.newID()
	templateID := t.ID

	err := s.store.WithTx(ctx, func(tx *store.Store) error {
		now := s.now().UTC()
		e := &store.Event{
			ID:          eventID,
			Name:        p.Name,
			Description: p.Description,
			Status:      store.EventPlanning,
			StartDate:   start,
			EndDate:     p.EndDate.UTC(),
			Venue:       p.Venue,
			Budget:      p.Budget,
			GuestCount:  p.GuestCount,
			OrgID:       u.OrgID,
			ClientID:    p.ClientID,
			ManagerID:   u.ID,
			TemplateID:  &templateID,
			CreatedAt:   now,
			UpdatedAt:   now,
		}
		if err := tx.CreateEvent(ctx, e); err != nil {
			return err
		}

		for _, mb := range modules {
			m := &store.Module{
				ID:           mapper.Modules.Allocate(mb.ID),
				EventID:      eventID,
				Name:         mb.Name,
				Description:  mb.Description,
				Category:     mb.Category,
				Budget:       mb.BudgetHint,
				DurationDays: mb.DurationDays,
				OrderIndex:   mb.OrderIndex,
			}
			if o, ok := c.ModuleOverrides[mb.ID]; ok {
				o.apply(m)
			}
			if err := tx.CreateModule(ctx, m); err != nil {
				return err
			}
		}

		for _, mb := range modules {
			moduleID, _ := mapper.Modules.Lookup(mb.ID)
			for _, tb := range byOrder(mb.Tasks) {
				task := &store.Task{
					ID:             mapper.Tasks.Allocate(tb.ID),
					ModuleID:       moduleID,
					EventID:        eventID,
					Name:           tb.Name,
					Description:    tb.Description,
					Priority:       tb.Priority,
					EstimatedHours: tb.EstimatedHours,
					DueDate:        start.AddDate(0, 0, tb.OrderIndex),
					Status:         store.StatusPending,
					CreatedAt:      now,
					UpdatedAt:      now,
				}
				if err := tx.CreateTask(ctx, task); err != nil {
					return err
				}
			}
		}

		for _, mb := range modules {
			for _, tb := range mb.Tasks {
				taskID, _ := mapper.Tasks.Lookup(tb.ID)
				for _, dep := range tb.DependsOn {
					depID, ok := mapper.Tasks.Lookup(dep)
					if !ok {
						if m, inTemplate := owner[dep]; inTemplate && excluded[m] {
							continue
						}
						return errors.Errorf("task %q depends on %s, which is not in template %s", tb.Name, dep, t.ID)
					}
					if err := tx.AddDependency(ctx, taskID, depID); err != nil {
						return err
					}
				}
			}
		}

		return tx.AddActivity(ctx, store.Activity{
			EventID:   eventID,
			ActorID:   u.ID,
			Type:      "instantiated",
			Content:   fmt.Sprintf("created from template %q with %d modules and %d tasks", t.Name, len(modules), mapper.Tasks.Len()),
			Timestamp: now,
		})
	})
	if err != nil {
		return "", errors.Wrapf(err, "instantiate template %s", t.ID)
	}
	return eventID, nil
}

func (o ModuleOverride) apply(m *store.Module) {
	if o.Name != nil {
		m.Name = *o.Name
	}
	if o.Description != nil {
		m.Description = *o.Description
	}
	if o.Budget != nil {
		m.Budget = *o.Budget
	}
	if o.DurationDays != nil {
		m.DurationDays = *o.DurationDays
	}
}

func byOrder(tasks []store.TaskBlueprint) []store.TaskBlueprint {
	out := make([]store.TaskBlueprint, len(tasks))
	copy(out, tasks)
	sort.SliceStable(out, func(i, j int) bool { return out[i].OrderIndex < out[j].OrderIndex })
	return out
}
