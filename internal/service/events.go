package service

import (
	"context"

	"github.com/imkarma/planner/internal/apperr"
	"github.com/imkarma/planner/internal/lifecycle"
	"github.com/imkarma/planner/internal/progress"
	"github.com/imkarma/planner/internal/store"
)

// EventService reads and manages events.
type EventService struct {
	base
}

var eventTransitions = map[store.EventStatus]store.EventStatus{
	store.EventPlanning:   store.EventConfirmed,
	store.EventConfirmed:  store.EventInProgress,
	store.EventInProgress: store.EventCompleted,
}

// Get returns an event with its modules, tasks and edges.
func (s *EventService) Get(ctx context.Context, actorID, eventID string) (*store.Event, error) {
	u, err := actor(ctx, s.store, actorID)
	if err != nil {
		return nil, s.fail("get event", err)
	}
	if _, err := eventFor(ctx, s.store, u, eventID); err != nil {
		return nil, s.fail("get event", err)
	}
	e, err := s.store.GetEventGraph(ctx, eventID)
	if err != nil {
		return nil, s.fail("get event", err)
	}
	return e, nil
}

// Progress returns the completion report of an event.
func (s *EventService) Progress(ctx context.Context, actorID, eventID string) (progress.Report, error) {
	e, err := s.Get(ctx, actorID, eventID)
	if err != nil {
		return progress.Report{}, err
	}
	return progress.ForEvent(e), nil
}

// List returns the events of the actor's organization.
func (s *EventService) List(ctx context.Context, actorID string) ([]store.Event, error) {
	u, err := actor(ctx, s.store, actorID)
	if err != nil {
		return nil, s.fail("list events", err)
	}
	events, err := s.store.ListEvents(ctx, u.OrgID)
	if err != nil {
		return nil, s.fail("list events", err)
	}
	return events, nil
}

// UpdateStatus moves an event one step along
// PLANNING -> CONFIRMED -> IN_PROGRESS -> COMPLETED, or cancels it from any
// non-terminal status.
func (s *EventService) UpdateStatus(ctx context.Context, actorID, eventID string, to store.EventStatus) (*store.Event, error) {
	switch to {
	case store.EventPlanning, store.EventConfirmed, store.EventInProgress, store.EventCompleted, store.EventCancelled:
	default:
		return nil, apperr.Validation("status", "unknown event status %q", to)
	}

	var e *store.Event
	err := s.store.WithTx(ctx, func(tx *store.Store) error {
		u, err := actor(ctx, tx, actorID)
		if err != nil {
			return err
		}
		e, err = eventFor(ctx, tx, u, eventID)
		if err != nil {
			return err
		}
		if !lifecycle.IsPrivileged(u.Role) {
			return apperr.Forbidden("only managers and administrators may change event status")
		}
		if e.Status == to {
			return nil
		}
		terminal := e.Status == store.EventCompleted || e.Status == store.EventCancelled
		if terminal || (to != store.EventCancelled && eventTransitions[e.Status] != to) {
			return apperr.InvalidState("cannot move event from %s to %s", e.Status, to)
		}
		if err := tx.UpdateEventStatus(ctx, e.ID, to); err != nil {
			return err
		}
		from := e.Status
		e.Status = to
		return tx.AddActivity(ctx, store.Activity{
			EventID: e.ID,
			ActorID: u.ID,
			Type:    "status_changed",
			Content: string(from) + " -> " + string(to),
		})
	})
	if err != nil {
		return nil, s.fail("update event status", err)
	}
	return e, nil
}

// Delete removes an event that has not started yet, with everything in it.
func (s *EventService) Delete(ctx context.Context, actorID, eventID string) error {
	err := s.store.WithTx(ctx, func(tx *store.Store) error {
		u, err := actor(ctx, tx, actorID)
		if err != nil {
			return err
		}
		e, err := eventFor(ctx, tx, u, eventID)
		if err != nil {
			return err
		}
		if !lifecycle.IsPrivileged(u.Role) {
			return apperr.Forbidden("only managers and administrators may delete events")
		}
		if e.Status != store.EventPlanning && e.Status != store.EventConfirmed {
			return apperr.InvalidState("event is %s and cannot be deleted", e.Status)
		}
		return tx.DeleteEvent(ctx, e.ID)
	})
	if err != nil {
		return s.fail("delete event", err)
	}
	return nil
}

// Activity returns the activity log of an event, optionally narrowed to
// one task.
func (s *EventService) Activity(ctx context.Context, actorID, eventID, taskID string) ([]store.Activity, error) {
	u, err := actor(ctx, s.store, actorID)
	if err != nil {
		return nil, s.fail("activity", err)
	}
	if _, err := eventFor(ctx, s.store, u, eventID); err != nil {
		return nil, s.fail("activity", err)
	}
	log, err := s.store.ListActivity(ctx, eventID, taskID)
	if err != nil {
		return nil, s.fail("activity", err)
	}
	return log, nil
}
