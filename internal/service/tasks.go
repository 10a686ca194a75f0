package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/imkarma/planner/internal/apperr"
	"github.com/imkarma/planner/internal/lifecycle"
	"github.com/imkarma/planner/internal/metrics"
	"github.com/imkarma/planner/internal/notify"
	"github.com/imkarma/planner/internal/store"
)

// TaskService changes task instances.
type TaskService struct {
	base
}

// taskFor loads a task and its event, hiding both from actors of other
// organizations.
func taskFor(ctx context.Context, s *store.Store, u *store.User, taskID string) (*store.Task, *store.Event, error) {
	t, err := s.GetTask(ctx, taskID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, nil, apperr.NotFound("task %s", taskID)
	}
	if err != nil {
		return nil, nil, err
	}
	e, err := eventFor(ctx, s, u, t.EventID)
	if apperr.Kind(err) == apperr.ErrNotFound {
		return nil, nil, apperr.NotFound("task %s", taskID)
	}
	if err != nil {
		return nil, nil, err
	}
	return t, e, nil
}

// Get returns a task with its dependency ids.
func (s *TaskService) Get(ctx context.Context, actorID, taskID string) (*store.Task, error) {
	u, err := actor(ctx, s.store, actorID)
	if err != nil {
		return nil, s.fail("get task", err)
	}
	t, _, err := taskFor(ctx, s.store, u, taskID)
	if err != nil {
		return nil, s.fail("get task", err)
	}
	return t, nil
}

// Transition applies u to a task as one read-check-write transaction. A
// status in u that differs from the current one goes through the state
// machine; the other fields are checked against the actor's allow-list.
func (s *TaskService) Transition(ctx context.Context, taskID string, u lifecycle.Update, actorID string) (*store.Task, error) {
	if err := u.Validate(); err != nil {
		return nil, err
	}

	var (
		task      *store.Task
		event     *store.Event
		completed bool
		to        string
	)
	err := s.store.WithTx(ctx, func(tx *store.Store) error {
		a, err := actor(ctx, tx, actorID)
		if err != nil {
			return err
		}
		task, event, err = taskFor(ctx, tx, a, taskID)
		if err != nil {
			return err
		}
		if event.Status == store.EventCancelled {
			return apperr.InvalidState("event %s is cancelled", event.ID)
		}

		changed := u.Changed(task)
		if err := lifecycle.CheckFields(a, task, changed); err != nil {
			return err
		}
		if len(changed) == 0 {
			return nil
		}

		if u.AssignedTo != nil && *u.AssignedTo != "" && *u.AssignedTo != task.AssignedTo {
			assignee, err := tx.GetUser(ctx, *u.AssignedTo)
			if errors.Is(err, store.ErrNotFound) {
				return apperr.NotFound("user %s", *u.AssignedTo)
			}
			if err != nil {
				return err
			}
			if assignee.OrgID != event.OrgID {
				return apperr.Forbidden("user %s is not a member of the event's organization", assignee.ID)
			}
		}

		from := task.Status
		if u.Status != nil && *u.Status != from {
			to = string(*u.Status)
			deps, err := tx.ListTasksByIDs(ctx, task.DependsOn)
			if err != nil {
				return err
			}
			if from == store.StatusCompleted {
				dependents, err := tx.ListTasksByIDs(ctx, task.Dependents)
				if err != nil {
					return err
				}
				if err := lifecycle.CheckReopen(task, dependents); err != nil {
					return err
				}
			}
			if err := lifecycle.Transition(task, *u.Status, deps, a, s.now()); err != nil {
				return err
			}
			completed = task.Status == store.StatusCompleted
		}
		u.ApplyFields(task)

		if err := tx.UpdateTask(ctx, task); err != nil {
			return err
		}
		return tx.AddActivity(ctx, activityFor(task, a, from, changed))
	})
	if to != "" {
		metrics.ObserveTransition(to, err)
	}
	if err != nil {
		return nil, s.fail("update task", err)
	}

	if completed {
		s.log.WithFields(logrus.Fields{
			"task_id":  task.ID,
			"event_id": task.EventID,
		}).Info("task completed")
		s.send(ctx, notify.Message{
			Type:       notify.TaskCompleted,
			Recipients: recipients(event.ManagerID, event.ClientID),
			EventID:    task.EventID,
			TaskID:     task.ID,
			Data:       map[string]string{"name": task.Name},
		})
	}
	return task, nil
}

func activityFor(t *store.Task, a *store.User, from store.TaskStatus, changed []lifecycle.Field) store.Activity {
	act := store.Activity{EventID: t.EventID, TaskID: t.ID, ActorID: a.ID}
	var names []string
	for _, f := range changed {
		switch f {
		case lifecycle.FieldStatus:
			act.Type = "status_changed"
		case lifecycle.FieldAssignedTo:
			if act.Type == "" {
				act.Type = "assigned"
			}
		}
		names = append(names, string(f))
	}
	if act.Type == "" {
		act.Type = "updated"
	}
	act.Content = fmt.Sprintf("%s: %s", t.Name, strings.Join(names, ", "))
	if from != t.Status {
		act.Content = fmt.Sprintf("%s: %s -> %s", t.Name, from, t.Status)
	}
	return act
}

// Delete removes a task. A task other tasks depend on cannot be removed,
// nor can one that is in progress or completed.
func (s *TaskService) Delete(ctx context.Context, taskID, actorID string) error {
	err := s.store.WithTx(ctx, func(tx *store.Store) error {
		a, err := actor(ctx, tx, actorID)
		if err != nil {
			return err
		}
		task, _, err := taskFor(ctx, tx, a, taskID)
		if err != nil {
			return err
		}
		if !lifecycle.IsPrivileged(a.Role) {
			return apperr.Forbidden("only managers and administrators may delete tasks")
		}
		if len(task.Dependents) > 0 {
			return apperr.HasDependents(task.Dependents)
		}
		if task.Status == store.StatusInProgress || task.Status == store.StatusCompleted {
			return apperr.InvalidState("task is %s and cannot be deleted", task.Status)
		}
		if err := tx.DeleteTask(ctx, task.ID); err != nil {
			return err
		}
		return tx.AddActivity(ctx, store.Activity{
			EventID: task.EventID,
			TaskID:  task.ID,
			ActorID: a.ID,
			Type:    "deleted",
			Content: task.Name,
		})
	})
	if err != nil {
		return s.fail("delete task", err)
	}
	return nil
}

// CanStart reports whether every dependency of the task is completed.
func (s *TaskService) CanStart(ctx context.Context, actorID, taskID string) (bool, error) {
	t, err := s.Get(ctx, actorID, taskID)
	if err != nil {
		return false, err
	}
	deps, err := s.store.ListTasksByIDs(ctx, t.DependsOn)
	if err != nil {
		return false, s.fail("can start", err)
	}
	return lifecycle.CanStart(deps), nil
}
