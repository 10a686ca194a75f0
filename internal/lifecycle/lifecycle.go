// Package lifecycle holds the task status state machine and the per-role
// field rules. It is pure: callers load the task, its dependencies and the
// actor, and persist whatever Apply returns.
package lifecycle

import (
	"fmt"
	"time"

	"github.com/imkarma/planner/internal/apperr"
	"github.com/imkarma/planner/internal/store"
)

// IsTerminal reports whether no ordinary transition leaves s.
func IsTerminal(s store.TaskStatus) bool {
	return s == store.StatusCompleted || s == store.StatusCancelled
}

// Valid reports whether s is a known task status.
func Valid(s store.TaskStatus) bool {
	switch s {
	case store.StatusPending, store.StatusInProgress, store.StatusCompleted,
		store.StatusBlocked, store.StatusCancelled:
		return true
	}
	return false
}

var transitions = map[store.TaskStatus][]store.TaskStatus{
	store.StatusPending:    {store.StatusInProgress, store.StatusBlocked, store.StatusCancelled},
	store.StatusInProgress: {store.StatusCompleted, store.StatusBlocked, store.StatusCancelled},
	store.StatusBlocked:    {store.StatusPending, store.StatusInProgress, store.StatusCancelled},
}

// CanTransition reports whether from -> to is an ordinary transition.
func CanTransition(from, to store.TaskStatus) bool {
	for _, s := range transitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// canReopen reports whether role may force COMPLETED back to PENDING.
func canReopen(role store.Role, from, to store.TaskStatus) bool {
	return from == store.StatusCompleted && to == store.StatusPending && privileged[role]
}

// CanStart reports whether every dependency is COMPLETED.
func CanStart(deps []store.Task) bool {
	return len(UnmetDependencies(deps)) == 0
}

// UnmetDependencies returns the dependencies that are not COMPLETED.
func UnmetDependencies(deps []store.Task) []store.Task {
	var unmet []store.Task
	for _, d := range deps {
		if d.Status != store.StatusCompleted {
			unmet = append(unmet, d)
		}
	}
	return unmet
}

// CheckReopen rejects moving a COMPLETED task back while any of its
// dependents is IN_PROGRESS or COMPLETED. dependents must be read in the
// same transaction.
func CheckReopen(task *store.Task, dependents []store.Task) error {
	var started []string
	for _, d := range dependents {
		if d.Status == store.StatusInProgress || d.Status == store.StatusCompleted {
			started = append(started, fmt.Sprintf("%s [%s] is %s", d.Name, d.ID, d.Status))
		}
	}
	if len(started) == 0 {
		return nil
	}
	e := apperr.InvalidState("cannot reopen %q: %d dependent tasks already started", task.Name, len(started))
	e.Details = started
	return e
}

// Transition validates moving task to status `to` and applies it to task in
// place, keeping CompletedAt in step with the status. deps must be the
// task's dependency tasks as read in the same transaction.
func Transition(task *store.Task, to store.TaskStatus, deps []store.Task, actor *store.User, now time.Time) error {
	from := task.Status
	if !Valid(to) {
		return apperr.Validation("status", "unknown status %q", to)
	}
	if from == to {
		return nil
	}
	if !CanTransition(from, to) && !canReopen(actor.Role, from, to) {
		if IsTerminal(from) {
			return apperr.InvalidState("task is %s; no further transitions are allowed", from)
		}
		return apperr.InvalidState("cannot move task from %s to %s", from, to)
	}
	if to == store.StatusInProgress {
		if unmet := UnmetDependencies(deps); len(unmet) > 0 {
			details := make([]string, 0, len(unmet))
			for _, d := range unmet {
				details = append(details, fmt.Sprintf("%s [%s] is %s", d.Name, d.ID, d.Status))
			}
			return apperr.DependencyNotSatisfied(details)
		}
	}

	task.Status = to
	if to == store.StatusCompleted {
		t := now.UTC()
		task.CompletedAt = &t
	} else {
		task.CompletedAt = nil
	}
	return nil
}
