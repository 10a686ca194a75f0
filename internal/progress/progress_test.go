package progress

import (
	"testing"

	"github.com/imkarma/planner/internal/store"
)

func tasks(statuses ...store.TaskStatus) []store.Task {
	out := make([]store.Task, len(statuses))
	for i, s := range statuses {
		out[i] = store.Task{Status: s}
	}
	return out
}

func TestModule(t *testing.T) {
	tests := []struct {
		name  string
		tasks []store.Task
		want  int
	}{
		{"empty", nil, 0},
		{"none done", tasks(store.StatusPending, store.StatusInProgress), 0},
		{"one of three", tasks(store.StatusCompleted, store.StatusPending, store.StatusBlocked), 33},
		{"two of three", tasks(store.StatusCompleted, store.StatusCompleted, store.StatusPending), 67},
		{"cancelled is not done", tasks(store.StatusCompleted, store.StatusCancelled), 50},
		{"all done", tasks(store.StatusCompleted), 100},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Module(tt.tasks); got != tt.want {
				t.Errorf("Module() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestEvent_CountsTasksAcrossModules(t *testing.T) {
	modules := []store.Module{
		{Tasks: tasks(store.StatusCompleted)},
		{Tasks: tasks(store.StatusPending, store.StatusPending, store.StatusPending)},
		{},
	}
	// 1 of 4 tasks, not the mean of 100% and 0%.
	if got := Event(modules); got != 25 {
		t.Errorf("Event() = %d, want 25", got)
	}
	if got := Event(nil); got != 0 {
		t.Errorf("Event(nil) = %d, want 0", got)
	}
}

func TestEvent_MonotonicAsTasksComplete(t *testing.T) {
	ts := tasks(store.StatusPending, store.StatusPending, store.StatusInProgress, store.StatusBlocked, store.StatusPending)
	modules := []store.Module{{Tasks: ts[:2]}, {Tasks: ts[2:]}}
	last := Event(modules)
	for i := range ts {
		ts[i].Status = store.StatusCompleted
		got := Event(modules)
		if got < last {
			t.Fatalf("progress dropped from %d to %d after completing task %d", last, got, i)
		}
		if again := Event(modules); again != got {
			t.Fatalf("repeated call changed result: %d vs %d", got, again)
		}
		last = got
	}
	if last != 100 {
		t.Errorf("expected 100 after completing everything, got %d", last)
	}
}

func TestForEvent(t *testing.T) {
	e := &store.Event{ID: "e1", Modules: []store.Module{
		{ID: "m1", Name: "Venue", Tasks: tasks(store.StatusCompleted, store.StatusInProgress)},
		{ID: "m2", Name: "Catering", Tasks: tasks(store.StatusBlocked)},
	}}
	r := ForEvent(e)
	if r.Percent != 33 || r.Summary.Total != 3 || r.Summary.Blocked != 1 {
		t.Errorf("unexpected report: %+v", r)
	}
	if len(r.Modules) != 2 || r.Modules[0].Percent != 50 || r.Modules[1].Percent != 0 {
		t.Errorf("unexpected module progress: %+v", r.Modules)
	}
}
