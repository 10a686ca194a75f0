// Package progress derives completion percentages from task statuses.
package progress

import (
	"math"

	"github.com/imkarma/planner/internal/store"
)

// Percent returns round(100 * completed / total), or 0 when total is 0.
func Percent(completed, total int) int {
	if total == 0 {
		return 0
	}
	return int(math.Round(100 * float64(completed) / float64(total)))
}

// Module returns the completion percentage of a module's tasks.
func Module(tasks []store.Task) int {
	s := Summarize(tasks)
	return Percent(s.Completed, s.Total)
}

// Event returns the completion percentage across the tasks of all modules.
// A module with many tasks weighs more than one with few.
func Event(modules []store.Module) int {
	var s Summary
	for _, m := range modules {
		s.add(m.Tasks)
	}
	return Percent(s.Completed, s.Total)
}

// Summary counts tasks per status.
type Summary struct {
	Total      int `json:"total"`
	Pending    int `json:"pending"`
	InProgress int `json:"in_progress"`
	Completed  int `json:"completed"`
	Blocked    int `json:"blocked"`
	Cancelled  int `json:"cancelled"`
}

// Summarize counts tasks per status.
func Summarize(tasks []store.Task) Summary {
	var s Summary
	s.add(tasks)
	return s
}

func (s *Summary) add(tasks []store.Task) {
	for _, t := range tasks {
		s.Total++
		switch t.Status {
		case store.StatusPending:
			s.Pending++
		case store.StatusInProgress:
			s.InProgress++
		case store.StatusCompleted:
			s.Completed++
		case store.StatusBlocked:
			s.Blocked++
		case store.StatusCancelled:
			s.Cancelled++
		}
	}
}

// Percent is the summary's completion percentage.
func (s Summary) Percent() int { return Percent(s.Completed, s.Total) }

// ModuleProgress is one module's share of an event report.
type ModuleProgress struct {
	ModuleID string  `json:"module_id"`
	Name     string  `json:"name"`
	Percent  int     `json:"percent"`
	Summary  Summary `json:"summary"`
}

// Report is the progress of an event and each of its modules.
type Report struct {
	EventID string           `json:"event_id"`
	Percent int              `json:"percent"`
	Summary Summary          `json:"summary"`
	Modules []ModuleProgress `json:"modules"`
}

// ForEvent builds a Report from an event graph.
func ForEvent(e *store.Event) Report {
	r := Report{EventID: e.ID, Modules: make([]ModuleProgress, 0, len(e.Modules))}
	for _, m := range e.Modules {
		s := Summarize(m.Tasks)
		r.Summary.add(m.Tasks)
		r.Modules = append(r.Modules, ModuleProgress{
			ModuleID: m.ID,
			Name:     m.Name,
			Percent:  s.Percent(),
			Summary:  s,
		})
	}
	r.Percent = r.Summary.Percent()
	return r
}
