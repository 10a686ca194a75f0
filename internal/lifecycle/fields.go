package lifecycle

import (
	"strings"
	"time"

	"github.com/imkarma/planner/internal/apperr"
	"github.com/imkarma/planner/internal/store"
)

// Field names a task attribute an update may change.
type Field string

const (
	FieldName           Field = "name"
	FieldDescription    Field = "description"
	FieldPriority       Field = "priority"
	FieldEstimatedHours Field = "estimated_hours"
	FieldActualHours    Field = "actual_hours"
	FieldDueDate        Field = "due_date"
	FieldStatus         Field = "status"
	FieldAssignedTo     Field = "assigned_to"
	FieldNotes          Field = "notes"
)

// FieldSet is an allow-list of fields.
type FieldSet map[Field]bool

func fields(fs ...Field) FieldSet {
	set := make(FieldSet, len(fs))
	for _, f := range fs {
		set[f] = true
	}
	return set
}

var allFields = fields(FieldName, FieldDescription, FieldPriority, FieldEstimatedHours,
	FieldActualHours, FieldDueDate, FieldStatus, FieldAssignedTo, FieldNotes)

// Roles that may edit any field of any task in their organization.
var privileged = map[store.Role]bool{
	store.RoleAdministrator: true,
	store.RoleManager:       true,
}

// fieldsByRole is the per-role allow-list. A role missing here falls back
// to assigneeFields when the actor is the task's assignee.
var fieldsByRole = map[store.Role]FieldSet{
	store.RoleAdministrator: allFields,
	store.RoleManager:       allFields,
}

var assigneeFields = fields(FieldStatus, FieldActualHours, FieldNotes)

// IsPrivileged reports whether role may manage tasks and events.
func IsPrivileged(role store.Role) bool { return privileged[role] }

// AllowedFields returns the fields actor may change on task.
func AllowedFields(actor *store.User, task *store.Task) FieldSet {
	if fs, ok := fieldsByRole[actor.Role]; ok {
		return fs
	}
	if task.AssignedTo != "" && task.AssignedTo == actor.ID {
		return assigneeFields
	}
	return nil
}

// Update is a partial change to a task. Nil fields are left alone.
type Update struct {
	Status         *store.TaskStatus `json:"status,omitempty"`
	Name           *string           `json:"name,omitempty"`
	Description    *string           `json:"description,omitempty"`
	Priority       *string           `json:"priority,omitempty"`
	EstimatedHours *float64          `json:"estimated_hours,omitempty"`
	ActualHours    *float64          `json:"actual_hours,omitempty"`
	DueDate        *time.Time        `json:"due_date,omitempty"`
	AssignedTo     *string           `json:"assigned_to,omitempty"`
	Notes          *string           `json:"notes,omitempty"`
}

// Changed returns the fields of u that differ from task, in a fixed order.
func (u Update) Changed(task *store.Task) []Field {
	var out []Field
	add := func(f Field, differs bool) {
		if differs {
			out = append(out, f)
		}
	}
	add(FieldStatus, u.Status != nil && *u.Status != task.Status)
	add(FieldName, u.Name != nil && *u.Name != task.Name)
	add(FieldDescription, u.Description != nil && *u.Description != task.Description)
	add(FieldPriority, u.Priority != nil && *u.Priority != task.Priority)
	add(FieldEstimatedHours, u.EstimatedHours != nil && *u.EstimatedHours != task.EstimatedHours)
	add(FieldActualHours, u.ActualHours != nil && *u.ActualHours != task.ActualHours)
	add(FieldDueDate, u.DueDate != nil && !u.DueDate.Equal(task.DueDate))
	add(FieldAssignedTo, u.AssignedTo != nil && *u.AssignedTo != task.AssignedTo)
	add(FieldNotes, u.Notes != nil && *u.Notes != task.Notes)
	return out
}

// CheckFields rejects the first changed field the actor may not touch.
func CheckFields(actor *store.User, task *store.Task, changed []Field) error {
	allowed := AllowedFields(actor, task)
	if allowed == nil && len(changed) > 0 {
		return apperr.Forbidden("only managers, administrators and the assignee may update this task")
	}
	for _, f := range changed {
		if !allowed[f] {
			return apperr.ForbiddenField(string(f))
		}
	}
	return nil
}

// Validate checks the values carried by u.
func (u Update) Validate() error {
	if u.Name != nil && strings.TrimSpace(*u.Name) == "" {
		return apperr.Validation(string(FieldName), "name cannot be empty")
	}
	if u.Priority != nil && !store.ValidPriority(*u.Priority) {
		return apperr.Validation(string(FieldPriority), "priority must be low, medium, high or urgent")
	}
	if u.EstimatedHours != nil && *u.EstimatedHours < 0 {
		return apperr.Validation(string(FieldEstimatedHours), "estimated hours cannot be negative")
	}
	if u.ActualHours != nil && *u.ActualHours < 0 {
		return apperr.Validation(string(FieldActualHours), "actual hours cannot be negative")
	}
	if u.Status != nil && !Valid(*u.Status) {
		return apperr.Validation(string(FieldStatus), "unknown status %q", *u.Status)
	}
	return nil
}

// ApplyFields copies every non-status field of u onto task. Status goes
// through Transition.
func (u Update) ApplyFields(task *store.Task) {
	if u.Name != nil {
		task.Name = *u.Name
	}
	if u.Description != nil {
		task.Description = *u.Description
	}
	if u.Priority != nil {
		task.Priority = *u.Priority
	}
	if u.EstimatedHours != nil {
		task.EstimatedHours = *u.EstimatedHours
	}
	if u.ActualHours != nil {
		task.ActualHours = *u.ActualHours
	}
	if u.DueDate != nil {
		task.DueDate = u.DueDate.UTC()
	}
	if u.AssignedTo != nil {
		task.AssignedTo = *u.AssignedTo
	}
	if u.Notes != nil {
		task.Notes = *u.Notes
	}
}
