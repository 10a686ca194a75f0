package store

import (
	"time"

	"github.com/shopspring/decimal"
)

// TaskStatus represents the current state of a task instance.
type TaskStatus string

const (
	StatusPending    TaskStatus = "PENDING"
	StatusInProgress TaskStatus = "IN_PROGRESS"
	StatusCompleted  TaskStatus = "COMPLETED"
	StatusBlocked    TaskStatus = "BLOCKED"
	StatusCancelled  TaskStatus = "CANCELLED"
)

// EventStatus represents the lifecycle stage of an event.
type EventStatus string

const (
	EventPlanning   EventStatus = "PLANNING"
	EventConfirmed  EventStatus = "CONFIRMED"
	EventInProgress EventStatus = "IN_PROGRESS"
	EventCompleted  EventStatus = "COMPLETED"
	EventCancelled  EventStatus = "CANCELLED"
)

// ValidPriority reports whether p is one of low, medium, high or urgent.
func ValidPriority(p string) bool {
	switch p {
	case "low", "medium", "high", "urgent":
		return true
	}
	return false
}

// Role is the access role of a user within an organization.
type Role string

const (
	RoleAdministrator Role = "ADMINISTRATOR"
	RoleManager       Role = "MANAGER"
	RoleVendor        Role = "VENDOR"
	RoleClient        Role = "CLIENT"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleAdministrator, RoleManager, RoleVendor, RoleClient:
		return true
	}
	return false
}

// User is an actor known to the planner.
type User struct {
	ID        string    `json:"id" db:"id"`
	Name      string    `json:"name" db:"name"`
	Role      Role      `json:"role" db:"role"`
	OrgID     string    `json:"org_id" db:"org_id"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// Template is an immutable blueprint of modules and tasks.
// Public templates have an empty OrgID.
type Template struct {
	ID            string            `json:"id" db:"id"`
	Name          string            `json:"name" db:"name"`
	EventCategory string            `json:"event_category" db:"event_category"`
	Region        string            `json:"region,omitempty" db:"region"`
	IsPublic      bool              `json:"is_public" db:"is_public"`
	OrgID         string            `json:"org_id,omitempty" db:"org_id"`
	CreatedAt     time.Time         `json:"created_at" db:"created_at"`
	Modules       []ModuleBlueprint `json:"modules,omitempty" db:"-"`
}

// ModuleBlueprint is a module definition inside a template.
type ModuleBlueprint struct {
	ID           string          `json:"id" db:"id"`
	TemplateID   string          `json:"template_id" db:"template_id"`
	Name         string          `json:"name" db:"name"`
	Description  string          `json:"description,omitempty" db:"description"`
	Category     string          `json:"category,omitempty" db:"category"`
	OrderIndex   int             `json:"order_index" db:"order_index"`
	Required     bool            `json:"required" db:"required"`
	BudgetHint   decimal.Decimal `json:"budget_hint" db:"budget_hint"`
	DurationDays int             `json:"duration_days" db:"duration_days"`
	Tasks        []TaskBlueprint `json:"tasks,omitempty" db:"-"`
}

// TaskBlueprint is a task definition inside a module blueprint.
// DependsOn holds ids of other TaskBlueprints of the same template.
type TaskBlueprint struct {
	ID             string   `json:"id" db:"id"`
	ModuleID       string   `json:"module_id" db:"module_id"`
	TemplateID     string   `json:"template_id" db:"template_id"`
	Name           string   `json:"name" db:"name"`
	Description    string   `json:"description,omitempty" db:"description"`
	Priority       string   `json:"priority" db:"priority"`
	EstimatedHours float64  `json:"estimated_hours" db:"estimated_hours"`
	OrderIndex     int      `json:"order_index" db:"order_index"`
	DependsOn      []string `json:"depends_on,omitempty" db:"-"`
}

// Event is a live instance, usually created from a template.
type Event struct {
	ID          string          `json:"id" db:"id"`
	Name        string          `json:"name" db:"name"`
	Description string          `json:"description,omitempty" db:"description"`
	Status      EventStatus     `json:"status" db:"status"`
	StartDate   time.Time       `json:"start_date" db:"start_date"`
	EndDate     time.Time       `json:"end_date" db:"end_date"`
	Venue       string          `json:"venue" db:"venue"`
	Budget      decimal.Decimal `json:"budget" db:"budget"`
	GuestCount  int             `json:"guest_count" db:"guest_count"`
	OrgID       string          `json:"org_id" db:"org_id"`
	ClientID    string          `json:"client_id" db:"client_id"`
	ManagerID   string          `json:"manager_id" db:"manager_id"`
	TemplateID  *string         `json:"template_id,omitempty" db:"template_id"`
	CreatedAt   time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at" db:"updated_at"`
	Modules     []Module        `json:"modules,omitempty" db:"-"`
}

// Tasks returns every task of every module, in module order.
func (e *Event) Tasks() []Task {
	var out []Task
	for _, m := range e.Modules {
		out = append(out, m.Tasks...)
	}
	return out
}

// Module is a module instance owned by an event.
type Module struct {
	ID           string          `json:"id" db:"id"`
	EventID      string          `json:"event_id" db:"event_id"`
	Name         string          `json:"name" db:"name"`
	Description  string          `json:"description,omitempty" db:"description"`
	Category     string          `json:"category,omitempty" db:"category"`
	Budget       decimal.Decimal `json:"budget" db:"budget"`
	DurationDays int             `json:"duration_days" db:"duration_days"`
	OrderIndex   int             `json:"order_index" db:"order_index"`
	Tasks        []Task          `json:"tasks,omitempty" db:"-"`
}

// Task is a task instance. DependsOn and Dependents are loaded from the
// dependency table and always reference tasks of the same event.
type Task struct {
	ID             string     `json:"id" db:"id"`
	ModuleID       string     `json:"module_id" db:"module_id"`
	EventID        string     `json:"event_id" db:"event_id"`
	Name           string     `json:"name" db:"name"`
	Description    string     `json:"description,omitempty" db:"description"`
	Priority       string     `json:"priority" db:"priority"`
	EstimatedHours float64    `json:"estimated_hours" db:"estimated_hours"`
	ActualHours    float64    `json:"actual_hours" db:"actual_hours"`
	DueDate        time.Time  `json:"due_date" db:"due_date"`
	Status         TaskStatus `json:"status" db:"status"`
	AssignedTo     string     `json:"assigned_to,omitempty" db:"assigned_to"`
	Notes          string     `json:"notes,omitempty" db:"notes"`
	CompletedAt    *time.Time `json:"completed_at,omitempty" db:"completed_at"`
	CreatedAt      time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at" db:"updated_at"`
	DependsOn      []string   `json:"depends_on,omitempty" db:"-"`
	Dependents     []string   `json:"dependents,omitempty" db:"-"`
}

// Activity records something that happened to an event or one of its tasks.
type Activity struct {
	ID        int64     `json:"id" db:"id"`
	EventID   string    `json:"event_id" db:"event_id"`
	TaskID    string    `json:"task_id,omitempty" db:"task_id"`
	ActorID   string    `json:"actor_id,omitempty" db:"actor_id"`
	Type      string    `json:"type" db:"event_type"` // instantiated, status_changed, assigned, updated, deleted
	Content   string    `json:"content" db:"content"`
	Timestamp time.Time `json:"timestamp" db:"timestamp"`
}

// Stats holds row counts across the instance tables.
type Stats struct {
	Templates int `json:"templates" db:"templates"`
	Events    int `json:"events" db:"events"`
	Modules   int `json:"modules" db:"modules"`
	Tasks     int `json:"tasks" db:"tasks"`
	Edges     int `json:"edges" db:"edges"`
}
