package store

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
)

// taskColumns is the standard column list for task queries.
const taskColumns = `id, module_id, event_id, name, description, priority, estimated_hours, actual_hours, due_date, status, assigned_to, notes, completed_at, created_at, updated_at`

type edge struct {
	TaskID    string `db:"task_id"`
	DependsOn string `db:"depends_on_id"`
}

// CreateTask inserts a task instance without dependency edges.
func (s *Store) CreateTask(ctx context.Context, t *Task) error {
	now := time.Now().UTC()
	if t.CreatedAt.IsZero() {
		t.CreatedAt = now
	}
	if t.UpdatedAt.IsZero() {
		t.UpdatedAt = t.CreatedAt
	}
	if t.Status == "" {
		t.Status = StatusPending
	}
	if t.Priority == "" {
		t.Priority = "medium"
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO tasks (`+taskColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		t.ID, t.ModuleID, t.EventID, t.Name, t.Description, t.Priority, t.EstimatedHours, t.ActualHours,
		t.DueDate, string(t.Status), t.AssignedTo, t.Notes, t.CompletedAt, t.CreatedAt, t.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert task %q: %w", t.Name, err)
	}
	return nil
}

// AddDependency records that taskID depends on dependsOnID. Both tasks must
// belong to the same event.
func (s *Store) AddDependency(ctx context.Context, taskID, dependsOnID string) error {
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO task_dependencies (task_id, depends_on_id)
		 SELECT a.id, b.id FROM tasks a JOIN tasks b ON a.event_id = b.event_id
		 WHERE a.id = ? AND b.id = ?`,
		taskID, dependsOnID,
	)
	if err != nil {
		return fmt.Errorf("add dependency %s -> %s: %w", taskID, dependsOnID, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("add dependency %s -> %s: tasks missing or in different events", taskID, dependsOnID)
	}
	return nil
}

// GetTask returns a single task with its dependencies and dependents.
func (s *Store) GetTask(ctx context.Context, id string) (*Task, error) {
	var t Task
	err := s.db.GetContext(ctx, &t, `SELECT `+taskColumns+` FROM tasks WHERE id = ?`, id)
	if err != nil {
		return nil, notFound(err, "get task")
	}

	var edges []edge
	err = s.db.SelectContext(ctx, &edges,
		`SELECT task_id, depends_on_id FROM task_dependencies
		 WHERE task_id = ? OR depends_on_id = ? ORDER BY task_id, depends_on_id`, id, id)
	if err != nil {
		return nil, fmt.Errorf("get task edges: %w", err)
	}
	for _, e := range edges {
		if e.TaskID == id {
			t.DependsOn = append(t.DependsOn, e.DependsOn)
		}
		if e.DependsOn == id {
			t.Dependents = append(t.Dependents, e.TaskID)
		}
	}
	return &t, nil
}

// ListTasksByEvent returns every task of an event with its edges populated,
// ordered by due date.
func (s *Store) ListTasksByEvent(ctx context.Context, eventID string) ([]Task, error) {
	var tasks []Task
	err := s.db.SelectContext(ctx, &tasks,
		`SELECT `+taskColumns+` FROM tasks WHERE event_id = ? ORDER BY due_date, created_at, id`, eventID)
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}

	var edges []edge
	err = s.db.SelectContext(ctx, &edges,
		`SELECT d.task_id, d.depends_on_id FROM task_dependencies d
		 JOIN tasks t ON t.id = d.task_id
		 WHERE t.event_id = ? ORDER BY d.task_id, d.depends_on_id`, eventID)
	if err != nil {
		return nil, fmt.Errorf("list task edges: %w", err)
	}

	idx := make(map[string]int, len(tasks))
	for i := range tasks {
		idx[tasks[i].ID] = i
	}
	for _, e := range edges {
		if i, ok := idx[e.TaskID]; ok {
			tasks[i].DependsOn = append(tasks[i].DependsOn, e.DependsOn)
		}
		if i, ok := idx[e.DependsOn]; ok {
			tasks[i].Dependents = append(tasks[i].Dependents, e.TaskID)
		}
	}
	return tasks, nil
}

// ListTasksByIDs returns the tasks with the given ids, without edges.
func (s *Store) ListTasksByIDs(ctx context.Context, ids []string) ([]Task, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	query, args, err := sqlx.In(`SELECT `+taskColumns+` FROM tasks WHERE id IN (?) ORDER BY id`, ids)
	if err != nil {
		return nil, fmt.Errorf("list tasks by id: %w", err)
	}
	var tasks []Task
	if err := s.db.SelectContext(ctx, &tasks, query, args...); err != nil {
		return nil, fmt.Errorf("list tasks by id: %w", err)
	}
	return tasks, nil
}

// UpdateTask writes every mutable field of a task.
func (s *Store) UpdateTask(ctx context.Context, t *Task) error {
	t.UpdatedAt = time.Now().UTC()
	res, err := s.db.ExecContext(ctx,
		`UPDATE tasks SET name = ?, description = ?, priority = ?, estimated_hours = ?, actual_hours = ?,
		 due_date = ?, status = ?, assigned_to = ?, notes = ?, completed_at = ?, updated_at = ?
		 WHERE id = ?`,
		t.Name, t.Description, t.Priority, t.EstimatedHours, t.ActualHours,
		t.DueDate, string(t.Status), t.AssignedTo, t.Notes, t.CompletedAt, t.UpdatedAt, t.ID,
	)
	if err != nil {
		return fmt.Errorf("update task: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("update task: %w", ErrNotFound)
	}
	return nil
}

// DeleteTask removes a task and the edges it owns. The foreign key on
// depends_on_id is not relied on to protect dependents; callers check
// Dependents first.
func (s *Store) DeleteTask(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM tasks WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete task: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("delete task: %w", ErrNotFound)
	}
	return nil
}
