package store

import (
	"context"
	"fmt"
	"time"
)

const (
	eventColumns  = `id, name, description, status, start_date, end_date, venue, budget, guest_count, org_id, client_id, manager_id, template_id, created_at, updated_at`
	moduleColumns = `id, event_id, name, description, category, budget, duration_days, order_index`
)

// CreateEvent inserts an event row. CreatedAt/UpdatedAt are set when zero.
func (s *Store) CreateEvent(ctx context.Context, e *Event) error {
	now := time.Now().UTC()
	if e.CreatedAt.IsZero() {
		e.CreatedAt = now
	}
	if e.UpdatedAt.IsZero() {
		e.UpdatedAt = e.CreatedAt
	}
	if e.Status == "" {
		e.Status = EventPlanning
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO events (`+eventColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		e.ID, e.Name, e.Description, string(e.Status), e.StartDate, e.EndDate, e.Venue, e.Budget,
		e.GuestCount, e.OrgID, e.ClientID, e.ManagerID, e.TemplateID, e.CreatedAt, e.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert event: %w", err)
	}
	return nil
}

// GetEvent returns a single event row without its modules.
func (s *Store) GetEvent(ctx context.Context, id string) (*Event, error) {
	var e Event
	err := s.db.GetContext(ctx, &e, `SELECT `+eventColumns+` FROM events WHERE id = ?`, id)
	if err != nil {
		return nil, notFound(err, "get event")
	}
	return &e, nil
}

// GetEventGraph returns an event with its modules, tasks and the dependency
// edges of every task, ordered by ordering index.
func (s *Store) GetEventGraph(ctx context.Context, id string) (*Event, error) {
	e, err := s.GetEvent(ctx, id)
	if err != nil {
		return nil, err
	}

	modules, err := s.ListModules(ctx, id)
	if err != nil {
		return nil, err
	}

	tasks, err := s.ListTasksByEvent(ctx, id)
	if err != nil {
		return nil, err
	}

	moduleIdx := make(map[string]int, len(modules))
	for i := range modules {
		moduleIdx[modules[i].ID] = i
	}
	for _, t := range tasks {
		if i, ok := moduleIdx[t.ModuleID]; ok {
			modules[i].Tasks = append(modules[i].Tasks, t)
		}
	}
	e.Modules = modules
	return e, nil
}

// ListEvents returns the events of an organization, newest first.
func (s *Store) ListEvents(ctx context.Context, orgID string) ([]Event, error) {
	var events []Event
	err := s.db.SelectContext(ctx, &events,
		`SELECT `+eventColumns+` FROM events WHERE org_id = ? ORDER BY created_at DESC, id`, orgID)
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	return events, nil
}

// UpdateEventStatus changes the status of an event.
func (s *Store) UpdateEventStatus(ctx context.Context, id string, status EventStatus) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE events SET status = ?, updated_at = ? WHERE id = ?`,
		string(status), time.Now().UTC(), id,
	)
	if err != nil {
		return fmt.Errorf("update event status: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("update event status: %w", ErrNotFound)
	}
	return nil
}

// DeleteEvent removes an event; modules, tasks and edges cascade.
func (s *Store) DeleteEvent(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM events WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete event: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("delete event: %w", ErrNotFound)
	}
	return nil
}

// CreateModule inserts a module instance.
func (s *Store) CreateModule(ctx context.Context, m *Module) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO modules (`+moduleColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		m.ID, m.EventID, m.Name, m.Description, m.Category, m.Budget, m.DurationDays, m.OrderIndex,
	)
	if err != nil {
		return fmt.Errorf("insert module %q: %w", m.Name, err)
	}
	return nil
}

// ListModules returns the modules of an event without their tasks.
func (s *Store) ListModules(ctx context.Context, eventID string) ([]Module, error) {
	var modules []Module
	err := s.db.SelectContext(ctx, &modules,
		`SELECT `+moduleColumns+` FROM modules WHERE event_id = ? ORDER BY order_index, id`, eventID)
	if err != nil {
		return nil, fmt.Errorf("list modules: %w", err)
	}
	return modules, nil
}
