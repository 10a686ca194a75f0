package store

import (
	"context"
	"fmt"
	"time"
)

const (
	templateColumns       = `id, name, event_category, region, is_public, org_id, created_at`
	moduleBlueprintColumn = `id, template_id, name, description, category, order_index, required, budget_hint, duration_days`
	taskBlueprintColumns  = `id, module_id, template_id, name, description, priority, estimated_hours, order_index`
)

// CreateTemplate inserts a template with its module and task blueprints and
// their dependency edges. All ids must already be assigned. Callers wanting
// all-or-nothing behaviour run it inside WithTx.
func (s *Store) CreateTemplate(ctx context.Context, t *Template) error {
	if t.CreatedAt.IsZero() {
		t.CreatedAt = time.Now().UTC()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO templates (`+templateColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		t.ID, t.Name, t.EventCategory, t.Region, t.IsPublic, t.OrgID, t.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert template: %w", err)
	}

	for i := range t.Modules {
		m := &t.Modules[i]
		m.TemplateID = t.ID
		_, err := s.db.ExecContext(ctx,
			`INSERT INTO template_modules (`+moduleBlueprintColumn+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			m.ID, m.TemplateID, m.Name, m.Description, m.Category, m.OrderIndex, m.Required, m.BudgetHint, m.DurationDays,
		)
		if err != nil {
			return fmt.Errorf("insert module blueprint %q: %w", m.Name, err)
		}
		for j := range m.Tasks {
			tb := &m.Tasks[j]
			tb.ModuleID = m.ID
			tb.TemplateID = t.ID
			if tb.Priority == "" {
				tb.Priority = "medium"
			}
			_, err := s.db.ExecContext(ctx,
				`INSERT INTO template_tasks (`+taskBlueprintColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
				tb.ID, tb.ModuleID, tb.TemplateID, tb.Name, tb.Description, tb.Priority, tb.EstimatedHours, tb.OrderIndex,
			)
			if err != nil {
				return fmt.Errorf("insert task blueprint %q: %w", tb.Name, err)
			}
		}
	}

	// Edges go in after every task row exists.
	for _, m := range t.Modules {
		for _, tb := range m.Tasks {
			for _, dep := range tb.DependsOn {
				_, err := s.db.ExecContext(ctx,
					`INSERT INTO template_task_deps (task_id, depends_on_id) VALUES (?, ?)`,
					tb.ID, dep,
				)
				if err != nil {
					return fmt.Errorf("insert blueprint dependency %s -> %s: %w", tb.ID, dep, err)
				}
			}
		}
	}
	return nil
}

// GetTemplate returns a template with its full blueprint graph. Modules and
// tasks are ordered by their ordering index.
func (s *Store) GetTemplate(ctx context.Context, id string) (*Template, error) {
	var t Template
	err := s.db.GetContext(ctx, &t, `SELECT `+templateColumns+` FROM templates WHERE id = ?`, id)
	if err != nil {
		return nil, notFound(err, "get template")
	}

	var modules []ModuleBlueprint
	err = s.db.SelectContext(ctx, &modules,
		`SELECT `+moduleBlueprintColumn+` FROM template_modules WHERE template_id = ? ORDER BY order_index, id`, id)
	if err != nil {
		return nil, fmt.Errorf("get template modules: %w", err)
	}

	var tasks []TaskBlueprint
	err = s.db.SelectContext(ctx, &tasks,
		`SELECT `+taskBlueprintColumns+` FROM template_tasks WHERE template_id = ? ORDER BY order_index, id`, id)
	if err != nil {
		return nil, fmt.Errorf("get template tasks: %w", err)
	}

	var deps []struct {
		TaskID    string `db:"task_id"`
		DependsOn string `db:"depends_on_id"`
	}
	err = s.db.SelectContext(ctx, &deps,
		`SELECT d.task_id, d.depends_on_id FROM template_task_deps d
		 JOIN template_tasks t ON t.id = d.task_id
		 WHERE t.template_id = ? ORDER BY d.task_id, d.depends_on_id`, id)
	if err != nil {
		return nil, fmt.Errorf("get template dependencies: %w", err)
	}

	depsByTask := make(map[string][]string)
	for _, d := range deps {
		depsByTask[d.TaskID] = append(depsByTask[d.TaskID], d.DependsOn)
	}

	moduleIdx := make(map[string]int, len(modules))
	for i := range modules {
		moduleIdx[modules[i].ID] = i
	}
	for _, tb := range tasks {
		tb.DependsOn = depsByTask[tb.ID]
		i, ok := moduleIdx[tb.ModuleID]
		if !ok {
			continue
		}
		modules[i].Tasks = append(modules[i].Tasks, tb)
	}

	t.Modules = modules
	return &t, nil
}

// ListTemplates returns public templates plus those owned by orgID, without
// their blueprint graphs.
func (s *Store) ListTemplates(ctx context.Context, orgID string) ([]Template, error) {
	var templates []Template
	err := s.db.SelectContext(ctx, &templates,
		`SELECT `+templateColumns+` FROM templates WHERE is_public = 1 OR org_id = ? ORDER BY name`, orgID)
	if err != nil {
		return nil, fmt.Errorf("list templates: %w", err)
	}
	return templates, nil
}
