package blueprint

import (
	"fmt"
	"os"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"github.com/imkarma/planner/internal/apperr"
	"github.com/imkarma/planner/internal/store"
)

// Document is the YAML form of a template. Modules and tasks are addressed
// by author-chosen keys; dependencies reference task keys.
type Document struct {
	Name          string           `yaml:"name"`
	EventCategory string           `yaml:"event_category"`
	Region        string           `yaml:"region,omitempty"`
	Public        bool             `yaml:"public"`
	Modules       []ModuleDocument `yaml:"modules"`
}

// ModuleDocument is one module of a template document.
type ModuleDocument struct {
	Key          string         `yaml:"key"`
	Name         string         `yaml:"name"`
	Description  string         `yaml:"description,omitempty"`
	Category     string         `yaml:"category,omitempty"`
	Order        *int           `yaml:"order,omitempty"` // defaults to list position
	Required     bool           `yaml:"required,omitempty"`
	Budget       string         `yaml:"budget,omitempty"`
	DurationDays int            `yaml:"duration_days,omitempty"`
	Tasks        []TaskDocument `yaml:"tasks"`
}

// TaskDocument is one task of a module document. Order is the task's
// ordering index, which also sets its due-date offset in days.
type TaskDocument struct {
	Key            string   `yaml:"key"`
	Name           string   `yaml:"name"`
	Description    string   `yaml:"description,omitempty"`
	Priority       string   `yaml:"priority,omitempty"`
	EstimatedHours float64  `yaml:"estimated_hours,omitempty"`
	Order          *int     `yaml:"order,omitempty"` // defaults to list position
	DependsOn      []string `yaml:"depends_on,omitempty"`
}

// LoadFile reads a template document from path. See Parse.
func LoadFile(path, orgID string) (*store.Template, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read template: %w", err)
	}
	return Parse(data, orgID)
}

// Parse decodes a YAML template document into a template with freshly
// assigned ids. Private templates are owned by orgID. The result is not
// validated beyond key resolution; call Validate before saving.
func Parse(data []byte, orgID string) (*store.Template, error) {
	var doc Document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, apperr.Validation("document", "parse template: %v", err)
	}

	t := &store.Template{
		ID:            uuid.NewString(),
		Name:          doc.Name,
		EventCategory: doc.EventCategory,
		Region:        doc.Region,
		IsPublic:      doc.Public,
	}
	if !doc.Public {
		t.OrgID = orgID
	}

	taskIDs := make(map[string]string)
	for _, md := range doc.Modules {
		for _, td := range md.Tasks {
			key := keyOr(td.Key, td.Name)
			if _, dup := taskIDs[key]; dup {
				return nil, apperr.Validation("tasks.key", "duplicate task key %q", key)
			}
			taskIDs[key] = uuid.NewString()
		}
	}

	for i, md := range doc.Modules {
		budget := decimal.Zero
		if md.Budget != "" {
			b, err := decimal.NewFromString(md.Budget)
			if err != nil {
				return nil, apperr.Validation("modules.budget", "module %q: invalid budget %q", md.Name, md.Budget)
			}
			budget = b
		}
		m := store.ModuleBlueprint{
			ID:           uuid.NewString(),
			Name:         md.Name,
			Description:  md.Description,
			Category:     md.Category,
			OrderIndex:   orderOr(md.Order, i),
			Required:     md.Required,
			BudgetHint:   budget,
			DurationDays: md.DurationDays,
		}
		for j, td := range md.Tasks {
			tb := store.TaskBlueprint{
				ID:             taskIDs[keyOr(td.Key, td.Name)],
				Name:           td.Name,
				Description:    td.Description,
				Priority:       td.Priority,
				EstimatedHours: td.EstimatedHours,
				OrderIndex:     orderOr(td.Order, j),
			}
			for _, dep := range td.DependsOn {
				id, ok := taskIDs[dep]
				if !ok {
					return nil, apperr.Validation("tasks.depends_on", "task %q depends on unknown key %q", td.Name, dep)
				}
				tb.DependsOn = append(tb.DependsOn, id)
			}
			m.Tasks = append(m.Tasks, tb)
		}
		t.Modules = append(t.Modules, m)
	}
	return t, nil
}

func keyOr(key, name string) string {
	if k := strings.TrimSpace(key); k != "" {
		return k
	}
	return name
}

func orderOr(order *int, pos int) int {
	if order != nil {
		return *order
	}
	return pos
}
