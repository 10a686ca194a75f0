package blueprint

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/imkarma/planner/internal/apperr"
	"github.com/imkarma/planner/internal/store"
)

func counter() IDFunc {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("id-%d", n)
	}
}

func TestMapper_AllocateIsIdempotent(t *testing.T) {
	m := NewMapper(counter())

	first := m.Tasks.Allocate("tb-a")
	second := m.Tasks.Allocate("tb-a")
	if first != second {
		t.Fatalf("expected same id for repeated allocation, got %s and %s", first, second)
	}
	if other := m.Tasks.Allocate("tb-b"); other == first {
		t.Fatalf("expected distinct ids for distinct blueprints, got %s twice", other)
	}
	if m.Tasks.Len() != 2 {
		t.Errorf("expected 2 task ids, got %d", m.Tasks.Len())
	}
}

func TestMapper_NamespacesAreIndependent(t *testing.T) {
	m := NewMapper(counter())

	mod := m.Modules.Allocate("x")
	task := m.Tasks.Allocate("x")
	if mod == task {
		t.Fatalf("module and task with the same blueprint id must not share an instance id")
	}
	if _, ok := m.Modules.Lookup("y"); ok {
		t.Error("Lookup must not allocate")
	}
	if got, ok := m.Tasks.Lookup("x"); !ok || got != task {
		t.Errorf("Lookup(x) = %q, %v", got, ok)
	}
}

func TestMapper_DefaultsToUUIDs(t *testing.T) {
	m := NewMapper(nil)
	id := m.Modules.Allocate("a")
	if len(id) != 36 {
		t.Errorf("expected a UUID, got %q", id)
	}
}

func template(deps map[string][]string) *store.Template {
	// Tasks a, b, c in one module; deps maps a task id to its prerequisites.
	mod := store.ModuleBlueprint{ID: "m1", Name: "Main"}
	for i, id := range []string{"a", "b", "c"} {
		mod.Tasks = append(mod.Tasks, store.TaskBlueprint{
			ID: id, Name: strings.ToUpper(id), OrderIndex: i, DependsOn: deps[id],
		})
	}
	return &store.Template{ID: "t1", Name: "T", IsPublic: true, Modules: []store.ModuleBlueprint{mod}}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		tmpl    *store.Template
		wantErr string
	}{
		{"chain", template(map[string][]string{"b": {"a"}, "c": {"b"}}), ""},
		{"diamond-ish", template(map[string][]string{"b": {"a"}, "c": {"a", "b"}}), ""},
		{"two-cycle", template(map[string][]string{"a": {"b"}, "b": {"a"}}), "A -> B -> A"},
		{"three-cycle", template(map[string][]string{"a": {"c"}, "b": {"a"}, "c": {"b"}}), "A -> B -> C -> A"},
		{"self", template(map[string][]string{"b": {"b"}}), "B -> B"},
		{"outside template", template(map[string][]string{"b": {"zz"}}), "not in this template"},
		{"repeated dependency", template(map[string][]string{"b": {"a", "a"}}), "more than once"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(tt.tmpl)
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if !errors.Is(err, apperr.ErrValidation) {
				t.Fatalf("expected validation error, got %v", err)
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("expected %q in %q", tt.wantErr, err.Error())
			}
		})
	}
}

func TestValidate_PrivateTemplateNeedsOrg(t *testing.T) {
	tmpl := template(nil)
	tmpl.IsPublic = false
	if err := Validate(tmpl); !errors.Is(err, apperr.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	tmpl.OrgID = "org-1"
	if err := Validate(tmpl); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestValidate_DuplicateTaskID(t *testing.T) {
	tmpl := template(nil)
	tmpl.Modules[0].Tasks[1].ID = "a"
	if err := Validate(tmpl); !errors.Is(err, apperr.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestValidate_Priority(t *testing.T) {
	for _, p := range []string{"", "low", "medium", "high", "urgent"} {
		tmpl := template(nil)
		tmpl.Modules[0].Tasks[0].Priority = p
		if err := Validate(tmpl); err != nil {
			t.Errorf("priority %q: unexpected error: %v", p, err)
		}
	}

	tmpl := template(nil)
	tmpl.Modules[0].Tasks[0].Priority = "critical"
	err := Validate(tmpl)
	if !errors.Is(err, apperr.ErrValidation) || !strings.Contains(err.Error(), "critical") {
		t.Fatalf("expected validation error naming the priority, got %v", err)
	}
}

func TestParse_RepeatedDependencyFailsValidation(t *testing.T) {
	doc := `
name: Dinner
public: true
modules:
  - key: food
    name: Food
    tasks:
      - key: menu
        name: Choose menu
      - key: order
        name: Order food
        depends_on: [menu, menu]
`
	tmpl, err := Parse([]byte(doc), "org-1")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if err := Validate(tmpl); !errors.Is(err, apperr.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

const weddingDoc = `
name: Wedding
event_category: wedding
public: true
modules:
  - key: venue
    name: Venue
    required: true
    budget: "5000.00"
    tasks:
      - key: book-hall
        name: Book hall
        priority: high
        order: 0
  - key: catering
    name: Catering
    tasks:
      - key: menu
        name: Choose menu
        order: 2
        depends_on: [book-hall]
`

func TestParse(t *testing.T) {
	tmpl, err := Parse([]byte(weddingDoc), "org-1")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if err := Validate(tmpl); err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if tmpl.OrgID != "" {
		t.Errorf("public template should not be owned, got %q", tmpl.OrgID)
	}
	if len(tmpl.Modules) != 2 {
		t.Fatalf("expected 2 modules, got %d", len(tmpl.Modules))
	}
	venue, catering := tmpl.Modules[0], tmpl.Modules[1]
	if venue.OrderIndex != 0 || catering.OrderIndex != 1 {
		t.Errorf("expected positional module order, got %d and %d", venue.OrderIndex, catering.OrderIndex)
	}
	if venue.BudgetHint.String() != "5000" {
		t.Errorf("expected budget 5000, got %s", venue.BudgetHint)
	}
	menu := catering.Tasks[0]
	if menu.OrderIndex != 2 {
		t.Errorf("expected explicit order 2, got %d", menu.OrderIndex)
	}
	if len(menu.DependsOn) != 1 || menu.DependsOn[0] != venue.Tasks[0].ID {
		t.Errorf("expected menu to depend on book-hall id, got %v", menu.DependsOn)
	}
}

func TestParse_UnknownDependencyKey(t *testing.T) {
	doc := strings.Replace(weddingDoc, "[book-hall]", "[nope]", 1)
	if _, err := Parse([]byte(doc), ""); !errors.Is(err, apperr.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "wedding.yaml")
	if err := os.WriteFile(path, []byte(strings.Replace(weddingDoc, "public: true", "public: false", 1)), 0644); err != nil {
		t.Fatal(err)
	}
	tmpl, err := LoadFile(path, "org-9")
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if tmpl.IsPublic || tmpl.OrgID != "org-9" {
		t.Errorf("expected private template owned by org-9, got public=%v org=%q", tmpl.IsPublic, tmpl.OrgID)
	}
}
