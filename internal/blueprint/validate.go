package blueprint

import (
	"strings"

	"github.com/imkarma/planner/internal/apperr"
	"github.com/imkarma/planner/internal/store"
)

// Validate checks a template before it is saved: required fields, unique
// ids, known priorities, dependency references that stay inside the
// template and are listed once, and an acyclic dependency relation.
// Failures are apperr validation errors.
func Validate(t *store.Template) error {
	if strings.TrimSpace(t.Name) == "" {
		return apperr.Validation("name", "template name is required")
	}
	if !t.IsPublic && t.OrgID == "" {
		return apperr.Validation("org_id", "a private template needs an owning organization")
	}

	moduleIDs := make(map[string]bool)
	taskIDs := make(map[string]bool)
	for _, m := range t.Modules {
		if strings.TrimSpace(m.Name) == "" {
			return apperr.Validation("modules.name", "module name is required")
		}
		if m.ID == "" || moduleIDs[m.ID] {
			return apperr.Validation("modules.id", "module %q has a missing or duplicate id", m.Name)
		}
		moduleIDs[m.ID] = true
		if m.BudgetHint.IsNegative() {
			return apperr.Validation("modules.budget_hint", "module %q has a negative budget", m.Name)
		}
		for _, tb := range m.Tasks {
			if strings.TrimSpace(tb.Name) == "" {
				return apperr.Validation("tasks.name", "task name is required in module %q", m.Name)
			}
			if tb.ID == "" || taskIDs[tb.ID] {
				return apperr.Validation("tasks.id", "task %q has a missing or duplicate id", tb.Name)
			}
			if tb.Priority != "" && !store.ValidPriority(tb.Priority) {
				return apperr.Validation("tasks.priority", "task %q has priority %q, want low, medium, high or urgent", tb.Name, tb.Priority)
			}
			if tb.OrderIndex < 0 {
				return apperr.Validation("tasks.order_index", "task %q has a negative ordering index", tb.Name)
			}
			taskIDs[tb.ID] = true
		}
	}

	for _, m := range t.Modules {
		for _, tb := range m.Tasks {
			seen := make(map[string]bool, len(tb.DependsOn))
			for _, dep := range tb.DependsOn {
				if !taskIDs[dep] {
					return apperr.Validation("tasks.depends_on", "task %q depends on %q, which is not in this template", tb.Name, dep)
				}
				if seen[dep] {
					return apperr.Validation("tasks.depends_on", "task %q lists dependency %q more than once", tb.Name, dep)
				}
				seen[dep] = true
			}
		}
	}

	g := newGraph(t)
	if path := g.findCycle(); path != nil {
		return apperr.Validation("tasks.depends_on", "dependency cycle: %s", strings.Join(path, " -> "))
	}
	return nil
}

// graph is the task dependency relation of a template, indexed in template
// order (module order, then task order). An edge u -> v means v depends on u.
type graph struct {
	names    []string
	outgoing [][]int
	indeg    []int
}

func newGraph(t *store.Template) *graph {
	g := &graph{}
	index := make(map[string]int)
	for _, m := range t.Modules {
		for _, tb := range m.Tasks {
			index[tb.ID] = len(g.names)
			g.names = append(g.names, tb.Name)
		}
	}
	g.outgoing = make([][]int, len(g.names))
	g.indeg = make([]int, len(g.names))
	for _, m := range t.Modules {
		for _, tb := range m.Tasks {
			v := index[tb.ID]
			for _, dep := range tb.DependsOn {
				u := index[dep]
				g.outgoing[u] = append(g.outgoing[u], v)
				g.indeg[v]++
			}
		}
	}
	return g
}

// acyclic reports whether Kahn's algorithm can order every node.
func (g *graph) acyclic() bool {
	indeg := make([]int, len(g.indeg))
	copy(indeg, g.indeg)

	var ready []int
	for i, d := range indeg {
		if d == 0 {
			ready = append(ready, i)
		}
	}
	seen := 0
	for len(ready) > 0 {
		n := ready[0]
		ready = ready[1:]
		seen++
		for _, m := range g.outgoing[n] {
			indeg[m]--
			if indeg[m] == 0 {
				ready = append(ready, m)
			}
		}
	}
	return seen == len(g.names)
}

// findCycle returns one cycle as a closed path of task names, or nil.
func (g *graph) findCycle() []string {
	if g.acyclic() {
		return nil
	}

	const (
		white = 0
		gray  = 1
		black = 2
	)
	color := make([]int, len(g.names))
	parent := make([]int, len(g.names))
	for i := range parent {
		parent[i] = -1
	}

	var cycle []int
	var dfs func(u int) bool
	dfs = func(u int) bool {
		color[u] = gray
		for _, v := range g.outgoing[u] {
			switch color[v] {
			case white:
				parent[v] = u
				if dfs(v) {
					return true
				}
			case gray:
				// Back-edge u -> v closes v ... u -> v.
				cycle = append(cycle, v)
				for cur := u; cur != -1 && cur != v; cur = parent[cur] {
					cycle = append(cycle, cur)
				}
				cycle = append(cycle, v)
				return true
			}
		}
		color[u] = black
		return false
	}

	for i := range g.names {
		if color[i] == white && dfs(i) {
			break
		}
	}

	out := make([]string, 0, len(cycle))
	for i := len(cycle) - 1; i >= 0; i-- {
		out = append(out, g.names[cycle[i]])
	}
	return out
}
