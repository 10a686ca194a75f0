package service

import (
	"context"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/imkarma/planner/internal/apperr"
	"github.com/imkarma/planner/internal/lifecycle"
	"github.com/imkarma/planner/internal/notify"
	"github.com/imkarma/planner/internal/store"
)

type recorder struct {
	mu   sync.Mutex
	msgs []notify.Message
}

func (r *recorder) Notify(_ context.Context, msg notify.Message) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.msgs = append(r.msgs, msg)
}

func (r *recorder) types() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []string
	for _, m := range r.msgs {
		out = append(out, m.Type)
	}
	return out
}

type fixture struct {
	t     *testing.T
	ctx   context.Context
	store *store.Store
	svc   *Services
	notes *recorder

	admin, manager, vendor, other, client, outsider *store.User
	wedding                                         *store.Template
}

var jan1 = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

func newFixture(t *testing.T) *fixture {
	t.Helper()
	s, err := store.New(filepath.Join(t.TempDir(), "planner.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })

	logger, _ := test.NewNullLogger()
	f := &fixture{t: t, ctx: context.Background(), store: s, notes: &recorder{}}
	f.svc = New(Deps{Store: s, Notifier: f.notes, Logger: logger})

	mk := func(id string, role store.Role, org string) *store.User {
		u := &store.User{ID: id, Name: id, Role: role, OrgID: org}
		require.NoError(t, s.CreateUser(f.ctx, u))
		return u
	}
	f.admin = mk("admin", store.RoleAdministrator, "org-1")
	f.manager = mk("manager", store.RoleManager, "org-1")
	f.vendor = mk("vendor", store.RoleVendor, "org-1")
	f.other = mk("other-vendor", store.RoleVendor, "org-1")
	f.client = mk("client", store.RoleClient, "org-1")
	f.outsider = mk("outsider", store.RoleManager, "org-2")

	f.wedding = &store.Template{
		Name:     "Wedding",
		IsPublic: true,
		Modules: []store.ModuleBlueprint{
			{ID: "m-venue", Name: "Venue", OrderIndex: 0, BudgetHint: decimal.NewFromInt(5000), Tasks: []store.TaskBlueprint{
				{ID: "tb-a", Name: "A", OrderIndex: 0, Priority: "high"},
			}},
			{ID: "m-catering", Name: "Catering", OrderIndex: 1, Tasks: []store.TaskBlueprint{
				{ID: "tb-b", Name: "B", OrderIndex: 2, DependsOn: []string{"tb-a"}},
			}},
		},
	}
	require.NoError(t, f.svc.Templates.Save(f.ctx, f.manager.ID, f.wedding))
	return f
}

func (f *fixture) params() EventParams {
	return EventParams{
		Name:      "Ana & Ben",
		StartDate: jan1,
		EndDate:   jan1.AddDate(0, 0, 7),
		Venue:     "Old Mill",
		Budget:    decimal.NewFromInt(20000),
		ClientID:  f.client.ID,
	}
}

func (f *fixture) instantiate(c Customizations) *store.Event {
	f.t.Helper()
	e, err := f.svc.Instantiator.Instantiate(f.ctx, f.manager.ID, f.wedding.ID, f.params(), c)
	require.NoError(f.t, err)
	return e
}

func taskNamed(t *testing.T, e *store.Event, name string) store.Task {
	t.Helper()
	for _, task := range e.Tasks() {
		if task.Name == name {
			return task
		}
	}
	t.Fatalf("no task named %q", name)
	return store.Task{}
}

func status(s store.TaskStatus) lifecycle.Update { return lifecycle.Update{Status: &s} }

func (f *fixture) move(actor *store.User, taskID string, to store.TaskStatus) error {
	_, err := f.svc.Tasks.Transition(f.ctx, taskID, status(to), actor.ID)
	return err
}

func TestWeddingScenario(t *testing.T) {
	f := newFixture(t)
	e := f.instantiate(Customizations{})

	assert.Equal(t, store.EventPlanning, e.Status)
	require.Len(t, e.Modules, 2)
	assert.Equal(t, "Venue", e.Modules[0].Name)
	assert.Equal(t, "Catering", e.Modules[1].Name)
	assert.True(t, e.Modules[0].Budget.Equal(decimal.NewFromInt(5000)))

	a, b := taskNamed(t, e, "A"), taskNamed(t, e, "B")
	assert.True(t, a.DueDate.Equal(jan1), "A due %v", a.DueDate)
	assert.True(t, b.DueDate.Equal(time.Date(2024, 1, 3, 0, 0, 0, 0, time.UTC)), "B due %v", b.DueDate)
	assert.Equal(t, []string{a.ID}, b.DependsOn)
	assert.Equal(t, store.StatusPending, a.Status)
	assert.Equal(t, "high", a.Priority)

	err := f.move(f.manager, b.ID, store.StatusInProgress)
	require.ErrorIs(t, err, apperr.ErrDependencyNotSatisfied)
	var ae *apperr.Error
	require.ErrorAs(t, err, &ae)
	assert.Len(t, ae.Details, 1)

	require.NoError(t, f.move(f.manager, a.ID, store.StatusInProgress))
	require.NoError(t, f.move(f.manager, a.ID, store.StatusCompleted))

	report, err := f.svc.Events.Progress(f.ctx, f.manager.ID, e.ID)
	require.NoError(t, err)
	assert.Equal(t, 50, report.Percent)

	require.NoError(t, f.move(f.manager, b.ID, store.StatusInProgress))
	require.NoError(t, f.move(f.manager, b.ID, store.StatusCompleted))

	report, err = f.svc.Events.Progress(f.ctx, f.manager.ID, e.ID)
	require.NoError(t, err)
	assert.Equal(t, 100, report.Percent)

	assert.Equal(t, []string{notify.EventInstantiated, notify.TaskCompleted, notify.TaskCompleted}, f.notes.types())
}

func TestInstantiate_CloneIsComplete(t *testing.T) {
	f := newFixture(t)
	e := f.instantiate(Customizations{})

	st, err := f.store.Stats(f.ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, st.Events)
	assert.Equal(t, 2, st.Modules)
	assert.Equal(t, 2, st.Tasks)
	assert.Equal(t, 1, st.Edges)

	require.NotNil(t, e.TemplateID)
	assert.Equal(t, f.wedding.ID, *e.TemplateID)
	assert.Equal(t, f.manager.ID, e.ManagerID)
	assert.Equal(t, "org-1", e.OrgID)

	// Instance ids are fresh, never the blueprint ids.
	for _, task := range e.Tasks() {
		assert.NotEqual(t, "tb-a", task.ID)
		assert.NotEqual(t, "tb-b", task.ID)
	}

	// A second run yields an independent copy.
	again := f.instantiate(Customizations{})
	assert.NotEqual(t, e.ID, again.ID)
	assert.NotEqual(t, taskNamed(t, e, "A").ID, taskNamed(t, again, "A").ID)
}

func TestInstantiate_ExcludedModuleDropsEdges(t *testing.T) {
	f := newFixture(t)
	e := f.instantiate(Customizations{ExcludeModuleIDs: []string{"m-venue"}})

	require.Len(t, e.Modules, 1)
	assert.Equal(t, "Catering", e.Modules[0].Name)
	b := taskNamed(t, e, "B")
	assert.Empty(t, b.DependsOn)

	// With its only dependency gone, B can start right away.
	require.NoError(t, f.move(f.manager, b.ID, store.StatusInProgress))
}

func TestInstantiate_ModuleOverrides(t *testing.T) {
	f := newFixture(t)
	name := "Reception"
	budget := decimal.RequireFromString("1234.50")
	days := 3
	e := f.instantiate(Customizations{ModuleOverrides: map[string]ModuleOverride{
		"m-catering": {Name: &name, Budget: &budget, DurationDays: &days},
	}})

	require.Len(t, e.Modules, 2)
	m := e.Modules[1]
	assert.Equal(t, "Reception", m.Name)
	assert.True(t, m.Budget.Equal(budget), "budget %s", m.Budget)
	assert.Equal(t, 3, m.DurationDays)
}

func TestInstantiate_RejectsBadInputWithoutWriting(t *testing.T) {
	f := newFixture(t)
	required := &store.Template{Name: "Gala", IsPublic: true, Modules: []store.ModuleBlueprint{
		{ID: "m-hall", Name: "Hall", Required: true, Tasks: []store.TaskBlueprint{{ID: "tb-hall", Name: "Hall"}}},
	}}
	require.NoError(t, f.svc.Templates.Save(f.ctx, f.admin.ID, required))

	endBeforeStart := f.params()
	endBeforeStart.EndDate = jan1.AddDate(0, 0, -1)
	negative := f.params()
	negative.Budget = decimal.NewFromInt(-1)
	noVenue := f.params()
	noVenue.Venue = ""
	ghostClient := f.params()
	ghostClient.ClientID = "nobody"

	tests := []struct {
		name     string
		template string
		params   EventParams
		custom   Customizations
		field    string
	}{
		{"end before start", f.wedding.ID, endBeforeStart, Customizations{}, "end_date"},
		{"negative budget", f.wedding.ID, negative, Customizations{}, "budget"},
		{"missing venue", f.wedding.ID, noVenue, Customizations{}, "venue"},
		{"unknown client", f.wedding.ID, ghostClient, Customizations{}, "client_id"},
		{"unknown excluded module", f.wedding.ID, f.params(), Customizations{ExcludeModuleIDs: []string{"m-nope"}}, "exclude_module_ids"},
		{"required module excluded", required.ID, f.params(), Customizations{ExcludeModuleIDs: []string{"m-hall"}}, "exclude_module_ids"},
		{"unknown override", f.wedding.ID, f.params(), Customizations{ModuleOverrides: map[string]ModuleOverride{"m-nope": {}}}, "module_overrides"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.svc.Instantiator.Instantiate(f.ctx, f.manager.ID, tt.template, tt.params, tt.custom)
			require.ErrorIs(t, err, apperr.ErrValidation)
			var ae *apperr.Error
			require.ErrorAs(t, err, &ae)
			assert.Equal(t, tt.field, ae.Field)
		})
	}

	st, err := f.store.Stats(f.ctx)
	require.NoError(t, err)
	assert.Zero(t, st.Events)
	assert.Zero(t, st.Tasks)
}

func TestInstantiate_Access(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Instantiator.Instantiate(f.ctx, f.vendor.ID, f.wedding.ID, f.params(), Customizations{})
	assert.ErrorIs(t, err, apperr.ErrForbidden)

	_, err = f.svc.Instantiator.Instantiate(f.ctx, "ghost", f.wedding.ID, f.params(), Customizations{})
	assert.ErrorIs(t, err, apperr.ErrNotFound)

	_, err = f.svc.Instantiator.Instantiate(f.ctx, f.manager.ID, "no-such-template", f.params(), Customizations{})
	assert.ErrorIs(t, err, apperr.ErrNotFound)

	private := &store.Template{Name: "House style", Modules: []store.ModuleBlueprint{
		{ID: "m-private", Name: "Flowers", Tasks: []store.TaskBlueprint{{ID: "tb-private", Name: "Pick flowers"}}},
	}}
	require.NoError(t, f.svc.Templates.Save(f.ctx, f.manager.ID, private))
	assert.Equal(t, "org-1", private.OrgID)

	_, err = f.svc.Instantiator.Instantiate(f.ctx, f.outsider.ID, private.ID, f.params(), Customizations{})
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestApply_RollsBackOnDanglingDependency(t *testing.T) {
	f := newFixture(t)
	tmpl, err := f.store.GetTemplate(f.ctx, f.wedding.ID)
	require.NoError(t, err)
	tmpl.Modules[1].Tasks[0].DependsOn = append(tmpl.Modules[1].Tasks[0].DependsOn, "tb-ghost")

	_, err = f.svc.Instantiator.apply(f.ctx, f.manager, tmpl, f.params(), Customizations{})
	require.Error(t, err)

	st, err := f.store.Stats(f.ctx)
	require.NoError(t, err)
	assert.Zero(t, st.Events)
	assert.Zero(t, st.Modules)
	assert.Zero(t, st.Tasks)
	assert.Zero(t, st.Edges)
	assert.Empty(t, f.notes.types())
}

func TestTransition_StateMachineSafety(t *testing.T) {
	f := newFixture(t)
	e := f.instantiate(Customizations{ExcludeModuleIDs: []string{"m-venue"}})
	b := taskNamed(t, e, "B")

	assert.ErrorIs(t, f.move(f.manager, b.ID, store.StatusCompleted), apperr.ErrInvalidState)

	require.NoError(t, f.move(f.manager, b.ID, store.StatusBlocked))
	require.NoError(t, f.move(f.manager, b.ID, store.StatusInProgress))
	require.NoError(t, f.move(f.manager, b.ID, store.StatusCancelled))

	for _, to := range []store.TaskStatus{store.StatusPending, store.StatusInProgress, store.StatusCompleted, store.StatusBlocked} {
		assert.ErrorIs(t, f.move(f.admin, b.ID, to), apperr.ErrInvalidState, "CANCELLED -> %s", to)
	}

	got, err := f.svc.Tasks.Get(f.ctx, f.manager.ID, b.ID)
	require.NoError(t, err)
	assert.Equal(t, store.StatusCancelled, got.Status)
	assert.Nil(t, got.CompletedAt)
}

func TestTransition_CompletedAtAndReopen(t *testing.T) {
	f := newFixture(t)
	e := f.instantiate(Customizations{})
	a := taskNamed(t, e, "A")

	require.NoError(t, f.move(f.manager, a.ID, store.StatusInProgress))
	require.NoError(t, f.move(f.manager, a.ID, store.StatusCompleted))
	got, err := f.svc.Tasks.Get(f.ctx, f.manager.ID, a.ID)
	require.NoError(t, err)
	require.NotNil(t, got.CompletedAt)

	require.NoError(t, f.move(f.manager, a.ID, store.StatusPending))
	got, err = f.svc.Tasks.Get(f.ctx, f.manager.ID, a.ID)
	require.NoError(t, err)
	assert.Equal(t, store.StatusPending, got.Status)
	assert.Nil(t, got.CompletedAt)
}

func TestTransition_ReopenWithStartedDependent(t *testing.T) {
	f := newFixture(t)
	e := f.instantiate(Customizations{})
	a := taskNamed(t, e, "A")
	b := taskNamed(t, e, "B")

	require.NoError(t, f.move(f.manager, a.ID, store.StatusInProgress))
	require.NoError(t, f.move(f.manager, a.ID, store.StatusCompleted))
	require.NoError(t, f.move(f.manager, b.ID, store.StatusInProgress))

	err := f.move(f.manager, a.ID, store.StatusPending)
	require.ErrorIs(t, err, apperr.ErrInvalidState)
	var ae *apperr.Error
	require.ErrorAs(t, err, &ae)
	require.Len(t, ae.Details, 1)
	assert.Contains(t, ae.Details[0], "B")

	got, err := f.svc.Tasks.Get(f.ctx, f.manager.ID, a.ID)
	require.NoError(t, err)
	assert.Equal(t, store.StatusCompleted, got.Status)
	ok, err := f.svc.Tasks.CanStart(f.ctx, f.manager.ID, b.ID)
	require.NoError(t, err)
	assert.True(t, ok)

	require.NoError(t, f.move(f.manager, b.ID, store.StatusBlocked))
	require.NoError(t, f.move(f.manager, b.ID, store.StatusPending))
	require.NoError(t, f.move(f.manager, a.ID, store.StatusPending))
}

func TestTransition_FieldRules(t *testing.T) {
	f := newFixture(t)
	e := f.instantiate(Customizations{})
	a := taskNamed(t, e, "A")

	vendor := f.vendor.ID
	_, err := f.svc.Tasks.Transition(f.ctx, a.ID, lifecycle.Update{AssignedTo: &vendor}, f.manager.ID)
	require.NoError(t, err)

	notes := "deposit paid"
	hours := 1.5
	got, err := f.svc.Tasks.Transition(f.ctx, a.ID, lifecycle.Update{Notes: &notes, ActualHours: &hours}, f.vendor.ID)
	require.NoError(t, err)
	assert.Equal(t, "deposit paid", got.Notes)
	require.NoError(t, f.move(f.vendor, a.ID, store.StatusInProgress))

	name := "Renamed"
	_, err = f.svc.Tasks.Transition(f.ctx, a.ID, lifecycle.Update{Name: &name}, f.vendor.ID)
	require.ErrorIs(t, err, apperr.ErrForbidden)
	var ae *apperr.Error
	require.ErrorAs(t, err, &ae)
	assert.Equal(t, "name", ae.Field)

	other := f.other.ID
	_, err = f.svc.Tasks.Transition(f.ctx, a.ID, lifecycle.Update{AssignedTo: &other}, f.vendor.ID)
	assert.ErrorIs(t, err, apperr.ErrForbidden)

	otherNotes := "not my task"
	_, err = f.svc.Tasks.Transition(f.ctx, a.ID, lifecycle.Update{Notes: &otherNotes}, f.other.ID)
	assert.ErrorIs(t, err, apperr.ErrForbidden)

	outsider := f.outsider.ID
	_, err = f.svc.Tasks.Transition(f.ctx, a.ID, lifecycle.Update{AssignedTo: &outsider}, f.manager.ID)
	assert.ErrorIs(t, err, apperr.ErrForbidden)

	ghost := "ghost"
	_, err = f.svc.Tasks.Transition(f.ctx, a.ID, lifecycle.Update{AssignedTo: &ghost}, f.manager.ID)
	assert.ErrorIs(t, err, apperr.ErrNotFound)

	_, err = f.svc.Tasks.Transition(f.ctx, a.ID, lifecycle.Update{Notes: &otherNotes}, f.outsider.ID)
	assert.ErrorIs(t, err, apperr.ErrNotFound)

	got, err = f.svc.Tasks.Get(f.ctx, f.manager.ID, a.ID)
	require.NoError(t, err)
	assert.Equal(t, "A", got.Name)
	assert.Equal(t, f.vendor.ID, got.AssignedTo)
	assert.Equal(t, 1.5, got.ActualHours)
}

func TestTransition_CancelledEventIsFrozen(t *testing.T) {
	f := newFixture(t)
	e := f.instantiate(Customizations{})
	a := taskNamed(t, e, "A")

	_, err := f.svc.Events.UpdateStatus(f.ctx, f.manager.ID, e.ID, store.EventCancelled)
	require.NoError(t, err)

	assert.ErrorIs(t, f.move(f.manager, a.ID, store.StatusInProgress), apperr.ErrInvalidState)
}

func TestTransition_RecordsActivity(t *testing.T) {
	f := newFixture(t)
	e := f.instantiate(Customizations{})
	a := taskNamed(t, e, "A")
	require.NoError(t, f.move(f.manager, a.ID, store.StatusInProgress))

	log, err := f.svc.Events.Activity(f.ctx, f.manager.ID, e.ID, a.ID)
	require.NoError(t, err)
	require.Len(t, log, 1)
	assert.Equal(t, "status_changed", log[0].Type)
	assert.Equal(t, "A: PENDING -> IN_PROGRESS", log[0].Content)

	all, err := f.svc.Events.Activity(f.ctx, f.manager.ID, e.ID, "")
	require.NoError(t, err)
	assert.Len(t, all, 2)
	assert.Equal(t, "instantiated", all[0].Type)
}

func TestDelete(t *testing.T) {
	f := newFixture(t)
	e := f.instantiate(Customizations{})
	a, b := taskNamed(t, e, "A"), taskNamed(t, e, "B")

	err := f.svc.Tasks.Delete(f.ctx, a.ID, f.manager.ID)
	require.ErrorIs(t, err, apperr.ErrHasDependents)
	var ae *apperr.Error
	require.ErrorAs(t, err, &ae)
	assert.Equal(t, []string{b.ID}, ae.Details)

	assert.ErrorIs(t, f.svc.Tasks.Delete(f.ctx, b.ID, f.vendor.ID), apperr.ErrForbidden)
	assert.ErrorIs(t, f.svc.Tasks.Delete(f.ctx, b.ID, f.outsider.ID), apperr.ErrNotFound)

	require.NoError(t, f.svc.Tasks.Delete(f.ctx, b.ID, f.manager.ID))
	_, err = f.svc.Tasks.Get(f.ctx, f.manager.ID, b.ID)
	assert.ErrorIs(t, err, apperr.ErrNotFound)

	// With B gone, A has no dependents, but once started it stays.
	require.NoError(t, f.move(f.manager, a.ID, store.StatusInProgress))
	assert.ErrorIs(t, f.svc.Tasks.Delete(f.ctx, a.ID, f.manager.ID), apperr.ErrInvalidState)
}

func TestCanStart(t *testing.T) {
	f := newFixture(t)
	e := f.instantiate(Customizations{})
	a, b := taskNamed(t, e, "A"), taskNamed(t, e, "B")

	ok, err := f.svc.Tasks.CanStart(f.ctx, f.manager.ID, b.ID)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, f.move(f.manager, a.ID, store.StatusInProgress))
	require.NoError(t, f.move(f.manager, a.ID, store.StatusCompleted))

	ok, err = f.svc.Tasks.CanStart(f.ctx, f.manager.ID, b.ID)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestProgress_MonotonicUnderCompletion(t *testing.T) {
	f := newFixture(t)
	tmpl := &store.Template{Name: "Conference", IsPublic: true}
	for i, mod := range []string{"Talks", "Catering", "Badges"} {
		m := store.ModuleBlueprint{Name: mod, OrderIndex: i}
		for j := 0; j <= i; j++ {
			m.Tasks = append(m.Tasks, store.TaskBlueprint{Name: mod + " task", OrderIndex: j})
		}
		tmpl.Modules = append(tmpl.Modules, m)
	}
	require.NoError(t, f.svc.Templates.Save(f.ctx, f.admin.ID, tmpl))

	e, err := f.svc.Instantiator.Instantiate(f.ctx, f.admin.ID, tmpl.ID, f.params(), Customizations{})
	require.NoError(t, err)

	last := -1
	for _, task := range e.Tasks() {
		r, err := f.svc.Events.Progress(f.ctx, f.admin.ID, e.ID)
		require.NoError(t, err)
		again, err := f.svc.Events.Progress(f.ctx, f.admin.ID, e.ID)
		require.NoError(t, err)
		assert.Equal(t, r.Percent, again.Percent)
		assert.Greater(t, r.Percent, last)
		last = r.Percent

		require.NoError(t, f.move(f.admin, task.ID, store.StatusInProgress))
		require.NoError(t, f.move(f.admin, task.ID, store.StatusCompleted))
	}
	r, err := f.svc.Events.Progress(f.ctx, f.admin.ID, e.ID)
	require.NoError(t, err)
	assert.Equal(t, 100, r.Percent)
	assert.Equal(t, 6, r.Summary.Completed)
}

func TestTemplateSave(t *testing.T) {
	f := newFixture(t)

	cyclic := &store.Template{Name: "Loop", IsPublic: true, Modules: []store.ModuleBlueprint{
		{ID: "m-loop", Name: "Loop", Tasks: []store.TaskBlueprint{
			{ID: "tb-x", Name: "X", DependsOn: []string{"tb-y"}},
			{ID: "tb-y", Name: "Y", DependsOn: []string{"tb-x"}},
		}},
	}}
	err := f.svc.Templates.Save(f.ctx, f.manager.ID, cyclic)
	require.ErrorIs(t, err, apperr.ErrValidation)
	assert.Contains(t, err.Error(), "X -> Y -> X")

	repeated := &store.Template{Name: "Twice", IsPublic: true, Modules: []store.ModuleBlueprint{
		{ID: "m-twice", Name: "Twice", Tasks: []store.TaskBlueprint{
			{ID: "tb-x", Name: "X"},
			{ID: "tb-y", Name: "Y", DependsOn: []string{"tb-x", "tb-x"}},
		}},
	}}
	assert.ErrorIs(t, f.svc.Templates.Save(f.ctx, f.manager.ID, repeated), apperr.ErrValidation)

	badPriority := &store.Template{Name: "Odd", IsPublic: true, Modules: []store.ModuleBlueprint{
		{ID: "m-odd", Name: "Odd", Tasks: []store.TaskBlueprint{{ID: "tb-odd", Name: "Odd", Priority: "critical"}}},
	}}
	assert.ErrorIs(t, f.svc.Templates.Save(f.ctx, f.manager.ID, badPriority), apperr.ErrValidation)

	ok := &store.Template{Name: "Party", IsPublic: true}
	assert.ErrorIs(t, f.svc.Templates.Save(f.ctx, f.vendor.ID, ok), apperr.ErrForbidden)

	list, err := f.svc.Templates.List(f.ctx, f.outsider.ID)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "Wedding", list[0].Name)
}

func TestEventStatusAndDelete(t *testing.T) {
	f := newFixture(t)
	e := f.instantiate(Customizations{})

	_, err := f.svc.Events.UpdateStatus(f.ctx, f.manager.ID, e.ID, store.EventInProgress)
	assert.ErrorIs(t, err, apperr.ErrInvalidState)

	got, err := f.svc.Events.UpdateStatus(f.ctx, f.manager.ID, e.ID, store.EventConfirmed)
	require.NoError(t, err)
	assert.Equal(t, store.EventConfirmed, got.Status)

	_, err = f.svc.Events.UpdateStatus(f.ctx, f.manager.ID, e.ID, store.EventInProgress)
	require.NoError(t, err)
	assert.ErrorIs(t, f.svc.Events.Delete(f.ctx, f.manager.ID, e.ID), apperr.ErrInvalidState)

	fresh := f.instantiate(Customizations{})
	assert.ErrorIs(t, f.svc.Events.Delete(f.ctx, f.vendor.ID, fresh.ID), apperr.ErrForbidden)
	require.NoError(t, f.svc.Events.Delete(f.ctx, f.manager.ID, fresh.ID))
	_, err = f.svc.Events.Get(f.ctx, f.manager.ID, fresh.ID)
	assert.ErrorIs(t, err, apperr.ErrNotFound)

	events, err := f.svc.Events.List(f.ctx, f.manager.ID)
	require.NoError(t, err)
	assert.Len(t, events, 1)
	none, err := f.svc.Events.List(f.ctx, f.outsider.ID)
	require.NoError(t, err)
	assert.Empty(t, none)
}
