package tui

import (
	"context"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/imkarma/planner/internal/service"
	"github.com/imkarma/planner/internal/store"
)

type screen int

const (
	screenBoard screen = iota
	screenDetail
)

const numColumns = 5

var columnStatuses = [numColumns]store.TaskStatus{
	store.StatusPending,
	store.StatusInProgress,
	store.StatusBlocked,
	store.StatusCompleted,
	store.StatusCancelled,
}

var columnLabels = [numColumns]string{
	"PENDING",
	"IN PROGRESS",
	"BLOCKED",
	"COMPLETED",
	"CANCELLED",
}

type keyMap struct {
	Up      key.Binding
	Down    key.Binding
	Left    key.Binding
	Right   key.Binding
	Open    key.Binding
	Back    key.Binding
	Start   key.Binding
	Done    key.Binding
	Block   key.Binding
	Reopen  key.Binding
	Cancel  key.Binding
	Refresh key.Binding
	Quit    key.Binding
}

var keys = keyMap{
	Up:      key.NewBinding(key.WithKeys("k", "up"), key.WithHelp("↑", "up")),
	Down:    key.NewBinding(key.WithKeys("j", "down"), key.WithHelp("↓", "down")),
	Left:    key.NewBinding(key.WithKeys("h", "left"), key.WithHelp("←", "left")),
	Right:   key.NewBinding(key.WithKeys("l", "right"), key.WithHelp("→", "right")),
	Open:    key.NewBinding(key.WithKeys("enter", " "), key.WithHelp("enter", "details")),
	Back:    key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "back")),
	Start:   key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "start")),
	Done:    key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "done")),
	Block:   key.NewBinding(key.WithKeys("b"), key.WithHelp("b", "block")),
	Reopen:  key.NewBinding(key.WithKeys("p"), key.WithHelp("p", "pending")),
	Cancel:  key.NewBinding(key.WithKeys("x"), key.WithHelp("x", "cancel")),
	Refresh: key.NewBinding(key.WithKeys("R"), key.WithHelp("R", "refresh")),
	Quit:    key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
}

// Model is the event board.
type Model struct {
	svc     *service.Services
	actorID string
	eventID string

	width  int
	height int
	screen screen

	event   *store.Event
	modules map[string]string // module id -> name
	columns [numColumns][]store.Task

	cursorCol int
	cursorRow int

	detail   *store.Task
	activity []store.Activity

	bar        progress.Model
	refreshing bool
	statusMsg  string
	statusErr  bool
	statusTime time.Time
	quitting   bool
}

// New creates a board for one event, acting as actorID.
func New(svc *service.Services, actorID, eventID string) Model {
	return Model{
		svc:     svc,
		actorID: actorID,
		eventID: eventID,
		bar:     progress.New(progress.WithDefaultGradient(), progress.WithWidth(30)),
	}
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.loadEvent(), tickCmd())
}

type eventLoadedMsg struct {
	event *store.Event
	err   error
}

type activityLoadedMsg struct {
	task     *store.Task
	activity []store.Activity
	err      error
}

type taskMovedMsg struct {
	task *store.Task
	err  error
}

type tickMsg time.Time

func tickCmd() tea.Cmd {
	return tea.Tick(3*time.Second, func(t time.Time) tea.Msg { return tickMsg(t) })
}

func (m Model) loadEvent() tea.Cmd {
	return func() tea.Msg {
		e, err := m.svc.Events.Get(context.Background(), m.actorID, m.eventID)
		return eventLoadedMsg{event: e, err: err}
	}
}

func (m Model) loadActivity(t store.Task) tea.Cmd {
	return func() tea.Msg {
		log, err := m.svc.Events.Activity(context.Background(), m.actorID, t.EventID, t.ID)
		return activityLoadedMsg{task: &t, activity: log, err: err}
	}
}

func (m Model) moveTask(id string, to store.TaskStatus) tea.Cmd {
	return func() tea.Msg {
		t, err := m.svc.Tasks.Transition(context.Background(), id, lifecycleMove(to), m.actorID)
		return taskMovedMsg{task: t, err: err}
	}
}

func (m *Model) rebuildColumns() {
	for i := range m.columns {
		m.columns[i] = nil
	}
	m.modules = make(map[string]string, len(m.event.Modules))
	for _, mod := range m.event.Modules {
		m.modules[mod.ID] = mod.Name
	}
	for _, t := range m.event.Tasks() {
		for i, status := range columnStatuses {
			if t.Status == status {
				m.columns[i] = append(m.columns[i], t)
				break
			}
		}
	}
	m.clampCursor()
}

func (m *Model) clampCursor() {
	m.cursorCol = max(0, min(m.cursorCol, numColumns-1))
	m.cursorRow = max(0, min(m.cursorRow, len(m.columns[m.cursorCol])-1))
}

func (m *Model) selected() *store.Task {
	col := m.columns[m.cursorCol]
	if m.cursorRow < len(col) {
		t := col[m.cursorRow]
		return &t
	}
	return nil
}

func (m *Model) setStatus(msg string, isErr bool) {
	m.statusMsg = msg
	m.statusErr = isErr
	m.statusTime = time.Now()
}
