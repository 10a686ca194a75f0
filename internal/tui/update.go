package tui

import (
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/imkarma/planner/internal/lifecycle"
	"github.com/imkarma/planner/internal/store"
)

func lifecycleMove(to store.TaskStatus) lifecycle.Update {
	return lifecycle.Update{Status: &to}
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.bar.Width = max(10, min(40, m.width/3))
		return m, nil

	case eventLoadedMsg:
		m.refreshing = false
		if msg.err != nil {
			m.setStatus("Failed to load event: "+msg.err.Error(), true)
			return m, nil
		}
		m.event = msg.event
		m.rebuildColumns()
		return m, nil

	case activityLoadedMsg:
		if msg.err != nil {
			m.setStatus("Failed to load activity: "+msg.err.Error(), true)
			return m, nil
		}
		m.detail = msg.task
		m.activity = msg.activity
		m.screen = screenDetail
		return m, nil

	case taskMovedMsg:
		if msg.err != nil {
			m.setStatus(msg.err.Error(), true)
			return m, nil
		}
		m.setStatus(msg.task.Name+" → "+string(msg.task.Status), false)
		return m, m.loadEvent()

	case tickMsg:
		cmds := []tea.Cmd{tickCmd()}
		if m.statusMsg != "" && time.Since(m.statusTime) > 5*time.Second {
			m.statusMsg = ""
		}
		if !m.refreshing {
			m.refreshing = true
			cmds = append(cmds, m.loadEvent())
		}
		return m, tea.Batch(cmds...)
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Quit):
		if m.screen == screenBoard {
			m.quitting = true
			return m, tea.Quit
		}
		m.screen = screenBoard
		return m, nil
	case key.Matches(msg, keys.Back):
		m.screen = screenBoard
		m.detail = nil
		return m, nil
	case key.Matches(msg, keys.Refresh):
		return m, m.loadEvent()
	}

	if m.screen == screenDetail {
		return m, nil
	}

	switch {
	case key.Matches(msg, keys.Up):
		m.cursorRow--
	case key.Matches(msg, keys.Down):
		m.cursorRow++
	case key.Matches(msg, keys.Left):
		m.cursorCol--
		m.cursorRow = 0
	case key.Matches(msg, keys.Right):
		m.cursorCol++
		m.cursorRow = 0
	case key.Matches(msg, keys.Open):
		if t := m.selected(); t != nil {
			return m, m.loadActivity(*t)
		}
	case key.Matches(msg, keys.Start):
		return m.move(store.StatusInProgress)
	case key.Matches(msg, keys.Done):
		return m.move(store.StatusCompleted)
	case key.Matches(msg, keys.Block):
		return m.move(store.StatusBlocked)
	case key.Matches(msg, keys.Reopen):
		return m.move(store.StatusPending)
	case key.Matches(msg, keys.Cancel):
		return m.move(store.StatusCancelled)
	}
	m.clampCursor()
	return m, nil
}

func (m Model) move(to store.TaskStatus) (tea.Model, tea.Cmd) {
	t := m.selected()
	if t == nil || t.Status == to {
		return m, nil
	}
	return m, m.moveTask(t.ID, to)
}
