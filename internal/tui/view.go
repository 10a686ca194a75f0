package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/lipgloss"

	"github.com/imkarma/planner/internal/progress"
	"github.com/imkarma/planner/internal/store"
)

// --- Color palette ---
var (
	clrSubtle    = lipgloss.AdaptiveColor{Light: "#555555", Dark: "#666666"}
	clrHighlight = lipgloss.AdaptiveColor{Light: "#0F766E", Dark: "#2DD4BF"}
	clrGreen     = lipgloss.AdaptiveColor{Light: "#43BF6D", Dark: "#73F59F"}
	clrYellow    = lipgloss.AdaptiveColor{Light: "#B45309", Dark: "#F59E0B"}
	clrRed       = lipgloss.AdaptiveColor{Light: "#B91C1C", Dark: "#F87171"}
	clrBlue      = lipgloss.AdaptiveColor{Light: "#1D4ED8", Dark: "#60A5FA"}
	clrCyan      = lipgloss.AdaptiveColor{Light: "#0E7490", Dark: "#22D3EE"}
	clrDim       = lipgloss.AdaptiveColor{Light: "#999999", Dark: "#555555"}
)

// --- Styles ---
var (
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(clrHighlight)
	dimStyle   = lipgloss.NewStyle().Foreground(clrDim)

	columnStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(clrSubtle).
			Padding(0, 1)

	columnActiveStyle = columnStyle.BorderForeground(clrHighlight)

	detailStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(clrHighlight).
			Padding(1, 2)

	statusStyle = lipgloss.NewStyle().Foreground(clrGreen).Bold(true)
	errorStyle  = lipgloss.NewStyle().Foreground(clrRed).Bold(true)

	footerKeyStyle  = lipgloss.NewStyle().Bold(true).Foreground(clrHighlight)
	footerDescStyle = lipgloss.NewStyle().Foreground(clrSubtle)
)

var columnColors = [numColumns]lipgloss.AdaptiveColor{clrSubtle, clrBlue, clrRed, clrGreen, clrDim}

// View implements tea.Model.
func (m Model) View() string {
	if m.quitting {
		return ""
	}
	if m.event == nil {
		if m.statusMsg != "" {
			return errorStyle.Render("  "+m.statusMsg) + "\n"
		}
		return dimStyle.Render("  Loading event...") + "\n"
	}

	var b strings.Builder
	b.WriteString(m.header() + "\n\n")
	switch m.screen {
	case screenDetail:
		b.WriteString(m.viewDetail())
	default:
		b.WriteString(m.viewBoard())
	}

	if m.statusMsg != "" {
		b.WriteString("\n")
		if m.statusErr {
			b.WriteString(errorStyle.Render("  " + m.statusMsg))
		} else {
			b.WriteString(statusStyle.Render("  " + m.statusMsg))
		}
	}
	b.WriteString("\n")
	b.WriteString(m.footer())
	return b.String()
}

func (m Model) header() string {
	r := progress.ForEvent(m.event)
	title := titleStyle.Render(m.event.Name)
	meta := dimStyle.Render(fmt.Sprintf("  %s  %s  %s",
		m.event.Status, m.event.StartDate.Format(time.DateOnly), m.event.Venue))
	bar := m.bar.ViewAs(float64(r.Percent) / 100)
	return title + meta + "\n" + bar + dimStyle.Render(fmt.Sprintf("  %d of %d tasks completed", r.Summary.Completed, r.Summary.Total))
}

func (m Model) viewBoard() string {
	width := 24
	if m.width > 0 {
		width = max(16, m.width/numColumns-4)
	}

	cols := make([]string, 0, numColumns)
	for i := range numColumns {
		var c strings.Builder
		label := lipgloss.NewStyle().Bold(true).Foreground(columnColors[i]).
			Render(fmt.Sprintf("%s (%d)", columnLabels[i], len(m.columns[i])))
		c.WriteString(label + "\n")
		for j, t := range m.columns[i] {
			c.WriteString(m.renderCard(t, i == m.cursorCol && j == m.cursorRow, width) + "\n")
		}
		style := columnStyle
		if i == m.cursorCol {
			style = columnActiveStyle
		}
		cols = append(cols, style.Width(width).Render(c.String()))
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, cols...)
}

func (m Model) renderCard(t store.Task, selected bool, width int) string {
	cursor := "  "
	name := truncate(t.Name, width-2)
	if selected {
		cursor = lipgloss.NewStyle().Foreground(clrHighlight).Render("▸ ")
		name = lipgloss.NewStyle().Bold(true).Render(name)
	}
	due := dimStyle.Render("  " + t.DueDate.Format("Jan 02") + " " + priorityMark(t.Priority))
	return cursor + name + "\n" + due
}

func priorityMark(p string) string {
	switch p {
	case "urgent":
		return lipgloss.NewStyle().Foreground(clrRed).Bold(true).Render("!!")
	case "high":
		return lipgloss.NewStyle().Foreground(clrRed).Render("!")
	case "medium":
		return lipgloss.NewStyle().Foreground(clrYellow).Render("·")
	}
	return ""
}

func (m Model) viewDetail() string {
	t := m.detail
	if t == nil {
		return dimStyle.Render("No task selected")
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render(t.Name) + "  " + dimStyle.Render(string(t.Status)) + "\n")
	b.WriteString(dimStyle.Render("module: "+m.modules[t.ModuleID]) + "\n\n")
	fmt.Fprintf(&b, "Due       %s\n", t.DueDate.Format(time.DateOnly))
	fmt.Fprintf(&b, "Priority  %s\n", t.Priority)
	fmt.Fprintf(&b, "Hours     %.1f / %.1f\n", t.ActualHours, t.EstimatedHours)
	if t.AssignedTo != "" {
		fmt.Fprintf(&b, "Assigned  %s\n", lipgloss.NewStyle().Foreground(clrCyan).Render(t.AssignedTo))
	}
	if t.Notes != "" {
		fmt.Fprintf(&b, "\n%s\n", t.Notes)
	}
	if len(t.DependsOn) > 0 {
		b.WriteString("\n" + lipgloss.NewStyle().Bold(true).Render("Depends on") + "\n")
		for _, id := range t.DependsOn {
			b.WriteString("  " + m.dependencyLine(id) + "\n")
		}
	}

	if len(m.activity) > 0 {
		b.WriteString("\n" + lipgloss.NewStyle().Bold(true).Render("Activity") + "\n")
		start := max(0, len(m.activity)-8)
		for _, a := range m.activity[start:] {
			ts := dimStyle.Render(a.Timestamp.Local().Format("Jan 02 15:04"))
			fmt.Fprintf(&b, "  %s %s\n", ts, truncate(a.Content, 60))
		}
	}

	return detailStyle.Render(b.String())
}

func (m Model) dependencyLine(id string) string {
	for i, col := range m.columns {
		for _, t := range col {
			if t.ID == id {
				return lipgloss.NewStyle().Foreground(columnColors[i]).Render("●") + " " + t.Name
			}
		}
	}
	return dimStyle.Render(id)
}

func (m Model) footer() string {
	bindings := []key.Binding{keys.Open, keys.Start, keys.Done, keys.Block, keys.Reopen, keys.Cancel, keys.Refresh, keys.Quit}
	if m.screen == screenDetail {
		bindings = []key.Binding{keys.Back, keys.Refresh, keys.Quit}
	}
	var parts []string
	for _, k := range bindings {
		h := k.Help()
		parts = append(parts, footerKeyStyle.Render(h.Key)+" "+footerDescStyle.Render(h.Desc))
	}
	return "  " + strings.Join(parts, "  ")
}

func truncate(s string, maxLen int) string {
	r := []rune(s)
	if len(r) <= maxLen {
		return s
	}
	if maxLen <= 1 {
		return string(r[:max(maxLen, 0)])
	}
	return string(r[:maxLen-1]) + "…"
}
