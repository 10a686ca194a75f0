package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/imkarma/planner/internal/progress"
	"github.com/imkarma/planner/internal/store"
)

// ANSI color codes.
const (
	colorReset   = "\033[0m"
	colorBold    = "\033[1m"
	colorDim     = "\033[2m"
	colorRed     = "\033[31m"
	colorGreen   = "\033[32m"
	colorYellow  = "\033[33m"
	colorBlue    = "\033[34m"
	colorMagenta = "\033[35m"
	colorCyan    = "\033[36m"
	colorWhite   = "\033[37m"
)

var boardCmd = &cobra.Command{
	Use:   "board [event-id]",
	Short: "Show an event's task board",
	Args:  cobra.ExactArgs(1),
	RunE:  runBoard,
}

type boardColumn struct {
	status store.TaskStatus
	label  string
	color  string
}

var boardColumns = []boardColumn{
	{store.StatusPending, "PENDING", colorWhite},
	{store.StatusInProgress, "IN PROGRESS", colorBlue},
	{store.StatusBlocked, "BLOCKED", colorRed},
	{store.StatusCompleted, "COMPLETED", colorGreen},
	{store.StatusCancelled, "CANCELLED", colorMagenta},
}

func runBoard(cmd *cobra.Command, args []string) error {
	a, err := mustApp(cmd.Context())
	if err != nil {
		return err
	}
	defer a.Close()
	actor, err := actorID()
	if err != nil {
		return err
	}

	e, err := a.svc.Events.Get(cmd.Context(), actor, args[0])
	if err != nil {
		return err
	}
	r := progress.ForEvent(e)

	fmt.Printf("%s%s%s  %s  %s  %s\n\n", colorBold, e.Name, colorReset,
		e.Status, progressBar(r.Percent, 20), fmt.Sprintf("%d%%", r.Percent))

	tasks := e.Tasks()
	if len(tasks) == 0 {
		fmt.Printf("%sEvent has no tasks.%s\n", colorDim, colorReset)
		return nil
	}

	columns := make(map[store.TaskStatus][]store.Task)
	for _, t := range tasks {
		columns[t.Status] = append(columns[t.Status], t)
	}

	colWidth := 24
	headerLine := ""
	sepLine := ""
	for _, c := range boardColumns {
		count := len(columns[c.status])
		header := fmt.Sprintf(" %s%s%s (%d)", c.color+colorBold, c.label, colorReset, count)
		// Pad on the visible width; the escape codes add bytes.
		visible := fmt.Sprintf(" %s (%d)", c.label, count)
		headerLine += header + strings.Repeat(" ", max(colWidth-len(visible), 0))
		sepLine += strings.Repeat("─", colWidth)
	}
	fmt.Println(headerLine)
	fmt.Println(colorDim + sepLine + colorReset)

	maxRows := 0
	for _, c := range boardColumns {
		maxRows = max(maxRows, len(columns[c.status]))
	}

	for i := 0; i < maxRows; i++ {
		line := ""
		detailLine := ""
		for _, c := range boardColumns {
			col := columns[c.status]
			if i >= len(col) {
				line += strings.Repeat(" ", colWidth)
				detailLine += strings.Repeat(" ", colWidth)
				continue
			}
			t := col[i]
			name := truncate(t.Name, colWidth-3)
			line += fmt.Sprintf(" %s%s%s", priorityColor(t.Priority), name, colorReset) +
				strings.Repeat(" ", max(colWidth-len(name)-1, 0))

			detail := padRight("    "+shortID(t.ID)+" "+t.DueDate.Format("Jan 02"), colWidth)
			detailLine += colorDim + detail + colorReset
		}
		fmt.Println(line)
		fmt.Println(detailLine)
		fmt.Println()
	}

	fmt.Printf("%sModules%s\n", colorBold, colorReset)
	for _, m := range r.Modules {
		fmt.Printf("  %s %3d%%  %s\n", progressBar(m.Percent, 10), m.Percent, m.Name)
	}
	fmt.Println()
	fmt.Println(summaryLine(r.Summary))
	return nil
}

func priorityColor(priority string) string {
	switch priority {
	case "urgent":
		return colorRed + colorBold
	case "high":
		return colorRed
	case "medium":
		return colorYellow
	case "low":
		return colorDim
	default:
		return ""
	}
}

// shortID keeps the first block of a uuid.
func shortID(id string) string {
	if i := strings.IndexByte(id, '-'); i > 0 {
		return id[:i]
	}
	return id
}

func padRight(s string, width int) string {
	if len(s) >= width {
		return s[:width]
	}
	return s + strings.Repeat(" ", width-len(s))
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return s[:maxLen]
	}
	return s[:maxLen-3] + "..."
}
