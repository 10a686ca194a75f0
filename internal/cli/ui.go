package cli

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/imkarma/planner/internal/tui"
)

var uiCmd = &cobra.Command{
	Use:   "ui [event-id]",
	Short: "Open the interactive event board",
	Long:  "Opens an interactive board of an event's tasks. Tasks can be started, completed, blocked or cancelled from the board.",
	Args:  cobra.ExactArgs(1),
	RunE:  runUI,
}

func init() {
	rootCmd.AddCommand(uiCmd)
}

func runUI(cmd *cobra.Command, args []string) error {
	a, err := mustApp(cmd.Context())
	if err != nil {
		return err
	}
	defer a.Close()
	actor, err := actorID()
	if err != nil {
		return err
	}

	p := tea.NewProgram(tui.New(a.svc, actor, args[0]), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("TUI error: %w", err)
	}
	return nil
}
