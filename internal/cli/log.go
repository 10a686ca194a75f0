package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var logTask string

var logCmd = &cobra.Command{
	Use:   "log [event-id]",
	Short: "Show the activity log of an event",
	Args:  cobra.ExactArgs(1),
	RunE:  runLog,
}

func init() {
	logCmd.Flags().StringVar(&logTask, "task", "", "Only show activity of this task")
}

func runLog(cmd *cobra.Command, args []string) error {
	a, err := mustApp(cmd.Context())
	if err != nil {
		return err
	}
	defer a.Close()
	actor, err := actorID()
	if err != nil {
		return err
	}

	entries, err := a.svc.Events.Activity(cmd.Context(), actor, args[0], logTask)
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		fmt.Printf("No activity for event %s\n", args[0])
		return nil
	}

	for _, e := range entries {
		who := ""
		if e.ActorID != "" {
			who = fmt.Sprintf("[%s] ", shortID(e.ActorID))
		}
		fmt.Printf("  %s  %s%-14s %s\n", e.Timestamp.Format("2006-01-02 15:04:05"), who, e.Type, e.Content)
	}
	return nil
}
