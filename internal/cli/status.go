package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Quick status overview",
	RunE:  runStatus,
}

func runStatus(cmd *cobra.Command, args []string) error {
	a, err := mustApp(cmd.Context())
	if err != nil {
		return err
	}
	defer a.Close()
	actor, err := actorID()
	if err != nil {
		return err
	}

	st, err := a.store.Stats(cmd.Context())
	if err != nil {
		return err
	}
	fmt.Printf("%sDatabase%s\n", colorBold, colorReset)
	fmt.Printf("  %-12s %d\n", "templates:", st.Templates)
	fmt.Printf("  %-12s %d\n", "events:", st.Events)
	fmt.Printf("  %-12s %d\n", "modules:", st.Modules)
	fmt.Printf("  %-12s %d\n", "tasks:", st.Tasks)
	fmt.Printf("  %-12s %d\n", "edges:", st.Edges)

	events, err := a.svc.Events.List(cmd.Context(), actor)
	if err != nil {
		return err
	}
	if len(events) == 0 {
		fmt.Printf("\nNo events. Run: %splanner event create TEMPLATE_ID%s\n", colorCyan, colorReset)
		return nil
	}

	fmt.Printf("\n%sEvents%s\n", colorBold, colorReset)
	for _, ev := range events {
		r, err := a.svc.Events.Progress(cmd.Context(), actor, ev.ID)
		if err != nil {
			return err
		}
		fmt.Printf("  %s %3d%%  %s %s(%s)%s\n", progressBar(r.Percent, 10), r.Percent, ev.Name, colorDim, ev.Status, colorReset)
		if r.Summary.Blocked > 0 {
			fmt.Printf("         %s⚠ %d blocked%s\n", colorRed, r.Summary.Blocked, colorReset)
		}
	}
	return nil
}
