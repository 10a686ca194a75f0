package cli

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/imkarma/planner/internal/progress"
	"github.com/imkarma/planner/internal/service"
	"github.com/imkarma/planner/internal/store"
)

var (
	eventName     string
	eventDesc     string
	eventStart    string
	eventEnd      string
	eventVenue    string
	eventBudget   string
	eventGuests   int
	eventClient   string
	eventExclude  []string
	eventRename   map[string]string
	eventBudgets  map[string]string
	eventDuration map[string]string
)

var eventCmd = &cobra.Command{
	Use:   "event",
	Short: "Create and manage events",
}

var eventCreateCmd = &cobra.Command{
	Use:   "create [template-id]",
	Short: "Create an event from a template",
	Long:  "Clones every module and task of the template into a new event. Excluded modules are skipped along with dependencies on their tasks.",
	Args:  cobra.ExactArgs(1),
	RunE:  runEventCreate,
}

var eventListCmd = &cobra.Command{
	Use:   "list",
	Short: "List events of your organization",
	RunE:  runEventList,
}

var eventStatusCmd = &cobra.Command{
	Use:   "status [id] [PLANNING|CONFIRMED|IN_PROGRESS|COMPLETED|CANCELLED]",
	Short: "Change an event's status",
	Args:  cobra.ExactArgs(2),
	RunE:  runEventStatus,
}

var eventDeleteCmd = &cobra.Command{
	Use:   "delete [id]",
	Short: "Delete an event that has not started",
	Args:  cobra.ExactArgs(1),
	RunE:  runEventDelete,
}

func init() {
	f := eventCreateCmd.Flags()
	f.StringVarP(&eventName, "name", "n", "", "Event name")
	f.StringVarP(&eventDesc, "desc", "d", "", "Event description")
	f.StringVar(&eventStart, "start", "", "Start date (YYYY-MM-DD)")
	f.StringVar(&eventEnd, "end", "", "End date (YYYY-MM-DD, default: start)")
	f.StringVar(&eventVenue, "venue", "", "Venue")
	f.StringVar(&eventBudget, "budget", "0", "Total budget")
	f.IntVar(&eventGuests, "guests", 0, "Guest count")
	f.StringVar(&eventClient, "client", "", "Client user id")
	f.StringSliceVar(&eventExclude, "exclude", nil, "Module blueprint ids to leave out")
	f.StringToStringVar(&eventRename, "rename", nil, "Module renames as module-id=name")
	f.StringToStringVar(&eventBudgets, "module-budget", nil, "Module budgets as module-id=amount")
	f.StringToStringVar(&eventDuration, "module-days", nil, "Module durations as module-id=days")

	eventCmd.AddCommand(eventCreateCmd)
	eventCmd.AddCommand(eventListCmd)
	eventCmd.AddCommand(eventStatusCmd)
	eventCmd.AddCommand(eventDeleteCmd)
}

func parseDay(flag, v string) (time.Time, error) {
	if v == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse(time.DateOnly, v)
	if err != nil {
		return time.Time{}, fmt.Errorf("--%s: expected YYYY-MM-DD, got %q", flag, v)
	}
	return t, nil
}

// overrides folds the per-module flags into ModuleOverrides.
func overrides() (map[string]service.ModuleOverride, error) {
	out := make(map[string]service.ModuleOverride)
	for id, name := range eventRename {
		o := out[id]
		n := name
		o.Name = &n
		out[id] = o
	}
	for id, amount := range eventBudgets {
		b, err := decimal.NewFromString(amount)
		if err != nil {
			return nil, fmt.Errorf("--module-budget %s: %w", id, err)
		}
		o := out[id]
		o.Budget = &b
		out[id] = o
	}
	for id, days := range eventDuration {
		d, err := strconv.Atoi(days)
		if err != nil {
			return nil, fmt.Errorf("--module-days %s: %w", id, err)
		}
		o := out[id]
		o.DurationDays = &d
		out[id] = o
	}
	return out, nil
}

func runEventCreate(cmd *cobra.Command, args []string) error {
	start, err := parseDay("start", eventStart)
	if err != nil {
		return err
	}
	end, err := parseDay("end", eventEnd)
	if err != nil {
		return err
	}
	if end.IsZero() {
		end = start
	}
	budget, err := decimal.NewFromString(eventBudget)
	if err != nil {
		return fmt.Errorf("--budget: %w", err)
	}
	ov, err := overrides()
	if err != nil {
		return err
	}

	a, err := mustApp(cmd.Context())
	if err != nil {
		return err
	}
	defer a.Close()
	actor, err := actorID()
	if err != nil {
		return err
	}

	e, err := a.svc.Instantiator.Instantiate(cmd.Context(), actor, args[0],
		service.EventParams{
			Name:        eventName,
			Description: eventDesc,
			StartDate:   start,
			EndDate:     end,
			Venue:       eventVenue,
			Budget:      budget,
			GuestCount:  eventGuests,
			ClientID:    eventClient,
		},
		service.Customizations{ExcludeModuleIDs: eventExclude, ModuleOverrides: ov})
	if err != nil {
		return err
	}

	fmt.Printf("Created event %s%s%s: %s (%d modules, %d tasks)\n",
		colorBold, e.ID, colorReset, e.Name, len(e.Modules), len(e.Tasks()))
	fmt.Printf("  → %splanner board %s%s\n", colorCyan, e.ID, colorReset)
	return nil
}

func runEventList(cmd *cobra.Command, args []string) error {
	a, err := mustApp(cmd.Context())
	if err != nil {
		return err
	}
	defer a.Close()
	actor, err := actorID()
	if err != nil {
		return err
	}

	events, err := a.svc.Events.List(cmd.Context(), actor)
	if err != nil {
		return err
	}
	if len(events) == 0 {
		fmt.Println("No events found.")
		return nil
	}
	for _, ev := range events {
		r, err := a.svc.Events.Progress(cmd.Context(), actor, ev.ID)
		if err != nil {
			return err
		}
		fmt.Printf("  %s  %s  %-12s %3d%%  %s\n",
			ev.ID, ev.StartDate.Format(time.DateOnly), ev.Status, r.Percent, ev.Name)
	}
	return nil
}

func runEventStatus(cmd *cobra.Command, args []string) error {
	a, err := mustApp(cmd.Context())
	if err != nil {
		return err
	}
	defer a.Close()
	actor, err := actorID()
	if err != nil {
		return err
	}

	e, err := a.svc.Events.UpdateStatus(cmd.Context(), actor, args[0], store.EventStatus(strings.ToUpper(args[1])))
	if err != nil {
		return err
	}
	fmt.Printf("Event %s is now %s\n", e.ID, e.Status)
	return nil
}

func runEventDelete(cmd *cobra.Command, args []string) error {
	a, err := mustApp(cmd.Context())
	if err != nil {
		return err
	}
	defer a.Close()
	actor, err := actorID()
	if err != nil {
		return err
	}

	if err := a.svc.Events.Delete(cmd.Context(), actor, args[0]); err != nil {
		return err
	}
	fmt.Printf("Deleted event %s\n", args[0])
	return nil
}

// progressBar renders a fixed-width text bar.
func progressBar(pct, width int) string {
	filled := pct * width / 100
	return colorGreen + strings.Repeat("█", filled) + colorReset + colorDim + strings.Repeat("░", width-filled) + colorReset
}

func summaryLine(s progress.Summary) string {
	return fmt.Sprintf("%d tasks  %s✓ %d%s  %s● %d%s  %s⚠ %d%s",
		s.Total, colorGreen, s.Completed, colorReset, colorBlue, s.InProgress, colorReset, colorRed, s.Blocked, colorReset)
}
