package cli

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/imkarma/planner/internal/lifecycle"
	"github.com/imkarma/planner/internal/store"
)

var (
	taskPriority string
	taskDue      string
	taskEstimate float64
)

var taskCmd = &cobra.Command{
	Use:   "task",
	Short: "Inspect and update event tasks",
}

var taskShowCmd = &cobra.Command{
	Use:   "show [id]",
	Short: "Show task details",
	Args:  cobra.ExactArgs(1),
	RunE:  runTaskShow,
}

var taskMoveCmd = &cobra.Command{
	Use:   "move [id] [PENDING|IN_PROGRESS|BLOCKED|COMPLETED|CANCELLED]",
	Short: "Move a task to another status",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return moveTask(cmd, args[0], store.TaskStatus(strings.ToUpper(args[1])))
	},
}

// statusShortcut builds a command that moves a task to one fixed status.
func statusShortcut(use, short string, to store.TaskStatus) *cobra.Command {
	return &cobra.Command{
		Use:   use + " [id]",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return moveTask(cmd, args[0], to)
		},
	}
}

var taskAssignCmd = &cobra.Command{
	Use:   "assign [id] [user-id]",
	Short: "Assign a task to a user of the event's organization",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return updateTask(cmd, args[0], lifecycle.Update{AssignedTo: &args[1]})
	},
}

var taskNoteCmd = &cobra.Command{
	Use:   "note [id] [text]",
	Short: "Replace a task's notes",
	Args:  cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		notes := strings.Join(args[1:], " ")
		return updateTask(cmd, args[0], lifecycle.Update{Notes: &notes})
	},
}

var taskHoursCmd = &cobra.Command{
	Use:   "hours [id] [hours]",
	Short: "Record the hours actually spent",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		h, err := strconv.ParseFloat(args[1], 64)
		if err != nil {
			return fmt.Errorf("invalid hours: %s", args[1])
		}
		return updateTask(cmd, args[0], lifecycle.Update{ActualHours: &h})
	},
}

var taskEditCmd = &cobra.Command{
	Use:   "edit [id]",
	Short: "Change planning fields of a task",
	Args:  cobra.ExactArgs(1),
	RunE:  runTaskEdit,
}

var taskDeleteCmd = &cobra.Command{
	Use:   "delete [id]",
	Short: "Delete a task nothing depends on",
	Args:  cobra.ExactArgs(1),
	RunE:  runTaskDelete,
}

var taskCanStartCmd = &cobra.Command{
	Use:   "can-start [id]",
	Short: "Report whether every dependency of a task is completed",
	Args:  cobra.ExactArgs(1),
	RunE:  runTaskCanStart,
}

func init() {
	taskEditCmd.Flags().StringVarP(&taskPriority, "priority", "p", "", "Priority: low, medium, high, urgent")
	taskEditCmd.Flags().StringVar(&taskDue, "due", "", "Due date (YYYY-MM-DD)")
	taskEditCmd.Flags().Float64Var(&taskEstimate, "estimate", 0, "Estimated hours")

	taskCmd.AddCommand(taskShowCmd)
	taskCmd.AddCommand(taskMoveCmd)
	taskCmd.AddCommand(statusShortcut("start", "Start a task", store.StatusInProgress))
	taskCmd.AddCommand(statusShortcut("done", "Mark a task as completed", store.StatusCompleted))
	taskCmd.AddCommand(statusShortcut("block", "Mark a task as blocked", store.StatusBlocked))
	taskCmd.AddCommand(statusShortcut("cancel", "Cancel a task", store.StatusCancelled))
	taskCmd.AddCommand(statusShortcut("reopen", "Move a task back to pending", store.StatusPending))
	taskCmd.AddCommand(taskAssignCmd)
	taskCmd.AddCommand(taskNoteCmd)
	taskCmd.AddCommand(taskHoursCmd)
	taskCmd.AddCommand(taskEditCmd)
	taskCmd.AddCommand(taskDeleteCmd)
	taskCmd.AddCommand(taskCanStartCmd)
}

func moveTask(cmd *cobra.Command, id string, to store.TaskStatus) error {
	return updateTask(cmd, id, lifecycle.Update{Status: &to})
}

func updateTask(cmd *cobra.Command, id string, u lifecycle.Update) error {
	a, err := mustApp(cmd.Context())
	if err != nil {
		return err
	}
	defer a.Close()
	actor, err := actorID()
	if err != nil {
		return err
	}

	t, err := a.svc.Tasks.Transition(cmd.Context(), id, u, actor)
	if err != nil {
		return err
	}
	fmt.Printf("%s%s%s %s [%s]\n", colorBold, shortID(t.ID), colorReset, t.Name, statusColor(t.Status)+string(t.Status)+colorReset)
	return nil
}

func runTaskEdit(cmd *cobra.Command, args []string) error {
	var u lifecycle.Update
	if cmd.Flags().Changed("priority") {
		u.Priority = &taskPriority
	}
	if cmd.Flags().Changed("due") {
		due, err := parseDay("due", taskDue)
		if err != nil {
			return err
		}
		u.DueDate = &due
	}
	if cmd.Flags().Changed("estimate") {
		u.EstimatedHours = &taskEstimate
	}
	return updateTask(cmd, args[0], u)
}

func runTaskShow(cmd *cobra.Command, args []string) error {
	a, err := mustApp(cmd.Context())
	if err != nil {
		return err
	}
	defer a.Close()
	actor, err := actorID()
	if err != nil {
		return err
	}

	t, err := a.svc.Tasks.Get(cmd.Context(), actor, args[0])
	if err != nil {
		return err
	}

	fmt.Printf("%s%s%s\n", colorBold, t.Name, colorReset)
	fmt.Printf("  ID:        %s\n", t.ID)
	fmt.Printf("  Status:    %s%s%s\n", statusColor(t.Status), t.Status, colorReset)
	fmt.Printf("  Priority:  %s%s%s\n", priorityColor(t.Priority), t.Priority, colorReset)
	fmt.Printf("  Due:       %s\n", t.DueDate.Format(time.DateOnly))
	fmt.Printf("  Hours:     %.1f / %.1f\n", t.ActualHours, t.EstimatedHours)
	if t.AssignedTo != "" {
		fmt.Printf("  Assigned:  %s%s%s\n", colorCyan, t.AssignedTo, colorReset)
	}
	if t.CompletedAt != nil {
		fmt.Printf("  Completed: %s\n", t.CompletedAt.Format(time.DateTime))
	}
	if t.Description != "" {
		fmt.Printf("\n  %s\n", t.Description)
	}
	if t.Notes != "" {
		fmt.Printf("\n  %sNotes:%s %s\n", colorDim, colorReset, t.Notes)
	}
	if len(t.DependsOn) > 0 {
		fmt.Printf("\n  Depends on: %s\n", strings.Join(t.DependsOn, ", "))
	}
	if len(t.Dependents) > 0 {
		fmt.Printf("  Needed by:  %s\n", strings.Join(t.Dependents, ", "))
	}
	return nil
}

func runTaskDelete(cmd *cobra.Command, args []string) error {
	a, err := mustApp(cmd.Context())
	if err != nil {
		return err
	}
	defer a.Close()
	actor, err := actorID()
	if err != nil {
		return err
	}

	if err := a.svc.Tasks.Delete(cmd.Context(), args[0], actor); err != nil {
		return err
	}
	fmt.Printf("Deleted task %s\n", args[0])
	return nil
}

func runTaskCanStart(cmd *cobra.Command, args []string) error {
	a, err := mustApp(cmd.Context())
	if err != nil {
		return err
	}
	defer a.Close()
	actor, err := actorID()
	if err != nil {
		return err
	}

	ok, err := a.svc.Tasks.CanStart(cmd.Context(), actor, args[0])
	if err != nil {
		return err
	}
	if ok {
		fmt.Printf("%s✓ ready to start%s\n", colorGreen, colorReset)
	} else {
		fmt.Printf("%s✗ waiting on dependencies%s\n", colorYellow, colorReset)
	}
	return nil
}

func statusColor(s store.TaskStatus) string {
	for _, c := range boardColumns {
		if c.status == s {
			return c.color
		}
	}
	return ""
}
