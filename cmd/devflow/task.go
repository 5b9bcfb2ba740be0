package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/cometalabs/devflow/internal/brain"
	"github.com/cometalabs/devflow/internal/timeparsing"
	"github.com/cometalabs/devflow/internal/ui"
)

var taskCmd = &cobra.Command{
	Use:     "task",
	Short:   "Manage tracked tasks",
	GroupID: "tasks",
}

var taskAddCmd = &cobra.Command{
	Use:     "add <title>",
	Aliases: []string{"create"},
	Short:   "Create a task",
	Args:    cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		priority, _ := cmd.Flags().GetInt("priority")
		sessionID, _ := cmd.Flags().GetString("session")
		due, _ := cmd.Flags().GetString("due")

		t := &brain.Task{
			Title:     strings.Join(args, " "),
			SessionID: sessionID,
			Priority:  priority,
		}
		if due != "" {
			// Accepts compact durations (2d, 1w), dates, and natural
			// language ("next friday").
			dueAt, err := timeparsing.ParseRelativeTime(due, time.Now())
			if err != nil {
				return fmt.Errorf("parsing --due %q: %w", due, err)
			}
			t.DueAt = &dueAt
		}

		if err := store.CreateTask(rootCtx, t); err != nil {
			return err
		}

		if jsonOutput {
			outputJSON(t)
			return nil
		}
		fmt.Printf("%s created task %s\n", ui.RenderPassIcon(), t.ID)
		if t.DueAt != nil {
			fmt.Printf("  due %s\n", t.DueAt.Local().Format("2006-01-02 15:04"))
		}
		return nil
	},
}

var taskListCmd = &cobra.Command{
	Use:   "list",
	Short: "List tasks",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		status, _ := cmd.Flags().GetString("status")
		limit, _ := cmd.Flags().GetInt("limit")
		all, _ := cmd.Flags().GetBool("all")
		if status == "" && !all {
			status = brain.TaskStatusOpen
		}

		tasks, err := store.ListTasks(rootCtx, status, limit)
		if err != nil {
			return err
		}

		if jsonOutput {
			outputJSON(tasks)
			return nil
		}
		if len(tasks) == 0 {
			fmt.Println(ui.RenderMuted("no tasks"))
			return nil
		}

		now := time.Now()
		for _, t := range tasks {
			icon := ui.RenderSkipIcon()
			switch t.Status {
			case brain.TaskStatusDone:
				icon = ui.RenderPassIcon()
			case brain.TaskStatusCancelled:
				icon = ui.RenderFailIcon()
			case brain.TaskStatusInProgress:
				icon = ui.RenderInfoIcon()
			}
			line := fmt.Sprintf("%s p%d %s  %s", icon, t.Priority, ui.RenderMuted(t.ID), t.Title)
			if t.DueAt != nil {
				due := t.DueAt.Local().Format("2006-01-02")
				if t.DueAt.Before(now) && t.Status == brain.TaskStatusOpen {
					line += "  " + ui.RenderFail("overdue "+due)
				} else {
					line += "  " + ui.RenderMuted("due "+due)
				}
			}
			fmt.Println(line)
		}
		return nil
	},
}

var taskStatusCmd = &cobra.Command{
	Use:   "status <id> <open|in_progress|done|cancelled>",
	Short: "Move a task to a new status",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := store.UpdateTaskStatus(rootCtx, args[0], args[1]); err != nil {
			return err
		}
		fmt.Printf("%s task %s now %s\n", ui.RenderPassIcon(), args[0], args[1])
		return nil
	},
}

var taskDoneCmd = &cobra.Command{
	Use:   "done <id>",
	Short: "Mark a task done",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := store.UpdateTaskStatus(rootCtx, args[0], brain.TaskStatusDone); err != nil {
			return err
		}
		fmt.Printf("%s task %s done\n", ui.RenderPassIcon(), args[0])
		return nil
	},
}

func init() {
	taskAddCmd.Flags().Int("priority", 2, "Priority (0 highest)")
	taskAddCmd.Flags().String("session", "", "Associate with a session ID")
	taskAddCmd.Flags().String("due", "", "Due date (2d, 2026-01-15, \"next friday\")")
	taskListCmd.Flags().String("status", "", "Filter by status")
	taskListCmd.Flags().Bool("all", false, "Include closed tasks")
	taskListCmd.Flags().Int("limit", 50, "Maximum rows")

	taskCmd.AddCommand(taskAddCmd, taskListCmd, taskStatusCmd, taskDoneCmd)
	rootCmd.AddCommand(taskCmd)
}
