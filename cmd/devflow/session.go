package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/cometalabs/devflow/internal/ui"
)

var sessionCmd = &cobra.Command{
	Use:     "session",
	Short:   "Inspect recorded Claude Code sessions",
	GroupID: "memory",
}

var sessionListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recent sessions",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")

		sessions, err := store.ListSessions(rootCtx, limit)
		if err != nil {
			return err
		}

		if jsonOutput {
			outputJSON(sessions)
			return nil
		}
		if len(sessions) == 0 {
			fmt.Println(ui.RenderMuted("no sessions recorded yet"))
			return nil
		}
		for _, s := range sessions {
			state := ui.RenderWarn("active")
			if s.EndedAt != nil {
				state = ui.RenderMuted("ended")
			}
			fmt.Printf("%s  %s  %s  %d prompts, %d tool calls\n",
				s.StartedAt.Local().Format("2006-01-02 15:04"), state,
				ui.RenderAccent(s.ID), s.PromptCount, s.ToolCount)
		}
		return nil
	},
}

var sessionShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show a session with its recent tool activity",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := store.GetSession(rootCtx, args[0])
		if err != nil {
			return err
		}
		if s == nil {
			return fmt.Errorf("session %s not found", args[0])
		}

		events, err := store.RecentToolEvents(rootCtx, s.ID, 20)
		if err != nil {
			return err
		}
		denied, err := store.DeniedToolEvents(rootCtx, s.ID)
		if err != nil {
			return err
		}

		if jsonOutput {
			outputJSON(map[string]any{"session": s, "tool_events": events, "denied": denied})
			return nil
		}

		fmt.Printf("%s %s\n", ui.RenderCategory("session"), s.ID)
		fmt.Printf("cwd:      %s\n", s.CWD)
		if s.Model != "" {
			fmt.Printf("model:    %s\n", s.Model)
		}
		fmt.Printf("started:  %s\n", s.StartedAt.Local().Format("2006-01-02 15:04:05"))
		if s.EndedAt != nil {
			fmt.Printf("ended:    %s\n", s.EndedAt.Local().Format("2006-01-02 15:04:05"))
		} else {
			if idle, ok, err := store.SessionIdleSince(rootCtx, s.ID); err == nil && ok {
				fmt.Printf("idle:     %s\n", idle.Round(time.Second))
			}
			// An unexpired session lock means a hook is dispatching right now.
			if l, err := store.GetLock(rootCtx, "session:"+s.ID); err == nil && l != nil {
				fmt.Printf("lock:     held by %s until %s\n",
					l.Holder, l.ExpiresAt.Local().Format("15:04:05"))
			}
		}
		fmt.Printf("activity: %d prompts, %d tool calls", s.PromptCount, s.ToolCount)
		if denied > 0 {
			fmt.Printf(", %s", ui.RenderFail(fmt.Sprintf("%d denied", denied)))
		}
		fmt.Println()

		if len(events) > 0 {
			fmt.Println(ui.RenderSeparator())
			for _, e := range events {
				icon := ui.RenderPassIcon()
				if e.Decision == "deny" || e.Decision == "block" {
					icon = ui.RenderFailIcon()
				}
				line := fmt.Sprintf("%s %s %s", icon,
					e.CreatedAt.Local().Format("15:04:05"), e.ToolName)
				if e.Command != "" {
					line += "  " + ui.RenderMuted(ui.TruncateSimple(strings.ReplaceAll(e.Command, "\n", " "), 60))
				}
				fmt.Println(line)
			}
		}
		return nil
	},
}

func init() {
	sessionListCmd.Flags().Int("limit", 20, "Maximum rows")
	sessionCmd.AddCommand(sessionListCmd, sessionShowCmd)
	rootCmd.AddCommand(sessionCmd)
}
