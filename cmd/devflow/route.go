package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/cometalabs/devflow/internal/ui"
)

var routeCmd = &cobra.Command{
	Use:     "route <prompt>",
	Short:   "Score a prompt against the delegation policy",
	GroupID: "memory",
	Long: `Evaluates a prompt the way the pre-tool and prompt hooks do and
prints whether it would be delegated to an agent profile.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		meta, devflowDir := loadProjectMeta()
		engine := buildOrchestrator(devflowDir, meta)

		d := engine.Decide(strings.Join(args, " "))
		if jsonOutput {
			outputJSON(d)
			return nil
		}

		if d.Delegate {
			fmt.Printf("%s delegate to %s (score %.0f)\n", ui.RenderPassIcon(), ui.RenderAccent(d.Agent), d.Score)
		} else {
			fmt.Printf("%s keep in main session (score %.0f)\n", ui.RenderSkipIcon(), d.Score)
		}
		if d.Reason != "" {
			fmt.Println(ui.RenderMuted(d.Reason))
		}
		return nil
	},
}

var checkToolCmd = &cobra.Command{
	Use:     "check-tool <name>",
	Short:   "Check a tool name against the allow/block policy",
	GroupID: "memory",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		meta, devflowDir := loadProjectMeta()
		engine := buildOrchestrator(devflowDir, meta)

		check := engine.CheckTool(args[0])
		if jsonOutput {
			outputJSON(check)
			return nil
		}

		if check.Allowed {
			fmt.Printf("%s %s allowed\n", ui.RenderPassIcon(), args[0])
		} else {
			fmt.Printf("%s %s denied: %s\n", ui.RenderFailIcon(), args[0], check.Reason)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(routeCmd, checkToolCmd)
}
