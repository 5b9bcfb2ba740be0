package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/cometalabs/devflow/internal/brain"
	"github.com/cometalabs/devflow/internal/compact"
	"github.com/cometalabs/devflow/internal/ui"
)

var summarizeCmd = &cobra.Command{
	Use:     "summarize <session-id>",
	Short:   "Condense a session's prompts into a summary memory",
	GroupID: "memory",
	Long: `Collects the prompt memories recorded for a session and stores a
summary memory, using Claude Haiku when ANTHROPIC_API_KEY is set.

With --dry-run the summary is printed but not stored.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		dryRun, _ := cmd.Flags().GetBool("dry-run")
		sessionID := args[0]

		memories, err := store.MemoriesForSession(rootCtx, sessionID)
		if err != nil {
			return err
		}
		var prompts []string
		for _, m := range memories {
			if m.Kind == brain.MemoryKindPrompt {
				prompts = append(prompts, m.Content)
			}
		}
		if len(prompts) == 0 {
			return fmt.Errorf("session %s has no prompt memories to summarize", sessionID)
		}

		summarizer, err := compact.NewHaikuSummarizer(os.Getenv("ANTHROPIC_API_KEY"))
		if err != nil {
			return fmt.Errorf("summarizer unavailable: %w", err)
		}

		summary, err := summarizer.Summarize(rootCtx, strings.Join(prompts, "\n"))
		if err != nil {
			return err
		}

		if dryRun {
			fmt.Print(ui.RenderMarkdown(summary))
			return nil
		}

		m := &brain.Memory{
			SessionID: sessionID,
			Kind:      brain.MemoryKindSummary,
			Content:   summary,
			Source:    "cli",
		}
		if err := store.AddMemory(rootCtx, m); err != nil {
			return err
		}
		fmt.Printf("%s stored summary %s\n", ui.RenderPassIcon(), m.ID)
		return nil
	},
}

func init() {
	summarizeCmd.Flags().Bool("dry-run", false, "Print the summary without storing it")
	rootCmd.AddCommand(summarizeCmd)
}
