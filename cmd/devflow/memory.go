package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/cometalabs/devflow/internal/brain"
	"github.com/cometalabs/devflow/internal/classify"
	"github.com/cometalabs/devflow/internal/debug"
	"github.com/cometalabs/devflow/internal/ui"
)

var memoryCmd = &cobra.Command{
	Use:     "memory",
	Aliases: []string{"mem"},
	Short:   "Manage stored memories",
	GroupID: "memory",
}

var memoryAddCmd = &cobra.Command{
	Use:   "add <content>",
	Short: "Store a memory",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		kind, _ := cmd.Flags().GetString("kind")
		sessionID, _ := cmd.Flags().GetString("session")
		content := strings.Join(args, " ")

		meta, _ := loadProjectMeta()
		intent, rule := classify.NewClassifier().Classify(content)
		debug.Logf("classified as %s (rule %s)", intent, rule)

		m := &brain.Memory{
			SessionID: sessionID,
			Kind:      kind,
			Intent:    string(intent),
			Content:   content,
			Source:    "cli",
		}
		if vec, err := buildEmbedder(meta, "").Embed(rootCtx, content); err != nil {
			debug.Logf("embedding failed, storing without vector: %v", err)
		} else {
			m.Embedding = vec
		}

		if err := store.AddMemory(rootCtx, m); err != nil {
			return err
		}

		if jsonOutput {
			outputJSON(m)
			return nil
		}
		fmt.Printf("%s stored %s memory %s\n", ui.RenderPassIcon(), m.Kind, m.ID)
		return nil
	},
}

var memoryListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recent memories",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		kind, _ := cmd.Flags().GetString("kind")
		limit, _ := cmd.Flags().GetInt("limit")

		memories, err := store.ListMemories(rootCtx, kind, limit)
		if err != nil {
			return err
		}

		if jsonOutput {
			outputJSON(memories)
			return nil
		}
		if len(memories) == 0 {
			fmt.Println(ui.RenderMuted("no memories stored yet"))
			return nil
		}

		var b strings.Builder
		for _, m := range memories {
			header := fmt.Sprintf("%s  %s", m.CreatedAt.Local().Format("2006-01-02 15:04"), m.Kind)
			if m.Intent != "" {
				header += "/" + m.Intent
			}
			b.WriteString(ui.RenderAccent(header))
			b.WriteString("  " + ui.RenderMuted(m.ID) + "\n")
			b.WriteString(ui.TruncateSimple(strings.ReplaceAll(m.Content, "\n", " "), 100))
			b.WriteString("\n\n")
		}
		noPager, _ := cmd.Flags().GetBool("no-pager")
		return ui.ToPager(b.String(), ui.PagerOptions{NoPager: noPager})
	},
}

var memorySearchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Search memories by similarity",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")
		query := strings.Join(args, " ")

		meta, _ := loadProjectMeta()
		var queryVec []float32
		if vec, err := buildEmbedder(meta, "").Embed(rootCtx, query); err != nil {
			debug.Logf("embedding failed, using text search: %v", err)
		} else {
			queryVec = vec
		}

		results, err := store.SearchMemories(rootCtx, query, queryVec, limit)
		if err != nil {
			return err
		}

		if jsonOutput {
			outputJSON(results)
			return nil
		}
		if len(results) == 0 {
			fmt.Println(ui.RenderMuted("no matches"))
			return nil
		}

		for _, r := range results {
			score := ""
			if r.Score != 0 {
				score = fmt.Sprintf(" (%.2f)", r.Score)
			}
			fmt.Printf("%s%s  %s\n", ui.RenderAccent(r.Memory.ID), ui.RenderMuted(score),
				ui.TruncateSimple(strings.ReplaceAll(r.Memory.Content, "\n", " "), 80))
		}
		return nil
	},
}

var memoryShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show one memory in full",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		m, err := store.GetMemory(rootCtx, args[0])
		if err != nil {
			return err
		}
		if m == nil {
			return fmt.Errorf("memory %s not found", args[0])
		}

		if jsonOutput {
			outputJSON(m)
			return nil
		}

		fmt.Printf("%s %s\n", ui.RenderCategory(m.Kind), ui.RenderMuted(m.ID))
		if m.Intent != "" {
			fmt.Printf("intent:  %s\n", m.Intent)
		}
		if m.SessionID != "" {
			fmt.Printf("session: %s\n", m.SessionID)
		}
		fmt.Printf("created: %s\n", m.CreatedAt.Local().Format("2006-01-02 15:04:05"))
		if len(m.Embedding) > 0 {
			fmt.Printf("vector:  %d dims\n", len(m.Embedding))
		}
		fmt.Println(ui.RenderSeparator())
		fmt.Print(ui.RenderMarkdown(m.Content))
		return nil
	},
}

var memoryDeleteCmd = &cobra.Command{
	Use:     "delete <id>...",
	Aliases: []string{"rm"},
	Short:   "Delete memories",
	Args:    cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := store.DeleteMemories(rootCtx, args); err != nil {
			return err
		}
		noun := "memories"
		if len(args) == 1 {
			noun = "memory"
		}
		fmt.Printf("%s deleted %d %s\n", ui.RenderPassIcon(), len(args), noun)
		return nil
	},
}

func init() {
	memoryAddCmd.Flags().String("kind", brain.MemoryKindNote, "Memory kind (observation|prompt|summary|note)")
	memoryAddCmd.Flags().String("session", "", "Associate with a session ID")
	memoryListCmd.Flags().String("kind", "", "Filter by kind")
	memoryListCmd.Flags().Int("limit", 20, "Maximum rows")
	memoryListCmd.Flags().Bool("no-pager", false, "Do not pipe output to a pager")
	memorySearchCmd.Flags().Int("limit", 10, "Maximum results")

	memoryCmd.AddCommand(memoryAddCmd, memoryListCmd, memorySearchCmd, memoryShowCmd, memoryDeleteCmd)
	rootCmd.AddCommand(memoryCmd)
}
