package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/cometalabs/devflow/internal/ui"
)

var statsCmd = &cobra.Command{
	Use:     "stats",
	Short:   "Show database statistics",
	GroupID: "maint",
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := store.Stats(rootCtx)
		if err != nil {
			return err
		}

		if jsonOutput {
			outputJSON(st)
			return nil
		}

		fmt.Println(ui.RenderCategory("cometa brain"))
		fmt.Printf("  database:    %s\n", store.Path())
		fmt.Printf("  sessions:    %d\n", st.Sessions)
		fmt.Printf("  memories:    %d\n", st.Memories)
		fmt.Printf("  tasks:       %d (%d open)\n", st.Tasks, st.OpenTasks)
		fmt.Printf("  tool events: %d\n", st.ToolEvents)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(statsCmd)
}
