package main

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/cometalabs/devflow/internal/backup"
	"github.com/cometalabs/devflow/internal/config"
	"github.com/cometalabs/devflow/internal/locks"
	"github.com/cometalabs/devflow/internal/ui"
)

var backupCmd = &cobra.Command{
	Use:     "backup",
	Short:   "Snapshot and rotate the database",
	GroupID: "maint",
}

// backupManager builds a Manager from retention config. Precedence:
// viper (env/config.yaml) over metadata.json over defaults.
func backupManager() *backup.Manager {
	meta, devflowDir := loadProjectMeta()

	retention := backup.DefaultRetention()
	if meta.BackupHourly > 0 {
		retention.Hourly = meta.BackupHourly
	}
	if meta.BackupDaily > 0 {
		retention.Daily = meta.BackupDaily
	}
	if meta.BackupWeekly > 0 {
		retention.Weekly = meta.BackupWeekly
	}
	if config.IsSet("backup.hourly") {
		retention.Hourly = config.GetInt("backup.hourly")
	}
	if config.IsSet("backup.daily") {
		retention.Daily = config.GetInt("backup.daily")
	}
	if config.IsSet("backup.weekly") {
		retention.Weekly = config.GetInt("backup.weekly")
	}

	dir := filepath.Join(devflowDir, "backups")
	if devflowDir == "" {
		dir = filepath.Join(filepath.Dir(store.Path()), "backups")
	}
	return backup.NewManager(store, dir, retention)
}

var backupRunCmd = &cobra.Command{
	Use:   "run",
	Short: "Take a snapshot now",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		m := backupManager()
		path, err := m.Snapshot(rootCtx)
		if err != nil {
			return err
		}
		pruned, err := m.Prune()
		if err != nil {
			return err
		}

		if jsonOutput {
			outputJSON(map[string]any{"path": path, "pruned": pruned})
			return nil
		}
		fmt.Printf("%s snapshot %s\n", ui.RenderPassIcon(), path)
		if pruned > 0 {
			fmt.Printf("  pruned %d old snapshot(s)\n", pruned)
		}
		return nil
	},
}

var backupListCmd = &cobra.Command{
	Use:   "list",
	Short: "List snapshots",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		backups, err := backupManager().List()
		if err != nil {
			return err
		}

		if jsonOutput {
			outputJSON(backups)
			return nil
		}
		if len(backups) == 0 {
			fmt.Println(ui.RenderMuted("no snapshots yet"))
			return nil
		}
		for _, b := range backups {
			fmt.Printf("%s  %-6s  %8d bytes  %s\n",
				b.CreatedAt.Local().Format("2006-01-02 15:04:05"),
				b.Bucket, b.Size, filepath.Base(b.Path))
		}
		return nil
	},
}

var backupPruneCmd = &cobra.Command{
	Use:   "prune",
	Short: "Delete snapshots beyond the retention windows",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		pruned, err := backupManager().Prune()
		if err != nil {
			return err
		}
		fmt.Printf("%s pruned %d snapshot(s)\n", ui.RenderPassIcon(), pruned)
		return nil
	},
}

var backupWatchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Snapshot automatically after the database changes",
	Long: `Watches the database for writes and takes a snapshot once activity
settles. Runs until interrupted.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		m := backupManager()

		// The watcher is the long-lived devflow process, so it also
		// sweeps expired session locks left by crashed hooks.
		coord := locks.NewCoordinator(store, 0)
		go coord.RunJanitor(rootCtx)

		fmt.Printf("watching %s (snapshots to %s)\n", store.Path(), m.Dir())
		return m.Watch(rootCtx)
	},
}

func init() {
	backupCmd.AddCommand(backupRunCmd, backupListCmd, backupPruneCmd, backupWatchCmd)
	rootCmd.AddCommand(backupCmd)
}
