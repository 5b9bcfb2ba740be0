package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/cometalabs/devflow/internal/brain"
	"github.com/cometalabs/devflow/internal/config"
	"github.com/cometalabs/devflow/internal/configfile"
	"github.com/cometalabs/devflow/internal/debug"
	"github.com/cometalabs/devflow/internal/telemetry"
)

var (
	dbPath      string
	jsonOutput  bool
	verboseFlag bool
	quietFlag   bool

	store *brain.Store

	// Signal-aware context for graceful cancellation
	rootCtx    context.Context
	rootCancel context.CancelFunc
)

// noDbCommands run without opening the database. Hook subcommands manage
// their own store so they can fail open when the database is unavailable.
var noDbCommands = map[string]bool{
	"init":       true,
	"version":    true,
	"help":       true,
	"completion": true,
	"hook":       true,
	"route":      true,
	"check-tool": true,
}

func isNoDbCommand(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if noDbCommands[c.Name()] {
			return true
		}
	}
	return false
}

func init() {
	if err := config.Initialize(); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: failed to initialize config: %v\n", err)
	}

	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "", "Database path (default: auto-discover .devflow/*.db)")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Output in JSON format")
	rootCmd.PersistentFlags().BoolVarP(&verboseFlag, "verbose", "v", false, "Enable verbose/debug output")
	rootCmd.PersistentFlags().BoolVarP(&quietFlag, "quiet", "q", false, "Suppress non-essential output (errors only)")

	rootCmd.Flags().BoolP("version", "V", false, "Print version information")

	rootCmd.AddGroup(
		&cobra.Group{ID: "memory", Title: "Memory & Sessions:"},
		&cobra.Group{ID: "tasks", Title: "Tasks:"},
		&cobra.Group{ID: "maint", Title: "Maintenance:"},
		&cobra.Group{ID: "setup", Title: "Setup & Configuration:"},
	)
}

var rootCmd = &cobra.Command{
	Use:   "devflow",
	Short: "devflow - persistent memory and guardrails for Claude Code sessions",
	Long: `DevFlow wires Claude Code lifecycle hooks into a local SQLite brain:
prompts are classified and remembered, risky tool calls are gated, and past
context is recalled into new sessions.`,
	Run: func(cmd *cobra.Command, args []string) {
		if v, _ := cmd.Flags().GetBool("version"); v {
			fmt.Printf("devflow version %s (%s)\n", Version, Build)
			return
		}
		_ = cmd.Help() // Help() always returns nil for cobra commands
	},
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		setupSignalContext()
		applyVerbosityFlags()

		if err := telemetry.Init(rootCtx, "devflow", Version); err != nil {
			debug.Logf("telemetry init failed: %v", err)
		}

		if isNoDbCommand(cmd) {
			return nil
		}

		s, err := openStore(rootCtx)
		if err != nil {
			return err
		}
		store = s
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if store != nil {
			_ = store.Close()
			store = nil
		}

		telemetry.Shutdown(context.Background())

		if rootCancel != nil {
			rootCancel()
		}
	},
	SilenceUsage: true,
}

func setupSignalContext() {
	rootCtx, rootCancel = signal.NotifyContext(context.Background(),
		os.Interrupt, syscall.SIGTERM)
}

func applyVerbosityFlags() {
	if verboseFlag {
		debug.SetVerbose(true)
	}
	if quietFlag {
		debug.SetQuiet(true)
	}
}

// resolveDBPath picks the database file. Priority: --db flag, DEVFLOW_DB /
// config.yaml db key, metadata.json in the nearest .devflow directory.
func resolveDBPath() (string, error) {
	if dbPath != "" {
		return dbPath, nil
	}
	if p := config.GetString("db"); p != "" {
		return p, nil
	}

	dir := config.FindDevflowDir("")
	if dir == "" {
		return "", fmt.Errorf("no .devflow directory found (run 'devflow init' first)")
	}

	cfg, err := configfile.Load(dir)
	if err != nil {
		return "", err
	}
	if cfg == nil {
		cfg = configfile.DefaultConfig()
	}
	return cfg.DatabasePath(dir), nil
}

func openStore(ctx context.Context) (*brain.Store, error) {
	path, err := resolveDBPath()
	if err != nil {
		return nil, err
	}
	debug.Logf("opening database %s", path)
	return brain.Open(ctx, path)
}

// devflowDirFor returns the .devflow directory that owns the resolved
// database, or the nearest one when the path came from a flag.
func devflowDirFor() string {
	if dir := config.FindDevflowDir(""); dir != "" {
		return dir
	}
	if dbPath != "" {
		return filepath.Dir(dbPath)
	}
	return ""
}

// loadProjectMeta reads metadata.json from the nearest .devflow directory,
// falling back to defaults. The directory is returned alongside ("" when
// the project has none).
func loadProjectMeta() (*configfile.Config, string) {
	dir := config.FindDevflowDir("")
	return loadProjectMetaAt(dir), dir
}

func loadProjectMetaAt(dir string) *configfile.Config {
	if dir == "" {
		return configfile.DefaultConfig()
	}
	meta, err := configfile.Load(dir)
	if err != nil || meta == nil {
		if err != nil {
			debug.Logf("config: %v", err)
		}
		meta = configfile.DefaultConfig()
	}
	return meta
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
