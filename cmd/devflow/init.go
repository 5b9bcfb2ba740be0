package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/cometalabs/devflow/internal/brain"
	"github.com/cometalabs/devflow/internal/configfile"
	"github.com/cometalabs/devflow/internal/ui"
)

var initCmd = &cobra.Command{
	Use:     "init",
	Short:   "Initialize devflow in the current directory",
	GroupID: "setup",
	Long: `Initialize devflow in the current directory by creating a .devflow/
directory, the Cometa Brain database, and a starter config.

With --claude: also registers the hook commands in .claude/settings.json
so Claude Code starts feeding events into the brain.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		installClaude, _ := cmd.Flags().GetBool("claude")
		force, _ := cmd.Flags().GetBool("force")

		cwd, err := os.Getwd()
		if err != nil {
			return err
		}
		devflowDir := filepath.Join(cwd, ".devflow")

		if _, err := os.Stat(devflowDir); err == nil && !force {
			return fmt.Errorf(".devflow already exists (use --force to re-initialize)")
		}

		for _, dir := range []string{devflowDir, filepath.Join(devflowDir, "backups")} {
			if err := os.MkdirAll(dir, 0750); err != nil {
				return fmt.Errorf("creating %s: %w", dir, err)
			}
		}

		meta := configfile.DefaultConfig()
		if err := meta.Save(devflowDir); err != nil {
			return err
		}

		configPath := filepath.Join(devflowDir, "config.yaml")
		if _, err := os.Stat(configPath); os.IsNotExist(err) {
			if err := os.WriteFile(configPath, []byte(starterConfigYaml), 0600); err != nil {
				return fmt.Errorf("writing config.yaml: %w", err)
			}
		}

		// Opening the store creates the schema.
		s, err := brain.Open(rootCtx, meta.DatabasePath(devflowDir))
		if err != nil {
			return fmt.Errorf("creating database: %w", err)
		}
		_ = s.Close()

		if installClaude {
			if err := installClaudeHooks(cwd); err != nil {
				return fmt.Errorf("installing Claude Code hooks: %w", err)
			}
			fmt.Printf("%s registered hooks in .claude/settings.json\n", ui.RenderPassIcon())
		}

		fmt.Printf("%s initialized .devflow/ (database %s)\n",
			ui.RenderPassIcon(), meta.Database)
		if !installClaude {
			fmt.Println(ui.RenderMuted("run 'devflow init --claude --force' to register Claude Code hooks"))
		}
		return nil
	},
}

const starterConfigYaml = `# devflow configuration (read at startup, before the database opens)
# db: cometa.db
# debug: false
# embeddings:
#   provider: simulated    # or: ollama
#   endpoint: http://localhost:11434
#   model: nomic-embed-text
# backup:
#   hourly: 24
#   daily: 7
#   weekly: 4
`

// hookSettings mirrors the hooks section of .claude/settings.json.
type hookSettings struct {
	Matcher string `json:"matcher,omitempty"`
	Hooks   []struct {
		Type    string `json:"type"`
		Command string `json:"command"`
	} `json:"hooks"`
}

// installClaudeHooks merges the devflow hook commands into the project's
// .claude/settings.json, preserving unrelated settings.
func installClaudeHooks(projectRoot string) error {
	claudeDir := filepath.Join(projectRoot, ".claude")
	if err := os.MkdirAll(claudeDir, 0750); err != nil {
		return err
	}
	settingsPath := filepath.Join(claudeDir, "settings.json")

	settings := map[string]json.RawMessage{}
	if data, err := os.ReadFile(settingsPath); err == nil { // #nosec G304 - path under project root
		if err := json.Unmarshal(data, &settings); err != nil {
			return fmt.Errorf("parsing existing settings.json: %w", err)
		}
	}

	hooks := map[string][]hookSettings{}
	if raw, ok := settings["hooks"]; ok {
		if err := json.Unmarshal(raw, &hooks); err != nil {
			return fmt.Errorf("parsing hooks section: %w", err)
		}
	}

	for _, he := range hookEventNames {
		entry := hookSettings{}
		entry.Hooks = append(entry.Hooks, struct {
			Type    string `json:"type"`
			Command string `json:"command"`
		}{Type: "command", Command: "devflow hook " + he.use})
		hooks[string(he.event)] = []hookSettings{entry}
	}

	rawHooks, err := json.Marshal(hooks)
	if err != nil {
		return err
	}
	settings["hooks"] = rawHooks

	data, err := json.MarshalIndent(settings, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(settingsPath, append(data, '\n'), 0600)
}

func init() {
	initCmd.Flags().Bool("claude", false, "Register hook commands in .claude/settings.json")
	initCmd.Flags().Bool("force", false, "Re-initialize even if .devflow exists")
	rootCmd.AddCommand(initCmd)
}
