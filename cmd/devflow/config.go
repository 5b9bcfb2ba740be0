package main

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/cometalabs/devflow/internal/config"
)

var configCmd = &cobra.Command{
	Use:     "config",
	GroupID: "setup",
	Short:   "Manage configuration settings",
	Long: `Manage devflow configuration.

Startup settings (db, debug, embeddings.*, backup.*, orchestrator.*,
summary.*) live in .devflow/config.yaml because they are read before the
database opens. Everything else is stored in the database metadata table.

Examples:
  devflow config set embeddings.provider ollama
  devflow config set backup.hourly 12
  devflow config get embeddings.provider
  devflow config list
  devflow config unset project.notes`,
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a configuration value",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		key, value := args[0], args[1]

		// Yaml-only keys are read at startup, before the database is
		// opened, so they must be written to config.yaml.
		if config.IsYamlOnlyKey(key) {
			if err := config.SetYamlConfig(key, value); err != nil {
				return err
			}
			if jsonOutput {
				outputJSON(map[string]string{"key": key, "value": value, "location": "config.yaml"})
			} else {
				fmt.Printf("Set %s = %s (in config.yaml)\n", key, value)
			}
			return nil
		}

		if err := store.SetMetadata(rootCtx, key, value); err != nil {
			return err
		}
		if jsonOutput {
			outputJSON(map[string]string{"key": key, "value": value})
		} else {
			fmt.Printf("Set %s = %s\n", key, value)
		}
		return nil
	},
}

var configGetCmd = &cobra.Command{
	Use:   "get <key>",
	Short: "Get a configuration value",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		key := args[0]

		var value string
		if config.IsYamlOnlyKey(key) {
			value = config.GetString(key)
		} else {
			var err error
			if value, err = store.GetMetadata(rootCtx, key); err != nil {
				return err
			}
		}

		if jsonOutput {
			outputJSON(map[string]string{"key": key, "value": value})
			return nil
		}
		if value == "" {
			fmt.Printf("%s is not set\n", key)
			return nil
		}
		fmt.Println(value)
		return nil
	},
}

var configListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all configuration",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := store.AllMetadata(rootCtx)
		if err != nil {
			return err
		}

		if jsonOutput {
			outputJSON(cfg)
			return nil
		}
		if len(cfg) == 0 {
			fmt.Println("No configuration set")
			return nil
		}

		keys := make([]string, 0, len(cfg))
		for k := range cfg {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		fmt.Println("\nConfiguration:")
		for _, k := range keys {
			fmt.Printf("  %s = %s\n", k, cfg[k])
		}
		fmt.Println("\nNote: startup keys live in .devflow/config.yaml; see 'devflow config --help'.")
		return nil
	},
}

var configUnsetCmd = &cobra.Command{
	Use:   "unset <key>",
	Short: "Delete a configuration value",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		key := args[0]
		if config.IsYamlOnlyKey(key) {
			return fmt.Errorf("%s lives in .devflow/config.yaml; edit the file to remove it", key)
		}
		if err := store.DeleteMetadata(rootCtx, key); err != nil {
			return err
		}
		fmt.Printf("Unset %s\n", key)
		return nil
	},
}

func init() {
	configCmd.AddCommand(configSetCmd, configGetCmd, configListCmd, configUnsetCmd)
	rootCmd.AddCommand(configCmd)
}
