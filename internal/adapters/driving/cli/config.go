package cli

import (
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"
)

// Keys holding secrets are masked in 'config list' output.
var secretKeys = map[string]bool{
	"auth.client_secret": true,
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Inspect and edit configuration",
	Long: `Read and write settings in the TOML config file.

Keys use dot notation, so 'auth.client_id' lives under the [auth] table.

Examples:
  gdevutils config list
  gdevutils config get account
  gdevutils config set account user@example.com`,
}

var configGetCmd = &cobra.Command{
	Use:   "get [key]",
	Short: "Print a config value",
	Args:  cobra.ExactArgs(1),
	RunE:  runConfigGet,
}

var configSetCmd = &cobra.Command{
	Use:   "set [key] [value]",
	Short: "Set a config value",
	Args:  cobra.ExactArgs(2),
	RunE:  runConfigSet,
}

var configListCmd = &cobra.Command{
	Use:   "list",
	Short: "Print all config values",
	RunE:  runConfigList,
}

func init() {
	configCmd.AddCommand(configGetCmd)
	configCmd.AddCommand(configSetCmd)
	configCmd.AddCommand(configListCmd)
	rootCmd.AddCommand(configCmd)
}

func runConfigGet(cmd *cobra.Command, args []string) error {
	cfg, err := ensureConfig()
	if err != nil {
		return err
	}

	value, ok := cfg.Get(args[0])
	if !ok {
		return fmt.Errorf("key %q is not set", args[0])
	}
	cmd.Printf("%v\n", value)
	return nil
}

func runConfigSet(cmd *cobra.Command, args []string) error {
	cfg, err := ensureConfig()
	if err != nil {
		return err
	}

	if err := cfg.Set(args[0], args[1]); err != nil {
		return fmt.Errorf("setting %s: %w", args[0], err)
	}
	cmd.Printf("Set %s\n", args[0])
	return nil
}

func runConfigList(cmd *cobra.Command, _ []string) error {
	cfg, err := ensureConfig()
	if err != nil {
		return err
	}

	keys := cfg.Keys()
	if len(keys) == 0 {
		cmd.Println("No configuration set.")
		cmd.Printf("Config file: %s\n", mutedStyle.Render(cfg.Path()))
		return nil
	}
	sort.Strings(keys)

	for _, key := range keys {
		value, _ := cfg.Get(key)
		display := fmt.Sprintf("%v", value)
		if secretKeys[key] && display != "" {
			display = strings.Repeat("*", 8)
		}
		cmd.Printf("%s = %s\n", headerStyle.Render(key), display)
	}
	cmd.Println()
	cmd.Printf("Config file: %s\n", mutedStyle.Render(cfg.Path()))
	return nil
}
