package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/iksnae/eebc-chat/internal"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var configForce bool

// configCmd groups the configuration helpers
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Inspect or create the configuration file",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective configuration as YAML",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := requireConfig()
		if err != nil {
			return err
		}
		enc := yaml.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent(2)
		if err := enc.Encode(c); err != nil {
			return fmt.Errorf("failed to encode config: %w", err)
		}
		return enc.Close()
	},
}

var configInitCmd = &cobra.Command{
	Use:   "init [path]",
	Short: "Write the default configuration file",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := internal.DefaultConfigPath()
		if configPath != "" {
			path = configPath
		}
		if len(args) == 1 {
			path = args[0]
		}
		if path == "" {
			return fmt.Errorf("cannot determine config directory; pass a path")
		}

		if _, err := os.Stat(path); err == nil && !configForce {
			return fmt.Errorf("%s already exists (use --force to overwrite)", path)
		}
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return &internal.ConfigError{Path: path, Err: err}
		}
		if err := os.WriteFile(path, internal.DefaultConfigBytes(), 0644); err != nil {
			return &internal.ConfigError{Path: path, Err: err}
		}
		internal.PrintSuccess(cmd.OutOrStdout(), "Wrote "+path)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configShowCmd, configInitCmd)
	configInitCmd.Flags().BoolVar(&configForce, "force", false, "Overwrite an existing file")
}
