package cmd

import (
	"fmt"
	"os"

	"github.com/iksnae/eebc-chat/internal"
	"github.com/spf13/cobra"
)

var (
	verbose    bool
	configPath string
	backendURL string
	logFile    string
	version    string = "dev"
	commit     string = "unknown"
	date       string = "unknown"

	// loaded by PersistentPreRunE; commands read it through requireConfig
	cfg    *internal.Config
	cfgErr error
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "eebc-chat",
	Short: "Chat with the EEBC advisory service from your terminal",
	Long: `A terminal client for the Energy Efficient Building Code advisor.

Describe your building and ask questions; the advisor answers with an
applicability verdict and the code excerpts it relied on.

Features:
  • Interactive chat with a building details drawer (Ctrl+B)
  • One-shot questions for scripts and pipelines
  • Export conversations (JSONL, Markdown, YAML, JSON)
  • Backend health checks
  • A built-in mock backend for offline demos

Quick Start:
  eebc-chat chat                                   # Start the chat
  eebc-chat ask "Does the code apply?" --district Colombo
  eebc-chat healthcheck                            # Check the backend

Configuration is read from ~/.config/eebc-chat/config.yaml, a .env file and
EEBC_* environment variables.`,
	Version:       fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, date),
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		internal.SetVerbose(verbose)
		if err := internal.LoadEnv(); err != nil {
			internal.LogWarn("%v", err)
		}
		cfg, cfgErr = loadConfig()
		if cfgErr != nil {
			internal.LogDebug("configuration not usable: %v", cfgErr)
			return nil
		}
		applyLogging(cfg)
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		internal.SyncLogs()
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Config file (default ~/.config/eebc-chat/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&backendURL, "backend", "", "Advisory backend URL (overrides backend.url)")
	rootCmd.PersistentFlags().StringVar(&logFile, "log-file", "", "Write logs to this file instead of stderr")

	// Set version template to ensure --version flag works
	rootCmd.SetVersionTemplate(`{{printf "%s\n" .Version}}`)
}

// loadConfig layers file, environment and flags, then validates the result
func loadConfig() (*internal.Config, error) {
	path := configPath
	if path == "" {
		path = internal.DefaultConfigPath()
	}
	c, err := internal.LoadConfig(path)
	if err != nil {
		return nil, err
	}
	if backendURL != "" {
		c.Backend.URL = backendURL
	}
	if logFile != "" {
		c.Logging.File = logFile
	}
	if err := c.Validate(); err != nil {
		return c, err
	}
	return c, nil
}

func applyLogging(c *internal.Config) {
	if !verbose && c.Logging.Level != "" {
		if level, err := internal.ParseLogLevel(c.Logging.Level); err == nil {
			internal.SetLogLevel(level)
		}
	}
	if c.Logging.File != "" {
		internal.SetLogFile(c.Logging.File)
	}
}

// requireConfig returns the loaded configuration or the reason it is unusable
func requireConfig() (*internal.Config, error) {
	if cfgErr != nil {
		return nil, cfgErr
	}
	if cfg == nil {
		return nil, fmt.Errorf("configuration not loaded")
	}
	return cfg, nil
}

// newAdvisorClient builds the HTTP client for the configured backend
func newAdvisorClient(c *internal.Config) *internal.AdvisorClient {
	return internal.NewAdvisorClient(c.Backend.URL,
		internal.WithPaths(c.Backend.ChatPath, c.Backend.HealthPath),
		internal.WithRequestTimeout(c.RequestTimeout()),
	)
}

// newController wires a controller with the configured notification
// timeout and the context presets already in the form.
func newController(c *internal.Config, advisor internal.Advisor) *internal.Controller {
	form := internal.NewBuildingForm()
	c.ApplyContext(form)
	return internal.NewController(advisor,
		internal.WithForm(form),
		internal.WithNotifier(internal.NewNotifier(internal.WithTimeout(c.NotificationTimeout()))),
	)
}
