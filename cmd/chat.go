package cmd

import (
	"context"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/iksnae/eebc-chat/internal"
	"github.com/iksnae/eebc-chat/internal/tui"
	"github.com/spf13/cobra"
)

// chatCmd represents the chat command
var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Start the interactive advisor chat",
	Long: `Open the chat screen.

Keys:
  Enter        send the message
  Alt+Enter    insert a new line
  Ctrl+B       show or hide the building details drawer
  Esc          close the drawer or dismiss an error
  Ctrl+C       quit

Type /help inside the chat for slash commands.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := requireConfig()
		if err != nil {
			return err
		}
		// the renderer owns the terminal
		if c.Logging.File == "" {
			internal.SetLogFile(defaultChatLogFile())
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		startMetrics(ctx, c)

		ctrl := newController(c, newAdvisorClient(c))
		internal.LogInfo("chat session started against %s", c.Backend.URL)
		return tui.Run(ctx, ctrl, tui.Options{
			Backend:  c.Backend.URL,
			Markdown: c.UI.Markdown,
		})
	},
}

func init() {
	rootCmd.AddCommand(chatCmd)
}

func defaultChatLogFile() string {
	dir, err := os.UserCacheDir()
	if err != nil {
		dir = os.TempDir()
	}
	return filepath.Join(dir, "eebc-chat", "chat.log")
}

// startMetrics serves Prometheus metrics in the background when configured
func startMetrics(ctx context.Context, c *internal.Config) {
	if c.Metrics.Addr == "" {
		return
	}
	go func() {
		if err := internal.ServeMetrics(ctx, c.Metrics.Addr); err != nil {
			internal.LogError("metrics server: %v", err)
		}
	}()
}
