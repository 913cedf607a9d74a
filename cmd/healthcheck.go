package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/iksnae/eebc-chat/internal"
	"github.com/spf13/cobra"
)

var (
	healthcheckProbe   bool
	healthcheckTimeout time.Duration
)

var (
	successStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("42")).
			Bold(true)

	warningStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("214")).
			Bold(true)

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196")).
			Bold(true)

	infoStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("39"))

	sectionStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("62")).
			Bold(true).
			Underline(true)
)

// healthcheckCmd represents the healthcheck command
var healthcheckCmd = &cobra.Command{
	Use:   "healthcheck",
	Short: "Check that the advisory backend is configured and reachable",
	Long: `Check the health of eebc-chat by verifying:
  • Configuration loading and validation
  • Backend health endpoint
  • Optionally, a probe question against the chat endpoint (--probe)

Use --verbose for the resolved settings.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		fmt.Fprintln(out, sectionStyle.Render("🔍 EEBC Chat Health Check"))
		fmt.Fprintln(out)

		// Step 1: Configuration
		fmt.Fprintln(out, infoStyle.Render("Step 1: Loading configuration..."))
		c, err := requireConfig()
		if err != nil {
			fmt.Fprintln(out, errorStyle.Render("❌ Configuration is invalid:"), err)
			return fmt.Errorf("health check failed: %w", err)
		}
		fmt.Fprintln(out, successStyle.Render("✅ Configuration loaded"))
		if verbose {
			path := configPath
			if path == "" {
				path = internal.DefaultConfigPath()
			}
			fmt.Fprintf(out, "   Config file: %s\n", path)
			fmt.Fprintf(out, "   Backend: %s\n", c.Backend.URL)
			fmt.Fprintf(out, "   Chat endpoint: %s\n", c.Backend.ChatPath)
			fmt.Fprintf(out, "   Health endpoint: %s\n", c.Backend.HealthPath)
			if d := c.RequestTimeout(); d > 0 {
				fmt.Fprintf(out, "   Request timeout: %s\n", d)
			} else {
				fmt.Fprintf(out, "   Request timeout: none\n")
			}
		}
		fmt.Fprintln(out)

		client := newAdvisorClient(c)

		// Step 2: Health endpoint
		fmt.Fprintln(out, infoStyle.Render("Step 2: Checking backend health..."))
		ctx, cancel := context.WithTimeout(cmd.Context(), healthcheckTimeout)
		defer cancel()
		start := time.Now()
		if err := client.Health(ctx); err != nil {
			fmt.Fprintln(out, errorStyle.Render("❌ Backend is not healthy:"), err)
			if code := internal.StatusCode(err); code != 0 {
				fmt.Fprintf(out, "   Status: %d\n", code)
			}
			fmt.Fprintln(out)
			fmt.Fprintln(out, sectionStyle.Render("📊 Summary"))
			fmt.Fprintln(out, errorStyle.Render("❌ Health check failed"))
			fmt.Fprintf(out, "   • Backend %s is unreachable or unhealthy\n", c.Backend.URL)
			return fmt.Errorf("health check failed: %w", err)
		}
		fmt.Fprintln(out, successStyle.Render(fmt.Sprintf("✅ Backend healthy (%s)", time.Since(start).Round(time.Millisecond))))
		fmt.Fprintln(out)

		// Step 3: Probe question
		probed := false
		if healthcheckProbe {
			fmt.Fprintln(out, infoStyle.Render("Step 3: Sending a probe question..."))
			resp, err := client.Ask(ctx, internal.ChatRequest{Message: "Which buildings does the code apply to?"})
			if err != nil {
				fmt.Fprintln(out, errorStyle.Render("❌ Chat endpoint failed:"), err)
				return fmt.Errorf("health check failed: %w", err)
			}
			probed = true
			if resp.Answer == "" {
				fmt.Fprintln(out, warningStyle.Render("⚠️  Chat endpoint answered with an empty answer"))
			} else {
				fmt.Fprintln(out, successStyle.Render(fmt.Sprintf("✅ Chat endpoint answered (%d source(s))", len(resp.Sources))))
			}
			if verbose {
				fmt.Fprintf(out, "   Applies: %s\n", resp.Applies.Label())
			}
			fmt.Fprintln(out)
		}

		// Summary
		fmt.Fprintln(out, sectionStyle.Render("📊 Summary"))
		fmt.Fprintln(out)
		fmt.Fprintln(out, successStyle.Render("✅ Health check passed!"))
		fmt.Fprintln(out, successStyle.Render("   • Backend: "+c.Backend.URL))
		if probed {
			fmt.Fprintln(out, successStyle.Render("   • Chat endpoint: answering"))
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(healthcheckCmd)
	healthcheckCmd.Flags().BoolVar(&healthcheckProbe, "probe", false, "Also send a probe question to the chat endpoint")
	healthcheckCmd.Flags().DurationVar(&healthcheckTimeout, "timeout", 10*time.Second, "Time allowed for the checks")
}
