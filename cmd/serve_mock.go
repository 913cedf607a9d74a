package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/iksnae/eebc-chat/internal"
	"github.com/iksnae/eebc-chat/internal/mockadvisor"
	"github.com/spf13/cobra"
)

var (
	mockAddr   string
	mockStatus int
	mockBody   string
	mockDelay  time.Duration
)

// serveMockCmd represents the serve-mock command
var serveMockCmd = &cobra.Command{
	Use:   "serve-mock",
	Short: "Run a stand-in advisory backend",
	Long: `Serve POST /api/chat and GET /health with canned, context-aware answers.

Point the client at it with --backend http://localhost:5000. Use --status
to force every chat request to fail, for example to see the error toast.`,
	Example: `  eebc-chat serve-mock --addr :5000
  eebc-chat serve-mock --status 500 --body "server overloaded"
  eebc-chat serve-mock --delay 3s`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if mockStatus != 0 && (mockStatus < 400 || mockStatus > 599) {
			return fmt.Errorf("--status must be between 400 and 599, got %d", mockStatus)
		}
		srv := mockadvisor.New(mockadvisor.Options{
			FailStatus: mockStatus,
			FailBody:   mockBody,
			Delay:      mockDelay,
		})

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		go func() {
			<-ctx.Done()
			if err := srv.Shutdown(); err != nil {
				internal.LogWarn("mock advisor shutdown: %v", err)
			}
		}()

		internal.PrintInfo(cmd.ErrOrStderr(), fmt.Sprintf("Mock advisor on %s (Ctrl+C to stop)", mockAddr))
		return srv.Listen(mockAddr)
	},
}

func init() {
	rootCmd.AddCommand(serveMockCmd)
	serveMockCmd.Flags().StringVar(&mockAddr, "addr", ":5000", "Listen address")
	serveMockCmd.Flags().IntVar(&mockStatus, "status", 0, "Fail every chat request with this HTTP status")
	serveMockCmd.Flags().StringVar(&mockBody, "body", "", "Body sent with --status")
	serveMockCmd.Flags().DurationVar(&mockDelay, "delay", 0, "Delay before each chat reply")
}
