package cmd

import (
	"errors"
	"fmt"
	"strings"

	"github.com/iksnae/eebc-chat/internal"
	"github.com/iksnae/eebc-chat/internal/export"
	"github.com/iksnae/eebc-chat/internal/tui"
	"github.com/spf13/cobra"
)

var (
	askOutput string
	askFields = make(map[internal.ContextField]*string, len(internal.ContextFields))
)

// askCmd represents the ask command
var askCmd = &cobra.Command{
	Use:   "ask <message>",
	Short: "Ask one question and print the answer",
	Long: `Send a single question to the advisor and print the reply.

Building details are given as flags. Blank or unparseable values are left
out of the request, exactly as in the chat drawer.

Output formats: text (default), json, jsonl, yaml, md.`,
	Example: `  eebc-chat ask "Which envelope rules apply?" --district Colombo --floor-area-m2 1200
  eebc-chat ask "Is a VRF system compliant?" --hvac-type VRF --output json`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := requireConfig()
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()

		ctrl := newController(c, newAdvisorClient(c))
		defer ctrl.Close()
		for field, value := range askFields {
			if *value != "" {
				if err := ctrl.Form().Set(field, *value); err != nil {
					return err
				}
			}
		}

		ctx := cmd.Context()
		message := strings.Join(args, " ")
		var reply *internal.ChatMessage
		err = internal.ShowProgress(ctx, "Asking the advisor", func() error {
			var sendErr error
			reply, sendErr = ctrl.Send(ctx, message)
			return sendErr
		})
		if errors.Is(err, internal.ErrEmptyDraft) {
			return fmt.Errorf("message is empty")
		}
		if err != nil {
			return err
		}

		if askOutput == "" || askOutput == "text" {
			markdown := c.UI.Markdown && internal.IsTerminal(out)
			fmt.Fprint(out, tui.NewRenderer(100, markdown).Message(*reply))
			return nil
		}

		exporter, err := export.NewExporter(askOutput)
		if err != nil {
			return err
		}
		session := ctrl.Snapshot()
		session.Backend = c.Backend.URL
		return exporter.Export(session, out)
	},
}

func init() {
	rootCmd.AddCommand(askCmd)
	askCmd.Flags().StringVarP(&askOutput, "output", "o", "text", "Output format (text, json, jsonl, yaml, md)")
	for _, field := range internal.ContextFields {
		name := strings.ReplaceAll(string(field), "_", "-")
		usage := tui.FieldLabel(field)
		if field == internal.FieldIsNewBuilding {
			usage += " (true or false)"
		}
		askFields[field] = askCmd.Flags().String(name, "", usage)
	}
}
