package tui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/iksnae/eebc-chat/internal"
	"github.com/iksnae/eebc-chat/internal/export"
)

const helpText = `Commands:
  /help                     show this help
  /context                  show the building details sent with each message
  /export <format> [path]   save the conversation (jsonl, md, yaml, json)
  /quit                     leave the chat`

// runCommand executes one slash command line
func (m Model) runCommand(line string) (tea.Model, tea.Cmd) {
	fields := strings.Fields(line)
	name := strings.ToLower(strings.TrimPrefix(fields[0], "/"))
	args := fields[1:]

	switch name {
	case "help", "h", "?":
		m.info = subtleStyle.Render(helpText)

	case "context", "ctx":
		m.info = Context(internal.Normalize(m.ctrl.Form().Snapshot()))

	case "export":
		if len(args) == 0 {
			m.ctrl.Notifier().Show("Usage: /export <format> [path]")
			return m, nil
		}
		path := ""
		if len(args) > 1 {
			path = args[1]
		}
		session := m.ctrl.Snapshot()
		session.Backend = m.opts.Backend
		written, err := export.WriteFile(session, args[0], path)
		if err != nil {
			internal.LogError("export failed: %v", err)
			m.ctrl.Notifier().Show(err.Error())
			return m, nil
		}
		m.info = subtleStyle.Render(fmt.Sprintf("Exported %d messages to %s", len(session.Messages), written))

	case "quit", "exit", "q":
		return m, tea.Quit

	default:
		m.ctrl.Notifier().Show(fmt.Sprintf("Unknown command: /%s (try /help)", name))
		return m, nil
	}

	m = m.refresh(true)
	return m, nil
}
