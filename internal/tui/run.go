package tui

import (
	"context"
	"errors"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/iksnae/eebc-chat/internal"
)

// Run shows the chat screen until the user quits or ctx is cancelled.
// The controller is closed on return.
func Run(ctx context.Context, ctrl *internal.Controller, opts Options) error {
	defer ctrl.Close()

	p := tea.NewProgram(
		NewModel(ctx, ctrl, opts),
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
		tea.WithContext(ctx),
	)
	// Show may fire from inside Update, so never block the event loop
	ctrl.Notifier().OnChange(func() {
		go p.Send(notificationMsg{})
	})

	_, err := p.Run()
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}
	return err
}
