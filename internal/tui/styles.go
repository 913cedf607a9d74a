// Package tui is the interactive chat surface: transcript, composer,
// building details drawer and error toast.
package tui

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/iksnae/eebc-chat/internal"
)

var (
	brandColor   = lipgloss.Color("42")
	mutedColor   = lipgloss.Color("243")
	userColor    = lipgloss.Color("39")
	advisorColor = lipgloss.Color("135")
	borderColor  = lipgloss.Color("238")
	errorColor   = lipgloss.Color("196")
)

var (
	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(brandColor).
			Padding(0, 1)

	subtleStyle = lipgloss.NewStyle().
			Foreground(mutedColor)

	userLabelStyle = lipgloss.NewStyle().
			Foreground(userColor).
			Bold(true)

	advisorLabelStyle = lipgloss.NewStyle().
				Foreground(advisorColor).
				Bold(true)

	contentStyle = lipgloss.NewStyle().
			Padding(0, 2)

	timeStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")).
			Italic(true)

	reasonStyle = lipgloss.NewStyle().
			Foreground(mutedColor).
			Italic(true)

	sourceTagStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("214")).
			Bold(true)

	sourceTextStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("250")).
			PaddingLeft(4)

	panelStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(borderColor).
			Padding(0, 1)

	focusedLabelStyle = lipgloss.NewStyle().
				Foreground(brandColor).
				Bold(true)

	toastStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(errorColor).
			Padding(0, 1)

	toastTitleStyle = lipgloss.NewStyle().
			Foreground(errorColor).
			Bold(true)
)

// pillStyle colours the applicability pill by verdict
func pillStyle(a internal.Applies) lipgloss.Style {
	base := lipgloss.NewStyle().Bold(true).Padding(0, 1)
	switch a {
	case internal.AppliesYes:
		return base.Foreground(lipgloss.Color("0")).Background(lipgloss.Color("42"))
	case internal.AppliesNo:
		return base.Foreground(lipgloss.Color("15")).Background(lipgloss.Color("160"))
	case internal.AppliesPartial:
		return base.Foreground(lipgloss.Color("0")).Background(lipgloss.Color("214"))
	default:
		return base.Foreground(lipgloss.Color("15")).Background(lipgloss.Color("240"))
	}
}
