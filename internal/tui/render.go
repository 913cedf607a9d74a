package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
	"github.com/iksnae/eebc-chat/internal"
)

const welcomeText = "Hi, I'm the EEBC Advisor. Describe your building (type, area, glazing/WWR, HVAC) " +
	"and I'll suggest relevant EEBC guidance with sources. Press Ctrl+B to fill in building details."

// Renderer turns transcript entries into terminal text
type Renderer struct {
	width    int
	markdown *glamour.TermRenderer
}

// NewRenderer creates a renderer wrapping text at width. With markdown
// enabled, assistant answers are rendered through glamour.
func NewRenderer(width int, markdown bool) *Renderer {
	if width < 20 {
		width = 20
	}
	r := &Renderer{width: width}
	if markdown {
		md, err := glamour.NewTermRenderer(
			glamour.WithAutoStyle(),
			glamour.WithWordWrap(width-4),
		)
		if err != nil {
			internal.LogWarn("markdown renderer unavailable: %v", err)
		} else {
			r.markdown = md
		}
	}
	return r
}

// Welcome renders the greeting shown above the transcript
func (r *Renderer) Welcome() string {
	label := advisorLabelStyle.Render("Advisor")
	body := contentStyle.Width(r.width).Render(welcomeText)
	return label + "\n" + body + "\n"
}

// Transcript renders every message, oldest first
func (r *Renderer) Transcript(messages []internal.ChatMessage) string {
	var sb strings.Builder
	for _, msg := range messages {
		sb.WriteString(r.Message(msg))
		sb.WriteString("\n")
	}
	return sb.String()
}

// Message renders one chat bubble
func (r *Renderer) Message(msg internal.ChatMessage) string {
	var sb strings.Builder

	stamp := ""
	if !msg.CreatedAt.IsZero() {
		stamp = " " + timeStyle.Render(msg.CreatedAt.Format("15:04"))
	}

	if msg.IsUser() {
		sb.WriteString(userLabelStyle.Render("You") + stamp + "\n")
		sb.WriteString(contentStyle.Width(r.width).Render(msg.Content))
		sb.WriteString("\n")
		return sb.String()
	}

	sb.WriteString(advisorLabelStyle.Render("Advisor") + stamp + "\n")
	if msg.Meta != nil {
		sb.WriteString("  " + ApplicabilityPill(msg.Meta.Applies))
		if msg.Meta.Reason != "" {
			sb.WriteString(" " + reasonStyle.Render(msg.Meta.Reason))
		}
		sb.WriteString("\n")
	}
	sb.WriteString(r.answer(msg.Content))
	if len(msg.Sources) > 0 {
		sb.WriteString(r.Sources(msg.Sources))
	}
	return sb.String()
}

// ApplicabilityPill renders "Applies: YES" and friends
func ApplicabilityPill(a internal.Applies) string {
	return pillStyle(a).Render("Applies: " + a.Label())
}

// Sources renders the citation block under an answer
func (r *Renderer) Sources(sources []internal.SourceCitation) string {
	var sb strings.Builder
	sb.WriteString(subtleStyle.Render(fmt.Sprintf("  Sources (%d)", len(sources))) + "\n")
	for _, src := range sources {
		sb.WriteString("  " + FormatSourceHeader(src) + "\n")
		if src.Excerpt != "" {
			sb.WriteString(sourceTextStyle.Width(r.width).Render(src.Excerpt) + "\n")
		}
	}
	return sb.String()
}

// FormatSourceHeader formats "p.12  p12_c3  0.873"; the score is left out
// when the backend did not send one.
func FormatSourceHeader(src internal.SourceCitation) string {
	parts := []string{sourceTagStyle.Render(fmt.Sprintf("p.%d", src.Page))}
	if src.ChunkID != "" {
		parts = append(parts, src.ChunkID)
	}
	if src.Score != nil {
		parts = append(parts, subtleStyle.Render(fmt.Sprintf("%.3f", *src.Score)))
	}
	return strings.Join(parts, "  ")
}

// answer renders markdown with panic recovery, falling back to plain text
func (r *Renderer) answer(content string) (out string) {
	plain := contentStyle.Width(r.width).Render(content) + "\n"
	if r.markdown == nil || strings.TrimSpace(content) == "" {
		return plain
	}
	defer func() {
		if rec := recover(); rec != nil {
			out = plain
		}
	}()
	rendered, err := r.markdown.Render(content)
	if err != nil {
		return plain
	}
	return rendered
}

// Context renders the normalized building context as a key list
func Context(ctx *internal.BuildingContext) string {
	fields := ctx.Fields()
	if len(fields) == 0 {
		return subtleStyle.Render("No building details set; messages are sent without context.")
	}
	rows := make([]string, 0, len(fields))
	for _, kv := range fields {
		rows = append(rows, fmt.Sprintf("%s %s", focusedLabelStyle.Render(kv.Key+":"), kv.Value))
	}
	return lipgloss.JoinVertical(lipgloss.Left, rows...)
}

// Toast renders the error notification box
func Toast(n internal.Notification, width int) string {
	w := width - 4
	if w < 20 {
		w = 20
	}
	return toastStyle.Width(w).Render(toastTitleStyle.Render("Error") + "\n" + n.Message)
}
