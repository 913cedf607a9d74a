package export

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/iksnae/eebc-chat/internal"
)

// MarkdownExporter exports sessions in Markdown format
type MarkdownExporter struct{}

// Export exports a session to Markdown format
func (e *MarkdownExporter) Export(session *internal.Session, w io.Writer) error {
	_, _ = fmt.Fprintf(w, "# Session %s\n\n", session.ID)

	if !session.StartedAt.IsZero() {
		_, _ = fmt.Fprintf(w, "**Started:** %s  \n", session.StartedAt.Format(time.RFC3339))
	}
	if session.Backend != "" {
		_, _ = fmt.Fprintf(w, "**Backend:** %s  \n", session.Backend)
	}
	_, _ = fmt.Fprintf(w, "**Messages:** %d\n\n", len(session.Messages))

	if fields := session.Context.Fields(); len(fields) > 0 {
		_, _ = fmt.Fprintf(w, "## Building\n\n")
		for _, kv := range fields {
			_, _ = fmt.Fprintf(w, "- **%s:** %s\n", kv.Key, kv.Value)
		}
		_, _ = fmt.Fprintf(w, "\n")
	}

	_, _ = fmt.Fprintf(w, "---\n\n")
	_, _ = fmt.Fprintf(w, "## Messages\n\n")

	for i, msg := range session.Messages {
		timestamp := ""
		if !msg.CreatedAt.IsZero() {
			timestamp = fmt.Sprintf(" (%s)", msg.CreatedAt.Format(time.RFC3339))
		}

		_, _ = fmt.Fprintf(w, "**%s:**%s\n\n", msg.Role, timestamp)

		if msg.Meta != nil {
			_, _ = fmt.Fprintf(w, "_Applies: %s_", msg.Meta.Applies.Label())
			if msg.Meta.Reason != "" {
				_, _ = fmt.Fprintf(w, " - %s", escapeMarkdown(msg.Meta.Reason))
			}
			_, _ = fmt.Fprintf(w, "\n\n")
		}

		content := msg.Content
		if msg.IsUser() {
			content = escapeMarkdown(content)
		}
		_, _ = fmt.Fprintf(w, "%s\n\n", content)

		if len(msg.Sources) > 0 {
			_, _ = fmt.Fprintf(w, "Sources (%d):\n\n", len(msg.Sources))
			for _, src := range msg.Sources {
				score := ""
				if src.Score != nil {
					score = fmt.Sprintf(" (%.3f)", *src.Score)
				}
				_, _ = fmt.Fprintf(w, "- p.%d `%s`%s: %s\n", src.Page, src.ChunkID, score, oneLine(src.Excerpt))
			}
			_, _ = fmt.Fprintf(w, "\n")
		}

		if i < len(session.Messages)-1 {
			_, _ = fmt.Fprintf(w, "---\n\n")
		}
	}

	return nil
}

// escapeMarkdown escapes markdown special characters outside code blocks
func escapeMarkdown(text string) string {
	lines := strings.Split(text, "\n")
	var result []string
	inCodeBlock := false

	for _, line := range lines {
		if strings.HasPrefix(line, "```") {
			inCodeBlock = !inCodeBlock
			result = append(result, line)
		} else if inCodeBlock {
			result = append(result, line)
		} else {
			line = strings.ReplaceAll(line, "**", "\\*\\*")
			line = strings.ReplaceAll(line, "__", "\\_\\_")
			result = append(result, line)
		}
	}

	return strings.Join(result, "\n")
}

func oneLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// Extension returns the file extension for this format
func (e *MarkdownExporter) Extension() string {
	return "md"
}
