package export

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
)

// MarkdownExporter renders a session as a readable transcript.
type MarkdownExporter struct{}

func (e *MarkdownExporter) Export(session *Session, w io.Writer) error {
	// Header
	_, _ = fmt.Fprintf(w, "# Session %s\n\n", session.UUID)

	if session.Summary != "" {
		_, _ = fmt.Fprintf(w, "**Summary:** %s  \n", escapeMarkdown(session.Summary))
	}
	if session.Project != "" {
		_, _ = fmt.Fprintf(w, "**Project:** %s  \n", session.Project)
	}
	if session.CreatedAt != "" {
		_, _ = fmt.Fprintf(w, "**Started:** %s  \n", session.CreatedAt)
	}
	_, _ = fmt.Fprintf(w, "**Messages:** %d  \n", len(session.Messages))
	_, _ = fmt.Fprintf(w, "**Tokens:** %d in / %d out\n\n", session.InputTokens, session.OutputTokens)

	_, _ = fmt.Fprintf(w, "---\n\n")

	for i, msg := range session.Messages {
		actor := msg.Role
		if actor == "" {
			actor = msg.Type
		}
		timestamp := ""
		if msg.Timestamp != "" {
			timestamp = fmt.Sprintf(" (%s)", msg.Timestamp)
		}
		_, _ = fmt.Fprintf(w, "**%s:**%s\n\n", actor, timestamp)

		for _, b := range msg.Blocks {
			writeBlock(w, b)
		}

		// Add horizontal rule after each message (except the last one)
		if i < len(session.Messages)-1 {
			_, _ = fmt.Fprintf(w, "---\n\n")
		}
	}

	return nil
}

func writeBlock(w io.Writer, b Block) {
	switch b.Kind {
	case "tool_use":
		input, _ := json.MarshalIndent(b.ToolInput, "", "  ")
		_, _ = fmt.Fprintf(w, "Tool call `%s` (%s):\n\n```json\n%s\n```\n\n", b.ToolName, b.ToolUseID, input)
	case "tool_result":
		label := "Tool result"
		if b.IsError {
			label = "Tool error"
		}
		_, _ = fmt.Fprintf(w, "%s (%s):\n\n```\n%s\n```\n\n", label, b.ToolUseID, strings.TrimRight(b.Text, "\n"))
	case "thinking":
		_, _ = fmt.Fprintf(w, "> %s\n\n", strings.ReplaceAll(escapeMarkdown(b.Text), "\n", "\n> "))
	default:
		if b.Text != "" {
			_, _ = fmt.Fprintf(w, "%s\n\n", escapeMarkdown(b.Text))
		}
	}
}

// escapeMarkdown escapes markdown special characters
func escapeMarkdown(text string) string {
	// Basic escaping - preserve code blocks
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

func (e *MarkdownExporter) Extension() string {
	return "md"
}
