package export

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/qorvid/cursor-atlas/internal"
)

// MarkdownExporter renders conversations as Markdown documents.
type MarkdownExporter struct{}

// Export writes the conversation timeline, metrics, and code edits as
// Markdown.
func (e *MarkdownExporter) Export(conv *internal.Conversation, w io.Writer) error {
	title := conv.Title
	if title == "" {
		title = conv.ID
	}
	if _, err := fmt.Fprintf(w, "# %s\n\n", title); err != nil {
		return err
	}

	_, _ = fmt.Fprintf(w, "**Conversation:** %s  \n", conv.ID)
	if conv.CreatedAt > 0 {
		_, _ = fmt.Fprintf(w, "**Created:** %s  \n", formatMillis(conv.CreatedAt))
	}
	_, _ = fmt.Fprintf(w, "**Messages:** %d\n\n", len(conv.Messages))

	if conv.Metrics != nil {
		writeMetrics(w, conv.Metrics)
	}

	_, _ = fmt.Fprintf(w, "---\n\n")

	for i, msg := range conv.Messages {
		timestamp := ""
		if msg.Timestamp > 0 {
			timestamp = fmt.Sprintf(" (%s)", formatMillis(msg.Timestamp))
		}
		_, _ = fmt.Fprintf(w, "**%s:**%s\n\n", msg.Role, timestamp)

		if msg.Thinking != "" {
			_, _ = fmt.Fprintf(w, "> _thinking_\n>\n%s\n\n", quoteLines(msg.Thinking))
		}

		if msg.Content != "" {
			_, _ = fmt.Fprintf(w, "%s\n\n", escapeMarkdown(msg.Content))
		}

		if msg.ToolCall != nil {
			_, _ = fmt.Fprintf(w, "🔧 `%s`\n\n", msg.ToolCall.Name)
			if msg.ToolCall.Result != "" {
				_, _ = fmt.Fprintf(w, "```\n%s\n```\n\n", msg.ToolCall.Result)
			}
		}

		if i < len(conv.Messages)-1 {
			_, _ = fmt.Fprintf(w, "---\n\n")
		}
	}

	return nil
}

// Extension returns the file extension for this format.
func (e *MarkdownExporter) Extension() string {
	return "md"
}

func writeMetrics(w io.Writer, m *internal.Metrics) {
	_, _ = fmt.Fprintf(w, "| Metric | Value |\n|---|---|\n")
	if m.InputTokens+m.OutputTokens+m.CachedTokens > 0 {
		_, _ = fmt.Fprintf(w, "| Tokens (in/out/cached) | %d / %d / %d |\n", m.InputTokens, m.OutputTokens, m.CachedTokens)
	}
	if m.TotalCost > 0 {
		_, _ = fmt.Fprintf(w, "| Cost | %.4f |\n", m.TotalCost)
	}
	if len(m.Models) > 0 {
		_, _ = fmt.Fprintf(w, "| Models | %s |\n", strings.Join(m.Models, ", "))
	}
	if m.ToolCalls > 0 {
		_, _ = fmt.Fprintf(w, "| Tool calls | %d |\n", m.ToolCalls)
	}
	if m.ThinkingBlocks > 0 {
		_, _ = fmt.Fprintf(w, "| Thinking blocks | %d |\n", m.ThinkingBlocks)
	}
	if m.TotalResponseTimeMs > 0 {
		_, _ = fmt.Fprintf(w, "| Total response time | %s |\n", (time.Duration(m.TotalResponseTimeMs) * time.Millisecond).String())
	}
	_, _ = fmt.Fprintf(w, "\n")
}

// escapeMarkdown escapes emphasis markers outside fenced code blocks so chat
// text cannot bleed into the document structure.
func escapeMarkdown(text string) string {
	lines := strings.Split(text, "\n")
	result := make([]string, 0, len(lines))
	inCodeBlock := false

	for _, line := range lines {
		switch {
		case strings.HasPrefix(line, "```"):
			inCodeBlock = !inCodeBlock
			result = append(result, line)
		case inCodeBlock:
			result = append(result, line)
		default:
			line = strings.ReplaceAll(line, "**", "\\*\\*")
			line = strings.ReplaceAll(line, "__", "\\_\\_")
			result = append(result, line)
		}
	}

	return strings.Join(result, "\n")
}

func quoteLines(text string) string {
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		lines[i] = "> " + line
	}
	return strings.Join(lines, "\n")
}

func formatMillis(ms int64) string {
	return time.Unix(0, ms*int64(time.Millisecond)).UTC().Format(time.RFC3339)
}
