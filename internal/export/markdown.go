package export

import (
	"fmt"
	"io"
	"strings"

	"github.com/mayike4315/gpt-web/internal"
)

// MarkdownExporter exports the transcript as a readable conversation
type MarkdownExporter struct{}

// Export exports a transcript to Markdown format
func (e *MarkdownExporter) Export(transcript *Transcript, w io.Writer) error {
	_, _ = fmt.Fprintf(w, "# Chat history %s\n\n", transcript.Database)

	if transcript.ExportedAt != "" {
		_, _ = fmt.Fprintf(w, "**Exported:** %s  \n", transcript.ExportedAt)
	}
	_, _ = fmt.Fprintf(w, "**Messages:** %d\n\n", len(transcript.Messages))

	_, _ = fmt.Fprintf(w, "---\n\n")

	for i, msg := range transcript.Messages {
		_, _ = fmt.Fprintf(w, "**%s** `#%s`%s\n\n%s\n\n", roleLabel(msg), msg.Key, timeSuffix(msg), escapeMarkdown(msg.Text()))

		if i < len(transcript.Messages)-1 {
			_, _ = fmt.Fprintf(w, "---\n\n")
		}
	}

	return nil
}

func roleLabel(msg internal.ChatMessage) string {
	if role := msg.Role(); role != "" {
		return role + ":"
	}
	return "message:"
}

func timeSuffix(msg internal.ChatMessage) string {
	if msg.Time.IsZero() {
		return ""
	}
	if t, ok := msg.Time.Time(); ok {
		return fmt.Sprintf(" (%s)", t.UTC().Format("2006-01-02 15:04:05"))
	}
	return fmt.Sprintf(" (%s)", msg.Time)
}

// escapeMarkdown escapes markdown emphasis outside code blocks
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

// Extension returns the file extension for this format
func (e *MarkdownExporter) Extension() string {
	return "md"
}
