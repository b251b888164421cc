package export

import (
	"fmt"
	"io"
	"time"

	"github.com/mayike4315/gpt-web/internal"
)

// Transcript is the unit every exporter writes: the full ordered message
// list of one database.
type Transcript struct {
	Database   string                 `json:"database" yaml:"database"`
	ExportedAt string                 `json:"exported_at,omitempty" yaml:"exported_at,omitempty"`
	Messages   []internal.ChatMessage `json:"messages" yaml:"messages"`
}

// NewTranscript wraps messages read from database
func NewTranscript(database string, messages []internal.ChatMessage) *Transcript {
	if messages == nil {
		messages = []internal.ChatMessage{}
	}
	return &Transcript{
		Database:   database,
		ExportedAt: time.Now().UTC().Format(time.RFC3339),
		Messages:   messages,
	}
}

// Exporter defines the interface for all export formats
type Exporter interface {
	Export(transcript *Transcript, w io.Writer) error
	Extension() string
}

// NewExporter creates a new exporter based on format
func NewExporter(format string) (Exporter, error) {
	switch format {
	case "jsonl":
		return &JSONLExporter{}, nil
	case "md", "markdown":
		return &MarkdownExporter{}, nil
	case "yaml", "yml":
		return &YAMLExporter{}, nil
	case "json":
		return &JSONExporter{}, nil
	default:
		return nil, fmt.Errorf("unsupported format: %s (supported: jsonl, md, yaml, json)", format)
	}
}
