package export

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/mayike4315/gpt-web/internal"
)

func TestMarkdownExporter_Export(t *testing.T) {
	tests := []struct {
		name     string
		messages []internal.ChatMessage
		want     []string
		notWant  []string
	}{
		{
			name:     "conversation",
			messages: internal.CreateTestConversation(),
			want: []string{
				"# Chat history chat-db",
				"**Messages:** 4",
				"**user:** `#1` (1970-01-01 00:00:01)",
				"Hello, how are you?",
				"**assistant:** `#2`",
				"Show me \\*\\*bold\\*\\* text",
				"fmt.Println(\"**not bold**\")",
			},
		},
		{
			name: "free text time",
			messages: []internal.ChatMessage{{
				Key:    3,
				Time:   internal.TextTimestamp("yesterday"),
				Fields: map[string]json.RawMessage{"content": json.RawMessage(`"Hello"`)},
			}},
			want:    []string{"**message:** `#3` (yesterday)", "Hello"},
			notWant: []string{"**user:**"},
		},
		{
			name:     "empty",
			messages: nil,
			want:     []string{"# Chat history chat-db", "**Messages:** 0"},
			notWant:  []string{"`#"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			if err := (&MarkdownExporter{}).Export(NewTranscript("chat-db", tt.messages), &buf); err != nil {
				t.Fatalf("MarkdownExporter.Export() error = %v", err)
			}

			output := buf.String()
			for _, wantStr := range tt.want {
				if !strings.Contains(output, wantStr) {
					t.Errorf("output should contain %q, got:\n%s", wantStr, output)
				}
			}
			for _, notWantStr := range tt.notWant {
				if strings.Contains(output, notWantStr) {
					t.Errorf("output should not contain %q, got:\n%s", notWantStr, output)
				}
			}
		})
	}
}

func TestMarkdownExporter_Extension(t *testing.T) {
	exporter := &MarkdownExporter{}
	if got := exporter.Extension(); got != "md" {
		t.Errorf("MarkdownExporter.Extension() = %v, want md", got)
	}
}

func TestEscapeMarkdown(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    []string
		notWant []string
	}{
		{
			name:  "basic text",
			input: "Hello world",
			want:  []string{"Hello world"},
		},
		{
			name:    "markdown bold",
			input:   "This is **bold** text",
			want:    []string{"\\*\\*bold\\*\\*"},
			notWant: []string{"**bold**"},
		},
		{
			name:    "markdown underline",
			input:   "This is __underlined__ text",
			want:    []string{"\\_\\_underlined\\_\\_"},
			notWant: []string{"__underlined__"},
		},
		{
			name:  "code block preserved",
			input: "```go\npackage main\n```",
			want:  []string{"```go", "package main", "```"},
		},
		{
			name:    "mixed content",
			input:   "Regular text **bold** and ```code```",
			want:    []string{"\\*\\*bold\\*\\*", "```code```"},
			notWant: []string{"**bold**"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := escapeMarkdown(tt.input)
			for _, wantStr := range tt.want {
				if !strings.Contains(got, wantStr) {
					t.Errorf("escapeMarkdown() should contain %q, got: %s", wantStr, got)
				}
			}
			for _, notWantStr := range tt.notWant {
				if strings.Contains(got, notWantStr) {
					t.Errorf("escapeMarkdown() should not contain %q, got: %s", notWantStr, got)
				}
			}
		})
	}
}


