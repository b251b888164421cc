package export

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/mayike4315/gpt-web/internal"
	"gopkg.in/yaml.v3"
)

// ReadMessages reads messages written by one of the exporters. JSON input
// may be an array of messages, a transcript object, or one message object
// per line. Files ending in .yaml or .yml are read as YAML transcripts.
func ReadMessages(r io.Reader, name string) ([]internal.ChatMessage, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", name, err)
	}

	switch strings.ToLower(filepath.Ext(name)) {
	case ".yaml", ".yml":
		return decodeYAML(data)
	default:
		return decodeJSON(data)
	}
}

func decodeJSON(data []byte) ([]internal.ChatMessage, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return []internal.ChatMessage{}, nil
	}

	if data[0] == '[' {
		var messages []internal.ChatMessage
		if err := json.Unmarshal(data, &messages); err != nil {
			return nil, fmt.Errorf("failed to parse message array: %w", err)
		}
		return messages, nil
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	var values []json.RawMessage
	for {
		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, fmt.Errorf("failed to parse line %d: %w", len(values)+1, err)
		}
		values = append(values, raw)
	}

	if len(values) == 1 {
		var probe struct {
			Messages json.RawMessage `json:"messages"`
		}
		if err := json.Unmarshal(values[0], &probe); err == nil && len(probe.Messages) > 0 {
			var transcript Transcript
			if err := json.Unmarshal(values[0], &transcript); err != nil {
				return nil, fmt.Errorf("failed to parse transcript: %w", err)
			}
			return transcript.Messages, nil
		}
	}

	messages := make([]internal.ChatMessage, 0, len(values))
	for i, raw := range values {
		var msg internal.ChatMessage
		if err := json.Unmarshal(raw, &msg); err != nil {
			return nil, fmt.Errorf("failed to parse message %d: %w", i+1, err)
		}
		messages = append(messages, msg)
	}
	return messages, nil
}

func decodeYAML(data []byte) ([]internal.ChatMessage, error) {
	var doc struct {
		Messages []map[string]interface{} `yaml:"messages"`
	}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse YAML transcript: %w", err)
	}

	messages := make([]internal.ChatMessage, 0, len(doc.Messages))
	for i, values := range doc.Messages {
		// Round-trip through JSON so the message keeps JSON field values
		raw, err := json.Marshal(values)
		if err != nil {
			return nil, fmt.Errorf("message %d: %w", i+1, err)
		}
		var msg internal.ChatMessage
		if err := json.Unmarshal(raw, &msg); err != nil {
			return nil, fmt.Errorf("message %d: %w", i+1, err)
		}
		messages = append(messages, msg)
	}
	return messages, nil
}
