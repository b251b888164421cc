package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// NetworkError covers transport failures, timeouts and non-2xx responses
// alike.
type NetworkError struct {
	Op         string // "chat", "close", "ping"
	URL        string
	StatusCode int // 0 when no response arrived
	Body       []byte
	Err        error
}

func (e *NetworkError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("network error [%s] %s: status %d", e.Op, e.URL, e.StatusCode)
	}
	return fmt.Sprintf("network error [%s] %s: %v", e.Op, e.URL, e.Err)
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

// Response is a successful backend response
type Response struct {
	StatusCode  int
	ContentType string
	Body        []byte
}

// IsJSON reports whether the body is a JSON document
func (r *Response) IsJSON() bool {
	return strings.Contains(r.ContentType, "json") || json.Valid(r.Body)
}

// Decode unmarshals a JSON body into v
func (r *Response) Decode(v any) error {
	if len(r.Body) == 0 {
		return errors.New("empty response body")
	}
	if err := json.Unmarshal(r.Body, v); err != nil {
		return fmt.Errorf("unmarshal response: %w", err)
	}
	return nil
}

// Text extracts the reply text. JSON bodies are searched for the usual
// fields, also one level down under "data"; other bodies are returned
// trimmed.
func (r *Response) Text() string {
	if len(r.Body) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(r.Body, &s); err == nil {
		return s
	}

	var obj map[string]json.RawMessage
	if err := json.Unmarshal(r.Body, &obj); err != nil {
		return strings.TrimSpace(string(r.Body))
	}
	if text := textField(obj); text != "" {
		return text
	}
	if raw, ok := obj["data"]; ok {
		var nested map[string]json.RawMessage
		if err := json.Unmarshal(raw, &nested); err == nil {
			return textField(nested)
		}
		if err := json.Unmarshal(raw, &s); err == nil {
			return s
		}
	}
	return ""
}

func textField(obj map[string]json.RawMessage) string {
	for _, name := range []string{"text", "content", "message", "msg", "answer"} {
		raw, ok := obj[name]
		if !ok {
			continue
		}
		var s string
		if err := json.Unmarshal(raw, &s); err == nil && s != "" {
			return s
		}
	}
	return ""
}
