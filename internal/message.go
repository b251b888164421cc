package internal

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"
)

// Key identifies a stored message. The zero value means "no key".
type Key int64

// ParseKey parses a key given on the command line or in a file
func ParseKey(s string) (Key, error) {
	n, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid key %q: %w", s, err)
	}
	if n <= 0 {
		return 0, fmt.Errorf("invalid key %q: must be positive", s)
	}
	return Key(n), nil
}

func (k Key) String() string {
	return strconv.FormatInt(int64(k), 10)
}

// Timestamp is the sortable value messages are ordered by. It keeps the
// exact JSON value it was given: either a number (epoch milliseconds) or a
// string (usually RFC 3339).
type Timestamp struct {
	raw json.RawMessage
}

// MillisTimestamp returns a numeric timestamp in epoch milliseconds
func MillisTimestamp(ms int64) Timestamp {
	return Timestamp{raw: json.RawMessage(strconv.FormatInt(ms, 10))}
}

// TextTimestamp returns a string timestamp
func TextTimestamp(s string) Timestamp {
	data, _ := json.Marshal(s)
	return Timestamp{raw: data}
}

// Now returns the current time in epoch milliseconds
func Now() Timestamp {
	return MillisTimestamp(time.Now().UnixMilli())
}

// ParseTimestamp interprets a command-line value: numbers become numeric
// timestamps, anything else is kept as text.
func ParseTimestamp(s string) Timestamp {
	s = strings.TrimSpace(s)
	if s == "" {
		return Timestamp{}
	}
	var n json.Number
	if err := json.Unmarshal([]byte(s), &n); err == nil {
		return Timestamp{raw: json.RawMessage(n.String())}
	}
	return TextTimestamp(s)
}

// IsZero reports whether the timestamp is missing
func (t Timestamp) IsZero() bool {
	return len(t.raw) == 0
}

// IsText reports whether the timestamp holds a string
func (t Timestamp) IsText() bool {
	return len(t.raw) > 0 && t.raw[0] == '"'
}

// MarshalJSON implements json.Marshaler
func (t Timestamp) MarshalJSON() ([]byte, error) {
	if t.IsZero() {
		return []byte("null"), nil
	}
	return t.raw, nil
}

// UnmarshalJSON implements json.Unmarshaler. Only numbers, strings and
// null are accepted.
func (t *Timestamp) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || string(data) == "null" {
		t.raw = nil
		return nil
	}
	switch c := data[0]; {
	case c == '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return fmt.Errorf("invalid time: %w", err)
		}
	case c == '-' || (c >= '0' && c <= '9'):
		var n json.Number
		if err := json.Unmarshal(data, &n); err != nil {
			return fmt.Errorf("invalid time: %w", err)
		}
	default:
		return fmt.Errorf("invalid time %s: must be a number or a string", data)
	}
	t.raw = append(json.RawMessage(nil), data...)
	return nil
}

// SortValue returns the value stored in the time index: int64 or float64
// for numbers, string for text.
func (t Timestamp) SortValue() (any, error) {
	if t.IsZero() {
		return nil, ErrMissingTime
	}
	if t.IsText() {
		var s string
		if err := json.Unmarshal(t.raw, &s); err != nil {
			return nil, err
		}
		return s, nil
	}
	n := json.Number(t.raw)
	if i, err := n.Int64(); err == nil {
		return i, nil
	}
	return n.Float64()
}

// Time converts the timestamp to a time.Time when it can be interpreted as
// one.
func (t Timestamp) Time() (time.Time, bool) {
	v, err := t.SortValue()
	if err != nil {
		return time.Time{}, false
	}
	switch v := v.(type) {
	case int64:
		return time.UnixMilli(v), true
	case float64:
		return time.UnixMilli(int64(v)), true
	case string:
		for _, layout := range []string{time.RFC3339Nano, "2006-01-02 15:04:05", "2006-01-02"} {
			if parsed, err := time.Parse(layout, v); err == nil {
				return parsed, true
			}
		}
	}
	return time.Time{}, false
}

func (t Timestamp) String() string {
	if t.IsZero() {
		return ""
	}
	if t.IsText() {
		v, _ := t.SortValue()
		s, _ := v.(string)
		return s
	}
	return string(t.raw)
}

// ChatMessage is the only record type of the store. Everything besides the
// key and the time is application data kept verbatim.
type ChatMessage struct {
	Key    Key
	Time   Timestamp
	Fields map[string]json.RawMessage
}

// NewChatMessage builds a message from plain Go values
func NewChatMessage(t Timestamp, fields map[string]any) (ChatMessage, error) {
	msg := ChatMessage{Time: t, Fields: make(map[string]json.RawMessage, len(fields))}
	for name, value := range fields {
		if name == "key" || name == "time" {
			return ChatMessage{}, fmt.Errorf("field %q is reserved", name)
		}
		data, err := encodeJSON(value)
		if err != nil {
			return ChatMessage{}, fmt.Errorf("field %q: %w", name, err)
		}
		msg.Fields[name] = data
	}
	return msg, nil
}

// Field returns a field as display text: strings are unquoted, other JSON
// values are returned as is.
func (m ChatMessage) Field(name string) string {
	raw, ok := m.Fields[name]
	if !ok {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	return string(raw)
}

// Text returns the message body from the first of the usual fields present
func (m ChatMessage) Text() string {
	return m.firstField("text", "content", "message", "msg")
}

// Role returns who wrote the message from the first of the usual fields present
func (m ChatMessage) Role() string {
	return m.firstField("role", "sender", "from")
}

func (m ChatMessage) firstField(names ...string) string {
	for _, name := range names {
		if _, ok := m.Fields[name]; ok {
			return m.Field(name)
		}
	}
	return ""
}

// FieldNames returns the application field names in sorted order
func (m ChatMessage) FieldNames() []string {
	names := make([]string, 0, len(m.Fields))
	for name := range m.Fields {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// MarshalJSON renders the message as one flat object
func (m ChatMessage) MarshalJSON() ([]byte, error) {
	obj := m.object()
	if m.Key != 0 {
		obj["key"] = json.RawMessage(m.Key.String())
	}
	return encodeJSON(obj)
}

// UnmarshalJSON reads a flat object, splitting out key and time
func (m *ChatMessage) UnmarshalJSON(data []byte) error {
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(data, &obj); err != nil {
		return err
	}
	if obj == nil {
		return errors.New("message must be a JSON object")
	}

	var msg ChatMessage
	if raw, ok := obj["key"]; ok {
		if string(raw) != "null" {
			var n int64
			if err := json.Unmarshal(raw, &n); err != nil {
				return fmt.Errorf("invalid key %s: %w", raw, err)
			}
			msg.Key = Key(n)
		}
		delete(obj, "key")
	}
	if raw, ok := obj["time"]; ok {
		if err := msg.Time.UnmarshalJSON(raw); err != nil {
			return err
		}
		delete(obj, "time")
	}

	msg.Fields = make(map[string]json.RawMessage, len(obj))
	for name, raw := range obj {
		var buf bytes.Buffer
		if err := json.Compact(&buf, raw); err != nil {
			return fmt.Errorf("field %q: %w", name, err)
		}
		msg.Fields[name] = buf.Bytes()
	}

	*m = msg
	return nil
}

// MarshalYAML renders the message with decoded field values so YAML output
// stays readable.
func (m ChatMessage) MarshalYAML() (interface{}, error) {
	return m.Values()
}

// Values decodes the message into plain Go values, including key and time
func (m ChatMessage) Values() (map[string]any, error) {
	values := make(map[string]any, len(m.Fields)+2)
	for name, raw := range m.Fields {
		dec := json.NewDecoder(bytes.NewReader(raw))
		dec.UseNumber()
		var v any
		if err := dec.Decode(&v); err != nil {
			return nil, fmt.Errorf("field %q: %w", name, err)
		}
		values[name] = normalizeNumber(v)
	}
	if m.Key != 0 {
		values["key"] = int64(m.Key)
	}
	if !m.Time.IsZero() {
		v, err := m.Time.SortValue()
		if err != nil {
			return nil, err
		}
		values["time"] = v
	}
	return values, nil
}

// record is the stored body: every field plus time, never the key
func (m ChatMessage) record() ([]byte, error) {
	return encodeJSON(m.object())
}

func (m ChatMessage) object() map[string]json.RawMessage {
	obj := make(map[string]json.RawMessage, len(m.Fields)+2)
	for name, raw := range m.Fields {
		obj[name] = raw
	}
	if !m.Time.IsZero() {
		obj["time"] = m.Time.raw
	}
	return obj
}

func decodeRecord(key Key, data []byte) (ChatMessage, error) {
	var msg ChatMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return ChatMessage{}, fmt.Errorf("decode record %d: %w", key, err)
	}
	msg.Key = key
	return msg, nil
}

// encodeJSON marshals without HTML escaping so stored records match the
// input byte for byte. json.Marshal re-escapes a Marshaler's output; callers
// that need unescaped documents use an Encoder with SetEscapeHTML(false).
func encodeJSON(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

func normalizeNumber(v any) any {
	switch v := v.(type) {
	case json.Number:
		if i, err := v.Int64(); err == nil {
			return i
		}
		if f, err := v.Float64(); err == nil {
			return f
		}
		return v.String()
	case map[string]any:
		for k, item := range v {
			v[k] = normalizeNumber(item)
		}
		return v
	case []any:
		for i, item := range v {
			v[i] = normalizeNumber(item)
		}
		return v
	}
	return v
}
