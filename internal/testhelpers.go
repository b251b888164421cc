package internal

import (
	"encoding/json"
	"strconv"
)

// CreateTestMessage creates a stored-looking message with a key, a numeric
// time and the usual role and text fields
func CreateTestMessage(key Key, ms int64, role, text string) ChatMessage {
	fields := map[string]json.RawMessage{
		"text": json.RawMessage(strconv.Quote(text)),
	}
	if role != "" {
		fields["role"] = json.RawMessage(strconv.Quote(role))
	}
	return ChatMessage{Key: key, Time: MillisTimestamp(ms), Fields: fields}
}

// CreateTestConversation creates a short user/assistant exchange with keys
// 1..4 and times 1000..4000
func CreateTestConversation() []ChatMessage {
	return []ChatMessage{
		CreateTestMessage(1, 1000, "user", "Hello, how are you?"),
		CreateTestMessage(2, 2000, "assistant", "I'm doing well, thank you!"),
		CreateTestMessage(3, 3000, "user", "Show me **bold** text"),
		CreateTestMessage(4, 4000, "assistant", "```go\nfmt.Println(\"**not bold**\")\n```"),
	}
}
