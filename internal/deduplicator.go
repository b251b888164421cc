package internal

import (
	"crypto/sha256"
	"encoding/hex"
)

// Deduplicator tracks message content so the same message is not stored
// twice. Keys are ignored; time and fields are compared.
type Deduplicator struct {
	seen map[string]bool
}

// NewDeduplicator creates a Deduplicator primed with existing messages
func NewDeduplicator(existing ...ChatMessage) *Deduplicator {
	d := &Deduplicator{seen: make(map[string]bool, len(existing))}
	for _, msg := range existing {
		d.Add(msg)
	}
	return d
}

// Add records msg and reports whether its content was new
func (d *Deduplicator) Add(msg ChatMessage) bool {
	hash := d.hashContent(msg)
	if d.seen[hash] {
		return false
	}
	d.seen[hash] = true
	return true
}

// Deduplicate drops messages whose content was already seen
func (d *Deduplicator) Deduplicate(messages []ChatMessage) []ChatMessage {
	unique := make([]ChatMessage, 0, len(messages))
	for _, msg := range messages {
		if d.Add(msg) {
			unique = append(unique, msg)
		}
	}
	return unique
}

// hashContent hashes the stored record; field order is canonical there
func (d *Deduplicator) hashContent(msg ChatMessage) string {
	h := sha256.New()
	record, err := msg.record()
	if err != nil {
		h.Write([]byte(msg.Time.String()))
	} else {
		h.Write(record)
	}
	return hex.EncodeToString(h.Sum(nil))
}
