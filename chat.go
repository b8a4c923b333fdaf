package main

// MaxChatEntries bounds the chat log; the oldest entry is evicted first
const MaxChatEntries = 50

// ChatEntry is one chat line. Team NONE marks a system message.
type ChatEntry struct {
	ID     string `json:"id" msgpack:"id"`
	Sender string `json:"sender" msgpack:"s"`
	Text   string `json:"text" msgpack:"x"`
	Team   Team   `json:"team" msgpack:"t"`
}

// IsSystem reports whether the entry was produced by the engine
func (c ChatEntry) IsSystem() bool {
	return c.Team == TeamNone
}

// ChatLog is an append-only log holding the most recent MaxChatEntries entries
type ChatLog struct {
	entries []ChatEntry
}

// Append adds an entry, evicting the oldest when the log is full
func (l *ChatLog) Append(e ChatEntry) {
	l.entries = append(l.entries, e)
	if over := len(l.entries) - MaxChatEntries; over > 0 {
		l.entries = append(l.entries[:0], l.entries[over:]...)
	}
}

// Len returns the number of entries held
func (l *ChatLog) Len() int {
	return len(l.entries)
}

// Entries returns a copy of the log, oldest first
func (l *ChatLog) Entries() []ChatEntry {
	out := make([]ChatEntry, len(l.entries))
	copy(out, l.entries)
	return out
}
