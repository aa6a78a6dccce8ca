package internal

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
)

// DedupeConversations removes conversations whose timelines are identical in
// content, keeping the first occurrence. The editor sometimes stores the same
// session under more than one composer id after a crash recovery.
func DedupeConversations(conversations []*Conversation) []*Conversation {
	seen := make(map[string]bool, len(conversations))
	unique := make([]*Conversation, 0, len(conversations))

	for _, conv := range conversations {
		if conv == nil {
			continue
		}
		hash := hashConversation(conv)
		if seen[hash] {
			LogDebug("Dropping duplicate conversation %s", conv.ID)
			continue
		}
		seen[hash] = true
		unique = append(unique, conv)
	}

	return unique
}

func hashConversation(conv *Conversation) string {
	h := sha256.New()
	var ts [8]byte

	for _, msg := range conv.Messages {
		h.Write([]byte(msg.Role))
		h.Write([]byte{0})
		h.Write([]byte(msg.Content))
		h.Write([]byte{0})
		h.Write([]byte(msg.Thinking))
		h.Write([]byte{0})
		if msg.ToolCall != nil {
			h.Write([]byte{1})
			h.Write([]byte(msg.ToolCall.Name))
			h.Write([]byte{0})
			h.Write([]byte(msg.ToolCall.Params))
		} else {
			h.Write([]byte{0})
		}
		binary.LittleEndian.PutUint64(ts[:], uint64(msg.Timestamp))
		h.Write(ts[:])
	}

	return hex.EncodeToString(h.Sum(nil))
}
