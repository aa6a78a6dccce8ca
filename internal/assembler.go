package internal

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

// Role identifies who produced a message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// titleRuneLimit bounds derived conversation titles.
const titleRuneLimit = 80

// Message is one turn in an assembled conversation timeline.
type Message struct {
	BubbleID       string      `json:"bubbleId,omitempty" yaml:"bubble_id,omitempty"`
	Role           Role        `json:"role" yaml:"role"`
	Content        string      `json:"content" yaml:"content"`
	Timestamp      int64       `json:"timestamp,omitempty" yaml:"timestamp,omitempty"` // unix ms, 0 when unknown
	Model          string      `json:"model,omitempty" yaml:"model,omitempty"`
	Tokens         *TokenCount `json:"tokens,omitempty" yaml:"tokens,omitempty"`
	ToolCall       *ToolCall   `json:"toolCall,omitempty" yaml:"tool_call,omitempty"`
	Thinking       string      `json:"thinking,omitempty" yaml:"thinking,omitempty"`
	Cost           float64     `json:"cost,omitempty" yaml:"cost,omitempty"`
	ResponseTimeMs int64       `json:"responseTimeMs,omitempty" yaml:"response_time_ms,omitempty"`
}

// Time returns the message timestamp, zero when unrecorded.
func (m Message) Time() time.Time {
	if m.Timestamp == 0 {
		return time.Time{}
	}
	return time.Unix(0, m.Timestamp*int64(time.Millisecond))
}

// CodeEdit is one code-edit diff attached to a conversation.
type CodeEdit struct {
	Path     string `json:"path,omitempty" yaml:"path,omitempty"`
	Language string `json:"language,omitempty" yaml:"language,omitempty"`
	Diff     string `json:"diff" yaml:"diff"`
}

// Metrics aggregates per-conversation usage derived from the timeline.
type Metrics struct {
	InputTokens         int      `json:"inputTokens,omitempty" yaml:"input_tokens,omitempty"`
	OutputTokens        int      `json:"outputTokens,omitempty" yaml:"output_tokens,omitempty"`
	CachedTokens        int      `json:"cachedTokens,omitempty" yaml:"cached_tokens,omitempty"`
	TotalCost           float64  `json:"totalCost,omitempty" yaml:"total_cost,omitempty"`
	Models              []string `json:"models,omitempty" yaml:"models,omitempty"`
	ToolCalls           int      `json:"toolCalls,omitempty" yaml:"tool_calls,omitempty"`
	ThinkingBlocks      int      `json:"thinkingBlocks,omitempty" yaml:"thinking_blocks,omitempty"`
	TotalResponseTimeMs int64    `json:"totalResponseTimeMs,omitempty" yaml:"total_response_time_ms,omitempty"`
}

// IsZero reports whether no metric contributed a value.
func (m Metrics) IsZero() bool {
	return m.InputTokens == 0 && m.OutputTokens == 0 && m.CachedTokens == 0 &&
		m.TotalCost == 0 && len(m.Models) == 0 && m.ToolCalls == 0 &&
		m.ThinkingBlocks == 0 && m.TotalResponseTimeMs == 0
}

// Conversation is the assembled, ordered timeline of one session. It is never
// mutated after assembly.
type Conversation struct {
	ID        string     `json:"id" yaml:"id"`
	Title     string     `json:"title,omitempty" yaml:"title,omitempty"`
	CreatedAt int64      `json:"createdAt,omitempty" yaml:"created_at,omitempty"`
	UpdatedAt int64      `json:"updatedAt,omitempty" yaml:"updated_at,omitempty"`
	Messages  []Message  `json:"messages" yaml:"messages"`
	Metrics   *Metrics   `json:"metrics,omitempty" yaml:"metrics,omitempty"`
	CodeEdits []CodeEdit `json:"codeEdits,omitempty" yaml:"code_edits,omitempty"`
}

// LastActivity returns the best ordering timestamp for the conversation.
func (c *Conversation) LastActivity() int64 {
	if c.UpdatedAt != 0 {
		return c.UpdatedAt
	}
	return c.CreatedAt
}

// Assemble merges a record's message fragments into an ordered timeline and
// derives aggregate metrics. Fragments with no displayable content (no text,
// no tool invocation, no thinking trace) are dropped. Code-edit diffs are
// appended as synthetic trailing assistant messages. Assembly is pure: the
// same record always yields the same conversation.
func Assemble(rec *ConversationRecord, diffs []*CodeBlockDiff) *Conversation {
	if rec == nil {
		return nil
	}

	conv := &Conversation{
		ID:        rec.ID,
		CreatedAt: rec.CreatedAt,
		UpdatedAt: rec.UpdatedAt,
	}

	for _, bubble := range rec.Bubbles {
		msg, ok := assembleMessage(bubble)
		if !ok {
			LogDebug("Dropping bubble %s: no displayable content", bubble.BubbleID)
			continue
		}
		conv.Messages = append(conv.Messages, msg)
	}

	for _, diff := range diffs {
		if diff == nil || diff.Text() == "" {
			continue
		}
		edit := CodeEdit{
			Path:     NormalizePath(diff.URI.Value()),
			Language: diff.Language,
			Diff:     diff.Text(),
		}
		conv.CodeEdits = append(conv.CodeEdits, edit)
		conv.Messages = append(conv.Messages, Message{
			Role:    RoleAssistant,
			Content: formatCodeEdit(edit),
		})
	}

	sortTimeline(conv.Messages)

	deriveResponseTimes(conv.Messages)

	if metrics := deriveMetrics(conv.Messages, rec.Cost); !metrics.IsZero() {
		conv.Metrics = &metrics
	}

	conv.Title = deriveTitle(rec.Name, conv.Messages)

	return conv
}

// AssembleAll assembles every record, attaching each record's code-edit
// diffs. Records producing an empty timeline are skipped.
func AssembleAll(records []*ConversationRecord, diffsByChat map[string][]*CodeBlockDiff) []*Conversation {
	conversations := make([]*Conversation, 0, len(records))
	for _, rec := range records {
		if rec == nil {
			continue
		}
		conv := Assemble(rec, diffsByChat[rec.ID])
		if conv == nil || len(conv.Messages) == 0 {
			continue
		}
		conversations = append(conversations, conv)
	}
	return conversations
}

// sortTimeline orders timestamped messages ascending among themselves.
// Messages without a timestamp keep their slots, so synthetic code-edit
// messages appended at the end stay at the end.
func sortTimeline(messages []Message) {
	timed := make([]int, 0, len(messages))
	for i, msg := range messages {
		if msg.Timestamp > 0 {
			timed = append(timed, i)
		}
	}

	ordered := make([]Message, len(timed))
	for j, i := range timed {
		ordered[j] = messages[i]
	}
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Timestamp < ordered[j].Timestamp
	})
	for j, i := range timed {
		messages[i] = ordered[j]
	}
}

func assembleMessage(bubble *RawBubble) (Message, bool) {
	var parts []string

	if bubble.Text != "" {
		parts = append(parts, bubble.Text)
	}

	if bubble.RichText != "" {
		flat, err := FlattenRichText(bubble.RichText)
		if err != nil {
			flat = scrapeTextFields(bubble.RichText)
		}
		// Skip rich text that merely repeats the primary text field.
		if flat != "" && (bubble.Text == "" || !strings.Contains(bubble.Text, flat)) {
			parts = append(parts, flat)
		}
	}

	for _, cb := range bubble.CodeBlocks {
		if cb.Content == "" {
			continue
		}
		parts = append(parts, fmt.Sprintf("```%s\n%s\n```", cb.Language, cb.Content))
	}

	msg := Message{
		BubbleID:  bubble.BubbleID,
		Role:      roleFromType(bubble.Type),
		Content:   strings.Join(parts, "\n\n"),
		Timestamp: bubble.Timestamp,
		Model:     bubble.ModelID,
		Tokens:    bubble.TokenCount,
		ToolCall:  bubble.ToolFormerData,
		Cost:      bubble.Cost,
	}
	if bubble.Thinking != nil {
		msg.Thinking = bubble.Thinking.Text
	}

	if msg.Content == "" && msg.ToolCall == nil && msg.Thinking == "" {
		return Message{}, false
	}
	return msg, true
}

func roleFromType(msgType int) Role {
	if msgType == 2 {
		return RoleAssistant
	}
	return RoleUser
}

// deriveResponseTimes records, for each assistant message, the elapsed time
// since the most recent prior user message. Only strictly positive deltas are
// kept; out-of-order or missing timestamps record nothing.
func deriveResponseTimes(messages []Message) {
	var lastUserTs int64
	for i := range messages {
		msg := &messages[i]
		switch msg.Role {
		case RoleUser:
			if msg.Timestamp > 0 {
				lastUserTs = msg.Timestamp
			}
		case RoleAssistant:
			if lastUserTs > 0 && msg.Timestamp > lastUserTs {
				msg.ResponseTimeMs = msg.Timestamp - lastUserTs
			}
		}
	}
}

func deriveMetrics(messages []Message, fallbackCost float64) Metrics {
	var m Metrics
	seenModels := make(map[string]bool)

	for _, msg := range messages {
		if msg.Tokens != nil {
			m.InputTokens += msg.Tokens.InputTokens
			m.OutputTokens += msg.Tokens.OutputTokens
			m.CachedTokens += msg.Tokens.CachedTokens
		}
		m.TotalCost += msg.Cost
		if msg.Model != "" && !seenModels[msg.Model] {
			seenModels[msg.Model] = true
			m.Models = append(m.Models, msg.Model)
		}
		if msg.ToolCall != nil {
			m.ToolCalls++
		}
		if msg.Thinking != "" {
			m.ThinkingBlocks++
		}
		m.TotalResponseTimeMs += msg.ResponseTimeMs
	}

	if m.TotalCost == 0 && fallbackCost > 0 {
		m.TotalCost = fallbackCost
	}

	return m
}

// deriveTitle prefers the stored session name, falling back to the first
// non-empty line of the first message, bounded with an ellipsis marker.
func deriveTitle(name string, messages []Message) string {
	if name != "" {
		return name
	}
	for _, msg := range messages {
		for _, line := range strings.Split(msg.Content, "\n") {
			line = strings.TrimSpace(line)
			if line == "" {
				continue
			}
			return truncateRunes(line, titleRuneLimit)
		}
		break
	}
	return ""
}

func truncateRunes(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit-3]) + "..."
}

func formatCodeEdit(edit CodeEdit) string {
	var b strings.Builder
	b.WriteString("Code edit")
	if edit.Path != "" {
		b.WriteString(": ")
		b.WriteString(edit.Path)
	}
	b.WriteString("\n```")
	b.WriteString(edit.Language)
	b.WriteString("\n")
	b.WriteString(edit.Diff)
	b.WriteString("\n```")
	return b.String()
}
