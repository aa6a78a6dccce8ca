package internal

import (
	"reflect"
	"strings"
	"testing"
)

func TestAssembleDropsEmptyFragments(t *testing.T) {
	rec := &ConversationRecord{
		ID: "conv-1",
		Bubbles: []*RawBubble{
			{BubbleID: "b1", Type: 1, Text: "hello", Timestamp: 1000},
			{BubbleID: "b2", Type: 2}, // nothing displayable
			{BubbleID: "b3", Type: 2, ToolFormerData: &ToolCall{Name: "grep"}},
			{BubbleID: "b4", Type: 2, Thinking: &Thinking{Text: "hmm"}},
		},
	}

	conv := Assemble(rec, nil)
	if len(conv.Messages) != 3 {
		t.Fatalf("got %d messages, want 3", len(conv.Messages))
	}
	for _, msg := range conv.Messages {
		if msg.Content == "" && msg.ToolCall == nil && msg.Thinking == "" {
			t.Errorf("message %s has no displayable content", msg.BubbleID)
		}
	}
}

func TestAssembleStableSort(t *testing.T) {
	rec := &ConversationRecord{
		ID: "conv-1",
		Bubbles: []*RawBubble{
			{BubbleID: "second", Type: 2, Text: "b", Timestamp: 2000},
			{BubbleID: "first", Type: 1, Text: "a", Timestamp: 1000},
			{BubbleID: "untimed", Type: 2, Text: "c"},
			{BubbleID: "third", Type: 1, Text: "d", Timestamp: 3000},
		},
	}

	conv := Assemble(rec, nil)

	got := make([]string, len(conv.Messages))
	for i, m := range conv.Messages {
		got[i] = m.BubbleID
	}
	// Timestamped messages sort ascending among themselves; a message without
	// a timestamp holds its slot.
	want := []string{"first", "second", "untimed", "third"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("order = %v, want %v", got, want)
	}
}

func TestAssembleSortsAcrossUntimestamped(t *testing.T) {
	// An untimestamped message between two out-of-order timestamped ones must
	// not block the swap around it.
	rec := &ConversationRecord{
		ID: "conv-1",
		Bubbles: []*RawBubble{
			{BubbleID: "late", Type: 2, Text: "late", Timestamp: 5000},
			{BubbleID: "untimed", Type: 2, Text: "u"},
			{BubbleID: "early", Type: 1, Text: "early", Timestamp: 3000},
		},
	}

	conv := Assemble(rec, nil)

	got := make([]string, len(conv.Messages))
	for i, m := range conv.Messages {
		got[i] = m.BubbleID
	}
	want := []string{"early", "untimed", "late"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("order = %v, want %v", got, want)
	}
}

func TestAssembleIdempotent(t *testing.T) {
	rec := &ConversationRecord{
		ID:   "conv-1",
		Name: "session",
		Cost: 0.5,
		Bubbles: []*RawBubble{
			{BubbleID: "b1", Type: 1, Text: "q", Timestamp: 1000},
			{BubbleID: "b2", Type: 2, Text: "a", Timestamp: 2000, ModelID: "gpt-x",
				TokenCount: &TokenCount{InputTokens: 10, OutputTokens: 20}},
		},
	}
	diffs := []*CodeBlockDiff{
		{URI: &URIRef{FsPath: "/p/x.go"}, Language: "go", Diff: "@@"},
	}

	first := Assemble(rec, diffs)
	second := Assemble(rec, diffs)
	if !reflect.DeepEqual(first, second) {
		t.Errorf("assembly not deterministic:\n%+v\n%+v", first, second)
	}
}

func TestAssembleResponseTimes(t *testing.T) {
	rec := &ConversationRecord{
		ID: "conv-1",
		Bubbles: []*RawBubble{
			{BubbleID: "u1", Type: 1, Text: "q1", Timestamp: 1000},
			{BubbleID: "a1", Type: 2, Text: "a1", Timestamp: 1500},
			{BubbleID: "a2", Type: 2, Text: "a2", Timestamp: 1400},
			{BubbleID: "u2", Type: 1, Text: "q2", Timestamp: 2000},
			{BubbleID: "a3", Type: 2, Text: "a3"},                  // no timestamp
			{BubbleID: "a4", Type: 2, Text: "a4", Timestamp: 1900}, // sorts before u2
		},
	}

	conv := Assemble(rec, nil)

	byID := make(map[string]Message)
	for _, m := range conv.Messages {
		byID[m.BubbleID] = m
	}

	if got := byID["a2"].ResponseTimeMs; got != 400 {
		t.Errorf("a2 response time = %d, want 400", got)
	}
	if got := byID["a1"].ResponseTimeMs; got != 500 {
		t.Errorf("a1 response time = %d, want 500", got)
	}
	if got := byID["a3"].ResponseTimeMs; got != 0 {
		t.Errorf("a3 (no timestamp) response time = %d, want 0", got)
	}
	// a4 sorts between u1 and u2, so its delta counts against u1.
	if got := byID["a4"].ResponseTimeMs; got != 900 {
		t.Errorf("a4 response time = %d, want 900", got)
	}

	if conv.Metrics == nil {
		t.Fatal("expected metrics")
	}
	if conv.Metrics.TotalResponseTimeMs != 1800 {
		t.Errorf("TotalResponseTimeMs = %d, want 1800", conv.Metrics.TotalResponseTimeMs)
	}
}

func TestAssembleMetrics(t *testing.T) {
	rec := &ConversationRecord{
		ID: "conv-1",
		Bubbles: []*RawBubble{
			{BubbleID: "u1", Type: 1, Text: "q", Timestamp: 1000},
			{BubbleID: "a1", Type: 2, Text: "a", Timestamp: 2000, ModelID: "model-a",
				Cost: 0.25, TokenCount: &TokenCount{InputTokens: 100, OutputTokens: 50, CachedTokens: 10}},
			{BubbleID: "a2", Type: 2, Text: "b", Timestamp: 3000, ModelID: "model-a",
				TokenCount: &TokenCount{InputTokens: 20, OutputTokens: 5}},
			{BubbleID: "a3", Type: 2, Timestamp: 4000, ModelID: "model-b",
				ToolFormerData: &ToolCall{Name: "edit"}, Thinking: &Thinking{Text: "t"}},
		},
	}

	conv := Assemble(rec, nil)
	m := conv.Metrics
	if m == nil {
		t.Fatal("expected metrics")
	}
	if m.InputTokens != 120 || m.OutputTokens != 55 || m.CachedTokens != 10 {
		t.Errorf("tokens = %d/%d/%d, want 120/55/10", m.InputTokens, m.OutputTokens, m.CachedTokens)
	}
	if m.TotalCost != 0.25 {
		t.Errorf("TotalCost = %v, want 0.25", m.TotalCost)
	}
	if !reflect.DeepEqual(m.Models, []string{"model-a", "model-b"}) {
		t.Errorf("Models = %v", m.Models)
	}
	if m.ToolCalls != 1 || m.ThinkingBlocks != 1 {
		t.Errorf("tool/thinking counts = %d/%d, want 1/1", m.ToolCalls, m.ThinkingBlocks)
	}
}

func TestAssembleFallbackCost(t *testing.T) {
	rec := &ConversationRecord{
		ID:   "conv-1",
		Cost: 1.5,
		Bubbles: []*RawBubble{
			{BubbleID: "u1", Type: 1, Text: "q", Timestamp: 1000},
		},
	}

	conv := Assemble(rec, nil)
	if conv.Metrics == nil || conv.Metrics.TotalCost != 1.5 {
		t.Errorf("expected fallback cost 1.5, got %+v", conv.Metrics)
	}
}

func TestAssembleNoMetricsWhenZero(t *testing.T) {
	rec := &ConversationRecord{
		ID: "conv-1",
		Bubbles: []*RawBubble{
			{BubbleID: "u1", Type: 1, Text: "q"},
		},
	}

	conv := Assemble(rec, nil)
	if conv.Metrics != nil {
		t.Errorf("expected nil metrics, got %+v", conv.Metrics)
	}
}

func TestAssembleTitle(t *testing.T) {
	tests := []struct {
		name string
		rec  *ConversationRecord
		want string
	}{
		{
			name: "stored name wins",
			rec: &ConversationRecord{
				ID:   "c",
				Name: "Stored name",
				Bubbles: []*RawBubble{
					{BubbleID: "b", Type: 1, Text: "first line"},
				},
			},
			want: "Stored name",
		},
		{
			name: "first non-empty line",
			rec: &ConversationRecord{
				ID: "c",
				Bubbles: []*RawBubble{
					{BubbleID: "b", Type: 1, Text: "\n\n  actual question  \nmore"},
				},
			},
			want: "actual question",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			conv := Assemble(tt.rec, nil)
			if conv.Title != tt.want {
				t.Errorf("Title = %q, want %q", conv.Title, tt.want)
			}
		})
	}
}

func TestAssembleTitleTruncation(t *testing.T) {
	long := strings.Repeat("x", 200)
	rec := &ConversationRecord{
		ID: "c",
		Bubbles: []*RawBubble{
			{BubbleID: "b", Type: 1, Text: long},
		},
	}

	conv := Assemble(rec, nil)
	if got := len([]rune(conv.Title)); got != titleRuneLimit {
		t.Errorf("title length = %d runes, want %d", got, titleRuneLimit)
	}
	if !strings.HasSuffix(conv.Title, "...") {
		t.Errorf("truncated title should end with ellipsis, got %q", conv.Title)
	}
}

func TestAssembleCodeEditMessages(t *testing.T) {
	rec := &ConversationRecord{
		ID: "conv-1",
		Bubbles: []*RawBubble{
			{BubbleID: "u1", Type: 1, Text: "change it", Timestamp: 1000},
		},
	}
	diffs := []*CodeBlockDiff{
		{URI: &URIRef{FsPath: "/p/main.go"}, Language: "go", Diff: "@@ -1 +1 @@"},
		{Content: ""}, // empty, skipped
		nil,
	}

	conv := Assemble(rec, diffs)
	if len(conv.CodeEdits) != 1 {
		t.Fatalf("got %d code edits, want 1", len(conv.CodeEdits))
	}
	if len(conv.Messages) != 2 {
		t.Fatalf("got %d messages, want 2", len(conv.Messages))
	}

	last := conv.Messages[len(conv.Messages)-1]
	if last.Role != RoleAssistant {
		t.Errorf("synthetic edit message role = %q, want assistant", last.Role)
	}
	if last.Timestamp != 0 {
		t.Errorf("synthetic edit message timestamp = %d, want 0", last.Timestamp)
	}
	if !strings.Contains(last.Content, "/p/main.go") || !strings.Contains(last.Content, "@@ -1 +1 @@") {
		t.Errorf("edit message content missing path or diff: %q", last.Content)
	}
}

func TestAssembleRichTextNotDuplicated(t *testing.T) {
	rich := `{"root":{"children":[{"type":"text","text":"hello world"}]}}`
	rec := &ConversationRecord{
		ID: "conv-1",
		Bubbles: []*RawBubble{
			{BubbleID: "b1", Type: 1, Text: "hello world and more", RichText: rich},
		},
	}

	conv := Assemble(rec, nil)
	if len(conv.Messages) != 1 {
		t.Fatalf("got %d messages, want 1", len(conv.Messages))
	}
	if strings.Count(conv.Messages[0].Content, "hello world") != 1 {
		t.Errorf("rich text duplicated into content: %q", conv.Messages[0].Content)
	}
}

func TestAssembleAllSkipsEmpty(t *testing.T) {
	records := []*ConversationRecord{
		{ID: "a", Bubbles: []*RawBubble{{BubbleID: "b", Type: 1, Text: "hi"}}},
		{ID: "empty"},
		nil,
	}

	conversations := AssembleAll(records, nil)
	if len(conversations) != 1 || conversations[0].ID != "a" {
		t.Errorf("AssembleAll() = %+v, want only conversation a", conversations)
	}
}
