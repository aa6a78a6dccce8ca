package internal

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// RawBubble is one message bubble as stored under a bubbleId: key.
type RawBubble struct {
	BubbleID                   string          `json:"bubbleId"`
	ChatID                     string          `json:"chatId"`
	Text                       string          `json:"text,omitempty"`
	RichText                   string          `json:"richText,omitempty"`
	CodeBlocks                 []CodeBlock     `json:"codeBlocks,omitempty"`
	Timestamp                  int64           `json:"timestamp"`
	Type                       int             `json:"type"` // 1=user, 2=assistant
	ModelID                    string          `json:"modelId,omitempty"`
	Cost                       float64         `json:"cost,omitempty"`
	TokenCount                 *TokenCount     `json:"tokenCount,omitempty"`
	ToolFormerData             *ToolCall       `json:"toolFormerData,omitempty"`
	Thinking                   *Thinking       `json:"thinking,omitempty"`
	RelevantFiles              []string        `json:"relevantFiles,omitempty"`
	AttachedFileCodeChunksUris []string        `json:"attachedFileCodeChunksUris,omitempty"`
	FileSelections             []FileSelection `json:"fileSelections,omitempty"`
}

// CodeBlock is an inline code block attached to a bubble. URI carries the
// file the block was taken from, when the editor recorded one.
type CodeBlock struct {
	Language string  `json:"language,omitempty"`
	Content  string  `json:"content"`
	URI      *URIRef `json:"uri,omitempty"`
}

// TokenCount is the per-message token usage the editor records for assistant
// turns.
type TokenCount struct {
	InputTokens  int `json:"inputTokens,omitempty" yaml:"input_tokens,omitempty"`
	OutputTokens int `json:"outputTokens,omitempty" yaml:"output_tokens,omitempty"`
	CachedTokens int `json:"cachedTokens,omitempty" yaml:"cached_tokens,omitempty"`
}

// ToolCall is a tool invocation embedded in a bubble.
type ToolCall struct {
	Name   string `json:"name,omitempty" yaml:"name,omitempty"`
	Params string `json:"params,omitempty" yaml:"params,omitempty"`
	Result string `json:"result,omitempty" yaml:"result,omitempty"`
	Status int    `json:"status,omitempty" yaml:"status,omitempty"`
}

// Thinking is a reasoning trace embedded in a bubble.
type Thinking struct {
	Text string `json:"text,omitempty"`
}

// URIRef mirrors the editor's serialized URI objects. Either field may be
// present depending on the record's age.
type URIRef struct {
	FsPath string `json:"fsPath,omitempty"`
	Path   string `json:"path,omitempty"`
}

// Value returns the most specific path the reference carries.
func (u *URIRef) Value() string {
	if u == nil {
		return ""
	}
	if u.FsPath != "" {
		return u.FsPath
	}
	return u.Path
}

// FileSelection is a user selection inside a file, attached to a bubble or a
// request context.
type FileSelection struct {
	URI      *URIRef `json:"uri,omitempty"`
	FilePath string  `json:"filePath,omitempty"`
}

// PathValue returns the selection's file path regardless of which field the
// editor populated.
func (fs FileSelection) PathValue() string {
	if fs.FilePath != "" {
		return fs.FilePath
	}
	return fs.URI.Value()
}

// CreatedFile is a file the assistant created during the session, recorded at
// the composer level.
type CreatedFile struct {
	URI  *URIRef `json:"uri,omitempty"`
	Path string  `json:"path,omitempty"`
}

// PathValue returns the created file's path.
func (cf CreatedFile) PathValue() string {
	if cf.Path != "" {
		return cf.Path
	}
	return cf.URI.Value()
}

// RawComposer is one composer session as stored under a composerData: key.
type RawComposer struct {
	ComposerID                  string               `json:"composerId"`
	Name                        string               `json:"name,omitempty"`
	FullConversationHeadersOnly []ConversationHeader `json:"fullConversationHeadersOnly,omitempty"`
	NewlyCreatedFiles           []CreatedFile        `json:"newlyCreatedFiles,omitempty"`
	TotalCost                   float64              `json:"totalCost,omitempty"`
	LastUpdatedAt               int64                `json:"lastUpdatedAt,omitempty"`
	CreatedAt                   int64                `json:"createdAt,omitempty"`
}

// ConversationHeader orders the bubbles belonging to a composer.
type ConversationHeader struct {
	BubbleID string `json:"bubbleId"`
	Type     int    `json:"type"` // 1=user, 2=assistant
}

// MessageContext is the per-request context stored under a
// messageRequestContext: key. ProjectLayouts carries the session's declared
// workspace root paths, the highest-trust attribution signal after the
// definitive per-workspace index.
type MessageContext struct {
	BubbleID       string          `json:"bubbleId"`
	ComposerID     string          `json:"composerId"`
	ContextID      string          `json:"contextId"`
	ProjectLayouts []string        `json:"projectLayouts,omitempty"`
	FileSelections []FileSelection `json:"fileSelections,omitempty"`
	TerminalFiles  []string        `json:"terminalFiles,omitempty"`
}

// CodeBlockDiff is one code-edit diff stored under a codeBlockDiff: key.
type CodeBlockDiff struct {
	ChatID   string  `json:"-"`
	DiffID   string  `json:"-"`
	URI      *URIRef `json:"uri,omitempty"`
	Language string  `json:"languageId,omitempty"`
	Diff     string  `json:"unifiedDiff,omitempty"`
	Content  string  `json:"content,omitempty"`
}

// Text returns the diff body, falling back to raw content for older records.
func (d *CodeBlockDiff) Text() string {
	if d.Diff != "" {
		return d.Diff
	}
	return d.Content
}

// ConversationRecord is the fully loaded in-memory view of one session: the
// composer, its bubbles in header order, its request contexts, and the
// attribution inputs derived from them. Built once by the storage layer and
// treated as read-only afterwards.
type ConversationRecord struct {
	ID                string
	Name              string
	DirectWorkspaceID string
	DeclaredRootPaths []string
	Composer          *RawComposer
	Bubbles           []*RawBubble
	Contexts          []*MessageContext
	CreatedAt         int64
	UpdatedAt         int64
	Cost              float64
}

// ParseRawBubble parses a bubbleId:<chatId>:<bubbleId> row.
func ParseRawBubble(key, value string) (*RawBubble, error) {
	chatID, bubbleID, err := splitKey2(key, "bubbleId:")
	if err != nil {
		return nil, err
	}

	var bubble RawBubble
	if err := json.Unmarshal([]byte(value), &bubble); err != nil {
		return nil, &ParseError{Source: "globalStorage", Key: key, Err: err}
	}

	bubble.ChatID = chatID
	bubble.BubbleID = bubbleID
	return &bubble, nil
}

// ParseRawComposer parses a composerData:<composerId> row.
func ParseRawComposer(key, value string) (*RawComposer, error) {
	rest, ok := strings.CutPrefix(key, "composerData:")
	if !ok || rest == "" {
		return nil, fmt.Errorf("invalid composerData key format: %s", key)
	}

	var composer RawComposer
	if err := json.Unmarshal([]byte(value), &composer); err != nil {
		return nil, &ParseError{Source: "globalStorage", Key: key, Err: err}
	}

	composer.ComposerID = rest
	return &composer, nil
}

// ParseMessageContext parses a messageRequestContext:<composerId>:<contextId>
// row.
func ParseMessageContext(key, value string) (*MessageContext, error) {
	composerID, contextID, err := splitKey2(key, "messageRequestContext:")
	if err != nil {
		return nil, err
	}

	var context MessageContext
	if err := json.Unmarshal([]byte(value), &context); err != nil {
		return nil, &ParseError{Source: "globalStorage", Key: key, Err: err}
	}

	context.ComposerID = composerID
	context.ContextID = contextID
	return &context, nil
}

// ParseCodeBlockDiff parses a codeBlockDiff:<chatId>:<diffId> row.
func ParseCodeBlockDiff(key, value string) (*CodeBlockDiff, error) {
	chatID, diffID, err := splitKey2(key, "codeBlockDiff:")
	if err != nil {
		return nil, err
	}

	var diff CodeBlockDiff
	if err := json.Unmarshal([]byte(value), &diff); err != nil {
		return nil, &ParseError{Source: "globalStorage", Key: key, Err: err}
	}

	diff.ChatID = chatID
	diff.DiffID = diffID
	return &diff, nil
}

// splitKey2 splits a <prefix><a>:<b...> key into its two id parts. Everything
// after the first separator belongs to the second part, since context ids may
// themselves contain colons.
func splitKey2(key, prefix string) (string, string, error) {
	rest, ok := strings.CutPrefix(key, prefix)
	if !ok {
		return "", "", fmt.Errorf("invalid key format: %s", key)
	}
	a, b, found := strings.Cut(rest, ":")
	if !found || a == "" || b == "" {
		return "", "", fmt.Errorf("invalid key format: %s", key)
	}
	return a, b, nil
}

// GetTimestamp returns the bubble timestamp as a time.Time.
func (rb *RawBubble) GetTimestamp() time.Time {
	return time.Unix(0, rb.Timestamp*int64(time.Millisecond))
}

// GetCreatedAt returns the composer creation time, zero when unrecorded.
func (rc *RawComposer) GetCreatedAt() time.Time {
	if rc.CreatedAt == 0 {
		return time.Time{}
	}
	return time.Unix(0, rc.CreatedAt*int64(time.Millisecond))
}

// GetLastUpdatedAt returns the last-update time, falling back to creation
// time when the editor never recorded an update.
func (rc *RawComposer) GetLastUpdatedAt() time.Time {
	if rc.LastUpdatedAt == 0 {
		return rc.GetCreatedAt()
	}
	return time.Unix(0, rc.LastUpdatedAt*int64(time.Millisecond))
}
