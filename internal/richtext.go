package internal

import (
	"encoding/json"
	"fmt"
	"strings"
)

// richTextNode is one node of the lexical rich-text tree the editor stores in
// a bubble's richText field.
type richTextNode struct {
	Type     string         `json:"type"`
	Text     string         `json:"text,omitempty"`
	Content  string         `json:"content,omitempty"`
	Value    string         `json:"value,omitempty"`
	Language string         `json:"language,omitempty"`
	Children []richTextNode `json:"children,omitempty"`
}

// FlattenRichText parses a bubble's rich-text JSON and flattens it depth
// first: text leaves are concatenated, code subtrees become fenced blocks,
// and thinking/tool nodes are labeled. The stored shape varies between
// editor versions, so a root wrapper, a bare node, and a node array are all
// accepted.
func FlattenRichText(raw string) (string, error) {
	if raw == "" {
		return "", nil
	}

	var wrapper struct {
		Root *richTextNode `json:"root"`
	}
	if err := json.Unmarshal([]byte(raw), &wrapper); err == nil && wrapper.Root != nil {
		return flattenNode(*wrapper.Root), nil
	}

	var node richTextNode
	if err := json.Unmarshal([]byte(raw), &node); err == nil && (node.Type != "" || len(node.Children) > 0) {
		return flattenNode(node), nil
	}

	var nodes []richTextNode
	if err := json.Unmarshal([]byte(raw), &nodes); err == nil {
		return flattenNodes(nodes), nil
	}

	return "", fmt.Errorf("unrecognized rich text structure")
}

func flattenNode(node richTextNode) string {
	var b strings.Builder

	switch node.Type {
	case "text":
		b.WriteString(node.Text)
	case "code":
		body := flattenNodes(node.Children)
		if body == "" {
			body = node.Content
		}
		if body != "" {
			b.WriteString("\n```")
			b.WriteString(node.Language)
			b.WriteString("\n")
			b.WriteString(body)
			b.WriteString("\n```\n")
		}
	case "thinking", "tool", "tool_call":
		body := flattenNodes(node.Children)
		if body == "" {
			body = firstNonEmpty(node.Content, node.Value)
		}
		if body != "" {
			fmt.Fprintf(&b, "\n[%s]\n%s\n", node.Type, body)
		}
	default:
		b.WriteString(firstNonEmpty(node.Text, node.Content, node.Value))
		if body := flattenNodes(node.Children); body != "" {
			if b.Len() > 0 && !strings.HasSuffix(b.String(), "\n") {
				b.WriteString("\n")
			}
			b.WriteString(body)
		}
	}

	return b.String()
}

func flattenNodes(nodes []richTextNode) string {
	var b strings.Builder
	for _, n := range nodes {
		b.WriteString(flattenNode(n))
	}
	return b.String()
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

// scrapeTextFields is the last-resort extraction when the rich-text JSON does
// not parse: it lifts the values of "text" fields straight out of the raw
// string.
func scrapeTextFields(raw string) string {
	var b strings.Builder
	rest := raw
	for {
		idx := strings.Index(rest, `"text"`)
		if idx < 0 {
			break
		}
		rest = rest[idx+len(`"text"`):]
		i := 0
		for i < len(rest) && (rest[i] == ' ' || rest[i] == ':') {
			i++
		}
		if i >= len(rest) || rest[i] != '"' {
			continue
		}
		value, consumed, ok := readJSONString(rest[i:])
		if !ok {
			continue
		}
		if value != "" {
			if b.Len() > 0 {
				b.WriteString(" ")
			}
			b.WriteString(value)
		}
		rest = rest[i+consumed:]
	}
	return b.String()
}

// readJSONString reads a double-quoted JSON string starting at s[0] and
// returns the decoded value plus the number of bytes consumed.
func readJSONString(s string) (string, int, bool) {
	if len(s) < 2 || s[0] != '"' {
		return "", 0, false
	}
	for i := 1; i < len(s); i++ {
		if s[i] == '\\' {
			i++
			continue
		}
		if s[i] == '"' {
			var decoded string
			if err := json.Unmarshal([]byte(s[:i+1]), &decoded); err != nil {
				return "", 0, false
			}
			return decoded, i + 1, true
		}
	}
	return "", 0, false
}
