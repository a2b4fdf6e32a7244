package parse

import (
	"bytes"
	"encoding/json"
	"strings"
)

type contentItem struct {
	Type      string          `json:"type"`
	Text      string          `json:"text"`
	Thinking  string          `json:"thinking"`
	ID        string          `json:"id"`
	Name      string          `json:"name"`
	Input     json.RawMessage `json:"input"`
	ToolUseID string          `json:"tool_use_id"`
	Content   json.RawMessage `json:"content"`
	IsError   bool            `json:"is_error"`
}

// item kinds that carry binary or opaque payloads; never indexed as text
var opaqueKinds = map[string]bool{
	"image":             true,
	"document":          true,
	"redacted_thinking": true,
}

// Decompose expands a message content payload into blocks positioned
// 0..n-1. A string payload is one text block; a list payload yields one block
// per item in order. Decompose never fails: shapes it does not understand are
// kept as a block with their kind tag and whatever text can be recovered.
func Decompose(raw json.RawMessage) []Block {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return nil
	}

	// try string first
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return []Block{{Index: 0, Kind: KindText, Text: s, HasText: true}}
	}

	// try array of content items
	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err == nil {
		blocks := make([]Block, 0, len(items))
		for i, it := range items {
			b := decodeItem(it)
			b.Index = i
			blocks = append(blocks, b)
		}
		return blocks
	}

	// a lone object or scalar: keep it as a single block
	b := decodeItem(raw)
	return []Block{b}
}

func decodeItem(raw json.RawMessage) Block {
	var it contentItem
	if err := json.Unmarshal(raw, &it); err != nil {
		var s string
		if json.Unmarshal(raw, &s) == nil {
			return Block{Kind: KindText, Text: s, HasText: true}
		}
		return Block{Kind: "unknown", Text: compact(raw), HasText: true}
	}

	switch it.Type {
	case KindText:
		return Block{Kind: KindText, Text: it.Text, HasText: true}
	case KindThinking:
		text := it.Thinking
		if text == "" {
			text = it.Text
		}
		return Block{Kind: KindThinking, Text: text, HasText: true}
	case KindToolUse:
		return Block{
			Kind:      KindToolUse,
			ToolName:  it.Name,
			ToolInput: it.Input,
			ToolUseID: it.ID,
		}
	case KindToolResult:
		return Block{
			Kind:      KindToolResult,
			Text:      flattenText(it.Content),
			HasText:   true,
			ToolUseID: it.ToolUseID,
			IsError:   it.IsError,
		}
	}

	kind := it.Type
	if kind == "" {
		kind = "unknown"
	}
	b := Block{Kind: kind, ToolUseID: it.ToolUseID}
	if text, ok := bestEffortText(it, raw); ok {
		b.Text = text
		b.HasText = true
	}
	return b
}

// flattenText turns a tool_result content payload into text: strings pass
// through, lists contribute their text items joined by newlines.
func flattenText(raw json.RawMessage) string {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	var items []contentItem
	if err := json.Unmarshal(raw, &items); err == nil {
		var parts []string
		for _, it := range items {
			if it.Text != "" {
				parts = append(parts, it.Text)
			}
		}
		return strings.Join(parts, "\n")
	}
	return compact(raw)
}

func bestEffortText(it contentItem, raw json.RawMessage) (string, bool) {
	switch {
	case it.Text != "":
		return it.Text, true
	case it.Thinking != "":
		return it.Thinking, true
	}
	if s := flattenText(it.Content); s != "" {
		return s, true
	}
	if opaqueKinds[it.Type] {
		return "", false
	}
	return compact(raw), true
}

func compact(raw json.RawMessage) string {
	var buf bytes.Buffer
	if err := json.Compact(&buf, raw); err != nil {
		return string(raw)
	}
	return buf.String()
}
