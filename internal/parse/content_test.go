package parse

import (
	"encoding/json"
	"testing"
)

func TestDecomposeString(t *testing.T) {
	blocks := Decompose(json.RawMessage(`"hello world"`))
	if len(blocks) != 1 {
		t.Fatalf("got %d blocks, want 1", len(blocks))
	}
	b := blocks[0]
	if b.Index != 0 || b.Kind != KindText || b.Text != "hello world" || !b.HasText {
		t.Fatalf("unexpected block: %+v", b)
	}
}

func TestDecomposeEmpty(t *testing.T) {
	for _, raw := range []string{``, `null`, `  `, `[]`} {
		if got := Decompose(json.RawMessage(raw)); len(got) != 0 {
			t.Errorf("Decompose(%q) = %d blocks, want 0", raw, len(got))
		}
	}
}

func TestDecomposeList(t *testing.T) {
	raw := `[
		{"type":"thinking","thinking":"let me look","signature":"sig"},
		{"type":"text","text":"Reading the file."},
		{"type":"tool_use","id":"t1","name":"Read","input":{"file_path":"/a.go","limit":10}},
		{"type":"tool_result","tool_use_id":"t1","content":"file not found","is_error":true}
	]`
	blocks := Decompose(json.RawMessage(raw))
	if len(blocks) != 4 {
		t.Fatalf("got %d blocks, want 4", len(blocks))
	}
	for i, b := range blocks {
		if b.Index != i {
			t.Errorf("block %d has Index %d", i, b.Index)
		}
	}

	if blocks[0].Kind != KindThinking || blocks[0].Text != "let me look" {
		t.Errorf("thinking block = %+v", blocks[0])
	}
	if blocks[1].Kind != KindText || blocks[1].Text != "Reading the file." {
		t.Errorf("text block = %+v", blocks[1])
	}

	use := blocks[2]
	if use.Kind != KindToolUse || use.ToolName != "Read" || use.ToolUseID != "t1" || use.HasText {
		t.Errorf("tool_use block = %+v", use)
	}
	var input map[string]any
	if err := json.Unmarshal(use.ToolInput, &input); err != nil {
		t.Fatalf("tool input is not JSON: %v", err)
	}
	if input["file_path"] != "/a.go" || input["limit"] != float64(10) {
		t.Errorf("tool input not preserved: %v", input)
	}

	res := blocks[3]
	if res.Kind != KindToolResult || res.ToolUseID != "t1" || res.Text != "file not found" || !res.IsError {
		t.Errorf("tool_result block = %+v", res)
	}
}

func TestDecomposeToolResultListContent(t *testing.T) {
	raw := `[{"type":"tool_result","tool_use_id":"t9","content":[{"type":"text","text":"line one"},{"type":"image","source":{"data":"AAAA"}},{"type":"text","text":"line two"}]}]`
	blocks := Decompose(json.RawMessage(raw))
	if len(blocks) != 1 {
		t.Fatalf("got %d blocks", len(blocks))
	}
	if blocks[0].Text != "line one\nline two" {
		t.Errorf("tool_result text = %q", blocks[0].Text)
	}
}

func TestDecomposeKeepsUnknownKinds(t *testing.T) {
	raw := `[
		{"type":"server_tool_use","id":"s1","name":"web_search","query":"go modules"},
		{"type":"image","source":{"type":"base64","data":"iVBOR"}},
		{"type":"text","text":"after"}
	]`
	blocks := Decompose(json.RawMessage(raw))
	if len(blocks) != 3 {
		t.Fatalf("got %d blocks, want 3", len(blocks))
	}
	if blocks[0].Kind != "server_tool_use" || !blocks[0].HasText || blocks[0].Text == "" {
		t.Errorf("unknown kind not preserved with text: %+v", blocks[0])
	}
	if blocks[1].Kind != "image" || blocks[1].HasText {
		t.Errorf("image block should carry no text: %+v", blocks[1])
	}
	if blocks[2].Index != 2 || blocks[2].Text != "after" {
		t.Errorf("order not preserved: %+v", blocks[2])
	}
}
