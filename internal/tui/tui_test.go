package tui

import (
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/romilly/claude-code-log-tools/internal/search"
)

func TestResumeCommand(t *testing.T) {
	r := search.Result{SessionUUID: "0b6f8f2e-6a51-4c5e-9f59-8d2a6f1e2c3d", Cwd: "/work/app"}
	if got, want := ResumeCommand(r), "cd /work/app && claude --resume 0b6f8f2e-6a51-4c5e-9f59-8d2a6f1e2c3d"; got != want {
		t.Errorf("ResumeCommand = %q, want %q", got, want)
	}
	r.Cwd = ""
	if got := ResumeCommand(r); got != "claude --resume 0b6f8f2e-6a51-4c5e-9f59-8d2a6f1e2c3d" {
		t.Errorf("ResumeCommand without cwd = %q", got)
	}
}

func TestFormatResultLine(t *testing.T) {
	r := search.Result{
		Kind:      "tool_use",
		ToolName:  "Bash",
		Timestamp: time.Date(2025, 3, 9, 12, 0, 0, 0, time.Local),
		Summary:   "Fix flaky\ntests",
		Snippet:   "go test >>>-race<<< ./...",
	}
	lines := formatResultLine(r, 60, true)
	if len(lines) != linesPerItem {
		t.Fatalf("got %d lines", len(lines))
	}
	for _, want := range []string{"Bash", "03-09", "Fix flaky tests"} {
		if !strings.Contains(lines[0], want) {
			t.Errorf("line 1 %q missing %q", lines[0], want)
		}
	}
	if strings.Contains(lines[1], ">>>") || !strings.Contains(lines[1], "-race") {
		t.Errorf("line 2 = %q", lines[1])
	}
	if w := lipgloss.Width(lines[1]); w > 60 {
		t.Errorf("line 2 width %d exceeds 60", w)
	}
}

func TestPreviewCacheKey(t *testing.T) {
	if previewCacheKey("s", 7) == previewCacheKey("s", -1) {
		t.Error("hit and no-hit previews must not share a key")
	}
}

func TestHitTest(t *testing.T) {
	m := model{width: 100, height: 30}
	m.results = make([]search.Result, 10)
	region, idx := m.hitTest(5, 2+linesPerItem*3)
	if region != regionList || idx != 3 {
		t.Errorf("hitTest list = %v %d", region, idx)
	}
	if region, _ := m.hitTest(m.listWidth()+10, 5); region != regionPreview {
		t.Errorf("hitTest preview = %v", region)
	}
	if region, _ := m.hitTest(5, 0); region != regionNone {
		t.Errorf("hitTest input row = %v", region)
	}
}

func TestAdjustListScroll(t *testing.T) {
	m := model{cursor: 12}
	m.adjustListScroll(10) // five items visible
	if m.listOffset != 8 {
		t.Errorf("listOffset = %d, want 8", m.listOffset)
	}
	m.cursor = 2
	m.adjustListScroll(10)
	if m.listOffset != 2 {
		t.Errorf("listOffset = %d, want 2", m.listOffset)
	}
}

func TestNextFilter(t *testing.T) {
	got := []string{}
	v := ""
	for i := 0; i < len(roleFilters); i++ {
		v = nextFilter(roleFilters, v)
		got = append(got, v)
	}
	if strings.Join(got, ",") != "user,assistant," {
		t.Errorf("role cycle = %q", got)
	}
	if v := nextFilter(kindFilters, "image"); v != "" {
		t.Errorf("unknown kind should reset the filter, got %q", v)
	}
}

func TestFilterKeys(t *testing.T) {
	m := initialModel(nil, "migration", search.Options{})

	next, cmd := m.Update(tea.KeyMsg{Type: tea.KeyCtrlR})
	m = next.(model)
	if m.searchOpts.Role != "user" || cmd == nil {
		t.Fatalf("role key: role=%q cmd=%v", m.searchOpts.Role, cmd)
	}
	next, _ = m.Update(tea.KeyMsg{Type: tea.KeyCtrlT})
	m = next.(model)
	if m.searchOpts.Kind != "text" {
		t.Errorf("kind key: kind=%q", m.searchOpts.Kind)
	}
	if m.filterInput.Value() != "migration" {
		t.Errorf("filter keys leaked into the input: %q", m.filterInput.Value())
	}

	status := m.statusBar()
	for _, want := range []string{"role=user", "kind=text", "C-o open log", "Enter copy resume cmd"} {
		if !strings.Contains(status, want) {
			t.Errorf("status bar %q missing %q", status, want)
		}
	}
}

func TestEditKeySelectsResult(t *testing.T) {
	m := initialModel(nil, "", search.Options{})
	m.results = []search.Result{{SessionUUID: "s1", BlockID: 4}, {SessionUUID: "s2", BlockID: 9}}
	m.cursor = 1

	next, _ := m.Update(tea.KeyMsg{Type: tea.KeyCtrlO})
	fm := next.(model)
	if fm.openResult == nil || fm.openResult.BlockID != 9 || !fm.openEditor || !fm.quitting {
		t.Errorf("edit key: %+v editor=%v", fm.openResult, fm.openEditor)
	}

	next, _ = m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	fm = next.(model)
	if fm.openResult == nil || fm.openEditor {
		t.Errorf("enter should select for resume, editor=%v", fm.openEditor)
	}
}
