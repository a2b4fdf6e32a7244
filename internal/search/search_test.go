package search

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/romilly/claude-code-log-tools/internal/index"
)

const (
	sessA = "aaaaaaaa-0000-4000-8000-000000000001"
	sessB = "bbbbbbbb-0000-4000-8000-000000000002"
)

var fixtures = map[string][]string{
	filepath.Join("-work-api", sessA+".jsonl"): {
		`{"type":"summary","summary":"Database migration","leafUuid":"a3"}`,
		`{"type":"user","uuid":"a1","sessionId":"` + sessA + `","timestamp":"2025-05-01T09:00:00Z","cwd":"/work/api","message":{"role":"user","content":"run the database migration please"}}`,
		`{"type":"assistant","uuid":"a2","sessionId":"` + sessA + `","timestamp":"2025-05-01T09:00:05Z","cwd":"/work/api","message":{"role":"assistant","content":[{"type":"text","text":"Running migrations now."},{"type":"tool_use","id":"toolu_1","name":"Bash","input":{"command":"make migrate"}}]}}`,
		`{"type":"user","uuid":"a3","sessionId":"` + sessA + `","timestamp":"2025-05-01T09:00:09Z","cwd":"/work/api","message":{"role":"user","content":[{"type":"tool_result","tool_use_id":"toolu_1","content":"migration failed: relation exists","is_error":true}]}}`,
		`{"type":"assistant","uuid":"a4","sessionId":"` + sessA + `","timestamp":"2025-05-01T09:01:00Z","cwd":"/work/api","message":{"role":"assistant","content":[{"type":"tool_use","id":"toolu_2","name":"Read","input":{"file_path":"schema.sql"}}]}}`,
	},
	filepath.Join("-work-web", sessB+".jsonl"): {
		`{"type":"user","uuid":"b1","sessionId":"` + sessB + `","timestamp":"2025-05-02T12:00:00Z","cwd":"/work/web","message":{"role":"user","content":"the login page shows 数据库 errors"}}`,
		`{"type":"assistant","uuid":"b2","sessionId":"` + sessB + `","timestamp":"2025-05-02T12:00:03Z","cwd":"/work/web","message":{"role":"assistant","content":"Check the database connection string."}}`,
	},
}

func setupDB(t *testing.T) *index.DB {
	t.Helper()
	root := t.TempDir()
	for rel, lines := range fixtures {
		path := filepath.Join(root, rel)
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, []byte(strings.Join(lines, "\n")+"\n"), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	db, err := index.OpenDB(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = db.Close() })

	stats, err := index.NewImporter(db, index.Options{Root: root, BatchSize: 50, Workers: 2}).ImportAll(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if stats.Imported != 6 {
		t.Fatalf("fixture import: %s", stats)
	}
	return db
}

func TestMatchExpr(t *testing.T) {
	tests := []struct {
		query string
		mode  Mode
		want  string
	}{
		{"database migration", ModePlain, `"database" "migration"`},
		{"  spaced   out ", "", `"spaced" "out"`},
		{`say "hi"`, ModePlain, `"say" """hi"""`},
		{"database migration", ModePhrase, `"database migration"`},
		{"login OR migration", ModeBoolean, "login OR migration"},
	}
	for _, tt := range tests {
		got, err := MatchExpr(tt.query, tt.mode)
		if err != nil {
			t.Errorf("MatchExpr(%q, %q): %v", tt.query, tt.mode, err)
			continue
		}
		if got != tt.want {
			t.Errorf("MatchExpr(%q, %q) = %s, want %s", tt.query, tt.mode, got, tt.want)
		}
	}
	if _, err := MatchExpr("x", "fuzzy"); !errors.Is(err, ErrUnknownMode) {
		t.Errorf("expected ErrUnknownMode, got %v", err)
	}
}

func TestSearchModes(t *testing.T) {
	db := setupDB(t)

	tests := []struct {
		name string
		opts Options
		want int
	}{
		{"plain matches stemmed terms", Options{Query: "database migration"}, 1},
		{"plain single term", Options{Query: "database"}, 2},
		{"phrase", Options{Query: "database connection", Mode: ModePhrase}, 1},
		{"phrase order matters", Options{Query: "connection database", Mode: ModePhrase}, 0},
		{"boolean or stems terms", Options{Query: "login OR migrations", Mode: ModeBoolean}, 4},
		{"boolean not", Options{Query: "database NOT migration", Mode: ModeBoolean}, 1},
		{"role filter", Options{Query: "database", Role: "assistant"}, 1},
		{"project filter", Options{Query: "database", Project: "-work-api"}, 1},
		{"session filter", Options{Query: "database", SessionUUID: sessB}, 1},
		{"until excludes later", Options{Query: "database", Until: time.Date(2025, 5, 2, 0, 0, 0, 0, time.UTC)}, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			results, err := Search(db, tt.opts)
			if err != nil {
				t.Fatalf("Search: %v", err)
			}
			if len(results) != tt.want {
				t.Errorf("got %d results, want %d: %+v", len(results), tt.want, results)
			}
		})
	}
}

func TestSearchResultFields(t *testing.T) {
	db := setupDB(t)
	results, err := Search(db, Options{Query: "relation exists", Mode: ModePhrase})
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 1 {
		t.Fatalf("got %d results", len(results))
	}
	r := results[0]
	if r.SessionUUID != sessA || r.Kind != "tool_result" || r.ToolUseID != "toolu_1" {
		t.Errorf("unexpected result: %+v", r)
	}
	if r.Summary != "Database migration" || r.Cwd != "/work/api" || r.LineNumber != 4 {
		t.Errorf("unexpected context: %+v", r)
	}
	if !strings.Contains(r.Snippet, ">>>relation<<<") {
		t.Errorf("snippet not highlighted: %q", r.Snippet)
	}
}

func TestSearchPerSession(t *testing.T) {
	db := setupDB(t)
	results, err := Search(db, Options{Query: "migration OR migrations OR database", Mode: ModeBoolean, PerSession: true})
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 2 {
		t.Fatalf("got %d results, want one per session", len(results))
	}
}

func TestSearchStructuredOnly(t *testing.T) {
	db := setupDB(t)
	results, err := Search(db, Options{ToolName: "Bash"})
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 1 || results[0].Kind != "tool_use" {
		t.Fatalf("unexpected results: %+v", results)
	}

	results, err = Search(db, Options{ToolUseID: "toolu_1"})
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 2 {
		t.Fatalf("tool_use_id filter should find call and result, got %d", len(results))
	}
	if results[0].Kind != "tool_use" || results[1].Kind != "tool_result" {
		t.Errorf("expected call before result, got %s then %s", results[0].Kind, results[1].Kind)
	}

	results, err = Search(db, Options{Type: "user", Since: time.Date(2025, 5, 2, 0, 0, 0, 0, time.UTC)})
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 1 || results[0].MessageUUID != "b1" {
		t.Errorf("unexpected results: %+v", results)
	}
}

func TestSearchCJK(t *testing.T) {
	db := setupDB(t)
	results, err := Search(db, Options{Query: "数据库"})
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 1 || results[0].SessionUUID != sessB {
		t.Fatalf("unexpected results: %+v", results)
	}
	if !strings.Contains(results[0].Snippet, ">>>数据库<<<") {
		t.Errorf("snippet = %q", results[0].Snippet)
	}
}

func TestMakeSnippet(t *testing.T) {
	if got := makeSnippet("hello world", "WORLD", 3); got != "...lo >>>world<<<" {
		t.Errorf("got %q", got)
	}
	if got := makeSnippet("abcdefgh", "", 2); got != "abcd..." {
		t.Errorf("got %q", got)
	}
}

func TestToolPairs(t *testing.T) {
	db := setupDB(t)

	pairs, err := ToolPairs(db, PairOptions{ToolUseID: "toolu_1"})
	if err != nil {
		t.Fatal(err)
	}
	if len(pairs) != 1 {
		t.Fatalf("got %d pairs", len(pairs))
	}
	p := pairs[0]
	if p.ToolName != "Bash" || p.Input != `{"command":"make migrate"}` {
		t.Errorf("call = %q %q", p.ToolName, p.Input)
	}
	if !p.HasResult || !p.IsError || p.Result != "migration failed: relation exists" {
		t.Errorf("result = %+v", p)
	}
	if !p.ResultAt.After(p.CalledAt) {
		t.Errorf("result time %v not after call time %v", p.ResultAt, p.CalledAt)
	}

	pairs, err = ToolPairs(db, PairOptions{SessionUUID: sessA})
	if err != nil {
		t.Fatal(err)
	}
	if len(pairs) != 2 || pairs[1].HasResult {
		t.Errorf("expected an unanswered second call: %+v", pairs)
	}

	pairs, err = ToolPairs(db, PairOptions{ErrorsOnly: true})
	if err != nil {
		t.Fatal(err)
	}
	if len(pairs) != 1 {
		t.Errorf("errors only: got %d pairs", len(pairs))
	}
}

func TestListSessions(t *testing.T) {
	db := setupDB(t)
	sessions, err := ListSessions(db, ListOptions{})
	if err != nil {
		t.Fatal(err)
	}
	if len(sessions) != 2 {
		t.Fatalf("got %d sessions", len(sessions))
	}
	if sessions[0].UUID != sessB {
		t.Errorf("newest session should come first, got %s", sessions[0].UUID)
	}
	a := sessions[1]
	if a.Messages != 4 || a.Summary != "Database migration" || a.Cwd != "/work/api" {
		t.Errorf("unexpected session info: %+v", a)
	}

	sessions, err = ListSessions(db, ListOptions{Project: "-work-api", Limit: 5})
	if err != nil {
		t.Fatal(err)
	}
	if len(sessions) != 1 || sessions[0].UUID != sessA {
		t.Errorf("project filter: %+v", sessions)
	}
}
