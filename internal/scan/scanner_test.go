package scan

import (
	"os"
	"path/filepath"
	"testing"
)

func writeFile(t *testing.T, path string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte("{}\n"), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestScanRoot(t *testing.T) {
	root := t.TempDir()
	sid := "0b6f8f2e-6a51-4c5e-9f59-8d2a6f1e2c3d"
	writeFile(t, filepath.Join(root, "-home-a-proj", sid+".jsonl"))
	writeFile(t, filepath.Join(root, "-home-a-proj", "agent-1234.jsonl"))
	writeFile(t, filepath.Join(root, "-home-a-proj", "notes.txt"))
	writeFile(t, filepath.Join(root, "-home-a-proj", sid, "subagents", "agent-x.jsonl"))
	writeFile(t, filepath.Join(root, "-home-b", "sessions-index.jsonl"))
	writeFile(t, filepath.Join(root, "-home-b", "other.jsonl"))

	files, err := ScanRoot(root)
	if err != nil {
		t.Fatalf("ScanRoot: %v", err)
	}
	if len(files) != 3 {
		t.Fatalf("got %d files, want 3: %+v", len(files), files)
	}

	if files[0].Project != "-home-a-proj" || files[1].Project != "-home-a-proj" || files[2].Project != "-home-b" {
		t.Fatalf("unexpected project order: %+v", files)
	}

	var primary int
	for _, f := range files {
		if f.Primary {
			primary++
			if f.SessionID != sid {
				t.Errorf("SessionID = %q, want %q", f.SessionID, sid)
			}
		}
	}
	if primary != 1 {
		t.Errorf("expected exactly one primary session file, got %d", primary)
	}

	groups := GroupByProject(files)
	if len(groups["-home-a-proj"]) != 2 || len(groups["-home-b"]) != 1 {
		t.Errorf("unexpected grouping: %v", groups)
	}
}

func TestScanRootMissing(t *testing.T) {
	files, err := ScanRoot(filepath.Join(t.TempDir(), "nope"))
	if err != nil {
		t.Fatalf("ScanRoot on missing root: %v", err)
	}
	if len(files) != 0 {
		t.Fatalf("expected no files, got %d", len(files))
	}
}

func TestProjectOf(t *testing.T) {
	root := filepath.Join("/data", "projects")
	tests := []struct {
		path string
		want string
	}{
		{filepath.Join(root, "-p1", "s.jsonl"), "-p1"},
		{filepath.Join(root, "-p1", "deep", "s.jsonl"), "-p1"},
		{filepath.Join("/elsewhere", "-p2", "s.jsonl"), "-p2"},
	}
	for _, tt := range tests {
		if got := ProjectOf(root, tt.path); got != tt.want {
			t.Errorf("ProjectOf(%q) = %q, want %q", tt.path, got, tt.want)
		}
	}
	if got := ProjectOf("", "/x/-p3/s.jsonl"); got != "-p3" {
		t.Errorf("ProjectOf without root = %q", got)
	}
}
