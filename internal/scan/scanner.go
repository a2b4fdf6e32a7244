package scan

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/google/uuid"
)

type FileInfo struct {
	Path      string
	Project   string // directory name under the Claude root, e.g. "-Users-me-src-app"
	SessionID string // file stem; the fallback session id for records without sessionId
	Primary   bool   // stem is a session UUID (not an agent-*.jsonl side log)
	Mtime     int64
	Size      int64
}

// ScanRoot lists every session log under root, sorted by project then path.
// A missing root yields no files and no error.
func ScanRoot(root string) ([]FileInfo, error) {
	var files []FileInfo
	if root == "" {
		return nil, nil
	}
	err := filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return nil // skip unreadable dirs
		}
		if info.IsDir() {
			base := filepath.Base(path)
			if base == "subagents" {
				return filepath.SkipDir
			}
			return nil
		}
		if filepath.Ext(path) != ".jsonl" {
			return nil
		}
		if strings.Contains(filepath.Base(path), "sessions-index") {
			return nil
		}
		fi := Describe(root, path)
		fi.Mtime = info.ModTime().Unix()
		fi.Size = info.Size()
		files = append(files, fi)
		return nil
	})
	if err != nil && !os.IsNotExist(err) {
		return nil, err
	}

	sort.Slice(files, func(i, j int) bool {
		if files[i].Project != files[j].Project {
			return files[i].Project < files[j].Project
		}
		return files[i].Path < files[j].Path
	})
	return files, nil
}

// Describe derives project and session identity from a log file's location.
// Files outside root take their parent directory name as the project.
func Describe(root, path string) FileInfo {
	stem := strings.TrimSuffix(filepath.Base(path), ".jsonl")
	fi := FileInfo{
		Path:      path,
		Project:   ProjectOf(root, path),
		SessionID: stem,
	}
	if _, err := uuid.Parse(stem); err == nil {
		fi.Primary = true
	}
	return fi
}

func ProjectOf(root, path string) string {
	if root != "" {
		if rel, err := filepath.Rel(root, path); err == nil && !strings.HasPrefix(rel, "..") {
			parts := strings.Split(rel, string(filepath.Separator))
			if len(parts) > 1 {
				return parts[0]
			}
		}
	}
	return filepath.Base(filepath.Dir(path))
}

// GroupByProject buckets files by project, keeping scan order inside a bucket.
func GroupByProject(files []FileInfo) map[string][]FileInfo {
	groups := make(map[string][]FileInfo)
	for _, f := range files {
		groups[f.Project] = append(groups[f.Project], f)
	}
	return groups
}
