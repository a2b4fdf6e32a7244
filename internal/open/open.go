package open

import (
	"fmt"
	"os"
	"os/exec"
	"strconv"
	"strings"

	"github.com/romilly/claude-code-log-tools/internal/index"
)

// OpenSession opens a session's log file in $EDITOR, positioned at the line
// the given block was read from. A negative blockID opens at the top.
func OpenSession(db *index.DB, sessionUUID string, blockID int64) error {
	session, err := db.GetSessionByUUID(sessionUUID)
	if err != nil {
		return fmt.Errorf("get session: %w", err)
	}

	filePath := session.FilePath
	if _, err := os.Stat(filePath); err != nil {
		return fmt.Errorf("file not found: %s", filePath)
	}

	// find line number for the hit block
	lineNum := 1
	if blockID >= 0 {
		if blk, err := db.GetBlock(blockID); err == nil && blk.LineNumber > 0 {
			lineNum = blk.LineNumber
		}
	}

	editor := os.Getenv("EDITOR")
	if editor == "" {
		editor = "less"
	}

	cmd := exec.Command(editor, editorArgs(editor, filePath, lineNum)...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	return cmd.Run()
}

func editorArgs(editor, filePath string, lineNum int) []string {
	switch {
	case strings.Contains(editor, "vim") || strings.Contains(editor, "nvim"):
		return []string{fmt.Sprintf("+%d", lineNum), filePath}
	case strings.Contains(editor, "code"):
		return []string{"--goto", filePath + ":" + strconv.Itoa(lineNum)}
	case strings.Contains(editor, "less"):
		return []string{"+" + strconv.Itoa(lineNum), filePath}
	default:
		return []string{filePath}
	}
}
