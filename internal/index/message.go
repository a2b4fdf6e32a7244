package index

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"strconv"

	"github.com/romilly/claude-code-log-tools/internal/parse"
)

// An entry that is already stored, by uuid or, lacking one, by its
// (session, source_line) position, makes the insert a no-op. That is how
// entries re-read at the checkpoint boundary are absorbed.
const insertMessageSQL = `
INSERT INTO messages (
    session_id, uuid, parent_uuid, type, role, timestamp, cwd, git_branch, model,
    input_tokens, output_tokens, cache_creation_tokens, cache_read_tokens, version, line_number,
    source_line
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT DO NOTHING
RETURNING id`

const insertBlockSQL = `
INSERT INTO content_blocks (message_id, block_index, block_type, text_content, tool_name, tool_input, tool_use_id, is_error)
VALUES (?, ?, ?, ?, ?, ?, ?, ?)`

// sourceLine identifies an entry by the log file it came from and its line.
// Log files are append-only, so the pair is stable across runs.
func sourceLine(path string, line int) string {
	return filepath.Base(path) + ":" + strconv.Itoa(line)
}

// insertMessage stores one entry and its blocks. It reports false, with no
// error, when the entry is already present. Entries with a uuid are keyed by
// it; the rest fall back to their source position.
func insertMessage(ctx context.Context, tx *sql.Tx, blockStmt *sql.Stmt, sessionID int64, e *parse.Entry, path string, lineNumber int, blocks []parse.Block) (bool, error) {
	u := e.Tokens()
	var source any
	if e.UUID == "" {
		source = sourceLine(path, lineNumber)
	}
	var id int64
	err := tx.QueryRowContext(ctx, insertMessageSQL,
		sessionID,
		nullString(e.UUID),
		nullString(e.ParentUUID),
		e.Type,
		nullString(e.Role()),
		FormatTime(e.Time),
		nullString(e.Cwd),
		nullString(e.GitBranch),
		nullString(e.Model()),
		nullInt(u.InputTokens),
		nullInt(u.OutputTokens),
		nullInt(u.CacheCreationInputTokens),
		nullInt(u.CacheReadInputTokens),
		nullString(e.Version),
		lineNumber,
		source,
	).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}

	for _, b := range blocks {
		var text any
		if b.HasText {
			text = b.Text
		}
		var input any
		if len(b.ToolInput) > 0 {
			input = string(b.ToolInput)
		}
		if _, err := blockStmt.ExecContext(ctx,
			id,
			b.Index,
			b.Kind,
			text,
			nullString(b.ToolName),
			input,
			nullString(b.ToolUseID),
			b.IsError,
		); err != nil {
			return false, err
		}
	}
	return true, nil
}
