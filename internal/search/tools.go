package search

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/romilly/claude-code-log-tools/internal/index"
)

// ToolPair is a tool invocation joined with its result, which usually lives
// in a later message.
type ToolPair struct {
	ToolUseID   string
	ToolName    string
	Input       string
	SessionUUID string
	CalledAt    time.Time
	UseBlockID  int64

	HasResult     bool
	Result        string
	IsError       bool
	ResultAt      time.Time
	ResultBlockID int64
}

type PairOptions struct {
	ToolUseID   string
	ToolName    string
	SessionUUID string
	ErrorsOnly  bool
	Limit       int
}

// ToolPairs correlates tool_use blocks with tool_result blocks by tool_use_id.
// A call whose result was never logged is returned with HasResult false.
func ToolPairs(db *index.DB, opts PairOptions) ([]ToolPair, error) {
	if opts.Limit <= 0 {
		opts.Limit = 100
	}
	conditions := []string{"u.block_type = 'tool_use'"}
	var args []any
	if opts.ToolUseID != "" {
		conditions = append(conditions, "u.tool_use_id = ?")
		args = append(args, opts.ToolUseID)
	}
	if opts.ToolName != "" {
		conditions = append(conditions, "u.tool_name = ?")
		args = append(args, opts.ToolName)
	}
	if opts.SessionUUID != "" {
		conditions = append(conditions, "s.session_uuid = ?")
		args = append(args, opts.SessionUUID)
	}
	if opts.ErrorsOnly {
		conditions = append(conditions, "r.is_error = 1")
	}

	query := fmt.Sprintf(`
		SELECT u.id, u.tool_use_id, u.tool_name, u.tool_input, um.timestamp, s.session_uuid,
		       r.id, r.text_content, r.is_error, rm.timestamp
		FROM content_blocks u
		JOIN messages um ON um.id = u.message_id
		JOIN sessions s ON s.id = um.session_id
		LEFT JOIN content_blocks r ON r.tool_use_id = u.tool_use_id AND r.block_type = 'tool_result'
		LEFT JOIN messages rm ON rm.id = r.message_id
		WHERE %s
		ORDER BY um.timestamp, u.id
		LIMIT ?
	`, strings.Join(conditions, " AND "))
	args = append(args, opts.Limit)

	rows, err := db.Raw().Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("tool pairs query: %w", err)
	}
	defer rows.Close()

	var pairs []ToolPair
	for rows.Next() {
		var p ToolPair
		var useID, name, input, calledAt, resultText, resultAt sql.NullString
		var resultID sql.NullInt64
		var isErr sql.NullBool
		if err := rows.Scan(&p.UseBlockID, &useID, &name, &input, &calledAt, &p.SessionUUID,
			&resultID, &resultText, &isErr, &resultAt); err != nil {
			return nil, err
		}
		p.ToolUseID, p.ToolName, p.Input = useID.String, name.String, input.String
		p.CalledAt = index.ParseTime(calledAt)
		if resultID.Valid {
			p.HasResult = true
			p.ResultBlockID = resultID.Int64
			p.Result = resultText.String
			p.IsError = isErr.Bool
			p.ResultAt = index.ParseTime(resultAt)
		}
		pairs = append(pairs, p)
	}
	return pairs, rows.Err()
}
