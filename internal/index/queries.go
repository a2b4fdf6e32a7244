package index

import (
	"database/sql"
	"time"
)

type SessionRow struct {
	ID                int64
	UUID              string
	ProjectPath       string
	FilePath          string
	Summary           string
	CreatedAt         time.Time
	UpdatedAt         time.Time
	TotalInputTokens  int64
	TotalOutputTokens int64
}

type MessageRow struct {
	ID           int64
	SessionID    int64
	UUID         string
	ParentUUID   string
	Type         string
	Role         string
	Timestamp    time.Time
	Cwd          string
	GitBranch    string
	Model        string
	InputTokens  sql.NullInt64
	OutputTokens sql.NullInt64
	Version      string
	LineNumber   int
	Blocks       []BlockRow
}

// BlockRow is a content block together with the envelope fields of its
// message that readers need for display.
type BlockRow struct {
	ID         int64
	MessageID  int64
	BlockIndex int
	Kind       string
	Text       string
	ToolName   string
	ToolInput  string
	ToolUseID  string
	IsError    bool
	Role       string
	MsgType    string
	Timestamp  time.Time
	LineNumber int
}

const sessionColumns = `id, session_uuid, project_path, file_path, summary, created_at, updated_at, total_input_tokens, total_output_tokens`

func scanSession(row interface{ Scan(...any) error }) (*SessionRow, error) {
	var s SessionRow
	var summary, created, updated sql.NullString
	if err := row.Scan(&s.ID, &s.UUID, &s.ProjectPath, &s.FilePath, &summary, &created, &updated,
		&s.TotalInputTokens, &s.TotalOutputTokens); err != nil {
		return nil, err
	}
	s.Summary = summary.String
	s.CreatedAt = ParseTime(created)
	s.UpdatedAt = ParseTime(updated)
	return &s, nil
}

// GetSessionByUUID returns ErrSessionNotFound when no such session exists.
func (d *DB) GetSessionByUUID(sessionUUID string) (*SessionRow, error) {
	s, err := scanSession(d.db.QueryRow("SELECT "+sessionColumns+" FROM sessions WHERE session_uuid = ?", sessionUUID))
	if err == sql.ErrNoRows {
		return nil, ErrSessionNotFound
	}
	return s, err
}

// GetMessages returns a session's messages in import order with their blocks.
func (d *DB) GetMessages(sessionID int64) ([]MessageRow, error) {
	rows, err := d.db.Query(`
		SELECT id, session_id, uuid, parent_uuid, type, role, timestamp, cwd, git_branch, model,
		       input_tokens, output_tokens, version, line_number
		FROM messages WHERE session_id = ? ORDER BY id`, sessionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var msgs []MessageRow
	index := make(map[int64]int)
	for rows.Next() {
		var m MessageRow
		var uuid, parent, role, ts, cwd, branch, model, version sql.NullString
		if err := rows.Scan(&m.ID, &m.SessionID, &uuid, &parent, &m.Type, &role, &ts, &cwd, &branch, &model,
			&m.InputTokens, &m.OutputTokens, &version, &m.LineNumber); err != nil {
			return nil, err
		}
		m.UUID, m.ParentUUID, m.Role = uuid.String, parent.String, role.String
		m.Cwd, m.GitBranch, m.Model, m.Version = cwd.String, branch.String, model.String, version.String
		m.Timestamp = ParseTime(ts)
		index[m.ID] = len(msgs)
		msgs = append(msgs, m)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	blocks, err := d.queryBlocks("WHERE m.session_id = ? ORDER BY m.id, b.block_index", sessionID)
	if err != nil {
		return nil, err
	}
	for _, b := range blocks {
		if i, ok := index[b.MessageID]; ok {
			msgs[i].Blocks = append(msgs[i].Blocks, b)
		}
	}
	return msgs, nil
}

const blockSelect = `
	SELECT b.id, b.message_id, b.block_index, b.block_type, b.text_content, b.tool_name, b.tool_input,
	       b.tool_use_id, b.is_error, m.role, m.type, m.timestamp, m.line_number
	FROM content_blocks b
	JOIN messages m ON m.id = b.message_id
	`

func (d *DB) queryBlocks(tail string, args ...any) ([]BlockRow, error) {
	rows, err := d.db.Query(blockSelect+tail, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanBlocks(rows)
}

// scanBlocks reads rows selected with the blockSelect column list.
func scanBlocks(rows *sql.Rows) ([]BlockRow, error) {
	var out []BlockRow
	for rows.Next() {
		var b BlockRow
		var text, name, input, useID, role, ts sql.NullString
		if err := rows.Scan(&b.ID, &b.MessageID, &b.BlockIndex, &b.Kind, &text, &name, &input,
			&useID, &b.IsError, &role, &b.MsgType, &ts, &b.LineNumber); err != nil {
			return nil, err
		}
		b.Text, b.ToolName, b.ToolInput, b.ToolUseID, b.Role = text.String, name.String, input.String, useID.String, role.String
		b.Timestamp = ParseTime(ts)
		out = append(out, b)
	}
	return out, rows.Err()
}

// GetBlock returns one block by id.
func (d *DB) GetBlock(blockID int64) (*BlockRow, error) {
	blocks, err := d.queryBlocks("WHERE b.id = ?", blockID)
	if err != nil {
		return nil, err
	}
	if len(blocks) == 0 {
		return nil, sql.ErrNoRows
	}
	return &blocks[0], nil
}

// GetBlocksWindow returns a window of blocks around a hit block.
// It only loads the necessary rows from the database instead of all blocks.
// startPos is the number of blocks before the returned window.
// totalCount is the total number of blocks in the session.
func (d *DB) GetBlocksWindow(sessionID, hitBlockID int64, context int) (blocks []BlockRow, hitIdx int, startPos int, totalCount int, err error) {
	err = d.db.QueryRow(`
		SELECT COUNT(*) FROM content_blocks b JOIN messages m ON m.id = b.message_id
		WHERE m.session_id = ?`, sessionID,
	).Scan(&totalCount)
	if err != nil {
		return nil, -1, 0, 0, err
	}

	// find the row_number (0-based position) of the hit block
	hitPos := -1
	if hitBlockID >= 0 {
		err = d.db.QueryRow(`
			SELECT pos FROM (
				SELECT b.id, ROW_NUMBER() OVER (ORDER BY m.id, b.block_index) - 1 AS pos
				FROM content_blocks b JOIN messages m ON m.id = b.message_id
				WHERE m.session_id = ?
			) WHERE id = ?`,
			sessionID, hitBlockID,
		).Scan(&hitPos)
		if err == sql.ErrNoRows {
			hitPos = -1
			err = nil
		} else if err != nil {
			return nil, -1, 0, 0, err
		}
	}

	// compute window bounds
	startPos = 0
	limit := totalCount
	if hitPos >= 0 {
		startPos = hitPos - context
		if startPos < 0 {
			startPos = 0
		}
		endPos := hitPos + context + 1
		if endPos > totalCount {
			endPos = totalCount
		}
		limit = endPos - startPos
	}

	result, err := d.queryBlocks("WHERE m.session_id = ? ORDER BY m.id, b.block_index LIMIT ? OFFSET ?",
		sessionID, limit, startPos)
	if err != nil {
		return nil, -1, 0, 0, err
	}
	localHitIdx := -1
	for i, b := range result {
		if b.ID == hitBlockID {
			localHitIdx = i
		}
	}
	return result, localHitIdx, startPos, totalCount, nil
}
