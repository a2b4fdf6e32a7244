package export

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/romilly/claude-code-log-tools/internal/index"
)

// Session is the exported form of one stored session.
type Session struct {
	UUID         string    `json:"session_uuid" yaml:"session_uuid"`
	Project      string    `json:"project,omitempty" yaml:"project,omitempty"`
	FilePath     string    `json:"file_path,omitempty" yaml:"file_path,omitempty"`
	Summary      string    `json:"summary,omitempty" yaml:"summary,omitempty"`
	CreatedAt    string    `json:"created_at,omitempty" yaml:"created_at,omitempty"`
	UpdatedAt    string    `json:"updated_at,omitempty" yaml:"updated_at,omitempty"`
	InputTokens  int64     `json:"total_input_tokens" yaml:"total_input_tokens"`
	OutputTokens int64     `json:"total_output_tokens" yaml:"total_output_tokens"`
	Messages     []Message `json:"messages" yaml:"messages"`
}

type Message struct {
	UUID         string  `json:"uuid,omitempty" yaml:"uuid,omitempty"`
	ParentUUID   string  `json:"parent_uuid,omitempty" yaml:"parent_uuid,omitempty"`
	Type         string  `json:"type" yaml:"type"`
	Role         string  `json:"role,omitempty" yaml:"role,omitempty"`
	Timestamp    string  `json:"timestamp,omitempty" yaml:"timestamp,omitempty"`
	Cwd          string  `json:"cwd,omitempty" yaml:"cwd,omitempty"`
	GitBranch    string  `json:"git_branch,omitempty" yaml:"git_branch,omitempty"`
	Model        string  `json:"model,omitempty" yaml:"model,omitempty"`
	InputTokens  *int64  `json:"input_tokens,omitempty" yaml:"input_tokens,omitempty"`
	OutputTokens *int64  `json:"output_tokens,omitempty" yaml:"output_tokens,omitempty"`
	Line         int     `json:"line" yaml:"line"`
	Blocks       []Block `json:"blocks" yaml:"blocks"`
}

type Block struct {
	Kind      string `json:"kind" yaml:"kind"`
	Text      string `json:"text,omitempty" yaml:"text,omitempty"`
	ToolName  string `json:"tool_name,omitempty" yaml:"tool_name,omitempty"`
	ToolUseID string `json:"tool_use_id,omitempty" yaml:"tool_use_id,omitempty"`
	ToolInput any    `json:"tool_input,omitempty" yaml:"tool_input,omitempty"`
	IsError   bool   `json:"is_error,omitempty" yaml:"is_error,omitempty"`
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339Nano)
}

func nullInt(n sql.NullInt64) *int64 {
	if !n.Valid {
		return nil
	}
	return &n.Int64
}

// Load reads a session with all of its messages and blocks from the store.
func Load(db *index.DB, sessionUUID string) (*Session, error) {
	row, err := db.GetSessionByUUID(sessionUUID)
	if err != nil {
		return nil, fmt.Errorf("get session: %w", err)
	}
	msgs, err := db.GetMessages(row.ID)
	if err != nil {
		return nil, fmt.Errorf("get messages: %w", err)
	}

	s := &Session{
		UUID:         row.UUID,
		Project:      row.ProjectPath,
		FilePath:     row.FilePath,
		Summary:      row.Summary,
		CreatedAt:    formatTime(row.CreatedAt),
		UpdatedAt:    formatTime(row.UpdatedAt),
		InputTokens:  row.TotalInputTokens,
		OutputTokens: row.TotalOutputTokens,
		Messages:     make([]Message, 0, len(msgs)),
	}
	for _, m := range msgs {
		em := Message{
			UUID:         m.UUID,
			ParentUUID:   m.ParentUUID,
			Type:         m.Type,
			Role:         m.Role,
			Timestamp:    formatTime(m.Timestamp),
			Cwd:          m.Cwd,
			GitBranch:    m.GitBranch,
			Model:        m.Model,
			InputTokens:  nullInt(m.InputTokens),
			OutputTokens: nullInt(m.OutputTokens),
			Line:         m.LineNumber,
			Blocks:       make([]Block, 0, len(m.Blocks)),
		}
		for _, b := range m.Blocks {
			eb := Block{
				Kind:      b.Kind,
				Text:      b.Text,
				ToolName:  b.ToolName,
				ToolUseID: b.ToolUseID,
				IsError:   b.IsError,
			}
			if b.ToolInput != "" {
				var input any
				if err := json.Unmarshal([]byte(b.ToolInput), &input); err == nil {
					eb.ToolInput = input
				} else {
					eb.ToolInput = b.ToolInput
				}
			}
			em.Blocks = append(em.Blocks, eb)
		}
		s.Messages = append(s.Messages, em)
	}
	return s, nil
}
