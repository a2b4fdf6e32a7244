package search

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/romilly/claude-code-log-tools/internal/index"
)

type SessionInfo struct {
	UUID         string
	Project      string
	FilePath     string
	Cwd          string
	Summary      string
	CreatedAt    time.Time
	UpdatedAt    time.Time
	Messages     int
	InputTokens  int64
	OutputTokens int64
}

type ListOptions struct {
	Project string
	Since   time.Time
	Limit   int // <= 0 = no limit
}

// ListSessions returns stored sessions, most recently active first.
func ListSessions(db *index.DB, opts ListOptions) ([]SessionInfo, error) {
	var conditions []string
	var args []any
	if opts.Project != "" {
		conditions = append(conditions, "s.project_path = ?")
		args = append(args, opts.Project)
	}
	if !opts.Since.IsZero() {
		conditions = append(conditions, "s.updated_at >= ?")
		args = append(args, index.FormatTime(opts.Since))
	}
	where := ""
	if len(conditions) > 0 {
		where = "WHERE " + strings.Join(conditions, " AND ")
	}
	limit := ""
	if opts.Limit > 0 {
		limit = "LIMIT ?"
		args = append(args, opts.Limit)
	}

	query := fmt.Sprintf(`
		SELECT s.session_uuid, s.project_path, s.file_path,
		       (SELECT cwd FROM messages WHERE session_id = s.id AND cwd IS NOT NULL ORDER BY id LIMIT 1),
		       s.summary, s.created_at, s.updated_at,
		       (SELECT COUNT(*) FROM messages WHERE session_id = s.id),
		       s.total_input_tokens, s.total_output_tokens
		FROM sessions s
		%s
		ORDER BY s.updated_at DESC
		%s
	`, where, limit)

	rows, err := db.Raw().Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	defer rows.Close()

	var out []SessionInfo
	for rows.Next() {
		var s SessionInfo
		var cwd, summary, created, updated sql.NullString
		if err := rows.Scan(&s.UUID, &s.Project, &s.FilePath, &cwd, &summary, &created, &updated,
			&s.Messages, &s.InputTokens, &s.OutputTokens); err != nil {
			return nil, err
		}
		s.Cwd, s.Summary = cwd.String, summary.String
		s.CreatedAt = index.ParseTime(created)
		s.UpdatedAt = index.ParseTime(updated)
		out = append(out, s)
	}
	return out, rows.Err()
}
