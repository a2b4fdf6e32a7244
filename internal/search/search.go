package search

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode"

	"github.com/romilly/claude-code-log-tools/internal/index"
)

type Mode string

const (
	ModePlain   Mode = "plain"   // every term must appear
	ModePhrase  Mode = "phrase"  // the whole query as one phrase
	ModeBoolean Mode = "boolean" // FTS5 syntax: AND, OR, NOT, parentheses, prefix*
)

var ErrUnknownMode = errors.New("unknown search mode")

type Result struct {
	SessionUUID string
	SessionID   int64
	BlockID     int64
	MessageUUID string
	Project     string
	Cwd         string
	Summary     string
	Timestamp   time.Time
	UpdatedAt   time.Time
	Type        string
	Role        string
	Kind        string
	ToolName    string
	ToolUseID   string
	LineNumber  int
	Snippet     string
	Rank        float64
}

type Options struct {
	Query       string
	Mode        Mode // "" = plain
	SessionUUID string
	Project     string
	Type        string // entry type, e.g. "assistant"
	Role        string // "" = all, "user", "assistant"
	Kind        string // block kind, e.g. "tool_result"
	ToolName    string
	ToolUseID   string
	Since       time.Time
	Until       time.Time
	Limit       int
	PerSession  bool // keep only the best hit per session
}

// containsCJK returns true if the string contains any CJK Unified Ideograph.
func containsCJK(s string) bool {
	for _, r := range s {
		if unicode.Is(unicode.Han, r) {
			return true
		}
	}
	return false
}

// quoteTerm makes s a single FTS5 string token.
func quoteTerm(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}

// MatchExpr turns a user query into an FTS5 MATCH expression.
func MatchExpr(query string, mode Mode) (string, error) {
	query = strings.TrimSpace(query)
	switch mode {
	case "", ModePlain:
		terms := strings.Fields(query)
		for i, t := range terms {
			terms[i] = quoteTerm(t)
		}
		return strings.Join(terms, " "), nil
	case ModePhrase:
		return quoteTerm(query), nil
	case ModeBoolean:
		return query, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownMode, mode)
	}
}

// makeSnippet extracts a snippet around the first occurrence of query in text.
func makeSnippet(text, query string, contextChars int) string {
	runes := []rune(text)
	lower := strings.ToLower(text)
	qLower := strings.ToLower(query)
	idx := -1
	if query != "" {
		idx = strings.Index(lower, qLower)
	}
	if idx < 0 || len(lower) != len(text) {
		// no match, return head
		if len(runes) > contextChars*2 {
			return string(runes[:contextChars*2]) + "..."
		}
		return text
	}
	qRunes := []rune(query)
	// find rune position of idx
	runePos := len([]rune(text[:idx]))
	start := runePos - contextChars
	if start < 0 {
		start = 0
	}
	end := runePos + len(qRunes) + contextChars
	if end > len(runes) {
		end = len(runes)
	}
	prefix := ""
	suffix := ""
	if start > 0 {
		prefix = "..."
	}
	if end < len(runes) {
		suffix = "..."
	}
	// wrap the matched part with markers
	snippet := string(runes[start:runePos]) +
		">>>" + string(runes[runePos:runePos+len(qRunes)]) + "<<<" +
		string(runes[runePos+len(qRunes):end])
	return prefix + snippet + suffix
}

// Search finds content blocks matching opts. An empty query lists blocks
// matching the structured filters alone, oldest first.
func Search(db *index.DB, opts Options) ([]Result, error) {
	if opts.Limit <= 0 {
		opts.Limit = 100
	}

	origLimit := opts.Limit
	if opts.PerSession {
		// Fetch more results before dedup so we still have enough after
		opts.Limit = origLimit * 3
	}

	var results []Result
	var err error
	switch {
	case strings.TrimSpace(opts.Query) == "":
		results, err = searchScan(db, opts, "")
	case containsCJK(opts.Query):
		results, err = searchScan(db, opts, opts.Query)
	default:
		results, err = searchFTS(db, opts)
	}
	if err != nil {
		return nil, err
	}
	if !opts.PerSession {
		return results, nil
	}

	// Deduplicate: keep only the best-ranked result per session
	seen := make(map[string]bool)
	var deduped []Result
	for _, r := range results {
		if seen[r.SessionUUID] {
			continue
		}
		seen[r.SessionUUID] = true
		deduped = append(deduped, r)
		if len(deduped) >= origLimit {
			break
		}
	}
	return deduped, nil
}

// filters returns the structured conditions shared by every search path.
func filters(opts Options) ([]string, []any) {
	var conditions []string
	var args []any
	add := func(cond string, arg any) {
		conditions = append(conditions, cond)
		args = append(args, arg)
	}
	if opts.SessionUUID != "" {
		add("s.session_uuid = ?", opts.SessionUUID)
	}
	if opts.Project != "" {
		add("s.project_path = ?", opts.Project)
	}
	if opts.Type != "" {
		add("m.type = ?", opts.Type)
	}
	if opts.Role != "" {
		add("m.role = ?", opts.Role)
	}
	if opts.Kind != "" {
		add("b.block_type = ?", opts.Kind)
	}
	if opts.ToolName != "" {
		add("b.tool_name = ?", opts.ToolName)
	}
	if opts.ToolUseID != "" {
		add("b.tool_use_id = ?", opts.ToolUseID)
	}
	if !opts.Since.IsZero() {
		add("m.timestamp >= ?", index.FormatTime(opts.Since))
	}
	if !opts.Until.IsZero() {
		add("m.timestamp < ?", index.FormatTime(opts.Until))
	}
	return conditions, args
}

const resultColumns = `
	s.session_uuid, s.id, b.id, m.uuid, s.project_path,
	COALESCE(m.cwd, (SELECT cwd FROM messages WHERE session_id = s.id AND cwd IS NOT NULL LIMIT 1)),
	s.summary, m.timestamp, s.updated_at, m.type, m.role, b.block_type, b.tool_name, b.tool_use_id, m.line_number`

const resultJoins = `
	JOIN messages m ON m.id = b.message_id
	JOIN sessions s ON s.id = m.session_id`

func searchFTS(db *index.DB, opts Options) ([]Result, error) {
	match, err := MatchExpr(opts.Query, opts.Mode)
	if err != nil {
		return nil, err
	}
	conditions, args := filters(opts)
	conditions = append([]string{"content_blocks_fts MATCH ?"}, conditions...)
	args = append([]any{match}, args...)

	query := fmt.Sprintf(`
		SELECT %s,
			snippet(content_blocks_fts, 0, '>>>', '<<<', '...', 40) AS snip,
			bm25(content_blocks_fts) AS score
		FROM content_blocks_fts
		JOIN content_blocks b ON b.id = content_blocks_fts.rowid
		%s
		WHERE %s
		ORDER BY score
		LIMIT ?
	`, resultColumns, resultJoins, strings.Join(conditions, " AND "))
	args = append(args, opts.Limit)

	rows, err := db.Raw().Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("search query: %w", err)
	}
	defer rows.Close()

	var results []Result
	for rows.Next() {
		var r Result
		var snip sql.NullString
		if err := scanResult(rows, &r, &snip, &r.Rank); err != nil {
			return nil, err
		}
		r.Snippet = snip.String
		results = append(results, r)
	}
	return results, rows.Err()
}

// searchScan handles substring (CJK) and filter-only searches without FTS.
func searchScan(db *index.DB, opts Options, needle string) ([]Result, error) {
	conditions, args := filters(opts)
	order := "m.timestamp, m.id, b.block_index"
	if needle != "" {
		// LIKE match for CJK substring search
		conditions = append(conditions, "b.text_content LIKE ?")
		args = append(args, "%"+needle+"%")
		order = "s.updated_at DESC, m.id, b.block_index"
	}
	where := "1 = 1"
	if len(conditions) > 0 {
		where = strings.Join(conditions, " AND ")
	}

	query := fmt.Sprintf(`
		SELECT %s, b.text_content
		FROM content_blocks b
		%s
		WHERE %s
		ORDER BY %s
		LIMIT ?
	`, resultColumns, resultJoins, where, order)
	args = append(args, opts.Limit)

	rows, err := db.Raw().Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("search query: %w", err)
	}
	defer rows.Close()

	var results []Result
	for rows.Next() {
		var r Result
		var fullText sql.NullString
		if err := scanResult(rows, &r, &fullText); err != nil {
			return nil, err
		}
		r.Snippet = makeSnippet(fullText.String, needle, 30)
		results = append(results, r)
	}
	return results, rows.Err()
}

func scanResult(rows *sql.Rows, r *Result, extra ...any) error {
	var msgUUID, cwd, summary, ts, updated, role, toolName, toolUseID sql.NullString
	dest := []any{
		&r.SessionUUID, &r.SessionID, &r.BlockID, &msgUUID, &r.Project,
		&cwd, &summary, &ts, &updated, &r.Type, &role, &r.Kind, &toolName, &toolUseID, &r.LineNumber,
	}
	if err := rows.Scan(append(dest, extra...)...); err != nil {
		return err
	}
	r.MessageUUID, r.Cwd, r.Summary, r.Role = msgUUID.String, cwd.String, summary.String, role.String
	r.ToolName, r.ToolUseID = toolName.String, toolUseID.String
	r.Timestamp = index.ParseTime(ts)
	r.UpdatedAt = index.ParseTime(updated)
	return nil
}
