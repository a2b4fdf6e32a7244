package render

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/mattn/go-runewidth"

	"github.com/romilly/claude-code-log-tools/internal/index"
)

const (
	colorReset   = "\033[0m"
	colorUser    = "\033[1;34m" // bold blue
	colorAssist  = "\033[1;32m" // bold green
	colorThink   = "\033[2;35m" // dim magenta for thinking
	colorTool    = "\033[1;36m" // bold cyan for tool calls and results
	colorDim     = "\033[2m"
	colorHit     = "\033[43m"   // yellow background
	colorBoldRed = "\033[1;31m" // bold red for keyword highlights and failed tools
)

// maxToolInput caps how much of a tool call's JSON input is shown.
const maxToolInput = 400

type Options struct {
	HitBlockID int64  // -1 = no hit, render from the start
	Context    int    // blocks before/after hit to show
	Width      int    // wrap width (0 = no wrap)
	Query      string // search query for keyword highlighting
}

// fts5Operators are FTS5 operators that should not be highlighted as keywords.
var fts5Operators = map[string]bool{
	"AND": true, "OR": true, "NOT": true, "NEAR": true,
	"and": true, "or": true, "not": true, "near": true,
}

// highlightKeywords wraps case-insensitive matches of query terms in bold red ANSI codes.
func highlightKeywords(text, query string) string {
	if query == "" {
		return text
	}
	terms := strings.Fields(strings.NewReplacer(`"`, " ", "(", " ", ")", " ", "*", " ").Replace(query))
	var filtered []string
	for _, t := range terms {
		if !fts5Operators[t] && len(strings.ToLower(t)) == len(t) {
			filtered = append(filtered, t)
		}
	}
	if len(filtered) == 0 {
		return text
	}
	for _, term := range filtered {
		lower := strings.ToLower(term)
		i := 0
		for i < len(text) {
			idx := strings.Index(strings.ToLower(text[i:]), lower)
			if idx < 0 {
				break
			}
			pos := i + idx
			orig := text[pos : pos+len(term)]
			replacement := colorBoldRed + orig + colorReset
			text = text[:pos] + replacement + text[pos+len(term):]
			i = pos + len(replacement)
		}
	}
	return text
}

// indentLines prepends each line of text with the given prefix.
func indentLines(text, prefix string) string {
	lines := strings.Split(text, "\n")
	for i, l := range lines {
		lines[i] = prefix + l
	}
	return strings.Join(lines, "\n")
}

// wrapLine breaks a single line into multiple lines that fit within maxWidth
// visible columns, correctly skipping ANSI escape sequences when measuring width.
func wrapLine(line string, maxWidth int) []string {
	if maxWidth <= 0 {
		return []string{line}
	}

	var result []string
	var cur strings.Builder
	visW := 0

	i := 0
	for i < len(line) {
		// check for ANSI escape sequence: ESC[ ... m
		if i+1 < len(line) && line[i] == '\033' && line[i+1] == '[' {
			j := i + 2
			for j < len(line) && line[j] != 'm' {
				j++
			}
			if j < len(line) {
				j++ // include 'm'
			}
			cur.WriteString(line[i:j])
			i = j
			continue
		}

		r, size := utf8.DecodeRuneInString(line[i:])
		rw := runewidth.RuneWidth(r)

		if visW+rw > maxWidth {
			result = append(result, cur.String())
			cur.Reset()
			visW = 0
		}

		cur.WriteRune(r)
		visW += rw
		i += size
	}

	if cur.Len() > 0 {
		result = append(result, cur.String())
	}

	if len(result) == 0 {
		return []string{""}
	}
	return result
}

// label returns the header label and color for a block.
func label(b index.BlockRow) (string, string) {
	switch b.Kind {
	case "thinking":
		return "THINK", colorThink
	case "tool_use":
		return "TOOL " + b.ToolName, colorTool
	case "tool_result":
		if b.IsError {
			return "RESULT (error)", colorBoldRed
		}
		return "RESULT", colorTool
	}
	switch b.Role {
	case "user":
		return "USER", colorUser
	case "assistant":
		return "ASST", colorAssist
	case "":
		return strings.ToUpper(b.MsgType), colorDim
	default:
		return strings.ToUpper(b.Role), colorDim
	}
}

// blockText is what gets printed under a block's header.
func blockText(b index.BlockRow) string {
	if b.Kind != "tool_use" {
		return b.Text
	}
	input := b.ToolInput
	if utf8.RuneCountInString(input) > maxToolInput {
		input = string([]rune(input)[:maxToolInput]) + "..."
	}
	return fmt.Sprintf("%s %s", b.ToolUseID, input)
}

// RenderConversation renders a session's blocks around a hit and returns the
// content, the 0-based line number of the hit block header (-1 if no hit),
// and any error.
func RenderConversation(db *index.DB, sessionUUID string, opts Options) (string, int, error) {
	if opts.Context == 0 {
		opts.Context = 10
	}
	if opts.Context < 0 {
		opts.Context = 1000000 // no limit
	}

	session, err := db.GetSessionByUUID(sessionUUID)
	if err != nil {
		return "", -1, fmt.Errorf("get session: %w", err)
	}

	blocks, hitIdx, startPos, totalCount, err := db.GetBlocksWindow(session.ID, opts.HitBlockID, opts.Context)
	if err != nil {
		return "", -1, fmt.Errorf("get blocks: %w", err)
	}

	if totalCount == 0 {
		return "(empty session)", -1, nil
	}

	skipAfter := totalCount - startPos - len(blocks)

	var b strings.Builder
	hitLine := -1
	lineCount := 0
	separator := colorDim + "--------------------------------------------------" + colorReset
	wrapW := opts.Width

	// helper to track line count; wraps long lines if Width is set
	writeLine := func(s string) {
		wrapped := wrapLine(s, wrapW)
		for _, wl := range wrapped {
			b.WriteString(wl)
			b.WriteString("\n")
			lineCount++
		}
	}

	// header
	writeLine(fmt.Sprintf("%s--- %s [%s] %s ---%s", colorDim, sessionUUID, session.ProjectPath, session.Summary, colorReset))

	if startPos > 0 {
		writeLine(fmt.Sprintf("%s... (%d blocks before) ...%s", colorDim, startPos, colorReset))
	}

	var prevMsg int64
	for i, blk := range blocks {
		isHit := (i == hitIdx)

		// separator between messages; blocks of one message stay together
		if i > 0 && blk.MessageID != prevMsg {
			writeLine(separator)
		}
		prevMsg = blk.MessageID

		if isHit {
			hitLine = lineCount
		}

		roleLabel, roleColor := label(blk)
		ts := blk.Timestamp.Local().Format("2006-01-02 15:04:05")
		if blk.Timestamp.IsZero() {
			ts = "-"
		}

		if isHit {
			writeLine(fmt.Sprintf("%s>> %s > %s <<%s", colorHit, roleLabel, ts, colorReset))
		} else {
			writeLine(fmt.Sprintf("%s%s >%s %s%s%s", roleColor, roleLabel, colorReset, colorDim, ts, colorReset))
		}

		text := blockText(blk)
		if blk.Kind == "thinking" {
			text = colorDim + text + colorReset
		}
		text = highlightKeywords(text, opts.Query)
		text = indentLines(text, "  ")

		textLines := strings.Split(text, "\n")
		for _, tl := range textLines {
			writeLine(tl)
		}
		writeLine("") // blank line after block
	}

	if skipAfter > 0 {
		writeLine(fmt.Sprintf("%s... (%d blocks after) ...%s", colorDim, skipAfter, colorReset))
	}

	return b.String(), hitLine, nil
}
