package parse

import (
	"encoding/json"
	"time"
)

// Category is how the importer handles a decoded entry.
type Category int

const (
	CategoryOrdinary Category = iota
	CategorySummary
	CategorySnapshot
	CategoryUnrecognized
)

func (c Category) String() string {
	switch c {
	case CategoryOrdinary:
		return "ordinary"
	case CategorySummary:
		return "summary"
	case CategorySnapshot:
		return "snapshot"
	default:
		return "unrecognized"
	}
}

// Entry is one JSONL record of a Claude Code session log.
type Entry struct {
	Type        string          `json:"type"`
	UUID        string          `json:"uuid"`
	ParentUUID  string          `json:"parentUuid"`
	SessionID   string          `json:"sessionId"`
	Timestamp   string          `json:"timestamp"`
	Cwd         string          `json:"cwd"`
	GitBranch   string          `json:"gitBranch"`
	Version     string          `json:"version"`
	IsMeta      bool            `json:"isMeta"`
	IsSidechain bool            `json:"isSidechain"`
	Summary     string          `json:"summary"`  // for type="summary" records
	LeafUUID    string          `json:"leafUuid"` // for type="summary" records
	Content     json.RawMessage `json:"content"`  // system records carry content at top level
	Message     *Envelope       `json:"message"`

	// Time is Timestamp parsed; zero when absent or unparseable.
	Time time.Time `json:"-"`
}

// Envelope is the API message wrapped by user/assistant records.
type Envelope struct {
	ID      string          `json:"id"`
	Role    string          `json:"role"`
	Model   string          `json:"model"`
	Content json.RawMessage `json:"content"`
	Usage   *Usage          `json:"usage"`
}

type Usage struct {
	InputTokens              *int64 `json:"input_tokens"`
	OutputTokens             *int64 `json:"output_tokens"`
	CacheCreationInputTokens *int64 `json:"cache_creation_input_tokens"`
	CacheReadInputTokens     *int64 `json:"cache_read_input_tokens"`
}

// Role returns message.role, or "" when the record has no envelope.
func (e *Entry) Role() string {
	if e.Message == nil {
		return ""
	}
	return e.Message.Role
}

// Model returns message.model, or "".
func (e *Entry) Model() string {
	if e.Message == nil {
		return ""
	}
	return e.Message.Model
}

// Payload returns the raw content to decompose: message.content when the
// record has an envelope, otherwise the top-level content field.
func (e *Entry) Payload() json.RawMessage {
	if e.Message != nil && len(e.Message.Content) > 0 {
		return e.Message.Content
	}
	return e.Content
}

// Tokens returns the usage sub-object, never nil.
func (e *Entry) Tokens() Usage {
	if e.Message == nil || e.Message.Usage == nil {
		return Usage{}
	}
	return *e.Message.Usage
}

// BlockKind tags a ContentBlock. Kinds outside the constants below are kept
// verbatim from the log.
type BlockKind = string

const (
	KindText       BlockKind = "text"
	KindThinking   BlockKind = "thinking"
	KindToolUse    BlockKind = "tool_use"
	KindToolResult BlockKind = "tool_result"
)

// Block is one decomposed unit of message content. Which fields are set
// depends on Kind.
type Block struct {
	Index     int
	Kind      BlockKind
	Text      string
	HasText   bool
	ToolName  string
	ToolInput json.RawMessage
	ToolUseID string
	IsError   bool
}
