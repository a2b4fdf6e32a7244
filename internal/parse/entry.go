package parse

import (
	"encoding/json"
	"time"
)

const (
	TypeUser         = "user"
	TypeAssistant    = "assistant"
	TypeSystem       = "system"
	TypeSummary      = "summary"
	TypeFileSnapshot = "file-history-snapshot"
)

// DecodeEntry decodes one JSONL line. Lines that are not JSON objects or that
// lack a type tag are rejected.
func DecodeEntry(line []byte) (*Entry, error) {
	var e Entry
	if err := json.Unmarshal(line, &e); err != nil {
		return nil, err
	}
	if e.Type == "" {
		return nil, ErrMissingType
	}
	e.Time = ParseTimestamp(e.Timestamp)
	return &e, nil
}

// Classify assigns an entry to its handling category by its type tag.
func Classify(e *Entry) Category {
	switch e.Type {
	case TypeUser, TypeAssistant, TypeSystem:
		return CategoryOrdinary
	case TypeSummary:
		return CategorySummary
	case TypeFileSnapshot:
		return CategorySnapshot
	default:
		return CategoryUnrecognized
	}
}

func ParseTimestamp(s string) time.Time {
	if s == "" {
		return time.Time{}
	}
	// try RFC3339
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t
	}
	// try RFC3339Nano
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return t
	}
	// try ISO8601 without timezone, with and without fractional seconds
	if t, err := time.Parse("2006-01-02T15:04:05", s); err == nil {
		return t
	}
	if t, err := time.Parse("2006-01-02T15:04:05.999999999", s); err == nil {
		return t
	}
	return time.Time{}
}
