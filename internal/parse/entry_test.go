package parse

import (
	"errors"
	"testing"
	"time"
)

func TestDecodeEntry(t *testing.T) {
	line := `{"type":"assistant","uuid":"u1","sessionId":"s1","timestamp":"2025-06-01T10:00:00.123Z","cwd":"/tmp/p","version":"1.0.30","message":{"role":"assistant","model":"claude-sonnet-4","content":"hi","usage":{"input_tokens":12,"output_tokens":3}}}`
	e, err := DecodeEntry([]byte(line))
	if err != nil {
		t.Fatalf("DecodeEntry: %v", err)
	}
	if e.UUID != "u1" || e.SessionID != "s1" || e.Cwd != "/tmp/p" || e.Version != "1.0.30" {
		t.Fatalf("unexpected envelope fields: %+v", e)
	}
	want := time.Date(2025, 6, 1, 10, 0, 0, 123000000, time.UTC)
	if !e.Time.Equal(want) {
		t.Fatalf("Time = %v, want %v", e.Time, want)
	}
	if e.Role() != "assistant" || e.Model() != "claude-sonnet-4" {
		t.Fatalf("Role/Model = %q/%q", e.Role(), e.Model())
	}
	u := e.Tokens()
	if u.InputTokens == nil || *u.InputTokens != 12 || u.OutputTokens == nil || *u.OutputTokens != 3 {
		t.Fatalf("unexpected usage: %+v", u)
	}
	if u.CacheReadInputTokens != nil {
		t.Fatalf("absent cache tokens should stay nil")
	}
}

func TestDecodeEntryRejectsMalformed(t *testing.T) {
	tests := []struct {
		name        string
		line        string
		missingType bool
	}{
		{name: "not json", line: `{"type":"user"`},
		{name: "array", line: `[1,2]`},
		{name: "no type", line: `{"uuid":"x"}`, missingType: true},
		{name: "empty type", line: `{"type":""}`, missingType: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodeEntry([]byte(tt.line))
			if err == nil {
				t.Fatalf("expected error")
			}
			if got := errors.Is(err, ErrMissingType); got != tt.missingType {
				t.Fatalf("errors.Is(ErrMissingType) = %v, want %v (err=%v)", got, tt.missingType, err)
			}
		})
	}
}

func TestClassify(t *testing.T) {
	tests := []struct {
		typ  string
		want Category
	}{
		{"user", CategoryOrdinary},
		{"assistant", CategoryOrdinary},
		{"system", CategoryOrdinary},
		{"summary", CategorySummary},
		{"file-history-snapshot", CategorySnapshot},
		{"queue-operation", CategoryUnrecognized},
	}
	for _, tt := range tests {
		if got := Classify(&Entry{Type: tt.typ}); got != tt.want {
			t.Errorf("Classify(%q) = %v, want %v", tt.typ, got, tt.want)
		}
	}
}

func TestPayloadFallsBackToTopLevelContent(t *testing.T) {
	e, err := DecodeEntry([]byte(`{"type":"system","content":"compacted","uuid":"x"}`))
	if err != nil {
		t.Fatalf("DecodeEntry: %v", err)
	}
	if string(e.Payload()) != `"compacted"` {
		t.Fatalf("Payload = %s", e.Payload())
	}
	if e.Role() != "" {
		t.Fatalf("system record should have no role")
	}
}

func TestParseTimestamp(t *testing.T) {
	if !ParseTimestamp("").IsZero() {
		t.Error("empty timestamp should be zero")
	}
	if !ParseTimestamp("yesterday").IsZero() {
		t.Error("garbage timestamp should be zero")
	}
	got := ParseTimestamp("2025-01-02T03:04:05")
	if got.Year() != 2025 || got.Hour() != 3 {
		t.Errorf("naive timestamp parsed as %v", got)
	}
	got = ParseTimestamp("2025-06-01T10:00:00.123")
	want := time.Date(2025, 6, 1, 10, 0, 0, 123000000, time.UTC)
	if !got.Equal(want) {
		t.Errorf("naive fractional timestamp parsed as %v, want %v", got, want)
	}
}
