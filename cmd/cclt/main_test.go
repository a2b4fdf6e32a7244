package main

import (
	"testing"
	"time"
)

func TestParseDate(t *testing.T) {
	got, err := parseDate("2025-03-09")
	if err != nil {
		t.Fatal(err)
	}
	if want := time.Date(2025, 3, 9, 0, 0, 0, 0, time.Local); !got.Equal(want) {
		t.Errorf("parseDate = %v, want %v", got, want)
	}
	got, err = parseDate("2025-03-09T10:00:00Z")
	if err != nil || !got.Equal(time.Date(2025, 3, 9, 10, 0, 0, 0, time.UTC)) {
		t.Errorf("parseDate RFC 3339 = %v, %v", got, err)
	}
	if got, err := parseDate(""); err != nil || !got.IsZero() {
		t.Errorf("parseDate empty = %v, %v", got, err)
	}
	if _, err := parseDate("last week"); err == nil {
		t.Error("expected error")
	}
}

func TestColorizeSnippet(t *testing.T) {
	if got := colorizeSnippet("a >>>b<<< c"); got != "a "+sColorBoldRed+"b"+sColorReset+" c" {
		t.Errorf("colorizeSnippet = %q", got)
	}
}
