package response

import (
	"strings"
	"testing"
)

func TestQuoteOrLiteral_EmptyIsNIL(t *testing.T) {
	if got := QuoteOrLiteral(""); got != "NIL" {
		t.Errorf("got %q", got)
	}
}

func TestQuoteOrLiteral_ShortStringIsQuoted(t *testing.T) {
	if got := QuoteOrLiteral("hello"); got != `"hello"` {
		t.Errorf("got %q", got)
	}
}

func TestQuoteOrLiteral_ContainingQuoteBecomesLiteral(t *testing.T) {
	got := QuoteOrLiteral(`has "quotes"`)
	if !strings.HasPrefix(got, "{") {
		t.Errorf("expected literal form, got %q", got)
	}
}

func TestQuoteOrLiteral_OverLimitBecomesLiteral(t *testing.T) {
	long := strings.Repeat("a", maxQuotedBytes+1)
	got := QuoteOrLiteral(long)
	if !strings.HasPrefix(got, "{"+"101}") {
		t.Errorf("got %q", got[:10])
	}
}

func TestQuote_EscapesBackslashAndQuote(t *testing.T) {
	got := Quote(`a\b"c`)
	want := `"a\\b\"c"`
	if got != want {
		t.Errorf("got %q want %q", got, want)
	}
}

func TestLiteral_LengthIsByteLength(t *testing.T) {
	got := Literal([]byte("héllo"))
	if !strings.HasPrefix(got, "{6}\r\n") {
		t.Errorf("expected byte length 6 for 'héllo', got %q", got[:6])
	}
}

func TestTagged_WithCode(t *testing.T) {
	got := Tagged("a1", "OK", "READ-WRITE", "done")
	if got != "a1 OK [READ-WRITE] done" {
		t.Errorf("got %q", got)
	}
}

func TestTagged_WithoutCode(t *testing.T) {
	got := Tagged("a1", "BAD", "", "Unknown command")
	if got != "a1 BAD Unknown command" {
		t.Errorf("got %q", got)
	}
}

func TestUntagged_PrefixesStar(t *testing.T) {
	if got := Untagged("5 EXISTS"); got != "* 5 EXISTS" {
		t.Errorf("got %q", got)
	}
}
