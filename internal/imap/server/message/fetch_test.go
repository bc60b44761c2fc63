package message

import (
	"testing"

	"github.com/Transmit-Xmit/xmit-mail-gateway/internal/imap/parser"
)

func TestIsStructureOnly(t *testing.T) {
	cases := []struct {
		name string
		item parser.FetchItem
		want bool
	}{
		{"bare BODY", parser.FetchItem{Name: "BODY"}, true},
		{"BODY[TEXT]", parser.FetchItem{Name: "BODY", Section: "TEXT"}, false},
		{"BODY with partial", parser.FetchItem{Name: "BODY", Partial: &parser.Partial{Start: 0, Length: 10}}, false},
		{"BODYSTRUCTURE", parser.FetchItem{Name: "BODYSTRUCTURE"}, false},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if got := isStructureOnly(c.item); got != c.want {
				t.Errorf("isStructureOnly(%+v) = %v, want %v", c.item, got, c.want)
			}
		})
	}
}

func TestNeedsBody(t *testing.T) {
	if needsBody([]parser.FetchItem{{Name: "FLAGS"}, {Name: "UID"}}) {
		t.Error("FLAGS/UID alone should not require a body fetch")
	}
	if !needsBody([]parser.FetchItem{{Name: "BODY", Section: "TEXT"}}) {
		t.Error("BODY[TEXT] should require a body fetch")
	}
	if needsBody([]parser.FetchItem{{Name: "BODY"}}) {
		t.Error("bare BODY (structure form) should not require a body fetch")
	}
	if !needsBody([]parser.FetchItem{{Name: "RFC822.TEXT"}}) {
		t.Error("RFC822.TEXT should require a body fetch")
	}
}

func TestMarksSeen(t *testing.T) {
	if !marksSeen([]parser.FetchItem{{Name: "RFC822"}}) {
		t.Error("RFC822 should mark \\Seen")
	}
	if marksSeen([]parser.FetchItem{{Name: "RFC822.HEADER"}}) {
		t.Error("RFC822.HEADER should never mark \\Seen")
	}
	if marksSeen([]parser.FetchItem{{Name: "BODY", Section: "TEXT", Peek: true}}) {
		t.Error("BODY.PEEK should never mark \\Seen")
	}
	if !marksSeen([]parser.FetchItem{{Name: "BODY", Section: "TEXT"}}) {
		t.Error("un-peeked BODY[section] should mark \\Seen")
	}
	if marksSeen([]parser.FetchItem{{Name: "BODY"}}) {
		t.Error("bare BODY (structure form) should never mark \\Seen")
	}
}

func TestFetchFields(t *testing.T) {
	items := []parser.FetchItem{{Name: "FLAGS"}, {Name: "BODY"}, {Name: "FLAGS"}}
	fields := fetchFields(items)

	seen := map[string]bool{}
	for _, f := range fields {
		if seen[f] {
			t.Errorf("fetchFields returned duplicate field %q", f)
		}
		seen[f] = true
	}
	if !seen["UID"] {
		t.Error("fetchFields must always include UID")
	}
	if !seen["FLAGS"] {
		t.Error("fetchFields missing FLAGS")
	}
	if !seen["BODYSTRUCTURE"] {
		t.Error("a bare BODY item should request BODYSTRUCTURE")
	}
}
