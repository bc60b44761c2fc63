package response

import (
	"strings"
	"testing"
)

func TestList_Basic(t *testing.T) {
	got := List([]string{`\HasNoChildren`}, "/", "INBOX")
	want := `LIST (\HasNoChildren) "/" "INBOX"`
	if got != want {
		t.Errorf("got %q want %q", got, want)
	}
}

func TestList_LongNameBecomesLiteral(t *testing.T) {
	name := strings.Repeat("a", maxListNameBytes+1)
	got := List(nil, "/", name)
	if !strings.Contains(got, "{"+"201}") {
		t.Errorf("expected literal name marker, got prefix %q", got[:40])
	}
}

func TestStatus_OnlyRequestedItemsInOrder(t *testing.T) {
	values := map[string]string{"MESSAGES": "5", "UIDNEXT": "42", "RECENT": "1"}
	got := Status("INBOX", []string{"MESSAGES", "UIDNEXT"}, values)
	want := `STATUS "INBOX" (MESSAGES 5 UIDNEXT 42)`
	if got != want {
		t.Errorf("got %q want %q", got, want)
	}
}

func TestStatus_MissingItemSkipped(t *testing.T) {
	got := Status("INBOX", []string{"UNSEEN"}, map[string]string{})
	want := `STATUS "INBOX" ()`
	if got != want {
		t.Errorf("got %q want %q", got, want)
	}
}
