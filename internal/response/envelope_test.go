package response

import (
	"strings"
	"testing"
	"time"

	"github.com/Transmit-Xmit/xmit-mail-gateway/internal/upstream"
)

func TestEnvelope_NilEnvelopeIsNIL(t *testing.T) {
	if got := Envelope(nil); got != "NIL" {
		t.Errorf("got %q", got)
	}
}

func TestEnvelope_SenderDefaultsToFrom(t *testing.T) {
	from := []upstream.Address{{Name: "Alice", Mailbox: "alice", Host: "example.com"}}
	e := &upstream.Envelope{Subject: "hi", From: from, Date: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
	got := Envelope(e)
	// sender (4th field, after date+subject+from) should equal the from list.
	fromRendered := AddressList(from)
	if strings.Count(got, fromRendered) < 2 {
		t.Errorf("expected sender to default to from, got %q", got)
	}
}

func TestAddressList_EmptyIsNIL(t *testing.T) {
	if got := AddressList(nil); got != "NIL" {
		t.Errorf("got %q", got)
	}
}

func TestAddressList_RendersNameAdlMailboxHost(t *testing.T) {
	got := AddressList([]upstream.Address{{Name: "Bob", Mailbox: "bob", Host: "example.com"}})
	want := `(("Bob" NIL "bob" "example.com"))`
	if got != want {
		t.Errorf("got %q want %q", got, want)
	}
}
