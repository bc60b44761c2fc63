package response

import (
	"testing"
	"time"

	"github.com/Transmit-Xmit/xmit-mail-gateway/internal/imap/parser"
	"github.com/Transmit-Xmit/xmit-mail-gateway/internal/upstream"
)

func TestInternalDate_Format(t *testing.T) {
	got := InternalDate(time.Date(2024, 1, 5, 9, 3, 2, 0, time.UTC))
	want := " 5-Jan-2024 09:03:02 +0000"
	if got != want {
		t.Errorf("got %q want %q", got, want)
	}
}

func TestSection_EmptyReturnsFullMessage(t *testing.T) {
	body := &upstream.Body{Raw: []byte("Subject: x\r\n\r\nhello")}
	got := Section(body, "")
	if string(got) != "Subject: x\r\n\r\nhello" {
		t.Errorf("got %q", got)
	}
}

func TestSection_HeaderReturnsHeaderBlockPlusBlankLine(t *testing.T) {
	body := &upstream.Body{Raw: []byte("Subject: x\r\nFrom: a\r\n\r\nhello")}
	got := Section(body, "HEADER")
	want := "Subject: x\r\nFrom: a\r\n\r\n"
	if string(got) != want {
		t.Errorf("got %q want %q", got, want)
	}
}

func TestSection_TextReturnsEverythingAfterBlankLine(t *testing.T) {
	body := &upstream.Body{Raw: []byte("Subject: x\r\n\r\nhello world")}
	got := Section(body, "TEXT")
	if string(got) != "hello world" {
		t.Errorf("got %q", got)
	}
}

func TestSection_HeaderFieldsFiltersCaseInsensitively(t *testing.T) {
	body := &upstream.Body{Raw: []byte("Subject: x\r\nfrom: a\r\nTo: b\r\n\r\nhi")}
	got := Section(body, "HEADER.FIELDS (FROM)")
	want := "from: a\r\n\r\n"
	if string(got) != want {
		t.Errorf("got %q want %q", got, want)
	}
}

func TestBodySection_NoPartialOmitsOriginTag(t *testing.T) {
	got := BodySection("TEXT", nil, []byte("hi"))
	want := "BODY[TEXT] {2}\r\nhi"
	if got != want {
		t.Errorf("got %q want %q", got, want)
	}
}

func TestBodySection_PartialAddsOriginTag(t *testing.T) {
	got := BodySection("", &parser.Partial{Start: 0, Length: 2}, []byte("hello"))
	want := "BODY[]<0> {2}\r\nhe"
	if got != want {
		t.Errorf("got %q want %q", got, want)
	}
}
