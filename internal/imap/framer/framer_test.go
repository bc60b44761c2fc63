package framer

import (
	"bytes"
	"io"
	"testing"
	"time"
)

// fakeConn adapts a bytes.Reader to the Conn interface; SetReadDeadline
// is a no-op since the in-memory reader never blocks.
type fakeConn struct {
	r *bytes.Reader
}

func (f *fakeConn) Read(p []byte) (int, error)        { return f.r.Read(p) }
func (f *fakeConn) SetReadDeadline(time.Time) error { return nil }

func newTestFramer(data string) *Framer {
	return New(&fakeConn{r: bytes.NewReader([]byte(data))})
}

func TestNext_PlainLine(t *testing.T) {
	f := newTestFramer("a1 NOOP\r\n")
	ev, err := f.Next(nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ev.Kind != EventLine || string(ev.Line) != "a1 NOOP" {
		t.Errorf("got kind=%v line=%q", ev.Kind, ev.Line)
	}
}

func TestNext_LineWithoutCR(t *testing.T) {
	f := newTestFramer("a1 NOOP\n")
	ev, err := f.Next(nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(ev.Line) != "a1 NOOP" {
		t.Errorf("expected trimmed line, got %q", ev.Line)
	}
}

func TestNext_SyncLiteral(t *testing.T) {
	f := newTestFramer("a1 APPEND \"x\" {5}\r\nhello\r\n")
	called := false
	ev, err := f.Next(func() error { called = true; return nil })
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !called {
		t.Errorf("expected continuation to be invoked for a sync literal")
	}
	if ev.Kind != EventLiteral {
		t.Fatalf("expected EventLiteral, got %v", ev.Kind)
	}
	if string(ev.Literal) != "hello" {
		t.Errorf("expected literal %q, got %q", "hello", ev.Literal)
	}
	if string(ev.Line) != `a1 APPEND "x" ` {
		t.Errorf("unexpected prefix %q", ev.Line)
	}
}

func TestNext_NonSyncLiteralSkipsContinuation(t *testing.T) {
	f := newTestFramer("a1 APPEND \"x\" {5+}\r\nhello\r\n")
	called := false
	ev, err := f.Next(func() error { called = true; return nil })
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if called {
		t.Errorf("non-synchronising literal must not trigger a continuation")
	}
	if string(ev.Literal) != "hello" {
		t.Errorf("expected literal %q, got %q", "hello", ev.Literal)
	}
}

func TestNext_LiteralPreservesRawBytes(t *testing.T) {
	payload := []byte{0xC3, 0x28, 0x00, 0x01, '\r', '\n'} // invalid UTF-8 plus embedded CRLF
	data := append([]byte("a1 APPEND \"x\" {6+}\r\n"), payload...)
	f := newTestFramer(string(data))
	ev, err := f.Next(nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !bytes.Equal(ev.Literal, payload) {
		t.Errorf("literal bytes mutated: got %v want %v", ev.Literal, payload)
	}
}

func TestNext_LineTooLong(t *testing.T) {
	f := newTestFramer("a1 " + string(make([]byte, DefaultMaxLineSize+10)) + "\r\n")
	_, err := f.Next(nil)
	if err != ErrLineTooLong {
		t.Errorf("expected ErrLineTooLong, got %v", err)
	}
}

func TestNext_LiteralTooLarge(t *testing.T) {
	f := newTestFramer("a1 APPEND \"x\" {99999999}\r\n")
	_, err := f.Next(nil)
	if err != ErrLiteralTooLarge {
		t.Errorf("expected ErrLiteralTooLarge, got %v", err)
	}
}

func TestNext_EOFMidLineReturnsLine(t *testing.T) {
	f := newTestFramer("a1 NOOP")
	ev, err := f.Next(nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(ev.Line) != "a1 NOOP" {
		t.Errorf("expected final unterminated line to be returned, got %q", ev.Line)
	}
}

func TestNext_SequentialLines(t *testing.T) {
	f := newTestFramer("a1 NOOP\r\na2 CAPABILITY\r\n")
	first, err := f.Next(nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := f.Next(nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(first.Line) != "a1 NOOP" || string(second.Line) != "a2 CAPABILITY" {
		t.Errorf("got %q then %q", first.Line, second.Line)
	}
}

func TestNext_EOFAfterAllLines(t *testing.T) {
	f := newTestFramer("a1 NOOP\r\n")
	if _, err := f.Next(nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := f.Next(nil); err != io.EOF {
		t.Errorf("expected io.EOF at end of stream, got %v", err)
	}
}
