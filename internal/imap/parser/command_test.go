package parser

import "testing"

func TestParseCommand_Simple(t *testing.T) {
	cmd, ok := ParseCommand("a1 NOOP")
	if !ok {
		t.Fatalf("expected ok")
	}
	if cmd.Tag != "a1" || cmd.Name != "NOOP" || len(cmd.Args) != 0 {
		t.Errorf("got %+v", cmd)
	}
}

func TestParseCommand_UIDPrefixShiftsName(t *testing.T) {
	cmd, ok := ParseCommand("a1 UID FETCH 1:3 (FLAGS)")
	if !ok {
		t.Fatalf("expected ok")
	}
	if cmd.Name != "FETCH" || !cmd.UseUID {
		t.Errorf("got %+v", cmd)
	}
	if len(cmd.Args) != 2 || cmd.Args[0] != "1:3" || cmd.Args[1] != "(FLAGS)" {
		t.Errorf("got args %+v", cmd.Args)
	}
}

func TestParseCommand_TooFewTokens(t *testing.T) {
	if _, ok := ParseCommand("a1"); ok {
		t.Errorf("expected not-ok for a single token")
	}
}

func TestTokenize_QuotedStringWithSpace(t *testing.T) {
	toks := Tokenize(`a1 LOGIN "user name" "pass"`)
	want := []string{"a1", "LOGIN", `"user name"`, `"pass"`}
	if len(toks) != len(want) {
		t.Fatalf("got %v", toks)
	}
	for i := range want {
		if toks[i] != want[i] {
			t.Errorf("token %d: got %q want %q", i, toks[i], want[i])
		}
	}
}

func TestTokenize_BracketedSectionKeptWhole(t *testing.T) {
	toks := Tokenize(`a1 FETCH 1 BODY[HEADER.FIELDS (From To)]`)
	want := "BODY[HEADER.FIELDS (From To)]"
	if toks[len(toks)-1] != want {
		t.Errorf("got %q want %q", toks[len(toks)-1], want)
	}
}

func TestTokenize_ParenListKeptWhole(t *testing.T) {
	toks := Tokenize(`a1 STORE 1 +FLAGS (\Seen \Deleted)`)
	want := `(\Seen \Deleted)`
	if toks[len(toks)-1] != want {
		t.Errorf("got %q want %q", toks[len(toks)-1], want)
	}
}

func TestUnquote_StripsQuotes(t *testing.T) {
	if got := Unquote(`"hello"`); got != "hello" {
		t.Errorf("got %q", got)
	}
}

func TestUnquote_LeavesAtomAlone(t *testing.T) {
	if got := Unquote("NIL"); got != "NIL" {
		t.Errorf("got %q", got)
	}
}
