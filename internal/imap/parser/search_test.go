package parser

import "testing"

func TestParseSearchCriteria_SingleArgKeyword(t *testing.T) {
	out := ParseSearchCriteria([]string{"FROM", "alice@example.com"})
	if len(out) != 1 || out[0].Keyword != "FROM" || out[0].Value != "alice@example.com" {
		t.Errorf("got %+v", out)
	}
}

func TestParseSearchCriteria_NumericKeyword(t *testing.T) {
	out := ParseSearchCriteria([]string{"LARGER", "1024"})
	if len(out) != 1 || out[0].Keyword != "LARGER" || out[0].Number != 1024 {
		t.Errorf("got %+v", out)
	}
}

func TestParseSearchCriteria_NotNegatesNextCriterion(t *testing.T) {
	out := ParseSearchCriteria([]string{"NOT", "SEEN"})
	if len(out) != 1 || out[0].Keyword != "SEEN" || !out[0].Negated {
		t.Errorf("got %+v", out)
	}
}

func TestParseSearchCriteria_HeaderTakesTwoArgs(t *testing.T) {
	out := ParseSearchCriteria([]string{"HEADER", "X-Spam", "yes"})
	if len(out) != 1 || out[0].Value != "X-Spam yes" {
		t.Errorf("got %+v", out)
	}
}

func TestParseSearchCriteria_MultipleCriteriaAreAnded(t *testing.T) {
	out := ParseSearchCriteria([]string{"SEEN", "FROM", "bob@example.com"})
	if len(out) != 2 || out[0].Keyword != "SEEN" || out[1].Keyword != "FROM" {
		t.Errorf("got %+v", out)
	}
}
