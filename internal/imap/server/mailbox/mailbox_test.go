package mailbox

import "testing"

func TestWildcardMatch(t *testing.T) {
	cases := []struct {
		pattern, name string
		want          bool
	}{
		{"INBOX", "INBOX", true},
		{"INBOX", "Archive", false},
		{"*", "INBOX", true},
		{"*", "Archive/2024", true},
		{"%", "INBOX", true},
		{"%", "Archive/2024", false},
		{"Archive/%", "Archive/2024", true},
		{"Archive/%", "Archive/2024/Q1", false},
		{"Archive/*", "Archive/2024/Q1", true},
		{"", "", true},
		{"", "INBOX", false},
	}
	for _, c := range cases {
		if got := wildcardMatch(c.pattern, c.name); got != c.want {
			t.Errorf("wildcardMatch(%q, %q) = %v, want %v", c.pattern, c.name, got, c.want)
		}
	}
}
