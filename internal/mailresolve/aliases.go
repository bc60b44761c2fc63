// Package mailresolve normalises client-supplied folder names to
// canonical names and resolves a mailbox argument to (sender, folder)
// per §4.7.
package mailresolve

import "strings"

// defaultAliases maps common Apple/Outlook/Gmail folder names to the
// canonical names the upstream uses.
var defaultAliases = map[string]string{
	"sent messages":    "Sent",
	"sent items":       "Sent",
	"deleted messages": "Trash",
	"deleted items":    "Trash",
	"junk e-mail":      "Junk",
	"[gmail]/sent mail": "Sent",
	"[gmail]/trash":     "Trash",
	"[gmail]/spam":      "Junk",
	"[gmail]/drafts":    "Drafts",
	"[gmail]/important": "Important",
	"[gmail]/all mail":  "Archive",
	"drafts":  "Drafts",
	"trash":   "Trash",
	"junk":    "Junk",
	"archive": "Archive",
	"inbox":   "INBOX",
}

// Aliases is the normalisation table in effect for this process: the
// built-in map, optionally overridden by an on-disk YAML file.
type Aliases struct {
	table map[string]string
}

// NewAliases returns the table with defaults, overridden by overrides
// (the parsed contents of CacheDir/folder-aliases.yaml, loaded by
// conf.Load per §6; nil when no override file was found).
func NewAliases(overrides map[string]string) *Aliases {
	table := make(map[string]string, len(defaultAliases)+len(overrides))
	for k, v := range defaultAliases {
		table[k] = v
	}
	for k, v := range overrides {
		table[strings.ToLower(k)] = v
	}
	return &Aliases{table: table}
}

// Normalize maps name to its canonical folder name via the alias
// table, case-insensitively; any casing of INBOX becomes "INBOX", and
// other names with no alias pass through unchanged.
func (a *Aliases) Normalize(name string) string {
	lower := strings.ToLower(strings.TrimSpace(name))
	if canonical, ok := a.table[lower]; ok {
		return canonical
	}
	if lower == "inbox" {
		return "INBOX"
	}
	return name
}
