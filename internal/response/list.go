package response

import (
	"fmt"
	"strings"
)

const maxListNameBytes = 200

// List renders `LIST (flags) "<delim>" <name>` per §4.5; name becomes
// a literal if it contains CR/LF or exceeds maxListNameBytes bytes.
func List(flags []string, delim, name string) string {
	flagList := "()"
	if len(flags) > 0 {
		flagList = "(" + strings.Join(flags, " ") + ")"
	}
	return fmt.Sprintf("LIST %s %q %s", flagList, delim, listName(name))
}

func listName(name string) string {
	if len(name) > maxListNameBytes || strings.ContainsAny(name, "\r\n") {
		return Literal([]byte(name))
	}
	return Quote(name)
}

// Status renders `STATUS "<mbx>" (KEY VALUE …)` with only the items
// the client requested, in the order given.
func Status(mailbox string, items []string, values map[string]string) string {
	pairs := make([]string, 0, len(items)*2)
	for _, item := range items {
		v, ok := values[item]
		if !ok {
			continue
		}
		pairs = append(pairs, item, v)
	}
	return fmt.Sprintf("STATUS %s (%s)", Quote(mailbox), strings.Join(pairs, " "))
}
