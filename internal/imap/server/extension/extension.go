// Package extension implements NOOP and NAMESPACE; IDLE's continuation
// and termination live in the connection read loop since they need to
// interleave with framer reads (§4.4, §6).
package extension

import (
	"fmt"
	"net"
)

// Deps is the narrow surface extension handlers need from the server.
type Deps interface {
	Reply(conn net.Conn, line string)
}

// HandleNoop always succeeds. The gateway keeps no local mailbox state
// to diff against an upstream push, so unlike a stateful IMAP server
// NOOP never emits EXISTS/EXPUNGE of its own accord — IDLE is the only
// path a client has to learn about new mail (§4.4, non-goal: push).
func HandleNoop(deps Deps, conn net.Conn, tag string) {
	deps.Reply(conn, fmt.Sprintf("%s OK NOOP completed", tag))
}

// HandleNamespace answers with a single personal namespace and no
// shared or other-users namespaces, per §4.4.
func HandleNamespace(deps Deps, conn net.Conn, tag string) {
	deps.Reply(conn, `* NAMESPACE (("" "/")) NIL NIL`)
	deps.Reply(conn, fmt.Sprintf("%s OK NAMESPACE completed", tag))
}
