// Package session holds the per-state command gating table from §4.3:
// which IMAP commands are legal in which models.State.
package session

import "github.com/Transmit-Xmit/xmit-mail-gateway/internal/models"

var anyState = map[string]bool{
	"CAPABILITY": true, "NOOP": true, "LOGOUT": true,
}

var notAuthOnly = map[string]bool{
	"LOGIN": true, "AUTHENTICATE": true, "STARTTLS": true,
}

var authOrSelected = map[string]bool{
	"LIST": true, "LSUB": true, "STATUS": true, "SELECT": true,
	"EXAMINE": true, "CREATE": true, "DELETE": true, "SUBSCRIBE": true,
	"UNSUBSCRIBE": true, "APPEND": true, "NAMESPACE": true,
	// RENAME is grammatically accepted in the same states as CREATE/DELETE
	// so it reaches the dispatcher, which always answers NO (not supported).
	"RENAME": true,
}

var selectedOnly = map[string]bool{
	"CHECK": true, "CLOSE": true, "EXPUNGE": true, "SEARCH": true,
	"FETCH": true, "STORE": true, "COPY": true, "MOVE": true, "IDLE": true,
}

// Allowed reports whether cmd may be issued while the session is in
// state, per the gating table in §4.3.
func Allowed(state models.State, cmd string) bool {
	if anyState[cmd] {
		return true
	}
	switch state {
	case models.NotAuth:
		return notAuthOnly[cmd]
	case models.Auth:
		return authOrSelected[cmd]
	case models.Selected:
		return authOrSelected[cmd] || selectedOnly[cmd]
	default:
		return false
	}
}
