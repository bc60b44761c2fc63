package message

import (
	"fmt"
	"net"
	"strings"
	"time"

	"github.com/Transmit-Xmit/xmit-mail-gateway/internal/imap/parser"
	"github.com/Transmit-Xmit/xmit-mail-gateway/internal/models"
)

// ParseAppendArgs splits APPEND's argument tokens into the mailbox
// name and the optional parenthesised flag list and quoted date that
// may precede the literal, per RFC 3501 §6.3.11. The trailing
// `{n}`/`{n+}` literal-length token, if still present, is dropped.
func ParseAppendArgs(args []string) (mailbox string, flags []string, dateStr string) {
	if len(args) == 0 {
		return "", nil, ""
	}
	mailbox = parser.Unquote(args[0])
	rest := args[1:]
	if n := len(rest); n > 0 {
		last := rest[n-1]
		if strings.HasPrefix(last, "{") && strings.HasSuffix(last, "}") {
			rest = rest[:n-1]
		}
	}
	for _, tok := range rest {
		if strings.HasPrefix(tok, "(") {
			flags = parser.Tokenize(strings.Trim(tok, "()"))
		} else {
			dateStr = parser.Unquote(tok)
		}
	}
	return mailbox, flags, dateStr
}

// HandleAppend answers APPEND: the literal bytes are forwarded to the
// upstream untouched (§9 open question 2 — never decoded as text), and
// on success the tagged reply carries an APPENDUID code (UIDPLUS). A
// target mailbox that doesn't resolve answers NO [TRYCREATE], inviting
// the client to CREATE it first, per §4.6.
func HandleAppend(deps Deps, conn net.Conn, tag string, sess *models.Session, mailbox string, flags []string, dateStr string, literal []byte) {
	ctx := deps.Context()
	resolved, err := deps.Resolve(ctx, sess.APIKey, sess.PinnedSender, mailbox)
	if err != nil || resolved.Sender == nil {
		deps.Reply(conn, fmt.Sprintf("%s NO [TRYCREATE] Mailbox does not exist", tag))
		return
	}

	var datePtr *time.Time
	if dateStr != "" {
		if t, ok := parser.ParseIMAPDate(dateStr); ok {
			datePtr = &t
		}
	}

	uid, err := deps.Append(ctx, sess.APIKey, resolved.Sender.ID, resolved.FolderName, literal, flags, datePtr)
	if err != nil {
		deps.Reply(conn, fmt.Sprintf("%s NO APPEND failed", tag))
		return
	}

	var uidValidity uint64
	if status, err := deps.FolderStatus(ctx, sess.APIKey, resolved.Sender.ID, resolved.FolderName); err == nil {
		uidValidity = status.UIDValidity
	}
	deps.Reply(conn, fmt.Sprintf("%s OK [APPENDUID %d %d] APPEND completed", tag, uidValidity, uid))
}
