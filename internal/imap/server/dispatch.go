package server

import (
	"fmt"
	"net"
	"strings"

	"github.com/Transmit-Xmit/xmit-mail-gateway/internal/imap/parser"
	"github.com/Transmit-Xmit/xmit-mail-gateway/internal/imap/server/auth"
	"github.com/Transmit-Xmit/xmit-mail-gateway/internal/imap/server/extension"
	"github.com/Transmit-Xmit/xmit-mail-gateway/internal/imap/server/mailbox"
	"github.com/Transmit-Xmit/xmit-mail-gateway/internal/imap/server/message"
	"github.com/Transmit-Xmit/xmit-mail-gateway/internal/imap/server/selection"
	"github.com/Transmit-Xmit/xmit-mail-gateway/internal/models"
)

// dispatch routes one already-gated request to its handler sub-package.
// It returns the connection the caller should keep reading from — every
// command returns its input conn unchanged except STARTTLS, which
// returns the freshly wrapped *tls.Conn so runLoop can rebuild its
// framer around it.
func (s *Server) dispatch(conn net.Conn, sess *models.Session, req request) net.Conn {
	switch req.Name {
	case "CAPABILITY":
		auth.HandleCapability(s, conn, req.Tag)
	case "LOGIN":
		auth.HandleLogin(s, conn, req.Tag, req.Args, sess)
	case "AUTHENTICATE":
		auth.HandleAuthenticate(s, conn, req.Tag, req.Args, sess)
	case "STARTTLS":
		if tlsConn, ok := auth.HandleStartTLS(s, conn, req.Tag); ok {
			sess.Conn = tlsConn
			return tlsConn
		}
	case "LOGOUT":
		auth.HandleLogout(s, conn, req.Tag, sess)

	case "LIST":
		ref, pattern := listArgs(req.Args)
		mailbox.HandleList(s, conn, req.Tag, sess, ref, pattern)
	case "LSUB":
		ref, pattern := listArgs(req.Args)
		mailbox.HandleLsub(s, conn, req.Tag, sess, ref, pattern)
	case "CREATE":
		mailbox.HandleCreate(s, conn, req.Tag, sess, argOrEmpty(req.Args, 0))
	case "DELETE":
		mailbox.HandleDelete(s, conn, req.Tag, sess, argOrEmpty(req.Args, 0))
	case "RENAME":
		mailbox.HandleRename(s, conn, req.Tag)
	case "SUBSCRIBE":
		mailbox.HandleSubscribe(s, conn, req.Tag)
	case "UNSUBSCRIBE":
		mailbox.HandleUnsubscribe(s, conn, req.Tag)
	case "STATUS":
		if len(req.Args) < 2 {
			s.writeLine(conn, fmt.Sprintf("%s BAD STATUS requires a mailbox and item list", req.Tag))
			break
		}
		items := parser.Tokenize(strings.Trim(req.Args[1], "()"))
		mailbox.HandleStatus(s, conn, req.Tag, sess, parser.Unquote(req.Args[0]), items)

	case "SELECT":
		selection.HandleSelect(s, conn, req.Tag, sess, parser.Unquote(argOrEmpty(req.Args, 0)))
	case "EXAMINE":
		selection.HandleExamine(s, conn, req.Tag, sess, parser.Unquote(argOrEmpty(req.Args, 0)))
	case "CLOSE":
		selection.HandleClose(s, conn, req.Tag, sess)
	case "CHECK":
		selection.HandleCheck(s, conn, req.Tag)

	case "FETCH":
		if len(req.Args) < 2 {
			s.writeLine(conn, fmt.Sprintf("%s BAD FETCH requires a sequence set and item list", req.Tag))
			break
		}
		message.HandleFetch(s, conn, req.Tag, sess, req.UseUID, req.Args[0], strings.Join(req.Args[1:], " "))
	case "STORE":
		if len(req.Args) < 3 {
			s.writeLine(conn, fmt.Sprintf("%s BAD STORE requires a sequence set, data item and value", req.Tag))
			break
		}
		flags := parser.Tokenize(strings.Trim(strings.Join(req.Args[2:], " "), "()"))
		message.HandleStore(s, conn, req.Tag, sess, req.UseUID, req.Args[0], req.Args[1], flags)
	case "SEARCH":
		if len(req.Args) < 1 {
			s.writeLine(conn, fmt.Sprintf("%s BAD SEARCH requires criteria", req.Tag))
			break
		}
		criteria := parser.ParseSearchCriteria(req.Args)
		message.HandleSearch(s, conn, req.Tag, sess, req.UseUID, criteria)
	case "COPY":
		if len(req.Args) < 2 {
			s.writeLine(conn, fmt.Sprintf("%s BAD COPY requires a sequence set and mailbox", req.Tag))
			break
		}
		message.HandleCopy(s, conn, req.Tag, sess, req.UseUID, req.Args[0], parser.Unquote(req.Args[1]))
	case "MOVE":
		if len(req.Args) < 2 {
			s.writeLine(conn, fmt.Sprintf("%s BAD MOVE requires a sequence set and mailbox", req.Tag))
			break
		}
		message.HandleMove(s, conn, req.Tag, sess, req.UseUID, req.Args[0], parser.Unquote(req.Args[1]))
	case "EXPUNGE":
		message.HandleExpunge(s, conn, req.Tag, sess)
	case "APPEND":
		mbox, flags, dateStr := message.ParseAppendArgs(req.Args)
		message.HandleAppend(s, conn, req.Tag, sess, mbox, flags, dateStr, req.Literal)

	case "NOOP":
		extension.HandleNoop(s, conn, req.Tag)
	case "NAMESPACE":
		extension.HandleNamespace(s, conn, req.Tag)
	case "IDLE":
		sess.Idling = true
		sess.IdleTag = req.Tag
		s.writeLine(conn, "+ idling")

	default:
		s.writeLine(conn, fmt.Sprintf("%s BAD Unknown command", req.Tag))
	}

	return conn
}

func listArgs(args []string) (reference, pattern string) {
	if len(args) < 2 {
		return "", ""
	}
	return parser.Unquote(args[0]), parser.Unquote(args[1])
}

func argOrEmpty(args []string, i int) string {
	if i < len(args) {
		return args[i]
	}
	return ""
}
