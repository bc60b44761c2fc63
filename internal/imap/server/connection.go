package server

import (
	"fmt"
	"net"
	"strings"
	"time"

	"github.com/Transmit-Xmit/xmit-mail-gateway/internal/imap/framer"
	"github.com/Transmit-Xmit/xmit-mail-gateway/internal/imap/parser"
	"github.com/Transmit-Xmit/xmit-mail-gateway/internal/models"
	"github.com/Transmit-Xmit/xmit-mail-gateway/internal/session"
)

// request is a fully tokenised command plus any attached literal
// bytes (only APPEND's message body arrives this way).
type request struct {
	parser.Command
	Literal []byte
}

// runLoop is the per-connection read/dispatch loop, grounded on the
// teacher's handleClient but byte-accurate: it reads through the
// framer instead of bufio.Reader.ReadString, so literals never get
// treated as text.
func (s *Server) runLoop(conn net.Conn, sess *models.Session) {
	f := framer.New(conn)

	for {
		if !sess.Idling {
			conn.SetReadDeadline(time.Now().Add(s.idleTimeout()))
		}

		ev, err := f.Next(func() error {
			s.writeLine(conn, "+ Ready for literal data")
			return nil
		})
		if err != nil {
			if sess.Idling && isTimeout(err) {
				s.endIdle(sess, "timeout")
				continue
			}
			s.handleFrameError(conn, err)
			if err == framer.ErrLineTooLong || err == framer.ErrLiteralTooLarge {
				continue
			}
			return
		}

		if sess.Idling {
			if strings.EqualFold(strings.TrimSpace(string(ev.Line)), "DONE") {
				s.endIdle(sess, "")
			} else {
				s.Logger.Printf("session %s: ignoring %q while idling", sess.ID, ev.Line)
			}
			continue
		}

		req, ok := s.toRequest(ev)
		if !ok {
			s.writeLine(conn, "* BAD Invalid command format")
			continue
		}

		if !session.Allowed(sess.State, req.Name) {
			s.writeLine(conn, fmt.Sprintf("%s BAD Command not permitted in this state", req.Tag))
			continue
		}

		newConn := s.dispatch(conn, sess, req)
		if newConn != conn {
			conn = newConn
			f = framer.New(conn)
		}

		if sess.State == models.Logout {
			return
		}
	}
}

// toRequest parses either a plain line or a line-prefix-plus-literal
// event into a request, applying the UID-prefix shift.
func (s *Server) toRequest(ev framer.Event) (request, bool) {
	cmd, ok := parser.ParseCommand(string(ev.Line))
	if !ok {
		return request{}, false
	}
	return request{Command: cmd, Literal: ev.Literal}, true
}

func (s *Server) handleFrameError(conn net.Conn, err error) {
	switch err {
	case framer.ErrLineTooLong:
		s.writeLine(conn, "* BAD Command line too long")
	case framer.ErrLiteralTooLarge:
		s.writeLine(conn, "* BAD Literal too large")
	case framer.ErrLiteralTimeout:
		s.writeLine(conn, "* BAD Literal data timeout")
	}
}

type timeoutErr interface{ Timeout() bool }

func isTimeout(err error) bool {
	t, ok := err.(timeoutErr)
	return ok && t.Timeout()
}

func (s *Server) endIdle(sess *models.Session, reason string) {
	sess.Idling = false
	msg := "IDLE terminated"
	if reason != "" {
		msg = fmt.Sprintf("IDLE terminated (%s)", reason)
	}
	s.writeLine(sess.Conn, fmt.Sprintf("%s OK %s", sess.IdleTag, msg))
	sess.IdleTag = ""
}
