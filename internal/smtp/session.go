package smtp

import (
	"bufio"
	"crypto/tls"
	"fmt"
	"net"
	"strings"
	"time"
)

// session holds the per-connection SMTP submission state, grounded on
// the teacher's lmtp.Session shape.
type session struct {
	srv    *Server
	id     string
	conn   net.Conn
	reader *bufio.Reader
	writer *bufio.Writer

	helo          string
	usingTLS      bool
	authenticated bool
	apiKey        string
	senderID      string
	senderEmail   string

	mailFrom string
	rcptTo   []string
}

func newSession(srv *Server, conn net.Conn, id string) *session {
	_, usingTLS := conn.(*tls.Conn)
	return &session{
		srv:      srv,
		id:       id,
		conn:     conn,
		reader:   bufio.NewReader(conn),
		writer:   bufio.NewWriter(conn),
		usingTLS: usingTLS,
	}
}

// run drives the command loop end to end, returning nil on a clean
// QUIT and a non-nil error for anything that ends the connection
// abnormally (read failure, idle timeout).
func (s *session) run() error {
	s.conn.SetDeadline(time.Now().Add(5 * time.Minute))
	if err := s.sendResponse(220, fmt.Sprintf("%s Transmit SMTP Ready", hostname)); err != nil {
		return err
	}

	for {
		line, err := s.reader.ReadString('\n')
		if err != nil {
			return fmt.Errorf("read: %w", err)
		}
		line = strings.TrimRight(line, "\r\n")
		if line == "" {
			continue
		}

		s.srv.Logger.Printf("session %s: C: %s", s.id, sanitizeForLog(line))

		parts := strings.SplitN(line, " ", 2)
		cmd := strings.ToUpper(parts[0])
		args := ""
		if len(parts) > 1 {
			args = parts[1]
		}

		quit, err := s.dispatch(cmd, args)
		if err != nil {
			return err
		}
		if quit {
			return nil
		}

		s.conn.SetDeadline(time.Now().Add(5 * time.Minute))
	}
}

func (s *session) dispatch(cmd, args string) (quit bool, err error) {
	switch cmd {
	case "EHLO", "HELO":
		return false, s.handleHelo(cmd, args)
	case "STARTTLS":
		return false, s.handleStartTLS()
	case "AUTH":
		return false, s.handleAuth(args)
	case "MAIL":
		return false, s.handleMail(args)
	case "RCPT":
		return false, s.handleRcpt(args)
	case "DATA":
		return false, s.handleData()
	case "RSET":
		s.resetTransaction()
		return false, s.sendResponse(250, "2.0.0 OK")
	case "NOOP":
		return false, s.sendResponse(250, "2.0.0 OK")
	case "VRFY":
		return false, s.sendResponse(252, "2.5.2 Cannot VRFY user, but will accept message")
	case "HELP":
		return false, s.sendResponse(214, "Commands: EHLO HELO STARTTLS AUTH MAIL RCPT DATA RSET NOOP QUIT")
	case "QUIT":
		s.sendResponse(221, fmt.Sprintf("2.0.0 %s closing connection", hostname))
		return true, nil
	default:
		return false, s.sendResponse(500, "5.5.1 Command not recognized")
	}
}

func (s *session) resetTransaction() {
	s.mailFrom = ""
	s.rcptTo = nil
}

func (s *session) handleHelo(cmd, args string) error {
	if strings.TrimSpace(args) == "" {
		return s.sendResponse(501, "5.5.4 "+cmd+" requires a domain argument")
	}
	s.helo = args
	s.resetTransaction()

	if cmd == "HELO" {
		return s.sendResponse(250, fmt.Sprintf("%s", hostname))
	}

	lines := []string{hostname}
	if s.srv.requireTLS() && !s.usingTLS {
		lines = append(lines, "STARTTLS")
	}
	lines = append(lines,
		"AUTH PLAIN LOGIN",
		fmt.Sprintf("SIZE %d", s.srv.maxMessageSize()),
		"8BITMIME",
		"ENHANCEDSTATUSCODES",
	)
	return s.sendMultiline(250, lines)
}

func (s *session) handleStartTLS() error {
	if s.usingTLS {
		return s.sendResponse(503, "5.5.1 TLS already active")
	}
	cfg := s.srv.tlsConfig
	if cfg == nil {
		return s.sendResponse(454, "4.7.0 TLS not available")
	}
	if err := s.sendResponse(220, "2.0.0 Ready to start TLS"); err != nil {
		return err
	}

	tlsConn := tls.Server(s.conn, cfg)
	if err := tlsConn.Handshake(); err != nil {
		return fmt.Errorf("starttls handshake: %w", err)
	}

	s.conn = tlsConn
	s.reader = bufio.NewReader(tlsConn)
	s.writer = bufio.NewWriter(tlsConn)
	s.usingTLS = true
	s.helo = ""
	s.authenticated = false
	s.resetTransaction()
	return nil
}

func (s *session) sendResponse(code int, format string, args ...interface{}) error {
	return s.sendRaw(fmt.Sprintf("%d %s", code, fmt.Sprintf(format, args...)))
}

// sendMultiline writes an RFC 5321 multi-line reply: every line but
// the last uses "code-text", the last uses "code text".
func (s *session) sendMultiline(code int, lines []string) error {
	for i, line := range lines {
		sep := "-"
		if i == len(lines)-1 {
			sep = " "
		}
		if err := s.sendRaw(fmt.Sprintf("%d%s%s", code, sep, line)); err != nil {
			return err
		}
	}
	return nil
}

func (s *session) sendRaw(line string) error {
	s.srv.Logger.Printf("session %s: S: %s", s.id, line)
	if _, err := s.writer.WriteString(line + "\r\n"); err != nil {
		return err
	}
	return s.writer.Flush()
}

// sanitizeForLog elides AUTH continuation payloads from the log the
// way the teacher's sanitizeResponseForLogging elides message bodies.
func sanitizeForLog(line string) string {
	upper := strings.ToUpper(line)
	if strings.HasPrefix(upper, "AUTH ") {
		return "AUTH [elided]"
	}
	return line
}
