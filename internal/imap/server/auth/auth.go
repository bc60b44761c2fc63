// Package auth implements CAPABILITY, LOGIN, AUTHENTICATE, STARTTLS
// and LOGOUT, grounded on the teacher's auth handler package but
// validating the password as an upstream API key instead of a local
// account (§4.3, §4.4).
package auth

import (
	"context"
	"crypto/tls"
	"encoding/base64"
	"fmt"
	"net"
	"strings"
	"time"

	"github.com/emersion/go-sasl"

	"github.com/Transmit-Xmit/xmit-mail-gateway/internal/imap/parser"
	"github.com/Transmit-Xmit/xmit-mail-gateway/internal/models"
	"github.com/Transmit-Xmit/xmit-mail-gateway/internal/response"
	"github.com/Transmit-Xmit/xmit-mail-gateway/internal/upstream"
)

// Deps is the narrow surface auth handlers need from the server,
// mirroring the teacher's ServerDeps pattern.
type Deps interface {
	Reply(conn net.Conn, line string)
	ValidateKey(ctx context.Context, apiKey string) (string, error)
	GetSenderByEmail(ctx context.Context, apiKey, email string) (*upstream.Sender, error)
	TLSConfig() *tls.Config
	Context() context.Context
}

// HandleCapability answers CAPABILITY with the fixed extension set
// plus AUTH mechanisms, per §6.
func HandleCapability(deps Deps, conn net.Conn, tag string) {
	caps := "IMAP4rev1 IDLE NAMESPACE UIDPLUS MOVE SPECIAL-USE AUTH=PLAIN AUTH=LOGIN"
	if _, isTLS := conn.(*tls.Conn); !isTLS && deps.TLSConfig() != nil {
		caps += " STARTTLS"
	}
	deps.Reply(conn, "* CAPABILITY "+caps)
	deps.Reply(conn, fmt.Sprintf("%s OK CAPABILITY completed", tag))
}

// HandleLogin implements LOGIN per §4.3: password must satisfy the
// API-key format before any upstream call; username "api"/"*" leaves
// the session unpinned, any other username is treated as an email
// that must resolve to an accessible sender.
func HandleLogin(deps Deps, conn net.Conn, tag string, args []string, sess *models.Session) {
	if len(args) < 2 {
		deps.Reply(conn, fmt.Sprintf("%s BAD LOGIN requires a username and password", tag))
		return
	}
	username := parser.Unquote(args[0])
	password := parser.Unquote(args[1])
	authenticate(deps, conn, tag, username, password, sess)
}

// HandleAuthenticate implements AUTHENTICATE PLAIN and AUTHENTICATE
// LOGIN via go-sasl's server-side state machines, driving the
// continuation exchange ourselves since it happens outside the
// framer's command/literal framing (§4.3).
func HandleAuthenticate(deps Deps, conn net.Conn, tag string, args []string, sess *models.Session) {
	if len(args) < 1 {
		deps.Reply(conn, fmt.Sprintf("%s BAD AUTHENTICATE requires a mechanism", tag))
		return
	}

	var username, password string
	var saslServer sasl.Server
	switch strings.ToUpper(args[0]) {
	case "PLAIN":
		saslServer = sasl.NewPlainServer(func(identity, user, pass string) error {
			username, password = user, pass
			return nil
		})
	case "LOGIN":
		saslServer = sasl.NewLoginServer(func(user, pass string) error {
			username, password = user, pass
			return nil
		})
	default:
		deps.Reply(conn, fmt.Sprintf("%s NO Unsupported authentication mechanism", tag))
		return
	}

	var resp []byte
	if len(args) >= 2 {
		decoded, err := base64.StdEncoding.DecodeString(args[1])
		if err != nil {
			deps.Reply(conn, fmt.Sprintf("%s NO [AUTHENTICATIONFAILED] Invalid SASL response", tag))
			return
		}
		resp = decoded
	}

	for {
		challenge, done, err := saslServer.Next(resp)
		if err != nil {
			deps.Reply(conn, fmt.Sprintf("%s NO [AUTHENTICATIONFAILED] Authentication failed", tag))
			return
		}
		if done {
			break
		}

		deps.Reply(conn, "+ "+base64.StdEncoding.EncodeToString(challenge))

		line, ok := readContinuation(conn)
		if !ok {
			deps.Reply(conn, fmt.Sprintf("%s NO Authentication failed", tag))
			return
		}
		if line == "*" {
			deps.Reply(conn, fmt.Sprintf("%s BAD Authentication exchange cancelled", tag))
			return
		}
		decoded, err := base64.StdEncoding.DecodeString(line)
		if err != nil {
			deps.Reply(conn, fmt.Sprintf("%s NO [AUTHENTICATIONFAILED] Invalid SASL response", tag))
			return
		}
		resp = decoded
	}

	authenticate(deps, conn, tag, username, password, sess)
}

// readContinuation reads one CRLF-terminated line sent in response to a
// "+" continuation prompt. AUTHENTICATE's exchange happens before the
// framer sees the next command, so it talks to conn directly.
func readContinuation(conn net.Conn) (string, bool) {
	conn.SetReadDeadline(time.Now().Add(30 * time.Second))
	buf := make([]byte, 8192)
	n, err := conn.Read(buf)
	if err != nil {
		return "", false
	}
	return strings.TrimSpace(string(buf[:n])), true
}

func authenticate(deps Deps, conn net.Conn, tag, username, password string, sess *models.Session) {
	if !upstream.IsValidKeyFormat(password) {
		deps.Reply(conn, fmt.Sprintf("%s NO [AUTHENTICATIONFAILED] Invalid credentials", tag))
		return
	}

	ctx := deps.Context()
	if _, err := deps.ValidateKey(ctx, password); err != nil {
		deps.Reply(conn, fmt.Sprintf("%s NO [AUTHENTICATIONFAILED] Authentication failed", tag))
		return
	}

	sess.APIKey = password
	sess.State = models.Auth

	if username == "api" || username == "*" {
		sess.PinnedSender = nil
		deps.Reply(conn, fmt.Sprintf("%s OK [CAPABILITY IMAP4rev1 IDLE NAMESPACE UIDPLUS MOVE SPECIAL-USE] Authenticated", tag))
		return
	}

	sender, err := deps.GetSenderByEmail(ctx, password, username)
	if err != nil || sender == nil {
		sess.State = models.NotAuth
		sess.APIKey = ""
		deps.Reply(conn, fmt.Sprintf("%s NO [AUTHENTICATIONFAILED] Authentication failed", tag))
		return
	}

	sess.PinnedSender = &models.Sender{ID: sender.ID, Email: sender.Email}
	deps.Reply(conn, fmt.Sprintf("%s OK [CAPABILITY IMAP4rev1 IDLE NAMESPACE UIDPLUS MOVE SPECIAL-USE] Authenticated", tag))
}

// HandleStartTLS begins the TLS handshake on conn per §6. The caller
// is responsible for replacing the connection with the returned
// *tls.Conn and restarting the read loop — STARTTLS never returns a
// value the dispatcher can use directly because the underlying net.Conn
// changes.
func HandleStartTLS(deps Deps, conn net.Conn, tag string) (*tls.Conn, bool) {
	if _, ok := conn.(*tls.Conn); ok {
		deps.Reply(conn, fmt.Sprintf("%s BAD TLS already active", tag))
		return nil, false
	}
	cfg := deps.TLSConfig()
	if cfg == nil {
		deps.Reply(conn, fmt.Sprintf("%s BAD TLS not available", tag))
		return nil, false
	}
	deps.Reply(conn, fmt.Sprintf("%s OK Begin TLS negotiation now", tag))
	return tls.Server(conn, cfg), true
}

// HandleLogout implements LOGOUT: untagged BYE then a tagged OK,
// transitioning to Logout so the caller closes the connection.
func HandleLogout(deps Deps, conn net.Conn, tag string, sess *models.Session) {
	deps.Reply(conn, response.Untagged("BYE IMAP4rev1 Server logging out"))
	deps.Reply(conn, fmt.Sprintf("%s OK LOGOUT completed", tag))
	sess.State = models.Logout
}
