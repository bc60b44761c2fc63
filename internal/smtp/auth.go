package smtp

import (
	"encoding/base64"
	"strings"

	"github.com/emersion/go-sasl"

	"github.com/Transmit-Xmit/xmit-mail-gateway/internal/upstream"
)

// handleAuth drives AUTH PLAIN/LOGIN through go-sasl's server state
// machines the same way internal/imap/server/auth does, but using
// SMTP's "334 <b64>" continuation code instead of IMAP's "+".
func (s *session) handleAuth(args string) error {
	if s.helo == "" {
		return s.sendResponse(503, "5.5.1 Send EHLO first")
	}
	if s.srv.requireTLS() && !s.usingTLS {
		return s.sendResponse(538, "5.7.11 Encryption required for requested authentication mechanism")
	}
	if s.authenticated {
		return s.sendResponse(503, "5.5.1 Already authenticated")
	}

	fields := strings.SplitN(strings.TrimSpace(args), " ", 2)
	if len(fields) == 0 || fields[0] == "" {
		return s.sendResponse(501, "5.5.4 AUTH requires a mechanism")
	}

	var username, password string
	var saslServer sasl.Server
	switch strings.ToUpper(fields[0]) {
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
		return s.sendResponse(504, "5.5.4 Unrecognized authentication mechanism")
	}

	var resp []byte
	if len(fields) == 2 {
		decoded, err := base64.StdEncoding.DecodeString(fields[1])
		if err != nil {
			return s.sendResponse(501, "5.5.2 Invalid base64 response")
		}
		resp = decoded
	}

	for {
		challenge, done, err := saslServer.Next(resp)
		if err != nil {
			return s.sendResponse(535, "5.7.8 Authentication failed")
		}
		if done {
			break
		}

		if err := s.sendRaw("334 " + base64.StdEncoding.EncodeToString(challenge)); err != nil {
			return err
		}

		line, err := s.reader.ReadString('\n')
		if err != nil {
			return err
		}
		line = strings.TrimRight(line, "\r\n")
		if line == "*" {
			return s.sendResponse(501, "5.7.0 Authentication cancelled")
		}
		decoded, err := base64.StdEncoding.DecodeString(line)
		if err != nil {
			return s.sendResponse(501, "5.5.2 Invalid base64 response")
		}
		resp = decoded
	}

	return s.finishAuth(username, password)
}

func (s *session) finishAuth(username, password string) error {
	if !upstream.IsValidKeyFormat(password) {
		return s.sendResponse(535, "5.7.8 Authentication failed")
	}

	ctx := s.srv.ctx()
	if _, err := s.srv.Upstream.ValidateKey(ctx, password); err != nil {
		return s.sendResponse(535, "5.7.8 Authentication failed")
	}

	s.apiKey = password

	if username == "api" || username == "*" {
		s.authenticated = true
		return s.sendResponse(235, "2.7.0 Authentication successful")
	}

	sender, err := s.srv.Upstream.GetSenderByEmail(ctx, password, username)
	if err != nil || sender == nil {
		return s.sendResponse(535, "5.7.8 Authentication failed")
	}

	s.authenticated = true
	s.senderID = sender.ID
	s.senderEmail = sender.Email
	return s.sendResponse(235, "2.7.0 Authentication successful")
}
