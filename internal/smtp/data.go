package smtp

import (
	"bufio"
	"bytes"
	"errors"
	"io"
	"strings"

	"github.com/emersion/go-message/mail"

	"github.com/Transmit-Xmit/xmit-mail-gateway/internal/upstream"
)

// handleData reads the dot-terminated message body, parses its MIME
// structure with go-message, and posts the result to the upstream
// (§2, "parse MIME → POST JSON").
func (s *session) handleData() error {
	if s.mailFrom == "" {
		return s.sendResponse(503, "5.5.1 Send MAIL FROM first")
	}
	if len(s.rcptTo) == 0 {
		return s.sendResponse(503, "5.5.1 Send RCPT TO first")
	}

	if err := s.sendResponse(354, "Start mail input; end with <CRLF>.<CRLF>"); err != nil {
		return err
	}

	raw, err := readDotTerminated(s.reader, s.srv.maxMessageSize())
	if err != nil {
		if errors.Is(err, errMessageTooLarge) {
			return s.sendResponse(552, "5.3.4 Message size exceeds fixed maximum message size")
		}
		return err
	}

	msg, err := buildOutbound(s.mailFrom, s.rcptTo, raw)
	if err != nil {
		s.srv.Logger.Printf("session %s: parse failed: %v", s.id, err)
		return s.sendResponse(451, "4.3.0 Could not parse message")
	}

	if err := s.srv.Upstream.Submit(s.srv.ctx(), s.apiKey, s.senderID, *msg); err != nil {
		code, enhanced, text := smtpCodeFor(err)
		s.resetTransaction()
		return s.sendResponse(code, "%s %s", enhanced, text)
	}

	s.resetTransaction()
	return s.sendResponse(250, "2.0.0 Message accepted for delivery")
}

var errMessageTooLarge = errors.New("smtp: message exceeds configured size limit")

// readDotTerminated reads lines until a line consisting of a single
// "." per RFC 5321 §4.5.2, undoing leading-dot transparency stuffing
// and enforcing limit in bytes.
func readDotTerminated(r *bufio.Reader, limit int64) ([]byte, error) {
	var buf []byte
	var total int64
	for {
		line, err := r.ReadString('\n')
		if err != nil {
			return nil, err
		}
		trimmed := strings.TrimRight(line, "\r\n")
		if trimmed == "." {
			return buf, nil
		}
		if strings.HasPrefix(trimmed, "..") {
			trimmed = trimmed[1:]
		}
		total += int64(len(trimmed)) + 2
		if total > limit {
			return nil, errMessageTooLarge
		}
		buf = append(buf, trimmed...)
		buf = append(buf, '\r', '\n')
	}
}

// buildOutbound parses raw RFC 5322 bytes into the JSON shape the
// upstream expects, preferring the envelope's own From/Subject and
// concatenating every text/plain and text/html inline part, the way
// backendutil.FetchEnvelope and the mail.Reader example in the pack
// walk a parsed message's header and parts.
func buildOutbound(from string, to []string, raw []byte) (*upstream.OutboundMessage, error) {
	mr, err := mail.CreateReader(bytes.NewReader(raw))
	if err != nil {
		return nil, err
	}

	subject, _ := mr.Header.Subject()

	out := &upstream.OutboundMessage{
		From:    from,
		To:      to,
		Subject: subject,
		Raw:     raw,
	}

	for {
		part, err := mr.NextPart()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}

		inline, ok := part.Header.(*mail.InlineHeader)
		if !ok {
			continue
		}
		mediaType, _, _ := inline.ContentType()
		body, err := io.ReadAll(part.Body)
		if err != nil {
			return nil, err
		}
		switch {
		case strings.EqualFold(mediaType, "text/html"):
			out.HTML += string(body)
		default:
			out.Text += string(body)
		}
	}

	return out, nil
}

// smtpCodeFor maps an upstream error kind to the SMTP reply code table
// from the external interfaces section: auth failures answer 535,
// missing/invalid addresses 550, rate limiting 451, and anything
// transient that isn't rate limiting (timeouts, 5xx, network) 421.
func smtpCodeFor(err error) (code int, enhanced, text string) {
	var e *upstream.Error
	if !errors.As(err, &e) {
		return 451, "4.3.0", "Internal error"
	}
	switch e.Kind {
	case upstream.KindAuthFailed:
		return 535, "5.7.8", "Authentication failed"
	case upstream.KindNotFound, upstream.KindPermanent:
		return 550, "5.1.1", "Address rejected by upstream"
	case upstream.KindTransient:
		if e.Status == 429 {
			return 451, "4.7.1", "Rate limited, try again later"
		}
		return 421, "4.4.2", "Service temporarily unavailable"
	default:
		return 451, "4.3.0", "Internal error"
	}
}
