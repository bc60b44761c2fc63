package smtp

import (
	"errors"
	"strings"
)

const maxRecipients = 100

func (s *session) handleMail(args string) error {
	if !s.authenticated {
		return s.sendResponse(530, "5.7.0 Authentication required")
	}
	if s.mailFrom != "" {
		return s.sendResponse(503, "5.5.1 Sender already specified")
	}

	from, err := parsePathArg(args, "FROM:")
	if err != nil || from == "" {
		return s.sendResponse(501, "5.1.7 Invalid MAIL FROM syntax")
	}

	// A session authenticated with a pinned sender may only send as
	// that sender; an unpinned "api" login resolves whichever accessible
	// sender the envelope address names.
	if s.senderID == "" {
		sender, err := s.srv.Upstream.GetSenderByEmail(s.srv.ctx(), s.apiKey, from)
		if err != nil || sender == nil {
			return s.sendResponse(550, "5.1.1 Sender address not recognized")
		}
		s.senderID = sender.ID
		s.senderEmail = sender.Email
	} else if !strings.EqualFold(from, s.senderEmail) {
		return s.sendResponse(550, "5.7.1 Sender address does not match authenticated identity")
	}

	s.mailFrom = from
	return s.sendResponse(250, "2.1.0 Sender OK")
}

func (s *session) handleRcpt(args string) error {
	if s.mailFrom == "" {
		return s.sendResponse(503, "5.5.1 Send MAIL FROM first")
	}
	if len(s.rcptTo) >= maxRecipients {
		return s.sendResponse(452, "4.5.3 Too many recipients")
	}

	to, err := parsePathArg(args, "TO:")
	if err != nil || to == "" || !strings.Contains(to, "@") {
		return s.sendResponse(501, "5.1.3 Invalid RCPT TO syntax")
	}

	s.rcptTo = append(s.rcptTo, to)
	return s.sendResponse(250, "2.1.5 Recipient OK")
}

// parsePathArg parses "FROM:<addr> PARAM=VAL ..." / "TO:<addr> ..."
// into the bare address, dropping ESMTP parameters, the way the
// teacher's parseMailFrom/parseRcptTo do.
func parsePathArg(args, prefix string) (string, error) {
	args = strings.TrimSpace(args)
	upper := strings.ToUpper(args)
	if !strings.HasPrefix(upper, prefix) {
		return "", errInvalidPath
	}
	args = strings.TrimSpace(args[len(prefix):])
	args = strings.TrimPrefix(args, "<")
	if i := strings.Index(args, ">"); i >= 0 {
		args = args[:i]
	} else if fields := strings.Fields(args); len(fields) > 0 {
		args = fields[0]
	}
	return args, nil
}

var errInvalidPath = errors.New("smtp: invalid envelope path")
