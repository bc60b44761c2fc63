package response

import (
	"fmt"
	"strings"

	"github.com/Transmit-Xmit/xmit-mail-gateway/internal/upstream"
)

const imapDateLayout = "02-Jan-2006 15:04:05 -0700"

// Envelope renders an ENVELOPE structure per §4.5: (date subject from
// sender reply-to to cc bcc in-reply-to message-id). Sender and
// reply-to default to from when the upstream left them empty, per
// RFC 3501 §7.4.2.
func Envelope(e *upstream.Envelope) string {
	if e == nil {
		return "NIL"
	}

	from := e.From
	sender := e.Sender
	if len(sender) == 0 {
		sender = from
	}
	replyTo := e.ReplyTo
	if len(replyTo) == 0 {
		replyTo = from
	}

	date := "NIL"
	if !e.Date.IsZero() {
		date = Quote(e.Date.Format(imapDateLayout))
	}

	return fmt.Sprintf("(%s %s %s %s %s %s %s %s %s %s)",
		date,
		QuoteOrLiteral(e.Subject),
		AddressList(from),
		AddressList(sender),
		AddressList(replyTo),
		AddressList(e.To),
		AddressList(e.Cc),
		AddressList(e.Bcc),
		QuoteOrLiteral(e.InReplyTo),
		QuoteOrLiteral(e.MessageID),
	)
}

// AddressList renders an address list as `(addr addr …)` or NIL, with
// each addr = (name adl mailbox host) per §4.5.
func AddressList(addrs []upstream.Address) string {
	if len(addrs) == 0 {
		return "NIL"
	}
	parts := make([]string, len(addrs))
	for i, a := range addrs {
		parts[i] = fmt.Sprintf("(%s %s %s %s)",
			QuoteOrLiteral(a.Name),
			QuoteOrLiteral(a.ADL),
			QuoteOrLiteral(a.Mailbox),
			QuoteOrLiteral(a.Host),
		)
	}
	return "(" + strings.Join(parts, " ") + ")"
}
