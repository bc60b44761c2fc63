package response

import (
	"bytes"
	"fmt"

	"github.com/Transmit-Xmit/xmit-mail-gateway/internal/upstream"
)

// ReconstructRFC822 builds a full RFC 822 message from body when the
// upstream didn't supply body.Raw directly, per §4.5: use body.Headers
// if present, else synthesise minimal headers from envelope; generate
// a Content-Type (multipart/alternative when both text and html are
// present, else text/plain or text/html), a blank line, then the
// body parts separated by the boundary. All line terminators are CRLF.
func ReconstructRFC822(body *upstream.Body, envelope *upstream.Envelope) []byte {
	if body != nil && len(body.Raw) > 0 {
		return body.Raw
	}

	var buf bytes.Buffer

	if body != nil && len(body.Headers) > 0 {
		buf.Write(body.Headers)
	} else if envelope != nil {
		writeHeader(&buf, "Subject", envelope.Subject)
		if !envelope.Date.IsZero() {
			writeHeader(&buf, "Date", envelope.Date.UTC().Format(imapDateLayout))
		}
		writeHeader(&buf, "From", formatAddressHeader(envelope.From))
		writeHeader(&buf, "To", formatAddressHeader(envelope.To))
		if len(envelope.Cc) > 0 {
			writeHeader(&buf, "Cc", formatAddressHeader(envelope.Cc))
		}
		if envelope.MessageID != "" {
			writeHeader(&buf, "Message-ID", envelope.MessageID)
		}
	}

	hasText := body != nil && len(body.Text) > 0
	hasHTML := body != nil && len(body.HTML) > 0
	const boundary = "gateway-boundary"

	switch {
	case hasText && hasHTML:
		fmt.Fprintf(&buf, "Content-Type: multipart/alternative; boundary=%s\r\n\r\n", boundary)
		fmt.Fprintf(&buf, "--%s\r\nContent-Type: text/plain\r\n\r\n", boundary)
		buf.Write(body.Text)
		fmt.Fprintf(&buf, "\r\n--%s\r\nContent-Type: text/html\r\n\r\n", boundary)
		buf.Write(body.HTML)
		fmt.Fprintf(&buf, "\r\n--%s--\r\n", boundary)
	case hasHTML:
		buf.WriteString("Content-Type: text/html\r\n\r\n")
		buf.Write(body.HTML)
	default:
		buf.WriteString("Content-Type: text/plain\r\n\r\n")
		if body != nil {
			buf.Write(body.Text)
		}
	}

	return buf.Bytes()
}

func writeHeader(buf *bytes.Buffer, name, value string) {
	if value == "" {
		return
	}
	fmt.Fprintf(buf, "%s: %s\r\n", name, value)
}

func formatAddressHeader(addrs []upstream.Address) string {
	if len(addrs) == 0 {
		return ""
	}
	out := ""
	for i, a := range addrs {
		if i > 0 {
			out += ", "
		}
		if a.Name != "" {
			out += fmt.Sprintf("%s <%s@%s>", a.Name, a.Mailbox, a.Host)
		} else {
			out += fmt.Sprintf("%s@%s", a.Mailbox, a.Host)
		}
	}
	return out
}
