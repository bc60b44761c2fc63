package response

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"github.com/Transmit-Xmit/xmit-mail-gateway/internal/imap/parser"
	"github.com/Transmit-Xmit/xmit-mail-gateway/internal/upstream"
)

// InternalDate renders t per §4.5: `DD-Mon-YYYY HH:MM:SS +0000`, UTC,
// day zero-padded with a leading space for single digits.
func InternalDate(t time.Time) string {
	utc := t.UTC()
	return fmt.Sprintf("%2d-%s-%04d %02d:%02d:%02d +0000",
		utc.Day(), utc.Month().String()[:3], utc.Year(),
		utc.Hour(), utc.Minute(), utc.Second())
}

// Section extracts the bytes of section from body per §4.5: "" is the
// full RFC 822 message, HEADER is the header block plus the blank
// line separator, "HEADER.FIELDS (a b …)" keeps only the named
// headers (case-insensitive) plus the blank line, TEXT is everything
// after the header/body separator, and a dotted numeric path selects
// a MIME part (falling back to the only content for a single-part
// message, since this gateway never parses nested MIME itself).
func Section(body *upstream.Body, section string) []byte {
	full := rfc822Bytes(body)
	section = strings.TrimSpace(section)

	switch {
	case section == "":
		return full
	case section == "HEADER":
		return headerBlock(full)
	case strings.HasPrefix(strings.ToUpper(section), "HEADER.FIELDS"):
		return headerFields(full, section)
	case section == "TEXT":
		return textBlock(full)
	default:
		// Dotted numeric MIME paths address nested parts the upstream
		// already flattened away; a single-part message's only content
		// answers any such request per §4.5.
		return full
	}
}

func rfc822Bytes(body *upstream.Body) []byte {
	if body == nil {
		return nil
	}
	if len(body.Raw) > 0 {
		return body.Raw
	}
	return ReconstructRFC822(body, nil)
}

func headerSplit(full []byte) (header, rest []byte) {
	if idx := bytes.Index(full, []byte("\r\n\r\n")); idx >= 0 {
		return full[:idx+2], full[idx+4:]
	}
	if idx := bytes.Index(full, []byte("\n\n")); idx >= 0 {
		return full[:idx+1], full[idx+2:]
	}
	return full, nil
}

func headerBlock(full []byte) []byte {
	header, _ := headerSplit(full)
	return append(append([]byte{}, header...), '\r', '\n')
}

func textBlock(full []byte) []byte {
	_, rest := headerSplit(full)
	return rest
}

func headerFields(full []byte, section string) []byte {
	wanted := fieldNames(section)
	header, _ := headerSplit(full)

	var out bytes.Buffer
	for _, line := range strings.Split(string(header), "\r\n") {
		name := headerName(line)
		if name == "" {
			continue
		}
		if containsFold(wanted, name) {
			out.WriteString(line)
			out.WriteString("\r\n")
		}
	}
	out.WriteString("\r\n")
	return out.Bytes()
}

func fieldNames(section string) []string {
	open := strings.IndexByte(section, '(')
	closeIdx := strings.LastIndexByte(section, ')')
	if open < 0 || closeIdx <= open {
		return nil
	}
	return parser.Tokenize(section[open+1 : closeIdx])
}

func headerName(line string) string {
	idx := strings.IndexByte(line, ':')
	if idx < 0 {
		return ""
	}
	return strings.TrimSpace(line[:idx])
}

func containsFold(names []string, name string) bool {
	for _, n := range names {
		if strings.EqualFold(n, name) {
			return true
		}
	}
	return false
}

// BodySection renders `BODY[section]<origin>` per §4.5: a literal
// `{n}CRLF` followed by the clamped byte slice; the `<origin>` tag is
// present only when a partial was actually requested.
func BodySection(section string, partial *parser.Partial, data []byte) string {
	start, length := parser.ClampPartial(partial, len(data))
	slice := data[start : start+length]

	tag := fmt.Sprintf("BODY[%s]", section)
	if partial != nil {
		tag = fmt.Sprintf("%s<%d>", tag, start)
	}
	return tag + " " + Literal(slice)
}
