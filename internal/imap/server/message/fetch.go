package message

import (
	"fmt"
	"net"
	"strings"

	"github.com/Transmit-Xmit/xmit-mail-gateway/internal/imap/parser"
	"github.com/Transmit-Xmit/xmit-mail-gateway/internal/models"
	"github.com/Transmit-Xmit/xmit-mail-gateway/internal/response"
	"github.com/Transmit-Xmit/xmit-mail-gateway/internal/upstream"
)

// HandleFetch answers FETCH/UID FETCH: it resolves the sequence set
// against the selected folder's UID vector, requests the union of
// fields the items need from the upstream in a single ListMessages
// call, fetches bodies only for the UIDs that asked for content, and
// emits one untagged FETCH response per message in ascending UID
// order. A UID or content load that fails for one message is skipped
// silently rather than aborting the whole command, per §4.6.
func HandleFetch(deps Deps, conn net.Conn, tag string, sess *models.Session, useUID bool, rawSet, rawItems string) {
	folder := sess.SelectedFolder
	uids := resolveSet(useUID, rawSet, folder.MessageUIDs)
	if len(uids) == 0 {
		deps.Reply(conn, fmt.Sprintf("%s OK FETCH completed", tag))
		return
	}

	items := parser.ParseFetchItems(rawItems)
	fields := fetchFields(items)

	ctx := deps.Context()
	messages, err := deps.ListMessages(ctx, sess.APIKey, folder.SenderID, folder.FolderName, upstream.MessageQuery{
		UIDs:   uids,
		Fields: fields,
	})
	if err != nil {
		deps.Reply(conn, fmt.Sprintf("%s NO FETCH failed", tag))
		return
	}

	byUID := make(map[uint32]upstream.Message, len(messages))
	for _, m := range messages {
		byUID[m.UID] = m
	}

	for _, uid := range uids {
		seq := folder.SeqOf(uid)
		msg, ok := byUID[uid]
		if !ok || seq == 0 {
			continue
		}

		var body *upstream.Body
		if needsBody(items) {
			b, err := deps.GetBody(ctx, sess.APIKey, folder.SenderID, folder.FolderName, uid, !marksSeen(items))
			if err != nil {
				continue
			}
			body = b
		}

		parts := make([]string, 0, len(items)+1)
		sawUID := false
		for _, item := range items {
			if frag, ok := renderItem(item, msg, body); ok {
				parts = append(parts, frag)
				sawUID = sawUID || item.Name == "UID"
			}
		}
		// RFC 3501: a UID FETCH always returns UID, even if the client
		// didn't list it among the requested items.
		if useUID && !sawUID {
			parts = append(parts, fmt.Sprintf("UID %d", msg.UID))
		}
		deps.Reply(conn, response.Untagged(fmt.Sprintf("%d FETCH (%s)", seq, strings.Join(parts, " "))))
	}

	deps.Reply(conn, fmt.Sprintf("%s OK FETCH completed", tag))
}

func resolveSet(useUID bool, rawSet string, universe []uint32) []uint32 {
	if useUID {
		return parser.ParseSequenceSet(rawSet, universe)
	}
	return parser.ParseSeqNumSet(rawSet, universe)
}

// isStructureOnly reports whether item is the non-extensible "BODY"
// form (structurally identical to BODYSTRUCTURE) rather than a
// BODY[section] content request. The parser cannot distinguish a bare
// "BODY" token from "BODY[]" — both parse to Section "" — so this
// gateway treats that ambiguous case as the structure form, which
// matches how the FULL macro (the common source of a bare BODY item)
// expands (§9, recorded in DESIGN.md).
func isStructureOnly(item parser.FetchItem) bool {
	return item.Name == "BODY" && item.Section == "" && item.Partial == nil
}

func isContentItem(item parser.FetchItem) bool {
	switch item.Name {
	case "RFC822", "RFC822.HEADER", "RFC822.TEXT":
		return true
	case "BODY":
		return !isStructureOnly(item)
	}
	return false
}

func needsBody(items []parser.FetchItem) bool {
	for _, item := range items {
		if isContentItem(item) {
			return true
		}
	}
	return false
}

// marksSeen reports whether any requested content item implicitly sets
// \Seen per RFC 3501: RFC822, RFC822.TEXT and an un-peeked BODY[section]
// do; RFC822.HEADER and BODY.PEEK never do.
func marksSeen(items []parser.FetchItem) bool {
	for _, item := range items {
		switch item.Name {
		case "RFC822", "RFC822.TEXT":
			return true
		case "BODY":
			if !isStructureOnly(item) && !item.Peek {
				return true
			}
		}
	}
	return false
}

func fetchFields(items []parser.FetchItem) []string {
	seen := map[string]bool{"UID": true}
	fields := []string{"UID"}
	add := func(name string) {
		if !seen[name] {
			seen[name] = true
			fields = append(fields, name)
		}
	}
	for _, item := range items {
		switch item.Name {
		case "FLAGS":
			add("FLAGS")
		case "INTERNALDATE":
			add("INTERNALDATE")
		case "RFC822.SIZE":
			add("RFC822.SIZE")
		case "ENVELOPE":
			add("ENVELOPE")
		case "BODYSTRUCTURE":
			add("BODYSTRUCTURE")
		case "BODY":
			if isStructureOnly(item) {
				add("BODYSTRUCTURE")
			}
		}
	}
	return fields
}

func renderItem(item parser.FetchItem, msg upstream.Message, body *upstream.Body) (string, bool) {
	switch item.Name {
	case "FLAGS":
		return fmt.Sprintf("FLAGS (%s)", strings.Join(msg.Flags, " ")), true
	case "UID":
		return fmt.Sprintf("UID %d", msg.UID), true
	case "INTERNALDATE":
		return fmt.Sprintf("INTERNALDATE %s", response.Quote(response.InternalDate(msg.InternalDate))), true
	case "RFC822.SIZE":
		return fmt.Sprintf("RFC822.SIZE %d", msg.Size), true
	case "ENVELOPE":
		return fmt.Sprintf("ENVELOPE %s", response.Envelope(msg.Envelope)), true
	case "BODYSTRUCTURE":
		return fmt.Sprintf("BODYSTRUCTURE %s", response.BodyStructure(msg.BodyStruct)), true
	case "RFC822":
		return fmt.Sprintf("RFC822 %s", response.Literal(response.Section(body, ""))), true
	case "RFC822.HEADER":
		return fmt.Sprintf("RFC822.HEADER %s", response.Literal(response.Section(body, "HEADER"))), true
	case "RFC822.TEXT":
		return fmt.Sprintf("RFC822.TEXT %s", response.Literal(response.Section(body, "TEXT"))), true
	case "BODY":
		if isStructureOnly(item) {
			return fmt.Sprintf("BODY %s", response.BodyStructure(msg.BodyStruct)), true
		}
		return response.BodySection(item.Section, item.Partial, response.Section(body, item.Section)), true
	}
	return "", false
}
