package message

import (
	"context"
	"fmt"
	"net"
	"sort"
	"strconv"
	"strings"

	"github.com/Transmit-Xmit/xmit-mail-gateway/internal/models"
	"github.com/Transmit-Xmit/xmit-mail-gateway/internal/response"
)

// HandleCopy answers COPY/UID COPY: each selected UID is duplicated
// into the target folder independently, and on success the tagged
// reply carries a COPYUID response code (UIDPLUS, §4.6) mapping source
// UIDs to their new UIDs in the target.
func HandleCopy(deps Deps, conn net.Conn, tag string, sess *models.Session, useUID bool, rawSet, mailbox string) {
	folder := sess.SelectedFolder
	ctx := deps.Context()

	resolved, err := deps.Resolve(ctx, sess.APIKey, sess.PinnedSender, mailbox)
	if err != nil || resolved.Sender == nil {
		deps.Reply(conn, fmt.Sprintf("%s NO [TRYCREATE] Mailbox does not exist", tag))
		return
	}

	uids := resolveSet(useUID, rawSet, folder.MessageUIDs)
	if len(uids) == 0 {
		deps.Reply(conn, fmt.Sprintf("%s NO No messages matched", tag))
		return
	}

	newUIDs := make([]uint32, 0, len(uids))
	for _, uid := range uids {
		newUID, err := deps.Copy(ctx, sess.APIKey, folder.SenderID, folder.FolderName, resolved.FolderName, uid)
		if err != nil {
			deps.Reply(conn, fmt.Sprintf("%s NO COPY failed", tag))
			return
		}
		newUIDs = append(newUIDs, newUID)
	}

	code := copyUIDCode(deps, ctx, sess.APIKey, resolved.Sender.ID, resolved.FolderName, uids, newUIDs)
	deps.Reply(conn, fmt.Sprintf("%s OK [%s] COPY completed", tag, code))
}

// HandleMove answers MOVE/UID MOVE (RFC 6851): each UID is moved then
// spliced out of the session's UID vector, emitting an untagged
// EXPUNGE at the sequence number it held at the moment of removal so
// later numbers in the same batch shift down correctly, then the same
// COPYUID code COPY uses.
func HandleMove(deps Deps, conn net.Conn, tag string, sess *models.Session, useUID bool, rawSet, mailbox string) {
	folder := sess.SelectedFolder
	ctx := deps.Context()

	resolved, err := deps.Resolve(ctx, sess.APIKey, sess.PinnedSender, mailbox)
	if err != nil || resolved.Sender == nil {
		deps.Reply(conn, fmt.Sprintf("%s NO [TRYCREATE] Mailbox does not exist", tag))
		return
	}

	uids := resolveSet(useUID, rawSet, folder.MessageUIDs)
	if len(uids) == 0 {
		deps.Reply(conn, fmt.Sprintf("%s NO No messages matched", tag))
		return
	}

	newUIDs := make([]uint32, 0, len(uids))
	for _, uid := range uids {
		newUID, err := deps.Move(ctx, sess.APIKey, folder.SenderID, folder.FolderName, resolved.FolderName, uid)
		if err != nil {
			deps.Reply(conn, fmt.Sprintf("%s NO MOVE failed", tag))
			return
		}
		newUIDs = append(newUIDs, newUID)

		seq := folder.SeqOf(uid)
		folder.Splice(uid)
		if seq > 0 {
			deps.Reply(conn, response.Untagged(fmt.Sprintf("%d EXPUNGE", seq)))
		}
	}

	code := copyUIDCode(deps, ctx, sess.APIKey, resolved.Sender.ID, resolved.FolderName, uids, newUIDs)
	deps.Reply(conn, fmt.Sprintf("%s OK [%s] Move completed", tag, code))
}

func copyUIDCode(deps Deps, ctx context.Context, apiKey, targetSenderID, targetFolder string, sourceUIDs, newUIDs []uint32) string {
	var uidValidity uint64
	if status, err := deps.FolderStatus(ctx, apiKey, targetSenderID, targetFolder); err == nil {
		uidValidity = status.UIDValidity
	}
	return fmt.Sprintf("COPYUID %d %s %s", uidValidity, compactSeqSet(sourceUIDs), compactSeqSet(newUIDs))
}

// compactSeqSet renders a UID list as an IMAP sequence set, collapsing
// consecutive runs into "start:end" ranges.
func compactSeqSet(uids []uint32) string {
	if len(uids) == 0 {
		return ""
	}
	sorted := append([]uint32{}, uids...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })

	var parts []string
	start := sorted[0]
	prev := sorted[0]
	flush := func(end uint32) {
		if start == end {
			parts = append(parts, strconv.FormatUint(uint64(start), 10))
		} else {
			parts = append(parts, fmt.Sprintf("%d:%d", start, end))
		}
	}
	for _, u := range sorted[1:] {
		if u == prev+1 {
			prev = u
			continue
		}
		flush(prev)
		start, prev = u, u
	}
	flush(prev)
	return strings.Join(parts, ",")
}
