// Package selection implements SELECT, EXAMINE, CLOSE and CHECK,
// grounded on §4.4: the untagged-response sequence a client needs to
// build its view of a folder, and the state transitions in and out of
// the selected state.
package selection

import (
	"context"
	"fmt"
	"net"
	"sort"

	"github.com/Transmit-Xmit/xmit-mail-gateway/internal/mailresolve"
	"github.com/Transmit-Xmit/xmit-mail-gateway/internal/models"
	"github.com/Transmit-Xmit/xmit-mail-gateway/internal/response"
	"github.com/Transmit-Xmit/xmit-mail-gateway/internal/upstream"
)

// Deps is the narrow surface selection handlers need from the server.
type Deps interface {
	Reply(conn net.Conn, line string)
	Context() context.Context
	Resolve(ctx context.Context, apiKey string, pinned *models.Sender, mailbox string) (mailresolve.Resolved, error)
	FolderStatus(ctx context.Context, apiKey, senderID, folder string) (*upstream.FolderStatus, error)
	ListMessages(ctx context.Context, apiKey, senderID, folder string, q upstream.MessageQuery) ([]upstream.Message, error)
	DeleteMessage(ctx context.Context, apiKey, senderID, folder string, uid uint32, expunge bool) error
}

const permanentFlags = `\Answered \Flagged \Deleted \Seen \Draft \*`
const sessionFlags = `\Answered \Flagged \Deleted \Seen \Draft`

// HandleSelect and HandleExamine share every step except the final
// tagged code and whether the session is left read-write.
func HandleSelect(deps Deps, conn net.Conn, tag string, sess *models.Session, mailbox string) {
	selectMailbox(deps, conn, tag, sess, mailbox, false)
}

func HandleExamine(deps Deps, conn net.Conn, tag string, sess *models.Session, mailbox string) {
	selectMailbox(deps, conn, tag, sess, mailbox, true)
}

func selectMailbox(deps Deps, conn net.Conn, tag string, sess *models.Session, mailbox string, readOnly bool) {
	ctx := deps.Context()
	resolved, err := deps.Resolve(ctx, sess.APIKey, sess.PinnedSender, mailbox)
	if err != nil || resolved.Sender == nil {
		deps.Reply(conn, fmt.Sprintf("%s NO [TRYCREATE] Mailbox does not exist", tag))
		return
	}

	status, err := deps.FolderStatus(ctx, sess.APIKey, resolved.Sender.ID, resolved.FolderName)
	if err != nil {
		deps.Reply(conn, fmt.Sprintf("%s NO SELECT failed", tag))
		return
	}

	messages, err := deps.ListMessages(ctx, sess.APIKey, resolved.Sender.ID, resolved.FolderName, upstream.MessageQuery{
		Fields: []string{"UID", "FLAGS"},
	})
	if err != nil {
		deps.Reply(conn, fmt.Sprintf("%s NO SELECT failed", tag))
		return
	}

	sort.Slice(messages, func(i, j int) bool { return messages[i].UID < messages[j].UID })

	uids := make([]uint32, len(messages))
	firstUnseen := 0
	for i, m := range messages {
		uids[i] = m.UID
		if firstUnseen == 0 && !hasFlag(m.Flags, `\Seen`) {
			firstUnseen = i + 1
		}
	}

	folder := &models.SelectedFolder{
		SenderID:      resolved.Sender.ID,
		FolderName:    resolved.FolderName,
		UIDValidity:   status.UIDValidity,
		UIDNext:       status.UIDNext,
		ReadOnly:      readOnly,
		MessageUIDs:   uids,
		HighestModSeq: status.HighestModSeq,
	}
	sess.Select(folder)

	deps.Reply(conn, response.Untagged(fmt.Sprintf("%d EXISTS", status.Exists)))
	deps.Reply(conn, response.Untagged(fmt.Sprintf("%d RECENT", status.Recent)))
	deps.Reply(conn, response.Untagged(fmt.Sprintf("FLAGS (%s)", sessionFlags)))
	if readOnly {
		deps.Reply(conn, response.Untagged("OK [PERMANENTFLAGS ()] No permanent flags permitted"))
	} else {
		deps.Reply(conn, response.Untagged(fmt.Sprintf("OK [PERMANENTFLAGS (%s)] Limited", permanentFlags)))
	}
	deps.Reply(conn, response.Untagged(fmt.Sprintf("OK [UIDVALIDITY %d] UIDs valid", status.UIDValidity)))
	deps.Reply(conn, response.Untagged(fmt.Sprintf("OK [UIDNEXT %d] Predicted next UID", status.UIDNext)))
	if firstUnseen > 0 {
		deps.Reply(conn, response.Untagged(fmt.Sprintf("OK [UNSEEN %d] Message %d is first unseen", firstUnseen, firstUnseen)))
	}
	if readOnly {
		deps.Reply(conn, fmt.Sprintf("%s OK [READ-ONLY] EXAMINE completed", tag))
	} else {
		deps.Reply(conn, fmt.Sprintf("%s OK [READ-WRITE] SELECT completed", tag))
	}
}

func hasFlag(flags []string, want string) bool {
	for _, f := range flags {
		if f == want {
			return true
		}
	}
	return false
}

// HandleClose implements CLOSE per §4.4: silently expunge every
// \Deleted message in a writable selection (no untagged EXPUNGE, per
// RFC 3501), then return to the authenticated state. A read-only
// selection (EXAMINE) expunges nothing.
func HandleClose(deps Deps, conn net.Conn, tag string, sess *models.Session) {
	folder := sess.SelectedFolder
	if folder != nil && !folder.ReadOnly {
		ctx := deps.Context()
		messages, err := deps.ListMessages(ctx, sess.APIKey, folder.SenderID, folder.FolderName, upstream.MessageQuery{
			Fields: []string{"UID", "FLAGS"},
		})
		if err == nil {
			for _, m := range messages {
				if hasFlag(m.Flags, `\Deleted`) {
					deps.DeleteMessage(ctx, sess.APIKey, folder.SenderID, folder.FolderName, m.UID, true)
				}
			}
		}
	}
	sess.Unselect()
	deps.Reply(conn, fmt.Sprintf("%s OK CLOSE completed", tag))
}

// HandleCheck is a no-op checkpoint: the gateway has no local state to
// flush, so it always succeeds.
func HandleCheck(deps Deps, conn net.Conn, tag string) {
	deps.Reply(conn, fmt.Sprintf("%s OK CHECK completed", tag))
}
